package model

// LifecycleState is the tagged combination of the two independent lifecycle
// axes of a document row: {active|deleted} x {unarchived|archived}.
type LifecycleState int

const (
	StateActive LifecycleState = iota
	StateArchived
	StateDeleted
	StateDeletedArchived
)

func (s LifecycleState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateArchived:
		return "archived"
	case StateDeleted:
		return "deleted"
	case StateDeletedArchived:
		return "deleted+archived"
	default:
		return "unknown"
	}
}

// Transition is a lifecycle state change requested on a document row.
// Permanent deletion is not listed; it is terminal and allowed from any
// state.
type Transition int

const (
	TransitionSoftDelete Transition = iota
	TransitionRestore
	TransitionArchive
	TransitionUnarchive
)

func (t Transition) String() string {
	switch t {
	case TransitionSoftDelete:
		return "soft-delete"
	case TransitionRestore:
		return "restore"
	case TransitionArchive:
		return "archive"
	case TransitionUnarchive:
		return "unarchive"
	default:
		return "unknown"
	}
}

// transitions is the full table of legal lifecycle transitions. Anything
// absent here is a state conflict.
var transitions = map[LifecycleState]map[Transition]LifecycleState{
	StateActive: {
		TransitionSoftDelete: StateDeleted,
		TransitionArchive:    StateArchived,
	},
	StateArchived: {
		TransitionSoftDelete: StateDeletedArchived,
		TransitionUnarchive:  StateActive,
	},
	StateDeleted: {
		TransitionRestore: StateActive,
		TransitionArchive: StateDeletedArchived,
	},
	StateDeletedArchived: {
		TransitionRestore:   StateArchived,
		TransitionUnarchive: StateDeleted,
	},
}

// State derives the tagged lifecycle state from the row flags.
func (d *Document) State() LifecycleState {
	switch {
	case d.IsDeleted && d.IsArchived:
		return StateDeletedArchived
	case d.IsDeleted:
		return StateDeleted
	case d.IsArchived:
		return StateArchived
	default:
		return StateActive
	}
}

// NextState returns the state reached by applying t to s, and whether the
// transition is legal.
func NextState(s LifecycleState, t Transition) (LifecycleState, bool) {
	next, ok := transitions[s][t]
	return next, ok
}
