package store

import (
	"errors"
	"fmt"
)

var (
	// ErrDocumentNotFound is returned when a document id does not exist.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrStateConflict is the root of every lifecycle precondition failure.
	// Specific conflicts wrap it so callers can match with errors.Is.
	ErrStateConflict = errors.New("lifecycle state conflict")

	// ErrAlreadyDeleted is returned when soft deleting a document that is
	// already deleted.
	ErrAlreadyDeleted = fmt.Errorf("%w: document is already deleted", ErrStateConflict)
	// ErrNotDeleted is returned when restoring a document that is not
	// deleted.
	ErrNotDeleted = fmt.Errorf("%w: document is not deleted", ErrStateConflict)
	// ErrAlreadyArchived is returned when archiving a document that is
	// already archived.
	ErrAlreadyArchived = fmt.Errorf("%w: document is already archived", ErrStateConflict)
	// ErrNotArchived is returned when unarchiving a document that is not
	// archived.
	ErrNotArchived = fmt.Errorf("%w: document is not archived", ErrStateConflict)
)
