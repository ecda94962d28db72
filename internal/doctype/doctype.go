package doctype

import "context"

// Registry answers capability questions about document types. Type
// management itself lives outside this core.
type Registry interface {
	// Indexable reports whether documents of the given type participate in
	// content indexing.
	Indexable(ctx context.Context, typeID string) (bool, error)
}

var _ Registry = (*StaticRegistry)(nil)

// StaticRegistry resolves indexability from a fixed table, falling back to
// a default for unknown types.
type StaticRegistry struct {
	indexable        map[string]bool
	defaultIndexable bool
}

func NewStaticRegistry(indexable map[string]bool, defaultIndexable bool) *StaticRegistry {
	if indexable == nil {
		indexable = make(map[string]bool)
	}

	return &StaticRegistry{
		indexable:        indexable,
		defaultIndexable: defaultIndexable,
	}
}

func (r *StaticRegistry) Indexable(ctx context.Context, typeID string) (bool, error) {
	if v, ok := r.indexable[typeID]; ok {
		return v, nil
	}
	return r.defaultIndexable, nil
}
