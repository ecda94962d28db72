package search

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/emrgen/docrepo/internal/model"
)

var _ Indexer = (*MemoryIndexer)(nil)

// MemoryIndexer keeps index entries in process memory. Used by tests and
// the CLI dry-run mode.
type MemoryIndexer struct {
	mu sync.Mutex
	// entries maps index id to the indexed document id.
	entries map[string]string
	// Fail makes every call return an error, for exercising the best-effort
	// indexing paths.
	Fail bool
}

func NewMemoryIndexer() *MemoryIndexer {
	return &MemoryIndexer{
		entries: make(map[string]string),
	}
}

func (m *MemoryIndexer) IndexOne(ctx context.Context, doc *model.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return "", errors.New("indexer unavailable")
	}

	indexID := uuid.New().String()
	m.entries[indexID] = doc.ID
	return indexID, nil
}

func (m *MemoryIndexer) IndexBatch(ctx context.Context, docs []*model.Document) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return nil, errors.New("indexer unavailable")
	}

	result := make(map[string]string, len(docs))
	for _, doc := range docs {
		indexID := uuid.New().String()
		m.entries[indexID] = doc.ID
		result[doc.ID] = indexID
	}

	return result, nil
}

func (m *MemoryIndexer) Remove(ctx context.Context, indexID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return errors.New("indexer unavailable")
	}

	delete(m.entries, indexID)
	return nil
}

func (m *MemoryIndexer) Update(ctx context.Context, doc *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return errors.New("indexer unavailable")
	}

	m.entries[doc.SearchIndexID] = doc.ID
	return nil
}

// Size returns the number of live index entries.
func (m *MemoryIndexer) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
