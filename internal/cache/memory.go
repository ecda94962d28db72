package cache

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/emrgen/docrepo/internal/model"
)

var _ DocumentCache = (*MemoryDocumentCache)(nil)

// MemoryDocumentCache keeps cached rows in process memory. Used by tests
// and the CLI dry-run mode.
type MemoryDocumentCache struct {
	mu   sync.RWMutex
	docs map[string]model.Document
}

func NewMemoryDocumentCache() *MemoryDocumentCache {
	return &MemoryDocumentCache{
		docs: make(map[string]model.Document),
	}
}

func (m *MemoryDocumentCache) GetDocument(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[id.String()]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (m *MemoryDocumentCache) SetDocument(ctx context.Context, doc *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[doc.ID] = *doc
	return nil
}

func (m *MemoryDocumentCache) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.docs, id.String())
	return nil
}

// Contains reports whether an entry is cached for the id.
func (m *MemoryDocumentCache) Contains(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.docs[id]
	return ok
}
