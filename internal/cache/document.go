package cache

import (
	"context"

	"github.com/google/uuid"

	"github.com/emrgen/docrepo/internal/model"
)

// DocumentCache is a best-effort read-through cache for single-document
// reads. The store stays the source of truth; a cache failure is never
// fatal.
type DocumentCache interface {
	// GetDocument gets a document from the cache. A miss returns (nil, nil).
	GetDocument(ctx context.Context, id uuid.UUID) (*model.Document, error)
	// SetDocument sets a document in the cache.
	SetDocument(ctx context.Context, doc *model.Document) error
	// DeleteDocument drops a document from the cache.
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}
