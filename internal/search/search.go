package search

import (
	"context"

	"github.com/emrgen/docrepo/internal/model"
)

// Indexer is the full-text search collaborator. The core only submits
// documents and records the returned index ids; ranking and query logic
// live in the external indexer.
type Indexer interface {
	// IndexOne submits a single document and returns its index id.
	IndexOne(ctx context.Context, doc *model.Document) (string, error)
	// IndexBatch submits documents and returns the index id per document id.
	// Implementations index as many as they can; a partial result with an
	// error is valid.
	IndexBatch(ctx context.Context, docs []*model.Document) (map[string]string, error)
	// Remove drops an index entry by index id.
	Remove(ctx context.Context, indexID string) error
	// Update refreshes the index entry of an already indexed document.
	Update(ctx context.Context, doc *model.Document) error
}
