package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/emrgen/docrepo/internal/model"
)

// ReindexReport accumulates the outcome of one reconciliation pass.
// Per-document failures never abort the pass.
type ReindexReport struct {
	Pending int
	Indexed int
	Errors  map[string]error
}

// ListNeedingIndexing returns the documents whose index entry is missing or
// stale, filtered by document type indexability. Side-effect free, safe to
// poll repeatedly.
func (d *DocumentService) ListNeedingIndexing(ctx context.Context) ([]*model.Document, error) {
	candidates, err := d.store.ListDocumentsNeedingIndexing(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]*model.Document, 0, len(candidates))
	for _, doc := range candidates {
		indexable, err := d.types.Indexable(ctx, doc.DocumentTypeID)
		if err != nil {
			return nil, fmt.Errorf("indexability lookup for type %s: %w", doc.DocumentTypeID, err)
		}
		if indexable {
			docs = append(docs, doc)
		}
	}

	return docs, nil
}

// MarkIndexed records a successful index submission without making the
// document stale again. The cached row is dropped so reads pick up the new
// index bookkeeping.
func (d *DocumentService) MarkIndexed(ctx context.Context, id uuid.UUID, indexID string) error {
	if err := d.store.MarkDocumentIndexed(ctx, id, indexID, time.Now().UTC()); err != nil {
		return err
	}

	d.cacheDelete(ctx, id.String())
	return nil
}

// ReindexPending pushes every stale document through the indexer and
// records the completions. This is the recovery path for indexing attempts
// that failed silently or were never made; re-indexing an already current
// document is harmless, so the pass is idempotent.
func (d *DocumentService) ReindexPending(ctx context.Context) (*ReindexReport, error) {
	docs, err := d.ListNeedingIndexing(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReindexReport{
		Pending: len(docs),
		Errors:  make(map[string]error),
	}
	if len(docs) == 0 {
		return report, nil
	}

	results, err := d.indexer.IndexBatch(ctx, docs)
	if err != nil {
		logrus.Warnf("index batch failed, falling back to per-document indexing: %v", err)
	}

	for _, doc := range docs {
		docID, err := uuid.Parse(doc.ID)
		if err != nil {
			report.Errors[doc.ID] = err
			continue
		}

		indexID, ok := results[doc.ID]
		if !ok {
			indexID, err = d.indexer.IndexOne(ctx, doc)
			if err != nil {
				report.Errors[doc.ID] = err
				continue
			}
		}

		if err := d.MarkIndexed(ctx, docID, indexID); err != nil {
			report.Errors[doc.ID] = err
			continue
		}

		report.Indexed++
	}

	return report, nil
}
