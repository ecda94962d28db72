package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/emrgen/docrepo/internal/queue"
	"github.com/emrgen/docrepo/internal/store"
)

// SoftDelete marks a document deleted. The row keeps all its data and
// disappears from default listings; Restore reverses it. Deleting an
// already deleted document is a state conflict.
func (d *DocumentService) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy, reason string) error {
	if deletedBy == "" {
		return validationError("deleted by")
	}

	if err := d.store.SoftDeleteDocument(ctx, id, deletedBy, reason); err != nil {
		return err
	}

	doc, err := d.store.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	// drop the stale index entry; the row keeps its bookkeeping so a later
	// restore makes it eligible for re-indexing again
	if doc.SearchIndexID != "" {
		if err := d.indexer.Remove(ctx, doc.SearchIndexID); err != nil {
			logrus.Warnf("index removal failed for document %s: %v", doc.ID, err)
		}
	}

	d.cacheDelete(ctx, doc.ID)
	d.publishEvent(ctx, queue.DocumentDeleted, doc)

	return nil
}

// Restore reverses a soft delete and clears the deletion stamps. Restoring
// a document that is not deleted is a state conflict.
func (d *DocumentService) Restore(ctx context.Context, id uuid.UUID) error {
	if err := d.store.RestoreDocument(ctx, id); err != nil {
		return err
	}

	doc, err := d.store.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	d.cacheDelete(ctx, doc.ID)
	d.publishEvent(ctx, queue.DocumentRestored, doc)

	return nil
}

// Archive marks a document archived, orthogonal to deletion.
func (d *DocumentService) Archive(ctx context.Context, id uuid.UUID) error {
	if err := d.store.ArchiveDocument(ctx, id); err != nil {
		return err
	}

	doc, err := d.store.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	d.cacheDelete(ctx, doc.ID)
	d.publishEvent(ctx, queue.DocumentArchived, doc)

	return nil
}

// Unarchive clears the archive marker.
func (d *DocumentService) Unarchive(ctx context.Context, id uuid.UUID) error {
	if err := d.store.UnarchiveDocument(ctx, id); err != nil {
		return err
	}

	d.cacheDelete(ctx, id.String())
	return nil
}

// PermanentDelete removes the blob object, the collection links and the
// document row. Irreversible, allowed from any lifecycle state. A blob that
// is already absent is a logged anomaly, not a failure; any other blob
// failure aborts before the row is touched. Not retried automatically; the
// caller re-issues on transient infrastructure failure.
func (d *DocumentService) PermanentDelete(ctx context.Context, id uuid.UUID) error {
	doc, err := d.store.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	container, name := splitBlobPath(doc.BlobPath)
	removed, err := d.blobs.Delete(ctx, container, name)
	if err != nil {
		logrus.Errorf("blob delete failed for document %s: %v", doc.ID, err)
		return err
	}
	if !removed {
		logrus.Warnf("blob already absent for document %s at %s", doc.ID, doc.BlobPath)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	err = store.RetryingTransaction(ctx, d.store, func(tx store.Store) error {
		if err := tx.DeleteCollectionLinks(ctx, id); err != nil {
			return err
		}
		return tx.EraseDocument(ctx, id)
	})
	if err != nil {
		return err
	}

	if doc.SearchIndexID != "" {
		if err := d.indexer.Remove(ctx, doc.SearchIndexID); err != nil {
			logrus.Warnf("index removal failed for document %s: %v", doc.ID, err)
		}
	}

	d.cacheDelete(ctx, doc.ID)
	d.publishEvent(ctx, queue.DocumentErased, doc)

	logrus.Infof("permanently deleted document %s", doc.ID)
	return nil
}
