package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/emrgen/docrepo/internal/model"
	"github.com/emrgen/docrepo/internal/store"
)

func TestDocumentService_SoftDeleteRestoreRoundTrip(t *testing.T) {
	docs, _, _ := setupService(nil)

	doc, err := docs.CreateDocument(context.TODO(), createInput(uuid.New().String()))
	assert.NoError(t, err)

	err = docs.SoftDelete(context.TODO(), uuid.MustParse(doc.ID), "alice", "superseded")
	assert.NoError(t, err)

	got, err := docs.GetDocument(context.TODO(), uuid.MustParse(doc.ID))
	assert.NoError(t, err)
	assert.True(t, got.IsDeleted)
	assert.NotNil(t, got.DeletedAt)
	assert.Equal(t, "alice", got.DeletedBy)
	assert.Equal(t, "superseded", got.DeletedReason)
	assert.Equal(t, model.StateDeleted, got.State())

	err = docs.Restore(context.TODO(), uuid.MustParse(doc.ID))
	assert.NoError(t, err)

	got, err = docs.GetDocument(context.TODO(), uuid.MustParse(doc.ID))
	assert.NoError(t, err)
	assert.False(t, got.IsDeleted)
	assert.Nil(t, got.DeletedAt)
	assert.Empty(t, got.DeletedBy)
	assert.Empty(t, got.DeletedReason)
	assert.Equal(t, model.StateActive, got.State())
}

func TestDocumentService_InvalidTransitions(t *testing.T) {
	docs, _, _ := setupService(nil)

	doc, err := docs.CreateDocument(context.TODO(), createInput(uuid.New().String()))
	assert.NoError(t, err)
	id := uuid.MustParse(doc.ID)

	// restore an active document
	err = docs.Restore(context.TODO(), id)
	assert.ErrorIs(t, err, store.ErrNotDeleted)
	assert.ErrorIs(t, err, store.ErrStateConflict)

	// unarchive an unarchived document
	err = docs.Unarchive(context.TODO(), id)
	assert.ErrorIs(t, err, store.ErrNotArchived)

	err = docs.SoftDelete(context.TODO(), id, "tester", "")
	assert.NoError(t, err)

	// delete an already deleted document
	err = docs.SoftDelete(context.TODO(), id, "tester", "")
	assert.ErrorIs(t, err, store.ErrAlreadyDeleted)

	// a missing id is no different from a precondition failure on writes
	err = docs.SoftDelete(context.TODO(), uuid.New(), "tester", "")
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)
}

func TestDocumentService_ArchiveIsOrthogonalToDelete(t *testing.T) {
	docs, _, _ := setupService(nil)

	doc, err := docs.CreateDocument(context.TODO(), createInput(uuid.New().String()))
	assert.NoError(t, err)
	id := uuid.MustParse(doc.ID)

	err = docs.Archive(context.TODO(), id)
	assert.NoError(t, err)

	err = docs.SoftDelete(context.TODO(), id, "tester", "")
	assert.NoError(t, err)

	got, err := docs.GetDocument(context.TODO(), id)
	assert.NoError(t, err)
	assert.True(t, got.IsDeleted)
	assert.True(t, got.IsArchived)
	assert.NotNil(t, got.ArchivedAt)
	assert.Equal(t, model.StateDeletedArchived, got.State())

	// restoring keeps the archive marker
	err = docs.Restore(context.TODO(), id)
	assert.NoError(t, err)

	got, err = docs.GetDocument(context.TODO(), id)
	assert.NoError(t, err)
	assert.False(t, got.IsDeleted)
	assert.True(t, got.IsArchived)
	assert.Equal(t, model.StateArchived, got.State())

	err = docs.Unarchive(context.TODO(), id)
	assert.NoError(t, err)

	got, err = docs.GetDocument(context.TODO(), id)
	assert.NoError(t, err)
	assert.Nil(t, got.ArchivedAt)
	assert.Equal(t, model.StateActive, got.State())
}

func TestDocumentService_SoftDeletedExcludedFromListing(t *testing.T) {
	docs, _, _ := setupService(nil)

	tenantID := uuid.New().String()
	kept, err := docs.CreateDocument(context.TODO(), createInput(tenantID))
	assert.NoError(t, err)
	dropped, err := docs.CreateDocument(context.TODO(), createInput(tenantID))
	assert.NoError(t, err)

	err = docs.SoftDelete(context.TODO(), uuid.MustParse(dropped.ID), "tester", "")
	assert.NoError(t, err)

	list, total, err := docs.ListDocuments(context.TODO(), uuid.MustParse(tenantID), false)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
	assert.Equal(t, kept.ID, list[0].ID)

	list, total, err = docs.ListDocuments(context.TODO(), uuid.MustParse(tenantID), true)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)
}

func TestDocumentService_DownloadDeletedDocument(t *testing.T) {
	docs, _, _ := setupService(nil)

	doc, err := docs.CreateDocument(context.TODO(), createInput(uuid.New().String()))
	assert.NoError(t, err)

	err = docs.SoftDelete(context.TODO(), uuid.MustParse(doc.ID), "tester", "")
	assert.NoError(t, err)

	_, _, err = docs.Download(context.TODO(), uuid.MustParse(doc.ID))
	assert.ErrorIs(t, err, ErrDocumentDeleted)
}

func TestDocumentService_PermanentDelete(t *testing.T) {
	docs, blobs, _ := setupService(nil)

	in := createInput(uuid.New().String())
	in.Content = strings.NewReader("bytes")
	in.ContentSize = 5

	doc, err := docs.CreateDocument(context.TODO(), in)
	assert.NoError(t, err)

	err = docs.PermanentDelete(context.TODO(), uuid.MustParse(doc.ID))
	assert.NoError(t, err)

	_, err = docs.GetDocument(context.TODO(), uuid.MustParse(doc.ID))
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)

	exists, err := blobs.Exists(context.TODO(), "tenant-"+doc.TenantID, doc.ID)
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestDocumentService_PermanentDeleteMissingBlob(t *testing.T) {
	docs, blobs, _ := setupService(nil)

	doc, err := docs.CreateDocument(context.TODO(), createInput(uuid.New().String()))
	assert.NoError(t, err)

	// simulate external cleanup of the blob object
	removed, err := blobs.Delete(context.TODO(), "tenant-"+doc.TenantID, doc.ID)
	assert.NoError(t, err)
	assert.True(t, removed)

	// the row is still removed and no error reaches the caller
	err = docs.PermanentDelete(context.TODO(), uuid.MustParse(doc.ID))
	assert.NoError(t, err)

	_, err = docs.GetDocument(context.TODO(), uuid.MustParse(doc.ID))
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)
}
