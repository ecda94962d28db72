package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/emrgen/docrepo/internal/store"
)

func versionInput(lineageID string) *CreateVersionInput {
	return &CreateVersionInput{
		LineageID:   lineageID,
		Content:     strings.NewReader("revised content"),
		ContentSize: 15,
		MimeType:    "text/plain",
		CreatedBy:   uuid.New().String(),
	}
}

func TestDocumentService_CreateVersion(t *testing.T) {
	docs, _, _ := setupService(nil)

	root, err := docs.CreateDocument(context.TODO(), createInput(uuid.New().String()))
	assert.NoError(t, err)

	v2, err := docs.CreateVersion(context.TODO(), versionInput(root.ID))
	assert.NoError(t, err)

	assert.Equal(t, int64(2), v2.Version)
	assert.True(t, v2.IsCurrentVersion)
	assert.Equal(t, root.ID, v2.LineageRootID)
	assert.Equal(t, root.TenantID, v2.TenantID)
	assert.Equal(t, root.DocumentTypeID, v2.DocumentTypeID)
	// title inherited from the current version
	assert.Equal(t, root.Title, v2.Title)

	// the root lost its current marker
	got, err := docs.GetDocument(context.TODO(), uuid.MustParse(root.ID))
	assert.NoError(t, err)
	assert.False(t, got.IsCurrentVersion)

	// newest first, root included
	versions, err := docs.ListVersions(context.TODO(), uuid.MustParse(root.ID))
	assert.NoError(t, err)
	assert.Len(t, versions, 2)
	assert.Equal(t, v2.ID, versions[0].ID)
	assert.Equal(t, root.ID, versions[1].ID)

	current, err := docs.GetCurrentVersion(context.TODO(), uuid.MustParse(root.ID))
	assert.NoError(t, err)
	assert.Equal(t, v2.ID, current.ID)
}

func TestDocumentService_CreateVersionFromMember(t *testing.T) {
	docs, _, _ := setupService(nil)

	root, err := docs.CreateDocument(context.TODO(), createInput(uuid.New().String()))
	assert.NoError(t, err)

	v2, err := docs.CreateVersion(context.TODO(), versionInput(root.ID))
	assert.NoError(t, err)

	// creating from a member id resolves the lineage root, flat lineage
	v3, err := docs.CreateVersion(context.TODO(), versionInput(v2.ID))
	assert.NoError(t, err)
	assert.Equal(t, int64(3), v3.Version)
	assert.Equal(t, root.ID, v3.LineageRootID)
}

func TestDocumentService_VersionNumbersIncrease(t *testing.T) {
	docs, _, _ := setupService(nil)

	root, err := docs.CreateDocument(context.TODO(), createInput(uuid.New().String()))
	assert.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := docs.CreateVersion(context.TODO(), versionInput(root.ID))
		assert.NoError(t, err)
	}

	versions, err := docs.ListVersions(context.TODO(), uuid.MustParse(root.ID))
	assert.NoError(t, err)
	assert.Len(t, versions, 5)

	// strictly increasing from 1 with no gaps, listed newest first
	for i, doc := range versions {
		assert.Equal(t, int64(len(versions)-i), doc.Version)
	}
}

func TestDocumentService_ConcurrentVersionCreation(t *testing.T) {
	docs, _, _ := setupService(nil)

	root, err := docs.CreateDocument(context.TODO(), createInput(uuid.New().String()))
	assert.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := docs.CreateVersion(context.TODO(), versionInput(root.ID))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	versions, err := docs.ListVersions(context.TODO(), uuid.MustParse(root.ID))
	assert.NoError(t, err)
	assert.Len(t, versions, writers+1)

	currents := 0
	seen := make(map[int64]bool)
	for _, doc := range versions {
		if doc.IsCurrentVersion {
			currents++
		}
		assert.False(t, seen[doc.Version], "duplicate version %d", doc.Version)
		seen[doc.Version] = true
	}
	assert.Equal(t, 1, currents)

	current, err := docs.GetCurrentVersion(context.TODO(), uuid.MustParse(root.ID))
	assert.NoError(t, err)
	assert.Equal(t, int64(writers+1), current.Version)
}

func TestDocumentService_CreateVersionFromDeletedLineage(t *testing.T) {
	docs, _, _ := setupService(nil)

	root, err := docs.CreateDocument(context.TODO(), createInput(uuid.New().String()))
	assert.NoError(t, err)

	err = docs.SoftDelete(context.TODO(), uuid.MustParse(root.ID), "tester", "obsolete")
	assert.NoError(t, err)

	_, err = docs.CreateVersion(context.TODO(), versionInput(root.ID))
	assert.ErrorIs(t, err, store.ErrStateConflict)
	assert.ErrorIs(t, err, ErrVersionFromDeleted)
}

func TestDocumentService_CreateVersionMalformedLineageID(t *testing.T) {
	docs, _, _ := setupService(nil)

	_, err := docs.CreateVersion(context.TODO(), versionInput("not-a-uuid"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDocumentService_CreateVersionUnknownLineage(t *testing.T) {
	docs, _, _ := setupService(nil)

	_, err := docs.CreateVersion(context.TODO(), versionInput(uuid.New().String()))
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)
}
