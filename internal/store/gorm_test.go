package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/emrgen/docrepo/internal/model"
	"github.com/emrgen/docrepo/internal/tester"
)

func setupStore() *GormStore {
	tester.Setup()
	return NewGormStore(tester.TestDB())
}

func newDoc(tenantID string) *model.Document {
	return &model.Document{
		TenantID:       tenantID,
		DocumentTypeID: uuid.New().String(),
		Title:          "design notes",
		BlobPath:       "tenant-" + tenantID + "/" + uuid.New().String(),
		CreatedBy:      uuid.New().String(),
	}
}

func TestGormStore_CreateDocument(t *testing.T) {
	s := setupStore()

	doc := newDoc(uuid.New().String())
	err := s.CreateDocument(context.TODO(), doc)
	assert.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.False(t, doc.CreatedAt.IsZero())

	got, err := s.GetDocument(context.TODO(), uuid.MustParse(doc.ID))
	assert.NoError(t, err)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, int64(1), got.Version)
	assert.True(t, got.IsCurrentVersion)
	assert.Nil(t, got.UpdatedAt)
}

func TestGormStore_GetLiveDocument(t *testing.T) {
	s := setupStore()

	doc := newDoc(uuid.New().String())
	err := s.CreateDocument(context.TODO(), doc)
	assert.NoError(t, err)
	id := uuid.MustParse(doc.ID)

	_, err = s.GetLiveDocument(context.TODO(), id)
	assert.NoError(t, err)

	err = s.ArchiveDocument(context.TODO(), id)
	assert.NoError(t, err)

	_, err = s.GetLiveDocument(context.TODO(), id)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	// the row itself is still reachable
	_, err = s.GetDocument(context.TODO(), id)
	assert.NoError(t, err)
}

func TestGormStore_LineageQueries(t *testing.T) {
	s := setupStore()

	tenantID := uuid.New().String()
	root := newDoc(tenantID)
	err := s.CreateDocument(context.TODO(), root)
	assert.NoError(t, err)
	rootID := uuid.MustParse(root.ID)

	max, err := s.MaxLineageVersion(context.TODO(), rootID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), max)

	err = s.ClearCurrentVersion(context.TODO(), rootID)
	assert.NoError(t, err)

	v2 := newDoc(tenantID)
	v2.LineageRootID = root.ID
	v2.Version = 2
	err = s.CreateDocument(context.TODO(), v2)
	assert.NoError(t, err)

	max, err = s.MaxLineageVersion(context.TODO(), rootID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), max)

	current, err := s.GetCurrentVersion(context.TODO(), rootID)
	assert.NoError(t, err)
	assert.Equal(t, v2.ID, current.ID)

	versions, err := s.ListVersions(context.TODO(), rootID)
	assert.NoError(t, err)
	assert.Len(t, versions, 2)
	assert.Equal(t, v2.ID, versions[0].ID)
	assert.Equal(t, root.ID, versions[1].ID)

	// an unknown lineage has no versions at all
	max, err = s.MaxLineageVersion(context.TODO(), uuid.New())
	assert.NoError(t, err)
	assert.Equal(t, int64(0), max)
}

func TestGormStore_ListDocumentsByContentHash(t *testing.T) {
	s := setupStore()

	tenantA := uuid.New().String()
	tenantB := uuid.New().String()

	docA := newDoc(tenantA)
	docA.ContentHash = "h1"
	assert.NoError(t, s.CreateDocument(context.TODO(), docA))

	docB := newDoc(tenantB)
	docB.ContentHash = "h1"
	assert.NoError(t, s.CreateDocument(context.TODO(), docB))

	docs, err := s.ListDocumentsByContentHash(context.TODO(), "h1", uuid.MustParse(tenantA))
	assert.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, docA.ID, docs[0].ID)

	// an empty hash never matches anything
	docs, err = s.ListDocumentsByContentHash(context.TODO(), "", uuid.MustParse(tenantA))
	assert.NoError(t, err)
	assert.Empty(t, docs)
}

func TestGormStore_MarkDocumentIndexed(t *testing.T) {
	s := setupStore()

	doc := newDoc(uuid.New().String())
	assert.NoError(t, s.CreateDocument(context.TODO(), doc))

	at := time.Now().UTC()
	err := s.MarkDocumentIndexed(context.TODO(), uuid.MustParse(doc.ID), "idx-7", at)
	assert.NoError(t, err)

	got, err := s.GetDocument(context.TODO(), uuid.MustParse(doc.ID))
	assert.NoError(t, err)
	assert.Equal(t, "idx-7", got.SearchIndexID)
	assert.NotNil(t, got.LastIndexedAt)
	// index bookkeeping is not a content update
	assert.Nil(t, got.UpdatedAt)

	err = s.MarkDocumentIndexed(context.TODO(), uuid.New(), "idx-8", at)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestGormStore_CollectionLinks(t *testing.T) {
	s := setupStore()

	doc := newDoc(uuid.New().String())
	assert.NoError(t, s.CreateDocument(context.TODO(), doc))
	id := uuid.MustParse(doc.ID)

	for i := 0; i < 2; i++ {
		err := s.CreateCollectionLink(context.TODO(), &model.CollectionDocument{
			CollectionID: uuid.New().String(),
			DocumentID:   doc.ID,
			TenantID:     doc.TenantID,
		})
		assert.NoError(t, err)
	}

	links, err := s.ListCollectionLinks(context.TODO(), id)
	assert.NoError(t, err)
	assert.Len(t, links, 2)

	err = s.DeleteCollectionLinks(context.TODO(), id)
	assert.NoError(t, err)

	links, err = s.ListCollectionLinks(context.TODO(), id)
	assert.NoError(t, err)
	assert.Empty(t, links)
}

func TestGormStore_TransactionRollback(t *testing.T) {
	s := setupStore()

	doc := newDoc(uuid.New().String())
	boom := errors.New("boom")

	err := s.Transaction(context.TODO(), func(tx Store) error {
		if err := tx.CreateDocument(context.TODO(), doc); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetDocument(context.TODO(), uuid.MustParse(doc.ID))
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}
