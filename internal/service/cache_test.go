package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/emrgen/docrepo/internal/cache"
	"github.com/emrgen/docrepo/internal/compress"
	"github.com/emrgen/docrepo/internal/doctype"
	"github.com/emrgen/docrepo/internal/search"
	"github.com/emrgen/docrepo/internal/store"
	"github.com/emrgen/docrepo/internal/tester"
)

func setupServiceWithCache() (*DocumentService, *cache.MemoryDocumentCache, *search.MemoryIndexer) {
	tester.Setup()

	blobs := tester.Blobs()
	indexer := tester.Indexer()
	mem := cache.NewMemoryDocumentCache()
	types := doctype.NewStaticRegistry(nil, true)
	docs := NewDocumentService(compress.NewNop(), store.NewGormStore(tester.TestDB()), blobs, indexer, types, mem, nil)

	return docs, mem, indexer
}

func TestDocumentService_CacheReadThrough(t *testing.T) {
	docs, mem, _ := setupServiceWithCache()

	doc, err := docs.CreateDocument(context.TODO(), createInput(uuid.New().String()))
	assert.NoError(t, err)
	assert.True(t, mem.Contains(doc.ID))

	// reads are served from the cache when an entry exists
	doctored := *doc
	doctored.Title = "cached copy"
	err = mem.SetDocument(context.TODO(), &doctored)
	assert.NoError(t, err)

	got, err := docs.GetDocument(context.TODO(), uuid.MustParse(doc.ID))
	assert.NoError(t, err)
	assert.Equal(t, "cached copy", got.Title)

	// a miss falls through to the store and refills the cache
	err = mem.DeleteDocument(context.TODO(), uuid.MustParse(doc.ID))
	assert.NoError(t, err)

	got, err = docs.GetDocument(context.TODO(), uuid.MustParse(doc.ID))
	assert.NoError(t, err)
	assert.Equal(t, doc.Title, got.Title)
	assert.True(t, mem.Contains(doc.ID))
}

func TestDocumentService_MarkIndexedInvalidatesCache(t *testing.T) {
	docs, mem, indexer := setupServiceWithCache()

	// create behind a failing indexer so the cached row has no index
	// bookkeeping yet
	indexer.Fail = true
	doc, err := docs.CreateDocument(context.TODO(), createInput(uuid.New().String()))
	assert.NoError(t, err)
	assert.True(t, mem.Contains(doc.ID))
	assert.Empty(t, doc.SearchIndexID)

	err = docs.MarkIndexed(context.TODO(), uuid.MustParse(doc.ID), "idx-9")
	assert.NoError(t, err)
	assert.False(t, mem.Contains(doc.ID))

	// the next read sees the index bookkeeping, not the stale cached row
	got, err := docs.GetDocument(context.TODO(), uuid.MustParse(doc.ID))
	assert.NoError(t, err)
	assert.Equal(t, "idx-9", got.SearchIndexID)
	assert.NotNil(t, got.LastIndexedAt)
}

func TestDocumentService_ReindexPendingInvalidatesCache(t *testing.T) {
	docs, mem, indexer := setupServiceWithCache()

	indexer.Fail = true
	tenantID := uuid.New().String()
	var ids []string
	for i := 0; i < 2; i++ {
		doc, err := docs.CreateDocument(context.TODO(), createInput(tenantID))
		assert.NoError(t, err)
		assert.True(t, mem.Contains(doc.ID))
		ids = append(ids, doc.ID)
	}

	indexer.Fail = false
	report, err := docs.ReindexPending(context.TODO())
	assert.NoError(t, err)
	assert.Equal(t, 2, report.Indexed)

	for _, id := range ids {
		assert.False(t, mem.Contains(id))

		got, err := docs.GetDocument(context.TODO(), uuid.MustParse(id))
		assert.NoError(t, err)
		assert.NotEmpty(t, got.SearchIndexID)
		assert.NotNil(t, got.LastIndexedAt)
	}
}

func TestDocumentService_LifecycleInvalidatesCache(t *testing.T) {
	docs, mem, _ := setupServiceWithCache()

	doc, err := docs.CreateDocument(context.TODO(), createInput(uuid.New().String()))
	assert.NoError(t, err)
	assert.True(t, mem.Contains(doc.ID))

	err = docs.SoftDelete(context.TODO(), uuid.MustParse(doc.ID), "tester", "")
	assert.NoError(t, err)
	assert.False(t, mem.Contains(doc.ID))

	got, err := docs.GetDocument(context.TODO(), uuid.MustParse(doc.ID))
	assert.NoError(t, err)
	assert.True(t, got.IsDeleted)
}
