package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/emrgen/docrepo/internal/blob"
	"github.com/emrgen/docrepo/internal/cache"
	"github.com/emrgen/docrepo/internal/compress"
	"github.com/emrgen/docrepo/internal/doctype"
	"github.com/emrgen/docrepo/internal/model"
	"github.com/emrgen/docrepo/internal/queue"
	"github.com/emrgen/docrepo/internal/search"
	"github.com/emrgen/docrepo/internal/store"
)

const (
	// MaxAccessLinkTTL is the hard ceiling on temporary access link
	// lifetimes, regardless of what the caller requests or what the blob
	// store itself would allow.
	MaxAccessLinkTTL = 24 * time.Hour
	// DefaultAccessLinkTTL is used when the caller does not request a ttl.
	DefaultAccessLinkTTL = 15 * time.Minute
)

// NewDocumentService creates a new DocumentService. The cache and the queue
// are optional; passing nil disables the best-effort paths that use them.
func NewDocumentService(compress compress.Compress, store store.Store, blobs blob.Store, indexer search.Indexer, types doctype.Registry, cache cache.DocumentCache, events queue.DocumentQueue) *DocumentService {
	return &DocumentService{
		compress: compress,
		store:    store,
		blobs:    blobs,
		indexer:  indexer,
		types:    types,
		cache:    cache,
		events:   events,
	}
}

// DocumentService orchestrates the document store with the blob store and
// the search indexer. Store writes are authoritative; indexing, caching and
// event publication are best-effort and recovered by the reconciliation
// job.
type DocumentService struct {
	compress compress.Compress
	store    store.Store
	blobs    blob.Store
	indexer  search.Indexer
	types    doctype.Registry
	cache    cache.DocumentCache
	events   queue.DocumentQueue

	lineageLocks lineageLocks
}

// CreateDocumentInput carries everything needed to create a lineage root.
// ContentHash is supplied by the caller; the core never computes it.
type CreateDocumentInput struct {
	DocumentID       string // optional, assigned when empty
	TenantID         string
	DocumentTypeID   string
	Title            string
	Description      string
	Meta             string
	Tags             string
	Content          io.Reader
	ContentSize      int64
	ContentHash      string
	MimeType         string
	OriginalFileName string
	CreatedBy        string
}

func (in *CreateDocumentInput) validate() error {
	switch {
	case in.TenantID == "":
		return validationError("tenant id")
	case in.DocumentTypeID == "":
		return validationError("document type id")
	case in.Title == "":
		return validationError("title")
	case in.CreatedBy == "":
		return validationError("created by")
	case in.Content == nil:
		return validationError("content")
	}

	if _, err := uuid.Parse(in.TenantID); err != nil {
		return invalidIDError("tenant id")
	}
	if _, err := uuid.Parse(in.DocumentTypeID); err != nil {
		return invalidIDError("document type id")
	}
	if in.DocumentID != "" {
		if _, err := uuid.Parse(in.DocumentID); err != nil {
			return invalidIDError("document id")
		}
	}

	return nil
}

// CreateDocument uploads the content, persists the lineage root as version
// 1 and submits it for indexing best-effort.
func (d *DocumentService) CreateDocument(ctx context.Context, in *CreateDocumentInput) (*model.Document, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	metaData, err := d.compress.Encode([]byte(in.Meta))
	if err != nil {
		return nil, err
	}
	tagData, err := d.compress.Encode([]byte(in.Tags))
	if err != nil {
		return nil, err
	}

	docID := in.DocumentID
	if docID == "" {
		docID = uuid.New().String()
	}

	blobPath, err := d.blobs.Upload(ctx, tenantContainer(in.TenantID), docID, in.Content, in.ContentSize, in.MimeType)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		ID:               docID,
		TenantID:         in.TenantID,
		DocumentTypeID:   in.DocumentTypeID,
		Version:          1,
		IsCurrentVersion: true,
		ContentHash:      in.ContentHash,
		BlobPath:         blobPath,
		MimeType:         in.MimeType,
		FileSizeBytes:    in.ContentSize,
		OriginalFileName: in.OriginalFileName,
		Title:            in.Title,
		Description:      in.Description,
		Meta:             string(metaData),
		Tags:             string(tagData),
		Compression:      d.compress.Name(),
		CreatedBy:        in.CreatedBy,
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := d.store.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	d.tryIndex(ctx, doc)
	d.cacheSet(ctx, doc)
	d.publishEvent(ctx, queue.DocumentCreated, doc)

	return doc, nil
}

// GetDocument retrieves a document row by id, regardless of lifecycle
// flags. The cache is consulted first, best-effort.
func (d *DocumentService) GetDocument(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	if d.cache != nil {
		doc, err := d.cache.GetDocument(ctx, id)
		if err != nil {
			logrus.Warnf("cache read failed for document %s: %v", id, err)
		} else if doc != nil {
			return doc, nil
		}
	}

	doc, err := d.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	d.cacheSet(ctx, doc)
	return doc, nil
}

// UpdateDocumentInput carries an in-place metadata change of a version row.
// Empty fields keep their stored value.
type UpdateDocumentInput struct {
	DocumentID  string
	Title       string
	Description string
	Meta        string
	Tags        string
	UpdatedBy   string
}

func (in *UpdateDocumentInput) validate() error {
	switch {
	case in.DocumentID == "":
		return validationError("document id")
	case in.UpdatedBy == "":
		return validationError("updated by")
	}
	return nil
}

// UpdateDocument changes title, description or the opaque blobs of a version
// row in place. The row becomes stale relative to the index and is
// resubmitted best-effort.
func (d *DocumentService) UpdateDocument(ctx context.Context, in *UpdateDocumentInput) (*model.Document, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	docID, err := uuid.Parse(in.DocumentID)
	if err != nil {
		return nil, invalidIDError("document id")
	}

	doc, err := d.store.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.IsDeleted {
		return nil, ErrDocumentDeleted
	}

	if in.Title != "" {
		doc.Title = in.Title
	}
	if in.Description != "" {
		doc.Description = in.Description
	}

	// meta and tags share one codec per row, so changing either re-encodes
	// both with the service codec
	if in.Meta != "" || in.Tags != "" {
		meta, err := d.DecodeMeta(doc)
		if err != nil {
			return nil, err
		}
		tags, err := d.DecodeTags(doc)
		if err != nil {
			return nil, err
		}
		if in.Meta != "" {
			meta = in.Meta
		}
		if in.Tags != "" {
			tags = in.Tags
		}

		metaData, err := d.compress.Encode([]byte(meta))
		if err != nil {
			return nil, err
		}
		tagData, err := d.compress.Encode([]byte(tags))
		if err != nil {
			return nil, err
		}

		doc.Meta = string(metaData)
		doc.Tags = string(tagData)
		doc.Compression = d.compress.Name()
	}

	doc.UpdatedBy = in.UpdatedBy

	if err := d.store.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}

	d.tryIndex(ctx, doc)
	d.cacheSet(ctx, doc)
	d.publishEvent(ctx, queue.DocumentUpdated, doc)

	return doc, nil
}

// ListDocuments lists the documents of a tenant. Soft-deleted rows are
// excluded unless includeDeleted is set.
func (d *DocumentService) ListDocuments(ctx context.Context, tenantID uuid.UUID, includeDeleted bool) ([]*model.Document, int64, error) {
	return d.store.ListDocuments(ctx, tenantID, includeDeleted)
}

// ListDocumentsByType lists the documents of a document type.
func (d *DocumentService) ListDocumentsByType(ctx context.Context, typeID uuid.UUID, includeDeleted bool) ([]*model.Document, error) {
	return d.store.ListDocumentsByType(ctx, typeID, includeDeleted)
}

// GetCurrentVersion resolves the single current version of a lineage.
func (d *DocumentService) GetCurrentVersion(ctx context.Context, lineageRootID uuid.UUID) (*model.Document, error) {
	return d.store.GetCurrentVersion(ctx, lineageRootID)
}

// ListVersions lists every version of a lineage, newest first, root
// included.
func (d *DocumentService) ListVersions(ctx context.Context, lineageRootID uuid.UUID) ([]*model.Document, error) {
	return d.store.ListVersions(ctx, lineageRootID)
}

// CountDocuments counts the documents of a tenant.
func (d *DocumentService) CountDocuments(ctx context.Context, tenantID uuid.UUID, includeDeleted bool) (int64, error) {
	return d.store.CountDocuments(ctx, tenantID, includeDeleted)
}

// FindDuplicates returns the documents of a tenant carrying exactly the
// given content hash. Advisory only; creation is never blocked because a
// duplicate exists.
func (d *DocumentService) FindDuplicates(ctx context.Context, contentHash string, tenantID uuid.UUID) ([]*model.Document, error) {
	if contentHash == "" {
		return nil, nil
	}
	return d.store.ListDocumentsByContentHash(ctx, contentHash, tenantID)
}

// Download streams the content of a document version from the blob store.
func (d *DocumentService) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, *model.Document, error) {
	doc, err := d.store.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if doc.IsDeleted {
		return nil, nil, ErrDocumentDeleted
	}

	container, name := splitBlobPath(doc.BlobPath)
	r, err := d.blobs.Download(ctx, container, name)
	if err != nil {
		return nil, nil, err
	}

	return r, doc, nil
}

// DownloadCurrent streams the content of the current version of a lineage.
func (d *DocumentService) DownloadCurrent(ctx context.Context, lineageRootID uuid.UUID) (io.ReadCloser, *model.Document, error) {
	doc, err := d.store.GetCurrentVersion(ctx, lineageRootID)
	if err != nil {
		return nil, nil, err
	}
	if doc.IsDeleted {
		return nil, nil, ErrDocumentDeleted
	}

	container, name := splitBlobPath(doc.BlobPath)
	r, err := d.blobs.Download(ctx, container, name)
	if err != nil {
		return nil, nil, err
	}

	return r, doc, nil
}

// IssueTemporaryAccessLink returns a time-limited URL for the document
// content. The requested ttl is clamped to MaxAccessLinkTTL.
func (d *DocumentService) IssueTemporaryAccessLink(ctx context.Context, id uuid.UUID, requestedTTL time.Duration) (string, error) {
	doc, err := d.store.GetDocument(ctx, id)
	if err != nil {
		return "", err
	}
	if doc.IsDeleted {
		return "", ErrDocumentDeleted
	}

	ttl := requestedTTL
	if ttl <= 0 {
		ttl = DefaultAccessLinkTTL
	}
	if ttl > MaxAccessLinkTTL {
		logrus.Infof("clamping access link ttl from %s to %s for document %s", requestedTTL, MaxAccessLinkTTL, doc.ID)
		ttl = MaxAccessLinkTTL
	}

	container, name := splitBlobPath(doc.BlobPath)
	return d.blobs.PresignGet(ctx, container, name, ttl)
}

// DecodeMeta returns the metadata blob of a document, decoded with the
// codec it was stored with.
func (d *DocumentService) DecodeMeta(doc *model.Document) (string, error) {
	data, err := compress.ByName(doc.Compression).Decode([]byte(doc.Meta))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeTags returns the tags blob of a document, decoded with the codec it
// was stored with.
func (d *DocumentService) DecodeTags(doc *model.Document) (string, error) {
	data, err := compress.ByName(doc.Compression).Decode([]byte(doc.Tags))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func tenantContainer(tenantID string) string {
	return "tenant-" + tenantID
}

func splitBlobPath(path string) (container, name string) {
	container, name, _ = strings.Cut(path, "/")
	return container, name
}

// tryIndex submits a document for indexing and records the completion.
// Failures are logged, never surfaced; the reconciliation job retries
// later.
func (d *DocumentService) tryIndex(ctx context.Context, doc *model.Document) {
	indexable, err := d.types.Indexable(ctx, doc.DocumentTypeID)
	if err != nil {
		logrus.Errorf("indexability lookup failed for type %s: %v", doc.DocumentTypeID, err)
		return
	}
	if !indexable {
		return
	}

	docID, err := uuid.Parse(doc.ID)
	if err != nil {
		logrus.Errorf("unparseable id on document row %q: %v", doc.ID, err)
		return
	}

	indexID, err := d.indexer.IndexOne(ctx, doc)
	if err != nil {
		logrus.Errorf("indexing failed for document %s: %v", doc.ID, err)
		return
	}

	now := time.Now().UTC()
	if err := d.store.MarkDocumentIndexed(ctx, docID, indexID, now); err != nil {
		logrus.Errorf("recording index completion failed for document %s: %v", doc.ID, err)
		return
	}

	doc.SearchIndexID = indexID
	doc.LastIndexedAt = &now
}

func (d *DocumentService) cacheSet(ctx context.Context, doc *model.Document) {
	if d.cache == nil {
		return
	}
	if err := d.cache.SetDocument(ctx, doc); err != nil {
		logrus.Warnf("cache write failed for document %s: %v", doc.ID, err)
	}
}

func (d *DocumentService) cacheDelete(ctx context.Context, id string) {
	if d.cache == nil {
		return
	}

	docID, err := uuid.Parse(id)
	if err != nil {
		logrus.Errorf("unparseable id on document row %q: %v", id, err)
		return
	}
	if err := d.cache.DeleteDocument(ctx, docID); err != nil {
		logrus.Warnf("cache invalidation failed for document %s: %v", id, err)
	}
}

func (d *DocumentService) publishEvent(ctx context.Context, kind queue.EventKind, doc *model.Document) {
	if d.events == nil {
		return
	}

	err := d.events.PublishChange(ctx, &queue.DocumentEvent{
		Kind:          kind,
		DocumentID:    doc.ID,
		TenantID:      doc.TenantID,
		LineageRootID: doc.LineageRootID,
		Version:       doc.Version,
		At:            time.Now().UTC(),
	})
	if err != nil {
		logrus.Warnf("event publish failed for document %s: %v", doc.ID, err)
	}
}
