package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/emrgen/docrepo/internal/model"
)

type Store interface {
	DocumentStore
	CollectionLinkStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type DocumentStore interface {
	// CreateDocument creates a new document row, assigning the id when empty
	// and stamping CreatedAt.
	CreateDocument(ctx context.Context, doc *model.Document) error
	// GetDocument retrieves a document by ID regardless of lifecycle flags.
	GetDocument(ctx context.Context, id uuid.UUID) (*model.Document, error)
	// GetLiveDocument retrieves a document by ID, excluding deleted and
	// archived rows.
	GetLiveDocument(ctx context.Context, id uuid.UUID) (*model.Document, error)
	// ListDocuments retrieves the documents of a tenant.
	ListDocuments(ctx context.Context, tenantID uuid.UUID, includeDeleted bool) ([]*model.Document, int64, error)
	// ListDocumentsByType retrieves the documents of a document type.
	ListDocumentsByType(ctx context.Context, typeID uuid.UUID, includeDeleted bool) ([]*model.Document, error)
	// GetCurrentVersion retrieves the single current version of a lineage.
	GetCurrentVersion(ctx context.Context, lineageRootID uuid.UUID) (*model.Document, error)
	// ListVersions retrieves all versions of a lineage, root included,
	// ordered by version descending.
	ListVersions(ctx context.Context, lineageRootID uuid.UUID) ([]*model.Document, error)
	// ListDocumentsByContentHash retrieves the documents of a tenant sharing
	// an exact content hash.
	ListDocumentsByContentHash(ctx context.Context, hash string, tenantID uuid.UUID) ([]*model.Document, error)
	// MaxLineageVersion returns the highest version number present in a
	// lineage, or 0 when the lineage has no rows.
	MaxLineageVersion(ctx context.Context, lineageRootID uuid.UUID) (int64, error)
	// ClearCurrentVersion drops the current-version marker from every row of
	// a lineage.
	ClearCurrentVersion(ctx context.Context, lineageRootID uuid.UUID) error
	// UpdateDocument updates a document row, stamping UpdatedAt.
	UpdateDocument(ctx context.Context, doc *model.Document) error
	// SoftDeleteDocument marks a document deleted and stamps the deletion
	// fields. Deleting an already deleted document is a state conflict.
	SoftDeleteDocument(ctx context.Context, id uuid.UUID, deletedBy, reason string) error
	// RestoreDocument reverses a soft delete and clears the deletion stamps.
	RestoreDocument(ctx context.Context, id uuid.UUID) error
	// ArchiveDocument marks a document archived.
	ArchiveDocument(ctx context.Context, id uuid.UUID) error
	// UnarchiveDocument clears the archive marker.
	UnarchiveDocument(ctx context.Context, id uuid.UUID) error
	// MarkDocumentIndexed records a successful index submission. It touches
	// only the index bookkeeping columns so the document does not become
	// stale again from its own index completion.
	MarkDocumentIndexed(ctx context.Context, id uuid.UUID, indexID string, at time.Time) error
	// ListDocumentsNeedingIndexing retrieves live current versions whose
	// search index entry is missing or stale. Safe to poll repeatedly.
	ListDocumentsNeedingIndexing(ctx context.Context) ([]*model.Document, error)
	// CountDocuments counts the documents of a tenant.
	CountDocuments(ctx context.Context, tenantID uuid.UUID, includeDeleted bool) (int64, error)
	// EraseDocument removes a document row permanently.
	EraseDocument(ctx context.Context, id uuid.UUID) error
}

type CollectionLinkStore interface {
	// CreateCollectionLink adds a document to a collection.
	CreateCollectionLink(ctx context.Context, link *model.CollectionDocument) error
	// ListCollectionLinks retrieves the collection links of a document.
	ListCollectionLinks(ctx context.Context, docID uuid.UUID) ([]*model.CollectionDocument, error)
	// DeleteCollectionLinks removes every collection link of a document.
	DeleteCollectionLinks(ctx context.Context, docID uuid.UUID) error
}
