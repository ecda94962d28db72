package model

import (
	"encoding/json"
	"time"
)

// Document is a single version row of a logical document. Rows sharing the
// same lineage root id form one lineage; at most one live row per lineage
// carries IsCurrentVersion.
type Document struct {
	ID             string `gorm:"primaryKey;uuid;not null"`
	TenantID       string `gorm:"uuid;not null;index:idx_documents_tenant_hash,priority:1;index:idx_documents_tenant_indexing,priority:1"`
	DocumentTypeID string `gorm:"uuid;not null;index"`

	// LineageRootID is empty when the row is itself the lineage root.
	// Non-root versions always reference the root, never their immediate
	// predecessor.
	LineageRootID    string `gorm:"uuid;index"`
	Version          int64  `gorm:"not null;default:1"`
	IsCurrentVersion bool   `gorm:"not null;default:true"`

	ContentHash      string `gorm:"index:idx_documents_tenant_hash,priority:2"`
	BlobPath         string `gorm:"not null"`
	MimeType         string
	FileSizeBytes    int64
	OriginalFileName string

	Title       string `gorm:"not null"`
	Description string
	Meta        string // opaque serialized blob, not interpreted by the core
	Tags        string // opaque serialized list
	Compression string // the compression algorithm used for Meta and Tags

	SearchIndexID string
	LastIndexedAt *time.Time `gorm:"index:idx_documents_tenant_indexing,priority:2"`

	IsDeleted     bool `gorm:"not null;default:false"`
	DeletedAt     *time.Time
	DeletedBy     string
	DeletedReason string

	IsArchived bool `gorm:"not null;default:false"`
	ArchivedAt *time.Time

	CreatedAt time.Time
	CreatedBy string `gorm:"not null"`
	// UpdatedAt stays null until the first mutation; the store stamps it
	// explicitly so gorm's conventional auto-stamping must stay off.
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false;index:idx_documents_tenant_indexing,priority:3"`
	UpdatedBy string
}

// LineageID returns the id of the lineage this row belongs to.
func (d *Document) LineageID() string {
	if d.LineageRootID == "" {
		return d.ID
	}
	return d.LineageRootID
}

// IsRoot reports whether this row is the first version of its lineage.
func (d *Document) IsRoot() bool {
	return d.LineageRootID == ""
}

// NeedsIndexing reports whether the search index representation of the
// document is stale relative to its last change. Document type gating is
// applied by the caller.
func (d *Document) NeedsIndexing() bool {
	if d.LastIndexedAt == nil {
		return true
	}
	return d.UpdatedAt != nil && d.UpdatedAt.After(*d.LastIndexedAt)
}

func (d *Document) MarshalBinary() ([]byte, error) {
	return json.Marshal(d)
}

func (d *Document) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, d)
}
