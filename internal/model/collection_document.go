package model

import "gorm.io/gorm"

// CollectionDocument links a document into a collection. Membership
// management lives outside this core; the rows only matter here because a
// permanent delete must remove them together with the document row.
type CollectionDocument struct {
	gorm.Model
	CollectionID string    `gorm:"primaryKey;uuid;not null;index:collection_id_index"`
	DocumentID   string    `gorm:"primaryKey;uuid;not null;index:collection_document_id_index"`
	TenantID     string    `gorm:"uuid;not null"`
	Document     *Document `gorm:"foreignKey:DocumentID;references:ID"`
}
