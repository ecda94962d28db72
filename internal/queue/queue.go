package queue

import (
	"context"
	"time"
)

type EventKind string

const (
	DocumentCreated   EventKind = "document.created"
	DocumentVersioned EventKind = "document.versioned"
	DocumentUpdated   EventKind = "document.updated"
	DocumentDeleted   EventKind = "document.deleted"
	DocumentRestored  EventKind = "document.restored"
	DocumentArchived  EventKind = "document.archived"
	DocumentErased    EventKind = "document.erased"
)

// DocumentEvent describes a lifecycle change of a document row. Events are
// advisory, published best-effort after the change is committed.
type DocumentEvent struct {
	Kind          EventKind `json:"kind"`
	DocumentID    string    `json:"document_id"`
	TenantID      string    `json:"tenant_id"`
	LineageRootID string    `json:"lineage_root_id,omitempty"`
	Version       int64     `json:"version"`
	At            time.Time `json:"at"`
}

type DocumentQueue interface {
	// PublishChange appends a document lifecycle event to the queue.
	PublishChange(ctx context.Context, event *DocumentEvent) error
	Close() error
}
