package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/emrgen/docrepo/internal/model"
	"github.com/emrgen/docrepo/internal/queue"
	"github.com/emrgen/docrepo/internal/store"
)

// lineageLocks serializes writers per lineage. Together with the store
// transaction this guarantees at most one current version per lineage even
// under concurrent version creation.
type lineageLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *lineageLocks) lock(lineageID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[lineageID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[lineageID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// CreateVersionInput carries everything needed to append a version to an
// existing lineage. LineageID may be the lineage root id or the id of any
// version row; the root is resolved internally.
type CreateVersionInput struct {
	LineageID        string
	DocumentID       string // optional, assigned when empty
	Title            string // empty inherits the current version's title
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

func (in *CreateVersionInput) validate() error {
	switch {
	case in.LineageID == "":
		return validationError("lineage id")
	case in.CreatedBy == "":
		return validationError("created by")
	case in.Content == nil:
		return validationError("content")
	}

	if in.DocumentID != "" {
		if _, err := uuid.Parse(in.DocumentID); err != nil {
			return invalidIDError("document id")
		}
	}

	return nil
}

// CreateVersion uploads the new content and appends a version row to the
// lineage: the previous current version loses its marker and the new row
// becomes current, in one transaction. Version numbers within a lineage
// strictly increase; tenant and document type are inherited from the root.
func (d *DocumentService) CreateVersion(ctx context.Context, in *CreateVersionInput) (*model.Document, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	lineageID, err := uuid.Parse(in.LineageID)
	if err != nil {
		return nil, invalidIDError("lineage id")
	}

	member, err := d.store.GetDocument(ctx, lineageID)
	if err != nil {
		return nil, err
	}
	rootID, err := uuid.Parse(member.LineageID())
	if err != nil {
		return nil, err
	}

	docID := in.DocumentID
	if docID == "" {
		docID = uuid.New().String()
	}

	// upload before taking the lineage lock; a failed upload leaves no row
	// behind and the blob store tolerates orphaned objects
	container := tenantContainer(member.TenantID)
	blobPath, err := d.blobs.Upload(ctx, container, docID, in.Content, in.ContentSize, in.MimeType)
	if err != nil {
		return nil, err
	}

	unlock := d.lineageLocks.lock(rootID.String())
	defer unlock()

	var doc *model.Document
	var previous *model.Document
	err = store.RetryingTransaction(ctx, d.store, func(tx store.Store) error {
		root, err := tx.GetDocument(ctx, rootID)
		if err != nil {
			return err
		}

		current, err := tx.GetCurrentVersion(ctx, rootID)
		if err != nil {
			if errors.Is(err, store.ErrDocumentNotFound) {
				return ErrNoCurrentVersion
			}
			return err
		}
		if current.IsDeleted {
			return ErrVersionFromDeleted
		}
		previous = current

		maxVersion, err := tx.MaxLineageVersion(ctx, rootID)
		if err != nil {
			return err
		}

		title := in.Title
		if title == "" {
			title = current.Title
		}

		metaData, err := d.compress.Encode([]byte(in.Meta))
		if err != nil {
			return err
		}
		tagData, err := d.compress.Encode([]byte(in.Tags))
		if err != nil {
			return err
		}

		doc = &model.Document{
			ID:               docID,
			TenantID:         root.TenantID,
			DocumentTypeID:   root.DocumentTypeID,
			LineageRootID:    root.ID,
			Version:          maxVersion + 1,
			IsCurrentVersion: true,
			ContentHash:      in.ContentHash,
			BlobPath:         blobPath,
			MimeType:         in.MimeType,
			FileSizeBytes:    in.ContentSize,
			OriginalFileName: in.OriginalFileName,
			Title:            title,
			Description:      in.Description,
			Meta:             string(metaData),
			Tags:             string(tagData),
			Compression:      d.compress.Name(),
			CreatedBy:        in.CreatedBy,
		}

		// no partial commits: bail out before the flip-and-insert
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := tx.ClearCurrentVersion(ctx, rootID); err != nil {
			return err
		}

		return tx.CreateDocument(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("document %s: created version %d in lineage %s", doc.ID, doc.Version, rootID)

	d.cacheDelete(ctx, previous.ID)
	d.tryIndex(ctx, doc)
	d.cacheSet(ctx, doc)
	d.publishEvent(ctx, queue.DocumentVersioned, doc)

	return doc, nil
}
