package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/emrgen/docrepo/internal/model"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrDocumentNotFound
	}
	return err
}

func (g *GormStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	return g.db.WithContext(ctx).Create(doc).Error
}

func (g *GormStore) GetDocument(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	err := g.db.WithContext(ctx).Where("id = ?", id.String()).First(&doc).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}

func (g *GormStore) GetLiveDocument(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	err := g.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ? AND is_archived = ?", id.String(), false, false).
		First(&doc).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}

func (g *GormStore) ListDocuments(ctx context.Context, tenantID uuid.UUID, includeDeleted bool) ([]*model.Document, int64, error) {
	var docs []*model.Document
	q := g.db.WithContext(ctx).Where("tenant_id = ?", tenantID.String())
	if !includeDeleted {
		q = q.Where("is_deleted = ?", false)
	}

	var total int64
	if err := q.Model(&model.Document{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at desc").Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

func (g *GormStore) ListDocumentsByType(ctx context.Context, typeID uuid.UUID, includeDeleted bool) ([]*model.Document, error) {
	var docs []*model.Document
	q := g.db.WithContext(ctx).Where("document_type_id = ?", typeID.String())
	if !includeDeleted {
		q = q.Where("is_deleted = ?", false)
	}

	err := q.Order("created_at desc").Find(&docs).Error
	return docs, err
}

func (g *GormStore) GetCurrentVersion(ctx context.Context, lineageRootID uuid.UUID) (*model.Document, error) {
	var doc model.Document
	root := lineageRootID.String()
	err := g.db.WithContext(ctx).
		Where("(id = ? OR lineage_root_id = ?) AND is_current_version = ?", root, root, true).
		First(&doc).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}

func (g *GormStore) ListVersions(ctx context.Context, lineageRootID uuid.UUID) ([]*model.Document, error) {
	var docs []*model.Document
	root := lineageRootID.String()
	err := g.db.WithContext(ctx).
		Where("id = ? OR lineage_root_id = ?", root, root).
		Order("version desc").
		Find(&docs).Error
	return docs, err
}

func (g *GormStore) ListDocumentsByContentHash(ctx context.Context, hash string, tenantID uuid.UUID) ([]*model.Document, error) {
	if hash == "" {
		return nil, nil
	}

	var docs []*model.Document
	err := g.db.WithContext(ctx).
		Where("tenant_id = ? AND content_hash = ?", tenantID.String(), hash).
		Find(&docs).Error
	return docs, err
}

func (g *GormStore) MaxLineageVersion(ctx context.Context, lineageRootID uuid.UUID) (int64, error) {
	var max int64
	root := lineageRootID.String()
	err := g.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ? OR lineage_root_id = ?", root, root).
		Select("COALESCE(MAX(version), 0)").
		Scan(&max).Error
	return max, err
}

func (g *GormStore) ClearCurrentVersion(ctx context.Context, lineageRootID uuid.UUID) error {
	root := lineageRootID.String()
	return g.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("(id = ? OR lineage_root_id = ?) AND is_current_version = ?", root, root, true).
		Update("is_current_version", false).Error
}

func (g *GormStore) UpdateDocument(ctx context.Context, doc *model.Document) error {
	now := time.Now().UTC()
	doc.UpdatedAt = &now
	return g.db.WithContext(ctx).Save(doc).Error
}

func (g *GormStore) SoftDeleteDocument(ctx context.Context, id uuid.UUID, deletedBy, reason string) error {
	return g.transition(ctx, id, model.TransitionSoftDelete, func(doc *model.Document, now time.Time) {
		doc.IsDeleted = true
		doc.DeletedAt = &now
		doc.DeletedBy = deletedBy
		doc.DeletedReason = reason
	})
}

func (g *GormStore) RestoreDocument(ctx context.Context, id uuid.UUID) error {
	return g.transition(ctx, id, model.TransitionRestore, func(doc *model.Document, now time.Time) {
		doc.IsDeleted = false
		doc.DeletedAt = nil
		doc.DeletedBy = ""
		doc.DeletedReason = ""
	})
}

func (g *GormStore) ArchiveDocument(ctx context.Context, id uuid.UUID) error {
	return g.transition(ctx, id, model.TransitionArchive, func(doc *model.Document, now time.Time) {
		doc.IsArchived = true
		doc.ArchivedAt = &now
	})
}

func (g *GormStore) UnarchiveDocument(ctx context.Context, id uuid.UUID) error {
	return g.transition(ctx, id, model.TransitionUnarchive, func(doc *model.Document, now time.Time) {
		doc.IsArchived = false
		doc.ArchivedAt = nil
	})
}

// transition loads the row, validates the lifecycle transition against the
// transition table and applies the stamps. Illegal transitions surface a
// state conflict, never a silent success.
func (g *GormStore) transition(ctx context.Context, id uuid.UUID, t model.Transition, apply func(doc *model.Document, now time.Time)) error {
	doc, err := g.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	state := doc.State()
	next, ok := model.NextState(state, t)
	if !ok {
		logrus.Warnf("rejected %s on document %s in state %s", t, doc.ID, state)
		return conflictFor(t)
	}

	now := time.Now().UTC()
	apply(doc, now)
	doc.UpdatedAt = &now

	logrus.Infof("document %s: %s -> %s", doc.ID, state, next)
	return g.db.WithContext(ctx).Save(doc).Error
}

func conflictFor(t model.Transition) error {
	switch t {
	case model.TransitionSoftDelete:
		return ErrAlreadyDeleted
	case model.TransitionRestore:
		return ErrNotDeleted
	case model.TransitionArchive:
		return ErrAlreadyArchived
	case model.TransitionUnarchive:
		return ErrNotArchived
	default:
		return ErrStateConflict
	}
}

func (g *GormStore) MarkDocumentIndexed(ctx context.Context, id uuid.UUID, indexID string, at time.Time) error {
	res := g.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ?", id.String()).
		Updates(map[string]interface{}{
			"search_index_id": indexID,
			"last_indexed_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (g *GormStore) ListDocumentsNeedingIndexing(ctx context.Context) ([]*model.Document, error) {
	var docs []*model.Document
	err := g.db.WithContext(ctx).
		Where("is_deleted = ? AND is_current_version = ?", false, true).
		Where("last_indexed_at IS NULL OR (updated_at IS NOT NULL AND updated_at > last_indexed_at)").
		Find(&docs).Error
	return docs, err
}

func (g *GormStore) CountDocuments(ctx context.Context, tenantID uuid.UUID, includeDeleted bool) (int64, error) {
	var count int64
	q := g.db.WithContext(ctx).Model(&model.Document{}).Where("tenant_id = ?", tenantID.String())
	if !includeDeleted {
		q = q.Where("is_deleted = ?", false)
	}

	err := q.Count(&count).Error
	return count, err
}

func (g *GormStore) EraseDocument(ctx context.Context, id uuid.UUID) error {
	return g.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&model.Document{}).Error
}

func (g *GormStore) CreateCollectionLink(ctx context.Context, link *model.CollectionDocument) error {
	return g.db.WithContext(ctx).Create(link).Error
}

func (g *GormStore) ListCollectionLinks(ctx context.Context, docID uuid.UUID) ([]*model.CollectionDocument, error) {
	var links []*model.CollectionDocument
	err := g.db.WithContext(ctx).Where("document_id = ?", docID.String()).Find(&links).Error
	return links, err
}

func (g *GormStore) DeleteCollectionLinks(ctx context.Context, docID uuid.UUID) error {
	// hard delete; these rows go away together with the document row
	return g.db.WithContext(ctx).Unscoped().Where("document_id = ?", docID.String()).Delete(&model.CollectionDocument{}).Error
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
