package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/devlink-app/devlink/internal/domain"
	"github.com/devlink-app/devlink/internal/infra/database/models"
	"github.com/devlink-app/devlink/store"
)

// DocumentStore implements store.Store on a single Postgres table with
// JSONB field extraction. Result sets carry no ordering guarantee.
type DocumentStore struct {
	db *gorm.DB
}

func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (r *DocumentStore) GetByID(ctx context.Context, collection, id string) (store.Document, error) {
	var row models.Document
	err := r.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Take(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return store.Document{}, domain.NotFoundError{Resource: collection + " document"}
		}
		return store.Document{}, err
	}
	return toDocument(row), nil
}

func (r *DocumentStore) QueryByEquality(ctx context.Context, collection, field, value string) ([]store.Document, error) {
	var rows []models.Document
	err := r.db.WithContext(ctx).
		Where("collection = ? AND value::jsonb ->> ? = ?", collection, field, value).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDocuments(rows), nil
}

func (r *DocumentStore) QueryByMembership(ctx context.Context, collection, field string, values []string) ([]store.Document, error) {
	if len(values) == 0 {
		return []store.Document{}, nil
	}
	if len(values) > store.MembershipLimit {
		return nil, store.ErrTooManyValues
	}

	var rows []models.Document
	err := r.db.WithContext(ctx).
		Where("collection = ? AND value::jsonb ->> ? IN ?", collection, field, values).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDocuments(rows), nil
}

func (r *DocumentStore) ListAll(ctx context.Context, collection string) ([]store.Document, error) {
	var rows []models.Document
	err := r.db.WithContext(ctx).
		Where("collection = ?", collection).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDocuments(rows), nil
}

func (r *DocumentStore) Add(ctx context.Context, collection, id string, value any) error {
	serialized, err := json.Marshal(value)
	if err != nil {
		return err
	}

	row := models.Document{
		Collection: collection,
		DocID:      id,
		Value:      string(serialized),
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoNothing: true,
	}).Create(&row).Error
}

func (r *DocumentStore) Update(ctx context.Context, collection, id string, value any) error {
	serialized, err := json.Marshal(value)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("collection = ? AND doc_id = ?", collection, id).
		Updates(map[string]any{
			"value":  string(serialized),
			"m_date": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: collection + " document"}
	}
	return nil
}

func (r *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	return r.db.WithContext(ctx).
		Delete(&models.Document{}, "collection = ? AND doc_id = ?", collection, id).Error
}

func toDocument(row models.Document) store.Document {
	return store.Document{
		ID:   row.DocID,
		Data: json.RawMessage(row.Value),
	}
}

func toDocuments(rows []models.Document) []store.Document {
	docs := make([]store.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, toDocument(row))
	}
	return docs
}

var _ store.Store = (*DocumentStore)(nil)
