package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/domain/commerce"
	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/infrastructure/persistence/models"
)

// GormMetaStore implements commerce.MetaStore using GORM. One row per
// (entity, entity_id, key); Set upserts on that composite key.
type GormMetaStore struct {
	db *gorm.DB
}

// NewGormMetaStore creates a new GormMetaStore
func NewGormMetaStore(db *gorm.DB) *GormMetaStore {
	return &GormMetaStore{db: db}
}

// Get returns the value for the key, or "" when absent
func (s *GormMetaStore) Get(ctx context.Context, entity commerce.EntityKind, entityID int64, key string) (string, error) {
	var model models.EntityMetaModel
	err := s.db.WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ? AND meta_key = ?", entity.String(), entityID, key).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return model.MetaValue, nil
}

// Set writes the value for the key, creating or replacing it
func (s *GormMetaStore) Set(ctx context.Context, entity commerce.EntityKind, entityID int64, key, value string) error {
	model := models.EntityMetaModel{
		EntityKind: entity.String(),
		EntityID:   entityID,
		MetaKey:    key,
		MetaValue:  value,
		UpdatedAt:  time.Now(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_kind"}, {Name: "entity_id"}, {Name: "meta_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"meta_value", "updated_at"}),
		}).
		Create(&model).Error
}

// Delete removes the key; deleting an absent key is not an error
func (s *GormMetaStore) Delete(ctx context.Context, entity commerce.EntityKind, entityID int64, key string) error {
	return s.db.WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ? AND meta_key = ?", entity.String(), entityID, key).
		Delete(&models.EntityMetaModel{}).Error
}

// Ensure GormMetaStore implements MetaStore
var _ commerce.MetaStore = (*GormMetaStore)(nil)
