package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/domain/commerce"
	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements commerce.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID, including its line items
func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*commerce.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commerce.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindIDsByAccount returns the ids of every order owned by the account
func (r *GormOrderRepository) FindIDsByAccount(ctx context.Context, accountID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("account_id = ?", accountID).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// AddNote appends an audit note to the order's history
func (r *GormOrderRepository) AddNote(ctx context.Context, orderID int64, note string) error {
	model := models.OrderNoteModel{
		OrderID:   orderID,
		Note:      note,
		CreatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// Ensure GormOrderRepository implements OrderRepository
var _ commerce.OrderRepository = (*GormOrderRepository)(nil)
