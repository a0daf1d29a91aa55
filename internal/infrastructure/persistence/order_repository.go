package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/storesync"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements storesync.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByStorefrontOrderID finds the order mapping for a storefront order
func (r *GormOrderRepository) FindByStorefrontOrderID(ctx context.Context, storeID int64, storefrontOrderID string) (*storesync.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND storefront_order_id = ?", storeID, storefrontOrderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: storefront order %s", storesync.ErrOrderNotFound, storefrontOrderID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a new order mapping. A second mapping for the same
// storefront order fails with shared.ErrAlreadyExists.
func (r *GormOrderRepository) Create(ctx context.Context, order *storesync.Order) error {
	var model models.OrderModel
	model.FromDomain(order)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: storefront order %s", shared.ErrAlreadyExists, order.StorefrontOrderID)
		}
		return err
	}

	order.BaseEntity = model.BaseModel.ToDomain()
	return nil
}

var _ storesync.OrderRepository = (*GormOrderRepository)(nil)
