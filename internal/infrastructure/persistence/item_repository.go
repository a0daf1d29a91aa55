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

// GormItemRepository implements storesync.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByInventoryItemID finds an item of a store by its inventory-platform id
func (r *GormItemRepository) FindByInventoryItemID(ctx context.Context, storeID int64, inventoryItemID string) (*storesync.Item, error) {
	var model models.ItemModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND inventory_item_id = ?", storeID, inventoryItemID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: inventory item %s", storesync.ErrItemNotFound, inventoryItemID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStorefrontItemID finds an item of a store by its storefront product id
func (r *GormItemRepository) FindByStorefrontItemID(ctx context.Context, storeID int64, storefrontItemID int64) (*storesync.Item, error) {
	var model models.ItemModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND storefront_item_id = ?", storeID, storefrontItemID).
		Order("id ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: storefront product %d", storesync.ErrItemNotFound, storefrontItemID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts a new item or updates an existing one
func (r *GormItemRepository) Save(ctx context.Context, item *storesync.Item) error {
	var model models.ItemModel
	model.FromDomain(item)

	db := r.db.WithContext(ctx)
	var err error
	if item.IsNew() {
		err = db.Create(&model).Error
	} else {
		err = db.Save(&model).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: item %s in store %d", shared.ErrAlreadyExists, item.InventoryItemID, item.StoreID)
		}
		return err
	}

	item.BaseEntity = model.BaseModel.ToDomain()
	return nil
}

var _ storesync.ItemRepository = (*GormItemRepository)(nil)
