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

// GormStoreRepository implements storesync.StoreRepository using GORM
type GormStoreRepository struct {
	db *gorm.DB
}

// NewGormStoreRepository creates a new GormStoreRepository
func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// FindByInventoryOrgID finds a store by the inventory organization id
func (r *GormStoreRepository) FindByInventoryOrgID(ctx context.Context, inventoryOrgID string) (*storesync.Store, error) {
	return r.findOne(ctx, "inventory_org_id = ?", inventoryOrgID)
}

// FindByStorefrontStoreID finds a store by the storefront store id
func (r *GormStoreRepository) FindByStorefrontStoreID(ctx context.Context, storefrontStoreID int64) (*storesync.Store, error) {
	return r.findOne(ctx, "storefront_store_id = ?", storefrontStoreID)
}

func (r *GormStoreRepository) findOne(ctx context.Context, query string, arg any) (*storesync.Store, error) {
	var model models.StoreModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storesync.ErrStoreNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts a new store or updates an existing one
func (r *GormStoreRepository) Save(ctx context.Context, store *storesync.Store) error {
	var model models.StoreModel
	model.FromDomain(store)

	db := r.db.WithContext(ctx)
	var err error
	if store.IsNew() {
		err = db.Create(&model).Error
	} else {
		err = db.Save(&model).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: store %s/%d", shared.ErrAlreadyExists, store.InventoryOrgID, store.StorefrontStoreID)
		}
		return err
	}

	store.BaseEntity = model.BaseModel.ToDomain()
	store.Location = model.Location
	return nil
}

var _ storesync.StoreRepository = (*GormStoreRepository)(nil)
