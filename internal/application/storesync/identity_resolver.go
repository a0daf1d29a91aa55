package storesync

import (
	"context"

	"github.com/storesync/backend/internal/domain/storesync"
)

// IdentityResolver maps external identifiers to local rows. Lookups are
// read-only, so repeated calls return the same result.
type IdentityResolver struct {
	stores storesync.StoreRepository
	items  storesync.ItemRepository
}

// NewIdentityResolver creates a new IdentityResolver
func NewIdentityResolver(stores storesync.StoreRepository, items storesync.ItemRepository) *IdentityResolver {
	return &IdentityResolver{stores: stores, items: items}
}

// ResolveStore finds the store of an inventory organization.
// An empty organization id is a client error.
func (r *IdentityResolver) ResolveStore(ctx context.Context, inventoryOrgID string) (*storesync.Store, error) {
	if inventoryOrgID == "" {
		return nil, storesync.ErrOrganizationMissing
	}
	return r.stores.FindByInventoryOrgID(ctx, inventoryOrgID)
}

// ResolveStoreByStorefrontID finds the store of a storefront store id
func (r *IdentityResolver) ResolveStoreByStorefrontID(ctx context.Context, storefrontStoreID int64) (*storesync.Store, error) {
	if storefrontStoreID == 0 {
		return nil, storesync.ErrStoreNotFound
	}
	return r.stores.FindByStorefrontStoreID(ctx, storefrontStoreID)
}

// ResolveItem finds an item of store by its inventory item id
func (r *IdentityResolver) ResolveItem(ctx context.Context, store *storesync.Store, inventoryItemID string) (*storesync.Item, error) {
	if inventoryItemID == "" {
		return nil, storesync.ErrItemNotFound
	}
	return r.items.FindByInventoryItemID(ctx, store.ID, inventoryItemID)
}

// ResolveItemByStorefrontID finds an item of store by its storefront product id
func (r *IdentityResolver) ResolveItemByStorefrontID(ctx context.Context, store *storesync.Store, productID int64) (*storesync.Item, error) {
	return r.items.FindByStorefrontItemID(ctx, store.ID, productID)
}
