package storesync

import (
	"time"

	"github.com/storesync/backend/internal/domain/shared"
)

// DefaultLocation is the region tag assigned to stores that never went
// through the OAuth callback.
const DefaultLocation = "eu"

// Store joins one inventory organization with one storefront store.
// Both external identifiers are unique across all stores.
type Store struct {
	shared.BaseEntity
	InventoryOrgID    string
	StorefrontStoreID int64
	// Location is the inventory platform's data-center tag (eu, com, in, ...).
	Location string
}

// NewStore creates an unsaved store with the default location
func NewStore(inventoryOrgID string, storefrontStoreID int64) *Store {
	return &Store{
		InventoryOrgID:    inventoryOrgID,
		StorefrontStoreID: storefrontStoreID,
		Location:          DefaultLocation,
	}
}

// RegionLocation returns the location tag, falling back to the default.
func (s *Store) RegionLocation() string {
	if s.Location == "" {
		return DefaultLocation
	}
	return s.Location
}

// Item is one SKU known to both platforms, scoped to a store.
// (StoreID, InventoryItemID) is unique.
type Item struct {
	shared.BaseEntity
	StoreID          int64
	SKU              string
	InventoryItemID  string
	StorefrontItemID int64
}

// Order maps a storefront order to the sales order created for it on the
// inventory platform. One row per storefront order per store.
type Order struct {
	shared.BaseEntity
	StoreID           int64
	InventoryOrderID  string
	StorefrontOrderID string
}

// NewOrder creates an unsaved order mapping
func NewOrder(storeID int64, inventoryOrderID, storefrontOrderID string) *Order {
	now := time.Now()
	o := &Order{
		StoreID:           storeID,
		InventoryOrderID:  inventoryOrderID,
		StorefrontOrderID: storefrontOrderID,
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	return o
}
