package models

import (
	"github.com/storesync/backend/internal/domain/storesync"
)

// StoreModel is the persistence model for the Store entity.
type StoreModel struct {
	BaseModel
	InventoryOrgID    string `gorm:"type:varchar(64);not null;uniqueIndex:uq_stores_inventory_org_id"`
	StorefrontStoreID int64  `gorm:"not null;uniqueIndex:uq_stores_storefront_store_id"`
	Location          string `gorm:"type:varchar(16);not null;default:'eu'"`
}

// TableName returns the table name for GORM
func (StoreModel) TableName() string {
	return "stores"
}

// ToDomain converts the persistence model to a domain Store
func (m *StoreModel) ToDomain() *storesync.Store {
	return &storesync.Store{
		BaseEntity:        m.BaseModel.ToDomain(),
		InventoryOrgID:    m.InventoryOrgID,
		StorefrontStoreID: m.StorefrontStoreID,
		Location:          m.Location,
	}
}

// FromDomain populates the model from a domain Store
func (m *StoreModel) FromDomain(s *storesync.Store) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.InventoryOrgID = s.InventoryOrgID
	m.StorefrontStoreID = s.StorefrontStoreID
	m.Location = s.RegionLocation()
}

// ItemModel is the persistence model for the Item entity.
type ItemModel struct {
	BaseModel
	StoreID          int64  `gorm:"not null;uniqueIndex:uq_items_store_inventory_item,priority:1;index:idx_items_store_storefront_item,priority:1"`
	SKU              string `gorm:"type:varchar(128)"`
	InventoryItemID  string `gorm:"type:varchar(64);not null;uniqueIndex:uq_items_store_inventory_item,priority:2"`
	StorefrontItemID int64  `gorm:"not null;index:idx_items_store_storefront_item,priority:2"`

	Store *StoreModel `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the persistence model to a domain Item
func (m *ItemModel) ToDomain() *storesync.Item {
	return &storesync.Item{
		BaseEntity:       m.BaseModel.ToDomain(),
		StoreID:          m.StoreID,
		SKU:              m.SKU,
		InventoryItemID:  m.InventoryItemID,
		StorefrontItemID: m.StorefrontItemID,
	}
}

// FromDomain populates the model from a domain Item
func (m *ItemModel) FromDomain(i *storesync.Item) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.StoreID = i.StoreID
	m.SKU = i.SKU
	m.InventoryItemID = i.InventoryItemID
	m.StorefrontItemID = i.StorefrontItemID
}

// OrderModel is the persistence model for the Order entity.
type OrderModel struct {
	BaseModel
	StoreID           int64  `gorm:"not null;uniqueIndex:uq_orders_store_storefront_order,priority:1"`
	InventoryOrderID  string `gorm:"type:varchar(64);not null"`
	StorefrontOrderID string `gorm:"type:varchar(64);not null;uniqueIndex:uq_orders_store_storefront_order,priority:2"`

	Store *StoreModel `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *storesync.Order {
	return &storesync.Order{
		BaseEntity:        m.BaseModel.ToDomain(),
		StoreID:           m.StoreID,
		InventoryOrderID:  m.InventoryOrderID,
		StorefrontOrderID: m.StorefrontOrderID,
	}
}

// FromDomain populates the model from a domain Order
func (m *OrderModel) FromDomain(o *storesync.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.StoreID = o.StoreID
	m.InventoryOrderID = o.InventoryOrderID
	m.StorefrontOrderID = o.StorefrontOrderID
}
