package storesync

import "context"

// StoreRepository persists Store rows.
type StoreRepository interface {
	FindByInventoryOrgID(ctx context.Context, inventoryOrgID string) (*Store, error)
	FindByStorefrontStoreID(ctx context.Context, storefrontStoreID int64) (*Store, error)
	Save(ctx context.Context, store *Store) error
}

// ItemRepository persists Item rows. Lookups are always scoped to a store.
type ItemRepository interface {
	FindByInventoryItemID(ctx context.Context, storeID int64, inventoryItemID string) (*Item, error)
	FindByStorefrontItemID(ctx context.Context, storeID int64, storefrontItemID int64) (*Item, error)
	Save(ctx context.Context, item *Item) error
}

// OrderRepository persists Order rows.
type OrderRepository interface {
	FindByStorefrontOrderID(ctx context.Context, storeID int64, storefrontOrderID string) (*Order, error)
	Create(ctx context.Context, order *Order) error
}

// TokenRepository persists OAuthToken rows, one per store.
type TokenRepository interface {
	FindByStoreID(ctx context.Context, storeID int64) (*OAuthToken, error)
	// Upsert inserts the token or patches the existing row for the same store.
	Upsert(ctx context.Context, token *OAuthToken) error
}

// AuditRepository persists WebhookAudit rows and their children.
type AuditRepository interface {
	Create(ctx context.Context, audit *WebhookAudit) error
	AddItem(ctx context.Context, item *WebhookAuditItem) error
	FindByID(ctx context.Context, id int64) (*WebhookAudit, error)
}
