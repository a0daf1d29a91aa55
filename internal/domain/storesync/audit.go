package storesync

import "time"

// WebhookAudit records one received delivery that resolved to a store.
// It anchors the adjustments applied while processing it.
type WebhookAudit struct {
	ID          int64
	StoreID     int64
	WebhookType WebhookCategory
	DeliveryID  string
	ReceivedAt  time.Time
	Items       []WebhookAuditItem
}

// WebhookAuditItem records one stock adjustment that the storefront accepted.
type WebhookAuditItem struct {
	ID             int64
	WebhookAuditID int64
	ItemID         int64
	Quantity       int64
	CreatedAt      time.Time
}

// NewWebhookAudit creates an unsaved audit record received now
func NewWebhookAudit(storeID int64, category WebhookCategory, deliveryID string) *WebhookAudit {
	return &WebhookAudit{
		StoreID:     storeID,
		WebhookType: category,
		DeliveryID:  deliveryID,
		ReceivedAt:  time.Now().UTC(),
	}
}

// NewItem creates a child row for an applied adjustment
func (a *WebhookAudit) NewItem(itemID, quantity int64) *WebhookAuditItem {
	return &WebhookAuditItem{
		WebhookAuditID: a.ID,
		ItemID:         itemID,
		Quantity:       quantity,
		CreatedAt:      time.Now().UTC(),
	}
}
