package models

import (
	"time"

	"github.com/storesync/backend/internal/domain/storesync"
)

// WebhookAuditModel is the persistence model for WebhookAudit.
type WebhookAuditModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	StoreID     int64     `gorm:"not null;index:idx_webhook_audits_store_received,priority:1"`
	WebhookType string    `gorm:"type:varchar(32);not null"`
	DeliveryID  string    `gorm:"type:varchar(128);index"`
	ReceivedAt  time.Time `gorm:"not null;index:idx_webhook_audits_store_received,priority:2"`

	Items []WebhookAuditItemModel `gorm:"foreignKey:WebhookAuditID"`
}

// TableName returns the table name for GORM
func (WebhookAuditModel) TableName() string {
	return "webhook_audits"
}

// ToDomain converts the persistence model to a domain WebhookAudit
func (m *WebhookAuditModel) ToDomain() *storesync.WebhookAudit {
	audit := &storesync.WebhookAudit{
		ID:          m.ID,
		StoreID:     m.StoreID,
		WebhookType: storesync.WebhookCategory(m.WebhookType),
		DeliveryID:  m.DeliveryID,
		ReceivedAt:  m.ReceivedAt,
		Items:       make([]storesync.WebhookAuditItem, 0, len(m.Items)),
	}
	for i := range m.Items {
		audit.Items = append(audit.Items, *m.Items[i].ToDomain())
	}
	return audit
}

// FromDomain populates the model from a domain WebhookAudit, without children
func (m *WebhookAuditModel) FromDomain(a *storesync.WebhookAudit) {
	m.ID = a.ID
	m.StoreID = a.StoreID
	m.WebhookType = a.WebhookType.String()
	m.DeliveryID = a.DeliveryID
	m.ReceivedAt = a.ReceivedAt
}

// WebhookAuditItemModel is the persistence model for WebhookAuditItem.
type WebhookAuditItemModel struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	WebhookAuditID int64     `gorm:"not null;index"`
	ItemID         int64     `gorm:"not null;index"`
	Quantity       int64     `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WebhookAuditItemModel) TableName() string {
	return "webhook_audit_items"
}

// ToDomain converts the persistence model to a domain WebhookAuditItem
func (m *WebhookAuditItemModel) ToDomain() *storesync.WebhookAuditItem {
	return &storesync.WebhookAuditItem{
		ID:             m.ID,
		WebhookAuditID: m.WebhookAuditID,
		ItemID:         m.ItemID,
		Quantity:       m.Quantity,
		CreatedAt:      m.CreatedAt,
	}
}

// FromDomain populates the model from a domain WebhookAuditItem
func (m *WebhookAuditItemModel) FromDomain(i *storesync.WebhookAuditItem) {
	m.ID = i.ID
	m.WebhookAuditID = i.WebhookAuditID
	m.ItemID = i.ItemID
	m.Quantity = i.Quantity
	m.CreatedAt = i.CreatedAt
}
