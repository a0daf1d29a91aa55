// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel shared by mapping rows
//   - store.go: stores, items, orders
//   - token.go: oauth_tokens
//   - webhook.go: webhook_audits, webhook_audit_items
package models
