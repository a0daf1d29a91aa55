// Package storesync contains the Store Sync bounded context.
// It joins an inventory-of-record platform and a storefront platform through
// a local mapping store and turns webhook events from one side into
// mutations on the other.
//
// Key concepts:
//   - Store, Item, Order: rows joining the two platforms' identifier spaces
//   - OAuthToken: cached inventory-platform credentials per store
//   - WebhookAudit: one received delivery and the adjustments it produced
//   - PayloadNormalizer: per-category extraction of canonical line-item deltas
//   - SignatureValidator: HMAC authentication of inventory webhooks
//
// Design Pattern: Ports & Adapters
//   - Repository and gateway ports are defined here
//   - Adapters (gorm, HTTP clients) are in the infrastructure layer
package storesync
