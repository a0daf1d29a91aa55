package storesync

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// WebhookSecrets holds the shared secret of each inventory webhook category.
type WebhookSecrets struct {
	InventoryAdjustment string
	Sales               string
	Purchase            string
	Transfer            string
}

// For returns the secret configured for category
func (s WebhookSecrets) For(category WebhookCategory) string {
	switch category {
	case CategoryInventoryAdjustment:
		return s.InventoryAdjustment
	case CategorySales:
		return s.Sales
	case CategoryPurchase:
		return s.Purchase
	case CategoryTransfer:
		return s.Transfer
	}
	return ""
}

// Missing lists the categories that have no secret configured
func (s WebhookSecrets) Missing() []WebhookCategory {
	var missing []WebhookCategory
	for _, c := range AllCategories() {
		if s.For(c) == "" {
			missing = append(missing, c)
		}
	}
	return missing
}

// SignatureValidator authenticates inventory webhooks with HMAC-SHA256.
type SignatureValidator struct {
	secrets WebhookSecrets
}

// NewSignatureValidator creates a validator for the given secrets
func NewSignatureValidator(secrets WebhookSecrets) *SignatureValidator {
	return &SignatureValidator{secrets: secrets}
}

// Validate checks headerSignature against the raw request body.
//
// Returns ErrSignatureSecretMissing when the category has no secret,
// ErrSignatureMissing when the header is empty and ErrSignatureMismatch
// when the digests differ.
func (v *SignatureValidator) Validate(rawBody []byte, headerSignature string, category WebhookCategory) error {
	secret := v.secrets.For(category)
	if secret == "" {
		return ErrSignatureSecretMissing
	}
	if strings.TrimSpace(headerSignature) == "" {
		return ErrSignatureMissing
	}
	if !ValidSignature(rawBody, headerSignature, secret) {
		return ErrSignatureMismatch
	}
	return nil
}

// ValidSignature reports whether signature is the hex HMAC-SHA256 of body
// keyed by secret. The comparison is constant time.
func ValidSignature(body []byte, signature, secret string) bool {
	expected := ComputeSignature(body, secret)
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}

// ComputeSignature returns the hex HMAC-SHA256 of body keyed by secret.
func ComputeSignature(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
