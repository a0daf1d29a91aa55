package storesync

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSecrets() WebhookSecrets {
	return WebhookSecrets{
		InventoryAdjustment: "adj-secret",
		Sales:               "sales-secret",
		Purchase:            "purchase-secret",
		Transfer:            "transfer-secret",
	}
}

func TestValidSignature_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		body := make([]byte, rng.Intn(512))
		rng.Read(body)
		secret := make([]byte, 1+rng.Intn(32))
		rng.Read(secret)

		sig := ComputeSignature(body, string(secret))
		assert.True(t, ValidSignature(body, sig, string(secret)), "iteration %d", i)

		tampered := append([]byte{}, body...)
		tampered = append(tampered, byte(rng.Intn(256)))
		assert.False(t, ValidSignature(tampered, sig, string(secret)), "iteration %d", i)
	}
}

func TestValidSignature_KnownVector(t *testing.T) {
	// RFC 4231 test case 2
	sig := ComputeSignature([]byte("what do ya want for nothing?"), "Jefe")
	assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", sig)
}

func TestSignatureValidator_Validate(t *testing.T) {
	body := []byte(`{"inventory_adjustment":{}}`)
	validator := NewSignatureValidator(testSecrets())

	t.Run("accepts matching signature", func(t *testing.T) {
		sig := ComputeSignature(body, "adj-secret")
		require.NoError(t, validator.Validate(body, sig, CategoryInventoryAdjustment))
	})

	t.Run("uses the category secret", func(t *testing.T) {
		sig := ComputeSignature(body, "adj-secret")
		assert.ErrorIs(t, validator.Validate(body, sig, CategoryPurchase), ErrSignatureMismatch)
	})

	t.Run("rejects missing header", func(t *testing.T) {
		assert.ErrorIs(t, validator.Validate(body, "  ", CategorySales), ErrSignatureMissing)
	})

	t.Run("missing secret is a configuration error", func(t *testing.T) {
		v := NewSignatureValidator(WebhookSecrets{Sales: "x"})
		sig := ComputeSignature(body, "")
		assert.ErrorIs(t, v.Validate(body, sig, CategoryTransfer), ErrSignatureSecretMissing)
	})
}

func TestWebhookSecrets_Missing(t *testing.T) {
	s := WebhookSecrets{InventoryAdjustment: "a", Transfer: "t"}
	assert.Equal(t, []WebhookCategory{CategorySales, CategoryPurchase}, s.Missing())
	assert.Empty(t, testSecrets().Missing())
}
