package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	syncapp "github.com/storesync/backend/internal/application/storesync"
	"github.com/storesync/backend/internal/domain/storesync"
	"github.com/storesync/backend/internal/interfaces/http/dto"
)

const adjustmentBody = `{"inventory_adjustment":{"adjustment_type":"quantity","line_items":[{"item_id":"9001","quantity_adjusted":5}]}}`

func newInventoryWebhookRouter(r StockReconciler) *gin.Engine {
	router := gin.New()
	router.POST("/inventory-webhooks/:category", NewInventoryWebhookHandler(r).Receive)
	return router
}

func postInventoryWebhook(router *gin.Engine, category, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/inventory-webhooks/"+category, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestInventoryWebhookHandler_Received(t *testing.T) {
	reconciler := new(mockReconciler)
	reconciler.On("Reconcile", mock.Anything, mock.MatchedBy(func(d syncapp.Delivery) bool {
		return d.Category == storesync.CategoryInventoryAdjustment &&
			d.OrganizationID == "org-1" &&
			d.Signature == "abc123" &&
			d.DeliveryID == "dlv-7" &&
			string(d.Body) == adjustmentBody
	})).Return(&syncapp.ReconcileResult{Status: syncapp.StatusReceived, Applied: 1}, nil)

	w := postInventoryWebhook(newInventoryWebhookRouter(reconciler), "inventory-adjustment", adjustmentBody, map[string]string{
		HeaderInventorySignature:    "abc123",
		HeaderInventoryOrganization: "org-1",
		HeaderWebhookDeliveryID:     "dlv-7",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"received"}`, w.Body.String())
	reconciler.AssertExpectations(t)
}

func TestInventoryWebhookHandler_Duplicate(t *testing.T) {
	reconciler := new(mockReconciler)
	reconciler.On("Reconcile", mock.Anything, mock.Anything).
		Return(&syncapp.ReconcileResult{Status: syncapp.StatusDuplicate}, nil)

	w := postInventoryWebhook(newInventoryWebhookRouter(reconciler), "sales", `{}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"duplicate"}`, w.Body.String())
}

func TestInventoryWebhookHandler_PartialIsAcknowledged(t *testing.T) {
	reconciler := new(mockReconciler)
	remoteErr := fmt.Errorf("%w: adjust_product_stock: %w", storesync.ErrRemoteCall, assert.AnError)
	reconciler.On("Reconcile", mock.Anything, mock.Anything).
		Return(&syncapp.ReconcileResult{Status: syncapp.StatusPartial, Applied: 1}, remoteErr)

	w := postInventoryWebhook(newInventoryWebhookRouter(reconciler), "purchase", `{}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"partial"}`, w.Body.String())
}

func TestInventoryWebhookHandler_UnknownCategory(t *testing.T) {
	reconciler := new(mockReconciler)

	w := postInventoryWebhook(newInventoryWebhookRouter(reconciler), "refunds", `{}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	reconciler.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
}

func TestInventoryWebhookHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"missing secret", storesync.ErrSignatureSecretMissing, http.StatusInternalServerError, dto.ErrCodeConfiguration},
		{"missing signature", storesync.ErrSignatureMissing, http.StatusBadRequest, dto.ErrCodeSignatureMissing},
		{"bad signature", storesync.ErrSignatureMismatch, http.StatusForbidden, dto.ErrCodeSignatureMismatch},
		{"missing organization", storesync.ErrOrganizationMissing, http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"store not found", storesync.ErrStoreNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"unsupported adjustment", storesync.ErrUnsupportedAdjustmentType, http.StatusBadRequest, dto.ErrCodeValidation},
		{"malformed payload", fmt.Errorf("%w: unexpected EOF", storesync.ErrMalformedPayload), http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"database failure", assert.AnError, http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reconciler := new(mockReconciler)
			reconciler.On("Reconcile", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := postInventoryWebhook(newInventoryWebhookRouter(reconciler), "transfer", `{}`, nil)

			assert.Equal(t, tt.wantCode, w.Code)
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
		})
	}
}

func TestInventoryWebhookHandler_PayloadTooLarge(t *testing.T) {
	reconciler := new(mockReconciler)

	body := `{"pad":"` + strings.Repeat("x", MaxWebhookPayloadSize) + `"}`
	w := postInventoryWebhook(newInventoryWebhookRouter(reconciler), "sales", body, nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	reconciler.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
}
