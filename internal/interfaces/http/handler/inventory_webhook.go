package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	syncapp "github.com/storesync/backend/internal/application/storesync"
	"github.com/storesync/backend/internal/domain/storesync"
	"github.com/storesync/backend/internal/infrastructure/logger"
)

// Inventory webhook headers
const (
	HeaderInventorySignature    = "x-zoho-webhook-signature"
	HeaderInventoryOrganization = "x-com-zoho-organizationid"
	HeaderWebhookDeliveryID     = "X-Webhook-Delivery-Id"
)

// StockReconciler applies an inventory webhook delivery.
// *syncapp.StockReconciliationService implements it.
type StockReconciler interface {
	Reconcile(ctx context.Context, d syncapp.Delivery) (*syncapp.ReconcileResult, error)
}

// InventoryWebhookHandler receives stock-moving webhooks from the inventory
// platform. These endpoints are authenticated by HMAC signature only.
type InventoryWebhookHandler struct {
	BaseHandler
	reconciler StockReconciler
}

// NewInventoryWebhookHandler creates a new InventoryWebhookHandler
func NewInventoryWebhookHandler(reconciler StockReconciler) *InventoryWebhookHandler {
	return &InventoryWebhookHandler{reconciler: reconciler}
}

// Receive handles POST /inventory-webhooks/:category.
//
// A storefront failure in the middle of a batch is still answered with 200
// and status "partial": adjustments already applied are kept, and a retry
// by the sender would apply them twice.
//
// @ID           receiveInventoryWebhook
// @Summary      Receive an inventory webhook
// @Description  Verifies the HMAC signature and applies the stock movement to the storefront
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        category                   path    string  true   "Webhook category" Enums(inventory-adjustment, sales, purchase, transfer)
// @Param        x-zoho-webhook-signature   header  string  true   "Hex HMAC-SHA256 of the raw body"
// @Param        x-com-zoho-organizationid  header  string  true   "Inventory organization id"
// @Param        X-Webhook-Delivery-Id      header  string  false  "Delivery id used for deduplication"
// @Success      200 {object} dto.StatusResponse
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      413 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /inventory-webhooks/{category} [post]
func (h *InventoryWebhookHandler) Receive(c *gin.Context) {
	category, err := storesync.ParseCategory(c.Param("category"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	body, err := readWebhookBody(c)
	if err != nil {
		h.handleBodyError(c, err)
		return
	}

	result, err := h.reconciler.Reconcile(c.Request.Context(), syncapp.Delivery{
		Category:       category,
		OrganizationID: c.GetHeader(HeaderInventoryOrganization),
		Signature:      c.GetHeader(HeaderInventorySignature),
		DeliveryID:     c.GetHeader(HeaderWebhookDeliveryID),
		Body:           body,
	})
	if err != nil {
		if result != nil && result.Status == syncapp.StatusPartial {
			logger.GetGinLogger(c).Error("Inventory webhook partially applied",
				zap.String("category", category.String()),
				zap.Int("applied", result.Applied),
				zap.Error(err))
			_ = c.Error(err)
			h.Acknowledge(c, string(result.Status))
			return
		}
		_ = c.Error(err)
		h.HandleError(c, err)
		return
	}

	h.Acknowledge(c, string(result.Status))
}
