package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/storesync"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// storefrontAck is the body returned for every readable storefront event
const storefrontAck = "ok"

// OrderEventHandler processes a storefront order event without failing.
// *syncapp.OrderLifecycleService implements it.
type OrderEventHandler interface {
	HandleEvent(ctx context.Context, event *storesync.StorefrontEvent, rawBody []byte)
}

// StorefrontWebhookHandler receives order events from the storefront
type StorefrontWebhookHandler struct {
	BaseHandler
	events OrderEventHandler
}

// NewStorefrontWebhookHandler creates a new StorefrontWebhookHandler
func NewStorefrontWebhookHandler(events OrderEventHandler) *StorefrontWebhookHandler {
	return &StorefrontWebhookHandler{events: events}
}

// Receive handles POST /storefront-webhooks/sales. Only an unreadable body
// is rejected; processing failures are logged by the order handler and the
// event is acknowledged so the storefront does not retry it.
//
// @ID           receiveStorefrontWebhook
// @Summary      Receive a storefront order event
// @Description  Creates, confirms or voids the matching inventory sales order
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.StatusResponse
// @Failure      400 {object} dto.Response
// @Failure      413 {object} dto.Response
// @Router       /storefront-webhooks/sales [post]
func (h *StorefrontWebhookHandler) Receive(c *gin.Context) {
	body, err := readWebhookBody(c)
	if err != nil {
		h.handleBodyError(c, err)
		return
	}

	event, err := storesync.ParseStorefrontEvent(body)
	if err != nil {
		logger.GetGinLogger(c).Warn("Unreadable storefront event", zap.Error(err))
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid JSON body")
		return
	}

	h.events.HandleEvent(c.Request.Context(), event, body)
	h.Acknowledge(c, storefrontAck)
}
