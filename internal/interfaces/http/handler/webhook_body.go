package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storesync/backend/internal/interfaces/http/dto"
	"github.com/storesync/backend/internal/interfaces/http/middleware"
)

// MaxWebhookPayloadSize bounds a webhook body on routes without a
// BodyLimit middleware.
const MaxWebhookPayloadSize = 1 << 20

var errPayloadTooLarge = errors.New("webhook payload too large")

// readWebhookBody reads the raw request body. Signature checks need the
// exact bytes, so the body is never bound through gin.
func readWebhookBody(c *gin.Context) ([]byte, error) {
	limit := middleware.GetBodyLimit(c, MaxWebhookPayloadSize)
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, limit+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errPayloadTooLarge
		}
		return nil, err
	}
	if int64(len(payload)) > limit {
		return nil, errPayloadTooLarge
	}
	return payload, nil
}

// handleBodyError answers a failed readWebhookBody
func (h *BaseHandler) handleBodyError(c *gin.Context, err error) {
	if errors.Is(err, errPayloadTooLarge) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Payload too large")
		return
	}
	h.BadRequest(c, "Failed to read request body")
}
