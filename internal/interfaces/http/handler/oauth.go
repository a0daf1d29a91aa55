package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	syncapp "github.com/storesync/backend/internal/application/storesync"
	"github.com/storesync/backend/internal/interfaces/http/middleware"
)

// InventoryAuthFlow runs the inventory platform's OAuth onboarding.
// *syncapp.OAuthService implements it.
type InventoryAuthFlow interface {
	AuthorizationURL(ctx context.Context, organizationID string, scopes []string) (string, error)
	Callback(ctx context.Context, req syncapp.CallbackRequest) (*syncapp.CallbackResult, error)
}

// OAuthHandler serves the consent redirect and the OAuth callback
type OAuthHandler struct {
	BaseHandler
	flow InventoryAuthFlow
}

// NewOAuthHandler creates a new OAuthHandler
func NewOAuthHandler(flow InventoryAuthFlow) *OAuthHandler {
	return &OAuthHandler{flow: flow}
}

// AuthorizeRequest is the query of GET /auth/inventory
type AuthorizeRequest struct {
	OrganizationID string `form:"organization_id" binding:"required,max=64"`
	// Scopes may be repeated, comma-joined or both
	Scopes []string `form:"scopes" binding:"max=32,dive,max=512"`
}

// CallbackRequest is the query the inventory platform redirects back with
type CallbackRequest struct {
	Code     string `form:"code" binding:"max=512"`
	Location string `form:"location" binding:"max=16"`
	State    string `form:"state" binding:"required"`
	Error    string `form:"error" binding:"max=256"`
}

// CallbackResponse describes the stored credentials
type CallbackResponse struct {
	StoreID        int64     `json:"store_id"`
	OrganizationID string    `json:"organization_id"`
	Location       string    `json:"location"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Authorize redirects the operator to the consent page
//
// @ID           authorizeInventory
// @Summary      Start inventory OAuth onboarding
// @Description  Redirects to the inventory platform consent page for the organization
// @Tags         auth
// @Param        organization_id  query  string    true   "Inventory organization id"
// @Param        scopes           query  []string  false  "OAuth scopes; repeated or comma-joined" collectionFormat(multi)
// @Success      302
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /auth/inventory [get]
func (h *OAuthHandler) Authorize(c *gin.Context) {
	var req AuthorizeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	target, err := h.flow.AuthorizationURL(c.Request.Context(), req.OrganizationID, splitScopes(req.Scopes))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// Callback stores the token pair granted for the organization
//
// @ID           inventoryOAuthCallback
// @Summary      Complete inventory OAuth onboarding
// @Description  Exchanges the authorization code and stores the token pair
// @Tags         auth
// @Produce      json
// @Param        code      query  string  false  "Authorization code"
// @Param        location  query  string  false  "Data center of the organization"
// @Param        state     query  string  true   "Signed state issued by the authorize step"
// @Param        error     query  string  false  "Error reported by the consent page"
// @Success      200 {object} dto.Response{data=CallbackResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /auth/inventory/callback [get]
func (h *OAuthHandler) Callback(c *gin.Context) {
	var req CallbackRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.flow.Callback(c.Request.Context(), syncapp.CallbackRequest{
		Code:     req.Code,
		Location: req.Location,
		State:    req.State,
		Error:    req.Error,
	})
	if err != nil {
		_ = c.Error(err)
		h.HandleError(c, err)
		return
	}

	h.Success(c, CallbackResponse{
		StoreID:        result.StoreID,
		OrganizationID: result.OrganizationID,
		Location:       result.Location,
		ExpiresAt:      result.ExpiresAt,
	})
}

func splitScopes(values []string) []string {
	var scopes []string
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				scopes = append(scopes, s)
			}
		}
	}
	return scopes
}
