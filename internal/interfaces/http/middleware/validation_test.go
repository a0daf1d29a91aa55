package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storesync/backend/internal/interfaces/http/dto"
)

type authorizeQuery struct {
	OrganizationID string `form:"organization_id" binding:"required,max=64"`
	Location       string `form:"location" binding:"omitempty,oneof=eu us in au cn jp"`
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		var q authorizeQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	t.Run("reports form field names", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test?location=mars", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-42", resp.Error.RequestID)
		require.Len(t, resp.Error.Details, 2)

		fields := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "This field is required", fields["organization_id"])
		assert.Equal(t, "Must be one of: eu us in au cn jp", fields["location"])
	})

	t.Run("passes valid query", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test?organization_id=org-1&location=eu", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-1")

	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}
