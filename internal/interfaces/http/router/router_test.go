package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(c *gin.Context) {
	c.String(http.StatusOK, c.FullPath())
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestRouterRegistersAtRoot(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	r.Register(NewDomainGroup("health", "").GET("/health", ok))
	r.Register(NewDomainGroup("hooks", "/inventory-webhooks").POST("/:category", ok))
	r.Setup()

	w := serve(engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/health", w.Body.String())

	w = serve(engine, http.MethodPost, "/inventory-webhooks/sales")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/inventory-webhooks/:category", w.Body.String())

	w = serve(engine, http.MethodGet, "/api/v1/health")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterRegisterChains(t *testing.T) {
	r := NewRouter(gin.New())
	got := r.Register(NewDomainGroup("a", "/a")).Register(NewDomainGroup("b", "/b"))
	assert.Same(t, r, got)
	assert.Len(t, r.registrars, 2)
}

func TestDomainGroup(t *testing.T) {
	dg := NewDomainGroup("auth", "/auth")
	assert.Equal(t, "auth", dg.Name())
	assert.Equal(t, "/auth", dg.Prefix())

	var calls []string
	dg.Use(func(c *gin.Context) {
		calls = append(calls, "group")
		c.Next()
	})
	inv := dg.Group("inventory", "/inventory")
	inv.Use(func(c *gin.Context) {
		calls = append(calls, "subgroup")
		c.Next()
	})
	inv.GET("", ok).GET("/callback", ok)

	engine := gin.New()
	NewRouter(engine).Register(dg).Setup()

	w := serve(engine, http.MethodGet, "/auth/inventory/callback")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/auth/inventory/callback", w.Body.String())
	assert.Equal(t, []string{"group", "subgroup"}, calls)

	w = serve(engine, http.MethodGet, "/auth/inventory")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDomainGroupMethods(t *testing.T) {
	dg := NewDomainGroup("hooks", "/hooks").GET("/a", ok).POST("/b", ok)
	engine := gin.New()
	NewRouter(engine).Register(dg).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/hooks/a").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "/hooks/b").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodPost, "/hooks/a").Code)
}
