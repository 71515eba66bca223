package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/dzn7/apihook/internal/config"
)

func getSystem(t *testing.T, handle gin.HandlerFunc) map[string]any {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handle(c)

	assert.Equal(t, http.StatusOK, w.Code)
	return decodeBody(t, w)
}

func TestSystemHandler(t *testing.T) {
	cfg := &config.Config{
		Environment:    "production",
		Port:           "3000",
		AccessToken:    "APP_USR-1234567890-secret",
		BackendURL:     "https://api.example.com",
		AllowedOrigins: []string{"https://shop.example.com"},
		GatewayTimeout: 8 * time.Second,
		DedupBackend:   config.DedupRedis,
	}
	h := NewSystemHandler(cfg)

	root := getSystem(t, h.Root)
	assert.Equal(t, "Online", root["status"])
	assert.Equal(t, true, root["mercadoPagoConfigured"])
	assert.Equal(t, "production", root["environment"])

	health := getSystem(t, h.Health)
	assert.Equal(t, "OK", health["status"])
	assert.Contains(t, health["memory"], "alloc")

	debug := getSystem(t, h.Debug)
	assert.Equal(t, "configured", debug["mercadoPagoToken"])
	assert.Equal(t, "8s", debug["gatewayTimeout"])
	assert.Equal(t, "redis", debug["dedupBackend"])
	assert.NotContains(t, fmt.Sprint(debug), "APP_USR")
}
