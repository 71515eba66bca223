package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dzn7/apihook/internal/config"
)

type SystemHandler struct {
	cfg       *config.Config
	startedAt time.Time
}

func NewSystemHandler(cfg *config.Config) *SystemHandler {
	return &SystemHandler{cfg: cfg, startedAt: time.Now()}
}

func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":               "Açaí em Casa payments API",
		"status":                "Online",
		"timestamp":             now(),
		"environment":           h.cfg.Environment,
		"mercadoPagoConfigured": h.cfg.AccessToken != "",
	})
}

func (h *SystemHandler) Health(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"uptime":    time.Since(h.startedAt).Seconds(),
		"timestamp": now(),
		"memory": gin.H{
			"alloc":      mem.Alloc,
			"totalAlloc": mem.TotalAlloc,
			"sys":        mem.Sys,
			"numGC":      mem.NumGC,
		},
	})
}

// Debug shows the effective configuration. The access token itself never leaves the process.
func (h *SystemHandler) Debug(c *gin.Context) {
	token := "not configured"
	if h.cfg.AccessToken != "" {
		token = "configured"
	}

	c.JSON(http.StatusOK, gin.H{
		"environment":      h.cfg.Environment,
		"port":             h.cfg.Port,
		"mercadoPagoToken": token,
		"backendUrl":       h.cfg.BackendURL,
		"frontendUrl":      h.cfg.FrontendURL,
		"allowedOrigins":   h.cfg.AllowedOrigins,
		"gatewayTimeout":   h.cfg.GatewayTimeout.String(),
		"dedupBackend":     h.cfg.DedupBackend,
	})
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
