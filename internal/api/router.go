package api

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dzn7/apihook/internal/api/handler"
	"github.com/dzn7/apihook/internal/config"
)

type Handlers struct {
	Payment *handler.PaymentHandler
	Webhook *handler.WebhookHandler
	System  *handler.SystemHandler
}

func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return slices.Contains(cfg.AllowedOrigins, origin)
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", h.System.Root)
	r.GET("/health", h.System.Health)
	r.GET("/debug", h.System.Debug)

	r.POST("/create-mercadopago-pix", h.Payment.CreatePixPayment)
	r.POST("/create-mercadopago-card", h.Payment.CreateCardPayment)
	r.POST("/create-mercadopago-preference", h.Payment.CreatePreference)

	// Mercado Pago sends webhooks as POST; IPN retries may arrive as GET.
	r.POST(config.WebhookPath, h.Webhook.HandleWebhook)
	r.GET(config.WebhookPath, h.Webhook.HandleWebhook)

	return r
}
