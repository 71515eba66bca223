package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dzn7/apihook/internal/domain"
	"github.com/dzn7/apihook/internal/logger"
	"github.com/dzn7/apihook/internal/webhook"
)

type WebhookService interface {
	Reconcile(ctx context.Context, n domain.WebhookNotification) (*domain.ReconcileResult, error)
	Dispatch(ctx context.Context, outcome domain.Outcome)
}

type WebhookHandler struct {
	service     WebhookService
	secret      string
	development bool
}

// NewWebhookHandler builds the notification endpoint. An empty secret turns
// signature verification off.
func NewWebhookHandler(service WebhookService, secret string, development bool) *WebhookHandler {
	return &WebhookHandler{
		service:     service,
		secret:      secret,
		development: development,
	}
}

// HandleWebhook godoc
// @Summary      Receber notificação do Mercado Pago
// @Description  Consulta o pagamento notificado, responde ao gateway e repassa o resultado
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-Signature  header    string  false  "Assinatura HMAC-SHA256"
// @Success      200      {object}  map[string]any
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      500      {object}  map[string]any
// @Router       /mercadopago-webhook [post]
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notification, err := webhook.Decode(c.Request.URL.Query(), raw)
	if err != nil {
		logger.Warn("malformed webhook body", zap.Error(err), zap.Int("size", len(raw)))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Validação de Segurança do Webhook
	if h.secret != "" && !h.validSignature(c, notification) {
		logger.Warn("invalid webhook signature detected",
			zap.String("signature", c.GetHeader("x-signature")),
			zap.String("request_id", c.GetHeader("x-request-id")),
		)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	result, err := h.service.Reconcile(c.Request.Context(), notification)
	if err != nil {
		writeError(c, err, nil, h.development)
		return
	}

	resp := gin.H{"status": "received", "actionable": result.Actionable}
	if result.Outcome != nil {
		resp["paymentId"] = result.Outcome.PaymentID
		resp["outcome"] = result.Outcome.Outcome
	}
	c.JSON(http.StatusOK, resp)

	if result.Outcome != nil {
		h.service.Dispatch(c.Request.Context(), *result.Outcome)
	}
}

func (h *WebhookHandler) validSignature(c *gin.Context, n domain.WebhookNotification) bool {
	dataID := n.Query.Get("data.id")
	if dataID == "" {
		dataID = webhook.Extract(n).PaymentID
	}
	return webhook.VerifySignature(h.secret, c.GetHeader("x-signature"), dataID, c.GetHeader("x-request-id"))
}
