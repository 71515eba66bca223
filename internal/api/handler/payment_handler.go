package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/dzn7/apihook/internal/domain"
	"github.com/dzn7/apihook/internal/logger"
)

type PaymentService interface {
	CreatePixPayment(ctx context.Context, body []byte) (*domain.PixPayment, error)
	CreateCardPayment(ctx context.Context, req domain.CardPaymentRequest) (*domain.CardPayment, error)
	CreatePreference(ctx context.Context, body []byte) (*domain.Preference, error)
}

type PaymentHandler struct {
	service     PaymentService
	development bool
}

func NewPaymentHandler(service PaymentService, development bool) *PaymentHandler {
	return &PaymentHandler{
		service:     service,
		development: development,
	}
}

// CreatePixPayment godoc
// @Summary      Criar pagamento PIX
// @Description  Valida o pedido e gera o QR Code PIX no Mercado Pago
// @Tags         pagamentos
// @Accept       json
// @Produce      json
// @Param        request  body      object  true  "Pedido"
// @Success      200      {object}  domain.PixPayment
// @Failure      400      {object}  map[string]any
// @Failure      500      {object}  map[string]any
// @Router       /create-mercadopago-pix [post]
func (h *PaymentHandler) CreatePixPayment(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		writeError(c, &domain.ValidationError{Errors: []string{"request body could not be read"}}, nil, h.development)
		return
	}

	pix, err := h.service.CreatePixPayment(c.Request.Context(), raw)
	if err != nil {
		writeError(c, err, raw, h.development)
		return
	}

	c.JSON(http.StatusOK, pix)
}

// CreateCardPayment godoc
// @Summary      Criar pagamento com cartão
// @Description  Cobra um cartão tokenizado pelo SDK do Mercado Pago
// @Tags         pagamentos
// @Accept       json
// @Produce      json
// @Param        request  body      domain.CardPaymentRequest  true  "Dados do cartão"
// @Success      201      {object}  domain.CardPayment
// @Failure      400      {object}  map[string]any
// @Failure      500      {object}  map[string]any
// @Router       /create-mercadopago-card [post]
func (h *PaymentHandler) CreateCardPayment(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		writeError(c, &domain.ValidationError{Errors: []string{"request body could not be read"}}, nil, h.development)
		return
	}

	var req domain.CardPaymentRequest
	if err := binding.JSON.BindBody(raw, &req); err != nil {
		logger.Warn("card payment rejected", zap.Error(err))
		writeError(c, &domain.ValidationError{Errors: []string{err.Error()}}, raw, h.development)
		return
	}

	payment, err := h.service.CreateCardPayment(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, raw, h.development)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// CreatePreference godoc
// @Summary      Criar preferência Checkout Pro
// @Description  Valida o pedido e abre uma preferência de checkout com link e QR Code
// @Tags         pagamentos
// @Accept       json
// @Produce      json
// @Param        request  body      object  true  "Pedido"
// @Success      200      {object}  domain.Preference
// @Failure      400      {object}  map[string]any
// @Failure      500      {object}  map[string]any
// @Router       /create-mercadopago-preference [post]
func (h *PaymentHandler) CreatePreference(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		writeError(c, &domain.ValidationError{Errors: []string{"request body could not be read"}}, nil, h.development)
		return
	}

	pref, err := h.service.CreatePreference(c.Request.Context(), raw)
	if err != nil {
		writeError(c, err, raw, h.development)
		return
	}

	c.JSON(http.StatusOK, pref)
}
