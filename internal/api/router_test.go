package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dzn7/apihook/internal/api/handler"
	"github.com/dzn7/apihook/internal/config"
	"github.com/dzn7/apihook/internal/domain"
)

type stubService struct{}

func (stubService) CreatePixPayment(ctx context.Context, body []byte) (*domain.PixPayment, error) {
	return &domain.PixPayment{PaymentID: 1}, nil
}

func (stubService) CreateCardPayment(ctx context.Context, req domain.CardPaymentRequest) (*domain.CardPayment, error) {
	return &domain.CardPayment{ID: 1}, nil
}

func (stubService) CreatePreference(ctx context.Context, body []byte) (*domain.Preference, error) {
	return &domain.Preference{PreferenceID: "p"}, nil
}

func (stubService) Reconcile(ctx context.Context, n domain.WebhookNotification) (*domain.ReconcileResult, error) {
	return &domain.ReconcileResult{}, nil
}

func (stubService) Dispatch(ctx context.Context, outcome domain.Outcome) {}

func testRouter() http.Handler {
	cfg := &config.Config{
		Environment:    "test",
		AllowedOrigins: []string{"https://shop.example.com"},
	}
	return SetupRouter(cfg, Handlers{
		Payment: handler.NewPaymentHandler(stubService{}, false),
		Webhook: handler.NewWebhookHandler(stubService{}, "", false),
		System:  handler.NewSystemHandler(cfg),
	})
}

func TestRoutes(t *testing.T) {
	r := testRouter()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/debug", http.StatusOK},
		{http.MethodPost, "/create-mercadopago-pix", http.StatusOK},
		{http.MethodPost, "/create-mercadopago-card", http.StatusBadRequest},
		{http.MethodPost, "/create-mercadopago-preference", http.StatusOK},
		{http.MethodPost, "/mercadopago-webhook", http.StatusOK},
		{http.MethodGet, "/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`)))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestCORS(t *testing.T) {
	r := testRouter()

	allowed := httptest.NewRequest(http.MethodOptions, "/create-mercadopago-pix", nil)
	allowed.Header.Set("Origin", "https://shop.example.com")
	allowed.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, allowed)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	denied := httptest.NewRequest(http.MethodPost, "/create-mercadopago-pix", strings.NewReader(`{}`))
	denied.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, denied)
	assert.Equal(t, http.StatusForbidden, w.Code)

	noOrigin := httptest.NewRequest(http.MethodPost, "/create-mercadopago-pix", strings.NewReader(`{}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, noOrigin)
	assert.Equal(t, http.StatusOK, w.Code)
}
