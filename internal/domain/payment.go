package domain

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

const PaymentMethodPix = "pix"

// PaymentRequest is what gets sent to Mercado Pago to open a payment.
type PaymentRequest struct {
	TransactionAmount decimal.Decimal
	Description       string
	PaymentMethodID   string
	Payer             Payer
	ExternalReference string
	NotificationURL   string
}

type Payer struct {
	Email          string          `json:"email" binding:"required,email"`
	FirstName      string          `json:"first_name,omitempty"`
	Identification *Identification `json:"identification,omitempty"`
}

type Identification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

// PixPayment is the normalized answer of the PIX flow.
type PixPayment struct {
	PaymentID         int64  `json:"paymentId"`
	QRCodeImage       string `json:"qrCodeImage"`
	PixCopiaECola     string `json:"pixCopiaECola"`
	Status            string `json:"status"`
	ExternalReference string `json:"externalReference"`
}

// CardPaymentRequest carries a card already tokenized by the frontend SDK.
type CardPaymentRequest struct {
	Token             string  `json:"token" binding:"required"`
	IssuerID          any     `json:"issuer_id"`
	PaymentMethodID   string  `json:"payment_method_id"`
	TransactionAmount float64 `json:"transaction_amount" binding:"required,gt=0"`
	Installments      int     `json:"installments" binding:"required,gte=1"`
	Payer             Payer   `json:"payer" binding:"required"`
	ExternalReference string  `json:"external_reference"`
	Description       string  `json:"description"`
	NotificationURL   string  `json:"-"`
}

type CardPayment struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	StatusDetail      string `json:"status_detail"`
	ExternalReference string `json:"externalReference"`
}

// PreferenceRequest opens a redirect checkout (Checkout Pro).
type PreferenceRequest struct {
	Items             []PreferenceItem
	Payer             Payer
	ExternalReference string
	NotificationURL   string
	BackURLs          BackURLs
	AutoReturn        string
	StatementLabel    string
}

type PreferenceItem struct {
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

type BackURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

type Preference struct {
	PreferenceID      string `json:"preferenceId"`
	InitPoint         string `json:"initPoint"`
	SandboxInitPoint  string `json:"sandboxInitPoint,omitempty"`
	QRCodeImage       string `json:"qrCodeImage,omitempty"`
	ExternalReference string `json:"externalReference"`
}

// GatewayPaymentResponse is the subset of the Mercado Pago payment resource we read.
// Raw keeps the full body for diagnosis.
type GatewayPaymentResponse struct {
	ID                 int64               `json:"id"`
	Status             string              `json:"status"`
	StatusDetail       string              `json:"status_detail"`
	ExternalReference  string              `json:"external_reference"`
	PointOfInteraction *PointOfInteraction `json:"point_of_interaction"`
	Raw                json.RawMessage     `json:"-"`
}

type PointOfInteraction struct {
	TransactionData *TransactionData `json:"transaction_data"`
}

type TransactionData struct {
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
	TicketURL    string `json:"ticket_url"`
}

type GatewayPreferenceResponse struct {
	ID               string          `json:"id"`
	InitPoint        string          `json:"init_point"`
	SandboxInitPoint string          `json:"sandbox_init_point"`
	Raw              json.RawMessage `json:"-"`
}

type MercadoPagoClient interface {
	CreatePayment(ctx context.Context, req PaymentRequest) (*GatewayPaymentResponse, error)
	CreateCardPayment(ctx context.Context, req CardPaymentRequest) (*GatewayPaymentResponse, error)
	CreatePreference(ctx context.Context, req PreferenceRequest) (*GatewayPreferenceResponse, error)
	GetPayment(ctx context.Context, paymentID string) (*GatewayPaymentResponse, error)
}

type QRCodeEncoder interface {
	DataURI(content string) (string, error)
}
