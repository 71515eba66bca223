package mercadopago

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/dzn7/apihook/internal/domain"
)

const currencyBRL = "BRL"

type Client struct {
	httpClient  *resty.Client
	baseURL     string
	accessToken string
}

func NewClient(baseURL, accessToken string, timeout time.Duration) *Client {
	return &Client{
		httpClient:  resty.New().SetTimeout(timeout).SetHeader("Content-Type", "application/json"),
		baseURL:     baseURL,
		accessToken: accessToken,
	}
}

type paymentBody struct {
	Token             string       `json:"token,omitempty"`
	IssuerID          any          `json:"issuer_id,omitempty"`
	TransactionAmount float64      `json:"transaction_amount"`
	Installments      int          `json:"installments,omitempty"`
	Description       string       `json:"description,omitempty"`
	PaymentMethodID   string       `json:"payment_method_id,omitempty"`
	Payer             domain.Payer `json:"payer"`
	ExternalReference string       `json:"external_reference,omitempty"`
	NotificationURL   string       `json:"notification_url,omitempty"`
}

type preferenceBody struct {
	Items               []preferenceItem `json:"items"`
	Payer               preferencePayer  `json:"payer"`
	ExternalReference   string           `json:"external_reference"`
	NotificationURL     string           `json:"notification_url"`
	BackURLs            *domain.BackURLs `json:"back_urls,omitempty"`
	AutoReturn          string           `json:"auto_return,omitempty"`
	StatementDescriptor string           `json:"statement_descriptor,omitempty"`
}

type preferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type preferencePayer struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// CreatePayment opens a direct payment (PIX) through POST /v1/payments.
func (c *Client) CreatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.GatewayPaymentResponse, error) {
	body := paymentBody{
		TransactionAmount: req.TransactionAmount.InexactFloat64(),
		Description:       req.Description,
		PaymentMethodID:   req.PaymentMethodID,
		Payer:             req.Payer,
		ExternalReference: req.ExternalReference,
		NotificationURL:   req.NotificationURL,
	}

	var out domain.GatewayPaymentResponse
	raw, err := c.post(ctx, "/v1/payments", body)
	if err != nil {
		return nil, err
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	out.Raw = raw
	return &out, nil
}

// CreateCardPayment charges a card token produced by the frontend SDK.
func (c *Client) CreateCardPayment(ctx context.Context, req domain.CardPaymentRequest) (*domain.GatewayPaymentResponse, error) {
	body := paymentBody{
		Token:             req.Token,
		IssuerID:          req.IssuerID,
		TransactionAmount: req.TransactionAmount,
		Installments:      req.Installments,
		Description:       req.Description,
		PaymentMethodID:   req.PaymentMethodID,
		Payer:             req.Payer,
		ExternalReference: req.ExternalReference,
		NotificationURL:   req.NotificationURL,
	}

	var out domain.GatewayPaymentResponse
	raw, err := c.post(ctx, "/v1/payments", body)
	if err != nil {
		return nil, err
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	out.Raw = raw
	return &out, nil
}

func (c *Client) CreatePreference(ctx context.Context, req domain.PreferenceRequest) (*domain.GatewayPreferenceResponse, error) {
	body := preferenceBody{
		Payer:               preferencePayer{Email: req.Payer.Email, Name: req.Payer.FirstName},
		ExternalReference:   req.ExternalReference,
		NotificationURL:     req.NotificationURL,
		AutoReturn:          req.AutoReturn,
		StatementDescriptor: req.StatementLabel,
	}
	if req.BackURLs != (domain.BackURLs{}) {
		backURLs := req.BackURLs
		body.BackURLs = &backURLs
	}
	for _, item := range req.Items {
		body.Items = append(body.Items, preferenceItem{
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice.InexactFloat64(),
			CurrencyID: currencyBRL,
		})
	}

	var out domain.GatewayPreferenceResponse
	raw, err := c.post(ctx, "/checkout/preferences", body)
	if err != nil {
		return nil, err
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	out.Raw = raw
	return &out, nil
}

func (c *Client) GetPayment(ctx context.Context, paymentID string) (*domain.GatewayPaymentResponse, error) {
	endpoint := fmt.Sprintf("%s/v1/payments/%s", c.baseURL, url.PathEscape(paymentID))

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(c.accessToken).
		Get(endpoint)
	if err != nil {
		return nil, &domain.GatewayTransportError{Err: err}
	}
	if resp.IsError() {
		return nil, &domain.GatewayTransportError{StatusCode: resp.StatusCode(), Payload: rawJSON(resp.Body())}
	}

	var out domain.GatewayPaymentResponse
	if err := decode(resp.Body(), &out); err != nil {
		return nil, err
	}
	out.Raw = rawJSON(resp.Body())
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(c.accessToken).
		SetHeader("X-Idempotency-Key", uuid.New().String()).
		SetBody(body).
		Post(c.baseURL + path)
	if err != nil {
		return nil, &domain.GatewayTransportError{Err: err}
	}
	if resp.IsError() {
		return nil, &domain.GatewayTransportError{StatusCode: resp.StatusCode(), Payload: rawJSON(resp.Body())}
	}
	return rawJSON(resp.Body()), nil
}

func decode(raw []byte, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.GatewayContractError{Reason: "response is not valid JSON", Raw: rawJSON(raw)}
	}
	return nil
}

// rawJSON keeps b as-is when it is JSON, otherwise quotes it so it can still
// be embedded in our own error responses.
func rawJSON(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	if json.Valid(b) {
		return json.RawMessage(b)
	}
	quoted, _ := json.Marshal(string(b))
	return quoted
}
