package domain

import (
	"context"
	"encoding/json"
	"net/url"
	"time"
)

const TopicPayment = "payment"

// WebhookNotification is whatever Mercado Pago pushed: query string plus a
// loosely decoded body. Older IPN calls carry everything in the query,
// newer webhooks use type/data.id, some feeds only send a resource URL.
type WebhookNotification struct {
	Query url.Values
	Body  map[string]any
	Raw   json.RawMessage
}

// NotificationRef is the (topic, id) pair found in a notification.
type NotificationRef struct {
	Topic     string `json:"topic"`
	PaymentID string `json:"paymentId"`
	Source    string `json:"source"`
}

func (r NotificationRef) Actionable() bool {
	return r.Topic == TopicPayment && r.PaymentID != ""
}

type PaymentStatusOutcome string

const (
	OutcomeApproved  PaymentStatusOutcome = "approved"
	OutcomePending   PaymentStatusOutcome = "pending"
	OutcomeRejected  PaymentStatusOutcome = "rejected"
	OutcomeCancelled PaymentStatusOutcome = "cancelled"
	OutcomeRefunded  PaymentStatusOutcome = "refunded"
	OutcomeOther     PaymentStatusOutcome = "other"
)

// Outcome is the classified result of a payment notification, handed to the
// order-state collaborators.
type Outcome struct {
	PaymentID         string               `json:"paymentId"`
	GatewayStatus     string               `json:"gatewayStatus"`
	StatusDetail      string               `json:"statusDetail,omitempty"`
	Outcome           PaymentStatusOutcome `json:"outcome"`
	ExternalReference string               `json:"externalReference"`
}

// ReconcileResult tells the webhook handler how to answer.
// Outcome is nil when the notification is not actionable.
type ReconcileResult struct {
	Ref        NotificationRef `json:"ref"`
	Actionable bool            `json:"actionable"`
	Outcome    *Outcome        `json:"outcome,omitempty"`
}

type OutcomeEvent struct {
	PaymentID         string               `json:"payment_id"`
	ExternalReference string               `json:"external_reference"`
	Status            PaymentStatusOutcome `json:"status"`
	GatewayStatus     string               `json:"gateway_status"`
	ProcessedAt       time.Time            `json:"processed_at"`
}

type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, event OutcomeEvent) error
}

// NotificationDeduplicator reports whether key is seen for the first time.
// Forget releases a key whose downstream delivery failed.
type NotificationDeduplicator interface {
	MarkProcessed(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}
