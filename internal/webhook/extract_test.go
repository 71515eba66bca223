package webhook

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dzn7/apihook/internal/domain"
)

func notification(t *testing.T, rawQuery, body string) domain.WebhookNotification {
	t.Helper()
	q, err := url.ParseQuery(rawQuery)
	require.NoError(t, err)
	n, err := Decode(q, []byte(body))
	require.NoError(t, err)
	return n
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		body       string
		topic      string
		id         string
		source     string
		actionable bool
	}{
		{
			name: "data.id body", body: `{"type":"payment","data":{"id":"123"}}`,
			topic: "payment", id: "123", source: "data.id", actionable: true,
		},
		{
			name: "numeric data.id", body: `{"action":"payment.updated","type":"payment","data":{"id":98765432101}}`,
			topic: "payment", id: "98765432101", source: "data.id", actionable: true,
		},
		{
			name: "ipn query", query: "topic=payment&id=555",
			topic: "payment", id: "555", source: "query", actionable: true,
		},
		{
			name: "webhook query", query: "type=payment&data.id=777", body: `{}`,
			topic: "payment", id: "777", source: "query", actionable: true,
		},
		{
			name: "query wins over body", query: "topic=payment&id=1", body: `{"type":"payment","data":{"id":"2"}}`,
			topic: "payment", id: "1", source: "query", actionable: true,
		},
		{
			name: "resource url", body: `{"topic":"payment","resource":"https://api.mercadolibre.com/collections/notifications/4242"}`,
			topic: "payment", id: "4242", source: "resource", actionable: true,
		},
		{
			name: "bare resource id", body: `{"topic":"payment","resource":"4243"}`,
			topic: "payment", id: "4243", source: "resource", actionable: true,
		},
		{
			name: "query topic with body data.id", query: "topic=payment", body: `{"data":{"id":"42"}}`,
			topic: "payment", id: "42", source: "data.id", actionable: true,
		},
		{
			name: "resource payments path infers topic", body: `{"resource":"https://api.mercadopago.com/v1/payments/99/"}`,
			topic: "payment", id: "99", source: "resource", actionable: true,
		},
		{
			name: "merchant order topic only", body: `{"topic":"merchant_order"}`,
			topic: "merchant_order",
		},
		{
			name: "merchant order resource", body: `{"topic":"merchant_order","resource":"https://api.mercadolibre.com/merchant_orders/1"}`,
			topic: "merchant_order", id: "1", source: "resource",
		},
		{
			name: "payment without id", body: `{"type":"payment","data":{}}`,
			topic: "payment",
		},
		{
			name: "empty", body: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := Extract(notification(t, tt.query, tt.body))

			assert.Equal(t, tt.topic, ref.Topic)
			assert.Equal(t, tt.id, ref.PaymentID)
			assert.Equal(t, tt.source, ref.Source)
			assert.Equal(t, tt.actionable, ref.Actionable())
		})
	}
}

func TestExtractWith_Order(t *testing.T) {
	calls := []string{}
	track := func(name string, match bool) Strategy {
		return Strategy{Name: name, Extract: func(domain.WebhookNotification) (domain.NotificationRef, bool) {
			calls = append(calls, name)
			return domain.NotificationRef{Topic: "payment", PaymentID: name}, match
		}}
	}

	ref := ExtractWith([]Strategy{track("a", false), track("b", true), track("c", true)}, domain.WebhookNotification{})

	assert.Equal(t, "b", ref.PaymentID)
	assert.Equal(t, "b", ref.Source)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(nil, []byte(`not json`))

	assert.ErrorIs(t, err, ErrMalformedBody)
}

func TestClassify(t *testing.T) {
	tests := map[string]domain.PaymentStatusOutcome{
		"approved":     domain.OutcomeApproved,
		"APPROVED":     domain.OutcomeApproved,
		"pending":      domain.OutcomePending,
		"in_process":   domain.OutcomePending,
		"authorized":   domain.OutcomePending,
		"rejected":     domain.OutcomeRejected,
		"cancelled":    domain.OutcomeCancelled,
		"refunded":     domain.OutcomeRefunded,
		"charged_back": domain.OutcomeRefunded,
		"in_mediation": domain.OutcomeOther,
		"":             domain.OutcomeOther,
	}
	for status, want := range tests {
		assert.Equal(t, want, Classify(status), "status %q", status)
	}
}
