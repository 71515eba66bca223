package webhook

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/dzn7/apihook/internal/domain"
)

// Strategy looks for a (topic, id) pair in one of the notification shapes
// Mercado Pago has used over time.
type Strategy struct {
	Name    string
	Extract func(n domain.WebhookNotification) (domain.NotificationRef, bool)
}

// Strategies are tried in order; the first match wins.
var Strategies = []Strategy{
	{Name: "query", Extract: fromQuery},
	{Name: "data.id", Extract: fromData},
	{Name: "resource", Extract: fromResource},
}

// Extract returns the first (topic, id) pair found. When nothing matches the
// returned ref has no PaymentID but may still carry the topic for logging.
func Extract(n domain.WebhookNotification) domain.NotificationRef {
	return ExtractWith(Strategies, n)
}

func ExtractWith(strategies []Strategy, n domain.WebhookNotification) domain.NotificationRef {
	for _, s := range strategies {
		if ref, ok := s.Extract(n); ok {
			ref.Source = s.Name
			return ref
		}
	}
	return domain.NotificationRef{Topic: topicHint(n)}
}

// IPN style: ?topic=payment&id=123, or the newer ?type=payment&data.id=123.
func fromQuery(n domain.WebhookNotification) (domain.NotificationRef, bool) {
	topic := firstNonEmpty(n.Query.Get("topic"), n.Query.Get("type"))
	id := firstNonEmpty(n.Query.Get("id"), n.Query.Get("data.id"))
	return domain.NotificationRef{Topic: topic, PaymentID: id}, topic != "" && id != ""
}

// Webhook style: {"type":"payment","data":{"id":"123"}}. The topic may also
// come only in the query (?topic=payment).
func fromData(n domain.WebhookNotification) (domain.NotificationRef, bool) {
	topic := firstNonEmpty(
		stringField(n.Body, "type"),
		stringField(n.Body, "topic"),
		n.Query.Get("topic"),
		n.Query.Get("type"),
	)
	data, _ := n.Body["data"].(map[string]any)
	id := idString(data["id"])
	return domain.NotificationRef{Topic: topic, PaymentID: id}, topic != "" && id != ""
}

// Feed style: {"topic":"payment","resource":"https://api.mercadolibre.com/collections/notifications/123"}
// or a bare id in resource.
func fromResource(n domain.WebhookNotification) (domain.NotificationRef, bool) {
	resource := stringField(n.Body, "resource")
	if resource == "" {
		return domain.NotificationRef{}, false
	}

	id := resource
	topic := firstNonEmpty(stringField(n.Body, "topic"), stringField(n.Body, "type"))
	if u, err := url.Parse(resource); err == nil && u.Path != "" {
		path := strings.TrimRight(u.Path, "/")
		id = path[strings.LastIndex(path, "/")+1:]
		if topic == "" && strings.Contains(path, "/payments/") {
			topic = domain.TopicPayment
		}
	}
	return domain.NotificationRef{Topic: topic, PaymentID: id}, topic != "" && id != ""
}

func topicHint(n domain.WebhookNotification) string {
	return firstNonEmpty(
		n.Query.Get("topic"),
		n.Query.Get("type"),
		stringField(n.Body, "type"),
		stringField(n.Body, "topic"),
	)
}

func stringField(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return strings.TrimSpace(s)
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(id, 10)
	case int:
		return strconv.Itoa(id)
	default:
		return ""
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
