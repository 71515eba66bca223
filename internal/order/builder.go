package order

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dzn7/apihook/internal/domain"
)

const (
	MaxDescriptionLength = 255

	referencePrefix = "acai"
)

// Builder maps a validated order into the request shapes Mercado Pago expects.
type Builder struct {
	label           string
	notificationURL string
	frontendURL     string

	now   func() time.Time
	newID func() string
}

func NewBuilder(label, notificationURL, frontendURL string) *Builder {
	return &Builder{
		label:           label,
		notificationURL: notificationURL,
		frontendURL:     frontendURL,
		now:             time.Now,
		newID:           uuid.NewString,
	}
}

// BuildPix fails with a *domain.ConfigurationError when no notification URL
// is configured; a payment is never sent without its callback.
func (b *Builder) BuildPix(order domain.OrderRequest) (*domain.PaymentRequest, error) {
	if b.notificationURL == "" {
		return nil, &domain.ConfigurationError{Setting: "BACKEND_URL", Reason: "required to build notification_url"}
	}

	return &domain.PaymentRequest{
		TransactionAmount: order.Total.Round(2),
		Description:       b.Description(order),
		PaymentMethodID:   domain.PaymentMethodPix,
		Payer: domain.Payer{
			Email:     strings.TrimSpace(order.CustomerEmail),
			FirstName: strings.TrimSpace(order.CustomerName),
		},
		ExternalReference: b.ExternalReference(),
		NotificationURL:   b.notificationURL,
	}, nil
}

func (b *Builder) BuildPreference(order domain.OrderRequest) (*domain.PreferenceRequest, error) {
	if b.notificationURL == "" {
		return nil, &domain.ConfigurationError{Setting: "BACKEND_URL", Reason: "required to build notification_url"}
	}

	items := make([]domain.PreferenceItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, domain.PreferenceItem{
			Title:     truncate(itemLabel(item), MaxDescriptionLength),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.Round(2),
		})
	}

	pref := &domain.PreferenceRequest{
		Items: items,
		Payer: domain.Payer{
			Email:     strings.TrimSpace(order.CustomerEmail),
			FirstName: strings.TrimSpace(order.CustomerName),
		},
		ExternalReference: b.ExternalReference(),
		NotificationURL:   b.notificationURL,
		StatementLabel:    b.label,
	}

	if b.frontendURL != "" {
		pref.BackURLs = domain.BackURLs{
			Success: b.frontendURL + "/pagamento/sucesso",
			Failure: b.frontendURL + "/pagamento/falha",
			Pending: b.frontendURL + "/pagamento/pendente",
		}
		pref.AutoReturn = "approved"
	}

	return pref, nil
}

// ExternalReference is unique per call: a millisecond timestamp plus a random UUID.
func (b *Builder) ExternalReference() string {
	return fmt.Sprintf("%s-%d-%s", referencePrefix, b.now().UnixMilli(), b.newID())
}

// Description renders "<label> - <customer>: <item> (<qty>x) (<complements>), ..."
// cut to the gateway limit of 255 characters.
func (b *Builder) Description(order domain.OrderRequest) string {
	parts := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		parts = append(parts, itemLabel(item))
	}

	desc := fmt.Sprintf("%s - %s: %s", b.label, strings.TrimSpace(order.CustomerName), strings.Join(parts, ", "))
	return truncate(desc, MaxDescriptionLength)
}

func itemLabel(item domain.LineItem) string {
	label := fmt.Sprintf("%s (%dx)", item.Title, item.Quantity)
	if len(item.Complements) == 0 {
		return label
	}

	names := make([]string, 0, len(item.Complements))
	for _, c := range item.Complements {
		names = append(names, c.Name)
	}
	return label + " (" + strings.Join(names, ", ") + ")"
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
