package order

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dzn7/apihook/internal/domain"
)

const notificationURL = "https://api.example.com/mercadopago-webhook"

func sampleOrder() domain.OrderRequest {
	return domain.OrderRequest{
		CustomerName:  "Ana",
		CustomerEmail: "a@b.com",
		Items: []domain.LineItem{
			{Title: "Açaí 500ml", UnitPrice: decimal.NewFromFloat(15.0), Quantity: 2},
		},
		Total: decimal.NewFromFloat(30.0),
	}
}

func TestBuildPix_Scenario(t *testing.T) {
	b := NewBuilder("Pedido Açaí em Casa", notificationURL, "")

	req, err := b.BuildPix(sampleOrder())
	require.NoError(t, err)

	assert.Equal(t, "30.00", req.TransactionAmount.StringFixed(2))
	assert.True(t, strings.HasPrefix(req.Description, "Pedido Açaí em Casa - Ana: "), req.Description)
	assert.Contains(t, req.Description, "Açaí 500ml (2x)")
	assert.Equal(t, "pix", req.PaymentMethodID)
	assert.Equal(t, domain.Payer{Email: "a@b.com", FirstName: "Ana"}, req.Payer)
	assert.Equal(t, notificationURL, req.NotificationURL)
	assert.True(t, strings.HasPrefix(req.ExternalReference, "acai-"))
}

func TestBuildPix_FailsClosedWithoutNotificationURL(t *testing.T) {
	b := NewBuilder("Pedido", "", "")

	req, err := b.BuildPix(sampleOrder())

	assert.Nil(t, req)
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "BACKEND_URL", cfgErr.Setting)
}

func TestBuildPix_SameOrderTwice(t *testing.T) {
	b := NewBuilder("Pedido", notificationURL, "")

	first, err := b.BuildPix(sampleOrder())
	require.NoError(t, err)
	second, err := b.BuildPix(sampleOrder())
	require.NoError(t, err)

	assert.NotEqual(t, first.ExternalReference, second.ExternalReference)
	assert.True(t, first.TransactionAmount.Equal(second.TransactionAmount))
	assert.Equal(t, first.Description, second.Description)
}

func TestBuildPix_Rounding(t *testing.T) {
	tests := []struct {
		total float64
		want  string
	}{
		{30, "30.00"},
		{10.005, "10.01"},
		{19.994, "19.99"},
		{0.1 + 0.2, "0.30"},
		{1234.5, "1234.50"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			order := sampleOrder()
			order.Total = decimal.NewFromFloat(tt.total)

			req, err := NewBuilder("Pedido", notificationURL, "").BuildPix(order)
			require.NoError(t, err)

			assert.Equal(t, tt.want, req.TransactionAmount.StringFixed(2))
			assert.GreaterOrEqual(t, req.TransactionAmount.Exponent(), int32(-2))
		})
	}
}

func TestDescription_ComplementsAndSeparator(t *testing.T) {
	order := sampleOrder()
	order.Items = append(order.Items, domain.LineItem{
		Title:       "Açaí 300ml",
		Quantity:    1,
		UnitPrice:   decimal.NewFromInt(12),
		Complements: []domain.Complement{{Name: "Granola"}, {Name: "Banana"}},
	})

	desc := NewBuilder("Pedido", notificationURL, "").Description(order)

	assert.Equal(t, "Pedido - Ana: Açaí 500ml (2x), Açaí 300ml (1x) (Granola, Banana)", desc)
}

func TestDescription_NeverExceedsLimit(t *testing.T) {
	b := NewBuilder("Pedido Açaí em Casa", notificationURL, "")

	for items := 1; items <= 40; items += 3 {
		for complements := 0; complements <= 6; complements += 2 {
			order := sampleOrder()
			order.Items = nil
			for i := 0; i < items; i++ {
				item := domain.LineItem{Title: fmt.Sprintf("Açaí especial nº%d", i), Quantity: i + 1, UnitPrice: decimal.NewFromInt(1)}
				for c := 0; c < complements; c++ {
					item.Complements = append(item.Complements, domain.Complement{Name: fmt.Sprintf("complemento %d", c)})
				}
				order.Items = append(order.Items, item)
			}

			desc := b.Description(order)

			assert.LessOrEqual(t, utf8.RuneCountInString(desc), MaxDescriptionLength)
			assert.True(t, utf8.ValidString(desc), "truncation must keep runes intact")
		}
	}
}

func TestExternalReference_Format(t *testing.T) {
	b := NewBuilder("Pedido", notificationURL, "")
	b.now = func() time.Time { return time.UnixMilli(1700000000000) }
	b.newID = func() string { return "fixed" }

	assert.Equal(t, "acai-1700000000000-fixed", b.ExternalReference())
}

func TestBuildPreference(t *testing.T) {
	b := NewBuilder("Pedido", notificationURL, "https://shop.example.com")

	pref, err := b.BuildPreference(sampleOrder())
	require.NoError(t, err)

	require.Len(t, pref.Items, 1)
	assert.Equal(t, "Açaí 500ml (2x)", pref.Items[0].Title)
	assert.Equal(t, 2, pref.Items[0].Quantity)
	assert.Equal(t, "15.00", pref.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "https://shop.example.com/pagamento/sucesso", pref.BackURLs.Success)
	assert.Equal(t, "approved", pref.AutoReturn)
	assert.Equal(t, notificationURL, pref.NotificationURL)
	assert.NotEmpty(t, pref.ExternalReference)
}

func TestBuildPreference_NoFrontendNoAutoReturn(t *testing.T) {
	pref, err := NewBuilder("Pedido", notificationURL, "").BuildPreference(sampleOrder())
	require.NoError(t, err)

	assert.Empty(t, pref.AutoReturn)
	assert.Equal(t, domain.BackURLs{}, pref.BackURLs)
}

func TestBuildPreference_FailsClosedWithoutNotificationURL(t *testing.T) {
	_, err := NewBuilder("Pedido", "", "https://shop.example.com").BuildPreference(sampleOrder())

	var cfgErr *domain.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}
