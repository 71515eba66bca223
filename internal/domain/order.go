package domain

import "github.com/shopspring/decimal"

// OrderRequest is a client order that already passed validation.
// Names and emails are trimmed, money values are kept as decimals.
type OrderRequest struct {
	CustomerName  string
	CustomerEmail string
	Items         []LineItem
	Total         decimal.Decimal
}

type LineItem struct {
	Title       string
	UnitPrice   decimal.Decimal
	Quantity    int
	Complements []Complement
}

type Complement struct {
	Name string
}

// ItemsTotal sums unitPrice * quantity over every line item.
func (o OrderRequest) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}
