package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dzn7/apihook/internal/domain"
)

// Validator turns an untrusted order payload into a domain.OrderRequest.
// Every rule is checked and every violation reported.
type Validator struct {
	enforceTotal bool
}

func NewValidator(enforceTotal bool) *Validator {
	return &Validator{enforceTotal: enforceTotal}
}

// Validate never panics on malformed input. On failure it returns a
// *domain.ValidationError with one message per violated field.
func (v *Validator) Validate(body []byte) (*domain.OrderRequest, error) {
	payload, err := decodeObject(body)
	if err != nil {
		return nil, &domain.ValidationError{Errors: []string{"request body must be a JSON object"}}
	}
	return v.ValidateMap(payload)
}

func (v *Validator) ValidateMap(payload map[string]any) (*domain.OrderRequest, error) {
	var (
		errs  []string
		order domain.OrderRequest
	)

	if name, ok := nonEmptyString(payload["customerName"]); ok {
		order.CustomerName = name
	} else {
		errs = append(errs, "customerName is required and must be a non-empty string")
	}

	if email, ok := nonEmptyString(payload["customerEmail"]); ok && strings.Contains(email, "@") {
		order.CustomerEmail = email
	} else {
		errs = append(errs, "customerEmail is required and must be a valid email")
	}

	rawItems, ok := payload["items"].([]any)
	if !ok || len(rawItems) == 0 {
		errs = append(errs, "items is required and must be a non-empty array")
	} else {
		for i, raw := range rawItems {
			item, itemErrs := validateItem(i, raw)
			errs = append(errs, itemErrs...)
			if len(itemErrs) == 0 {
				order.Items = append(order.Items, item)
			}
		}
	}

	if total, ok := positiveNumber(payload["total"]); ok {
		order.Total = total
	} else {
		errs = append(errs, "total is required and must be a number greater than zero")
	}

	if v.enforceTotal && len(errs) == 0 {
		expected := order.ItemsTotal().Round(2)
		if !expected.Equal(order.Total.Round(2)) {
			errs = append(errs, fmt.Sprintf("total %s does not match items total %s",
				order.Total.StringFixed(2), expected.StringFixed(2)))
		}
	}

	if len(errs) > 0 {
		return nil, &domain.ValidationError{Errors: errs}
	}
	return &order, nil
}

func validateItem(idx int, raw any) (domain.LineItem, []string) {
	var (
		item domain.LineItem
		errs []string
	)
	field := func(name string) string { return fmt.Sprintf("items[%d].%s", idx, name) }

	obj, ok := raw.(map[string]any)
	if !ok {
		return item, []string{fmt.Sprintf("items[%d] must be an object", idx)}
	}

	if title, ok := nonEmptyString(firstPresent(obj, "title", "name")); ok {
		item.Title = title
	} else {
		errs = append(errs, field("title")+" is required and must be a non-empty string")
	}

	if qty, ok := positiveInt(obj["quantity"]); ok {
		item.Quantity = qty
	} else {
		errs = append(errs, field("quantity")+" must be a positive integer")
	}

	if price, ok := positiveNumber(firstPresent(obj, "unitPrice", "price")); ok {
		item.UnitPrice = price
	} else {
		errs = append(errs, field("unitPrice")+" must be a number greater than zero")
	}

	if rawComplements, present := obj["complements"]; present && rawComplements != nil {
		list, ok := rawComplements.([]any)
		if !ok {
			errs = append(errs, field("complements")+" must be an array")
		}
		for j, c := range list {
			name, ok := complementName(c)
			if !ok {
				errs = append(errs, fmt.Sprintf("%s[%d].name is required", field("complements"), j))
				continue
			}
			item.Complements = append(item.Complements, domain.Complement{Name: name})
		}
	}

	return item, errs
}

func complementName(raw any) (string, bool) {
	switch c := raw.(type) {
	case string:
		return nonEmptyString(c)
	case map[string]any:
		return nonEmptyString(c["name"])
	default:
		return "", false
	}
}

func decodeObject(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, fmt.Errorf("null body")
	}
	return payload, nil
}

func firstPresent(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func nonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// positiveNumber accepts JSON numbers only; numeric strings are rejected
// like any other non-number.
func positiveNumber(v any) (decimal.Decimal, bool) {
	var d decimal.Decimal
	switch n := v.(type) {
	case json.Number:
		parsed, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, false
		}
		d = parsed
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, false
		}
		d = decimal.NewFromFloat(n)
	default:
		return decimal.Zero, false
	}
	return d, d.IsPositive()
}

func positiveInt(v any) (int, bool) {
	d, ok := positiveNumber(v)
	if !ok || !d.Equal(d.Truncate(0)) || d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return 0, false
	}
	return int(d.IntPart()), true
}
