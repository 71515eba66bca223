package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"

	"github.com/dzn7/apihook/internal/domain"
)

var ErrMalformedBody = errors.New("webhook body is not a JSON object")

// Decode builds a notification from the raw request parts. An empty body is
// valid: IPN calls carry everything in the query string.
func Decode(query url.Values, body []byte) (domain.WebhookNotification, error) {
	n := domain.WebhookNotification{Query: query, Body: map[string]any{}}
	if query == nil {
		n.Query = url.Values{}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return n, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return n, ErrMalformedBody
	}
	if payload != nil {
		n.Body = payload
	}
	n.Raw = body
	return n, nil
}
