package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError lists every violated field of a client payload.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid order: " + strings.Join(e.Errors, "; ")
}

// ConfigurationError means a deployment setting needed to serve the request is missing.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing configuration: %s", e.Setting)
	}
	return fmt.Sprintf("configuration %s: %s", e.Setting, e.Reason)
}

// GatewayContractError means Mercado Pago answered 2xx without the fields we need.
type GatewayContractError struct {
	Reason string
	Raw    json.RawMessage
}

func (e *GatewayContractError) Error() string {
	return "mercadopago contract violation: " + e.Reason
}

// GatewayTransportError means the call itself failed: network, auth, rate limit
// or any non-2xx answer. Payload holds the gateway error body when there is one.
type GatewayTransportError struct {
	StatusCode int
	Payload    json.RawMessage
	Err        error
}

func (e *GatewayTransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mercadopago request failed: %v", e.Err)
	}
	return fmt.Sprintf("mercadopago api error: status %d", e.StatusCode)
}

func (e *GatewayTransportError) Unwrap() error {
	return e.Err
}
