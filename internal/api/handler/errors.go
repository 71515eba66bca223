package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dzn7/apihook/internal/domain"
)

// writeError renders the error envelope {message, details, timestamp}.
// Validation errors also echo what the client sent; cause is only exposed
// in development.
func writeError(c *gin.Context, err error, received []byte, development bool) {
	status := http.StatusInternalServerError
	body := gin.H{"timestamp": now()}

	var (
		validationErr *domain.ValidationError
		configErr     *domain.ConfigurationError
		contractErr   *domain.GatewayContractError
		transportErr  *domain.GatewayTransportError
	)
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		body["message"] = "invalid order data"
		body["details"] = "one or more fields are invalid"
		body["errors"] = validationErr.Errors
		body["receivedData"] = receivedData(received)
	case errors.As(err, &configErr):
		body["message"] = "server configuration incomplete"
		body["details"] = configErr.Error()
	case errors.As(err, &contractErr):
		body["message"] = "unexpected response from Mercado Pago"
		body["details"] = contractErr.Reason
		if len(contractErr.Raw) > 0 {
			body["gatewayResponse"] = contractErr.Raw
		}
	case errors.As(err, &transportErr):
		body["message"] = "failed to communicate with Mercado Pago"
		body["details"] = transportDetails(transportErr, development)
		if errors.Is(err, context.DeadlineExceeded) {
			body["message"] = "Mercado Pago did not answer in time"
		}
		if len(transportErr.Payload) > 0 {
			body["gatewayResponse"] = transportErr.Payload
		}
	default:
		body["message"] = "internal server error"
		body["details"] = "unexpected error"
	}

	if development {
		body["cause"] = fmt.Sprintf("%T: %v", err, err)
	}
	c.JSON(status, body)
}

func receivedData(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	if json.Valid(raw) {
		return json.RawMessage(raw)
	}
	return string(raw)
}

// transportDetails keeps network error text (hosts, dial addresses) out of
// production responses; it is still available under cause in development.
func transportDetails(err *domain.GatewayTransportError, development bool) string {
	switch {
	case development:
		return err.Error()
	case err.StatusCode != 0:
		return fmt.Sprintf("mercadopago answered with status %d", err.StatusCode)
	default:
		return "payment gateway unreachable"
	}
}
