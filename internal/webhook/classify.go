package webhook

import (
	"strings"

	"github.com/dzn7/apihook/internal/domain"
)

// Classify maps a Mercado Pago payment status onto the outcomes the order
// flow cares about.
func Classify(status string) domain.PaymentStatusOutcome {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "approved":
		return domain.OutcomeApproved
	case "pending", "in_process", "authorized":
		return domain.OutcomePending
	case "rejected":
		return domain.OutcomeRejected
	case "cancelled":
		return domain.OutcomeCancelled
	case "refunded", "charged_back":
		return domain.OutcomeRefunded
	default:
		return domain.OutcomeOther
	}
}
