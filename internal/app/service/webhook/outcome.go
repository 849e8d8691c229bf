package webhook

import (
	"net/http"
	"time"
)

// Request is the immutable boundary value built once per HTTP call.
// Body must be the exact raw bytes from the wire; signature verification
// runs over them unmodified.
type Request struct {
	Body       []byte
	Signature  string
	ReceivedAt time.Time
}

type OutcomeKind string

const (
	// OutcomeApplied: a terminal transition was written.
	OutcomeApplied OutcomeKind = "applied"
	// OutcomeAccepted: valid webhook, nothing to change (Pending or an
	// unknown status that was audited).
	OutcomeAccepted OutcomeKind = "accepted"
	// OutcomeAlreadyProcessed: redelivery for a settled order; acked as
	// success so the sender stops retrying.
	OutcomeAlreadyProcessed OutcomeKind = "already_processed"

	OutcomeSignatureInvalid OutcomeKind = "signature_invalid"
	OutcomeBadPayload       OutcomeKind = "bad_payload"
	OutcomeRouteMismatch    OutcomeKind = "route_mismatch"
	OutcomeOrderNotFound    OutcomeKind = "order_not_found"
	OutcomeAmountMismatch   OutcomeKind = "amount_mismatch"
	OutcomeCurrencyMismatch OutcomeKind = "currency_mismatch"
	// OutcomeGatewayDisabled / OutcomeStoreUnavailable are retryable: the
	// sender is told to redeliver rather than drop the event.
	OutcomeGatewayDisabled  OutcomeKind = "gateway_disabled"
	OutcomeStoreUnavailable OutcomeKind = "store_unavailable"
)

// Outcome is the terminal result of one webhook request. Err carries operator
// detail for logs only; it is never echoed to the caller.
type Outcome struct {
	Kind    OutcomeKind
	OrderID int64
	Err     error
}

// Accepted reports whether the sender should treat the delivery as done.
func (o *Outcome) Accepted() bool {
	switch o.Kind {
	case OutcomeApplied, OutcomeAccepted, OutcomeAlreadyProcessed:
		return true
	}
	return false
}

func (o *Outcome) HTTPStatus() int {
	switch o.Kind {
	case OutcomeApplied, OutcomeAccepted, OutcomeAlreadyProcessed:
		return http.StatusOK
	case OutcomeSignatureInvalid:
		return http.StatusUnauthorized
	case OutcomeBadPayload, OutcomeRouteMismatch, OutcomeAmountMismatch, OutcomeCurrencyMismatch:
		return http.StatusBadRequest
	case OutcomeOrderNotFound:
		return http.StatusNotFound
	case OutcomeGatewayDisabled, OutcomeStoreUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
