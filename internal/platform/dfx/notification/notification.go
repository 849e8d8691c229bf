package notification

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusCancelled PaymentStatus = "Cancelled"
	PaymentStatusExpired   PaymentStatus = "Expired"
)

// PaymentNotification is the decoded, normalized webhook payload.
// It is a purely syntactic view; no order has been consulted yet.
type PaymentNotification struct {
	// OrderID is the positive integer prefix of ExternalID.
	OrderID    int64
	ExternalID string
	// RouteID is normalized to a string whether it arrived as JSON number or string.
	RouteID string
	// Status is the normalized payment status; RawStatus keeps the wire value
	// verbatim so unrecognized statuses can be audited.
	Status    PaymentStatus
	RawStatus string
	Amount    decimal.Decimal
	Currency  string
}

// KnownStatus reports whether the wire status mapped onto a recognized value.
func (n *PaymentNotification) KnownStatus() bool {
	switch n.Status {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusCancelled, PaymentStatusExpired:
		return true
	}
	return false
}

// flexString decodes a JSON value that may arrive as either a string or a
// number; route ids have been observed in both shapes across protocol versions.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// currency decodes either a bare code ("EUR") or an object with a name field
// ({"name":"EUR"}), depending on protocol version. Normalized to upper case.
type currency string

func (c *currency) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = currency(strings.ToUpper(s))
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*c = currency(strings.ToUpper(obj.Name))
	return nil
}

type wirePayment struct {
	RouteID  *flexString      `json:"routeId"`
	Status   *string          `json:"status"`
	Amount   *decimal.Decimal `json:"amount"`
	Currency *currency        `json:"currency"`
}

type wirePayload struct {
	ExternalID *string      `json:"externalId"`
	RouteID    *flexString  `json:"routeId"`
	Payment    *wirePayment `json:"payment"`
}
