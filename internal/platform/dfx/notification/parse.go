package notification

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var (
	ErrMalformed     = errors.New("malformed notification payload")
	ErrBadExternalID = errors.New("missing or invalid externalId")
	ErrMissingRoute  = errors.New("missing routeId")
	ErrMissingStatus = errors.New("missing payment status")
	// ErrMissingPayment covers a payload without amount or currency.
	ErrMissingPayment = errors.New("missing payment amount or currency")
)

// Parse decodes a raw webhook body into a PaymentNotification.
//
// externalId is required and formatted "<orderId>/<suffix>"; the prefix before
// the first "/" must parse as a positive integer. routeId may sit at the top
// level (observed protocol) or under payment (later variant); a payload with
// neither cannot be routed and is rejected.
func Parse(body []byte) (*PaymentNotification, error) {
	var p wirePayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, ErrMalformed
	}

	if p.ExternalID == nil {
		return nil, ErrBadExternalID
	}
	orderID, err := parseOrderID(*p.ExternalID)
	if err != nil {
		return nil, err
	}

	routeID := p.RouteID
	if routeID == nil && p.Payment != nil {
		routeID = p.Payment.RouteID
	}
	if routeID == nil || *routeID == "" {
		return nil, ErrMissingRoute
	}

	if p.Payment == nil || p.Payment.Status == nil {
		return nil, ErrMissingStatus
	}
	if p.Payment.Amount == nil || p.Payment.Currency == nil {
		return nil, ErrMissingPayment
	}

	raw := *p.Payment.Status
	return &PaymentNotification{
		OrderID:    orderID,
		ExternalID: *p.ExternalID,
		RouteID:    string(*routeID),
		Status:     normalizeStatus(raw),
		RawStatus:  raw,
		Amount:     *p.Payment.Amount,
		Currency:   string(*p.Payment.Currency),
	}, nil
}

func parseOrderID(externalID string) (int64, error) {
	prefix, _, _ := strings.Cut(externalID, "/")
	id, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrBadExternalID
	}
	return id, nil
}

// normalizeStatus maps wire statuses onto the known set. The provider has
// shipped both "Canceled" and "Cancelled"; everything else passes through
// unmapped and is handled as an unknown status downstream.
func normalizeStatus(raw string) PaymentStatus {
	switch raw {
	case "Pending":
		return PaymentStatusPending
	case "Completed":
		return PaymentStatusCompleted
	case "Cancelled", "Canceled":
		return PaymentStatusCancelled
	case "Expired":
		return PaymentStatusExpired
	}
	return PaymentStatus(raw)
}
