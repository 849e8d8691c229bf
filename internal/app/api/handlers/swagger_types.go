package handlers

import (
	"github.com/DFXswiss/dfx-gateway/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespCheckoutPay wraps the checkout redirect in the standard envelope.
type RespCheckoutPay struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    checkoutPayResponse      `json:"data"`
}

// RespListNotificationLogs wraps the notification log listing in the standard envelope.
type RespListNotificationLogs struct {
	Code    response.APIResponseCode     `json:"code"`
	Message string                       `json:"message"`
	Data    ListNotificationLogsResponse `json:"data"`
}
