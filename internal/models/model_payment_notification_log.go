package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentNotificationLogStatus string

const (
	PaymentNotificationLogStatusReceived PaymentNotificationLogStatus = "received"
	PaymentNotificationLogStatusHandled  PaymentNotificationLogStatus = "handled"
	PaymentNotificationLogStatusRejected PaymentNotificationLogStatus = "rejected"
)

// PaymentNotificationLog records every webhook delivery and its outcome, raw
// payload included, independent of the per-order notes.
type PaymentNotificationLog struct {
	ID               string                       `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ProviderID       string                       `gorm:"column:provider_id;type:varchar(64);not null" json:"provider_id"`
	TraceID          string                       `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	ExternalID       string                       `gorm:"column:external_id;type:varchar(128)" json:"external_id"`
	OrderID          *int64                       `gorm:"column:order_id;index" json:"order_id"`
	NotificationTime time.Time                    `gorm:"column:notification_time" json:"notification_time"`
	Data             datatypes.JSON               `gorm:"column:data;type:jsonb" json:"data"`
	Result           *datatypes.JSON              `gorm:"column:result;type:jsonb" json:"result"`
	Status           PaymentNotificationLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt        time.Time                    `json:"created_at"`
	UpdatedAt        time.Time                    `json:"updated_at"`
}

func (PaymentNotificationLog) TableName() string { return "payment_notification_log" }
