package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	// OrderStatusPending is the single "awaiting payment" state. Webhook-driven
	// transitions only ever move an order out of it, never back into it.
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusFailed     OrderStatus = "failed"
)

// Order is the store order this gateway settles. The gateway never creates
// orders; it reads them and drives the one-way status machine above.
type Order struct {
	ID         int64           `gorm:"column:id;primary_key;autoIncrement" json:"id"`
	CustomerID string          `gorm:"column:customer_id;type:varchar(64);not null;index" json:"customer_id"`
	Status     OrderStatus     `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	Total      decimal.Decimal `gorm:"column:total;type:numeric(18,8);not null" json:"total"`
	Currency   string          `gorm:"column:currency;type:varchar(16);not null" json:"currency"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

// Settled reports whether the order has left the awaiting-payment state.
func (o *Order) Settled() bool {
	return o != nil && o.Status != OrderStatusPending
}
