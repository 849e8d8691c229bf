package models

import "time"

// OrderNote is an append-only audit note attached to an order. Notes are
// never updated or deleted; mismatched webhooks record both expected and
// received values here for manual reconciliation.
type OrderNote struct {
	ID        string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	OrderID   int64     `gorm:"column:order_id;not null;index" json:"order_id"`
	Note      string    `gorm:"column:note;type:text;not null" json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

func (OrderNote) TableName() string { return "order_note" }
