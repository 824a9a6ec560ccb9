package models

import (
	"encoding/json"
	"time"
)

// OrderStatus is the lifecycle state of an order. Legality of a move is
// decided by CanTransition; nothing else may decide it.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusReady     OrderStatus = "ready"
	StatusFulfilled OrderStatus = "fulfilled"
	StatusCancelled OrderStatus = "cancelled"
	StatusFailed    OrderStatus = "failed"
)

// legalTransitions maps a source status to the statuses reachable from it.
// Terminal states (fulfilled, cancelled, failed) have no entry.
var legalTransitions = map[OrderStatus][]OrderStatus{
	StatusPending: {StatusPaid, StatusFailed, StatusCancelled},
	StatusPaid:    {StatusReady, StatusFailed, StatusCancelled},
	StatusReady:   {StatusFulfilled},
}

// CanTransition reports whether moving between the two statuses is legal.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from the status.
func (s OrderStatus) IsTerminal() bool {
	return len(legalTransitions[s]) == 0
}

// OrderItem is a line item captured at checkout time. Price is the unit
// price in kobo at the moment the order was placed, never recomputed from
// the live catalog.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

// Order represents a customer order. TotalAmount and Items are immutable
// after creation; only Status, ReadyInDays and UpdatedAt may change.
type Order struct {
	ID          uint        `json:"-" gorm:"primaryKey"`
	OrderNumber string      `json:"order_number" gorm:"uniqueIndex;type:varchar(64)"`
	PaymentRef  string      `json:"payment_ref" gorm:"uniqueIndex;type:varchar(128)"`
	CustomerID  string      `json:"customer_id" gorm:"index;type:varchar(36);not null"`
	Email       string      `json:"email" gorm:"type:varchar(255)"`
	Items       string      `json:"-" gorm:"type:text"` // serialized []OrderItem
	TotalAmount int64       `json:"total_amount"`       // kobo
	Status      OrderStatus `json:"status" gorm:"type:varchar(16);index"`
	ReadyInDays int         `json:"ready_in_days"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ParsedItems deserializes the stored item list. A corrupt or empty value
// yields an empty list rather than an error.
func (o *Order) ParsedItems() []OrderItem {
	var items []OrderItem
	if err := json.Unmarshal([]byte(o.Items), &items); err != nil {
		return []OrderItem{}
	}
	return items
}

// SetItems serializes the item list into the stored text column.
func (o *Order) SetItems(items []OrderItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	o.Items = string(data)
	return nil
}
