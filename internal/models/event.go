package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderEventType names an order lifecycle event.
type OrderEventType string

const (
	EventOrderCreated        OrderEventType = "order.created"
	EventOrderStatusChanged  OrderEventType = "order.status_changed"
	EventOrderPaymentChanged OrderEventType = "order.payment_changed"
	EventOrderCancelled      OrderEventType = "order.cancelled"
)

// OrderEvent is published after an order mutation commits.
type OrderEvent struct {
	Type          OrderEventType  `json:"type"`
	OrderID       string          `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	UserID        string          `json:"user_id"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Total         decimal.Decimal `json:"total"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewOrderEvent snapshots o into an event of the given type.
func NewOrderEvent(eventType OrderEventType, o *Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:          eventType,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Total:         o.TotalAmount,
		OccurredAt:    at,
	}
}
