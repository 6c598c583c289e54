package models

import (
	"storefront/internal/apperror"
)

// OrderStatus is the fulfillment axis of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every fulfillment status in lifecycle order.
var OrderStatuses = []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// orderTransitions holds the legal next states. Delivered and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether the table allows s -> to.
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns nil when s -> to is legal, otherwise a
// classified error.
func (s OrderStatus) ValidateTransition(to OrderStatus) error {
	if !to.Valid() {
		return apperror.Invalid("invalid order status: %s", to)
	}
	if to == StatusCancelled {
		switch s {
		case StatusCancelled:
			return apperror.New(apperror.KindAlreadyCancelled, "order is already cancelled")
		case StatusShipped, StatusDelivered:
			return apperror.New(apperror.KindInvalidTransition, "cannot cancel an order that has already been %s", s)
		}
	}
	if !s.CanTransitionTo(to) {
		return apperror.New(apperror.KindInvalidTransition, "cannot change order status from %s to %s", s, to)
	}
	return nil
}

// ParseOrderStatus converts s into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !status.Valid() {
		return "", apperror.Invalid("invalid order status: %s", s)
	}
	return status, nil
}

// PaymentStatus is the money-collection axis of an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentStatuses lists every payment status.
var PaymentStatuses = []PaymentStatus{PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:  {PaymentPaid, PaymentFailed},
	PaymentPaid:     {PaymentRefunded},
	PaymentFailed:   {},
	PaymentRefunded: {},
}

func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

func (s PaymentStatus) CanTransitionTo(to PaymentStatus) bool {
	for _, next := range paymentTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s PaymentStatus) ValidateTransition(to PaymentStatus) error {
	if !to.Valid() {
		return apperror.Invalid("invalid payment status: %s", to)
	}
	if s == PaymentPaid && to == PaymentPaid {
		return apperror.New(apperror.KindAlreadyPaid, "order already paid")
	}
	if !s.CanTransitionTo(to) {
		return apperror.New(apperror.KindInvalidTransition, "cannot change payment status from %s to %s", s, to)
	}
	return nil
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.Valid() {
		return "", apperror.Invalid("invalid payment status: %s", s)
	}
	return status, nil
}
