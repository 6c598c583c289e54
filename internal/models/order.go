package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/apperror"
)

// NotProvided fills shipping and contact fields the user never set.
const NotProvided = "Not provided"

// Order is the immutable-priced record of a completed checkout.
type Order struct {
	ID                 string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderNumber        string          `json:"order_number" gorm:"uniqueIndex;type:varchar(32);not null"`
	UserID             string          `json:"user_id" gorm:"type:varchar(36);index"`
	Status             OrderStatus     `json:"status" gorm:"type:varchar(20);index;not null"`
	PaymentStatus      PaymentStatus   `json:"payment_status" gorm:"type:varchar(20);index;not null"`
	Subtotal           decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	ShippingCost       decimal.Decimal `json:"shipping_cost" gorm:"type:decimal(10,2);not null"`
	TaxAmount          decimal.Decimal `json:"tax_amount" gorm:"type:decimal(10,2);not null"`
	TotalAmount        decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	ShippingAddress    string          `json:"shipping_address" gorm:"type:text"`
	ShippingCity       string          `json:"shipping_city" gorm:"type:varchar(100)"`
	ShippingPostalCode string          `json:"shipping_postal_code" gorm:"type:varchar(20)"`
	ShippingCountry    string          `json:"shipping_country" gorm:"type:varchar(100)"`
	ContactEmail       string          `json:"contact_email" gorm:"type:varchar(255)"`
	ContactPhone       string          `json:"contact_phone" gorm:"type:varchar(20)"`
	Items              []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt          time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt          time.Time       `json:"updated_at"`
	PaidAt             *time.Time      `json:"paid_at"`
}

// ApplyStatus moves the fulfillment axis to status after checking the
// transition table.
func (o *Order) ApplyStatus(status OrderStatus) error {
	if err := o.Status.ValidateTransition(status); err != nil {
		return err
	}
	o.Status = status
	return nil
}

// ApplyPayment moves the payment axis to status. Becoming paid stamps PaidAt
// once and advances a pending order to processing.
func (o *Order) ApplyPayment(status PaymentStatus, now time.Time) error {
	if err := o.PaymentStatus.ValidateTransition(status); err != nil {
		return err
	}
	if status == PaymentPaid && o.Status == StatusCancelled {
		return apperror.New(apperror.KindInvalidTransition, "cannot pay for a cancelled order")
	}
	o.PaymentStatus = status
	if status == PaymentPaid {
		if o.PaidAt == nil {
			paidAt := now
			o.PaidAt = &paidAt
		}
		if o.Status == StatusPending {
			o.Status = StatusProcessing
		}
	}
	return nil
}

// OrderItem is one frozen line of an order.
type OrderItem struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     string          `json:"order_id" gorm:"type:varchar(36);index"`
	ProductID   string          `json:"product_id" gorm:"type:varchar(36);index"`
	ProductName string          `json:"product_name" gorm:"type:varchar(200)"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"` // unit price at checkout
}

// TotalPrice is price × quantity.
func (i OrderItem) TotalPrice() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i OrderItem) MarshalJSON() ([]byte, error) {
	type plain OrderItem
	return json.Marshal(struct {
		plain
		TotalPrice decimal.Decimal `json:"total_price"`
	}{plain(i), i.TotalPrice()})
}

// OrderFilter narrows an admin order listing.
type OrderFilter struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
}
