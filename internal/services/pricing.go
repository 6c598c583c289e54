package services

import "github.com/shopspring/decimal"

// DefaultTaxRate is the flat sales tax applied at checkout.
var DefaultTaxRate = decimal.RequireFromString("0.08")

// ShippingRate prices shipping for an order subtotal.
type ShippingRate interface {
	Cost(subtotal decimal.Decimal) decimal.Decimal
}

// FlatShipping charges the same amount for every order.
type FlatShipping struct {
	Amount decimal.Decimal
}

func (f FlatShipping) Cost(decimal.Decimal) decimal.Decimal {
	return f.Amount
}

// Pricing turns a cart subtotal into order totals.
type Pricing struct {
	TaxRate  decimal.Decimal
	Shipping ShippingRate
}

// DefaultPricing is 8% tax and free shipping.
func DefaultPricing() Pricing {
	return Pricing{TaxRate: DefaultTaxRate, Shipping: FlatShipping{Amount: decimal.Zero}}
}

// Quote is the priced breakdown of an order.
type Quote struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Quote computes totals. Every amount is rounded to cents and
// Total == Subtotal + Shipping + Tax holds exactly.
func (p Pricing) Quote(subtotal decimal.Decimal) Quote {
	subtotal = subtotal.Round(2)
	shipping := decimal.Zero
	if p.Shipping != nil {
		shipping = p.Shipping.Cost(subtotal).Round(2)
	}
	tax := subtotal.Mul(p.TaxRate).Round(2)
	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
