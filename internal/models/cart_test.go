package models_test

import (
	"testing"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartTotalsUseCurrentPrices(t *testing.T) {
	productA := &models.Product{ID: "a", Name: "Product A", Price: decimal.RequireFromString("10.00"), IsActive: true}
	productB := &models.Product{ID: "b", Name: "Product B", Price: decimal.RequireFromString("5.00"), IsActive: true}
	cart := &models.Cart{ID: "c", Items: []models.CartItem{
		{ID: "1", ProductID: "a", Product: productA, Quantity: 2},
		{ID: "2", ProductID: "b", Product: productB, Quantity: 1},
	}}

	assert.Equal(t, 3, cart.TotalItems())
	assert.Equal(t, "25.00", cart.TotalPrice().StringFixed(2))

	productA.Price = decimal.RequireFromString("12.50")
	assert.Equal(t, "30.00", cart.TotalPrice().StringFixed(2))
}

func TestSummarizeNilCart(t *testing.T) {
	summary := models.Summarize(nil)

	assert.Empty(t, summary.Items)
	assert.NotNil(t, summary.Items)
	assert.Equal(t, 0, summary.TotalItems)
	assert.True(t, summary.TotalPrice.IsZero())
}

func TestOrderItemTotalPrice(t *testing.T) {
	item := models.OrderItem{Price: decimal.RequireFromString("10.00"), Quantity: 2}
	assert.Equal(t, "20.00", item.TotalPrice().StringFixed(2))
}
