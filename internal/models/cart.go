package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the per-user staging area of desired purchases.
type Cart struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string     `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID"`
	CreatedAt time.Time  `json:"created_at"`
}

// TotalItems is the sum of line quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice prices every line at the product's current price. Lines whose
// product was not loaded count as zero.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// CartItem is one product line in a cart.
type CartItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID    string    `json:"cart_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_product"`
	ProductID string    `json:"product_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_product"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at" gorm:"autoCreateTime"`
}

// LineTotal is the live price of the line.
func (i *CartItem) LineTotal() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartLine is one priced row of a cart summary.
type CartLine struct {
	ItemID      string          `json:"item_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	IsActive    bool            `json:"is_active"`
	AddedAt     time.Time       `json:"added_at"`
}

// CartSummary is the live view of a user's cart.
type CartSummary struct {
	CartID     string          `json:"cart_id,omitempty"`
	Items      []CartLine      `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Summarize builds the live summary of c. A nil cart yields an empty summary.
func Summarize(c *Cart) CartSummary {
	summary := CartSummary{Items: []CartLine{}, TotalPrice: decimal.Zero}
	if c == nil {
		return summary
	}
	summary.CartID = c.ID
	for i := range c.Items {
		item := &c.Items[i]
		line := CartLine{
			ItemID:    item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
			AddedAt:   item.AddedAt,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.UnitPrice = item.Product.Price
			line.IsActive = item.Product.IsActive
		}
		summary.Items = append(summary.Items, line)
	}
	summary.TotalItems = c.TotalItems()
	summary.TotalPrice = c.TotalPrice()
	return summary
}
