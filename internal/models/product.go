package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products.
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=2,max=100"`
	Description string    `json:"description" gorm:"type:text" validate:"omitempty,max=500"`
	CreatedAt   time.Time `json:"created_at"`
}

// Brand is the manufacturer of a product.
type Brand struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=2,max=100"`
	Description string    `json:"description" gorm:"type:text" validate:"omitempty,max=500"`
	CreatedAt   time.Time `json:"created_at"`
}

// Product represents a product in the store.
type Product struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name          string          `json:"name" gorm:"type:varchar(200)" validate:"required,min=3,max=200"`
	Description   string          `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	CategoryID    string          `json:"category_id" gorm:"type:varchar(36);index" validate:"required"`
	Category      *Category       `json:"category,omitempty" validate:"-"`
	BrandID       string          `json:"brand_id" gorm:"type:varchar(36);index" validate:"required"`
	Brand         *Brand          `json:"brand,omitempty" validate:"-"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	IsFeatured    bool            `json:"is_featured"`
	IsActive      bool            `json:"is_active"`
	CreatedBy     string          `json:"created_by" gorm:"type:varchar(36)"`
	Images        []ProductImage  `json:"images,omitempty" gorm:"foreignKey:ProductID" validate:"-"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InStock reports whether any units are available.
func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

// ProductImage is image metadata attached to a product. The file itself is
// stored outside this service; URL points at it.
type ProductImage struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string    `json:"product_id" gorm:"type:varchar(36);index"`
	URL       string    `json:"url" gorm:"type:varchar(500)" validate:"required,url"`
	AltText   string    `json:"alt_text" gorm:"type:varchar(200)" validate:"omitempty,max=200"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductSort is the ordering applied to product listings.
type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceLow  ProductSort = "price_low"
	SortPriceHigh ProductSort = "price_high"
	SortName      ProductSort = "name"
)

// ProductFilter narrows a product listing. Zero values mean "no filter".
type ProductFilter struct {
	CategoryID      string
	BrandID         string
	Search          string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	IncludeInactive bool
	Sort            ProductSort
}
