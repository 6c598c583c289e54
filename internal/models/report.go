package models

import "github.com/shopspring/decimal"

// ProductSales is one row of the top-selling products report.
type ProductSales struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	CategoryName string          `json:"category_name"`
	Quantity     int64           `json:"total_quantity"`
	Revenue      decimal.Decimal `json:"total_revenue"`
}

// CategorySales is one row of the category performance report.
type CategorySales struct {
	CategoryName string          `json:"category_name"`
	Orders       int64           `json:"total_orders"`
	Revenue      decimal.Decimal `json:"total_revenue"`
}

// MonthlyBucket aggregates orders created in one calendar month.
type MonthlyBucket struct {
	Month   string          `json:"month"` // YYYY-MM
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// CatalogCounts are the headline counts of the catalog and user base.
type CatalogCounts struct {
	Customers      int64 `json:"total_customers"`
	Products       int64 `json:"total_products"`
	ActiveProducts int64 `json:"active_products"`
	Categories     int64 `json:"total_categories"`
	Brands         int64 `json:"total_brands"`
	Images         int64 `json:"total_images"`
}

// Dashboard is the admin reporting payload.
type Dashboard struct {
	TotalOrders           int64                   `json:"total_orders"`
	OrdersByStatus        map[OrderStatus]int64   `json:"orders_by_status"`
	OrdersByPaymentStatus map[PaymentStatus]int64 `json:"orders_by_payment_status"`
	TotalRevenue          decimal.Decimal         `json:"total_revenue"`
	AverageOrderValue     decimal.Decimal         `json:"avg_order_value"`
	RecentOrderCount      int64                   `json:"recent_order_count"`
	RecentRevenue         decimal.Decimal         `json:"recent_revenue"`
	TopProducts           []ProductSales          `json:"top_products"`
	CategoryStats         []CategorySales         `json:"category_stats"`
	Monthly               []MonthlyBucket         `json:"monthly"`
	Catalog               CatalogCounts           `json:"catalog"`
	RecentOrders          []Order                 `json:"recent_orders"`
}
