package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// ReportRepository runs the read-only aggregate queries behind the admin
// dashboard.
type ReportRepository interface {
	CountOrders(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error)
	CountByPaymentStatus(ctx context.Context) (map[models.PaymentStatus]int64, error)
	// PaidRevenue sums total_amount over paid orders created at or after
	// since; a zero since means all time.
	PaidRevenue(ctx context.Context, since time.Time) (revenue decimal.Decimal, orders int64, err error)
	CountOrdersSince(ctx context.Context, since time.Time) (int64, error)
	TopProducts(ctx context.Context, limit int) ([]models.ProductSales, error)
	CategorySales(ctx context.Context, limit int) ([]models.CategorySales, error)
	// OrdersSince returns created_at, payment_status and total_amount of
	// every order created at or after since.
	OrdersSince(ctx context.Context, since time.Time) ([]models.Order, error)
	CatalogCounts(ctx context.Context) (models.CatalogCounts, error)
}
