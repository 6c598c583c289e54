package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/models"
)

// GORMReportRepository is a GORM implementation of ReportRepository.
type GORMReportRepository struct {
	db *gorm.DB
}

func NewGORMReportRepository(db *gorm.DB) *GORMReportRepository {
	return &GORMReportRepository{db: db}
}

func (r *GORMReportRepository) orders(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Order{})
}

func (r *GORMReportRepository) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	if err := r.orders(ctx).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

type groupCount struct {
	Value string
	Count int64
}

func (r *GORMReportRepository) countGroupedBy(ctx context.Context, column string) ([]groupCount, error) {
	var rows []groupCount
	err := r.orders(ctx).
		Select(column + " AS value, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by %s: %w", column, err)
	}
	return rows, nil
}

// CountByStatus returns a count for every status, including zero counts.
func (r *GORMReportRepository) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	rows, err := r.countGroupedBy(ctx, "status")
	if err != nil {
		return nil, err
	}
	counts := make(map[models.OrderStatus]int64, len(models.OrderStatuses))
	for _, status := range models.OrderStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[models.OrderStatus(row.Value)] = row.Count
	}
	return counts, nil
}

// CountByPaymentStatus returns a count for every payment status, including
// zero counts.
func (r *GORMReportRepository) CountByPaymentStatus(ctx context.Context) (map[models.PaymentStatus]int64, error) {
	rows, err := r.countGroupedBy(ctx, "payment_status")
	if err != nil {
		return nil, err
	}
	counts := make(map[models.PaymentStatus]int64, len(models.PaymentStatuses))
	for _, status := range models.PaymentStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[models.PaymentStatus(row.Value)] = row.Count
	}
	return counts, nil
}

func (r *GORMReportRepository) PaidRevenue(ctx context.Context, since time.Time) (decimal.Decimal, int64, error) {
	var row struct {
		Revenue decimal.Decimal
		Orders  int64
	}
	query := r.orders(ctx).
		Select("COALESCE(SUM(total_amount), 0) AS revenue, COUNT(*) AS orders").
		Where("payment_status = ?", models.PaymentPaid)
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	if err := query.Scan(&row).Error; err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to sum paid revenue: %w", err)
	}
	return row.Revenue.Round(2), row.Orders, nil
}

func (r *GORMReportRepository) CountOrdersSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := r.orders(ctx).Where("created_at >= ?", since).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count recent orders: %w", err)
	}
	return count, nil
}

// soldItems joins order lines to their order, product and category, leaving
// out cancelled orders.
func (r *GORMReportRepository) soldItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("order_items AS oi").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Joins("LEFT JOIN products p ON p.id = oi.product_id").
		Joins("LEFT JOIN categories c ON c.id = p.category_id").
		Where("o.status <> ?", models.StatusCancelled)
}

// TopProducts ranks products by units sold.
func (r *GORMReportRepository) TopProducts(ctx context.Context, limit int) ([]models.ProductSales, error) {
	var rows []models.ProductSales
	err := r.soldItems(ctx).
		Select("oi.product_id AS product_id, MAX(oi.product_name) AS product_name, " +
			"COALESCE(MAX(c.name), '') AS category_name, SUM(oi.quantity) AS quantity, " +
			"COALESCE(SUM(oi.price * oi.quantity), 0) AS revenue").
		Group("oi.product_id").
		Order("quantity DESC").Order("product_name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank top products: %w", err)
	}
	for i := range rows {
		rows[i].Revenue = rows[i].Revenue.Round(2)
	}
	return rows, nil
}

// CategorySales ranks categories by revenue.
func (r *GORMReportRepository) CategorySales(ctx context.Context, limit int) ([]models.CategorySales, error) {
	var rows []models.CategorySales
	err := r.soldItems(ctx).
		Select("COALESCE(c.name, 'Uncategorized') AS category_name, COUNT(DISTINCT oi.order_id) AS orders, " +
			"COALESCE(SUM(oi.price * oi.quantity), 0) AS revenue").
		Group("c.name").
		Order("revenue DESC").Order("category_name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate category sales: %w", err)
	}
	for i := range rows {
		rows[i].Revenue = rows[i].Revenue.Round(2)
	}
	return rows, nil
}

func (r *GORMReportRepository) OrdersSince(ctx context.Context, since time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.orders(ctx).
		Select("id", "created_at", "payment_status", "total_amount").
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load orders since %s: %w", since.Format(time.RFC3339), err)
	}
	return orders, nil
}

func (r *GORMReportRepository) CatalogCounts(ctx context.Context) (models.CatalogCounts, error) {
	var counts models.CatalogCounts
	db := r.db.WithContext(ctx)
	steps := []struct {
		what  string
		query *gorm.DB
		dest  *int64
	}{
		{"customers", db.Model(&models.User{}).Where("is_superuser = ?", false), &counts.Customers},
		{"products", db.Model(&models.Product{}), &counts.Products},
		{"active products", db.Model(&models.Product{}).Where("is_active = ?", true), &counts.ActiveProducts},
		{"categories", db.Model(&models.Category{}), &counts.Categories},
		{"brands", db.Model(&models.Brand{}), &counts.Brands},
		{"images", db.Model(&models.ProductImage{}), &counts.Images},
	}
	for _, step := range steps {
		if err := step.query.Count(step.dest).Error; err != nil {
			return models.CatalogCounts{}, fmt.Errorf("failed to count %s: %w", step.what, err)
		}
	}
	return counts, nil
}
