package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// ReportWindows sizes the dashboard aggregates.
type ReportWindows struct {
	RecentDays    int
	Months        int
	TopProducts   int
	TopCategories int
	RecentOrders  int
}

// DefaultReportWindows matches the back-office dashboard: 30 day recent
// window, 6 calendar months, top 10 products, top 5 categories.
func DefaultReportWindows() ReportWindows {
	return ReportWindows{RecentDays: 30, Months: 6, TopProducts: 10, TopCategories: 5, RecentOrders: 5}
}

// ReportService builds the read-only admin dashboard.
type ReportService struct {
	store   repositories.Store
	windows ReportWindows
	now     func() time.Time
}

func NewReportService(store repositories.Store, windows ReportWindows) *ReportService {
	return &ReportService{store: store, windows: windows, now: time.Now}
}

// Dashboard aggregates orders, payments, products and users.
func (s *ReportService) Dashboard(ctx context.Context, caller models.Identity) (*models.Dashboard, error) {
	if err := requireSuperuser(caller.IsSuperuser); err != nil {
		return nil, err
	}
	reports := s.store.Reports()
	now := s.now()
	d := &models.Dashboard{}
	var err error

	if d.TotalOrders, err = reports.CountOrders(ctx); err != nil {
		return nil, err
	}
	if d.OrdersByStatus, err = reports.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if d.OrdersByPaymentStatus, err = reports.CountByPaymentStatus(ctx); err != nil {
		return nil, err
	}

	revenue, paidOrders, err := reports.PaidRevenue(ctx, time.Time{})
	if err != nil {
		return nil, err
	}
	d.TotalRevenue = revenue
	d.AverageOrderValue = averageOf(revenue, paidOrders)

	recentSince := now.AddDate(0, 0, -s.windows.RecentDays)
	if d.RecentOrderCount, err = reports.CountOrdersSince(ctx, recentSince); err != nil {
		return nil, err
	}
	if d.RecentRevenue, _, err = reports.PaidRevenue(ctx, recentSince); err != nil {
		return nil, err
	}

	if d.TopProducts, err = reports.TopProducts(ctx, s.windows.TopProducts); err != nil {
		return nil, err
	}
	if d.CategoryStats, err = reports.CategorySales(ctx, s.windows.TopCategories); err != nil {
		return nil, err
	}
	if d.Monthly, err = s.monthly(ctx, reports, now); err != nil {
		return nil, err
	}
	if d.Catalog, err = reports.CatalogCounts(ctx); err != nil {
		return nil, err
	}
	if d.RecentOrders, err = s.store.Orders().Recent(ctx, s.windows.RecentOrders); err != nil {
		return nil, err
	}
	if d.TopProducts == nil {
		d.TopProducts = []models.ProductSales{}
	}
	if d.CategoryStats == nil {
		d.CategoryStats = []models.CategorySales{}
	}
	if d.RecentOrders == nil {
		d.RecentOrders = []models.Order{}
	}
	return d, nil
}

// averageOf divides revenue by count, yielding zero for no orders.
func averageOf(revenue decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return revenue.Div(decimal.NewFromInt(count)).Round(2)
}

// monthly buckets orders by calendar month, oldest first, including months
// without orders. Revenue counts paid orders only.
func (s *ReportService) monthly(ctx context.Context, reports repositories.ReportRepository, now time.Time) ([]models.MonthlyBucket, error) {
	months := s.windows.Months
	if months <= 0 {
		return []models.MonthlyBucket{}, nil
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)

	orders, err := reports.OrdersSince(ctx, start)
	if err != nil {
		return nil, err
	}

	buckets := make([]models.MonthlyBucket, months)
	index := make(map[string]int, months)
	for i := range buckets {
		key := start.AddDate(0, i, 0).Format("2006-01")
		buckets[i] = models.MonthlyBucket{Month: key, Revenue: decimal.Zero}
		index[key] = i
	}
	for _, order := range orders {
		i, ok := index[order.CreatedAt.In(now.Location()).Format("2006-01")]
		if !ok {
			continue
		}
		buckets[i].Orders++
		if order.PaymentStatus == models.PaymentPaid {
			buckets[i].Revenue = buckets[i].Revenue.Add(order.TotalAmount)
		}
	}
	for i := range buckets {
		buckets[i].Revenue = buckets[i].Revenue.Round(2)
	}
	return buckets, nil
}
