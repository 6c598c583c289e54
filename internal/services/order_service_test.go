package services_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/apperror"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/services"
)

var flatTwo = services.Pricing{
	TaxRate:  decimal.Zero,
	Shipping: services.FlatShipping{Amount: decimal.RequireFromString("2.00")},
}

// fillCart puts 2 × 10.00 and 1 × 5.00 into the user's cart.
func fillCart(t *testing.T, f *fixture, userID string) (*models.Product, *models.Product) {
	t.Helper()
	carts := services.NewCartService(f.store)
	ctx := context.Background()
	a := f.product(t, "Widget", "10.00")
	b := f.product(t, "Gadget", "5.00")
	for _, id := range []string{a.ID, a.ID, b.ID} {
		_, err := carts.AddItem(ctx, userID, id)
		require.NoError(t, err)
	}
	return a, b
}

func TestNewOrderNumberFormat(t *testing.T) {
	at := time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)
	number := services.NewOrderNumber(at)
	assert.Regexp(t, regexp.MustCompile(`^ORD-20260309-[0-9A-F]{8}$`), number)
	assert.NotEqual(t, number, services.NewOrderNumber(at))
}

func TestOrderService_Checkout(t *testing.T) {
	f := newFixture(t)
	pub := newPublisher()
	m := metrics.New()
	svc := services.NewOrderService(f.store, flatTwo, pub, services.WithMetrics(m))
	ctx := context.Background()
	u := f.user(t, "alice", false)
	widget, _ := fillCart(t, f, u.ID)

	order, err := svc.Checkout(ctx, u.ID)
	require.NoError(t, err)

	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{8}$`, order.OrderNumber)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, "25.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "2.00", order.ShippingCost.StringFixed(2))
	assert.Equal(t, "0.00", order.TaxAmount.StringFixed(2))
	assert.Equal(t, "27.00", order.TotalAmount.StringFixed(2))
	assert.Len(t, order.Items, 2)
	assert.Nil(t, order.PaidAt)

	assert.Equal(t, models.NotProvided, order.ShippingAddress)
	assert.Equal(t, models.NotProvided, order.ContactPhone)
	assert.Equal(t, "alice@example.com", order.ContactEmail)

	summary, err := services.NewCartService(f.store).GetSummary(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, summary.Items, "cart is emptied by checkout")

	assert.Equal(t, []models.OrderEventType{models.EventOrderCreated}, pub.Types())
	series, err := testutil.GatherAndCount(m.Registry, "storefront_checkouts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series)

	t.Run("prices are frozen at checkout", func(t *testing.T) {
		widget.Price = dec("99.99")
		widget.Name = "Widget Pro"
		require.NoError(t, f.store.Products().Update(ctx, widget))

		stored, err := svc.GetOrder(ctx, customer(u), order.ID)
		require.NoError(t, err)
		for _, item := range stored.Items {
			if item.ProductID == widget.ID {
				assert.Equal(t, "Widget", item.ProductName)
				assert.Equal(t, "10.00", item.Price.StringFixed(2))
				assert.Equal(t, "20.00", item.TotalPrice().StringFixed(2))
			}
		}
		assert.Equal(t, "27.00", stored.TotalAmount.StringFixed(2))
	})
}

func TestOrderService_CheckoutDefaultPricing(t *testing.T) {
	f := newFixture(t)
	svc := services.NewOrderService(f.store, services.DefaultPricing(), nil)
	u := f.user(t, "alice", false)
	fillCart(t, f, u.ID)

	order, err := svc.Checkout(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", order.ShippingCost.StringFixed(2))
	assert.Equal(t, "2.00", order.TaxAmount.StringFixed(2))
	assert.Equal(t, "27.00", order.TotalAmount.StringFixed(2))
}

func TestOrderService_CheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	pub := newPublisher()
	svc := services.NewOrderService(f.store, flatTwo, pub)
	ctx := context.Background()
	u := f.user(t, "alice", false)

	_, err := svc.Checkout(ctx, u.ID)
	assert.ErrorIs(t, err, apperror.ErrEmptyCart, "no cart at all")

	carts := services.NewCartService(f.store)
	_, err = carts.AddItem(ctx, u.ID, f.product(t, "Widget", "1.00").ID)
	require.NoError(t, err)
	require.NoError(t, carts.Clear(ctx, u.ID))
	_, err = svc.Checkout(ctx, u.ID)
	assert.ErrorIs(t, err, apperror.ErrEmptyCart, "cart without lines")

	assert.Equal(t, int64(0), f.count(t, &models.Order{}))
	assert.Empty(t, pub.Types())
}

func TestOrderService_CheckoutInactiveProduct(t *testing.T) {
	f := newFixture(t)
	svc := services.NewOrderService(f.store, flatTwo, nil)
	ctx := context.Background()
	u := f.user(t, "alice", false)
	widget, _ := fillCart(t, f, u.ID)

	widget.IsActive = false
	require.NoError(t, f.store.Products().Update(ctx, widget))

	_, err := svc.Checkout(ctx, u.ID)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, int64(0), f.count(t, &models.Order{}))
	assert.Equal(t, int64(2), f.count(t, &models.CartItem{}))
}

func TestOrderService_CheckoutRollsBackOnItemFailure(t *testing.T) {
	f := newFixture(t)
	pub := newPublisher()
	svc := services.NewOrderService(f.store, flatTwo, pub)
	ctx := context.Background()
	u := f.user(t, "alice", false)
	fillCart(t, f, u.ID)

	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_order_items", func(db *gorm.DB) {
		if db.Statement.Schema != nil && db.Statement.Schema.Table == "order_items" {
			db.AddError(errors.New("disk full"))
		}
	}))

	_, err := svc.Checkout(ctx, u.ID)
	assert.ErrorIs(t, err, apperror.ErrCheckoutFailed)
	assert.Equal(t, int64(0), f.count(t, &models.Order{}))
	assert.Equal(t, int64(0), f.count(t, &models.OrderItem{}))
	assert.Equal(t, int64(2), f.count(t, &models.CartItem{}), "cart is untouched")
	assert.Empty(t, pub.Types())
}

func TestOrderService_ConcurrentCheckout(t *testing.T) {
	f := newFixture(t)
	svc := services.NewOrderService(f.store, flatTwo, nil)
	u := f.user(t, "alice", false)
	fillCart(t, f, u.ID)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(context.Background(), u.ID)
		}(i)
	}
	wg.Wait()

	var succeeded, empty int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperror.ErrEmptyCart):
			empty++
		default:
			t.Fatalf("unexpected checkout error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, empty)
	assert.Equal(t, int64(1), f.count(t, &models.Order{}))
}

func TestOrderService_OrderNumberCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const taken = "ORD-20260101-AAAAAAAA"

	first := f.user(t, "alice", false)
	fillCart(t, f, first.ID)
	fixed := services.NewOrderService(f.store, flatTwo, nil,
		services.WithOrderNumbers(func(time.Time) string { return taken }))
	_, err := fixed.Checkout(ctx, first.ID)
	require.NoError(t, err)

	t.Run("retries with a fresh number", func(t *testing.T) {
		u := f.user(t, "bob", false)
		fillCart(t, f, u.ID)
		calls := 0
		svc := services.NewOrderService(f.store, flatTwo, nil,
			services.WithOrderNumbers(func(time.Time) string {
				calls++
				if calls == 1 {
					return taken
				}
				return "ORD-20260101-BBBBBBBB"
			}))

		order, err := svc.Checkout(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "ORD-20260101-BBBBBBBB", order.OrderNumber)
		assert.Equal(t, 2, calls)
	})

	t.Run("gives up after repeated collisions", func(t *testing.T) {
		u := f.user(t, "carol", false)
		fillCart(t, f, u.ID)

		_, err := fixed.Checkout(ctx, u.ID)
		assert.ErrorIs(t, err, apperror.ErrCheckoutFailed)
		count, err := services.NewCartService(f.store).Count(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	assert.Equal(t, int64(2), f.count(t, &models.Order{}))
}

func newOrder(t *testing.T, f *fixture, svc *services.OrderService, u *models.User) *models.Order {
	t.Helper()
	fillCart(t, f, u.ID)
	order, err := svc.Checkout(context.Background(), u.ID)
	require.NoError(t, err)
	return order
}

func TestOrderService_GetOrderAccess(t *testing.T) {
	f := newFixture(t)
	svc := services.NewOrderService(f.store, flatTwo, nil)
	ctx := context.Background()
	alice := f.user(t, "alice", false)
	mallory := f.user(t, "mallory", false)
	root := f.user(t, "root", true)
	order := newOrder(t, f, svc, alice)

	_, err := svc.GetOrder(ctx, customer(mallory), order.ID)
	assert.ErrorIs(t, err, apperror.ErrAuthorization)

	got, err := svc.GetOrder(ctx, admin(root), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)

	_, err = svc.GetOrder(ctx, customer(alice), "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	mine, err := svc.ListMyOrders(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := svc.ListMyOrders(ctx, mallory.ID)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestOrderService_CancelOrder(t *testing.T) {
	f := newFixture(t)
	pub := newPublisher()
	svc := services.NewOrderService(f.store, flatTwo, pub)
	ctx := context.Background()
	alice := f.user(t, "alice", false)
	mallory := f.user(t, "mallory", false)
	root := f.user(t, "root", true)

	t.Run("owner cancels a pending order", func(t *testing.T) {
		order := newOrder(t, f, svc, alice)
		cancelled, err := svc.CancelOrder(ctx, customer(alice), order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, cancelled.Status)
		assert.Contains(t, pub.Types(), models.EventOrderCancelled)

		_, err = svc.CancelOrder(ctx, customer(alice), order.ID)
		assert.ErrorIs(t, err, apperror.ErrAlreadyCancelled)

		_, err = svc.PayOrder(ctx, customer(alice), order.ID)
		assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	})

	t.Run("other users cannot cancel", func(t *testing.T) {
		order := newOrder(t, f, svc, alice)
		_, err := svc.CancelOrder(ctx, customer(mallory), order.ID)
		assert.ErrorIs(t, err, apperror.ErrAuthorization)

		got, err := svc.GetOrder(ctx, customer(alice), order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, got.Status)
	})

	t.Run("shipped orders cannot be cancelled", func(t *testing.T) {
		order := newOrder(t, f, svc, alice)
		for _, status := range []string{"processing", "shipped"} {
			_, err := svc.AdminUpdateOrder(ctx, admin(root), order.ID, services.OrderUpdate{Status: status})
			require.NoError(t, err)
		}
		_, err := svc.CancelOrder(ctx, customer(alice), order.ID)
		assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	})
}

func TestOrderService_PayOrder(t *testing.T) {
	f := newFixture(t)
	pub := newPublisher()
	paidAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := services.NewOrderService(f.store, flatTwo, pub, services.WithClock(func() time.Time { return paidAt }))
	ctx := context.Background()
	alice := f.user(t, "alice", false)
	mallory := f.user(t, "mallory", false)
	order := newOrder(t, f, svc, alice)

	_, err := svc.PayOrder(ctx, customer(mallory), order.ID)
	assert.ErrorIs(t, err, apperror.ErrAuthorization)

	paid, err := svc.PayOrder(ctx, customer(alice), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, models.StatusProcessing, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paidAt.Equal(*paid.PaidAt))
	assert.Contains(t, pub.Types(), models.EventOrderPaymentChanged)
	assert.Contains(t, pub.Types(), models.EventOrderStatusChanged)

	_, err = svc.PayOrder(ctx, customer(alice), order.ID)
	assert.ErrorIs(t, err, apperror.ErrAlreadyPaid)

	again, err := svc.GetOrder(ctx, customer(alice), order.ID)
	require.NoError(t, err)
	require.NotNil(t, again.PaidAt)
	assert.True(t, paidAt.Equal(*again.PaidAt), "paid_at is stamped once")
}

func TestOrderService_PublishFailureDoesNotUndoCommit(t *testing.T) {
	f := newFixture(t)
	pub := new(MockPublisher)
	pub.On("PublishOrderEvent", mock.Anything).Return(errors.New("broker down"))
	svc := services.NewOrderService(f.store, flatTwo, pub)
	u := f.user(t, "alice", false)
	fillCart(t, f, u.ID)

	order, err := svc.Checkout(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, int64(1), f.count(t, &models.Order{}))
	pub.AssertNumberOfCalls(t, "PublishOrderEvent", 1)
}

func TestOrderService_AdminUpdateOrder(t *testing.T) {
	f := newFixture(t)
	svc := services.NewOrderService(f.store, flatTwo, newPublisher())
	ctx := context.Background()
	alice := f.user(t, "alice", false)
	root := f.user(t, "root", true)

	t.Run("requires admin", func(t *testing.T) {
		order := newOrder(t, f, svc, alice)
		_, err := svc.AdminUpdateOrder(ctx, customer(alice), order.ID, services.OrderUpdate{Status: "processing"})
		assert.ErrorIs(t, err, apperror.ErrAuthorization)
	})

	t.Run("rejects unknown values and empty updates", func(t *testing.T) {
		order := newOrder(t, f, svc, alice)
		_, err := svc.AdminUpdateOrder(ctx, admin(root), order.ID, services.OrderUpdate{Status: "lost"})
		assert.ErrorIs(t, err, apperror.ErrValidation)
		_, err = svc.AdminUpdateOrder(ctx, admin(root), order.ID, services.OrderUpdate{PaymentStatus: "maybe"})
		assert.ErrorIs(t, err, apperror.ErrValidation)
		_, err = svc.AdminUpdateOrder(ctx, admin(root), order.ID, services.OrderUpdate{})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("enforces the status table", func(t *testing.T) {
		order := newOrder(t, f, svc, alice)
		_, err := svc.AdminUpdateOrder(ctx, admin(root), order.ID, services.OrderUpdate{Status: "shipped"})
		assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
		_, err = svc.AdminUpdateOrder(ctx, admin(root), order.ID, services.OrderUpdate{Status: "pending"})
		assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

		for _, status := range []string{"processing", "shipped", "delivered"} {
			updated, err := svc.AdminUpdateOrder(ctx, admin(root), order.ID, services.OrderUpdate{Status: status})
			require.NoError(t, err)
			assert.Equal(t, models.OrderStatus(status), updated.Status)
		}
		_, err = svc.AdminUpdateOrder(ctx, admin(root), order.ID, services.OrderUpdate{Status: "cancelled"})
		assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	})

	t.Run("applies both axes atomically", func(t *testing.T) {
		order := newOrder(t, f, svc, alice)
		_, err := svc.AdminUpdateOrder(ctx, admin(root), order.ID, services.OrderUpdate{Status: "processing", PaymentStatus: "refunded"})
		assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

		got, err := svc.GetOrder(ctx, admin(root), order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, got.Status, "status change rolled back with the payment change")

		updated, err := svc.AdminUpdateOrder(ctx, admin(root), order.ID, services.OrderUpdate{Status: "processing", PaymentStatus: "paid"})
		require.NoError(t, err)
		assert.Equal(t, models.StatusProcessing, updated.Status)
		assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)
		assert.NotNil(t, updated.PaidAt)

		updated, err = svc.AdminUpdateOrder(ctx, admin(root), order.ID, services.OrderUpdate{PaymentStatus: "refunded"})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentRefunded, updated.PaymentStatus)
		assert.NotNil(t, updated.PaidAt, "refund keeps the payment time")
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := svc.AdminUpdateOrder(ctx, admin(root), "missing", services.OrderUpdate{Status: "processing"})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestOrderService_AdminListOrders(t *testing.T) {
	f := newFixture(t)
	svc := services.NewOrderService(f.store, flatTwo, nil)
	ctx := context.Background()
	alice := f.user(t, "alice", false)
	bob := f.user(t, "bob", false)
	root := f.user(t, "root", true)

	pending := newOrder(t, f, svc, alice)
	paid := newOrder(t, f, svc, bob)
	_, err := svc.PayOrder(ctx, customer(bob), paid.ID)
	require.NoError(t, err)

	_, err = svc.AdminListOrders(ctx, customer(alice), "", "")
	assert.ErrorIs(t, err, apperror.ErrAuthorization)

	all, err := svc.AdminListOrders(ctx, admin(root), "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyPending, err := svc.AdminListOrders(ctx, admin(root), "pending", "")
	require.NoError(t, err)
	require.Len(t, onlyPending, 1)
	assert.Equal(t, pending.ID, onlyPending[0].ID)

	paidOnly, err := svc.AdminListOrders(ctx, admin(root), "", "paid")
	require.NoError(t, err)
	require.Len(t, paidOnly, 1)
	assert.Equal(t, paid.ID, paidOnly[0].ID)

	none, err := svc.AdminListOrders(ctx, admin(root), "pending", "paid")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.AdminListOrders(ctx, admin(root), "bogus", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
