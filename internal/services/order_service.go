package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/apperror"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

const maxOrderNumberAttempts = 5

// NewOrderNumber returns ORD-<UTC date>-<8 random hex digits>.
func NewOrderNumber(now time.Time) string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "ORD-" + now.UTC().Format("20060102") + "-" + token
}

// OrderService handles checkout and the order lifecycle.
type OrderService struct {
	store     repositories.Store
	pricing   Pricing
	publisher EventPublisher
	metrics   *metrics.Metrics
	now       func() time.Time
	numbers   func(time.Time) string
}

// OrderOption customizes an OrderService.
type OrderOption func(*OrderService)

// WithMetrics records checkout and transition counters on m.
func WithMetrics(m *metrics.Metrics) OrderOption {
	return func(s *OrderService) { s.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

// WithOrderNumbers replaces the order number generator.
func WithOrderNumbers(gen func(time.Time) string) OrderOption {
	return func(s *OrderService) { s.numbers = gen }
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(store repositories.Store, pricing Pricing, publisher EventPublisher, opts ...OrderOption) *OrderService {
	s := &OrderService{
		store:     store,
		pricing:   pricing,
		publisher: publisher,
		now:       time.Now,
		numbers:   NewOrderNumber,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout turns the user's cart into an order. The order, its items and the
// emptied cart commit together or not at all.
func (s *OrderService) Checkout(ctx context.Context, userID string) (*models.Order, error) {
	var order *models.Order
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		cart, err := tx.Carts().LockByUserID(ctx, userID)
		if errors.Is(err, apperror.ErrNotFound) || (err == nil && len(cart.Items) == 0) {
			return apperror.New(apperror.KindEmptyCart, "your cart is empty")
		}
		if err != nil {
			return apperror.Wrap(apperror.KindCheckoutFailed, err, "failed to load cart")
		}
		for _, item := range cart.Items {
			if item.Product == nil || !item.Product.IsActive {
				return apperror.Invalid("product %s in your cart is no longer available", item.ProductID)
			}
		}

		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return apperror.Wrap(apperror.KindCheckoutFailed, err, "failed to load customer profile")
		}

		order = s.draftOrder(user, s.pricing.Quote(cart.TotalPrice()))
		if err := s.insertOrder(ctx, tx, order); err != nil {
			return apperror.Wrap(apperror.KindCheckoutFailed, err, "failed to create order")
		}

		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, line := range cart.Items {
			items = append(items, models.OrderItem{
				OrderID:     order.ID,
				ProductID:   line.ProductID,
				ProductName: line.Product.Name,
				Quantity:    line.Quantity,
				Price:       line.Product.Price.Round(2),
			})
		}
		if err := tx.Orders().CreateItems(ctx, items); err != nil {
			return apperror.Wrap(apperror.KindCheckoutFailed, err, "failed to create order items")
		}
		order.Items = items

		if err := tx.Carts().Clear(ctx, userID); err != nil {
			return apperror.Wrap(apperror.KindCheckoutFailed, err, "failed to clear cart")
		}
		return nil
	})
	if err != nil {
		s.metrics.ObserveCheckout(string(apperror.KindOf(err)))
		log.Printf("Checkout failed for user %s: %v", userID, err)
		return nil, err
	}

	s.metrics.ObserveCheckout("success")
	log.Printf("Order %s created for user %s (total %s)", order.OrderNumber, userID, order.TotalAmount.StringFixed(2))
	publishEvent(s.publisher, models.NewOrderEvent(models.EventOrderCreated, order, s.now()))
	return order, nil
}

func (s *OrderService) draftOrder(user *models.User, quote Quote) *models.Order {
	return &models.Order{
		UserID:             user.ID,
		Status:             models.StatusPending,
		PaymentStatus:      models.PaymentPending,
		Subtotal:           quote.Subtotal,
		ShippingCost:       quote.Shipping,
		TaxAmount:          quote.Tax,
		TotalAmount:        quote.Total,
		ShippingAddress:    orNotProvided(user.Address),
		ShippingCity:       orNotProvided(user.City),
		ShippingPostalCode: orNotProvided(user.PostalCode),
		ShippingCountry:    orNotProvided(user.Country),
		ContactEmail:       orNotProvided(user.Email),
		ContactPhone:       orNotProvided(user.Phone),
	}
}

func orNotProvided(value string) string {
	if strings.TrimSpace(value) == "" {
		return models.NotProvided
	}
	return value
}

// insertOrder stores order under a fresh number, retrying on collisions.
func (s *OrderService) insertOrder(ctx context.Context, tx repositories.Store, order *models.Order) error {
	var err error
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order.OrderNumber = s.numbers(s.now())
		err = tx.Orders().Create(ctx, order)
		if !errors.Is(err, apperror.ErrConflict) {
			return err
		}
		log.Printf("Order number %s already taken (attempt %d)", order.OrderNumber, attempt)
	}
	return fmt.Errorf("no unique order number after %d attempts: %w", maxOrderNumberAttempts, err)
}

// GetOrder returns an order with its items to its owner or an admin.
func (s *OrderService) GetOrder(ctx context.Context, caller models.Identity, orderID string) (*models.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(caller, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListMyOrders returns the user's orders, newest first.
func (s *OrderService) ListMyOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.store.Orders().ListByUser(ctx, userID)
}

func checkOwner(caller models.Identity, order *models.Order) error {
	if order.UserID != caller.UserID && !caller.IsSuperuser {
		return apperror.Forbidden("you do not have permission to access order %s", order.ID)
	}
	return nil
}

// CancelOrder lets a customer cancel their own pending or processing order.
func (s *OrderService) CancelOrder(ctx context.Context, caller models.Identity, orderID string) (*models.Order, error) {
	return s.mutate(ctx, orderID, func(order *models.Order) error {
		if order.UserID != caller.UserID {
			return apperror.Forbidden("you do not have permission to cancel order %s", orderID)
		}
		return order.ApplyStatus(models.StatusCancelled)
	})
}

// PayOrder simulates a successful payment by the order's owner.
func (s *OrderService) PayOrder(ctx context.Context, caller models.Identity, orderID string) (*models.Order, error) {
	return s.mutate(ctx, orderID, func(order *models.Order) error {
		if order.UserID != caller.UserID {
			return apperror.Forbidden("you do not have permission to pay for order %s", orderID)
		}
		return order.ApplyPayment(models.PaymentPaid, s.now())
	})
}

// OrderUpdate is an admin change request. Empty fields are left alone.
type OrderUpdate struct {
	Status        string
	PaymentStatus string
}

// AdminUpdateOrder applies a status and/or payment change. Status is applied
// first; both succeed or neither is written.
func (s *OrderService) AdminUpdateOrder(ctx context.Context, caller models.Identity, orderID string, update OrderUpdate) (*models.Order, error) {
	if err := requireSuperuser(caller.IsSuperuser); err != nil {
		return nil, err
	}
	if update.Status == "" && update.PaymentStatus == "" {
		return nil, apperror.Invalid("status or payment_status is required")
	}
	var status models.OrderStatus
	var payment models.PaymentStatus
	var err error
	if update.Status != "" {
		if status, err = models.ParseOrderStatus(update.Status); err != nil {
			return nil, err
		}
	}
	if update.PaymentStatus != "" {
		if payment, err = models.ParsePaymentStatus(update.PaymentStatus); err != nil {
			return nil, err
		}
	}

	return s.mutate(ctx, orderID, func(order *models.Order) error {
		if status != "" {
			if err := order.ApplyStatus(status); err != nil {
				return err
			}
		}
		if payment != "" {
			if err := order.ApplyPayment(payment, s.now()); err != nil {
				return err
			}
		}
		return nil
	})
}

// AdminListOrders lists every order, optionally filtered by exact status
// and payment status, newest first.
func (s *OrderService) AdminListOrders(ctx context.Context, caller models.Identity, status, paymentStatus string) ([]models.Order, error) {
	if err := requireSuperuser(caller.IsSuperuser); err != nil {
		return nil, err
	}
	var filter models.OrderFilter
	var err error
	if status != "" {
		if filter.Status, err = models.ParseOrderStatus(status); err != nil {
			return nil, err
		}
	}
	if paymentStatus != "" {
		if filter.PaymentStatus, err = models.ParsePaymentStatus(paymentStatus); err != nil {
			return nil, err
		}
	}
	return s.store.Orders().List(ctx, filter)
}

// mutate re-reads the order under a row lock, lets change validate and apply
// a transition against that committed state, and writes it in the same
// transaction. Events go out after commit.
func (s *OrderService) mutate(ctx context.Context, orderID string, change func(order *models.Order) error) (*models.Order, error) {
	var before, after models.Order
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		order, err := tx.Orders().LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		before = *order
		if err := change(order); err != nil {
			return err
		}
		order.UpdatedAt = s.now()
		if err := tx.Orders().UpdateState(ctx, order); err != nil {
			return err
		}
		after = *order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.announce(&before, &after)
	return s.store.Orders().GetByID(ctx, orderID)
}

func (s *OrderService) announce(before, after *models.Order) {
	now := s.now()
	if before.Status != after.Status {
		s.metrics.ObserveTransition("status", string(after.Status))
		log.Printf("Order %s status changed from %s to %s", after.OrderNumber, before.Status, after.Status)
		eventType := models.EventOrderStatusChanged
		if after.Status == models.StatusCancelled {
			eventType = models.EventOrderCancelled
		}
		publishEvent(s.publisher, models.NewOrderEvent(eventType, after, now))
	}
	if before.PaymentStatus != after.PaymentStatus {
		s.metrics.ObserveTransition("payment", string(after.PaymentStatus))
		log.Printf("Order %s payment status changed from %s to %s", after.OrderNumber, before.PaymentStatus, after.PaymentStatus)
		publishEvent(s.publisher, models.NewOrderEvent(models.EventOrderPaymentChanged, after, now))
	}
}
