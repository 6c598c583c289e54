package repositories

import (
	"context"

	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access. Orders are
// never deleted.
type OrderRepository interface {
	// Create inserts the order row only; items go through CreateItems. A
	// duplicate order number yields an apperror.KindConflict error and leaves
	// the surrounding transaction usable.
	Create(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// LockByID loads the order row under a row lock held until the
	// surrounding transaction ends.
	LockByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	Recent(ctx context.Context, limit int) ([]models.Order, error)
	UpdateState(ctx context.Context, order *models.Order) error
}
