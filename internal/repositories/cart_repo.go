package repositories

import (
	"context"

	"storefront/internal/models"
)

// CartRepository defines the interface for cart data access. Item-level
// writes take the requesting user and refuse lines of other users' carts.
type CartRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Cart, error)
	GetOrCreate(ctx context.Context, userID string) (*models.Cart, error)
	// LockByUserID loads the cart with its lines and products and holds a row
	// lock on the cart until the surrounding transaction ends.
	LockByUserID(ctx context.Context, userID string) (*models.Cart, error)
	AddProduct(ctx context.Context, cartID, productID string) error
	UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) error
	DeleteItem(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
}
