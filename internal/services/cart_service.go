package services

import (
	"context"
	"errors"
	"log"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CartService manages each user's live cart.
type CartService struct {
	store repositories.Store
}

// NewCartService creates a new CartService.
func NewCartService(store repositories.Store) *CartService {
	return &CartService{store: store}
}

// AddItem adds one unit of productID to the user's cart, creating the cart
// on first use.
func (s *CartService) AddItem(ctx context.Context, userID, productID string) (models.CartSummary, error) {
	product, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		return models.CartSummary{}, err
	}
	if !product.IsActive {
		return models.CartSummary{}, apperror.NotFound("product with ID %s not found", productID)
	}

	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		cart, err := tx.Carts().GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		return tx.Carts().AddProduct(ctx, cart.ID, productID)
	})
	if err != nil {
		return models.CartSummary{}, err
	}
	log.Printf("Added product %s to cart of user %s", productID, userID)
	return s.GetSummary(ctx, userID)
}

// UpdateItemQuantity sets a line's quantity; zero or less removes it.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (models.CartSummary, error) {
	if err := s.store.Carts().UpdateItemQuantity(ctx, userID, itemID, quantity); err != nil {
		return models.CartSummary{}, err
	}
	return s.GetSummary(ctx, userID)
}

// RemoveItem deletes one of the user's lines.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (models.CartSummary, error) {
	if err := s.store.Carts().DeleteItem(ctx, userID, itemID); err != nil {
		return models.CartSummary{}, err
	}
	return s.GetSummary(ctx, userID)
}

// Clear empties the user's cart. Clearing an empty or missing cart succeeds.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.store.Carts().Clear(ctx, userID)
}

// GetSummary prices the user's cart at current product prices. A user
// without a cart gets an empty summary.
func (s *CartService) GetSummary(ctx context.Context, userID string) (models.CartSummary, error) {
	cart, err := s.store.Carts().GetByUserID(ctx, userID)
	if errors.Is(err, apperror.ErrNotFound) {
		return models.Summarize(nil), nil
	}
	if err != nil {
		return models.CartSummary{}, err
	}
	return models.Summarize(cart), nil
}

// Count returns the number of units in the user's cart.
func (s *CartService) Count(ctx context.Context, userID string) (int, error) {
	summary, err := s.GetSummary(ctx, userID)
	if err != nil {
		return 0, err
	}
	return summary.TotalItems, nil
}
