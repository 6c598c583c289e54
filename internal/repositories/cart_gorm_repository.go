package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/apperror"
	"storefront/internal/models"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("added_at DESC").Order("id ASC")
	}).Preload("Items.Product")
}

// GetByUserID retrieves the user's cart with lines and their current products.
func (r *GORMCartRepository) GetByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := preloadLines(r.db.WithContext(ctx)).First(&cart, "user_id = ?", userID).Error
	if err != nil {
		return nil, classify(err, fmt.Sprintf("cart for user %s", userID))
	}
	return &cart, nil
}

// GetOrCreate returns the user's cart, creating an empty one if needed.
func (r *GORMCartRepository) GetOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	db := r.db.WithContext(ctx)
	cart := models.Cart{ID: uuid.New().String(), UserID: userID}
	// A concurrent creator wins the unique index; DoNothing lets us read it back.
	err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&cart).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create cart for user %s: %w", userID, err)
	}
	var stored models.Cart
	if err := db.First(&stored, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart for user %s: %w", userID, err)
	}
	return &stored, nil
}

func (r *GORMCartRepository) LockByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := preloadLines(r.db.WithContext(ctx)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		return nil, classify(err, fmt.Sprintf("cart for user %s", userID))
	}
	return &cart, nil
}

// AddProduct inserts a line with quantity 1 or increments the existing line.
func (r *GORMCartRepository) AddProduct(ctx context.Context, cartID, productID string) error {
	item := models.CartItem{
		ID:        uuid.New().String(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  1,
		AddedAt:   time.Now(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{"quantity": gorm.Expr("cart_items.quantity + 1")}),
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to add product %s to cart %s: %w", productID, cartID, err)
	}
	return nil
}

// ownedItems scopes cart_items to the lines of userID's cart.
func (r *GORMCartRepository) ownedItems(ctx context.Context, userID string) *gorm.DB {
	db := r.db.WithContext(ctx)
	return db.Model(&models.CartItem{}).
		Where("cart_id IN (?)", db.Model(&models.Cart{}).Select("id").Where("user_id = ?", userID))
}

// UpdateItemQuantity sets the quantity of one of userID's lines. A quantity
// of zero or less deletes the line.
func (r *GORMCartRepository) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	if quantity <= 0 {
		return r.DeleteItem(ctx, userID, itemID)
	}
	res := r.ownedItems(ctx, userID).Where("id = ?", itemID).Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item %s: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return r.missingItem(ctx, itemID)
	}
	return nil
}

// DeleteItem removes one of userID's lines.
func (r *GORMCartRepository) DeleteItem(ctx context.Context, userID, itemID string) error {
	res := r.ownedItems(ctx, userID).Where("id = ?", itemID).Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item %s: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return r.missingItem(ctx, itemID)
	}
	return nil
}

// missingItem explains why a scoped write touched no row.
func (r *GORMCartRepository) missingItem(ctx context.Context, itemID string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", itemID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up cart item %s: %w", itemID, err)
	}
	if count > 0 {
		return apperror.Forbidden("cart item %s belongs to another user", itemID)
	}
	return apperror.NotFound("cart item %s not found", itemID)
}

// Clear deletes every line of userID's cart. It is a no-op when there is no
// cart or it is already empty.
func (r *GORMCartRepository) Clear(ctx context.Context, userID string) error {
	err := r.ownedItems(ctx, userID).Delete(&models.CartItem{}).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
