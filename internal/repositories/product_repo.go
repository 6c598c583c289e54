package repositories

import (
	"context"

	"storefront/internal/models"
)

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	ListBrands(ctx context.Context) ([]models.Brand, error)
	GetBrand(ctx context.Context, id string) (*models.Brand, error)
	CreateBrand(ctx context.Context, brand *models.Brand) error

	AddImage(ctx context.Context, image *models.ProductImage) error
	GetImage(ctx context.Context, id string) (*models.ProductImage, error)
	SetPrimaryImage(ctx context.Context, imageID string) error
	DeleteImage(ctx context.Context, id string) error
	PrimaryImage(ctx context.Context, productID string) (*models.ProductImage, error)
}
