package services

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// ProductService handles business logic related to the catalog.
type ProductService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo:     repo,
		validate: validator.New(),
	}
}

// ProductDetail is a product with its display image.
type ProductDetail struct {
	models.Product
	PrimaryImage *models.ProductImage `json:"primary_image"`
}

// ListProducts lists the catalog. Only admins may include inactive products.
func (s *ProductService) ListProducts(ctx context.Context, caller models.Identity, filter models.ProductFilter) ([]models.Product, error) {
	if !caller.IsSuperuser {
		filter.IncludeInactive = false
	}
	return s.repo.List(ctx, filter)
}

// GetProduct returns a product with its primary image. Inactive products
// are hidden from customers.
func (s *ProductService) GetProduct(ctx context.Context, caller models.Identity, id string) (*ProductDetail, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive && !caller.IsSuperuser {
		return nil, apperror.NotFound("product with ID %s not found", id)
	}
	image, err := s.repo.PrimaryImage(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProductDetail{Product: *product, PrimaryImage: image}, nil
}

// CreateProduct validates and stores a new product owned by caller.
func (s *ProductService) CreateProduct(ctx context.Context, caller models.Identity, product *models.Product) error {
	if err := requireSuperuser(caller.IsSuperuser); err != nil {
		return err
	}
	if err := s.checkProduct(ctx, product); err != nil {
		return err
	}
	product.CreatedBy = caller.UserID
	return s.repo.Create(ctx, product)
}

// UpdateProduct validates and saves an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, caller models.Identity, product *models.Product) error {
	if err := requireSuperuser(caller.IsSuperuser); err != nil {
		return err
	}
	if err := s.checkProduct(ctx, product); err != nil {
		return err
	}
	return s.repo.Update(ctx, product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, caller models.Identity, id string) error {
	if err := requireSuperuser(caller.IsSuperuser); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *ProductService) checkProduct(ctx context.Context, product *models.Product) error {
	if err := s.validate.Struct(product); err != nil {
		return validationError(err)
	}
	if !product.Price.IsPositive() {
		return apperror.Invalid("price must be greater than zero")
	}
	if product.Price.Exponent() < -2 {
		return apperror.Invalid("price must have at most two decimal places")
	}
	if _, err := s.repo.GetCategory(ctx, product.CategoryID); err != nil {
		return unknownReference(err, "category", product.CategoryID)
	}
	if _, err := s.repo.GetBrand(ctx, product.BrandID); err != nil {
		return unknownReference(err, "brand", product.BrandID)
	}
	return nil
}

func unknownReference(err error, what, id string) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.Invalid("unknown %s %s", what, id)
	}
	return err
}

func (s *ProductService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *ProductService) CreateCategory(ctx context.Context, caller models.Identity, category *models.Category) error {
	if err := requireSuperuser(caller.IsSuperuser); err != nil {
		return err
	}
	if err := s.validate.Struct(category); err != nil {
		return validationError(err)
	}
	return s.repo.CreateCategory(ctx, category)
}

func (s *ProductService) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return s.repo.ListBrands(ctx)
}

func (s *ProductService) CreateBrand(ctx context.Context, caller models.Identity, brand *models.Brand) error {
	if err := requireSuperuser(caller.IsSuperuser); err != nil {
		return err
	}
	if err := s.validate.Struct(brand); err != nil {
		return validationError(err)
	}
	return s.repo.CreateBrand(ctx, brand)
}

// AddImage attaches image metadata to an existing product.
func (s *ProductService) AddImage(ctx context.Context, caller models.Identity, productID string, image *models.ProductImage) error {
	if err := requireSuperuser(caller.IsSuperuser); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return err
	}
	image.ProductID = productID
	if err := s.validate.Struct(image); err != nil {
		return validationError(err)
	}
	return s.repo.AddImage(ctx, image)
}

func (s *ProductService) SetPrimaryImage(ctx context.Context, caller models.Identity, imageID string) error {
	if err := requireSuperuser(caller.IsSuperuser); err != nil {
		return err
	}
	return s.repo.SetPrimaryImage(ctx, imageID)
}

func (s *ProductService) DeleteImage(ctx context.Context, caller models.Identity, imageID string) error {
	if err := requireSuperuser(caller.IsSuperuser); err != nil {
		return err
	}
	return s.repo.DeleteImage(ctx, imageID)
}
