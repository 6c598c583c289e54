package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// List retrieves products matching filter, with category and brand loaded.
func (r *GORMProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Preload("Category").Preload("Brand")
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.BrandID != "" {
		query = query.Where("brand_id = ?", filter.BrandID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" && search != "None" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	switch filter.Sort {
	case models.SortPriceLow:
		query = query.Order("price ASC")
	case models.SortPriceHigh:
		query = query.Order("price DESC")
	case models.SortName:
		query = query.Order("name ASC")
	default:
		query = query.Order("created_at DESC")
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Category").Preload("Brand").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, classify(err, fmt.Sprintf("product with ID %s", id))
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Category", "Brand", "Images").Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", classify(err, "product"))
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(&models.Product{ID: product.ID}).
		Select("Name", "Description", "Price", "CategoryID", "BrandID", "StockQuantity", "IsFeatured", "IsActive", "UpdatedAt").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return classify(gorm.ErrRecordNotFound, fmt.Sprintf("product with ID %s", product.ID))
	}
	return nil
}

// Delete deletes a product, its images and any cart lines pointing at it.
// Order items keep their snapshot and are not touched.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete cart items for product %s: %w", id, err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete images for product %s: %w", id, err)
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return classify(gorm.ErrRecordNotFound, fmt.Sprintf("product with ID %s", id))
		}
		return nil
	})
}

func (r *GORMProductRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *GORMProductRepository) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, classify(err, fmt.Sprintf("category with ID %s", id))
	}
	return &category, nil
}

func (r *GORMProductRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", classify(err, fmt.Sprintf("category %s", category.Name)))
	}
	return nil
}

func (r *GORMProductRepository) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&brands).Error; err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	return brands, nil
}

func (r *GORMProductRepository) GetBrand(ctx context.Context, id string) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, "id = ?", id).Error; err != nil {
		return nil, classify(err, fmt.Sprintf("brand with ID %s", id))
	}
	return &brand, nil
}

func (r *GORMProductRepository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	if brand.ID == "" {
		brand.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(brand).Error; err != nil {
		return fmt.Errorf("failed to create brand: %w", classify(err, fmt.Sprintf("brand %s", brand.Name)))
	}
	return nil
}

// AddImage stores image metadata. A primary image demotes the product's
// other images.
func (r *GORMProductRepository) AddImage(ctx context.Context, image *models.ProductImage) error {
	if image.ID == "" {
		image.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if image.IsPrimary {
			if err := demoteImages(tx, image.ProductID); err != nil {
				return err
			}
		}
		if err := tx.Create(image).Error; err != nil {
			return fmt.Errorf("failed to create product image: %w", err)
		}
		return nil
	})
}

func (r *GORMProductRepository) GetImage(ctx context.Context, id string) (*models.ProductImage, error) {
	var image models.ProductImage
	if err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error; err != nil {
		return nil, classify(err, fmt.Sprintf("image with ID %s", id))
	}
	return &image, nil
}

// SetPrimaryImage makes imageID the only primary image of its product.
func (r *GORMProductRepository) SetPrimaryImage(ctx context.Context, imageID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var image models.ProductImage
		if err := tx.First(&image, "id = ?", imageID).Error; err != nil {
			return classify(err, fmt.Sprintf("image with ID %s", imageID))
		}
		if err := demoteImages(tx, image.ProductID); err != nil {
			return err
		}
		if err := tx.Model(&image).Update("is_primary", true).Error; err != nil {
			return fmt.Errorf("failed to set primary image %s: %w", imageID, err)
		}
		return nil
	})
}

func (r *GORMProductRepository) DeleteImage(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.ProductImage{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return classify(gorm.ErrRecordNotFound, fmt.Sprintf("image with ID %s", id))
	}
	return nil
}

// PrimaryImage returns the flagged primary image, else the oldest image.
// It returns (nil, nil) when the product has no images.
func (r *GORMProductRepository) PrimaryImage(ctx context.Context, productID string) (*models.ProductImage, error) {
	var images []models.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("is_primary DESC").Order("created_at ASC").
		Limit(1).
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get primary image for product %s: %w", productID, err)
	}
	if len(images) == 0 {
		return nil, nil
	}
	return &images[0], nil
}

func demoteImages(tx *gorm.DB, productID string) error {
	err := tx.Model(&models.ProductImage{}).
		Where("product_id = ? AND is_primary = ?", productID, true).
		Update("is_primary", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear primary image for product %s: %w", productID, err)
	}
	return nil
}
