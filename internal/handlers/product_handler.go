package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"storefront/internal/apperror"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
)

// ProductHandler serves the catalog: products, categories, brands and images.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the catalog routes. Reads are public; writes need
// a token and the services enforce admin rights.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, g Guards) {
	products := router.Group("/products")
	products.Get("/", g.Optional, h.HandleListProducts)
	products.Get("/:id", g.Optional, h.HandleGetProduct)
	products.Post("/", g.Authenticated, h.HandleCreateProduct)
	products.Put("/:id", g.Authenticated, h.HandleUpdateProduct)
	products.Delete("/:id", g.Authenticated, h.HandleDeleteProduct)
	products.Post("/:id/images", g.Authenticated, h.HandleAddImage)

	router.Patch("/images/:id/primary", g.Authenticated, h.HandleSetPrimaryImage)
	router.Delete("/images/:id", g.Authenticated, h.HandleDeleteImage)

	router.Get("/categories", h.HandleListCategories)
	router.Post("/categories", g.Authenticated, h.HandleCreateCategory)
	router.Get("/brands", h.HandleListBrands)
	router.Post("/brands", g.Authenticated, h.HandleCreateBrand)
}

// ProductRequest is the create/update payload of a product.
type ProductRequest struct {
	Name          string          `json:"name" validate:"required,min=3,max=200"`
	Description   string          `json:"description" validate:"omitempty,max=2000"`
	Price         decimal.Decimal `json:"price"`
	CategoryID    string          `json:"category_id" validate:"required"`
	BrandID       string          `json:"brand_id" validate:"required"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	IsFeatured    bool            `json:"is_featured"`
	IsActive      *bool           `json:"is_active"`
}

func (r ProductRequest) product(id string) *models.Product {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &models.Product{
		ID:            id,
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		CategoryID:    r.CategoryID,
		BrandID:       r.BrandID,
		StockQuantity: r.StockQuantity,
		IsFeatured:    r.IsFeatured,
		IsActive:      active,
	}
}

// HandleListProducts lists products. Query parameters: category, brand,
// search, min_price, max_price, sort and (admins only) include_inactive.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	filter := models.ProductFilter{
		CategoryID:      c.Query("category"),
		BrandID:         c.Query("brand"),
		Search:          c.Query("search"),
		Sort:            models.ProductSort(c.Query("sort")),
		IncludeInactive: c.QueryBool("include_inactive", false),
	}
	var err error
	if filter.MinPrice, err = queryDecimal(c, "min_price"); err != nil {
		return fail(c, "listing products", err)
	}
	if filter.MaxPrice, err = queryDecimal(c, "max_price"); err != nil {
		return fail(c, "listing products", err)
	}

	products, err := h.service.ListProducts(c.UserContext(), middleware.IdentityFrom(c), filter)
	if err != nil {
		return fail(c, "listing products", err)
	}
	return c.JSON(products)
}

func queryDecimal(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperror.Invalid("%s must be a number", key)
	}
	return &value, nil
}

// HandleGetProduct retrieves a single product with its primary image.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, "getting product", err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return fail(c, "parsing product", err)
	}
	product := req.product("")
	if err := h.service.CreateProduct(c.UserContext(), middleware.IdentityFrom(c), product); err != nil {
		return fail(c, "creating product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces the editable fields of a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return fail(c, "parsing product", err)
	}
	product := req.product(c.Params("id"))
	identity := middleware.IdentityFrom(c)
	if err := h.service.UpdateProduct(c.UserContext(), identity, product); err != nil {
		return fail(c, "updating product", err)
	}
	updated, err := h.service.GetProduct(c.UserContext(), identity, product.ID)
	if err != nil {
		return fail(c, "getting product", err)
	}
	return c.JSON(updated)
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), middleware.IdentityFrom(c), id); err != nil {
		return fail(c, "deleting product", err)
	}
	return c.JSON(fiber.Map{
		"message": "Product " + id + " deleted successfully",
	})
}

func (h *ProductHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return fail(c, "listing categories", err)
	}
	return c.JSON(categories)
}

// NamedRequest creates a category or brand.
type NamedRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

func (h *ProductHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req NamedRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return fail(c, "parsing category", err)
	}
	category := models.Category{Name: req.Name, Description: req.Description}
	if err := h.service.CreateCategory(c.UserContext(), middleware.IdentityFrom(c), &category); err != nil {
		return fail(c, "creating category", err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *ProductHandler) HandleListBrands(c *fiber.Ctx) error {
	brands, err := h.service.ListBrands(c.UserContext())
	if err != nil {
		return fail(c, "listing brands", err)
	}
	return c.JSON(brands)
}

func (h *ProductHandler) HandleCreateBrand(c *fiber.Ctx) error {
	var req NamedRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return fail(c, "parsing brand", err)
	}
	brand := models.Brand{Name: req.Name, Description: req.Description}
	if err := h.service.CreateBrand(c.UserContext(), middleware.IdentityFrom(c), &brand); err != nil {
		return fail(c, "creating brand", err)
	}
	return c.Status(fiber.StatusCreated).JSON(brand)
}

// ImageRequest attaches an already uploaded image to a product.
type ImageRequest struct {
	URL       string `json:"url" validate:"required,url"`
	AltText   string `json:"alt_text" validate:"omitempty,max=200"`
	IsPrimary bool   `json:"is_primary"`
}

func (h *ProductHandler) HandleAddImage(c *fiber.Ctx) error {
	var req ImageRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return fail(c, "parsing image", err)
	}
	image := models.ProductImage{URL: req.URL, AltText: req.AltText, IsPrimary: req.IsPrimary}
	if err := h.service.AddImage(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"), &image); err != nil {
		return fail(c, "adding image", err)
	}
	return c.Status(fiber.StatusCreated).JSON(image)
}

func (h *ProductHandler) HandleSetPrimaryImage(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.SetPrimaryImage(c.UserContext(), middleware.IdentityFrom(c), id); err != nil {
		return fail(c, "setting primary image", err)
	}
	return c.JSON(fiber.Map{
		"message": "Image " + id + " is now the primary image",
	})
}

func (h *ProductHandler) HandleDeleteImage(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteImage(c.UserContext(), middleware.IdentityFrom(c), id); err != nil {
		return fail(c, "deleting image", err)
	}
	return c.JSON(fiber.Map{
		"message": "Image " + id + " deleted successfully",
	})
}
