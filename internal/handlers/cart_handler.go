package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/services"
)

// CartHandler serves the caller's own cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes. Every route needs a token.
func (h *CartHandler) RegisterRoutes(router fiber.Router, g Guards) {
	cart := router.Group("/cart", g.Authenticated)
	cart.Get("/", h.HandleViewCart)
	cart.Get("/count", h.HandleCount)
	cart.Delete("/", h.HandleClear)
	cart.Post("/items", h.HandleAddItem)
	cart.Patch("/items/:id", h.HandleUpdateItem)
	cart.Delete("/items/:id", h.HandleRemoveItem)
}

// AddItemRequest adds one unit of a product.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// UpdateItemRequest sets a line's quantity. Zero or less removes the line.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

func (h *CartHandler) HandleViewCart(c *fiber.Ctx) error {
	summary, err := h.service.GetSummary(c.UserContext(), middleware.IdentityFrom(c).UserID)
	if err != nil {
		return fail(c, "viewing cart", err)
	}
	return c.JSON(summary)
}

func (h *CartHandler) HandleCount(c *fiber.Ctx) error {
	count, err := h.service.Count(c.UserContext(), middleware.IdentityFrom(c).UserID)
	if err != nil {
		return fail(c, "counting cart", err)
	}
	return c.JSON(fiber.Map{"count": count})
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return fail(c, "parsing cart item", err)
	}
	summary, err := h.service.AddItem(c.UserContext(), middleware.IdentityFrom(c).UserID, req.ProductID)
	if err != nil {
		return fail(c, "adding to cart", err)
	}
	return c.JSON(fiber.Map{
		"message": "Product added to cart",
		"cart":    summary,
	})
}

func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req UpdateItemRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return fail(c, "parsing cart update", err)
	}
	summary, err := h.service.UpdateItemQuantity(c.UserContext(), middleware.IdentityFrom(c).UserID, c.Params("id"), *req.Quantity)
	if err != nil {
		return fail(c, "updating cart item", err)
	}
	return c.JSON(summary)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	summary, err := h.service.RemoveItem(c.UserContext(), middleware.IdentityFrom(c).UserID, c.Params("id"))
	if err != nil {
		return fail(c, "removing cart item", err)
	}
	return c.JSON(summary)
}

func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext(), middleware.IdentityFrom(c).UserID); err != nil {
		return fail(c, "clearing cart", err)
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}
