package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/services"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the customer order routes and the admin order
// routes under /admin.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, g Guards) {
	orderRoutes := router.Group("/orders", g.Authenticated)
	orderRoutes.Post("/checkout", h.HandleCheckout)
	orderRoutes.Get("/", h.HandleListMyOrders)
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
	orderRoutes.Post("/:id/pay", h.HandlePayOrder)

	adminRoutes := router.Group("/admin/orders", g.Authenticated, g.Admin)
	adminRoutes.Get("/", h.HandleAdminListOrders)
	adminRoutes.Patch("/:id", h.HandleAdminUpdateOrder)
}

// HandleCheckout turns the caller's cart into an order.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	order, err := h.service.Checkout(c.UserContext(), middleware.IdentityFrom(c).UserID)
	if err != nil {
		return fail(c, "checking out", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleListMyOrders lists the caller's orders, newest first.
func (h *OrderHandler) HandleListMyOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListMyOrders(c.UserContext(), middleware.IdentityFrom(c).UserID)
	if err != nil {
		return fail(c, "listing orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrder retrieves a single order with its items.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, "getting order", err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelOrder(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, "cancelling order", err)
	}
	return c.JSON(fiber.Map{
		"message": "Order " + order.OrderNumber + " has been cancelled",
		"order":   order,
	})
}

func (h *OrderHandler) HandlePayOrder(c *fiber.Ctx) error {
	order, err := h.service.PayOrder(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, "paying order", err)
	}
	return c.JSON(fiber.Map{
		"message": "Payment successful for order " + order.OrderNumber,
		"order":   order,
	})
}

// HandleAdminListOrders lists all orders, filtered by the status and
// payment_status query parameters.
func (h *OrderHandler) HandleAdminListOrders(c *fiber.Ctx) error {
	orders, err := h.service.AdminListOrders(c.UserContext(), middleware.IdentityFrom(c), c.Query("status"), c.Query("payment_status"))
	if err != nil {
		return fail(c, "listing all orders", err)
	}
	return c.JSON(orders)
}

// OrderUpdateRequest changes either axis of an order's state.
type OrderUpdateRequest struct {
	Status        string `json:"status" validate:"omitempty,oneof=pending processing shipped delivered cancelled"`
	PaymentStatus string `json:"payment_status" validate:"omitempty,oneof=pending paid failed refunded"`
}

// HandleAdminUpdateOrder updates the status and/or payment status of an order.
func (h *OrderHandler) HandleAdminUpdateOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var req OrderUpdateRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return fail(c, "parsing order update", err)
	}

	order, err := h.service.AdminUpdateOrder(c.UserContext(), middleware.IdentityFrom(c), orderID, services.OrderUpdate{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		log.Printf("Error updating order %s: %v", orderID, err)
		return fail(c, "updating order", err)
	}
	return c.JSON(fiber.Map{
		"message": "Order " + order.OrderNumber + " updated",
		"order":   order,
	})
}
