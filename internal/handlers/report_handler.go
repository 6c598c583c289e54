package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/services"
)

// ReportHandler serves the admin dashboard.
type ReportHandler struct {
	service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) RegisterRoutes(router fiber.Router, g Guards) {
	router.Get("/admin/reports", g.Authenticated, g.Admin, h.HandleDashboard)
}

func (h *ReportHandler) HandleDashboard(c *fiber.Ctx) error {
	dashboard, err := h.service.Dashboard(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return fail(c, "building reports", err)
	}
	return c.JSON(dashboard)
}
