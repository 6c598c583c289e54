package main

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

// Deps are the resources NewApp wires into the HTTP layer. Publisher and
// Metrics may be nil.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Publisher services.EventPublisher
	Metrics   *metrics.Metrics
}

// NewApp builds the Fiber application with every route under /api/v1.
func NewApp(deps Deps) *fiber.App {
	cfg := deps.Config
	store := repositories.NewGORMStore(deps.DB)

	// --- Services ---
	authService := services.NewAuthService(store.Users(), cfg.JWTSecret, cfg.JWTTTL)
	productService := services.NewProductService(store.Products())
	cartService := services.NewCartService(store)
	pricing := services.Pricing{
		TaxRate:  cfg.TaxRate,
		Shipping: services.FlatShipping{Amount: cfg.ShippingFlat},
	}
	orderService := services.NewOrderService(store, pricing, deps.Publisher, services.WithMetrics(deps.Metrics))
	reportService := services.NewReportService(store, services.DefaultReportWindows())

	// --- Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	guards := handlers.Guards{
		Authenticated: middleware.AuthRequired(authService),
		Optional:      middleware.OptionalAuth(authService),
		Admin:         middleware.AdminRequired(),
	}

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewProductHandler(productService).RegisterRoutes(apiV1, guards)
	handlers.NewCartHandler(cartService).RegisterRoutes(apiV1, guards)
	handlers.NewOrderHandler(orderService).RegisterRoutes(apiV1, guards)
	handlers.NewReportHandler(reportService).RegisterRoutes(apiV1, guards)

	app.Get("/health", func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status, code = "unhealthy", fiber.StatusServiceUnavailable
		}
		events := "disabled"
		if deps.Publisher != nil {
			events = "enabled"
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
			"events": events,
		})
	})

	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	return app
}

// errorHandler renders framework errors (unknown routes, oversized bodies)
// in the same shape as handler errors.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"message": err.Error(),
		"error":   "http",
	})
}
