package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"
)

const version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront cart, checkout and order service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (yaml, json or toml)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDatabase(configPath)
			if err != nil {
				return err
			}
			return database.Migrate(db)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Load a demo catalog and an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDatabase(configPath)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			return seed(cmd.Context(), cfg, db)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("storefront version %s\n", version)
		},
	})
	return cmd
}

func openDatabase(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func serve(configPath string) error {
	cfg, db, err := openDatabase(configPath)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	// --- Initialize RabbitMQ Client ---
	// Events are optional; without RABBITMQ_URL the service runs without them.
	deps := Deps{Config: cfg, DB: db, Metrics: metrics.New()}
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()
		deps.Publisher = mqClient

		log.Println("Starting RabbitMQ consumer for order events...")
		if err := mqClient.ConsumeOrderEvents(rabbitmq.LogOrderEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	} else {
		log.Println("RABBITMQ_URL not set; order events are disabled")
	}

	app := NewApp(deps)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s", cfg.AppPort)
		serverErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
	return nil
}

// seed populates an empty catalog with demo data and an admin account.
func seed(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	store := repositories.NewGORMStore(db)
	products := store.Products()

	existing, err := products.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Println("Catalog already seeded; nothing to do")
		return nil
	}

	auth := services.NewAuthService(store.Users(), cfg.JWTSecret, cfg.JWTTTL)
	admin := &models.User{Username: "admin", Email: "admin@example.com", Password: "admin123", IsSuperuser: true}
	if err := auth.RegisterUser(ctx, admin); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	category := &models.Category{Name: "Electronics", Description: "Computers and accessories"}
	if err := products.CreateCategory(ctx, category); err != nil {
		return err
	}
	brand := &models.Brand{Name: "Generic", Description: "House brand"}
	if err := products.CreateBrand(ctx, brand); err != nil {
		return err
	}

	demo := []models.Product{
		{Name: "Laptop", Description: "High performance laptop", Price: decimal.RequireFromString("1200.00"), StockQuantity: 10, IsFeatured: true},
		{Name: "Keyboard", Description: "Mechanical keyboard", Price: decimal.RequireFromString("75.00"), StockQuantity: 25},
		{Name: "Mouse", Description: "Ergonomic wireless mouse", Price: decimal.RequireFromString("25.00"), StockQuantity: 50},
	}
	for i := range demo {
		demo[i].CategoryID = category.ID
		demo[i].BrandID = brand.ID
		demo[i].IsActive = true
		demo[i].CreatedBy = admin.ID
		if err := products.Create(ctx, &demo[i]); err != nil {
			log.Printf("Error seeding product %s: %v", demo[i].Name, err)
			continue
		}
		log.Printf("Seeded product: %s (ID: %s)", demo[i].Name, demo[i].ID)
	}
	return nil
}
