package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds the runtime settings of the storefront service.
type Config struct {
	AppPort        string
	DatabaseDriver string
	DatabaseDSN    string
	JWTSecret      string
	JWTTTL         time.Duration
	RabbitMQURL    string
	RabbitMQQueue  string
	TaxRate        decimal.Decimal
	ShippingFlat   decimal.Decimal
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:storefront.db?cache=shared")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("RABBITMQ_URL", "") // empty disables order events
	v.SetDefault("RABBITMQ_QUEUE", "order_events")
	v.SetDefault("TAX_RATE", "0.08")
	v.SetDefault("SHIPPING_FLAT_RATE", "0.00")
	v.SetDefault("READ_TIMEOUT", "10s")
	v.SetDefault("WRITE_TIMEOUT", "10s")
}

// Load reads configuration from the environment and, when configFile is not
// empty, from that file. Environment variables win over the file.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	taxRate, err := decimal.NewFromString(v.GetString("TAX_RATE"))
	if err != nil {
		return nil, fmt.Errorf("invalid TAX_RATE %q: %w", v.GetString("TAX_RATE"), err)
	}
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("TAX_RATE must not be negative, got %s", taxRate)
	}
	shipping, err := decimal.NewFromString(v.GetString("SHIPPING_FLAT_RATE"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHIPPING_FLAT_RATE %q: %w", v.GetString("SHIPPING_FLAT_RATE"), err)
	}
	if shipping.IsNegative() {
		return nil, fmt.Errorf("SHIPPING_FLAT_RATE must not be negative, got %s", shipping)
	}

	driver := strings.ToLower(v.GetString("DATABASE_DRIVER"))
	if driver != "sqlite" && driver != "postgres" {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", driver)
	}

	return &Config{
		AppPort:        v.GetString("APP_PORT"),
		DatabaseDriver: driver,
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTTTL:         v.GetDuration("JWT_TTL"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		RabbitMQQueue:  v.GetString("RABBITMQ_QUEUE"),
		TaxRate:        taxRate,
		ShippingFlat:   shipping,
		ReadTimeout:    v.GetDuration("READ_TIMEOUT"),
		WriteTimeout:   v.GetDuration("WRITE_TIMEOUT"),
	}, nil
}
