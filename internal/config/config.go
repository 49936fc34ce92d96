package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	AppPort           string
	AppEnv            string
	JWTSecret         string
	InternalSecretKey string
	CORSOrigin        string

	RabbitMQURL           string
	RabbitMQExchange      string
	NotificationWorkers   int
	NotificationQueueSize int

	Policy Policy
}

// Policy holds the business constants that ops can tune per deployment.
type Policy struct {
	FreeShippingThreshold int64
	ShippingFee           int64
	TaxRate               decimal.Decimal
	CODFee                int64
	CancellationWindow    time.Duration
	OrderNumberPrefix     string
	// StaticCoupons is a comma separated CODE:type:value:minOrder list,
	// used when coupons are not served from the database.
	StaticCoupons string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg, err := Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{
		DBHost:            os.Getenv("DB_HOST"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		AppPort:           getEnv("APP_PORT", "8080"),
		AppEnv:            getEnv("APP_ENV", "development"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		InternalSecretKey: os.Getenv("INTERNAL_SECRET_KEY"),
		CORSOrigin:        getEnv("CORS_ORIGIN", "http://localhost:3000"),
		RabbitMQURL:       os.Getenv("RABBITMQ_URL"),
		RabbitMQExchange:  getEnv("RABBITMQ_EXCHANGE", "order_exchange"),
	}

	var err error
	if cfg.NotificationWorkers, err = getEnvInt("NOTIFICATION_WORKERS", 2); err != nil {
		return nil, err
	}
	if cfg.NotificationQueueSize, err = getEnvInt("NOTIFICATION_QUEUE_SIZE", 256); err != nil {
		return nil, err
	}

	p := Policy{
		OrderNumberPrefix: getEnv("ORDER_NUMBER_PREFIX", "BT"),
		StaticCoupons:     os.Getenv("COUPONS"),
	}
	if p.FreeShippingThreshold, err = getEnvInt64("FREE_SHIPPING_THRESHOLD", 499); err != nil {
		return nil, err
	}
	if p.ShippingFee, err = getEnvInt64("SHIPPING_FEE", 50); err != nil {
		return nil, err
	}
	if p.CODFee, err = getEnvInt64("COD_FEE", 0); err != nil {
		return nil, err
	}
	if p.TaxRate, err = decimal.NewFromString(getEnv("TAX_RATE", "0.18")); err != nil {
		return nil, fmt.Errorf("TAX_RATE: %w", err)
	}
	if p.CancellationWindow, err = time.ParseDuration(getEnv("CANCELLATION_WINDOW", "24h")); err != nil {
		return nil, fmt.Errorf("CANCELLATION_WINDOW: %w", err)
	}

	if p.TaxRate.IsNegative() || p.FreeShippingThreshold < 0 || p.ShippingFee < 0 || p.CODFee < 0 {
		return nil, fmt.Errorf("pricing policy values must not be negative")
	}
	if p.CancellationWindow <= 0 {
		return nil, fmt.Errorf("CANCELLATION_WINDOW must be positive")
	}

	cfg.Policy = p
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
