package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	ordersapp "github.com/Apurer/go-shop-api-server/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-shop-api-server/internal/domains/orders/ports"
	userapp "github.com/Apurer/go-shop-api-server/internal/domains/users/application"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	CacheTTL          time.Duration
	StoreTimeout      time.Duration
	SessionTTL        time.Duration
	LowStockThreshold int32
	ReengagementIdle  time.Duration
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
// A .env file in the working directory is honored when present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		CacheTTL:          ordersapp.DefaultCacheTTL,
		SessionTTL:        userapp.DefaultSessionTTL,
		LowStockThreshold: ordersports.DefaultLowStockThreshold,
		ReengagementIdle:  30 * 24 * time.Hour,
	}
	var err error
	if cfg.CacheTTL, err = durationEnv("CACHE_TTL_SECONDS", time.Second, cfg.CacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.StoreTimeout, err = durationEnv("STORE_TIMEOUT_SECONDS", time.Second, 0); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL_HOURS", time.Hour, cfg.SessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.ReengagementIdle, err = durationEnv("REENGAGEMENT_IDLE_HOURS", time.Hour, cfg.ReengagementIdle); err != nil {
		return Config{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("LOW_STOCK_THRESHOLD")); raw != "" {
		threshold, err := strconv.Atoi(raw)
		if err != nil || threshold <= 0 {
			return Config{}, fmt.Errorf("LOW_STOCK_THRESHOLD must be a positive integer")
		}
		cfg.LowStockThreshold = int32(threshold)
	}
	return cfg, nil
}

func durationEnv(key string, unit time.Duration, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return time.Duration(value) * unit, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
