package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"railbook/internal/cache"
	"railbook/internal/database"
	"railbook/internal/external"
	"railbook/internal/messaging"
)

// Config contains the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Performance monitoring
	PprofEnabled bool
	PprofPort    string

	// RACCapacity bounds the RAC tier per (train, route). The waitlist
	// behind it is unbounded.
	RACCapacity int

	// PaymentHold is how long a Confirmed booking may stay unpaid
	// before the expiration job cancels it.
	PaymentHold time.Duration

	Database database.Config
	NATS     messaging.Config
	Valkey   cache.Config
	Payment  external.PaymentConfig
}

// Load loads the configuration from environment variables. A local
// .env file is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		// Performance monitoring
		PprofEnabled: getEnv("PPROF_ENABLED", "false") == "true",
		PprofPort:    getEnv("PPROF_PORT", "6060"),

		RACCapacity: getEnvInt("RAC_CAPACITY", 100),
		PaymentHold: time.Duration(getEnvInt("PAYMENT_HOLD_MIN", 15)) * time.Minute,

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "railbook"),
			Password:           getEnv("DB_PASSWORD", "railbook123"),
			DBName:             getEnv("DB_NAME", "railbook"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "railbook"),
			ClientID:  getEnv("NATS_CLIENT_ID", "railbook-api"),
		},

		Valkey: cache.Config{
			Address:  getEnv("VALKEY_ADDRESS", "localhost:6379"),
			Password: os.Getenv("VALKEY_PASSWORD"),
		},

		Payment: external.PaymentConfig{
			BaseURL:  getEnv("PAYMENT_GATEWAY_URL", "http://localhost:9090/gateway"),
			TeamSlug: getEnv("PAYMENT_TEAM_SLUG", "railbook"),
			Password: getEnv("PAYMENT_PASSWORD", ""),
			Timeout:  time.Duration(getEnvInt("PAYMENT_TIMEOUT_SEC", 30)) * time.Second,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
