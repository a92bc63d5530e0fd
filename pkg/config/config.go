package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Providers ProvidersConfig
	Rates     RatesConfig
	Batch     BatchConfig
	NATS      NATSConfig
	Tracing   TracingConfig
	Sentry    SentryConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int

	// RequestTimeout bounds the rate, history and currencies routes, in seconds
	RequestTimeout int
	CORSOrigins    string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// ProviderConfig holds the endpoint and credential of one external rate source
type ProviderConfig struct {
	URL       string
	AccessKey string
}

// ProvidersConfig holds the external rate provider configuration
type ProvidersConfig struct {
	CurrencyLayer  ProviderConfig
	Fixer          ProviderConfig
	TimeoutSeconds int
	RetryAttempts  int

	BreakerFailureThreshold int
	BreakerSuccessThreshold int
	BreakerTimeoutSeconds   int
	BreakerIntervalSeconds  int
}

// RatesConfig holds rate resolution tuning
type RatesConfig struct {
	CacheTTL time.Duration
}

// BatchConfig holds batch conversion tuning
type BatchConfig struct {
	Workers     int
	MaxUploadMB int
}

// NATSConfig holds NATS event bus configuration
type NATSConfig struct {
	URL     string
	Enabled bool
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Endpoint string
	Enabled  bool
}

// SentryConfig holds Sentry error reporting configuration
type SentryConfig struct {
	DSN     string
	Enabled bool
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Environment:    getEnv("ENVIRONMENT", "development"),
			ServiceName:    serviceName,
			ReadTimeout:    getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout:   getEnvAsInt("WRITE_TIMEOUT", 30),
			RequestTimeout: getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 15),
			CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "exchange"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Providers: ProvidersConfig{
			CurrencyLayer: ProviderConfig{
				URL:       getEnv("CURRENCYLAYER_API_URL", "https://api.currencylayer.com/live"),
				AccessKey: getEnv("CURRENCYLAYER_ACCESS_KEY", ""),
			},
			Fixer: ProviderConfig{
				URL:       getEnv("FIXER_API_URL", "https://data.fixer.io/api/latest"),
				AccessKey: getEnv("FIXER_ACCESS_KEY", ""),
			},
			TimeoutSeconds: getEnvAsInt("PROVIDER_TIMEOUT_SECONDS", 5),
			RetryAttempts:  getEnvAsInt("PROVIDER_RETRY_ATTEMPTS", 2),

			BreakerFailureThreshold: getEnvAsInt("PROVIDER_BREAKER_FAILURES", 5),
			BreakerSuccessThreshold: getEnvAsInt("PROVIDER_BREAKER_SUCCESSES", 1),
			BreakerTimeoutSeconds:   getEnvAsInt("PROVIDER_BREAKER_TIMEOUT_SECONDS", 30),
			BreakerIntervalSeconds:  getEnvAsInt("PROVIDER_BREAKER_INTERVAL_SECONDS", 60),
		},
		Rates: RatesConfig{
			CacheTTL: getEnvAsMinutes("RATE_CACHE_TTL_MINUTES", 60),
		},
		Batch: BatchConfig{
			Workers:     getEnvAsInt("BATCH_WORKERS", 1),
			MaxUploadMB: getEnvAsInt("BATCH_MAX_UPLOAD_MB", 10),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Enabled: getEnvAsBool("NATS_ENABLED", false),
		},
		Tracing: TracingConfig{
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
		},
		Sentry: SentryConfig{
			DSN:     getEnv("SENTRY_DSN", ""),
			Enabled: getEnvAsBool("SENTRY_ENABLED", false),
		},
	}

	if cfg.Batch.Workers < 1 {
		return nil, fmt.Errorf("BATCH_WORKERS must be at least 1, got %d", cfg.Batch.Workers)
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Timeout returns the per-call provider timeout
func (c *ProvidersConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsMinutes(key string, defaultMinutes int) time.Duration {
	minutes := getEnvAsInt(key, defaultMinutes)
	if minutes <= 0 {
		minutes = defaultMinutes
	}
	return time.Duration(minutes) * time.Minute
}
