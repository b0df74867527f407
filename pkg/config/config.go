package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/gatehouse/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Interaction store configuration
	Redis RedisConfig

	// Multi-tenancy configuration
	Tenancy TenancyConfig

	// Cookie signing keys, newest first
	CookieKeys []string

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig holds the interaction store connection settings
type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// TenancyConfig holds multi-tenancy settings
type TenancyConfig struct {
	// DomainBased selects hostname-based tenant resolution (cloud) over the
	// fixed single-tenant endpoint (OSS).
	DomainBased bool

	// BaseDomain is the shared suffix for tenant hostnames, e.g. "gatehouse.app".
	BaseDomain string

	// DefaultTenantID is the tenant served when resolution is path-based.
	DefaultTenantID string

	// Endpoint is the canonical endpoint for the default tenant in
	// non-domain-based deployments.
	Endpoint string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel observability.LogLevel

	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("GATEHOUSE_HOST", "0.0.0.0"),
			Port:            getEnv("GATEHOUSE_PORT", "3001"),
			ReadTimeout:     getEnvDuration("GATEHOUSE_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("GATEHOUSE_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("GATEHOUSE_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("GATEHOUSE_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("GATEHOUSE_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			URL:          getEnv("GATEHOUSE_DATABASE_URL", ""),
			MaxOpenConns: getEnvInt("GATEHOUSE_DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getEnvInt("GATEHOUSE_DATABASE_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL:      getEnv("GATEHOUSE_REDIS_URL", "localhost:6379"),
			Password: getEnv("GATEHOUSE_REDIS_PASSWORD", ""),
			DB:       getEnvInt("GATEHOUSE_REDIS_DB", 0),
		},
		Tenancy: TenancyConfig{
			DomainBased:     getEnvBool("GATEHOUSE_DOMAIN_BASED_MULTI_TENANCY", false),
			BaseDomain:      getEnv("GATEHOUSE_TENANT_BASE_DOMAIN", ""),
			DefaultTenantID: getEnv("GATEHOUSE_DEFAULT_TENANT_ID", "default"),
			Endpoint:        getEnv("GATEHOUSE_ENDPOINT", ""),
		},
		CookieKeys:    splitAndTrim(getEnv("GATEHOUSE_COOKIE_KEYS", "")),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("GATEHOUSE_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("GATEHOUSE_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("GATEHOUSE_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("GATEHOUSE_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("GATEHOUSE_OTEL_SERVICE_NAME", "gatehouse"),
		OTelServiceVersion: getEnv("GATEHOUSE_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("GATEHOUSE_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("database URL is required")
	}

	if c.Tenancy.DomainBased {
		if c.Tenancy.BaseDomain == "" {
			return fmt.Errorf("tenant base domain is required for domain-based multi-tenancy")
		}
	} else {
		if c.Tenancy.Endpoint == "" {
			return fmt.Errorf("endpoint is required when multi-tenancy is not domain-based")
		}
		if _, err := url.Parse(c.Tenancy.Endpoint); err != nil {
			return fmt.Errorf("invalid endpoint: %w", err)
		}
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// splitAndTrim splits a comma-separated list, dropping empty entries
func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
