package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/campushire/portal/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage StorageConfig

	// Auth configuration
	Auth AuthConfig

	// Files configuration
	Files FilesConfig

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

// StorageConfig holds record store and cache configuration
type StorageConfig struct {
	// Type selects the backend: memory, sqlite, or postgres
	Type string

	// SQLitePath is the database file for sqlite storage
	SQLitePath string

	// PostgresURL is the connection string for postgres storage
	PostgresURL      string
	PostgresMaxConns int
	PostgresMinConns int

	// Redis change feed (cross-replica fan-out); empty disables it
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Read cache
	CacheEnabled bool
	CacheSize    int
}

// AuthConfig holds credential resolution settings
type AuthConfig struct {
	// SessionTTL bounds how long an issued session lives
	SessionTTL time.Duration

	// SweepSchedule is a cron expression for the expired-session sweep
	SweepSchedule string

	// DemoEnabled keeps the fixed demo account table in the source chain
	DemoEnabled bool

	// Pinned super-admin credentials; empty email disables the pin
	SuperAdminEmail  string
	SuperAdminSecret string

	// External OIDC provider; empty issuer disables it
	OIDCIssuerURL    string
	OIDCClientID     string
	OIDCClientSecret string

	// Login rate limiting (requires Redis)
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// FilesConfig holds object storage settings for resume uploads
type FilesConfig struct {
	// Type selects the backend: memory or s3
	Type string

	S3Region       string
	S3Bucket       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Auth:          loadAuthConfig(),
		Files:         loadFilesConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("PORTAL_HOST", "0.0.0.0"),
		Port:            getEnv("PORTAL_PORT", "8080"),
		ReadTimeout:     getEnvDuration("PORTAL_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("PORTAL_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("PORTAL_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("PORTAL_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("PORTAL_HEALTH_PORT", "9090"),
	}
}

// loadStorageConfig loads storage configuration from environment
func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Type:             getEnv("PORTAL_STORAGE_TYPE", "memory"),
		SQLitePath:       getEnv("PORTAL_SQLITE_PATH", "portal.db"),
		PostgresURL:      getEnv("PORTAL_POSTGRES_URL", ""),
		PostgresMaxConns: getEnvInt("PORTAL_POSTGRES_MAX_CONNS", 20),
		PostgresMinConns: getEnvInt("PORTAL_POSTGRES_MIN_CONNS", 2),
		RedisURL:         getEnv("PORTAL_REDIS_URL", ""),
		RedisPassword:    getEnv("PORTAL_REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("PORTAL_REDIS_DB", 0),
		CacheEnabled:     getEnvBool("PORTAL_CACHE_ENABLED", true),
		CacheSize:        getEnvInt("PORTAL_CACHE_SIZE", 1024),
	}
}

// loadAuthConfig loads credential resolution settings from environment
func loadAuthConfig() AuthConfig {
	return AuthConfig{
		SessionTTL:       getEnvDuration("PORTAL_SESSION_TTL", 24*time.Hour),
		SweepSchedule:    getEnv("PORTAL_SESSION_SWEEP_SCHEDULE", "*/5 * * * *"),
		DemoEnabled:      getEnvBool("PORTAL_DEMO_ENABLED", true),
		SuperAdminEmail:  getEnv("PORTAL_SUPERADMIN_EMAIL", "superadmin@example.com"),
		SuperAdminSecret: getEnv("PORTAL_SUPERADMIN_SECRET", "super123"),
		OIDCIssuerURL:    getEnv("PORTAL_OIDC_ISSUER_URL", ""),
		OIDCClientID:     getEnv("PORTAL_OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("PORTAL_OIDC_CLIENT_SECRET", ""),
		LoginRateLimit:   getEnvInt("PORTAL_LOGIN_RATE_LIMIT", 10),
		LoginRateWindow:  getEnvDuration("PORTAL_LOGIN_RATE_WINDOW", time.Minute),
	}
}

// loadFilesConfig loads object storage settings from environment
func loadFilesConfig() FilesConfig {
	return FilesConfig{
		Type:           getEnv("PORTAL_FILES_TYPE", "memory"),
		S3Region:       getEnv("PORTAL_S3_REGION", "us-east-1"),
		S3Bucket:       getEnv("PORTAL_S3_BUCKET", ""),
		S3Endpoint:     getEnv("PORTAL_S3_ENDPOINT", ""),
		S3AccessKey:    getEnv("PORTAL_S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("PORTAL_S3_SECRET_KEY", ""),
		S3UsePathStyle: getEnvBool("PORTAL_S3_USE_PATH_STYLE", false),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       parseLogLevel(getEnv("PORTAL_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("PORTAL_METRICS_ENABLED", true),
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

	switch c.Storage.Type {
	case "memory":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite storage")
		}
	case "postgres":
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be memory, sqlite, or postgres)", c.Storage.Type)
	}

	switch c.Files.Type {
	case "memory":
	case "s3":
		if c.Files.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 file storage")
		}
	default:
		return fmt.Errorf("invalid files type: %s (must be memory or s3)", c.Files.Type)
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if c.Auth.OIDCIssuerURL != "" && c.Auth.OIDCClientID == "" {
		return fmt.Errorf("OIDC client ID is required when an issuer is configured")
	}
	if !c.Auth.DemoEnabled && c.Auth.OIDCIssuerURL == "" {
		return fmt.Errorf("no credential source configured: enable demo accounts or an OIDC issuer")
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
