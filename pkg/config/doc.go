// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	PORTAL_HOST="0.0.0.0"
//	PORTAL_PORT="8080"
//	PORTAL_HEALTH_PORT="9090"
//	PORTAL_READ_TIMEOUT="15s"
//	PORTAL_WRITE_TIMEOUT="15s"
//
// Storage settings:
//
//	PORTAL_STORAGE_TYPE="memory"  # memory, sqlite, postgres
//	PORTAL_SQLITE_PATH="portal.db"
//	PORTAL_POSTGRES_URL="postgres://localhost/portal"
//	PORTAL_POSTGRES_MAX_CONNS="20"
//	PORTAL_POSTGRES_MIN_CONNS="2"
//	PORTAL_REDIS_URL="redis://localhost:6379"
//	PORTAL_CACHE_ENABLED="true"
//	PORTAL_CACHE_SIZE="1024"
//
// Auth settings:
//
//	PORTAL_SESSION_TTL="24h"
//	PORTAL_SESSION_SWEEP_SCHEDULE="*/5 * * * *"
//	PORTAL_DEMO_ENABLED="true"
//	PORTAL_SUPERADMIN_EMAIL="superadmin@example.com"
//	PORTAL_OIDC_ISSUER_URL="https://issuer.example.com"
//	PORTAL_OIDC_CLIENT_ID="portal"
//
// Files settings:
//
//	PORTAL_FILES_TYPE="memory"  # memory, s3
//	PORTAL_S3_BUCKET="portal-resumes"
//	PORTAL_S3_REGION="us-east-1"
//	PORTAL_S3_ENDPOINT="http://minio:9000"
//
// Observability settings:
//
//	PORTAL_LOG_LEVEL="info"  # debug, info, warn, error
//	PORTAL_METRICS_ENABLED="true"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Storage: %s\n", cfg.Storage.Type)
//
// # Related Packages
//
//   - pkg/storage: Uses storage configuration
//   - pkg/observability: Uses observability configuration
package config
