package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// WithEnv applies environment variable overrides. Unset variables leave
// the current value in place.
//
// Server:
//
//	PORT, ENVIRONMENT, LOG_LEVEL
//
// Catalog and data:
//
//	BASE_DIRECTORY - directory relative file locations resolve against
//	CATALOG_URL    - "memory", "file:///path/catalog.yaml" or "postgres://..."
//
// Object stores:
//
//	S3_REGION, S3_ENDPOINT, S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY, S3_USE_PATH_STYLE
//	GCS_ENABLED, GCS_CREDENTIALS_FILE, GCS_ENDPOINT
//	AZURE_ACCOUNT_NAME, AZURE_ACCOUNT_KEY, AZURE_SERVICE_URL
//
// Backends and API:
//
//	WMS_TIMEOUT, WMS_MAX_RETRIES, WMS_USER_AGENT, PROBE_TIMEOUT
//	SCAN_CONCURRENCY, CORS_ALLOWED_ORIGINS, ENABLE_EVENT_LOGGING
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return nil
	}
}

// WithFile reads a YAML, JSON or TOML configuration file. Environment
// variables still override values from the file.
func WithFile(path string) Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}
}
