package config

import (
	"fmt"
	"time"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithLogLevel sets the log level (trace, debug, info, warn, error)
func WithLogLevel(level string) Option {
	return func(c *ServerConfig) error {
		if _, err := ParseLevel(level); err != nil {
			return err
		}
		c.LogLevel = level
		return nil
	}
}

// WithBaseDirectory sets the data directory relative locations resolve against
func WithBaseDirectory(dir string) Option {
	return func(c *ServerConfig) error {
		c.BaseDirectory = dir
		return nil
	}
}

// WithCatalogFile loads the catalog from a YAML file
func WithCatalogFile(path string) Option {
	return func(c *ServerConfig) error {
		if path == "" {
			return fmt.Errorf("catalog file path cannot be empty")
		}
		c.CatalogURL = "file://" + path
		return nil
	}
}

// WithPostgresCatalog reads the catalog from a PostgreSQL database
func WithPostgresCatalog(databaseURL string) Option {
	return func(c *ServerConfig) error {
		if databaseURL == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.CatalogURL = databaseURL
		if c.CatalogType() != "postgres" {
			return fmt.Errorf("not a postgres URL: %s", databaseURL)
		}
		return nil
	}
}

// WithS3 configures s3:// access. Empty credentials use the AWS default chain.
func WithS3(region, endpoint, accessKeyID, secretAccessKey string, usePathStyle bool) Option {
	return func(c *ServerConfig) error {
		if region != "" {
			c.S3.Region = region
		}
		c.S3.Endpoint = endpoint
		c.S3.AccessKeyID = accessKeyID
		c.S3.SecretAccessKey = secretAccessKey
		c.S3.UsePathStyle = usePathStyle
		return nil
	}
}

// WithGCS enables gs:// access. An empty credentials file uses application
// default credentials.
func WithGCS(credentialsFile string) Option {
	return func(c *ServerConfig) error {
		c.GCS.Enabled = true
		c.GCS.CredentialsFile = credentialsFile
		return nil
	}
}

// WithAzure enables az:// and abfss:// access. An empty key gives anonymous access.
func WithAzure(accountName, accountKey string) Option {
	return func(c *ServerConfig) error {
		if accountName == "" {
			return fmt.Errorf("azure account name cannot be empty")
		}
		c.Azure.AccountName = accountName
		c.Azure.AccountKey = accountKey
		return nil
	}
}

// WithWMS sets the capabilities request timeout and attempt count
func WithWMS(timeout time.Duration, maxRetries uint) Option {
	return func(c *ServerConfig) error {
		if timeout <= 0 {
			return fmt.Errorf("wms timeout must be positive, got: %s", timeout)
		}
		if maxRetries == 0 {
			return fmt.Errorf("wms max retries must be at least 1")
		}
		c.WMS.Timeout = timeout
		c.WMS.MaxRetries = maxRetries
		return nil
	}
}

// WithScanConcurrency bounds the number of stores described in parallel
func WithScanConcurrency(n int) Option {
	return func(c *ServerConfig) error {
		if n <= 0 {
			return fmt.Errorf("scan concurrency must be positive, got: %d", n)
		}
		c.ScanConcurrency = n
		return nil
	}
}

// WithCORSAllowedOrigins sets the origins allowed by the HTTP API
func WithCORSAllowedOrigins(origins ...string) Option {
	return func(c *ServerConfig) error {
		c.CORSAllowedOrigins = origins
		return nil
	}
}

// WithEventLogging toggles the logging event sink
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}
