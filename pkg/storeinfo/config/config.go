// Package config assembles a storeinfo.Service from server configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/backend"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/backend/filestore"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/backend/geopkg"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/backend/objectstore"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/backend/postgis"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/backend/raster"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/backend/wms"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/catalog/memory"
	catalogpg "github.com/tendant/simple-storeinfo/pkg/storeinfo/catalog/postgres"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "8080",
		Environment:        "development",
		LogLevel:           "info",
		CatalogURL:         "memory",
		S3:                 S3Config{Region: "us-east-1"},
		WMS:                WMSConfig{Timeout: 30 * time.Second, MaxRetries: 3},
		ProbeTimeout:       10 * time.Second,
		ScanConcurrency:    4,
		EnableEventLogging: true,
	}
}

// ServerConfig represents configuration for the storeinfo server and CLI.
// Field tags name the environment variables read by WithEnv and the keys
// read by WithFile.
type ServerConfig struct {
	Port        string `yaml:"port" env:"PORT" env-description:"HTTP listen port"`
	Environment string `yaml:"environment" env:"ENVIRONMENT" env-description:"development, production, testing"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" env-description:"trace, debug, info, warn, error"`

	// BaseDirectory is the data directory relative file locations resolve against
	BaseDirectory string `yaml:"base_directory" env:"BASE_DIRECTORY"`

	// CatalogURL selects the catalog: "memory", a YAML catalog file
	// (file:///path/catalog.yaml or a plain path) or a postgres:// URL.
	CatalogURL string `yaml:"catalog_url" env:"CATALOG_URL"`

	S3    S3Config    `yaml:"s3" env-prefix:"S3_"`
	GCS   GCSConfig   `yaml:"gcs" env-prefix:"GCS_"`
	Azure AzureConfig `yaml:"azure" env-prefix:"AZURE_"`
	WMS   WMSConfig   `yaml:"wms" env-prefix:"WMS_"`

	ProbeTimeout       time.Duration `yaml:"probe_timeout" env:"PROBE_TIMEOUT"`
	ScanConcurrency    int           `yaml:"scan_concurrency" env:"SCAN_CONCURRENCY"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
	EnableEventLogging bool          `yaml:"enable_event_logging" env:"ENABLE_EVENT_LOGGING"`
}

// S3Config configures s3:// object access
type S3Config struct {
	Region          string `yaml:"region" env:"REGION"`
	Endpoint        string `yaml:"endpoint" env:"ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" env:"ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `yaml:"use_path_style" env:"USE_PATH_STYLE"`
}

// GCSConfig configures gs:// object access. The provider is only built
// when Enabled or CredentialsFile is set.
type GCSConfig struct {
	Enabled         bool   `yaml:"enabled" env:"ENABLED"`
	CredentialsFile string `yaml:"credentials_file" env:"CREDENTIALS_FILE"`
	Endpoint        string `yaml:"endpoint" env:"ENDPOINT"`
}

// AzureConfig configures az:// and abfss:// object access. The provider is
// only built when AccountName is set.
type AzureConfig struct {
	AccountName string `yaml:"account_name" env:"ACCOUNT_NAME"`
	AccountKey  string `yaml:"account_key" env:"ACCOUNT_KEY"`
	ServiceURL  string `yaml:"service_url" env:"SERVICE_URL"`
}

// WMSConfig configures the capabilities client
type WMSConfig struct {
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MaxRetries uint          `yaml:"max_retries" env:"MAX_RETRIES"`
	UserAgent  string        `yaml:"user_agent" env:"USER_AGENT"`
}

// CatalogType reports which catalog CatalogURL selects: "memory", "file" or "postgres".
func (c *ServerConfig) CatalogType() string {
	switch {
	case c.CatalogURL == "" || c.CatalogURL == "memory" || c.CatalogURL == "memory://":
		return "memory"
	case strings.HasPrefix(c.CatalogURL, "postgres://"), strings.HasPrefix(c.CatalogURL, "postgresql://"):
		return "postgres"
	default:
		return "file"
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.ScanConcurrency <= 0 {
		return fmt.Errorf("scan concurrency must be positive, got: %d", c.ScanConcurrency)
	}
	if c.WMS.Timeout <= 0 {
		return errors.New("wms timeout must be positive")
	}
	if c.WMS.MaxRetries == 0 {
		return errors.New("wms max retries must be at least 1")
	}
	if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
		return errors.New("s3 access key id and secret access key must be set together")
	}
	if c.Azure.AccountKey != "" && c.Azure.AccountName == "" {
		return errors.New("azure account name is required with an account key")
	}
	return nil
}

// ParseLevel parses a log level name. "trace" maps to storeinfo.LevelTrace.
func ParseLevel(name string) (slog.Level, error) {
	if strings.EqualFold(name, "trace") {
		return storeinfo.LevelTrace, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// Level returns the configured log level
func (c *ServerConfig) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// BuildService creates a Service instance from the server configuration.
// The returned cleanup function releases database pools and object store
// clients; it is never nil.
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger, extra ...storeinfo.Option) (storeinfo.Service, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	catalog, closeCatalog, err := c.BuildCatalog(ctx)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to build catalog: %w", err)
	}
	closers = append(closers, closeCatalog)

	objects, closeObjects, err := c.buildObjectStores(ctx)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("failed to build object stores: %w", err)
	}
	closers = append(closers, closeObjects)

	router := c.buildRouter(objects)
	options := []storeinfo.Option{
		storeinfo.WithCatalog(catalog),
		storeinfo.WithBaseDirectory(c.BaseDirectory),
		storeinfo.WithVectorOpener(router),
		storeinfo.WithRasterOpener(router),
		storeinfo.WithServiceOpener(router),
		storeinfo.WithLogger(logger),
	}
	if c.EnableEventLogging {
		options = append(options, storeinfo.WithEventSink(storeinfo.NewLoggingEventSink(logger)))
	}
	options = append(options, extra...)

	svc, err := storeinfo.New(options...)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return svc, cleanup, nil
}

// BuildCatalog opens the catalog selected by CatalogURL
func (c *ServerConfig) BuildCatalog(ctx context.Context) (storeinfo.Catalog, func(), error) {
	switch c.CatalogType() {
	case "memory":
		return memory.New(), func() {}, nil
	case "file":
		path := strings.TrimPrefix(c.CatalogURL, "file://")
		cat, err := memory.LoadFile(path)
		if err != nil {
			return nil, func() {}, err
		}
		return cat, func() {}, nil
	default:
		pool, err := NewCatalogPool(ctx, c.CatalogURL)
		if err != nil {
			return nil, func() {}, err
		}
		return catalogpg.NewWithPool(pool), pool.Close, nil
	}
}

// NewCatalogPool opens a read-only pool on the catalog database
func NewCatalogPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CATALOG_URL: %w", err)
	}
	cfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

func (c *ServerConfig) buildObjectStores(ctx context.Context) (*objectstore.Registry, func(), error) {
	reg := objectstore.NewRegistry()
	var closers []func()
	cleanup := func() {
		for _, f := range closers {
			f()
		}
	}

	s3, err := objectstore.NewS3(ctx, objectstore.S3Config{
		Region:          c.S3.Region,
		AccessKeyID:     c.S3.AccessKeyID,
		SecretAccessKey: c.S3.SecretAccessKey,
		Endpoint:        c.S3.Endpoint,
		UsePathStyle:    c.S3.UsePathStyle,
	})
	if err != nil {
		return nil, func() {}, err
	}
	reg.Register("s3", s3)

	if c.GCS.Enabled || c.GCS.CredentialsFile != "" {
		gcs, err := objectstore.NewGCS(ctx, objectstore.GCSConfig{
			CredentialsFile: c.GCS.CredentialsFile,
			Endpoint:        c.GCS.Endpoint,
		})
		if err != nil {
			return nil, func() {}, err
		}
		closers = append(closers, func() { _ = gcs.Close() })
		reg.Register("gs", gcs)
	}

	if c.Azure.AccountName != "" {
		az, err := objectstore.NewAzure(objectstore.AzureConfig{
			AccountName: c.Azure.AccountName,
			AccountKey:  c.Azure.AccountKey,
			ServiceURL:  c.Azure.ServiceURL,
		})
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		reg.Register("az", az)
		reg.Register("abfss", az)
	}
	return reg, cleanup, nil
}

func (c *ServerConfig) buildRouter(objects *objectstore.Registry) *backend.Router {
	return backend.NewRouter(
		backend.WithFiles(filestore.New(c.BaseDirectory, objects)),
		backend.WithDatabase(geopkg.DBType, geopkg.New(c.BaseDirectory)),
		backend.WithDatabase(postgis.DBType, postgis.New()),
		backend.WithRaster(raster.New(raster.Config{
			BaseDirectory: c.BaseDirectory,
			Objects:       objects,
			Timeout:       c.ProbeTimeout,
		})),
		backend.WithService(wms.New(wms.Config{
			Timeout:    c.WMS.Timeout,
			MaxRetries: c.WMS.MaxRetries,
			UserAgent:  c.WMS.UserAgent,
		})),
	)
}
