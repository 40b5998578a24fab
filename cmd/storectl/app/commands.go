// Package app provides the storectl commands.
package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/config"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	catalog    string
	baseDir    string
	logLevel   string
	output     string
}

// NewRootCmd creates the storectl root command with its subcommands.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "storectl",
		Short:         "Inspect data stores registered in a storeinfo catalog",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.validateOutput()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML configuration file")
	flags.StringVar(&opts.catalog, "catalog", "", "Catalog YAML file or postgres:// URL (overrides CATALOG_URL)")
	flags.StringVar(&opts.baseDir, "base-dir", "", "Data directory relative locations resolve against")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	flags.StringVarP(&opts.output, "output", "o", outputTable, "Output format: table or json")

	rootCmd.AddCommand(newWorkspacesCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newDescribeCmd(opts))
	rootCmd.AddCommand(newScanCmd(opts))

	return rootCmd
}

func (o *rootOptions) validateOutput() error {
	switch o.output {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (want %s or %s)", o.output, outputTable, outputJSON)
	}
}

func (o *rootOptions) loadConfig() (*config.ServerConfig, error) {
	var opts []config.Option
	if o.configPath != "" {
		opts = append(opts, config.WithFile(o.configPath))
	}
	opts = append(opts, config.WithEnv())
	if o.catalog != "" {
		if strings.HasPrefix(o.catalog, "postgres://") || strings.HasPrefix(o.catalog, "postgresql://") {
			opts = append(opts, config.WithPostgresCatalog(o.catalog))
		} else {
			opts = append(opts, config.WithCatalogFile(strings.TrimPrefix(o.catalog, "file://")))
		}
	}
	if o.baseDir != "" {
		opts = append(opts, config.WithBaseDirectory(o.baseDir))
	}
	if o.logLevel != "" {
		opts = append(opts, config.WithLogLevel(o.logLevel))
	}
	// Descriptor events go to metrics and logs on the server; the CLI
	// prints the descriptors themselves.
	opts = append(opts, config.WithEventLogging(false))
	return config.Load(opts...)
}

// buildService loads configuration and wires the service. Logs go to the
// command's error stream so they never mix with JSON output.
func (o *rootOptions) buildService(cmd *cobra.Command) (storeinfo.Service, *config.ServerConfig, func(), error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, func() {}, fmt.Errorf("failed to load config: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Level()}))

	svc, cleanup, err := cfg.BuildService(cmd.Context(), logger)
	if err != nil {
		return nil, nil, cleanup, fmt.Errorf("failed to build service: %w", err)
	}
	return svc, cfg, cleanup, nil
}
