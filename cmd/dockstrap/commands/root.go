// Package commands defines the dockstrap command-line interface.
package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dockstrap/dockstrap/pkg/config"
	"github.com/dockstrap/dockstrap/pkg/telemetry"
)

var (
	// Global flags
	configPath    string
	logLevel      string
	jsonOutput    bool
	traceEnabled  bool
	traceEndpoint string
)

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dockstrap",
		Short: "Dockstrap - Docker Engine bootstrap for Debian/Ubuntu hosts",
		Long: `Dockstrap automates installation and initial configuration of Docker
Engine on a Debian or Ubuntu host: distribution validation, removal of
conflicting packages, vendor repository registration, engine install,
service activation, verification, and docker-group access for the
invoking user. The same pipeline can bootstrap a remote host over SSH.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "options file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "JSON log output")
	rootCmd.PersistentFlags().BoolVar(&traceEnabled, "trace", false, "export pipeline trace spans")
	rootCmd.PersistentFlags().StringVar(&traceEndpoint, "trace-endpoint", "", "OTLP gRPC endpoint for trace export (default: pretty-printed stdout)")

	rootCmd.AddCommand(newInstallCommand(version))
	rootCmd.AddCommand(newVerifyCommand(version))
	rootCmd.AddCommand(newFactsCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}

// loadConfig reads the options file (if any) and folds the global flags
// into it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	cfg.Log.Level = logLevel
	if jsonOutput {
		cfg.Log.Format = "json"
	}
	if traceEnabled {
		cfg.Trace.Enabled = true
		if traceEndpoint != "" {
			cfg.Trace.Exporter = "otlp"
			cfg.Trace.Endpoint = traceEndpoint
			cfg.Trace.Insecure = true
		}
	}
	return cfg, nil
}

// buildTelemetry constructs the logger and tracer from configuration.
func buildTelemetry(cfg *config.Config, version string) (zerolog.Logger, *telemetry.Tracer, error) {
	telCfg := telemetry.Config{
		ServiceName:    "dockstrap",
		ServiceVersion: version,
		Logging: telemetry.LoggingConfig{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
		},
		Tracing: telemetry.TracingConfig{
			Enabled:  cfg.Trace.Enabled,
			Exporter: cfg.Trace.Exporter,
			Endpoint: cfg.Trace.Endpoint,
			Insecure: cfg.Trace.Insecure,
		},
	}
	if err := telCfg.Validate(); err != nil {
		return zerolog.Nop(), nil, err
	}

	logger := telemetry.NewLogger(telCfg.Logging, nil)
	tracer, err := telemetry.NewTracer(telCfg.Tracing, telCfg.ServiceName, telCfg.ServiceVersion)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return logger, tracer, nil
}
