package telemetry

import (
	"fmt"
	"time"
)

// Config holds the telemetry settings for a dockstrap invocation.
type Config struct {
	// ServiceName identifies this tool in exported telemetry.
	ServiceName string

	// ServiceVersion is the build version.
	ServiceVersion string

	// Logging configures structured logging.
	Logging LoggingConfig

	// Tracing configures pipeline trace export.
	Tracing TracingConfig
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level sets the minimum log level (debug, info, warn, error).
	Level string

	// Format selects the log format: "console" (colorized, human
	// readable) or "json".
	Format string
}

// TracingConfig configures trace export for pipeline runs.
type TracingConfig struct {
	// Enabled controls whether spans are exported at all.
	Enabled bool

	// Exporter selects the exporter: "stdout" or "otlp".
	Exporter string

	// Endpoint is the OTLP gRPC collector endpoint.
	Endpoint string

	// Insecure disables TLS towards the OTLP collector.
	Insecure bool

	// ExportTimeout bounds span export on shutdown.
	ExportTimeout time.Duration
}

// Validate checks the telemetry configuration.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Logging.Format)
	}
	if c.Tracing.Enabled {
		switch c.Tracing.Exporter {
		case "stdout":
		case "otlp":
			if c.Tracing.Endpoint == "" {
				return fmt.Errorf("otlp exporter requires an endpoint")
			}
		default:
			return fmt.Errorf("unsupported trace exporter: %s", c.Tracing.Exporter)
		}
	}
	return nil
}
