package config

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Tracer holds OpenTelemetry tracing configuration
type Tracer struct {
	Enabled bool

	// Output defaults to os.Stderr
	Output io.Writer
}

// Flags returns CLI flags for tracing configuration
func (c *Tracer) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "trace",
			Usage:       "Print OpenTelemetry spans of GitHub API steps to stderr",
			Destination: &c.Enabled,
			Sources:     cli.EnvVars("RELEASE_TAGGER_TRACE"),
		},
	}
}

// Configure installs the global tracer provider. The returned function
// flushes and shuts it down. When tracing is disabled the global no-op
// provider is left untouched.
func (c *Tracer) Configure() (func(context.Context) error, error) {
	if !c.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	w := c.Output
	if w == nil {
		w = os.Stderr
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create trace exporter")
	}

	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}
