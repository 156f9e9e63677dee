package config

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/release-tagger/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Sentry holds error reporting configuration
type Sentry struct {
	DSN string
	Env string

	enabled bool
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN to report run failures (disabled if empty)",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("RELEASE_TAGGER_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Destination: &c.Env,
			Sources:     cli.EnvVars("RELEASE_TAGGER_SENTRY_ENV"),
		},
	}
}

// Configure initializes the Sentry client if a DSN is given
func (c *Sentry) Configure() error {
	if c.DSN == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Env,
		Release:     types.Version,
	}); err != nil {
		return goerr.Wrap(err, "failed to initialize sentry")
	}

	c.enabled = true
	return nil
}

// Report sends err to Sentry and waits for delivery. No-op unless configured.
func (c *Sentry) Report(err error) {
	if !c.enabled || err == nil {
		return
	}

	sentry.CaptureException(err)
	sentry.Flush(2 * time.Second)
}
