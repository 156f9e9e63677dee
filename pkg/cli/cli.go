package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/release-tagger/pkg/cli/config"
	"github.com/m-mizutani/release-tagger/pkg/domain/types"
	"github.com/sethvargo/go-githubactions"
	"github.com/urfave/cli/v3"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var (
		loggerCfg config.Logger
		tracerCfg config.Tracer
		sentryCfg config.Sentry
		logger    *slog.Logger
		shutdown  func(context.Context) error
	)

	flags := append(loggerCfg.Flags(), tracerCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	app := &cli.Command{
		Name:           "release-tagger",
		Usage:          "Tag a commit with a dated tag and create or update its GitHub release",
		Version:        types.Version,
		Flags:          flags,
		DefaultCommand: "release",
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)

			if err := sentryCfg.Configure(); err != nil {
				return nil, err
			}

			shutdown, err = tracerCfg.Configure()
			if err != nil {
				return nil, err
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if shutdown == nil {
				return nil
			}
			return shutdown(ctx)
		},
		Commands: []*cli.Command{
			cmdRelease(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))

		// Fails the workflow step with the error message as its reason
		githubactions.New().Errorf("%s", failureMessage(err))
		sentryCfg.Report(err)
		return err
	}

	return nil
}

func failureMessage(err error) string {
	switch {
	case hasTag(err, types.ErrTagMissingInput, goerr.HasTag):
		return "Invalid action inputs: " + err.Error()
	case hasTag(err, types.ErrTagGitHubAPI, goerr.HasTag):
		return "GitHub API request failed: " + err.Error()
	default:
		return err.Error()
	}
}

// hasTag reports whether any error in the chain carries tag. goerr does not
// export its tag type, so the tag type is inferred and checked via check.
func hasTag[T any](err error, tag T, check func(error, T) bool) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		if check(err, tag) {
			return true
		}
	}
	return false
}
