package cli

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/release-tagger/pkg/cli/config"
	"github.com/m-mizutani/release-tagger/pkg/domain/model"
	"github.com/m-mizutani/release-tagger/pkg/usecase"
	"github.com/sethvargo/go-githubactions"
	"github.com/urfave/cli/v3"
)

func cmdRelease() *cli.Command {
	var (
		githubCfg config.GitHub
		inputsCfg config.Inputs
	)

	flags := append(githubCfg.Flags(), inputsCfg.Flags()...)

	return &cli.Command{
		Name:    "release",
		Aliases: []string{"r"},
		Usage:   "Create or move today's tag and create or update its release",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx).With(slog.String("run_id", uuid.NewString()))
			ctx = ctxlog.With(ctx, logger)

			action := githubactions.New()

			resolved, err := inputsCfg.Resolve(action, os.Getenv)
			if err != nil {
				return err
			}
			action.AddMask(resolved.GitHubToken)

			// A disabled run touches neither the runner context nor the API
			if resolved.Disabled {
				pkg := model.NewReleasePackage(*resolved, model.RepositoryContext{})
				result, err := usecase.NewRelease(nil).Run(ctx, pkg)
				if err != nil {
					return err
				}
				setOutputs(action, result)
				return nil
			}

			ghCtx, err := action.Context()
			if err != nil {
				return goerr.Wrap(err, "failed to load GitHub Actions context")
			}

			repo, err := config.RepositoryFromContext(ghCtx)
			if err != nil {
				return err
			}

			githubClient, err := githubCfg.NewClient(resolved.GitHubToken, ghCtx.APIURL)
			if err != nil {
				return goerr.Wrap(err, "failed to create GitHub client")
			}

			pkg := model.NewReleasePackage(*resolved, repo)
			logger.Debug("Resolved release package", slog.Any("package", pkg))

			result, err := usecase.NewRelease(githubClient).Run(ctx, pkg)
			if err != nil {
				return err
			}

			setOutputs(action, result)
			return nil
		},
	}
}

func setOutputs(action *githubactions.Action, result *model.ReleaseResult) {
	action.SetOutput("tag_name", result.TagName)
	action.SetOutput("skipped", strconv.FormatBool(result.Skipped))

	if result.Release != nil {
		action.SetOutput("release_id", strconv.FormatInt(result.Release.ID, 10))
		action.SetOutput("release_url", result.Release.HTMLURL)
	}
}
