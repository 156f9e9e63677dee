package config

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/release-tagger/pkg/domain/model"
	"github.com/m-mizutani/release-tagger/pkg/utils/inputs"
	"github.com/sethvargo/go-githubactions"
	"github.com/urfave/cli/v3"
)

// Action input names
const (
	InputName        = "name"
	InputEnvironment = "environment"
	InputGitHubToken = "githubToken"
	InputGitHubSHA   = "githubSHA"
	InputPrerelease  = "prerelease"
	InputDisabled    = "disabled"
)

// Inputs holds action inputs given explicitly on the command line. Inputs
// left empty are read from the Actions runner (INPUT_<NAME>) and then from
// their fallbacks.
type Inputs struct {
	Name        string
	Environment string
	GitHubToken string `masq:"secret"`
	GitHubSHA   string
	Prerelease  string
	Disabled    string
}

// Flags returns CLI flags for action inputs
func (c *Inputs) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "name",
			Usage:       "Component name, first segment of the tag (default: repository name)",
			Destination: &c.Name,
		},
		&cli.StringFlag{
			Name:        "environment",
			Usage:       "Environment label appended to the tag",
			Destination: &c.Environment,
		},
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token (default: GITHUB_TOKEN)",
			Destination: &c.GitHubToken,
		},
		&cli.StringFlag{
			Name:        "github-sha",
			Usage:       "Commit SHA to tag (default: GITHUB_SHA)",
			Destination: &c.GitHubSHA,
		},
		&cli.StringFlag{
			Name:        "prerelease",
			Usage:       "Mark the release as a prerelease (true, 1, yes, y)",
			Destination: &c.Prerelease,
		},
		&cli.StringFlag{
			Name:        "disabled",
			Usage:       "Skip tagging and releasing (true, 1, yes, y)",
			Destination: &c.Disabled,
		},
	}
}

// Get returns the explicitly given value of an action input
func (c *Inputs) Get(name string) string {
	switch name {
	case InputName:
		return c.Name
	case InputEnvironment:
		return c.Environment
	case InputGitHubToken:
		return c.GitHubToken
	case InputGitHubSHA:
		return c.GitHubSHA
	case InputPrerelease:
		return c.Prerelease
	case InputDisabled:
		return c.Disabled
	default:
		return ""
	}
}

// ActionInputSpecs returns the resolution rules of all action inputs.
// getenv supplies the runner environment used by fallbacks.
func ActionInputSpecs(getenv func(string) string) []inputs.Spec {
	return []inputs.Spec{
		{
			Name: InputName,
			Fallback: func() any {
				parts := strings.Split(getenv("GITHUB_REPOSITORY"), "/")
				if len(parts) < 2 {
					return ""
				}
				return parts[1]
			},
			Required: true,
		},
		{
			Name:     InputEnvironment,
			Fallback: inputs.Static(""),
		},
		{
			Name:     InputGitHubToken,
			Fallback: func() any { return getenv("GITHUB_TOKEN") },
			Required: true,
		},
		{
			Name:     InputGitHubSHA,
			Fallback: func() any { return getenv("GITHUB_SHA") },
			Required: true,
		},
		{
			Name:     InputPrerelease,
			Fallback: inputs.Static(false),
			Format:   inputs.FormatBoolean,
		},
		{
			Name:     InputDisabled,
			Fallback: inputs.Static(false),
			Format:   inputs.FormatBoolean,
		},
	}
}

// Resolve builds the run inputs from command line flags, the Actions runner
// inputs and the fallbacks, in that order of priority.
func (c *Inputs) Resolve(action *githubactions.Action, getenv func(string) string) (*model.Inputs, error) {
	values, err := inputs.Resolve(
		inputs.Chain(c.Get, action.GetInput),
		ActionInputSpecs(getenv),
	)
	if err != nil {
		return nil, err
	}

	return &model.Inputs{
		Name:        values.String(InputName),
		Environment: values.String(InputEnvironment),
		GitHubToken: values.String(InputGitHubToken),
		GitHubSHA:   values.String(InputGitHubSHA),
		Prerelease:  values.Bool(InputPrerelease),
		Disabled:    values.Bool(InputDisabled),
	}, nil
}

// RepositoryFromContext returns the target repository of the workflow run
func RepositoryFromContext(ghCtx *githubactions.GitHubContext) (model.RepositoryContext, error) {
	if ghCtx == nil {
		return model.RepositoryContext{}, goerr.New("GitHub Actions context is not available")
	}

	owner, repo, _ := strings.Cut(ghCtx.Repository, "/")
	if owner == "" || repo == "" {
		return model.RepositoryContext{}, goerr.New("failed to determine repository from GITHUB_REPOSITORY",
			goerr.V("repository", ghCtx.Repository),
		)
	}

	return model.RepositoryContext{Owner: owner, Repo: repo}, nil
}
