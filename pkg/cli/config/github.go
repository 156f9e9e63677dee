package config

import (
	"github.com/m-mizutani/release-tagger/pkg/domain/interfaces"
	githubinfra "github.com/m-mizutani/release-tagger/pkg/infra/github"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub API endpoint configuration
type GitHub struct {
	APIURL    string
	UploadURL string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub REST API base URL (defaults to the runner's GITHUB_API_URL)",
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("RELEASE_TAGGER_GITHUB_API_URL"),
		},
		&cli.StringFlag{
			Name:        "github-upload-url",
			Usage:       "GitHub upload base URL for GitHub Enterprise Server",
			Destination: &c.UploadURL,
			Sources:     cli.EnvVars("RELEASE_TAGGER_GITHUB_UPLOAD_URL"),
		},
	}
}

// NewClient creates a GitHub client. defaultAPIURL is used when no API URL
// is configured explicitly.
func (c *GitHub) NewClient(token, defaultAPIURL string) (interfaces.GitHubClient, error) {
	apiURL := c.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	return githubinfra.NewClient(token,
		githubinfra.WithAPIURL(apiURL),
		githubinfra.WithUploadURL(c.UploadURL),
	)
}
