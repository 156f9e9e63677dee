package types

import "github.com/m-mizutani/goerr/v2"

// Version is overwritten at build time with -ldflags
var Version = "dev"

var (
	// ErrTagMissingInput marks a required input that resolved to an empty value
	ErrTagMissingInput = goerr.NewTag("missing_input")

	// ErrTagGitHubAPI marks a failed call to the GitHub API
	ErrTagGitHubAPI = goerr.NewTag("github_api")
)
