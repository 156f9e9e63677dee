package github

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/release-tagger/pkg/domain/interfaces"
	"github.com/m-mizutani/release-tagger/pkg/domain/model"
	"github.com/m-mizutani/release-tagger/pkg/domain/types"
)

// DefaultAPIURL is the REST endpoint of github.com
const DefaultAPIURL = "https://api.github.com"

type config struct {
	apiURL     string
	uploadURL  string
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*config)

// WithAPIURL sets the REST API base URL, e.g. https://ghe.example.com/api/v3
func WithAPIURL(apiURL string) Option {
	return func(c *config) {
		c.apiURL = apiURL
	}
}

// WithUploadURL sets the upload base URL. Defaults to the API URL.
func WithUploadURL(uploadURL string) Option {
	return func(c *config) {
		c.uploadURL = uploadURL
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *config) {
		c.httpClient = httpClient
	}
}

type client struct {
	githubClient *github.Client
}

// NewClient creates a new GitHub client authenticated with a token
func NewClient(token string, opts ...Option) (interfaces.GitHubClient, error) {
	if token == "" {
		return nil, goerr.New("GitHub token is required")
	}

	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	githubClient := github.NewClient(cfg.httpClient).WithAuthToken(token)

	apiURL := strings.TrimSuffix(cfg.apiURL, "/")
	if apiURL != "" && apiURL != DefaultAPIURL {
		uploadURL := cfg.uploadURL
		if uploadURL == "" {
			uploadURL = apiURL
		}

		var err error
		githubClient, err = githubClient.WithEnterpriseURLs(apiURL, uploadURL)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to set GitHub API URL", goerr.V("api_url", apiURL))
		}
	}

	return &client{
		githubClient: githubClient,
	}, nil
}

// CreateTag creates an annotated tag object pointing at a commit
func (c *client) CreateTag(ctx context.Context, repo model.RepositoryContext, tag, message, sha string) error {
	_, _, err := c.githubClient.Git.CreateTag(ctx, repo.Owner, repo.Repo, github.CreateTag{
		Tag:     tag,
		Message: message,
		Object:  sha,
		Type:    "commit",
	})
	if err != nil {
		return wrapAPIError(err, "failed to create tag object", repo, goerr.V("tag", tag), goerr.V("sha", sha))
	}

	return nil
}

// GetTagRef looks up a reference. 404 is reported as a lookup result that is not Found.
func (c *client) GetTagRef(ctx context.Context, repo model.RepositoryContext, ref string) (*model.RefLookup, error) {
	reference, resp, err := c.githubClient.Git.GetRef(ctx, repo.Owner, repo.Repo, ref)
	if err != nil {
		if isNotFound(resp) {
			return &model.RefLookup{}, nil
		}
		return nil, wrapAPIError(err, "failed to get reference", repo, goerr.V("ref", ref))
	}

	return &model.RefLookup{Ref: toTagRef(reference)}, nil
}

// CreateTagRef creates a fully qualified reference
func (c *client) CreateTagRef(ctx context.Context, repo model.RepositoryContext, ref, sha string) (*model.TagRef, error) {
	reference, _, err := c.githubClient.Git.CreateRef(ctx, repo.Owner, repo.Repo, github.CreateRef{
		Ref: ref,
		SHA: sha,
	})
	if err != nil {
		return nil, wrapAPIError(err, "failed to create reference", repo, goerr.V("ref", ref), goerr.V("sha", sha))
	}

	return toTagRef(reference), nil
}

// UpdateTagRef force-moves an existing reference to sha
func (c *client) UpdateTagRef(ctx context.Context, repo model.RepositoryContext, ref, sha string) (*model.TagRef, error) {
	reference, _, err := c.githubClient.Git.UpdateRef(ctx, repo.Owner, repo.Repo, ref, github.UpdateRef{
		SHA:   sha,
		Force: github.Ptr(true),
	})
	if err != nil {
		return nil, wrapAPIError(err, "failed to update reference", repo, goerr.V("ref", ref), goerr.V("sha", sha))
	}

	return toTagRef(reference), nil
}

// GetReleaseByTag looks up a release. 404 is reported as a lookup result that is not Found.
func (c *client) GetReleaseByTag(ctx context.Context, repo model.RepositoryContext, tag string) (*model.ReleaseLookup, error) {
	release, resp, err := c.githubClient.Repositories.GetReleaseByTag(ctx, repo.Owner, repo.Repo, tag)
	if err != nil {
		if isNotFound(resp) {
			return &model.ReleaseLookup{}, nil
		}
		return nil, wrapAPIError(err, "failed to get release by tag", repo, goerr.V("tag", tag))
	}

	return &model.ReleaseLookup{Release: toRelease(release)}, nil
}

// GenerateReleaseNotes requests generated release name and body for a tag
func (c *client) GenerateReleaseNotes(ctx context.Context, repo model.RepositoryContext, tag string) (*model.ReleaseNotes, error) {
	notes, _, err := c.githubClient.Repositories.GenerateReleaseNotes(ctx, repo.Owner, repo.Repo, &github.GenerateNotesOptions{
		TagName: tag,
	})
	if err != nil {
		return nil, wrapAPIError(err, "failed to generate release notes", repo, goerr.V("tag", tag))
	}

	return &model.ReleaseNotes{
		Name: notes.Name,
		Body: notes.Body,
	}, nil
}

// CreateRelease creates a new release
func (c *client) CreateRelease(ctx context.Context, repo model.RepositoryContext, release *model.Release) (*model.Release, error) {
	created, _, err := c.githubClient.Repositories.CreateRelease(ctx, repo.Owner, repo.Repo, toRepositoryRelease(release))
	if err != nil {
		return nil, wrapAPIError(err, "failed to create release", repo, goerr.V("tag", release.TagName))
	}

	return toRelease(created), nil
}

// UpdateRelease edits the release identified by release.ID
func (c *client) UpdateRelease(ctx context.Context, repo model.RepositoryContext, release *model.Release) (*model.Release, error) {
	updated, _, err := c.githubClient.Repositories.EditRelease(ctx, repo.Owner, repo.Repo, release.ID, toRepositoryRelease(release))
	if err != nil {
		return nil, wrapAPIError(err, "failed to update release",
			repo,
			goerr.V("tag", release.TagName),
			goerr.V("release_id", release.ID),
		)
	}

	return toRelease(updated), nil
}

func isNotFound(resp *github.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

func wrapAPIError(err error, msg string, repo model.RepositoryContext, opts ...goerr.Option) error {
	opts = append(opts,
		goerr.T(types.ErrTagGitHubAPI),
		goerr.V("owner", repo.Owner),
		goerr.V("repo", repo.Repo),
	)
	return goerr.Wrap(err, msg, opts...)
}

func toTagRef(ref *github.Reference) *model.TagRef {
	if ref == nil {
		return nil
	}

	return &model.TagRef{
		Ref: ref.GetRef(),
		SHA: ref.GetObject().GetSHA(),
	}
}

func toRelease(release *github.RepositoryRelease) *model.Release {
	if release == nil {
		return nil
	}

	return &model.Release{
		ID:         release.GetID(),
		TagName:    release.GetTagName(),
		Name:       release.GetName(),
		Body:       release.GetBody(),
		Prerelease: release.GetPrerelease(),
		HTMLURL:    release.GetHTMLURL(),
	}
}

func toRepositoryRelease(release *model.Release) *github.RepositoryRelease {
	return &github.RepositoryRelease{
		TagName:    github.Ptr(release.TagName),
		Name:       github.Ptr(release.Name),
		Body:       github.Ptr(release.Body),
		Prerelease: github.Ptr(release.Prerelease),
	}
}
