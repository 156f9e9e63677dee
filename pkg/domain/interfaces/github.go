package interfaces

import (
	"context"

	"github.com/m-mizutani/release-tagger/pkg/domain/model"
)

// GitHubClient defines operations for interacting with GitHub API.
// Lookups report a missing resource as a lookup result that is not Found,
// never as an error.
type GitHubClient interface {
	// CreateTag creates an annotated tag object pointing at a commit
	CreateTag(ctx context.Context, repo model.RepositoryContext, tag, message, sha string) error

	// GetTagRef looks up a reference such as "tags/<name>"
	GetTagRef(ctx context.Context, repo model.RepositoryContext, ref string) (*model.RefLookup, error)

	// CreateTagRef creates a fully qualified reference such as "refs/tags/<name>"
	CreateTagRef(ctx context.Context, repo model.RepositoryContext, ref, sha string) (*model.TagRef, error)

	// UpdateTagRef force-moves an existing reference to sha
	UpdateTagRef(ctx context.Context, repo model.RepositoryContext, ref, sha string) (*model.TagRef, error)

	// GetReleaseByTag looks up the release associated with a tag
	GetReleaseByTag(ctx context.Context, repo model.RepositoryContext, tag string) (*model.ReleaseLookup, error)

	// GenerateReleaseNotes requests generated release name and body for a tag
	GenerateReleaseNotes(ctx context.Context, repo model.RepositoryContext, tag string) (*model.ReleaseNotes, error)

	// CreateRelease creates a new release
	CreateRelease(ctx context.Context, repo model.RepositoryContext, release *model.Release) (*model.Release, error)

	// UpdateRelease edits the release identified by release.ID
	UpdateRelease(ctx context.Context, repo model.RepositoryContext, release *model.Release) (*model.Release, error)
}
