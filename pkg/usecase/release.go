package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/release-tagger/pkg/domain/interfaces"
	"github.com/m-mizutani/release-tagger/pkg/domain/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/m-mizutani/release-tagger/pkg/usecase"

type releaseUseCase struct {
	githubClient interfaces.GitHubClient
}

// NewRelease creates a new instance of ReleaseUseCase
func NewRelease(githubClient interfaces.GitHubClient) interfaces.ReleaseUseCase {
	return &releaseUseCase{
		githubClient: githubClient,
	}
}

// Run tags the commit, reconciles the tag reference and reconciles the
// release, in that order. The first error aborts the run; steps already
// applied are left as they are.
func (uc *releaseUseCase) Run(ctx context.Context, pkg *model.ReleasePackage) (result *model.ReleaseResult, err error) {
	logger := ctxlog.From(ctx)

	result = &model.ReleaseResult{TagName: pkg.TagName}

	if pkg.Inputs.Disabled {
		logger.Info("Release is disabled, skipping", "tag_name", pkg.TagName)
		result.Skipped = true
		return result, nil
	}

	ctx, span := startSpan(ctx, "release.run", pkg)
	defer func() { endSpan(span, err) }()

	logger.Info("Starting release",
		"owner", pkg.Repository.Owner,
		"repo", pkg.Repository.Repo,
		"tag_name", pkg.TagName,
		"commit_sha", pkg.Inputs.GitHubSHA,
		"prerelease", pkg.Inputs.Prerelease,
	)

	uc.CreateTag(ctx, pkg)

	created, err := uc.ReconcileTagRef(ctx, pkg)
	if err != nil {
		return nil, err
	}
	result.RefCreated = created

	release, releaseCreated, err := uc.ReconcileRelease(ctx, pkg)
	if err != nil {
		return nil, err
	}
	result.Release = release
	result.Created = releaseCreated

	logger.Info("Release created!",
		"tag_name", pkg.TagName,
		"release_id", release.ID,
		"html_url", release.HTMLURL,
	)

	return result, nil
}

// CreateTag creates the annotated tag object. Any failure, including the tag
// already existing, is logged and ignored.
func (uc *releaseUseCase) CreateTag(ctx context.Context, pkg *model.ReleasePackage) {
	logger := ctxlog.From(ctx)
	ctx, span := startSpan(ctx, "release.create_tag", pkg)
	defer span.End()

	logger.Info("Tagging", "tag_name", pkg.TagName)

	if err := uc.githubClient.CreateTag(ctx, pkg.Repository, pkg.TagName, pkg.TagMessage(), pkg.Inputs.GitHubSHA); err != nil {
		span.AddEvent("tag creation ignored", trace.WithAttributes(attribute.String("error", err.Error())))
		logger.Debug("Ignored tag object creation failure",
			"tag_name", pkg.TagName,
			"error", err,
		)
	}
}

// ReconcileTagRef creates refs/tags/<tag> when absent or force-moves it to the
// commit when present. It reports whether the reference was created.
func (uc *releaseUseCase) ReconcileTagRef(ctx context.Context, pkg *model.ReleasePackage) (created bool, err error) {
	logger := ctxlog.From(ctx)
	ctx, span := startSpan(ctx, "release.reconcile_tag_ref", pkg)
	defer func() { endSpan(span, err) }()

	logger.Info("Preparing tag ref", "ref", pkg.TagRef())

	lookup, err := uc.githubClient.GetTagRef(ctx, pkg.Repository, pkg.TagRef())
	if err != nil {
		return false, goerr.Wrap(err, "failed to look up tag ref", goerr.V("ref", pkg.TagRef()))
	}

	if lookup.Found() {
		logger.Info("Updating existing tag ref",
			"ref", pkg.TagRef(),
			"from_sha", lookup.Ref.SHA,
			"to_sha", pkg.Inputs.GitHubSHA,
		)
		if _, err := uc.githubClient.UpdateTagRef(ctx, pkg.Repository, pkg.TagRef(), pkg.Inputs.GitHubSHA); err != nil {
			return false, goerr.Wrap(err, "failed to update tag ref", goerr.V("ref", pkg.TagRef()))
		}
		span.SetAttributes(attribute.String("tag_ref.action", "update"))
		return false, nil
	}

	logger.Info("Creating new tag ref", "ref", pkg.FullTagRef(), "sha", pkg.Inputs.GitHubSHA)
	if _, err := uc.githubClient.CreateTagRef(ctx, pkg.Repository, pkg.FullTagRef(), pkg.Inputs.GitHubSHA); err != nil {
		return false, goerr.Wrap(err, "failed to create tag ref", goerr.V("ref", pkg.FullTagRef()))
	}
	span.SetAttributes(attribute.String("tag_ref.action", "create"))

	return true, nil
}

// ReconcileRelease generates release notes for the tag and creates the
// release, or updates the existing one in place. It reports whether the
// release was created.
func (uc *releaseUseCase) ReconcileRelease(ctx context.Context, pkg *model.ReleasePackage) (release *model.Release, created bool, err error) {
	logger := ctxlog.From(ctx)
	ctx, span := startSpan(ctx, "release.reconcile_release", pkg)
	defer func() { endSpan(span, err) }()

	logger.Info("Preparing release", "tag_name", pkg.TagName)

	lookup, err := uc.githubClient.GetReleaseByTag(ctx, pkg.Repository, pkg.TagName)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to look up release", goerr.V("tag_name", pkg.TagName))
	}

	logger.Info("Fetching release notes", "tag_name", pkg.TagName)
	notes, err := uc.githubClient.GenerateReleaseNotes(ctx, pkg.Repository, pkg.TagName)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to generate release notes", goerr.V("tag_name", pkg.TagName))
	}

	desired := &model.Release{
		TagName:    pkg.TagName,
		Name:       notes.Name,
		Body:       notes.Body,
		Prerelease: pkg.Inputs.Prerelease,
	}

	if lookup.Found() {
		desired.ID = lookup.Release.ID
		logger.Info("Updating existing release", "tag_name", pkg.TagName, "release_id", desired.ID)

		release, err = uc.githubClient.UpdateRelease(ctx, pkg.Repository, desired)
		if err != nil {
			return nil, false, goerr.Wrap(err, "failed to update release", goerr.V("release_id", desired.ID))
		}
		span.SetAttributes(attribute.String("release.action", "update"), attribute.Int64("release.id", release.ID))
		return release, false, nil
	}

	logger.Info("Creating new release", "tag_name", pkg.TagName)
	release, err = uc.githubClient.CreateRelease(ctx, pkg.Repository, desired)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to create release", goerr.V("tag_name", pkg.TagName))
	}
	span.SetAttributes(attribute.String("release.action", "create"), attribute.Int64("release.id", release.ID))

	return release, true, nil
}

func startSpan(ctx context.Context, name string, pkg *model.ReleasePackage) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(
		attribute.String("repository", pkg.Repository.String()),
		attribute.String("tag_name", pkg.TagName),
		attribute.String("commit_sha", pkg.Inputs.GitHubSHA),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
