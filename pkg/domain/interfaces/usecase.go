package interfaces

import (
	"context"

	"github.com/m-mizutani/release-tagger/pkg/domain/model"
)

// ReleaseUseCase defines operations for tagging a commit and reconciling its release
type ReleaseUseCase interface {
	// Run creates the tag, reconciles its reference and reconciles the release
	Run(ctx context.Context, pkg *model.ReleasePackage) (*model.ReleaseResult, error)

	// CreateTag creates the annotated tag object, ignoring any failure
	CreateTag(ctx context.Context, pkg *model.ReleasePackage)

	// ReconcileTagRef creates or force-updates refs/tags/<tag>
	ReconcileTagRef(ctx context.Context, pkg *model.ReleasePackage) (created bool, err error)

	// ReconcileRelease creates the release or updates it in place
	ReconcileRelease(ctx context.Context, pkg *model.ReleasePackage) (release *model.Release, created bool, err error)
}
