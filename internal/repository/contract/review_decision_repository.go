package contract

import (
	"context"

	"saraswati-be/internal/entity"
	"saraswati-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ReviewDecisionRepository interface {
	// Upsert replaces the reviewer's previous stance; one row per
	// (review, user) at all times.
	Upsert(ctx context.Context, decision *entity.ReviewDecision) error
	// DeleteByDecision removes all rows with the given stance, used when a
	// resubmission clears outstanding change requests.
	DeleteByDecision(ctx context.Context, reviewId uuid.UUID, decision entity.DecisionKind) error
	// DeleteExceptUsers drops decisions from reviewers no longer assigned.
	DeleteExceptUsers(ctx context.Context, reviewId uuid.UUID, keepUserIds []string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReviewDecision, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
