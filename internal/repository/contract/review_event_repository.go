package contract

import (
	"context"

	"saraswati-be/internal/entity"
	"saraswati-be/internal/repository/specification"
)

type ReviewEventRepository interface {
	// Append writes a new timeline entry. Events are never updated or
	// deleted.
	Append(ctx context.Context, event *entity.ReviewEvent) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReviewEvent, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
