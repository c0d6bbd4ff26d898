package contract

import (
	"context"

	"saraswati-be/internal/entity"
	"saraswati-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	// Update is a conditional write: it compares the note's LockVersion
	// against the stored row and bumps it on success, failing with a
	// conflict when another writer got there first.
	Update(ctx context.Context, note *entity.Note) error
	// IncrementVotes applies the deltas as an atomic in-database update so
	// concurrent voters never lose increments.
	IncrementVotes(ctx context.Context, id uuid.UUID, upDelta, downDelta int) (*entity.Note, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
