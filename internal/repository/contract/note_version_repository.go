package contract

import (
	"context"

	"saraswati-be/internal/entity"
	"saraswati-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NoteVersionRepository interface {
	Create(ctx context.Context, version *entity.NoteVersion) error
	// Update persists a full version row. Content mutation of non-draft
	// rows is rejected here as a last line of defense; the service layer
	// enforces the freeze under the note lock.
	Update(ctx context.Context, version *entity.NoteVersion) error
	// Delete hard-removes a version row. Only discarded drafts are ever
	// deleted; submitted versions stay in the ledger forever.
	Delete(ctx context.Context, id uuid.UUID) error
	// NextVersionIndex returns max(version_index)+1 for the note. Callers
	// must hold the note lock so indices stay gapless.
	NextVersionIndex(ctx context.Context, noteId uuid.UUID) (int, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.NoteVersion, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.NoteVersion, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
