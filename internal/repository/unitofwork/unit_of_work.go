package unitofwork

import (
	"context"

	"saraswati-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	NoteRepository() contract.NoteRepository
	NoteVersionRepository() contract.NoteVersionRepository
	ReviewRepository() contract.ReviewRepository
	ReviewDecisionRepository() contract.ReviewDecisionRepository
	ReviewEventRepository() contract.ReviewEventRepository
}
