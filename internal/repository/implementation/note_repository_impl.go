package implementation

import (
	"context"
	goerrors "errors"

	"saraswati-be/internal/apperror"
	"saraswati-be/internal/entity"
	"saraswati-be/internal/mapper"
	"saraswati-be/internal/model"
	"saraswati-be/internal/repository/contract"
	"saraswati-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type NoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteMapper
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return &NoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteMapper(),
	}
}

func (r *NoteRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return errors.Wrap(err, "create note")
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

// Update is the conditional-write primitive of the storage contract: the
// row is only written when lock_version still matches what the caller read.
func (r *NoteRepositoryImpl) Update(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	readVersion := m.LockVersion

	res := r.db.WithContext(ctx).Model(&model.Note{}).
		Where("id = ? AND lock_version = ?", m.Id, readVersion).
		Updates(map[string]interface{}{
			"title":               m.Title,
			"approved_version_id": m.ApprovedVersionId,
			"draft_version_id":    m.DraftVersionId,
			"archived":            m.Archived,
			"committed_by":        m.CommittedBy,
			"deleted_at":          m.DeletedAt,
			"deleted_by":          m.DeletedBy,
			"lock_version":        readVersion + 1,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update note")
	}
	if res.RowsAffected == 0 {
		return apperror.Conflict("note was modified concurrently")
	}
	note.LockVersion = readVersion + 1
	return nil
}

func (r *NoteRepositoryImpl) IncrementVotes(ctx context.Context, id uuid.UUID, upDelta, downDelta int) (*entity.Note, error) {
	res := r.db.WithContext(ctx).Model(&model.Note{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"upvotes":   gorm.Expr("upvotes + ?", upDelta),
			"downvotes": gorm.Expr("downvotes + ?", downDelta),
		})
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "increment votes")
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindOne(ctx, specification.ByID{ID: id})
}

func (r *NoteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	var m model.Note
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find note")
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var models []*model.Note
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list notes")
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NoteRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Note{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count notes")
	}
	return count, nil
}
