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

type NoteVersionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteVersionMapper
}

func NewNoteVersionRepository(db *gorm.DB) contract.NoteVersionRepository {
	return &NoteVersionRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteVersionMapper(),
	}
}

func (r *NoteVersionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *NoteVersionRepositoryImpl) Create(ctx context.Context, version *entity.NoteVersion) error {
	m := r.mapper.ToModel(version)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return errors.Wrap(err, "create version")
	}
	*version = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteVersionRepositoryImpl) Update(ctx context.Context, version *entity.NoteVersion) error {
	var stored model.NoteVersion
	if err := r.db.WithContext(ctx).First(&stored, "id = ?", version.Id).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("version not found")
		}
		return errors.Wrap(err, "load version")
	}

	m := r.mapper.ToModel(version)

	// Content of a version is frozen once it leaves draft; only state and
	// review bookkeeping may still move.
	if stored.State != string(entity.VersionStateDraft) {
		if stored.Title != m.Title || stored.Content != m.Content || string(stored.Tags) != string(m.Tags) {
			return apperror.PreconditionFailed("version content is frozen")
		}
	}

	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return errors.Wrap(err, "update version")
	}
	*version = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteVersionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&model.NoteVersion{}, "id = ?", id).Error; err != nil {
		return errors.Wrap(err, "delete version")
	}
	return nil
}

func (r *NoteVersionRepositoryImpl) NextVersionIndex(ctx context.Context, noteId uuid.UUID) (int, error) {
	var maxIndex *int
	err := r.db.WithContext(ctx).Model(&model.NoteVersion{}).
		Where("note_id = ?", noteId).
		Select("MAX(version_index)").
		Scan(&maxIndex).Error
	if err != nil {
		return 0, errors.Wrap(err, "next version index")
	}
	if maxIndex == nil {
		return 0, nil
	}
	return *maxIndex + 1, nil
}

func (r *NoteVersionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.NoteVersion, error) {
	var m model.NoteVersion
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find version")
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteVersionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.NoteVersion, error) {
	var models []*model.NoteVersion
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list versions")
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NoteVersionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.NoteVersion{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count versions")
	}
	return count, nil
}
