package implementation

import (
	"context"

	"saraswati-be/internal/entity"
	"saraswati-be/internal/mapper"
	"saraswati-be/internal/model"
	"saraswati-be/internal/repository/contract"
	"saraswati-be/internal/repository/specification"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ReviewEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReviewEventMapper
}

func NewReviewEventRepository(db *gorm.DB) contract.ReviewEventRepository {
	return &ReviewEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewReviewEventMapper(),
	}
}

func (r *ReviewEventRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ReviewEventRepositoryImpl) Append(ctx context.Context, event *entity.ReviewEvent) error {
	m := r.mapper.ToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return errors.Wrap(err, "append event")
	}
	*event = *r.mapper.ToEntity(m)
	return nil
}

func (r *ReviewEventRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReviewEvent, error) {
	var models []*model.ReviewEvent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list events")
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ReviewEventRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ReviewEvent{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count events")
	}
	return count, nil
}
