package implementation

import (
	"context"

	"saraswati-be/internal/entity"
	"saraswati-be/internal/mapper"
	"saraswati-be/internal/model"
	"saraswati-be/internal/repository/contract"
	"saraswati-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewDecisionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReviewDecisionMapper
}

func NewReviewDecisionRepository(db *gorm.DB) contract.ReviewDecisionRepository {
	return &ReviewDecisionRepositoryImpl{
		db:     db,
		mapper: mapper.NewReviewDecisionMapper(),
	}
}

func (r *ReviewDecisionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ReviewDecisionRepositoryImpl) Upsert(ctx context.Context, decision *entity.ReviewDecision) error {
	m := r.mapper.ToModel(decision)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "review_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"decision", "comment", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return errors.Wrap(err, "upsert decision")
	}
	*decision = *r.mapper.ToEntity(m)
	return nil
}

func (r *ReviewDecisionRepositoryImpl) DeleteByDecision(ctx context.Context, reviewId uuid.UUID, decision entity.DecisionKind) error {
	err := r.db.WithContext(ctx).
		Where("review_id = ? AND decision = ?", reviewId, string(decision)).
		Delete(&model.ReviewDecision{}).Error
	if err != nil {
		return errors.Wrap(err, "delete decisions by kind")
	}
	return nil
}

func (r *ReviewDecisionRepositoryImpl) DeleteExceptUsers(ctx context.Context, reviewId uuid.UUID, keepUserIds []string) error {
	query := r.db.WithContext(ctx).Where("review_id = ?", reviewId)
	if len(keepUserIds) > 0 {
		query = query.Where("user_id NOT IN ?", keepUserIds)
	}
	if err := query.Delete(&model.ReviewDecision{}).Error; err != nil {
		return errors.Wrap(err, "trim decisions")
	}
	return nil
}

func (r *ReviewDecisionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReviewDecision, error) {
	var models []*model.ReviewDecision
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list decisions")
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ReviewDecisionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ReviewDecision{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count decisions")
	}
	return count, nil
}
