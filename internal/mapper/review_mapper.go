package mapper

import (
	"encoding/json"
	"time"

	"saraswati-be/internal/entity"
	"saraswati-be/internal/model"

	"gorm.io/datatypes"
)

type ReviewMapper struct{}

func NewReviewMapper() *ReviewMapper {
	return &ReviewMapper{}
}

func (m *ReviewMapper) ToEntity(r *model.Review) *entity.Review {
	if r == nil {
		return nil
	}

	var reviewerIds []string
	if len(r.ReviewerIds) > 0 {
		_ = json.Unmarshal(r.ReviewerIds, &reviewerIds)
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	return &entity.Review{
		Id:                  r.Id,
		NoteId:              r.NoteId,
		DraftVersionId:      r.DraftVersionId,
		BaseVersionId:       r.BaseVersionId,
		Kind:                entity.ReviewKind(r.Kind),
		Title:               r.Title,
		Description:         r.Description,
		CreatedBy:           r.CreatedBy,
		ReviewerIds:         reviewerIds,
		Status:              entity.ReviewStatus(r.Status),
		ApprovalsCount:      r.ApprovalsCount,
		ChangeRequestsCount: r.ChangeRequestsCount,
		MergeVersionId:      r.MergeVersionId,
		MergedBy:            r.MergedBy,
		MergedAt:            r.MergedAt,
		ClosedAt:            r.ClosedAt,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           updatedAt,
	}
}

func (m *ReviewMapper) ToModel(r *entity.Review) *model.Review {
	if r == nil {
		return nil
	}

	reviewerIds := r.ReviewerIds
	if reviewerIds == nil {
		reviewerIds = []string{}
	}
	reviewersJson, _ := json.Marshal(reviewerIds)

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	return &model.Review{
		Id:                  r.Id,
		NoteId:              r.NoteId,
		DraftVersionId:      r.DraftVersionId,
		BaseVersionId:       r.BaseVersionId,
		Kind:                string(r.Kind),
		Title:               r.Title,
		Description:         r.Description,
		CreatedBy:           r.CreatedBy,
		ReviewerIds:         datatypes.JSON(reviewersJson),
		Status:              string(r.Status),
		ApprovalsCount:      r.ApprovalsCount,
		ChangeRequestsCount: r.ChangeRequestsCount,
		MergeVersionId:      r.MergeVersionId,
		MergedBy:            r.MergedBy,
		MergedAt:            r.MergedAt,
		ClosedAt:            r.ClosedAt,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           updatedAt,
	}
}

func (m *ReviewMapper) ToEntities(reviews []*model.Review) []*entity.Review {
	entities := make([]*entity.Review, len(reviews))
	for i, r := range reviews {
		entities[i] = m.ToEntity(r)
	}
	return entities
}

type ReviewDecisionMapper struct{}

func NewReviewDecisionMapper() *ReviewDecisionMapper {
	return &ReviewDecisionMapper{}
}

func (m *ReviewDecisionMapper) ToEntity(d *model.ReviewDecision) *entity.ReviewDecision {
	if d == nil {
		return nil
	}
	return &entity.ReviewDecision{
		ReviewId:  d.ReviewId,
		UserId:    d.UserId,
		Decision:  entity.DecisionKind(d.Decision),
		Comment:   d.Comment,
		UpdatedAt: d.UpdatedAt,
	}
}

func (m *ReviewDecisionMapper) ToModel(d *entity.ReviewDecision) *model.ReviewDecision {
	if d == nil {
		return nil
	}
	return &model.ReviewDecision{
		ReviewId:  d.ReviewId,
		UserId:    d.UserId,
		Decision:  string(d.Decision),
		Comment:   d.Comment,
		UpdatedAt: d.UpdatedAt,
	}
}

func (m *ReviewDecisionMapper) ToEntities(decisions []*model.ReviewDecision) []*entity.ReviewDecision {
	entities := make([]*entity.ReviewDecision, len(decisions))
	for i, d := range decisions {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

type ReviewEventMapper struct{}

func NewReviewEventMapper() *ReviewEventMapper {
	return &ReviewEventMapper{}
}

func (m *ReviewEventMapper) ToEntity(e *model.ReviewEvent) *entity.ReviewEvent {
	if e == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(e.Metadata) > 0 {
		_ = json.Unmarshal(e.Metadata, &metadata)
	}

	return &entity.ReviewEvent{
		Id:        e.Id,
		ReviewId:  e.ReviewId,
		Seq:       e.Seq,
		EventType: entity.ReviewEventType(e.EventType),
		AuthorId:  e.AuthorId,
		Message:   e.Message,
		Metadata:  metadata,
		CreatedAt: e.CreatedAt,
	}
}

func (m *ReviewEventMapper) ToModel(e *entity.ReviewEvent) *model.ReviewEvent {
	if e == nil {
		return nil
	}

	metadata := e.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadataJson, _ := json.Marshal(metadata)

	return &model.ReviewEvent{
		Id:        e.Id,
		ReviewId:  e.ReviewId,
		Seq:       e.Seq,
		EventType: string(e.EventType),
		AuthorId:  e.AuthorId,
		Message:   e.Message,
		Metadata:  datatypes.JSON(metadataJson),
		CreatedAt: e.CreatedAt,
	}
}

func (m *ReviewEventMapper) ToEntities(events []*model.ReviewEvent) []*entity.ReviewEvent {
	entities := make([]*entity.ReviewEvent, len(events))
	for i, e := range events {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
