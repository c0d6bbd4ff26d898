package mapper

import (
	"encoding/json"
	"time"

	"saraswati-be/internal/entity"
	"saraswati-be/internal/model"

	"gorm.io/datatypes"
)

type NoteVersionMapper struct{}

func NewNoteVersionMapper() *NoteVersionMapper {
	return &NoteVersionMapper{}
}

func (m *NoteVersionMapper) ToEntity(v *model.NoteVersion) *entity.NoteVersion {
	if v == nil {
		return nil
	}

	var tags []string
	if len(v.Tags) > 0 {
		// Tags were written by ToModel, so unmarshal failure means a
		// corrupted row; surface it as an empty set rather than panic.
		_ = json.Unmarshal(v.Tags, &tags)
	}

	var updatedAt *time.Time
	if !v.UpdatedAt.IsZero() {
		t := v.UpdatedAt
		updatedAt = &t
	}

	return &entity.NoteVersion{
		Id:            v.Id,
		NoteId:        v.NoteId,
		VersionIndex:  v.VersionIndex,
		Title:         v.Title,
		Content:       v.Content,
		Tags:          tags,
		State:         entity.VersionState(v.State),
		CreatedBy:     v.CreatedBy,
		SubmittedBy:   v.SubmittedBy,
		ReviewedBy:    v.ReviewedBy,
		ReviewComment: v.ReviewComment,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *NoteVersionMapper) ToModel(v *entity.NoteVersion) *model.NoteVersion {
	if v == nil {
		return nil
	}

	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJson, _ := json.Marshal(tags)

	var updatedAt time.Time
	if v.UpdatedAt != nil {
		updatedAt = *v.UpdatedAt
	}

	return &model.NoteVersion{
		Id:            v.Id,
		NoteId:        v.NoteId,
		VersionIndex:  v.VersionIndex,
		Title:         v.Title,
		Content:       v.Content,
		Tags:          datatypes.JSON(tagsJson),
		State:         string(v.State),
		CreatedBy:     v.CreatedBy,
		SubmittedBy:   v.SubmittedBy,
		ReviewedBy:    v.ReviewedBy,
		ReviewComment: v.ReviewComment,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *NoteVersionMapper) ToEntities(versions []*model.NoteVersion) []*entity.NoteVersion {
	entities := make([]*entity.NoteVersion, len(versions))
	for i, v := range versions {
		entities[i] = m.ToEntity(v)
	}
	return entities
}
