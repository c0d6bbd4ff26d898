package mapper

import (
	"time"

	"saraswati-be/internal/entity"
	"saraswati-be/internal/model"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	return &entity.Note{
		Id:                n.Id,
		Title:             n.Title,
		ApprovedVersionId: n.ApprovedVersionId,
		DraftVersionId:    n.DraftVersionId,
		Archived:          n.Archived,
		Upvotes:           n.Upvotes,
		Downvotes:         n.Downvotes,
		CreatedBy:         n.CreatedBy,
		CommittedBy:       n.CommittedBy,
		DeletedAt:         n.DeletedAt,
		DeletedBy:         n.DeletedBy,
		CreatedAt:         n.CreatedAt,
		UpdatedAt:         updatedAt,
		LockVersion:       n.LockVersion,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	var updatedAt time.Time
	if n.UpdatedAt != nil {
		updatedAt = *n.UpdatedAt
	}

	return &model.Note{
		Id:                n.Id,
		Title:             n.Title,
		ApprovedVersionId: n.ApprovedVersionId,
		DraftVersionId:    n.DraftVersionId,
		Archived:          n.Archived,
		Upvotes:           n.Upvotes,
		Downvotes:         n.Downvotes,
		CreatedBy:         n.CreatedBy,
		CommittedBy:       n.CommittedBy,
		DeletedAt:         n.DeletedAt,
		DeletedBy:         n.DeletedBy,
		CreatedAt:         n.CreatedAt,
		UpdatedAt:         updatedAt,
		LockVersion:       n.LockVersion,
	}
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}
