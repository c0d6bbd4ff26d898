package dto

import (
	"time"

	"github.com/google/uuid"

	"saraswati-be/pkg/diff"
)

type SubmitForReviewRequest struct {
	NoteId         uuid.UUID `json:"-"`
	ReviewerIds    []string  `json:"reviewer_ids" validate:"max=32"`
	Message        string    `json:"message" validate:"max=4096"`
	UserId         string    `json:"-"`
	IdempotencyKey string    `json:"-"`
}

type RequestDeleteRequest struct {
	NoteId      uuid.UUID `json:"-"`
	ReviewerIds []string  `json:"reviewer_ids" validate:"max=32"`
	Reason      string    `json:"reason" validate:"max=4096"`
	UserId      string    `json:"-"`
}

type RequestRestoreRequest struct {
	NoteId      uuid.UUID `json:"-"`
	ReviewerIds []string  `json:"reviewer_ids" validate:"max=32"`
	Reason      string    `json:"reason" validate:"max=4096"`
	UserId      string    `json:"-"`
}

type ReviewPayload struct {
	Id                  uuid.UUID  `json:"id"`
	NoteId              uuid.UUID  `json:"note_id"`
	Kind                string     `json:"kind"`
	Status              string     `json:"status"`
	Title               string     `json:"title"`
	Description         *string    `json:"description,omitempty"`
	DraftVersionId      *uuid.UUID `json:"draft_version_id,omitempty"`
	MergeVersionId      *uuid.UUID `json:"merge_version_id,omitempty"`
	CreatedBy           string     `json:"created_by"`
	ReviewerIds         []string   `json:"reviewer_ids"`
	ApprovalsCount      int        `json:"approvals_count"`
	ChangeRequestsCount int        `json:"change_requests_count"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
}

type DecisionPayload struct {
	ReviewId  uuid.UUID  `json:"review_id"`
	UserId    string     `json:"user_id"`
	Kind      string     `json:"kind"`
	Comment   string     `json:"comment,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type ReviewEventPayload struct {
	Id        uuid.UUID              `json:"id"`
	ReviewId  uuid.UUID              `json:"review_id"`
	Type      string                 `json:"type"`
	ActorId   string                 `json:"actor_id"`
	Comment   string                 `json:"comment,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type ReviewNoteSummary struct {
	Id       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Archived bool      `json:"archived"`
	Deleted  bool      `json:"deleted"`
}

type ShowReviewResponse struct {
	Review       ReviewPayload        `json:"review"`
	Note         *ReviewNoteSummary   `json:"note,omitempty"`
	BaseVersion  *VersionPayload      `json:"base_version,omitempty"`
	DraftVersion *VersionPayload      `json:"draft_version,omitempty"`
	Decisions    []DecisionPayload    `json:"decisions"`
	Timeline     []ReviewEventPayload `json:"timeline"`
	// Diff compares the approved base against the proposed draft.
	// Empty for delete/restore reviews.
	Diff      []diff.Chunk `json:"diff,omitempty"`
	DiffStats *DiffStats   `json:"diff_stats,omitempty"`
}

type DiffStats struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

type DecideRequest struct {
	ReviewId uuid.UUID `json:"-"`
	Comment  string    `json:"comment" validate:"max=4096"`
	UserId   string    `json:"-"`
}

type MergeReviewRequest struct {
	ReviewId       uuid.UUID `json:"-"`
	UserId         string    `json:"-"`
	IdempotencyKey string    `json:"-"`
}

type MergeReviewResponse struct {
	ReviewId        uuid.UUID  `json:"review_id"`
	NoteId          uuid.UUID  `json:"note_id"`
	Status          string     `json:"status"`
	MergedVersionId *uuid.UUID `json:"merged_version_id,omitempty"`
	NoteState       string     `json:"note_state"`
}

type CloseReviewRequest struct {
	ReviewId uuid.UUID `json:"-"`
	Comment  string    `json:"comment" validate:"max=4096"`
	UserId   string    `json:"-"`
}

type ReopenReviewRequest struct {
	ReviewId uuid.UUID `json:"-"`
	Comment  string    `json:"comment" validate:"max=4096"`
	UserId   string    `json:"-"`
}

type UpdateReviewRequest struct {
	ReviewId    uuid.UUID `json:"-"`
	Title       *string   `json:"title" validate:"omitempty,max=512"`
	Description *string   `json:"description" validate:"omitempty,max=4096"`
	ReviewerIds []string  `json:"reviewer_ids" validate:"max=32"`
	UserId      string    `json:"-"`
}

type ListReviewsQuery struct {
	NoteId   *uuid.UUID `json:"-"`
	Statuses []string   `json:"-"`
	Page     int        `json:"-"`
	PerPage  int        `json:"-"`
}

type ListReviewsResponse struct {
	Reviews []ReviewPayload `json:"reviews"`
	Total   int64           `json:"total"`
}
