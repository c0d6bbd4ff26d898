package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title    string   `json:"title" validate:"required,max=512"`
	Body     string   `json:"body" validate:"required"`
	Tags     []string `json:"tags" validate:"required,min=1,max=32,dive,max=64"`
	AuthorId string   `json:"-"`
}

type CreateNoteResponse struct {
	Id             uuid.UUID `json:"id"`
	DraftVersionId uuid.UUID `json:"draft_version_id"`
	State          string    `json:"state"`
}

type SaveDraftRequest struct {
	NoteId uuid.UUID `json:"-"`
	Title  string    `json:"title" validate:"required,max=512"`
	Body   string    `json:"body" validate:"required"`
	Tags   []string  `json:"tags" validate:"max=32,dive,max=64"`
	UserId string    `json:"-"`
}

type SaveDraftResponse struct {
	NoteId         uuid.UUID `json:"note_id"`
	DraftVersionId uuid.UUID `json:"draft_version_id"`
	State          string    `json:"state"`
}

// VersionPayload is the read shape of a single note version.
type VersionPayload struct {
	Id            uuid.UUID  `json:"id"`
	NoteId        uuid.UUID  `json:"note_id"`
	VersionIndex  int        `json:"version_index"`
	Title         string     `json:"title"`
	Body          string     `json:"body"`
	Tags          []string   `json:"tags"`
	State         string     `json:"state"`
	CreatedBy     string     `json:"created_by"`
	SubmittedBy   *string    `json:"submitted_by,omitempty"`
	ReviewedBy    *string    `json:"reviewed_by,omitempty"`
	ReviewComment *string    `json:"review_comment,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type ShowNoteResponse struct {
	Id              uuid.UUID       `json:"id"`
	State           string          `json:"state"`
	Archived        bool            `json:"archived"`
	Deleted         bool            `json:"deleted"`
	Upvotes         int             `json:"upvotes"`
	Downvotes       int             `json:"downvotes"`
	CreatedBy       string          `json:"created_by"`
	CommittedBy     *string         `json:"committed_by,omitempty"`
	ApprovedVersion *VersionPayload `json:"approved_version,omitempty"`
	DraftVersion    *VersionPayload `json:"draft_version,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
}

type NoteHistoryResponse struct {
	NoteId   uuid.UUID        `json:"note_id"`
	Versions []VersionPayload `json:"versions"`
}

type VoteRequest struct {
	NoteId    uuid.UUID `json:"-"`
	Direction string    `json:"direction" validate:"required,oneof=up down"`
	UserId    string    `json:"-"`
}

type VoteResponse struct {
	NoteId    uuid.UUID `json:"note_id"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
}

type ArchiveNoteRequest struct {
	NoteId   uuid.UUID `json:"-"`
	Archived bool      `json:"archived"`
	UserId   string    `json:"-"`
}

type DraftSummary struct {
	NoteId         uuid.UUID `json:"note_id"`
	DraftVersionId uuid.UUID `json:"draft_version_id"`
	Title          string    `json:"title"`
	VersionIndex   int       `json:"version_index"`
	NoteState      string    `json:"note_state"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ListDraftsResponse struct {
	Drafts []DraftSummary `json:"drafts"`
}

type WorkflowStatsResponse struct {
	TotalNotes     int64 `json:"total_notes"`
	ApprovedNotes  int64 `json:"approved_notes"`
	DeletedNotes   int64 `json:"deleted_notes"`
	ArchivedNotes  int64 `json:"archived_notes"`
	OpenReviews    int64 `json:"open_reviews"`
	MergedReviews  int64 `json:"merged_reviews"`
	TotalVersions  int64 `json:"total_versions"`
	TotalDecisions int64 `json:"total_decisions"`
}
