package entity

import (
	"time"

	"github.com/google/uuid"
)

type ReviewStatus string

const (
	ReviewStatusOpen             ReviewStatus = "open"
	ReviewStatusChangesRequested ReviewStatus = "changes_requested"
	ReviewStatusMerged           ReviewStatus = "merged"
	ReviewStatusClosed           ReviewStatus = "closed"
)

// ReviewKind tags what merging the review does. It is fixed at creation
// time; the engine never infers it from the title.
type ReviewKind string

const (
	ReviewKindEdit    ReviewKind = "edit"
	ReviewKindDelete  ReviewKind = "delete"
	ReviewKindRestore ReviewKind = "restore"
)

// Review is a request to promote one draft version to the approved
// baseline (kind=edit), or to toggle the note's soft-delete flag
// (kind=delete/restore, DraftVersionId nil).
type Review struct {
	Id                  uuid.UUID
	NoteId              uuid.UUID
	DraftVersionId      *uuid.UUID
	BaseVersionId       *uuid.UUID
	Kind                ReviewKind
	Title               string
	Description         *string
	CreatedBy           string
	ReviewerIds         []string
	Status              ReviewStatus
	ApprovalsCount      int
	ChangeRequestsCount int
	MergeVersionId      *uuid.UUID
	MergedBy            *string
	MergedAt            *time.Time
	ClosedAt            *time.Time
	CreatedAt           time.Time
	UpdatedAt           *time.Time
}

// Active reports whether the review still occupies its draft slot.
func (r *Review) Active() bool {
	return r.Status == ReviewStatusOpen || r.Status == ReviewStatusChangesRequested
}

// Terminal reviews accept no further decisions.
func (r *Review) Terminal() bool {
	return r.Status == ReviewStatusMerged
}

func (r *Review) HasReviewer(userId string) bool {
	for _, id := range r.ReviewerIds {
		if id == userId {
			return true
		}
	}
	return false
}
