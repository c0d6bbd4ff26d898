package entity

import (
	"time"

	"github.com/google/uuid"
)

// NoteLifecycleState is the derived state of a note, computed from its
// version slots rather than stored.
type NoteLifecycleState string

const (
	NoteLifecycleDraft       NoteLifecycleState = "draft"
	NoteLifecycleNeedsReview NoteLifecycleState = "needs_review"
	NoteLifecycleApproved    NoteLifecycleState = "approved"
	NoteLifecycleArchived    NoteLifecycleState = "archived"
)

// Note is the identity anchor of the aggregate. It tracks which version is
// the approved baseline and which (if any) occupies the single draft slot.
// Notes are never removed from the registry; deletion is a soft flag.
type Note struct {
	Id                uuid.UUID
	Title             string
	ApprovedVersionId *uuid.UUID
	DraftVersionId    *uuid.UUID
	Archived          bool
	Upvotes           int
	Downvotes         int
	CreatedBy         string
	CommittedBy       *string
	DeletedAt         *time.Time
	DeletedBy         *string
	CreatedAt         time.Time
	UpdatedAt         *time.Time
	LockVersion       int
}

// LifecycleState derives the note's state machine position. The draft
// argument is the version currently occupying the draft slot, if any.
func (n *Note) LifecycleState(draft *NoteVersion) NoteLifecycleState {
	if n.DraftVersionId != nil && draft != nil {
		if draft.State == VersionStateNeedsReview {
			return NoteLifecycleNeedsReview
		}
		return NoteLifecycleDraft
	}
	if n.Archived {
		return NoteLifecycleArchived
	}
	if n.ApprovedVersionId != nil {
		return NoteLifecycleApproved
	}
	return NoteLifecycleDraft
}

func (n *Note) IsDeleted() bool {
	return n.DeletedAt != nil
}
