package entity

import (
	"time"

	"github.com/google/uuid"
)

type ReviewEventType string

const (
	ReviewEventSubmitted        ReviewEventType = "submitted"
	ReviewEventComment          ReviewEventType = "comment"
	ReviewEventApproved         ReviewEventType = "approved"
	ReviewEventChangesRequested ReviewEventType = "changes_requested"
	ReviewEventMerged           ReviewEventType = "merged"
	ReviewEventClosed           ReviewEventType = "closed"
	ReviewEventReopened         ReviewEventType = "reopened"
	ReviewEventUpdated          ReviewEventType = "updated"
)

// ReviewEvent is an append-only audit entry on a review's timeline.
// Ordering is by CreatedAt, then by the insertion sequence for entries
// written within the same instant.
type ReviewEvent struct {
	Id        uuid.UUID
	ReviewId  uuid.UUID
	Seq       int64
	EventType ReviewEventType
	AuthorId  string
	Message   *string
	Metadata  map[string]interface{}
	CreatedAt time.Time
}
