package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "REVIEW_MERGED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used everywhere in this codebase.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Workflow event type codes carried on the bus.
const (
	TypeReviewSubmitted        = "REVIEW_SUBMITTED"
	TypeReviewReopened         = "REVIEW_REOPENED"
	TypeReviewApproved         = "REVIEW_APPROVED"
	TypeReviewChangesRequested = "REVIEW_CHANGES_REQUESTED"
	TypeReviewCommented        = "REVIEW_COMMENTED"
	TypeReviewMerged           = "REVIEW_MERGED"
	TypeNoteCreated            = "NOTE_CREATED"
	TypeReviewClosed           = "REVIEW_CLOSED"
	TypeNoteDeleted            = "NOTE_DELETED"
	TypeNoteRestored           = "NOTE_RESTORED"
	TypeIndexPublished         = "INDEX_PUBLISHED"
	TypeIndexRetracted         = "INDEX_RETRACTED"
)
