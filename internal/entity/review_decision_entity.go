package entity

import (
	"time"

	"github.com/google/uuid"
)

type DecisionKind string

const (
	DecisionApproved         DecisionKind = "approved"
	DecisionChangesRequested DecisionKind = "changes_requested"
	DecisionCommented        DecisionKind = "commented"
)

// ReviewDecision is one reviewer's current stance on a review, keyed by
// (ReviewId, UserId). Re-deciding overwrites the prior row; the review's
// counters are always recomputed from the full decision set.
type ReviewDecision struct {
	ReviewId  uuid.UUID
	UserId    string
	Decision  DecisionKind
	Comment   *string
	UpdatedAt time.Time
}

// CountDecisions derives the approvals / change-request tallies from a
// decision set. This is the only way counters are ever produced.
func CountDecisions(decisions []*ReviewDecision) (approvals, changeRequests int) {
	for _, d := range decisions {
		switch d.Decision {
		case DecisionApproved:
			approvals++
		case DecisionChangesRequested:
			changeRequests++
		}
	}
	return approvals, changeRequests
}
