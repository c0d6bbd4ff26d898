package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByDraftVersionID finds the review occupying a draft slot.
type ByDraftVersionID struct {
	VersionID uuid.UUID
}

func (s ByDraftVersionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("draft_version_id = ?", s.VersionID)
}

// ByStatuses filters reviews by workflow status.
type ByStatuses struct {
	Statuses []string
}

func (s ByStatuses) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", s.Statuses)
}

// InvolvedUser matches reviews the user created or reviews. Reviewer ids
// live in a JSON array column, so the match is textual; ids are uuid-like
// strings which makes substring collisions a non-issue in practice.
type InvolvedUser struct {
	UserID string
}

func (s InvolvedUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_by = ? OR reviewer_ids LIKE ?", s.UserID, "%\""+s.UserID+"\"%")
}

// ByReviewID scopes decisions/events to one review.
type ByReviewID struct {
	ReviewID uuid.UUID
}

func (s ByReviewID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("review_id = ?", s.ReviewID)
}

// TimelineOrder sorts events oldest first, insertion order breaking ties.
type TimelineOrder struct{}

func (s TimelineOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("seq ASC")
}
