package entity

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type VersionState string

const (
	VersionStateDraft       VersionState = "draft"
	VersionStateNeedsReview VersionState = "needs_review"
	VersionStateApproved    VersionState = "approved"
	VersionStateArchived    VersionState = "archived"
)

// NoteVersion is an immutable snapshot of a note's content. Title, content
// and tags are frozen the moment the version leaves the draft state;
// corrections require a new version.
type NoteVersion struct {
	Id            uuid.UUID
	NoteId        uuid.UUID
	VersionIndex  int
	Title         string
	Content       string
	Tags          []string
	State         VersionState
	CreatedBy     string
	SubmittedBy   *string
	ReviewedBy    *string
	ReviewComment *string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// Editable reports whether the version's content may still change.
func (v *NoteVersion) Editable() bool {
	return v.State == VersionStateDraft
}

// NormalizeTags case-folds, trims, dedupes and sorts a tag list.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		folded := strings.ToLower(strings.TrimSpace(tag))
		if folded == "" {
			continue
		}
		if _, ok := seen[folded]; ok {
			continue
		}
		seen[folded] = struct{}{}
		out = append(out, folded)
	}
	sort.Strings(out)
	return out
}
