package entity

import (
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNormalizeTags_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	tagGen := gen.SliceOf(gen.AnyString())

	properties.Property("idempotent", prop.ForAll(
		func(tags []string) bool {
			once := NormalizeTags(tags)
			return reflect.DeepEqual(once, NormalizeTags(once))
		},
		tagGen,
	))

	properties.Property("sorted and free of duplicates", prop.ForAll(
		func(tags []string) bool {
			out := NormalizeTags(tags)
			if !sort.StringsAreSorted(out) {
				return false
			}
			for i := 1; i < len(out); i++ {
				if out[i] == out[i-1] {
					return false
				}
			}
			return true
		},
		tagGen,
	))

	properties.Property("every tag is folded and trimmed", prop.ForAll(
		func(tags []string) bool {
			for _, tag := range NormalizeTags(tags) {
				if tag == "" || tag != strings.ToLower(strings.TrimSpace(tag)) {
					return false
				}
			}
			return true
		},
		tagGen,
	))

	properties.Property("insensitive to input order", prop.ForAll(
		func(tags []string) bool {
			reversed := make([]string, len(tags))
			for i, tag := range tags {
				reversed[len(tags)-1-i] = tag
			}
			return reflect.DeepEqual(NormalizeTags(tags), NormalizeTags(reversed))
		},
		tagGen,
	))

	properties.TestingRun(t)
}

func TestCountDecisions_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	decisionsGen := gen.SliceOf(gen.OneConstOf(
		DecisionApproved,
		DecisionChangesRequested,
		DecisionCommented,
	))

	properties.Property("tallies match the multiset", prop.ForAll(
		func(kinds []DecisionKind) bool {
			decisions := make([]*ReviewDecision, len(kinds))
			wantApprovals, wantChanges := 0, 0
			for i, k := range kinds {
				decisions[i] = &ReviewDecision{Decision: k}
				switch k {
				case DecisionApproved:
					wantApprovals++
				case DecisionChangesRequested:
					wantChanges++
				}
			}
			approvals, changes := CountDecisions(decisions)
			return approvals == wantApprovals && changes == wantChanges
		},
		decisionsGen,
	))

	properties.Property("comments never move the counters", prop.ForAll(
		func(n int) bool {
			decisions := make([]*ReviewDecision, n)
			for i := range decisions {
				decisions[i] = &ReviewDecision{Decision: DecisionCommented}
			}
			approvals, changes := CountDecisions(decisions)
			return approvals == 0 && changes == 0
		},
		gen.IntRange(0, 64),
	))

	properties.TestingRun(t)
}

func TestNoteLifecycleState(t *testing.T) {
	versionId := uuid.New()
	note := &Note{DraftVersionId: &versionId}
	draft := &NoteVersion{Id: versionId, State: VersionStateDraft}

	if got := note.LifecycleState(draft); got != NoteLifecycleDraft {
		t.Errorf("LifecycleState() = %q, want draft", got)
	}

	draft.State = VersionStateNeedsReview
	if got := note.LifecycleState(draft); got != NoteLifecycleNeedsReview {
		t.Errorf("LifecycleState() = %q, want needs_review", got)
	}

	note.DraftVersionId = nil
	note.ApprovedVersionId = &versionId
	if got := note.LifecycleState(nil); got != NoteLifecycleApproved {
		t.Errorf("LifecycleState() = %q, want approved", got)
	}

	note.Archived = true
	if got := note.LifecycleState(nil); got != NoteLifecycleArchived {
		t.Errorf("LifecycleState() = %q, want archived", got)
	}
}

func TestReviewActiveAndTerminal(t *testing.T) {
	cases := []struct {
		status   ReviewStatus
		active   bool
		terminal bool
	}{
		{ReviewStatusOpen, true, false},
		{ReviewStatusChangesRequested, true, false},
		{ReviewStatusMerged, false, true},
		{ReviewStatusClosed, false, false},
	}
	for _, c := range cases {
		r := &Review{Status: c.status}
		if r.Active() != c.active {
			t.Errorf("Active() for %s = %v, want %v", c.status, r.Active(), c.active)
		}
		if r.Terminal() != c.terminal {
			t.Errorf("Terminal() for %s = %v, want %v", c.status, r.Terminal(), c.terminal)
		}
	}
}
