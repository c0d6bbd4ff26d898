package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"saraswati-be/internal/apperror"
	"saraswati-be/internal/dto"
	"saraswati-be/internal/entity"
	"saraswati-be/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "alice"
	bob   = "bob"
	carol = "carol"
)

func createNote(t *testing.T, env *testEnv, author string) *dto.CreateNoteResponse {
	t.Helper()
	res, err := env.noteSvc.Create(context.Background(), &dto.CreateNoteRequest{
		Title:    "Raft Consensus",
		Body:     "Leaders are elected by majority vote.",
		Tags:     []string{"Consensus", "raft", "consensus"},
		AuthorId: author,
	})
	require.NoError(t, err)
	return res
}

// approveAndMerge walks a freshly submitted review to the merged state.
func approveAndMerge(t *testing.T, env *testEnv, review *dto.ReviewPayload, reviewer string) *dto.MergeReviewResponse {
	t.Helper()
	ctx := context.Background()
	_, err := env.reviewSvc.Approve(ctx, &dto.DecideRequest{ReviewId: review.Id, UserId: reviewer})
	require.NoError(t, err)
	merged, err := env.reviewSvc.Merge(ctx, &dto.MergeReviewRequest{ReviewId: review.Id, UserId: reviewer})
	require.NoError(t, err)
	return merged
}

func TestCreateNoteStartsInDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)

	shown, err := env.noteSvc.Show(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "draft", shown.State)
	assert.False(t, shown.Deleted)
	require.NotNil(t, shown.DraftVersion)
	assert.Equal(t, 0, shown.DraftVersion.VersionIndex)
	assert.Nil(t, shown.ApprovedVersion)
	// Tags come back folded, deduplicated and sorted.
	assert.Equal(t, []string{"consensus", "raft"}, shown.DraftVersion.Tags)
}

func TestSaveDraftUpdatesInPlace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)

	res, err := env.noteSvc.SaveDraft(ctx, &dto.SaveDraftRequest{
		NoteId: created.Id,
		Title:  "Raft Consensus",
		Body:   "Leaders are elected by majority vote. Terms are monotonic.",
		UserId: alice,
	})
	require.NoError(t, err)
	// Still the same version slot, not a new ledger entry.
	assert.Equal(t, created.DraftVersionId, res.DraftVersionId)

	history, err := env.noteSvc.History(ctx, created.Id)
	require.NoError(t, err)
	assert.Len(t, history.Versions, 1)
}

func TestSaveDraftRejectedWhileUnderReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	_, err := env.reviewSvc.Submit(ctx, &dto.SubmitForReviewRequest{
		NoteId:      created.Id,
		ReviewerIds: []string{bob},
		UserId:      alice,
	})
	require.NoError(t, err)

	_, err = env.noteSvc.SaveDraft(ctx, &dto.SaveDraftRequest{
		NoteId: created.Id,
		Title:  "Raft Consensus",
		Body:   "sneaky edit",
		UserId: alice,
	})
	assert.True(t, apperror.IsKind(err, apperror.KindPreconditionFailed))
}

func TestSaveDraftOpensNewVersionAfterMerge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	review, err := env.reviewSvc.Submit(ctx, &dto.SubmitForReviewRequest{
		NoteId:      created.Id,
		ReviewerIds: []string{bob},
		UserId:      alice,
	})
	require.NoError(t, err)
	approveAndMerge(t, env, review, bob)

	res, err := env.noteSvc.SaveDraft(ctx, &dto.SaveDraftRequest{
		NoteId: created.Id,
		Title:  "Raft Consensus",
		Body:   "Second edition.",
		UserId: carol,
	})
	require.NoError(t, err)
	assert.NotEqual(t, created.DraftVersionId, res.DraftVersionId)

	history, err := env.noteSvc.History(ctx, created.Id)
	require.NoError(t, err)
	require.Len(t, history.Versions, 2)
	assert.Equal(t, 0, history.Versions[0].VersionIndex)
	assert.Equal(t, 1, history.Versions[1].VersionIndex)
	assert.Equal(t, string(entity.VersionStateApproved), history.Versions[0].State)
	assert.Equal(t, string(entity.VersionStateDraft), history.Versions[1].State)
}

func TestDiscardDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	require.NoError(t, env.noteSvc.DiscardDraft(ctx, created.Id, alice))

	shown, err := env.noteSvc.Show(ctx, created.Id)
	require.NoError(t, err)
	assert.Nil(t, shown.DraftVersion)

	history, err := env.noteSvc.History(ctx, created.Id)
	require.NoError(t, err)
	assert.Empty(t, history.Versions)
}

func TestDiscardDraftRejectedUnderReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	_, err := env.reviewSvc.Submit(ctx, &dto.SubmitForReviewRequest{
		NoteId:      created.Id,
		ReviewerIds: []string{bob},
		UserId:      alice,
	})
	require.NoError(t, err)

	err = env.noteSvc.DiscardDraft(ctx, created.Id, alice)
	assert.True(t, apperror.IsKind(err, apperror.KindPreconditionFailed))
}

func TestDiscardDraftByStrangerRejected(t *testing.T) {
	env := newTestEnv(t)

	created := createNote(t, env, alice)
	err := env.noteSvc.DiscardDraft(context.Background(), created.Id, bob)
	assert.True(t, apperror.IsKind(err, apperror.KindNotAuthorized))
}

func TestVoteAccumulates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)

	for i := 0; i < 3; i++ {
		_, err := env.noteSvc.Vote(ctx, &dto.VoteRequest{NoteId: created.Id, Direction: "up", UserId: bob})
		require.NoError(t, err)
	}
	res, err := env.noteSvc.Vote(ctx, &dto.VoteRequest{NoteId: created.Id, Direction: "down", UserId: carol})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Upvotes)
	assert.Equal(t, 1, res.Downvotes)
}

func TestCreateNoteValidatesInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  *dto.CreateNoteRequest
	}{
		{"blank title", &dto.CreateNoteRequest{Title: "  ", Body: "body", Tags: []string{"a"}, AuthorId: alice}},
		{"blank body", &dto.CreateNoteRequest{Title: "Raft", Body: "   ", Tags: []string{"a"}, AuthorId: alice}},
		{"no tags", &dto.CreateNoteRequest{Title: "Raft", Body: "body", AuthorId: alice}},
		{"blank tags", &dto.CreateNoteRequest{Title: "Raft", Body: "body", Tags: []string{"  ", ""}, AuthorId: alice}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.noteSvc.Create(ctx, tc.req)
			assert.True(t, apperror.IsKind(err, apperror.KindValidation))
		})
	}
}

func TestSaveDraftByAnotherAuthorConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)

	_, err := env.noteSvc.SaveDraft(ctx, &dto.SaveDraftRequest{
		NoteId: created.Id,
		Title:  "Raft Consensus",
		Body:   "bob's hostile takeover",
		UserId: bob,
	})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	// Alice's draft is untouched.
	shown, err := env.noteSvc.Show(ctx, created.Id)
	require.NoError(t, err)
	require.NotNil(t, shown.DraftVersion)
	assert.Equal(t, "Leaders are elected by majority vote.", shown.DraftVersion.Body)
}

func TestConcurrentVotesAreNotLost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)

	const voters = 16
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := env.noteSvc.Vote(ctx, &dto.VoteRequest{
				NoteId:    created.Id,
				Direction: "up",
				UserId:    fmt.Sprintf("voter-%d", i),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	shown, err := env.noteSvc.Show(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, voters, shown.Upvotes)
}

// Hammers one note from several goroutines with a random mix of draft
// and review operations, then checks the single-slot rule: at most one
// version of a note is ever in draft or needs_review.
func TestConcurrentDraftChurnKeepsSingleSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)

	const workers = 4
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < 25; i++ {
				switch rng.Intn(3) {
				case 0:
					_, _ = env.noteSvc.SaveDraft(ctx, &dto.SaveDraftRequest{
						NoteId: created.Id,
						Title:  "Raft Consensus",
						Body:   fmt.Sprintf("revision %d-%d", seed, i),
						UserId: alice,
					})
				case 1:
					review, err := env.reviewSvc.Submit(ctx, &dto.SubmitForReviewRequest{
						NoteId:      created.Id,
						ReviewerIds: []string{bob},
						UserId:      alice,
					})
					if err == nil {
						_, _ = env.reviewSvc.Close(ctx, &dto.CloseReviewRequest{ReviewId: review.Id, UserId: alice})
					}
				case 2:
					_ = env.noteSvc.DiscardDraft(ctx, created.Id, alice)
				}
			}
		}(int64(w))
	}
	wg.Wait()

	var active int64
	require.NoError(t, env.db.Model(&model.NoteVersion{}).
		Where("note_id = ? AND state IN ?", created.Id, []string{
			string(entity.VersionStateDraft),
			string(entity.VersionStateNeedsReview),
		}).
		Count(&active).Error)
	assert.LessOrEqual(t, active, int64(1))

	var open int64
	require.NoError(t, env.db.Model(&model.Review{}).
		Where("note_id = ? AND status = ?", created.Id, string(entity.ReviewStatusOpen)).
		Count(&open).Error)
	assert.LessOrEqual(t, open, int64(1))
}

func TestArchiveRequiresApprovedBaseline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)

	err := env.noteSvc.Archive(ctx, &dto.ArchiveNoteRequest{NoteId: created.Id, Archived: true, UserId: alice})
	assert.True(t, apperror.IsKind(err, apperror.KindPreconditionFailed))

	review, err := env.reviewSvc.Submit(ctx, &dto.SubmitForReviewRequest{
		NoteId:      created.Id,
		ReviewerIds: []string{bob},
		UserId:      alice,
	})
	require.NoError(t, err)
	approveAndMerge(t, env, review, bob)

	require.NoError(t, env.noteSvc.Archive(ctx, &dto.ArchiveNoteRequest{NoteId: created.Id, Archived: true, UserId: alice}))

	shown, err := env.noteSvc.Show(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "archived", shown.State)

	// And back.
	require.NoError(t, env.noteSvc.Archive(ctx, &dto.ArchiveNoteRequest{NoteId: created.Id, Archived: false, UserId: alice}))
	shown, err = env.noteSvc.Show(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "approved", shown.State)
}

func TestListDraftsOnlyActiveSlots(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := createNote(t, env, alice)
	second := createNote(t, env, alice)
	createNote(t, env, bob)

	require.NoError(t, env.noteSvc.DiscardDraft(ctx, second.Id, alice))

	res, err := env.noteSvc.ListDrafts(ctx, alice)
	require.NoError(t, err)
	require.Len(t, res.Drafts, 1)
	assert.Equal(t, first.Id, res.Drafts[0].NoteId)
}

func TestStatsCounters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	createNote(t, env, bob)

	review, err := env.reviewSvc.Submit(ctx, &dto.SubmitForReviewRequest{
		NoteId:      created.Id,
		ReviewerIds: []string{bob},
		UserId:      alice,
	})
	require.NoError(t, err)
	approveAndMerge(t, env, review, bob)

	stats, err := env.noteSvc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalNotes)
	assert.Equal(t, int64(1), stats.ApprovedNotes)
	assert.Equal(t, int64(0), stats.OpenReviews)
	assert.Equal(t, int64(1), stats.MergedReviews)
	assert.Equal(t, int64(2), stats.TotalVersions)
	assert.Equal(t, int64(1), stats.TotalDecisions)
}
