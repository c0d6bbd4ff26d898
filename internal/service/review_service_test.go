package service

import (
	"context"
	"testing"

	"saraswati-be/internal/apperror"
	"saraswati-be/internal/dto"
	"saraswati-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitNote(t *testing.T, env *testEnv, noteId uuid.UUID, author string, reviewers ...string) *dto.ReviewPayload {
	t.Helper()
	review, err := env.reviewSvc.Submit(context.Background(), &dto.SubmitForReviewRequest{
		NoteId:      noteId,
		ReviewerIds: reviewers,
		UserId:      author,
	})
	require.NoError(t, err)
	return review
}

func TestEditReviewHappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	review := submitNote(t, env, created.Id, alice, bob)

	assert.Equal(t, string(entity.ReviewStatusOpen), review.Status)
	assert.Equal(t, string(entity.ReviewKindEdit), review.Kind)
	assert.Equal(t, []string{bob}, review.ReviewerIds)

	shown, err := env.noteSvc.Show(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "needs_review", shown.State)

	merged := approveAndMerge(t, env, review, bob)
	assert.Equal(t, string(entity.ReviewStatusMerged), merged.Status)
	assert.Equal(t, "approved", merged.NoteState)
	require.NotNil(t, merged.MergedVersionId)
	assert.Equal(t, created.DraftVersionId, *merged.MergedVersionId)

	shown, err = env.noteSvc.Show(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "approved", shown.State)
	require.NotNil(t, shown.ApprovedVersion)
	assert.Equal(t, string(entity.VersionStateApproved), shown.ApprovedVersion.State)
	assert.Nil(t, shown.DraftVersion)
	require.NotNil(t, shown.CommittedBy)
	assert.Equal(t, bob, *shown.CommittedBy)
}

func TestMergeRetiresPreviousBaseline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	approveAndMerge(t, env, submitNote(t, env, created.Id, alice, bob), bob)

	second, err := env.noteSvc.SaveDraft(ctx, &dto.SaveDraftRequest{
		NoteId: created.Id,
		Title:  "Raft Consensus",
		Body:   "Second edition.",
		UserId: alice,
	})
	require.NoError(t, err)
	approveAndMerge(t, env, submitNote(t, env, created.Id, alice, bob), bob)

	history, err := env.noteSvc.History(ctx, created.Id)
	require.NoError(t, err)
	require.Len(t, history.Versions, 2)
	assert.Equal(t, string(entity.VersionStateArchived), history.Versions[0].State)
	assert.Equal(t, string(entity.VersionStateApproved), history.Versions[1].State)

	shown, err := env.noteSvc.Show(ctx, created.Id)
	require.NoError(t, err)
	require.NotNil(t, shown.ApprovedVersion)
	assert.Equal(t, second.DraftVersionId, shown.ApprovedVersion.Id)
}

func TestSubmitWithoutDraftRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	require.NoError(t, env.noteSvc.DiscardDraft(ctx, created.Id, alice))

	_, err := env.reviewSvc.Submit(ctx, &dto.SubmitForReviewRequest{NoteId: created.Id, UserId: alice})
	assert.True(t, apperror.IsKind(err, apperror.KindPreconditionFailed))
}

func TestDoubleSubmitConflicts(t *testing.T) {
	env := newTestEnv(t)

	created := createNote(t, env, alice)
	submitNote(t, env, created.Id, alice, bob)

	_, err := env.reviewSvc.Submit(context.Background(), &dto.SubmitForReviewRequest{
		NoteId: created.Id,
		UserId: alice,
	})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

func TestSelfApprovalRejected(t *testing.T) {
	env := newTestEnv(t)

	created := createNote(t, env, alice)
	review := submitNote(t, env, created.Id, alice, bob)

	_, err := env.reviewSvc.Approve(context.Background(), &dto.DecideRequest{ReviewId: review.Id, UserId: alice})
	assert.True(t, apperror.IsKind(err, apperror.KindNotAuthorized))

	// Commenting on your own review is fine.
	_, err = env.reviewSvc.Comment(context.Background(), &dto.DecideRequest{
		ReviewId: review.Id,
		UserId:   alice,
		Comment:  "context for reviewers",
	})
	assert.NoError(t, err)
}

func TestMergeGates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	review := submitNote(t, env, created.Id, alice, bob, carol)

	t.Run("no approvals", func(t *testing.T) {
		_, err := env.reviewSvc.Merge(ctx, &dto.MergeReviewRequest{ReviewId: review.Id, UserId: bob})
		assert.True(t, apperror.IsKind(err, apperror.KindPreconditionFailed))
	})

	t.Run("author cannot merge", func(t *testing.T) {
		_, err := env.reviewSvc.Approve(ctx, &dto.DecideRequest{ReviewId: review.Id, UserId: bob})
		require.NoError(t, err)
		_, err = env.reviewSvc.Merge(ctx, &dto.MergeReviewRequest{ReviewId: review.Id, UserId: alice})
		assert.True(t, apperror.IsKind(err, apperror.KindNotAuthorized))
	})

	t.Run("outstanding change requests", func(t *testing.T) {
		_, err := env.reviewSvc.RequestChanges(ctx, &dto.DecideRequest{ReviewId: review.Id, UserId: carol, Comment: "needs sources"})
		require.NoError(t, err)
		_, err = env.reviewSvc.Merge(ctx, &dto.MergeReviewRequest{ReviewId: review.Id, UserId: bob})
		assert.True(t, apperror.IsKind(err, apperror.KindPreconditionFailed))
	})
}

func TestDecisionUpsertRederivesCounters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	review := submitNote(t, env, created.Id, alice, bob)

	res, err := env.reviewSvc.RequestChanges(ctx, &dto.DecideRequest{ReviewId: review.Id, UserId: bob, Comment: "typo"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReviewStatusChangesRequested), res.Status)
	assert.Equal(t, 0, res.ApprovalsCount)
	assert.Equal(t, 1, res.ChangeRequestsCount)

	// Bob changes his mind; the old stance is replaced, not accumulated.
	res, err = env.reviewSvc.Approve(ctx, &dto.DecideRequest{ReviewId: review.Id, UserId: bob})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReviewStatusOpen), res.Status)
	assert.Equal(t, 1, res.ApprovalsCount)
	assert.Equal(t, 0, res.ChangeRequestsCount)
}

func TestResubmitReusesReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	review := submitNote(t, env, created.Id, alice, bob)

	_, err := env.reviewSvc.RequestChanges(ctx, &dto.DecideRequest{ReviewId: review.Id, UserId: bob, Comment: "expand the summary"})
	require.NoError(t, err)

	// The author may now edit the draft in place.
	_, err = env.noteSvc.SaveDraft(ctx, &dto.SaveDraftRequest{
		NoteId: created.Id,
		Title:  "Raft Consensus",
		Body:   "Expanded summary.",
		UserId: alice,
	})
	require.NoError(t, err)

	resubmitted, err := env.reviewSvc.Submit(ctx, &dto.SubmitForReviewRequest{NoteId: created.Id, UserId: alice})
	require.NoError(t, err)
	assert.Equal(t, review.Id, resubmitted.Id)
	assert.Equal(t, string(entity.ReviewStatusOpen), resubmitted.Status)
	assert.Equal(t, 0, resubmitted.ChangeRequestsCount)

	shown, err := env.reviewSvc.Show(ctx, review.Id)
	require.NoError(t, err)
	types := make([]string, 0, len(shown.Timeline))
	for _, e := range shown.Timeline {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{"submitted", "changes_requested", "reopened"}, types)
}

func TestResubmitAfterCloseReopensSameReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	review := submitNote(t, env, created.Id, alice, bob)

	_, err := env.reviewSvc.Close(ctx, &dto.CloseReviewRequest{ReviewId: review.Id, UserId: alice})
	require.NoError(t, err)

	// The draft lineage is unchanged, so submitting again must revive
	// the closed review instead of minting a new id.
	resubmitted, err := env.reviewSvc.Submit(ctx, &dto.SubmitForReviewRequest{NoteId: created.Id, UserId: alice})
	require.NoError(t, err)
	assert.Equal(t, review.Id, resubmitted.Id)
	assert.Equal(t, string(entity.ReviewStatusOpen), resubmitted.Status)

	shown, err := env.reviewSvc.Show(ctx, review.Id)
	require.NoError(t, err)
	types := make([]string, 0, len(shown.Timeline))
	for _, e := range shown.Timeline {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{"submitted", "closed", "reopened"}, types)

	// And it is mergeable again.
	approveAndMerge(t, env, resubmitted, bob)
}

func TestDecisionByNonReviewerRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	review := submitNote(t, env, created.Id, alice, bob)

	_, err := env.reviewSvc.Approve(ctx, &dto.DecideRequest{ReviewId: review.Id, UserId: carol})
	assert.True(t, apperror.IsKind(err, apperror.KindNotAuthorized))
	_, err = env.reviewSvc.RequestChanges(ctx, &dto.DecideRequest{ReviewId: review.Id, UserId: carol, Comment: "drive-by"})
	assert.True(t, apperror.IsKind(err, apperror.KindNotAuthorized))

	// Bystanders may still comment.
	_, err = env.reviewSvc.Comment(ctx, &dto.DecideRequest{ReviewId: review.Id, UserId: carol, Comment: "interesting"})
	assert.NoError(t, err)

	// And an outsider's attempt leaves the merge gate shut.
	_, err = env.reviewSvc.Merge(ctx, &dto.MergeReviewRequest{ReviewId: review.Id, UserId: carol})
	assert.True(t, apperror.IsKind(err, apperror.KindPreconditionFailed))
}

func TestCloseReleasesDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	review := submitNote(t, env, created.Id, alice, bob)

	closed, err := env.reviewSvc.Close(ctx, &dto.CloseReviewRequest{ReviewId: review.Id, UserId: alice})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReviewStatusClosed), closed.Status)

	// Draft is editable again.
	_, err = env.noteSvc.SaveDraft(ctx, &dto.SaveDraftRequest{
		NoteId: created.Id,
		Title:  "Raft Consensus",
		Body:   "After close.",
		UserId: alice,
	})
	require.NoError(t, err)

	// Closed reviews accept no further decisions.
	_, err = env.reviewSvc.Approve(ctx, &dto.DecideRequest{ReviewId: review.Id, UserId: bob})
	assert.True(t, apperror.IsKind(err, apperror.KindPreconditionFailed))
}

func TestSubmitRequiresAReviewer(t *testing.T) {
	env := newTestEnv(t)

	created := createNote(t, env, alice)
	_, err := env.reviewSvc.Submit(context.Background(), &dto.SubmitForReviewRequest{
		NoteId: created.Id,
		// Self-assignments are dropped, leaving nobody to review.
		ReviewerIds: []string{alice, " "},
		UserId:      alice,
	})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestReopenRestoresReviewState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	review := submitNote(t, env, created.Id, alice, bob)

	_, err := env.reviewSvc.Close(ctx, &dto.CloseReviewRequest{ReviewId: review.Id, UserId: alice})
	require.NoError(t, err)

	reopened, err := env.reviewSvc.Reopen(ctx, &dto.ReopenReviewRequest{ReviewId: review.Id, UserId: alice})
	require.NoError(t, err)
	assert.Equal(t, review.Id, reopened.Id)
	assert.Equal(t, string(entity.ReviewStatusOpen), reopened.Status)

	// The draft is frozen again.
	shown, err := env.noteSvc.Show(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "needs_review", shown.State)

	// And the review can run to completion.
	approveAndMerge(t, env, reopened, bob)
}

func TestReopenRequiresClosedReview(t *testing.T) {
	env := newTestEnv(t)

	created := createNote(t, env, alice)
	review := submitNote(t, env, created.Id, alice, bob)

	_, err := env.reviewSvc.Reopen(context.Background(), &dto.ReopenReviewRequest{ReviewId: review.Id, UserId: alice})
	assert.True(t, apperror.IsKind(err, apperror.KindPreconditionFailed))
}

func TestReopenRejectedAfterDraftDiscarded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	review := submitNote(t, env, created.Id, alice, bob)

	_, err := env.reviewSvc.Close(ctx, &dto.CloseReviewRequest{ReviewId: review.Id, UserId: alice})
	require.NoError(t, err)
	require.NoError(t, env.noteSvc.DiscardDraft(ctx, created.Id, alice))

	_, err = env.reviewSvc.Reopen(ctx, &dto.ReopenReviewRequest{ReviewId: review.Id, UserId: alice})
	assert.True(t, apperror.IsKind(err, apperror.KindPreconditionFailed))
}

func TestReopenConflictsWithNewerReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	first := submitNote(t, env, created.Id, alice, bob)

	_, err := env.reviewSvc.Close(ctx, &dto.CloseReviewRequest{ReviewId: first.Id, UserId: alice})
	require.NoError(t, err)

	// Start over on a fresh draft; its review is a new one because the
	// draft lineage changed.
	require.NoError(t, env.noteSvc.DiscardDraft(ctx, created.Id, alice))
	_, err = env.noteSvc.SaveDraft(ctx, &dto.SaveDraftRequest{
		NoteId: created.Id,
		Title:  "Raft Consensus",
		Body:   "A rewrite from scratch.",
		UserId: alice,
	})
	require.NoError(t, err)
	second := submitNote(t, env, created.Id, alice, carol)
	assert.NotEqual(t, first.Id, second.Id)

	_, err = env.reviewSvc.Reopen(ctx, &dto.ReopenReviewRequest{ReviewId: first.Id, UserId: alice})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

func TestCloseByStrangerRejected(t *testing.T) {
	env := newTestEnv(t)

	created := createNote(t, env, alice)
	review := submitNote(t, env, created.Id, alice, bob)

	_, err := env.reviewSvc.Close(context.Background(), &dto.CloseReviewRequest{ReviewId: review.Id, UserId: carol})
	assert.True(t, apperror.IsKind(err, apperror.KindNotAuthorized))
}

func TestCloseAndReopenAreAuthorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	review := submitNote(t, env, created.Id, alice, bob)

	// An assigned reviewer may decide, but not close.
	_, err := env.reviewSvc.Close(ctx, &dto.CloseReviewRequest{ReviewId: review.Id, UserId: bob})
	assert.True(t, apperror.IsKind(err, apperror.KindNotAuthorized))

	_, err = env.reviewSvc.Close(ctx, &dto.CloseReviewRequest{ReviewId: review.Id, UserId: alice})
	require.NoError(t, err)

	// Nor reopen.
	_, err = env.reviewSvc.Reopen(ctx, &dto.ReopenReviewRequest{ReviewId: review.Id, UserId: bob})
	assert.True(t, apperror.IsKind(err, apperror.KindNotAuthorized))

	reopened, err := env.reviewSvc.Reopen(ctx, &dto.ReopenReviewRequest{ReviewId: review.Id, UserId: alice})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReviewStatusOpen), reopened.Status)
}

func TestDeleteAndRestoreRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	approveAndMerge(t, env, submitNote(t, env, created.Id, alice, bob), bob)

	deleteReview, err := env.reviewSvc.RequestDelete(ctx, &dto.RequestDeleteRequest{
		NoteId:      created.Id,
		ReviewerIds: []string{bob},
		Reason:      "superseded by the distributed systems handbook",
		UserId:      alice,
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReviewKindDelete), deleteReview.Kind)
	assert.Nil(t, deleteReview.DraftVersionId)

	approveAndMerge(t, env, deleteReview, bob)

	shown, err := env.noteSvc.Show(ctx, created.Id)
	require.NoError(t, err)
	assert.True(t, shown.Deleted)
	// History stays readable after deletion.
	history, err := env.noteSvc.History(ctx, created.Id)
	require.NoError(t, err)
	assert.Len(t, history.Versions, 1)

	// No edits while deleted.
	_, err = env.noteSvc.SaveDraft(ctx, &dto.SaveDraftRequest{
		NoteId: created.Id,
		Title:  "Raft Consensus",
		Body:   "zombie edit",
		UserId: alice,
	})
	assert.True(t, apperror.IsKind(err, apperror.KindPreconditionFailed))

	restoreReview, err := env.reviewSvc.RequestRestore(ctx, &dto.RequestRestoreRequest{
		NoteId:      created.Id,
		ReviewerIds: []string{bob},
		UserId:      alice,
	})
	require.NoError(t, err)
	approveAndMerge(t, env, restoreReview, bob)

	shown, err = env.noteSvc.Show(ctx, created.Id)
	require.NoError(t, err)
	assert.False(t, shown.Deleted)
	assert.Equal(t, "approved", shown.State)
}

func TestDeleteRequestConflictsWithActiveReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	submitNote(t, env, created.Id, alice, bob)

	_, err := env.reviewSvc.RequestDelete(ctx, &dto.RequestDeleteRequest{NoteId: created.Id, UserId: alice})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

func TestRestoreRequiresDeletedNote(t *testing.T) {
	env := newTestEnv(t)

	created := createNote(t, env, alice)
	_, err := env.reviewSvc.RequestRestore(context.Background(), &dto.RequestRestoreRequest{NoteId: created.Id, UserId: alice})
	assert.True(t, apperror.IsKind(err, apperror.KindPreconditionFailed))
}

func TestMergeIdempotencyKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	review := submitNote(t, env, created.Id, alice, bob)
	_, err := env.reviewSvc.Approve(ctx, &dto.DecideRequest{ReviewId: review.Id, UserId: bob})
	require.NoError(t, err)

	first, err := env.reviewSvc.Merge(ctx, &dto.MergeReviewRequest{
		ReviewId:       review.Id,
		UserId:         bob,
		IdempotencyKey: "merge-attempt-1",
	})
	require.NoError(t, err)

	// The retry returns the recorded result instead of failing on the
	// already-merged review.
	second, err := env.reviewSvc.Merge(ctx, &dto.MergeReviewRequest{
		ReviewId:       review.Id,
		UserId:         bob,
		IdempotencyKey: "merge-attempt-1",
	})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Without the key the merged review is rejected.
	_, err = env.reviewSvc.Merge(ctx, &dto.MergeReviewRequest{ReviewId: review.Id, UserId: bob})
	assert.True(t, apperror.IsKind(err, apperror.KindPreconditionFailed))
}

func TestShowReviewIncludesDiff(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	approveAndMerge(t, env, submitNote(t, env, created.Id, alice, bob), bob)

	_, err := env.noteSvc.SaveDraft(ctx, &dto.SaveDraftRequest{
		NoteId: created.Id,
		Title:  "Raft Consensus",
		Body:   "Leaders are elected by majority vote. Logs replicate forward.",
		UserId: alice,
	})
	require.NoError(t, err)
	review := submitNote(t, env, created.Id, alice, bob)

	shown, err := env.reviewSvc.Show(ctx, review.Id)
	require.NoError(t, err)
	require.NotNil(t, shown.Note)
	assert.Equal(t, created.Id, shown.Note.Id)
	require.NotNil(t, shown.BaseVersion)
	require.NotNil(t, shown.DraftVersion)
	assert.Equal(t, shown.BaseVersion.VersionIndex+1, shown.DraftVersion.VersionIndex)
	require.NotEmpty(t, shown.Diff)
	require.NotNil(t, shown.DiffStats)
	assert.Greater(t, shown.DiffStats.Added, 0)
}

func TestUpdateReviewersDropsStaleDecisions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	review := submitNote(t, env, created.Id, alice, bob)

	_, err := env.reviewSvc.Approve(ctx, &dto.DecideRequest{ReviewId: review.Id, UserId: bob})
	require.NoError(t, err)

	updated, err := env.reviewSvc.Update(ctx, &dto.UpdateReviewRequest{
		ReviewId:    review.Id,
		ReviewerIds: []string{carol},
		UserId:      alice,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{carol}, updated.ReviewerIds)
	assert.Equal(t, 0, updated.ApprovalsCount)
}

func TestUpdateReviewTitleAndDescription(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	review := submitNote(t, env, created.Id, alice, bob)

	title := "Raft Consensus, second draft"
	desc := "Clarifies the election section."
	_, err := env.reviewSvc.Update(ctx, &dto.UpdateReviewRequest{
		ReviewId:    review.Id,
		Title:       &title,
		Description: &desc,
		UserId:      alice,
	})
	require.NoError(t, err)

	shown, err := env.reviewSvc.Show(ctx, review.Id)
	require.NoError(t, err)
	assert.Equal(t, title, shown.Review.Title)
	require.NotNil(t, shown.Review.Description)
	assert.Equal(t, desc, *shown.Review.Description)
	// Reviewer set untouched when the request omits it.
	assert.Equal(t, []string{bob}, shown.Review.ReviewerIds)

	_, err = env.reviewSvc.Update(ctx, &dto.UpdateReviewRequest{
		ReviewId: review.Id,
		Title:    &title,
		UserId:   bob,
	})
	assert.True(t, apperror.IsKind(err, apperror.KindNotAuthorized))
}

func TestQueueListsInvolvedActiveReviews(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := createNote(t, env, alice)
	reviewOne := submitNote(t, env, first.Id, alice, bob)

	second := createNote(t, env, carol)
	submitNote(t, env, second.Id, carol, "dave")

	queue, err := env.reviewSvc.Queue(ctx, bob)
	require.NoError(t, err)
	require.Len(t, queue.Reviews, 1)
	assert.Equal(t, reviewOne.Id, queue.Reviews[0].Id)

	// Merged reviews drop out of the queue.
	approveAndMerge(t, env, reviewOne, bob)
	queue, err = env.reviewSvc.Queue(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, queue.Reviews)
}

func TestListReviewsFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := createNote(t, env, alice)
	approveAndMerge(t, env, submitNote(t, env, first.Id, alice, bob), bob)

	second := createNote(t, env, carol)
	submitNote(t, env, second.Id, carol, bob)

	all, err := env.reviewSvc.List(ctx, &dto.ListReviewsQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	open, err := env.reviewSvc.List(ctx, &dto.ListReviewsQuery{Statuses: []string{string(entity.ReviewStatusOpen)}})
	require.NoError(t, err)
	require.Len(t, open.Reviews, 1)
	assert.Equal(t, second.Id, open.Reviews[0].NoteId)

	byNote, err := env.reviewSvc.List(ctx, &dto.ListReviewsQuery{NoteId: &first.Id})
	require.NoError(t, err)
	require.Len(t, byNote.Reviews, 1)
	assert.Equal(t, string(entity.ReviewStatusMerged), byNote.Reviews[0].Status)
}

func TestTimelineRecordsFullLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := createNote(t, env, alice)
	review := submitNote(t, env, created.Id, alice, bob)

	_, err := env.reviewSvc.Comment(ctx, &dto.DecideRequest{ReviewId: review.Id, UserId: bob, Comment: "looking"})
	require.NoError(t, err)
	_, err = env.reviewSvc.Approve(ctx, &dto.DecideRequest{ReviewId: review.Id, UserId: bob})
	require.NoError(t, err)
	_, err = env.reviewSvc.Merge(ctx, &dto.MergeReviewRequest{ReviewId: review.Id, UserId: bob})
	require.NoError(t, err)

	shown, err := env.reviewSvc.Show(ctx, review.Id)
	require.NoError(t, err)
	types := make([]string, 0, len(shown.Timeline))
	for _, e := range shown.Timeline {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{"submitted", "comment", "approved", "merged"}, types)
	for _, e := range shown.Timeline {
		assert.Equal(t, review.Id, e.ReviewId)
		assert.NotEmpty(t, e.ActorId)
	}
}
