package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"saraswati-be/internal/apperror"
	"saraswati-be/internal/dto"
	"saraswati-be/internal/entity"
	"saraswati-be/internal/pkg/locker"
	"saraswati-be/internal/pkg/logger"
	"saraswati-be/internal/pkg/mailer"
	"saraswati-be/internal/repository/memory"
	"saraswati-be/internal/repository/specification"
	"saraswati-be/internal/repository/unitofwork"
	"saraswati-be/pkg/diff"
	"saraswati-be/pkg/events"
	pktNats "saraswati-be/pkg/nats"

	"github.com/google/uuid"
)

type IReviewService interface {
	Submit(ctx context.Context, req *dto.SubmitForReviewRequest) (*dto.ReviewPayload, error)
	RequestDelete(ctx context.Context, req *dto.RequestDeleteRequest) (*dto.ReviewPayload, error)
	RequestRestore(ctx context.Context, req *dto.RequestRestoreRequest) (*dto.ReviewPayload, error)
	Approve(ctx context.Context, req *dto.DecideRequest) (*dto.ReviewPayload, error)
	RequestChanges(ctx context.Context, req *dto.DecideRequest) (*dto.ReviewPayload, error)
	Comment(ctx context.Context, req *dto.DecideRequest) (*dto.ReviewPayload, error)
	Merge(ctx context.Context, req *dto.MergeReviewRequest) (*dto.MergeReviewResponse, error)
	Close(ctx context.Context, req *dto.CloseReviewRequest) (*dto.ReviewPayload, error)
	Reopen(ctx context.Context, req *dto.ReopenReviewRequest) (*dto.ReviewPayload, error)
	Update(ctx context.Context, req *dto.UpdateReviewRequest) (*dto.ReviewPayload, error)
	Show(ctx context.Context, reviewId uuid.UUID) (*dto.ShowReviewResponse, error)
	List(ctx context.Context, query *dto.ListReviewsQuery) (*dto.ListReviewsResponse, error)
	Queue(ctx context.Context, userId string) (*dto.ListReviewsResponse, error)
}

type reviewService struct {
	uowFactory       unitofwork.RepositoryFactory
	noteLocker       *locker.NoteLocker
	idempotency      *memory.IdempotencyRepository
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	emailService     mailer.IEmailService
	log              logger.ILogger
	minApprovals     int
}

func NewReviewService(
	uowFactory unitofwork.RepositoryFactory,
	noteLocker *locker.NoteLocker,
	idempotency *memory.IdempotencyRepository,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	emailService mailer.IEmailService,
	log logger.ILogger,
	minApprovals int,
) IReviewService {
	if minApprovals < 1 {
		minApprovals = 1
	}
	return &reviewService{
		uowFactory:       uowFactory,
		noteLocker:       noteLocker,
		idempotency:      idempotency,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		emailService:     emailService,
		log:              log,
		minApprovals:     minApprovals,
	}
}

// Submit moves the note's draft into review. Resubmitting a draft whose
// review asked for changes reopens that same review instead of opening a
// second one.
func (c *reviewService) Submit(ctx context.Context, req *dto.SubmitForReviewRequest) (*dto.ReviewPayload, error) {
	if req.IdempotencyKey != "" {
		if cached, ok := c.idempotency.Get("submit:" + req.IdempotencyKey); ok {
			return cached.(*dto.ReviewPayload), nil
		}
	}

	release := c.noteLocker.Acquire(req.NoteId)
	defer release()

	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: req.NoteId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if note == nil {
		return nil, apperror.NotFound("note not found")
	}
	if note.IsDeleted() {
		return nil, apperror.PreconditionFailed("note is deleted")
	}
	if note.DraftVersionId == nil {
		return nil, apperror.PreconditionFailed("note has no draft to submit")
	}

	draft, err := uow.NoteVersionRepository().FindOne(ctx, specification.ByID{ID: *note.DraftVersionId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if draft == nil {
		return nil, apperror.NotFound("draft version not found")
	}

	existing, err := uow.ReviewRepository().FindOne(ctx,
		specification.ByDraftVersionID{VersionID: draft.Id},
		specification.ByStatuses{Statuses: []string{
			string(entity.ReviewStatusOpen),
			string(entity.ReviewStatusChangesRequested),
		}},
	)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}

	now := time.Now()

	if existing == nil {
		// A closed review on the same draft lineage is reopened rather
		// than shadowed by a fresh review id.
		existing, err = uow.ReviewRepository().FindOne(ctx,
			specification.ByDraftVersionID{VersionID: draft.Id},
			specification.ByStatuses{Statuses: []string{string(entity.ReviewStatusClosed)}},
		)
		if err != nil {
			return nil, apperror.FromStorage(err)
		}
	}

	if existing != nil {
		if existing.Status == entity.ReviewStatusOpen && draft.State == entity.VersionStateNeedsReview {
			return nil, apperror.Conflict("draft is already under review")
		}
		// Resubmission after changes were requested or a close: same
		// review, stale change requests cleared, timeline records the
		// reopen.
		payload, err := c.resubmit(ctx, uow, note, draft, existing, req, now)
		if err != nil {
			return nil, err
		}
		if req.IdempotencyKey != "" {
			c.idempotency.Remember("submit:"+req.IdempotencyKey, payload)
		}
		return payload, nil
	}

	reviewerIds := dedupeReviewers(req.ReviewerIds, req.UserId)
	if len(reviewerIds) == 0 {
		return nil, apperror.Validation("at least one reviewer is required")
	}

	review := entity.Review{
		Id:             uuid.New(),
		NoteId:         note.Id,
		DraftVersionId: &draft.Id,
		BaseVersionId:  note.ApprovedVersionId,
		Kind:           entity.ReviewKindEdit,
		Title:          draft.Title,
		CreatedBy:      req.UserId,
		ReviewerIds:    reviewerIds,
		Status:         entity.ReviewStatusOpen,
		CreatedAt:      now,
	}
	if req.Message != "" {
		review.Description = &req.Message
	}

	draft.State = entity.VersionStateNeedsReview
	draft.SubmittedBy = &req.UserId
	draft.UpdatedAt = &now

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.FromStorage(err)
	}
	defer uow.Rollback()

	if err := uow.ReviewRepository().Create(ctx, &review); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if err := uow.NoteVersionRepository().Update(ctx, draft); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if err := c.appendEvent(ctx, uow, &review, entity.ReviewEventSubmitted, req.UserId, req.Message, nil); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.FromStorage(err)
	}

	c.log.Info("review", "review opened", map[string]interface{}{
		"review_id": review.Id,
		"note_id":   note.Id,
		"kind":      review.Kind,
	})
	c.publishEvent(ctx, events.TypeReviewSubmitted, &review, req.UserId)
	c.notifyReviewers(&review)

	payload := toReviewPayload(&review)
	if req.IdempotencyKey != "" {
		c.idempotency.Remember("submit:"+req.IdempotencyKey, payload)
	}
	return payload, nil
}

func (c *reviewService) resubmit(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	note *entity.Note,
	draft *entity.NoteVersion,
	review *entity.Review,
	req *dto.SubmitForReviewRequest,
	now time.Time,
) (*dto.ReviewPayload, error) {
	draft.State = entity.VersionStateNeedsReview
	draft.SubmittedBy = &req.UserId
	draft.UpdatedAt = &now

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.FromStorage(err)
	}
	defer uow.Rollback()

	if err := uow.NoteVersionRepository().Update(ctx, draft); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if err := uow.ReviewDecisionRepository().DeleteByDecision(ctx, review.Id, entity.DecisionChangesRequested); err != nil {
		return nil, apperror.FromStorage(err)
	}

	decisions, err := uow.ReviewDecisionRepository().FindAll(ctx, specification.ByReviewID{ReviewID: review.Id})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	review.ApprovalsCount, review.ChangeRequestsCount = entity.CountDecisions(decisions)
	review.Status = entity.ReviewStatusOpen
	review.ClosedAt = nil
	if len(req.ReviewerIds) > 0 {
		review.ReviewerIds = dedupeReviewers(req.ReviewerIds, req.UserId)
	}
	review.UpdatedAt = &now

	if err := uow.ReviewRepository().Update(ctx, review); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if err := c.appendEvent(ctx, uow, review, entity.ReviewEventReopened, req.UserId, req.Message, nil); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.FromStorage(err)
	}

	c.publishEvent(ctx, events.TypeReviewReopened, review, req.UserId)
	return toReviewPayload(review), nil
}

// RequestDelete opens a delete review; the note stays readable until the
// review merges.
func (c *reviewService) RequestDelete(ctx context.Context, req *dto.RequestDeleteRequest) (*dto.ReviewPayload, error) {
	return c.requestLifecycleChange(ctx, entity.ReviewKindDelete, req.NoteId, req.UserId, req.Reason, req.ReviewerIds)
}

// RequestRestore opens a restore review on a soft-deleted note.
func (c *reviewService) RequestRestore(ctx context.Context, req *dto.RequestRestoreRequest) (*dto.ReviewPayload, error) {
	return c.requestLifecycleChange(ctx, entity.ReviewKindRestore, req.NoteId, req.UserId, req.Reason, req.ReviewerIds)
}

func (c *reviewService) requestLifecycleChange(
	ctx context.Context,
	kind entity.ReviewKind,
	noteId uuid.UUID,
	userId, reason string,
	reviewerIds []string,
) (*dto.ReviewPayload, error) {
	release := c.noteLocker.Acquire(noteId)
	defer release()

	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if note == nil {
		return nil, apperror.NotFound("note not found")
	}
	if kind == entity.ReviewKindDelete && note.IsDeleted() {
		return nil, apperror.PreconditionFailed("note is already deleted")
	}
	if kind == entity.ReviewKindRestore && !note.IsDeleted() {
		return nil, apperror.PreconditionFailed("note is not deleted")
	}

	active, err := uow.ReviewRepository().FindAll(ctx,
		specification.Filter("note_id", noteId),
		specification.ByStatuses{Statuses: []string{
			string(entity.ReviewStatusOpen),
			string(entity.ReviewStatusChangesRequested),
		}},
	)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if len(active) > 0 {
		return nil, apperror.Conflict("note already has an active review")
	}

	reviewers := dedupeReviewers(reviewerIds, userId)
	if len(reviewers) == 0 {
		return nil, apperror.Validation("at least one reviewer is required")
	}

	now := time.Now()
	review := entity.Review{
		Id:          uuid.New(),
		NoteId:      note.Id,
		Kind:        kind,
		Title:       note.Title,
		CreatedBy:   userId,
		ReviewerIds: reviewers,
		Status:      entity.ReviewStatusOpen,
		CreatedAt:   now,
	}
	if reason != "" {
		review.Description = &reason
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.FromStorage(err)
	}
	defer uow.Rollback()

	if err := uow.ReviewRepository().Create(ctx, &review); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if err := c.appendEvent(ctx, uow, &review, entity.ReviewEventSubmitted, userId, reason, map[string]interface{}{
		"kind": string(kind),
	}); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.FromStorage(err)
	}

	c.publishEvent(ctx, events.TypeReviewSubmitted, &review, userId)
	c.notifyReviewers(&review)
	return toReviewPayload(&review), nil
}

func (c *reviewService) Approve(ctx context.Context, req *dto.DecideRequest) (*dto.ReviewPayload, error) {
	return c.decide(ctx, req, entity.DecisionApproved)
}

func (c *reviewService) RequestChanges(ctx context.Context, req *dto.DecideRequest) (*dto.ReviewPayload, error) {
	return c.decide(ctx, req, entity.DecisionChangesRequested)
}

func (c *reviewService) Comment(ctx context.Context, req *dto.DecideRequest) (*dto.ReviewPayload, error) {
	return c.decide(ctx, req, entity.DecisionCommented)
}

// decide records (or replaces) the actor's stance and re-derives the
// review's counters and status from the full decision set. Decisions never
// touch the version ledger.
func (c *reviewService) decide(ctx context.Context, req *dto.DecideRequest, kind entity.DecisionKind) (*dto.ReviewPayload, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	review, err := uow.ReviewRepository().FindOne(ctx, specification.ByID{ID: req.ReviewId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if review == nil {
		return nil, apperror.NotFound("review not found")
	}

	release := c.noteLocker.Acquire(review.NoteId)
	defer release()

	review, err = uow.ReviewRepository().FindOne(ctx, specification.ByID{ID: req.ReviewId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if !review.Active() {
		return nil, apperror.PreconditionFailed("review is no longer active")
	}
	if kind != entity.DecisionCommented && review.CreatedBy == req.UserId {
		return nil, apperror.NotAuthorized("review author cannot decide on their own review")
	}
	if kind != entity.DecisionCommented && !review.HasReviewer(req.UserId) {
		return nil, apperror.NotAuthorized("only an assigned reviewer may decide on a review")
	}

	now := time.Now()
	decision := entity.ReviewDecision{
		ReviewId:  review.Id,
		UserId:    req.UserId,
		Decision:  kind,
		UpdatedAt: now,
	}
	if req.Comment != "" {
		decision.Comment = &req.Comment
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.FromStorage(err)
	}
	defer uow.Rollback()

	if err := uow.ReviewDecisionRepository().Upsert(ctx, &decision); err != nil {
		return nil, apperror.FromStorage(err)
	}

	decisions, err := uow.ReviewDecisionRepository().FindAll(ctx, specification.ByReviewID{ReviewID: review.Id})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	review.ApprovalsCount, review.ChangeRequestsCount = entity.CountDecisions(decisions)
	if review.ChangeRequestsCount > 0 {
		review.Status = entity.ReviewStatusChangesRequested
	} else {
		review.Status = entity.ReviewStatusOpen
	}
	review.UpdatedAt = &now

	if err := uow.ReviewRepository().Update(ctx, review); err != nil {
		return nil, apperror.FromStorage(err)
	}

	eventType := entity.ReviewEventComment
	wireType := events.TypeReviewCommented
	switch kind {
	case entity.DecisionApproved:
		eventType = entity.ReviewEventApproved
		wireType = events.TypeReviewApproved
	case entity.DecisionChangesRequested:
		eventType = entity.ReviewEventChangesRequested
		wireType = events.TypeReviewChangesRequested
	}
	if err := c.appendEvent(ctx, uow, review, eventType, req.UserId, req.Comment, nil); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.FromStorage(err)
	}

	c.publishEvent(ctx, wireType, review, req.UserId)
	return toReviewPayload(review), nil
}

// Merge applies the review's outcome to the note: an edit promotes the
// draft to the approved baseline, a delete sets the soft-delete flag, a
// restore clears it.
func (c *reviewService) Merge(ctx context.Context, req *dto.MergeReviewRequest) (*dto.MergeReviewResponse, error) {
	if req.IdempotencyKey != "" {
		if cached, ok := c.idempotency.Get("merge:" + req.IdempotencyKey); ok {
			return cached.(*dto.MergeReviewResponse), nil
		}
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	review, err := uow.ReviewRepository().FindOne(ctx, specification.ByID{ID: req.ReviewId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if review == nil {
		return nil, apperror.NotFound("review not found")
	}

	release := c.noteLocker.Acquire(review.NoteId)
	defer release()

	// Re-read under the lock; a concurrent merge or close may have won.
	review, err = uow.ReviewRepository().FindOne(ctx, specification.ByID{ID: req.ReviewId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if review.Status != entity.ReviewStatusOpen {
		if review.Status == entity.ReviewStatusChangesRequested {
			return nil, apperror.PreconditionFailed("review has outstanding change requests")
		}
		return nil, apperror.PreconditionFailed("review is no longer open")
	}
	if review.CreatedBy == req.UserId {
		return nil, apperror.NotAuthorized("review author cannot merge their own review")
	}
	if review.ApprovalsCount < c.minApprovals {
		return nil, apperror.PreconditionFailed("review does not have enough approvals")
	}

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: review.NoteId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if note == nil {
		return nil, apperror.NotFound("note not found")
	}

	now := time.Now()

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.FromStorage(err)
	}
	defer uow.Rollback()

	var mergedVersion *entity.NoteVersion
	switch review.Kind {
	case entity.ReviewKindEdit:
		mergedVersion, err = c.mergeEdit(ctx, uow, note, review, req.UserId, now)
		if err != nil {
			return nil, err
		}
	case entity.ReviewKindDelete:
		note.DeletedAt = &now
		note.DeletedBy = &req.UserId
		note.UpdatedAt = &now
		if err := uow.NoteRepository().Update(ctx, note); err != nil {
			return nil, apperror.FromStorage(err)
		}
	case entity.ReviewKindRestore:
		note.DeletedAt = nil
		note.DeletedBy = nil
		note.UpdatedAt = &now
		if err := uow.NoteRepository().Update(ctx, note); err != nil {
			return nil, apperror.FromStorage(err)
		}
	}

	review.Status = entity.ReviewStatusMerged
	review.MergedBy = &req.UserId
	review.MergedAt = &now
	review.UpdatedAt = &now
	if mergedVersion != nil {
		review.MergeVersionId = &mergedVersion.Id
	}
	if err := uow.ReviewRepository().Update(ctx, review); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if err := c.appendEvent(ctx, uow, review, entity.ReviewEventMerged, req.UserId, "", nil); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.FromStorage(err)
	}

	c.log.Info("review", "review merged", map[string]interface{}{
		"review_id": review.Id,
		"note_id":   note.Id,
		"kind":      review.Kind,
		"merged_by": req.UserId,
	})

	c.signalIndexer(ctx, note, review, mergedVersion)
	wireType := events.TypeReviewMerged
	switch review.Kind {
	case entity.ReviewKindDelete:
		wireType = events.TypeNoteDeleted
	case entity.ReviewKindRestore:
		wireType = events.TypeNoteRestored
	}
	c.publishEvent(ctx, wireType, review, req.UserId)
	c.notifyMerged(review)

	var draft *entity.NoteVersion
	if note.DraftVersionId != nil {
		draft, _ = uow.NoteVersionRepository().FindOne(ctx, specification.ByID{ID: *note.DraftVersionId})
	}
	res := &dto.MergeReviewResponse{
		ReviewId:        review.Id,
		NoteId:          note.Id,
		Status:          string(review.Status),
		MergedVersionId: review.MergeVersionId,
		NoteState:       string(note.LifecycleState(draft)),
	}
	if req.IdempotencyKey != "" {
		c.idempotency.Remember("merge:"+req.IdempotencyKey, res)
	}
	return res, nil
}

func (c *reviewService) mergeEdit(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	note *entity.Note,
	review *entity.Review,
	userId string,
	now time.Time,
) (*entity.NoteVersion, error) {
	if review.DraftVersionId == nil {
		return nil, apperror.PreconditionFailed("edit review has no draft version")
	}
	if note.DraftVersionId == nil || *note.DraftVersionId != *review.DraftVersionId {
		return nil, apperror.Conflict("review draft no longer occupies the note's draft slot")
	}

	draft, err := uow.NoteVersionRepository().FindOne(ctx, specification.ByID{ID: *review.DraftVersionId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if draft == nil {
		return nil, apperror.NotFound("draft version not found")
	}
	if draft.State != entity.VersionStateNeedsReview {
		return nil, apperror.PreconditionFailed("draft version is not awaiting review")
	}

	// Retire the previous baseline.
	if note.ApprovedVersionId != nil {
		prev, err := uow.NoteVersionRepository().FindOne(ctx, specification.ByID{ID: *note.ApprovedVersionId})
		if err != nil {
			return nil, apperror.FromStorage(err)
		}
		if prev != nil {
			prev.State = entity.VersionStateArchived
			prev.UpdatedAt = &now
			if err := uow.NoteVersionRepository().Update(ctx, prev); err != nil {
				return nil, apperror.FromStorage(err)
			}
		}
	}

	draft.State = entity.VersionStateApproved
	draft.ReviewedBy = &userId
	draft.UpdatedAt = &now
	if err := uow.NoteVersionRepository().Update(ctx, draft); err != nil {
		return nil, apperror.FromStorage(err)
	}

	note.ApprovedVersionId = &draft.Id
	note.DraftVersionId = nil
	note.Title = draft.Title
	note.CommittedBy = &userId
	note.UpdatedAt = &now
	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, apperror.FromStorage(err)
	}
	return draft, nil
}

// Close abandons an active review. An edit review's draft drops back to
// the editable state so the author can keep working or discard it.
func (c *reviewService) Close(ctx context.Context, req *dto.CloseReviewRequest) (*dto.ReviewPayload, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	review, err := uow.ReviewRepository().FindOne(ctx, specification.ByID{ID: req.ReviewId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if review == nil {
		return nil, apperror.NotFound("review not found")
	}

	release := c.noteLocker.Acquire(review.NoteId)
	defer release()

	review, err = uow.ReviewRepository().FindOne(ctx, specification.ByID{ID: req.ReviewId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if !review.Active() {
		return nil, apperror.PreconditionFailed("review is no longer active")
	}
	if review.CreatedBy != req.UserId {
		return nil, apperror.NotAuthorized("only the review author may close it")
	}

	now := time.Now()

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.FromStorage(err)
	}
	defer uow.Rollback()

	if review.Kind == entity.ReviewKindEdit && review.DraftVersionId != nil {
		draft, err := uow.NoteVersionRepository().FindOne(ctx, specification.ByID{ID: *review.DraftVersionId})
		if err != nil {
			return nil, apperror.FromStorage(err)
		}
		if draft != nil && draft.State == entity.VersionStateNeedsReview {
			draft.State = entity.VersionStateDraft
			draft.UpdatedAt = &now
			if err := uow.NoteVersionRepository().Update(ctx, draft); err != nil {
				return nil, apperror.FromStorage(err)
			}
		}
	}

	review.Status = entity.ReviewStatusClosed
	review.ClosedAt = &now
	review.UpdatedAt = &now
	if err := uow.ReviewRepository().Update(ctx, review); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if err := c.appendEvent(ctx, uow, review, entity.ReviewEventClosed, req.UserId, req.Comment, nil); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.FromStorage(err)
	}

	c.publishEvent(ctx, events.TypeReviewClosed, review, req.UserId)
	return toReviewPayload(review), nil
}

// Reopen puts a closed review back in front of its reviewers. The draft
// it was reviewing must still occupy the note's draft slot.
func (c *reviewService) Reopen(ctx context.Context, req *dto.ReopenReviewRequest) (*dto.ReviewPayload, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	review, err := uow.ReviewRepository().FindOne(ctx, specification.ByID{ID: req.ReviewId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if review == nil {
		return nil, apperror.NotFound("review not found")
	}

	release := c.noteLocker.Acquire(review.NoteId)
	defer release()

	review, err = uow.ReviewRepository().FindOne(ctx, specification.ByID{ID: req.ReviewId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if review.Status != entity.ReviewStatusClosed {
		return nil, apperror.PreconditionFailed("only a closed review can be reopened")
	}
	if review.CreatedBy != req.UserId {
		return nil, apperror.NotAuthorized("only the review author may reopen it")
	}

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: review.NoteId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if note == nil {
		return nil, apperror.NotFound("note not found")
	}

	active, err := uow.ReviewRepository().FindAll(ctx,
		specification.Filter("note_id", review.NoteId),
		specification.ByStatuses{Statuses: []string{
			string(entity.ReviewStatusOpen),
			string(entity.ReviewStatusChangesRequested),
		}},
	)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if len(active) > 0 {
		return nil, apperror.Conflict("note already has an active review")
	}

	var draft *entity.NoteVersion
	switch review.Kind {
	case entity.ReviewKindEdit:
		if review.DraftVersionId == nil ||
			note.DraftVersionId == nil || *note.DraftVersionId != *review.DraftVersionId {
			return nil, apperror.PreconditionFailed("the reviewed draft no longer exists")
		}
		draft, err = uow.NoteVersionRepository().FindOne(ctx, specification.ByID{ID: *review.DraftVersionId})
		if err != nil {
			return nil, apperror.FromStorage(err)
		}
		if draft == nil || !draft.Editable() {
			return nil, apperror.PreconditionFailed("the reviewed draft no longer exists")
		}
	case entity.ReviewKindDelete:
		if note.IsDeleted() {
			return nil, apperror.PreconditionFailed("note is already deleted")
		}
	case entity.ReviewKindRestore:
		if !note.IsDeleted() {
			return nil, apperror.PreconditionFailed("note is not deleted")
		}
	}

	now := time.Now()

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.FromStorage(err)
	}
	defer uow.Rollback()

	if draft != nil {
		draft.State = entity.VersionStateNeedsReview
		draft.SubmittedBy = &req.UserId
		draft.UpdatedAt = &now
		if err := uow.NoteVersionRepository().Update(ctx, draft); err != nil {
			return nil, apperror.FromStorage(err)
		}
	}

	decisions, err := uow.ReviewDecisionRepository().FindAll(ctx, specification.ByReviewID{ReviewID: review.Id})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	review.ApprovalsCount, review.ChangeRequestsCount = entity.CountDecisions(decisions)
	if review.ChangeRequestsCount > 0 {
		review.Status = entity.ReviewStatusChangesRequested
	} else {
		review.Status = entity.ReviewStatusOpen
	}
	review.ClosedAt = nil
	review.UpdatedAt = &now
	if err := uow.ReviewRepository().Update(ctx, review); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if err := c.appendEvent(ctx, uow, review, entity.ReviewEventReopened, req.UserId, req.Comment, nil); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.FromStorage(err)
	}

	c.publishEvent(ctx, events.TypeReviewReopened, review, req.UserId)
	return toReviewPayload(review), nil
}

// Update edits the review's title, description and reviewer assignment.
// Decisions from reviewers no longer assigned are dropped and the
// counters re-derived.
func (c *reviewService) Update(ctx context.Context, req *dto.UpdateReviewRequest) (*dto.ReviewPayload, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	review, err := uow.ReviewRepository().FindOne(ctx, specification.ByID{ID: req.ReviewId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if review == nil {
		return nil, apperror.NotFound("review not found")
	}

	release := c.noteLocker.Acquire(review.NoteId)
	defer release()

	review, err = uow.ReviewRepository().FindOne(ctx, specification.ByID{ID: req.ReviewId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if !review.Active() {
		return nil, apperror.PreconditionFailed("review is no longer active")
	}
	if review.CreatedBy != req.UserId {
		return nil, apperror.NotAuthorized("only the review author may edit the review")
	}

	now := time.Now()
	if req.Title != nil && *req.Title != "" {
		review.Title = *req.Title
	}
	if req.Description != nil {
		review.Description = req.Description
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.FromStorage(err)
	}
	defer uow.Rollback()

	if req.ReviewerIds != nil {
		review.ReviewerIds = dedupeReviewers(req.ReviewerIds, req.UserId)
		if err := uow.ReviewDecisionRepository().DeleteExceptUsers(ctx, review.Id, review.ReviewerIds); err != nil {
			return nil, apperror.FromStorage(err)
		}
		decisions, err := uow.ReviewDecisionRepository().FindAll(ctx, specification.ByReviewID{ReviewID: review.Id})
		if err != nil {
			return nil, apperror.FromStorage(err)
		}
		review.ApprovalsCount, review.ChangeRequestsCount = entity.CountDecisions(decisions)
		if review.ChangeRequestsCount > 0 {
			review.Status = entity.ReviewStatusChangesRequested
		} else {
			review.Status = entity.ReviewStatusOpen
		}
	}
	review.UpdatedAt = &now

	if err := uow.ReviewRepository().Update(ctx, review); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if err := c.appendEvent(ctx, uow, review, entity.ReviewEventUpdated, req.UserId, "", map[string]interface{}{
		"reviewer_ids": review.ReviewerIds,
	}); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.FromStorage(err)
	}

	c.notifyReviewers(review)
	return toReviewPayload(review), nil
}

func (c *reviewService) Show(ctx context.Context, reviewId uuid.UUID) (*dto.ShowReviewResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	review, err := uow.ReviewRepository().FindOne(ctx, specification.ByID{ID: reviewId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if review == nil {
		return nil, apperror.NotFound("review not found")
	}

	decisions, err := uow.ReviewDecisionRepository().FindAll(ctx, specification.ByReviewID{ReviewID: reviewId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	timeline, err := uow.ReviewEventRepository().FindAll(ctx,
		specification.ByReviewID{ReviewID: reviewId},
		specification.TimelineOrder{},
	)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}

	res := dto.ShowReviewResponse{
		Review:    *toReviewPayload(review),
		Decisions: make([]dto.DecisionPayload, 0, len(decisions)),
		Timeline:  make([]dto.ReviewEventPayload, 0, len(timeline)),
	}
	for _, d := range decisions {
		p := dto.DecisionPayload{
			ReviewId:  d.ReviewId,
			UserId:    d.UserId,
			Kind:      string(d.Decision),
			CreatedAt: d.UpdatedAt,
		}
		if d.Comment != nil {
			p.Comment = *d.Comment
		}
		res.Decisions = append(res.Decisions, p)
	}
	for _, e := range timeline {
		p := dto.ReviewEventPayload{
			Id:        e.Id,
			ReviewId:  e.ReviewId,
			Type:      string(e.EventType),
			ActorId:   e.AuthorId,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		}
		if e.Message != nil {
			p.Comment = *e.Message
		}
		res.Timeline = append(res.Timeline, p)
	}

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: review.NoteId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if note != nil {
		res.Note = &dto.ReviewNoteSummary{
			Id:       note.Id,
			Title:    note.Title,
			Archived: note.Archived,
			Deleted:  note.IsDeleted(),
		}
	}

	if review.BaseVersionId != nil {
		baseVersion, err := uow.NoteVersionRepository().FindOne(ctx, specification.ByID{ID: *review.BaseVersionId})
		if err != nil {
			return nil, apperror.FromStorage(err)
		}
		if baseVersion != nil {
			res.BaseVersion = toVersionPayload(baseVersion)
		}
	}
	if review.DraftVersionId != nil {
		draft, err := uow.NoteVersionRepository().FindOne(ctx, specification.ByID{ID: *review.DraftVersionId})
		if err != nil {
			return nil, apperror.FromStorage(err)
		}
		if draft != nil {
			res.DraftVersion = toVersionPayload(draft)
		}
	}

	if review.Kind == entity.ReviewKindEdit && res.DraftVersion != nil {
		base := ""
		if res.BaseVersion != nil {
			base = res.BaseVersion.Body
		}
		chunks := diff.Compute(base, res.DraftVersion.Body)
		added, removed := diff.Stats(chunks)
		res.Diff = chunks
		res.DiffStats = &dto.DiffStats{Added: added, Removed: removed}
	}
	return &res, nil
}

func (c *reviewService) List(ctx context.Context, query *dto.ListReviewsQuery) (*dto.ListReviewsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{}
	if query.NoteId != nil {
		specs = append(specs, specification.Filter("note_id", *query.NoteId))
	}
	if len(query.Statuses) > 0 {
		specs = append(specs, specification.ByStatuses{Statuses: query.Statuses})
	}

	total, err := uow.ReviewRepository().Count(ctx, specs...)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}

	specs = append(specs, specification.OrderBy{Field: "created_at", Desc: true})
	if query.PerPage > 0 {
		page := query.Page
		if page < 1 {
			page = 1
		}
		specs = append(specs, specification.Pagination{Limit: query.PerPage, Offset: (page - 1) * query.PerPage})
	}

	reviews, err := uow.ReviewRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}

	res := dto.ListReviewsResponse{
		Reviews: make([]dto.ReviewPayload, 0, len(reviews)),
		Total:   total,
	}
	for _, r := range reviews {
		res.Reviews = append(res.Reviews, *toReviewPayload(r))
	}
	return &res, nil
}

// Queue lists the active reviews the user created or is assigned to.
func (c *reviewService) Queue(ctx context.Context, userId string) (*dto.ListReviewsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	reviews, err := uow.ReviewRepository().FindAll(ctx,
		specification.InvolvedUser{UserID: userId},
		specification.ByStatuses{Statuses: []string{
			string(entity.ReviewStatusOpen),
			string(entity.ReviewStatusChangesRequested),
		}},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}

	res := dto.ListReviewsResponse{
		Reviews: make([]dto.ReviewPayload, 0, len(reviews)),
		Total:   int64(len(reviews)),
	}
	for _, r := range reviews {
		res.Reviews = append(res.Reviews, *toReviewPayload(r))
	}
	return &res, nil
}

func (c *reviewService) appendEvent(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	review *entity.Review,
	eventType entity.ReviewEventType,
	actorId, message string,
	metadata map[string]interface{},
) error {
	event := entity.ReviewEvent{
		Id:        uuid.New(),
		ReviewId:  review.Id,
		EventType: eventType,
		AuthorId:  actorId,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
	if message != "" {
		event.Message = &message
	}
	if err := uow.ReviewEventRepository().Append(ctx, &event); err != nil {
		return apperror.FromStorage(err)
	}
	return nil
}

// signalIndexer pushes the merge outcome onto the internal pubsub topic
// for the search index. Best effort; the merge already committed.
func (c *reviewService) signalIndexer(ctx context.Context, note *entity.Note, review *entity.Review, merged *entity.NoteVersion) {
	if c.publisherService == nil {
		return
	}
	msg := dto.IndexSignalMessage{NoteId: note.Id}
	switch review.Kind {
	case entity.ReviewKindDelete:
		msg.Action = dto.IndexActionRetract
	case entity.ReviewKindRestore:
		msg.Action = dto.IndexActionPublish
		msg.VersionId = note.ApprovedVersionId
	default:
		msg.Action = dto.IndexActionPublish
		if merged != nil {
			msg.VersionId = &merged.Id
		}
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("review", "failed to marshal index signal", map[string]interface{}{
			"note_id": note.Id,
			"error":   err.Error(),
		})
		return
	}
	if err := c.publisherService.Publish(ctx, payload); err != nil {
		c.log.Warn("review", "failed to publish index signal", map[string]interface{}{
			"note_id": note.Id,
			"error":   err.Error(),
		})
	}
}

func (c *reviewService) publishEvent(ctx context.Context, eventType string, review *entity.Review, actorId string) {
	if c.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"review_id": review.Id,
			"note_id":   review.NoteId,
			"title":     review.Title,
			"status":    string(review.Status),
			"user_id":   actorId,
			"author_id": review.CreatedBy,
			"reviewers": review.ReviewerIds,
		},
		OccurredAt: time.Now(),
	}
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		c.log.Warn("review", "failed to publish review event", map[string]interface{}{
			"review_id": review.Id,
			"type":      eventType,
			"error":     err.Error(),
		})
	}
}

// notifyReviewers emails each assigned reviewer. Reviewer ids double as
// addresses when they contain "@"; opaque ids are skipped.
func (c *reviewService) notifyReviewers(review *entity.Review) {
	if c.emailService == nil {
		return
	}
	for _, reviewerId := range review.ReviewerIds {
		if !looksLikeEmail(reviewerId) {
			continue
		}
		go func(addr string) {
			if err := c.emailService.SendReviewRequested(addr, review.Title, review.Id.String()); err != nil {
				c.log.Warn("review", "reviewer email failed", map[string]interface{}{
					"review_id": review.Id,
					"error":     err.Error(),
				})
			}
		}(reviewerId)
	}
}

func (c *reviewService) notifyMerged(review *entity.Review) {
	if c.emailService == nil || !looksLikeEmail(review.CreatedBy) {
		return
	}
	go func() {
		if err := c.emailService.SendReviewMerged(review.CreatedBy, review.Title); err != nil {
			c.log.Warn("review", "merge email failed", map[string]interface{}{
				"review_id": review.Id,
				"error":     err.Error(),
			})
		}
	}()
}

func looksLikeEmail(s string) bool {
	for i := 1; i < len(s)-1; i++ {
		if s[i] == '@' {
			return true
		}
	}
	return false
}

// dedupeReviewers normalizes the assignment list, dropping blanks, dupes
// and the review author.
func dedupeReviewers(ids []string, author string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || id == author {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toReviewPayload(r *entity.Review) *dto.ReviewPayload {
	return &dto.ReviewPayload{
		Id:                  r.Id,
		NoteId:              r.NoteId,
		Kind:                string(r.Kind),
		Status:              string(r.Status),
		Title:               r.Title,
		Description:         r.Description,
		DraftVersionId:      r.DraftVersionId,
		MergeVersionId:      r.MergeVersionId,
		CreatedBy:           r.CreatedBy,
		ReviewerIds:         r.ReviewerIds,
		ApprovalsCount:      r.ApprovalsCount,
		ChangeRequestsCount: r.ChangeRequestsCount,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}
