package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"saraswati-be/internal/apperror"
	"saraswati-be/internal/dto"
	"saraswati-be/internal/entity"
	"saraswati-be/internal/pkg/locker"
	"saraswati-be/internal/pkg/logger"
	"saraswati-be/internal/repository/specification"
	"saraswati-be/internal/repository/unitofwork"
	"saraswati-be/pkg/events"
	pktNats "saraswati-be/pkg/nats"

	"github.com/google/uuid"
)

type INoteService interface {
	Create(ctx context.Context, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	SaveDraft(ctx context.Context, req *dto.SaveDraftRequest) (*dto.SaveDraftResponse, error)
	DiscardDraft(ctx context.Context, noteId uuid.UUID, userId string) error
	Show(ctx context.Context, noteId uuid.UUID) (*dto.ShowNoteResponse, error)
	History(ctx context.Context, noteId uuid.UUID) (*dto.NoteHistoryResponse, error)
	Vote(ctx context.Context, req *dto.VoteRequest) (*dto.VoteResponse, error)
	Archive(ctx context.Context, req *dto.ArchiveNoteRequest) error
	ListDrafts(ctx context.Context, userId string) (*dto.ListDraftsResponse, error)
	Stats(ctx context.Context) (*dto.WorkflowStatsResponse, error)
}

type noteService struct {
	uowFactory     unitofwork.RepositoryFactory
	noteLocker     *locker.NoteLocker
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	noteLocker *locker.NoteLocker,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory:     uowFactory,
		noteLocker:     noteLocker,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (c *noteService) Create(ctx context.Context, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Body) == "" {
		return nil, apperror.Validation("title and content are required")
	}
	tags := entity.NormalizeTags(req.Tags)
	if len(tags) == 0 {
		return nil, apperror.Validation("at least one tag is required")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	now := time.Now()
	note := entity.Note{
		Id:        uuid.New(),
		Title:     req.Title,
		CreatedBy: req.AuthorId,
		CreatedAt: now,
	}
	version := entity.NoteVersion{
		Id:           uuid.New(),
		NoteId:       note.Id,
		VersionIndex: 0,
		Title:        req.Title,
		Content:      req.Body,
		Tags:         tags,
		State:        entity.VersionStateDraft,
		CreatedBy:    req.AuthorId,
		CreatedAt:    now,
	}
	note.DraftVersionId = &version.Id

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.FromStorage(err)
	}
	defer uow.Rollback()

	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if err := uow.NoteVersionRepository().Create(ctx, &version); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.FromStorage(err)
	}

	c.log.Info("note", "note created", map[string]interface{}{
		"note_id": note.Id,
		"author":  req.AuthorId,
	})

	// Notification is auxiliary; a publish failure never fails the request.
	if c.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.TypeNoteCreated,
			Data: map[string]interface{}{
				"note_id": note.Id,
				"title":   note.Title,
				"user_id": req.AuthorId,
			},
			OccurredAt: now,
		}
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			c.log.Warn("note", "failed to publish note created event", map[string]interface{}{
				"note_id": note.Id,
				"error":   err.Error(),
			})
		}
	}

	return &dto.CreateNoteResponse{
		Id:             note.Id,
		DraftVersionId: version.Id,
		State:          string(entity.NoteLifecycleDraft),
	}, nil
}

// SaveDraft writes content into the note's single draft slot, creating a
// new version when the slot is empty. Content of submitted versions only
// changes after the review has asked for changes, which pulls the version
// back into the draft state first.
func (c *noteService) SaveDraft(ctx context.Context, req *dto.SaveDraftRequest) (*dto.SaveDraftResponse, error) {
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
	if note.Archived {
		return nil, apperror.PreconditionFailed("note is archived")
	}

	now := time.Now()

	// Empty slot: open a new version on top of the approved baseline.
	if note.DraftVersionId == nil {
		nextIndex, err := uow.NoteVersionRepository().NextVersionIndex(ctx, note.Id)
		if err != nil {
			return nil, apperror.FromStorage(err)
		}
		version := entity.NoteVersion{
			Id:           uuid.New(),
			NoteId:       note.Id,
			VersionIndex: nextIndex,
			Title:        req.Title,
			Content:      req.Body,
			Tags:         entity.NormalizeTags(req.Tags),
			State:        entity.VersionStateDraft,
			CreatedBy:    req.UserId,
			CreatedAt:    now,
		}
		note.DraftVersionId = &version.Id
		note.UpdatedAt = &now

		if err := uow.Begin(ctx); err != nil {
			return nil, apperror.FromStorage(err)
		}
		defer uow.Rollback()

		if err := uow.NoteVersionRepository().Create(ctx, &version); err != nil {
			return nil, apperror.FromStorage(err)
		}
		if err := uow.NoteRepository().Update(ctx, note); err != nil {
			return nil, apperror.FromStorage(err)
		}
		if err := uow.Commit(); err != nil {
			return nil, apperror.FromStorage(err)
		}

		return &dto.SaveDraftResponse{
			NoteId:         note.Id,
			DraftVersionId: version.Id,
			State:          string(entity.NoteLifecycleDraft),
		}, nil
	}

	draft, err := uow.NoteVersionRepository().FindOne(ctx, specification.ByID{ID: *note.DraftVersionId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if draft == nil {
		return nil, apperror.StorageUnavailable(fmt.Errorf("draft slot points at missing version %s", note.DraftVersionId))
	}
	if draft.CreatedBy != req.UserId {
		return nil, apperror.Conflict("draft slot is held by another author")
	}

	state := string(entity.NoteLifecycleDraft)

	if !draft.Editable() {
		// A submitted version stays frozen unless its review explicitly
		// asked for changes.
		review, err := uow.ReviewRepository().FindOne(ctx,
			specification.ByDraftVersionID{VersionID: draft.Id},
			specification.ByStatuses{Statuses: []string{
				string(entity.ReviewStatusOpen),
				string(entity.ReviewStatusChangesRequested),
			}},
		)
		if err != nil {
			return nil, apperror.FromStorage(err)
		}
		if review == nil || review.Status != entity.ReviewStatusChangesRequested {
			return nil, apperror.PreconditionFailed("version content is frozen while under review")
		}
		// Unfreeze first; the repository only accepts content changes on
		// rows already stored in the draft state.
		draft.State = entity.VersionStateDraft
		draft.UpdatedAt = &now
		if err := uow.NoteVersionRepository().Update(ctx, draft); err != nil {
			return nil, apperror.FromStorage(err)
		}
	}

	draft.Title = req.Title
	draft.Content = req.Body
	draft.Tags = entity.NormalizeTags(req.Tags)
	draft.UpdatedAt = &now

	if err := uow.NoteVersionRepository().Update(ctx, draft); err != nil {
		return nil, apperror.FromStorage(err)
	}

	return &dto.SaveDraftResponse{
		NoteId:         note.Id,
		DraftVersionId: draft.Id,
		State:          state,
	}, nil
}

// DiscardDraft drops an unsubmitted draft and frees the slot. Drafts under
// review are discarded by closing the review instead.
func (c *noteService) DiscardDraft(ctx context.Context, noteId uuid.UUID, userId string) error {
	release := c.noteLocker.Acquire(noteId)
	defer release()

	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteId})
	if err != nil {
		return apperror.FromStorage(err)
	}
	if note == nil {
		return apperror.NotFound("note not found")
	}
	if note.DraftVersionId == nil {
		return apperror.PreconditionFailed("note has no draft")
	}

	draft, err := uow.NoteVersionRepository().FindOne(ctx, specification.ByID{ID: *note.DraftVersionId})
	if err != nil {
		return apperror.FromStorage(err)
	}
	if draft != nil && !draft.Editable() {
		return apperror.PreconditionFailed("draft is under review; close the review to discard it")
	}
	if draft != nil && draft.CreatedBy != userId && note.CreatedBy != userId {
		return apperror.NotAuthorized("only the draft author or note owner may discard it")
	}

	draftId := *note.DraftVersionId
	note.DraftVersionId = nil
	now := time.Now()
	note.UpdatedAt = &now

	if err := uow.Begin(ctx); err != nil {
		return apperror.FromStorage(err)
	}
	defer uow.Rollback()

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return apperror.FromStorage(err)
	}
	if err := uow.NoteVersionRepository().Delete(ctx, draftId); err != nil {
		return apperror.FromStorage(err)
	}
	if err := uow.Commit(); err != nil {
		return apperror.FromStorage(err)
	}

	return nil
}

func (c *noteService) Show(ctx context.Context, noteId uuid.UUID) (*dto.ShowNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if note == nil {
		return nil, apperror.NotFound("note not found")
	}

	var approved, draft *entity.NoteVersion
	if note.ApprovedVersionId != nil {
		approved, err = uow.NoteVersionRepository().FindOne(ctx, specification.ByID{ID: *note.ApprovedVersionId})
		if err != nil {
			return nil, apperror.FromStorage(err)
		}
	}
	if note.DraftVersionId != nil {
		draft, err = uow.NoteVersionRepository().FindOne(ctx, specification.ByID{ID: *note.DraftVersionId})
		if err != nil {
			return nil, apperror.FromStorage(err)
		}
	}

	res := dto.ShowNoteResponse{
		Id:          note.Id,
		State:       string(note.LifecycleState(draft)),
		Archived:    note.Archived,
		Deleted:     note.IsDeleted(),
		Upvotes:     note.Upvotes,
		Downvotes:   note.Downvotes,
		CreatedBy:   note.CreatedBy,
		CommittedBy: note.CommittedBy,
		CreatedAt:   note.CreatedAt,
		UpdatedAt:   note.UpdatedAt,
	}
	if approved != nil {
		res.ApprovedVersion = toVersionPayload(approved)
	}
	if draft != nil {
		res.DraftVersion = toVersionPayload(draft)
	}
	return &res, nil
}

// History returns every version of the note in ledger order, oldest first.
func (c *noteService) History(ctx context.Context, noteId uuid.UUID) (*dto.NoteHistoryResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteId})
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if note == nil {
		return nil, apperror.NotFound("note not found")
	}

	versions, err := uow.NoteVersionRepository().FindAll(ctx,
		specification.ByNoteID{NoteID: noteId},
		specification.OrderByVersionIndex{},
	)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}

	res := dto.NoteHistoryResponse{
		NoteId:   noteId,
		Versions: make([]dto.VersionPayload, 0, len(versions)),
	}
	for _, v := range versions {
		res.Versions = append(res.Versions, *toVersionPayload(v))
	}
	return &res, nil
}

func (c *noteService) Vote(ctx context.Context, req *dto.VoteRequest) (*dto.VoteResponse, error) {
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

	upDelta, downDelta := 0, 0
	if req.Direction == "up" {
		upDelta = 1
	} else {
		downDelta = 1
	}

	updated, err := uow.NoteRepository().IncrementVotes(ctx, req.NoteId, upDelta, downDelta)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}

	return &dto.VoteResponse{
		NoteId:    updated.Id,
		Upvotes:   updated.Upvotes,
		Downvotes: updated.Downvotes,
	}, nil
}

func (c *noteService) Archive(ctx context.Context, req *dto.ArchiveNoteRequest) error {
	release := c.noteLocker.Acquire(req.NoteId)
	defer release()

	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: req.NoteId})
	if err != nil {
		return apperror.FromStorage(err)
	}
	if note == nil {
		return apperror.NotFound("note not found")
	}
	if note.IsDeleted() {
		return apperror.PreconditionFailed("note is deleted")
	}
	if req.Archived && note.ApprovedVersionId == nil {
		return apperror.PreconditionFailed("only approved notes can be archived")
	}
	if note.Archived == req.Archived {
		return nil
	}

	now := time.Now()
	note.Archived = req.Archived
	note.UpdatedAt = &now
	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return apperror.FromStorage(err)
	}
	return nil
}

// ListDrafts returns the caller's open drafts across all notes.
func (c *noteService) ListDrafts(ctx context.Context, userId string) (*dto.ListDraftsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	versions, err := uow.NoteVersionRepository().FindAll(ctx,
		specification.Filter("created_by", userId),
		specification.InStates{States: []string{
			string(entity.VersionStateDraft),
			string(entity.VersionStateNeedsReview),
		}},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}

	res := dto.ListDraftsResponse{Drafts: make([]dto.DraftSummary, 0, len(versions))}
	for _, v := range versions {
		note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: v.NoteId})
		if err != nil {
			return nil, apperror.FromStorage(err)
		}
		// Only versions still occupying the draft slot count as drafts.
		if note == nil || note.DraftVersionId == nil || *note.DraftVersionId != v.Id {
			continue
		}
		updatedAt := v.CreatedAt
		if v.UpdatedAt != nil {
			updatedAt = *v.UpdatedAt
		}
		res.Drafts = append(res.Drafts, dto.DraftSummary{
			NoteId:         v.NoteId,
			DraftVersionId: v.Id,
			Title:          v.Title,
			VersionIndex:   v.VersionIndex,
			NoteState:      string(note.LifecycleState(v)),
			UpdatedAt:      updatedAt,
		})
	}
	return &res, nil
}

func (c *noteService) Stats(ctx context.Context) (*dto.WorkflowStatsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	var res dto.WorkflowStatsResponse
	var err error

	if res.TotalNotes, err = uow.NoteRepository().Count(ctx); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if res.ApprovedNotes, err = uow.NoteRepository().Count(ctx,
		specification.NotDeleted{},
		specification.HasApprovedVersion{},
	); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if res.DeletedNotes, err = uow.NoteRepository().Count(ctx, specification.OnlyDeleted{}); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if res.ArchivedNotes, err = uow.NoteRepository().Count(ctx, specification.Filter("archived", true)); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if res.OpenReviews, err = uow.ReviewRepository().Count(ctx, specification.ByStatuses{Statuses: []string{
		string(entity.ReviewStatusOpen),
		string(entity.ReviewStatusChangesRequested),
	}}); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if res.MergedReviews, err = uow.ReviewRepository().Count(ctx, specification.ByStatuses{Statuses: []string{
		string(entity.ReviewStatusMerged),
	}}); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if res.TotalVersions, err = uow.NoteVersionRepository().Count(ctx); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if res.TotalDecisions, err = uow.ReviewDecisionRepository().Count(ctx); err != nil {
		return nil, apperror.FromStorage(err)
	}
	return &res, nil
}

func toVersionPayload(v *entity.NoteVersion) *dto.VersionPayload {
	return &dto.VersionPayload{
		Id:            v.Id,
		NoteId:        v.NoteId,
		VersionIndex:  v.VersionIndex,
		Title:         v.Title,
		Body:          v.Content,
		Tags:          v.Tags,
		State:         string(v.State),
		CreatedBy:     v.CreatedBy,
		SubmittedBy:   v.SubmittedBy,
		ReviewedBy:    v.ReviewedBy,
		ReviewComment: v.ReviewComment,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}
