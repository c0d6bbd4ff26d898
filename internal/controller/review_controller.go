package controller

import (
	"strings"

	"saraswati-be/internal/apperror"
	"saraswati-be/internal/dto"
	"saraswati-be/internal/pkg/serverutils"
	"saraswati-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IReviewController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	RequestDelete(ctx *fiber.Ctx) error
	RequestRestore(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Queue(ctx *fiber.Ctx) error
	Approve(ctx *fiber.Ctx) error
	RequestChanges(ctx *fiber.Ctx) error
	Comment(ctx *fiber.Ctx) error
	Merge(ctx *fiber.Ctx) error
	Close(ctx *fiber.Ctx) error
	Reopen(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
}

type reviewController struct {
	reviewService service.IReviewService
}

func NewReviewController(reviewService service.IReviewService) IReviewController {
	return &reviewController{
		reviewService: reviewService,
	}
}

func (c *reviewController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/review/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("queue", c.Queue)
	h.Get("", c.List)
	h.Post("note/:noteId", c.Submit)
	h.Post("note/:noteId/delete-request", c.RequestDelete)
	h.Post("note/:noteId/restore-request", c.RequestRestore)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Post(":id/approve", c.Approve)
	h.Post(":id/request-changes", c.RequestChanges)
	h.Post(":id/comment", c.Comment)
	h.Post(":id/merge", c.Merge)
	h.Post(":id/close", c.Close)
	h.Post(":id/reopen", c.Reopen)
}

func reviewIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid review id")
	}
	return id, nil
}

func (c *reviewController) Submit(ctx *fiber.Ctx) error {
	userId, err := userIdFromCtx(ctx)
	if err != nil {
		return err
	}
	noteId, err := uuid.Parse(ctx.Params("noteId"))
	if err != nil {
		return apperror.Validation("invalid note id")
	}

	var req dto.SubmitForReviewRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("malformed request body")
	}
	req.NoteId = noteId
	req.UserId = userId
	req.IdempotencyKey = ctx.Get("Idempotency-Key")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reviewService.Submit(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success submit for review", res))
}

func (c *reviewController) RequestDelete(ctx *fiber.Ctx) error {
	userId, err := userIdFromCtx(ctx)
	if err != nil {
		return err
	}
	noteId, err := uuid.Parse(ctx.Params("noteId"))
	if err != nil {
		return apperror.Validation("invalid note id")
	}

	var req dto.RequestDeleteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("malformed request body")
	}
	req.NoteId = noteId
	req.UserId = userId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reviewService.RequestDelete(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success open delete review", res))
}

func (c *reviewController) RequestRestore(ctx *fiber.Ctx) error {
	userId, err := userIdFromCtx(ctx)
	if err != nil {
		return err
	}
	noteId, err := uuid.Parse(ctx.Params("noteId"))
	if err != nil {
		return apperror.Validation("invalid note id")
	}

	var req dto.RequestRestoreRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("malformed request body")
	}
	req.NoteId = noteId
	req.UserId = userId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reviewService.RequestRestore(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success open restore review", res))
}

func (c *reviewController) Show(ctx *fiber.Ctx) error {
	id, err := reviewIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.reviewService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show review", res))
}

func (c *reviewController) List(ctx *fiber.Ctx) error {
	query := dto.ListReviewsQuery{
		Page:    ctx.QueryInt("page", 1),
		PerPage: ctx.QueryInt("per_page", 20),
	}
	if noteIdStr := ctx.Query("note_id"); noteIdStr != "" {
		noteId, err := uuid.Parse(noteIdStr)
		if err != nil {
			return apperror.Validation("invalid note id")
		}
		query.NoteId = &noteId
	}
	if statuses := ctx.Query("status"); statuses != "" {
		query.Statuses = strings.Split(statuses, ",")
	}

	res, err := c.reviewService.List(ctx.Context(), &query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list reviews", res))
}

func (c *reviewController) Queue(ctx *fiber.Ctx) error {
	userId, err := userIdFromCtx(ctx)
	if err != nil {
		return err
	}

	res, err := c.reviewService.Queue(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list review queue", res))
}

func (c *reviewController) decideRequest(ctx *fiber.Ctx) (*dto.DecideRequest, error) {
	userId, err := userIdFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	id, err := reviewIdParam(ctx)
	if err != nil {
		return nil, err
	}

	var req dto.DecideRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return nil, apperror.Validation("malformed request body")
		}
	}
	req.ReviewId = id
	req.UserId = userId

	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *reviewController) Approve(ctx *fiber.Ctx) error {
	req, err := c.decideRequest(ctx)
	if err != nil {
		return err
	}

	res, err := c.reviewService.Approve(ctx.Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success approve review", res))
}

func (c *reviewController) RequestChanges(ctx *fiber.Ctx) error {
	req, err := c.decideRequest(ctx)
	if err != nil {
		return err
	}

	res, err := c.reviewService.RequestChanges(ctx.Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success request changes", res))
}

func (c *reviewController) Comment(ctx *fiber.Ctx) error {
	req, err := c.decideRequest(ctx)
	if err != nil {
		return err
	}

	res, err := c.reviewService.Comment(ctx.Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success comment on review", res))
}

func (c *reviewController) Merge(ctx *fiber.Ctx) error {
	userId, err := userIdFromCtx(ctx)
	if err != nil {
		return err
	}
	id, err := reviewIdParam(ctx)
	if err != nil {
		return err
	}

	req := dto.MergeReviewRequest{
		ReviewId:       id,
		UserId:         userId,
		IdempotencyKey: ctx.Get("Idempotency-Key"),
	}

	res, err := c.reviewService.Merge(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success merge review", res))
}

func (c *reviewController) Close(ctx *fiber.Ctx) error {
	userId, err := userIdFromCtx(ctx)
	if err != nil {
		return err
	}
	id, err := reviewIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.CloseReviewRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return apperror.Validation("malformed request body")
		}
	}
	req.ReviewId = id
	req.UserId = userId

	res, err := c.reviewService.Close(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success close review", res))
}

func (c *reviewController) Reopen(ctx *fiber.Ctx) error {
	userId, err := userIdFromCtx(ctx)
	if err != nil {
		return err
	}
	id, err := reviewIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.ReopenReviewRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return apperror.Validation("malformed request body")
		}
	}
	req.ReviewId = id
	req.UserId = userId

	res, err := c.reviewService.Reopen(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reopen review", res))
}

func (c *reviewController) Update(ctx *fiber.Ctx) error {
	userId, err := userIdFromCtx(ctx)
	if err != nil {
		return err
	}
	id, err := reviewIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateReviewRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("malformed request body")
	}
	req.ReviewId = id
	req.UserId = userId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reviewService.Update(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update review", res))
}
