package controller

import (
	"saraswati-be/internal/apperror"
	"saraswati-be/internal/dto"
	"saraswati-be/internal/pkg/serverutils"
	"saraswati-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	SaveDraft(ctx *fiber.Ctx) error
	DiscardDraft(ctx *fiber.Ctx) error
	Vote(ctx *fiber.Ctx) error
	Archive(ctx *fiber.Ctx) error
	ListDrafts(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService service.INoteService
}

func NewNoteController(noteService service.INoteService) INoteController {
	return &noteController{
		noteService: noteService,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/note/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("drafts", c.ListDrafts)
	h.Get("stats", c.Stats)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Get(":id/history", c.History)
	h.Put(":id/draft", c.SaveDraft)
	h.Delete(":id/draft", c.DiscardDraft)
	h.Post(":id/vote", c.Vote)
	h.Put(":id/archive", c.Archive)
}

func userIdFromCtx(ctx *fiber.Ctx) (string, error) {
	userId, ok := ctx.Locals("user_id").(string)
	if !ok || userId == "" {
		return "", apperror.NotAuthorized("missing user identity")
	}
	return userId, nil
}

func noteIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid note id")
	}
	return id, nil
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	userId, err := userIdFromCtx(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("malformed request body")
	}
	req.AuthorId = userId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create note", res))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	id, err := noteIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *noteController) History(ctx *fiber.Ctx) error {
	id, err := noteIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.History(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note history", res))
}

func (c *noteController) SaveDraft(ctx *fiber.Ctx) error {
	userId, err := userIdFromCtx(ctx)
	if err != nil {
		return err
	}
	id, err := noteIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.SaveDraftRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("malformed request body")
	}
	req.NoteId = id
	req.UserId = userId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.SaveDraft(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success save draft", res))
}

func (c *noteController) DiscardDraft(ctx *fiber.Ctx) error {
	userId, err := userIdFromCtx(ctx)
	if err != nil {
		return err
	}
	id, err := noteIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.noteService.DiscardDraft(ctx.Context(), id, userId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success discard draft", nil))
}

func (c *noteController) Vote(ctx *fiber.Ctx) error {
	userId, err := userIdFromCtx(ctx)
	if err != nil {
		return err
	}
	id, err := noteIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.VoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("malformed request body")
	}
	req.NoteId = id
	req.UserId = userId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Vote(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success vote note", res))
}

func (c *noteController) Archive(ctx *fiber.Ctx) error {
	userId, err := userIdFromCtx(ctx)
	if err != nil {
		return err
	}
	id, err := noteIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.ArchiveNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("malformed request body")
	}
	req.NoteId = id
	req.UserId = userId

	if err := c.noteService.Archive(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update archive flag", nil))
}

func (c *noteController) ListDrafts(ctx *fiber.Ctx) error {
	userId, err := userIdFromCtx(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.ListDrafts(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list drafts", res))
}

func (c *noteController) Stats(ctx *fiber.Ctx) error {
	res, err := c.noteService.Stats(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show workflow stats", res))
}
