package controller

import (
	"voicepad-be/internal/dto"
	"voicepad-be/internal/pkg/ratelimit"
	"voicepad-be/internal/pkg/serverutils"
	"voicepad-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAiController interface {
	RegisterRoutes(r fiber.Router)
	ParseTask(ctx *fiber.Ctx) error
	ParseNote(ctx *fiber.Ctx) error
	SuggestDueDate(ctx *fiber.Ctx) error
	SummarizeNote(ctx *fiber.Ctx) error
	RewriteNote(ctx *fiber.Ctx) error
	BulkAction(ctx *fiber.Ctx) error
	SearchSuggestions(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type aiController struct {
	aiService service.IAiService
	limiter   *ratelimit.Limiter
}

func NewAiController(aiService service.IAiService, limiter *ratelimit.Limiter) IAiController {
	return &aiController{
		aiService: aiService,
		limiter:   limiter,
	}
}

func (c *aiController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ai/v1")
	if c.limiter != nil {
		h.Use(c.limiter.Middleware())
	}
	h.Post("parse-task", c.ParseTask)
	h.Post("parse-note", c.ParseNote)
	h.Post("suggest-due-date", c.SuggestDueDate)
	h.Post("summarize-note", c.SummarizeNote)
	h.Post("rewrite-note", c.RewriteNote)
	h.Post("bulk-action", c.BulkAction)
	h.Post("search-suggestions", c.SearchSuggestions)
	h.Get("status", c.Status)
}

func (c *aiController) ParseTask(ctx *fiber.Ctx) error {
	var req dto.ParseTaskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.aiService.ParseTask(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Task parsed", res))
}

func (c *aiController) ParseNote(ctx *fiber.Ctx) error {
	var req dto.ParseNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.aiService.ParseNote(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Note parsed", res))
}

func (c *aiController) SuggestDueDate(ctx *fiber.Ctx) error {
	var req dto.SuggestDueDateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.aiService.SuggestDueDate(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Due date suggested", res))
}

func (c *aiController) SummarizeNote(ctx *fiber.Ctx) error {
	var req dto.SummarizeNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.aiService.SummarizeNote(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Note summarized", res))
}

func (c *aiController) RewriteNote(ctx *fiber.Ctx) error {
	var req dto.RewriteNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.aiService.RewriteNote(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Note rewritten", res))
}

func (c *aiController) BulkAction(ctx *fiber.Ctx) error {
	var req dto.BulkActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.aiService.BulkAction(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Bulk actions interpreted", res))
}

func (c *aiController) SearchSuggestions(ctx *fiber.Ctx) error {
	var req dto.SearchSuggestionsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.aiService.SearchSuggestions(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Search suggestions", res))
}

func (c *aiController) Status(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("AI status", c.aiService.Status(ctx.Context())))
}
