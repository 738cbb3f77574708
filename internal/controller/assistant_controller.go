package controller

import (
	"voicepad-be/internal/dto"
	"voicepad-be/internal/pkg/serverutils"
	"voicepad-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Command(ctx *fiber.Ctx) error
	Activate(ctx *fiber.Ctx) error
	Deactivate(ctx *fiber.Ctx) error
	Pending(ctx *fiber.Ctx) error
	State(ctx *fiber.Ctx) error
}

type assistantController struct {
	assistantService service.IAssistantService
}

func NewAssistantController(assistantService service.IAssistantService) IAssistantController {
	return &assistantController{
		assistantService: assistantService,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Post("command", c.Command)
	h.Post(":session/activate", c.Activate)
	h.Post(":session/deactivate", c.Deactivate)
	h.Get(":session/pending", c.Pending)
	h.Get(":session/state", c.State)
}

func (c *assistantController) Command(ctx *fiber.Ctx) error {
	var req dto.VoiceCommandRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.Command(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Command processed", res))
}

func (c *assistantController) Activate(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("session")
	res := c.assistantService.Activate(sessionID, ctx.Query("path", "/"))
	return ctx.JSON(serverutils.SuccessResponse("Assistant activated", res))
}

func (c *assistantController) Deactivate(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("session")
	c.assistantService.Deactivate(sessionID)
	return ctx.JSON(serverutils.SuccessResponse("Assistant deactivated", nil))
}

func (c *assistantController) Pending(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("session")
	res := c.assistantService.Pending(sessionID)
	return ctx.JSON(serverutils.SuccessResponse("Pending dialog", res))
}

func (c *assistantController) State(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("session")
	res := c.assistantService.State(sessionID)
	return ctx.JSON(serverutils.SuccessResponse("Session state", res))
}
