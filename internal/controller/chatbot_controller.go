package controller

import (
	"ipad-assistant-be/internal/dto"
	"ipad-assistant-be/internal/pkg/serverutils"
	"ipad-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Classify(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
}

type chatbotController struct {
	chatbotService service.IChatbotService
}

func NewChatbotController(chatbotService service.IChatbotService) IChatbotController {
	return &chatbotController{chatbotService: chatbotService}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.Chat)
	r.Post("/classify", c.Classify)

	h := r.Group("/session")
	h.Post("/create", c.CreateSession)
	h.Get("/:id", c.GetSession)
	h.Delete("/:id", c.DeleteSession)

	r.Get("/sessions", c.ListSessions)
}

func (c *chatbotController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatbotService.Chat(ctx.UserContext(), &req, service.TransportHTTP)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

func (c *chatbotController) Classify(ctx *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatbotService.Classify(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success classify query", res))
}

func (c *chatbotController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	// An empty body is allowed.
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return serverutils.ErrBadRequest
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			return err
		}
	}

	res, err := c.chatbotService.CreateSession(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *chatbotController) GetSession(ctx *fiber.Ctx) error {
	res, err := c.chatbotService.GetSession(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *chatbotController) DeleteSession(ctx *fiber.Ctx) error {
	if err := c.chatbotService.DeleteSession(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func (c *chatbotController) ListSessions(ctx *fiber.Ctx) error {
	res, err := c.chatbotService.ListSessions(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all sessions", res))
}
