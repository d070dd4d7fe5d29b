package controller

import (
	"ipad-assistant-be/internal/dto"
	"ipad-assistant-be/internal/pkg/serverutils"
	"ipad-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type healthController struct {
	chatbotService service.IChatbotService
}

func NewHealthController(chatbotService service.IChatbotService) IHealthController {
	return &healthController{chatbotService: chatbotService}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
	r.Get("/stats", c.Stats)
}

// Health answers 503 with the full report when the agent never came up.
func (c *healthController) Health(ctx *fiber.Ctx) error {
	res := c.chatbotService.Health(ctx.UserContext())
	if res.AgentStatus == dto.AgentNotInitialized {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.BaseResponse[*dto.HealthResponse]{
			Success: false,
			Code:    fiber.StatusServiceUnavailable,
			Message: "Agent not initialized",
			Data:    res,
		})
	}

	return ctx.JSON(serverutils.SuccessResponse("iPad assistant API is running", res))
}

func (c *healthController) Stats(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get usage stats", c.chatbotService.Stats(ctx.UserContext())))
}
