package controller

import (
	"ipad-assistant-be/internal/pkg/serverutils"
	"ipad-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICatalogController interface {
	RegisterRoutes(r fiber.Router)
	GetModels(ctx *fiber.Ctx) error
	GetPricing(ctx *fiber.Ctx) error
}

type catalogController struct {
	catalogService service.ICatalogService
}

func NewCatalogController(catalogService service.ICatalogService) ICatalogController {
	return &catalogController{catalogService: catalogService}
}

func (c *catalogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ipad")
	h.Get("/models", c.GetModels)
	h.Get("/pricing", c.GetPricing)
}

func (c *catalogController) GetModels(ctx *fiber.Ctx) error {
	res, err := c.catalogService.GetCurrentModels(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get iPad models", res))
}

func (c *catalogController) GetPricing(ctx *fiber.Ctx) error {
	res, err := c.catalogService.GetPricingInfo(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get iPad pricing", res))
}
