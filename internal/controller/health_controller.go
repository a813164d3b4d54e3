package controller

import (
	"mindcare-rag-be/internal/constant"
	"mindcare-rag-be/internal/dto"
	"mindcare-rag-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct{}

func NewHealthController() IHealthController {
	return &healthController{}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Mental Health Support API", dto.HealthResponse{
		Message:    "Mental Health Support API",
		Status:     "running",
		Disclaimer: constant.Disclaimer,
	}))
}
