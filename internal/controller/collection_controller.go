package controller

import (
	"mindcare-rag-be/internal/dto"
	"mindcare-rag-be/internal/pkg/serverutils"
	"mindcare-rag-be/pkg/vectorstore"

	"github.com/gofiber/fiber/v2"
)

type ICollectionController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
}

type collectionController struct {
	store vectorstore.Store
	names []string
}

// NewCollectionController reports passage counts for names, in order.
func NewCollectionController(store vectorstore.Store, names []string) ICollectionController {
	return &collectionController{store: store, names: names}
}

func (c *collectionController) RegisterRoutes(r fiber.Router) {
	r.Get("/collections", c.GetAll)
}

func (c *collectionController) GetAll(ctx *fiber.Ctx) error {
	res := make([]dto.CollectionCountResponse, 0, len(c.names))
	for _, name := range c.names {
		res = append(res, dto.CollectionCountResponse{
			Name:  name,
			Count: c.store.Count(ctx.UserContext(), name),
		})
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get collections", res))
}
