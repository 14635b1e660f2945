package handlers

import (
	"github.com/avjpriceboard/priceboard-backend/services"
	"github.com/gofiber/fiber/v2"
)

type DiscountsHandler struct {
	boardService *services.BoardService
}

func NewDiscountsHandler(boardService *services.BoardService) *DiscountsHandler {
	return &DiscountsHandler{boardService: boardService}
}

// GetDiscounts returns the discount rows for one section. Section names
// match case-insensitively; an unknown name reports INVALID SECTION in the
// body with HTTP 200.
func (h *DiscountsHandler) GetDiscounts(c *fiber.Ctx) error {
	return c.JSON(h.boardService.DiscountsPayload(c.Params("section")))
}
