package handlers

import (
	"github.com/avjpriceboard/priceboard-backend/services"
	"github.com/gofiber/fiber/v2"
)

type ValuesHandler struct {
	boardService *services.BoardService
}

func NewValuesHandler(boardService *services.BoardService) *ValuesHandler {
	return &ValuesHandler{boardService: boardService}
}

// GetValues returns the rendered board payload. The HTTP status is always
// 200; upstream failures surface through the status field in the body.
func (h *ValuesHandler) GetValues(c *fiber.Ctx) error {
	return c.JSON(h.boardService.ValuesPayload())
}
