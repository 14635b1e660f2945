package handlers

import (
	"github.com/avjpriceboard/priceboard-backend/services"
	"github.com/gofiber/fiber/v2"
)

type RatesHandler struct {
	boardService *services.BoardService
}

func NewRatesHandler(boardService *services.BoardService) *RatesHandler {
	return &RatesHandler{boardService: boardService}
}

// GetRates returns the exchange-rate table payload
func (h *RatesHandler) GetRates(c *fiber.Ctx) error {
	return c.JSON(h.boardService.RatesPayload())
}
