package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// GetBoard serves the display board page
func (h *PageHandler) GetBoard(c *fiber.Ctx) error {
	return c.SendFile("./static/index.html")
}
