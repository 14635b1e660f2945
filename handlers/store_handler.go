package handlers

import (
	"github.com/avjpriceboard/priceboard-backend/models"
	"github.com/avjpriceboard/priceboard-backend/services"
	"github.com/avjpriceboard/priceboard-backend/shared"
	"github.com/gofiber/fiber/v2"
)

type StoreHandler struct {
	overrideService *services.OverrideService
	adminToken      string
}

func NewStoreHandler(overrideService *services.OverrideService, adminToken string) *StoreHandler {
	return &StoreHandler{
		overrideService: overrideService,
		adminToken:      adminToken,
	}
}

// GetStore returns the current overrides plus the recent change log
func (h *StoreHandler) GetStore(c *fiber.Ctx) error {
	return c.JSON(&models.StorePayload{
		Status:    shared.StatusOK,
		Overrides: h.overrideService.Snapshot(),
		Changes:   h.overrideService.Changes(),
	})
}

// SetOverrides applies a batch of value overrides. The request must carry
// the configured admin token in X-Admin-Token; when no token is configured
// the endpoint is disabled. The batch applies all-or-nothing.
func (h *StoreHandler) SetOverrides(c *fiber.Ctx) error {
	token := c.Get("X-Admin-Token")
	if h.adminToken == "" || token != h.adminToken {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "UNAUTHORIZED",
			"error":  "missing or invalid admin token",
		})
	}

	updates := make(map[string]string)
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "BAD REQUEST",
			"error":  "body must be a flat JSON object of string values",
		})
	}

	result, err := h.overrideService.Apply(updates)
	if err != nil {
		if shared.GetCategory(err) == shared.ErrorCategoryValidation {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status": "BAD REQUEST",
				"error":  err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "STORE ERROR",
			"error":  "failed to persist overrides",
		})
	}

	return c.JSON(result)
}
