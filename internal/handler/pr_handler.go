package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/middleware"
	"github.com/mansoorceksport/fitcoach/internal/service"
)

type PRHandler struct {
	prService *service.PRService
}

func NewPRHandler(prService *service.PRService) *PRHandler {
	return &PRHandler{prService: prService}
}

// List handles GET /api/v1/personal-records
func (h *PRHandler) List(c *fiber.Ctx) error {
	records, err := h.prService.ListPRs(c.UserContext(), middleware.GetUserID(c), queryInt(c, "limit", 50))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(records)
}

func (h *PRHandler) PendingCelebrations(c *fiber.Ctx) error {
	records, err := h.prService.PendingCelebrations(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(records)
}

func (h *PRHandler) Celebrate(c *fiber.Ctx) error {
	if err := h.prService.MarkCelebrated(c.UserContext(), middleware.GetUserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
