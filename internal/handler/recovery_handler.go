package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/middleware"
	"github.com/mansoorceksport/fitcoach/internal/service"
)

type RecoveryHandler struct {
	recoveryService *service.RecoveryService
}

func NewRecoveryHandler(recoveryService *service.RecoveryService) *RecoveryHandler {
	return &RecoveryHandler{recoveryService: recoveryService}
}

// checkinRequest accepts the day as "date" or "log_date"
type checkinRequest struct {
	domain.RecoveryCheckin
	Date    string `json:"date"`
	LogDate string `json:"log_date"`
}

// Checkin handles POST /api/v1/recovery/checkin
func (h *RecoveryHandler) Checkin(c *fiber.Ctx) error {
	var req checkinRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	in := req.RecoveryCheckin
	raw := req.Date
	if raw == "" {
		raw = req.LogDate
	}
	if raw != "" {
		day, err := parseDay(raw)
		if err != nil {
			return badRequest(c, "date must be YYYY-MM-DD")
		}
		in.Date = &day
	}

	log, err := h.recoveryService.Checkin(c.UserContext(), middleware.GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(log)
}

func (h *RecoveryHandler) ListLogs(c *fiber.Ctx) error {
	logs, err := h.recoveryService.ListLogs(c.UserContext(), middleware.GetUserID(c), queryInt(c, "limit", 30))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(logs)
}

func (h *RecoveryHandler) Recommendations(c *fiber.Ctx) error {
	rec, err := h.recoveryService.Recommendations(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}
