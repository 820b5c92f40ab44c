package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/sirupsen/logrus"
)

const dayLayout = "2006-01-02"

// writeError maps domain errors onto HTTP statuses with a {code, message} body
func writeError(c *fiber.Ctx, err error) error {
	var incomplete *domain.ProfileIncompleteError
	if errors.As(err, &incomplete) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"code":           "INCOMPLETE_PROFILE",
			"message":        incomplete.Error(),
			"missing_fields": incomplete.Missing,
		})
	}

	var budget *domain.TokenBudgetError
	if errors.As(err, &budget) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"code":    "TOKEN_BUDGET_EXCEEDED",
			"message": budget.Error(),
			"used":    budget.Used,
			"limit":   budget.Limit,
		})
	}

	status, code := fiber.StatusInternalServerError, "INTERNAL_ERROR"
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrExerciseNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrDuplicateExercise):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrInvalidRefreshToken):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrTokenBudgetExceeded):
		status, code = fiber.StatusTooManyRequests, "TOKEN_BUDGET_EXCEEDED"
	case errors.Is(err, domain.ErrLockNotAcquired):
		status, code = fiber.StatusServiceUnavailable, "BUSY"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "INVALID_INPUT"
	}

	if status == fiber.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("request failed")
		return c.Status(status).JSON(fiber.Map{"code": code, "message": "internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"code": code, "message": err.Error()})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_INPUT", "message": message})
}

// parseDay accepts a plain date or an RFC3339 timestamp and truncates to the UTC day
func parseDay(raw string) (time.Time, error) {
	if t, err := time.Parse(dayLayout, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// parseInstant keeps the time of an RFC3339 value and reads plain dates as UTC midnight
func parseInstant(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(dayLayout, raw)
}

// dayParam reads :date from the path, "today" meaning the current UTC day
func dayParam(c *fiber.Ctx) (time.Time, error) {
	raw := strings.TrimSpace(c.Params("date"))
	if raw == "" || raw == "today" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return parseDay(raw)
}

// queryInt returns def when the parameter is missing, malformed or not positive
func queryInt(c *fiber.Ctx, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
