package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/middleware"
	"github.com/mansoorceksport/fitcoach/internal/service"
	"github.com/mansoorceksport/fitcoach/internal/telemetry"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const streamTimeout = 3 * time.Minute

// AIHandler serves the coaching endpoints. Plans are streamed as Server-Sent Events.
type AIHandler struct {
	aiService *service.AIService
}

func NewAIHandler(aiService *service.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

type sseFrame struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeFrame(w *bufio.Writer, frame sseFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

// stream writes the generation as content frames followed by done or error.
// The budget has already been reserved, so failures are reported in-band.
func (h *AIHandler) stream(c *fiber.Ctx, kind string, run service.StreamFunc) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	userID := middleware.GetUserID(c)
	// The request span ends before the body is written
	telemetry.AddSpanEvent(c, "ai.stream.started", attribute.String("kind", kind))

	// The request context ends when the handler returns, the stream outlives it
	base := context.WithoutCancel(c.UserContext())

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(base, streamTimeout)
		defer cancel()

		err := run(ctx, func(chunk string) error {
			return writeFrame(w, sseFrame{Type: "content", Content: chunk})
		})
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{"user_id": userID, "kind": kind}).Error("ai stream failed")
			_ = writeFrame(w, sseFrame{Type: "error", Message: err.Error()})
			return
		}
		_ = writeFrame(w, sseFrame{Type: "done"})
	})
	return nil
}

// WorkoutPlan handles POST /api/v1/ai/workout-plan
func (h *AIHandler) WorkoutPlan(c *fiber.Ctx) error {
	var req domain.WorkoutPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	run, err := h.aiService.WorkoutPlan(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return h.stream(c, "workout_plan", run)
}

// NutritionPlan handles POST /api/v1/ai/nutrition-plan
func (h *AIHandler) NutritionPlan(c *fiber.Ctx) error {
	var req domain.NutritionPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	run, err := h.aiService.NutritionPlan(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return h.stream(c, "nutrition_plan", run)
}

// RecoveryAdvice handles POST /api/v1/ai/recovery-advice
func (h *AIHandler) RecoveryAdvice(c *fiber.Ctx) error {
	var req domain.RecoveryAdviceRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}
	advice, err := h.aiService.RecoveryAdvice(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(advice)
}
