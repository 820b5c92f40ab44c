package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/middleware"
	"github.com/mansoorceksport/fitcoach/internal/service"
	"github.com/mansoorceksport/fitcoach/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

const exerciseListLimit = 50

type WorkoutHandler struct {
	workoutService *service.WorkoutService
}

func NewWorkoutHandler(workoutService *service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- Exercises ---

func (h *WorkoutHandler) ListExercises(c *fiber.Ctx) error {
	exercises, err := h.workoutService.ListExercises(c.UserContext(), domain.ExerciseFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Limit:    exerciseListLimit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(exercises)
}

func (h *WorkoutHandler) CreateExercise(c *fiber.Ctx) error {
	var req domain.Exercise
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	exercise, err := h.workoutService.CreateExercise(c.UserContext(), middleware.GetUserID(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(exercise)
}

// --- Plans ---

func (h *WorkoutHandler) ListPlans(c *fiber.Ctx) error {
	plans, err := h.workoutService.ListPlans(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(plans)
}

func (h *WorkoutHandler) CreatePlan(c *fiber.Ctx) error {
	var req domain.WorkoutPlan
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	plan, err := h.workoutService.CreatePlan(c.UserContext(), middleware.GetUserID(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

func (h *WorkoutHandler) GetPlan(c *fiber.Ctx) error {
	plan, err := h.workoutService.GetPlan(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(plan)
}

func (h *WorkoutHandler) UpdatePlan(c *fiber.Ctx) error {
	var req domain.WorkoutPlanUpdate
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	plan, err := h.workoutService.UpdatePlan(c.UserContext(), middleware.GetUserID(c), c.Params("id"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(plan)
}

func (h *WorkoutHandler) DeletePlan(c *fiber.Ctx) error {
	if err := h.workoutService.DeletePlan(c.UserContext(), middleware.GetUserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// --- Sessions ---

func (h *WorkoutHandler) StartSession(c *fiber.Ctx) error {
	var req service.StartSessionInput
	// Empty body starts an ad-hoc session
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}
	session, err := h.workoutService.StartSession(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *WorkoutHandler) ListSessions(c *fiber.Ctx) error {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 0)

	sessions, total, err := h.workoutService.ListSessions(c.UserContext(), middleware.GetUserID(c), page, pageSize)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"data":  sessions,
		"total": total,
		"page":  page,
	})
}

func (h *WorkoutHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.workoutService.GetSession(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(session)
}

func (h *WorkoutHandler) CompleteSession(c *fiber.Ctx) error {
	session, err := h.workoutService.CompleteSession(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(session)
}

// LogSet handles POST /api/v1/workouts/sessions/:id/sets
func (h *WorkoutHandler) LogSet(c *fiber.Ctx) error {
	var req service.LogSetInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	set, err := h.workoutService.LogSet(c.UserContext(), middleware.GetUserID(c), c.Params("id"), req)
	if err != nil {
		return writeError(c, err)
	}
	if set.IsPR {
		telemetry.AddSpanEvent(c, "personal_record.detected",
			attribute.String("exercise_id", set.ExerciseID),
			attribute.String("set_id", set.ID),
		)
	}
	return c.Status(fiber.StatusCreated).JSON(set)
}
