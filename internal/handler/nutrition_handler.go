package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/middleware"
	"github.com/mansoorceksport/fitcoach/internal/service"
)

// NutritionHandler serves food logging, the TDEE calculator and hydration
type NutritionHandler struct {
	nutritionService *service.NutritionService
	hydrationService *service.HydrationService
}

func NewNutritionHandler(nutritionService *service.NutritionService, hydrationService *service.HydrationService) *NutritionHandler {
	return &NutritionHandler{
		nutritionService: nutritionService,
		hydrationService: hydrationService,
	}
}

func (h *NutritionHandler) SearchFoods(c *fiber.Ctx) error {
	foods, err := h.nutritionService.SearchFoods(c.UserContext(), c.Query("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(foods)
}

func (h *NutritionHandler) CreateFood(c *fiber.Ctx) error {
	var req domain.FoodItem
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	food, err := h.nutritionService.CreateFood(c.UserContext(), middleware.GetUserID(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(food)
}

// GetDayLog handles GET /api/v1/nutrition/logs/:date
func (h *NutritionHandler) GetDayLog(c *fiber.Ctx) error {
	day, err := dayParam(c)
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	log, err := h.nutritionService.GetDayLog(c.UserContext(), middleware.GetUserID(c), day)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(log)
}

// AddMeal handles POST /api/v1/nutrition/logs/:date/meals
func (h *NutritionHandler) AddMeal(c *fiber.Ctx) error {
	day, err := dayParam(c)
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	var req service.AddMealInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	log, err := h.nutritionService.AddMeal(c.UserContext(), middleware.GetUserID(c), day, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(log)
}

// TDEE handles GET /api/v1/nutrition/tdee
func (h *NutritionHandler) TDEE(c *fiber.Ctx) error {
	result, err := h.nutritionService.CalculateUserTDEE(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// --- Hydration ---

func (h *NutritionHandler) GetHydration(c *fiber.Ctx) error {
	day, err := dayParam(c)
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	log, err := h.hydrationService.GetDay(c.UserContext(), middleware.GetUserID(c), day)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(log)
}

func (h *NutritionHandler) AddHydration(c *fiber.Ctx) error {
	day, err := dayParam(c)
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	var req struct {
		AmountMl int `json:"amount_ml"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	log, err := h.hydrationService.AddEntry(c.UserContext(), middleware.GetUserID(c), day, req.AmountMl)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(log)
}

func (h *NutritionHandler) SetHydrationTarget(c *fiber.Ctx) error {
	day, err := dayParam(c)
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	var req struct {
		TargetMl int `json:"target_ml"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	log, err := h.hydrationService.SetTarget(c.UserContext(), middleware.GetUserID(c), day, req.TargetMl)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(log)
}
