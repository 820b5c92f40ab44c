package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/sirupsen/logrus"
)

const tdeeCacheTTL = time.Hour

var activityMultipliers = map[string]float64{
	domain.ActivitySedentary:  1.2,
	domain.ActivityLight:      1.375,
	domain.ActivityModerate:   1.55,
	domain.ActivityActive:     1.725,
	domain.ActivityVeryActive: 1.9,
}

var goalAdjustments = map[string]float64{
	domain.GoalLoseWeight:  -500,
	domain.GoalMaintain:    0,
	domain.GoalBuildMuscle: 300,
}

var mealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

// CalculateBMR uses the Mifflin-St Jeor equation. Genders other than male and
// female get the average of the two offsets.
func CalculateBMR(weightKg, heightCm, ageYears float64, gender string) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*ageYears
	switch gender {
	case domain.GenderMale:
		return base + 5
	case domain.GenderFemale:
		return base - 161
	default:
		return base - 78.0
	}
}

// CalculateTDEE scales BMR by the activity multiplier. Unknown levels count as sedentary.
func CalculateTDEE(bmr float64, activityLevel string) float64 {
	multiplier, ok := activityMultipliers[activityLevel]
	if !ok {
		multiplier = activityMultipliers[domain.ActivitySedentary]
	}
	return bmr * multiplier
}

// CalculateCalorieTarget applies the goal adjustment. Unknown goals add nothing.
func CalculateCalorieTarget(tdee float64, goal string) float64 {
	return tdee + goalAdjustments[goal]
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ageYears counts whole elapsed days, matching how birthdays are stored (midnight UTC)
func ageYears(dob, now time.Time) float64 {
	days := math.Floor(now.Sub(dob.UTC()).Hours() / 24)
	return days / 365.25
}

// missingTDEEFields lists absent required fields in reporting order
func missingTDEEFields(p *domain.UserProfile) []string {
	if p == nil {
		return []string{
			domain.FieldWeightKg,
			domain.FieldHeightCm,
			domain.FieldDateOfBirth,
			domain.FieldGender,
			domain.FieldActivityLevel,
		}
	}

	var missing []string
	if p.WeightKg == nil {
		missing = append(missing, domain.FieldWeightKg)
	}
	if p.HeightCm == nil {
		missing = append(missing, domain.FieldHeightCm)
	}
	if p.DateOfBirth == nil {
		missing = append(missing, domain.FieldDateOfBirth)
	}
	if p.Gender == nil || *p.Gender == "" {
		missing = append(missing, domain.FieldGender)
	}
	if p.ActivityLevel == nil || *p.ActivityLevel == "" {
		missing = append(missing, domain.FieldActivityLevel)
	}
	return missing
}

// TDEEFromProfile computes the rounded calorie target for a complete profile
func TDEEFromProfile(p *domain.UserProfile, now time.Time) (*domain.TDEEResult, error) {
	if missing := missingTDEEFields(p); len(missing) > 0 {
		return nil, &domain.ProfileIncompleteError{Missing: missing}
	}

	goal := domain.GoalMaintain
	if p.FitnessGoal != nil && *p.FitnessGoal != "" {
		goal = *p.FitnessGoal
	}

	bmr := CalculateBMR(*p.WeightKg, *p.HeightCm, ageYears(*p.DateOfBirth, now), *p.Gender)
	tdee := CalculateTDEE(bmr, *p.ActivityLevel)
	target := CalculateCalorieTarget(tdee, goal)

	return &domain.TDEEResult{
		BMR:           roundTo1(bmr),
		TDEE:          roundTo1(tdee),
		CalorieTarget: roundTo1(target),
		ActivityLevel: *p.ActivityLevel,
		Goal:          goal,
	}, nil
}

type NutritionService struct {
	profileRepo domain.ProfileRepository
	foodRepo    domain.FoodRepository
	logRepo     domain.NutritionLogRepository
	cache       domain.CacheRepository
	now         func() time.Time
}

func NewNutritionService(
	profileRepo domain.ProfileRepository,
	foodRepo domain.FoodRepository,
	logRepo domain.NutritionLogRepository,
	cache domain.CacheRepository,
) *NutritionService {
	return &NutritionService{
		profileRepo: profileRepo,
		foodRepo:    foodRepo,
		logRepo:     logRepo,
		cache:       cache,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CalculateUserTDEE loads the user's profile and returns BMR, TDEE and calorie
// target. It fails with *domain.ProfileIncompleteError naming every missing field.
func (s *NutritionService) CalculateUserTDEE(ctx context.Context, userID string) (*domain.TDEEResult, error) {
	key := domain.TDEEKey(userID)

	var cached domain.TDEEResult
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		logrus.WithError(err).WithField("user_id", userID).Warn("tdee cache read failed")
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	result, err := TDEEFromProfile(profile, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, result, tdeeCacheTTL); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("tdee cache write failed")
	}
	return result, nil
}

func (s *NutritionService) SearchFoods(ctx context.Context, query string) ([]*domain.FoodItem, error) {
	return s.foodRepo.Search(ctx, strings.TrimSpace(query), 0)
}

// CreateFood stores a user-defined food item
func (s *NutritionService) CreateFood(ctx context.Context, userID string, food *domain.FoodItem) (*domain.FoodItem, error) {
	food.Name = strings.TrimSpace(food.Name)
	if food.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	food.ID = uuid.NewString()
	food.IsCustom = true
	food.CreatedBy = userID

	if err := s.foodRepo.Create(ctx, food); err != nil {
		return nil, err
	}
	return food, nil
}

func (s *NutritionService) GetDayLog(ctx context.Context, userID string, day time.Time) (*domain.NutritionLog, error) {
	return s.logRepo.GetOrCreate(ctx, userID, day)
}

// AddMealInput is one food portion logged against a day
type AddMealInput struct {
	FoodItemID string  `json:"food_item_id"`
	MealType   string  `json:"meal_type"`
	AmountG    float64 `json:"amount_g"`
}

// AddMeal scales the food's per-100g macros by the portion and appends the meal
func (s *NutritionService) AddMeal(ctx context.Context, userID string, day time.Time, input AddMealInput) (*domain.NutritionLog, error) {
	if !mealTypes[input.MealType] {
		return nil, fmt.Errorf("%w: meal_type must be breakfast, lunch, dinner or snack", domain.ErrInvalidInput)
	}
	if input.AmountG <= 0 {
		return nil, fmt.Errorf("%w: amount_g must be positive", domain.ErrInvalidInput)
	}

	food, err := s.foodRepo.GetByID(ctx, input.FoodItemID)
	if err != nil {
		return nil, err
	}

	factor := input.AmountG / 100
	meal := domain.MealEntry{
		ID:         uuid.NewString(),
		FoodItemID: food.ID,
		FoodName:   food.Name,
		MealType:   input.MealType,
		AmountG:    input.AmountG,
		Calories:   roundTo1(food.CaloriesPer100g * factor),
		ProteinG:   roundTo1(food.ProteinPer100g * factor),
		CarbsG:     roundTo1(food.CarbsPer100g * factor),
		FatG:       roundTo1(food.FatPer100g * factor),
		LoggedAt:   s.now(),
	}

	return s.logRepo.AddMeal(ctx, userID, day, meal)
}
