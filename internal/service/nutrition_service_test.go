package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBMR(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		height float64
		age    float64
		gender string
		want   float64
	}{
		{"male", 80, 180, 30, "male", 1780.0},
		{"female", 60, 165, 25, "female", 1345.25},
		{"unknown gender uses averaged offset", 80, 180, 30, "other", 1697.0},
		{"empty gender uses averaged offset", 80, 180, 30, "", 1697.0},
		{"case sensitive", 80, 180, 30, "Male", 1697.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateBMR(tt.weight, tt.height, tt.age, tt.gender), 1e-9)
		})
	}
}

func TestCalculateTDEE(t *testing.T) {
	for _, bmr := range []float64{1200, 1780, 2000.5} {
		assert.Equal(t, bmr*1.2, CalculateTDEE(bmr, "sedentary"))
		assert.Equal(t, bmr*1.375, CalculateTDEE(bmr, "light"))
		assert.Equal(t, bmr*1.55, CalculateTDEE(bmr, "moderate"))
		assert.Equal(t, bmr*1.725, CalculateTDEE(bmr, "active"))
		assert.Equal(t, bmr*1.9, CalculateTDEE(bmr, "very_active"))
		assert.Equal(t, bmr*1.2, CalculateTDEE(bmr, "couch"), "unknown level defaults to sedentary")
	}
}

func TestCalculateCalorieTarget(t *testing.T) {
	assert.Equal(t, 2000.0, CalculateCalorieTarget(2500, "lose_weight"))
	assert.Equal(t, 2500.0, CalculateCalorieTarget(2500, "maintain"))
	assert.Equal(t, 2800.0, CalculateCalorieTarget(2500, "build_muscle"))
	assert.Equal(t, 2500.0, CalculateCalorieTarget(2500, "bulk_forever"))
}

func newNutritionService(now time.Time) (*NutritionService, *testutil.ProfileRepo, *testutil.MemoryCache) {
	profiles := testutil.NewProfileRepo()
	cache := testutil.NewMemoryCache()
	foods := testutil.NewFoodRepo(&domain.FoodItem{
		ID:              "oats",
		Name:            "Rolled oats",
		CaloriesPer100g: 389,
		ProteinPer100g:  16.9,
		CarbsPer100g:    66.3,
		FatPer100g:      6.9,
	})
	svc := NewNutritionService(profiles, foods, testutil.NewNutritionLogRepo(), cache)
	svc.now = fixedClock(now)
	return svc, profiles, cache
}

func TestNutritionService_CalculateUserTDEE(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dob := time.Date(1996, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("complete profile", func(t *testing.T) {
		svc, profiles, cache := newNutritionService(now)
		profiles.Put(&domain.UserProfile{
			UserID:        "u1",
			WeightKg:      f64(80),
			HeightCm:      f64(180),
			DateOfBirth:   &dob,
			Gender:        strp("male"),
			ActivityLevel: strp("moderate"),
			FitnessGoal:   strp("lose_weight"),
		})

		result, err := svc.CalculateUserTDEE(ctx, "u1")
		require.NoError(t, err)

		age := ageYears(dob, now)
		bmr := CalculateBMR(80, 180, age, "male")
		assert.InDelta(t, 30.0, age, 0.01)
		assert.Equal(t, roundTo1(bmr), result.BMR)
		assert.Equal(t, roundTo1(bmr*1.55), result.TDEE)
		assert.Equal(t, roundTo1(bmr*1.55-500), result.CalorieTarget)
		assert.Equal(t, "moderate", result.ActivityLevel)
		assert.Equal(t, "lose_weight", result.Goal)
		assert.True(t, cache.Has(domain.TDEEKey("u1")))
	})

	t.Run("goal defaults to maintain", func(t *testing.T) {
		svc, profiles, _ := newNutritionService(now)
		profiles.Put(&domain.UserProfile{
			UserID:        "u1",
			WeightKg:      f64(60),
			HeightCm:      f64(165),
			DateOfBirth:   &dob,
			Gender:        strp("female"),
			ActivityLevel: strp("sedentary"),
		})

		result, err := svc.CalculateUserTDEE(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "maintain", result.Goal)
		assert.Equal(t, result.TDEE, result.CalorieTarget)
	})

	t.Run("missing fields are listed in order", func(t *testing.T) {
		svc, profiles, cache := newNutritionService(now)
		profiles.Put(&domain.UserProfile{
			UserID:   "u1",
			WeightKg: f64(80),
			Gender:   strp("male"),
		})

		_, err := svc.CalculateUserTDEE(ctx, "u1")
		var incomplete *domain.ProfileIncompleteError
		require.True(t, errors.As(err, &incomplete))
		assert.Equal(t, []string{"height_cm", "date_of_birth", "activity_level"}, incomplete.Missing)
		assert.Contains(t, err.Error(), "height_cm, date_of_birth, activity_level")
		assert.False(t, cache.Has(domain.TDEEKey("u1")))
	})

	t.Run("no profile lists every field", func(t *testing.T) {
		svc, _, _ := newNutritionService(now)

		_, err := svc.CalculateUserTDEE(ctx, "ghost")
		var incomplete *domain.ProfileIncompleteError
		require.True(t, errors.As(err, &incomplete))
		assert.Equal(t, []string{"weight_kg", "height_cm", "date_of_birth", "gender", "activity_level"}, incomplete.Missing)
	})

	t.Run("served from cache", func(t *testing.T) {
		svc, _, cache := newNutritionService(now)
		require.NoError(t, cache.Set(ctx, domain.TDEEKey("u1"), &domain.TDEEResult{BMR: 1, TDEE: 2, CalorieTarget: 3}, time.Hour))

		result, err := svc.CalculateUserTDEE(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 3.0, result.CalorieTarget)
	})
}

func TestNutritionService_AddMeal(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc, _, _ := newNutritionService(now)

	log, err := svc.AddMeal(ctx, "u1", now, AddMealInput{FoodItemID: "oats", MealType: "breakfast", AmountG: 80})
	require.NoError(t, err)
	require.Len(t, log.Meals, 1)
	assert.Equal(t, "Rolled oats", log.Meals[0].FoodName)
	assert.InDelta(t, 311.2, log.Meals[0].Calories, 1e-9)
	assert.InDelta(t, 13.5, log.Meals[0].ProteinG, 1e-9)

	log, err = svc.AddMeal(ctx, "u1", now, AddMealInput{FoodItemID: "oats", MealType: "snack", AmountG: 20})
	require.NoError(t, err)
	assert.Len(t, log.Meals, 2)
	assert.InDelta(t, 311.2+77.8, log.TotalCalories, 1e-9)

	_, err = svc.AddMeal(ctx, "u1", now, AddMealInput{FoodItemID: "oats", MealType: "brunch", AmountG: 20})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.AddMeal(ctx, "u1", now, AddMealInput{FoodItemID: "missing", MealType: "lunch", AmountG: 20})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHydrationService(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := NewHydrationService(testutil.NewHydrationRepo())

	log, err := svc.GetDay(ctx, "u1", day)
	require.NoError(t, err)
	assert.Equal(t, DefaultHydrationTargetMl, log.TargetMl)
	assert.Equal(t, 0, log.TotalMl)

	_, err = svc.AddEntry(ctx, "u1", day, 500)
	require.NoError(t, err)
	log, err = svc.AddEntry(ctx, "u1", day, 250)
	require.NoError(t, err)
	assert.Equal(t, 750, log.TotalMl)
	assert.Len(t, log.Entries, 2)

	log, err = svc.SetTarget(ctx, "u1", day, 3000)
	require.NoError(t, err)
	assert.Equal(t, 3000, log.TargetMl)
	assert.Equal(t, 750, log.TotalMl)

	_, err = svc.AddEntry(ctx, "u1", day, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
