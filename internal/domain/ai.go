package domain

// Estimated token cost reserved before each AI call
const (
	WorkoutPlanTokenEstimate    = 5000
	NutritionPlanTokenEstimate  = 4000
	RecoveryAdviceTokenEstimate = 2000
)

type WorkoutPlanRequest struct {
	Age             *int     `json:"age"`
	FitnessLevel    string   `json:"fitness_level"`
	ExperienceYears *float64 `json:"experience_years"`
	Goal            string   `json:"goal"`
	Equipment       []string `json:"equipment"`
	DaysPerWeek     int      `json:"days_per_week"`
	AdditionalNotes string   `json:"additional_notes"`
}

type NutritionPlanRequest struct {
	WeightKg            *float64 `json:"weight_kg"`
	HeightCm            *float64 `json:"height_cm"`
	Age                 *int     `json:"age"`
	Goal                string   `json:"goal"`
	ActivityLevel       string   `json:"activity_level"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	MealsPerDay         int      `json:"meals_per_day"`
	AdditionalNotes     string   `json:"additional_notes"`
}

type RecoveryAdviceRequest struct {
	RecentWorkouts  []string `json:"recent_workouts"`
	CurrentSoreness []string `json:"current_soreness"`
	SleepHours      *float64 `json:"sleep_hours"`
	AdditionalNotes string   `json:"additional_notes"`
}

type RecoveryAdvice struct {
	Advice     string `json:"advice"`
	TokensUsed int64  `json:"tokens_used"`
}
