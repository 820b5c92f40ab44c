package domain

import (
	"context"
	"time"
)

// Activity levels
const (
	ActivitySedentary  = "sedentary"
	ActivityLight      = "light"
	ActivityModerate   = "moderate"
	ActivityActive     = "active"
	ActivityVeryActive = "very_active"
)

// Goals
const (
	GoalLoseWeight  = "lose_weight"
	GoalMaintain    = "maintain"
	GoalBuildMuscle = "build_muscle"
)

// TDEEResult is the calorie target derived from a user's profile
type TDEEResult struct {
	BMR           float64 `json:"bmr"`
	TDEE          float64 `json:"tdee"`
	CalorieTarget float64 `json:"calorie_target"`
	ActivityLevel string  `json:"activity_level"`
	Goal          string  `json:"goal"`
}

// FoodItem stores macros per 100 g
type FoodItem struct {
	ID              string    `json:"id" bson:"_id"`
	Name            string    `json:"name" bson:"name"`
	Brand           string    `json:"brand,omitempty" bson:"brand,omitempty"`
	CaloriesPer100g float64   `json:"calories_per_100g" bson:"calories_per_100g"`
	ProteinPer100g  float64   `json:"protein_per_100g" bson:"protein_per_100g"`
	CarbsPer100g    float64   `json:"carbs_per_100g" bson:"carbs_per_100g"`
	FatPer100g      float64   `json:"fat_per_100g" bson:"fat_per_100g"`
	FiberPer100g    *float64  `json:"fiber_per_100g" bson:"fiber_per_100g"`
	IsCustom        bool      `json:"is_custom" bson:"is_custom"`
	CreatedBy       string    `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

// NutritionLog is one day of meals with running totals
type NutritionLog struct {
	ID            string      `json:"id" bson:"_id"`
	UserID        string      `json:"user_id" bson:"user_id"`
	Date          time.Time   `json:"date" bson:"date"`
	TotalCalories float64     `json:"total_calories" bson:"total_calories"`
	TotalProteinG float64     `json:"total_protein_g" bson:"total_protein_g"`
	TotalCarbsG   float64     `json:"total_carbs_g" bson:"total_carbs_g"`
	TotalFatG     float64     `json:"total_fat_g" bson:"total_fat_g"`
	Meals         []MealEntry `json:"meals" bson:"meals"`
	CreatedAt     time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" bson:"updated_at"`
}

type MealEntry struct {
	ID         string    `json:"id" bson:"id"`
	FoodItemID string    `json:"food_item_id" bson:"food_item_id"`
	FoodName   string    `json:"food_name" bson:"food_name"`
	MealType   string    `json:"meal_type" bson:"meal_type"` // breakfast, lunch, dinner, snack
	AmountG    float64   `json:"amount_g" bson:"amount_g"`
	Calories   float64   `json:"calories" bson:"calories"`
	ProteinG   float64   `json:"protein_g" bson:"protein_g"`
	CarbsG     float64   `json:"carbs_g" bson:"carbs_g"`
	FatG       float64   `json:"fat_g" bson:"fat_g"`
	LoggedAt   time.Time `json:"logged_at" bson:"logged_at"`
}

// HydrationLog tracks water intake for a day
type HydrationLog struct {
	ID        string           `json:"id" bson:"_id"`
	UserID    string           `json:"user_id" bson:"user_id"`
	Date      time.Time        `json:"date" bson:"date"`
	TotalMl   int              `json:"total_ml" bson:"total_ml"`
	TargetMl  int              `json:"target_ml" bson:"target_ml"`
	Entries   []HydrationEntry `json:"entries" bson:"entries"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" bson:"updated_at"`
}

type HydrationEntry struct {
	ID       string    `json:"id" bson:"id"`
	AmountMl int       `json:"amount_ml" bson:"amount_ml"`
	LoggedAt time.Time `json:"logged_at" bson:"logged_at"`
}

type FoodRepository interface {
	Search(ctx context.Context, query string, limit int) ([]*FoodItem, error)
	Create(ctx context.Context, food *FoodItem) error
	GetByID(ctx context.Context, id string) (*FoodItem, error)
}

type NutritionLogRepository interface {
	// GetOrCreate returns the day's log, inserting an empty one when missing
	GetOrCreate(ctx context.Context, userID string, day time.Time) (*NutritionLog, error)
	// AddMeal appends the meal and increments the totals atomically
	AddMeal(ctx context.Context, userID string, day time.Time, meal MealEntry) (*NutritionLog, error)
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]*NutritionLog, error)
}

type HydrationRepository interface {
	GetOrCreate(ctx context.Context, userID string, day time.Time, defaultTargetMl int) (*HydrationLog, error)
	AddEntry(ctx context.Context, userID string, day time.Time, entry HydrationEntry, defaultTargetMl int) (*HydrationLog, error)
	SetTarget(ctx context.Context, userID string, day time.Time, targetMl int) (*HydrationLog, error)
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]*HydrationLog, error)
}

// DayLogID builds the document key shared by per-day logs
func DayLogID(userID string, day time.Time) string {
	return DailyVolumeID(userID, day)
}
