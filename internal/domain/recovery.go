package domain

import (
	"context"
	"time"
)

// RecoveryLog is the user's daily check-in. One per user per UTC day.
type RecoveryLog struct {
	ID            string          `json:"id" bson:"_id"`
	UserID        string          `json:"user_id" bson:"user_id"`
	Date          time.Time       `json:"date" bson:"date"`
	SleepHours    *float64        `json:"sleep_hours" bson:"sleep_hours"`
	SleepQuality  *int            `json:"sleep_quality" bson:"sleep_quality"` // 1-5
	FatigueLevel  *int            `json:"fatigue_level" bson:"fatigue_level"` // 1-10, higher is worse
	StressLevel   *int            `json:"stress_level" bson:"stress_level"`
	Mood          *int            `json:"mood" bson:"mood"`
	TrainingLoad  *float64        `json:"training_load" bson:"training_load"` // 0-1
	RecoveryScore float64         `json:"recovery_score" bson:"recovery_score"`
	Notes         string          `json:"notes,omitempty" bson:"notes,omitempty"`
	Soreness      []SorenessEntry `json:"soreness" bson:"soreness"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" bson:"updated_at"`
}

type SorenessEntry struct {
	MuscleGroup string    `json:"muscle_group" bson:"muscle_group"`
	Level       int       `json:"level" bson:"level"`
	RecordedAt  time.Time `json:"recorded_at" bson:"recorded_at"`
}

// RecoveryCheckin is the partial input merged into the day's log
type RecoveryCheckin struct {
	Date         *time.Time      `json:"date"`
	SleepHours   *float64        `json:"sleep_hours"`
	SleepQuality *int            `json:"sleep_quality"`
	FatigueLevel *int            `json:"fatigue_level"`
	StressLevel  *int            `json:"stress_level"`
	Mood         *int            `json:"mood"`
	Notes        *string         `json:"notes"`
	Soreness     []SorenessEntry `json:"soreness"`
}

// RecoveryRecommendation summarizes recent logs into guidance
type RecoveryRecommendation struct {
	LatestScore     *float64 `json:"latest_score"`
	AverageScore    *float64 `json:"average_score"`
	ShouldRest      bool     `json:"should_rest"`
	ACWR            *float64 `json:"acwr"`
	Recommendations []string `json:"recommendations"`
}

type RecoveryRepository interface {
	// GetByDate returns nil, nil when the day has no log
	GetByDate(ctx context.Context, userID string, day time.Time) (*RecoveryLog, error)
	// Save replaces or inserts the log by ID
	Save(ctx context.Context, log *RecoveryLog) error
	ListRecent(ctx context.Context, userID string, limit int) ([]*RecoveryLog, error)
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]*RecoveryLog, error)
}
