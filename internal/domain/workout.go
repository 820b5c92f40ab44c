package domain

import (
	"context"
	"time"
)

// WorkoutPlan is a user's reusable program of training days
type WorkoutPlan struct {
	ID          string    `json:"id" bson:"_id"`
	UserID      string    `json:"user_id" bson:"user_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Goal        string    `json:"goal,omitempty" bson:"goal,omitempty"`
	IsActive    bool      `json:"is_active" bson:"is_active"`
	Days        []PlanDay `json:"days" bson:"days"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// WorkoutPlanUpdate is a partial plan edit; nil fields are left unchanged
type WorkoutPlanUpdate struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Goal        *string    `json:"goal"`
	IsActive    *bool      `json:"is_active"`
	Days        *[]PlanDay `json:"days"`
}

type PlanDay struct {
	DayNumber int            `json:"day_number" bson:"day_number"`
	Name      string         `json:"name" bson:"name"`
	Exercises []PlanExercise `json:"exercises" bson:"exercises"`
}

type PlanExercise struct {
	ExerciseID  string `json:"exercise_id" bson:"exercise_id"`
	Sets        int    `json:"sets" bson:"sets"`
	Reps        string `json:"reps" bson:"reps"` // "8-12", "5", "AMRAP"
	RestSeconds int    `json:"rest_seconds" bson:"rest_seconds"`
	Order       int    `json:"order" bson:"order"`
	Notes       string `json:"notes,omitempty" bson:"notes,omitempty"`
}

// WorkoutSession is one training session, open until completed
type WorkoutSession struct {
	ID              string        `json:"id" bson:"_id"`
	UserID          string        `json:"user_id" bson:"user_id"`
	PlanID          string        `json:"plan_id,omitempty" bson:"plan_id,omitempty"`
	Name            string        `json:"name" bson:"name"`
	StartedAt       time.Time     `json:"started_at" bson:"started_at"`
	CompletedAt     *time.Time    `json:"completed_at" bson:"completed_at"`
	DurationMinutes *int          `json:"duration_minutes" bson:"duration_minutes"`
	TotalVolumeKg   *float64      `json:"total_volume_kg" bson:"total_volume_kg"`
	Notes           string        `json:"notes,omitempty" bson:"notes,omitempty"`
	Sets            []*SessionSet `json:"sets,omitempty" bson:"-"`
}

// IsCompleted reports whether the session has been closed
func (s *WorkoutSession) IsCompleted() bool {
	return s.CompletedAt != nil
}

// SessionSet is a single logged set. Weight and reps are optional for timed work.
type SessionSet struct {
	ID              string    `json:"id" bson:"_id"`
	SessionID       string    `json:"session_id" bson:"session_id"`
	UserID          string    `json:"user_id" bson:"user_id"`
	ExerciseID      string    `json:"exercise_id" bson:"exercise_id"`
	SetNumber       int       `json:"set_number" bson:"set_number"`
	WeightKg        *float64  `json:"weight_kg" bson:"weight_kg"`
	Reps            *int      `json:"reps" bson:"reps"`
	DurationSeconds *int      `json:"duration_seconds" bson:"duration_seconds"`
	RPE             *float64  `json:"rpe" bson:"rpe"`
	IsPR            bool      `json:"is_pr" bson:"is_pr"`
	Notes           string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

type WorkoutPlanRepository interface {
	Create(ctx context.Context, plan *WorkoutPlan) error
	GetByID(ctx context.Context, id string) (*WorkoutPlan, error)
	ListByUser(ctx context.Context, userID string) ([]*WorkoutPlan, error)
	Update(ctx context.Context, plan *WorkoutPlan) error
	Delete(ctx context.Context, id string) error
}

type WorkoutSessionRepository interface {
	Create(ctx context.Context, session *WorkoutSession) error
	GetByID(ctx context.Context, id string) (*WorkoutSession, error)
	// ListByUser returns one page, newest first, plus the total count
	ListByUser(ctx context.Context, userID string, skip, limit int) ([]*WorkoutSession, int64, error)
	ListCompletedByUser(ctx context.Context, userID string) ([]*WorkoutSession, error)
	Complete(ctx context.Context, id string, completedAt time.Time, durationMinutes int, totalVolumeKg float64) error
	// Reopen undoes the Complete that stamped completedAt
	Reopen(ctx context.Context, id string, completedAt time.Time) error
}

type SessionSetRepository interface {
	Create(ctx context.Context, set *SessionSet) error
	ListBySession(ctx context.Context, sessionID string) ([]*SessionSet, error)
}
