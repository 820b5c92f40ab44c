package domain

import (
	"context"
	"time"
)

// PR types
const (
	PRTypeWeight = "weight" // heaviest load ever lifted for the exercise
	PRTypeReps   = "reps"   // most reps at one exact load
)

// PersonalRecord is one best-ever achievement. Records are appended, never
// overwritten; the current best for a key is the most recent row.
type PersonalRecord struct {
	ID           string    `json:"id" bson:"_id"`
	UserID       string    `json:"user_id" bson:"user_id"`
	ExerciseID   string    `json:"exercise_id" bson:"exercise_id"`
	ExerciseName string    `json:"exercise_name,omitempty" bson:"-"`
	SessionSetID string    `json:"session_set_id,omitempty" bson:"session_set_id,omitempty"`
	PRType       string    `json:"pr_type" bson:"pr_type"`
	WeightKg     *float64  `json:"weight_kg" bson:"weight_kg"`
	Reps         *int      `json:"reps" bson:"reps"`
	PreviousBest *float64  `json:"previous_best" bson:"previous_best"`
	AchievedAt   time.Time `json:"achieved_at" bson:"achieved_at"`
	Celebrated   bool      `json:"celebrated" bson:"celebrated"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// PersonalRecordRepository is the narrow record store used by PR detection
type PersonalRecordRepository interface {
	// MaxWeight returns the heaviest weight-type record, or nil when none exist
	MaxWeight(ctx context.Context, userID, exerciseID string) (*float64, error)
	// MaxRepsAtWeight returns the highest reps-type record at exactly weightKg, or nil
	MaxRepsAtWeight(ctx context.Context, userID, exerciseID string, weightKg float64) (*int, error)
	Create(ctx context.Context, pr *PersonalRecord) error
	// DeleteBySessionSet removes the records minted for a set whose insert failed
	DeleteBySessionSet(ctx context.Context, userID, setID string) (int64, error)

	ListByUser(ctx context.Context, userID string, limit int) ([]*PersonalRecord, error)
	ListPendingCelebrations(ctx context.Context, userID string) ([]*PersonalRecord, error)
	// MarkCelebrated returns ErrNotFound unless the record exists and belongs to userID
	MarkCelebrated(ctx context.Context, userID, prID string) error
	CountBetween(ctx context.Context, userID string, from, to time.Time) (int, error)
}
