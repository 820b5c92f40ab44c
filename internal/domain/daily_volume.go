package domain

import (
	"context"
	"time"
)

// DailyVolume aggregates completed training for a user on one UTC day.
// Volume = sum(weight * reps) over the day's sets.
type DailyVolume struct {
	ID           string    `json:"id" bson:"_id"` // "{user_id}:{YYYY-MM-DD}"
	UserID       string    `json:"user_id" bson:"user_id"`
	Date         time.Time `json:"date" bson:"date"`
	TotalVolume  float64   `json:"total_volume" bson:"total_volume"`
	TotalSets    int       `json:"total_sets" bson:"total_sets"`
	TotalReps    int       `json:"total_reps" bson:"total_reps"`
	SessionCount int       `json:"session_count" bson:"session_count"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// VolumeDelta is added onto a day's totals when a session completes
type VolumeDelta struct {
	Volume   float64
	Sets     int
	Reps     int
	Sessions int
}

// DailyVolumeRepository handles the daily_volumes collection
type DailyVolumeRepository interface {
	// Increment adds delta to the day's row, creating it when missing
	Increment(ctx context.Context, userID string, day time.Time, delta VolumeDelta) error
	// ListRange returns rows with from <= date <= to, oldest first
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]*DailyVolume, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// DailyVolumeID builds the document key for a user's day
func DailyVolumeID(userID string, day time.Time) string {
	return userID + ":" + day.UTC().Format("2006-01-02")
}

// StartOfDay truncates t to midnight UTC
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
