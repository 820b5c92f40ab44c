package domain

import (
	"context"
	"time"
)

type BodyMeasurement struct {
	ID         string    `json:"id" bson:"_id"`
	UserID     string    `json:"user_id" bson:"user_id"`
	MeasuredAt time.Time `json:"measured_at" bson:"measured_at"`
	WeightKg   *float64  `json:"weight_kg" bson:"weight_kg"`
	BodyFatPct *float64  `json:"body_fat_pct" bson:"body_fat_pct"`
	ChestCm    *float64  `json:"chest_cm" bson:"chest_cm"`
	WaistCm    *float64  `json:"waist_cm" bson:"waist_cm"`
	HipsCm     *float64  `json:"hips_cm" bson:"hips_cm"`
	ArmsCm     *float64  `json:"arms_cm" bson:"arms_cm"`
	ThighsCm   *float64  `json:"thighs_cm" bson:"thighs_cm"`
	Notes      string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// ProgressPhoto points at an uploaded image in object storage
type ProgressPhoto struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	S3URL     string    `json:"s3_url" bson:"s3_url"`
	Angle     string    `json:"angle" bson:"angle"` // front, side, back
	TakenAt   time.Time `json:"taken_at" bson:"taken_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// BodyStatsDashboard is the combined body overview
type BodyStatsDashboard struct {
	LatestWeightKg      *float64           `json:"latest_weight_kg"`
	BMI                 *float64           `json:"bmi"`
	BodyFatPct          *float64           `json:"body_fat_pct"`
	StrengthScore       float64            `json:"strength_score"`
	WeightTrend         *float64           `json:"weight_trend"`
	MeasurementsHistory []*BodyMeasurement `json:"measurements_history"`
}

type BodyMeasurementRepository interface {
	Create(ctx context.Context, m *BodyMeasurement) error
	// ListByUser returns newest first
	ListByUser(ctx context.Context, userID string, limit int) ([]*BodyMeasurement, error)
}

type ProgressPhotoRepository interface {
	Create(ctx context.Context, photo *ProgressPhoto) error
	ListByUser(ctx context.Context, userID string) ([]*ProgressPhoto, error)
}
