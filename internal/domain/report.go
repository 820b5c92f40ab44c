package domain

import "time"

// Report covers activity over a closed period
type Report struct {
	PeriodStart          time.Time `json:"period_start"`
	PeriodEnd            time.Time `json:"period_end"`
	SessionsCompleted    int       `json:"sessions_completed"`
	TotalVolumeKg        float64   `json:"total_volume_kg"`
	PersonalRecords      int       `json:"personal_records"`
	AverageRecoveryScore *float64  `json:"average_recovery_score"`
	AverageCalories      *float64  `json:"average_calories"`
	AverageHydrationMl   *float64  `json:"average_hydration_ml"`
}
