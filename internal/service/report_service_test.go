package service

import (
	"context"
	"testing"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 28, 20, 0, 0, 0, time.UTC)

	volumes := testutil.NewDailyVolumeRepo()
	prs := testutil.NewPRRepo()
	recovery := testutil.NewRecoveryRepo()
	nutrition := testutil.NewNutritionLogRepo()
	hydration := testutil.NewHydrationRepo()

	svc := NewReportService(volumes, prs, recovery, nutrition, hydration)
	svc.now = fixedClock(now)

	// Inside the week
	require.NoError(t, volumes.Increment(ctx, "u1", now, domain.VolumeDelta{Volume: 1000, Sessions: 1}))
	require.NoError(t, volumes.Increment(ctx, "u1", now.AddDate(0, 0, -6), domain.VolumeDelta{Volume: 500.25, Sessions: 1}))
	// Inside the month only
	require.NoError(t, volumes.Increment(ctx, "u1", now.AddDate(0, 0, -20), domain.VolumeDelta{Volume: 2000, Sessions: 2}))
	// Outside both
	require.NoError(t, volumes.Increment(ctx, "u1", now.AddDate(0, 0, -40), domain.VolumeDelta{Volume: 9999, Sessions: 9}))

	require.NoError(t, prs.Create(ctx, &domain.PersonalRecord{ID: "p1", UserID: "u1", AchievedAt: now.Add(-time.Hour)}))
	require.NoError(t, prs.Create(ctx, &domain.PersonalRecord{ID: "p2", UserID: "u1", AchievedAt: now.AddDate(0, 0, -15)}))

	require.NoError(t, recovery.Save(ctx, &domain.RecoveryLog{ID: "r1", UserID: "u1", Date: domain.StartOfDay(now), RecoveryScore: 80}))
	require.NoError(t, recovery.Save(ctx, &domain.RecoveryLog{ID: "r2", UserID: "u1", Date: domain.StartOfDay(now.AddDate(0, 0, -1)), RecoveryScore: 65}))

	_, err := nutrition.AddMeal(ctx, "u1", now, domain.MealEntry{Calories: 2100})
	require.NoError(t, err)
	_, err = nutrition.GetOrCreate(ctx, "u1", now.AddDate(0, 0, -1))
	require.NoError(t, err)

	_, err = hydration.AddEntry(ctx, "u1", now, domain.HydrationEntry{AmountMl: 1500}, DefaultHydrationTargetMl)
	require.NoError(t, err)

	weekly, err := svc.Weekly(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StartOfDay(now.AddDate(0, 0, -6)), weekly.PeriodStart)
	assert.Equal(t, 2, weekly.SessionsCompleted)
	assert.Equal(t, 1500.3, weekly.TotalVolumeKg)
	assert.Equal(t, 1, weekly.PersonalRecords)
	require.NotNil(t, weekly.AverageRecoveryScore)
	assert.Equal(t, 72.5, *weekly.AverageRecoveryScore)
	require.NotNil(t, weekly.AverageCalories)
	assert.Equal(t, 2100.0, *weekly.AverageCalories)
	require.NotNil(t, weekly.AverageHydrationMl)
	assert.Equal(t, 1500.0, *weekly.AverageHydrationMl)

	monthly, err := svc.Monthly(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, monthly.SessionsCompleted)
	assert.Equal(t, 3500.3, monthly.TotalVolumeKg)
	assert.Equal(t, 2, monthly.PersonalRecords)

	empty, err := svc.Weekly(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, empty.SessionsCompleted)
	assert.Nil(t, empty.AverageRecoveryScore)
	assert.Nil(t, empty.AverageCalories)
	assert.Nil(t, empty.AverageHydrationMl)
}
