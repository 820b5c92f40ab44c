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

func TestCalculateRecoveryScore(t *testing.T) {
	tests := []struct {
		name    string
		sleep   *float64
		quality *int
		fatigue *int
		load    *float64
		want    float64
	}{
		{"ideal day", f64(8), intp(5), intp(1), f64(0), 100},
		{"neutral when nothing is known", nil, nil, nil, nil, 57.5},
		{"short sleep and exhausted", f64(4), intp(1), intp(9), nil, 0 + 4 + 25.0/9 + 15},
		{"six hours", f64(6), intp(3), intp(5), f64(0.5), 2.0/3*40 + 12 + 5.0/9*25 + 7.5},
		{"long sleep tapers", f64(10.5), nil, nil, nil, 30 + 10 + 12.5 + 15},
		{"oversleeping scores zero", f64(13), nil, nil, nil, 0 + 10 + 12.5 + 15},
		{"inputs are clamped", f64(8), intp(9), intp(-3), f64(4), 40 + 20 + 25 + 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateRecoveryScore(tt.sleep, tt.quality, tt.fatigue, tt.load)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}

	assert.Greater(t, CalculateRecoveryScore(f64(8), intp(5), intp(1), nil), 90.0)
	assert.Less(t, CalculateRecoveryScore(f64(4), intp(1), intp(9), nil), 25.0)
}

func TestTrainingLoadFromACWR(t *testing.T) {
	assert.Equal(t, 0.0, TrainingLoadFromACWR(0.5))
	assert.Equal(t, 0.0, TrainingLoadFromACWR(0.8))
	assert.InDelta(t, 0.5, TrainingLoadFromACWR(1.15), 1e-9)
	assert.Equal(t, 1.0, TrainingLoadFromACWR(1.5))
	assert.Equal(t, 1.0, TrainingLoadFromACWR(3))
}

func newRecoveryService(now time.Time) (*RecoveryService, *testutil.RecoveryRepo, *testutil.DailyVolumeRepo) {
	logs := testutil.NewRecoveryRepo()
	volumes := testutil.NewDailyVolumeRepo()
	svc := NewRecoveryService(logs, volumes)
	svc.now = fixedClock(now)
	return svc, logs, volumes
}

func TestRecoveryService_ACWR(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 28, 18, 0, 0, 0, time.UTC)

	t.Run("nil without chronic volume", func(t *testing.T) {
		svc, _, _ := newRecoveryService(now)
		ratio, err := svc.ACWR(ctx, "u1")
		require.NoError(t, err)
		assert.Nil(t, ratio)
	})

	t.Run("steady load is one", func(t *testing.T) {
		svc, _, volumes := newRecoveryService(now)
		for i := 0; i < 28; i++ {
			require.NoError(t, volumes.Increment(ctx, "u1", now.AddDate(0, 0, -i), domain.VolumeDelta{Volume: 1000}))
		}
		ratio, err := svc.ACWR(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, ratio)
		assert.Equal(t, 1.0, *ratio)
	})

	t.Run("only this week", func(t *testing.T) {
		svc, _, volumes := newRecoveryService(now)
		require.NoError(t, volumes.Increment(ctx, "u1", now, domain.VolumeDelta{Volume: 700}))
		ratio, err := svc.ACWR(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, ratio)
		assert.Equal(t, 4.0, *ratio)
	})

	t.Run("volume older than the window is ignored", func(t *testing.T) {
		svc, _, volumes := newRecoveryService(now)
		require.NoError(t, volumes.Increment(ctx, "u1", now.AddDate(0, 0, -40), domain.VolumeDelta{Volume: 5000}))
		ratio, err := svc.ACWR(ctx, "u1")
		require.NoError(t, err)
		assert.Nil(t, ratio)
	})
}

func TestRecoveryService_Checkin(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 28, 7, 30, 0, 0, time.UTC)
	svc, logs, _ := newRecoveryService(now)

	first, err := svc.Checkin(ctx, "u1", domain.RecoveryCheckin{
		SleepHours:   f64(8),
		SleepQuality: intp(4),
		FatigueLevel: intp(3),
		Soreness:     []domain.SorenessEntry{{MuscleGroup: "quads", Level: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StartOfDay(now), first.Date)
	assert.Nil(t, first.TrainingLoad)
	assert.InDelta(t, roundTo1(40+16+7.0/9*25+15), first.RecoveryScore, 1e-9)
	require.Len(t, first.Soreness, 1)
	assert.Equal(t, now, first.Soreness[0].RecordedAt)

	// A second check-in the same day merges into the same log
	second, err := svc.Checkin(ctx, "u1", domain.RecoveryCheckin{
		FatigueLevel: intp(8),
		Soreness:     []domain.SorenessEntry{{MuscleGroup: "hamstrings", Level: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.SleepHours)
	assert.Equal(t, 8.0, *second.SleepHours)
	assert.Equal(t, 8, *second.FatigueLevel)
	assert.Len(t, second.Soreness, 2)
	assert.Less(t, second.RecoveryScore, first.RecoveryScore)

	stored, err := logs.ListRecent(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	latest, err := svc.LatestScore(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.RecoveryScore, *latest)
}

func TestRecoveryService_CheckinUsesTrainingLoad(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 28, 7, 30, 0, 0, time.UTC)
	svc, _, volumes := newRecoveryService(now)

	require.NoError(t, volumes.Increment(ctx, "u1", now.AddDate(0, 0, -1), domain.VolumeDelta{Volume: 10000}))

	log, err := svc.Checkin(ctx, "u1", domain.RecoveryCheckin{SleepHours: f64(8), SleepQuality: intp(5), FatigueLevel: intp(1)})
	require.NoError(t, err)
	require.NotNil(t, log.TrainingLoad)
	assert.Equal(t, 1.0, *log.TrainingLoad)
	assert.Equal(t, 85.0, log.RecoveryScore)
}

func TestRecoveryService_Recommendations(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 28, 7, 30, 0, 0, time.UTC)

	t.Run("no logs", func(t *testing.T) {
		svc, _, _ := newRecoveryService(now)
		rec, err := svc.Recommendations(ctx, "u1")
		require.NoError(t, err)
		assert.Nil(t, rec.LatestScore)
		assert.False(t, rec.ShouldRest)
		require.Len(t, rec.Recommendations, 1)
	})

	t.Run("low score recommends rest", func(t *testing.T) {
		svc, _, _ := newRecoveryService(now)
		_, err := svc.Checkin(ctx, "u1", domain.RecoveryCheckin{SleepHours: f64(4), SleepQuality: intp(1), FatigueLevel: intp(10)})
		require.NoError(t, err)

		rec, err := svc.Recommendations(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, rec.ShouldRest)
		require.NotNil(t, rec.AverageScore)
		assert.Contains(t, rec.Recommendations[0], "rest day")
		assert.Contains(t, rec.Recommendations[1], "under 7 hours")
	})

	t.Run("well recovered", func(t *testing.T) {
		svc, _, _ := newRecoveryService(now)
		_, err := svc.Checkin(ctx, "u1", domain.RecoveryCheckin{SleepHours: f64(8), SleepQuality: intp(5), FatigueLevel: intp(1)})
		require.NoError(t, err)

		rec, err := svc.Recommendations(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, rec.ShouldRest)
		assert.Len(t, rec.Recommendations, 1)
		assert.Contains(t, rec.Recommendations[0], "hard training")
	})

	t.Run("load spike adds deload note", func(t *testing.T) {
		svc, _, volumes := newRecoveryService(now)
		require.NoError(t, volumes.Increment(ctx, "u1", now, domain.VolumeDelta{Volume: 9000}))
		_, err := svc.Checkin(ctx, "u1", domain.RecoveryCheckin{SleepHours: f64(8), SleepQuality: intp(4), FatigueLevel: intp(2)})
		require.NoError(t, err)

		rec, err := svc.Recommendations(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, rec.ACWR)
		assert.Greater(t, *rec.ACWR, 1.5)
		assert.Contains(t, rec.Recommendations[len(rec.Recommendations)-1], "deload")
	})
}
