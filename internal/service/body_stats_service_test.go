package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateOneRepMax(t *testing.T) {
	assert.Equal(t, 100.0, EstimateOneRepMax(100, nil))
	assert.Equal(t, 100.0, EstimateOneRepMax(100, intp(1)))
	assert.InDelta(t, 116.67, EstimateOneRepMax(100, intp(5)), 0.01)
	assert.InDelta(t, 133.33, EstimateOneRepMax(100, intp(10)), 0.01)
}

func TestStrengthScore(t *testing.T) {
	records := []*domain.PersonalRecord{
		{ExerciseID: "bench", PRType: domain.PRTypeWeight, WeightKg: f64(100), Reps: intp(1)},
		{ExerciseID: "bench", PRType: domain.PRTypeWeight, WeightKg: f64(90), Reps: intp(5)},
		{ExerciseID: "squat", PRType: domain.PRTypeWeight, WeightKg: f64(140), Reps: intp(1)},
		{ExerciseID: "squat", PRType: domain.PRTypeReps, WeightKg: f64(120), Reps: intp(12)},
	}
	assert.Equal(t, 245.0, StrengthScore(records))
	assert.Equal(t, 0.0, StrengthScore(nil))
}

func TestBMI(t *testing.T) {
	bmi := BMI(80, 180)
	require.NotNil(t, bmi)
	assert.Equal(t, 24.7, *bmi)
	assert.Nil(t, BMI(80, 0))
}

type bodyStatsFixture struct {
	svc      *BodyStatsService
	profiles *testutil.ProfileRepo
	prs      *testutil.PRRepo
	files    *testutil.MemoryFileStore
	cache    *testutil.MemoryCache
}

func newBodyStatsFixture(now time.Time) *bodyStatsFixture {
	profiles := testutil.NewProfileRepo()
	prs := testutil.NewPRRepo()
	files := testutil.NewMemoryFileStore()
	cache := testutil.NewMemoryCache()
	svc := NewBodyStatsService(testutil.NewMeasurementRepo(), testutil.NewPhotoRepo(), profiles, prs, files, cache)
	svc.now = fixedClock(now)
	return &bodyStatsFixture{svc: svc, profiles: profiles, prs: prs, files: files, cache: cache}
}

func TestBodyStatsService_AddMeasurementUpdatesProfile(t *testing.T) {
	ctx := context.Background()
	f := newBodyStatsFixture(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	f.profiles.Put(&domain.UserProfile{UserID: "u1", WeightKg: f64(82), HeightCm: f64(180)})
	require.NoError(t, f.cache.Set(ctx, domain.TDEEKey("u1"), &domain.TDEEResult{TDEE: 1}, time.Hour))

	m, err := f.svc.AddMeasurement(ctx, "u1", &domain.BodyMeasurement{WeightKg: f64(80.5)})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.False(t, m.MeasuredAt.IsZero())

	profile, err := f.profiles.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 80.5, *profile.WeightKg)
	assert.False(t, f.cache.Has(domain.TDEEKey("u1")))
}

func TestBodyStatsService_Dashboard(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f := newBodyStatsFixture(now)
	f.profiles.Put(&domain.UserProfile{UserID: "u1", HeightCm: f64(180)})

	for i, w := range []float64{84, 82.5, 81} {
		_, err := f.svc.AddMeasurement(ctx, "u1", &domain.BodyMeasurement{
			WeightKg:   f64(w),
			BodyFatPct: f64(20 - float64(i)),
			MeasuredAt: now.AddDate(0, 0, -10+i*5),
		})
		require.NoError(t, err)
	}
	require.NoError(t, f.prs.Create(ctx, &domain.PersonalRecord{UserID: "u1", ExerciseID: "bench", PRType: domain.PRTypeWeight, WeightKg: f64(100), Reps: intp(1)}))

	dash, err := f.svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, dash.LatestWeightKg)
	assert.Equal(t, 81.0, *dash.LatestWeightKg)
	require.NotNil(t, dash.WeightTrend)
	assert.Equal(t, -3.0, *dash.WeightTrend)
	require.NotNil(t, dash.BodyFatPct)
	assert.Equal(t, 18.0, *dash.BodyFatPct)
	require.NotNil(t, dash.BMI)
	assert.Equal(t, 25.0, *dash.BMI)
	assert.Equal(t, 100.0, dash.StrengthScore)
	assert.Len(t, dash.MeasurementsHistory, 3)
}

func TestBodyStatsService_DashboardEmpty(t *testing.T) {
	f := newBodyStatsFixture(time.Now().UTC())

	dash, err := f.svc.Dashboard(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, dash.LatestWeightKg)
	assert.Nil(t, dash.BMI)
	assert.Nil(t, dash.WeightTrend)
	assert.Zero(t, dash.StrengthScore)
}

func TestBodyStatsService_UploadPhoto(t *testing.T) {
	ctx := context.Background()
	f := newBodyStatsFixture(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))

	photo, err := f.svc.UploadPhoto(ctx, "u1", []byte("fake-png-bytes"), "image/png", "")
	require.NoError(t, err)
	assert.Equal(t, "front", photo.Angle)
	assert.True(t, strings.HasPrefix(photo.S3URL, "memory://progress/u1/"))
	assert.True(t, strings.HasSuffix(photo.S3URL, ".png"))
	assert.Len(t, f.files.Objects, 1)

	_, err = f.svc.UploadPhoto(ctx, "u1", []byte("gif"), "image/gif", "front")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.UploadPhoto(ctx, "u1", []byte("png"), "image/png", "top")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.UploadPhoto(ctx, "u1", nil, "image/png", "side")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	photos, err := f.svc.ListPhotos(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, photos, 1)
}
