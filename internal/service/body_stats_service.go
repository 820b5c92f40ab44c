package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var photoExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

var photoAngles = map[string]bool{"front": true, "side": true, "back": true}

// EstimateOneRepMax uses the Epley formula. Singles and unknown reps return the weight.
func EstimateOneRepMax(weightKg float64, reps *int) float64 {
	if reps == nil || *reps <= 1 {
		return weightKg
	}
	return weightKg * (1 + float64(*reps)/30)
}

// StrengthScore sums the best estimated 1RM of each exercise over weight PRs
func StrengthScore(records []*domain.PersonalRecord) float64 {
	best := make(map[string]float64)
	for _, r := range records {
		if r.PRType != domain.PRTypeWeight || r.WeightKg == nil {
			continue
		}
		if e := EstimateOneRepMax(*r.WeightKg, r.Reps); e > best[r.ExerciseID] {
			best[r.ExerciseID] = e
		}
	}
	var total float64
	for _, v := range best {
		total += v
	}
	return roundTo1(total)
}

// BMI is weight over height in metres squared, rounded to one decimal
func BMI(weightKg, heightCm float64) *float64 {
	if heightCm <= 0 {
		return nil
	}
	m := heightCm / 100
	v := roundTo1(weightKg / (m * m))
	return &v
}

type BodyStatsService struct {
	measurementRepo domain.BodyMeasurementRepository
	photoRepo       domain.ProgressPhotoRepository
	profileRepo     domain.ProfileRepository
	prRepo          domain.PersonalRecordRepository
	fileStore       domain.FileRepository
	cache           domain.CacheRepository
	now             func() time.Time
}

func NewBodyStatsService(
	measurementRepo domain.BodyMeasurementRepository,
	photoRepo domain.ProgressPhotoRepository,
	profileRepo domain.ProfileRepository,
	prRepo domain.PersonalRecordRepository,
	fileStore domain.FileRepository,
	cache domain.CacheRepository,
) *BodyStatsService {
	return &BodyStatsService{
		measurementRepo: measurementRepo,
		photoRepo:       photoRepo,
		profileRepo:     profileRepo,
		prRepo:          prRepo,
		fileStore:       fileStore,
		cache:           cache,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// AddMeasurement stores the measurement and mirrors a new weight onto the profile
func (s *BodyStatsService) AddMeasurement(ctx context.Context, userID string, m *domain.BodyMeasurement) (*domain.BodyMeasurement, error) {
	m.ID = uuid.NewString()
	m.UserID = userID
	if m.MeasuredAt.IsZero() {
		m.MeasuredAt = s.now()
	}

	if err := s.measurementRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	if m.WeightKg != nil {
		if _, err := s.profileRepo.Update(ctx, userID, &domain.ProfileUpdate{WeightKg: m.WeightKg}); err != nil {
			return nil, fmt.Errorf("failed to update profile weight: %w", err)
		}
		if err := s.cache.Delete(ctx, domain.TDEEKey(userID)); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("failed to invalidate tdee cache")
		}
	}
	return m, nil
}

func (s *BodyStatsService) ListMeasurements(ctx context.Context, userID string, limit int) ([]*domain.BodyMeasurement, error) {
	return s.measurementRepo.ListByUser(ctx, userID, limit)
}

// UploadPhoto stores the image under progress/{user}/{ulid}.{ext} and records it
func (s *BodyStatsService) UploadPhoto(ctx context.Context, userID string, data []byte, contentType, angle string) (*domain.ProgressPhoto, error) {
	ext, ok := photoExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: photo must be JPEG, PNG or WebP", domain.ErrInvalidInput)
	}
	if angle == "" {
		angle = "front"
	}
	if !photoAngles[angle] {
		return nil, fmt.Errorf("%w: angle must be front, side or back", domain.ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: photo is empty", domain.ErrInvalidInput)
	}

	now := s.now()
	id := ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
	key := fmt.Sprintf("progress/%s/%s.%s", userID, id, ext)

	url, err := s.fileStore.Upload(ctx, data, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload photo: %w", err)
	}

	photo := &domain.ProgressPhoto{
		ID:      id,
		UserID:  userID,
		S3URL:   url,
		Angle:   angle,
		TakenAt: now,
	}
	if err := s.photoRepo.Create(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

func (s *BodyStatsService) ListPhotos(ctx context.Context, userID string) ([]*domain.ProgressPhoto, error) {
	return s.photoRepo.ListByUser(ctx, userID)
}

// Dashboard combines measurements, profile and PRs into one overview
func (s *BodyStatsService) Dashboard(ctx context.Context, userID string) (*domain.BodyStatsDashboard, error) {
	var (
		measurements []*domain.BodyMeasurement
		profile      *domain.UserProfile
		records      []*domain.PersonalRecord
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		measurements, err = s.measurementRepo.ListByUser(gCtx, userID, 30)
		return err
	})
	g.Go(func() error {
		p, err := s.profileRepo.GetByUserID(gCtx, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = s.prRepo.ListByUser(gCtx, userID, 1000)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dash := &domain.BodyStatsDashboard{
		StrengthScore:       StrengthScore(records),
		MeasurementsHistory: measurements,
	}

	// measurements are newest first
	var weights []float64
	for _, m := range measurements {
		if m.WeightKg != nil {
			weights = append(weights, *m.WeightKg)
		}
		if dash.BodyFatPct == nil && m.BodyFatPct != nil {
			dash.BodyFatPct = m.BodyFatPct
		}
	}
	if len(weights) > 0 {
		latest := weights[0]
		dash.LatestWeightKg = &latest
	}
	if len(weights) > 1 {
		trend := roundTo1(weights[0] - weights[len(weights)-1])
		dash.WeightTrend = &trend
	}

	weight := dash.LatestWeightKg
	if weight == nil && profile != nil {
		weight = profile.WeightKg
	}
	if weight != nil && profile != nil && profile.HeightCm != nil {
		dash.BMI = BMI(*weight, *profile.HeightCm)
	}

	return dash, nil
}
