package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	acuteWindowDays    = 7
	chronicWindowDays  = 28
	recommendationLogs = 7

	restScoreThreshold = 40
	highACWR           = 1.5
)

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// sleepHoursScore peaks at 40 between 7 and 9 hours
func sleepHoursScore(hours *float64) float64 {
	if hours == nil {
		return 20
	}
	h := *hours
	switch {
	case h < 4 || h > 12:
		return 0
	case h < 7:
		return (h - 4) / 3 * 40
	case h <= 9:
		return 40
	default:
		return 40 - (h-9)/3*20
	}
}

func sleepQualityScore(quality *int) float64 {
	if quality == nil {
		return 10
	}
	return clamp(float64(*quality), 1, 5) / 5 * 20
}

func fatigueScore(fatigue *int) float64 {
	if fatigue == nil {
		return 12.5
	}
	return (10 - clamp(float64(*fatigue), 1, 10)) / 9 * 25
}

func trainingLoadScore(load *float64) float64 {
	if load == nil {
		return 15
	}
	return (1 - clamp(*load, 0, 1)) * 15
}

// CalculateRecoveryScore weighs sleep (40), sleep quality (20), inverse
// fatigue (25) and training load (15). Missing inputs fall back to neutral
// values so a score is always produced. The result is clamped to [0, 100].
func CalculateRecoveryScore(sleepHours *float64, sleepQuality *int, fatigueLevel *int, trainingLoad *float64) float64 {
	score := sleepHoursScore(sleepHours) +
		sleepQualityScore(sleepQuality) +
		fatigueScore(fatigueLevel) +
		trainingLoadScore(trainingLoad)
	return clamp(score, 0, 100)
}

// TrainingLoadFromACWR maps an acute:chronic workload ratio onto [0, 1].
// A ratio of 0.8 or below is no load, 1.5 and above is full load.
func TrainingLoadFromACWR(ratio float64) float64 {
	return clamp((ratio-0.8)/0.7, 0, 1)
}

type RecoveryService struct {
	recoveryRepo domain.RecoveryRepository
	volumeRepo   domain.DailyVolumeRepository
	now          func() time.Time
}

func NewRecoveryService(recoveryRepo domain.RecoveryRepository, volumeRepo domain.DailyVolumeRepository) *RecoveryService {
	return &RecoveryService{
		recoveryRepo: recoveryRepo,
		volumeRepo:   volumeRepo,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ACWR returns the 7-day over 28-day average daily volume ratio ending today,
// or nil when there is no chronic volume to compare against.
func (s *RecoveryService) ACWR(ctx context.Context, userID string) (*float64, error) {
	today := domain.StartOfDay(s.now())
	from := today.AddDate(0, 0, -(chronicWindowDays - 1))
	acuteFrom := today.AddDate(0, 0, -(acuteWindowDays - 1))

	volumes, err := s.volumeRepo.ListRange(ctx, userID, from, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily volumes: %w", err)
	}

	var acute, chronic float64
	for _, v := range volumes {
		chronic += v.TotalVolume
		if !v.Date.Before(acuteFrom) {
			acute += v.TotalVolume
		}
	}
	if chronic <= 0 {
		return nil, nil
	}

	ratio := (acute / acuteWindowDays) / (chronic / chronicWindowDays)
	ratio = math.Round(ratio*100) / 100
	return &ratio, nil
}

// Checkin merges the input into the day's log, recomputes the training load
// and recovery score, then saves it.
func (s *RecoveryService) Checkin(ctx context.Context, userID string, in domain.RecoveryCheckin) (*domain.RecoveryLog, error) {
	day := s.now()
	if in.Date != nil {
		day = *in.Date
	}
	day = domain.StartOfDay(day)

	log, err := s.recoveryRepo.GetByDate(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = &domain.RecoveryLog{
			ID:       uuid.NewString(),
			UserID:   userID,
			Date:     day,
			Soreness: []domain.SorenessEntry{},
		}
	}

	if in.SleepHours != nil {
		log.SleepHours = in.SleepHours
	}
	if in.SleepQuality != nil {
		log.SleepQuality = in.SleepQuality
	}
	if in.FatigueLevel != nil {
		log.FatigueLevel = in.FatigueLevel
	}
	if in.StressLevel != nil {
		log.StressLevel = in.StressLevel
	}
	if in.Mood != nil {
		log.Mood = in.Mood
	}
	if in.Notes != nil {
		log.Notes = *in.Notes
	}
	for _, entry := range in.Soreness {
		if entry.RecordedAt.IsZero() {
			entry.RecordedAt = s.now()
		}
		log.Soreness = append(log.Soreness, entry)
	}

	ratio, err := s.ACWR(ctx, userID)
	if err != nil {
		return nil, err
	}
	log.TrainingLoad = nil
	if ratio != nil {
		load := TrainingLoadFromACWR(*ratio)
		log.TrainingLoad = &load
	}

	log.RecoveryScore = roundTo1(CalculateRecoveryScore(log.SleepHours, log.SleepQuality, log.FatigueLevel, log.TrainingLoad))

	if err := s.recoveryRepo.Save(ctx, log); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":        userID,
		"date":           day.Format("2006-01-02"),
		"recovery_score": log.RecoveryScore,
	}).Info("recovery check-in saved")

	return log, nil
}

func (s *RecoveryService) ListLogs(ctx context.Context, userID string, limit int) ([]*domain.RecoveryLog, error) {
	if limit <= 0 || limit > 90 {
		limit = 30
	}
	return s.recoveryRepo.ListRecent(ctx, userID, limit)
}

// LatestScore returns the most recent recovery score, or nil without logs
func (s *RecoveryService) LatestScore(ctx context.Context, userID string) (*float64, error) {
	logs, err := s.recoveryRepo.ListRecent(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	score := logs[0].RecoveryScore
	return &score, nil
}

// Recommendations turns the last week of logs and the workload ratio into guidance
func (s *RecoveryService) Recommendations(ctx context.Context, userID string) (*domain.RecoveryRecommendation, error) {
	var (
		logs  []*domain.RecoveryLog
		ratio *float64
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		logs, err = s.recoveryRepo.ListRecent(gCtx, userID, recommendationLogs)
		return err
	})
	g.Go(func() error {
		var err error
		ratio, err = s.ACWR(gCtx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rec := &domain.RecoveryRecommendation{
		ACWR:            ratio,
		Recommendations: []string{},
	}

	if len(logs) == 0 {
		rec.Recommendations = append(rec.Recommendations,
			"Log a daily recovery check-in to get personalized recommendations.")
		return rec, nil
	}

	latest := logs[0].RecoveryScore
	rec.LatestScore = &latest

	var total, sleepTotal float64
	sleepDays := 0
	for _, l := range logs {
		total += l.RecoveryScore
		if l.SleepHours != nil {
			sleepTotal += *l.SleepHours
			sleepDays++
		}
	}
	avg := roundTo1(total / float64(len(logs)))
	rec.AverageScore = &avg
	rec.ShouldRest = latest < restScoreThreshold

	switch {
	case latest < restScoreThreshold:
		rec.Recommendations = append(rec.Recommendations,
			"Take a rest day. Your recovery is low, so prioritize sleep, hydration and light stretching.")
	case latest < 60:
		rec.Recommendations = append(rec.Recommendations,
			"Keep today to light active recovery such as walking, mobility work or an easy swim.")
	case latest < 80:
		rec.Recommendations = append(rec.Recommendations,
			"Moderate training is fine today. Keep intensity controlled and avoid maximal efforts.")
	default:
		rec.Recommendations = append(rec.Recommendations,
			"You are well recovered and ready for a hard training session.")
	}

	if sleepDays > 0 && sleepTotal/float64(sleepDays) < 7 {
		rec.Recommendations = append(rec.Recommendations,
			"Your average sleep is under 7 hours. Aim for 7-9 hours to recover faster.")
	}
	if ratio != nil && *ratio > highACWR {
		rec.Recommendations = append(rec.Recommendations,
			"Your training load rose sharply this week compared to the last month. Consider a deload to reduce injury risk.")
	}

	return rec, nil
}
