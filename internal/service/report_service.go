package service

import (
	"context"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"golang.org/x/sync/errgroup"
)

// ReportService aggregates activity over the trailing week or month
type ReportService struct {
	volumeRepo    domain.DailyVolumeRepository
	prRepo        domain.PersonalRecordRepository
	recoveryRepo  domain.RecoveryRepository
	nutritionRepo domain.NutritionLogRepository
	hydrationRepo domain.HydrationRepository
	now           func() time.Time
}

func NewReportService(
	volumeRepo domain.DailyVolumeRepository,
	prRepo domain.PersonalRecordRepository,
	recoveryRepo domain.RecoveryRepository,
	nutritionRepo domain.NutritionLogRepository,
	hydrationRepo domain.HydrationRepository,
) *ReportService {
	return &ReportService{
		volumeRepo:    volumeRepo,
		prRepo:        prRepo,
		recoveryRepo:  recoveryRepo,
		nutritionRepo: nutritionRepo,
		hydrationRepo: hydrationRepo,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *ReportService) Weekly(ctx context.Context, userID string) (*domain.Report, error) {
	return s.build(ctx, userID, 7)
}

func (s *ReportService) Monthly(ctx context.Context, userID string) (*domain.Report, error) {
	return s.build(ctx, userID, 30)
}

func average(sum float64, n int) *float64 {
	if n == 0 {
		return nil
	}
	v := roundTo1(sum / float64(n))
	return &v
}

// build covers the last days calendar days including today
func (s *ReportService) build(ctx context.Context, userID string, days int) (*domain.Report, error) {
	now := s.now()
	end := domain.StartOfDay(now)
	start := end.AddDate(0, 0, -(days - 1))
	report := &domain.Report{PeriodStart: start, PeriodEnd: now}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		volumes, err := s.volumeRepo.ListRange(gCtx, userID, start, end)
		if err != nil {
			return err
		}
		for _, v := range volumes {
			report.SessionsCompleted += v.SessionCount
			report.TotalVolumeKg += v.TotalVolume
		}
		report.TotalVolumeKg = roundTo1(report.TotalVolumeKg)
		return nil
	})

	g.Go(func() error {
		n, err := s.prRepo.CountBetween(gCtx, userID, start, now)
		if err != nil {
			return err
		}
		report.PersonalRecords = n
		return nil
	})

	g.Go(func() error {
		logs, err := s.recoveryRepo.ListRange(gCtx, userID, start, end)
		if err != nil {
			return err
		}
		var sum float64
		for _, l := range logs {
			sum += l.RecoveryScore
		}
		report.AverageRecoveryScore = average(sum, len(logs))
		return nil
	})

	g.Go(func() error {
		logs, err := s.nutritionRepo.ListRange(gCtx, userID, start, end)
		if err != nil {
			return err
		}
		var sum float64
		n := 0
		for _, l := range logs {
			if len(l.Meals) == 0 {
				continue
			}
			sum += l.TotalCalories
			n++
		}
		report.AverageCalories = average(sum, n)
		return nil
	})

	g.Go(func() error {
		logs, err := s.hydrationRepo.ListRange(gCtx, userID, start, end)
		if err != nil {
			return err
		}
		var sum float64
		n := 0
		for _, l := range logs {
			if l.TotalMl == 0 {
				continue
			}
			sum += float64(l.TotalMl)
			n++
		}
		report.AverageHydrationMl = average(sum, n)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}
