package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mansoorceksport/fitcoach/internal/domain"
)

// DefaultHydrationTargetMl applies to days without an explicit target
const DefaultHydrationTargetMl = 2500

type HydrationService struct {
	repo domain.HydrationRepository
	now  func() time.Time
}

func NewHydrationService(repo domain.HydrationRepository) *HydrationService {
	return &HydrationService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *HydrationService) GetDay(ctx context.Context, userID string, day time.Time) (*domain.HydrationLog, error) {
	return s.repo.GetOrCreate(ctx, userID, day, DefaultHydrationTargetMl)
}

func (s *HydrationService) AddEntry(ctx context.Context, userID string, day time.Time, amountMl int) (*domain.HydrationLog, error) {
	if amountMl <= 0 {
		return nil, fmt.Errorf("%w: amount_ml must be positive", domain.ErrInvalidInput)
	}
	entry := domain.HydrationEntry{
		ID:       uuid.NewString(),
		AmountMl: amountMl,
		LoggedAt: s.now(),
	}
	return s.repo.AddEntry(ctx, userID, day, entry, DefaultHydrationTargetMl)
}

func (s *HydrationService) SetTarget(ctx context.Context, userID string, day time.Time, targetMl int) (*domain.HydrationLog, error) {
	if targetMl <= 0 {
		return nil, fmt.Errorf("%w: target_ml must be positive", domain.ErrInvalidInput)
	}
	return s.repo.SetTarget(ctx, userID, day, targetMl)
}
