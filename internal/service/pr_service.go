package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/telemetry"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const prListCacheTTL = 5 * time.Minute

// PRLockKey is the lock guarding PR detection for one user and exercise
func PRLockKey(userID, exerciseID string) string {
	return fmt.Sprintf("lock:pr:%s:%s", userID, exerciseID)
}

// PRService detects and lists personal records
type PRService struct {
	prRepo       domain.PersonalRecordRepository
	exerciseRepo domain.ExerciseRepository
	locker       domain.KeyLocker
	cache        domain.CacheRepository
	now          func() time.Time
}

func NewPRService(
	prRepo domain.PersonalRecordRepository,
	exerciseRepo domain.ExerciseRepository,
	locker domain.KeyLocker,
	cache domain.CacheRepository,
) *PRService {
	return &PRService{
		prRepo:       prRepo,
		exerciseRepo: exerciseRepo,
		locker:       locker,
		cache:        cache,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CheckAndCreatePR runs both PR checks for a logged set under the per-exercise
// lock and reports whether any record was created.
func (s *PRService) CheckAndCreatePR(ctx context.Context, userID, exerciseID string, weightKg *float64, reps *int, setID string) (bool, error) {
	return s.RecordSet(ctx, userID, exerciseID, weightKg, reps, setID, nil)
}

// RecordSet runs the PR checks and then persist, both under the per-exercise lock.
// If persist fails, the records minted for setID are removed before the lock is
// released, so no other request ever compares against them.
func (s *PRService) RecordSet(
	ctx context.Context,
	userID, exerciseID string,
	weightKg *float64,
	reps *int,
	setID string,
	persist func(ctx context.Context, isPR bool) error,
) (bool, error) {
	var isPR bool
	err := s.locker.WithLock(ctx, PRLockKey(userID, exerciseID), func(ctx context.Context) error {
		var err error
		isPR, err = s.checkAndCreateLocked(ctx, userID, exerciseID, weightKg, reps, setID)
		if err != nil || persist == nil {
			return err
		}
		if err := persist(ctx, isPR); err != nil {
			if isPR {
				s.discardSetRecords(ctx, userID, setID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if isPR {
		s.invalidateList(ctx, userID)
	}
	return isPR, nil
}

// discardSetRecords drops the records minted for a set that was never stored
func (s *PRService) discardSetRecords(ctx context.Context, userID, setID string) {
	// The holder's ctx may be what failed persist
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	removed, err := s.prRepo.DeleteBySessionSet(cleanupCtx, userID, setID)
	entry := logrus.WithFields(logrus.Fields{"user_id": userID, "session_set_id": setID})
	if err != nil {
		entry.WithError(err).Error("failed to discard personal records of unsaved set")
		return
	}
	entry.WithField("removed", removed).Warn("discarded personal records of unsaved set")
}

// checkAndCreateLocked must only run while holding PRLockKey(userID, exerciseID)
func (s *PRService) checkAndCreateLocked(ctx context.Context, userID, exerciseID string, weightKg *float64, reps *int, setID string) (bool, error) {
	created := false

	// Weight PR
	if weightKg != nil {
		best, err := s.prRepo.MaxWeight(ctx, userID, exerciseID)
		if err != nil {
			return false, fmt.Errorf("failed to read max weight: %w", err)
		}
		if best == nil || *weightKg > *best {
			if err := s.record(ctx, userID, exerciseID, setID, domain.PRTypeWeight, weightKg, reps, best); err != nil {
				return false, err
			}
			created = true
		}
	}

	// Reps PR at this exact weight
	if weightKg != nil && reps != nil {
		best, err := s.prRepo.MaxRepsAtWeight(ctx, userID, exerciseID, *weightKg)
		if err != nil {
			return false, fmt.Errorf("failed to read max reps: %w", err)
		}
		if best == nil || *reps > *best {
			var previous *float64
			if best != nil {
				v := float64(*best)
				previous = &v
			}
			if err := s.record(ctx, userID, exerciseID, setID, domain.PRTypeReps, weightKg, reps, previous); err != nil {
				return false, err
			}
			created = true
		}
	}

	return created, nil
}

func (s *PRService) record(ctx context.Context, userID, exerciseID, setID, prType string, weightKg *float64, reps *int, previous *float64) error {
	now := s.now()
	pr := &domain.PersonalRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		ExerciseID:   exerciseID,
		SessionSetID: setID,
		PRType:       prType,
		WeightKg:     weightKg,
		Reps:         reps,
		PreviousBest: previous,
		AchievedAt:   now,
		CreatedAt:    now,
	}
	if err := s.prRepo.Create(ctx, pr); err != nil {
		return fmt.Errorf("failed to create %s PR: %w", prType, err)
	}

	telemetry.PersonalRecordsCreated.Add(ctx, 1, attribute.String("pr_type", prType))
	logrus.WithFields(logrus.Fields{
		"user_id":     userID,
		"exercise_id": exerciseID,
		"pr_type":     prType,
	}).Info("personal record created")
	return nil
}

// ListPRs returns the user's records newest first with exercise names resolved
func (s *PRService) ListPRs(ctx context.Context, userID string, limit int) ([]*domain.PersonalRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	key := domain.PRListKey(userID, limit)

	var cached []*domain.PersonalRecord
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		logrus.WithError(err).WithField("user_id", userID).Warn("pr list cache read failed")
	}

	records, err := s.prRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if err := s.attachExerciseNames(ctx, records); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, records, prListCacheTTL); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("pr list cache write failed")
	}
	return records, nil
}

func (s *PRService) PendingCelebrations(ctx context.Context, userID string) ([]*domain.PersonalRecord, error) {
	records, err := s.prRepo.ListPendingCelebrations(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachExerciseNames(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// MarkCelebrated flags a record as shown. Comparisons never look at this flag.
func (s *PRService) MarkCelebrated(ctx context.Context, userID, prID string) error {
	if err := s.prRepo.MarkCelebrated(ctx, userID, prID); err != nil {
		return err
	}
	s.invalidateList(ctx, userID)
	return nil
}

func (s *PRService) attachExerciseNames(ctx context.Context, records []*domain.PersonalRecord) error {
	if len(records) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var ids []string
	for _, r := range records {
		if !seen[r.ExerciseID] {
			seen[r.ExerciseID] = true
			ids = append(ids, r.ExerciseID)
		}
	}

	names, err := s.exerciseRepo.NamesByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to resolve exercise names: %w", err)
	}
	for _, r := range records {
		r.ExerciseName = names[r.ExerciseID]
	}
	return nil
}

func (s *PRService) invalidateList(ctx context.Context, userID string) {
	if err := s.cache.DeleteByPrefix(ctx, domain.PRListKeyPrefix(userID)); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to invalidate pr list cache")
	}
}
