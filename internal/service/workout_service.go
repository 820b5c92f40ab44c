package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CalculateSessionVolume sums weight x reps over the sets. Missing values count as zero.
func CalculateSessionVolume(sets []*domain.SessionSet) float64 {
	var total float64
	for _, set := range sets {
		if set == nil || set.WeightKg == nil || set.Reps == nil {
			continue
		}
		total += *set.WeightKg * float64(*set.Reps)
	}
	return total
}

// volumeDelta summarizes a completed session for the daily volume row
func volumeDelta(sets []*domain.SessionSet) domain.VolumeDelta {
	delta := domain.VolumeDelta{
		Volume:   CalculateSessionVolume(sets),
		Sets:     len(sets),
		Sessions: 1,
	}
	for _, set := range sets {
		if set.Reps != nil {
			delta.Reps += *set.Reps
		}
	}
	return delta
}

// PRChecker is the part of PRService the workout flow depends on. RecordSet runs
// PR detection and persist under one lock and undoes the detection if persist fails.
type PRChecker interface {
	RecordSet(ctx context.Context, userID, exerciseID string, weightKg *float64, reps *int, setID string,
		persist func(ctx context.Context, isPR bool) error) (bool, error)
}

type WorkoutService struct {
	exerciseRepo domain.ExerciseRepository
	planRepo     domain.WorkoutPlanRepository
	sessionRepo  domain.WorkoutSessionRepository
	setRepo      domain.SessionSetRepository
	volumeRepo   domain.DailyVolumeRepository
	prChecker    PRChecker
	now          func() time.Time
}

func NewWorkoutService(
	exerciseRepo domain.ExerciseRepository,
	planRepo domain.WorkoutPlanRepository,
	sessionRepo domain.WorkoutSessionRepository,
	setRepo domain.SessionSetRepository,
	volumeRepo domain.DailyVolumeRepository,
	prChecker PRChecker,
) *WorkoutService {
	return &WorkoutService{
		exerciseRepo: exerciseRepo,
		planRepo:     planRepo,
		sessionRepo:  sessionRepo,
		setRepo:      setRepo,
		volumeRepo:   volumeRepo,
		prChecker:    prChecker,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ListExercises searches the exercise library
func (s *WorkoutService) ListExercises(ctx context.Context, filter domain.ExerciseFilter) ([]*domain.Exercise, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	return s.exerciseRepo.List(ctx, filter)
}

// CreateExercise adds a custom exercise owned by userID
func (s *WorkoutService) CreateExercise(ctx context.Context, userID string, ex *domain.Exercise) (*domain.Exercise, error) {
	ex.Name = strings.TrimSpace(ex.Name)
	if ex.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if ex.Category == "" {
		ex.Category = "strength"
	}
	ex.ID = uuid.NewString()
	ex.IsCustom = true
	ex.CreatedBy = userID

	if err := s.exerciseRepo.Create(ctx, ex); err != nil {
		return nil, err
	}
	return ex, nil
}

func (s *WorkoutService) CreatePlan(ctx context.Context, userID string, plan *domain.WorkoutPlan) (*domain.WorkoutPlan, error) {
	plan.Name = strings.TrimSpace(plan.Name)
	if plan.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	plan.ID = uuid.NewString()
	plan.UserID = userID
	plan.IsActive = true
	if plan.Days == nil {
		plan.Days = []domain.PlanDay{}
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *WorkoutService) ListPlans(ctx context.Context, userID string) ([]*domain.WorkoutPlan, error) {
	return s.planRepo.ListByUser(ctx, userID)
}

// GetPlan returns ErrForbidden when the plan belongs to someone else
func (s *WorkoutService) GetPlan(ctx context.Context, userID, planID string) (*domain.WorkoutPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return plan, nil
}

// UpdatePlan applies the non-nil fields of update to one of the user's plans
func (s *WorkoutService) UpdatePlan(ctx context.Context, userID, planID string, update domain.WorkoutPlanUpdate) (*domain.WorkoutPlan, error) {
	plan, err := s.GetPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		plan.Name = name
	}
	if update.Description != nil {
		plan.Description = *update.Description
	}
	if update.Goal != nil {
		plan.Goal = *update.Goal
	}
	if update.IsActive != nil {
		plan.IsActive = *update.IsActive
	}
	if update.Days != nil {
		plan.Days = *update.Days
	}

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *WorkoutService) DeletePlan(ctx context.Context, userID, planID string) error {
	if _, err := s.GetPlan(ctx, userID, planID); err != nil {
		return err
	}
	return s.planRepo.Delete(ctx, planID)
}

// StartSessionInput opens a session, optionally from one of the user's plans
type StartSessionInput struct {
	PlanID string `json:"plan_id"`
	Name   string `json:"name"`
	Notes  string `json:"notes"`
}

func (s *WorkoutService) StartSession(ctx context.Context, userID string, input StartSessionInput) (*domain.WorkoutSession, error) {
	name := strings.TrimSpace(input.Name)
	if input.PlanID != "" {
		plan, err := s.GetPlan(ctx, userID, input.PlanID)
		if err != nil {
			return nil, err
		}
		if name == "" {
			name = plan.Name
		}
	}
	if name == "" {
		name = "Workout " + s.now().Format("2006-01-02")
	}

	session := &domain.WorkoutSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		PlanID:    input.PlanID,
		Name:      name,
		StartedAt: s.now(),
		Notes:     input.Notes,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessions pages through the user's sessions, newest first. Pages start at 1.
func (s *WorkoutService) ListSessions(ctx context.Context, userID string, page, pageSize int) ([]*domain.WorkoutSession, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return s.sessionRepo.ListByUser(ctx, userID, (page-1)*pageSize, pageSize)
}

func (s *WorkoutService) ownedSession(ctx context.Context, userID, sessionID string) (*domain.WorkoutSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return session, nil
}

// GetSession returns the session with its logged sets
func (s *WorkoutService) GetSession(ctx context.Context, userID, sessionID string) (*domain.WorkoutSession, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	sets, err := s.setRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Sets = sets
	return session, nil
}

// CompleteSession closes the session, stores its duration and volume, and
// adds the session onto the day's volume totals.
func (s *WorkoutService) CompleteSession(ctx context.Context, userID, sessionID string) (*domain.WorkoutSession, error) {
	session, err := s.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsCompleted() {
		return nil, fmt.Errorf("%w: session already completed", domain.ErrInvalidInput)
	}

	completedAt := s.now()
	duration := int(completedAt.Sub(session.StartedAt).Minutes())
	if duration < 0 {
		duration = 0
	}
	delta := volumeDelta(session.Sets)

	if err := s.sessionRepo.Complete(ctx, session.ID, completedAt, duration, delta.Volume); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: session already completed", domain.ErrInvalidInput)
		}
		return nil, err
	}
	if err := s.volumeRepo.Increment(ctx, userID, completedAt, delta); err != nil {
		// Reopen so a retry can complete the session and count its volume
		reopenCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if reopenErr := s.sessionRepo.Reopen(reopenCtx, session.ID, completedAt); reopenErr != nil {
			logrus.WithError(reopenErr).WithField("session_id", session.ID).
				Error("failed to reopen session after volume update failed; run recalculate_volumes")
		}
		return nil, fmt.Errorf("failed to update daily volume: %w", err)
	}

	session.CompletedAt = &completedAt
	session.DurationMinutes = &duration
	session.TotalVolumeKg = &delta.Volume

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"session_id": session.ID,
		"volume_kg":  delta.Volume,
		"sets":       delta.Sets,
	}).Info("workout session completed")

	return session, nil
}

// LogSetInput is one performed set
type LogSetInput struct {
	ExerciseID      string   `json:"exercise_id"`
	SetNumber       int      `json:"set_number"`
	WeightKg        *float64 `json:"weight_kg"`
	Reps            *int     `json:"reps"`
	DurationSeconds *int     `json:"duration_seconds"`
	RPE             *float64 `json:"rpe"`
	Notes           string   `json:"notes"`
}

// LogSet runs PR detection for the set and stores it with the result
func (s *WorkoutService) LogSet(ctx context.Context, userID, sessionID string, input LogSetInput) (*domain.SessionSet, error) {
	if input.ExerciseID == "" {
		return nil, fmt.Errorf("%w: exercise_id is required", domain.ErrInvalidInput)
	}
	if input.SetNumber < 1 {
		return nil, fmt.Errorf("%w: set_number must be at least 1", domain.ErrInvalidInput)
	}

	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	// Completed sessions have already been rolled into the daily volume
	if session.IsCompleted() {
		return nil, fmt.Errorf("%w: session already completed", domain.ErrInvalidInput)
	}
	if _, err := s.exerciseRepo.GetByID(ctx, input.ExerciseID); err != nil {
		return nil, err
	}

	set := &domain.SessionSet{
		ID:              uuid.NewString(),
		SessionID:       sessionID,
		UserID:          userID,
		ExerciseID:      input.ExerciseID,
		SetNumber:       input.SetNumber,
		WeightKg:        input.WeightKg,
		Reps:            input.Reps,
		DurationSeconds: input.DurationSeconds,
		RPE:             input.RPE,
		Notes:           input.Notes,
	}

	_, err = s.prChecker.RecordSet(ctx, userID, input.ExerciseID, input.WeightKg, input.Reps, set.ID,
		func(ctx context.Context, isPR bool) error {
			set.IsPR = isPR
			return s.setRepo.Create(ctx, set)
		})
	if err != nil {
		return nil, err
	}
	return set, nil
}
