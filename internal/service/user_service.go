package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/sirupsen/logrus"
)

var unitSystems = map[string]bool{"metric": true, "imperial": true}

// UserWithProfile is the /me payload
type UserWithProfile struct {
	*domain.User
	Profile *domain.UserProfile `json:"profile"`
}

type UserService struct {
	userRepo    domain.UserRepository
	profileRepo domain.ProfileRepository
	cache       domain.CacheRepository
}

func NewUserService(userRepo domain.UserRepository, profileRepo domain.ProfileRepository, cache domain.CacheRepository) *UserService {
	return &UserService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		cache:       cache,
	}
}

func (s *UserService) GetMe(ctx context.Context, userID string) (*UserWithProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return &UserWithProfile{User: user, Profile: profile}, nil
}

// UpdateProfile applies the non-nil fields and drops the cached calorie target
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update *domain.ProfileUpdate) (*domain.UserProfile, error) {
	if update.Gender != nil {
		g := strings.ToLower(strings.TrimSpace(*update.Gender))
		update.Gender = &g
	}
	if update.ActivityLevel != nil {
		if _, ok := activityMultipliers[*update.ActivityLevel]; !ok {
			return nil, fmt.Errorf("%w: unknown activity_level %q", domain.ErrInvalidInput, *update.ActivityLevel)
		}
	}
	if update.FitnessGoal != nil {
		if _, ok := goalAdjustments[*update.FitnessGoal]; !ok {
			return nil, fmt.Errorf("%w: unknown fitness_goal %q", domain.ErrInvalidInput, *update.FitnessGoal)
		}
	}
	if update.Units != nil && !unitSystems[*update.Units] {
		return nil, fmt.Errorf("%w: units must be metric or imperial", domain.ErrInvalidInput)
	}

	profile, err := s.profileRepo.Update(ctx, userID, update)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, domain.TDEEKey(userID)); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to invalidate tdee cache")
	}
	return profile, nil
}
