package domain

import (
	"context"
	"time"
)

// User is an account that signs in with email and password
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	IsActive     bool      `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// Gender values understood by the BMR formula. Anything else uses the averaged offset.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// UserProfile holds body metrics and preferences. One per user.
type UserProfile struct {
	UserID              string     `bson:"_id" json:"user_id"`
	FirstName           *string    `bson:"first_name,omitempty" json:"first_name"`
	LastName            *string    `bson:"last_name,omitempty" json:"last_name"`
	DateOfBirth         *time.Time `bson:"date_of_birth,omitempty" json:"date_of_birth"`
	Gender              *string    `bson:"gender,omitempty" json:"gender"`
	HeightCm            *float64   `bson:"height_cm,omitempty" json:"height_cm"`
	WeightKg            *float64   `bson:"weight_kg,omitempty" json:"weight_kg"`
	FitnessGoal         *string    `bson:"fitness_goal,omitempty" json:"fitness_goal"`
	ActivityLevel       *string    `bson:"activity_level,omitempty" json:"activity_level"`
	ExperienceLevel     *string    `bson:"experience_level,omitempty" json:"experience_level"`
	AvailableEquipment  []string   `bson:"available_equipment,omitempty" json:"available_equipment"`
	DietaryRestrictions []string   `bson:"dietary_restrictions,omitempty" json:"dietary_restrictions"`
	Units               string     `bson:"units" json:"units"`
	AvatarURL           *string    `bson:"avatar_url,omitempty" json:"avatar_url"`
	UpdatedAt           time.Time  `bson:"updated_at" json:"updated_at"`
}

// ProfileUpdate is a partial update; nil fields are left untouched
type ProfileUpdate struct {
	FirstName           *string    `json:"first_name"`
	LastName            *string    `json:"last_name"`
	DateOfBirth         *time.Time `json:"date_of_birth"`
	Gender              *string    `json:"gender"`
	HeightCm            *float64   `json:"height_cm"`
	WeightKg            *float64   `json:"weight_kg"`
	FitnessGoal         *string    `json:"fitness_goal"`
	ActivityLevel       *string    `json:"activity_level"`
	ExperienceLevel     *string    `json:"experience_level"`
	AvailableEquipment  []string   `json:"available_equipment"`
	DietaryRestrictions []string   `json:"dietary_restrictions"`
	Units               *string    `json:"units"`
	AvatarURL           *string    `json:"avatar_url"`
}

// UserRepository defines operations for managing accounts
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
}

// ProfileRepository stores one profile document per user
type ProfileRepository interface {
	// GetByUserID returns ErrNotFound when the user has no profile
	GetByUserID(ctx context.Context, userID string) (*UserProfile, error)
	Create(ctx context.Context, profile *UserProfile) error
	Update(ctx context.Context, userID string, update *ProfileUpdate) (*UserProfile, error)
}
