package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrDuplicateExercise = errors.New("exercise name already exists")
)

// Exercise represents a movement in the shared library or a user's custom list
type Exercise struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Category     string    `json:"category" bson:"category"`         // e.g. "strength", "cardio"
	MuscleGroup  string    `json:"muscle_group" bson:"muscle_group"` // e.g. "Legs", "Chest"
	Equipment    string    `json:"equipment" bson:"equipment"`
	Instructions string    `json:"instructions,omitempty" bson:"instructions,omitempty"`
	IsCustom     bool      `json:"is_custom" bson:"is_custom"`
	CreatedBy    string    `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// ExerciseFilter narrows a library listing
type ExerciseFilter struct {
	Query    string
	Category string
	Limit    int
}

type ExerciseRepository interface {
	Create(ctx context.Context, exercise *Exercise) error
	GetByID(ctx context.Context, id string) (*Exercise, error)
	List(ctx context.Context, filter ExerciseFilter) ([]*Exercise, error)
	// NamesByIDs resolves display names; unknown ids are absent from the map
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}
