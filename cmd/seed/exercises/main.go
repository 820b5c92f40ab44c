package main

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mansoorceksport/fitcoach/internal/config"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/logging"
	"github.com/mansoorceksport/fitcoach/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	strength    = "strength"
	cardio      = "cardio"
	flexibility = "flexibility"
)

var library = []domain.Exercise{
	// Legs
	{Name: "Barbell Squat", Category: strength, MuscleGroup: "Legs", Equipment: "Barbell"},
	{Name: "Leg Press", Category: strength, MuscleGroup: "Legs", Equipment: "Machine"},
	{Name: "Walking Lunge", Category: strength, MuscleGroup: "Legs", Equipment: "Dumbbell"},
	{Name: "Leg Extension", Category: strength, MuscleGroup: "Legs", Equipment: "Machine"},
	{Name: "Lying Leg Curl", Category: strength, MuscleGroup: "Legs", Equipment: "Machine"},
	{Name: "Romanian Deadlift", Category: strength, MuscleGroup: "Hamstrings", Equipment: "Barbell"},
	{Name: "Calf Raise", Category: strength, MuscleGroup: "Calves", Equipment: "Machine"},
	{Name: "Bulgarian Split Squat", Category: strength, MuscleGroup: "Legs", Equipment: "Dumbbell"},
	{Name: "Hip Thrust", Category: strength, MuscleGroup: "Glutes", Equipment: "Barbell"},

	// Chest
	{Name: "Barbell Bench Press", Category: strength, MuscleGroup: "Chest", Equipment: "Barbell"},
	{Name: "Incline Dumbbell Press", Category: strength, MuscleGroup: "Chest", Equipment: "Dumbbell"},
	{Name: "Push Up", Category: strength, MuscleGroup: "Chest", Equipment: "Bodyweight"},
	{Name: "Cable Fly", Category: strength, MuscleGroup: "Chest", Equipment: "Cable"},
	{Name: "Dips", Category: strength, MuscleGroup: "Chest", Equipment: "Bodyweight"},

	// Back
	{Name: "Deadlift", Category: strength, MuscleGroup: "Back", Equipment: "Barbell"},
	{Name: "Pull Up", Category: strength, MuscleGroup: "Back", Equipment: "Bodyweight"},
	{Name: "Lat Pulldown", Category: strength, MuscleGroup: "Back", Equipment: "Cable"},
	{Name: "Barbell Row", Category: strength, MuscleGroup: "Back", Equipment: "Barbell"},
	{Name: "Seated Cable Row", Category: strength, MuscleGroup: "Back", Equipment: "Cable"},
	{Name: "Face Pull", Category: strength, MuscleGroup: "Rear Delts", Equipment: "Cable"},

	// Shoulders & arms
	{Name: "Overhead Press", Category: strength, MuscleGroup: "Shoulders", Equipment: "Barbell"},
	{Name: "Lateral Raise", Category: strength, MuscleGroup: "Shoulders", Equipment: "Dumbbell"},
	{Name: "Barbell Curl", Category: strength, MuscleGroup: "Biceps", Equipment: "Barbell"},
	{Name: "Hammer Curl", Category: strength, MuscleGroup: "Biceps", Equipment: "Dumbbell"},
	{Name: "Tricep Pushdown", Category: strength, MuscleGroup: "Triceps", Equipment: "Cable"},
	{Name: "Skullcrusher", Category: strength, MuscleGroup: "Triceps", Equipment: "EZ Bar"},

	// Core
	{Name: "Plank", Category: strength, MuscleGroup: "Core", Equipment: "Bodyweight"},
	{Name: "Hanging Leg Raise", Category: strength, MuscleGroup: "Core", Equipment: "Bodyweight"},
	{Name: "Ab Wheel Rollout", Category: strength, MuscleGroup: "Core", Equipment: "Ab Wheel"},

	// Conditioning
	{Name: "Rowing Machine", Category: cardio, MuscleGroup: "Full Body", Equipment: "Machine"},
	{Name: "Treadmill Run", Category: cardio, MuscleGroup: "Legs", Equipment: "Machine"},
	{Name: "Assault Bike", Category: cardio, MuscleGroup: "Full Body", Equipment: "Machine"},
	{Name: "Jump Rope", Category: cardio, MuscleGroup: "Full Body", Equipment: "Rope"},

	// Mobility
	{Name: "World's Greatest Stretch", Category: flexibility, MuscleGroup: "Full Body", Equipment: "Bodyweight"},
	{Name: "Couch Stretch", Category: flexibility, MuscleGroup: "Hip Flexors", Equipment: "Bodyweight"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logging.Setup(logging.Params{Level: cfg.Log.Level, ToStdout: true})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		logrus.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(context.Background())

	repo := repository.NewMongoExerciseRepository(client.Database(cfg.MongoDB.Database))

	created, skipped := 0, 0
	for i := range library {
		ex := library[i]
		ex.ID = uuid.NewString()
		err := repo.Create(ctx, &ex)
		switch {
		case errors.Is(err, domain.ErrDuplicateExercise):
			skipped++
			logrus.WithField("name", ex.Name).Debug("skipping existing exercise")
		case err != nil:
			logrus.WithError(err).WithField("name", ex.Name).Error("failed to create exercise")
		default:
			created++
		}
	}
	logrus.WithFields(logrus.Fields{"created": created, "skipped": skipped}).Info("Seeding exercises complete")
}
