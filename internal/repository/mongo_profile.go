package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProfileRepository stores profiles keyed by user id
type MongoProfileRepository struct {
	collection *mongo.Collection
}

func NewMongoProfileRepository(db *mongo.Database) *MongoProfileRepository {
	return &MongoProfileRepository{
		collection: db.Collection("user_profiles"),
	}
}

func (r *MongoProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	if err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&profile); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (r *MongoProfileRepository) Create(ctx context.Context, profile *domain.UserProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	if _, err := r.collection.InsertOne(ctx, profile); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// Update applies the non-nil fields of update and returns the stored result
func (r *MongoProfileRepository) Update(ctx context.Context, userID string, update *domain.ProfileUpdate) (*domain.UserProfile, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	setIf := func(field string, present bool, value interface{}) {
		if present {
			set[field] = value
		}
	}
	setIf("first_name", update.FirstName != nil, update.FirstName)
	setIf("last_name", update.LastName != nil, update.LastName)
	setIf("date_of_birth", update.DateOfBirth != nil, update.DateOfBirth)
	setIf("gender", update.Gender != nil, update.Gender)
	setIf("height_cm", update.HeightCm != nil, update.HeightCm)
	setIf("weight_kg", update.WeightKg != nil, update.WeightKg)
	setIf("fitness_goal", update.FitnessGoal != nil, update.FitnessGoal)
	setIf("activity_level", update.ActivityLevel != nil, update.ActivityLevel)
	setIf("experience_level", update.ExperienceLevel != nil, update.ExperienceLevel)
	setIf("available_equipment", update.AvailableEquipment != nil, update.AvailableEquipment)
	setIf("dietary_restrictions", update.DietaryRestrictions != nil, update.DietaryRestrictions)
	setIf("units", update.Units != nil, update.Units)
	setIf("avatar_url", update.AvatarURL != nil, update.AvatarURL)

	doc := bson.M{"$set": set}
	if update.Units == nil {
		doc["$setOnInsert"] = bson.M{"units": "metric"}
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var profile domain.UserProfile
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		doc,
		opts,
	).Decode(&profile)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &profile, nil
}
