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

// MongoWorkoutSessionRepository implements domain.WorkoutSessionRepository
type MongoWorkoutSessionRepository struct {
	collection *mongo.Collection
}

func NewMongoWorkoutSessionRepository(db *mongo.Database) *MongoWorkoutSessionRepository {
	coll := db.Collection("workout_sessions")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "started_at", Value: -1}},
	})

	return &MongoWorkoutSessionRepository{collection: coll}
}

func (r *MongoWorkoutSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) error {
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to create workout session: %w", err)
	}
	return nil
}

func (r *MongoWorkoutSessionRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutSession, error) {
	var session domain.WorkoutSession
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get workout session: %w", err)
	}
	return &session, nil
}

func (r *MongoWorkoutSessionRepository) ListByUser(ctx context.Context, userID string, skip, limit int) ([]*domain.WorkoutSession, int64, error) {
	filter := bson.M{"user_id": userID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count workout sessions: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workout sessions: %w", err)
	}
	defer cursor.Close(ctx)

	sessions := []*domain.WorkoutSession{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (r *MongoWorkoutSessionRepository) ListCompletedByUser(ctx context.Context, userID string) ([]*domain.WorkoutSession, error) {
	filter := bson.M{"user_id": userID, "completed_at": bson.M{"$ne": nil}}
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed sessions: %w", err)
	}
	defer cursor.Close(ctx)

	sessions := []*domain.WorkoutSession{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Complete closes the session. Completing an already closed session is a no-op.
func (r *MongoWorkoutSessionRepository) Complete(ctx context.Context, id string, completedAt time.Time, durationMinutes int, totalVolumeKg float64) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "completed_at": nil},
		bson.M{"$set": bson.M{
			"completed_at":     completedAt,
			"duration_minutes": durationMinutes,
			"total_volume_kg":  totalVolumeKg,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to complete workout session: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Reopen clears the completion stamped at completedAt. A later completion is left alone.
func (r *MongoWorkoutSessionRepository) Reopen(ctx context.Context, id string, completedAt time.Time) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "completed_at": completedAt},
		bson.M{"$set": bson.M{
			"completed_at":     nil,
			"duration_minutes": nil,
			"total_volume_kg":  nil,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to reopen workout session: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetTotalVolume overwrites the stored volume of a completed session
func (r *MongoWorkoutSessionRepository) SetTotalVolume(ctx context.Context, id string, totalVolumeKg float64) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "completed_at": bson.M{"$ne": nil}},
		bson.M{"$set": bson.M{"total_volume_kg": totalVolumeKg}},
	)
	if err != nil {
		return fmt.Errorf("failed to update session volume: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
