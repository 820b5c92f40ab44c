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

type MongoSessionSetRepository struct {
	collection *mongo.Collection
}

func NewMongoSessionSetRepository(db *mongo.Database) *MongoSessionSetRepository {
	coll := db.Collection("session_sets")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "set_number", Value: 1}},
	})

	return &MongoSessionSetRepository{collection: coll}
}

func (r *MongoSessionSetRepository) Create(ctx context.Context, set *domain.SessionSet) error {
	if set.CreatedAt.IsZero() {
		set.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, set); err != nil {
		return fmt.Errorf("failed to create session set: %w", err)
	}
	return nil
}

func (r *MongoSessionSetRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.SessionSet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list session sets: %w", err)
	}
	defer cursor.Close(ctx)

	sets := []*domain.SessionSet{}
	if err := cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}
