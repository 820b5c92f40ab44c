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

type MongoRecoveryRepository struct {
	collection *mongo.Collection
}

func NewMongoRecoveryRepository(db *mongo.Database) *MongoRecoveryRepository {
	coll := db.Collection("recovery_logs")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoRecoveryRepository{collection: coll}
}

func (r *MongoRecoveryRepository) GetByDate(ctx context.Context, userID string, day time.Time) (*domain.RecoveryLog, error) {
	var log domain.RecoveryLog
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "date": domain.StartOfDay(day)}).Decode(&log)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recovery log: %w", err)
	}
	return &log, nil
}

func (r *MongoRecoveryRepository) Save(ctx context.Context, log *domain.RecoveryLog) error {
	log.UpdatedAt = time.Now().UTC()
	if log.CreatedAt.IsZero() {
		log.CreatedAt = log.UpdatedAt
	}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": log.ID}, log, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save recovery log: %w", err)
	}
	return nil
}

func (r *MongoRecoveryRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*domain.RecoveryLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *MongoRecoveryRepository) ListRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.RecoveryLog, error) {
	filter := bson.M{"user_id": userID, "date": bson.M{"$gte": from, "$lte": to}}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
}

func (r *MongoRecoveryRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.RecoveryLog, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recovery logs: %w", err)
	}
	defer cursor.Close(ctx)

	logs := []*domain.RecoveryLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
