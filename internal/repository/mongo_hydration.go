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

type MongoHydrationRepository struct {
	collection *mongo.Collection
}

func NewMongoHydrationRepository(db *mongo.Database) *MongoHydrationRepository {
	coll := db.Collection("hydration_logs")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
	})

	return &MongoHydrationRepository{collection: coll}
}

func (r *MongoHydrationRepository) upsert(ctx context.Context, userID string, day time.Time, update bson.M) (*domain.HydrationLog, error) {
	date := domain.StartOfDay(day)

	var log domain.HydrationLog
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": domain.DayLogID(userID, date)},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&log)
	if err != nil {
		return nil, fmt.Errorf("failed to update hydration log: %w", err)
	}
	return &log, nil
}

func (r *MongoHydrationRepository) GetOrCreate(ctx context.Context, userID string, day time.Time, defaultTargetMl int) (*domain.HydrationLog, error) {
	now := time.Now().UTC()
	return r.upsert(ctx, userID, day, bson.M{
		"$setOnInsert": bson.M{
			"user_id":    userID,
			"date":       domain.StartOfDay(day),
			"total_ml":   0,
			"target_ml":  defaultTargetMl,
			"entries":    bson.A{},
			"created_at": now,
			"updated_at": now,
		},
	})
}

func (r *MongoHydrationRepository) AddEntry(ctx context.Context, userID string, day time.Time, entry domain.HydrationEntry, defaultTargetMl int) (*domain.HydrationLog, error) {
	now := time.Now().UTC()
	return r.upsert(ctx, userID, day, bson.M{
		"$inc":  bson.M{"total_ml": entry.AmountMl},
		"$push": bson.M{"entries": entry},
		"$set":  bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"user_id":    userID,
			"date":       domain.StartOfDay(day),
			"target_ml":  defaultTargetMl,
			"created_at": now,
		},
	})
}

func (r *MongoHydrationRepository) SetTarget(ctx context.Context, userID string, day time.Time, targetMl int) (*domain.HydrationLog, error) {
	now := time.Now().UTC()
	return r.upsert(ctx, userID, day, bson.M{
		"$set": bson.M{"target_ml": targetMl, "updated_at": now},
		"$setOnInsert": bson.M{
			"user_id":    userID,
			"date":       domain.StartOfDay(day),
			"total_ml":   0,
			"entries":    bson.A{},
			"created_at": now,
		},
	})
}

func (r *MongoHydrationRepository) ListRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.HydrationLog, error) {
	filter := bson.M{"user_id": userID, "date": bson.M{"$gte": from, "$lte": to}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list hydration logs: %w", err)
	}
	defer cursor.Close(ctx)

	logs := []*domain.HydrationLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
