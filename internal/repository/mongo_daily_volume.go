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

type MongoDailyVolumeRepository struct {
	collection *mongo.Collection
}

func NewMongoDailyVolumeRepository(db *mongo.Database) *MongoDailyVolumeRepository {
	coll := db.Collection("daily_volumes")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
	})

	return &MongoDailyVolumeRepository{collection: coll}
}

// Increment upserts the day's row with $inc so concurrent completions add up
func (r *MongoDailyVolumeRepository) Increment(ctx context.Context, userID string, day time.Time, delta domain.VolumeDelta) error {
	date := domain.StartOfDay(day)
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": domain.DailyVolumeID(userID, date)},
		bson.M{
			"$inc": bson.M{
				"total_volume":  delta.Volume,
				"total_sets":    delta.Sets,
				"total_reps":    delta.Reps,
				"session_count": delta.Sessions,
			},
			"$set":         bson.M{"updated_at": time.Now().UTC()},
			"$setOnInsert": bson.M{"user_id": userID, "date": date},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to increment daily volume: %w", err)
	}
	return nil
}

func (r *MongoDailyVolumeRepository) ListRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.DailyVolume, error) {
	filter := bson.M{
		"user_id": userID,
		"date": bson.M{
			"$gte": from,
			"$lte": to,
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily volumes: %w", err)
	}
	defer cursor.Close(ctx)

	volumes := []*domain.DailyVolume{}
	if err = cursor.All(ctx, &volumes); err != nil {
		return nil, err
	}
	return volumes, nil
}

func (r *MongoDailyVolumeRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete daily volumes: %w", err)
	}
	return res.DeletedCount, nil
}
