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

const defaultPRListLimit = 50

// MongoPersonalRecordRepository keeps the append-only PR history
type MongoPersonalRecordRepository struct {
	collection *mongo.Collection
}

func NewMongoPersonalRecordRepository(db *mongo.Database) *MongoPersonalRecordRepository {
	coll := db.Collection("personal_records")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// Max lookups: weight PRs sort on weight_kg, reps PRs match weight_kg then sort on reps
		{Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "exercise_id", Value: 1},
			{Key: "pr_type", Value: 1},
			{Key: "weight_kg", Value: -1},
			{Key: "reps", Value: -1},
		}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "achieved_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "celebrated", Value: 1}}},
	})

	return &MongoPersonalRecordRepository{collection: coll}
}

func (r *MongoPersonalRecordRepository) MaxWeight(ctx context.Context, userID, exerciseID string) (*float64, error) {
	filter := bson.M{
		"user_id":     userID,
		"exercise_id": exerciseID,
		"pr_type":     domain.PRTypeWeight,
		"weight_kg":   bson.M{"$ne": nil},
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "weight_kg", Value: -1}}).
		SetProjection(bson.M{"weight_kg": 1})

	var row struct {
		WeightKg *float64 `bson:"weight_kg"`
	}
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&row); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find max weight: %w", err)
	}
	return row.WeightKg, nil
}

func (r *MongoPersonalRecordRepository) MaxRepsAtWeight(ctx context.Context, userID, exerciseID string, weightKg float64) (*int, error) {
	filter := bson.M{
		"user_id":     userID,
		"exercise_id": exerciseID,
		"pr_type":     domain.PRTypeReps,
		"weight_kg":   weightKg,
		"reps":        bson.M{"$ne": nil},
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "reps", Value: -1}}).
		SetProjection(bson.M{"reps": 1})

	var row struct {
		Reps *int `bson:"reps"`
	}
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&row); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find max reps: %w", err)
	}
	return row.Reps, nil
}

func (r *MongoPersonalRecordRepository) Create(ctx context.Context, pr *domain.PersonalRecord) error {
	if pr.CreatedAt.IsZero() {
		pr.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, pr); err != nil {
		return fmt.Errorf("failed to create personal record: %w", err)
	}
	return nil
}

func (r *MongoPersonalRecordRepository) DeleteBySessionSet(ctx context.Context, userID, setID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID, "session_set_id": setID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete personal records of set: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *MongoPersonalRecordRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.PersonalRecord, error) {
	if limit <= 0 {
		limit = defaultPRListLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "achieved_at", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *MongoPersonalRecordRepository) ListPendingCelebrations(ctx context.Context, userID string) ([]*domain.PersonalRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "achieved_at", Value: -1}})
	return r.find(ctx, bson.M{"user_id": userID, "celebrated": false}, opts)
}

func (r *MongoPersonalRecordRepository) MarkCelebrated(ctx context.Context, userID, prID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": prID, "user_id": userID},
		bson.M{"$set": bson.M{"celebrated": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark celebrated: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoPersonalRecordRepository) CountBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"user_id":     userID,
		"achieved_at": bson.M{"$gte": from, "$lte": to},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count personal records: %w", err)
	}
	return int(count), nil
}

func (r *MongoPersonalRecordRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.PersonalRecord, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list personal records: %w", err)
	}
	defer cursor.Close(ctx)

	records := []*domain.PersonalRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
