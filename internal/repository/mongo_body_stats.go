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

const defaultMeasurementLimit = 30

type MongoBodyMeasurementRepository struct {
	collection *mongo.Collection
}

func NewMongoBodyMeasurementRepository(db *mongo.Database) *MongoBodyMeasurementRepository {
	coll := db.Collection("body_measurements")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "measured_at", Value: -1}},
	})

	return &MongoBodyMeasurementRepository{collection: coll}
}

func (r *MongoBodyMeasurementRepository) Create(ctx context.Context, m *domain.BodyMeasurement) error {
	m.CreatedAt = time.Now().UTC()
	if m.MeasuredAt.IsZero() {
		m.MeasuredAt = m.CreatedAt
	}
	if _, err := r.collection.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("failed to create body measurement: %w", err)
	}
	return nil
}

func (r *MongoBodyMeasurementRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.BodyMeasurement, error) {
	if limit <= 0 {
		limit = defaultMeasurementLimit
	}
	opts := options.Find().SetSort(bson.D{{Key: "measured_at", Value: -1}}).SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list body measurements: %w", err)
	}
	defer cursor.Close(ctx)

	measurements := []*domain.BodyMeasurement{}
	if err := cursor.All(ctx, &measurements); err != nil {
		return nil, err
	}
	return measurements, nil
}

type MongoProgressPhotoRepository struct {
	collection *mongo.Collection
}

func NewMongoProgressPhotoRepository(db *mongo.Database) *MongoProgressPhotoRepository {
	return &MongoProgressPhotoRepository{collection: db.Collection("progress_photos")}
}

func (r *MongoProgressPhotoRepository) Create(ctx context.Context, photo *domain.ProgressPhoto) error {
	photo.CreatedAt = time.Now().UTC()
	if photo.TakenAt.IsZero() {
		photo.TakenAt = photo.CreatedAt
	}
	if _, err := r.collection.InsertOne(ctx, photo); err != nil {
		return fmt.Errorf("failed to create progress photo: %w", err)
	}
	return nil
}

func (r *MongoProgressPhotoRepository) ListByUser(ctx context.Context, userID string) ([]*domain.ProgressPhoto, error) {
	opts := options.Find().SetSort(bson.D{{Key: "taken_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress photos: %w", err)
	}
	defer cursor.Close(ctx)

	photos := []*domain.ProgressPhoto{}
	if err := cursor.All(ctx, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}
