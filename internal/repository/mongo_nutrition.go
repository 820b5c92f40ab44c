package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultFoodSearchLimit = 20

// MongoFoodRepository implements domain.FoodRepository
type MongoFoodRepository struct {
	collection *mongo.Collection
}

func NewMongoFoodRepository(db *mongo.Database) *MongoFoodRepository {
	coll := db.Collection("food_items")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}})

	return &MongoFoodRepository{collection: coll}
}

func (r *MongoFoodRepository) Search(ctx context.Context, query string, limit int) ([]*domain.FoodItem, error) {
	if limit <= 0 {
		limit = defaultFoodSearchLimit
	}
	filter := bson.M{}
	if query != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}}).SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search foods: %w", err)
	}
	defer cursor.Close(ctx)

	foods := []*domain.FoodItem{}
	if err := cursor.All(ctx, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}

func (r *MongoFoodRepository) Create(ctx context.Context, food *domain.FoodItem) error {
	food.CreatedAt = time.Now().UTC()
	if _, err := r.collection.InsertOne(ctx, food); err != nil {
		return fmt.Errorf("failed to create food item: %w", err)
	}
	return nil
}

func (r *MongoFoodRepository) GetByID(ctx context.Context, id string) (*domain.FoodItem, error) {
	var food domain.FoodItem
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&food); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get food item: %w", err)
	}
	return &food, nil
}

// MongoNutritionLogRepository stores one document per user per day with meals embedded
type MongoNutritionLogRepository struct {
	collection *mongo.Collection
}

func NewMongoNutritionLogRepository(db *mongo.Database) *MongoNutritionLogRepository {
	coll := db.Collection("nutrition_logs")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
	})

	return &MongoNutritionLogRepository{collection: coll}
}

func nutritionLogInsertFields(userID string, date, now time.Time) bson.M {
	return bson.M{
		"user_id":    userID,
		"date":       date,
		"created_at": now,
	}
}

func (r *MongoNutritionLogRepository) GetOrCreate(ctx context.Context, userID string, day time.Time) (*domain.NutritionLog, error) {
	date := domain.StartOfDay(day)
	now := time.Now().UTC()

	insert := nutritionLogInsertFields(userID, date, now)
	insert["meals"] = bson.A{}
	insert["total_calories"] = 0.0
	insert["total_protein_g"] = 0.0
	insert["total_carbs_g"] = 0.0
	insert["total_fat_g"] = 0.0
	insert["updated_at"] = now

	var log domain.NutritionLog
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": domain.DayLogID(userID, date)},
		bson.M{"$setOnInsert": insert},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&log)
	if err != nil {
		return nil, fmt.Errorf("failed to get nutrition log: %w", err)
	}
	return &log, nil
}

func (r *MongoNutritionLogRepository) AddMeal(ctx context.Context, userID string, day time.Time, meal domain.MealEntry) (*domain.NutritionLog, error) {
	date := domain.StartOfDay(day)
	now := time.Now().UTC()

	var log domain.NutritionLog
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": domain.DayLogID(userID, date)},
		bson.M{
			"$push": bson.M{"meals": meal},
			"$inc": bson.M{
				"total_calories":  meal.Calories,
				"total_protein_g": meal.ProteinG,
				"total_carbs_g":   meal.CarbsG,
				"total_fat_g":     meal.FatG,
			},
			"$set":         bson.M{"updated_at": now},
			"$setOnInsert": nutritionLogInsertFields(userID, date, now),
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&log)
	if err != nil {
		return nil, fmt.Errorf("failed to add meal: %w", err)
	}
	return &log, nil
}

func (r *MongoNutritionLogRepository) ListRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.NutritionLog, error) {
	filter := bson.M{"user_id": userID, "date": bson.M{"$gte": from, "$lte": to}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list nutrition logs: %w", err)
	}
	defer cursor.Close(ctx)

	logs := []*domain.NutritionLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
