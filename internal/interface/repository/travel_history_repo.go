package repository

import (
	"context"
	"time"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTravelHistoryRepository implements TravelHistoryRepository
type MongoTravelHistoryRepository struct {
	collection *mongo.Collection
}

// NewMongoTravelHistoryRepository creates a new travel history repository
func NewMongoTravelHistoryRepository(db *mongo.Database) repository.TravelHistoryRepository {
	collection := db.Collection("flight_records")

	// Create unique index on dedupKey
	ctx := context.Background()
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"dedupKey": 1},
		Options: options.Index().SetUnique(true),
	}
	collection.Indexes().CreateOne(ctx, indexModel)

	departureIndex := mongo.IndexModel{
		Keys: bson.M{"departure": 1},
	}
	collection.Indexes().CreateOne(ctx, departureIndex)

	return &MongoTravelHistoryRepository{
		collection: collection,
	}
}

// FindByDedupKey finds a flight record by its dedup key
func (r *MongoTravelHistoryRepository) FindByDedupKey(ctx context.Context, dedupKey string) (*entity.FlightRecord, error) {
	var record entity.FlightRecord
	err := r.collection.FindOne(ctx, bson.M{"dedupKey": dedupKey}).Decode(&record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert creates or updates a flight record keyed by dedupKey
func (r *MongoTravelHistoryRepository) Upsert(ctx context.Context, record *entity.FlightRecord) error {
	record.UpdatedAt = time.Now()

	if record.ID == "" {
		record.ID = primitive.NewObjectID().Hex()
		record.CreatedAt = time.Now()
	}

	updateDoc := bson.M{
		"dedupKey":        record.DedupKey,
		"flightNumber":    record.FlightNumber,
		"origin":          record.Origin,
		"destination":     record.Destination,
		"departure":       record.Departure,
		"arrival":         record.Arrival,
		"airline":         record.Airline,
		"durationMinutes": record.DurationMinutes,
		"sourceEmailIds":  record.SourceEmailIDs,
		"lastSourceAt":    record.LastSourceAt,
		"createdAt":       record.CreatedAt,
		"updatedAt":       record.UpdatedAt,
	}

	opts := options.Update().SetUpsert(true)
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"dedupKey": record.DedupKey},
		bson.M{"$set": updateDoc},
		opts,
	)
	if err != nil {
		return err
	}

	if result.UpsertedCount > 0 && result.UpsertedID != nil {
		if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
			record.ID = oid.Hex()
		}
	}

	return nil
}

// ReplaceHistory atomically swaps the stored history for a freshly merged one
func (r *MongoTravelHistoryRepository) ReplaceHistory(ctx context.Context, history entity.TravelHistory) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}

	for i := range history {
		if err := r.Upsert(ctx, &history[i]); err != nil {
			return err
		}
	}
	return nil
}
