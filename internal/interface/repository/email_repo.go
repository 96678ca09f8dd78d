// internal/interface/repository/email_repo.go
package repository

import (
	"context"
	"fmt"
	"time"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoEmailRepository implements the EmailRepository interface
type MongoEmailRepository struct {
	collection *mongo.Collection
}

// NewMongoEmailRepository creates a new MongoDB email repository
func NewMongoEmailRepository(db *mongo.Database) repository.EmailRepository {
	collection := db.Collection("emailLogs")

	ctx := context.Background()

	emailIDIndex := mongo.IndexModel{
		Keys:    bson.M{"emailId": 1},
		Options: options.Index().SetUnique(true),
	}

	processStatusIndex := mongo.IndexModel{
		Keys: bson.M{"processStatus": 1},
	}

	receivedAtIndex := mongo.IndexModel{
		Keys: bson.M{"receivedAt": -1},
	}

	unprocessedIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "processStatus", Value: 1},
			{Key: "receivedAt", Value: 1},
		},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		emailIDIndex,
		processStatusIndex,
		receivedAtIndex,
		unprocessedIndex,
	})

	return &MongoEmailRepository{
		collection: collection,
	}
}

// Save saves an email to MongoDB
func (r *MongoEmailRepository) Save(ctx context.Context, email *entity.Email) error {
	if email.ProcessStatus == "" {
		email.ProcessStatus = entity.StatusPending
	}

	_, err := r.collection.InsertOne(ctx, email)
	return err
}

// FindUnprocessed finds unprocessed emails (PENDING status or empty)
func (r *MongoEmailRepository) FindUnprocessed(ctx context.Context, limit int) ([]*entity.Email, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"processStatus": ""},
			{"processStatus": entity.StatusPending},
			{"processStatus": bson.M{"$exists": false}},
		},
	}

	limit64 := int64(limit)
	cursor, err := r.collection.Find(ctx, filter, &options.FindOptions{
		Limit: &limit64,
		Sort:  bson.D{{Key: "receivedAt", Value: 1}}, // Process oldest first
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var emails []*entity.Email
	if err := cursor.All(ctx, &emails); err != nil {
		return nil, err
	}

	return emails, nil
}

// FindAll returns every stored email, oldest first. Used by the full history
// rebuild, which reprocesses the whole log.
func (r *MongoEmailRepository) FindAll(ctx context.Context) ([]*entity.Email, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, &options.FindOptions{
		Sort: bson.D{{Key: "receivedAt", Value: 1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var emails []*entity.Email
	if err := cursor.All(ctx, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// FindByEmailIDs finds emails by their Gmail message ids in one query
func (r *MongoEmailRepository) FindByEmailIDs(ctx context.Context, emailIDs []string) (map[string]*entity.Email, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"emailId": bson.M{"$in": emailIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var emails []*entity.Email
	if err := cursor.All(ctx, &emails); err != nil {
		return nil, err
	}

	found := make(map[string]*entity.Email, len(emails))
	for _, email := range emails {
		found[email.EmailID] = email
	}
	return found, nil
}

// GetLastEmail returns the most recently received email
func (r *MongoEmailRepository) GetLastEmail(ctx context.Context) (*entity.Email, error) {
	var email entity.Email
	opts := options.FindOne().SetSort(bson.D{{Key: "receivedAt", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&email)
	if err != nil {
		return nil, err
	}
	return &email, nil
}

// UpdateStatusByEmailID updates just the status and started time
func (r *MongoEmailRepository) UpdateStatusByEmailID(ctx context.Context, emailID string, status string, startedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"processStatus": status,
		},
	}

	// Only set processStartedAt when moving to PROCESSING
	if status == entity.StatusProcessing && !startedAt.IsZero() {
		update["$set"].(bson.M)["processStartedAt"] = startedAt
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"emailId": emailID}, update)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("no document found with emailId: %s", emailID)
	}

	return nil
}

// UpdateProcessStepsByEmailID updates the processing steps
func (r *MongoEmailRepository) UpdateProcessStepsByEmailID(ctx context.Context, emailID string, steps entity.ProcessSteps) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"emailId": emailID},
		bson.M{"$set": bson.M{"processSteps": steps}},
	)
	return err
}

// MarkAsProcessedByEmailID records the final outcome for one email
func (r *MongoEmailRepository) MarkAsProcessedByEmailID(ctx context.Context, emailID, status, provider, errorDetail string, extractedData map[string]interface{}) error {
	update := bson.M{
		"$set": bson.M{
			"processStatus": status,
			"provider":      provider,
			"processedAt":   time.Now(),
			"errorDetail":   errorDetail,
		},
	}
	if extractedData != nil {
		update["$set"].(bson.M)["extractedData"] = extractedData
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"emailId": emailID}, update)
	return err
}

// ResetProcessingEmails resets emails stuck in PROCESSING back to PENDING so
// a crashed run does not strand them.
func (r *MongoEmailRepository) ResetProcessingEmails(ctx context.Context) error {
	staleBefore := time.Now().Add(-10 * time.Minute)
	_, err := r.collection.UpdateMany(
		ctx,
		bson.M{
			"processStatus":    entity.StatusProcessing,
			"processStartedAt": bson.M{"$lt": staleBefore},
		},
		bson.M{"$set": bson.M{"processStatus": entity.StatusPending}},
	)
	return err
}
