package audit

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const logsCollection = "logs"

type Repository interface {
	Append(ctx context.Context, entry LogEntry) error
	List(ctx context.Context, filter ListFilter) ([]LogEntry, error)
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &MongoRepository{collection: db.Collection(logsCollection)}
}

func (r *MongoRepository) Append(ctx context.Context, entry LogEntry) error {
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter) ([]LogEntry, error) {
	query := bson.M{}
	if filter.UserID != 0 {
		query["user_id"] = filter.UserID
	}
	if filter.Entity != "" {
		query["entity"] = filter.Entity
	}
	if filter.EntityID != 0 {
		query["entity_id"] = filter.EntityID
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}
	if !filter.From.IsZero() || !filter.To.IsZero() {
		created := bson.M{}
		if !filter.From.IsZero() {
			created["$gte"] = filter.From
		}
		if !filter.To.IsZero() {
			created["$lte"] = filter.To
		}
		query["created_at"] = created
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(filter.Limit)).
		SetSkip(int64(filter.Offset))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []LogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}

	return entries, nil
}
