package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureLogsCollection creates the indexes the logs service queries by. The
// collection itself is created lazily by the first insert.
func EnsureLogsCollection(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("logs")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "entity", Value: 1}, {Key: "entity_id", Value: 1}},
			Options: options.Index().SetName("idx_logs_entity_entity_id"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_logs_user_id"),
		},
		{
			Keys:    bson.D{{Key: "action", Value: 1}},
			Options: options.Index().SetName("idx_logs_action"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_logs_created_at"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	return nil
}
