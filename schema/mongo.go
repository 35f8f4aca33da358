package schema

import (
	"context"
	"log"
	"time"

	"civictrack/models"
	"civictrack/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// InitializeComplaintsDB ensures every category partition and the activity
// log carry the indexes the fan-out queries and lookups rely on. Index
// creation is idempotent; a failed partition is logged and skipped so one
// bad index never blocks startup.
func InitializeComplaintsDB(ctx context.Context, db *mongo.Database) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	partitionIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "assigned_to", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "complaint_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "sla_deadline", Value: 1}}},
	}
	for _, category := range models.Categories {
		col := db.Collection(repository.CollectionNameFor(category))
		if _, err := col.Indexes().CreateMany(ctx, partitionIndexes); err != nil {
			log.Printf("[SCHEMA] Failed to ensure indexes on %s: %v", col.Name(), err)
		}
	}

	activity := db.Collection("activity_logs")
	activityIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "complaint_id", Value: 1}, {Key: "timestamp", Value: 1}}},
	}
	if _, err := activity.Indexes().CreateMany(ctx, activityIndexes); err != nil {
		log.Printf("[SCHEMA] Failed to ensure indexes on activity_logs: %v", err)
	}
	log.Println("[SCHEMA] Complaints store indexes ensured")
}
