package repository

import (
	"context"
	"fmt"

	"civictrack/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const activityCollection = "activity_logs"

// ActivityRepository stores the append-only audit trail. One shared
// collection, not partitioned: activity volume is small relative to
// complaints and is always queried by complaint id.
type ActivityRepository struct {
	col *mongo.Collection
}

// NewActivityRepository creates an activity repository over the complaints
// database.
func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{col: db.Collection(activityCollection)}
}

// Record appends one audit entry. Callers treat failures as best-effort:
// a lost audit record never rolls back the operation it describes.
func (r *ActivityRepository) Record(ctx context.Context, entry models.ActivityEntry) error {
	if _, err := r.col.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("recording activity %s: %w", entry.Action, err)
	}
	return nil
}

// ListByComplaint returns the audit trail of one complaint, oldest first.
func (r *ActivityRepository) ListByComplaint(ctx context.Context, complaintID string) ([]models.ActivityEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"complaint_id": complaintID}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing activity for complaint %s: %w", complaintID, err)
	}
	var entries []models.ActivityEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decoding activity for complaint %s: %w", complaintID, err)
	}
	return entries, nil
}
