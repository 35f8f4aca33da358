package repository

import (
	"context"
	"strings"

	"civictrack/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const partitionPrefix = "complaints_"

// PartitionRouter maps a complaint category to its physical partition: every
// category is stored in its own collection. The mapping is a pure function
// of the category; unknown categories are rejected upstream at complaint
// validation and never reach the router in a valid system state.
type PartitionRouter struct {
	db *mongo.Database
}

// NewPartitionRouter creates a partition router over the complaints database.
func NewPartitionRouter(db *mongo.Database) *PartitionRouter {
	return &PartitionRouter{db: db}
}

// CollectionNameFor normalizes a category label to its partition identifier:
// lowercase, spaces to underscores, ampersands to "and", every other
// non-alphanumeric character stripped, prefixed with the complaints
// namespace tag.
func CollectionNameFor(category string) string {
	name := strings.ToLower(category)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "&", "and")
	var b strings.Builder
	for _, c := range name {
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}
	return partitionPrefix + b.String()
}

// Partition returns the collection handle for a category.
func (r *PartitionRouter) Partition(category string) *mongo.Collection {
	return r.db.Collection(CollectionNameFor(category))
}

// CategoryPartition pairs a category with its collection handle.
type CategoryPartition struct {
	Category   string
	Collection *mongo.Collection
}

// Name returns the partition's category label for log attribution.
func (p CategoryPartition) Name() string { return p.Category }

// Count counts the partition's documents matching the query.
func (p CategoryPartition) Count(ctx context.Context, query bson.M) (int64, error) {
	return p.Collection.CountDocuments(ctx, query)
}

// Fetch reads the partition's first documents in the given sort order. A
// limit of zero fetches everything.
func (p CategoryPartition) Fetch(ctx context.Context, query bson.M, sortDoc bson.D, limit int64) ([]models.Complaint, error) {
	opts := options.Find().SetSort(sortDoc)
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := p.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []models.Complaint
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// All enumerates every (category, partition) pair in the fixed category
// order. The lookup resolver depends on this order being stable.
func (r *PartitionRouter) All() []CategoryPartition {
	parts := make([]CategoryPartition, 0, len(models.Categories))
	for _, c := range models.Categories {
		parts = append(parts, CategoryPartition{Category: c, Collection: r.Partition(c)})
	}
	return parts
}
