package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"civictrack/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// partitionTimeout bounds each per-partition query inside a fan-out so one
// slow partition cannot stall the whole read.
const partitionTimeout = 5 * time.Second

// ErrNoDocument is returned by write operations whose target complaint no
// longer matches, e.g. it was removed between resolution and update.
var ErrNoDocument = errors.New("no matching complaint document")

// Filter narrows a complaint query. Zero values mean "no constraint".
type Filter struct {
	Category     string
	UserID       int64
	AssignedTo   *int64
	Status       models.Status
	Priority     models.Priority
	Search       string
	UrgentOnly   bool
	OpenOnly     bool
	BreachedOnly bool
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// bsonFilter translates a Filter into a Mongo query document.
func (f Filter) bsonFilter(now time.Time) bson.M {
	q := bson.M{}
	if f.UserID != 0 {
		q["user_id"] = f.UserID
	}
	if f.AssignedTo != nil {
		q["assigned_to"] = *f.AssignedTo
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Priority != "" {
		q["priority"] = f.Priority
	}
	if f.UrgentOnly {
		q["is_urgent"] = true
	}
	if f.OpenOnly || f.BreachedOnly {
		open := bson.M{"$nin": []models.Status{models.StatusResolved, models.StatusClosed}}
		if explicit, ok := q["status"]; ok {
			// An explicit status filter still applies; asking for a terminal
			// status together with open-only matches nothing.
			q["$and"] = bson.A{bson.M{"status": explicit}, bson.M{"status": open}}
			delete(q, "status")
		} else {
			q["status"] = open
		}
	}
	if f.BreachedOnly {
		q["sla_deadline"] = bson.M{"$lt": now}
	}
	if f.CreatedFrom != nil || f.CreatedTo != nil {
		rng := bson.M{}
		if f.CreatedFrom != nil {
			rng["$gte"] = *f.CreatedFrom
		}
		if f.CreatedTo != nil {
			rng["$lte"] = *f.CreatedTo
		}
		q["created_at"] = rng
	}
	if f.Search != "" {
		rx := primitive.Regex{Pattern: f.Search, Options: "i"}
		q["$or"] = bson.A{
			bson.M{"complaint_id": rx},
			bson.M{"location": rx},
			bson.M{"description": rx},
		}
	}
	return q
}

// SortSpec orders merged fan-out results. Field must be one of created_at,
// updated_at or sla_deadline.
type SortSpec struct {
	Field string
	Desc  bool
}

// DefaultSort is newest-first, the order every list view uses.
var DefaultSort = SortSpec{Field: "created_at", Desc: true}

func (s SortSpec) key(c *models.Complaint) time.Time {
	switch s.Field {
	case "updated_at":
		return c.UpdatedAt
	case "sla_deadline":
		return c.SLADeadline
	default:
		return c.CreatedAt
	}
}

func (s SortSpec) bsonSort() bson.D {
	dir := 1
	if s.Desc {
		dir = -1
	}
	field := s.Field
	switch field {
	case "created_at", "updated_at", "sla_deadline":
	default:
		field = "created_at"
	}
	return bson.D{{Key: field, Value: dir}}
}

// DocRef locates one complaint inside its partition, independent of which
// identity form resolved it. Update operations reuse the ref so a complaint
// found by legacy string id is also updated by it.
type DocRef struct {
	Category string
	Key      string
	filter   bson.M
}

// ComplaintRepository stores complaints across the per-category partitions.
type ComplaintRepository struct {
	router *PartitionRouter
}

// NewComplaintRepository creates a complaint repository over the router.
func NewComplaintRepository(router *PartitionRouter) *ComplaintRepository {
	return &ComplaintRepository{router: router}
}

// partitions returns the partitions a filter touches. A category filter
// prunes the fan-out to a single partition.
func (r *ComplaintRepository) partitions(f Filter) []CategoryPartition {
	if f.Category != "" {
		return []CategoryPartition{{Category: f.Category, Collection: r.router.Partition(f.Category)}}
	}
	return r.router.All()
}

// partitionReader is the read surface the fan-out runs against, one per
// partition. Implemented by CategoryPartition.
type partitionReader interface {
	Name() string
	Count(ctx context.Context, query bson.M) (int64, error)
	Fetch(ctx context.Context, query bson.M, sortDoc bson.D, limit int64) ([]models.Complaint, error)
}

func (r *ComplaintRepository) readers(f Filter) []partitionReader {
	parts := r.partitions(f)
	readers := make([]partitionReader, len(parts))
	for i, p := range parts {
		readers[i] = p
	}
	return readers
}

// Insert stores a new complaint in the partition of its category and returns
// it with the generated id filled in.
func (r *ComplaintRepository) Insert(ctx context.Context, c *models.Complaint) error {
	res, err := r.router.Partition(c.Category).InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("inserting complaint: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

// Query runs a scatter-gather read across every partition the filter
// touches, merges the partial results into one globally sorted sequence and
// applies skip/limit pagination over the merged whole. A partition that
// errors or times out is skipped with a warning; the response may undercount
// but never fails outright as long as at least the merge itself succeeds.
func (r *ComplaintRepository) Query(ctx context.Context, f Filter, sortSpec SortSpec, skip, limit int) ([]models.Complaint, int64, error) {
	query := f.bsonFilter(time.Now())

	// Each partition only needs its first skip+limit documents in sort
	// order; anything beyond that cannot appear on the requested page.
	var perPartition int64
	if limit > 0 {
		perPartition = int64(skip + limit)
	}
	items, total := gather(ctx, r.readers(f), query, sortSpec.bsonSort(), perPartition)
	return mergeResults(items, sortSpec, skip, limit), total, nil
}

// Count runs the counting half of the fan-out on its own. Errored partitions
// are skipped with a warning, matching Query's degradation behavior.
func (r *ComplaintRepository) Count(ctx context.Context, f Filter) (int64, error) {
	return gatherCounts(ctx, r.readers(f), f.bsonFilter(time.Now())), nil
}

// gather runs the scatter half of a fan-out read. A partition that errors or
// times out is skipped with a warning; the result may undercount, but the
// surviving partitions always come back.
func gather(ctx context.Context, readers []partitionReader, query bson.M, sortDoc bson.D, perPartition int64) ([]models.Complaint, int64) {
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		items []models.Complaint
		total int64
	)
	for _, rd := range readers {
		wg.Add(1)
		go func(rd partitionReader) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, partitionTimeout)
			defer cancel()

			n, err := rd.Count(pctx, query)
			if err != nil {
				log.Printf("[complaints] partition %s count failed, skipping: %v", rd.Name(), err)
				return
			}
			partial, err := rd.Fetch(pctx, query, sortDoc, perPartition)
			if err != nil {
				log.Printf("[complaints] partition %s query failed, skipping: %v", rd.Name(), err)
				return
			}
			mu.Lock()
			total += n
			items = append(items, partial...)
			mu.Unlock()
		}(rd)
	}
	wg.Wait()
	return items, total
}

// gatherCounts is the counting fan-out with the same skip-on-error
// degradation as gather.
func gatherCounts(ctx context.Context, readers []partitionReader, query bson.M) int64 {
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		total int64
	)
	for _, rd := range readers {
		wg.Add(1)
		go func(rd partitionReader) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, partitionTimeout)
			defer cancel()
			n, err := rd.Count(pctx, query)
			if err != nil {
				log.Printf("[complaints] partition %s count failed, skipping: %v", rd.Name(), err)
				return
			}
			mu.Lock()
			total += n
			mu.Unlock()
		}(rd)
	}
	wg.Wait()
	return total
}

// mergeResults globally re-sorts the gathered partials and pages over the
// merged sequence. Pure so the merge semantics are testable without Mongo.
func mergeResults(items []models.Complaint, sortSpec SortSpec, skip, limit int) []models.Complaint {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := sortSpec.key(&items[i]), sortSpec.key(&items[j])
		if sortSpec.Desc {
			return a.After(b)
		}
		return a.Before(b)
	})
	if skip >= len(items) {
		return []models.Complaint{}
	}
	items = items[skip:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// FindByRef resolves a complaint reference against every partition in the
// fixed category order. Per partition three identity forms are tried in
// sequence: the canonical object id, the human-readable complaint code, and
// finally a legacy raw-string primary key. First match wins.
func (r *ComplaintRepository) FindByRef(ctx context.Context, ref string) (*models.Complaint, DocRef, error) {
	oid, oidErr := primitive.ObjectIDFromHex(ref)
	for _, p := range r.router.All() {
		pctx, cancel := context.WithTimeout(ctx, partitionTimeout)

		if oidErr == nil {
			var c models.Complaint
			err := p.Collection.FindOne(pctx, bson.M{"_id": oid}).Decode(&c)
			if err == nil {
				cancel()
				return &c, DocRef{Category: p.Category, Key: ref, filter: bson.M{"_id": oid}}, nil
			}
			if err != mongo.ErrNoDocuments {
				log.Printf("[complaints] partition %s lookup failed: %v", p.Category, err)
			}
		}

		var c models.Complaint
		err := p.Collection.FindOne(pctx, bson.M{"complaint_id": ref}).Decode(&c)
		if err == nil {
			cancel()
			return &c, DocRef{Category: p.Category, Key: ref, filter: bson.M{"complaint_id": ref}}, nil
		}
		if err != mongo.ErrNoDocuments {
			log.Printf("[complaints] partition %s lookup failed: %v", p.Category, err)
		}

		// Documents imported from the legacy system carry a plain string
		// primary key, which cannot decode into an object id field.
		var raw bson.M
		err = p.Collection.FindOne(pctx, bson.M{"_id": ref}).Decode(&raw)
		cancel()
		if err == nil {
			delete(raw, "_id")
			data, merr := bson.Marshal(raw)
			if merr != nil {
				return nil, DocRef{}, fmt.Errorf("decoding legacy complaint: %w", merr)
			}
			var legacy models.Complaint
			if uerr := bson.Unmarshal(data, &legacy); uerr != nil {
				return nil, DocRef{}, fmt.Errorf("decoding legacy complaint: %w", uerr)
			}
			return &legacy, DocRef{Category: p.Category, Key: ref, filter: bson.M{"_id": ref}}, nil
		}
		if err != mongo.ErrNoDocuments {
			log.Printf("[complaints] partition %s lookup failed: %v", p.Category, err)
		}
	}
	// Not found anywhere. (nil, nil) so callers decide how to report it.
	return nil, DocRef{}, nil
}

// ApplyUpdate applies a partial field update to a complaint. Only fields
// explicitly set in the update are written; an explicitly cleared assignment
// stores null so readers see the unassigned state.
func (r *ComplaintRepository) ApplyUpdate(ctx context.Context, ref DocRef, upd models.ComplaintUpdate) error {
	set := bson.M{"updated_at": upd.UpdatedAt}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.Priority != nil {
		set["priority"] = *upd.Priority
	}
	if upd.SetAssignee {
		if upd.Assignee != nil {
			set["assigned_to"] = *upd.Assignee
		} else {
			set["assigned_to"] = nil
		}
	}
	if upd.AssignedAt != nil {
		set["assigned_at"] = *upd.AssignedAt
	}
	if upd.IsUrgent != nil {
		set["is_urgent"] = *upd.IsUrgent
	}
	if upd.SLADeadline != nil {
		set["sla_deadline"] = *upd.SLADeadline
	}
	if upd.Photo != nil {
		set["photo"] = *upd.Photo
	}
	res, err := r.router.Partition(ref.Category).UpdateOne(ctx, ref.filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("updating complaint %s: %w", ref.Key, err)
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

// PushComment appends a comment atomically so concurrent writers never lose
// each other's entries.
func (r *ComplaintRepository) PushComment(ctx context.Context, ref DocRef, c models.Comment) error {
	return r.push(ctx, ref, "comments", c)
}

// PushProgress appends a worker progress entry atomically.
func (r *ComplaintRepository) PushProgress(ctx context.Context, ref DocRef, p models.ProgressEntry) error {
	return r.push(ctx, ref, "progress", p)
}

// PushProofImage appends a proof upload reference atomically.
func (r *ComplaintRepository) PushProofImage(ctx context.Context, ref DocRef, img models.ProofImage) error {
	return r.push(ctx, ref, "proof_images", img)
}

func (r *ComplaintRepository) push(ctx context.Context, ref DocRef, field string, value interface{}) error {
	res, err := r.router.Partition(ref.Category).UpdateOne(ctx, ref.filter, bson.M{
		"$push": bson.M{field: value},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("appending to %s on complaint %s: %w", field, ref.Key, err)
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

// SetFeedback writes the one-time feedback. The filter requires the feedback
// slot to still be empty, so of two racing submissions exactly one wins; the
// loser sees ok=false.
func (r *ComplaintRepository) SetFeedback(ctx context.Context, ref DocRef, fb models.Feedback) (bool, error) {
	filter := bson.M{"feedback": nil}
	for k, v := range ref.filter {
		filter[k] = v
	}
	res, err := r.router.Partition(ref.Category).UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{"feedback": fb, "updated_at": time.Now()},
	})
	if err != nil {
		return false, fmt.Errorf("storing feedback on complaint %s: %w", ref.Key, err)
	}
	return res.ModifiedCount > 0, nil
}

// StatusCounts groups open/closed volumes by status across partitions.
func (r *ComplaintRepository) StatusCounts(ctx context.Context, f Filter) (map[models.Status]int64, error) {
	raw, err := r.groupCounts(ctx, f, "$status")
	if err != nil {
		return nil, err
	}
	out := make(map[models.Status]int64, len(raw))
	for k, v := range raw {
		out[models.Status(k)] = v
	}
	return out, nil
}

// PriorityCounts groups volumes by priority across partitions.
func (r *ComplaintRepository) PriorityCounts(ctx context.Context, f Filter) (map[models.Priority]int64, error) {
	raw, err := r.groupCounts(ctx, f, "$priority")
	if err != nil {
		return nil, err
	}
	out := make(map[models.Priority]int64, len(raw))
	for k, v := range raw {
		out[models.Priority(k)] = v
	}
	return out, nil
}

func (r *ComplaintRepository) groupCounts(ctx context.Context, f Filter, groupKey string) (map[string]int64, error) {
	query := f.bsonFilter(time.Now())
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: query}},
		{{Key: "$group", Value: bson.M{"_id": groupKey, "count": bson.M{"$sum": 1}}}},
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]int64)
	)
	for _, p := range r.partitions(f) {
		wg.Add(1)
		go func(p CategoryPartition) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, partitionTimeout)
			defer cancel()
			cur, err := p.Collection.Aggregate(pctx, pipeline)
			if err != nil {
				log.Printf("[complaints] partition %s aggregation failed, skipping: %v", p.Category, err)
				return
			}
			var rows []struct {
				ID    string `bson:"_id"`
				Count int64  `bson:"count"`
			}
			if err := cur.All(pctx, &rows); err != nil {
				log.Printf("[complaints] partition %s aggregation decode failed, skipping: %v", p.Category, err)
				return
			}
			mu.Lock()
			for _, row := range rows {
				out[row.ID] += row.Count
			}
			mu.Unlock()
		}(p)
	}
	wg.Wait()
	return out, nil
}

// CategoryCounts returns per-category volumes, one count per partition.
func (r *ComplaintRepository) CategoryCounts(ctx context.Context, f Filter) (map[string]int64, error) {
	query := f.bsonFilter(time.Now())

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]int64)
	)
	for _, p := range r.partitions(f) {
		wg.Add(1)
		go func(p CategoryPartition) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, partitionTimeout)
			defer cancel()
			n, err := p.Collection.CountDocuments(pctx, query)
			if err != nil {
				log.Printf("[complaints] partition %s count failed, skipping: %v", p.Category, err)
				return
			}
			mu.Lock()
			out[p.Category] = n
			mu.Unlock()
		}(p)
	}
	wg.Wait()
	return out, nil
}

// MonthlyTrend counts complaints created per calendar month over the last
// twelve months, keyed "YYYY-MM".
func (r *ComplaintRepository) MonthlyTrend(ctx context.Context) (map[string]int64, error) {
	since := time.Now().AddDate(-1, 0, 0)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$created_at"}},
			"count": bson.M{"$sum": 1},
		}}},
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]int64)
	)
	for _, p := range r.router.All() {
		wg.Add(1)
		go func(p CategoryPartition) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, partitionTimeout)
			defer cancel()
			cur, err := p.Collection.Aggregate(pctx, pipeline)
			if err != nil {
				log.Printf("[complaints] partition %s trend aggregation failed, skipping: %v", p.Category, err)
				return
			}
			var rows []struct {
				ID    string `bson:"_id"`
				Count int64  `bson:"count"`
			}
			if err := cur.All(pctx, &rows); err != nil {
				log.Printf("[complaints] partition %s trend decode failed, skipping: %v", p.Category, err)
				return
			}
			mu.Lock()
			for _, row := range rows {
				out[row.ID] += row.Count
			}
			mu.Unlock()
		}(p)
	}
	wg.Wait()
	return out, nil
}

// ResolutionStats averages the creation-to-last-update span of terminal
// complaints, in days.
func (r *ComplaintRepository) ResolutionStats(ctx context.Context) (avgDays float64, count int64, err error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$in": []models.Status{models.StatusResolved, models.StatusClosed}}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": bson.M{"$subtract": bson.A{"$updated_at", "$created_at"}}},
			"count": bson.M{"$sum": 1},
		}}},
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		totalMs int64
	)
	for _, p := range r.router.All() {
		wg.Add(1)
		go func(p CategoryPartition) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, partitionTimeout)
			defer cancel()
			cur, aerr := p.Collection.Aggregate(pctx, pipeline)
			if aerr != nil {
				log.Printf("[complaints] partition %s resolution aggregation failed, skipping: %v", p.Category, aerr)
				return
			}
			var rows []struct {
				Total int64 `bson:"total"`
				Count int64 `bson:"count"`
			}
			if derr := cur.All(pctx, &rows); derr != nil {
				log.Printf("[complaints] partition %s resolution decode failed, skipping: %v", p.Category, derr)
				return
			}
			mu.Lock()
			for _, row := range rows {
				totalMs += row.Total
				count += row.Count
			}
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	if count == 0 {
		return 0, 0, nil
	}
	const msPerDay = 24 * 60 * 60 * 1000
	return float64(totalMs) / float64(count) / msPerDay, count, nil
}

// RatingStats averages citizen feedback ratings across partitions.
func (r *ComplaintRepository) RatingStats(ctx context.Context) (avg float64, count int64, err error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"feedback": bson.M{"$ne": nil}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"sum":   bson.M{"$sum": "$feedback.rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sum int64
	)
	for _, p := range r.router.All() {
		wg.Add(1)
		go func(p CategoryPartition) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, partitionTimeout)
			defer cancel()
			cur, aerr := p.Collection.Aggregate(pctx, pipeline)
			if aerr != nil {
				log.Printf("[complaints] partition %s rating aggregation failed, skipping: %v", p.Category, aerr)
				return
			}
			var rows []struct {
				Sum   int64 `bson:"sum"`
				Count int64 `bson:"count"`
			}
			if derr := cur.All(pctx, &rows); derr != nil {
				log.Printf("[complaints] partition %s rating decode failed, skipping: %v", p.Category, derr)
				return
			}
			mu.Lock()
			for _, row := range rows {
				sum += row.Sum
				count += row.Count
			}
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}
