package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"civictrack/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func complaintAt(code string, created time.Time) models.Complaint {
	return models.Complaint{Code: code, CreatedAt: created, UpdatedAt: created, SLADeadline: created.AddDate(0, 0, 5)}
}

func TestMergeResultsGlobalSort(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	// Partials arrive partition by partition, so interleaved in time.
	items := []models.Complaint{
		complaintAt("A1", base.Add(1*time.Hour)),
		complaintAt("A2", base.Add(5*time.Hour)),
		complaintAt("B1", base.Add(3*time.Hour)),
		complaintAt("B2", base.Add(7*time.Hour)),
	}

	got := mergeResults(items, DefaultSort, 0, 10)
	codes := make([]string, 0, len(got))
	for _, c := range got {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"B2", "A2", "B1", "A1"}, codes, "newest first across partitions")
}

func TestMergeResultsPagination(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	var items []models.Complaint
	for i := 0; i < 7; i++ {
		items = append(items, complaintAt(string(rune('A'+i)), base.Add(time.Duration(i)*time.Hour)))
	}

	page2 := mergeResults(items, DefaultSort, 3, 3)
	require.Len(t, page2, 3)
	assert.Equal(t, "D", page2[0].Code)
	assert.Equal(t, "B", page2[2].Code)

	// Pagination is over the merged whole, so the last page is short.
	page3 := mergeResults(items, DefaultSort, 6, 3)
	require.Len(t, page3, 1)
	assert.Equal(t, "A", page3[0].Code)

	// Skipping past the end yields an empty page, not an error.
	assert.Empty(t, mergeResults(items, DefaultSort, 50, 3))
}

func TestMergeResultsAscending(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	items := []models.Complaint{
		complaintAt("B", base.Add(2 * time.Hour)),
		complaintAt("A", base.Add(1 * time.Hour)),
	}
	got := mergeResults(items, SortSpec{Field: "created_at", Desc: false}, 0, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Code)
}

func TestMergeResultsToleratesMissingPartition(t *testing.T) {
	// When a partition errors its partial simply never arrives; the merge
	// still produces a well-formed, sorted page from what did arrive.
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	survivors := []models.Complaint{
		complaintAt("A1", base.Add(1 * time.Hour)),
		complaintAt("A2", base.Add(2 * time.Hour)),
	}
	got := mergeResults(survivors, DefaultSort, 0, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "A2", got[0].Code)
}

// stubPartition stands in for one partition of a fan-out read.
type stubPartition struct {
	name string
	docs []models.Complaint
	err  error
}

func (s stubPartition) Name() string { return s.name }

func (s stubPartition) Count(context.Context, bson.M) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(s.docs)), nil
}

func (s stubPartition) Fetch(_ context.Context, _ bson.M, _ bson.D, limit int64) ([]models.Complaint, error) {
	if s.err != nil {
		return nil, s.err
	}
	docs := s.docs
	if limit > 0 && int64(len(docs)) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func TestGatherSkipsErroredPartition(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	readers := []partitionReader{
		stubPartition{name: "Road Damage", docs: []models.Complaint{
			complaintAt("R1", base.Add(1 * time.Hour)),
			complaintAt("R2", base.Add(4 * time.Hour)),
		}},
		stubPartition{name: "Water Supply", err: errors.New("connection reset by peer")},
		stubPartition{name: "Garbage Collection", docs: []models.Complaint{
			complaintAt("G1", base.Add(2 * time.Hour)),
		}},
	}

	items, total := gather(context.Background(), readers, bson.M{}, DefaultSort.bsonSort(), 0)
	page := mergeResults(items, DefaultSort, 0, 10)

	codes := make([]string, 0, len(page))
	for _, c := range page {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"R2", "G1", "R1"}, codes, "surviving partitions still form a sorted page")
	// The dead partition's documents are simply absent: the total
	// undercounts and no error reaches the caller.
	assert.Equal(t, int64(3), total)
}

func TestGatherCountsSkipsErroredPartition(t *testing.T) {
	readers := []partitionReader{
		stubPartition{name: "Road Damage", docs: make([]models.Complaint, 4)},
		stubPartition{name: "Water Supply", err: errors.New("server selection timeout")},
	}
	assert.Equal(t, int64(4), gatherCounts(context.Background(), readers, bson.M{}))
}

func TestFilterToBSON(t *testing.T) {
	now := time.Now()

	t.Run("zero filter matches everything", func(t *testing.T) {
		assert.Empty(t, Filter{}.bsonFilter(now))
	})

	t.Run("user and status", func(t *testing.T) {
		q := Filter{UserID: 7, Status: models.StatusPending}.bsonFilter(now)
		assert.Equal(t, int64(7), q["user_id"])
		assert.Equal(t, models.StatusPending, q["status"])
	})

	t.Run("breached implies open", func(t *testing.T) {
		q := Filter{BreachedOnly: true}.bsonFilter(now)
		require.Contains(t, q, "sla_deadline")
		status, ok := q["status"].(bson.M)
		require.True(t, ok, "breached filter must exclude terminal statuses")
		assert.Contains(t, status, "$nin")
	})

	t.Run("explicit status combined with open-only", func(t *testing.T) {
		q := Filter{Status: models.StatusResolved, OpenOnly: true}.bsonFilter(now)
		require.NotContains(t, q, "status")
		and, ok := q["$and"].(bson.A)
		require.True(t, ok, "both status constraints must survive")
		assert.Len(t, and, 2)
	})

	t.Run("search spans code, location and description", func(t *testing.T) {
		q := Filter{Search: "pothole"}.bsonFilter(now)
		or, ok := q["$or"].(bson.A)
		require.True(t, ok)
		assert.Len(t, or, 3)
	})
}
