package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataspeak/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.InitSchema())
	return c
}

func TestQueryHistoryRoundTrip(t *testing.T) {
	c := newTestClient(t)

	record := &models.QueryRecord{
		ID:         "q-1",
		UserID:     "user-1",
		QueryText:  "total sales by store",
		Language:   "en",
		Pattern:    "aggregation",
		Complexity: "moderate",
		SQL:        `SELECT "store", SUM("sales") AS "sales" FROM "dataset" GROUP BY "store"`,
		Confidence: 0.95,
		RowCount:   3,
		LatencyMS:  12,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, c.InsertQueryRecord(record))

	records, err := c.GetQueryHistory("user-1", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, "q-1", got.ID)
	assert.Equal(t, "total sales by store", got.QueryText)
	assert.Equal(t, "aggregation", got.Pattern)
	assert.Equal(t, "moderate", got.Complexity)
	assert.Equal(t, 0.95, got.Confidence)
	assert.Equal(t, 12, got.LatencyMS)

	// History is per user.
	records, err = c.GetQueryHistory("someone-else", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestQueryHistoryOrderAndLimit(t *testing.T) {
	c := newTestClient(t)

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"q-1", "q-2", "q-3"} {
		require.NoError(t, c.InsertQueryRecord(&models.QueryRecord{
			ID:        id,
			UserID:    "user-1",
			QueryText: "q",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	records, err := c.GetQueryHistory("user-1", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "q-3", records[0].ID)
	assert.Equal(t, "q-2", records[1].ID)
}

func TestInsertFailureWithUnknowns(t *testing.T) {
	c := newTestClient(t)

	failure := &models.FailureRecord{
		SessionID:    "sess-1",
		UserID:       "user-1",
		QueryText:    "total salez by store",
		UnknownCount: 1,
		CreatedAt:    time.Now(),
	}
	unknowns := []models.UnknownWordRecord{
		{
			Word:          "salez",
			Position:      1,
			Context:       "total salez by store",
			SuggestedType: "operation",
			Suggestion:    "sales",
			Confidence:    0.83,
			CreatedAt:     time.Now(),
		},
	}
	require.NoError(t, c.InsertFailure(failure, unknowns))

	var count int
	require.NoError(t, c.db.QueryRow(
		"SELECT COUNT(*) FROM unknown_words WHERE session_id = ?", "sess-1").Scan(&count))
	assert.Equal(t, 1, count)

	// Unknown words require their parent failure row.
	orphan := []models.UnknownWordRecord{{Word: "x", CreatedAt: time.Now()}}
	err := c.InsertFailure(&models.FailureRecord{SessionID: "sess-1", QueryText: "dup", CreatedAt: time.Now()}, orphan)
	assert.Error(t, err, "duplicate session id must be rejected")
}

func TestStoreFeedbackRequiresQuery(t *testing.T) {
	c := newTestClient(t)

	err := c.StoreFeedback(&models.Feedback{QueryID: "missing", Helpful: true})
	assert.Error(t, err)

	require.NoError(t, c.InsertQueryRecord(&models.QueryRecord{
		ID:        "q-1",
		UserID:    "user-1",
		QueryText: "q",
		CreatedAt: time.Now(),
	}))
	assert.NoError(t, c.StoreFeedback(&models.Feedback{QueryID: "q-1", Helpful: true, Comment: "spot on"}))
}

func TestDatasetLifecycle(t *testing.T) {
	c := newTestClient(t)

	columns := []string{"store", "sales"}
	numeric := map[string]bool{"sales": true}
	require.NoError(t, c.CreateDatasetTable("dataset", columns, numeric))

	rows := [][]interface{}{
		{"A", 100.0},
		{"B", 250.0},
		{"A", 50.0},
	}
	require.NoError(t, c.InsertDatasetRows("dataset", columns, rows))

	require.NoError(t, c.RecordDataset(&models.DatasetInfo{
		Table:     "dataset",
		Columns:   columns,
		RowCount:  len(rows),
		CreatedAt: time.Now(),
	}))

	results, err := c.ExecuteSQL(`SELECT "store", SUM("sales") AS "sales" FROM "dataset" GROUP BY "store" ORDER BY "sales" DESC`)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "B", results[0]["store"])
	assert.Equal(t, 250.0, results[0]["sales"])
	assert.Equal(t, "A", results[1]["store"])
	assert.Equal(t, 150.0, results[1]["sales"])

	// Re-upload replaces the table and updates the catalog row.
	require.NoError(t, c.CreateDatasetTable("dataset", columns, numeric))
	require.NoError(t, c.InsertDatasetRows("dataset", columns, [][]interface{}{{"C", 1.0}}))
	require.NoError(t, c.RecordDataset(&models.DatasetInfo{
		Table:     "dataset",
		Columns:   columns,
		RowCount:  1,
		CreatedAt: time.Now(),
	}))

	results, err = c.ExecuteSQL(`SELECT COUNT(*) AS n FROM "dataset"`)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.EqualValues(t, 1, results[0]["n"])

	var rowCount int
	require.NoError(t, c.db.QueryRow(
		"SELECT row_count FROM datasets WHERE table_name = ?", "dataset").Scan(&rowCount))
	assert.Equal(t, 1, rowCount)
}

func TestCreateDatasetTableRejectsEmpty(t *testing.T) {
	c := newTestClient(t)
	assert.Error(t, c.CreateDatasetTable("dataset", nil, nil))
}

func TestInsertDatasetRowsEmptyIsNoop(t *testing.T) {
	c := newTestClient(t)
	require.NoError(t, c.CreateDatasetTable("dataset", []string{"store"}, nil))
	assert.NoError(t, c.InsertDatasetRows("dataset", []string{"store"}, nil))
}
