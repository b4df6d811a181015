package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/dataspeak/backend/internal/storage/models"
	"github.com/dataspeak/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS query_history (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		query_text TEXT NOT NULL,
		language TEXT,
		query_pattern TEXT,
		complexity_level TEXT,
		generated_sql TEXT,
		confidence REAL,
		row_count INTEGER,
		cached INTEGER DEFAULT 0,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_query_user ON query_history(user_id);
	CREATE INDEX IF NOT EXISTS idx_query_created ON query_history(created_at);
	CREATE INDEX IF NOT EXISTS idx_query_pattern ON query_history(query_pattern);

	CREATE TABLE IF NOT EXISTS query_failures (
		session_id TEXT PRIMARY KEY,
		user_id TEXT,
		query_text TEXT NOT NULL,
		unknown_count INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_failures_created ON query_failures(created_at);

	CREATE TABLE IF NOT EXISTS unknown_words (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		word TEXT NOT NULL,
		position INTEGER,
		context TEXT,
		suggested_type TEXT,
		suggestion TEXT,
		confidence REAL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (session_id) REFERENCES query_failures(session_id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_unknown_session ON unknown_words(session_id);
	CREATE INDEX IF NOT EXISTS idx_unknown_word ON unknown_words(word);

	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query_id TEXT NOT NULL,
		helpful INTEGER NOT NULL,
		comment TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (query_id) REFERENCES query_history(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_query ON feedback(query_id);

	CREATE TABLE IF NOT EXISTS datasets (
		table_name TEXT PRIMARY KEY,
		columns TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertQueryRecord(record *models.QueryRecord) error {
	query := `
		INSERT INTO query_history (id, user_id, query_text, language, query_pattern,
			complexity_level, generated_sql, confidence, row_count, cached, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	cached := 0
	if record.Cached {
		cached = 1
	}

	_, err := c.db.Exec(
		query,
		record.ID,
		record.UserID,
		record.QueryText,
		record.Language,
		record.Pattern,
		record.Complexity,
		record.SQL,
		record.Confidence,
		record.RowCount,
		cached,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert query record: %w", err)
	}

	logger.Debug("Query recorded",
		zap.String("query_id", record.ID),
		zap.String("pattern", record.Pattern),
	)

	return nil
}

func (c *Client) InsertFailure(failure *models.FailureRecord, unknowns []models.UnknownWordRecord) error {
	query := `
		INSERT INTO query_failures (session_id, user_id, query_text, unknown_count, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		failure.SessionID,
		failure.UserID,
		failure.QueryText,
		failure.UnknownCount,
		failure.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert failure record: %w", err)
	}

	for _, u := range unknowns {
		_, err := c.db.Exec(
			`INSERT INTO unknown_words (session_id, word, position, context, suggested_type, suggestion, confidence, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			failure.SessionID,
			u.Word,
			u.Position,
			u.Context,
			u.SuggestedType,
			u.Suggestion,
			u.Confidence,
			u.CreatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert unknown word: %w", err)
		}
	}

	logger.Info("Query failure recorded",
		zap.String("session_id", failure.SessionID),
		zap.Int("unknown_words", len(unknowns)),
	)

	return nil
}

func (c *Client) GetQueryHistory(userID string, limit int) ([]models.QueryRecord, error) {
	query := `
		SELECT id, query_text, language, query_pattern, complexity_level, confidence, latency_ms, created_at
		FROM query_history
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get query history: %w", err)
	}
	defer rows.Close()

	var records []models.QueryRecord
	for rows.Next() {
		var r models.QueryRecord
		var createdAt int64

		err := rows.Scan(&r.ID, &r.QueryText, &r.Language, &r.Pattern, &r.Complexity, &r.Confidence, &r.LatencyMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, nil
}

func (c *Client) StoreFeedback(feedback *models.Feedback) error {
	query := `INSERT INTO feedback (query_id, helpful, comment, created_at) VALUES (?, ?, ?, ?)`

	helpful := 0
	if feedback.Helpful {
		helpful = 1
	}

	_, err := c.db.Exec(
		query,
		feedback.QueryID,
		helpful,
		feedback.Comment,
		time.Now().Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}

	logger.Info("Feedback stored",
		zap.String("query_id", feedback.QueryID),
		zap.Bool("helpful", feedback.Helpful),
	)

	return nil
}

// CreateDatasetTable drops and recreates a dataset table. Column types
// come from the ingestion layer's sniffing.
func (c *Client) CreateDatasetTable(table string, columns []string, numeric map[string]bool) error {
	if len(columns) == 0 {
		return fmt.Errorf("dataset has no columns")
	}

	_, err := c.db.Exec("DROP TABLE IF EXISTS " + quoteIdent(table))
	if err != nil {
		return fmt.Errorf("failed to drop existing dataset table: %w", err)
	}

	defs := make([]string, len(columns))
	for i, col := range columns {
		colType := "TEXT"
		if numeric[col] {
			colType = "REAL"
		}
		defs[i] = quoteIdent(col) + " " + colType
	}

	_, err = c.db.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", ")))
	if err != nil {
		return fmt.Errorf("failed to create dataset table: %w", err)
	}

	return nil
}

func (c *Client) InsertDatasetRows(table string, columns []string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(columns)), ",")
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdent(col)
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), placeholders)

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(insert)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row...); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert dataset row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset rows: %w", err)
	}

	return nil
}

func (c *Client) RecordDataset(info *models.DatasetInfo) error {
	query := `
		INSERT INTO datasets (table_name, columns, row_count, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(table_name) DO UPDATE SET
			columns = excluded.columns,
			row_count = excluded.row_count,
			created_at = excluded.created_at
	`

	_, err := c.db.Exec(query, info.Table, strings.Join(info.Columns, ","), info.RowCount, info.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to record dataset: %w", err)
	}

	return nil
}

// ExecuteSQL runs a generated SELECT and returns its rows as maps. Only
// the SQL generator feeds this; user text never reaches it directly.
func (c *Client) ExecuteSQL(query string) ([]map[string]interface{}, error) {
	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return results, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
