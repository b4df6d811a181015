package models

import "time"

type QueryRecord struct {
	ID         string
	UserID     string
	QueryText  string
	Language   string
	Pattern    string
	Complexity string
	SQL        string
	Confidence float64
	RowCount   int
	Cached     bool
	LatencyMS  int
	CreatedAt  time.Time
}

type FailureRecord struct {
	SessionID    string
	UserID       string
	QueryText    string
	UnknownCount int
	CreatedAt    time.Time
}

type UnknownWordRecord struct {
	ID            int
	SessionID     string
	Word          string
	Position      int
	Context       string
	SuggestedType string
	Suggestion    string
	Confidence    float64
	CreatedAt     time.Time
}

type Feedback struct {
	ID        int
	QueryID   string
	Helpful   bool
	Comment   string
	CreatedAt time.Time
}

type DatasetInfo struct {
	Table     string
	Columns   []string
	RowCount  int
	CreatedAt time.Time
}
