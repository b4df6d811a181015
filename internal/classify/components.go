package classify

import (
	"time"

	"github.com/dataspeak/backend/internal/lexicon"
)

// QueryComponent is one classified token. Immutable once produced.
type QueryComponent struct {
	Text       string                `json:"text"`
	Type       lexicon.ComponentType `json:"-"`
	TypeName   string                `json:"type"`
	Confidence float64               `json:"confidence"`
	Subtype    string                `json:"subtype,omitempty"`
	Value      string                `json:"value,omitempty"`
	Column     string                `json:"column,omitempty"`
	Position   int                   `json:"position"`
	Metadata   map[string]string     `json:"metadata,omitempty"`
}

// ColumnValuePair associates a literal value with the column-bearing word
// next to it, e.g. "store A".
type ColumnValuePair struct {
	Column     string  `json:"column"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	RawText    string  `json:"raw_text"`
}

// UnknownWord captures an unrecognized token with enough context for the
// suggestion and learning workflows that live outside this core.
type UnknownWord struct {
	Word          string    `json:"word"`
	Position      int       `json:"position"`
	Context       string    `json:"context"`
	SuggestedType string    `json:"suggested_type,omitempty"`
	Suggestion    string    `json:"suggestion,omitempty"`
	Confidence    float64   `json:"confidence"`
	Timestamp     time.Time `json:"timestamp"`
}

// Result is the classifier's output for one query.
type Result struct {
	Components []QueryComponent
	Pairs      []ColumnValuePair
	Unknowns   []UnknownWord
	Language   lexicon.Language
}
