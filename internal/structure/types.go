package structure

import (
	"time"

	"github.com/dataspeak/backend/internal/classify"
	"github.com/dataspeak/backend/internal/lexicon"
	"github.com/dataspeak/backend/internal/patterns"
)

type QueryPattern string

const (
	PatternUnknown             QueryPattern = "unknown"
	PatternAggregation         QueryPattern = "aggregation"
	PatternReferenced          QueryPattern = "referenced"
	PatternTopN                QueryPattern = "top_n"
	PatternTemporalConditional QueryPattern = "temporal_conditional"
	PatternListAll             QueryPattern = "list_all"
	PatternShowRows            QueryPattern = "show_rows"
	PatternMultiDimension      QueryPattern = "multi_dimension"
	PatternMultiMetric         QueryPattern = "multi_metric"
)

type ComplexityLevel string

const (
	ComplexitySimple      ComplexityLevel = "simple"
	ComplexityModerate    ComplexityLevel = "moderate"
	ComplexityComplex     ComplexityLevel = "complex"
	ComplexityVeryComplex ComplexityLevel = "very_complex"
	ComplexityExtreme     ComplexityLevel = "extreme"
)

// Rank orders complexity levels for comparisons in callers and tests.
func (c ComplexityLevel) Rank() int {
	switch c {
	case ComplexitySimple:
		return 0
	case ComplexityModerate:
		return 1
	case ComplexityComplex:
		return 2
	case ComplexityVeryComplex:
		return 3
	case ComplexityExtreme:
		return 4
	default:
		return -1
	}
}

// QueryStructure is the validated root aggregate handed to the SQL
// generator. If it exists, it holds no unknown tokens.
type QueryStructure struct {
	SourceText     string           `json:"source_text"`
	Language       lexicon.Language `json:"language"`
	MainDimension  string           `json:"main_dimension,omitempty"`
	MainDimensions []string         `json:"main_dimensions,omitempty"`

	Operations       []lexicon.OperationType      `json:"operations,omitempty"`
	Metrics          []string                     `json:"metrics,omitempty"`
	ColumnConditions []classify.ColumnValuePair   `json:"column_conditions,omitempty"`
	TemporalFilters  []patterns.TemporalFilter    `json:"temporal_filters,omitempty"`
	Values           []string                     `json:"values,omitempty"`
	Connectors       []string                     `json:"connectors,omitempty"`

	Compound       []patterns.CompoundCriteria    `json:"compound_criteria,omitempty"`
	Ranking        *patterns.RankingCriteria      `json:"ranking_criteria,omitempty"`
	Exclusions     []patterns.ExclusionFilter     `json:"exclusion_filters,omitempty"`
	AdvancedRange  *patterns.AdvancedTemporalInfo `json:"advanced_temporal,omitempty"`
	MultiDimension *patterns.MultiDimension       `json:"multi_dimension,omitempty"`
	MultiMetric    *patterns.MultiMetric          `json:"multi_metric,omitempty"`
	Superlative    *patterns.Superlative          `json:"superlative,omitempty"`
	Flags          []patterns.FlagColumn          `json:"flag_columns,omitempty"`

	IsCompoundQuery       bool `json:"is_compound_query"`
	IsRankingQuery        bool `json:"is_ranking_query"`
	IsMultiDimensionQuery bool `json:"is_multi_dimension_query"`

	Pattern         QueryPattern    `json:"query_pattern"`
	ReferenceMetric string          `json:"reference_metric,omitempty"`
	Limit           int             `json:"limit,omitempty"`
	Confidence      float64         `json:"confidence"`
	Complexity      ComplexityLevel `json:"complexity_level"`
	Intent          string          `json:"intent"`
}

// QueryFailure is terminal evidence of an unclassifiable query. No
// downstream consumer may attempt partial execution from it.
type QueryFailure struct {
	SessionID    string                 `json:"session_id"`
	OriginalText string                 `json:"original_text"`
	UnknownWords []classify.UnknownWord `json:"unknown_words"`
	Timestamp    time.Time              `json:"timestamp"`
}
