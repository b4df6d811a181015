package patterns

import (
	"github.com/dataspeak/backend/internal/lexicon"
)

// CompoundCriteria is one operation+metric pair inside a multi-criteria
// query.
type CompoundCriteria struct {
	Operation  lexicon.OperationType `json:"operation"`
	Metric     string                `json:"metric"`
	Confidence float64               `json:"confidence"`
	RawTokens  []string              `json:"raw_tokens"`
}

// RankingUnit distinguishes "top 5" from "top 10 percent".
type RankingUnit string

const (
	RankCount   RankingUnit = "count"
	RankPercent RankingUnit = "percent"
)

// RankingCriteria describes a top/bottom N query. At most one per query.
type RankingCriteria struct {
	Direction  string                `json:"direction"`
	Unit       RankingUnit           `json:"unit"`
	Value      int                   `json:"value"`
	Metric     string                `json:"metric,omitempty"`
	Operation  lexicon.OperationType `json:"operation,omitempty"`
	Confidence float64               `json:"confidence"`
}

// Comparison names the predicate inside an exclusion filter. The filter
// removes rows matching it.
type Comparison string

const (
	CompareEquals      Comparison = "equals"
	CompareNotEquals   Comparison = "not_equals"
	CompareGreaterThan Comparison = "greater_than"
	CompareLessThan    Comparison = "less_than"
)

type ExclusionFilter struct {
	Comparison Comparison `json:"comparison"`
	Column     string     `json:"column"`
	Value      string     `json:"value"`
	Confidence float64    `json:"confidence"`
}

// TemporalFilter is a recognized time condition before range analysis.
type TemporalFilter struct {
	Indicator string               `json:"indicator"`
	Quantity  int                  `json:"quantity"`
	Unit      string               `json:"unit"`
	Kind      lexicon.TemporalKind `json:"kind"`
	Week      int                  `json:"week,omitempty"`
	Year      int                  `json:"year,omitempty"`
}

// AdvancedTemporalInfo wraps a TemporalFilter with its range shape.
// Exactly one of the three flags is set for range filters; none for
// plain exact-period or rolling-window filters.
type AdvancedTemporalInfo struct {
	Filter    TemporalFilter `json:"filter"`
	OpenStart bool           `json:"open_start"`
	OpenEnd   bool           `json:"open_end"`
	Bounded   bool           `json:"bounded"`
	Start     int            `json:"start"`
	End       int            `json:"end"`
}

type MultiDimension struct {
	Dimensions []string `json:"dimensions"`
	Confidence float64  `json:"confidence"`
}

type MultiMetric struct {
	Metrics    []string `json:"metrics"`
	Confidence float64  `json:"confidence"`
}

// Superlative is "highest"/"lowest" phrasing: an implicit top-1 or
// bottom-1 ranking.
type Superlative struct {
	Direction  string                `json:"direction"`
	Metric     string                `json:"metric,omitempty"`
	Operation  lexicon.OperationType `json:"operation"`
	Confidence float64               `json:"confidence"`
}

// FlagColumn is a recognized yes/no column condition.
type FlagColumn struct {
	Column     string  `json:"column"`
	Expected   string  `json:"expected"`
	RawToken   string  `json:"raw_token"`
	Confidence float64 `json:"confidence"`
}

// Kind identifies one detector for priority ordering.
type Kind string

const (
	KindRanking        Kind = "ranking"
	KindCompound       Kind = "compound"
	KindMultiMetric    Kind = "multi_metric"
	KindMultiDimension Kind = "multi_dimension"
	KindTemporal       Kind = "temporal"
	KindExclusion      Kind = "exclusion"
	KindSuperlative    Kind = "superlative"
	KindFlag           Kind = "flag"
)

// DefaultPriority resolves overlapping claims between detectors. Ranking
// precedes compound and multi-metric detection: a ranking query is a more
// specific compound shape. Callers may supply their own order.
var DefaultPriority = []Kind{
	KindRanking,
	KindCompound,
	KindMultiMetric,
	KindMultiDimension,
	KindTemporal,
	KindExclusion,
	KindSuperlative,
	KindFlag,
}

// Outputs collects every detector result for the structure builder.
type Outputs struct {
	Compound       []CompoundCriteria
	Ranking        *RankingCriteria
	Exclusions     []ExclusionFilter
	Temporal       []TemporalFilter
	AdvancedRange  *AdvancedTemporalInfo
	MultiDimension *MultiDimension
	MultiMetric    *MultiMetric
	Superlative    *Superlative
	Flags          []FlagColumn
	Priority       []Kind
}
