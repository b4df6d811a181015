package structure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataspeak/backend/internal/classify"
	"github.com/dataspeak/backend/internal/lexicon"
	"github.com/dataspeak/backend/internal/patterns"
)

func newTestIndex(t *testing.T) *lexicon.Index {
	t.Helper()
	return lexicon.NewIndex(&lexicon.Dictionaries{
		Dimensions: []string{"store", "product"},
		Metrics:    []string{"sales", "inventory"},
		Operations: []lexicon.OperationEntry{
			{Kind: "sum", Anchors: []string{"sum", "total"}},
			{Kind: "average", Anchors: []string{"average"}},
		},
		Connectors: map[string][]string{
			"en": {"with", "by", "of", "and", "for"},
		},
		TemporalIndicators: []lexicon.TemporalEntry{
			{Indicator: "week", Unit: "week", Kind: lexicon.TemporalExact, Variants: []string{"weeks"}},
			{Indicator: "last", Unit: "", Kind: lexicon.TemporalRolling},
		},
		WordNumbers: map[string]map[string]int{
			"en": {"five": 5},
		},
		KnownColumns: []string{"store", "week"},
		RankingWords: map[string][]string{
			"top":     {"top"},
			"bottom":  {"bottom"},
			"percent": {"percent", "%"},
		},
		ExclusionWords: map[string][]string{
			"en": {"excluding"},
		},
		RangeWords: map[string][]string{
			"from":    {"from"},
			"to":      {"to"},
			"between": {"between"},
		},
		SuperlativeWords: map[string]string{
			"highest": "top",
			"lowest":  "bottom",
		},
		ListWords:      []string{"show me all"},
		ReferenceWords: []string{"versus"},
	}, nil)
}

// runPipeline classifies, detects and builds in one step, the way the
// engine drives a live query.
func runPipeline(t *testing.T, idx *lexicon.Index, source string) (*QueryStructure, *QueryFailure) {
	t.Helper()
	tokens := strings.Fields(source)
	res := classify.NewClassifier(idx, nil).ClassifyTokens(lexicon.English, tokens)
	det := patterns.DetectAll(idx, res, nil)
	return NewBuilder(idx, nil).Build(source, res, det)
}

func TestBuildFailsClosedOnUnknowns(t *testing.T) {
	idx := newTestIndex(t)

	qs, failure := runPipeline(t, idx, "total zzzqx by store")
	assert.Nil(t, qs)
	require.NotNil(t, failure)

	assert.NotEmpty(t, failure.SessionID)
	assert.Equal(t, "total zzzqx by store", failure.OriginalText)
	require.Len(t, failure.UnknownWords, 1)
	assert.Equal(t, "zzzqx", failure.UnknownWords[0].Word)
	assert.False(t, failure.Timestamp.IsZero())
}

func TestBuildTopNWithExclusion(t *testing.T) {
	idx := newTestIndex(t)

	qs, failure := runPipeline(t, idx, "top five stores by sales excluding store A")
	require.Nil(t, failure)
	require.NotNil(t, qs)

	assert.Equal(t, PatternTopN, qs.Pattern)
	assert.Equal(t, "rank", qs.Intent)
	assert.Equal(t, "store", qs.MainDimension)
	assert.True(t, qs.IsRankingQuery)
	assert.Equal(t, 5, qs.Limit)

	require.NotNil(t, qs.Ranking)
	assert.Equal(t, "top", qs.Ranking.Direction)
	assert.Equal(t, "sales", qs.Ranking.Metric)

	require.Len(t, qs.Exclusions, 1)
	assert.Equal(t, "store", qs.Exclusions[0].Column)
	assert.Equal(t, "A", qs.Exclusions[0].Value)

	require.Len(t, qs.ColumnConditions, 1)

	// One pair, one exclusion and the ranking itself: 2 + 2 + 3 = 7.
	assert.Equal(t, ComplexityVeryComplex, qs.Complexity)
	assert.InDelta(t, 0.95, qs.Confidence, 0.001)
}

func TestBuildSuperlativeImpliesTopOne(t *testing.T) {
	idx := newTestIndex(t)

	qs, failure := runPipeline(t, idx, "store with highest sales")
	require.Nil(t, failure)
	require.NotNil(t, qs)

	assert.Equal(t, PatternTopN, qs.Pattern)
	assert.True(t, qs.IsRankingQuery)
	assert.Equal(t, 1, qs.Limit)

	require.NotNil(t, qs.Ranking)
	assert.Equal(t, "top", qs.Ranking.Direction)
	assert.Equal(t, 1, qs.Ranking.Value)
	assert.Equal(t, "sales", qs.Ranking.Metric)
	assert.Equal(t, lexicon.OpMax, qs.Ranking.Operation)

	// The max/sales pair restates the ranking; it is not a compound query.
	assert.False(t, qs.IsCompoundQuery)
	assert.Empty(t, qs.Compound)
}

func TestBuildCompoundMultiMetric(t *testing.T) {
	idx := newTestIndex(t)

	qs, failure := runPipeline(t, idx, "total sales and average inventory by store")
	require.Nil(t, failure)
	require.NotNil(t, qs)

	assert.Equal(t, PatternMultiMetric, qs.Pattern)
	assert.True(t, qs.IsCompoundQuery)
	require.Len(t, qs.Compound, 2)
	assert.Equal(t, lexicon.OpSum, qs.Compound[0].Operation)
	assert.Equal(t, "sales", qs.Compound[0].Metric)
	assert.Equal(t, lexicon.OpAverage, qs.Compound[1].Operation)
	assert.Equal(t, "inventory", qs.Compound[1].Metric)

	require.NotNil(t, qs.MultiMetric)
	assert.Equal(t, []string{"sales", "inventory"}, qs.MultiMetric.Metrics)

	assert.Equal(t, ComplexityComplex, qs.Complexity)
}

func TestBuildRangeSupersedesPlainFilters(t *testing.T) {
	idx := newTestIndex(t)

	qs, failure := runPipeline(t, idx, "total sales between week 4 and week 8")
	require.Nil(t, failure)
	require.NotNil(t, qs)

	assert.Equal(t, PatternTemporalConditional, qs.Pattern)

	require.NotNil(t, qs.AdvancedRange)
	assert.True(t, qs.AdvancedRange.Bounded)
	assert.Equal(t, 4, qs.AdvancedRange.Start)
	assert.Equal(t, 8, qs.AdvancedRange.End)

	// Both plain "week N" filters collapse into the single range filter.
	require.Len(t, qs.TemporalFilters, 1)
	assert.Equal(t, "week", qs.TemporalFilters[0].Unit)

	// The endpoints belong to the range alone; turning them into week
	// equality conditions as well would make the WHERE clause
	// unsatisfiable.
	assert.Empty(t, qs.ColumnConditions)
}

func TestBuildLeavesDetectorOutputUntouched(t *testing.T) {
	idx := newTestIndex(t)
	source := "total sales between week 4 and week 8"

	tokens := strings.Fields(source)
	res := classify.NewClassifier(idx, nil).ClassifyTokens(lexicon.English, tokens)
	det := patterns.DetectAll(idx, res, nil)

	before := make([]patterns.TemporalFilter, len(det.Temporal))
	copy(before, det.Temporal)

	_, failure := NewBuilder(idx, nil).Build(source, res, det)
	require.Nil(t, failure)

	assert.Equal(t, before, det.Temporal)
}

func TestBuildListAll(t *testing.T) {
	idx := newTestIndex(t)

	qs, failure := runPipeline(t, idx, "show_me_all stores")
	require.Nil(t, failure)
	require.NotNil(t, qs)

	assert.Equal(t, PatternListAll, qs.Pattern)
	assert.Equal(t, "list", qs.Intent)
	assert.Equal(t, "store", qs.MainDimension)
	assert.Equal(t, ComplexityModerate, qs.Complexity)
}

func TestBuildShowRows(t *testing.T) {
	idx := newTestIndex(t)

	qs, failure := runPipeline(t, idx, "store A")
	require.Nil(t, failure)
	require.NotNil(t, qs)

	assert.Equal(t, PatternShowRows, qs.Pattern)
	assert.Equal(t, "show_rows", qs.Intent)
	require.Len(t, qs.ColumnConditions, 1)
	assert.Equal(t, "store", qs.ColumnConditions[0].Column)
	assert.Equal(t, "A", qs.ColumnConditions[0].Value)
}

func TestBuildReferenced(t *testing.T) {
	idx := newTestIndex(t)

	qs, failure := runPipeline(t, idx, "store A versus store B")
	require.Nil(t, failure)
	require.NotNil(t, qs)

	assert.Equal(t, PatternReferenced, qs.Pattern)
	assert.Equal(t, "compare", qs.Intent)
	require.Len(t, qs.ColumnConditions, 2)
}

func TestBuildPlainAggregation(t *testing.T) {
	idx := newTestIndex(t)

	qs, failure := runPipeline(t, idx, "total sales by store")
	require.Nil(t, failure)
	require.NotNil(t, qs)

	assert.Equal(t, PatternAggregation, qs.Pattern)
	assert.Equal(t, []lexicon.OperationType{lexicon.OpSum}, qs.Operations)
	assert.Equal(t, []string{"sales"}, qs.Metrics)
	assert.Equal(t, "store", qs.MainDimension)
	assert.Equal(t, ComplexityModerate, qs.Complexity)
}

func TestComplexityLevels(t *testing.T) {
	tests := []struct {
		score int
		want  ComplexityLevel
	}{
		{0, ComplexitySimple},
		{1, ComplexityModerate},
		{3, ComplexityModerate},
		{4, ComplexityComplex},
		{6, ComplexityComplex},
		{7, ComplexityVeryComplex},
		{10, ComplexityVeryComplex},
		{11, ComplexityExtreme},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, complexityLevel(tt.score), "score %d", tt.score)
	}

	assert.Less(t, ComplexitySimple.Rank(), ComplexityModerate.Rank())
	assert.Less(t, ComplexityVeryComplex.Rank(), ComplexityExtreme.Rank())
}

func TestRankBefore(t *testing.T) {
	assert.True(t, rankBefore(patterns.DefaultPriority, patterns.KindRanking, patterns.KindCompound))
	assert.False(t, rankBefore(patterns.DefaultPriority, patterns.KindCompound, patterns.KindRanking))
	assert.True(t, rankBefore([]patterns.Kind{patterns.KindRanking}, patterns.KindRanking, patterns.KindCompound))
	assert.False(t, rankBefore(nil, patterns.KindRanking, patterns.KindCompound))
}
