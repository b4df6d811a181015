package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataspeak/backend/internal/classify"
	"github.com/dataspeak/backend/internal/lexicon"
	"github.com/dataspeak/backend/internal/patterns"
	"github.com/dataspeak/backend/internal/structure"
	"github.com/dataspeak/backend/internal/temporal"
)

func newTestGenerator() *Generator {
	return NewGenerator("dataset", temporal.NewResolver(nil), nil)
}

func TestGenerateNilStructure(t *testing.T) {
	_, err := newTestGenerator().Generate(nil)
	assert.Error(t, err)
}

func TestGenerateTopNWithExclusion(t *testing.T) {
	g := newTestGenerator()

	qs := &structure.QueryStructure{
		Pattern:       structure.PatternTopN,
		MainDimension: "store",
		Metrics:       []string{"sales"},
		Ranking: &patterns.RankingCriteria{
			Direction: "top",
			Unit:      patterns.RankCount,
			Value:     5,
			Metric:    "sales",
		},
		IsRankingQuery: true,
		Exclusions: []patterns.ExclusionFilter{
			{Comparison: patterns.CompareEquals, Column: "store", Value: "A"},
		},
		// The pair restates the exclusion and must not be emitted twice.
		ColumnConditions: []classify.ColumnValuePair{{Column: "store", Value: "A"}},
	}

	sql, err := g.Generate(qs)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "store", SUM("sales") AS "sales" FROM "dataset" WHERE "store" != 'A' GROUP BY "store" ORDER BY "sales" DESC LIMIT 5`,
		sql)
}

func TestGeneratePercentRanking(t *testing.T) {
	g := newTestGenerator()

	qs := &structure.QueryStructure{
		Pattern:       structure.PatternTopN,
		MainDimension: "store",
		Ranking: &patterns.RankingCriteria{
			Direction: "bottom",
			Unit:      patterns.RankPercent,
			Value:     10,
			Metric:    "inventory",
		},
		IsRankingQuery: true,
	}

	sql, err := g.Generate(qs)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "store", SUM("inventory") AS "inventory" FROM "dataset" GROUP BY "store" ORDER BY "inventory" ASC LIMIT (SELECT MAX(1, COUNT(DISTINCT "store") * 10 / 100) FROM "dataset")`,
		sql)
}

func TestGenerateListAll(t *testing.T) {
	g := newTestGenerator()

	sql, err := g.Generate(&structure.QueryStructure{Pattern: structure.PatternListAll})
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "dataset"`, sql)
}

func TestGenerateShowRows(t *testing.T) {
	g := newTestGenerator()

	qs := &structure.QueryStructure{
		Pattern:          structure.PatternShowRows,
		ColumnConditions: []classify.ColumnValuePair{{Column: "store", Value: "A"}},
	}

	sql, err := g.Generate(qs)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "dataset" WHERE "store" = 'A' LIMIT 100`, sql)
}

func TestGenerateBoundedRange(t *testing.T) {
	g := newTestGenerator()

	rangeFilter := patterns.TemporalFilter{Unit: "week", Kind: lexicon.TemporalExact}
	qs := &structure.QueryStructure{
		Pattern:       structure.PatternTemporalConditional,
		MainDimension: "store",
		Metrics:       []string{"sales"},
		Operations:    []lexicon.OperationType{lexicon.OpSum},
		AdvancedRange: &patterns.AdvancedTemporalInfo{
			Filter:  rangeFilter,
			Bounded: true,
			Start:   4,
			End:     8,
		},
		// A range present means plain filters are already folded in; the
		// generator must use the range alone.
		TemporalFilters: []patterns.TemporalFilter{rangeFilter},
	}

	sql, err := g.Generate(qs)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "store", SUM("sales") AS "sales" FROM "dataset" WHERE week BETWEEN 4 AND 8 GROUP BY "store"`,
		sql)
}

func TestGenerateRollingWindow(t *testing.T) {
	g := newTestGenerator()

	qs := &structure.QueryStructure{
		Pattern:       structure.PatternTemporalConditional,
		MainDimension: "store",
		Metrics:       []string{"sales"},
		Operations:    []lexicon.OperationType{lexicon.OpSum},
		TemporalFilters: []patterns.TemporalFilter{
			{Unit: "week", Kind: lexicon.TemporalRolling, Quantity: 3},
		},
	}

	sql, err := g.Generate(qs)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "store", SUM("sales") AS "sales" FROM "dataset" WHERE date >= DATE('now', '-21 day') GROUP BY "store"`,
		sql)
}

func TestGenerateCompound(t *testing.T) {
	g := newTestGenerator()

	qs := &structure.QueryStructure{
		Pattern:       structure.PatternMultiMetric,
		MainDimension: "store",
		Metrics:       []string{"sales", "inventory"},
		Compound: []patterns.CompoundCriteria{
			{Operation: lexicon.OpSum, Metric: "sales"},
			{Operation: lexicon.OpAverage, Metric: "inventory"},
		},
		IsCompoundQuery: true,
	}

	sql, err := g.Generate(qs)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "store", SUM("sales") AS "sales", AVG("inventory") AS "inventory" FROM "dataset" GROUP BY "store"`,
		sql)
}

func TestGenerateCountFallback(t *testing.T) {
	g := newTestGenerator()

	qs := &structure.QueryStructure{
		Pattern:       structure.PatternAggregation,
		MainDimension: "store",
		Operations:    []lexicon.OperationType{lexicon.OpCount},
	}

	sql, err := g.Generate(qs)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "store", COUNT(*) AS row_count FROM "dataset" GROUP BY "store"`, sql)
}

func TestGenerateBareStructure(t *testing.T) {
	g := newTestGenerator()

	sql, err := g.Generate(&structure.QueryStructure{Pattern: structure.PatternAggregation})
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) AS row_count FROM "dataset"`, sql)
}

func TestGenerateFlagCondition(t *testing.T) {
	g := newTestGenerator()

	qs := &structure.QueryStructure{
		Pattern:       structure.PatternAggregation,
		MainDimension: "product",
		Operations:    []lexicon.OperationType{lexicon.OpCount},
		Flags:         []patterns.FlagColumn{{Column: "discontinued_flag", Expected: "Y"}},
	}

	sql, err := g.Generate(qs)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "product", COUNT(*) AS row_count FROM "dataset" WHERE "discontinued_flag" = 'Y' GROUP BY "product"`,
		sql)
}

func TestGenerateNumericValueUnquoted(t *testing.T) {
	g := newTestGenerator()

	qs := &structure.QueryStructure{
		Pattern:          structure.PatternShowRows,
		ColumnConditions: []classify.ColumnValuePair{{Column: "week", Value: "5"}},
	}

	sql, err := g.Generate(qs)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "dataset" WHERE "week" = 5 LIMIT 100`, sql)
}

func TestExclusionPredicates(t *testing.T) {
	tests := []struct {
		comparison patterns.Comparison
		want       string
	}{
		{patterns.CompareEquals, `"sales" != 500`},
		{patterns.CompareNotEquals, `"sales" = 500`},
		{patterns.CompareGreaterThan, `"sales" <= 500`},
		{patterns.CompareLessThan, `"sales" >= 500`},
	}

	for _, tt := range tests {
		ex := patterns.ExclusionFilter{Comparison: tt.comparison, Column: "sales", Value: "500"}
		assert.Equal(t, tt.want, exclusionPredicate(ex))
	}
}

func TestQuoteHelpers(t *testing.T) {
	assert.Equal(t, `"store"`, quoteIdent("store"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
	assert.Equal(t, "42", quoteValue("42"))
	assert.Equal(t, "'A'", quoteValue("A"))
	assert.Equal(t, "'O''Brien'", quoteValue("O'Brien"))
}
