package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dataspeak/backend/internal/lexicon"
	"github.com/dataspeak/backend/internal/patterns"
	"github.com/dataspeak/backend/internal/structure"
	"github.com/dataspeak/backend/internal/temporal"
)

// Generator compiles a validated QueryStructure into one SELECT against
// the active dataset table. It must never see a QueryFailure: callers
// treat failures as terminal before reaching this layer.
type Generator struct {
	table    string
	resolver *temporal.Resolver
	logger   *zap.Logger
}

func NewGenerator(table string, resolver *temporal.Resolver, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{table: table, resolver: resolver, logger: logger}
}

func (g *Generator) Generate(qs *structure.QueryStructure) (string, error) {
	if qs == nil {
		return "", fmt.Errorf("nil query structure")
	}

	var sql string
	switch qs.Pattern {
	case structure.PatternListAll, structure.PatternShowRows:
		sql = g.generateRows(qs)
	default:
		sql = g.generateAggregation(qs)
	}

	g.logger.Debug("SQL generated",
		zap.String("pattern", string(qs.Pattern)),
		zap.String("sql", sql),
	)

	return sql, nil
}

func (g *Generator) generateRows(qs *structure.QueryStructure) string {
	var b strings.Builder
	b.WriteString("SELECT * FROM " + quoteIdent(g.table))
	g.writeWhere(&b, qs)
	if qs.Pattern == structure.PatternShowRows {
		b.WriteString(" LIMIT 100")
	}
	return b.String()
}

func (g *Generator) generateAggregation(qs *structure.QueryStructure) string {
	var b strings.Builder
	b.WriteString("SELECT ")

	groupCols := g.groupColumns(qs)
	selects := make([]string, 0, len(groupCols)+len(qs.Metrics)+1)
	for _, col := range groupCols {
		selects = append(selects, quoteIdent(col))
	}

	for _, agg := range g.aggregations(qs) {
		selects = append(selects, agg)
	}
	if len(selects) == 0 {
		selects = append(selects, "COUNT(*) AS row_count")
	}

	b.WriteString(strings.Join(selects, ", "))
	b.WriteString(" FROM " + quoteIdent(g.table))

	g.writeWhere(&b, qs)

	if len(groupCols) > 0 {
		quoted := make([]string, len(groupCols))
		for i, col := range groupCols {
			quoted[i] = quoteIdent(col)
		}
		b.WriteString(" GROUP BY " + strings.Join(quoted, ", "))
	}

	g.writeRanking(&b, qs, groupCols)

	return b.String()
}

func (g *Generator) groupColumns(qs *structure.QueryStructure) []string {
	if qs.IsMultiDimensionQuery && len(qs.MainDimensions) > 0 {
		return qs.MainDimensions
	}
	if qs.MainDimension != "" {
		return []string{qs.MainDimension}
	}
	return nil
}

// aggregations pairs operations with metrics: compound criteria first,
// then positional pairing, then a COUNT fallback for bare metrics.
func (g *Generator) aggregations(qs *structure.QueryStructure) []string {
	var out []string

	if qs.IsCompoundQuery {
		for _, c := range qs.Compound {
			out = append(out, aggExpr(c.Operation, c.Metric))
		}
		return out
	}

	metrics := qs.Metrics
	ops := qs.Operations
	if qs.IsRankingQuery && qs.Ranking.Metric != "" {
		metrics = []string{qs.Ranking.Metric}
		if qs.Ranking.Operation != "" {
			ops = []lexicon.OperationType{qs.Ranking.Operation}
		}
	}

	for i, m := range metrics {
		op := lexicon.OpSum
		if i < len(ops) {
			op = ops[i]
		} else if len(ops) > 0 {
			op = ops[len(ops)-1]
		}
		out = append(out, aggExpr(op, m))
	}

	if len(out) == 0 && len(ops) > 0 {
		if ops[0] == lexicon.OpCount {
			out = append(out, "COUNT(*) AS row_count")
		}
	}

	return out
}

func (g *Generator) writeWhere(b *strings.Builder, qs *structure.QueryStructure) {
	var conds []string

	for _, pair := range qs.ColumnConditions {
		if excluded(qs, pair.Column, pair.Value) {
			continue
		}
		conds = append(conds, fmt.Sprintf("%s = %s", quoteIdent(pair.Column), quoteValue(pair.Value)))
	}

	for _, ex := range qs.Exclusions {
		conds = append(conds, exclusionPredicate(ex))
	}

	if qs.AdvancedRange != nil {
		conds = append(conds, g.resolver.ToPredicate(*qs.AdvancedRange))
	} else {
		for _, f := range qs.TemporalFilters {
			conds = append(conds, g.resolver.ToPredicate(patterns.AdvancedTemporalInfo{Filter: f}))
		}
	}

	for _, flag := range qs.Flags {
		conds = append(conds, fmt.Sprintf("%s = 'Y'", quoteIdent(flag.Column)))
	}

	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
}

func (g *Generator) writeRanking(b *strings.Builder, qs *structure.QueryStructure, groupCols []string) {
	if !qs.IsRankingQuery {
		return
	}

	rc := qs.Ranking
	order := "DESC"
	if rc.Direction == "bottom" {
		order = "ASC"
	}

	orderCol := "row_count"
	if rc.Metric != "" {
		orderCol = rc.Metric
	}
	b.WriteString(fmt.Sprintf(" ORDER BY %s %s", quoteIdent(orderCol), order))

	if rc.Unit == patterns.RankPercent && len(groupCols) > 0 {
		// Percentage ranking: the limit is a share of the grouped rows.
		b.WriteString(fmt.Sprintf(" LIMIT (SELECT MAX(1, COUNT(DISTINCT %s) * %d / 100) FROM %s)",
			quoteIdent(groupCols[0]), rc.Value, quoteIdent(g.table)))
		return
	}

	b.WriteString(" LIMIT " + strconv.Itoa(rc.Value))
}

// exclusionPredicate negates the named comparison: the filter removes the
// rows it matches.
func exclusionPredicate(ex patterns.ExclusionFilter) string {
	col := quoteIdent(ex.Column)
	val := quoteValue(ex.Value)

	switch ex.Comparison {
	case patterns.CompareEquals:
		return fmt.Sprintf("%s != %s", col, val)
	case patterns.CompareNotEquals:
		return fmt.Sprintf("%s = %s", col, val)
	case patterns.CompareGreaterThan:
		return fmt.Sprintf("%s <= %s", col, val)
	case patterns.CompareLessThan:
		return fmt.Sprintf("%s >= %s", col, val)
	default:
		return "1=1"
	}
}

// excluded reports whether a column condition is already claimed by an
// exclusion filter, so it is not emitted twice with opposite signs.
func excluded(qs *structure.QueryStructure, column, value string) bool {
	for _, ex := range qs.Exclusions {
		if ex.Column == column && ex.Value == value {
			return true
		}
	}
	return false
}

func aggExpr(op lexicon.OperationType, metric string) string {
	fn := "SUM"
	switch op {
	case lexicon.OpAverage:
		fn = "AVG"
	case lexicon.OpMax:
		fn = "MAX"
	case lexicon.OpMin:
		fn = "MIN"
	case lexicon.OpCount:
		fn = "COUNT"
	}
	return fmt.Sprintf("%s(%s) AS %s", fn, quoteIdent(metric), quoteIdent(metric))
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteValue(v string) string {
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
