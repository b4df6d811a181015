package structure

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dataspeak/backend/internal/classify"
	"github.com/dataspeak/backend/internal/lexicon"
	"github.com/dataspeak/backend/internal/patterns"
)

// Builder assembles classifier and detector output into one validated
// QueryStructure. Validation is fail-closed: any unknown token voids the
// whole query before assembly or scoring happens.
type Builder struct {
	idx    *lexicon.Index
	logger *zap.Logger
}

func NewBuilder(idx *lexicon.Index, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{idx: idx, logger: logger}
}

func (b *Builder) Build(sourceText string, res classify.Result, det patterns.Outputs) (*QueryStructure, *QueryFailure) {
	if len(res.Unknowns) > 0 {
		failure := &QueryFailure{
			SessionID:    uuid.New().String(),
			OriginalText: sourceText,
			UnknownWords: res.Unknowns,
			Timestamp:    time.Now(),
		}
		b.logger.Warn("Query voided by unknown tokens",
			zap.String("session_id", failure.SessionID),
			zap.Int("unknown_count", len(res.Unknowns)),
		)
		return nil, failure
	}

	qs := &QueryStructure{
		SourceText: sourceText,
		Language:   res.Language,
	}

	b.collectComponents(qs, res)
	b.applyDetectors(qs, det)
	b.selectPattern(qs, sourceText)

	qs.Confidence = confidenceScore(res.Components)
	qs.Complexity = complexityLevel(complexityScore(qs))

	b.logger.Debug("Query structure built",
		zap.String("pattern", string(qs.Pattern)),
		zap.String("complexity", string(qs.Complexity)),
		zap.Float64("confidence", qs.Confidence),
	)

	return qs, nil
}

func (b *Builder) collectComponents(qs *QueryStructure, res classify.Result) {
	bestDim := ""
	bestDimConf := -1.0

	for _, c := range res.Components {
		switch c.Type {
		case lexicon.Dimension:
			if c.Confidence > bestDimConf {
				bestDim, bestDimConf = c.Text, c.Confidence
			}
		case lexicon.Metric:
			qs.Metrics = appendUnique(qs.Metrics, c.Text)
		case lexicon.Operation:
			if c.Subtype != "" {
				qs.Operations = append(qs.Operations, lexicon.OperationType(c.Subtype))
			}
		case lexicon.Value:
			qs.Values = append(qs.Values, c.Value)
		case lexicon.Connector:
			qs.Connectors = append(qs.Connectors, c.Text)
		}
	}

	qs.MainDimension = bestDim
	qs.ColumnConditions = res.Pairs
}

func (b *Builder) applyDetectors(qs *QueryStructure, det patterns.Outputs) {
	priority := det.Priority
	if len(priority) == 0 {
		priority = patterns.DefaultPriority
	}

	qs.Ranking = det.Ranking
	if qs.Ranking == nil && det.Superlative != nil {
		// Superlative phrasing is an implicit top-1/bottom-1 ranking.
		qs.Ranking = &patterns.RankingCriteria{
			Direction:  det.Superlative.Direction,
			Unit:       patterns.RankCount,
			Value:      1,
			Metric:     det.Superlative.Metric,
			Operation:  det.Superlative.Operation,
			Confidence: det.Superlative.Confidence,
		}
	}
	qs.IsRankingQuery = qs.Ranking != nil
	if qs.IsRankingQuery {
		qs.Limit = qs.Ranking.Value
	}

	qs.Compound = det.Compound
	if qs.IsRankingQuery && rankBefore(priority, patterns.KindRanking, patterns.KindCompound) {
		// Ranking claims its own operation+metric pair; a lone compound
		// pair over the same metric is the ranking restated.
		if len(qs.Compound) == 1 && qs.Compound[0].Metric == qs.Ranking.Metric {
			qs.Compound = nil
		}
	}
	qs.IsCompoundQuery = len(qs.Compound) >= 2

	qs.Exclusions = det.Exclusions
	qs.Superlative = det.Superlative
	qs.Flags = det.Flags

	if det.MultiDimension != nil {
		qs.MultiDimension = det.MultiDimension
		qs.MainDimensions = det.MultiDimension.Dimensions
		qs.IsMultiDimensionQuery = true
	}
	qs.MultiMetric = det.MultiMetric

	qs.TemporalFilters = det.Temporal
	if det.AdvancedRange != nil {
		qs.AdvancedRange = det.AdvancedRange
		// The range interpretation supersedes plain filters over the
		// same unit. Filter into a fresh slice: qs.TemporalFilters still
		// shares det.Temporal's backing array, which stays read-only.
		kept := make([]patterns.TemporalFilter, 0, len(qs.TemporalFilters))
		for _, f := range qs.TemporalFilters {
			if f.Unit != det.AdvancedRange.Filter.Unit {
				kept = append(kept, f)
			}
		}
		qs.TemporalFilters = append(kept, det.AdvancedRange.Filter)
	}
}

func (b *Builder) selectPattern(qs *QueryStructure, sourceText string) {
	lower := strings.ToLower(sourceText)

	hasReference := false
	for _, c := range qs.Connectors {
		if b.idx.IsReferenceWord(c) {
			hasReference = true
			break
		}
	}

	hasList := false
	for _, phrase := range b.idx.ListPhrases() {
		canonical := strings.ReplaceAll(strings.ToLower(phrase), " ", "_")
		if strings.Contains(lower, strings.ToLower(phrase)) || strings.Contains(lower, canonical) {
			hasList = true
			break
		}
	}

	switch {
	case qs.IsRankingQuery:
		qs.Pattern = PatternTopN
		qs.Intent = "rank"
	case qs.MultiMetric != nil:
		qs.Pattern = PatternMultiMetric
		qs.Intent = "aggregate"
	case qs.IsMultiDimensionQuery:
		qs.Pattern = PatternMultiDimension
		qs.Intent = "aggregate"
	case len(qs.TemporalFilters) > 0 && len(qs.Operations) > 0:
		qs.Pattern = PatternTemporalConditional
		qs.Intent = "aggregate"
	case hasReference:
		qs.Pattern = PatternReferenced
		qs.Intent = "compare"
		if len(qs.Metrics) > 1 {
			qs.ReferenceMetric = qs.Metrics[len(qs.Metrics)-1]
		}
	case hasList:
		qs.Pattern = PatternListAll
		qs.Intent = "list"
	case len(qs.Operations) == 0 && len(qs.Metrics) == 0 && qs.MainDimension != "":
		qs.Pattern = PatternShowRows
		qs.Intent = "show_rows"
	default:
		qs.Pattern = PatternAggregation
		qs.Intent = "aggregate"
	}
}

// confidenceScore is the component mean; unknowns carry zero confidence
// and drag the mean down, but never reach here for a valid structure.
func confidenceScore(comps []classify.QueryComponent) float64 {
	if len(comps) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range comps {
		sum += c.Confidence
	}
	return sum / float64(len(comps))
}

func complexityScore(qs *QueryStructure) int {
	score := 0

	score += 2 * len(qs.ColumnConditions)
	score += 3 * len(qs.TemporalFilters)
	score += len(qs.Operations)

	if qs.IsCompoundQuery {
		score += 2 * len(qs.Compound)
	}
	if qs.IsRankingQuery {
		score += 3
		if qs.Ranking.Unit == patterns.RankPercent {
			score += 2
		}
		score += 2 * len(qs.Exclusions)
	}
	if qs.Pattern == PatternReferenced {
		score += 2
	}
	if qs.Pattern == PatternListAll {
		score++
	}

	return score
}

func complexityLevel(score int) ComplexityLevel {
	switch {
	case score <= 0:
		return ComplexitySimple
	case score <= 3:
		return ComplexityModerate
	case score <= 6:
		return ComplexityComplex
	case score <= 10:
		return ComplexityVeryComplex
	default:
		return ComplexityExtreme
	}
}

func rankBefore(priority []patterns.Kind, a, b patterns.Kind) bool {
	ai, bi := -1, -1
	for i, k := range priority {
		if k == a {
			ai = i
		}
		if k == b {
			bi = i
		}
	}
	return ai >= 0 && (bi < 0 || ai < bi)
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
