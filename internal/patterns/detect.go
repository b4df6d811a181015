package patterns

import (
	"go.uber.org/zap"

	"github.com/dataspeak/backend/internal/classify"
	"github.com/dataspeak/backend/internal/lexicon"
)

// DetectAll runs every detector over the classified stream. Detectors are
// pure and independent; overlap between their claims is resolved later by
// the builder following the priority order carried in Outputs.
func DetectAll(idx *lexicon.Index, res classify.Result, logger *zap.Logger) Outputs {
	if logger == nil {
		logger = zap.NewNop()
	}

	out := Outputs{
		Compound:       DetectCompound(res.Components),
		Ranking:        DetectRanking(idx, res.Language, res.Components),
		Exclusions:     DetectExclusion(idx, res.Language, res.Components),
		Temporal:       DetectTemporalFilters(idx, res.Language, res.Components),
		AdvancedRange:  DetectTemporalRange(idx, res.Language, res.Components),
		MultiDimension: DetectMultiDimension(res.Components),
		MultiMetric:    DetectMultiMetric(res.Components),
		Superlative:    DetectSuperlative(idx, res.Components),
		Flags:          DetectFlags(idx, res.Components),
		Priority:       DefaultPriority,
	}

	logger.Debug("Pattern detection complete",
		zap.Int("compound_pairs", len(out.Compound)),
		zap.Bool("ranking", out.Ranking != nil),
		zap.Int("exclusions", len(out.Exclusions)),
		zap.Int("temporal_filters", len(out.Temporal)),
		zap.Bool("temporal_range", out.AdvancedRange != nil),
		zap.Bool("multi_dimension", out.MultiDimension != nil),
		zap.Bool("multi_metric", out.MultiMetric != nil),
		zap.Bool("superlative", out.Superlative != nil),
		zap.Int("flag_columns", len(out.Flags)),
	)

	return out
}
