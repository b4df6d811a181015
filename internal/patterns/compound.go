package patterns

import (
	"github.com/dataspeak/backend/internal/classify"
	"github.com/dataspeak/backend/internal/lexicon"
)

// pairWindow bounds how far an operation looks ahead for its metric.
const pairWindow = 3

// DetectCompound groups sequential operation+metric pairs, reading but
// never mutating the classified stream. The compound flag itself is the
// builder's call: one pair is a plain aggregation.
func DetectCompound(comps []classify.QueryComponent) []CompoundCriteria {
	var criteria []CompoundCriteria

	for i := 0; i < len(comps); i++ {
		if comps[i].Type != lexicon.Operation || comps[i].Subtype == "" {
			continue
		}

		for j := i + 1; j < len(comps) && j <= i+pairWindow; j++ {
			switch comps[j].Type {
			case lexicon.Connector:
				continue
			case lexicon.Metric:
				criteria = append(criteria, CompoundCriteria{
					Operation:  lexicon.OperationType(comps[i].Subtype),
					Metric:     comps[j].Text,
					Confidence: minConfidence(comps[i].Confidence, comps[j].Confidence),
					RawTokens:  []string{comps[i].Text, comps[j].Text},
				})
			}
			break
		}
	}

	return criteria
}

func minConfidence(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
