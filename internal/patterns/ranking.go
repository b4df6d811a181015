package patterns

import (
	"github.com/dataspeak/backend/internal/classify"
	"github.com/dataspeak/backend/internal/lexicon"
)

// DetectRanking recognizes a direction word followed by a number and an
// optional percentage marker, then associates the nearest metric and
// operation. At most one ranking per query; the first match wins.
func DetectRanking(idx *lexicon.Index, lang lexicon.Language, comps []classify.QueryComponent) *RankingCriteria {
	for i := range comps {
		direction, ok := idx.RankingDirection(comps[i].Text)
		if !ok {
			continue
		}

		value, valuePos := followingNumber(idx, lang, comps, i)
		if valuePos < 0 {
			continue
		}

		rc := &RankingCriteria{
			Direction:  direction,
			Unit:       RankCount,
			Value:      value,
			Confidence: 0.9,
		}

		for j := valuePos + 1; j < len(comps) && j <= valuePos+2; j++ {
			if idx.IsPercentWord(comps[j].Text) {
				rc.Unit = RankPercent
				break
			}
		}

		if metric := nearestOfType(comps, valuePos, lexicon.Metric); metric != nil {
			rc.Metric = metric.Text
		}
		if op := nearestOfType(comps, valuePos, lexicon.Operation); op != nil && op.Subtype != "" {
			rc.Operation = lexicon.OperationType(op.Subtype)
		}

		return rc
	}

	return nil
}

func followingNumber(idx *lexicon.Index, lang lexicon.Language, comps []classify.QueryComponent, i int) (int, int) {
	for j := i + 1; j < len(comps) && j <= i+2; j++ {
		if comps[j].Type != lexicon.Value {
			continue
		}
		if n, ok := idx.WordNumber(lang, comps[j].Text); ok {
			return n, j
		}
	}
	return 0, -1
}

// nearestOfType prefers the closest following component, then the closest
// preceding one.
func nearestOfType(comps []classify.QueryComponent, from int, t lexicon.ComponentType) *classify.QueryComponent {
	for j := from + 1; j < len(comps); j++ {
		if comps[j].Type == t {
			return &comps[j]
		}
	}
	for j := from - 1; j >= 0; j-- {
		if comps[j].Type == t {
			return &comps[j]
		}
	}
	return nil
}
