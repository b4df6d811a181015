package patterns

import (
	"github.com/dataspeak/backend/internal/classify"
	"github.com/dataspeak/backend/internal/lexicon"
)

var greaterWords = map[string]bool{"greater": true, "more": true, "above": true, "mayor": true, "mayores": true}
var lessWords = map[string]bool{"less": true, "fewer": true, "below": true, "menor": true, "menores": true}

// exclusionWindow bounds how far past the negation word the column and
// value may sit.
const exclusionWindow = 5

// DetectExclusion recognizes negation words preceding a column-value
// pair. The comparison names the predicate whose matching rows get
// removed; bare exclusion wording means equality.
func DetectExclusion(idx *lexicon.Index, lang lexicon.Language, comps []classify.QueryComponent) []ExclusionFilter {
	var filters []ExclusionFilter

	for i := range comps {
		if !idx.IsExclusionWord(lang, comps[i].Text) {
			continue
		}

		comparison := CompareEquals
		column := ""
		columnConf := 0.0

		for j := i + 1; j < len(comps) && j <= i+exclusionWindow; j++ {
			c := comps[j]

			if greaterWords[c.Text] {
				comparison = CompareGreaterThan
				continue
			}
			if lessWords[c.Text] {
				comparison = CompareLessThan
				continue
			}

			if column == "" {
				if c.Type == lexicon.Dimension || c.Type == lexicon.Metric || idx.IsKnownColumn(c.Text) {
					column = c.Text
					columnConf = c.Confidence
				}
				continue
			}

			if c.Type == lexicon.Value && c.Value != "" {
				filters = append(filters, ExclusionFilter{
					Comparison: comparison,
					Column:     column,
					Value:      c.Value,
					Confidence: minConfidence(columnConf, c.Confidence),
				})
				break
			}
		}
	}

	return filters
}
