package patterns

import (
	"github.com/dataspeak/backend/internal/classify"
	"github.com/dataspeak/backend/internal/lexicon"
)

// DetectMultiDimension fires when the query groups by two or more
// distinct dimensions.
func DetectMultiDimension(comps []classify.QueryComponent) *MultiDimension {
	dims, conf := distinctOfType(comps, lexicon.Dimension)
	if len(dims) < 2 {
		return nil
	}
	return &MultiDimension{Dimensions: dims, Confidence: conf}
}

// DetectMultiMetric fires when the query asks for two or more distinct
// metrics.
func DetectMultiMetric(comps []classify.QueryComponent) *MultiMetric {
	metrics, conf := distinctOfType(comps, lexicon.Metric)
	if len(metrics) < 2 {
		return nil
	}
	return &MultiMetric{Metrics: metrics, Confidence: conf}
}

// DetectSuperlative recognizes "highest"/"lowest" phrasing: an implicit
// top-1 or bottom-1 over the nearest metric.
func DetectSuperlative(idx *lexicon.Index, comps []classify.QueryComponent) *Superlative {
	for i := range comps {
		direction, ok := idx.SuperlativeDirection(comps[i].Text)
		if !ok {
			continue
		}

		op := lexicon.OpMax
		if direction == "bottom" {
			op = lexicon.OpMin
		}

		s := &Superlative{
			Direction:  direction,
			Operation:  op,
			Confidence: comps[i].Confidence,
		}
		if metric := nearestOfType(comps, i, lexicon.Metric); metric != nil {
			s.Metric = metric.Text
		}
		return s
	}
	return nil
}

// DetectFlags recognizes yes/no column wording ("active" products).
func DetectFlags(idx *lexicon.Index, comps []classify.QueryComponent) []FlagColumn {
	var flags []FlagColumn
	for i := range comps {
		if comps[i].Type != lexicon.ColumnValue {
			continue
		}
		column, ok := idx.FlagColumn(comps[i].Text)
		if !ok {
			continue
		}
		flags = append(flags, FlagColumn{
			Column:     column,
			Expected:   "Y",
			RawToken:   comps[i].Text,
			Confidence: comps[i].Confidence,
		})
	}
	return flags
}

func distinctOfType(comps []classify.QueryComponent, t lexicon.ComponentType) ([]string, float64) {
	seen := make(map[string]bool)
	var out []string
	conf := 1.0
	for i := range comps {
		if comps[i].Type != t || seen[comps[i].Text] {
			continue
		}
		seen[comps[i].Text] = true
		out = append(out, comps[i].Text)
		if comps[i].Confidence < conf {
			conf = comps[i].Confidence
		}
	}
	if len(out) == 0 {
		conf = 0
	}
	return out, conf
}
