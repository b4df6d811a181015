package patterns

import (
	"github.com/dataspeak/backend/internal/classify"
	"github.com/dataspeak/backend/internal/lexicon"
)

// DetectTemporalFilters extracts plain temporal filters: exact periods
// ("week 5", "week 5 of 2024") and rolling windows ("last 3 weeks").
// Range phrasing is DetectTemporalRange's job; the builder keeps only one
// interpretation.
func DetectTemporalFilters(idx *lexicon.Index, lang lexicon.Language, comps []classify.QueryComponent) []TemporalFilter {
	var filters []TemporalFilter

	for i := 0; i < len(comps); i++ {
		c := comps[i]
		if c.Type != lexicon.Temporal {
			continue
		}

		f := TemporalFilter{
			Indicator: c.Text,
			Unit:      c.Subtype,
			Kind:      lexicon.TemporalKind(c.Metadata["temporal_kind"]),
		}
		if f.Kind == "" {
			f.Kind = lexicon.TemporalExact
		}

		if f.Kind == lexicon.TemporalRolling {
			// "last 3 weeks": quantity then a unit-bearing indicator.
			consumed := i
			for j := i + 1; j < len(comps) && j <= i+2; j++ {
				if n, ok := idx.WordNumber(lang, comps[j].Text); ok && f.Quantity == 0 {
					f.Quantity = n
					consumed = j
					continue
				}
				if comps[j].Type == lexicon.Temporal && comps[j].Subtype != "" {
					f.Unit = comps[j].Subtype
					consumed = j
				}
				break
			}
			if f.Quantity == 0 {
				f.Quantity = 1
			}
			i = consumed
			filters = append(filters, f)
			continue
		}

		// Exact period: the quantity follows the unit word.
		if i+1 < len(comps) {
			if n, ok := idx.WordNumber(lang, comps[i+1].Text); ok {
				f.Quantity = n
				if f.Unit == "week" {
					f.Week = n
				}
				// "week 5 of 2024"
				for j := i + 2; j < len(comps) && j <= i+3; j++ {
					if y, ok := idx.WordNumber(lang, comps[j].Text); ok && y >= 1900 && y <= 2200 {
						f.Year = y
						break
					}
				}
			}
		}

		filters = append(filters, f)
	}

	return filters
}

// DetectTemporalRange recognizes from/to/between phrasing around a
// temporal unit and produces an AdvancedTemporalInfo with exactly one of
// its three range flags set. Nil means the query has no range phrasing.
func DetectTemporalRange(idx *lexicon.Index, lang lexicon.Language, comps []classify.QueryComponent) *AdvancedTemporalInfo {
	var (
		unit      string
		indicator string
		start     int
		end       int
		hasStart  bool
		hasEnd    bool
		bounded   bool
	)

	for i := range comps {
		kind, ok := idx.RangeKind(comps[i].Text)
		if !ok {
			continue
		}

		switch kind {
		case "between":
			nums, u := rangeOperands(idx, lang, comps, i, 2)
			if len(nums) == 2 {
				start, end = nums[0], nums[1]
				bounded = true
				if u != "" {
					unit, indicator = u, u
				}
			}
		case "from":
			nums, u := rangeOperands(idx, lang, comps, i, 1)
			if len(nums) == 1 {
				start = nums[0]
				hasStart = true
				if u != "" {
					unit, indicator = u, u
				}
			}
		case "to":
			nums, u := rangeOperands(idx, lang, comps, i, 1)
			if len(nums) == 1 {
				end = nums[0]
				hasEnd = true
				if u != "" {
					unit, indicator = u, u
				}
			}
		}
	}

	if !bounded && !hasStart && !hasEnd {
		return nil
	}
	if unit == "" {
		return nil
	}

	info := &AdvancedTemporalInfo{
		Filter: TemporalFilter{Indicator: indicator, Unit: unit, Kind: lexicon.TemporalExact},
		Start:  start,
		End:    end,
	}

	// Exactly one flag: both endpoints collapse into a bounded range.
	switch {
	case bounded || (hasStart && hasEnd):
		info.Bounded = true
	case hasStart:
		info.OpenStart = true
	default:
		info.OpenEnd = true
	}

	return info
}

// rangeOperands collects up to want numbers after position i, noting the
// temporal unit mentioned among them.
func rangeOperands(idx *lexicon.Index, lang lexicon.Language, comps []classify.QueryComponent, i, want int) ([]int, string) {
	var nums []int
	unit := ""

	for j := i + 1; j < len(comps) && len(nums) < want; j++ {
		c := comps[j]
		if c.Type == lexicon.Temporal {
			if unit == "" {
				unit = c.Subtype
			}
			continue
		}
		if n, ok := idx.WordNumber(lang, c.Text); ok {
			nums = append(nums, n)
			continue
		}
		if c.Type == lexicon.Connector {
			continue
		}
		break
	}

	return nums, unit
}
