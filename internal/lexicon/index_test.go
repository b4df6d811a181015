package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDictionaries() *Dictionaries {
	return &Dictionaries{
		Dimensions: []string{"store", "tienda", "product"},
		Metrics:    []string{"sales", "ventas", "inventory"},
		Operations: []OperationEntry{
			{Kind: "sum", Anchors: []string{"sum", "total", "sum of", "total de"}},
			{Kind: "average", Anchors: []string{"average", "promedio"}},
			{Kind: "count", Anchors: []string{"count", "how many"}},
		},
		Connectors: map[string][]string{
			"en": {"with", "by", "of", "and"},
			"es": {"con", "por", "de", "y"},
		},
		HighConfidence: map[string][]string{
			"en": {"sales", "show"},
			"es": {"ventas", "muestra"},
		},
		TemporalIndicators: []TemporalEntry{
			{Indicator: "week", Unit: "week", Kind: TemporalExact, Variants: []string{"weeks", "semana", "semanas"}},
			{Indicator: "last", Unit: "", Kind: TemporalRolling, Variants: []string{"past", "ultimas"}},
		},
		TemporalUnits: []string{"week", "month"},
		CompoundPhrases: map[string][]string{
			"dead_inventory": {"dead inventory", "inventario muerto"},
		},
		TypoCorrections: map[string]map[string]string{
			"en": {"slaes": "sales"},
		},
		WordNumbers: map[string]map[string]int{
			"en": {"one": 1, "three": 3, "five": 5},
			"es": {"uno": 1, "tres": 3, "cinco": 5},
		},
		KnownColumns: []string{"store", "week"},
		RankingWords: map[string][]string{
			"top":     {"top"},
			"bottom":  {"bottom"},
			"percent": {"percent", "%"},
		},
		ExclusionWords: map[string][]string{
			"en": {"excluding", "except"},
			"es": {"excepto"},
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
		FlagColumns: map[string]string{
			"discontinued":   "discontinued_flag",
			"dead_inventory": "dead_inventory_flag",
		},
		ListWords:      []string{"show me all"},
		ReferenceWords: []string{"versus"},
	}
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	return NewIndex(testDictionaries(), nil)
}

func TestClassify(t *testing.T) {
	idx := newTestIndex(t)

	tests := []struct {
		name string
		lang Language
		word string
		want ComponentType
	}{
		{"single uppercase letter is a value", English, "A", Value},
		{"dimension", English, "store", Dimension},
		{"dimension plural variant", English, "stores", Dimension},
		{"metric", Spanish, "ventas", Metric},
		{"operation anchor", English, "total", Operation},
		{"connector in its language", English, "with", Connector},
		{"connector outside its language", Spanish, "with", Unknown},
		{"temporal word is a value", English, "week", Value},
		{"digits are values", English, "42", Value},
		{"word number", English, "three", Value},
		{"ranking word", English, "top", Connector},
		{"range word", English, "between", Connector},
		{"superlative is an operation", English, "highest", Operation},
		{"flag word", English, "discontinued", ColumnValue},
		{"list phrase canonical", English, "show_me_all", Connector},
		{"gibberish", English, "zzzqqq", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idx.Classify(tt.lang, tt.word))
		})
	}
}

func TestAnchorFor(t *testing.T) {
	idx := newTestIndex(t)

	assert.Equal(t, "store", idx.AnchorFor("stores"))
	assert.Equal(t, "store", idx.AnchorFor("store"))
	assert.Equal(t, "sales", idx.AnchorFor("sales"))
}

func TestFindOperation(t *testing.T) {
	idx := newTestIndex(t)

	tests := []struct {
		name string
		text string
		want OperationType
		ok   bool
	}{
		{"single anchor", "total", OpSum, true},
		{"multi-word anchor inside text", "sum of sales", OpSum, true},
		{"multi-word preferred over single", "how many stores", OpCount, true},
		{"superlative doubles as max", "highest", OpMax, true},
		{"no anchor", "store by region", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := idx.FindOperation(tt.text)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, kind)
			}
		})
	}
}

func TestOperationPhrase(t *testing.T) {
	idx := newTestIndex(t)

	kind, ok := idx.OperationPhrase("how many")
	require.True(t, ok)
	assert.Equal(t, OpCount, kind)

	// Exact match only: a longer phrase containing the anchor must miss,
	// otherwise window scans would consume tokens past the anchor.
	_, ok = idx.OperationPhrase("how many stores")
	assert.False(t, ok)
}

func TestNormalizeCompound(t *testing.T) {
	idx := newTestIndex(t)

	got := idx.NormalizeCompound("show the dead inventory by store")
	assert.Equal(t, "show the dead_inventory by store", got)

	spanish := idx.NormalizeCompound("inventario muerto por tienda")
	assert.Equal(t, "dead_inventory por tienda", spanish)

	// Idempotent: canonical forms contain no spaces.
	assert.Equal(t, got, idx.NormalizeCompound(got))
}

func TestCorrectTypo(t *testing.T) {
	idx := newTestIndex(t)

	assert.Equal(t, "sales", idx.CorrectTypo(English, "slaes"))
	assert.Equal(t, "slaes", idx.CorrectTypo(Spanish, "slaes"))
	assert.Equal(t, "store", idx.CorrectTypo(English, "store"))
}

func TestWordNumber(t *testing.T) {
	idx := newTestIndex(t)

	n, ok := idx.WordNumber(English, "five")
	require.True(t, ok)
	assert.Equal(t, 5, n)

	n, ok = idx.WordNumber(Spanish, "cinco")
	require.True(t, ok)
	assert.Equal(t, 5, n)

	n, ok = idx.WordNumber(English, "17")
	require.True(t, ok)
	assert.Equal(t, 17, n)

	_, ok = idx.WordNumber(English, "cinco")
	assert.False(t, ok)
}

func TestRankingAndRangeLookups(t *testing.T) {
	idx := newTestIndex(t)

	direction, ok := idx.RankingDirection("top")
	require.True(t, ok)
	assert.Equal(t, "top", direction)

	_, ok = idx.RankingDirection("percent")
	assert.False(t, ok, "percent words are modifiers, not directions")

	assert.True(t, idx.IsPercentWord("%"))
	assert.True(t, idx.IsPercentWord("percent"))
	assert.False(t, idx.IsPercentWord("top"))

	kind, ok := idx.RangeKind("between")
	require.True(t, ok)
	assert.Equal(t, "between", kind)

	d, ok := idx.SuperlativeDirection("lowest")
	require.True(t, ok)
	assert.Equal(t, "bottom", d)

	col, ok := idx.FlagColumn("discontinued")
	require.True(t, ok)
	assert.Equal(t, "discontinued_flag", col)
}

func TestLanguageScopedLookups(t *testing.T) {
	idx := newTestIndex(t)

	assert.True(t, idx.IsConnector(English, "with"))
	assert.False(t, idx.IsConnector(Spanish, "with"))
	assert.True(t, idx.IsHighConfidence(Spanish, "ventas"))
	assert.True(t, idx.IsExclusionWord(English, "excluding"))
	assert.False(t, idx.IsExclusionWord(Spanish, "excluding"))
	assert.True(t, idx.IsKnownColumn("week"))
	assert.True(t, idx.IsReferenceWord("versus"))
}

func TestIsSingleUppercaseLetter(t *testing.T) {
	assert.True(t, IsSingleUppercaseLetter("A"))
	assert.True(t, IsSingleUppercaseLetter("Z"))
	assert.False(t, IsSingleUppercaseLetter("a"))
	assert.False(t, IsSingleUppercaseLetter("AB"))
	assert.False(t, IsSingleUppercaseLetter("1"))
	assert.False(t, IsSingleUppercaseLetter(""))
}

func TestEmptyDictionaries(t *testing.T) {
	idx := NewIndex(&Dictionaries{}, nil)

	assert.Equal(t, Unknown, idx.Classify(English, "store"))
	_, ok := idx.FindOperation("total")
	assert.False(t, ok)
	assert.Equal(t, "plain text", idx.NormalizeCompound("plain text"))
}
