package classify

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dataspeak/backend/internal/lexicon"
)

const (
	confidenceDirect    = 0.95
	confidenceTemporal  = 0.9
	confidenceWindow    = 0.85
	confidenceCorrected = 0.75

	contextWindow = 2
	maxPhraseLen  = 3
	maxEditDist   = 2
)

// Classifier assigns a component type to every normalized token, using
// only the lexical index. Unknowns stay unknown: fuzzy matching produces
// suggestions, never reclassification.
type Classifier struct {
	idx    *lexicon.Index
	logger *zap.Logger
}

func NewClassifier(idx *lexicon.Index, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{idx: idx, logger: logger}
}

func (c *Classifier) ClassifyTokens(lang lexicon.Language, tokens []string) Result {
	result := Result{Language: lang}
	consumed := make([]bool, len(tokens))

	for i := range tokens {
		if consumed[i] {
			continue
		}

		comp := c.classifyOne(lang, tokens, i, consumed)
		result.Components = append(result.Components, comp)

		if comp.Type == lexicon.Unknown {
			result.Unknowns = append(result.Unknowns, c.unknownRecord(tokens, i))
		}
	}

	result.Pairs = c.pairColumnValues(result.Components)

	c.logger.Debug("Tokens classified",
		zap.Int("tokens", len(tokens)),
		zap.Int("unknowns", len(result.Unknowns)),
		zap.Int("column_value_pairs", len(result.Pairs)),
	)

	return result
}

func (c *Classifier) classifyOne(lang lexicon.Language, tokens []string, i int, consumed []bool) QueryComponent {
	tok := tokens[i]
	comp := QueryComponent{Text: tok, Position: i}

	ct := c.idx.Classify(lang, tok)
	switch {
	case ct == lexicon.Value:
		c.fillValue(lang, &comp, tok)
		return comp
	case ct != lexicon.Unknown:
		comp.Type = ct
		comp.TypeName = ct.String()
		comp.Confidence = confidenceDirect
		if ct == lexicon.Dimension || ct == lexicon.Metric {
			// Surface variants collapse onto their dictionary anchor.
			comp.Text = c.idx.AnchorFor(tok)
		}
		if ct == lexicon.Operation {
			if kind, ok := c.idx.FindOperation(tok); ok {
				comp.Subtype = string(kind)
			}
		}
		return comp
	}

	// Multi-word operation anchors: longest window first.
	for width := maxPhraseLen; width >= 2; width-- {
		if i+width > len(tokens) {
			continue
		}
		phrase := strings.Join(tokens[i:i+width], " ")
		if kind, ok := c.idx.OperationPhrase(phrase); ok {
			for j := i + 1; j < i+width; j++ {
				consumed[j] = true
			}
			comp.Type = lexicon.Operation
			comp.TypeName = comp.Type.String()
			comp.Text = phrase
			comp.Subtype = string(kind)
			comp.Confidence = confidenceWindow
			return comp
		}
	}

	// One typo-corrected retry.
	if corrected := c.idx.CorrectTypo(lang, tok); corrected != tok {
		if ct := c.idx.Classify(lang, corrected); ct != lexicon.Unknown {
			comp.Type = ct
			comp.TypeName = ct.String()
			comp.Text = corrected
			comp.Confidence = confidenceCorrected
			comp.Metadata = map[string]string{"corrected_from": tok}
			if ct == lexicon.Operation {
				if kind, ok := c.idx.FindOperation(corrected); ok {
					comp.Subtype = string(kind)
				}
			}
			if ct == lexicon.Value {
				c.fillValue(lang, &comp, corrected)
				comp.Confidence = confidenceCorrected
				comp.Metadata = map[string]string{"corrected_from": tok}
			}
			return comp
		}
	}

	comp.Type = lexicon.Unknown
	comp.TypeName = comp.Type.String()
	comp.Confidence = 0
	return comp
}

func (c *Classifier) fillValue(lang lexicon.Language, comp *QueryComponent, tok string) {
	comp.Confidence = confidenceDirect
	comp.Value = tok

	if entry, ok := c.idx.FindTemporal(tok); ok {
		comp.Type = lexicon.Temporal
		comp.TypeName = comp.Type.String()
		comp.Subtype = entry.Unit
		comp.Confidence = confidenceTemporal
		comp.Metadata = map[string]string{"temporal_kind": string(entry.Kind)}
		return
	}

	comp.Type = lexicon.Value
	comp.TypeName = comp.Type.String()
	if n, ok := c.idx.WordNumber(lang, tok); ok {
		comp.Metadata = map[string]string{"numeric": strconv.Itoa(n)}
	}
}

func (c *Classifier) unknownRecord(tokens []string, i int) UnknownWord {
	start := i - contextWindow
	if start < 0 {
		start = 0
	}
	end := i + contextWindow + 1
	if end > len(tokens) {
		end = len(tokens)
	}

	u := UnknownWord{
		Word:      tokens[i],
		Position:  i,
		Context:   strings.Join(tokens[start:end], " "),
		Timestamp: time.Now(),
	}

	// Diagnostic only: the closest known word is a suggestion for the
	// learning workflow, it never reclassifies the token.
	if suggestion, dist := closestMatch(tokens[i], c.idx.FuzzyCandidates()); dist <= maxEditDist {
		u.Suggestion = suggestion
		u.SuggestedType = "operation"
		u.Confidence = 1 - float64(dist)/float64(len(tokens[i])+1)
	}

	return u
}

// pairColumnValues links each literal value to the column-bearing word
// directly before it.
func (c *Classifier) pairColumnValues(comps []QueryComponent) []ColumnValuePair {
	var pairs []ColumnValuePair
	for i := range comps {
		if comps[i].Type != lexicon.Value {
			continue
		}
		if i == 0 {
			continue
		}
		prev := comps[i-1]
		if prev.Type == lexicon.Temporal {
			// The number after a temporal indicator is that filter's
			// operand, not a column equality.
			continue
		}
		if prev.Type == lexicon.Dimension || c.idx.IsKnownColumn(prev.Text) {
			comps[i].Column = prev.Text
			pairs = append(pairs, ColumnValuePair{
				Column:     prev.Text,
				Value:      comps[i].Value,
				Confidence: minFloat(prev.Confidence, comps[i].Confidence),
				RawText:    prev.Text + " " + comps[i].Text,
			})
		}
	}
	return pairs
}

func closestMatch(word string, candidates []string) (string, int) {
	best := ""
	bestDist := maxEditDist + 1
	w := strings.ToLower(word)
	for _, cand := range candidates {
		if d := editDistance(w, cand); d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best, bestDist
}

func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
