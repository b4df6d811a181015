package normalize

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dataspeak/backend/internal/lexicon"
)

// Normalizer prepares raw text for classification: isolated uppercase
// letters survive as literal values, everything else is lowercased and
// multi-word phrases collapse into single lexical units.
type Normalizer struct {
	idx    *lexicon.Index
	logger *zap.Logger
}

func NewNormalizer(idx *lexicon.Index, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{idx: idx, logger: logger}
}

// Normalize returns the normalized text and the map of placeholder to the
// original letter it preserved. Restoration is best effort: a placeholder
// fragmented by a compound substitution is lost, logged, and processing
// continues.
func (n *Normalizer) Normalize(raw string) (string, map[string]string) {
	preserved := make(map[string]string)

	raw = strings.NewReplacer(
		"%", " % ",
		"?", " ", "¿", " ",
		"!", " ", "¡", " ",
		",", " ", ";", " ",
	).Replace(raw)

	words := strings.Fields(raw)
	for i, word := range words {
		if lexicon.IsSingleUppercaseLetter(stripNonAlnum(word)) {
			placeholder := fmt.Sprintf("__lit%d__", len(preserved))
			preserved[placeholder] = stripNonAlnum(word)
			words[i] = placeholder
		}
	}

	text := strings.ToLower(strings.Join(words, " "))
	text = n.idx.NormalizeCompound(text)

	for placeholder, letter := range preserved {
		if !strings.Contains(text, placeholder) {
			// A substitution fragmented the placeholder. Known
			// limitation: the literal letter is dropped rather than
			// guessed back into place.
			n.logger.Warn("Preserved literal lost during normalization",
				zap.String("letter", letter),
				zap.String("placeholder", placeholder),
			)
			continue
		}
		text = strings.Replace(text, placeholder, letter, 1)
	}

	return text, preserved
}

// Tokens splits normalized text into classifier input.
func Tokens(text string) []string {
	return strings.Fields(text)
}

func stripNonAlnum(word string) string {
	var b strings.Builder
	for _, r := range word {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
