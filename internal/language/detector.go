package language

import (
	"strings"

	"go.uber.org/zap"

	"github.com/dataspeak/backend/internal/lexicon"
)

const (
	highConfidenceWeight = 15
	connectorWeight      = 10

	// tieBreakConnector is the single high-signal word checked first when
	// both languages score equal.
	tieBreakConnector = "with"
)

// Detector decides which of the two supported languages a token stream is
// written in. English is the designated fallback: empty evidence and every
// tie-break branch resolve to it.
type Detector struct {
	idx    *lexicon.Index
	logger *zap.Logger
}

func NewDetector(idx *lexicon.Index, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{idx: idx, logger: logger}
}

func (d *Detector) Detect(tokens []string) lexicon.Language {
	evidence := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		// Single uppercase letters are literal data, never linguistic
		// evidence.
		if lexicon.IsSingleUppercaseLetter(tok) {
			continue
		}
		evidence = append(evidence, strings.ToLower(tok))
	}

	if len(evidence) == 0 {
		d.logger.Debug("No linguistic evidence, defaulting to English")
		return lexicon.English
	}

	spanishScore := d.score(lexicon.Spanish, evidence)
	englishScore := d.score(lexicon.English, evidence)

	var detected lexicon.Language
	var rule string
	switch {
	case spanishScore > englishScore:
		detected, rule = lexicon.Spanish, "score"
	case englishScore > spanishScore:
		detected, rule = lexicon.English, "score"
	default:
		detected, rule = d.breakTie(evidence)
	}

	d.logger.Debug("Language detected",
		zap.String("language", string(detected)),
		zap.Int("spanish_score", spanishScore),
		zap.Int("english_score", englishScore),
		zap.String("rule", rule),
	)

	return detected
}

func (d *Detector) score(lang lexicon.Language, tokens []string) int {
	score := 0
	for _, tok := range tokens {
		if d.idx.IsHighConfidence(lang, tok) {
			score += highConfidenceWeight
		} else if d.idx.IsConnector(lang, tok) {
			score += connectorWeight
		}
	}
	return score
}

// breakTie resolves an exact score tie through a fixed, testable chain:
// the "with" connector, then an internal word separator in any token,
// then the English default.
func (d *Detector) breakTie(tokens []string) (lexicon.Language, string) {
	for _, tok := range tokens {
		if tok == tieBreakConnector {
			return lexicon.English, "tie_connector"
		}
	}
	for _, tok := range tokens {
		if strings.Contains(tok, "_") {
			return lexicon.English, "tie_separator"
		}
	}
	return lexicon.English, "tie_default"
}
