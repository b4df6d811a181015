package lexicon

import (
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Loader reads the category dictionaries from a directory of JSON files.
// A file that is missing or unreadable yields an empty category, never an
// error: the index must always come up, even if it then recognizes less.
type Loader struct {
	dir    string
	logger *zap.Logger
	loaded int
	missed int
}

func NewLoader(dir string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{dir: dir, logger: logger}
}

func (l *Loader) Load() *Dictionaries {
	d := &Dictionaries{}

	l.readKey("dimensions.json", "dimensions", &d.Dimensions)
	l.readKey("metrics.json", "metrics", &d.Metrics)
	l.readKey("operations.json", "operations", &d.Operations)
	l.readAll("connectors.json", &d.Connectors)
	l.readAll("high_confidence.json", &d.HighConfidence)
	l.readKey("temporal_indicators.json", "indicators", &d.TemporalIndicators)
	l.readKey("temporal_units.json", "units", &d.TemporalUnits)
	l.readKey("compound_phrases.json", "phrases", &d.CompoundPhrases)
	l.readAll("typo_corrections.json", &d.TypoCorrections)
	l.readAll("word_numbers.json", &d.WordNumbers)
	l.readKey("known_columns.json", "columns", &d.KnownColumns)
	l.readAll("ranking_words.json", &d.RankingWords)
	l.readAll("exclusion_words.json", &d.ExclusionWords)
	l.readAll("range_words.json", &d.RangeWords)
	l.readKey("superlatives.json", "words", &d.SuperlativeWords)
	l.readKey("flag_columns.json", "columns", &d.FlagColumns)
	l.readKey("list_words.json", "phrases", &d.ListWords)
	l.readKey("reference_words.json", "words", &d.ReferenceWords)

	l.logger.Info("Dictionaries loaded",
		zap.String("dir", l.dir),
		zap.Int("categories_loaded", l.loaded),
		zap.Int("categories_missing", l.missed),
	)

	return d
}

// Stats reports how the last Load went, for the dictionary stats endpoint.
func (l *Loader) Stats() (loaded, missing int) {
	return l.loaded, l.missed
}

func (l *Loader) readKey(file, key string, out interface{}) {
	v, ok := l.open(file)
	if !ok {
		return
	}
	if err := v.UnmarshalKey(key, out); err != nil {
		l.logger.Warn("Failed to decode dictionary category",
			zap.String("file", file),
			zap.String("key", key),
			zap.Error(err),
		)
		l.missed++
		return
	}
	l.loaded++
}

func (l *Loader) readAll(file string, out interface{}) {
	v, ok := l.open(file)
	if !ok {
		return
	}
	if err := v.Unmarshal(out); err != nil {
		l.logger.Warn("Failed to decode dictionary file",
			zap.String("file", file),
			zap.Error(err),
		)
		l.missed++
		return
	}
	l.loaded++
}

func (l *Loader) open(file string) (*viper.Viper, bool) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(l.dir, file))
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		l.logger.Warn("Dictionary file unavailable, category defaults to empty",
			zap.String("file", file),
			zap.Error(err),
		)
		l.missed++
		return nil, false
	}
	return v, true
}
