package lexicon

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Index is the read-only lookup structure every pipeline stage shares.
// It is built once from the loaded dictionaries and never mutated after,
// so concurrent queries can use one instance without locking. Swap in a
// freshly built Index to pick up dictionary changes.
type Index struct {
	logger *zap.Logger
	dicts  *Dictionaries

	flat         map[string]ComponentType
	anchors      []operationAnchor
	temporal     map[string]*TemporalEntry
	compounds    []compoundEntry
	typos        map[Language]map[string]string
	numbers      map[Language]map[string]int
	knownColumns map[string]bool
	connectors   map[Language]map[string]bool
	highConf     map[Language]map[string]bool
	anchorMap    map[string]string
}

type operationAnchor struct {
	phrase string
	words  int
	kind   OperationType
}

type compoundEntry struct {
	surface   string
	canonical string
}

func NewIndex(d *Dictionaries, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	if d == nil {
		d = &Dictionaries{}
	}

	ix := &Index{
		logger:       logger,
		dicts:        d,
		flat:         make(map[string]ComponentType),
		temporal:     make(map[string]*TemporalEntry),
		typos:        make(map[Language]map[string]string),
		numbers:      make(map[Language]map[string]int),
		knownColumns: make(map[string]bool),
		connectors:   make(map[Language]map[string]bool),
		highConf:     make(map[Language]map[string]bool),
		anchorMap:    make(map[string]string),
	}

	ix.buildFlat()
	ix.buildAnchors()
	ix.buildTemporal()
	ix.buildCompounds()
	ix.buildLanguageMaps()

	logger.Debug("Lexical index built",
		zap.Int("flat_entries", len(ix.flat)),
		zap.Int("operation_anchors", len(ix.anchors)),
		zap.Int("temporal_entries", len(ix.temporal)),
		zap.Int("compound_phrases", len(ix.compounds)),
	)

	return ix
}

func (ix *Index) buildFlat() {
	d := ix.dicts

	for _, w := range d.Dimensions {
		ix.addAnchored(canonicalForm(w), Dimension)
	}
	for _, w := range d.Metrics {
		ix.addAnchored(canonicalForm(w), Metric)
	}
	for canonical, variants := range d.CompoundPhrases {
		anchor := canonicalForm(canonical)
		if t, ok := ix.flat[anchor]; ok {
			for _, v := range variants {
				vf := canonicalForm(v)
				if _, exists := ix.flat[vf]; !exists {
					ix.flat[vf] = t
					ix.anchorMap[vf] = anchor
				}
			}
		}
	}
	for _, op := range d.Operations {
		for _, anchor := range op.Anchors {
			if !strings.Contains(anchor, " ") {
				ix.flat[strings.ToLower(anchor)] = Operation
			}
		}
	}
	for lang, words := range d.Connectors {
		for _, w := range words {
			ix.flat[lang+":"+strings.ToLower(w)] = Connector
		}
	}
	for lang, words := range d.ExclusionWords {
		for _, w := range words {
			ix.flat[lang+":"+strings.ToLower(w)] = Connector
		}
	}
	for _, words := range d.RankingWords {
		for _, w := range words {
			ix.flat[strings.ToLower(w)] = Connector
		}
	}
	for _, words := range d.RangeWords {
		for _, w := range words {
			ix.flat[strings.ToLower(w)] = Connector
		}
	}
	for _, w := range d.ReferenceWords {
		ix.flat[strings.ToLower(w)] = Connector
	}
	for _, w := range d.ListWords {
		ix.flat[canonicalForm(w)] = Connector
	}
	for w := range d.SuperlativeWords {
		ix.flat[strings.ToLower(w)] = Operation
	}
	for w := range d.FlagColumns {
		ix.flat[strings.ToLower(w)] = ColumnValue
	}
	for _, w := range d.KnownColumns {
		ix.knownColumns[canonicalForm(w)] = true
	}
}

// addAnchored indexes a word together with generated plural forms, all
// anchored back to the canonical singular.
func (ix *Index) addAnchored(word string, t ComponentType) {
	ix.flat[word] = t
	for _, plural := range []string{word + "s", word + "es"} {
		if _, exists := ix.flat[plural]; !exists {
			ix.flat[plural] = t
			ix.anchorMap[plural] = word
		}
	}
}

// AnchorFor maps a surface variant ("stores") to its canonical
// dictionary term ("store"). Identity when the word is already canonical.
func (ix *Index) AnchorFor(word string) string {
	if anchor, ok := ix.anchorMap[strings.ToLower(word)]; ok {
		return anchor
	}
	return strings.ToLower(word)
}

func (ix *Index) buildAnchors() {
	for _, op := range ix.dicts.Operations {
		kind := OperationType(op.Kind)
		for _, anchor := range op.Anchors {
			a := strings.ToLower(anchor)
			ix.anchors = append(ix.anchors, operationAnchor{
				phrase: a,
				words:  len(strings.Fields(a)),
				kind:   kind,
			})
		}
	}

	// Superlatives double as max/min anchors, registered after the real
	// operations so they never win an insertion-order tie.
	for w, direction := range ix.dicts.SuperlativeWords {
		kind := OpMax
		if direction == "bottom" {
			kind = OpMin
		}
		ix.anchors = append(ix.anchors, operationAnchor{
			phrase: strings.ToLower(w),
			words:  1,
			kind:   kind,
		})
	}

	// Longest phrase wins; equal lengths keep insertion order.
	sort.SliceStable(ix.anchors, func(i, j int) bool {
		return ix.anchors[i].words > ix.anchors[j].words
	})
}

func (ix *Index) buildTemporal() {
	for i := range ix.dicts.TemporalIndicators {
		entry := &ix.dicts.TemporalIndicators[i]
		ix.temporal[strings.ToLower(entry.Indicator)] = entry
		for _, v := range entry.Variants {
			ix.temporal[strings.ToLower(v)] = entry
		}
	}
}

func (ix *Index) buildCompounds() {
	seen := make(map[string]bool)

	add := func(surface, canonical string) {
		surface = strings.ToLower(strings.TrimSpace(surface))
		if surface == "" || !strings.Contains(surface, " ") || seen[surface] {
			return
		}
		seen[surface] = true
		ix.compounds = append(ix.compounds, compoundEntry{surface: surface, canonical: canonical})
		for _, variant := range surfaceVariants(surface) {
			if !seen[variant] {
				seen[variant] = true
				ix.compounds = append(ix.compounds, compoundEntry{surface: variant, canonical: canonical})
			}
		}
	}

	for canonical, variants := range ix.dicts.CompoundPhrases {
		underscored := canonicalForm(canonical)
		for _, v := range variants {
			add(v, underscored)
		}
		add(strings.ReplaceAll(canonical, "_", " "), underscored)
	}
	for _, w := range ix.dicts.Dimensions {
		add(w, canonicalForm(w))
	}
	for _, w := range ix.dicts.Metrics {
		add(w, canonicalForm(w))
	}
	for _, w := range ix.dicts.ListWords {
		add(w, canonicalForm(w))
	}

	// Longest surface first so "dead inventory status" is never
	// shadowed by "dead inventory".
	sort.SliceStable(ix.compounds, func(i, j int) bool {
		return len(ix.compounds[i].surface) > len(ix.compounds[j].surface)
	})
}

func (ix *Index) buildLanguageMaps() {
	for lang, m := range ix.dicts.TypoCorrections {
		lm := make(map[string]string, len(m))
		for wrong, right := range m {
			lm[strings.ToLower(wrong)] = strings.ToLower(right)
		}
		ix.typos[Language(lang)] = lm
	}
	for lang, m := range ix.dicts.WordNumbers {
		lm := make(map[string]int, len(m))
		for w, n := range m {
			lm[strings.ToLower(w)] = n
		}
		ix.numbers[Language(lang)] = lm
	}
	for lang, words := range ix.dicts.Connectors {
		set := make(map[string]bool, len(words))
		for _, w := range words {
			set[strings.ToLower(w)] = true
		}
		ix.connectors[Language(lang)] = set
	}
	for lang, words := range ix.dicts.HighConfidence {
		set := make(map[string]bool, len(words))
		for _, w := range words {
			set[strings.ToLower(w)] = true
		}
		ix.highConf[Language(lang)] = set
	}
}

// Classify resolves one token to its component type. Single uppercase
// letters are always literal data values. Temporal dictionary hits are
// values of a time dimension, never the dimension itself.
func (ix *Index) Classify(lang Language, word string) ComponentType {
	if IsSingleUppercaseLetter(word) {
		return Value
	}

	w := strings.ToLower(word)
	if t, ok := ix.flat[w]; ok {
		return t
	}
	if t, ok := ix.flat[string(lang)+":"+w]; ok {
		return t
	}
	if _, ok := ix.temporal[w]; ok {
		return Value
	}
	if _, err := strconv.Atoi(w); err == nil {
		return Value
	}
	if _, ok := ix.numbers[lang][w]; ok {
		return Value
	}

	return Unknown
}

// FindOperation matches a word or phrase against the operation anchors.
// Multi-word anchors are preferred over single-word ones, longest match
// wins, and equal-length ties resolve to the first-inserted anchor.
func (ix *Index) FindOperation(text string) (OperationType, bool) {
	padded := " " + strings.ToLower(strings.TrimSpace(text)) + " "
	for _, a := range ix.anchors {
		if strings.Contains(padded, " "+a.phrase+" ") {
			return a.kind, true
		}
	}
	return "", false
}

// OperationPhrase matches a phrase against the anchors exactly, for
// window scans that must not consume tokens beyond the anchor.
func (ix *Index) OperationPhrase(phrase string) (OperationType, bool) {
	p := strings.ToLower(strings.TrimSpace(phrase))
	for _, a := range ix.anchors {
		if a.phrase == p {
			return a.kind, true
		}
	}
	return "", false
}

func (ix *Index) FindTemporal(word string) (*TemporalEntry, bool) {
	e, ok := ix.temporal[strings.ToLower(word)]
	return e, ok
}

// NormalizeCompound replaces every known multi-word phrase with its
// underscore-joined canonical form, longest phrase first. Applying it to
// already-normalized text is a no-op: canonical forms contain no spaces.
func (ix *Index) NormalizeCompound(text string) string {
	padded := " " + strings.ToLower(text) + " "
	for _, c := range ix.compounds {
		padded = strings.ReplaceAll(padded, " "+c.surface+" ", " "+c.canonical+" ")
	}
	return strings.TrimSpace(padded)
}

func (ix *Index) CorrectTypo(lang Language, word string) string {
	if right, ok := ix.typos[lang][strings.ToLower(word)]; ok {
		return right
	}
	return word
}

// WordNumber resolves a token to a number, accepting digits and the
// active language's number words.
func (ix *Index) WordNumber(lang Language, word string) (int, bool) {
	w := strings.ToLower(word)
	if n, err := strconv.Atoi(w); err == nil {
		return n, true
	}
	if n, ok := ix.numbers[lang][w]; ok {
		return n, true
	}
	return 0, false
}

func (ix *Index) IsKnownColumn(word string) bool {
	return ix.knownColumns[strings.ToLower(word)]
}

func (ix *Index) IsConnector(lang Language, word string) bool {
	return ix.connectors[lang][strings.ToLower(word)]
}

func (ix *Index) IsHighConfidence(lang Language, word string) bool {
	return ix.highConf[lang][strings.ToLower(word)]
}

// RankingDirection reports whether the word opens a ranking phrase and
// which end of the ordering it asks for.
func (ix *Index) RankingDirection(word string) (string, bool) {
	w := strings.ToLower(word)
	for direction, words := range ix.dicts.RankingWords {
		if direction == "percent" {
			continue
		}
		for _, rw := range words {
			if strings.ToLower(rw) == w {
				return direction, true
			}
		}
	}
	return "", false
}

func (ix *Index) IsPercentWord(word string) bool {
	w := strings.ToLower(word)
	for _, rw := range ix.dicts.RankingWords["percent"] {
		if strings.ToLower(rw) == w {
			return true
		}
	}
	return false
}

func (ix *Index) IsExclusionWord(lang Language, word string) bool {
	w := strings.ToLower(word)
	for _, ew := range ix.dicts.ExclusionWords[string(lang)] {
		if strings.ToLower(ew) == w {
			return true
		}
	}
	return false
}

// RangeKind classifies a range indicator word as "from", "to" or
// "between".
func (ix *Index) RangeKind(word string) (string, bool) {
	w := strings.ToLower(word)
	for kind, words := range ix.dicts.RangeWords {
		for _, rw := range words {
			if strings.ToLower(rw) == w {
				return kind, true
			}
		}
	}
	return "", false
}

func (ix *Index) SuperlativeDirection(word string) (string, bool) {
	d, ok := ix.dicts.SuperlativeWords[strings.ToLower(word)]
	return d, ok
}

func (ix *Index) FlagColumn(word string) (string, bool) {
	col, ok := ix.dicts.FlagColumns[strings.ToLower(word)]
	return col, ok
}

func (ix *Index) IsReferenceWord(word string) bool {
	w := strings.ToLower(word)
	for _, rw := range ix.dicts.ReferenceWords {
		if strings.ToLower(rw) == w {
			return true
		}
	}
	return false
}

func (ix *Index) ListPhrases() []string {
	return ix.dicts.ListWords
}

func (ix *Index) FuzzyCandidates() []string {
	var out []string
	for _, a := range ix.anchors {
		if a.words == 1 {
			out = append(out, a.phrase)
		}
	}
	for _, w := range ix.dicts.Dimensions {
		out = append(out, canonicalForm(w))
	}
	for _, w := range ix.dicts.Metrics {
		out = append(out, canonicalForm(w))
	}
	return out
}

// Stats reports per-category sizes for the dictionary stats endpoint.
func (ix *Index) Stats() map[string]int {
	return map[string]int{
		"dimensions":          len(ix.dicts.Dimensions),
		"metrics":             len(ix.dicts.Metrics),
		"operations":          len(ix.anchors),
		"temporal_indicators": len(ix.temporal),
		"compound_phrases":    len(ix.compounds),
		"flat_entries":        len(ix.flat),
		"known_columns":       len(ix.knownColumns),
	}
}

// IsSingleUppercaseLetter reports whether the token is exactly one
// uppercase letter. Such tokens are literal data codes, never words.
func IsSingleUppercaseLetter(word string) bool {
	r, size := utf8.DecodeRuneInString(word)
	return size == len(word) && unicode.IsLetter(r) && unicode.IsUpper(r)
}

func canonicalForm(w string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(w)), " ", "_")
}

// surfaceVariants generates the plural and capitalization variants every
// multi-word phrase is indexed under.
func surfaceVariants(surface string) []string {
	variants := []string{surface + "s", surface + "es"}

	words := strings.Fields(surface)
	titled := make([]string, len(words))
	for i, w := range words {
		titled[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	variants = append(variants, strings.Join(titled, " "))
	variants = append(variants, strings.ToUpper(surface[:1])+surface[1:])

	return variants
}
