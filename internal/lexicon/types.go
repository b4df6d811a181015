package lexicon

type Language string

const (
	Spanish Language = "es"
	English Language = "en"
)

func (l Language) Valid() bool {
	return l == Spanish || l == English
}

type ComponentType int

const (
	Unknown ComponentType = iota
	Dimension
	Metric
	Operation
	ColumnValue
	Temporal
	Value
	Connector
)

func (t ComponentType) String() string {
	switch t {
	case Dimension:
		return "dimension"
	case Metric:
		return "metric"
	case Operation:
		return "operation"
	case ColumnValue:
		return "column_value"
	case Temporal:
		return "temporal"
	case Value:
		return "value"
	case Connector:
		return "connector"
	default:
		return "unknown"
	}
}

type OperationType string

const (
	OpSum     OperationType = "sum"
	OpAverage OperationType = "average"
	OpMax     OperationType = "max"
	OpMin     OperationType = "min"
	OpCount   OperationType = "count"
)

type TemporalKind string

const (
	TemporalExact   TemporalKind = "exact"
	TemporalRolling TemporalKind = "rolling"
)

// TemporalEntry describes one time indicator from the temporal dictionary.
// Every variant resolves to the same entry in the temporal index.
type TemporalEntry struct {
	Indicator string       `json:"indicator" mapstructure:"indicator"`
	Unit      string       `json:"unit" mapstructure:"unit"`
	Kind      TemporalKind `json:"kind" mapstructure:"kind"`
	Variants  []string     `json:"variants" mapstructure:"variants"`
}

// OperationEntry maps one aggregation kind to its anchor phrases.
// Entries keep file order: FindOperation breaks length ties by the
// first-inserted anchor.
type OperationEntry struct {
	Kind    string   `json:"kind" mapstructure:"kind"`
	Anchors []string `json:"anchors" mapstructure:"anchors"`
}

// Dictionaries holds every vocabulary category the index is built from.
// Categories missing from disk stay empty; the index degrades instead of
// refusing to start.
type Dictionaries struct {
	Dimensions         []string
	Metrics            []string
	Operations         []OperationEntry
	Connectors         map[string][]string
	HighConfidence     map[string][]string
	TemporalIndicators []TemporalEntry
	TemporalUnits      []string
	CompoundPhrases    map[string][]string
	TypoCorrections    map[string]map[string]string
	WordNumbers        map[string]map[string]int
	KnownColumns       []string
	RankingWords       map[string][]string
	ExclusionWords     map[string][]string
	RangeWords         map[string][]string
	SuperlativeWords   map[string]string
	FlagColumns        map[string]string
	ListWords          []string
	ReferenceWords     []string
}
