package temporal

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dataspeak/backend/internal/lexicon"
	"github.com/dataspeak/backend/internal/patterns"
)

// dateColumn backs rolling-window filters; unit columns back everything
// else.
const dateColumn = "date"

// Resolver converts a recognized temporal filter into a SQL predicate
// fragment. It never fails: a structurally valid but semantically empty
// filter resolves to a tautology.
type Resolver struct {
	logger *zap.Logger
}

func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger}
}

// ToPredicate resolves in fixed order: open-start, bounded (always
// ascending regardless of how the user phrased it), open-end, exact
// period, rolling window, tautology.
func (r *Resolver) ToPredicate(info patterns.AdvancedTemporalInfo) string {
	column := unitColumn(info.Filter.Unit)

	switch {
	case info.OpenStart:
		return fmt.Sprintf("%s >= %d", column, info.Start)
	case info.Bounded:
		lo, hi := info.Start, info.End
		if lo > hi {
			lo, hi = hi, lo
		}
		return fmt.Sprintf("%s BETWEEN %d AND %d", column, lo, hi)
	case info.OpenEnd:
		return fmt.Sprintf("%s <= %d", column, info.End)
	}

	f := info.Filter
	if f.Kind == lexicon.TemporalExact && f.Quantity > 0 {
		if f.Year > 0 {
			return fmt.Sprintf("%s = %d AND year = %d", column, f.Quantity, f.Year)
		}
		return fmt.Sprintf("%s = %d", column, f.Quantity)
	}

	if f.Kind == lexicon.TemporalRolling && f.Quantity > 0 {
		return rollingPredicate(f)
	}

	r.logger.Debug("Temporal filter resolved to tautology",
		zap.String("indicator", f.Indicator),
		zap.String("unit", f.Unit),
	)
	return "1=1"
}

// rollingPredicate emits a "within the last N units from now" fragment.
// Weeks convert to days so the window stays a single date offset.
func rollingPredicate(f patterns.TemporalFilter) string {
	quantity := f.Quantity
	unit := f.Unit

	switch unit {
	case "week":
		quantity *= 7
		unit = "day"
	case "quarter":
		quantity *= 3
		unit = "month"
	}

	return fmt.Sprintf("%s >= DATE('now', '-%d %s')", dateColumn, quantity, unit)
}

func unitColumn(unit string) string {
	switch unit {
	case "week", "month", "year", "quarter", "day":
		return unit
	default:
		return dateColumn
	}
}
