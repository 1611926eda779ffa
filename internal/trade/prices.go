package trade

import "mt5-gateway/internal/model"

// Rule is per-symbol behavior configured as data, so the derivation logic
// stays symbol-agnostic.
type Rule struct {
	// InvertDirection flips the requested direction before price
	// derivation. Needed for instruments whose source-venue quoting
	// convention is inverted relative to the caller's (e.g. USDJPY).
	InvertDirection bool `yaml:"invert_direction" json:"invert_direction"`
}

// Rules maps symbol name to its Rule.
type Rules map[string]Rule

// Direction applies the symbol's rule to the requested direction.
func (r Rules) Direction(symbol string, d model.Direction) model.Direction {
	if rule, ok := r[symbol]; ok && rule.InvertDirection {
		return d.Opposite()
	}

	return d
}

// Prices are the absolute order levels derived from a defining range.
type Prices struct {
	Entry  float64
	Stop   float64
	Profit float64
}

// DerivePrices converts percentage offsets of the range width into
// absolute price levels. Long offsets extend upward from the range high,
// short offsets mirror downward from the range low. The execution-side
// level gets half the spread: entry for longs (filled at ask), stop for
// shorts (stopped at ask).
func DerivePrices(r model.DefiningRange, d model.Direction, entryPct, stopPct, profitPct, spread float64) Prices {
	width := r.High - r.Low

	if d.IsLong() {
		return Prices{
			Entry:  r.High + (entryPct/100)*width + spread/2,
			Stop:   r.High + (stopPct/100)*width,
			Profit: r.High + (profitPct/100)*width,
		}
	}

	return Prices{
		Entry:  r.Low - (entryPct/100)*width,
		Stop:   r.Low - (stopPct/100)*width + spread/2,
		Profit: r.Low - (profitPct/100)*width,
	}
}
