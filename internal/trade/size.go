// Package trade holds the position sizing, order-price derivation and
// order submission logic. All functions are pure over their inputs plus a
// fresh market snapshot; sentinels, not errors, signal "do not trade".
package trade

import (
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mt5-gateway/internal/logger"
	"mt5-gateway/internal/model"
	"mt5-gateway/internal/terminal"
)

// Sizer computes lot sizes from risk parameters.
type Sizer struct {
	term terminal.Terminal
	log  *logger.Logger
}

// NewSizer builds a Sizer over the given terminal session.
func NewSizer(term terminal.Terminal, log *logger.Logger) *Sizer {
	if log == nil {
		log = logger.NewNop()
	}

	return &Sizer{term: term, log: log}
}

// PositionSize returns the lot size that puts riskDollars at risk between
// entry and stop. A zero return means "do not submit": unknown symbol,
// degenerate stop distance, or non-positive risk.
func (s *Sizer) PositionSize(symbol string, entry, stop, riskDollars float64) float64 {
	info, err := s.term.SymbolInfo(symbol)
	if err != nil {
		s.log.Warn("position size unavailable", zap.String("symbol", symbol), zap.Error(err))

		return 0
	}

	return SizeForSymbol(info, entry, stop, riskDollars)
}

// SizeForSymbol is the pure sizing formula. The stop distance is padded by
// the current spread as an execution-cost buffer, converted to ticks, and
// the raw lot is rounded to the symbol's volume-step granularity.
func SizeForSymbol(info *model.SymbolInfo, entry, stop, riskDollars float64) float64 {
	if info == nil || info.TickSize <= 0 || info.TickValue <= 0 || riskDollars <= 0 {
		return 0
	}

	stopTicks := (math.Abs(entry-stop) + float64(info.Spread)*info.TickSize) / info.TickSize
	if stopTicks <= 0 {
		return 0
	}

	raw := riskDollars / (stopTicks * info.TickValue)
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0
	}

	return roundToStep(raw, info.VolumeStep)
}

// roundToStep rounds volume to the decimal precision implied by the
// symbol's volume step: a 0.01 step means two decimal places.
func roundToStep(volume, step float64) float64 {
	places := int32(0)
	if step > 0 {
		if exp := decimal.NewFromFloat(step).Exponent(); exp < 0 {
			places = -exp
		}
	}

	return decimal.NewFromFloat(volume).Round(places).InexactFloat64()
}
