// Package market derives defining ranges and market status from terminal
// data. Nothing here holds state across calls; every computation reads a
// fresh snapshot.
package market

import (
	"errors"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"mt5-gateway/internal/logger"
	"mt5-gateway/internal/model"
	"mt5-gateway/internal/terminal"
)

// errEmptyWindow marks an attempt where no bar fell inside the requested
// window, typically feed lag right after the window opens. It is the only
// retryable condition.
var errEmptyWindow = errors.New("no bars in range window")

// ExtractorConfig tunes the range computation.
type ExtractorConfig struct {
	// TimeframeMinutes is the bar granularity.
	TimeframeMinutes int
	// BarCount is how many recent bars to request per attempt.
	BarCount int
	// Attempts is the total number of tries before giving up.
	Attempts int
	// Interval is the fixed wait between attempts. Zero retries
	// immediately.
	Interval time.Duration
	// Location is the reference timezone the window is expressed in.
	Location *time.Location
}

func (c ExtractorConfig) withDefaults() ExtractorConfig {
	if c.TimeframeMinutes <= 0 {
		c.TimeframeMinutes = 5
	}
	if c.BarCount <= 0 {
		c.BarCount = 300
	}
	if c.Attempts <= 0 {
		c.Attempts = 5
	}
	if c.Interval < 0 {
		c.Interval = 0
	}
	if c.Location == nil {
		c.Location, _ = time.LoadLocation("America/New_York")
	}

	return c
}

// Extractor computes defining ranges. It never fails loudly: every error
// path logs and yields the zero-value sentinel range.
type Extractor struct {
	term terminal.Terminal
	log  *logger.Logger
	cfg  ExtractorConfig

	// now is swapped out by tests.
	now func() time.Time
}

// NewExtractor builds an Extractor over the given terminal session.
func NewExtractor(term terminal.Terminal, log *logger.Logger, cfg ExtractorConfig) *Extractor {
	if log == nil {
		log = logger.NewNop()
	}

	return &Extractor{
		term: term,
		log:  log,
		cfg:  cfg.withDefaults(),
		now:  time.Now,
	}
}

// Compute returns the defining range of symbol over the half-open
// time-of-day window [start, end) on the current reference-timezone day.
// When the window stays empty after all attempts, or on any terminal
// failure, it returns the sentinel zero range. Windows crossing midnight
// are not supported and yield the sentinel immediately.
func (e *Extractor) Compute(symbol string, start, end model.TimeOfDay) model.DefiningRange {
	if end.Minutes() <= start.Minutes() {
		e.log.Warn("range window must not cross midnight",
			zap.String("symbol", symbol),
			zap.String("start", start.String()),
			zap.String("end", end.String()))

		return model.DefiningRange{}
	}

	var out model.DefiningRange
	op := func() error {
		r, err := e.attempt(symbol, start, end)
		if err != nil {
			if errors.Is(err, errEmptyWindow) {
				return err
			}
			// Terminal failures are not retried: waiting does not bring a
			// missing symbol back.
			return backoff.Permanent(err)
		}
		out = r

		return nil
	}

	policy := backoff.WithMaxRetries(
		backoff.NewConstantBackOff(e.cfg.Interval),
		uint64(e.cfg.Attempts-1),
	)
	if err := backoff.Retry(op, policy); err != nil {
		e.log.Warn("defining range unavailable",
			zap.String("symbol", symbol),
			zap.String("start", start.String()),
			zap.String("end", end.String()),
			zap.Int("attempts", e.cfg.Attempts),
			zap.Error(err))

		return model.DefiningRange{}
	}

	return out
}

// attempt runs a single extraction pass.
func (e *Extractor) attempt(symbol string, start, end model.TimeOfDay) (model.DefiningRange, error) {
	info, err := e.term.SymbolInfo(symbol)
	if err != nil {
		return model.DefiningRange{}, err
	}
	bars, err := e.term.RecentBars(symbol, e.cfg.TimeframeMinutes, e.cfg.BarCount)
	if err != nil {
		return model.DefiningRange{}, err
	}

	// The feed stamps bars relative to its own clock, which can run ahead
	// of true UTC when a fetch is batch-timestamped. Subtract the offset
	// between the symbol's quote time and our clock, then bucket to bar
	// boundaries.
	offset := info.Time.Unix() - e.now().UTC().Unix()
	bucket := int64(e.cfg.TimeframeMinutes) * 60

	today := e.now().In(e.cfg.Location)
	startMin, endMin := start.Minutes(), end.Minutes()

	high := math.Inf(-1)
	low := math.Inf(1)
	matched := false

	for _, b := range bars {
		ts := (b.Time.Unix() - offset) / bucket * bucket
		t := time.Unix(ts, 0).In(e.cfg.Location)
		if t.Year() != today.Year() || t.YearDay() != today.YearDay() {
			continue
		}
		minute := t.Hour()*60 + t.Minute()
		if minute < startMin || minute >= endMin {
			continue
		}

		// Bars are bid-quoted; shifting by half the point-weighted spread
		// puts the band on a mid/ask-consistent reference.
		half := info.Point * float64(b.Spread) / 2
		open := b.Open + half
		close := b.Close + half

		// The band is defined by bar opens and closes only. Wick extremes
		// are intentionally excluded.
		high = math.Max(high, math.Max(open, close))
		low = math.Min(low, math.Min(open, close))
		matched = true
	}

	if !matched {
		return model.DefiningRange{}, errEmptyWindow
	}

	return model.DefiningRange{High: high, Low: low}, nil
}
