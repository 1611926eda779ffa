package model

import "time"

// Tick is the latest bid/ask quote for a symbol.
type Tick struct {
	Symbol string    `json:"symbol"`
	Bid    float64   `json:"bid"`
	Ask    float64   `json:"ask"`
	Time   time.Time `json:"time"`
}

// SymbolInfo carries the trading parameters of an instrument. Spread changes
// continuously, so a SymbolInfo must be fetched fresh for every computation
// and never cached.
type SymbolInfo struct {
	Name       string  `json:"name"`
	Point      float64 `json:"point"`       // minimum price increment
	Spread     int64   `json:"spread"`      // current spread, in points
	TickSize   float64 `json:"tick_size"`
	TickValue  float64 `json:"tick_value"`  // account-currency value of one tick per lot
	VolumeStep float64 `json:"volume_step"` // minimum lot increment
	// Time is the terminal's last quote time for this symbol. The feed may
	// stamp it ahead of or behind true UTC; the range extractor uses the
	// difference to normalize bar timestamps.
	Time time.Time `json:"time"`
}

// Bar is a single OHLC bar at the terminal's native granularity.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Spread int64     `json:"spread"` // spread at bar time, in points
}

// DefiningRange is the high/low band computed over a time-of-day window.
// The zero value is the "unavailable" sentinel: callers must not read it as
// a zero-width range at price zero.
type DefiningRange struct {
	High float64 `json:"high"`
	Low  float64 `json:"low"`
}

// Valid reports whether the range holds real bounds. High and Low are only
// ever set together, so a sentinel is always fully zero.
func (r DefiningRange) Valid() bool {
	return r.High != 0 || r.Low != 0
}
