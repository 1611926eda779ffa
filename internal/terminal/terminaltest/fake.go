// Package terminaltest provides a scripted in-memory Terminal for tests.
package terminaltest

import (
	"fmt"
	"sync"
	"time"

	"mt5-gateway/internal/model"
)

// Fake implements terminal.Terminal from scripted state. Zero value is
// usable: every lookup fails until the corresponding field is populated.
// All calls are recorded so tests can assert on collaborator traffic.
type Fake struct {
	mu sync.Mutex

	Account   *model.Account
	Ticks     map[string]model.Tick
	Symbols   map[string]model.SymbolInfo
	Bars      map[string][]model.Bar
	Positions []model.Position
	Orders    []model.Order
	Deals     []model.Deal

	// BarsFunc overrides Bars when set; useful for per-attempt behavior.
	BarsFunc func(symbol string, timeframeMinutes, count int) ([]model.Bar, error)

	// SubmitResults are returned in order, one per SubmitOrder call. When
	// exhausted, SubmitOrder returns a done result.
	SubmitResults []model.OrderResult
	SubmitErr     error

	// Recorded traffic.
	BarCalls    int
	Submitted   []model.OrderRequest
	Cancelled   []int64
	DealQueries [][2]time.Time

	closed bool
}

func (f *Fake) AccountInfo() (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Account == nil {
		return nil, fmt.Errorf("account_info: not available")
	}
	acc := *f.Account

	return &acc, nil
}

func (f *Fake) Tick(symbol string) (*model.Tick, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.Ticks[symbol]
	if !ok {
		return nil, fmt.Errorf("symbol_info_tick: unknown symbol %s", symbol)
	}

	return &t, nil
}

func (f *Fake) SymbolInfo(symbol string) (*model.SymbolInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	info, ok := f.Symbols[symbol]
	if !ok {
		return nil, fmt.Errorf("symbol_info: unknown symbol %s", symbol)
	}

	return &info, nil
}

func (f *Fake) RecentBars(symbol string, timeframeMinutes, count int) ([]model.Bar, error) {
	f.mu.Lock()
	f.BarCalls++
	fn := f.BarsFunc
	bars := f.Bars[symbol]
	f.mu.Unlock()

	if fn != nil {
		return fn(symbol, timeframeMinutes, count)
	}
	if bars == nil {
		return nil, fmt.Errorf("copy_rates: no bars for %s", symbol)
	}
	if len(bars) > count {
		bars = bars[len(bars)-count:]
	}

	return bars, nil
}

func (f *Fake) OpenPositions() ([]model.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]model.Position(nil), f.Positions...), nil
}

func (f *Fake) PendingOrders() ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]model.Order(nil), f.Orders...), nil
}

func (f *Fake) HistoricalDeals(from, to time.Time) ([]model.Deal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.DealQueries = append(f.DealQueries, [2]time.Time{from, to})

	var out []model.Deal
	for _, d := range f.Deals {
		if !d.Time.Before(from) && d.Time.Before(to) {
			out = append(out, d)
		}
	}

	return out, nil
}

func (f *Fake) SubmitOrder(req model.OrderRequest) (*model.OrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Submitted = append(f.Submitted, req)
	if f.SubmitErr != nil {
		return nil, f.SubmitErr
	}
	if len(f.SubmitResults) > 0 {
		res := f.SubmitResults[0]
		f.SubmitResults = f.SubmitResults[1:]

		return &res, nil
	}

	return &model.OrderResult{Retcode: model.RetcodeDone, Comment: "done"}, nil
}

func (f *Fake) CancelOrder(ticket int64) (*model.OrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Cancelled = append(f.Cancelled, ticket)

	return &model.OrderResult{Retcode: model.RetcodeDone, Comment: "done"}, nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true

	return nil
}
