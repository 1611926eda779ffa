// Package terminal abstracts the trading terminal the gateway fronts.
// The production implementation talks to a bridge running inside the
// terminal over a websocket; tests substitute terminaltest.Fake.
package terminal

import (
	"time"

	"mt5-gateway/internal/model"
)

// Terminal is the synchronous collaborator contract. Every method returns
// fresh state; nothing is cached on this side of the connection. A nil
// result always comes with a non-nil error.
type Terminal interface {
	// AccountInfo returns the account snapshot.
	AccountInfo() (*model.Account, error)
	// Tick returns the latest bid/ask for symbol.
	Tick(symbol string) (*model.Tick, error)
	// SymbolInfo returns the trading parameters of symbol, including the
	// terminal's last quote time.
	SymbolInfo(symbol string) (*model.SymbolInfo, error)
	// RecentBars returns up to count most recent bars of the given
	// granularity, oldest first.
	RecentBars(symbol string, timeframeMinutes, count int) ([]model.Bar, error)
	// OpenPositions returns all open positions.
	OpenPositions() ([]model.Position, error)
	// PendingOrders returns all pending orders.
	PendingOrders() ([]model.Order, error)
	// HistoricalDeals returns all deals with fill time in [from, to).
	HistoricalDeals(from, to time.Time) ([]model.Deal, error)
	// SubmitOrder sends a trade request and returns the broker's result.
	SubmitOrder(req model.OrderRequest) (*model.OrderResult, error)
	// CancelOrder removes a pending order by ticket.
	CancelOrder(ticket int64) (*model.OrderResult, error)
	// Close tears down the terminal session.
	Close() error
}
