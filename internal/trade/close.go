package trade

import (
	"go.uber.org/zap"

	"mt5-gateway/internal/model"
)

// ClosedPosition summarizes one position closed by CloseAll.
type ClosedPosition struct {
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Volume float64 `json:"volume"`
	Profit float64 `json:"profit"`
}

// CloseAll cancels every pending order, then closes every open position
// with an opposite market order at the current tick. Per-item failures are
// logged and skipped; the call itself never fails.
func (s *Submitter) CloseAll() []ClosedPosition {
	closed := []ClosedPosition{}

	orders, err := s.term.PendingOrders()
	if err != nil {
		s.log.Warn("close all: pending orders unavailable", zap.Error(err))
	}
	for _, o := range orders {
		if _, err := s.term.CancelOrder(o.Ticket); err != nil {
			s.log.Warn("close all: cancel failed",
				zap.Int64("ticket", o.Ticket), zap.Error(err))
		}
	}

	positions, err := s.term.OpenPositions()
	if err != nil {
		s.log.Warn("close all: positions unavailable", zap.Error(err))

		return closed
	}

	for _, pos := range positions {
		tick, err := s.term.Tick(pos.Symbol)
		if err != nil {
			s.log.Warn("close all: no tick",
				zap.String("symbol", pos.Symbol), zap.Error(err))

			continue
		}

		// Close with the opposite side at the matching quote: longs sell
		// at bid, shorts buy back at ask.
		orderType := model.OrderTypeSell
		price := tick.Bid
		side := "LONG"
		if !pos.IsLong() {
			orderType = model.OrderTypeBuy
			price = tick.Ask
			side = "SHORT"
		}

		req := model.OrderRequest{
			Action:      model.TradeActionDeal,
			Symbol:      pos.Symbol,
			Position:    pos.Ticket,
			Volume:      pos.Volume,
			Type:        orderType,
			Price:       price,
			Deviation:   s.cfg.CloseDeviationPoints,
			TypeFilling: model.FillingIOC,
			TypeTime:    model.LifetimeGTC,
		}

		result, err := s.term.SubmitOrder(req)
		if err != nil || !result.Ok() {
			s.log.Warn("close all: position close failed",
				zap.String("symbol", pos.Symbol),
				zap.Int64("ticket", pos.Ticket),
				zap.Error(err))

			continue
		}

		s.log.Info("position closed",
			zap.String("symbol", pos.Symbol),
			zap.Int64("ticket", pos.Ticket),
			zap.Float64("profit", pos.Profit))

		closed = append(closed, ClosedPosition{
			Symbol: pos.Symbol,
			Side:   side,
			Volume: pos.Volume,
			Profit: pos.Profit,
		})
	}

	return closed
}
