package trade

import (
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mt5-gateway/internal/logger"
	"mt5-gateway/internal/model"
	"mt5-gateway/internal/terminal"
)

// SubmitterConfig tunes order submission.
type SubmitterConfig struct {
	// Rules are per-symbol quirks (direction inversion).
	Rules Rules
	// Cutoff is the pending-order expiration time of day, expressed in
	// ReferenceLocation and translated to the broker's server timezone.
	Cutoff model.TimeOfDay
	// ReferenceLocation is the timezone the cutoff is expressed in.
	ReferenceLocation *time.Location
	// ServerLocation is the broker server timezone.
	ServerLocation *time.Location
	// CloseDeviationPoints is the max slippage for close-all market
	// orders, in points. Zero sends no allowance.
	CloseDeviationPoints int
}

func (c SubmitterConfig) withDefaults() SubmitterConfig {
	if c.Cutoff == (model.TimeOfDay{}) {
		c.Cutoff = model.TimeOfDay{Hour: 15, Minute: 59, Second: 50}
	}
	if c.ReferenceLocation == nil {
		c.ReferenceLocation, _ = time.LoadLocation("America/New_York")
	}
	if c.ServerLocation == nil {
		c.ServerLocation, _ = time.LoadLocation("EET")
	}

	return c
}

// Placement is one order request from a caller: percentage offsets of the
// defining range plus a dollar risk budget. Float fields use NaN for
// "missing" so unparseable transport input short-circuits below the
// handler.
type Placement struct {
	Symbol      string
	Direction   model.Direction
	EntryPct    float64
	StopPct     float64
	ProfitPct   float64
	RangeHigh   float64
	RangeLow    float64
	RiskDollars float64
}

// Submitter turns Placements into broker orders. Submission is a small
// state machine: a pending limit first, then at most one market-order
// fallback when the broker rejects the limit price.
type Submitter struct {
	term terminal.Terminal
	log  *logger.Logger
	cfg  SubmitterConfig

	now func() time.Time
}

// NewSubmitter builds a Submitter over the given terminal session.
func NewSubmitter(term terminal.Terminal, log *logger.Logger, cfg SubmitterConfig) *Submitter {
	if log == nil {
		log = logger.NewNop()
	}

	return &Submitter{term: term, log: log, cfg: cfg.withDefaults(), now: time.Now}
}

func reject(comment string) *model.OrderResult {
	return &model.OrderResult{Retcode: model.RetcodeInvalidRequest, Comment: comment}
}

// Place validates, prices, sizes and submits an order. It always returns a
// result: gateway-side rejections carry RetcodeInvalidRequest, broker
// rejections are passed through verbatim.
func (s *Submitter) Place(p Placement) *model.OrderResult {
	if math.IsNaN(p.EntryPct) || math.IsNaN(p.StopPct) || math.IsNaN(p.ProfitPct) {
		return reject("Missing order values")
	}
	r := model.DefiningRange{High: p.RangeHigh, Low: p.RangeLow}
	if math.IsNaN(p.RangeHigh) || math.IsNaN(p.RangeLow) || !r.Valid() {
		return reject("Missing IRU or IRL values")
	}

	dir := s.cfg.Rules.Direction(p.Symbol, p.Direction)

	info, err := s.term.SymbolInfo(p.Symbol)
	if err != nil {
		s.log.Warn("order rejected: symbol lookup failed",
			zap.String("symbol", p.Symbol), zap.Error(err))

		return reject(err.Error())
	}

	spread := float64(info.Spread) * info.Point
	prices := DerivePrices(r, dir, p.EntryPct, p.StopPct, p.ProfitPct, spread)

	volume := SizeForSymbol(info, prices.Entry, prices.Stop, p.RiskDollars)
	if volume == 0 {
		return reject("Zero volume for requested risk")
	}

	comment := "gw-" + uuid.NewString()[:8]

	orderType := model.OrderTypeBuyLimit
	if !dir.IsLong() {
		orderType = model.OrderTypeSellLimit
	}
	pending := model.OrderRequest{
		Action:      model.TradeActionPending,
		Symbol:      p.Symbol,
		Volume:      volume,
		Type:        orderType,
		Price:       prices.Entry,
		StopLoss:    prices.Stop,
		TakeProfit:  prices.Profit,
		TypeFilling: model.FillingIOC,
		TypeTime:    model.LifetimeSpecified,
		Expiration:  s.expiration(),
		Comment:     comment,
	}

	result, err := s.term.SubmitOrder(pending)
	if err != nil {
		s.log.Error("order submission failed",
			zap.String("symbol", p.Symbol), zap.Error(err))

		return reject(err.Error())
	}

	if result.Retcode == model.RetcodeInvalidPrice {
		return s.marketFallback(p.Symbol, dir, volume, prices, comment)
	}
	if !result.Ok() {
		s.log.Warn("order rejected by broker",
			zap.String("symbol", p.Symbol),
			zap.Int("retcode", result.Retcode),
			zap.String("broker_comment", result.Comment))

		return &model.OrderResult{Retcode: result.Retcode, Comment: result.Comment}
	}

	s.log.Info("pending order placed",
		zap.String("symbol", p.Symbol),
		zap.String("direction", string(dir)),
		zap.Float64("volume", volume),
		zap.Float64("entry", prices.Entry),
		zap.String("comment", comment))

	return result
}

// marketFallback is the single retry after the broker demands market
// execution: same stop/profit/volume, entry at the current tick, GTC.
func (s *Submitter) marketFallback(symbol string, dir model.Direction, volume float64, prices Prices, comment string) *model.OrderResult {
	tick, err := s.term.Tick(symbol)
	if err != nil {
		s.log.Error("market fallback failed: no tick",
			zap.String("symbol", symbol), zap.Error(err))

		return reject(err.Error())
	}

	orderType := model.OrderTypeBuy
	price := tick.Ask
	if !dir.IsLong() {
		orderType = model.OrderTypeSell
		price = tick.Bid
	}

	req := model.OrderRequest{
		Action:      model.TradeActionDeal,
		Symbol:      symbol,
		Volume:      volume,
		Type:        orderType,
		Price:       price,
		StopLoss:    prices.Stop,
		TakeProfit:  prices.Profit,
		TypeFilling: model.FillingIOC,
		TypeTime:    model.LifetimeGTC,
		Comment:     comment,
	}

	result, err := s.term.SubmitOrder(req)
	if err != nil {
		s.log.Error("market fallback submission failed",
			zap.String("symbol", symbol), zap.Error(err))

		return reject(err.Error())
	}

	s.log.Info("market fallback submitted",
		zap.String("symbol", symbol),
		zap.Int("retcode", result.Retcode),
		zap.String("comment", comment))

	return result
}

// expiration is today's cutoff instant, anchored in the reference timezone.
// The terminal reads expirations as server-time wall clocks encoded as
// naive unix seconds, so the instant's server-local wall clock is
// re-encoded as if it were UTC.
func (s *Submitter) expiration() int64 {
	st := s.cfg.Cutoff.On(s.now(), s.cfg.ReferenceLocation).In(s.cfg.ServerLocation)

	return time.Date(st.Year(), st.Month(), st.Day(), st.Hour(), st.Minute(), st.Second(), 0, time.UTC).Unix()
}
