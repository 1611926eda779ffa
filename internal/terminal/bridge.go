package terminal

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mt5-gateway/internal/logger"
	"mt5-gateway/internal/model"
)

// BridgeOptions configure the connection to the terminal bridge.
type BridgeOptions struct {
	// URL of the bridge websocket, e.g. ws://127.0.0.1:8765/terminal.
	URL string
	// Trade account credentials, forwarded to the terminal on connect.
	Login    int64
	Password string
	Server   string
	// Timeout bounds the dial and every request/response round trip.
	Timeout time.Duration
}

// Bridge is a Terminal backed by a JSON request/response websocket to a
// bridge component running inside the trading terminal. The terminal API is
// synchronous, so the Bridge keeps a single connection and serializes calls
// over it.
type Bridge struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	timeout time.Duration
	log     *logger.Logger
}

type bridgeRequest struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type bridgeResponse struct {
	ID     string          `json:"id"`
	Error  string          `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// Dial connects to the bridge and logs the trade account in. The returned
// Bridge is the process's terminal session handle; callers own its
// lifecycle and must Close it.
func Dial(opts BridgeOptions, log *logger.Logger) (*Bridge, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	dialer := websocket.Dialer{HandshakeTimeout: opts.Timeout}
	conn, _, err := dialer.Dial(opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial terminal bridge %s: %w", opts.URL, err)
	}

	b := &Bridge{conn: conn, timeout: opts.Timeout, log: log}

	loginParams := map[string]any{
		"login":    opts.Login,
		"password": opts.Password,
		"server":   opts.Server,
	}
	var ok bool
	if err := b.call("login", loginParams, &ok); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("terminal login: %w", err)
	}
	if !ok {
		_ = conn.Close()

		return nil, fmt.Errorf("terminal login rejected for account %d on %s", opts.Login, opts.Server)
	}

	log.Info("terminal session established",
		zap.Int64("login", opts.Login),
		zap.String("server", opts.Server))

	return b, nil
}

// Close tears down the terminal session.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.conn.Close()
}

// call performs one request/response exchange. The mutex guarantees a
// single in-flight request, so the next frame on the wire answers it.
func (b *Bridge) call(method string, params, out any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	req := bridgeRequest{ID: id, Method: method, Params: params}

	deadline := time.Now().Add(b.timeout)
	if err := b.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if err := b.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("%s: write: %w", method, err)
	}

	if err := b.conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	var resp bridgeResponse
	if err := b.conn.ReadJSON(&resp); err != nil {
		return fmt.Errorf("%s: read: %w", method, err)
	}
	if resp.ID != id {
		return fmt.Errorf("%s: response id mismatch: got %s want %s", method, resp.ID, id)
	}
	if resp.Error != "" {
		return fmt.Errorf("%s: %s", method, resp.Error)
	}
	if out != nil {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}

	return nil
}

// Wire shapes. The bridge sends timestamps as unix seconds.

type wireTick struct {
	Bid  float64 `json:"bid"`
	Ask  float64 `json:"ask"`
	Time int64   `json:"time"`
}

type wireSymbolInfo struct {
	Name       string  `json:"name"`
	Point      float64 `json:"point"`
	Spread     int64   `json:"spread"`
	TickSize   float64 `json:"trade_tick_size"`
	TickValue  float64 `json:"trade_tick_value"`
	VolumeStep float64 `json:"volume_step"`
	Time       int64   `json:"time"`
}

type wireBar struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Spread int64   `json:"spread"`
}

type wirePosition struct {
	Ticket       int64   `json:"ticket"`
	Symbol       string  `json:"symbol"`
	Type         int     `json:"type"`
	Volume       float64 `json:"volume"`
	PriceOpen    float64 `json:"price_open"`
	PriceCurrent float64 `json:"price_current"`
	StopLoss     float64 `json:"sl"`
	TakeProfit   float64 `json:"tp"`
	Profit       float64 `json:"profit"`
	Swap         float64 `json:"swap"`
	Time         int64   `json:"time"`
}

type wireOrder struct {
	Ticket         int64   `json:"ticket"`
	Symbol         string  `json:"symbol"`
	Type           int     `json:"type"`
	VolumeInitial  float64 `json:"volume_initial"`
	PriceOpen      float64 `json:"price_open"`
	StopLoss       float64 `json:"sl"`
	TakeProfit     float64 `json:"tp"`
	TimeSetup      int64   `json:"time_setup"`
	TimeExpiration int64   `json:"time_expiration"`
}

type wireDeal struct {
	Ticket     int64   `json:"ticket"`
	PositionID int64   `json:"position_id"`
	Symbol     string  `json:"symbol"`
	Type       int     `json:"type"`
	Volume     float64 `json:"volume"`
	Price      float64 `json:"price"`
	Profit     float64 `json:"profit"`
	Commission float64 `json:"commission"`
	Swap       float64 `json:"swap"`
	Time       int64   `json:"time"`
}

// AccountInfo implements Terminal.
func (b *Bridge) AccountInfo() (*model.Account, error) {
	var acc model.Account
	if err := b.call("account_info", nil, &acc); err != nil {
		return nil, err
	}

	return &acc, nil
}

// Tick implements Terminal.
func (b *Bridge) Tick(symbol string) (*model.Tick, error) {
	var w wireTick
	if err := b.call("symbol_info_tick", map[string]any{"symbol": symbol}, &w); err != nil {
		return nil, err
	}

	return &model.Tick{
		Symbol: symbol,
		Bid:    w.Bid,
		Ask:    w.Ask,
		Time:   time.Unix(w.Time, 0).UTC(),
	}, nil
}

// SymbolInfo implements Terminal.
func (b *Bridge) SymbolInfo(symbol string) (*model.SymbolInfo, error) {
	var w wireSymbolInfo
	if err := b.call("symbol_info", map[string]any{"symbol": symbol}, &w); err != nil {
		return nil, err
	}

	return &model.SymbolInfo{
		Name:       symbol,
		Point:      w.Point,
		Spread:     w.Spread,
		TickSize:   w.TickSize,
		TickValue:  w.TickValue,
		VolumeStep: w.VolumeStep,
		Time:       time.Unix(w.Time, 0).UTC(),
	}, nil
}

// RecentBars implements Terminal.
func (b *Bridge) RecentBars(symbol string, timeframeMinutes, count int) ([]model.Bar, error) {
	params := map[string]any{
		"symbol":    symbol,
		"timeframe": timeframeMinutes,
		"count":     count,
	}
	var ws []wireBar
	if err := b.call("copy_rates", params, &ws); err != nil {
		return nil, err
	}

	bars := make([]model.Bar, len(ws))
	for i, w := range ws {
		bars[i] = model.Bar{
			Time:   time.Unix(w.Time, 0).UTC(),
			Open:   w.Open,
			High:   w.High,
			Low:    w.Low,
			Close:  w.Close,
			Spread: w.Spread,
		}
	}

	return bars, nil
}

// OpenPositions implements Terminal.
func (b *Bridge) OpenPositions() ([]model.Position, error) {
	var ws []wirePosition
	if err := b.call("positions_get", nil, &ws); err != nil {
		return nil, err
	}

	positions := make([]model.Position, len(ws))
	for i, w := range ws {
		positions[i] = model.Position{
			Ticket:       w.Ticket,
			Symbol:       w.Symbol,
			Type:         w.Type,
			Volume:       w.Volume,
			PriceOpen:    w.PriceOpen,
			PriceCurrent: w.PriceCurrent,
			StopLoss:     w.StopLoss,
			TakeProfit:   w.TakeProfit,
			Profit:       w.Profit,
			Swap:         w.Swap,
			Time:         time.Unix(w.Time, 0).UTC(),
		}
	}

	return positions, nil
}

// PendingOrders implements Terminal.
func (b *Bridge) PendingOrders() ([]model.Order, error) {
	var ws []wireOrder
	if err := b.call("orders_get", nil, &ws); err != nil {
		return nil, err
	}

	orders := make([]model.Order, len(ws))
	for i, w := range ws {
		o := model.Order{
			Ticket:        w.Ticket,
			Symbol:        w.Symbol,
			Type:          w.Type,
			VolumeInitial: w.VolumeInitial,
			PriceOpen:     w.PriceOpen,
			StopLoss:      w.StopLoss,
			TakeProfit:    w.TakeProfit,
			TimeSetup:     time.Unix(w.TimeSetup, 0).UTC(),
		}
		if w.TimeExpiration != 0 {
			o.TimeExpiration = time.Unix(w.TimeExpiration, 0).UTC()
		}
		orders[i] = o
	}

	return orders, nil
}

// HistoricalDeals implements Terminal.
func (b *Bridge) HistoricalDeals(from, to time.Time) ([]model.Deal, error) {
	params := map[string]any{
		"from": from.Unix(),
		"to":   to.Unix(),
	}
	var ws []wireDeal
	if err := b.call("history_deals_get", params, &ws); err != nil {
		return nil, err
	}

	deals := make([]model.Deal, len(ws))
	for i, w := range ws {
		deals[i] = model.Deal{
			Ticket:     w.Ticket,
			PositionID: w.PositionID,
			Symbol:     w.Symbol,
			Type:       w.Type,
			Volume:     w.Volume,
			Price:      w.Price,
			Profit:     w.Profit,
			Commission: w.Commission,
			Swap:       w.Swap,
			Time:       time.Unix(w.Time, 0).UTC(),
		}
	}

	return deals, nil
}

// SubmitOrder implements Terminal.
func (b *Bridge) SubmitOrder(req model.OrderRequest) (*model.OrderResult, error) {
	var res model.OrderResult
	if err := b.call("order_send", req, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

// CancelOrder implements Terminal.
func (b *Bridge) CancelOrder(ticket int64) (*model.OrderResult, error) {
	req := model.OrderRequest{
		Action: model.TradeActionRemove,
		Order:  ticket,
	}

	return b.SubmitOrder(req)
}
