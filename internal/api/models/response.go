package models

// The terminal API signals failure in-band: HTTP 200 with an error or
// retcode/comment body. The gateway keeps that contract.

// ErrorResponse is the in-band failure shape for read endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PriceResponse answers GET /price/{symbol}.
type PriceResponse struct {
	Symbol string  `json:"symbol"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
}

// RangeResponse answers GET /range/{ticker}/{start}/{end}. High and low
// are both zero when the range is unavailable.
type RangeResponse struct {
	High float64 `json:"high"`
	Low  float64 `json:"low"`
}

// PositionView is one open position as exposed to dashboards.
type PositionView struct {
	ID           int64    `json:"id"`
	AccountID    string   `json:"account_id"`
	Symbol       string   `json:"symbol"`
	Side         string   `json:"side"`
	Quantity     float64  `json:"quantity"`
	Price        float64  `json:"price"`
	CurrentPrice float64  `json:"current_price"`
	TakeProfit   *float64 `json:"tp"`
	StopLoss     *float64 `json:"sl"`
	EntryTime    string   `json:"entry_time"`
	Profit       float64  `json:"profit"`
	Swap         float64  `json:"swap"`
	Type         string   `json:"type"`
}

// OrderView is one pending order.
type OrderView struct {
	ID         int64    `json:"id"`
	AccountID  string   `json:"account_id"`
	Symbol     string   `json:"symbol"`
	Side       string   `json:"side"`
	Quantity   float64  `json:"quantity"`
	Price      float64  `json:"price"`
	TakeProfit *float64 `json:"tp"`
	StopLoss   *float64 `json:"sl"`
	EntryTime  string   `json:"entry_time"`
	Expiration *string  `json:"expiration"`
	Type       string   `json:"type"`
}

// TradeView is one completed round trip from today's history.
type TradeView struct {
	ID         int      `json:"id"`
	AccountID  string   `json:"account_id"`
	Symbol     string   `json:"symbol"`
	Side       string   `json:"side"`
	Quantity   float64  `json:"quantity"`
	Price      float64  `json:"price"`
	ClosePrice float64  `json:"close_price"`
	TakeProfit *float64 `json:"tp"`
	StopLoss   *float64 `json:"sl"`
	EntryTime  string   `json:"entry_time"`
	ExitTime   string   `json:"exit_time"`
	Profit     float64  `json:"profit"`
	Fee        float64  `json:"fee"`
}
