package model

import "time"

// Position is an open position reported by the terminal. Type follows the
// terminal convention: 0 = buy, 1 = sell.
type Position struct {
	Ticket       int64     `json:"ticket"`
	Symbol       string    `json:"symbol"`
	Type         int       `json:"type"`
	Volume       float64   `json:"volume"`
	PriceOpen    float64   `json:"price_open"`
	PriceCurrent float64   `json:"price_current"`
	StopLoss     float64   `json:"sl"`
	TakeProfit   float64   `json:"tp"`
	Profit       float64   `json:"profit"`
	Swap         float64   `json:"swap"`
	Time         time.Time `json:"time"`
}

// IsLong reports the position side. Even order/position type codes are the
// buy family.
func (p Position) IsLong() bool {
	return p.Type%2 == 0
}

// Order is a pending order reported by the terminal.
type Order struct {
	Ticket        int64     `json:"ticket"`
	Symbol        string    `json:"symbol"`
	Type          int       `json:"type"`
	VolumeInitial float64   `json:"volume_initial"`
	PriceOpen     float64   `json:"price_open"`
	StopLoss      float64   `json:"sl"`
	TakeProfit    float64   `json:"tp"`
	TimeSetup     time.Time `json:"time_setup"`
	// TimeExpiration is zero for good-till-cancelled orders.
	TimeExpiration time.Time `json:"time_expiration"`
}

// IsLong reports the order side by type parity, matching the terminal's
// buy/sell, buy-limit/sell-limit, buy-stop/sell-stop numbering.
func (o Order) IsLong() bool {
	return o.Type%2 == 0
}

// Deal is a single fill from the terminal's trade history. Deals belonging
// to the same position share a PositionID.
type Deal struct {
	Ticket     int64     `json:"ticket"`
	PositionID int64     `json:"position_id"`
	Symbol     string    `json:"symbol"`
	Type       int       `json:"type"`
	Volume     float64   `json:"volume"`
	Price      float64   `json:"price"`
	Profit     float64   `json:"profit"`
	Commission float64   `json:"commission"`
	Swap       float64   `json:"swap"`
	Time       time.Time `json:"time"`
}
