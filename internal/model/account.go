package model

// Account is the terminal's account snapshot, exposed verbatim by the
// gateway.
type Account struct {
	Login      int64   `json:"login"`
	TradeMode  int     `json:"trade_mode"`
	Balance    float64 `json:"balance"`
	Credit     float64 `json:"credit"`
	Equity     float64 `json:"equity"`
	Margin     float64 `json:"margin"`
	MarginFree float64 `json:"margin_free"`
	Profit     float64 `json:"profit"`
	Leverage   int64   `json:"leverage"`
	Currency   string  `json:"currency"`
	Name       string  `json:"name"`
	Server     string  `json:"server"`
}
