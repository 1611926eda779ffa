package model

import "fmt"

// Direction is a caller-facing trade direction. The terminal's numeric
// order types are derived from it at submission time.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// ParseDirection converts the URL form of a direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionLong, DirectionShort:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// Opposite flips the direction. Used for per-symbol inversion rules and for
// closing positions.
func (d Direction) Opposite() Direction {
	if d == DirectionLong {
		return DirectionShort
	}

	return DirectionLong
}

// IsLong reports whether the direction is long.
func (d Direction) IsLong() bool {
	return d == DirectionLong
}

// Terminal trade-request actions.
type TradeAction int

const (
	TradeActionDeal    TradeAction = 1 // immediate market execution
	TradeActionPending TradeAction = 5 // place a pending order
	TradeActionRemove  TradeAction = 8 // delete a pending order
)

// Terminal order types.
type OrderType int

const (
	OrderTypeBuy       OrderType = 0
	OrderTypeSell      OrderType = 1
	OrderTypeBuyLimit  OrderType = 2
	OrderTypeSellLimit OrderType = 3
)

// Terminal filling modes.
type FillingMode int

const (
	FillingFOK FillingMode = 0
	FillingIOC FillingMode = 1
)

// Terminal order lifetimes.
type OrderLifetime int

const (
	LifetimeGTC       OrderLifetime = 0 // good till cancelled
	LifetimeDay       OrderLifetime = 1
	LifetimeSpecified OrderLifetime = 2 // expires at Expiration
)

// Broker return codes the gateway reacts to. Any other code is surfaced to
// the caller verbatim.
const (
	// RetcodeDone is the broker's success code.
	RetcodeDone = 10009
	// RetcodeInvalidPrice is returned when the broker refuses the pending
	// limit price and demands market execution. It triggers the single
	// pending-to-market fallback.
	RetcodeInvalidPrice = 10015
	// RetcodeInvalidRequest is a gateway-side code for requests rejected
	// before any broker call.
	RetcodeInvalidRequest = -1
)

// OrderRequest is a broker-ready trade request. Field names follow the
// terminal's wire contract.
type OrderRequest struct {
	Action      TradeAction   `json:"action"`
	Symbol      string        `json:"symbol"`
	Volume      float64       `json:"volume"`
	Type        OrderType     `json:"type"`
	Price       float64       `json:"price"`
	StopLoss    float64       `json:"sl"`
	TakeProfit  float64       `json:"tp"`
	Deviation   int           `json:"deviation,omitempty"` // max slippage in points, market orders only
	Position    int64         `json:"position,omitempty"`  // ticket, when closing a position
	Order       int64         `json:"order,omitempty"`     // ticket, when removing a pending order
	TypeFilling FillingMode   `json:"type_filling"`
	TypeTime    OrderLifetime `json:"type_time"`
	Expiration  int64         `json:"expiration,omitempty"` // unix seconds
	Comment     string        `json:"comment,omitempty"`
}

// OrderResult is the broker's answer to an OrderRequest, or a gateway-side
// rejection carrying RetcodeInvalidRequest.
type OrderResult struct {
	Retcode int     `json:"retcode"`
	Comment string  `json:"comment"`
	Order   int64   `json:"order,omitempty"`
	Deal    int64   `json:"deal,omitempty"`
	Volume  float64 `json:"volume,omitempty"`
	Price   float64 `json:"price,omitempty"`
}

// Ok reports whether the broker accepted the request.
func (r *OrderResult) Ok() bool {
	return r != nil && r.Retcode == RetcodeDone
}
