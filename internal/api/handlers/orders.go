package handlers

import (
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mt5-gateway/internal/api/models"
	"mt5-gateway/internal/logger"
	"mt5-gateway/internal/model"
	"mt5-gateway/internal/terminal"
	"mt5-gateway/internal/trade"
)

// OrderHandler serves order placement and trade-state reads.
type OrderHandler struct {
	term      terminal.Terminal
	submitter *trade.Submitter
	log       *logger.Logger
	// refLoc anchors "today" for the trades endpoint.
	refLoc *time.Location
	now    func() time.Time
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(term terminal.Terminal, submitter *trade.Submitter, refLoc *time.Location, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		term:      term,
		submitter: submitter,
		log:       log,
		refLoc:    refLoc,
		now:       time.Now,
	}
}

// floatParam parses a numeric path parameter, mapping failures to NaN so
// the submitter can reject the request with its distinguished retcode.
func floatParam(c *gin.Context, name string) float64 {
	v, err := strconv.ParseFloat(c.Param(name), 64)
	if err != nil {
		return math.NaN()
	}

	return v
}

// PlaceOrder handles
// POST /order/:symbol/:direction/:entry/:stop/:profit/:rangeHigh/:rangeLow/:risk.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	direction, err := model.ParseDirection(c.Param("direction"))
	if err != nil {
		c.JSON(http.StatusOK, models.ErrorResponse{Error: err.Error()})

		return
	}

	placement := trade.Placement{
		Symbol:      c.Param("symbol"),
		Direction:   direction,
		EntryPct:    floatParam(c, "entry"),
		StopPct:     floatParam(c, "stop"),
		ProfitPct:   floatParam(c, "profit"),
		RangeHigh:   floatParam(c, "rangeHigh"),
		RangeLow:    floatParam(c, "rangeLow"),
		RiskDollars: floatParam(c, "risk"),
	}

	c.JSON(http.StatusOK, h.submitter.Place(placement))
}

// CloseAll handles POST /close_all.
func (h *OrderHandler) CloseAll(c *gin.Context) {
	c.JSON(http.StatusOK, h.submitter.CloseAll())
}

// OpenPositions handles GET /open_positions.
func (h *OrderHandler) OpenPositions(c *gin.Context) {
	acc, err := h.term.AccountInfo()
	if err != nil {
		h.log.Warn("open positions: no account info", zap.Error(err))
		c.JSON(http.StatusOK, []models.PositionView{})

		return
	}

	positions, err := h.term.OpenPositions()
	if err != nil {
		h.log.Warn("open positions unavailable", zap.Error(err))
		c.JSON(http.StatusOK, []models.PositionView{})

		return
	}

	accountID := strconv.FormatInt(acc.Login, 10)
	views := make([]models.PositionView, 0, len(positions))
	for _, pos := range positions {
		side := "SHORT"
		current := 0.0
		if tick, err := h.term.Tick(pos.Symbol); err == nil {
			current = tick.Ask
			if pos.IsLong() {
				current = tick.Bid
			}
		}
		if pos.IsLong() {
			side = "LONG"
		}

		views = append(views, models.PositionView{
			ID:           pos.Ticket,
			AccountID:    accountID,
			Symbol:       pos.Symbol,
			Side:         side,
			Quantity:     pos.Volume,
			Price:        round2(pos.PriceOpen),
			CurrentPrice: round2(current),
			TakeProfit:   nonZero(pos.TakeProfit),
			StopLoss:     nonZero(pos.StopLoss),
			EntryTime:    formatTime(pos.Time),
			Profit:       round2(pos.Profit),
			Swap:         round2(pos.Swap),
			Type:         "POSITION",
		})
	}

	c.JSON(http.StatusOK, views)
}

// PendingOrders handles GET /orders.
func (h *OrderHandler) PendingOrders(c *gin.Context) {
	acc, err := h.term.AccountInfo()
	if err != nil {
		h.log.Warn("pending orders: no account info", zap.Error(err))
		c.JSON(http.StatusOK, []models.OrderView{})

		return
	}

	orders, err := h.term.PendingOrders()
	if err != nil {
		h.log.Warn("pending orders unavailable", zap.Error(err))
		c.JSON(http.StatusOK, []models.OrderView{})

		return
	}

	accountID := strconv.FormatInt(acc.Login, 10)
	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		side := "SHORT"
		if o.IsLong() {
			side = "LONG"
		}

		var expiration *string
		if !o.TimeExpiration.IsZero() {
			s := formatTime(o.TimeExpiration)
			expiration = &s
		}

		views = append(views, models.OrderView{
			ID:         o.Ticket,
			AccountID:  accountID,
			Symbol:     o.Symbol,
			Side:       side,
			Quantity:   o.VolumeInitial,
			Price:      round2(o.PriceOpen),
			TakeProfit: nonZero(o.TakeProfit),
			StopLoss:   nonZero(o.StopLoss),
			EntryTime:  formatTime(o.TimeSetup),
			Expiration: expiration,
			Type:       "ORDER",
		})
	}

	c.JSON(http.StatusOK, views)
}

// Trades handles GET /trades: today's completed round trips, with entry
// and exit paired by position id.
func (h *OrderHandler) Trades(c *gin.Context) {
	acc, err := h.term.AccountInfo()
	if err != nil {
		h.log.Warn("trades: no account info", zap.Error(err))
		c.JSON(http.StatusOK, []models.TradeView{})

		return
	}

	now := h.now().In(h.refLoc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.refLoc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	deals, err := h.term.HistoricalDeals(dayStart, dayEnd)
	if err != nil {
		h.log.Warn("trades: deal history unavailable", zap.Error(err))
		c.JSON(http.StatusOK, []models.TradeView{})

		return
	}

	c.JSON(http.StatusOK, pairDeals(deals, acc.Login, h.refLoc))
}

// pairDeals groups deals by position and emits one trade per position that
// has both an entry and an exit. Single-deal positions (still open) and
// zero-price deals (balance operations) are skipped.
func pairDeals(deals []model.Deal, login int64, loc *time.Location) []models.TradeView {
	byPosition := make(map[int64][]model.Deal)
	var order []int64
	for _, d := range deals {
		if d.PositionID == 0 {
			continue
		}
		if _, seen := byPosition[d.PositionID]; !seen {
			order = append(order, d.PositionID)
		}
		byPosition[d.PositionID] = append(byPosition[d.PositionID], d)
	}

	accountID := strconv.FormatInt(login, 10)
	trades := make([]models.TradeView, 0, len(order))
	id := 1

	for _, positionID := range order {
		group := byPosition[positionID]
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].Time.Before(group[j].Time) })

		entry := group[0]
		exit := group[len(group)-1]
		if entry.Price == 0 || exit.Price == 0 {
			continue
		}

		side := "SHORT"
		if entry.Type%2 == 0 {
			side = "LONG"
		}

		trades = append(trades, models.TradeView{
			ID:         id,
			AccountID:  accountID,
			Symbol:     entry.Symbol,
			Side:       side,
			Quantity:   entry.Volume,
			Price:      round2(entry.Price),
			ClosePrice: round2(exit.Price),
			EntryTime:  formatTime(entry.Time.In(loc)),
			ExitTime:   formatTime(exit.Time.In(loc)),
			Profit:     round2(exit.Profit),
			Fee:        round2(exit.Commission + exit.Swap),
		})
		id++
	}

	return trades
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func nonZero(v float64) *float64 {
	if v == 0 {
		return nil
	}
	r := round2(v)

	return &r
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
