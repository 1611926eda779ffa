package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mt5-gateway/internal/api/models"
	"mt5-gateway/internal/logger"
	"mt5-gateway/internal/market"
	"mt5-gateway/internal/model"
	"mt5-gateway/internal/terminal"
)

// MarketHandler serves price, range and market-status reads.
type MarketHandler struct {
	term      terminal.Terminal
	extractor *market.Extractor
	calendar  *market.Calendar
	log       *logger.Logger
}

// NewMarketHandler creates a new market handler. calendar may be nil when
// no exchange calendar is configured.
func NewMarketHandler(term terminal.Terminal, extractor *market.Extractor, calendar *market.Calendar, log *logger.Logger) *MarketHandler {
	return &MarketHandler{term: term, extractor: extractor, calendar: calendar, log: log}
}

// GetPrice handles GET /price/:symbol.
func (h *MarketHandler) GetPrice(c *gin.Context) {
	symbol := c.Param("symbol")

	tick, err := h.term.Tick(symbol)
	if err != nil {
		h.log.Warn("tick unavailable", zap.String("symbol", symbol), zap.Error(err))
		c.JSON(http.StatusOK, models.ErrorResponse{
			Error: fmt.Sprintf("Failed to get tick for %s", symbol),
		})

		return
	}

	c.JSON(http.StatusOK, models.PriceResponse{
		Symbol: symbol,
		Bid:    tick.Bid,
		Ask:    tick.Ask,
	})
}

// GetRange handles GET /range/:ticker/:start/:end. The window bounds are
// times of day like "03:00"; the window is half-open [start, end).
func (h *MarketHandler) GetRange(c *gin.Context) {
	ticker := c.Param("ticker")

	start, err := model.ParseTimeOfDay(c.Param("start"))
	if err != nil {
		c.JSON(http.StatusOK, models.ErrorResponse{Error: err.Error()})

		return
	}
	end, err := model.ParseTimeOfDay(c.Param("end"))
	if err != nil {
		c.JSON(http.StatusOK, models.ErrorResponse{Error: err.Error()})

		return
	}

	r := h.extractor.Compute(ticker, start, end)
	c.JSON(http.StatusOK, models.RangeResponse{High: r.High, Low: r.Low})
}

// GetMarketStatus handles GET /market_status.
func (h *MarketHandler) GetMarketStatus(c *gin.Context) {
	if h.calendar == nil {
		c.JSON(http.StatusOK, models.ErrorResponse{Error: "no exchange calendar configured"})

		return
	}

	c.JSON(http.StatusOK, h.calendar.Status())
}
