package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"mt5-gateway/internal/api/models"
	"mt5-gateway/internal/logger"
	"mt5-gateway/internal/market"
	"mt5-gateway/internal/model"
	"mt5-gateway/internal/terminal/terminaltest"
	"mt5-gateway/internal/trade"
)

type HandlersTestSuite struct {
	suite.Suite

	fake   *terminaltest.Fake
	router *gin.Engine
	refLoc *time.Location
	now    time.Time
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (suite *HandlersTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	loc, err := time.LoadLocation("America/New_York")
	suite.Require().NoError(err)
	suite.refLoc = loc
	// 2025-03-10 14:00 UTC, a Monday.
	suite.now = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
}

func (suite *HandlersTestSuite) SetupTest() {
	suite.fake = &terminaltest.Fake{
		Account: &model.Account{
			Login:    12345,
			Balance:  10000,
			Equity:   10050,
			Currency: "USD",
		},
		Ticks: map[string]model.Tick{
			"EURUSD": {Symbol: "EURUSD", Bid: 1.1000, Ask: 1.1002},
		},
		Symbols: map[string]model.SymbolInfo{
			"EURUSD": {
				Name:       "EURUSD",
				Point:      0.0001,
				Spread:     10,
				TickSize:   0.0001,
				TickValue:  1.0,
				VolumeStep: 0.01,
				Time:       suite.now,
			},
		},
	}

	log := logger.NewNop()
	extractor := market.NewExtractor(suite.fake, log, market.ExtractorConfig{
		Attempts: 1,
		Interval: time.Millisecond,
		Location: suite.refLoc,
	})
	submitter := trade.NewSubmitter(suite.fake, log, trade.SubmitterConfig{
		ReferenceLocation: suite.refLoc,
	})

	account := NewAccountHandler(suite.fake, log)
	marketH := NewMarketHandler(suite.fake, extractor, nil, log)
	orders := NewOrderHandler(suite.fake, submitter, suite.refLoc, log)
	orders.now = func() time.Time { return suite.now }

	r := gin.New()
	r.GET("/account", account.GetAccount)
	r.GET("/price/:symbol", marketH.GetPrice)
	r.GET("/range/:ticker/:start/:end", marketH.GetRange)
	r.GET("/market_status", marketH.GetMarketStatus)
	r.POST("/order/:symbol/:direction/:entry/:stop/:profit/:rangeHigh/:rangeLow/:risk", orders.PlaceOrder)
	r.POST("/close_all", orders.CloseAll)
	r.GET("/open_positions", orders.OpenPositions)
	r.GET("/orders", orders.PendingOrders)
	r.GET("/trades", orders.Trades)
	suite.router = r
}

func (suite *HandlersTestSuite) do(method, path string, out any) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Require().Equal(http.StatusOK, w.Code)
	if out != nil {
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), out))
	}

	return w
}

func (suite *HandlersTestSuite) TestGetAccount() {
	var acc model.Account
	suite.do(http.MethodGet, "/account", &acc)

	suite.Assert().Equal(int64(12345), acc.Login)
	suite.Assert().Equal(10000.0, acc.Balance)
	suite.Assert().Equal("USD", acc.Currency)
}

func (suite *HandlersTestSuite) TestGetAccountUnavailable() {
	suite.fake.Account = nil

	var resp models.ErrorResponse
	suite.do(http.MethodGet, "/account", &resp)

	suite.Assert().NotEmpty(resp.Error)
}

func (suite *HandlersTestSuite) TestGetPrice() {
	var resp models.PriceResponse
	suite.do(http.MethodGet, "/price/EURUSD", &resp)

	suite.Assert().Equal("EURUSD", resp.Symbol)
	suite.Assert().Equal(1.1000, resp.Bid)
	suite.Assert().Equal(1.1002, resp.Ask)
}

func (suite *HandlersTestSuite) TestGetPriceUnknownSymbol() {
	var resp models.ErrorResponse
	suite.do(http.MethodGet, "/price/XAUUSD", &resp)

	suite.Assert().Equal("Failed to get tick for XAUUSD", resp.Error)
}

func (suite *HandlersTestSuite) TestGetRange() {
	// The extractor filters against the real clock, so anchor the bar and
	// the symbol's quote time at "now" and use a full-day window.
	now := time.Now()
	info := suite.fake.Symbols["EURUSD"]
	info.Time = now
	suite.fake.Symbols["EURUSD"] = info
	suite.fake.Bars = map[string][]model.Bar{"EURUSD": {
		{Time: now.UTC(), Open: 1.1000, High: 1.1030, Low: 1.0990, Close: 1.1020, Spread: 0},
	}}

	var resp models.RangeResponse
	suite.do(http.MethodGet, "/range/EURUSD/00:00/23:59", &resp)

	suite.Assert().InDelta(1.1020, resp.High, 1e-9)
	suite.Assert().InDelta(1.1000, resp.Low, 1e-9)
}

func (suite *HandlersTestSuite) TestGetRangeUnavailableYieldsZeros() {
	suite.fake.Bars = map[string][]model.Bar{"EURUSD": {}}

	var resp models.RangeResponse
	suite.do(http.MethodGet, "/range/EURUSD/00:00/23:59", &resp)

	suite.Assert().Zero(resp.High)
	suite.Assert().Zero(resp.Low)
}

func (suite *HandlersTestSuite) TestGetRangeRejectsBadWindow() {
	var resp models.ErrorResponse
	suite.do(http.MethodGet, "/range/EURUSD/soon/09:55", &resp)

	suite.Assert().NotEmpty(resp.Error)
	suite.Assert().Zero(suite.fake.BarCalls)
}

func (suite *HandlersTestSuite) TestMarketStatusWithoutCalendar() {
	var resp models.ErrorResponse
	suite.do(http.MethodGet, "/market_status", &resp)

	suite.Assert().Equal("no exchange calendar configured", resp.Error)
}

func (suite *HandlersTestSuite) TestPlaceOrder() {
	var res model.OrderResult
	suite.do(http.MethodPost, "/order/EURUSD/long/0/-50/100/1.1000/1.0900/100", &res)

	suite.Assert().Equal(model.RetcodeDone, res.Retcode)
	suite.Require().Len(suite.fake.Submitted, 1)
	suite.Assert().Equal(model.OrderTypeBuyLimit, suite.fake.Submitted[0].Type)
	suite.Assert().Equal("EURUSD", suite.fake.Submitted[0].Symbol)
}

func (suite *HandlersTestSuite) TestPlaceOrderUnparseableValueRejected() {
	var res model.OrderResult
	suite.do(http.MethodPost, "/order/EURUSD/long/abc/-50/100/1.1000/1.0900/100", &res)

	suite.Assert().Equal(model.RetcodeInvalidRequest, res.Retcode)
	suite.Assert().Equal("Missing order values", res.Comment)
	suite.Assert().Empty(suite.fake.Submitted)
}

func (suite *HandlersTestSuite) TestPlaceOrderBadDirection() {
	var resp models.ErrorResponse
	suite.do(http.MethodPost, "/order/EURUSD/sideways/0/-50/100/1.1000/1.0900/100", &resp)

	suite.Assert().NotEmpty(resp.Error)
	suite.Assert().Empty(suite.fake.Submitted)
}

func (suite *HandlersTestSuite) TestCloseAll() {
	suite.fake.Positions = []model.Position{{
		Ticket: 11, Symbol: "EURUSD", Type: 0, Volume: 0.5, PriceOpen: 1.0950,
	}}
	suite.fake.Orders = []model.Order{{Ticket: 7, Symbol: "EURUSD", Type: 2}}

	var closed []trade.ClosedPosition
	suite.do(http.MethodPost, "/close_all", &closed)

	suite.Require().Len(closed, 1)
	suite.Assert().Equal("EURUSD", closed[0].Symbol)
	suite.Assert().Equal([]int64{7}, suite.fake.Cancelled)
}

func (suite *HandlersTestSuite) TestOpenPositions() {
	entry := time.Date(2025, 3, 10, 9, 31, 0, 0, suite.refLoc)
	suite.fake.Positions = []model.Position{{
		Ticket:     11,
		Symbol:     "EURUSD",
		Type:       0,
		Volume:     0.5,
		PriceOpen:  1.0950,
		StopLoss:   1.0900,
		TakeProfit: 1.1100,
		Profit:     25.0,
		Time:       entry,
	}}

	var views []models.PositionView
	suite.do(http.MethodGet, "/open_positions", &views)

	suite.Require().Len(views, 1)
	v := views[0]
	suite.Assert().Equal(int64(11), v.ID)
	suite.Assert().Equal("12345", v.AccountID)
	suite.Assert().Equal("LONG", v.Side)
	suite.Assert().Equal(0.5, v.Quantity)
	suite.Assert().Equal(1.1, v.CurrentPrice, "long positions marked at bid")
	suite.Require().NotNil(v.StopLoss)
	suite.Assert().Equal(1.09, *v.StopLoss)
	suite.Assert().Equal("2025-03-10 09:31:00", v.EntryTime)
	suite.Assert().Equal("POSITION", v.Type)
}

func (suite *HandlersTestSuite) TestOpenPositionsEmptyOnAccountFailure() {
	suite.fake.Account = nil
	suite.fake.Positions = []model.Position{{Ticket: 11, Symbol: "EURUSD"}}

	w := suite.do(http.MethodGet, "/open_positions", nil)
	suite.Assert().JSONEq(`[]`, w.Body.String())
}

func (suite *HandlersTestSuite) TestPendingOrders() {
	setup := time.Date(2025, 3, 10, 9, 35, 0, 0, suite.refLoc)
	expiry := time.Date(2025, 3, 10, 15, 59, 50, 0, suite.refLoc)
	suite.fake.Orders = []model.Order{
		{Ticket: 7, Symbol: "EURUSD", Type: 3, VolumeInitial: 0.2, PriceOpen: 1.1050,
			TimeSetup: setup, TimeExpiration: expiry},
		{Ticket: 8, Symbol: "EURUSD", Type: 2, VolumeInitial: 0.1, PriceOpen: 1.0900,
			TimeSetup: setup},
	}

	var views []models.OrderView
	suite.do(http.MethodGet, "/orders", &views)

	suite.Require().Len(views, 2)
	suite.Assert().Equal("SHORT", views[0].Side)
	suite.Require().NotNil(views[0].Expiration)
	suite.Assert().Equal("2025-03-10 15:59:50", *views[0].Expiration)
	suite.Assert().Equal("LONG", views[1].Side)
	suite.Assert().Nil(views[1].Expiration, "good-till-cancelled orders carry no expiration")
	suite.Assert().Equal("ORDER", views[0].Type)
}

func (suite *HandlersTestSuite) TestTradesPairsEntryAndExit() {
	at := func(hour, min int) time.Time {
		return time.Date(2025, 3, 10, hour, min, 0, 0, suite.refLoc)
	}
	suite.fake.Deals = []model.Deal{
		// Round trip: long entry then close.
		{Ticket: 1, PositionID: 100, Symbol: "EURUSD", Type: 0, Volume: 0.5,
			Price: 1.0950, Time: at(9, 31)},
		{Ticket: 2, PositionID: 100, Symbol: "EURUSD", Type: 1, Volume: 0.5,
			Price: 1.1000, Profit: 25.0, Commission: -1.5, Swap: -0.5, Time: at(11, 2)},
		// Still open: single deal, skipped.
		{Ticket: 3, PositionID: 101, Symbol: "EURUSD", Type: 0, Volume: 0.1,
			Price: 1.1010, Time: at(11, 30)},
		// Balance operation: no position id, skipped.
		{Ticket: 4, Symbol: "EURUSD", Type: 2, Profit: 500, Time: at(8, 0)},
	}

	var trades []models.TradeView
	suite.do(http.MethodGet, "/trades", &trades)

	suite.Require().Len(trades, 1)
	tr := trades[0]
	suite.Assert().Equal(1, tr.ID)
	suite.Assert().Equal("12345", tr.AccountID)
	suite.Assert().Equal("LONG", tr.Side)
	suite.Assert().Equal(0.5, tr.Quantity)
	suite.Assert().Equal(1.1, tr.ClosePrice)
	suite.Assert().Equal(25.0, tr.Profit)
	suite.Assert().Equal(-2.0, tr.Fee)
	suite.Assert().Equal("2025-03-10 09:31:00", tr.EntryTime)
	suite.Assert().Equal("2025-03-10 11:02:00", tr.ExitTime)

	// The history query covers exactly the reference-timezone day.
	suite.Require().Len(suite.fake.DealQueries, 1)
	q := suite.fake.DealQueries[0]
	suite.Assert().Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, suite.refLoc), q[0])
	suite.Assert().Equal(time.Date(2025, 3, 11, 0, 0, 0, 0, suite.refLoc), q[1])
}
