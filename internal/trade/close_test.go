package trade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mt5-gateway/internal/model"
	"mt5-gateway/internal/terminal/terminaltest"
)

type CloseTestSuite struct {
	suite.Suite

	fake      *terminaltest.Fake
	submitter *Submitter
}

func TestCloseTestSuite(t *testing.T) {
	suite.Run(t, new(CloseTestSuite))
}

func (suite *CloseTestSuite) SetupTest() {
	suite.fake = &terminaltest.Fake{
		Ticks: map[string]model.Tick{
			"EURUSD": {Symbol: "EURUSD", Bid: 1.1000, Ask: 1.1002},
			"USDJPY": {Symbol: "USDJPY", Bid: 150.10, Ask: 150.12},
		},
		Orders: []model.Order{
			{Ticket: 7, Symbol: "EURUSD", Type: 2, VolumeInitial: 0.1, TimeSetup: time.Now()},
		},
		Positions: []model.Position{
			{Ticket: 11, Symbol: "EURUSD", Type: 0, Volume: 0.5, Profit: 12.3},
			{Ticket: 12, Symbol: "USDJPY", Type: 1, Volume: 0.2, Profit: -4.1},
		},
	}
	suite.submitter = NewSubmitter(suite.fake, nil, SubmitterConfig{CloseDeviationPoints: 10})
}

func (suite *CloseTestSuite) TestCloseAllCancelsOrdersAndClosesPositions() {
	closed := suite.submitter.CloseAll()

	suite.Assert().Equal([]int64{7}, suite.fake.Cancelled)
	suite.Require().Len(suite.fake.Submitted, 2)

	long := suite.fake.Submitted[0]
	suite.Assert().Equal(model.TradeActionDeal, long.Action)
	suite.Assert().Equal(model.OrderTypeSell, long.Type, "longs close by selling")
	suite.Assert().InDelta(1.1000, long.Price, 1e-9, "at the bid")
	suite.Assert().Equal(int64(11), long.Position)
	suite.Assert().Equal(10, long.Deviation)

	short := suite.fake.Submitted[1]
	suite.Assert().Equal(model.OrderTypeBuy, short.Type, "shorts close by buying back")
	suite.Assert().InDelta(150.12, short.Price, 1e-9, "at the ask")

	suite.Require().Len(closed, 2)
	suite.Assert().Equal(ClosedPosition{Symbol: "EURUSD", Side: "LONG", Volume: 0.5, Profit: 12.3}, closed[0])
	suite.Assert().Equal(ClosedPosition{Symbol: "USDJPY", Side: "SHORT", Volume: 0.2, Profit: -4.1}, closed[1])
}

func (suite *CloseTestSuite) TestCloseAllSkipsPositionWithoutTick() {
	suite.fake.Positions = append(suite.fake.Positions, model.Position{
		Ticket: 13, Symbol: "NOPE", Type: 0, Volume: 0.1,
	})

	closed := suite.submitter.CloseAll()

	suite.Assert().Len(closed, 2, "unpriceable position is skipped, not fatal")
}

func (suite *CloseTestSuite) TestZeroDeviationPassedThrough() {
	submitter := NewSubmitter(suite.fake, nil, SubmitterConfig{CloseDeviationPoints: 0})

	submitter.CloseAll()

	suite.Require().NotEmpty(suite.fake.Submitted)
	suite.Assert().Equal(0, suite.fake.Submitted[0].Deviation, "an explicit 0 is not replaced")
}

func (suite *CloseTestSuite) TestCloseAllWithNothingOpen() {
	suite.fake.Orders = nil
	suite.fake.Positions = nil

	suite.Assert().Empty(suite.submitter.CloseAll())
	suite.Assert().Empty(suite.fake.Submitted)
}
