package trade

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"mt5-gateway/internal/model"
)

type PricesTestSuite struct {
	suite.Suite
}

func TestPricesTestSuite(t *testing.T) {
	suite.Run(t, new(PricesTestSuite))
}

func (suite *PricesTestSuite) TestLongZeroOffsetsSitOnRangeHigh() {
	r := model.DefiningRange{High: 1.1000, Low: 1.0900}
	spread := 0.0010

	p := DerivePrices(r, model.DirectionLong, 0, 0, 0, spread)

	suite.Assert().InDelta(r.High+spread/2, p.Entry, 1e-9)
	suite.Assert().InDelta(r.High, p.Stop, 1e-9)
	suite.Assert().InDelta(r.High, p.Profit, 1e-9)
}

func (suite *PricesTestSuite) TestLongOffsetsExtendFromHigh() {
	r := model.DefiningRange{High: 1.1000, Low: 1.0900} // width 0.0100

	p := DerivePrices(r, model.DirectionLong, 10, -50, 100, 0)

	suite.Assert().InDelta(1.1010, p.Entry, 1e-9)
	suite.Assert().InDelta(1.0950, p.Stop, 1e-9)
	suite.Assert().InDelta(1.1100, p.Profit, 1e-9)
}

func (suite *PricesTestSuite) TestShortMirrorsAroundLow() {
	r := model.DefiningRange{High: 1.1000, Low: 1.0900}
	spread := 0.0010

	p := DerivePrices(r, model.DirectionShort, 10, -50, 100, spread)

	suite.Assert().InDelta(1.0890, p.Entry, 1e-9)
	suite.Assert().InDelta(1.0950+spread/2, p.Stop, 1e-9)
	suite.Assert().InDelta(1.0800, p.Profit, 1e-9)
}

func (suite *PricesTestSuite) TestRulesInvertDirection() {
	rules := Rules{"USDJPY": {InvertDirection: true}}

	suite.Assert().Equal(model.DirectionShort, rules.Direction("USDJPY", model.DirectionLong))
	suite.Assert().Equal(model.DirectionLong, rules.Direction("USDJPY", model.DirectionShort))
	suite.Assert().Equal(model.DirectionLong, rules.Direction("EURUSD", model.DirectionLong))
}

// A long request on an inverted symbol must produce exactly the short
// formulas of a plain symbol with the same range and offsets.
func (suite *PricesTestSuite) TestInvertedLongMatchesPlainShort() {
	rules := Rules{"USDJPY": {InvertDirection: true}}
	r := model.DefiningRange{High: 151.00, Low: 150.00}
	spread := 0.02

	inverted := DerivePrices(r, rules.Direction("USDJPY", model.DirectionLong), 5, -25, 80, spread)
	plainShort := DerivePrices(r, model.DirectionShort, 5, -25, 80, spread)

	suite.Assert().Equal(plainShort, inverted)
}
