package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
)

type SummaryTestSuite struct {
	suite.Suite
}

func TestSummarySuite(t *testing.T) {
	suite.Run(t, new(SummaryTestSuite))
}

func (suite *SummaryTestSuite) TestSummarizeEmptyRun() {
	state := types.NewPortfolioState(2, 10000)

	summary := Summarize(state, 0.0001)
	suite.Equal(0.0, summary.TotalReturn)
	suite.Equal(0.0, summary.CAGR)
	suite.Equal(0.0, summary.Sharpe)
	suite.Equal(0.0, summary.MaxDrawdown)
}

func (suite *SummaryTestSuite) TestSummarizeConstantReturns() {
	state := types.NewPortfolioState(2, 10000)
	for i := 0; i < 10; i++ {
		state.ApplyReturn(0.001)
	}

	summary := Summarize(state, 0)

	expectedFinal := 10000 * math.Pow(1.001, 10)
	suite.InDelta((expectedFinal-10000)/10000, summary.TotalReturn, 1e-9)
	suite.InDelta(math.Pow(expectedFinal/10000, 365.0/10)-1, summary.CAGR, 1e-9)

	// Zero dispersion: volatility is zero and Sharpe is left at zero
	// rather than dividing by it.
	suite.Equal(0.0, summary.AnnualizedVolatility)
	suite.Equal(0.0, summary.Sharpe)
	suite.Equal(0.0, summary.MaxDrawdown)
}

func (suite *SummaryTestSuite) TestSummarizeSharpeAndVolatility() {
	state := types.NewPortfolioState(1, 10000)
	returns := []float64{0.01, -0.005, 0.02, -0.01, 0.003}

	for _, r := range returns {
		state.ApplyReturn(r)
	}

	rfDaily := 0.0001
	summary := Summarize(state, rfDaily)

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))
	std := math.Sqrt(variance)

	suite.InDelta(std*math.Sqrt(365), summary.AnnualizedVolatility, 1e-12)
	suite.InDelta((mean-rfDaily)/std*math.Sqrt(365), summary.Sharpe, 1e-12)
}

func (suite *SummaryTestSuite) TestMaxDrawdown() {
	state := types.NewPortfolioState(1, 10000)

	// Up 10%, down 20%, partial recovery: peak 1.1, trough 0.88.
	for _, r := range []float64{0.1, -0.2, 0.05} {
		state.ApplyReturn(r)
	}

	summary := Summarize(state, 0)
	suite.InDelta(0.2, summary.MaxDrawdown, 1e-12)
}

func (suite *SummaryTestSuite) TestLossyRunHasNegativeCAGR() {
	state := types.NewPortfolioState(1, 10000)
	for i := 0; i < 5; i++ {
		state.ApplyReturn(-0.01)
	}

	summary := Summarize(state, 0)
	suite.Less(summary.CAGR, 0.0)
	suite.Less(summary.TotalReturn, 0.0)
	suite.Greater(summary.MaxDrawdown, 0.0)
}

func (suite *SummaryTestSuite) TestCountersPassThrough() {
	state := types.NewPortfolioState(1, 10000)
	state.ApplyReturn(0.001)
	state.TotalFees = 12.5
	state.TotalSlippage = 1.25
	state.TotalTurnover = 2.4
	state.Rebalances = 7

	summary := Summarize(state, 0)
	suite.Equal(12.5, summary.TotalFees)
	suite.Equal(1.25, summary.TotalSlippage)
	suite.Equal(2.4, summary.TotalTurnover)
	suite.Equal(7, summary.Rebalances)
}
