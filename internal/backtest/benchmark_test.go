package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/jhd66g/coinbase-systematic-trader/internal/config"
	"github.com/jhd66g/coinbase-systematic-trader/internal/optimizer"
	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

type BenchmarkTestSuite struct {
	suite.Suite
	cfg config.Config
}

func TestBenchmarkSuite(t *testing.T) {
	suite.Run(t, new(BenchmarkTestSuite))
}

func (suite *BenchmarkTestSuite) SetupTest() {
	suite.cfg = config.TestConfig()
}

func (suite *BenchmarkTestSuite) TestRunBenchmarksShape() {
	history := trendHistory(suite.cfg.Symbols(), 60, []float64{0.002, 0.001})

	results, err := RunBenchmarks(suite.cfg, history, 30)
	suite.Require().NoError(err)

	// Equal-weight, one per asset, risk-free.
	suite.Require().Len(results, 4)
	suite.Equal("equal_weight", results[0].Name)
	suite.Equal("AAA-USD_only", results[1].Name)
	suite.Equal("BBB-USD_only", results[2].Name)
	suite.Equal("risk_free", results[3].Name)
}

func (suite *BenchmarkTestSuite) TestRiskFreeCompounds() {
	history := flatHistory(suite.cfg.Symbols(), 60)

	results, err := RunBenchmarks(suite.cfg, history, 30)
	suite.Require().NoError(err)

	riskFree := results[len(results)-1]
	rfDaily := optimizer.RiskFreeDailyRate(suite.cfg.CashAPY)
	expected := suite.cfg.InitialCapital * math.Pow(1+rfDaily, 30)

	suite.InDelta(expected, riskFree.FinalValue, 1e-6)
	suite.Equal(0.0, riskFree.AnnualizedVolatility)
	suite.Equal(0.0, riskFree.Sharpe)
}

func (suite *BenchmarkTestSuite) TestSingleAssetTracksPrice() {
	history := trendHistory(suite.cfg.Symbols(), 60, []float64{0.002, 0.001})

	results, err := RunBenchmarks(suite.cfg, history, 30)
	suite.Require().NoError(err)

	series := history["AAA-USD"]
	expectedReturn := series[len(series)-1].Close/series[len(series)-31].Close - 1

	suite.InDelta(expectedReturn, results[1].TotalReturn, 1e-9)
	suite.Greater(results[1].AnnualizedVolatility, 0.0)
}

func (suite *BenchmarkTestSuite) TestEqualWeightFlatPricesEarnsCashYield() {
	history := flatHistory(suite.cfg.Symbols(), 60)

	results, err := RunBenchmarks(suite.cfg, history, 30)
	suite.Require().NoError(err)

	// Only the cash third earns anything; risky sleeves hold flat.
	equalWeight := results[0]
	suite.Greater(equalWeight.TotalReturn, 0.0)
	suite.Less(equalWeight.TotalReturn, 0.01)
}

func (suite *BenchmarkTestSuite) TestInsufficientHistoryRejected() {
	history := flatHistory(suite.cfg.Symbols(), 20)

	_, err := RunBenchmarks(suite.cfg, history, 30)
	suite.True(errors.IsInsufficientHistoryError(err))
}

func (suite *BenchmarkTestSuite) TestMissingAssetRejected() {
	history := flatHistory([]string{"AAA-USD"}, 60)

	_, err := RunBenchmarks(suite.cfg, history, 30)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}
