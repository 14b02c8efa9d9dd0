package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/jhd66g/coinbase-systematic-trader/internal/config"
	"github.com/jhd66g/coinbase-systematic-trader/internal/logger"
	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

type SimulatorTestSuite struct {
	suite.Suite
	cfg config.Config
	log *logger.Logger
}

func TestSimulatorSuite(t *testing.T) {
	suite.Run(t, new(SimulatorTestSuite))
}

func (suite *SimulatorTestSuite) SetupTest() {
	suite.cfg = config.TestConfig()
	suite.log = logger.NewNopLogger()
}

// flatHistory builds aligned constant-price series.
func flatHistory(symbols []string, days int) types.PriceHistory {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	history := make(types.PriceHistory, len(symbols))

	for _, symbol := range symbols {
		series := make(types.PriceSeries, days)
		for d := 0; d < days; d++ {
			series[d] = types.Candle{Time: start.AddDate(0, 0, d), Close: 100}
		}

		history[symbol] = series
	}

	return history
}

// trendHistory builds aligned series with per-asset daily growth and a small
// alternating wiggle for non-degenerate variance.
func trendHistory(symbols []string, days int, growth []float64) types.PriceHistory {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	history := make(types.PriceHistory, len(symbols))

	for i, symbol := range symbols {
		series := make(types.PriceSeries, days)
		price := 100.0

		for d := 0; d < days; d++ {
			wiggle := 0.998
			if (d+i)%2 == 0 {
				wiggle = 1.002
			}

			price *= (1 + growth[i]) * wiggle
			series[d] = types.Candle{Time: start.AddDate(0, 0, d), Close: price}
		}

		history[symbol] = series
	}

	return history
}

func (suite *SimulatorTestSuite) newReadySimulator(history types.PriceHistory) *Simulator {
	sim := NewSimulator(suite.log)
	suite.Require().NoError(sim.Initialize(suite.cfg))
	suite.Require().NoError(sim.SetHistory(history))

	return sim
}

func (suite *SimulatorTestSuite) TestFlatPricesConvergeToEqualWeights() {
	sim := suite.newReadySimulator(flatHistory(suite.cfg.Symbols(), 60))

	summary, err := sim.Run(context.Background(), 20, LifecycleCallbacks{})
	suite.Require().NoError(err)
	suite.Equal(StateCompleted, sim.State())
	suite.False(summary.Failed)

	// Flat prices trigger the equal-weight fallback with full exposure;
	// the 0.5 turnover cap reaches (0.5, 0.5) on the second day and holds.
	suite.InDelta(0.5, summary.FinalWeights["AAA-USD"], 1e-9)
	suite.InDelta(0.5, summary.FinalWeights["BBB-USD"], 1e-9)
	suite.InDelta(0.0, summary.FinalCashWeight, 1e-9)

	// With zero fees the only PnL is the cash yield accrued before the
	// sleeve emptied.
	suite.GreaterOrEqual(summary.FinalValue, summary.InitialValue)
	suite.Equal(20, summary.Days)
}

func (suite *SimulatorTestSuite) TestRunAccountingIsConsistent() {
	suite.cfg.MakerFeeRate = 0.006
	suite.cfg.TakerFeeRate = 0.012
	suite.cfg.SlippageRate = 0.0005

	sim := suite.newReadySimulator(trendHistory(suite.cfg.Symbols(), 70, []float64{0.002, 0.001}))

	summary, err := sim.Run(context.Background(), 30, LifecycleCallbacks{})
	suite.Require().NoError(err)

	suite.Greater(summary.Performance.Rebalances, 0)
	suite.Greater(summary.Performance.TotalFees, 0.0)
	suite.Greater(summary.Performance.TotalSlippage, 0.0)
	suite.Greater(summary.Performance.TotalTurnover, 0.0)
	suite.InDelta((summary.FinalValue-summary.InitialValue)/summary.InitialValue,
		summary.Performance.TotalReturn, 1e-9)

	total := summary.FinalCashWeight
	for _, w := range summary.FinalWeights {
		total += w
	}
	suite.InDelta(1.0, total, 1e-9)
}

func (suite *SimulatorTestSuite) TestRunRequiresEnoughHistory() {
	sim := suite.newReadySimulator(flatHistory(suite.cfg.Symbols(), 40))

	// Window 30 + 20 days > 40 candles.
	_, err := sim.Run(context.Background(), 20, LifecycleCallbacks{})
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestNoHistory))
}

func (suite *SimulatorTestSuite) TestRunRejectsSecondRun() {
	sim := suite.newReadySimulator(flatHistory(suite.cfg.Symbols(), 60))

	_, err := sim.Run(context.Background(), 10, LifecycleCallbacks{})
	suite.Require().NoError(err)

	_, err = sim.Run(context.Background(), 10, LifecycleCallbacks{})
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestNotIdle))
}

func (suite *SimulatorTestSuite) TestRunWithoutHistoryFails() {
	sim := NewSimulator(suite.log)
	suite.Require().NoError(sim.Initialize(suite.cfg))

	_, err := sim.Run(context.Background(), 10, LifecycleCallbacks{})
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestNoHistory))
}

func (suite *SimulatorTestSuite) TestCancellationAborts() {
	sim := suite.newReadySimulator(flatHistory(suite.cfg.Symbols(), 60))

	ctx, cancel := context.WithCancel(context.Background())

	days := 0
	onDay := OnDayCallback(func(day, totalDays int) error {
		days++
		if day == 3 {
			cancel()
		}

		return nil
	})

	summary, err := sim.Run(ctx, 20, LifecycleCallbacks{OnDay: &onDay})
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestAborted))
	suite.Equal(StateFailed, sim.State())
	suite.True(summary.Failed)
	suite.NotEmpty(summary.FailureReason)
	suite.Less(days, 20)
}

func (suite *SimulatorTestSuite) TestCallbacksFire() {
	sim := suite.newReadySimulator(flatHistory(suite.cfg.Symbols(), 60))

	var startedID string
	var startedWindow, startedDays, dayCount int
	var endedID string
	var endedErr error

	onStart := OnRunStartCallback(func(runID string, window, totalDays int) error {
		startedID = runID
		startedWindow = window
		startedDays = totalDays

		return nil
	})
	onDay := OnDayCallback(func(day, totalDays int) error {
		dayCount++

		return nil
	})
	onEnd := OnRunEndCallback(func(runID string, summary types.RunSummary, err error) {
		endedID = runID
		endedErr = err
	})

	summary, err := sim.Run(context.Background(), 10, LifecycleCallbacks{
		OnRunStart: &onStart,
		OnDay:      &onDay,
		OnRunEnd:   &onEnd,
	})
	suite.Require().NoError(err)

	suite.Equal(summary.ID, startedID)
	suite.Equal(summary.ID, endedID)
	suite.Equal(suite.cfg.LookbackWindow, startedWindow)
	suite.Equal(10, startedDays)
	suite.Equal(10, dayCount)
	suite.NoError(endedErr)
}

func (suite *SimulatorTestSuite) TestSetHistoryRejectsMisalignment() {
	history := flatHistory(suite.cfg.Symbols(), 60)
	history["BBB-USD"] = history["BBB-USD"][:59]

	sim := NewSimulator(suite.log)
	suite.Require().NoError(sim.Initialize(suite.cfg))

	err := sim.SetHistory(history)
	suite.True(errors.HasCode(err, errors.ErrCodeMisalignedHistory))
}

func (suite *SimulatorTestSuite) TestSetHistoryRejectsShiftedDates() {
	history := flatHistory(suite.cfg.Symbols(), 60)

	shifted := make(types.PriceSeries, len(history["BBB-USD"]))
	copy(shifted, history["BBB-USD"])

	for i := range shifted {
		shifted[i].Time = shifted[i].Time.Add(time.Hour)
	}

	history["BBB-USD"] = shifted

	sim := NewSimulator(suite.log)
	suite.Require().NoError(sim.Initialize(suite.cfg))

	err := sim.SetHistory(history)
	suite.True(errors.HasCode(err, errors.ErrCodeMisalignedHistory))
}

func (suite *SimulatorTestSuite) TestSetHistoryRejectsMissingAsset() {
	history := flatHistory([]string{"AAA-USD"}, 60)

	sim := NewSimulator(suite.log)
	suite.Require().NoError(sim.Initialize(suite.cfg))

	err := sim.SetHistory(history)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *SimulatorTestSuite) TestInitializeRejectsInvalidConfig() {
	cfg := suite.cfg
	cfg.LookbackWindow = 1

	sim := NewSimulator(suite.log)
	err := sim.Initialize(cfg)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}
