package backtest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/jhd66g/coinbase-systematic-trader/internal/config"
	"github.com/jhd66g/coinbase-systematic-trader/internal/logger"
	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

type SweepTestSuite struct {
	suite.Suite
	cfg config.Config
	log *logger.Logger
}

func TestSweepSuite(t *testing.T) {
	suite.Run(t, new(SweepTestSuite))
}

func (suite *SweepTestSuite) SetupTest() {
	suite.cfg = config.TestConfig()
	suite.log = logger.NewNopLogger()
}

func (suite *SweepTestSuite) TestSweepRunsAllWindows() {
	history := trendHistory(suite.cfg.Symbols(), 100, []float64{0.002, 0.001})
	windows := []int{10, 20, 30}

	results, err := Sweep(context.Background(), suite.cfg, history, windows, 30, suite.log, LifecycleCallbacks{})
	suite.Require().NoError(err)
	suite.Require().Len(results, 3)

	for i, result := range results {
		suite.Equal(windows[i], result.Window)
		suite.NoError(result.Err)
		suite.Equal(windows[i], result.Summary.Window)
		suite.False(result.Summary.Failed)
		suite.Equal(30, result.Summary.Days)
	}
}

func (suite *SweepTestSuite) TestSweepDefaultWindows() {
	history := trendHistory(suite.cfg.Symbols(), 110, []float64{0.002, 0.001})

	results, err := Sweep(context.Background(), suite.cfg, history, nil, 30, suite.log, LifecycleCallbacks{})
	suite.Require().NoError(err)
	suite.Require().Len(results, len(DefaultSweepWindows))

	for i, result := range results {
		suite.Equal(DefaultSweepWindows[i], result.Window)
	}
}

func (suite *SweepTestSuite) TestSweepRecordsPerRunFailures() {
	// 100 candles: window 30 fits 30 days, window 80 does not. The failing
	// run is reported in its slot without sinking the others.
	history := trendHistory(suite.cfg.Symbols(), 100, []float64{0.002, 0.001})

	results, err := Sweep(context.Background(), suite.cfg, history, []int{30, 80}, 30, suite.log, LifecycleCallbacks{})
	suite.Require().NoError(err)
	suite.Require().Len(results, 2)

	suite.NoError(results[0].Err)
	suite.Error(results[1].Err)
	suite.True(errors.HasCode(results[1].Err, errors.ErrCodeBacktestNoHistory))
}

func (suite *SweepTestSuite) TestSweepRejectsBadWindow() {
	history := trendHistory(suite.cfg.Symbols(), 100, []float64{0.002, 0.001})

	_, err := Sweep(context.Background(), suite.cfg, history, []int{1}, 30, suite.log, LifecycleCallbacks{})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidWindow))
}

func (suite *SweepTestSuite) TestSweepRunsAreIndependent() {
	history := trendHistory(suite.cfg.Symbols(), 100, []float64{0.002, 0.001})

	var mu sync.Mutex
	runIDs := make(map[string]int)

	onEnd := OnRunEndCallback(func(runID string, summary types.RunSummary, err error) {
		mu.Lock()
		runIDs[runID]++
		mu.Unlock()
	})

	results, err := Sweep(context.Background(), suite.cfg, history, []int{10, 20, 30}, 20,
		suite.log, LifecycleCallbacks{OnRunEnd: &onEnd})
	suite.Require().NoError(err)

	// Three distinct run IDs, each ending exactly once.
	suite.Len(runIDs, 3)
	for _, count := range runIDs {
		suite.Equal(1, count)
	}

	// The original config is untouched by per-run overrides.
	suite.Equal(30, suite.cfg.LookbackWindow)
	suite.Equal(30.0, suite.cfg.EWMAHalfLife)

	for _, result := range results {
		suite.NoError(result.Err)
	}
}
