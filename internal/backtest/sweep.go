package backtest

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jhd66g/coinbase-systematic-trader/internal/config"
	"github.com/jhd66g/coinbase-systematic-trader/internal/logger"
	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

// DefaultSweepWindows are the lookback windows compared by a standard sweep.
var DefaultSweepWindows = []int{15, 30, 45, 60, 75}

// SweepResult pairs a window size with the outcome of its run. Failed runs
// carry a non-nil Err and a summary truncated at the last good day.
type SweepResult struct {
	Window  int
	Summary types.RunSummary
	Err     error
}

// Sweep runs one backtest per window concurrently. Each run gets its own
// simulator and portfolio over the same read-only history; both the lookback
// window and the EWMA half-life follow the swept window. A run failing does
// not cancel its siblings. Results come back ordered by window.
func Sweep(ctx context.Context, cfg config.Config, history types.PriceHistory,
	windows []int, days int, log *logger.Logger, callbacks LifecycleCallbacks) ([]SweepResult, error) {
	if len(windows) == 0 {
		windows = DefaultSweepWindows
	}

	for _, window := range windows {
		if window < 2 {
			return nil, errors.Newf(errors.ErrCodeInvalidWindow, "sweep window %d must be at least 2", window)
		}
	}

	results := make([]SweepResult, len(windows))

	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)

	for i, window := range windows {
		i, window := i, window
		group.Go(func() error {
			runCfg := cfg
			runCfg.LookbackWindow = window
			runCfg.EWMAHalfLife = float64(window)

			sim := NewSimulator(log)

			summary, err := runOne(groupCtx, sim, runCfg, history, days, callbacks)

			mu.Lock()
			results[i] = SweepResult{Window: window, Summary: summary, Err: err}
			mu.Unlock()

			// A failed run is recorded, not propagated: the sweep's job is
			// to compare windows, including windows that blow up.
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(a, b int) bool { return results[a].Window < results[b].Window })

	return results, nil
}

func runOne(ctx context.Context, sim *Simulator, cfg config.Config,
	history types.PriceHistory, days int, callbacks LifecycleCallbacks) (types.RunSummary, error) {
	if err := sim.Initialize(cfg); err != nil {
		return types.RunSummary{}, errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid sweep configuration", err)
	}

	if err := sim.SetHistory(history); err != nil {
		return types.RunSummary{}, err
	}

	return sim.Run(ctx, days, callbacks)
}
