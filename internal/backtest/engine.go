// Package backtest replays the daily allocation pipeline over historical
// data, one simulated day at a time, and aggregates performance statistics.
package backtest

import (
	"context"

	"github.com/jhd66g/coinbase-systematic-trader/internal/config"
	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
)

// RunState is the lifecycle state of one simulation.
type RunState string

const (
	StateIdle      RunState = "idle"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateFailed    RunState = "failed"
)

// Lifecycle callback types for backtest phases.
// All callbacks with an error return can abort execution if they return an error.

// OnRunStartCallback is called once before the first simulated day.
// runID is a unique identifier for this run, generated before processing starts.
type OnRunStartCallback func(runID string, window int, totalDays int) error

// OnDayCallback is called after each simulated day completes.
type OnDayCallback func(day int, totalDays int) error

// OnRunEndCallback is called when the run ends (always called, even on failure).
type OnRunEndCallback func(runID string, summary types.RunSummary, err error)

// LifecycleCallbacks holds all lifecycle callback functions for the simulator.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart *OnRunStartCallback
	OnDay      *OnDayCallback
	OnRunEnd   *OnRunEndCallback
}

// Engine drives one backtest run over a daily price history.
type Engine interface {
	// Initialize validates the configuration and prepares the run.
	Initialize(cfg config.Config) error
	// SetHistory supplies the aligned daily history; read-only for the engine.
	SetHistory(history types.PriceHistory) error
	// Run simulates the requested number of days. The context can cancel the
	// run between daily steps. Use LifecycleCallbacks to receive
	// notifications at different phases of the run.
	Run(ctx context.Context, days int, callbacks LifecycleCallbacks) (types.RunSummary, error)
	// State reports the lifecycle state.
	State() RunState
}
