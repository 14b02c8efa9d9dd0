package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PerformanceSummary is a read-only aggregate over one portfolio's daily
// return history. It is recomputed on demand and never mutated in place.
type PerformanceSummary struct {
	// TotalReturn is (final - initial) / initial.
	TotalReturn float64 `yaml:"total_return" json:"total_return"`
	// CAGR is the compound annual growth rate from daily net returns,
	// annualized over 365 days.
	CAGR float64 `yaml:"cagr" json:"cagr"`
	// Sharpe is mean daily excess return over its standard deviation,
	// annualized by sqrt(365).
	Sharpe float64 `yaml:"sharpe" json:"sharpe"`
	// MaxDrawdown is the largest peak-to-trough decline of the equity curve.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// AnnualizedVolatility is the standard deviation of daily net returns
	// scaled by sqrt(365).
	AnnualizedVolatility float64 `yaml:"annualized_volatility" json:"annualized_volatility"`
	// TotalTurnover is the sum of per-day traded weight.
	TotalTurnover float64 `yaml:"total_turnover" json:"total_turnover"`
	// TotalFees is the total fee spend in USD.
	TotalFees float64 `yaml:"total_fees" json:"total_fees"`
	// TotalSlippage is the total slippage cost in USD.
	TotalSlippage float64 `yaml:"total_slippage" json:"total_slippage"`
	// Rebalances counts days with at least one executed order.
	Rebalances int `yaml:"rebalances" json:"rebalances"`
}

// RunSummary is the persisted record of one backtest run, keyed by lookback
// window size for tabular comparison across sweep runs.
type RunSummary struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Window is the optimization lookback window in days.
	Window int `yaml:"window" json:"window"`
	// StartDate and EndDate bound the simulated period.
	StartDate time.Time `yaml:"start_date" json:"start_date"`
	EndDate   time.Time `yaml:"end_date" json:"end_date"`
	// Days is the number of simulated days.
	Days int `yaml:"days" json:"days"`
	// InitialValue and FinalValue are the portfolio values in USD.
	InitialValue float64 `yaml:"initial_value" json:"initial_value"`
	FinalValue   float64 `yaml:"final_value" json:"final_value"`
	// Performance is the derived summary for the run.
	Performance PerformanceSummary `yaml:"performance" json:"performance"`
	// FinalWeights is the final allocation per risky asset.
	FinalWeights map[string]float64 `yaml:"final_weights" json:"final_weights"`
	// FinalCashWeight is the final cash sleeve.
	FinalCashWeight float64 `yaml:"final_cash_weight" json:"final_cash_weight"`
	// Failed is true when the run aborted; FailureReason records why and the
	// summary reflects the last good day.
	Failed        bool   `yaml:"failed" json:"failed"`
	FailureReason string `yaml:"failure_reason,omitempty" json:"failure_reason,omitempty"`
}

// WriteRunSummaries writes run summaries to a YAML file.
func WriteRunSummaries(path string, summaries []RunSummary) error {
	data, err := yaml.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("failed to marshal run summaries to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run summaries to file: %w", err)
	}

	return nil
}
