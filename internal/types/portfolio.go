package types

// PortfolioState is the single long-lived mutable entity in the pipeline.
// One simulation (or live trading session) exclusively owns one instance and
// mutates it once per rebalance cycle; every other component is a pure
// function over immutable inputs.
type PortfolioState struct {
	// Weights is the current allocation.
	Weights WeightVector `yaml:"weights" json:"weights"`
	// Value is the current total portfolio value in USD.
	Value float64 `yaml:"value" json:"value"`
	// InitialValue is the starting capital of the session.
	InitialValue float64 `yaml:"initial_value" json:"initial_value"`
	// CumulativePnL is lifetime profit and loss: Value - InitialValue.
	CumulativePnL float64 `yaml:"cumulative_pnl" json:"cumulative_pnl"`
	// DailyReturns is the history of daily net returns, one per simulated day.
	DailyReturns []float64 `yaml:"daily_returns" json:"daily_returns"`
	// TotalFees is the accumulated fee spend in USD.
	TotalFees float64 `yaml:"total_fees" json:"total_fees"`
	// TotalSlippage is the accumulated slippage cost in USD.
	TotalSlippage float64 `yaml:"total_slippage" json:"total_slippage"`
	// TotalTurnover is the accumulated per-day traded weight (post-cap).
	TotalTurnover float64 `yaml:"total_turnover" json:"total_turnover"`
	// Rebalances counts days on which at least one order survived.
	Rebalances int `yaml:"rebalances" json:"rebalances"`
}

// NewPortfolioState creates a state fully allocated to cash with the given
// starting capital.
func NewPortfolioState(numRisky int, initialValue float64) *PortfolioState {
	return &PortfolioState{
		Weights:       AllCash(numRisky),
		Value:         initialValue,
		InitialValue:  initialValue,
		CumulativePnL: 0,
		DailyReturns:  nil,
		TotalFees:     0,
		TotalSlippage: 0,
		TotalTurnover: 0,
		Rebalances:    0,
	}
}

// ApplyReturn compounds one day's net return into the portfolio value.
func (s *PortfolioState) ApplyReturn(netReturn float64) {
	s.Value *= 1 + netReturn
	s.CumulativePnL = s.Value - s.InitialValue
	s.DailyReturns = append(s.DailyReturns, netReturn)
}
