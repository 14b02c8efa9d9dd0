package config

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
)

// DefaultConfig returns the production parameter set: a four-coin basket
// against a USDC sleeve, 50% turnover cap, 20% rebalance bands, 15%
// annualized volatility target, Coinbase maker/taker tiers.
func DefaultConfig() Config {
	return Config{
		Assets: []types.AssetMeta{
			{Symbol: "BTC-USDC", MinNotional: 1, StepSize: 0.00000001},
			{Symbol: "ETH-USDC", MinNotional: 1, StepSize: 0.00000001},
			{Symbol: "PAXG-USDC", MinNotional: 1, StepSize: 0.00001},
			{Symbol: "SOL-USDC", MinNotional: 1, StepSize: 0.00001},
		},
		CashAPY:          0.0385,
		InitialCapital:   10000,
		LookbackWindow:   60,
		EWMAHalfLife:     60,
		RidgeEpsilon:     1e-8,
		MomentumWindow:   60,
		Shrinkage:        0.1,
		TargetVolatility: 0.15,
		RebalanceBand:    0.20,
		TurnoverCap:      0.50,
		MakerFeeRate:     0.006,
		TakerFeeRate:     0.012,
		SlippageRate:     0.0005,
		PostOnly:         false,
		StartTime:        optional.None[time.Time](),
		EndTime:          optional.None[time.Time](),
	}
}

// TestConfig returns a small two-asset configuration used across the test
// suites: no bands, no fees, frictionless increments.
func TestConfig() Config {
	return Config{
		Assets: []types.AssetMeta{
			{Symbol: "AAA-USD", MinNotional: 0, StepSize: 0},
			{Symbol: "BBB-USD", MinNotional: 0, StepSize: 0},
		},
		CashAPY:          0.0385,
		InitialCapital:   10000,
		LookbackWindow:   30,
		EWMAHalfLife:     30,
		RidgeEpsilon:     1e-8,
		MomentumWindow:   30,
		Shrinkage:        0.1,
		TargetVolatility: 0.15,
		RebalanceBand:    0,
		TurnoverCap:      0.5,
		MakerFeeRate:     0,
		TakerFeeRate:     0,
		SlippageRate:     0,
		PostOnly:         false,
		StartTime:        optional.None[time.Time](),
		EndTime:          optional.None[time.Time](),
	}
}
