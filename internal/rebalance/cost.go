package rebalance

import (
	"math"

	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
	"github.com/jhd66g/coinbase-systematic-trader/internal/rebalance/fees"
)

// CostResult is the fee-adjusted daily return of one rebalance cycle.
type CostResult struct {
	// GrossReturn is the portfolio return before trading costs.
	GrossReturn float64
	// NetReturn is the gross return minus fees and slippage as a fraction of
	// portfolio value.
	NetReturn float64
	// Fees is the total trading fee in USD for the order set.
	Fees float64
	// Slippage is the total slippage cost in USD for the order set.
	Slippage float64
}

// DailyCost computes the day's gross return from the prior-day weights and
// per-asset returns, then nets out the cost of the executed orders.
//
// R_gross = sum(w[i,t-1] * r[i,t]) + w_cash[t-1] * rf[t]
// R_net   = R_gross - (fees + slippage) / portfolioValue
func DailyCost(orders []types.OrderDelta, model fees.FeeModel, slippageRate float64,
	prevWeights types.WeightVector, assetReturns []float64, rfDaily, portfolioValue float64) CostResult {
	gross := prevWeights.Cash * rfDaily
	for i, r := range assetReturns {
		gross += prevWeights.Risky[i] * r
	}

	totalFees := 0.0
	totalSlippage := 0.0

	for _, order := range orders {
		notional := math.Abs(order.Notional)
		totalFees += model.Calculate(notional)
		totalSlippage += notional * slippageRate
	}

	net := gross
	if portfolioValue > 0 {
		net -= (totalFees + totalSlippage) / portfolioValue
	}

	return CostResult{
		GrossReturn: gross,
		NetReturn:   net,
		Fees:        totalFees,
		Slippage:    totalSlippage,
	}
}
