package backtest

import (
	"math"

	"github.com/jhd66g/coinbase-systematic-trader/internal/optimizer"
	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
)

// stdEpsilon is the smallest daily return dispersion treated as non-zero.
// Constant-return runs leave rounding dust in the variance accumulator, and
// dividing by it would report astronomical Sharpe ratios.
const stdEpsilon = 1e-12

// Summarize derives performance metrics from a portfolio's daily net return
// history. Sharpe and volatility annualize by sqrt(365), CAGR by 365/days.
// Dispersion at or below stdEpsilon reports zero volatility and Sharpe.
func Summarize(p *types.PortfolioState, rfDaily float64) types.PerformanceSummary {
	days := len(p.DailyReturns)

	summary := types.PerformanceSummary{
		TotalReturn:          0,
		CAGR:                 0,
		Sharpe:               0,
		MaxDrawdown:          0,
		AnnualizedVolatility: 0,
		TotalTurnover:        p.TotalTurnover,
		TotalFees:            p.TotalFees,
		TotalSlippage:        p.TotalSlippage,
		Rebalances:           p.Rebalances,
	}

	if p.InitialValue > 0 {
		summary.TotalReturn = (p.Value - p.InitialValue) / p.InitialValue
	}

	if days == 0 {
		return summary
	}

	if p.InitialValue > 0 && p.Value > 0 {
		summary.CAGR = math.Pow(p.Value/p.InitialValue, optimizer.DaysPerYear/float64(days)) - 1
	}

	mean := 0.0
	for _, r := range p.DailyReturns {
		mean += r
	}
	mean /= float64(days)

	variance := 0.0
	for _, r := range p.DailyReturns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(days)

	std := math.Sqrt(variance)

	if std > stdEpsilon {
		summary.AnnualizedVolatility = std * math.Sqrt(optimizer.DaysPerYear)
		summary.Sharpe = (mean - rfDaily) / std * math.Sqrt(optimizer.DaysPerYear)
	}

	summary.MaxDrawdown = maxDrawdown(p.DailyReturns)

	return summary
}

// maxDrawdown walks the compounded equity curve and reports the deepest
// peak-to-trough decline as a positive fraction.
func maxDrawdown(dailyReturns []float64) float64 {
	equity := 1.0
	peak := 1.0
	worst := 0.0

	for _, r := range dailyReturns {
		equity *= 1 + r

		if equity > peak {
			peak = equity
		}

		if dd := (peak - equity) / peak; dd > worst {
			worst = dd
		}
	}

	return worst
}
