// Package rebalance converts target allocations into bounded, cost-aware
// trade instructions: no-trade bands, a turnover cap, lot-size rounding, and
// the daily cost model.
package rebalance

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/jhd66g/coinbase-systematic-trader/internal/config"
	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

// Plan is the constraint-satisfying trade set for one rebalance cycle.
type Plan struct {
	// Orders holds one entry per surviving non-zero delta, in asset order.
	Orders []types.OrderDelta
	// Deltas is the post-band, post-cap weight change vector (cash included,
	// sums to zero). Applying it to the current weights reproduces the
	// constrained target.
	Deltas types.WeightVector
	// Turnover is the post-cap sum of absolute risky deltas.
	Turnover float64
}

// BuildPlan applies the rebalance constraints in order: raw deltas, band
// filter on risky assets, turnover cap, then notional conversion with
// step-increment rounding toward zero and the minimum-notional drop. The cash
// delta is recomputed after each stage as the negation of the risky sum so
// the delta vector always sums to zero.
//
// Inputs are clamped and rounded rather than rejected; the only error is a
// NaN or infinite weight, which must abort rather than produce a corrupt
// allocation.
func BuildPlan(cfg config.Config, target, current types.WeightVector, prices map[string]float64, portfolioValue float64) (Plan, error) {
	if err := target.Validate(); err != nil {
		return Plan{}, errors.Wrap(errors.ErrCodeNonFiniteWeight, "target weights", err)
	}

	if err := current.Validate(); err != nil {
		return Plan{}, errors.Wrap(errors.ErrCodeNonFiniteWeight, "current weights", err)
	}

	numRisky := cfg.NumRisky()
	deltas := types.WeightVector{
		Risky: make([]float64, numRisky),
		Cash:  0,
	}

	// Band filter: small deviations stay untraded.
	for i := 0; i < numRisky; i++ {
		d := target.Risky[i] - current.Risky[i]
		if math.Abs(d) <= cfg.RebalanceBand {
			d = 0
		}

		deltas.Risky[i] = d
	}

	turnover := riskyTurnover(deltas.Risky)

	// Turnover cap: scale every surviving delta uniformly.
	if turnover > cfg.TurnoverCap {
		scale := cfg.TurnoverCap / turnover
		for i := range deltas.Risky {
			deltas.Risky[i] *= scale
		}

		turnover = riskyTurnover(deltas.Risky)
	}

	deltas.Cash = -sum(deltas.Risky)

	orders := make([]types.OrderDelta, 0, numRisky)

	for i, asset := range cfg.Assets {
		d := deltas.Risky[i]
		if d == 0 {
			continue
		}

		price, ok := prices[asset.Symbol]
		if !ok || price <= 0 {
			return Plan{}, errors.Newf(errors.ErrCodeNonPositivePrice,
				"no usable price for %s", asset.Symbol)
		}

		quantity := roundTowardZero(d*portfolioValue/price, asset.StepSize)
		notional := quantity * price

		// Step rounding can truncate the whole order away.
		if quantity == 0 {
			continue
		}

		if math.Abs(notional) < asset.MinNotional {
			continue
		}

		side := types.OrderSideBuy
		if d < 0 {
			side = types.OrderSideSell
		}

		orders = append(orders, types.OrderDelta{
			Asset:       asset.Symbol,
			Side:        side,
			DeltaWeight: d,
			Quantity:    quantity,
			Notional:    notional,
			Price:       price,
		})
	}

	return Plan{
		Orders:   orders,
		Deltas:   deltas,
		Turnover: turnover,
	}, nil
}

// roundTowardZero truncates a quantity to a multiple of the step increment.
// A zero step means the asset trades at arbitrary precision.
func roundTowardZero(quantity, step float64) float64 {
	if step <= 0 {
		return quantity
	}

	q := decimal.NewFromFloat(quantity)
	s := decimal.NewFromFloat(step)
	steps := q.Div(s).Truncate(0)

	rounded, _ := steps.Mul(s).Float64()

	return rounded
}

func riskyTurnover(deltas []float64) float64 {
	total := 0.0
	for _, d := range deltas {
		total += math.Abs(d)
	}

	return total
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}

	return total
}
