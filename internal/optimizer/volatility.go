package optimizer

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
)

// ScaleToTargetVol scales the normalized risky direction so the risky sleeve
// realizes at most the target volatility, and allocates the remainder to cash.
//
// The covariance is daily-scale, the target annualized: the realized risky
// volatility is sqrt(365 * g'Sigma g) and the exposure scalar is
// x = min(1, target/vol). Zero realized volatility means full exposure
// (x = 1) with zero risk. Since x <= 1 and the direction is non-negative and
// sums to 1, the cash weight 1 - sum(x*g) is >= 0 by construction.
func ScaleToTargetVol(direction []float64, cov *mat.SymDense, targetVol float64) (types.WeightVector, float64, float64) {
	g := mat.NewVecDense(len(direction), direction)
	dailyVariance := mat.Inner(g, cov, g)

	riskyVol := 0.0
	if dailyVariance > 0 {
		riskyVol = math.Sqrt(dailyVariance * DaysPerYear)
	}

	exposure := 1.0
	if riskyVol > 0 {
		exposure = math.Min(1.0, targetVol/riskyVol)
	}

	weights := types.WeightVector{
		Risky: make([]float64, len(direction)),
		Cash:  0,
	}

	riskySum := 0.0

	for i, v := range direction {
		weights.Risky[i] = exposure * v
		riskySum += weights.Risky[i]
	}

	weights.Cash = 1 - riskySum

	return weights, riskyVol, exposure
}
