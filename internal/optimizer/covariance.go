package optimizer

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

// EWMACovariance estimates the exponentially weighted covariance matrix of
// the aligned excess return rows (oldest first, one column per asset).
//
// Decay is lambda = 2^(-1/halfLife); the most recent row carries weight
// lambda^0, the oldest lambda^(n-1). Deviations are taken from the plain
// arithmetic mean of the window (not the weighted mean), matching the
// production estimator. The accumulated sum is scaled by (1-lambda) and
// ridge*I is added so the result is always positive-definite.
func EWMACovariance(excess [][]float64, halfLife, ridge float64) (*mat.SymDense, error) {
	n := len(excess)
	if n < 2 {
		return nil, errors.Wrap(errors.ErrCodeInsufficientHistory, "cannot estimate covariance",
			errors.NewInsufficientHistoryErrorf(2, n, "",
				"need at least 2 excess return observations, have %d", n))
	}

	numAssets := len(excess[0])

	for t, row := range excess {
		if len(row) != numAssets {
			return nil, errors.Newf(errors.ErrCodeMisalignedHistory,
				"excess return row %d has %d assets, expected %d", t, len(row), numAssets)
		}
	}

	lambda := math.Exp2(-1.0 / halfLife)

	mean := make([]float64, numAssets)

	for _, row := range excess {
		for i, v := range row {
			mean[i] += v
		}
	}

	for i := range mean {
		mean[i] /= float64(n)
	}

	cov := mat.NewSymDense(numAssets, nil)
	deviation := make([]float64, numAssets)

	for t, row := range excess {
		weight := math.Pow(lambda, float64(n-1-t))

		for i, v := range row {
			deviation[i] = v - mean[i]
		}

		for i := 0; i < numAssets; i++ {
			for j := i; j < numAssets; j++ {
				cov.SetSym(i, j, cov.At(i, j)+weight*deviation[i]*deviation[j])
			}
		}
	}

	for i := 0; i < numAssets; i++ {
		for j := i; j < numAssets; j++ {
			cov.SetSym(i, j, cov.At(i, j)*(1-lambda))
		}
	}

	// Ridge regularization guarantees invertibility.
	for i := 0; i < numAssets; i++ {
		cov.SetSym(i, i, cov.At(i, i)+ridge)
	}

	return cov, nil
}
