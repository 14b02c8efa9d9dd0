package optimizer

import (
	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

// ExpectedReturns computes the shrunk momentum signal per asset:
// m[i] = sum of the last `window` excess returns, mu[i] = shrinkage * m[i].
//
// When fewer than `window` observations exist the sum runs over what is
// available; a 60-close lookback yields 59 returns and still feeds a
// 60-day momentum window.
func ExpectedReturns(excess [][]float64, window int, shrinkage float64) ([]float64, error) {
	n := len(excess)
	if n == 0 {
		return nil, errors.Wrap(errors.ErrCodeInsufficientHistory, "cannot estimate expected returns",
			errors.NewInsufficientHistoryError(1, 0, "", "no excess return observations"))
	}

	start := n - window
	if start < 0 {
		start = 0
	}

	numAssets := len(excess[0])
	mu := make([]float64, numAssets)

	for t := start; t < n; t++ {
		if len(excess[t]) != numAssets {
			return nil, errors.Newf(errors.ErrCodeMisalignedHistory,
				"excess return row %d has %d assets, expected %d", t, len(excess[t]), numAssets)
		}

		for i, v := range excess[t] {
			mu[i] += v
		}
	}

	for i := range mu {
		mu[i] *= shrinkage
	}

	return mu, nil
}
