package optimizer

import (
	"gonum.org/v1/gonum/mat"

	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

// sumEpsilon decides when the clipped tangency vector counts as all-zero.
// Exact floating equality would make the equal-weight fallback depend on
// rounding noise, so anything at or below this threshold falls back.
const sumEpsilon = 1e-12

// TangencyDirection solves Sigma g = mu, clips negative entries to zero
// (long-only), and normalizes the result to sum to 1. When the clipped
// vector sums to <= sumEpsilon (every asset has non-positive expected
// excess return) it falls back to equal weights across all risky assets.
//
// The solve goes through a Cholesky factorization rather than explicit
// inversion; a factorization failure after ridge regularization signals a
// configuration bug and surfaces as SingularCovariance.
func TangencyDirection(cov *mat.SymDense, mu []float64) ([]float64, error) {
	n := len(mu)
	if cov.SymmetricDim() != n {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"covariance is %dx%d but expected returns have %d entries", cov.SymmetricDim(), cov.SymmetricDim(), n)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return nil, errors.New(errors.ErrCodeSingularCovariance,
			"covariance matrix is not positive-definite after regularization")
	}

	var g mat.VecDense
	if err := chol.SolveVecTo(&g, mat.NewVecDense(n, mu)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSingularCovariance, "tangency solve failed", err)
	}

	direction := make([]float64, n)
	total := 0.0

	for i := 0; i < n; i++ {
		v := g.AtVec(i)
		if v < 0 {
			v = 0
		}

		direction[i] = v
		total += v
	}

	if total <= sumEpsilon {
		// Equal-weight fallback: the solved direction is entirely non-positive.
		for i := range direction {
			direction[i] = 1.0 / float64(n)
		}

		return direction, nil
	}

	for i := range direction {
		direction[i] /= total
	}

	return direction, nil
}
