package types

import (
	"math"

	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

// WeightVector holds the portfolio allocation: one weight per risky asset,
// in the fixed asset ordering of the run configuration, plus the cash sleeve.
// A well-formed vector sums to 1 with every entry >= 0.
type WeightVector struct {
	Risky []float64 `yaml:"risky" json:"risky"`
	Cash  float64   `yaml:"cash" json:"cash"`
}

// AllCash returns a vector fully allocated to the cash sleeve.
func AllCash(numRisky int) WeightVector {
	return WeightVector{
		Risky: make([]float64, numRisky),
		Cash:  1.0,
	}
}

// Sum returns the total allocation including cash.
func (w WeightVector) Sum() float64 {
	total := w.Cash
	for _, v := range w.Risky {
		total += v
	}

	return total
}

// RiskySum returns the total allocation to risky assets.
func (w WeightVector) RiskySum() float64 {
	total := 0.0
	for _, v := range w.Risky {
		total += v
	}

	return total
}

// Clone returns a deep copy.
func (w WeightVector) Clone() WeightVector {
	risky := make([]float64, len(w.Risky))
	copy(risky, w.Risky)

	return WeightVector{Risky: risky, Cash: w.Cash}
}

// Validate rejects NaN and infinite entries.
func (w WeightVector) Validate() error {
	for i, v := range w.Risky {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Newf(errors.ErrCodeNonFiniteWeight, "non-finite risky weight %f at index %d", v, i)
		}
	}

	if math.IsNaN(w.Cash) || math.IsInf(w.Cash, 0) {
		return errors.Newf(errors.ErrCodeNonFiniteWeight, "non-finite cash weight %f", w.Cash)
	}

	return nil
}
