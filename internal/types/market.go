package types

import (
	"time"

	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

// Candle is a single daily close observation for one asset.
type Candle struct {
	Time  time.Time `yaml:"time" json:"time" csv:"time"`
	Close float64   `yaml:"close" json:"close" csv:"close"`
}

// PriceSeries is an ordered sequence of daily candles for one asset,
// strictly increasing in time. The engine never mutates a PriceSeries;
// it is owned by the caller.
type PriceSeries []Candle

// Validate checks ordering and positivity of the series.
func (p PriceSeries) Validate(asset string) error {
	for i, c := range p {
		if c.Close <= 0 {
			return errors.Newf(errors.ErrCodeNonPositivePrice,
				"non-positive close %f for %s at index %d (%s)", c.Close, asset, i, c.Time.Format("2006-01-02"))
		}

		if i > 0 && !p[i-1].Time.Before(c.Time) {
			return errors.Newf(errors.ErrCodeUnorderedHistory,
				"timestamps not strictly increasing for %s at index %d", asset, i)
		}
	}

	return nil
}

// Closes returns the close prices as a slice.
func (p PriceSeries) Closes() []float64 {
	closes := make([]float64, len(p))
	for i, c := range p {
		closes[i] = c.Close
	}

	return closes
}

// Last returns the most recent candle. The series must be non-empty.
func (p PriceSeries) Last() Candle {
	return p[len(p)-1]
}

// Tail returns the last n candles, or the whole series if it is shorter.
func (p PriceSeries) Tail(n int) PriceSeries {
	if len(p) <= n {
		return p
	}

	return p[len(p)-n:]
}

// PriceHistory maps asset symbols to their daily price series.
type PriceHistory map[string]PriceSeries

// ReturnSeries is an ordered sequence of daily log returns,
// one shorter than the price series it was derived from.
type ReturnSeries []float64
