package optimizer

import (
	"math"

	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

// DaysPerYear is the annualization convention. Crypto markets trade every
// calendar day, so returns and volatilities scale by 365 rather than 252.
const DaysPerYear = 365.0

// LogReturns computes daily log returns r[t] = ln(P[t]/P[t-1]) from a close
// series.
func LogReturns(asset string, closes []float64) (types.ReturnSeries, error) {
	if len(closes) < 2 {
		return nil, errors.Wrap(errors.ErrCodeInsufficientHistory, "cannot compute returns",
			errors.NewInsufficientHistoryErrorf(2, len(closes), asset,
				"need at least 2 prices for %s, have %d", asset, len(closes)))
	}

	returns := make(types.ReturnSeries, len(closes)-1)

	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			return nil, errors.Newf(errors.ErrCodeNonPositivePrice,
				"non-positive price for %s at index %d", asset, i)
		}

		returns[i-1] = math.Log(closes[i] / closes[i-1])
	}

	return returns, nil
}

// RiskFreeDailyRate converts the cash sleeve's annualized yield into a daily
// log return: rf = ln(1+APY)/365.
func RiskFreeDailyRate(apy float64) float64 {
	return math.Log1p(apy) / DaysPerYear
}

// ExcessReturns subtracts the daily risk-free rate from every return.
func ExcessReturns(returns types.ReturnSeries, rfDaily float64) types.ReturnSeries {
	excess := make(types.ReturnSeries, len(returns))
	for i, r := range returns {
		excess[i] = r - rfDaily
	}

	return excess
}
