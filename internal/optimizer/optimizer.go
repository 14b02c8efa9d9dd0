// Package optimizer implements the daily allocation pipeline: log returns,
// EWMA covariance, shrunk momentum, tangency solve, and volatility scaling.
// Every function is pure; the configuration value carries all parameters.
package optimizer

import (
	"gonum.org/v1/gonum/mat"

	"github.com/jhd66g/coinbase-systematic-trader/internal/config"
	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

// Result is the output of one optimization pass.
type Result struct {
	// Target is the full target allocation including the cash sleeve.
	Target types.WeightVector
	// Expected is the shrunk momentum signal per risky asset.
	Expected []float64
	// Covariance is the regularized EWMA covariance of daily excess returns.
	Covariance *mat.SymDense
	// RiskyVolatility is the annualized volatility of the normalized risky
	// direction before exposure scaling.
	RiskyVolatility float64
	// Exposure is the scalar the risky direction was multiplied by.
	Exposure float64
}

// Optimize runs the full pipeline over the trailing lookback window of the
// supplied history. The history must contain a series for every configured
// asset, all series aligned to the same trailing dates.
func Optimize(cfg config.Config, history types.PriceHistory) (Result, error) {
	excess, err := ExcessMatrix(cfg, history)
	if err != nil {
		return Result{}, err
	}

	cov, err := EWMACovariance(excess, cfg.EWMAHalfLife, cfg.RidgeEpsilon)
	if err != nil {
		return Result{}, err
	}

	mu, err := ExpectedReturns(excess, cfg.MomentumWindow, cfg.Shrinkage)
	if err != nil {
		return Result{}, err
	}

	direction, err := TangencyDirection(cov, mu)
	if err != nil {
		return Result{}, err
	}

	target, riskyVol, exposure := ScaleToTargetVol(direction, cov, cfg.TargetVolatility)

	return Result{
		Target:          target,
		Expected:        mu,
		Covariance:      cov,
		RiskyVolatility: riskyVol,
		Exposure:        exposure,
	}, nil
}

// ExcessMatrix derives aligned day-major excess returns (rows oldest first,
// one column per configured asset) from the trailing lookback window.
func ExcessMatrix(cfg config.Config, history types.PriceHistory) ([][]float64, error) {
	rfDaily := RiskFreeDailyRate(cfg.CashAPY)
	perAsset := make([]types.ReturnSeries, cfg.NumRisky())
	rows := -1

	for i, asset := range cfg.Assets {
		series, ok := history[asset.Symbol]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeDataNotFound, "no price history for %s", asset.Symbol)
		}

		window := series.Tail(cfg.LookbackWindow)

		returns, err := LogReturns(asset.Symbol, window.Closes())
		if err != nil {
			return nil, err
		}

		perAsset[i] = ExcessReturns(returns, rfDaily)

		if rows == -1 {
			rows = len(perAsset[i])
		} else if len(perAsset[i]) != rows {
			return nil, errors.Newf(errors.ErrCodeMisalignedHistory,
				"%s has %d excess returns, expected %d", asset.Symbol, len(perAsset[i]), rows)
		}
	}

	excess := make([][]float64, rows)
	for t := 0; t < rows; t++ {
		excess[t] = make([]float64, cfg.NumRisky())
		for i := range perAsset {
			excess[t][i] = perAsset[i][t]
		}
	}

	return excess, nil
}
