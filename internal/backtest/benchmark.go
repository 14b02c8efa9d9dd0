package backtest

import (
	"fmt"
	"math"

	"github.com/jhd66g/coinbase-systematic-trader/internal/config"
	"github.com/jhd66g/coinbase-systematic-trader/internal/optimizer"
	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

// BenchmarkResult is the outcome of one passive reference portfolio over the
// same period as a backtest run.
type BenchmarkResult struct {
	Name                 string  `yaml:"name" json:"name"`
	InitialValue         float64 `yaml:"initial_value" json:"initial_value"`
	FinalValue           float64 `yaml:"final_value" json:"final_value"`
	TotalReturn          float64 `yaml:"total_return" json:"total_return"`
	AnnualizedVolatility float64 `yaml:"annualized_volatility" json:"annualized_volatility"`
	Sharpe               float64 `yaml:"sharpe" json:"sharpe"`
}

// RunBenchmarks evaluates the passive baselines over the final days of the
// history: equal-weight buy-and-hold across all assets plus cash, one
// buy-and-hold portfolio per single asset, and pure cash at the risk-free
// rate.
func RunBenchmarks(cfg config.Config, history types.PriceHistory, days int) ([]BenchmarkResult, error) {
	for _, asset := range cfg.Assets {
		series, ok := history[asset.Symbol]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeDataNotFound, "no history for %s", asset.Symbol)
		}

		if len(series) < days+1 {
			return nil, errors.NewInsufficientHistoryErrorf(days+1, len(series), asset.Symbol,
				"benchmark needs %d candles for %s, have %d", days+1, asset.Symbol, len(series))
		}
	}

	rfDaily := optimizer.RiskFreeDailyRate(cfg.CashAPY)
	results := make([]BenchmarkResult, 0, cfg.NumRisky()+2)

	results = append(results, equalWeightBenchmark(cfg, history, days, rfDaily))

	for _, asset := range cfg.Assets {
		results = append(results, singleAssetBenchmark(asset.Symbol, history[asset.Symbol], days))
	}

	results = append(results, riskFreeBenchmark(cfg.InitialCapital, days, rfDaily))

	return results, nil
}

// equalWeightBenchmark splits capital evenly across every risky asset and
// cash, then holds without rebalancing. Holdings drift with price; the cash
// sleeve compounds at the daily risk-free rate.
func equalWeightBenchmark(cfg config.Config, history types.PriceHistory, days int, rfDaily float64) BenchmarkResult {
	numSleeves := cfg.NumRisky() + 1
	holdings := make([]float64, numSleeves)

	for i := range holdings {
		holdings[i] = cfg.InitialCapital / float64(numSleeves)
	}

	values := make([]float64, 0, days+1)
	values = append(values, cfg.InitialCapital)

	for day := 0; day < days; day++ {
		total := 0.0

		for i, asset := range cfg.Assets {
			series := history[asset.Symbol]
			t := len(series) - days + day
			holdings[i] *= series[t].Close / series[t-1].Close
			total += holdings[i]
		}

		holdings[numSleeves-1] *= 1 + rfDaily
		total += holdings[numSleeves-1]

		values = append(values, total)
	}

	return summarizeEquityCurve("equal_weight", values)
}

func singleAssetBenchmark(symbol string, series types.PriceSeries, days int) BenchmarkResult {
	values := make([]float64, 0, days+1)
	values = append(values, 1.0)

	for day := 0; day < days; day++ {
		t := len(series) - days + day
		values = append(values, values[len(values)-1]*series[t].Close/series[t-1].Close)
	}

	return summarizeEquityCurve(fmt.Sprintf("%s_only", symbol), values)
}

func riskFreeBenchmark(initialValue float64, days int, rfDaily float64) BenchmarkResult {
	final := initialValue * math.Pow(1+rfDaily, float64(days))

	return BenchmarkResult{
		Name:                 "risk_free",
		InitialValue:         initialValue,
		FinalValue:           final,
		TotalReturn:          (final - initialValue) / initialValue,
		AnnualizedVolatility: 0,
		Sharpe:               0,
	}
}

// summarizeEquityCurve derives return and risk stats from a value series
// using daily log returns.
func summarizeEquityCurve(name string, values []float64) BenchmarkResult {
	logReturns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		logReturns = append(logReturns, math.Log(values[i]/values[i-1]))
	}

	mean := 0.0
	for _, r := range logReturns {
		mean += r
	}

	if len(logReturns) > 0 {
		mean /= float64(len(logReturns))
	}

	variance := 0.0
	for _, r := range logReturns {
		d := r - mean
		variance += d * d
	}

	if len(logReturns) > 0 {
		variance /= float64(len(logReturns))
	}

	std := math.Sqrt(variance)

	result := BenchmarkResult{
		Name:                 name,
		InitialValue:         values[0],
		FinalValue:           values[len(values)-1],
		TotalReturn:          (values[len(values)-1] - values[0]) / values[0],
		AnnualizedVolatility: std * math.Sqrt(optimizer.DaysPerYear),
		Sharpe:               0,
	}

	if std > 0 {
		result.Sharpe = mean / std * math.Sqrt(optimizer.DaysPerYear)
	}

	return result
}
