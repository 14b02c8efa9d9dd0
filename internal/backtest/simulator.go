package backtest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jhd66g/coinbase-systematic-trader/internal/config"
	"github.com/jhd66g/coinbase-systematic-trader/internal/logger"
	"github.com/jhd66g/coinbase-systematic-trader/internal/optimizer"
	"github.com/jhd66g/coinbase-systematic-trader/internal/rebalance"
	"github.com/jhd66g/coinbase-systematic-trader/internal/rebalance/fees"
	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

// Simulator replays the allocation pipeline day by day. It exclusively owns
// one PortfolioState per run; every pipeline stage it calls is a pure
// function, so independent simulators can run concurrently over the same
// read-only history.
type Simulator struct {
	cfg       config.Config
	history   types.PriceHistory
	log       *logger.Logger
	state     RunState
	portfolio *types.PortfolioState
	feeModel  fees.FeeModel
	dates     []time.Time
}

// NewSimulator creates an idle simulator.
func NewSimulator(log *logger.Logger) *Simulator {
	return &Simulator{
		cfg:       config.Config{},
		history:   nil,
		log:       log,
		state:     StateIdle,
		portfolio: nil,
		feeModel:  nil,
		dates:     nil,
	}
}

// Initialize implements Engine.
func (s *Simulator) Initialize(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.cfg = cfg
	s.feeModel = fees.GetFeeModel(fees.VenueCoinbase, cfg.MakerFeeRate, cfg.TakerFeeRate, cfg.PostOnly)
	s.state = StateIdle

	return nil
}

// SetHistory implements Engine. Every configured asset must be present and
// all series must share identical timestamps.
func (s *Simulator) SetHistory(history types.PriceHistory) error {
	var reference types.PriceSeries

	for _, asset := range s.cfg.Assets {
		series, ok := history[asset.Symbol]
		if !ok {
			return errors.Newf(errors.ErrCodeDataNotFound, "no history for %s", asset.Symbol)
		}

		if err := series.Validate(asset.Symbol); err != nil {
			return err
		}

		if reference == nil {
			reference = series

			continue
		}

		if len(series) != len(reference) {
			return errors.Newf(errors.ErrCodeMisalignedHistory,
				"%s has %d candles, expected %d", asset.Symbol, len(series), len(reference))
		}

		for i := range series {
			if !series[i].Time.Equal(reference[i].Time) {
				return errors.Newf(errors.ErrCodeMisalignedHistory,
					"%s timestamp mismatch at index %d", asset.Symbol, i)
			}
		}
	}

	s.history = history
	s.dates = make([]time.Time, len(reference))

	for i, c := range reference {
		s.dates[i] = c.Time
	}

	return nil
}

// State implements Engine.
func (s *Simulator) State() RunState {
	return s.state
}

// Run implements Engine. Each daily step slices the trailing lookback
// window, optimizes, builds the constrained trade plan, nets out costs, and
// mutates the portfolio state; the loop is strictly sequential because every
// day depends on the prior day's state.
func (s *Simulator) Run(ctx context.Context, days int, callbacks LifecycleCallbacks) (types.RunSummary, error) {
	if s.state != StateIdle {
		return types.RunSummary{}, errors.Newf(errors.ErrCodeBacktestNotIdle, "simulator is %s", s.state)
	}

	if s.history == nil {
		return types.RunSummary{}, errors.New(errors.ErrCodeBacktestNoHistory, "no history set")
	}

	required := s.cfg.LookbackWindow + days
	if len(s.dates) < required {
		return types.RunSummary{}, errors.Wrap(errors.ErrCodeBacktestNoHistory, "not enough history for run",
			errors.NewInsufficientHistoryErrorf(required, len(s.dates), "",
				"need %d days (window %d + days %d), have %d",
				required, s.cfg.LookbackWindow, days, len(s.dates)))
	}

	runID := uuid.New().String()
	s.state = StateRunning
	s.portfolio = types.NewPortfolioState(s.cfg.NumRisky(), s.cfg.InitialCapital)

	var runErr error

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(runID, s.cfg.LookbackWindow, days); err != nil {
			s.state = StateFailed

			return types.RunSummary{}, errors.Wrap(errors.ErrCodeBacktestAborted, "run start callback failed", err)
		}
	}

	firstDay := len(s.dates) - days
	rfDaily := optimizer.RiskFreeDailyRate(s.cfg.CashAPY)

	for day := 0; day < days; day++ {
		if err := ctx.Err(); err != nil {
			runErr = errors.Wrapf(errors.ErrCodeBacktestAborted, err, "run aborted at day %d", day)

			break
		}

		t := firstDay + day
		if err := s.step(t, rfDaily); err != nil {
			runErr = errors.Wrapf(errors.ErrCodeBacktestDayFailed, err,
				"day %d (%s) failed", day, s.dates[t].Format("2006-01-02"))

			break
		}

		if callbacks.OnDay != nil {
			if err := (*callbacks.OnDay)(day+1, days); err != nil {
				runErr = errors.Wrap(errors.ErrCodeBacktestAborted, "day callback failed", err)

				break
			}
		}
	}

	if runErr != nil {
		s.state = StateFailed
	} else {
		s.state = StateCompleted
	}

	summary := s.buildSummary(runID, days, runErr)

	if callbacks.OnRunEnd != nil {
		(*callbacks.OnRunEnd)(runID, summary, runErr)
	}

	return summary, runErr
}

// step simulates one day: optimize on the window ending at date index t,
// constrain the deltas, charge costs against the prior-day weights with the
// day's realized returns, then apply the surviving deltas.
func (s *Simulator) step(t int, rfDaily float64) error {
	window := make(types.PriceHistory, s.cfg.NumRisky())
	prices := make(map[string]float64, s.cfg.NumRisky())
	assetReturns := make([]float64, s.cfg.NumRisky())

	for i, asset := range s.cfg.Assets {
		series := s.history[asset.Symbol]
		window[asset.Symbol] = series[:t+1].Tail(s.cfg.LookbackWindow)

		today := series[t].Close
		yesterday := series[t-1].Close
		prices[asset.Symbol] = today
		assetReturns[i] = today/yesterday - 1
	}

	result, err := optimizer.Optimize(s.cfg, window)
	if err != nil {
		if errors.IsInsufficientHistoryError(err) {
			// Not enough observations for today's decision: hold weights,
			// accrue the day's return untraded.
			s.log.Warn("skipping rebalance",
				zap.String("date", s.dates[t].Format("2006-01-02")),
				zap.Error(err),
			)

			cost := rebalance.DailyCost(nil, s.feeModel, s.cfg.SlippageRate,
				s.portfolio.Weights, assetReturns, rfDaily, s.portfolio.Value)
			s.portfolio.ApplyReturn(cost.NetReturn)

			return nil
		}

		return err
	}

	plan, err := rebalance.BuildPlan(s.cfg, result.Target, s.portfolio.Weights, prices, s.portfolio.Value)
	if err != nil {
		return err
	}

	cost := rebalance.DailyCost(plan.Orders, s.feeModel, s.cfg.SlippageRate,
		s.portfolio.Weights, assetReturns, rfDaily, s.portfolio.Value)

	s.portfolio.ApplyReturn(cost.NetReturn)
	s.portfolio.TotalFees += cost.Fees
	s.portfolio.TotalSlippage += cost.Slippage

	if len(plan.Orders) > 0 {
		for i := range s.portfolio.Weights.Risky {
			s.portfolio.Weights.Risky[i] += plan.Deltas.Risky[i]
		}

		s.portfolio.Weights.Cash += plan.Deltas.Cash
		s.portfolio.TotalTurnover += plan.Turnover
		s.portfolio.Rebalances++
	}

	return nil
}

func (s *Simulator) buildSummary(runID string, days int, runErr error) types.RunSummary {
	finalWeights := make(map[string]float64, s.cfg.NumRisky())
	for i, asset := range s.cfg.Assets {
		finalWeights[asset.Symbol] = s.portfolio.Weights.Risky[i]
	}

	summary := types.RunSummary{
		ID:              runID,
		Timestamp:       time.Now().UTC(),
		Window:          s.cfg.LookbackWindow,
		StartDate:       s.dates[len(s.dates)-days],
		EndDate:         s.dates[len(s.dates)-1],
		Days:            days,
		InitialValue:    s.portfolio.InitialValue,
		FinalValue:      s.portfolio.Value,
		Performance:     Summarize(s.portfolio, optimizer.RiskFreeDailyRate(s.cfg.CashAPY)),
		FinalWeights:    finalWeights,
		FinalCashWeight: s.portfolio.Weights.Cash,
		Failed:          runErr != nil,
		FailureReason:   "",
	}

	if runErr != nil {
		summary.FailureReason = runErr.Error()
	}

	return summary
}
