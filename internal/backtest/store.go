package backtest

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/jhd66g/coinbase-systematic-trader/internal/logger"
	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

// ResultStore persists run summaries to DuckDB so sweep results can be
// compared across sessions. Pass ":memory:" as the path for an ephemeral
// store.
type ResultStore struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewResultStore opens the database at path and creates the schema.
func NewResultStore(path string, log *logger.Logger) (*ResultStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreOpenFailed, "failed to open result store", err)
	}

	store := &ResultStore{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := store.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return store, nil
}

func (s *ResultStore) initialize() error {
	// "window" is a reserved word in DuckDB, hence window_size.
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS run_summaries (
			id TEXT PRIMARY KEY,
			run_timestamp TIMESTAMP,
			window_size INTEGER,
			start_date TIMESTAMP,
			end_date TIMESTAMP,
			days INTEGER,
			initial_value DOUBLE,
			final_value DOUBLE,
			total_return DOUBLE,
			cagr DOUBLE,
			sharpe DOUBLE,
			max_drawdown DOUBLE,
			annualized_volatility DOUBLE,
			total_turnover DOUBLE,
			total_fees DOUBLE,
			total_slippage DOUBLE,
			rebalances INTEGER,
			failed BOOLEAN,
			failure_reason TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreQueryFailed, "failed to create run_summaries table", err)
	}

	return nil
}

// Save inserts one run summary.
func (s *ResultStore) Save(summary types.RunSummary) error {
	insertQuery := s.sq.
		Insert("run_summaries").
		Columns(
			"id", "run_timestamp", "window_size", "start_date", "end_date", "days",
			"initial_value", "final_value",
			"total_return", "cagr", "sharpe", "max_drawdown", "annualized_volatility",
			"total_turnover", "total_fees", "total_slippage", "rebalances",
			"failed", "failure_reason",
		).
		Values(
			summary.ID, summary.Timestamp, summary.Window,
			summary.StartDate, summary.EndDate, summary.Days,
			summary.InitialValue, summary.FinalValue,
			summary.Performance.TotalReturn, summary.Performance.CAGR,
			summary.Performance.Sharpe, summary.Performance.MaxDrawdown,
			summary.Performance.AnnualizedVolatility,
			summary.Performance.TotalTurnover, summary.Performance.TotalFees,
			summary.Performance.TotalSlippage, summary.Performance.Rebalances,
			summary.Failed, summary.FailureReason,
		).
		RunWith(s.db)

	if _, err := insertQuery.Exec(); err != nil {
		return errors.Wrapf(errors.ErrCodeStoreQueryFailed, err, "failed to save run %s", summary.ID)
	}

	s.logger.Debug("saved run summary",
		zap.String("id", summary.ID),
		zap.Int("window", summary.Window),
	)

	return nil
}

// ListByWindow returns all stored summaries ordered by window then recency.
func (s *ResultStore) ListByWindow() ([]types.RunSummary, error) {
	selectQuery := s.sq.
		Select(
			"id", "run_timestamp", "window_size", "start_date", "end_date", "days",
			"initial_value", "final_value",
			"total_return", "cagr", "sharpe", "max_drawdown", "annualized_volatility",
			"total_turnover", "total_fees", "total_slippage", "rebalances",
			"failed", "failure_reason",
		).
		From("run_summaries").
		OrderBy("window_size ASC", "run_timestamp DESC").
		RunWith(s.db)

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQueryFailed, "failed to query run summaries", err)
	}
	defer rows.Close()

	var summaries []types.RunSummary

	for rows.Next() {
		var summary types.RunSummary

		err := rows.Scan(
			&summary.ID,
			&summary.Timestamp,
			&summary.Window,
			&summary.StartDate,
			&summary.EndDate,
			&summary.Days,
			&summary.InitialValue,
			&summary.FinalValue,
			&summary.Performance.TotalReturn,
			&summary.Performance.CAGR,
			&summary.Performance.Sharpe,
			&summary.Performance.MaxDrawdown,
			&summary.Performance.AnnualizedVolatility,
			&summary.Performance.TotalTurnover,
			&summary.Performance.TotalFees,
			&summary.Performance.TotalSlippage,
			&summary.Performance.Rebalances,
			&summary.Failed,
			&summary.FailureReason,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreQueryFailed, "failed to scan run summary", err)
		}

		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQueryFailed, "failed to iterate run summaries", err)
	}

	return summaries, nil
}

// BestByMetric returns the window of the highest-Sharpe completed run, or an
// error when no completed runs exist.
func (s *ResultStore) BestByMetric() (types.RunSummary, error) {
	summaries, err := s.ListByWindow()
	if err != nil {
		return types.RunSummary{}, err
	}

	best := types.RunSummary{}
	found := false

	for _, summary := range summaries {
		if summary.Failed {
			continue
		}

		if !found || summary.Performance.Sharpe > best.Performance.Sharpe {
			best = summary
			found = true
		}
	}

	if !found {
		return types.RunSummary{}, errors.New(errors.ErrCodeStoreQueryFailed, "no completed runs stored")
	}

	return best, nil
}

// Close releases the underlying database handle.
func (s *ResultStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close result store: %w", err)
	}

	return nil
}
