package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/jhd66g/coinbase-systematic-trader/internal/backtest"
	"github.com/jhd66g/coinbase-systematic-trader/internal/config"
	"github.com/jhd66g/coinbase-systematic-trader/internal/datasource"
	"github.com/jhd66g/coinbase-systematic-trader/internal/logger"
	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
)

// backtestAction runs either a single backtest or a window sweep over daily
// close history loaded from CSV files.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	days := int(cmd.Int("days"))
	window := int(cmd.Int("window"))
	sweep := cmd.Bool("sweep")
	dataPath := cmd.String("data")
	configPath := cmd.String("config")
	resultsPath := cmd.String("results")
	outputPath := cmd.String("output")
	withBenchmarks := cmd.Bool("benchmarks")

	appLog, err := newLogger(cmd.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLog.Sync()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if window > 0 {
		cfg.LookbackWindow = window
		cfg.EWMAHalfLife = float64(window)
	}

	source := datasource.NewCSVDataSource(dataPath)
	defer source.Close()

	history, err := source.Load(cfg.Symbols())
	if err != nil {
		return fmt.Errorf("failed to load price history: %w", err)
	}

	history = boundHistory(cfg, history)

	store, err := backtest.NewResultStore(resultsPath, appLog)
	if err != nil {
		return err
	}
	defer store.Close()

	var summaries []types.RunSummary

	if sweep {
		summaries, err = runSweep(ctx, cfg, history, days, appLog)
	} else {
		summaries, err = runSingle(ctx, cfg, history, days, appLog)
	}

	if err != nil {
		return err
	}

	for _, summary := range summaries {
		if err := store.Save(summary); err != nil {
			return err
		}
	}

	printSummaryTable(summaries)

	if withBenchmarks {
		benchmarks, err := backtest.RunBenchmarks(cfg, history, days)
		if err != nil {
			return fmt.Errorf("failed to run benchmarks: %w", err)
		}

		printBenchmarkTable(benchmarks)
	}

	if outputPath != "" {
		if err := types.WriteRunSummaries(outputPath, summaries); err != nil {
			return err
		}

		fmt.Printf("\nWrote %d run summaries to %s\n", len(summaries), outputPath)
	}

	return nil
}

func runSingle(ctx context.Context, cfg config.Config, history types.PriceHistory, days int,
	log *logger.Logger) ([]types.RunSummary, error) {
	sim := backtest.NewSimulator(log)

	if err := sim.Initialize(cfg); err != nil {
		return nil, err
	}

	if err := sim.SetHistory(history); err != nil {
		return nil, err
	}

	bar := progressbar.Default(int64(days))
	bar.Describe(fmt.Sprintf("Backtesting window %d over %d days", cfg.LookbackWindow, days))

	onDay := backtest.OnDayCallback(func(day, totalDays int) error {
		return bar.Add(1)
	})

	summary, err := sim.Run(ctx, days, backtest.LifecycleCallbacks{OnDay: &onDay})
	if err != nil {
		return nil, err
	}

	return []types.RunSummary{summary}, nil
}

func runSweep(ctx context.Context, cfg config.Config, history types.PriceHistory, days int,
	log *logger.Logger) ([]types.RunSummary, error) {
	windows := backtest.DefaultSweepWindows

	bar := progressbar.Default(int64(days * len(windows)))
	bar.Describe(fmt.Sprintf("Sweeping windows %v over %d days", windows, days))

	onDay := backtest.OnDayCallback(func(day, totalDays int) error {
		return bar.Add(1)
	})

	results, err := backtest.Sweep(ctx, cfg, history, windows, days, log,
		backtest.LifecycleCallbacks{OnDay: &onDay})
	if err != nil {
		return nil, err
	}

	summaries := make([]types.RunSummary, 0, len(results))

	for _, result := range results {
		if result.Err != nil {
			fmt.Fprintf(os.Stderr, "window %d failed: %v\n", result.Window, result.Err)

			continue
		}

		summaries = append(summaries, result.Summary)
	}

	return summaries, nil
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	return config.Parse(content)
}

// boundHistory applies the configured start and end times to every series.
func boundHistory(cfg config.Config, history types.PriceHistory) types.PriceHistory {
	start, hasStart := cfg.StartTime.TakeOr(time.Time{}), cfg.StartTime.IsSome()
	end, hasEnd := cfg.EndTime.TakeOr(time.Time{}), cfg.EndTime.IsSome()

	if !hasStart && !hasEnd {
		return history
	}

	bounded := make(types.PriceHistory, len(history))

	for symbol, series := range history {
		kept := make(types.PriceSeries, 0, len(series))

		for _, candle := range series {
			if hasStart && candle.Time.Before(start) {
				continue
			}

			if hasEnd && candle.Time.After(end) {
				continue
			}

			kept = append(kept, candle)
		}

		bounded[symbol] = kept
	}

	return bounded
}

func printSummaryTable(summaries []types.RunSummary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "\nWINDOW\tRETURN\tCAGR\tSHARPE\tMAX DD\tVOL\tTURNOVER\tFEES\tREBALANCES")

	for _, s := range summaries {
		p := s.Performance
		fmt.Fprintf(w, "%d\t%.2f%%\t%.2f%%\t%.2f\t%.2f%%\t%.2f%%\t%.2f\t$%.2f\t%d\n",
			s.Window, p.TotalReturn*100, p.CAGR*100, p.Sharpe,
			p.MaxDrawdown*100, p.AnnualizedVolatility*100,
			p.TotalTurnover, p.TotalFees, p.Rebalances)
	}

	w.Flush()
}

func printBenchmarkTable(benchmarks []backtest.BenchmarkResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "\nBENCHMARK\tRETURN\tVOL\tSHARPE")

	for _, b := range benchmarks {
		fmt.Fprintf(w, "%s\t%.2f%%\t%.2f%%\t%.2f\n",
			b.Name, b.TotalReturn*100, b.AnnualizedVolatility*100, b.Sharpe)
	}

	w.Flush()
}

func newLogger(verbose bool) (*logger.Logger, error) {
	if verbose {
		return logger.NewDebugLogger()
	}

	return logger.NewLogger()
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Replay the allocation pipeline over historical daily closes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Directory holding one <SYMBOL>.csv file per asset",
				Value:   "data",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config; defaults to the built-in production parameters",
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "Number of trailing days to simulate",
				Value: 90,
			},
			&cli.IntFlag{
				Name:    "window",
				Aliases: []string{"w"},
				Usage:   "Override the lookback window (and EWMA half-life) in days",
			},
			&cli.BoolFlag{
				Name:  "sweep",
				Usage: "Run one backtest per standard window and compare",
			},
			&cli.StringFlag{
				Name:    "results",
				Aliases: []string{"r"},
				Usage:   "DuckDB file run summaries are persisted to",
				Value:   "results.duckdb",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Optional YAML file to write run summaries to",
			},
			&cli.BoolFlag{
				Name:  "benchmarks",
				Usage: "Also evaluate buy-and-hold and risk-free baselines",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
