package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/jhd66g/coinbase-systematic-trader/internal/config"
	"github.com/jhd66g/coinbase-systematic-trader/internal/datasource"
	"github.com/jhd66g/coinbase-systematic-trader/internal/optimizer"
	"github.com/jhd66g/coinbase-systematic-trader/internal/rebalance"
	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
)

// allocation is the YAML document printed to stdout: the optimizer's target,
// the constrained trade plan against the supplied holdings, and the
// diagnostics a caller needs to sanity-check the result.
type allocation struct {
	Weights         map[string]float64 `yaml:"weights"`
	CashWeight      float64            `yaml:"cash_weight"`
	RiskyVolatility float64            `yaml:"risky_volatility"`
	Exposure        float64            `yaml:"exposure"`
	Turnover        float64            `yaml:"turnover"`
	Orders          []types.OrderDelta `yaml:"orders"`
}

// holdingsFile is the optional current-position input. Weights are keyed by
// symbol; cash is the remainder.
type holdingsFile struct {
	Weights map[string]float64 `yaml:"weights"`
}

func allocateAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("schema") {
		cfg := config.DefaultConfig()

		schema, err := cfg.GenerateSchemaJSON()
		if err != nil {
			return err
		}

		fmt.Println(schema)

		return nil
	}

	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	value := cmd.Float("value")
	if value <= 0 {
		value = cfg.InitialCapital
	}

	source := datasource.NewCSVDataSource(cmd.String("data"))
	defer source.Close()

	history, err := source.Load(cfg.Symbols())
	if err != nil {
		return fmt.Errorf("failed to load price history: %w", err)
	}

	result, err := optimizer.Optimize(cfg, history)
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	current, err := loadHoldings(cmd.String("holdings"), cfg)
	if err != nil {
		return err
	}

	prices := make(map[string]float64, cfg.NumRisky())
	for _, symbol := range cfg.Symbols() {
		prices[symbol] = history[symbol].Last().Close
	}

	plan, err := rebalance.BuildPlan(cfg, result.Target, current, prices, value)
	if err != nil {
		return fmt.Errorf("failed to build trade plan: %w", err)
	}

	out := allocation{
		Weights:         make(map[string]float64, cfg.NumRisky()),
		CashWeight:      result.Target.Cash,
		RiskyVolatility: result.RiskyVolatility,
		Exposure:        result.Exposure,
		Turnover:        plan.Turnover,
		Orders:          plan.Orders,
	}

	for i, symbol := range cfg.Symbols() {
		out.Weights[symbol] = result.Target.Risky[i]
	}

	encoded, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to encode allocation: %w", err)
	}

	fmt.Print(string(encoded))

	return nil
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

// loadHoldings reads current weights from a YAML file, defaulting to all
// cash when no file is given. Symbols missing from the file hold weight 0.
func loadHoldings(path string, cfg config.Config) (types.WeightVector, error) {
	current := types.AllCash(cfg.NumRisky())
	if path == "" {
		return current, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return types.WeightVector{}, fmt.Errorf("failed to read holdings: %w", err)
	}

	var holdings holdingsFile
	if err := yaml.Unmarshal(content, &holdings); err != nil {
		return types.WeightVector{}, fmt.Errorf("failed to parse holdings: %w", err)
	}

	riskySum := 0.0

	for i, symbol := range cfg.Symbols() {
		w := holdings.Weights[symbol]
		current.Risky[i] = w
		riskySum += w
	}

	current.Cash = 1 - riskySum

	return current, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "allocate",
		Usage: "Compute today's target allocation and the trades to reach it",
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
			&cli.FloatFlag{
				Name:  "value",
				Usage: "Current portfolio value in USD; defaults to the configured initial capital",
			},
			&cli.StringFlag{
				Name:  "holdings",
				Usage: "Optional YAML file with current weights; defaults to all cash",
			},
			&cli.BoolFlag{
				Name:  "schema",
				Usage: "Print the JSON schema of the config file and exit",
			},
		},
		Action: allocateAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
