package config

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"

	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

// Config is the immutable configuration value threaded explicitly through
// every component call. Nothing in the engine reads ambient state, which is
// what makes parallel sweep runs safe.
type Config struct {
	// Assets fixes the risky asset ordering used by every vector and matrix.
	Assets []types.AssetMeta `yaml:"assets" json:"assets" validate:"required,min=1,dive" jsonschema:"title=Assets,description=Risky assets in fixed ordering with exchange metadata"`
	// CashAPY is the annualized yield of the cash-equivalent sleeve.
	CashAPY float64 `yaml:"cash_apy" json:"cash_apy" validate:"gte=0" jsonschema:"title=Cash APY,description=Annualized yield of the cash-equivalent instrument"`
	// InitialCapital is the starting portfolio value in USD.
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital" validate:"gt=0" jsonschema:"title=Initial Capital,description=Starting capital in USD,minimum=0"`
	// LookbackWindow is the number of daily closes fed to the optimizer.
	LookbackWindow int `yaml:"lookback_window" json:"lookback_window" validate:"gte=2" jsonschema:"title=Lookback Window,description=Days of history used per optimization"`
	// EWMAHalfLife is the covariance decay half-life in days.
	EWMAHalfLife float64 `yaml:"ewma_half_life" json:"ewma_half_life" validate:"gt=0" jsonschema:"title=EWMA Half-Life,description=Half-life in days for covariance decay"`
	// RidgeEpsilon is added to the covariance diagonal to guarantee invertibility.
	RidgeEpsilon float64 `yaml:"ridge_epsilon" json:"ridge_epsilon" validate:"gt=0" jsonschema:"title=Ridge Epsilon,description=Diagonal regularization added to the covariance matrix"`
	// MomentumWindow is the lookback for the momentum sum.
	MomentumWindow int `yaml:"momentum_window" json:"momentum_window" validate:"gte=1" jsonschema:"title=Momentum Window,description=Days summed for the momentum signal"`
	// Shrinkage is the factor the momentum signal is scaled toward zero by.
	Shrinkage float64 `yaml:"shrinkage" json:"shrinkage" validate:"gt=0,lte=1" jsonschema:"title=Shrinkage,description=Momentum shrinkage factor in (0 1]"`
	// TargetVolatility is the annualized volatility target for the risky sleeve.
	TargetVolatility float64 `yaml:"target_volatility" json:"target_volatility" validate:"gt=0" jsonschema:"title=Target Volatility,description=Annualized volatility target"`
	// RebalanceBand zeroes per-asset deltas with magnitude at or below it.
	RebalanceBand float64 `yaml:"rebalance_band" json:"rebalance_band" validate:"gte=0" jsonschema:"title=Rebalance Band,description=No-trade band around target weights"`
	// TurnoverCap limits the per-day traded weight across risky assets.
	TurnoverCap float64 `yaml:"turnover_cap" json:"turnover_cap" validate:"gt=0" jsonschema:"title=Turnover Cap,description=Maximum aggregate traded weight per rebalance"`
	// MakerFeeRate and TakerFeeRate are the exchange fee tiers.
	MakerFeeRate float64 `yaml:"maker_fee_rate" json:"maker_fee_rate" validate:"gte=0" jsonschema:"title=Maker Fee Rate"`
	TakerFeeRate float64 `yaml:"taker_fee_rate" json:"taker_fee_rate" validate:"gte=0" jsonschema:"title=Taker Fee Rate"`
	// SlippageRate is the assumed slippage on every fill.
	SlippageRate float64 `yaml:"slippage_rate" json:"slippage_rate" validate:"gte=0" jsonschema:"title=Slippage Rate,description=Assumed slippage rate applied to every fill"`
	// PostOnly models fills as resting maker orders; when false every fill
	// pays the taker rate, matching a market-order fallback.
	PostOnly bool `yaml:"post_only" json:"post_only" jsonschema:"title=Post Only,description=Model fills at the maker rate rather than the taker rate"`
	// StartTime and EndTime optionally bound the backtest period.
	StartTime optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start of the backtest period"`
	EndTime   optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end of the backtest period"`
}

// UnmarshalYAML implements custom unmarshaling for Config so optional times
// can be given as plain timestamps or omitted.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain struct {
		Assets           []types.AssetMeta `yaml:"assets"`
		CashAPY          float64           `yaml:"cash_apy"`
		InitialCapital   float64           `yaml:"initial_capital"`
		LookbackWindow   int               `yaml:"lookback_window"`
		EWMAHalfLife     float64           `yaml:"ewma_half_life"`
		RidgeEpsilon     float64           `yaml:"ridge_epsilon"`
		MomentumWindow   int               `yaml:"momentum_window"`
		Shrinkage        float64           `yaml:"shrinkage"`
		TargetVolatility float64           `yaml:"target_volatility"`
		RebalanceBand    float64           `yaml:"rebalance_band"`
		TurnoverCap      float64           `yaml:"turnover_cap"`
		MakerFeeRate     float64           `yaml:"maker_fee_rate"`
		TakerFeeRate     float64           `yaml:"taker_fee_rate"`
		SlippageRate     float64           `yaml:"slippage_rate"`
		PostOnly         bool              `yaml:"post_only"`
		StartTime        *time.Time        `yaml:"start_time"`
		EndTime          *time.Time        `yaml:"end_time"`
	}

	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}

	c.Assets = p.Assets
	c.CashAPY = p.CashAPY
	c.InitialCapital = p.InitialCapital
	c.LookbackWindow = p.LookbackWindow
	c.EWMAHalfLife = p.EWMAHalfLife
	c.RidgeEpsilon = p.RidgeEpsilon
	c.MomentumWindow = p.MomentumWindow
	c.Shrinkage = p.Shrinkage
	c.TargetVolatility = p.TargetVolatility
	c.RebalanceBand = p.RebalanceBand
	c.TurnoverCap = p.TurnoverCap
	c.MakerFeeRate = p.MakerFeeRate
	c.TakerFeeRate = p.TakerFeeRate
	c.SlippageRate = p.SlippageRate
	c.PostOnly = p.PostOnly

	if p.StartTime != nil {
		c.StartTime = optional.Some(*p.StartTime)
	} else {
		c.StartTime = optional.None[time.Time]()
	}

	if p.EndTime != nil {
		c.EndTime = optional.Some(*p.EndTime)
	} else {
		c.EndTime = optional.None[time.Time]()
	}

	return nil
}

// Parse decodes and validates a YAML config.
func Parse(content []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration against its constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return nil
}

// Symbols returns the risky asset symbols in their fixed ordering.
func (c *Config) Symbols() []string {
	symbols := make([]string, len(c.Assets))
	for i, a := range c.Assets {
		symbols[i] = a.Symbol
	}

	return symbols
}

// NumRisky returns the number of risky assets.
func (c *Config) NumRisky() int {
	return len(c.Assets)
}

// GenerateSchema generates a JSON schema for the Config.
func (c *Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "portfolio-engine-config"
	schema.Description = "Configuration schema for the portfolio optimization and rebalancing engine"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates a JSON schema string for the Config.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(c.GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
