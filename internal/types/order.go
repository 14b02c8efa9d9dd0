package types

import (
	"github.com/go-playground/validator/v10"

	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// AssetMeta is per-asset exchange metadata injected by the caller: the engine
// does not discover lot sizes, it is told them.
type AssetMeta struct {
	// Symbol is the product identifier, e.g. "BTC-USDC".
	Symbol string `yaml:"symbol" json:"symbol" validate:"required"`
	// MinNotional is the minimum order size in quote currency (USD). Orders
	// below it are dropped rather than submitted.
	MinNotional float64 `yaml:"min_notional" json:"min_notional" validate:"gte=0"`
	// StepSize is the quantity increment in asset-native units. Order
	// quantities are rounded toward zero to a multiple of it.
	StepSize float64 `yaml:"step_size" json:"step_size" validate:"gte=0"`
}

// Validate validates the AssetMeta struct.
func (a *AssetMeta) Validate() error {
	validate := validator.New()
	if err := validate.Struct(a); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidAsset, "invalid asset metadata", err)
	}

	return nil
}

// OrderDelta is one constraint-satisfying trade instruction emitted by the
// rebalancer. A collaborator translates it into a post-only limit order with
// TWAP slicing and a market fallback; the engine only guarantees the target
// delta is correct and cost-modeled at mid price plus slippage.
type OrderDelta struct {
	// Asset is the product being traded.
	Asset string `yaml:"asset" json:"asset"`
	// Side is BUY when the delta weight is positive, SELL when negative.
	Side OrderSide `yaml:"side" json:"side"`
	// DeltaWeight is the signed change in portfolio weight, post band filter
	// and turnover cap, pre rounding.
	DeltaWeight float64 `yaml:"delta_weight" json:"delta_weight"`
	// Quantity is the signed order size in asset-native units, rounded toward
	// zero to the asset's step increment.
	Quantity float64 `yaml:"quantity" json:"quantity"`
	// Notional is the signed dollar value of the rounded quantity at the
	// current price.
	Notional float64 `yaml:"notional" json:"notional"`
	// Price is the mid price the notional was computed at.
	Price float64 `yaml:"price" json:"price"`
}
