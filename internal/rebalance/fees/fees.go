package fees

// FeeModel computes the trading fee in USD for a fill of the given absolute
// notional value.
type FeeModel interface {
	Calculate(notional float64) float64
}

type Venue string

const (
	VenueCoinbase Venue = "coinbase"
	VenueZero     Venue = "zero_fee"
)

var AllVenues = []any{
	VenueCoinbase,
	VenueZero,
}

// GetFeeModel returns the fee model for a venue. Coinbase uses the supplied
// maker/taker tiers; unknown venues fall back to zero fees.
func GetFeeModel(venue Venue, makerRate, takerRate float64, postOnly bool) FeeModel {
	switch venue {
	case VenueCoinbase:
		return NewMakerTakerFeeModel(makerRate, takerRate, postOnly)
	case VenueZero:
		return NewZeroFeeModel()
	default:
		return NewZeroFeeModel()
	}
}
