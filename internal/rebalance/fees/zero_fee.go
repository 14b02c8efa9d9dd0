package fees

// ZeroFeeModel implements FeeModel with zero fees.
type ZeroFeeModel struct{}

// NewZeroFeeModel creates a new zero fee model.
func NewZeroFeeModel() FeeModel {
	return &ZeroFeeModel{}
}

// Calculate returns 0 for any notional.
func (z *ZeroFeeModel) Calculate(notional float64) float64 {
	return 0.0
}
