package fees

import "math"

// MakerTakerFeeModel charges a flat rate on notional: the maker rate when
// fills are modeled as resting post-only orders, the taker rate when they
// fall back to marketable fills.
type MakerTakerFeeModel struct {
	makerRate float64
	takerRate float64
	postOnly  bool
}

func NewMakerTakerFeeModel(makerRate, takerRate float64, postOnly bool) FeeModel {
	return &MakerTakerFeeModel{
		makerRate: makerRate,
		takerRate: takerRate,
		postOnly:  postOnly,
	}
}

func (m *MakerTakerFeeModel) Calculate(notional float64) float64 {
	rate := m.takerRate
	if m.postOnly {
		rate = m.makerRate
	}

	return math.Abs(notional) * rate
}
