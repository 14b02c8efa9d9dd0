package fees

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type FeeModelTestSuite struct {
	suite.Suite
}

func TestFeeModelSuite(t *testing.T) {
	suite.Run(t, new(FeeModelTestSuite))
}

func (suite *FeeModelTestSuite) TestZeroFee() {
	fee := NewZeroFeeModel()
	suite.NotNil(fee)

	tests := []struct {
		name     string
		notional float64
	}{
		{"zero notional", 0},
		{"small notional", 10},
		{"large notional", 100000},
		{"negative notional", -500},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(0.0, fee.Calculate(tc.notional))
		})
	}
}

func (suite *FeeModelTestSuite) TestMakerTakerFee() {
	tests := []struct {
		name     string
		postOnly bool
		notional float64
		expected float64
	}{
		{"taker buy", false, 1000, 12},
		{"taker sell uses absolute notional", false, -1000, 12},
		{"maker buy", true, 1000, 6},
		{"maker sell uses absolute notional", true, -1000, 6},
		{"zero notional", false, 0, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			fee := NewMakerTakerFeeModel(0.006, 0.012, tc.postOnly)
			suite.InDelta(tc.expected, fee.Calculate(tc.notional), 1e-12)
		})
	}
}

func (suite *FeeModelTestSuite) TestGetFeeModel() {
	coinbase := GetFeeModel(VenueCoinbase, 0.006, 0.012, false)
	suite.IsType(&MakerTakerFeeModel{}, coinbase)

	zero := GetFeeModel(VenueZero, 0.006, 0.012, false)
	suite.IsType(&ZeroFeeModel{}, zero)
	suite.Equal(0.0, zero.Calculate(1000))

	unknown := GetFeeModel(Venue("nyse"), 0.006, 0.012, false)
	suite.IsType(&ZeroFeeModel{}, unknown)
}

func (suite *FeeModelTestSuite) TestAllVenues() {
	suite.Contains(AllVenues, VenueCoinbase)
	suite.Contains(AllVenues, VenueZero)
}
