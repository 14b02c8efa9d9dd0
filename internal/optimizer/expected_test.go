package optimizer

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

type ExpectedReturnsTestSuite struct {
	suite.Suite
}

func TestExpectedReturnsSuite(t *testing.T) {
	suite.Run(t, new(ExpectedReturnsTestSuite))
}

func (suite *ExpectedReturnsTestSuite) TestSumsWindowAndShrinks() {
	excess := [][]float64{
		{0.01, -0.01},
		{0.02, 0.01},
		{0.03, 0.02},
	}

	mu, err := ExpectedReturns(excess, 2, 0.1)
	suite.Require().NoError(err)

	// Last two rows only, scaled by the shrinkage factor.
	suite.InDelta(0.1*(0.02+0.03), mu[0], 1e-12)
	suite.InDelta(0.1*(0.01+0.02), mu[1], 1e-12)
}

func (suite *ExpectedReturnsTestSuite) TestPartialWindow() {
	// Fewer observations than the window sums what is available rather
	// than failing: 59 returns still feed a 60-day window.
	excess := [][]float64{
		{0.01},
		{0.02},
	}

	mu, err := ExpectedReturns(excess, 60, 0.1)
	suite.Require().NoError(err)
	suite.InDelta(0.1*0.03, mu[0], 1e-12)
}

func (suite *ExpectedReturnsTestSuite) TestEmptyInput() {
	_, err := ExpectedReturns(nil, 60, 0.1)
	suite.True(errors.HasCode(err, errors.ErrCodeInsufficientHistory))
}

func (suite *ExpectedReturnsTestSuite) TestMisalignedRows() {
	excess := [][]float64{
		{0.01, 0.02},
		{0.01},
	}

	_, err := ExpectedReturns(excess, 60, 0.1)
	suite.True(errors.HasCode(err, errors.ErrCodeMisalignedHistory))
}

func (suite *ExpectedReturnsTestSuite) TestZeroShrinkageKillsSignal() {
	excess := [][]float64{{0.05}, {0.05}}

	mu, err := ExpectedReturns(excess, 2, 0)
	suite.Require().NoError(err)
	suite.Equal(0.0, mu[0])
}
