package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

type PriceSeriesTestSuite struct {
	suite.Suite
}

func TestPriceSeriesSuite(t *testing.T) {
	suite.Run(t, new(PriceSeriesTestSuite))
}

func (suite *PriceSeriesTestSuite) series(closes ...float64) PriceSeries {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(PriceSeries, len(closes))

	for i, c := range closes {
		s[i] = Candle{Time: start.AddDate(0, 0, i), Close: c}
	}

	return s
}

func (suite *PriceSeriesTestSuite) TestValidate() {
	suite.NoError(suite.series(100, 101, 99).Validate("BTC-USDC"))

	zero := suite.series(100, 0, 99)
	err := zero.Validate("BTC-USDC")
	suite.True(errors.HasCode(err, errors.ErrCodeNonPositivePrice))

	negative := suite.series(100, -5, 99)
	suite.True(errors.HasCode(negative.Validate("BTC-USDC"), errors.ErrCodeNonPositivePrice))
}

func (suite *PriceSeriesTestSuite) TestValidateOrdering() {
	s := suite.series(100, 101, 102)
	s[2].Time = s[1].Time

	err := s.Validate("ETH-USDC")
	suite.True(errors.HasCode(err, errors.ErrCodeUnorderedHistory))

	s[2].Time = s[0].Time
	suite.True(errors.HasCode(s.Validate("ETH-USDC"), errors.ErrCodeUnorderedHistory))
}

func (suite *PriceSeriesTestSuite) TestCloses() {
	suite.Equal([]float64{100, 101, 99}, suite.series(100, 101, 99).Closes())
	suite.Empty(PriceSeries{}.Closes())
}

func (suite *PriceSeriesTestSuite) TestLast() {
	suite.Equal(99.0, suite.series(100, 101, 99).Last().Close)
}

func (suite *PriceSeriesTestSuite) TestTail() {
	s := suite.series(1, 2, 3, 4, 5)

	suite.Equal([]float64{4, 5}, s.Tail(2).Closes())
	suite.Equal([]float64{1, 2, 3, 4, 5}, s.Tail(10).Closes())
	suite.Empty(s.Tail(0).Closes())
}
