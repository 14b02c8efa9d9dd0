package datasource

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

// CSVDataSource reads one file per asset from a directory: <SYMBOL>.csv with
// a "time,close" header, timestamps as YYYY-MM-DD or RFC3339.
type CSVDataSource struct {
	dir string
}

func NewCSVDataSource(dir string) *CSVDataSource {
	return &CSVDataSource{dir: dir}
}

// Load implements DataSource.
func (c *CSVDataSource) Load(symbols []string) (types.PriceHistory, error) {
	history := make(types.PriceHistory, len(symbols))

	for _, symbol := range symbols {
		series, err := c.loadOne(symbol)
		if err != nil {
			return nil, err
		}

		if err := series.Validate(symbol); err != nil {
			return nil, err
		}

		history[symbol] = series
	}

	return history, nil
}

// Close implements DataSource.
func (c *CSVDataSource) Close() error {
	return nil
}

func (c *CSVDataSource) loadOne(symbol string) (types.PriceSeries, error) {
	path := filepath.Join(c.dir, symbol+".csv")

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "no history file for %s", symbol)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read history for %s", symbol)
	}

	if len(records) < 2 {
		return nil, errors.Wrap(errors.ErrCodeInsufficientHistory, "history file too short",
			errors.NewInsufficientHistoryErrorf(2, len(records), symbol,
				"%s has %d rows including header", symbol, len(records)))
	}

	series := make(types.PriceSeries, 0, len(records)-1)

	// First row is the header.
	for i, record := range records[1:] {
		if len(record) < 2 {
			return nil, errors.Newf(errors.ErrCodeDataNotFound,
				"malformed row %d for %s: expected time,close", i+2, symbol)
		}

		ts, err := parseTime(record[0])
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err,
				"bad timestamp %q at row %d for %s", record[0], i+2, symbol)
		}

		close, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err,
				"bad close %q at row %d for %s", record[1], i+2, symbol)
		}

		series = append(series, types.Candle{Time: ts, Close: close})
	}

	return series, nil
}

func parseTime(value string) (time.Time, error) {
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		return ts, nil
	}

	return time.Parse(time.RFC3339, value)
}
