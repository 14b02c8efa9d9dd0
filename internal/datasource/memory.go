package datasource

import (
	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
	"github.com/jhd66g/coinbase-systematic-trader/pkg/errors"
)

// MemoryDataSource serves a pre-built history. Used by tests and by callers
// that fetched prices through an external collaborator.
type MemoryDataSource struct {
	history types.PriceHistory
}

func NewMemoryDataSource(history types.PriceHistory) *MemoryDataSource {
	return &MemoryDataSource{history: history}
}

// Load implements DataSource.
func (m *MemoryDataSource) Load(symbols []string) (types.PriceHistory, error) {
	history := make(types.PriceHistory, len(symbols))

	for _, symbol := range symbols {
		series, ok := m.history[symbol]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeDataNotFound, "no history for %s", symbol)
		}

		if err := series.Validate(symbol); err != nil {
			return nil, err
		}

		history[symbol] = series
	}

	return history, nil
}

// Close implements DataSource.
func (m *MemoryDataSource) Close() error {
	return nil
}
