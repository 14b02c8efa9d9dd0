// Package datasource loads daily price history for the engine. Network
// fetching is an external collaborator's job; these sources only read what
// was already persisted locally.
package datasource

import (
	"github.com/jhd66g/coinbase-systematic-trader/internal/types"
)

// DataSource supplies daily close history per asset.
type DataSource interface {
	// Load returns the full daily history for the given assets, each series
	// validated to be strictly increasing in time with positive closes.
	Load(symbols []string) (types.PriceHistory, error)
	// Close releases any underlying resources.
	Close() error
}
