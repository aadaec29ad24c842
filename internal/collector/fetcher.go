package collector

import "TradePilot/internal/model"

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// Bars returns the bar series for a ticker at the given timeframe,
	// oldest first.
	Bars(ticker string, tf model.Timeframe) ([]model.OHLCV, error)
	Name() string
}
