package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Closes extracts the closing prices from a bar series in order.
func Closes(bars []OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// AssetClass determines which allocation, stop and data-source defaults apply.
type AssetClass string

const (
	AssetStock  AssetClass = "stock"
	AssetCrypto AssetClass = "crypto"
)

// Asset is one tradeable instrument in the discovered universe.
type Asset struct {
	Ticker string
	Class  AssetClass
}

// Timeframe identifies a bar interval.
type Timeframe string

const (
	Timeframe1d Timeframe = "1d"
	Timeframe4h Timeframe = "4h"
	Timeframe1h Timeframe = "1h"
)
