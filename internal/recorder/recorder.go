package recorder

import (
	"time"

	"TradePilot/internal/model"
)

// EquityPoint is one sampled portfolio value on the equity curve.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// TickerPnL aggregates realized PnL per ticker, for alpha ranking.
type TickerPnL struct {
	Ticker string
	PnLs   []float64
}

// Recorder persists trades, decision reasoning and equity for analysis.
type Recorder interface {
	RecordTrade(rec *model.TradeRecord) error
	RecordReason(rec *model.ReasonRecord) error
	RecordEquity(equity float64) error

	// TradeHistory returns the realized PnLs of the most recent filled
	// trades, oldest first. Feeds Kelly sizing.
	TradeHistory(limit int) ([]float64, error)
	// TickerHistory groups realized PnLs of filled trades by ticker.
	TickerHistory() ([]TickerPnL, error)
	// EquityCurve returns recorded equity points, oldest first.
	EquityCurve(limit int) ([]EquityPoint, error)

	Close() error
}
