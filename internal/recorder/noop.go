package recorder

import "TradePilot/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordTrade(_ *model.TradeRecord) error   { return nil }
func (n *NoopRecorder) RecordReason(_ *model.ReasonRecord) error { return nil }
func (n *NoopRecorder) RecordEquity(_ float64) error             { return nil }
func (n *NoopRecorder) TradeHistory(_ int) ([]float64, error)    { return nil, nil }
func (n *NoopRecorder) TickerHistory() ([]TickerPnL, error)      { return nil, nil }
func (n *NoopRecorder) EquityCurve(_ int) ([]EquityPoint, error) { return nil, nil }
func (n *NoopRecorder) Close() error                             { return nil }
