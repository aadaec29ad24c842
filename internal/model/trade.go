package model

import "time"

// Position is one open holding. Quantity is signed: positive means long.
type Position struct {
	Ticker   string
	Quantity float64
	AvgPrice float64
}

// TradeRecord is one executed (or attempted) trade for the audit trail.
// PnL is the realized profit of the closing portion, zero for pure opens.
type TradeRecord struct {
	ID         string
	Time       time.Time
	Ticker     string
	Action     string
	Quantity   float64
	Price      float64
	Strategy   string
	Confidence float64
	PnL        float64
	Status     string
}

// ReasonRecord explains why a ticker was traded, held or skipped in a cycle.
type ReasonRecord struct {
	Time       time.Time
	Ticker     string
	Action     string
	Strategy   string
	Signal     string
	Sentiment  float64
	Regime     string
	Confidence float64
	Notes      string
}

// OrderStatus is the execution adapter's view of an order.
type OrderStatus string

const (
	// OrderFilled means the venue confirmed the fill; the ledger may be updated.
	OrderFilled OrderStatus = "FILLED"
	// OrderSubmitted means the order was sent but no fill is confirmed yet.
	OrderSubmitted OrderStatus = "SUBMITTED"
	// OrderRejected means the venue refused the order.
	OrderRejected OrderStatus = "REJECTED"
)

// OrderReceipt is returned by an execution adapter for a placed order.
type OrderReceipt struct {
	OrderID  string
	Ticker   string
	Side     Direction
	Quantity float64
	Price    float64
	Status   OrderStatus
	Venue    string
	Time     time.Time
}
