package model

// Direction is the action a signal recommends.
type Direction string

const (
	Buy  Direction = "buy"
	Sell Direction = "sell"
	Hold Direction = "hold"
)

// Signal is the output of a single strategy evaluation.
type Signal struct {
	Direction  Direction
	Confidence float64 // 0.0 ~ 1.0
	Strategy   string
}

// HoldSignal is the fail-safe result for indeterminate indicators.
func HoldSignal(strategy string) Signal {
	return Signal{Direction: Hold, Confidence: 0.5, Strategy: strategy}
}

// RiskParams is the sizing decision produced per ticker per cycle.
type RiskParams struct {
	Size          int
	StopLoss      float64
	TakeProfit    float64
	Allocation    float64
	KellyFraction float64 // 0 when Kelly sizing is disabled
	KellyApplied  bool
	Blocked       bool
	BlockReason   string
}
