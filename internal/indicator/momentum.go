package indicator

import "TradePilot/internal/model"

const (
	momentumPeriod    = 10
	momentumThreshold = 0.02
)

// Momentum signals on the 10-period percent change of the close exceeding
// ±2%.
func Momentum(bars []model.OHLCV) model.Signal {
	const name = "momentum"
	closes := model.Closes(bars)
	if len(closes) < momentumPeriod+1 {
		return model.HoldSignal(name)
	}

	base := closes[len(closes)-1-momentumPeriod]
	if base == 0 {
		return model.HoldSignal(name)
	}
	change := closes[len(closes)-1]/base - 1
	if !finite(change) {
		return model.HoldSignal(name)
	}

	switch {
	case change > momentumThreshold:
		return signalFor(model.Buy, 0.65, name)
	case change < -momentumThreshold:
		return signalFor(model.Sell, 0.65, name)
	default:
		return model.HoldSignal(name)
	}
}
