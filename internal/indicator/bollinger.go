package indicator

import "TradePilot/internal/model"

const (
	bollingerPeriod = 20
	bollingerWidth  = 2.0
)

// Bollinger signals when the last close escapes the 20-period mean ± 2
// sample standard deviations.
func Bollinger(bars []model.OHLCV) model.Signal {
	const name = "bollinger"
	closes := model.Closes(bars)
	if len(closes) < bollingerPeriod {
		return model.HoldSignal(name)
	}

	window := closes[len(closes)-bollingerPeriod:]
	ma := mean(window)
	std := sampleStd(window)
	if !finite(ma, std) {
		return model.HoldSignal(name)
	}

	close := closes[len(closes)-1]
	switch {
	case close < ma-bollingerWidth*std:
		return signalFor(model.Buy, 0.6, name)
	case close > ma+bollingerWidth*std:
		return signalFor(model.Sell, 0.6, name)
	default:
		return model.HoldSignal(name)
	}
}
