package indicator

import "TradePilot/internal/model"

const (
	rsiPeriod     = 14
	rsiOversold   = 30.0
	rsiOverbought = 70.0
)

// RSI computes the 14-period relative strength index from the rolling mean
// of gains and losses. Buy below 30, sell above 70. Requires period+1 bars.
func RSI(bars []model.OHLCV) model.Signal {
	const name = "rsi"
	closes := model.Closes(bars)
	if len(closes) < rsiPeriod+1 {
		return model.HoldSignal(name)
	}

	var avgGain, avgLoss float64
	for i := len(closes) - rsiPeriod; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= rsiPeriod
	avgLoss /= rsiPeriod

	// Zero average loss leaves RS undefined; treat as indeterminate.
	if avgLoss == 0 || !finite(avgGain, avgLoss) {
		return model.HoldSignal(name)
	}

	rsi := 100.0 - 100.0/(1.0+avgGain/avgLoss)
	switch {
	case rsi < rsiOversold:
		return signalFor(model.Buy, 0.8, name)
	case rsi > rsiOverbought:
		return signalFor(model.Sell, 0.8, name)
	default:
		return model.HoldSignal(name)
	}
}
