package indicator

import "TradePilot/internal/model"

const (
	macdFastSpan   = 12
	macdSlowSpan   = 26
	macdSignalSpan = 9
)

// MACD signals on the MACD line (EMA12−EMA26) crossing its 9-period signal
// line between the previous and current bar.
func MACD(bars []model.OHLCV) model.Signal {
	const name = "macd"
	closes := model.Closes(bars)
	if len(closes) < 2 {
		return model.HoldSignal(name)
	}

	fast := emaSeries(closes, macdFastSpan)
	slow := emaSeries(closes, macdSlowSpan)
	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = fast[i] - slow[i]
	}
	signal := emaSeries(macd, macdSignalSpan)

	last := len(closes) - 1
	if !finite(macd[last], macd[last-1], signal[last], signal[last-1]) {
		return model.HoldSignal(name)
	}

	switch {
	case macd[last] > signal[last] && macd[last-1] <= signal[last-1]:
		return signalFor(model.Buy, 0.7, name)
	case macd[last] < signal[last] && macd[last-1] >= signal[last-1]:
		return signalFor(model.Sell, 0.7, name)
	default:
		return model.HoldSignal(name)
	}
}
