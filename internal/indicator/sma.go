package indicator

import "TradePilot/internal/model"

const (
	smaShortPeriod = 10
	smaLongPeriod  = 30
)

// SMACrossover signals on the 10/30 simple moving average cross between the
// previous and current bar. Requires the long average at both bars, i.e.
// smaLongPeriod+1 bars of history.
func SMACrossover(bars []model.OHLCV) model.Signal {
	const name = "sma"
	closes := model.Closes(bars)
	if len(closes) < smaLongPeriod+1 {
		return model.HoldSignal(name)
	}

	last := len(closes) - 1
	shortNow := sma(closes, smaShortPeriod, last)
	shortPrev := sma(closes, smaShortPeriod, last-1)
	longNow := sma(closes, smaLongPeriod, last)
	longPrev := sma(closes, smaLongPeriod, last-1)
	if !finite(shortNow, shortPrev, longNow, longPrev) {
		return model.HoldSignal(name)
	}

	switch {
	case shortPrev < longPrev && shortNow > longNow:
		return signalFor(model.Buy, 0.75, name)
	case shortPrev > longPrev && shortNow < longNow:
		return signalFor(model.Sell, 0.75, name)
	default:
		return model.HoldSignal(name)
	}
}
