package strategy

import (
	"fmt"

	"TradePilot/internal/indicator"
	"TradePilot/internal/model"
)

// Kind identifies one of the fixed indicator strategies.
type Kind string

const (
	KindRSI       Kind = "rsi"
	KindSMA       Kind = "sma"
	KindMACD      Kind = "macd"
	KindBollinger Kind = "bollinger"
	KindMomentum  Kind = "momentum"
)

// Kinds lists every available strategy in a stable order.
func Kinds() []Kind {
	return []Kind{KindRSI, KindSMA, KindMACD, KindBollinger, KindMomentum}
}

// ParseKind maps a config string to a strategy kind. Unknown names are an
// error rather than a silent fallback.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "rsi":
		return KindRSI, nil
	case "sma":
		return KindSMA, nil
	case "macd":
		return KindMACD, nil
	case "bollinger", "bb":
		return KindBollinger, nil
	case "momentum":
		return KindMomentum, nil
	default:
		return "", fmt.Errorf("unknown strategy %q", s)
	}
}

// Compute evaluates the strategy against a bar series.
func (k Kind) Compute(bars []model.OHLCV) model.Signal {
	switch k {
	case KindSMA:
		return indicator.SMACrossover(bars)
	case KindMACD:
		return indicator.MACD(bars)
	case KindBollinger:
		return indicator.Bollinger(bars)
	case KindMomentum:
		return indicator.Momentum(bars)
	default:
		return indicator.RSI(bars)
	}
}
