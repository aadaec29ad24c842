// Package indicator provides the pure technical-indicator strategies.
// Every function takes a bar series and returns a trade signal; an
// indicator that lacks lookback history or hits non-finite arithmetic
// fails safe to hold with 0.5 confidence rather than erroring.
package indicator

import (
	"math"

	"TradePilot/internal/model"
)

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStd is the n-1 denominator standard deviation.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

// sma returns the simple moving average of the `period` values ending at
// index `end` (inclusive). NaN when not enough history.
func sma(closes []float64, period, end int) float64 {
	start := end - period + 1
	if period <= 0 || start < 0 || end >= len(closes) {
		return math.NaN()
	}
	return mean(closes[start : end+1])
}

// emaSeries computes an exponential moving average seeded at the first
// value, with smoothing k = 2/(span+1).
func emaSeries(values []float64, span int) []float64 {
	if len(values) == 0 {
		return nil
	}
	k := 2.0 / float64(span+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func signalFor(dir model.Direction, confidence float64, strategy string) model.Signal {
	return model.Signal{Direction: dir, Confidence: confidence, Strategy: strategy}
}
