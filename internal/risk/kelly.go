package risk

import "math"

const (
	// kellyCap is the quarter-Kelly safety ceiling.
	kellyCap = 0.25
	// kellyMinSample is the trade count below which the estimate is not
	// trusted at all.
	kellyMinSample = 10
	// kellySmallSampleFraction is returned for windows under the minimum.
	kellySmallSampleFraction = 0.05
	// kellyNoLossFraction is returned when the window has no losing trade:
	// a perfect small record is distrusted rather than extrapolated.
	kellyNoLossFraction = 0.1
)

// Fraction estimates the Kelly bet fraction from realized per-trade PnL,
// most-recent-last, over at most `lookback` trades. The result is always in
// [0, kellyCap] for any input.
func Fraction(pnls []float64, lookback int) float64 {
	if lookback > 0 && len(pnls) > lookback {
		pnls = pnls[len(pnls)-lookback:]
	}
	if len(pnls) < kellyMinSample {
		return kellySmallSampleFraction
	}

	var wins, losses int
	var sumWin, sumLoss float64
	for _, pnl := range pnls {
		switch {
		case pnl > 0:
			wins++
			sumWin += pnl
		case pnl < 0:
			losses++
			sumLoss += -pnl
		}
	}
	if losses == 0 {
		return kellyNoLossFraction
	}
	if wins == 0 {
		return 0
	}

	p := float64(wins) / float64(wins+losses)
	b := (sumWin / float64(wins)) / (sumLoss / float64(losses))
	k := (p*b - (1 - p)) / b
	return math.Min(math.Max(k, 0), kellyCap)
}
