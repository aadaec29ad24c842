package report

import (
	"math"
	"sort"

	"TradePilot/internal/recorder"
)

// Performance summarizes realized trading results.
type Performance struct {
	Sharpe      float64
	MaxDrawdown float64
	TotalPnL    float64
	Trades      int
}

// Evaluate computes an annualized Sharpe ratio and the maximum drawdown of
// the cumulative realized PnL series. Empty history yields zero metrics.
func Evaluate(pnls []float64) Performance {
	if len(pnls) == 0 {
		return Performance{}
	}

	var sum float64
	for _, p := range pnls {
		sum += p
	}
	mean := sum / float64(len(pnls))

	var variance float64
	for _, p := range pnls {
		d := p - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(pnls)))

	sharpe := math.Sqrt(252) * mean / (std + 1e-9)

	var cumulative, peak, maxDD float64
	for _, p := range pnls {
		cumulative += p
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDD {
			maxDD = dd
		}
	}

	return Performance{
		Sharpe:      sharpe,
		MaxDrawdown: maxDD,
		TotalPnL:    sum,
		Trades:      len(pnls),
	}
}

// AlphaScore is one ticker's risk-adjusted realized edge.
type AlphaScore struct {
	Ticker string
	Alpha  float64
}

// alphaOf is mean PnL over sample-std PnL. A degenerate std counts as 1 so
// a single profitable trade still ranks above a losing one.
func alphaOf(pnls []float64) float64 {
	var sum float64
	for _, p := range pnls {
		sum += p
	}
	mean := sum / float64(len(pnls))

	std := 1.0
	if n := len(pnls); n > 1 {
		var variance float64
		for _, p := range pnls {
			d := p - mean
			variance += d * d
		}
		if s := math.Sqrt(variance / float64(n-1)); s > 0 {
			std = s
		}
	}
	return mean / std
}

// RankAlpha scores each ticker's realized edge and returns tickers sorted by
// alpha, best first.
func RankAlpha(history []recorder.TickerPnL) []AlphaScore {
	scores := make([]AlphaScore, 0, len(history))
	for _, th := range history {
		if len(th.PnLs) == 0 {
			continue
		}
		scores = append(scores, AlphaScore{Ticker: th.Ticker, Alpha: alphaOf(th.PnLs)})
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Alpha > scores[j].Alpha })
	return scores
}

// Underperformers maps tickers with a negative alpha over at least minTrades
// realized trades to their score. Thin history is never penalized.
func Underperformers(history []recorder.TickerPnL, minTrades int) map[string]float64 {
	out := make(map[string]float64)
	for _, th := range history {
		if len(th.PnLs) < minTrades {
			continue
		}
		if alpha := alphaOf(th.PnLs); alpha < 0 {
			out[th.Ticker] = alpha
		}
	}
	return out
}

// TopTickers returns the best `limit` tickers by alpha. History for fewer
// tickers than the limit returns them all.
func TopTickers(history []recorder.TickerPnL, limit int) []string {
	ranked := RankAlpha(history)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]string, len(ranked))
	for i, s := range ranked {
		out[i] = s.Ticker
	}
	return out
}
