package report

import (
	"math"
	"testing"

	"TradePilot/internal/recorder"
)

func TestEvaluateEmptyHistory(t *testing.T) {
	perf := Evaluate(nil)
	if perf.Sharpe != 0 || perf.MaxDrawdown != 0 || perf.Trades != 0 {
		t.Errorf("expected zero metrics, got %+v", perf)
	}
}

func TestEvaluateSharpe(t *testing.T) {
	// mean 5, population std 5: sharpe ~ sqrt(252).
	pnls := []float64{0, 10, 0, 10}
	perf := Evaluate(pnls)

	want := math.Sqrt(252) * 5 / (5 + 1e-9)
	if math.Abs(perf.Sharpe-want) > 1e-6 {
		t.Errorf("Sharpe = %v, want %v", perf.Sharpe, want)
	}
	if perf.TotalPnL != 20 {
		t.Errorf("TotalPnL = %v, want 20", perf.TotalPnL)
	}
	if perf.Trades != 4 {
		t.Errorf("Trades = %v, want 4", perf.Trades)
	}
}

func TestEvaluateMaxDrawdown(t *testing.T) {
	// cumulative: 10, 30, 15, 5, 25 -> peak 30, trough 5, drawdown 25.
	pnls := []float64{10, 20, -15, -10, 20}
	perf := Evaluate(pnls)
	if perf.MaxDrawdown != 25 {
		t.Errorf("MaxDrawdown = %v, want 25", perf.MaxDrawdown)
	}
}

func TestEvaluateAllLosses(t *testing.T) {
	perf := Evaluate([]float64{-5, -5, -5})
	if perf.Sharpe >= 0 {
		t.Errorf("Sharpe = %v, want negative for losing history", perf.Sharpe)
	}
	if perf.MaxDrawdown != 15 {
		t.Errorf("MaxDrawdown = %v, want 15", perf.MaxDrawdown)
	}
}

func TestRankAlphaOrdersByRiskAdjustedEdge(t *testing.T) {
	history := []recorder.TickerPnL{
		{Ticker: "CHOPPY", PnLs: []float64{50, -48, 52, -47}},
		{Ticker: "STEADY", PnLs: []float64{5, 6, 5, 6}},
		{Ticker: "LOSER", PnLs: []float64{-5, -6, -5}},
	}
	ranked := RankAlpha(history)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(ranked))
	}
	if ranked[0].Ticker != "STEADY" {
		t.Errorf("best = %s, want STEADY (small but consistent wins)", ranked[0].Ticker)
	}
	if ranked[2].Ticker != "LOSER" {
		t.Errorf("worst = %s, want LOSER", ranked[2].Ticker)
	}
}

func TestRankAlphaSingleTradeUsesUnitStd(t *testing.T) {
	history := []recorder.TickerPnL{
		{Ticker: "WIN", PnLs: []float64{10}},
		{Ticker: "LOSS", PnLs: []float64{-10}},
	}
	ranked := RankAlpha(history)
	if ranked[0].Ticker != "WIN" || ranked[0].Alpha != 10 {
		t.Errorf("ranked[0] = %+v, want WIN with alpha 10", ranked[0])
	}
	if ranked[1].Alpha != -10 {
		t.Errorf("ranked[1] = %+v, want LOSS with alpha -10", ranked[1])
	}
}

func TestUnderperformersNeedHistory(t *testing.T) {
	history := []recorder.TickerPnL{
		{Ticker: "LOSER", PnLs: []float64{-5, -6, -7}},
		{Ticker: "UNLUCKY", PnLs: []float64{-5}},
		{Ticker: "WINNER", PnLs: []float64{4, 5, 6}},
	}
	losers := Underperformers(history, 3)
	if len(losers) != 1 {
		t.Fatalf("losers = %v, want only LOSER", losers)
	}
	if alpha, ok := losers["LOSER"]; !ok || alpha >= 0 {
		t.Errorf("losers[LOSER] = %v, %v, want a negative score", alpha, ok)
	}
}

func TestTopTickersLimits(t *testing.T) {
	history := []recorder.TickerPnL{
		{Ticker: "A", PnLs: []float64{1, 2}},
		{Ticker: "B", PnLs: []float64{10, 12}},
		{Ticker: "C", PnLs: []float64{-1, -2}},
	}
	top := TopTickers(history, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 tickers, got %v", top)
	}
	if top[0] != "B" {
		t.Errorf("top[0] = %s, want B", top[0])
	}
	if got := TopTickers(history, 0); len(got) != 3 {
		t.Errorf("limit 0 should return all, got %v", got)
	}
}
