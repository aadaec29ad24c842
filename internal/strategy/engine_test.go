package strategy

import (
	"math"
	"testing"
	"time"

	"TradePilot/internal/model"
)

func barsFromCloses(closes []float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: base.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1}
	}
	return bars
}

// fallingBars produce an RSI buy (0.8); risingBars with one dip produce an
// RSI sell (0.8).
func fallingBars(n int) []model.OHLCV {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 300 - float64(i)*2
	}
	return barsFromCloses(closes)
}

func risingBars(n int) []model.OHLCV {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)*2
	}
	// A single small dip inside the RSI window keeps the average loss
	// non-zero so RSI is defined (and overbought).
	closes[n-7] = closes[n-8] - 0.1
	return barsFromCloses(closes)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"rsi", KindRSI, false},
		{"sma", KindSMA, false},
		{"macd", KindMACD, false},
		{"bb", KindBollinger, false},
		{"bollinger", KindBollinger, false},
		{"momentum", KindMomentum, false},
		{"garbage", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseKind(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestAssignedDefaultsToRSI(t *testing.T) {
	e := NewEngine(DefaultFusionConfig())
	if k := e.Assigned("AAPL"); k != KindRSI {
		t.Errorf("expected default rsi, got %s", k)
	}
	e.SetStrategy("AAPL", KindMACD)
	if k := e.Assigned("AAPL"); k != KindMACD {
		t.Errorf("expected macd after assignment, got %s", k)
	}
}

func TestMultiTimeframe_EmptyInput(t *testing.T) {
	e := NewEngine(DefaultFusionConfig())
	sig := e.MultiTimeframeSignal("AAPL", nil)
	if sig.Direction != model.Hold || sig.Confidence != 0.5 || sig.Strategy != "multi_tf" {
		t.Errorf("expected (hold, 0.5, multi_tf), got (%s, %.2f, %s)",
			sig.Direction, sig.Confidence, sig.Strategy)
	}
}

func TestMultiTimeframe_SingleSeriesFallsBack(t *testing.T) {
	e := NewEngine(DefaultFusionConfig())
	data := map[model.Timeframe][]model.OHLCV{
		model.Timeframe1d: fallingBars(30),
	}
	sig := e.MultiTimeframeSignal("AAPL", data)
	if sig.Direction != model.Buy || sig.Strategy != "rsi" {
		t.Errorf("expected single-timeframe rsi buy, got (%s, %s)", sig.Direction, sig.Strategy)
	}
}

func TestMultiTimeframe_DisabledFallsBackToHeaviest(t *testing.T) {
	cfg := DefaultFusionConfig()
	cfg.MultiTimeframe = false
	e := NewEngine(cfg)
	data := map[model.Timeframe][]model.OHLCV{
		model.Timeframe1d: fallingBars(30), // buy
		model.Timeframe4h: risingBars(30),  // sell
	}
	sig := e.MultiTimeframeSignal("AAPL", data)
	if sig.Direction != model.Buy {
		t.Errorf("expected fallback to daily series (buy), got %s", sig.Direction)
	}
}

func TestMultiTimeframe_ConfirmedAgreement(t *testing.T) {
	e := NewEngine(DefaultFusionConfig())
	data := map[model.Timeframe][]model.OHLCV{
		model.Timeframe1d: fallingBars(30),
		model.Timeframe4h: fallingBars(30),
	}
	sig := e.MultiTimeframeSignal("AAPL", data)
	if sig.Direction != model.Buy {
		t.Fatalf("expected confirmed buy, got %s (%s)", sig.Direction, sig.Strategy)
	}
	if sig.Strategy != "multi_tf_rsi" {
		t.Errorf("expected strategy multi_tf_rsi, got %s", sig.Strategy)
	}
	// Both timeframes buy at 0.8: the fused score is 0.8, above the
	// consensus share, so the bonus applies. 0.8 + 0.1 = 0.9.
	if math.Abs(sig.Confidence-0.9) > 1e-9 {
		t.Errorf("expected confidence 0.9, got %.4f", sig.Confidence)
	}
}

func TestMultiTimeframe_DisagreementForcesHold(t *testing.T) {
	e := NewEngine(DefaultFusionConfig())
	data := map[model.Timeframe][]model.OHLCV{
		model.Timeframe1d: fallingBars(30), // buy
		model.Timeframe4h: risingBars(30),  // sell
	}
	sig := e.MultiTimeframeSignal("AAPL", data)
	if sig.Direction != model.Hold || sig.Confidence != 0.5 {
		t.Errorf("expected forced hold/0.5, got %s/%.2f", sig.Direction, sig.Confidence)
	}
	if sig.Strategy != "multi_tf_rsi_unconfirmed" {
		t.Errorf("expected unconfirmed label, got %s", sig.Strategy)
	}
}

func TestMultiTimeframe_GatePassesWithOneConfirmTimeframe(t *testing.T) {
	// Only 1d of the confirmation set is present: not enough data to
	// disagree, the gate passes and fusion runs over 1d+1h.
	e := NewEngine(DefaultFusionConfig())
	data := map[model.Timeframe][]model.OHLCV{
		model.Timeframe1d: fallingBars(30), // buy 0.8
		model.Timeframe1h: risingBars(30),  // sell 0.8
	}
	sig := e.MultiTimeframeSignal("AAPL", data)
	if sig.Strategy != "multi_tf_rsi" {
		t.Fatalf("expected gate to pass, got %s", sig.Strategy)
	}
	// Weights renormalize to 1d=5/7, 1h=2/7; buy bucket 0.5714 beats sell
	// bucket 0.2286 and stays below the consensus share.
	if sig.Direction != model.Buy {
		t.Errorf("expected buy to win fusion, got %s", sig.Direction)
	}
	want := 0.5 / 0.7 * 0.8
	if math.Abs(sig.Confidence-want) > 1e-9 {
		t.Errorf("expected confidence %.4f, got %.4f", want, sig.Confidence)
	}
}

func TestFuse_SpecScenario(t *testing.T) {
	// 1d=buy(0.8), 4h=buy(0.7), 1h absent: weights renormalize over 0.8.
	e := NewEngine(DefaultFusionConfig())
	signals := map[model.Timeframe]model.Signal{
		model.Timeframe1d: {Direction: model.Buy, Confidence: 0.8, Strategy: "rsi"},
		model.Timeframe4h: {Direction: model.Buy, Confidence: 0.7, Strategy: "rsi"},
	}
	dir, conf := e.fuse(signals)
	if dir != model.Buy {
		t.Fatalf("expected buy, got %s", dir)
	}
	// 0.625*0.8 + 0.375*0.7 = 0.7625, plus consensus bonus.
	want := 0.7625 + consensusBonus
	if math.Abs(conf-want) > 1e-9 {
		t.Errorf("expected confidence %.4f, got %.4f", want, conf)
	}
}

func TestFuse_TieBreakPrefersBuy(t *testing.T) {
	cfg := DefaultFusionConfig()
	cfg.Weights = map[model.Timeframe]float64{
		model.Timeframe1d: 0.5,
		model.Timeframe4h: 0.5,
	}
	e := NewEngine(cfg)
	signals := map[model.Timeframe]model.Signal{
		model.Timeframe1d: {Direction: model.Sell, Confidence: 0.6},
		model.Timeframe4h: {Direction: model.Buy, Confidence: 0.6},
	}
	for i := 0; i < 50; i++ {
		dir, _ := e.fuse(signals)
		if dir != model.Buy {
			t.Fatalf("tie-break must prefer buy over sell, got %s", dir)
		}
	}
}

func TestFuse_ConfidenceClipped(t *testing.T) {
	e := NewEngine(DefaultFusionConfig())
	signals := map[model.Timeframe]model.Signal{
		model.Timeframe1d: {Direction: model.Buy, Confidence: 1.0},
		model.Timeframe4h: {Direction: model.Buy, Confidence: 1.0},
		model.Timeframe1h: {Direction: model.Buy, Confidence: 1.0},
	}
	_, conf := e.fuse(signals)
	if conf > 1.0 {
		t.Errorf("confidence must be clipped to 1.0, got %.4f", conf)
	}
}

func TestMultiTimeframe_Idempotent(t *testing.T) {
	e := NewEngine(DefaultFusionConfig())
	data := map[model.Timeframe][]model.OHLCV{
		model.Timeframe1d: fallingBars(40),
		model.Timeframe4h: fallingBars(25),
		model.Timeframe1h: risingBars(25),
	}
	first := e.MultiTimeframeSignal("BTC/USDT", data)
	for i := 0; i < 10; i++ {
		again := e.MultiTimeframeSignal("BTC/USDT", data)
		if again != first {
			t.Fatalf("result changed between identical calls: %+v vs %+v", first, again)
		}
	}
}
