package strategy

import (
	"sync"

	"TradePilot/internal/model"
)

// FusionConfig controls multi-timeframe signal fusion.
type FusionConfig struct {
	MultiTimeframe    bool
	Weights           map[model.Timeframe]float64
	ConfirmEnabled    bool
	ConfirmTimeframes []model.Timeframe
	ConfirmThreshold  float64
}

// DefaultFusionConfig returns the standard timeframe weighting and
// daily/4-hour confirmation gate.
func DefaultFusionConfig() FusionConfig {
	return FusionConfig{
		MultiTimeframe: true,
		Weights: map[model.Timeframe]float64{
			model.Timeframe1d: 0.5,
			model.Timeframe4h: 0.3,
			model.Timeframe1h: 0.2,
		},
		ConfirmEnabled:    true,
		ConfirmTimeframes: []model.Timeframe{model.Timeframe1d, model.Timeframe4h},
		ConfirmThreshold:  0.6,
	}
}

// defaultWeight applies to timeframes missing from the weight table.
const defaultWeight = 0.1

// consensusBonus is added to the fused confidence when the winning
// direction's normalized score clears this share of the vote.
const (
	consensusShare = 0.6
	consensusBonus = 0.1
)

// Engine stores the per-ticker strategy assignment and computes signals.
// The assignment is set externally (based on historical win rate); the
// engine only stores and applies the choice. Safe for concurrent use.
type Engine struct {
	mu       sync.RWMutex
	assigned map[string]Kind
	cfg      FusionConfig
}

// NewEngine creates an engine with the given fusion configuration.
func NewEngine(cfg FusionConfig) *Engine {
	return &Engine{assigned: make(map[string]Kind), cfg: cfg}
}

// SetStrategy assigns a strategy to a ticker.
func (e *Engine) SetStrategy(ticker string, kind Kind) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.assigned[ticker] = kind
}

// Assigned returns the ticker's strategy, defaulting to RSI.
func (e *Engine) Assigned(ticker string) Kind {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if k, ok := e.assigned[ticker]; ok {
		return k
	}
	return KindRSI
}

// Signal computes the single-timeframe signal for a ticker.
func (e *Engine) Signal(ticker string, bars []model.OHLCV) model.Signal {
	return e.Assigned(ticker).Compute(bars)
}

// MultiTimeframeSignal fuses per-timeframe signals into one decision.
// A confirmation gate across the configured confirmation timeframes runs
// before fusion: if at least two are present and their directional majority
// falls below the threshold, the result is forced to hold. Only timeframes
// with data participate; with a single usable series (or multi-timeframe
// mode off) this degrades to the single-timeframe signal.
func (e *Engine) MultiTimeframeSignal(ticker string, data map[model.Timeframe][]model.OHLCV) model.Signal {
	present := make(map[model.Timeframe][]model.OHLCV, len(data))
	for tf, bars := range data {
		if len(bars) > 0 {
			present[tf] = bars
		}
	}
	if len(present) == 0 {
		return model.HoldSignal("multi_tf")
	}
	if !e.cfg.MultiTimeframe || len(present) == 1 {
		return e.Signal(ticker, e.heaviestSeries(present))
	}

	base := string(e.Assigned(ticker))
	signals := make(map[model.Timeframe]model.Signal, len(present))
	for tf, bars := range present {
		signals[tf] = e.Signal(ticker, bars)
	}

	if e.unconfirmed(signals) {
		return model.Signal{
			Direction:  model.Hold,
			Confidence: 0.5,
			Strategy:   "multi_tf_" + base + "_unconfirmed",
		}
	}

	dir, confidence := e.fuse(signals)
	return model.Signal{Direction: dir, Confidence: confidence, Strategy: "multi_tf_" + base}
}

// heaviestSeries picks the highest-weighted available series for the
// single-timeframe fallback, so the fallback is deterministic.
func (e *Engine) heaviestSeries(present map[model.Timeframe][]model.OHLCV) []model.OHLCV {
	var best model.Timeframe
	bestW := -1.0
	for tf := range present {
		w := e.weight(tf)
		if w > bestW || (w == bestW && tf < best) {
			best, bestW = tf, w
		}
	}
	return present[best]
}

func (e *Engine) weight(tf model.Timeframe) float64 {
	if w, ok := e.cfg.Weights[tf]; ok {
		return w
	}
	return defaultWeight
}

// unconfirmed reports whether the confirmation timeframes disagree too much
// to allow a directional signal. The gate passes automatically when fewer
// than two confirmation timeframes have data.
func (e *Engine) unconfirmed(signals map[model.Timeframe]model.Signal) bool {
	if !e.cfg.ConfirmEnabled {
		return false
	}
	votes := make(map[model.Direction]int)
	total := 0
	for _, tf := range e.cfg.ConfirmTimeframes {
		if sig, ok := signals[tf]; ok {
			votes[sig.Direction]++
			total++
		}
	}
	if total < 2 {
		return false
	}
	top := 0
	for _, n := range votes {
		if n > top {
			top = n
		}
	}
	return float64(top)/float64(total) < e.cfg.ConfirmThreshold
}

// directionPriority breaks score ties deterministically: buy > sell > hold.
// The fusion itself is an accumulated map and map iteration order must not
// leak into the result.
var directionPriority = map[model.Direction]int{model.Buy: 2, model.Sell: 1, model.Hold: 0}

// fuse accumulates weight-normalized confidence per direction and returns
// the winning direction with its clipped score, plus a consensus bonus when
// the winner dominates.
func (e *Engine) fuse(signals map[model.Timeframe]model.Signal) (model.Direction, float64) {
	totalWeight := 0.0
	for tf := range signals {
		totalWeight += e.weight(tf)
	}

	buckets := make(map[model.Direction]float64)
	for tf, sig := range signals {
		buckets[sig.Direction] += e.weight(tf) / totalWeight * sig.Confidence
	}

	winner := model.Hold
	best := -1.0
	for _, dir := range []model.Direction{model.Buy, model.Sell, model.Hold} {
		score, ok := buckets[dir]
		if !ok {
			continue
		}
		if score > best || (score == best && directionPriority[dir] > directionPriority[winner]) {
			winner, best = dir, score
		}
	}

	confidence := best
	if confidence > 1 {
		confidence = 1
	}
	if best > consensusShare {
		confidence += consensusBonus
		if confidence > 1 {
			confidence = 1
		}
	}
	return winner, confidence
}
