// Package risk sizes positions from a confidence-scaled allocation budget,
// optionally tightened by a Kelly fraction estimated from trade history and
// vetoed by price correlation against existing holdings.
package risk

import (
	"fmt"
	"math"

	"TradePilot/internal/model"
)

// ClassParams are the per-asset-class risk defaults.
type ClassParams struct {
	MaxAllocationPct float64
	StopPct          float64
	TakeProfitPct    float64
}

// Config controls the risk manager.
type Config struct {
	Classes             map[model.AssetClass]ClassParams
	KellyEnabled        bool
	KellyLookback       int
	CorrelationEnabled  bool
	CorrelationCap      float64
	CorrelationLookback int
}

// DefaultConfig returns the standard stock/crypto parameters.
func DefaultConfig() Config {
	return Config{
		Classes: map[model.AssetClass]ClassParams{
			model.AssetStock:  {MaxAllocationPct: 0.05, StopPct: 0.02, TakeProfitPct: 0.04},
			model.AssetCrypto: {MaxAllocationPct: 0.03, StopPct: 0.03, TakeProfitPct: 0.06},
		},
		KellyEnabled:        true,
		KellyLookback:       50,
		CorrelationEnabled:  true,
		CorrelationCap:      0.7,
		CorrelationLookback: 30,
	}
}

// CorrelationSource supplies recent closing prices for correlation checks.
// Implementations must be safe for concurrent use; an error means "no
// correlation evidence" and never blocks a trade.
type CorrelationSource interface {
	RecentCloses(ticker string, lookback int) ([]float64, error)
}

// Manager computes sizing decisions. Stateless apart from configuration.
type Manager struct {
	cfg  Config
	corr CorrelationSource
}

// New creates a Manager. corr may be nil when correlation capping is off.
func New(cfg Config, corr CorrelationSource) *Manager {
	return &Manager{cfg: cfg, corr: corr}
}

// Params produces the sizing decision for one candidate trade.
// history is the realized PnL per past trade, most-recent-last; nil disables
// Kelly for this call. positions and candidate feed the correlation gate.
// An unknown asset class is an invalid input contract and fails hard.
func (m *Manager) Params(
	balance, price, confidence float64,
	class model.AssetClass,
	history []float64,
	positions map[string]model.Position,
	candidate string,
) (model.RiskParams, error) {
	cp, ok := m.cfg.Classes[class]
	if !ok {
		return model.RiskParams{}, fmt.Errorf("unknown asset class %q", class)
	}

	confidence = clamp(confidence, 0, 1)
	stopPct := cp.StopPct * (1 - 0.5*confidence)
	tpPct := cp.TakeProfitPct * (1 + 0.5*confidence)
	maxAlloc := cp.MaxAllocationPct * balance

	if blocked, reason := m.correlationVeto(positions, candidate); blocked {
		return model.RiskParams{
			StopLoss:    price * (1 - stopPct),
			TakeProfit:  price * (1 + tpPct),
			Blocked:     true,
			BlockReason: reason,
		}, nil
	}

	allocation := maxAlloc * (0.5 + 0.5*confidence)

	var kelly float64
	kellyApplied := false
	if m.cfg.KellyEnabled && len(history) > 0 {
		kelly = Fraction(history, m.cfg.KellyLookback)
		kellyApplied = true
		allocation = math.Min(allocation, balance*kelly)
		allocation = math.Min(allocation, maxAlloc)
	}

	size := 0
	if price > 0 {
		size = int(allocation / price)
	}

	return model.RiskParams{
		Size:          size,
		StopLoss:      price * (1 - stopPct),
		TakeProfit:    price * (1 + tpPct),
		Allocation:    allocation,
		KellyFraction: kelly,
		KellyApplied:  kellyApplied,
	}, nil
}

// correlationVeto checks the candidate against every held instrument and
// blocks when the strongest absolute correlation exceeds the cap. Missing
// data for a pair is treated as no evidence for that pair.
func (m *Manager) correlationVeto(positions map[string]model.Position, candidate string) (bool, string) {
	if !m.cfg.CorrelationEnabled || m.corr == nil || candidate == "" || len(positions) == 0 {
		return false, ""
	}

	candidateCloses, err := m.corr.RecentCloses(candidate, m.cfg.CorrelationLookback)
	if err != nil || len(candidateCloses) == 0 {
		return false, ""
	}

	worst := 0.0
	worstTicker := ""
	for ticker := range positions {
		if ticker == candidate {
			continue
		}
		held, err := m.corr.RecentCloses(ticker, m.cfg.CorrelationLookback)
		if err != nil || len(held) == 0 {
			continue
		}
		c := pearson(candidateCloses, held)
		if math.IsNaN(c) {
			continue
		}
		if abs := math.Abs(c); abs > worst {
			worst = abs
			worstTicker = ticker
		}
	}

	if worst > m.cfg.CorrelationCap {
		return true, fmt.Sprintf("correlation %.2f with held %s exceeds cap %.2f",
			worst, worstTicker, m.cfg.CorrelationCap)
	}
	return false, ""
}

// pearson computes the correlation over the overlapping tail of two series.
// NaN when fewer than two overlapping points or a series has no variance.
func pearson(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 2 {
		return math.NaN()
	}
	a = a[len(a)-n:]
	b = b[len(b)-n:]

	var sumA, sumB float64
	for i := 0; i < n; i++ {
		sumA += a[i]
		sumB += b[i]
	}
	meanA, meanB := sumA/float64(n), sumB/float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varA*varB)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
