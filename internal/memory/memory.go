package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"TradePilot/internal/strategy"
)

// Stats tracks realized outcomes for one (ticker, strategy) pair.
type Stats struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// Memory keeps win/loss counts per (ticker, strategy) in a JSON file so
// strategy selection survives restarts. Results are recorded from the sign
// of realized PnL at position close.
type Memory struct {
	mu       sync.Mutex
	filePath string
	data     map[string]Stats
}

// Load reads memory from a JSON file. A missing file yields empty memory.
func Load(filePath string) (*Memory, error) {
	m := &Memory{
		filePath: filePath,
		data:     make(map[string]Stats),
	}
	raw, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("load memory: %w", err)
	}
	if err := json.Unmarshal(raw, &m.data); err != nil {
		return nil, fmt.Errorf("parse memory: %w", err)
	}
	return m, nil
}

func key(ticker string, kind strategy.Kind) string {
	return ticker + "_" + string(kind)
}

// RecordResult records one realized outcome. A positive realized PnL is a
// win, a negative one a loss; a flat close records nothing.
func (m *Memory) RecordResult(ticker string, kind strategy.Kind, realizedPnL float64) error {
	if realizedPnL == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.data[key(ticker, kind)]
	if realizedPnL > 0 {
		stats.Wins++
	} else {
		stats.Losses++
	}
	m.data[key(ticker, kind)] = stats
	return m.saveLocked()
}

// Stats returns the recorded outcomes for a (ticker, strategy) pair.
func (m *Memory) Stats(ticker string, kind strategy.Kind) Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key(ticker, kind)]
}

// BestStrategy picks the strategy with the highest win ratio for a ticker.
// Strategies with no recorded trades are skipped; with no history at all
// the default is RSI.
func (m *Memory) BestStrategy(ticker string) strategy.Kind {
	m.mu.Lock()
	defer m.mu.Unlock()

	best := strategy.KindRSI
	bestRatio := -1.0
	for _, kind := range strategy.Kinds() {
		stats := m.data[key(ticker, kind)]
		total := stats.Wins + stats.Losses
		if total == 0 {
			continue
		}
		ratio := float64(stats.Wins) / float64(total)
		if ratio > bestRatio {
			bestRatio = ratio
			best = kind
		}
	}
	return best
}

func (m *Memory) saveLocked() error {
	if m.filePath == "" {
		return nil
	}
	raw, err := json.MarshalIndent(m.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.filePath, raw, 0644)
}
