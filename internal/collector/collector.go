package collector

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"TradePilot/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Data map[string]map[model.Timeframe][]model.OHLCV
	Err  error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Bars(ticker string, tf model.Timeframe) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Data == nil {
		return GenerateMockBars(100, 60), nil
	}
	if bars, ok := m.Data[ticker][tf]; ok {
		return bars, nil
	}
	return nil, fmt.Errorf("mock: no data for %s %s", ticker, tf)
}

// GenerateMockBars builds a gently trending synthetic series.
func GenerateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// TickerData holds everything fetched for one ticker in a cycle.
type TickerData map[model.Timeframe][]model.OHLCV

// Collector fans market-data fetches for a universe out over a bounded
// worker pool, routing each asset class to its fetcher. A failed fetch for
// one ticker yields absent data for that ticker only.
type Collector struct {
	fetchers   map[model.AssetClass]Fetcher
	timeframes []model.Timeframe
	workers    int
}

// NewCollector creates a Collector. workers bounds concurrent fetches.
func NewCollector(fetchers map[model.AssetClass]Fetcher, timeframes []model.Timeframe, workers int) *Collector {
	if workers <= 0 {
		workers = 4
	}
	return &Collector{fetchers: fetchers, timeframes: timeframes, workers: workers}
}

// FetchTimeframe fetches one ticker/timeframe pair. Returns nil bars on any
// failure; never panics across this boundary.
func (c *Collector) FetchTimeframe(ticker string, tf model.Timeframe, class model.AssetClass) []model.OHLCV {
	f, ok := c.fetchers[class]
	if !ok {
		log.Printf("[WARN] no fetcher for asset class %q", class)
		return nil
	}
	bars, err := f.Bars(ticker, tf)
	if err != nil {
		log.Printf("[WARN] fetch %s %s via %s: %v", ticker, tf, f.Name(), err)
		return nil
	}
	return bars
}

// FetchMulti fetches every configured timeframe for one ticker. Missing
// timeframes are absent keys, not errors.
func (c *Collector) FetchMulti(ticker string, class model.AssetClass) TickerData {
	data := make(TickerData, len(c.timeframes))
	for _, tf := range c.timeframes {
		if bars := c.FetchTimeframe(ticker, tf, class); len(bars) > 0 {
			data[tf] = bars
		}
	}
	return data
}

// Collect fetches the whole universe concurrently. The result maps ticker
// to its per-timeframe data; tickers whose every fetch failed map to an
// empty TickerData.
func (c *Collector) Collect(assets []model.Asset) map[string]TickerData {
	results := make(map[string]TickerData, len(assets))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, c.workers)

	for _, asset := range assets {
		wg.Add(1)
		go func(a model.Asset) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			data := c.FetchMulti(a.Ticker, a.Class)
			mu.Lock()
			results[a.Ticker] = data
			mu.Unlock()
		}(asset)
	}
	wg.Wait()
	return results
}

// RecentCloses returns up to `lookback` daily closes for a ticker, newest
// last. It implements risk.CorrelationSource. The asset class is inferred
// from the ticker shape: crypto pairs carry a slash (BTC/USDT).
func (c *Collector) RecentCloses(ticker string, lookback int) ([]float64, error) {
	class := model.AssetStock
	if strings.Contains(ticker, "/") {
		class = model.AssetCrypto
	}
	f, ok := c.fetchers[class]
	if !ok {
		return nil, fmt.Errorf("no fetcher for asset class %q", class)
	}
	bars, err := f.Bars(ticker, model.Timeframe1d)
	if err != nil {
		return nil, fmt.Errorf("recent closes %s: %w", ticker, err)
	}
	closes := model.Closes(bars)
	if lookback > 0 && len(closes) > lookback {
		closes = closes[len(closes)-lookback:]
	}
	return closes, nil
}
