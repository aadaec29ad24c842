package collector

import (
	"errors"
	"testing"
	"time"

	"TradePilot/internal/model"
)

func tfBars(closes ...float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 100,
		}
	}
	return bars
}

func TestCollectRoutesByAssetClass(t *testing.T) {
	stock := &MockFetcher{Data: map[string]map[model.Timeframe][]model.OHLCV{
		"AAPL": {model.Timeframe1d: tfBars(100, 101, 102)},
	}}
	crypto := &MockFetcher{Data: map[string]map[model.Timeframe][]model.OHLCV{
		"BTC/USDT": {model.Timeframe1d: tfBars(50000, 50100)},
	}}
	c := NewCollector(map[model.AssetClass]Fetcher{
		model.AssetStock:  stock,
		model.AssetCrypto: crypto,
	}, []model.Timeframe{model.Timeframe1d}, 2)

	results := c.Collect([]model.Asset{
		{Ticker: "AAPL", Class: model.AssetStock},
		{Ticker: "BTC/USDT", Class: model.AssetCrypto},
	})

	if len(results) != 2 {
		t.Fatalf("expected 2 tickers, got %d", len(results))
	}
	if got := len(results["AAPL"][model.Timeframe1d]); got != 3 {
		t.Errorf("AAPL daily bars = %d, want 3", got)
	}
	if got := len(results["BTC/USDT"][model.Timeframe1d]); got != 2 {
		t.Errorf("BTC/USDT daily bars = %d, want 2", got)
	}
}

func TestCollectFailedFetchYieldsEmptyData(t *testing.T) {
	failing := &MockFetcher{Err: errors.New("network down")}
	c := NewCollector(map[model.AssetClass]Fetcher{
		model.AssetStock: failing,
	}, []model.Timeframe{model.Timeframe1d, model.Timeframe1h}, 2)

	results := c.Collect([]model.Asset{{Ticker: "AAPL", Class: model.AssetStock}})

	data, ok := results["AAPL"]
	if !ok {
		t.Fatal("ticker entry should exist even when every fetch fails")
	}
	if len(data) != 0 {
		t.Errorf("expected no timeframes for failing fetcher, got %d", len(data))
	}
}

func TestCollectMissingFetcherClass(t *testing.T) {
	c := NewCollector(map[model.AssetClass]Fetcher{}, []model.Timeframe{model.Timeframe1d}, 1)
	results := c.Collect([]model.Asset{{Ticker: "AAPL", Class: model.AssetStock}})
	if len(results["AAPL"]) != 0 {
		t.Error("expected empty data when no fetcher covers the asset class")
	}
}

func TestRecentClosesTrimsToLookback(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	stock := &MockFetcher{Data: map[string]map[model.Timeframe][]model.OHLCV{
		"AAPL": {model.Timeframe1d: tfBars(closes...)},
	}}
	c := NewCollector(map[model.AssetClass]Fetcher{model.AssetStock: stock},
		[]model.Timeframe{model.Timeframe1d}, 1)

	got, err := c.RecentCloses("AAPL", 30)
	if err != nil {
		t.Fatalf("RecentCloses: %v", err)
	}
	if len(got) != 30 {
		t.Fatalf("expected 30 closes, got %d", len(got))
	}
	if got[len(got)-1] != 159 {
		t.Errorf("last close = %v, want 159 (newest kept)", got[len(got)-1])
	}
}

func TestRecentClosesInfersCryptoFromSlash(t *testing.T) {
	crypto := &MockFetcher{Data: map[string]map[model.Timeframe][]model.OHLCV{
		"ETH/USDT": {model.Timeframe1d: tfBars(3000, 3050, 3100)},
	}}
	c := NewCollector(map[model.AssetClass]Fetcher{model.AssetCrypto: crypto},
		[]model.Timeframe{model.Timeframe1d}, 1)

	got, err := c.RecentCloses("ETH/USDT", 0)
	if err != nil {
		t.Fatalf("RecentCloses: %v", err)
	}
	if len(got) != 3 || got[2] != 3100 {
		t.Errorf("unexpected closes %v", got)
	}

	if _, err := c.RecentCloses("AAPL", 10); err == nil {
		t.Error("expected error for asset class with no fetcher")
	}
}

func TestAggregateBars(t *testing.T) {
	hourly := tfBars(10, 12, 8, 11, 20, 18)
	got := aggregateBars(hourly, 4)
	if len(got) != 2 {
		t.Fatalf("expected 2 aggregated bars, got %d", len(got))
	}
	first := got[0]
	if first.Open != 10 || first.Close != 11 {
		t.Errorf("first bar open/close = %v/%v, want 10/11", first.Open, first.Close)
	}
	if first.High != 13 || first.Low != 7 {
		t.Errorf("first bar high/low = %v/%v, want 13/7", first.High, first.Low)
	}
	if first.Volume != 400 {
		t.Errorf("first bar volume = %v, want 400", first.Volume)
	}
	// Trailing partial bucket of 2 bars survives.
	second := got[1]
	if second.Open != 20 || second.Close != 18 {
		t.Errorf("second bar open/close = %v/%v, want 20/18", second.Open, second.Close)
	}
}

func TestParseKrakenRow(t *testing.T) {
	row := []interface{}{
		float64(1700000000), "100.5", "105.0", "99.0", "104.2", "102.0", "1500.75", float64(42),
	}
	bar, err := parseKrakenRow(row)
	if err != nil {
		t.Fatalf("parseKrakenRow: %v", err)
	}
	if bar.Open != 100.5 || bar.High != 105.0 || bar.Low != 99.0 || bar.Close != 104.2 {
		t.Errorf("unexpected OHLC %+v", bar)
	}
	if bar.Volume != 1500.75 {
		t.Errorf("volume = %v, want 1500.75", bar.Volume)
	}
	if bar.Time.Unix() != 1700000000 {
		t.Errorf("time = %v", bar.Time.Unix())
	}

	if _, err := parseKrakenRow([]interface{}{float64(1), "2"}); err == nil {
		t.Error("expected error for short row")
	}
	badPrice := []interface{}{float64(1), "not-a-number", "1", "1", "1", "1", "1", float64(0)}
	if _, err := parseKrakenRow(badPrice); err == nil {
		t.Error("expected error for unparsable price")
	}
}

func TestKrakenInterval(t *testing.T) {
	tests := []struct {
		tf   model.Timeframe
		want int
	}{
		{model.Timeframe1d, 1440},
		{model.Timeframe4h, 240},
		{model.Timeframe1h, 60},
	}
	for _, tt := range tests {
		got, err := krakenInterval(tt.tf)
		if err != nil {
			t.Errorf("krakenInterval(%s): %v", tt.tf, err)
		}
		if got != tt.want {
			t.Errorf("krakenInterval(%s) = %d, want %d", tt.tf, got, tt.want)
		}
	}
	if _, err := krakenInterval(model.Timeframe("1w")); err == nil {
		t.Error("expected error for unsupported timeframe")
	}
}

func TestKrakenPair(t *testing.T) {
	if got := krakenPair("BTC/USDT"); got != "BTCUSDT" {
		t.Errorf("krakenPair = %q, want BTCUSDT", got)
	}
}
