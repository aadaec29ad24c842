package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"TradePilot/internal/model"
)

// KrakenFetcher implements Fetcher using the Kraken public OHLC API.
type KrakenFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewKrakenFetcher creates a new fetcher with optional proxy support.
func NewKrakenFetcher(proxyURL string) *KrakenFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &KrakenFetcher{
		BaseURL: "https://api.kraken.com",
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *KrakenFetcher) Name() string { return "kraken" }

// krakenInterval maps a timeframe to Kraken's interval parameter (minutes).
func krakenInterval(tf model.Timeframe) (int, error) {
	switch tf {
	case model.Timeframe1d:
		return 1440, nil
	case model.Timeframe4h:
		return 240, nil
	case model.Timeframe1h:
		return 60, nil
	default:
		return 0, fmt.Errorf("kraken: unsupported timeframe %q", tf)
	}
}

// krakenPair converts a BTC/USDT style ticker into Kraken's pair format.
func krakenPair(ticker string) string {
	return strings.ReplaceAll(ticker, "/", "")
}

// krakenOHLCResponse is the envelope Kraken wraps every response in. The
// result map holds one key per pair plus a "last" cursor; OHLC rows arrive
// as mixed arrays with string-encoded prices.
type krakenOHLCResponse struct {
	Error  []string                   `json:"error"`
	Result map[string]json.RawMessage `json:"result"`
}

func (f *KrakenFetcher) Bars(ticker string, tf model.Timeframe) ([]model.OHLCV, error) {
	interval, err := krakenInterval(tf)
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/0/public/OHLC?pair=%s&interval=%d",
		f.BaseURL, url.QueryEscape(krakenPair(ticker)), interval)

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kraken fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("kraken read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kraken: status %d, body: %s", resp.StatusCode, string(body))
	}

	var envelope krakenOHLCResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("kraken decode: %w", err)
	}
	if len(envelope.Error) > 0 {
		return nil, fmt.Errorf("kraken api error: %s", strings.Join(envelope.Error, "; "))
	}

	rows, err := extractOHLCRows(envelope.Result)
	if err != nil {
		return nil, err
	}

	bars := make([]model.OHLCV, 0, len(rows))
	for _, row := range rows {
		bar, err := parseKrakenRow(row)
		if err != nil {
			return nil, fmt.Errorf("kraken parse row: %w", err)
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// extractOHLCRows picks the pair entry out of the result map, skipping the
// "last" pagination cursor.
func extractOHLCRows(result map[string]json.RawMessage) ([][]interface{}, error) {
	for key, raw := range result {
		if key == "last" {
			continue
		}
		var rows [][]interface{}
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("kraken decode rows: %w", err)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("kraken: no data returned")
}

// parseKrakenRow decodes one [time, open, high, low, close, vwap, volume,
// count] row. Prices and volume arrive as strings.
func parseKrakenRow(row []interface{}) (model.OHLCV, error) {
	if len(row) < 7 {
		return model.OHLCV{}, fmt.Errorf("short row: %d fields", len(row))
	}
	ts, ok := row[0].(float64)
	if !ok {
		return model.OHLCV{}, fmt.Errorf("bad timestamp %v", row[0])
	}
	fields := make([]float64, 0, 5)
	for _, idx := range []int{1, 2, 3, 4, 6} {
		s, ok := row[idx].(string)
		if !ok {
			return model.OHLCV{}, fmt.Errorf("field %d not a string: %v", idx, row[idx])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.OHLCV{}, fmt.Errorf("field %d: %w", idx, err)
		}
		fields = append(fields, v)
	}
	return model.OHLCV{
		Time:   time.Unix(int64(ts), 0),
		Open:   fields[0],
		High:   fields[1],
		Low:    fields[2],
		Close:  fields[3],
		Volume: fields[4],
	}, nil
}
