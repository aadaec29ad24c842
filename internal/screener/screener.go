package screener

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TradePilot/internal/model"
)

// Fallback universes used when a discovery source is unreachable.
var (
	fallbackStocks = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA"}
	fallbackCrypto = []string{"BTC/USDT", "ETH/USDT", "SOL/USDT", "XRP/USDT", "ADA/USDT"}
)

// Screener discovers the tradable universe for a cycle from public
// screeners: Yahoo day gainers for stocks, CoinGecko trending for crypto.
type Screener struct {
	Client      *http.Client
	StockLimit  int
	CryptoLimit int
}

// New creates a Screener with optional proxy support.
func New(stockLimit, cryptoLimit int, proxyURL string) *Screener {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if stockLimit <= 0 {
		stockLimit = 5
	}
	if cryptoLimit <= 0 {
		cryptoLimit = 5
	}
	return &Screener{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		StockLimit:  stockLimit,
		CryptoLimit: cryptoLimit,
	}
}

// yahooScreener is the response structure from Yahoo's predefined screener.
type yahooScreener struct {
	Finance struct {
		Result []struct {
			Quotes []struct {
				Symbol string `json:"symbol"`
			} `json:"quotes"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"finance"`
}

// TopStocks returns the top day-gainer tickers from Yahoo Finance.
func (s *Screener) TopStocks() ([]string, error) {
	u := fmt.Sprintf("https://query1.finance.yahoo.com/v1/finance/screener/predefined/saved?scrIds=day_gainers&count=%d",
		s.StockLimit)
	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo screener: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo screener read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo screener: status %d", resp.StatusCode)
	}

	var screen yahooScreener
	if err := json.Unmarshal(body, &screen); err != nil {
		return nil, fmt.Errorf("yahoo screener decode: %w", err)
	}
	if screen.Finance.Error != nil {
		return nil, fmt.Errorf("yahoo screener api error: %s", screen.Finance.Error.Description)
	}
	if len(screen.Finance.Result) == 0 {
		return nil, fmt.Errorf("yahoo screener: no data returned")
	}

	tickers := make([]string, 0, s.StockLimit)
	for _, q := range screen.Finance.Result[0].Quotes {
		if q.Symbol == "" {
			continue
		}
		tickers = append(tickers, q.Symbol)
		if len(tickers) >= s.StockLimit {
			break
		}
	}
	return tickers, nil
}

// coingeckoTrending is the response structure from CoinGecko's trending API.
type coingeckoTrending struct {
	Coins []struct {
		Item struct {
			Symbol string `json:"symbol"`
		} `json:"item"`
	} `json:"coins"`
}

// TopCrypto returns trending coins from CoinGecko as /USDT pairs.
func (s *Screener) TopCrypto() ([]string, error) {
	req, err := http.NewRequest("GET", "https://api.coingecko.com/api/v3/search/trending", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko trending: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko trending: status %d", resp.StatusCode)
	}
	var trending coingeckoTrending
	if err := json.NewDecoder(resp.Body).Decode(&trending); err != nil {
		return nil, fmt.Errorf("coingecko decode: %w", err)
	}

	tickers := make([]string, 0, s.CryptoLimit)
	for _, coin := range trending.Coins {
		symbol := strings.ToUpper(coin.Item.Symbol)
		if symbol == "" || symbol == "USD" || symbol == "USDT" {
			continue
		}
		tickers = append(tickers, symbol+"/USDT")
		if len(tickers) >= s.CryptoLimit {
			break
		}
	}
	return tickers, nil
}

// Discover assembles the cycle's universe. A failed source falls back to a
// static list so the cycle still runs.
func (s *Screener) Discover() []model.Asset {
	stocks, err := s.TopStocks()
	if err != nil || len(stocks) == 0 {
		log.Printf("[WARN] stock discovery failed, using fallback universe: %v", err)
		stocks = fallbackStocks
	}
	cryptos, err := s.TopCrypto()
	if err != nil || len(cryptos) == 0 {
		log.Printf("[WARN] crypto discovery failed, using fallback universe: %v", err)
		cryptos = fallbackCrypto
	}

	assets := make([]model.Asset, 0, len(stocks)+len(cryptos))
	for _, t := range stocks {
		assets = append(assets, model.Asset{Ticker: t, Class: model.AssetStock})
	}
	for _, t := range cryptos {
		assets = append(assets, model.Asset{Ticker: t, Class: model.AssetCrypto})
	}
	return assets
}

// StaticUniverse builds an asset list from configured ticker lists,
// bypassing remote discovery.
func StaticUniverse(stocks, cryptos []string) []model.Asset {
	assets := make([]model.Asset, 0, len(stocks)+len(cryptos))
	for _, t := range stocks {
		assets = append(assets, model.Asset{Ticker: t, Class: model.AssetStock})
	}
	for _, t := range cryptos {
		assets = append(assets, model.Asset{Ticker: t, Class: model.AssetCrypto})
	}
	return assets
}
