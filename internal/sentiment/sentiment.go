package sentiment

import (
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Source weights, renormalized over whichever sources actually produced a
// score for the ticker.
const (
	weightNews      = 0.4
	weightSocial    = 0.3
	weightTechnical = 0.2
	weightMarket    = 0.1
)

const cacheTTL = time.Hour

// SourceFunc produces a sentiment score in [-1, 1] for a ticker, or an
// error when the source is unavailable.
type SourceFunc func(ticker string) (float64, error)

type cacheEntry struct {
	score float64
	at    time.Time
}

// Scorer fuses sentiment from several sources into one score in [-1, 1].
// Unavailable sources are dropped from the weighting rather than treated
// as neutral; if nothing is available the score is 0.
type Scorer struct {
	Client *http.Client

	// Optional extra sources. Left nil they are simply skipped.
	Social SourceFunc
	Market SourceFunc

	mu    sync.Mutex
	cache map[string]cacheEntry
	now   func() time.Time
}

// New creates a Scorer with optional proxy support.
func New(proxyURL string) *Scorer {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &Scorer{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		cache: make(map[string]cacheEntry),
		now:   time.Now,
	}
}

// Score returns the fused sentiment for a ticker. closes is the recent
// daily close series used for the technical component; it may be empty.
// Results are cached for an hour per ticker.
func (s *Scorer) Score(ticker string, closes []float64) float64 {
	s.mu.Lock()
	if entry, ok := s.cache[ticker]; ok && s.now().Sub(entry.at) < cacheTTL {
		s.mu.Unlock()
		return entry.score
	}
	s.mu.Unlock()

	type weighted struct {
		score  float64
		weight float64
	}
	var parts []weighted

	if news, err := s.newsScore(ticker); err == nil {
		parts = append(parts, weighted{news, weightNews})
	} else {
		log.Printf("[WARN] news sentiment for %s: %v", ticker, err)
	}
	if s.Social != nil {
		if social, err := s.Social(ticker); err == nil {
			parts = append(parts, weighted{social, weightSocial})
		} else {
			log.Printf("[WARN] social sentiment for %s: %v", ticker, err)
		}
	}
	if tech, ok := technicalScore(closes); ok {
		parts = append(parts, weighted{tech, weightTechnical})
	}
	if s.Market != nil {
		if market, err := s.Market(ticker); err == nil {
			parts = append(parts, weighted{market, weightMarket})
		} else {
			log.Printf("[WARN] market sentiment for %s: %v", ticker, err)
		}
	}

	score := 0.0
	if len(parts) > 0 {
		var sum, totalWeight float64
		for _, p := range parts {
			sum += p.score * p.weight
			totalWeight += p.weight
		}
		score = clamp(sum/totalWeight, -1, 1)
	}

	s.mu.Lock()
	s.cache[ticker] = cacheEntry{score: score, at: s.now()}
	s.mu.Unlock()
	return score
}

// rssFeed covers the subset of Google News RSS we read.
type rssFeed struct {
	Channel struct {
		Items []struct {
			Title string `xml:"title"`
		} `xml:"item"`
	} `xml:"channel"`
}

// newsScore averages a lexicon score over the latest headline titles.
func (s *Scorer) newsScore(ticker string) (float64, error) {
	u := fmt.Sprintf("https://news.google.com/rss/search?q=%s", url.QueryEscape(ticker))
	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("news fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("news fetch: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("news read body: %w", err)
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return 0, fmt.Errorf("news decode: %w", err)
	}
	titles := make([]string, 0, 5)
	for _, item := range feed.Channel.Items {
		titles = append(titles, item.Title)
		if len(titles) >= 5 {
			break
		}
	}
	if len(titles) == 0 {
		return 0, fmt.Errorf("news: no headlines for %s", ticker)
	}
	var sum float64
	for _, title := range titles {
		sum += lexiconScore(title)
	}
	return clamp(sum/float64(len(titles)), -1, 1), nil
}

var positiveWords = map[string]bool{
	"surge": true, "rally": true, "gain": true, "gains": true, "soar": true,
	"soars": true, "beat": true, "beats": true, "record": true, "upgrade": true,
	"bullish": true, "jump": true, "jumps": true, "rise": true, "rises": true,
	"strong": true, "growth": true, "profit": true, "outperform": true,
	"breakout": true, "high": true, "buy": true,
}

var negativeWords = map[string]bool{
	"plunge": true, "plunges": true, "crash": true, "fall": true, "falls": true,
	"drop": true, "drops": true, "miss": true, "misses": true, "downgrade": true,
	"bearish": true, "slump": true, "loss": true, "losses": true, "weak": true,
	"fraud": true, "lawsuit": true, "sink": true, "sinks": true, "warning": true,
	"sell": true, "low": true, "fears": true, "selloff": true,
}

// lexiconScore counts positive vs negative words in a headline, normalized
// by the number of sentiment-bearing hits.
func lexiconScore(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	var pos, neg int
	for _, w := range words {
		w = strings.Trim(w, ".,!?:;'\"()")
		if positiveWords[w] {
			pos++
		} else if negativeWords[w] {
			neg++
		}
	}
	hits := pos + neg
	if hits == 0 {
		return 0
	}
	return float64(pos-neg) / float64(hits)
}

// technicalScore maps the 10-bar return of the close series onto [-1, 1],
// saturating at a +-10% move.
func technicalScore(closes []float64) (float64, bool) {
	const lookback = 10
	if len(closes) < lookback+1 {
		return 0, false
	}
	prev := closes[len(closes)-1-lookback]
	if prev == 0 {
		return 0, false
	}
	ret := (closes[len(closes)-1] - prev) / prev
	return clamp(ret/0.10, -1, 1), true
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
