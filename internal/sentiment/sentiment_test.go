package sentiment

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLexiconScore(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"NVDA shares surge to record high on strong earnings", 1},
		{"Tech stocks plunge as markets crash on recession fears", -1},
		{"Company reports quarterly results", 0},
		{"Stock gains despite lawsuit worries", 0}, // one pos, one neg
	}
	for _, tt := range tests {
		if got := lexiconScore(tt.text); got != tt.want {
			t.Errorf("lexiconScore(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestTechnicalScore(t *testing.T) {
	// 5% rise over 10 bars maps to 0.5.
	closes := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 105}
	got, ok := technicalScore(closes)
	if !ok {
		t.Fatal("expected technical score to be available")
	}
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("technicalScore = %v, want 0.5", got)
	}

	// Saturates at a 10% move.
	closes[len(closes)-1] = 130
	got, _ = technicalScore(closes)
	if got != 1 {
		t.Errorf("technicalScore = %v, want saturation at 1", got)
	}

	if _, ok := technicalScore([]float64{100, 101}); ok {
		t.Error("expected no score on short history")
	}
}

func newsStub(t *testing.T, titles ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><rss><channel>`)
		for _, title := range titles {
			fmt.Fprintf(w, `<item><title>%s</title></item>`, title)
		}
		fmt.Fprint(w, `</channel></rss>`)
	}))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func stubScorer(srv *httptest.Server) *Scorer {
	s := New("")
	s.Client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		req.URL.Scheme = "http"
		req.URL.Host = srv.Listener.Addr().String()
		return http.DefaultTransport.RoundTrip(req)
	})}
	return s
}

func TestScoreFusesAvailableSources(t *testing.T) {
	srv := newsStub(t, "Shares surge on record profit", "Analysts upgrade outlook")
	defer srv.Close()

	s := stubScorer(srv)
	s.Social = func(string) (float64, error) { return 0.5, nil }

	// news=1 (w .4), social=0.5 (w .3); no technical, no market.
	got := s.Score("AAPL", nil)
	want := (1*0.4 + 0.5*0.3) / 0.7
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", got, want)
	}
}

func TestScoreFailedSourcesDropFromWeighting(t *testing.T) {
	srv := newsStub(t, "Stocks rally on strong growth")
	defer srv.Close()

	s := stubScorer(srv)
	s.Social = func(string) (float64, error) { return 0, errors.New("api down") }
	s.Market = func(string) (float64, error) { return 0, errors.New("api down") }

	// Only news survives: renormalized weight 1.0, score stays the raw news score.
	if got := s.Score("AAPL", nil); got != 1 {
		t.Errorf("Score = %v, want 1 with news as sole source", got)
	}
}

func TestScoreAllSourcesFailedIsNeutral(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := stubScorer(srv)
	if got := s.Score("AAPL", nil); got != 0 {
		t.Errorf("Score = %v, want neutral 0", got)
	}
}

func TestScoreCachesForAnHour(t *testing.T) {
	srv := newsStub(t, "Shares surge")
	defer srv.Close()

	s := stubScorer(srv)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	first := s.Score("AAPL", nil)
	srv.Close() // further fetches would fail

	if got := s.Score("AAPL", nil); got != first {
		t.Errorf("cached Score = %v, want %v", got, first)
	}

	// Past the TTL the source is consulted again; with the server down the
	// score degrades to neutral.
	now = now.Add(2 * time.Hour)
	if got := s.Score("AAPL", nil); got != 0 {
		t.Errorf("expired Score = %v, want 0 after source failure", got)
	}
}

func TestScoreStaysInRange(t *testing.T) {
	srv := newsStub(t, "surge rally gain soar beat record breakout")
	defer srv.Close()

	s := stubScorer(srv)
	s.Social = func(string) (float64, error) { return 3.0, nil } // misbehaving source

	got := s.Score("NVDA", nil)
	if got < -1 || got > 1 {
		t.Errorf("Score = %v, out of [-1, 1]", got)
	}
}
