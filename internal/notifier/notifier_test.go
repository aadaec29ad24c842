package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TradePilot/internal/model"
	"TradePilot/internal/report"
)

func TestTelegramSendPostsMessage(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/bottest-token/sendMessage") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("test-token", "chat-1", "")
	n.APIBase = srv.URL
	n.Client = srv.Client()

	if err := n.Send("hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got["chat_id"] != "chat-1" || got["text"] != "hello" {
		t.Errorf("payload = %v", got)
	}
}

func TestTelegramSendWithRetryRecovers(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "flood", http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("t", "c", "")
	n.APIBase = srv.URL
	n.Client = srv.Client()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := n.SendWithRetry(ctx, "msg", 3); err != nil {
		t.Fatalf("SendWithRetry: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestFormatCycleReport(t *testing.T) {
	s := &CycleSummary{
		StartedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		Universe:  3,
		Outcomes: []TickerOutcome{
			{Ticker: "AAPL", Action: "executed", Direction: model.Buy, Strategy: "multi_tf_rsi", Confidence: 0.85, Quantity: 4, Price: 195.5},
			{Ticker: "BTC/USDT", Action: "blocked", Direction: model.Buy, Note: "correlation 0.82 with held ETH/USDT exceeds cap 0.70"},
			{Ticker: "NVDA", Action: "held"},
		},
		Capital: 9218,
		Equity:  10021.5,
	}
	report := FormatCycleReport(s)

	for _, want := range []string{
		"Universe: 3",
		"Executed: 1 | Blocked: 1 | Skipped: 0 | Held: 1",
		"AAPL: BUY 4 @ $195.50",
		"correlation 0.82",
		"Equity: $10,021.50",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestFormatPortfolio(t *testing.T) {
	positions := map[string]model.Position{
		"AAPL":     {Ticker: "AAPL", Quantity: 5, AvgPrice: 195},
		"BTC/USDT": {Ticker: "BTC/USDT", Quantity: -0.25, AvgPrice: 50000},
	}
	out := FormatPortfolio(1234.5, positions, 2200)

	for _, want := range []string{"AAPL: LONG 5", "BTC/USDT: SHORT", "Cash: $1,234.50", "Equity: $2,200"} {
		if !strings.Contains(out, want) {
			t.Errorf("portfolio missing %q:\n%s", want, out)
		}
	}

	empty := FormatPortfolio(1000, nil, 1000)
	if !strings.Contains(empty, "No open positions") {
		t.Errorf("expected empty-portfolio marker:\n%s", empty)
	}
}

func TestFormatPerformance(t *testing.T) {
	perf := report.Performance{Sharpe: 1.23, MaxDrawdown: 250, TotalPnL: 480, Trades: 12}
	ranked := []report.AlphaScore{
		{Ticker: "NVDA", Alpha: 2.1},
		{Ticker: "AAPL", Alpha: 0.8},
	}
	out := FormatPerformance(perf, ranked)

	for _, want := range []string{"Trades: 12", "Sharpe: 1.23", "1. NVDA (2.10)", "2. AAPL (0.80)"} {
		if !strings.Contains(out, want) {
			t.Errorf("performance missing %q:\n%s", want, out)
		}
	}
}

func TestCycleSummaryCount(t *testing.T) {
	s := &CycleSummary{Outcomes: []TickerOutcome{
		{Action: "executed"}, {Action: "executed"}, {Action: "skipped"},
	}}
	if s.Count("executed") != 2 || s.Count("skipped") != 1 || s.Count("blocked") != 0 {
		t.Errorf("unexpected counts: executed=%d skipped=%d blocked=%d",
			s.Count("executed"), s.Count("skipped"), s.Count("blocked"))
	}
}
