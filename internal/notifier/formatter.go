package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"TradePilot/internal/model"
	"TradePilot/internal/report"
)

// TickerOutcome is one ticker's result within a decision cycle.
type TickerOutcome struct {
	Ticker     string
	Action     string // "executed", "blocked", "skipped", "held"
	Direction  model.Direction
	Strategy   string
	Confidence float64
	Quantity   float64
	Price      float64
	Note       string
}

// CycleSummary aggregates one full decision cycle for reporting.
type CycleSummary struct {
	StartedAt time.Time
	Universe  int
	Outcomes  []TickerOutcome
	Capital   float64
	Equity    float64
}

// Count returns the number of outcomes with the given action.
func (s *CycleSummary) Count(action string) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Action == action {
			n++
		}
	}
	return n
}

func money(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// FormatCycleReport formats a finished decision cycle into a Telegram message.
func FormatCycleReport(s *CycleSummary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>TradePilot cycle</b> | %s\n\n", s.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Universe: %d tickers\n", s.Universe))
	b.WriteString(fmt.Sprintf("Executed: %d | Blocked: %d | Skipped: %d | Held: %d\n\n",
		s.Count("executed"), s.Count("blocked"), s.Count("skipped"), s.Count("held")))

	for _, o := range s.Outcomes {
		switch o.Action {
		case "executed":
			b.WriteString(fmt.Sprintf("✅ %s: %s %s @ %s (%s, conf %.2f)\n",
				o.Ticker, strings.ToUpper(string(o.Direction)),
				humanize.CommafWithDigits(o.Quantity, 4), money(o.Price),
				o.Strategy, o.Confidence))
		case "blocked":
			b.WriteString(fmt.Sprintf("🚫 %s: %s blocked (%s)\n",
				o.Ticker, strings.ToUpper(string(o.Direction)), o.Note))
		}
	}

	b.WriteString(fmt.Sprintf("\n💰 Capital: %s | Equity: %s\n", money(s.Capital), money(s.Equity)))
	return b.String()
}

// FormatPortfolio formats current holdings for display.
func FormatPortfolio(capital float64, positions map[string]model.Position, equity float64) string {
	var b strings.Builder
	b.WriteString("📦 <b>Portfolio</b>\n\n")

	if len(positions) == 0 {
		b.WriteString("No open positions\n")
	}
	for _, pos := range positions {
		side := "LONG"
		if pos.Quantity < 0 {
			side = "SHORT"
		}
		b.WriteString(fmt.Sprintf("%s: %s %s @ avg %s\n",
			pos.Ticker, side, humanize.CommafWithDigits(pos.Quantity, 4), money(pos.AvgPrice)))
	}

	b.WriteString(fmt.Sprintf("\nCash: %s\n", money(capital)))
	b.WriteString(fmt.Sprintf("Equity: %s\n", money(equity)))
	return b.String()
}

// FormatPerformance formats realized performance and alpha ranking.
func FormatPerformance(perf report.Performance, ranked []report.AlphaScore) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>Performance</b> | %s\n\n", time.Now().Format("2006-01-02")))

	b.WriteString(fmt.Sprintf("Trades: %d\n", perf.Trades))
	b.WriteString(fmt.Sprintf("Realized PnL: %s\n", money(perf.TotalPnL)))
	b.WriteString(fmt.Sprintf("Sharpe: %.2f\n", perf.Sharpe))
	b.WriteString(fmt.Sprintf("Max drawdown: %s\n", money(perf.MaxDrawdown)))

	if len(ranked) > 0 {
		b.WriteString("\n<b>Alpha ranking:</b>\n")
		for i, s := range ranked {
			if i >= 5 {
				break
			}
			b.WriteString(fmt.Sprintf("  %d. %s (%.2f)\n", i+1, s.Ticker, s.Alpha))
		}
	}
	return b.String()
}
