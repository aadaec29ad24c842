package runner

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"TradePilot/internal/collector"
	"TradePilot/internal/executor"
	"TradePilot/internal/memory"
	"TradePilot/internal/model"
	"TradePilot/internal/notifier"
	"TradePilot/internal/portfolio"
	"TradePilot/internal/recorder"
	"TradePilot/internal/report"
	"TradePilot/internal/risk"
	"TradePilot/internal/screener"
	"TradePilot/internal/sentiment"
	"TradePilot/internal/strategy"
)

// Universe supplies the tickers to evaluate in a cycle.
type Universe interface {
	Discover() []model.Asset
}

// staticUniverse wraps a fixed asset list.
type staticUniverse []model.Asset

func (u staticUniverse) Discover() []model.Asset { return u }

// StaticUniverse builds a Universe from fixed ticker lists.
func StaticUniverse(stocks, cryptos []string) Universe {
	return staticUniverse(screener.StaticUniverse(stocks, cryptos))
}

// Runner drives the cron-scheduled decision cycle: discover the universe,
// fetch market data, then per ticker pick a strategy, fuse signals, blend
// sentiment, size the trade, execute and account. Ticker processing is
// strictly sequential; only data fetch is concurrent.
type Runner struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Universe  Universe
	Engine    *strategy.Engine
	Risk      *risk.Manager
	Portfolio *portfolio.Portfolio
	Memory    *memory.Memory
	Sentiment *sentiment.Scorer
	Recorder  recorder.Recorder
	Executors map[model.AssetClass]executor.Executor
	Notifier  notifier.Notifier
	Ctx       context.Context

	KellyLookback int

	mu          sync.Mutex
	lastSummary *notifier.CycleSummary
}

// New creates a Runner with all collaborators wired.
func New(
	ctx context.Context,
	col *collector.Collector,
	universe Universe,
	engine *strategy.Engine,
	riskMgr *risk.Manager,
	pf *portfolio.Portfolio,
	mem *memory.Memory,
	scorer *sentiment.Scorer,
	rec recorder.Recorder,
	executors map[model.AssetClass]executor.Executor,
	notif notifier.Notifier,
	kellyLookback int,
) *Runner {
	return &Runner{
		Cron:          cron.New(cron.WithSeconds()),
		Collector:     col,
		Universe:      universe,
		Engine:        engine,
		Risk:          riskMgr,
		Portfolio:     pf,
		Memory:        mem,
		Sentiment:     scorer,
		Recorder:      rec,
		Executors:     executors,
		Notifier:      notif,
		Ctx:           ctx,
		KellyLookback: kellyLookback,
	}
}

// Register schedules the decision cycle.
func (r *Runner) Register(cycleCron string) error {
	if _, err := r.Cron.AddFunc(cycleCron, r.RunCycle); err != nil {
		return fmt.Errorf("register cycle task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (r *Runner) Start() {
	r.Cron.Start()
	log.Println("[INFO] runner started")
}

// Stop stops the cron scheduler gracefully.
func (r *Runner) Stop() {
	r.Cron.Stop()
	log.Println("[INFO] runner stopped")
}

// RunCycle executes one full decision cycle. A failed ticker never aborts
// the cycle; the summary is produced even if every ticker failed upstream.
func (r *Runner) RunCycle() {
	started := time.Now()
	log.Println("[INFO] running decision cycle")

	assets := r.filterUniverse(r.Universe.Discover())
	data := r.Collector.Collect(assets)

	history, err := r.Recorder.TradeHistory(r.KellyLookback)
	if err != nil {
		log.Printf("[WARN] trade history unavailable, Kelly disabled this cycle: %v", err)
		history = nil
	}

	summary := &notifier.CycleSummary{StartedAt: started, Universe: len(assets)}
	marks := make(map[string]float64, len(assets))

	for _, asset := range assets {
		outcome := r.processTicker(asset, data[asset.Ticker], history)
		summary.Outcomes = append(summary.Outcomes, outcome)
		if price, ok := lastClose(data[asset.Ticker]); ok {
			marks[asset.Ticker] = price
		}
	}

	summary.Capital = r.Portfolio.Capital()
	summary.Equity = r.Portfolio.Equity(marks)

	if err := r.Recorder.RecordEquity(summary.Equity); err != nil {
		log.Printf("[ERROR] record equity: %v", err)
	}

	r.mu.Lock()
	r.lastSummary = summary
	r.mu.Unlock()

	r.trySend(notifier.FormatCycleReport(summary))
	log.Printf("[INFO] cycle done: %d executed, %d blocked, %d skipped, %d held, equity %.2f",
		summary.Count("executed"), summary.Count("blocked"),
		summary.Count("skipped"), summary.Count("held"), summary.Equity)
}

// minAlphaTrades is how much realized history a ticker needs before a
// negative alpha score excludes it from the cycle.
const minAlphaTrades = 3

// filterUniverse drops tickers whose realized results rank as persistent
// losers. Tickers without enough history always pass.
func (r *Runner) filterUniverse(assets []model.Asset) []model.Asset {
	history, err := r.Recorder.TickerHistory()
	if err != nil || len(history) == 0 {
		return assets
	}
	losers := report.Underperformers(history, minAlphaTrades)
	if len(losers) == 0 {
		return assets
	}
	kept := make([]model.Asset, 0, len(assets))
	for _, a := range assets {
		if alpha, bad := losers[a.Ticker]; bad {
			log.Printf("[INFO] %s excluded this cycle, realized alpha %.2f", a.Ticker, alpha)
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

// processTicker runs the per-ticker pipeline: strategy selection, signal
// fusion, sentiment blend, risk sizing, allocation, execution, accounting.
func (r *Runner) processTicker(asset model.Asset, data collector.TickerData, history []float64) notifier.TickerOutcome {
	price, ok := lastClose(data)
	if !ok {
		r.recordReason(asset.Ticker, "skip", "", "", 0, 0, "", "no market data")
		return notifier.TickerOutcome{Ticker: asset.Ticker, Action: "skipped", Note: "no market data"}
	}

	kind := r.Memory.BestStrategy(asset.Ticker)
	r.Engine.SetStrategy(asset.Ticker, kind)
	sig := r.Engine.MultiTimeframeSignal(asset.Ticker, data)

	dailyCloses := model.Closes(data[model.Timeframe1d])
	score := 0.0
	if r.Sentiment != nil {
		score = r.Sentiment.Score(asset.Ticker, dailyCloses)
	}
	confidence := blendSentiment(sig.Confidence, score)
	regime := detectRegime(price, dailyCloses)

	log.Printf("[INFO] %s: %s via %s, confidence %.2f (sentiment %.2f), regime %s",
		asset.Ticker, sig.Direction, sig.Strategy, confidence, score, regime)

	if sig.Direction == model.Hold {
		r.recordReason(asset.Ticker, "hold", sig.Strategy, string(sig.Direction), score, confidence, regime,
			"signal is hold, no trade executed")
		return notifier.TickerOutcome{
			Ticker: asset.Ticker, Action: "held", Direction: sig.Direction,
			Strategy: sig.Strategy, Confidence: confidence,
		}
	}

	params, err := r.Risk.Params(r.Portfolio.Capital(), price, confidence, asset.Class,
		history, r.Portfolio.Positions(), asset.Ticker)
	if err != nil {
		log.Printf("[ERROR] risk params for %s: %v", asset.Ticker, err)
		r.recordReason(asset.Ticker, "skip", sig.Strategy, string(sig.Direction), score, confidence, regime,
			fmt.Sprintf("risk sizing failed: %v", err))
		return notifier.TickerOutcome{Ticker: asset.Ticker, Action: "skipped", Note: err.Error()}
	}
	if params.Blocked {
		r.recordReason(asset.Ticker, "block", sig.Strategy, string(sig.Direction), score, confidence, regime,
			params.BlockReason)
		return notifier.TickerOutcome{
			Ticker: asset.Ticker, Action: "blocked", Direction: sig.Direction,
			Strategy: sig.Strategy, Confidence: confidence, Note: params.BlockReason,
		}
	}

	qty := r.Portfolio.Allocate(asset.Ticker, params.Size, price)
	if qty == 0 {
		r.recordReason(asset.Ticker, "skip", sig.Strategy, string(sig.Direction), score, confidence, regime,
			"position size too small")
		return notifier.TickerOutcome{
			Ticker: asset.Ticker, Action: "skipped", Direction: sig.Direction,
			Strategy: sig.Strategy, Confidence: confidence, Note: "position size too small",
		}
	}

	exec, ok := r.Executors[asset.Class]
	if !ok {
		r.recordReason(asset.Ticker, "skip", sig.Strategy, string(sig.Direction), score, confidence, regime,
			"no execution venue for asset class")
		return notifier.TickerOutcome{Ticker: asset.Ticker, Action: "skipped", Note: "no execution venue"}
	}

	receipt, err := exec.PlaceOrder(asset.Ticker, sig.Direction, float64(qty), price)
	if err != nil || receipt == nil {
		log.Printf("[ERROR] place order %s: %v", asset.Ticker, err)
		r.recordTrade(asset.Ticker, sig, confidence, float64(qty), price, 0, string(model.OrderRejected))
		r.recordReason(asset.Ticker, "block", sig.Strategy, string(sig.Direction), score, confidence, regime,
			"order placement failed")
		return notifier.TickerOutcome{
			Ticker: asset.Ticker, Action: "blocked", Direction: sig.Direction,
			Strategy: sig.Strategy, Confidence: confidence, Note: "order placement failed",
		}
	}

	// The ledger only moves on a confirmed fill. Submitted orders are
	// recorded and left for the venue to settle.
	if receipt.Status != model.OrderFilled {
		r.recordTrade(asset.Ticker, sig, confidence, float64(qty), price, 0, string(receipt.Status))
		r.recordReason(asset.Ticker, string(sig.Direction), sig.Strategy, string(sig.Direction), score, confidence, regime,
			fmt.Sprintf("order %s on %s, awaiting fill", receipt.OrderID, receipt.Venue))
		return notifier.TickerOutcome{
			Ticker: asset.Ticker, Action: "executed", Direction: sig.Direction, Strategy: sig.Strategy,
			Confidence: confidence, Quantity: float64(qty), Price: price,
			Note: "submitted, awaiting fill",
		}
	}

	realized, err := r.Portfolio.ExecuteTrade(asset.Ticker, sig.Direction, price, float64(qty))
	if err != nil {
		log.Printf("[WARN] ledger update %s: %v", asset.Ticker, err)
		r.recordReason(asset.Ticker, "skip", sig.Strategy, string(sig.Direction), score, confidence, regime,
			fmt.Sprintf("ledger rejected fill: %v", err))
		return notifier.TickerOutcome{Ticker: asset.Ticker, Action: "skipped", Note: err.Error()}
	}

	if realized != 0 {
		if err := r.Memory.RecordResult(asset.Ticker, kind, realized); err != nil {
			log.Printf("[ERROR] record strategy result: %v", err)
		}
	}
	r.recordTrade(asset.Ticker, sig, confidence, float64(qty), price, realized, string(model.OrderFilled))
	r.recordReason(asset.Ticker, string(sig.Direction), sig.Strategy, string(sig.Direction), score, confidence, regime,
		"executed")

	return notifier.TickerOutcome{
		Ticker: asset.Ticker, Action: "executed", Direction: sig.Direction, Strategy: sig.Strategy,
		Confidence: confidence, Quantity: float64(qty), Price: price,
	}
}

// blendSentiment nudges confidence by a tenth of the sentiment score,
// clamped to [0, 1].
func blendSentiment(confidence, score float64) float64 {
	blended := math.Min(1, confidence+0.1*score)
	if blended < 0 {
		return 0
	}
	return blended
}

// detectRegime labels the market bull when price sits above the mean close.
func detectRegime(price float64, closes []float64) string {
	if len(closes) == 0 {
		return "unknown"
	}
	var sum float64
	for _, c := range closes {
		sum += c
	}
	if price > sum/float64(len(closes)) {
		return "bull"
	}
	return "bear"
}

// lastClose picks the most recent close, preferring the daily series.
func lastClose(data collector.TickerData) (float64, bool) {
	for _, tf := range []model.Timeframe{model.Timeframe1d, model.Timeframe4h, model.Timeframe1h} {
		if bars := data[tf]; len(bars) > 0 {
			return bars[len(bars)-1].Close, true
		}
	}
	return 0, false
}

func (r *Runner) recordTrade(ticker string, sig model.Signal, confidence, qty, price, pnl float64, status string) {
	if err := r.Recorder.RecordTrade(&model.TradeRecord{
		Time:       time.Now(),
		Ticker:     ticker,
		Action:     string(sig.Direction),
		Quantity:   qty,
		Price:      price,
		Strategy:   sig.Strategy,
		Confidence: confidence,
		PnL:        pnl,
		Status:     status,
	}); err != nil {
		log.Printf("[ERROR] record trade: %v", err)
	}
}

func (r *Runner) recordReason(ticker, action, strat, signal string, score, confidence float64, regime, notes string) {
	if err := r.Recorder.RecordReason(&model.ReasonRecord{
		Time:       time.Now(),
		Ticker:     ticker,
		Action:     action,
		Strategy:   strat,
		Signal:     signal,
		Sentiment:  score,
		Regime:     regime,
		Confidence: confidence,
		Notes:      notes,
	}); err != nil {
		log.Printf("[ERROR] record reasoning: %v", err)
	}
}

// HandleCommand processes a user command and returns a reply.
func (r *Runner) HandleCommand(command string) string {
	switch command {
	case "/cycle":
		r.RunCycle()
		return ""
	case "/portfolio":
		return notifier.FormatPortfolio(r.Portfolio.Capital(), r.Portfolio.Positions(), r.lastEquity())
	case "/performance":
		const allTrades = 100000
		history, err := r.Recorder.TradeHistory(allTrades)
		if err != nil {
			return fmt.Sprintf("performance unavailable: %v", err)
		}
		perf := report.Evaluate(history)
		tickers, err := r.Recorder.TickerHistory()
		if err != nil {
			log.Printf("[WARN] ticker history: %v", err)
		}
		return notifier.FormatPerformance(perf, report.RankAlpha(tickers))
	default:
		return "Commands:\n• /cycle - run a decision cycle now\n• /portfolio - current holdings\n• /performance - realized results"
	}
}

func (r *Runner) lastEquity() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastSummary != nil {
		return r.lastSummary.Equity
	}
	return r.Portfolio.Capital()
}

func (r *Runner) trySend(text string) {
	if err := r.Notifier.SendWithRetry(r.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
