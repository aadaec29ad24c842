package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"TradePilot/internal/collector"
	"TradePilot/internal/config"
	"TradePilot/internal/executor"
	"TradePilot/internal/memory"
	"TradePilot/internal/model"
	"TradePilot/internal/notifier"
	"TradePilot/internal/portfolio"
	"TradePilot/internal/recorder"
	"TradePilot/internal/risk"
	"TradePilot/internal/runner"
	"TradePilot/internal/screener"
	"TradePilot/internal/sentiment"
	"TradePilot/internal/strategy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] TradePilot starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	log.Printf("[INFO] mode: %s, capital: %.2f", cfg.Mode, cfg.Capital)

	// Market data
	col := collector.NewCollector(map[model.AssetClass]collector.Fetcher{
		model.AssetStock:  collector.NewYahooFetcher(cfg.Proxy),
		model.AssetCrypto: collector.NewKrakenFetcher(cfg.Proxy),
	}, []model.Timeframe{model.Timeframe1d, model.Timeframe4h, model.Timeframe1h}, cfg.Schedule.Workers)

	// Universe
	var universe runner.Universe
	if cfg.Universe.Discover {
		universe = screener.New(cfg.Universe.Limit, cfg.Universe.Limit, cfg.Proxy)
	} else {
		universe = runner.StaticUniverse(cfg.Universe.Stocks, cfg.Universe.Crypto)
	}

	// Strategy engine
	fusion := strategy.DefaultFusionConfig()
	fusion.MultiTimeframe = cfg.Strategy.MultiTimeframe
	fusion.Weights = cfg.TimeframeWeights()
	fusion.ConfirmEnabled = cfg.Strategy.ConfirmEnabled
	fusion.ConfirmThreshold = cfg.Strategy.ConfirmThreshold
	engine := strategy.NewEngine(fusion)

	// Risk manager; the collector doubles as the correlation price source.
	riskCfg := risk.DefaultConfig()
	riskCfg.KellyEnabled = cfg.Risk.KellyEnabled
	riskCfg.KellyLookback = cfg.Risk.KellyLookback
	riskCfg.CorrelationEnabled = cfg.Risk.CorrelationEnabled
	riskCfg.CorrelationCap = cfg.Risk.CorrelationCap
	riskCfg.CorrelationLookback = cfg.Risk.CorrelationLookback
	riskMgr := risk.New(riskCfg, col)

	// Portfolio ledger
	pf := portfolio.New(cfg.Capital)

	// Strategy memory
	mem, err := memory.Load(cfg.Memory.StateFile)
	if err != nil {
		log.Fatalf("[FATAL] load strategy memory: %v", err)
	}

	// Sentiment
	var scorer *sentiment.Scorer
	if cfg.Sentiment.Enabled {
		scorer = sentiment.New(cfg.Proxy)
	}

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Execution venues. Paper mode simulates every fill; live mode routes
	// crypto to Kraken and keeps stocks on paper.
	paper := executor.NewPaperExecutor()
	executors := map[model.AssetClass]executor.Executor{
		model.AssetStock:  paper,
		model.AssetCrypto: paper,
	}
	if cfg.Mode == "live" {
		executors[model.AssetCrypto] = executor.NewKrakenExecutor(cfg.Kraken.APIKey, cfg.Kraken.Secret, cfg.Proxy)
		log.Println("[INFO] live mode: crypto orders go to kraken")
	}

	// Notifier
	var notif notifier.Notifier
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		notif = tn
	} else {
		notif = notifier.NewLogNotifier()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Runner
	run := runner.New(ctx, col, universe, engine, riskMgr, pf, mem, scorer, rec, executors, notif, cfg.Risk.KellyLookback)
	if err := run.Register(cfg.Schedule.CycleCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	run.Start()
	defer run.Stop()

	// Telegram command polling
	if tn != nil {
		go tn.StartPolling(ctx, run.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing cycle now")
		go run.RunCycle()
	}

	log.Println("[INFO] TradePilot is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] TradePilot stopped")
}
