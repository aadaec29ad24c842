package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"TradePilot/internal/model"
)

// Config holds all application configuration.
type Config struct {
	// Mode selects execution: "paper" simulates fills, "live" sends orders
	// to Kraken for crypto.
	Mode string `yaml:"mode"`

	Capital float64 `yaml:"capital"`

	Universe struct {
		Discover bool     `yaml:"discover"`
		Stocks   []string `yaml:"stocks"`
		Crypto   []string `yaml:"crypto"`
		Limit    int      `yaml:"limit"`
	} `yaml:"universe"`

	Strategy struct {
		MultiTimeframe   bool    `yaml:"multi_timeframe"`
		Weight1d         float64 `yaml:"weight_1d"`
		Weight4h         float64 `yaml:"weight_4h"`
		Weight1h         float64 `yaml:"weight_1h"`
		ConfirmEnabled   bool    `yaml:"confirm_enabled"`
		ConfirmThreshold float64 `yaml:"confirm_threshold"`
	} `yaml:"strategy"`

	Risk struct {
		KellyEnabled        bool    `yaml:"kelly_enabled"`
		KellyLookback       int     `yaml:"kelly_lookback"`
		CorrelationEnabled  bool    `yaml:"correlation_enabled"`
		CorrelationCap      float64 `yaml:"correlation_cap"`
		CorrelationLookback int     `yaml:"correlation_lookback"`
	} `yaml:"risk"`

	Sentiment struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"sentiment"`

	Kraken struct {
		APIKey string `yaml:"api_key"`
		Secret string `yaml:"secret"`
	} `yaml:"kraken"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`

	Schedule struct {
		CycleCron string `yaml:"cycle_cron"`
		Workers   int    `yaml:"workers"`
	} `yaml:"schedule"`

	Memory struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"memory"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TRADE_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("KRAKEN_API_KEY"); v != "" {
		cfg.Kraken.APIKey = v
	}
	if v := os.Getenv("KRAKEN_SECRET"); v != "" {
		cfg.Kraken.Secret = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CAPITAL"); v != "" {
		if capital, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Capital = capital
		}
	}
	if v := os.Getenv("CYCLE_CRON"); v != "" {
		cfg.Schedule.CycleCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "paper"
	}
	if c.Capital == 0 {
		c.Capital = 10000
	}
	if len(c.Universe.Stocks) == 0 {
		c.Universe.Stocks = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA"}
	}
	if len(c.Universe.Crypto) == 0 {
		c.Universe.Crypto = []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"}
	}
	if c.Universe.Limit == 0 {
		c.Universe.Limit = 5
	}
	if c.Strategy.Weight1d == 0 && c.Strategy.Weight4h == 0 && c.Strategy.Weight1h == 0 {
		c.Strategy.MultiTimeframe = true
		c.Strategy.Weight1d = 0.5
		c.Strategy.Weight4h = 0.3
		c.Strategy.Weight1h = 0.2
		c.Strategy.ConfirmEnabled = true
	}
	if c.Strategy.ConfirmThreshold == 0 {
		c.Strategy.ConfirmThreshold = 0.6
	}
	if c.Risk.KellyLookback == 0 {
		c.Risk.KellyEnabled = true
		c.Risk.KellyLookback = 50
	}
	if c.Risk.CorrelationCap == 0 {
		c.Risk.CorrelationEnabled = true
		c.Risk.CorrelationCap = 0.7
	}
	if c.Risk.CorrelationLookback == 0 {
		c.Risk.CorrelationLookback = 30
	}
	if c.Schedule.CycleCron == "" {
		// Hourly on the hour.
		c.Schedule.CycleCron = "0 0 * * * *"
	}
	if c.Schedule.Workers == 0 {
		c.Schedule.Workers = 4
	}
	if c.Memory.StateFile == "" {
		c.Memory.StateFile = "data/memory.json"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/tradepilot.db"
	}
}

// TimeframeWeights returns the configured fusion weights.
func (c *Config) TimeframeWeights() map[model.Timeframe]float64 {
	return map[model.Timeframe]float64{
		model.Timeframe1d: c.Strategy.Weight1d,
		model.Timeframe4h: c.Strategy.Weight4h,
		model.Timeframe1h: c.Strategy.Weight1h,
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Mode != "paper" && c.Mode != "live" {
		return fmt.Errorf("mode must be \"paper\" or \"live\", got %q", c.Mode)
	}
	if c.Capital <= 0 {
		return fmt.Errorf("capital must be positive")
	}
	if c.Mode == "live" && (c.Kraken.APIKey == "" || c.Kraken.Secret == "") {
		return fmt.Errorf("kraken.api_key and kraken.secret are required in live mode")
	}
	if c.Strategy.ConfirmThreshold < 0 || c.Strategy.ConfirmThreshold > 1 {
		return fmt.Errorf("strategy.confirm_threshold must be within [0, 1]")
	}
	if c.Risk.CorrelationCap < 0 || c.Risk.CorrelationCap > 1 {
		return fmt.Errorf("risk.correlation_cap must be within [0, 1]")
	}
	return nil
}
