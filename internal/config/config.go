package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Money amounts are plain YAML
// floats here; they are converted to decimals at the service boundary.
type Config struct {
	Betting struct {
		InitialStake    float64 `yaml:"initial_stake"`
		TargetAmount    float64 `yaml:"target_amount"`
		MinOdds         float64 `yaml:"min_odds"`
		MaxOdds         float64 `yaml:"max_odds"`
		MinLiquidity    float64 `yaml:"min_liquidity"`
		LiquidityFactor float64 `yaml:"liquidity_factor"`
		CommissionRate  float64 `yaml:"commission_rate"`
	} `yaml:"betting"`
	MarketSelection struct {
		MaxMarkets int `yaml:"max_markets"`
		TopMarkets int `yaml:"top_markets"`
		HoursAhead int `yaml:"hours_ahead"`
	} `yaml:"market_selection"`
	ResultChecking struct {
		CheckIntervalSeconds int `yaml:"check_interval_seconds"`
	} `yaml:"result_checking"`
	Exchange struct {
		BaseURL      string `yaml:"base_url"`
		AppKey       string `yaml:"app_key"`
		SessionToken string `yaml:"session_token"`
	} `yaml:"exchange"`
	System struct {
		DryRun     bool   `yaml:"dry_run"`
		DataDir    string `yaml:"data_dir"`
		SQLitePath string `yaml:"sqlite_path"`
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"system"`
	Schedule struct {
		ScanCron    string `yaml:"scan_cron"`
		SummaryCron string `yaml:"summary_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error: every field has a
// default and dry-run mode works with an empty config.
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
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("EXCHANGE_BASE_URL"); v != "" {
		cfg.Exchange.BaseURL = v
	}
	if v := os.Getenv("EXCHANGE_APP_KEY"); v != "" {
		cfg.Exchange.AppKey = v
	}
	if v := os.Getenv("EXCHANGE_SESSION_TOKEN"); v != "" {
		cfg.Exchange.SessionToken = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.System.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.System.SQLitePath = v
	}
	if v := os.Getenv("DRY_RUN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.System.DryRun = b
		}
	}
	if v := os.Getenv("INITIAL_STAKE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Betting.InitialStake = f
		}
	}
	if v := os.Getenv("TARGET_AMOUNT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Betting.TargetAmount = f
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Betting.InitialStake == 0 {
		cfg.Betting.InitialStake = 1.0
	}
	if cfg.Betting.TargetAmount == 0 {
		cfg.Betting.TargetAmount = 50000
	}
	if cfg.Betting.MinOdds == 0 {
		cfg.Betting.MinOdds = 3.5
	}
	if cfg.Betting.MaxOdds == 0 {
		cfg.Betting.MaxOdds = 10.0
	}
	if cfg.Betting.MinLiquidity == 0 {
		cfg.Betting.MinLiquidity = 100000
	}
	if cfg.Betting.LiquidityFactor == 0 {
		cfg.Betting.LiquidityFactor = 1.1
	}
	if cfg.Betting.CommissionRate == 0 {
		cfg.Betting.CommissionRate = 0.05
	}
	if cfg.MarketSelection.MaxMarkets == 0 {
		cfg.MarketSelection.MaxMarkets = 1000
	}
	if cfg.MarketSelection.TopMarkets == 0 {
		cfg.MarketSelection.TopMarkets = 10
	}
	if cfg.MarketSelection.HoursAhead == 0 {
		cfg.MarketSelection.HoursAhead = 4
	}
	if cfg.ResultChecking.CheckIntervalSeconds == 0 {
		cfg.ResultChecking.CheckIntervalSeconds = 60
	}
	if cfg.System.DataDir == "" {
		cfg.System.DataDir = "data/betting"
	}
	if cfg.System.SQLitePath == "" {
		cfg.System.SQLitePath = "data/stakepilot.db"
	}
	if cfg.System.ListenAddr == "" {
		cfg.System.ListenAddr = ":8080"
	}
	if cfg.Schedule.ScanCron == "" {
		cfg.Schedule.ScanCron = "0 */2 * * * *"
	}
	if cfg.Schedule.SummaryCron == "" {
		cfg.Schedule.SummaryCron = "0 0 21 * * *"
	}
}

// Validate checks that configuration is internally consistent. Live mode
// additionally needs exchange credentials; dry-run does not.
func (c *Config) Validate() error {
	if c.Betting.InitialStake <= 0 {
		return fmt.Errorf("betting.initial_stake must be positive")
	}
	if c.Betting.TargetAmount <= 0 {
		return fmt.Errorf("betting.target_amount must be positive")
	}
	if c.Betting.MinOdds > c.Betting.MaxOdds {
		return fmt.Errorf("betting.min_odds must not exceed betting.max_odds")
	}
	if c.Betting.CommissionRate < 0 || c.Betting.CommissionRate >= 1 {
		return fmt.Errorf("betting.commission_rate must be in [0, 1)")
	}
	if !c.System.DryRun {
		if c.Exchange.BaseURL == "" {
			return fmt.Errorf("exchange.base_url is required in live mode")
		}
		if c.Exchange.AppKey == "" {
			return fmt.Errorf("exchange.app_key is required in live mode")
		}
	}
	return nil
}
