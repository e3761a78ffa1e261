package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Broker struct {
		Mode string `yaml:"mode"` // "demo" or "real"
		SSID string `yaml:"ssid"`
		URL  string `yaml:"url"`
	} `yaml:"broker"`
	Trading struct {
		Asset         string  `yaml:"asset"`
		Timeframes    []int   `yaml:"timeframes"` // seconds
		MinConfidence float64 `yaml:"min_confidence"`
		BaseRiskPct   float64 `yaml:"base_risk_pct"`
		AutoStart     bool    `yaml:"auto_start"`
		Enabled       bool    `yaml:"enabled"`
	} `yaml:"trading"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		TournamentCron string `yaml:"tournament_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
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
	if v := os.Getenv("POCKET_OPTION_MODE"); v != "" {
		cfg.Broker.Mode = v
	}
	if v := os.Getenv("POCKET_OPTION_SSID"); v != "" {
		cfg.Broker.SSID = v
	}
	if v := os.Getenv("POCKET_OPTION_URL"); v != "" {
		cfg.Broker.URL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("MIN_CONFIDENCE"); v != "" {
		if c, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Trading.MinConfidence = c
		}
	}

	// Defaults
	if cfg.Broker.Mode == "" {
		cfg.Broker.Mode = "demo"
	}
	if cfg.Trading.Asset == "" {
		cfg.Trading.Asset = "EURUSD_otc"
	}
	if len(cfg.Trading.Timeframes) == 0 {
		cfg.Trading.Timeframes = []int{60, 300, 900}
	}
	if cfg.Trading.MinConfidence == 0 {
		cfg.Trading.MinConfidence = 0.75
	}
	if cfg.Trading.BaseRiskPct == 0 {
		cfg.Trading.BaseRiskPct = 0.02
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/trading_bot.db"
	}
	if cfg.Schedule.TournamentCron == "" {
		cfg.Schedule.TournamentCron = "0 */10 * * * *"
	}

	return cfg, nil
}

// Validate checks that all required fields are consistent.
func (c *Config) Validate() error {
	if c.Broker.Mode != "demo" && c.Broker.Mode != "real" {
		return fmt.Errorf("broker.mode must be \"demo\" or \"real\", got %q", c.Broker.Mode)
	}
	if c.Broker.Mode == "real" && c.Broker.SSID == "" {
		return fmt.Errorf("broker.ssid is required in real mode")
	}
	if c.Broker.Mode == "real" && c.Broker.URL == "" {
		return fmt.Errorf("broker.url is required in real mode")
	}
	if c.Trading.MinConfidence < 0.5 || c.Trading.MinConfidence > 0.95 {
		return fmt.Errorf("trading.min_confidence must be within [0.5, 0.95]")
	}
	if c.Trading.BaseRiskPct <= 0 || c.Trading.BaseRiskPct > 0.1 {
		return fmt.Errorf("trading.base_risk_pct must be within (0, 0.1]")
	}
	for _, tf := range c.Trading.Timeframes {
		if tf <= 0 {
			return fmt.Errorf("trading.timeframes must be positive seconds, got %d", tf)
		}
	}
	return nil
}
