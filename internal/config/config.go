package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		DailyHour        int `yaml:"daily_hour"`
		DailyMinute      int `yaml:"daily_minute"`
		TradingStartHour int `yaml:"trading_start_hour"`
		TradingEndHour   int `yaml:"trading_end_hour"`
	} `yaml:"schedule"`
	Detect struct {
		JumpThresholdUp      float64 `yaml:"jump_threshold_up"`
		JumpThresholdDown    float64 `yaml:"jump_threshold_down"`
		TrendThresholdUp     float64 `yaml:"trend_threshold_up"`
		TrendThresholdDown   float64 `yaml:"trend_threshold_down"`
		SeasonalityThreshold float64 `yaml:"seasonality_threshold"`
		OutlierSensitivity   float64 `yaml:"outlier_sensitivity"`
		HistoryDays          int     `yaml:"history_days"`
	} `yaml:"detect"`
	Exchange struct {
		PreferredCode string `yaml:"preferred_code"`
	} `yaml:"exchange"`
	Symbols  []string `yaml:"symbols"`
	Proxy    string   `yaml:"proxy"`
	LogLevel string   `yaml:"log_level"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Hour fields are pre-seeded with -1 so that an explicit 0 in the
	// file (a midnight daily batch, a midnight trading start) survives
	// the defaulting pass below.
	cfg.Schedule.DailyHour = -1
	cfg.Schedule.TradingStartHour = -1
	cfg.Schedule.TradingEndHour = -1

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
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("PREFERRED_EXCHANGE"); v != "" {
		cfg.Exchange.PreferredCode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	// Defaults
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/time_series.sqlite"
	}
	if cfg.Schedule.DailyHour < 0 {
		cfg.Schedule.DailyHour = 23
	}
	if cfg.Schedule.TradingStartHour < 0 {
		cfg.Schedule.TradingStartHour = 7
	}
	if cfg.Schedule.TradingEndHour < 0 {
		cfg.Schedule.TradingEndHour = 22
	}
	if cfg.Detect.JumpThresholdUp == 0 {
		cfg.Detect.JumpThresholdUp = 5
	}
	if cfg.Detect.JumpThresholdDown == 0 {
		cfg.Detect.JumpThresholdDown = 5
	}
	if cfg.Detect.TrendThresholdUp == 0 {
		cfg.Detect.TrendThresholdUp = 1
	}
	if cfg.Detect.TrendThresholdDown == 0 {
		cfg.Detect.TrendThresholdDown = 1
	}
	if cfg.Detect.SeasonalityThreshold == 0 {
		cfg.Detect.SeasonalityThreshold = 0.9
	}
	if cfg.Detect.OutlierSensitivity == 0 {
		cfg.Detect.OutlierSensitivity = 0.5
	}
	if cfg.Detect.HistoryDays == 0 {
		cfg.Detect.HistoryDays = 90
	}
	if cfg.Exchange.PreferredCode == "" {
		cfg.Exchange.PreferredCode = "XFRA"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Validate checks that all fields are consistent.
func (c *Config) Validate() error {
	if c.Schedule.DailyHour < 0 || c.Schedule.DailyHour > 23 {
		return fmt.Errorf("schedule.daily_hour must be within 0-23")
	}
	if c.Schedule.DailyMinute < 0 || c.Schedule.DailyMinute > 59 {
		return fmt.Errorf("schedule.daily_minute must be within 0-59")
	}
	if c.Schedule.TradingStartHour >= c.Schedule.TradingEndHour {
		return fmt.Errorf("schedule.trading_start_hour must be before trading_end_hour")
	}
	if c.Detect.JumpThresholdUp <= 0 {
		return fmt.Errorf("detect.jump_threshold_up must be positive")
	}
	if c.Detect.OutlierSensitivity <= 0 || c.Detect.OutlierSensitivity >= 1 {
		return fmt.Errorf("detect.outlier_sensitivity must be within (0, 1)")
	}
	if c.Detect.HistoryDays <= 0 {
		return fmt.Errorf("detect.history_days must be positive")
	}
	return nil
}
