package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Schedule.DailyHour != 23 {
		t.Errorf("expected daily hour 23, got %d", cfg.Schedule.DailyHour)
	}
	if cfg.Schedule.TradingStartHour != 7 || cfg.Schedule.TradingEndHour != 22 {
		t.Errorf("unexpected trading window %d-%d", cfg.Schedule.TradingStartHour, cfg.Schedule.TradingEndHour)
	}
	if cfg.Detect.HistoryDays != 90 {
		t.Errorf("expected history days 90, got %d", cfg.Detect.HistoryDays)
	}
	if cfg.Exchange.PreferredCode != "XFRA" {
		t.Errorf("expected preferred exchange XFRA, got %q", cfg.Exchange.PreferredCode)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("database:\n  sqlite_path: /tmp/from_file.sqlite\ndetect:\n  jump_threshold_up: 2.5\nsymbols:\n  - SAP\n  - IFX\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SQLITE_PATH", "/tmp/from_env.sqlite")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.SQLitePath != "/tmp/from_env.sqlite" {
		t.Errorf("env override lost: %q", cfg.Database.SQLitePath)
	}
	if cfg.Detect.JumpThresholdUp != 2.5 {
		t.Errorf("file value lost: %v", cfg.Detect.JumpThresholdUp)
	}
	if len(cfg.Symbols) != 2 || cfg.Symbols[0] != "SAP" {
		t.Errorf("unexpected symbols: %v", cfg.Symbols)
	}
}

func TestLoad_MidnightScheduleSurvives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("schedule:\n  daily_hour: 0\n  daily_minute: 0\n  trading_start_hour: 0\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Schedule.DailyHour != 0 || cfg.Schedule.DailyMinute != 0 {
		t.Errorf("explicit midnight batch clobbered: %d:%d", cfg.Schedule.DailyHour, cfg.Schedule.DailyMinute)
	}
	if cfg.Schedule.TradingStartHour != 0 {
		t.Errorf("explicit midnight trading start clobbered: %d", cfg.Schedule.TradingStartHour)
	}
	if cfg.Schedule.TradingEndHour != 22 {
		t.Errorf("absent trading end should default to 22, got %d", cfg.Schedule.TradingEndHour)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("midnight schedule should validate: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.Schedule.TradingStartHour = 22
	cfg.Schedule.TradingEndHour = 7
	if err := cfg.Validate(); err == nil {
		t.Error("expected inverted trading window to fail validation")
	}
}
