package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("missing.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataSource.Provider != "yahoo" || cfg.DataSource.Lookback != "1d" || cfg.DataSource.Granularity != "1m" {
		t.Errorf("unexpected data source defaults %+v", cfg.DataSource)
	}
	if cfg.Schedule.SignalInterval != time.Minute || cfg.Schedule.FetchTimeout != 15*time.Second {
		t.Errorf("unexpected schedule defaults %+v", cfg.Schedule)
	}
	if cfg.Indicators.Period != 60 || cfg.Indicators.MACDSignal != 4 {
		t.Errorf("unexpected indicator defaults %+v", cfg.Indicators)
	}
	if cfg.Registry.MaxSignals != 5000 || cfg.Display.Timezone != "Europe/London" {
		t.Errorf("unexpected defaults %+v %+v", cfg.Registry, cfg.Display)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram must be disabled without credentials")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "config.yaml", `
data_source:
  provider: vstrader
  base_url: http://example.test
symbols:
  list: [AAPL, MSFT]
indicators:
  period: 20
schedule:
  signal_interval: 30s
  volume_floor: 1000
registry:
  max_age: 2h
`)
	writeFile(t, dir, ".env", "TELEGRAM_BOT_TOKEN=token\nTELEGRAM_CHAT_ID=42\n")
	// godotenv writes straight into the process environment.
	t.Cleanup(func() {
		os.Unsetenv("TELEGRAM_BOT_TOKEN")
		os.Unsetenv("TELEGRAM_CHAT_ID")
	})
	t.Setenv("VOLUME_FLOOR", "2500")
	t.Setenv("SYMBOLS", "TSLA,NVDA")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataSource.Provider != "vstrader" || cfg.DataSource.BaseURL != "http://example.test" {
		t.Errorf("unexpected data source %+v", cfg.DataSource)
	}
	if cfg.Indicators.Period != 20 || cfg.Indicators.RSIPeriod != 14 {
		t.Errorf("file values must merge over defaults, got %+v", cfg.Indicators)
	}
	if cfg.Schedule.SignalInterval != 30*time.Second || cfg.Registry.MaxAge != 2*time.Hour {
		t.Errorf("durations not parsed: %v %v", cfg.Schedule.SignalInterval, cfg.Registry.MaxAge)
	}
	if cfg.Schedule.VolumeFloor != 2500 {
		t.Errorf("env must override file, got %v", cfg.Schedule.VolumeFloor)
	}
	if len(cfg.Symbols.List) != 2 || cfg.Symbols.List[0] != "TSLA" {
		t.Errorf("unexpected symbols %v", cfg.Symbols.List)
	}
	if !cfg.TelegramEnabled() || cfg.Telegram.ChatID != "42" {
		t.Errorf(".env values not loaded: %+v", cfg.Telegram)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestLoad_BadEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SIGNAL_INTERVAL", "soon")
	if _, err := Load("missing.yaml"); err == nil {
		t.Error("expected error for bad SIGNAL_INTERVAL")
	}
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	base := func() *Config {
		cfg, err := Load("missing.yaml")
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }},
		{"vstrader without url", func(c *Config) { c.DataSource.Provider = "vstrader"; c.DataSource.BaseURL = "" }},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "t" }},
		{"bad indicators", func(c *Config) { c.Indicators.MACDShort = 30 }},
		{"sub-second interval", func(c *Config) { c.Schedule.PriceInterval = time.Millisecond }},
		{"negative floor", func(c *Config) { c.Schedule.VolumeFloor = -1 }},
		{"bad timezone", func(c *Config) { c.Display.Timezone = "Mars/Olympus" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRegistryCap(t *testing.T) {
	c := &Config{}
	c.Registry.MaxSignals = -1
	if c.RegistryCap() != 0 {
		t.Error("negative max_signals must mean unbounded")
	}
	c.Registry.MaxSignals = 10
	if c.RegistryCap() != 10 {
		t.Error("expected cap 10")
	}
}
