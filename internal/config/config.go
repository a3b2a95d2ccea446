package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"StockSignals/internal/calculator"
	"StockSignals/internal/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider    string `yaml:"provider"` // yahoo, vstrader, mock
		BaseURL     string `yaml:"base_url"`
		APIKey      string `yaml:"api_key"`
		Lookback    string `yaml:"lookback"`
		Granularity string `yaml:"granularity"`
	} `yaml:"data_source"`
	Symbols struct {
		Dir  string   `yaml:"dir"`
		List []string `yaml:"list"`
	} `yaml:"symbols"`
	Indicators calculator.Params `yaml:"indicators"`
	Schedule   struct {
		SignalInterval time.Duration `yaml:"signal_interval"`
		PriceInterval  time.Duration `yaml:"price_interval"`
		FetchTimeout   time.Duration `yaml:"fetch_timeout"`
		VolumeFloor    float64       `yaml:"volume_floor"`
		RunOnStart     bool          `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Registry struct {
		MaxSignals    int           `yaml:"max_signals"` // negative keeps every signal
		MaxAge        time.Duration `yaml:"max_age"`
		SweepInterval time.Duration `yaml:"sweep_interval"`
	} `yaml:"registry"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	HTTP struct {
		Addr       string        `yaml:"addr"`
		StaleAfter time.Duration `yaml:"stale_after"`
	} `yaml:"http"`
	Display struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"display"`
	Log   logger.Config `yaml:"log"`
	Proxy string        `yaml:"proxy"`
}

// Load reads .env (if present), the YAML file (if present), then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{Indicators: calculator.DefaultParams()}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"TELEGRAM_BOT_TOKEN": &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &c.Telegram.ChatID,
		"DATA_PROVIDER":      &c.DataSource.Provider,
		"VSTRADER_BASE_URL":  &c.DataSource.BaseURL,
		"VSTRADER_API_KEY":   &c.DataSource.APIKey,
		"SYMBOLS_DIR":        &c.Symbols.Dir,
		"SQLITE_PATH":        &c.Database.SQLitePath,
		"HTTP_ADDR":          &c.HTTP.Addr,
		"DISPLAY_TIMEZONE":   &c.Display.Timezone,
		"LOG_LEVEL":          &c.Log.Level,
		"HTTPS_PROXY":        &c.Proxy,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Symbols.List = strings.Split(v, ",")
	}
	if v := os.Getenv("VOLUME_FLOOR"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("VOLUME_FLOOR: %w", err)
		}
		c.Schedule.VolumeFloor = f
	}
	if v := os.Getenv("SIGNAL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SIGNAL_INTERVAL: %w", err)
		}
		c.Schedule.SignalInterval = d
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		c.Schedule.RunOnStart = v == "true" || v == "1"
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
		if c.DataSource.BaseURL != "" {
			c.DataSource.Provider = "vstrader"
		}
	}
	if c.DataSource.Lookback == "" {
		c.DataSource.Lookback = "1d"
	}
	if c.DataSource.Granularity == "" {
		c.DataSource.Granularity = "1m"
	}
	if c.Symbols.Dir == "" && len(c.Symbols.List) == 0 {
		c.Symbols.Dir = "data"
	}
	if c.Schedule.SignalInterval == 0 {
		c.Schedule.SignalInterval = 60 * time.Second
	}
	if c.Schedule.PriceInterval == 0 {
		c.Schedule.PriceInterval = 60 * time.Second
	}
	if c.Schedule.FetchTimeout == 0 {
		c.Schedule.FetchTimeout = 15 * time.Second
	}
	if c.Registry.MaxSignals == 0 {
		c.Registry.MaxSignals = 5000
	}
	if c.Registry.SweepInterval == 0 {
		c.Registry.SweepInterval = 10 * time.Minute
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stock_signals.db"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Display.Timezone == "" {
		c.Display.Timezone = "Europe/London"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.FilePath == "" {
		c.Log.FilePath = "logs/stock_signals.log"
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = 100
	}
}

// RegistryCap returns the registry capacity, 0 meaning unbounded.
func (c *Config) RegistryCap() int {
	if c.Registry.MaxSignals < 0 {
		return 0
	}
	return c.Registry.MaxSignals
}

// TelegramEnabled reports whether chat alerts and commands are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Location returns the display timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Display.Timezone)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "vstrader":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for vstrader")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, vstrader, mock", c.DataSource.Provider)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if err := c.Indicators.Validate(); err != nil {
		return fmt.Errorf("indicators: %w", err)
	}
	if c.Schedule.SignalInterval < time.Second || c.Schedule.PriceInterval < time.Second {
		return fmt.Errorf("schedule intervals must be at least 1s")
	}
	if c.Schedule.FetchTimeout <= 0 {
		return fmt.Errorf("schedule.fetch_timeout must be positive")
	}
	if c.Schedule.VolumeFloor < 0 {
		return fmt.Errorf("schedule.volume_floor must not be negative")
	}
	if c.Registry.MaxAge < 0 {
		return fmt.Errorf("registry.max_age must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("display.timezone: %w", err)
	}
	return nil
}
