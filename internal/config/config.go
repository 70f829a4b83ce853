package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Simulation struct {
		Days        int      `yaml:"days"`
		Seed        int64    `yaml:"seed"`
		Instruments []string `yaml:"instruments"`
		StrictOHLC  bool     `yaml:"strict_ohlc"`
		Horizon     int      `yaml:"horizon"`
		Paths       int      `yaml:"paths"`
		Draws       int      `yaml:"draws"`
		Workers     int      `yaml:"workers"`
	} `yaml:"simulation"`
	Portfolio struct {
		Weights   map[string]float64 `yaml:"weights"`
		Store     string             `yaml:"store"`
		StateFile string             `yaml:"state_file"`
	} `yaml:"portfolio"`
	Backtest struct {
		Strategy string `yaml:"strategy"`
		Lookback int    `yaml:"lookback"`
	} `yaml:"backtest"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		ReportCron  string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Key      string `yaml:"key"`
	} `yaml:"redis"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Summary struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"summary"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Load reads config from a YAML file, then a .env file in the working
// directory, then applies environment variable overrides and defaults.
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

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"SERVER_ADDR":        &c.Server.Addr,
		"TELEGRAM_BOT_TOKEN": &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &c.Telegram.ChatID,
		"REDIS_ADDR":         &c.Redis.Addr,
		"REDIS_PASSWORD":     &c.Redis.Password,
		"PORTFOLIO_STORE":    &c.Portfolio.Store,
		"SQLITE_PATH":        &c.Database.SQLitePath,
		"GEMINI_API_KEY":     &c.Summary.APIKey,
		"LOG_LEVEL":          &c.Log.Level,
		"CRON_REFRESH":       &c.Schedule.RefreshCron,
		"CRON_REPORT":        &c.Schedule.ReportCron,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("SIMULATION_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SIMULATION_SEED: %w", err)
		}
		c.Simulation.Seed = seed
	}
	if v := os.Getenv("SIMULATION_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SIMULATION_DAYS: %w", err)
		}
		c.Simulation.Days = days
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Simulation.Days == 0 {
		c.Simulation.Days = 504
	}
	if c.Simulation.Horizon == 0 {
		c.Simulation.Horizon = 30
	}
	if c.Simulation.Paths == 0 {
		c.Simulation.Paths = 500
	}
	if c.Simulation.Draws == 0 {
		c.Simulation.Draws = 2000
	}
	if c.Simulation.Workers == 0 {
		c.Simulation.Workers = 4
	}
	if len(c.Portfolio.Weights) == 0 {
		c.Portfolio.Weights = map[string]float64{"Crude Oil": 60, "Gold": 40}
	}
	if c.Portfolio.Store == "" {
		c.Portfolio.Store = StoreFile
	}
	if c.Portfolio.StateFile == "" {
		c.Portfolio.StateFile = "data/portfolio.json"
	}
	if c.Backtest.Strategy == "" {
		c.Backtest.Strategy = "Momentum"
	}
	if c.Backtest.Lookback == 0 {
		c.Backtest.Lookback = 20
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 */15 * * * *"
	}
	if c.Schedule.ReportCron == "" {
		c.Schedule.ReportCron = "0 0 8 * * 1-5"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.Key == "" {
		c.Redis.Key = "pricepeak_portfolio"
	}
	if c.Summary.Model == "" {
		c.Summary.Model = "gemini-2.0-flash"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// TelegramEnabled reports whether both telegram credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Simulation.Days <= 0 {
		return fmt.Errorf("simulation.days must be positive")
	}
	if c.Simulation.Horizon <= 0 {
		return fmt.Errorf("simulation.horizon must be positive")
	}
	if c.Simulation.Paths <= 0 {
		return fmt.Errorf("simulation.paths must be positive")
	}
	if c.Simulation.Draws <= 0 {
		return fmt.Errorf("simulation.draws must be positive")
	}
	if c.Backtest.Lookback <= 0 || c.Backtest.Lookback >= c.Simulation.Days {
		return fmt.Errorf("backtest.lookback must be in (0, %d)", c.Simulation.Days)
	}
	for id, w := range c.Portfolio.Weights {
		if w < 0 {
			return fmt.Errorf("portfolio.weights[%s] must not be negative", id)
		}
	}
	switch c.Portfolio.Store {
	case StoreFile, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("portfolio.store must be one of file, redis, memory; got %q", c.Portfolio.Store)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
