package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 504, cfg.Simulation.Days)
	assert.Equal(t, 500, cfg.Simulation.Paths)
	assert.Equal(t, map[string]float64{"Crude Oil": 60, "Gold": 40}, cfg.Portfolio.Weights)
	assert.Equal(t, StoreFile, cfg.Portfolio.Store)
	assert.Equal(t, "Momentum", cfg.Backtest.Strategy)
	assert.False(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
simulation:
  days: 120
  seed: 42
  instruments: ["Gold", "Silver"]
  strict_ohlc: true
portfolio:
  weights:
    Gold: 70
    Silver: 30
  store: redis
backtest:
  strategy: MeanReversion
  lookback: 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.Simulation.Days)
	assert.Equal(t, int64(42), cfg.Simulation.Seed)
	assert.Equal(t, []string{"Gold", "Silver"}, cfg.Simulation.Instruments)
	assert.True(t, cfg.Simulation.StrictOHLC)
	assert.Equal(t, 70.0, cfg.Portfolio.Weights["Gold"])
	assert.Equal(t, StoreRedis, cfg.Portfolio.Store)
	assert.Equal(t, 10, cfg.Backtest.Lookback)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "123")
	t.Setenv("SIMULATION_SEED", "7")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, "simulation:\n  seed: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Simulation.Seed)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("SIMULATION_DAYS", "many")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "simulation: [\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"lookback too long", func(c *Config) { c.Backtest.Lookback = c.Simulation.Days }},
		{"negative weight", func(c *Config) { c.Portfolio.Weights = map[string]float64{"Gold": -1} }},
		{"unknown store", func(c *Config) { c.Portfolio.Store = "s3" }},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "x" }},
		{"negative paths", func(c *Config) { c.Simulation.Paths = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
