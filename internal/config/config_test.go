package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bot.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"symbols": ["BTCUSDT", "ETHUSDT"],
		"exchange": {"api_key": "key", "api_secret": "secret", "testnet": true}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, cfg.Symbols)
	assert.InDelta(t, 0.01, cfg.Trading.RiskPerTrade, 1e-9)
	assert.Equal(t, time.Minute, cfg.Trading.Interval())
	assert.Equal(t, 100, cfg.Trading.MinCandles)
	assert.Equal(t, 20, cfg.Strategy.BBWindow)
	assert.InDelta(t, 2.0, cfg.Strategy.BBStdDev, 1e-9)
	assert.Equal(t, 14, cfg.Strategy.RSIPeriod)
	assert.InDelta(t, 25.0, cfg.Strategy.ADXThreshold, 1e-9)
	assert.InDelta(t, 0.015, cfg.Strategy.StopPercentCap, 1e-9)
	assert.Equal(t, 10, cfg.Risk.MaxTrades)
	assert.Equal(t, 2, cfg.Risk.MaxPositions)
	assert.Equal(t, ":9090", cfg.Monitoring.MetricsAddr)
	assert.True(t, cfg.Exchange.Testnet)
}

func TestLoadExplicitValuesKept(t *testing.T) {
	path := writeConfig(t, `{
		"symbols": ["SOLUSDT"],
		"trading": {"risk_per_trade": 0.02, "leverage": 3, "qty_step": 0.1, "interval_seconds": 30},
		"strategy": {"rsi_oversold": 25, "rsi_overbought": 75},
		"risk": {"max_daily_drawdown": 3, "max_trades": 5},
		"exchange": {"api_key": "key", "api_secret": "secret"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.02, cfg.Trading.RiskPerTrade, 1e-9)
	assert.InDelta(t, 3.0, cfg.Trading.Leverage, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.Trading.Interval())
	assert.InDelta(t, 25.0, cfg.Strategy.RSIOversold, 1e-9)
	assert.InDelta(t, 3.0, cfg.Risk.MaxDailyDrawdown, 1e-9)
	assert.Equal(t, 5, cfg.Risk.MaxTrades)
}

func TestLoadEnvOverridesCredentials(t *testing.T) {
	t.Setenv("BYBIT_API_KEY", "env-key")
	t.Setenv("BYBIT_API_SECRET", "env-secret")

	path := writeConfig(t, `{
		"symbols": ["BTCUSDT"],
		"exchange": {"api_key": "file-key", "api_secret": "file-secret"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Exchange.APIKey)
	assert.Equal(t, "env-secret", cfg.Exchange.APISecret)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{
			Symbols:  []string{"BTCUSDT"},
			Exchange: ExchangeConfig{APIKey: "k", APISecret: "s"},
		}
		cfg.setDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no symbols", func(c *Config) { c.Symbols = nil }, "at least one trading symbol"},
		{"duplicate symbols", func(c *Config) { c.Symbols = []string{"BTCUSDT", "BTCUSDT"} }, "duplicate trading symbol"},
		{"risk per trade too high", func(c *Config) { c.Trading.RiskPerTrade = 1.5 }, "risk per trade"},
		{"leverage below one", func(c *Config) { c.Trading.Leverage = 0.5 }, "leverage"},
		{"rsi thresholds inverted", func(c *Config) { c.Strategy.RSIOversold = 80 }, "rsi oversold"},
		{"missing credentials", func(c *Config) { c.Exchange.APIKey = "" }, "credentials"},
		{
			"telegram enabled without token",
			func(c *Config) { c.Notifications = &NotificationConfig{Enabled: true} },
			"telegram",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
