// Package config loads and validates the bot's JSON configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the full bot configuration.
type Config struct {
	// Symbols lists the traded symbols; one engine runs per symbol.
	Symbols []string `json:"symbols"`

	// Trading holds position sizing and cadence settings.
	Trading TradingConfig `json:"trading"`

	// Strategy holds the indicator and threshold parameters.
	Strategy StrategyConfig `json:"strategy"`

	// Risk holds the shared daily risk guard limits.
	Risk RiskConfig `json:"risk"`

	// Exchange holds the Bybit connection settings.
	Exchange ExchangeConfig `json:"exchange"`

	// Notifications holds optional Telegram settings.
	Notifications *NotificationConfig `json:"notifications,omitempty"`

	// Monitoring holds the metrics and health endpoint addresses.
	Monitoring MonitoringConfig `json:"monitoring"`
}

// TradingConfig holds position sizing and cadence settings.
type TradingConfig struct {
	RiskPerTrade    float64 `json:"risk_per_trade"`   // fraction of balance risked per entry
	Leverage        float64 `json:"leverage"`         // position size multiplier
	QtyStep         float64 `json:"qty_step"`         // fallback quantity step
	IntervalSeconds int     `json:"interval_seconds"` // delay between evaluation cycles
	MinCandles      int     `json:"min_candles"`      // warm-up candle count
}

// Interval returns the cycle interval as a duration.
func (t TradingConfig) Interval() time.Duration {
	return time.Duration(t.IntervalSeconds) * time.Second
}

// StrategyConfig holds the mean-reversion parameters.
type StrategyConfig struct {
	BBWindow           int     `json:"bb_window"`           // Bollinger window
	BBStdDev           float64 `json:"bb_std_dev"`          // Bollinger band width
	RSIPeriod          int     `json:"rsi_period"`          // RSI calculation period
	RSIOversold        float64 `json:"rsi_oversold"`        // long entry threshold
	RSIOverbought      float64 `json:"rsi_overbought"`      // short entry threshold
	ATRPeriod          int     `json:"atr_period"`          // ATR calculation period
	ADXPeriod          int     `json:"adx_period"`          // ADX calculation period
	ADXThreshold       float64 `json:"adx_threshold"`       // trend regime veto level
	TrailingMultiplier float64 `json:"trailing_multiplier"` // trailing stop, ATR multiples
	StopMultiplier     float64 `json:"stop_multiplier"`     // initial stop, ATR multiples
	StopPercentCap     float64 `json:"stop_percent_cap"`    // initial stop cap, fraction of entry
}

// RiskConfig holds the shared daily risk guard limits.
type RiskConfig struct {
	MaxDailyDrawdown float64 `json:"max_daily_drawdown"` // halt when realized pnl% falls to -this
	ProfitLock       float64 `json:"profit_lock"`        // halt when realized pnl% reaches this
	MaxTrades        int     `json:"max_trades"`         // daily trade count ceiling
	MaxTotalRisk     float64 `json:"max_total_risk"`     // daily risk pool in quote currency
	MaxPositions     int     `json:"max_positions"`      // accepted for compatibility, not enforced
}

// ExchangeConfig holds the Bybit connection settings. Credentials may be
// supplied via BYBIT_API_KEY / BYBIT_API_SECRET instead of the file.
type ExchangeConfig struct {
	APIKey    string `json:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty"`
	Testnet   bool   `json:"testnet"`
	Demo      bool   `json:"demo"`
}

// NotificationConfig holds Telegram settings. Token and chat may be
// supplied via TELEGRAM_TOKEN / TELEGRAM_CHAT_ID.
type NotificationConfig struct {
	Enabled       bool   `json:"enabled"`
	TelegramToken string `json:"telegram_token,omitempty"`
	TelegramChat  string `json:"telegram_chat,omitempty"`
}

// MonitoringConfig holds the HTTP endpoint addresses.
type MonitoringConfig struct {
	MetricsAddr string `json:"metrics_addr"`
	HealthAddr  string `json:"health_addr"`
}

// Load reads, defaults and validates a config file. A bare filename
// resolves under configs/ and .json is appended when missing.
func Load(configFile string) (*Config, error) {
	// If config file doesn't contain path separators, look in configs/ directory
	if !strings.ContainsAny(configFile, "/\\") {
		configFile = filepath.Join("configs", configFile)
	}

	// Add .json extension if not present
	if !strings.HasSuffix(configFile, ".json") {
		configFile += ".json"
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.setDefaults()
	config.applyEnvOverrides()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values for missing configuration
func (c *Config) setDefaults() {
	// Trading defaults
	if c.Trading.RiskPerTrade == 0 {
		c.Trading.RiskPerTrade = 0.01 // 1% of balance
	}
	if c.Trading.Leverage == 0 {
		c.Trading.Leverage = 1.0
	}
	if c.Trading.QtyStep == 0 {
		c.Trading.QtyStep = 0.001
	}
	if c.Trading.IntervalSeconds == 0 {
		c.Trading.IntervalSeconds = 60
	}
	if c.Trading.MinCandles == 0 {
		c.Trading.MinCandles = 100
	}

	// Strategy defaults
	if c.Strategy.BBWindow == 0 {
		c.Strategy.BBWindow = 20
	}
	if c.Strategy.BBStdDev == 0 {
		c.Strategy.BBStdDev = 2.0
	}
	if c.Strategy.RSIPeriod == 0 {
		c.Strategy.RSIPeriod = 14
	}
	if c.Strategy.RSIOversold == 0 {
		c.Strategy.RSIOversold = 30
	}
	if c.Strategy.RSIOverbought == 0 {
		c.Strategy.RSIOverbought = 70
	}
	if c.Strategy.ATRPeriod == 0 {
		c.Strategy.ATRPeriod = 14
	}
	if c.Strategy.ADXPeriod == 0 {
		c.Strategy.ADXPeriod = 14
	}
	if c.Strategy.ADXThreshold == 0 {
		c.Strategy.ADXThreshold = 25
	}
	if c.Strategy.TrailingMultiplier == 0 {
		c.Strategy.TrailingMultiplier = 1.2
	}
	if c.Strategy.StopMultiplier == 0 {
		c.Strategy.StopMultiplier = 1.5
	}
	if c.Strategy.StopPercentCap == 0 {
		c.Strategy.StopPercentCap = 0.015 // 1.5%
	}

	// Risk defaults
	if c.Risk.MaxDailyDrawdown == 0 {
		c.Risk.MaxDailyDrawdown = 5.0 // 5% daily loss halt
	}
	if c.Risk.ProfitLock == 0 {
		c.Risk.ProfitLock = 10.0 // 10% daily gain halt
	}
	if c.Risk.MaxTrades == 0 {
		c.Risk.MaxTrades = 10
	}
	if c.Risk.MaxTotalRisk == 0 {
		c.Risk.MaxTotalRisk = 1000.0
	}
	if c.Risk.MaxPositions == 0 {
		c.Risk.MaxPositions = len(c.Symbols)
	}

	// Monitoring defaults
	if c.Monitoring.MetricsAddr == "" {
		c.Monitoring.MetricsAddr = ":9090"
	}
	if c.Monitoring.HealthAddr == "" {
		c.Monitoring.HealthAddr = ":8080"
	}
}

// applyEnvOverrides replaces credentials with environment values when set.
// A "${VAR}" placeholder in the file counts as unset.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BYBIT_API_KEY"); v != "" {
		c.Exchange.APIKey = v
	}
	if v := os.Getenv("BYBIT_API_SECRET"); v != "" {
		c.Exchange.APISecret = v
	}
	if strings.HasPrefix(c.Exchange.APIKey, "${") {
		c.Exchange.APIKey = ""
	}
	if strings.HasPrefix(c.Exchange.APISecret, "${") {
		c.Exchange.APISecret = ""
	}
	if c.Notifications != nil {
		if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
			c.Notifications.TelegramToken = v
		}
		if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
			c.Notifications.TelegramChat = v
		}
	}
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one trading symbol is required")
	}
	seen := make(map[string]bool, len(c.Symbols))
	for _, symbol := range c.Symbols {
		if symbol == "" {
			return fmt.Errorf("trading symbol must not be empty")
		}
		if seen[symbol] {
			return fmt.Errorf("duplicate trading symbol %s", symbol)
		}
		seen[symbol] = true
	}

	if c.Trading.RiskPerTrade <= 0 || c.Trading.RiskPerTrade > 1.0 {
		return fmt.Errorf("risk per trade must be between 0 and 1.0")
	}
	if c.Trading.Leverage < 1.0 {
		return fmt.Errorf("leverage must be at least 1.0")
	}
	if c.Trading.QtyStep <= 0 {
		return fmt.Errorf("quantity step must be greater than 0")
	}
	if c.Trading.IntervalSeconds <= 0 {
		return fmt.Errorf("cycle interval must be greater than 0")
	}

	if c.Strategy.BBWindow < 2 {
		return fmt.Errorf("bollinger window must be at least 2")
	}
	if c.Strategy.BBStdDev <= 0 {
		return fmt.Errorf("bollinger std dev must be greater than 0")
	}
	if c.Strategy.RSIOversold >= c.Strategy.RSIOverbought {
		return fmt.Errorf("rsi oversold must be below overbought")
	}

	if c.Risk.MaxDailyDrawdown <= 0 {
		return fmt.Errorf("max daily drawdown must be greater than 0")
	}
	if c.Risk.ProfitLock <= 0 {
		return fmt.Errorf("profit lock must be greater than 0")
	}
	if c.Risk.MaxTrades <= 0 {
		return fmt.Errorf("max trades must be greater than 0")
	}
	if c.Risk.MaxTotalRisk <= 0 {
		return fmt.Errorf("max total risk must be greater than 0")
	}

	if c.Exchange.APIKey == "" || c.Exchange.APISecret == "" {
		return fmt.Errorf("exchange credentials are required (config or BYBIT_API_KEY / BYBIT_API_SECRET)")
	}

	if c.Notifications != nil && c.Notifications.Enabled {
		if c.Notifications.TelegramToken == "" || c.Notifications.TelegramChat == "" {
			return fmt.Errorf("telegram token and chat are required when notifications are enabled")
		}
	}

	return nil
}
