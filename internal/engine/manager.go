package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/alphaflow-trading/meanrev-bot/internal/config"
	"github.com/alphaflow-trading/meanrev-bot/internal/exchange/bybit"
	"github.com/alphaflow-trading/meanrev-bot/internal/logger"
	"github.com/alphaflow-trading/meanrev-bot/internal/monitoring"
	"github.com/alphaflow-trading/meanrev-bot/internal/notifications"
	"github.com/alphaflow-trading/meanrev-bot/internal/risk"
	"github.com/alphaflow-trading/meanrev-bot/internal/strategy"
)

// Manager owns one engine per configured symbol plus the shared
// collaborators: the Bybit client, the trade stream, the risk guard and
// the notifier.
type Manager struct {
	cfg      *config.Config
	client   *bybit.Client
	stream   *bybit.TradeStream
	guard    *risk.Guard
	notifier notifications.Notifier
	health   *monitoring.HealthChecker

	engines []*Engine
	loggers []*logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewManager wires the engines from a validated configuration.
func NewManager(cfg *config.Config) (*Manager, error) {
	client := bybit.NewClient(bybit.Config{
		APIKey:    cfg.Exchange.APIKey,
		APISecret: cfg.Exchange.APISecret,
		Testnet:   cfg.Exchange.Testnet,
		Demo:      cfg.Exchange.Demo,
	})

	var notifier notifications.Notifier = notifications.Noop{}
	if cfg.Notifications != nil && cfg.Notifications.Enabled {
		notifier = notifications.NewTelegramNotifier(cfg.Notifications.TelegramToken, cfg.Notifications.TelegramChat)
	}

	guard := risk.NewGuard(risk.Limits{
		MaxDailyDrawdown: cfg.Risk.MaxDailyDrawdown,
		ProfitLock:       cfg.Risk.ProfitLock,
		MaxTrades:        cfg.Risk.MaxTrades,
		MaxTotalRisk:     cfg.Risk.MaxTotalRisk,
		MaxPositions:     cfg.Risk.MaxPositions,
	})

	m := &Manager{
		cfg:      cfg,
		client:   client,
		stream:   bybit.NewTradeStream(client.PublicStreamURL()),
		guard:    guard,
		notifier: notifier,
		health:   monitoring.NewHealthChecker(),
	}

	for _, symbol := range cfg.Symbols {
		fileLog, err := logger.NewLogger(symbol)
		if err != nil {
			m.closeLoggers()
			return nil, fmt.Errorf("failed to create logger for %s: %w", symbol, err)
		}
		m.loggers = append(m.loggers, fileLog)

		eng := NewEngine(Config{
			Symbol:       symbol,
			RiskPerTrade: cfg.Trading.RiskPerTrade,
			Leverage:     cfg.Trading.Leverage,
			QtyStep:      cfg.Trading.QtyStep,
			Interval:     cfg.Trading.Interval(),
			MinCandles:   cfg.Trading.MinCandles,
		}, client, guard, strategyFromConfig(cfg.Strategy), notifier, fileLog)
		eng.SetHealthChecker(m.health)
		m.engines = append(m.engines, eng)
	}

	return m, nil
}

// strategyFromConfig builds a strategy with the configured parameters on
// top of the defaults.
func strategyFromConfig(sc config.StrategyConfig) *strategy.MeanReversion {
	s := strategy.NewMeanReversion()
	s.BBWindow = sc.BBWindow
	s.BBStdDev = sc.BBStdDev
	s.RSIPeriod = sc.RSIPeriod
	s.RSIOversold = sc.RSIOversold
	s.RSIOverbought = sc.RSIOverbought
	s.ATRPeriod = sc.ATRPeriod
	s.ADXPeriod = sc.ADXPeriod
	s.ADXThreshold = sc.ADXThreshold
	s.TrailingMultiplier = sc.TrailingMultiplier
	s.StopMultiplier = sc.StopMultiplier
	s.StopPercentCap = sc.StopPercentCap
	return s
}

// Engines returns the managed engines, one per symbol.
func (m *Manager) Engines() []*Engine {
	return m.engines
}

// Guard returns the shared risk guard.
func (m *Manager) Guard() *risk.Guard {
	return m.guard
}

// HealthChecker returns the process health checker.
func (m *Manager) HealthChecker() *monitoring.HealthChecker {
	return m.health
}

// Environment reports the exchange environment the manager trades on.
func (m *Manager) Environment() string {
	return m.client.Environment()
}

// Start subscribes each engine to its trade stream and launches the
// evaluation loops.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return fmt.Errorf("manager already started")
	}

	ctx, m.cancel = context.WithCancel(ctx)

	for _, eng := range m.engines {
		if err := m.stream.SubscribeTrades(eng.Symbol(), eng.HandleTicks); err != nil {
			m.cancel()
			return fmt.Errorf("failed to subscribe %s trades: %w", eng.Symbol(), err)
		}
	}
	m.health.SetConnected(true)

	for _, eng := range m.engines {
		m.wg.Add(1)
		go func(eng *Engine) {
			defer m.wg.Done()
			eng.Run(ctx)
		}(eng)
	}

	m.running = true
	log.Printf("Started %d engine(s) on %s", len(m.engines), m.client.Environment())
	if err := m.notifier.Send(fmt.Sprintf("🚀 Mean reversion bot started: %s (%s)", strings.Join(m.cfg.Symbols, ", "), m.client.Environment())); err != nil {
		log.Printf("Startup notification failed: %v", err)
	}
	return nil
}

// Stop cancels the evaluation loops, closes the stream and the loggers,
// and waits for the engines to exit. Open positions are left untouched;
// their exchange-side stop-losses remain in place.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false

	m.cancel()
	if err := m.stream.Close(); err != nil {
		log.Printf("Error closing trade stream: %v", err)
	}
	m.health.SetConnected(false)
	m.wg.Wait()
	m.closeLoggers()
}

func (m *Manager) closeLoggers() {
	for _, l := range m.loggers {
		if err := l.Close(); err != nil {
			log.Printf("Error closing logger: %v", err)
		}
	}
	m.loggers = nil
}
