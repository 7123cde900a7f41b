// Package engine ties aggregation, strategy and risk gating together into
// a per-symbol position state machine driven on a fixed cadence.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/alphaflow-trading/meanrev-bot/internal/exchange"
	"github.com/alphaflow-trading/meanrev-bot/internal/logger"
	"github.com/alphaflow-trading/meanrev-bot/internal/market"
	"github.com/alphaflow-trading/meanrev-bot/internal/monitoring"
	"github.com/alphaflow-trading/meanrev-bot/internal/notifications"
	"github.com/alphaflow-trading/meanrev-bot/internal/risk"
	"github.com/alphaflow-trading/meanrev-bot/internal/strategy"
)

// State is the engine's position lifecycle state. It is derived, never
// stored: WaitingData until enough candles exist, then Flat or InPosition
// depending on whether a Position is held.
type State int

const (
	StateWaitingData State = iota
	StateFlat
	StateInPosition
)

func (s State) String() string {
	switch s {
	case StateWaitingData:
		return "WAITING_DATA"
	case StateFlat:
		return "FLAT"
	case StateInPosition:
		return "IN_POSITION"
	default:
		return "UNKNOWN"
	}
}

// DefaultMinCandles is the warm-up requirement before any evaluation:
// enough history for the slowest indicator (ADX needs 2p+1 bars) with
// plenty of margin.
const DefaultMinCandles = 100

// Position is one open position. The engine holds at most one; a nil
// Position means flat.
type Position struct {
	Side       strategy.Side
	Qty        float64
	EntryPrice float64
	StopLoss   float64
	OrderID    string
	RiskAmount float64
}

// Config carries the per-symbol engine parameters.
type Config struct {
	Symbol string

	// RiskPerTrade is the fraction of the account balance risked per
	// entry (distance to the initial stop).
	RiskPerTrade float64

	// Leverage multiplies the position size.
	Leverage float64

	// QtyStep is the fallback quantity step used when the exchange
	// lookup fails.
	QtyStep float64

	// Interval is the delay between evaluation cycles, measured from
	// cycle completion.
	Interval time.Duration

	// MinCandles is the warm-up candle count; DefaultMinCandles when 0.
	MinCandles int
}

// Engine evaluates one symbol: collects buffered ticks into candles,
// generates entry/exit decisions and manages the single open position.
type Engine struct {
	cfg      Config
	exchange exchange.Exchange
	guard    *risk.Guard
	strat    *strategy.MeanReversion
	notifier notifications.Notifier
	log      *logger.Logger
	health   *monitoring.HealthChecker

	buffer *market.TickBuffer
	series *market.Series
	agg    *market.Aggregator

	position *Position
}

// NewEngine creates an engine for one symbol sharing the given risk guard.
func NewEngine(cfg Config, ex exchange.Exchange, guard *risk.Guard, strat *strategy.MeanReversion, notifier notifications.Notifier, log *logger.Logger) *Engine {
	if cfg.MinCandles <= 0 {
		cfg.MinCandles = DefaultMinCandles
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if notifier == nil {
		notifier = notifications.Noop{}
	}
	buffer := market.NewTickBuffer(market.DefaultTickCapacity)
	series := market.NewSeries(market.DefaultSeriesCapacity)
	return &Engine{
		cfg:      cfg,
		exchange: ex,
		guard:    guard,
		strat:    strat,
		notifier: notifier,
		log:      log,
		buffer:   buffer,
		series:   series,
		agg:      market.NewAggregator(buffer, series),
	}
}

// SetHealthChecker attaches the process health checker.
func (e *Engine) SetHealthChecker(h *monitoring.HealthChecker) {
	e.health = h
}

// Symbol returns the traded symbol.
func (e *Engine) Symbol() string {
	return e.cfg.Symbol
}

// HandleTicks is the market-data ingestion callback. It runs on the
// stream's reader goroutine and only appends to the locked buffer.
func (e *Engine) HandleTicks(ticks []market.Tick) {
	e.buffer.Append(ticks...)
}

// State reports the current lifecycle state.
func (e *Engine) State() State {
	if e.series.Len() < e.cfg.MinCandles {
		return StateWaitingData
	}
	if e.position != nil {
		return StateInPosition
	}
	return StateFlat
}

// Run drives the evaluation loop until the context is cancelled. Each
// cycle is evaluated, then the engine sleeps the configured interval
// measured from cycle completion.
func (e *Engine) Run(ctx context.Context) {
	e.infof("Engine started (interval %s, warm-up %d candles)", e.cfg.Interval, e.cfg.MinCandles)
	for {
		e.cycle(ctx)
		select {
		case <-time.After(e.cfg.Interval):
		case <-ctx.Done():
			e.infof("Engine stopped")
			return
		}
	}
}

// cycle runs one evaluation pass. It is the outermost failure boundary:
// errors are logged and swallowed, panics recovered, so the loop always
// reaches the next cycle.
func (e *Engine) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			e.errorf("Recovered from panic in evaluation cycle: %v", r)
			monitoring.RecordError("panic")
		}
	}()

	if err := e.evaluate(ctx); err != nil {
		e.errorf("Evaluation cycle failed: %v", err)
		monitoring.RecordError("cycle")
	}
}

// evaluate performs one aggregation + decision pass.
func (e *Engine) evaluate(ctx context.Context) error {
	e.agg.Collect()

	candles := e.series.Snapshot()
	monitoring.UpdateCandleCount(e.cfg.Symbol, len(candles))
	if len(candles) > 0 {
		last := candles[len(candles)-1]
		monitoring.UpdatePrice(e.cfg.Symbol, last.Close)
		if e.health != nil {
			e.health.RecordCycle(last.Close)
		}
	}

	if len(candles) < e.cfg.MinCandles {
		e.infof("Warming up: %d/%d candles", len(candles), e.cfg.MinCandles)
		return nil
	}

	if e.position != nil {
		return e.evaluateExit(ctx, candles)
	}
	return e.evaluateEntry(ctx, candles)
}

// evaluateEntry checks for an entry signal and opens a position when the
// risk guard admits it.
func (e *Engine) evaluateEntry(ctx context.Context, candles []market.Candle) error {
	signal := e.strat.Generate(candles)
	if signal == strategy.SignalNone {
		return nil
	}
	monitoring.RecordSignal(e.cfg.Symbol, signal.String())

	if !e.guard.IsTradingAllowed() {
		e.infof("Signal %s suppressed: daily trading halt active", signal)
		return nil
	}

	balance, err := e.exchange.WalletBalance(ctx)
	if err != nil {
		return fmt.Errorf("failed to query balance: %w", err)
	}

	entry := candles[len(candles)-1].Close
	atr := e.strat.LastATR(candles)
	if math.IsNaN(atr) || entry <= 0 {
		return nil
	}

	var side strategy.Side
	if signal == strategy.SignalLong {
		side = strategy.SideLong
	} else {
		side = strategy.SideShort
	}

	stop := e.strat.InitialStop(side, atr, entry)
	riskAmount := balance * e.cfg.RiskPerTrade
	qty := e.sizePosition(ctx, riskAmount, entry, stop)
	if qty <= 0 {
		e.infof("Signal %s skipped: computed quantity is zero (balance $%.2f)", signal, balance)
		return nil
	}

	if !e.guard.AllocateRisk(riskAmount) {
		e.infof("Signal %s rejected by risk guard (requested $%.2f)", signal, riskAmount)
		return nil
	}
	e.publishRiskState()

	orderSide := exchange.OrderSideBuy
	if side == strategy.SideShort {
		orderSide = exchange.OrderSideSell
	}
	orderID, err := e.exchange.CreateOrder(ctx, exchange.OrderParams{
		Symbol:    e.cfg.Symbol,
		Side:      orderSide,
		OrderType: exchange.OrderTypeMarket,
		Qty:       qty,
		StopLoss:  stop,
	})
	if err != nil {
		// Release the reservation so a failed submission does not
		// starve the daily pool.
		e.guard.ReleaseRisk(riskAmount)
		e.publishRiskState()
		return fmt.Errorf("failed to submit entry order: %w", err)
	}

	e.position = &Position{
		Side:       side,
		Qty:        qty,
		EntryPrice: entry,
		StopLoss:   stop,
		OrderID:    orderID,
		RiskAmount: riskAmount,
	}

	monitoring.RecordTrade(e.cfg.Symbol, side.String())
	if e.log != nil {
		e.log.LogTradeExecution("OPEN "+side.String(), orderID, qty, entry, stop)
	}
	e.notify(fmt.Sprintf("🔔 %s: opened %s %v @ %.4f (stop %.4f)", e.cfg.Symbol, side, qty, entry, stop))
	return nil
}

// evaluateExit checks the exit conditions and closes the open position.
func (e *Engine) evaluateExit(ctx context.Context, candles []market.Candle) error {
	pos := e.position
	shouldExit, exitPrice := e.strat.ShouldExit(pos.Side, candles, pos.EntryPrice)
	if !shouldExit {
		return nil
	}

	closeSide := exchange.OrderSideSell
	if pos.Side == strategy.SideShort {
		closeSide = exchange.OrderSideBuy
	}
	orderID, err := e.exchange.CreateOrder(ctx, exchange.OrderParams{
		Symbol:     e.cfg.Symbol,
		Side:       closeSide,
		OrderType:  exchange.OrderTypeMarket,
		Qty:        pos.Qty,
		ReduceOnly: true,
	})
	if err != nil {
		return fmt.Errorf("failed to submit close order: %w", err)
	}

	pnlPct := (exitPrice - pos.EntryPrice) / pos.EntryPrice * 100
	if pos.Side == strategy.SideShort {
		pnlPct = -pnlPct
	}
	e.guard.RegisterTrade(pnlPct, 0)
	e.publishRiskState()

	monitoring.RecordTrade(e.cfg.Symbol, "Close")
	if e.log != nil {
		e.log.LogTradeExecution("CLOSE "+pos.Side.String(), orderID, pos.Qty, exitPrice, 0)
		e.log.LogCycleCompletion(exitPrice, pos.EntryPrice, pnlPct)
	}
	e.notify(fmt.Sprintf("✅ %s: closed %s @ %.4f (pnl %.2f%%)", e.cfg.Symbol, pos.Side, exitPrice, pnlPct))

	e.position = nil
	return nil
}

// sizePosition computes the order quantity from the risk amount and the
// stop distance, floored to the symbol's quantity step.
func (e *Engine) sizePosition(ctx context.Context, riskAmount, entry, stop float64) float64 {
	stopDistance := math.Abs(entry - stop)
	if stopDistance <= 0 {
		return 0
	}
	qty := riskAmount / stopDistance * e.cfg.Leverage

	step, err := e.exchange.QtyStep(ctx, e.cfg.Symbol)
	if err != nil || step <= 0 {
		if err != nil {
			e.warnf("Could not fetch quantity step, using configured %v: %v", e.cfg.QtyStep, err)
		}
		step = e.cfg.QtyStep
	}
	if step > 0 {
		qty = math.Floor(qty/step) * step
	}
	return qty
}

func (e *Engine) publishRiskState() {
	_, pnl, allocated := e.guard.Snapshot()
	monitoring.UpdateRiskState(allocated, pnl)
}

// notify sends a notification; failures are logged, never propagated.
func (e *Engine) notify(text string) {
	if err := e.notifier.Send(text); err != nil {
		e.warnf("Notification failed: %v", err)
	}
}

func (e *Engine) infof(format string, args ...interface{}) {
	if e.log != nil {
		e.log.Info(format, args...)
	}
}

func (e *Engine) warnf(format string, args ...interface{}) {
	if e.log != nil {
		e.log.Warning(format, args...)
	}
}

func (e *Engine) errorf(format string, args ...interface{}) {
	if e.log != nil {
		e.log.Error(format, args...)
	}
}
