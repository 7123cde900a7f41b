// Package risk implements the shared daily risk ledger every decision
// engine consults before committing capital. One Guard instance is shared
// across all symbols; every method serializes through the same mutex so
// concurrent allocation decisions can never overcommit the pool.
package risk

import (
	"log"
	"sync"
	"time"
)

// Limits are the circuit-breaker and pool parameters for one trading day.
type Limits struct {
	MaxDailyDrawdown float64 // halt entries once realized pnl <= -MaxDailyDrawdown (pct)
	ProfitLock       float64 // halt entries once realized pnl >= ProfitLock (pct)
	MaxTrades        int     // daily trade-count ceiling
	MaxTotalRisk     float64 // capital-at-risk ceiling across all symbols (quote currency)

	// MaxPositions is accepted for config compatibility but not consulted
	// by the gate; position exclusivity is enforced per engine.
	MaxPositions int
}

// Guard tracks realized pnl, trade count and reserved risk for the current
// day. All state resets when the wall-clock date advances, checked on
// every call before the call's own effect is applied.
type Guard struct {
	limits Limits

	mu            sync.Mutex
	date          time.Time // midnight of the tracked day
	tradeCount    int
	realizedPnL   float64 // cumulative pnl percent for the day
	allocatedRisk float64 // currently reserved capital at risk

	now func() time.Time // stubbed in tests
}

// NewGuard creates a guard for today with zeroed counters.
func NewGuard(limits Limits) *Guard {
	g := &Guard{
		limits: limits,
		now:    time.Now,
	}
	g.date = midnight(g.now())
	return g
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// rollover zeroes the day's counters when the date has advanced. Callers
// must hold the mutex.
func (g *Guard) rollover() {
	today := midnight(g.now())
	if today.Equal(g.date) {
		return
	}
	g.date = today
	g.tradeCount = 0
	g.realizedPnL = 0
	g.allocatedRisk = 0
	log.Printf("risk guard reset for %s", today.Format("2006-01-02"))
}

// IsTradingAllowed reports whether new entries are permitted: false once
// the daily drawdown breaker or the profit lock has tripped. Monitoring
// and exits continue either way.
func (g *Guard) IsTradingAllowed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rollover()

	if g.realizedPnL <= -g.limits.MaxDailyDrawdown {
		log.Printf("daily drawdown breaker tripped: %.2f%%", g.realizedPnL)
		return false
	}
	if g.realizedPnL >= g.limits.ProfitLock {
		log.Printf("profit lock reached: %.2f%%", g.realizedPnL)
		return false
	}
	return true
}

// AllocateRisk optimistically reserves amount from the shared pool before
// order submission. It returns false without mutating state when the daily
// trade count is exhausted or the reservation would exceed the pool.
func (g *Guard) AllocateRisk(amount float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rollover()

	if g.tradeCount >= g.limits.MaxTrades {
		return false
	}
	if g.allocatedRisk+amount > g.limits.MaxTotalRisk {
		return false
	}
	g.allocatedRisk += amount
	return true
}

// RegisterTrade records a closed position: pnlPct is added to the day's
// realized pnl, the trade count advances, and riskUsed is released from
// the pool (floored at zero).
func (g *Guard) RegisterTrade(pnlPct, riskUsed float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rollover()

	g.realizedPnL += pnlPct
	g.tradeCount++
	g.allocatedRisk -= riskUsed
	if g.allocatedRisk < 0 {
		g.allocatedRisk = 0
	}
}

// ReleaseRisk returns a reservation to the pool without counting a trade,
// for entries that were reserved but never filled.
func (g *Guard) ReleaseRisk(amount float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rollover()

	g.allocatedRisk -= amount
	if g.allocatedRisk < 0 {
		g.allocatedRisk = 0
	}
}

// Snapshot returns the current ledger values, for monitoring.
func (g *Guard) Snapshot() (tradeCount int, realizedPnL, allocatedRisk float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rollover()
	return g.tradeCount, g.realizedPnL, g.allocatedRisk
}
