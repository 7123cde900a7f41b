// Package strategy implements the mean-reversion entry/exit rules the
// decision engine evaluates every cycle. The evaluator is stateless: each
// call recomputes the full indicator set from the candle snapshot it is
// handed, so identical input always yields identical output.
package strategy

import (
	"math"

	"github.com/alphaflow-trading/meanrev-bot/internal/indicators"
	"github.com/alphaflow-trading/meanrev-bot/internal/market"
)

// Signal is the entry decision for the last bar.
type Signal int

const (
	SignalNone Signal = iota
	SignalLong
	SignalShort
)

func (s Signal) String() string {
	switch s {
	case SignalLong:
		return "LONG"
	case SignalShort:
		return "SHORT"
	default:
		return "NONE"
	}
}

// Side is the direction of an open position.
type Side int

const (
	SideLong Side = iota
	SideShort
)

func (s Side) String() string {
	if s == SideShort {
		return "SHORT"
	}
	return "LONG"
}

// MeanReversion holds the strategy parameters. Zero-value fields are not
// usable; construct via NewMeanReversion and override as needed.
type MeanReversion struct {
	BBWindow   int
	BBStdDev   float64
	RSIPeriod  int
	ATRPeriod  int
	ADXPeriod  int
	RSIOversold   float64
	RSIOverbought float64
	ADXThreshold  float64
	TrailingMultiplier float64
	StopMultiplier     float64
	StopPercentCap     float64
}

// NewMeanReversion returns the strategy with its default parameters.
func NewMeanReversion() *MeanReversion {
	return &MeanReversion{
		BBWindow:           20,
		BBStdDev:           2.0,
		RSIPeriod:          14,
		ATRPeriod:          14,
		ADXPeriod:          14,
		RSIOversold:        30,
		RSIOverbought:      70,
		ADXThreshold:       25,
		TrailingMultiplier: 1.2,
		StopMultiplier:     1.5,
		StopPercentCap:     0.015,
	}
}

// indicatorSet is the full recomputation over one candle snapshot.
type indicatorSet struct {
	close  []float64
	lower  []float64
	middle []float64
	upper  []float64
	rsi    []float64
	adx    []float64
	atr    []float64
}

func (m *MeanReversion) compute(candles []market.Candle) indicatorSet {
	n := len(candles)
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	for i, c := range candles {
		high[i] = c.High
		low[i] = c.Low
		close[i] = c.Close
	}

	lower, middle, upper := indicators.BollingerBands(close, m.BBWindow, m.BBStdDev)
	return indicatorSet{
		close:  close,
		lower:  lower,
		middle: middle,
		upper:  upper,
		rsi:    indicators.RSI(close, m.RSIPeriod),
		adx:    indicators.ADX(high, low, close, m.ADXPeriod),
		atr:    indicators.ATR(high, low, close, m.ATRPeriod),
	}
}

// Generate evaluates the last bar and returns the entry signal. A NaN
// middle band (insufficient warm-up) or a trending regime (ADX at or above
// the threshold) suppresses entries; the band/RSI conditions are mutually
// exclusive by geometry.
func (m *MeanReversion) Generate(candles []market.Candle) Signal {
	if len(candles) == 0 {
		return SignalNone
	}
	ind := m.compute(candles)
	i := len(candles) - 1

	if math.IsNaN(ind.middle[i]) {
		return SignalNone
	}
	if ind.adx[i] >= m.ADXThreshold {
		return SignalNone
	}
	if ind.close[i] < ind.lower[i] && ind.rsi[i] < m.RSIOversold {
		return SignalLong
	}
	if ind.close[i] > ind.upper[i] && ind.rsi[i] > m.RSIOverbought {
		return SignalShort
	}
	return SignalNone
}

// ShouldExit reports whether the open position should be closed and at
// what price (always the current close). The primary exit is the mean
// reversion completing at the middle band; the fallback is a trailing stop
// a multiple of ATR away from the entry price.
func (m *MeanReversion) ShouldExit(side Side, candles []market.Candle, entryPrice float64) (bool, float64) {
	if len(candles) == 0 {
		return false, 0
	}
	ind := m.compute(candles)
	i := len(candles) - 1

	close := ind.close[i]
	middle := ind.middle[i]
	atr := ind.atr[i]
	if math.IsNaN(middle) || math.IsNaN(atr) {
		return false, 0
	}

	if (side == SideLong && close >= middle) || (side == SideShort && close <= middle) {
		return true, close
	}

	trailing := m.TrailingMultiplier * atr
	if side == SideLong && close <= entryPrice-trailing {
		return true, close
	}
	if side == SideShort && close >= entryPrice+trailing {
		return true, close
	}
	return false, 0
}

// InitialStop returns the stop-loss price for a new position: the tighter
// of a fixed percentage of entry and a volatility-scaled ATR distance.
func (m *MeanReversion) InitialStop(side Side, atrValue, entryPrice float64) float64 {
	dist := math.Min(m.StopPercentCap*entryPrice, m.StopMultiplier*atrValue)
	if side == SideLong {
		return entryPrice - dist
	}
	return entryPrice + dist
}

// LastATR returns the ATR of the last bar, or NaN during warm-up. The
// engine uses it to place the initial stop before sizing the position.
func (m *MeanReversion) LastATR(candles []market.Candle) float64 {
	if len(candles) == 0 {
		return math.NaN()
	}
	ind := m.compute(candles)
	return ind.atr[len(candles)-1]
}
