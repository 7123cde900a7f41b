package strategy

import (
	"math"
	"testing"

	"github.com/alphaflow-trading/meanrev-bot/internal/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// candlesFromCloses builds a candle series with a fixed half-point range
// around each close.
func candlesFromCloses(closes []float64) []market.Candle {
	out := make([]market.Candle, len(closes))
	for i, c := range closes {
		out[i] = market.Candle{
			Start:  int64(i * 60),
			Open:   c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 1,
		}
	}
	return out
}

// flatThenDrop is a calm market with a sharp final sell-off: the last close
// sits far below the lower band, RSI collapses, and ADX stays low because
// the trend is a single bar old.
func flatThenDrop() []market.Candle {
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100
	}
	closes[99] = 90
	return candlesFromCloses(closes)
}

// steadyDowntrend keeps falling bar after bar: oversold by every measure,
// but ADX reads a strong trend.
func steadyDowntrend() []market.Candle {
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	return candlesFromCloses(closes)
}

func TestGenerate_LongOnOversoldCalmMarket(t *testing.T) {
	m := NewMeanReversion()
	assert.Equal(t, SignalLong, m.Generate(flatThenDrop()))
}

func TestGenerate_RegimeFilterVetoesTrendingMarket(t *testing.T) {
	m := NewMeanReversion()
	candles := steadyDowntrend()

	// Oversold on every count, but the ADX regime filter applies.
	assert.Equal(t, SignalNone, m.Generate(candles))

	// Same candles with the filter out of reach confirm the veto is what
	// blocked the entry.
	m.ADXThreshold = 101
	assert.Equal(t, SignalLong, m.Generate(candles))
}

func TestGenerate_ShortOnOverboughtCalmMarket(t *testing.T) {
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100
	}
	closes[99] = 110

	m := NewMeanReversion()
	assert.Equal(t, SignalShort, m.Generate(candlesFromCloses(closes)))
}

func TestGenerate_NoneDuringWarmUp(t *testing.T) {
	m := NewMeanReversion()
	candles := candlesFromCloses([]float64{100, 99, 98})
	assert.Equal(t, SignalNone, m.Generate(candles))
}

func TestGenerate_NoneOnEmptySeries(t *testing.T) {
	m := NewMeanReversion()
	assert.Equal(t, SignalNone, m.Generate(nil))
}

func TestGenerate_IsPure(t *testing.T) {
	m := NewMeanReversion()
	candles := flatThenDrop()

	first := m.Generate(candles)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Generate(candles))
	}
}

func TestShouldExit_LongAtMiddleBand(t *testing.T) {
	// Price recovered back to the flat level after a dip: close >= middle.
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100
	}
	candles := candlesFromCloses(closes)

	m := NewMeanReversion()
	exit, price := m.ShouldExit(SideLong, candles, 95)

	require.True(t, exit)
	assert.Equal(t, 100.0, price)
}

func TestShouldExit_LongTrailingStop(t *testing.T) {
	// Still below the middle band, but the drop from entry exceeds the
	// trailing distance.
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100
	}
	closes[99] = 95
	candles := candlesFromCloses(closes)

	m := NewMeanReversion()
	exit, price := m.ShouldExit(SideLong, candles, 100)

	require.True(t, exit)
	assert.Equal(t, 95.0, price)
}

func TestShouldExit_ShortAtMiddleBand(t *testing.T) {
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100
	}
	candles := candlesFromCloses(closes)

	m := NewMeanReversion()
	exit, price := m.ShouldExit(SideShort, candles, 105)

	require.True(t, exit)
	assert.Equal(t, 100.0, price)
}

func TestShouldExit_HoldsInsideBands(t *testing.T) {
	// Long below the middle band with a shallow drawdown: no exit.
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100
	}
	closes[99] = 99.5
	candles := candlesFromCloses(closes)

	m := NewMeanReversion()
	exit, _ := m.ShouldExit(SideLong, candles, 100)
	assert.False(t, exit)
}

func TestShouldExit_NoExitDuringWarmUp(t *testing.T) {
	m := NewMeanReversion()
	candles := candlesFromCloses([]float64{100, 99, 98})

	exit, price := m.ShouldExit(SideLong, candles, 100)
	assert.False(t, exit)
	assert.Equal(t, 0.0, price)
}

func TestInitialStop_PercentCapIsTighter(t *testing.T) {
	m := NewMeanReversion()

	// 1.5% of 100 = 1.5 beats 1.5 * ATR(10) = 15.
	assert.InDelta(t, 98.5, m.InitialStop(SideLong, 10, 100), 1e-9)
	assert.InDelta(t, 101.5, m.InitialStop(SideShort, 10, 100), 1e-9)
}

func TestInitialStop_ATRIsTighter(t *testing.T) {
	m := NewMeanReversion()

	// 1.5 * ATR(0.5) = 0.75 beats 1.5% of 100 = 1.5.
	assert.InDelta(t, 99.25, m.InitialStop(SideLong, 0.5, 100), 1e-9)
	assert.InDelta(t, 100.75, m.InitialStop(SideShort, 0.5, 100), 1e-9)
}

func TestLastATR(t *testing.T) {
	m := NewMeanReversion()

	short := candlesFromCloses([]float64{100, 99, 98})
	assert.True(t, math.IsNaN(m.LastATR(short)))

	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100
	}
	full := candlesFromCloses(closes)
	assert.InDelta(t, 1.0, m.LastATR(full), 1e-9)
}
