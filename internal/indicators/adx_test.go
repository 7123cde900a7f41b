package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zigzag builds an OHLC walk with alternating up/down bars so directional
// movement is present on both sides.
func zigzag(n int) (high, low, close []float64) {
	high = make([]float64, n)
	low = make([]float64, n)
	close = make([]float64, n)
	price := 100.0
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			price += 2
		} else {
			price -= 1
		}
		high[i] = price + 1
		low[i] = price - 1
		close[i] = price
	}
	return high, low, close
}

func TestATR_WarmUpAndNonNegative(t *testing.T) {
	high, low, close := zigzag(60)

	out := ATR(high, low, close, 14)
	require.Len(t, out, 60)

	assert.Equal(t, 14, countLeadingNaN(out))
	for i := 14; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i], 0.0)
	}
}

func TestATR_InsufficientData(t *testing.T) {
	high, low, close := zigzag(10)
	out := ATR(high, low, close, 14)
	assert.Equal(t, 10, countLeadingNaN(out))
}

func TestADX_WarmUpLength(t *testing.T) {
	high, low, close := zigzag(100)

	out := ADX(high, low, close, 14)
	require.Len(t, out, 100)

	// p=14 means the first 28 entries are undefined.
	assert.Equal(t, 28, countLeadingNaN(out))
	for i := 28; i < len(out); i++ {
		assert.False(t, math.IsNaN(out[i]))
		assert.GreaterOrEqual(t, out[i], 0.0)
		assert.LessOrEqual(t, out[i], 100.0)
	}
}

// Equal +DM and -DM on every bar must favor +DM: the sequential zeroing
// drops -DM, leaving pure upward directional movement and DX near 100. An
// implementation that zeroed both sides on a tie would report DX = 0.
func TestADX_TieFavorsPlusDM(t *testing.T) {
	n := 80
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	for i := 0; i < n; i++ {
		// Highs rise by 1 while lows fall by 1: +DM == -DM == 1 each bar.
		high[i] = 100 + float64(i)
		low[i] = 50 - float64(i)
		close[i] = 75
	}

	out := ADX(high, low, close, 14)
	last := out[n-1]

	require.False(t, math.IsNaN(last))
	assert.Greater(t, last, 90.0)
}

// A market with no directional movement at all has +DI + -DI == 0; DX is
// defined as 0 there rather than left undefined.
func TestADX_ZeroDirectionalMovement(t *testing.T) {
	n := 80
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	for i := 0; i < n; i++ {
		high[i] = 101
		low[i] = 99
		close[i] = 100
	}

	out := ADX(high, low, close, 14)
	last := out[n-1]

	require.False(t, math.IsNaN(last))
	assert.Equal(t, 0.0, last)
}

func TestADX_InsufficientData(t *testing.T) {
	high, low, close := zigzag(20)
	out := ADX(high, low, close, 14)
	assert.Equal(t, 20, countLeadingNaN(out))
}
