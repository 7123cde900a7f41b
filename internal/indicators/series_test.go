package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countLeadingNaN(series []float64) int {
	for i, v := range series {
		if !math.IsNaN(v) {
			return i
		}
	}
	return len(series)
}

func TestSMA_WarmUpAndValues(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}

	out := SMA(values, 3)
	require.Len(t, out, len(values))

	assert.Equal(t, 2, countLeadingNaN(out))
	assert.InDelta(t, 2.0, out[2], 1e-9)
	assert.InDelta(t, 5.0, out[5], 1e-9)
}

func TestSMA_WindowLargerThanSeries(t *testing.T) {
	out := SMA([]float64{1, 2, 3}, 5)
	require.Len(t, out, 3)
	assert.Equal(t, 3, countLeadingNaN(out))
}

func TestRollingStdDev_WarmUpAndValues(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	out := RollingStdDev(values, 8)
	require.Len(t, out, len(values))

	assert.Equal(t, 7, countLeadingNaN(out))
	// Classic population-stddev example: mean 5, stddev 2.
	assert.InDelta(t, 2.0, out[7], 1e-9)
}

func TestRollingStdDev_FlatSeriesIsZero(t *testing.T) {
	values := make([]float64, 10)
	for i := range values {
		values[i] = 100
	}

	out := RollingStdDev(values, 4)
	for i := 3; i < len(out); i++ {
		assert.Equal(t, 0.0, out[i])
	}
}

func TestBollingerBands_Geometry(t *testing.T) {
	values := []float64{100, 101, 99, 102, 98, 103, 97, 104, 96, 105}

	lower, middle, upper := BollingerBands(values, 5, 2.0)
	require.Len(t, lower, len(values))
	require.Len(t, middle, len(values))
	require.Len(t, upper, len(values))

	assert.Equal(t, 4, countLeadingNaN(middle))
	assert.Equal(t, 4, countLeadingNaN(lower))
	assert.Equal(t, 4, countLeadingNaN(upper))

	for i := 4; i < len(values); i++ {
		assert.Less(t, lower[i], middle[i])
		assert.Greater(t, upper[i], middle[i])
	}
}

func TestRSI_WarmUpAndRange(t *testing.T) {
	values := []float64{
		100, 102, 101, 104, 103, 106, 105, 108, 107, 110,
		109, 112, 111, 114, 113, 116, 115, 118, 117, 120,
	}

	out := RSI(values, 14)
	require.Len(t, out, len(values))

	assert.Equal(t, 15, countLeadingNaN(out))
	for i := 15; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i], 0.0)
		assert.LessOrEqual(t, out[i], 100.0)
	}
}

func TestRSI_StrictlyIncreasingApproaches100(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = 100 + float64(i)
	}

	out := RSI(values, 14)
	last := out[len(out)-1]

	require.False(t, math.IsNaN(last))
	assert.Greater(t, last, 99.0)
	assert.LessOrEqual(t, last, 100.0)
}

func TestRSI_InsufficientData(t *testing.T) {
	out := RSI([]float64{100, 101, 102}, 14)
	assert.Equal(t, 3, countLeadingNaN(out))
}
