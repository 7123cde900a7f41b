// Package indicators implements the technical indicators the strategy
// consumes: moving average, rolling deviation, Bollinger bands, RSI, ATR
// and ADX. Every function takes aligned series and returns a series of the
// same length whose warm-up prefix is NaN. Downstream code must propagate
// NaN, never treat it as zero.
package indicators

import "math"

// epsilon keeps the RSI and DX divisions defined when the denominator
// would otherwise be zero.
const epsilon = 1e-10

// nanSeries allocates a series of n NaN values.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA returns the simple moving average over a trailing window. Entries
// [0, window-2] are NaN.
func SMA(values []float64, window int) []float64 {
	out := nanSeries(len(values))
	if window <= 0 || window > len(values) {
		return out
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// RollingStdDev returns the population standard deviation over a trailing
// window. Entries [0, window-2] are NaN.
func RollingStdDev(values []float64, window int) []float64 {
	out := nanSeries(len(values))
	if window <= 0 || window > len(values) {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		win := values[i-window+1 : i+1]

		mean := 0.0
		for _, v := range win {
			mean += v
		}
		mean /= float64(window)

		ss := 0.0
		for _, v := range win {
			d := v - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(window))
	}
	return out
}
