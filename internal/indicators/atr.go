package indicators

import "math"

// trueRange returns the per-bar true range, with the first bar's previous
// close defined as its own close.
func trueRange(high, low, close []float64) []float64 {
	tr := make([]float64, len(close))
	for i := range close {
		prevClose := close[0]
		if i > 0 {
			prevClose = close[i-1]
		}
		tr[i] = math.Max(high[i]-low[i],
			math.Max(math.Abs(high[i]-prevClose), math.Abs(low[i]-prevClose)))
	}
	return tr
}

// ATR returns the Average True Range using Wilder smoothing, seeded with
// the simple mean of the true range over bars [1..period]. Entries
// [0, period-1] are NaN.
func ATR(high, low, close []float64, period int) []float64 {
	out := nanSeries(len(close))
	if period <= 0 || len(close) < period+1 {
		return out
	}

	tr := trueRange(high, low, close)

	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += tr[i]
	}
	atr := sum / float64(period)
	out[period] = atr

	for i := period + 1; i < len(close); i++ {
		atr = (atr*float64(period-1) + tr[i]) / float64(period)
		out[i] = atr
	}
	return out
}
