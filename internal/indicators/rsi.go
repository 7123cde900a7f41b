package indicators

// RSI returns the Relative Strength Index using Wilder smoothing. The
// first delta is defined as zero (the first close is treated as its own
// predecessor), the averages are seeded with the simple mean of the gains
// and losses over bars [1..period], and entries [0, period] are NaN.
func RSI(close []float64, period int) []float64 {
	out := nanSeries(len(close))
	if period <= 0 || len(close) < period+2 {
		return out
	}

	gain := make([]float64, len(close))
	loss := make([]float64, len(close))
	for i := 1; i < len(close); i++ {
		d := close[i] - close[i-1]
		if d > 0 {
			gain[i] = d
		} else {
			loss[i] = -d
		}
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		avgGain += gain[i]
		avgLoss += loss[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(close); i++ {
		avgGain = (avgGain*float64(period-1) + gain[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss[i]) / float64(period)

		rs := avgGain / (avgLoss + epsilon)
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
