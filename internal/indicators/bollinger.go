package indicators

// BollingerBands returns the lower, middle and upper bands for the close
// series: middle is the SMA, the outer bands sit numStd rolling deviations
// away. All three share the SMA's NaN warm-up.
func BollingerBands(close []float64, window int, numStd float64) (lower, middle, upper []float64) {
	middle = SMA(close, window)
	sd := RollingStdDev(close, window)

	lower = make([]float64, len(close))
	upper = make([]float64, len(close))
	for i := range middle {
		lower[i] = middle[i] - numStd*sd[i]
		upper[i] = middle[i] + numStd*sd[i]
	}
	return lower, middle, upper
}
