package indicators

import "math"

// ADX returns the Average Directional Index. Directional movement is
// zeroed sequentially: +DM is zeroed first where +DM < -DM, then -DM is
// zeroed where -DM <= the possibly-already-zeroed +DM. The ordering makes
// a +DM/-DM tie keep +DM and drop -DM; that asymmetry is intentional and
// covered by a unit test.
//
// DX where +DI + -DI is exactly zero is defined as 0. The seed adx[2p] is
// the mean of DX over [p, 2p]; Wilder smoothing follows, and entries
// [0, 2p-1] are NaN.
func ADX(high, low, close []float64, period int) []float64 {
	n := len(close)
	out := nanSeries(n)
	if period <= 0 || n < 2*period+1 {
		return out
	}

	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		if up := high[i] - high[i-1]; up > 0 {
			plusDM[i] = up
		}
		if down := low[i-1] - low[i]; down > 0 {
			minusDM[i] = down
		}
	}
	for i := range plusDM {
		if plusDM[i] < minusDM[i] {
			plusDM[i] = 0
		}
		if minusDM[i] <= plusDM[i] {
			minusDM[i] = 0
		}
	}

	atr := ATR(high, low, close, period)

	dx := nanSeries(n)
	for i := period; i < n; i++ {
		if math.IsNaN(atr[i]) || atr[i] == 0 {
			continue
		}
		plusDI := 100 * plusDM[i] / atr[i]
		minusDI := 100 * minusDM[i] / atr[i]

		if sum := plusDI + minusDI; sum == 0 {
			dx[i] = 0
		} else {
			dx[i] = 100 * math.Abs(plusDI-minusDI) / (sum + epsilon)
		}
	}

	// Seed with the mean of the defined DX values over [period, 2*period].
	sum, count := 0.0, 0
	for i := period; i <= 2*period; i++ {
		if !math.IsNaN(dx[i]) {
			sum += dx[i]
			count++
		}
	}
	if count == 0 {
		return out
	}

	adx := sum / float64(count)
	out[2*period] = adx

	for i := 2*period + 1; i < n; i++ {
		v := dx[i]
		if math.IsNaN(v) {
			v = 0
		}
		adx = (adx*float64(period-1) + v) / float64(period)
		out[i] = adx
	}
	return out
}
