package market

// Aggregator folds buffered ticks into the per-symbol candle series. One
// aggregation pass recomputes the newest bucket's candle in full from the
// ticks currently buffered for it; earlier candles are never revisited.
type Aggregator struct {
	buffer *TickBuffer
	series *Series
}

// NewAggregator wires a tick buffer to a candle series.
func NewAggregator(buffer *TickBuffer, series *Series) *Aggregator {
	return &Aggregator{
		buffer: buffer,
		series: series,
	}
}

// Buffer returns the tick buffer fed by the market-data subscription.
func (a *Aggregator) Buffer() *TickBuffer {
	return a.buffer
}

// Series returns the candle series the aggregator maintains.
func (a *Aggregator) Series() *Series {
	return a.series
}

// Collect runs one aggregation pass: take the bucket of the newest buffered
// tick, rebuild that bucket's candle from every buffered tick in it, and
// upsert it into the series. Returns true when a candle was produced.
func (a *Aggregator) Collect() bool {
	ticks := a.buffer.Snapshot()
	if len(ticks) == 0 {
		return false
	}

	bucket := ticks[len(ticks)-1].Bucket()
	candle, ok := BuildCandle(ticks, bucket)
	if !ok {
		return false
	}

	a.series.Upsert(candle)
	return true
}

// BuildCandle recomputes the OHLCV candle for one bucket from the given
// ticks: open is the earliest print, close the latest, high/low the
// extrema, volume the sum. Returns false when no tick falls in the bucket.
func BuildCandle(ticks []Tick, bucket int64) (Candle, bool) {
	candle := Candle{Start: bucket}
	found := false

	for _, t := range ticks {
		if t.Bucket() != bucket {
			continue
		}
		if !found {
			candle.Open = t.Price
			candle.High = t.Price
			candle.Low = t.Price
			found = true
		}
		if t.Price > candle.High {
			candle.High = t.Price
		}
		if t.Price < candle.Low {
			candle.Low = t.Price
		}
		candle.Close = t.Price
		candle.Volume += t.Volume
	}

	return candle, found
}
