package market

// DefaultSeriesCapacity caps the candle history kept per symbol.
const DefaultSeriesCapacity = 500

// Series is an ordered candle history with strictly increasing bucket
// starts (gaps are fine) and a fixed capacity, oldest evicted. It is owned
// by exactly one engine and needs no locking of its own.
type Series struct {
	candles []Candle
	cap     int
}

// NewSeries creates a series holding at most capacity candles.
// A capacity <= 0 falls back to DefaultSeriesCapacity.
func NewSeries(capacity int) *Series {
	if capacity <= 0 {
		capacity = DefaultSeriesCapacity
	}
	return &Series{
		candles: make([]Candle, 0, capacity),
		cap:     capacity,
	}
}

// Upsert replaces the last candle when c belongs to the same bucket,
// otherwise appends. Candles older than the last stored bucket are ignored
// to keep bucket starts strictly increasing.
func (s *Series) Upsert(c Candle) {
	n := len(s.candles)
	if n > 0 {
		last := s.candles[n-1].Start
		if c.Start == last {
			s.candles[n-1] = c
			return
		}
		if c.Start < last {
			return
		}
	}
	if n == s.cap {
		copy(s.candles, s.candles[1:])
		s.candles = s.candles[:n-1]
	}
	s.candles = append(s.candles, c)
}

// Len returns the number of stored candles.
func (s *Series) Len() int {
	return len(s.candles)
}

// Last returns the most recent candle, or false when the series is empty.
func (s *Series) Last() (Candle, bool) {
	if len(s.candles) == 0 {
		return Candle{}, false
	}
	return s.candles[len(s.candles)-1], true
}

// Snapshot returns a copy of the stored candles, oldest first. Strategy
// evaluation works on the copy so an in-flight tick append can never
// mutate data mid-computation.
func (s *Series) Snapshot() []Candle {
	out := make([]Candle, len(s.candles))
	copy(out, s.candles)
	return out
}
