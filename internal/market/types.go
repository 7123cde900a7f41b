package market

// BucketSeconds is the candle interval. All aggregation in this bot is
// fixed at one minute.
const BucketSeconds = 60

// Tick is a single trade print from the public trade stream.
// Timestamp is in milliseconds since epoch, as delivered by Bybit.
type Tick struct {
	Timestamp int64
	Price     float64
	Volume    float64
}

// Bucket returns the 60-second bucket start (in seconds) the tick falls into.
func (t Tick) Bucket() int64 {
	sec := t.Timestamp / 1000
	return sec - sec%BucketSeconds
}

// Candle is a fixed-interval OHLCV aggregate of trades. Start is the bucket
// start in seconds, floored to the minute. The most recent candle is mutable
// (fully recomputed as more ticks for its bucket arrive); older candles are
// never touched again.
type Candle struct {
	Start  int64
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
