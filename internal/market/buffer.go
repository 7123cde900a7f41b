package market

import "sync"

// DefaultTickCapacity bounds the tick buffer to roughly the last minute of
// prints. A burst of more than this many trades inside a single bucket
// silently loses the earliest prints of that bucket from the aggregate;
// that tradeoff is accepted rather than papered over.
const DefaultTickCapacity = 60

// TickBuffer is a bounded FIFO of the most recent ticks. The WebSocket
// ingest goroutine appends while the engine's aggregation pass snapshots,
// so all access is mutex-guarded.
type TickBuffer struct {
	mu    sync.Mutex
	ticks []Tick
	cap   int
}

// NewTickBuffer creates a buffer holding at most capacity ticks.
// A capacity <= 0 falls back to DefaultTickCapacity.
func NewTickBuffer(capacity int) *TickBuffer {
	if capacity <= 0 {
		capacity = DefaultTickCapacity
	}
	return &TickBuffer{
		ticks: make([]Tick, 0, capacity),
		cap:   capacity,
	}
}

// Append adds ticks in arrival order, dropping the oldest entries once the
// buffer is full. Never blocks.
func (b *TickBuffer) Append(ticks ...Tick) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, t := range ticks {
		if len(b.ticks) == b.cap {
			copy(b.ticks, b.ticks[1:])
			b.ticks = b.ticks[:len(b.ticks)-1]
		}
		b.ticks = append(b.ticks, t)
	}
}

// Snapshot returns a copy of the buffered ticks, oldest first.
func (b *TickBuffer) Snapshot() []Tick {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Tick, len(b.ticks))
	copy(out, b.ticks)
	return out
}

// Len returns the number of buffered ticks.
func (b *TickBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ticks)
}
