package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries_UpsertReplacesSameBucket(t *testing.T) {
	s := NewSeries(10)

	s.Upsert(Candle{Start: 0, Close: 100})
	s.Upsert(Candle{Start: 0, Close: 105})

	require.Equal(t, 1, s.Len())
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 105.0, last.Close)
}

func TestSeries_UpsertIgnoresOlderBucket(t *testing.T) {
	s := NewSeries(10)

	s.Upsert(Candle{Start: 120, Close: 100})
	s.Upsert(Candle{Start: 60, Close: 50})

	require.Equal(t, 1, s.Len())
	last, _ := s.Last()
	assert.Equal(t, int64(120), last.Start)
}

func TestSeries_EvictsOldestAtCapacity(t *testing.T) {
	s := NewSeries(3)

	for i := int64(0); i < 5; i++ {
		s.Upsert(Candle{Start: i * 60, Close: float64(i)})
	}

	require.Equal(t, 3, s.Len())
	snapshot := s.Snapshot()
	assert.Equal(t, int64(120), snapshot[0].Start)
	assert.Equal(t, int64(240), snapshot[2].Start)
}

func TestSeries_SnapshotIsACopy(t *testing.T) {
	s := NewSeries(10)
	s.Upsert(Candle{Start: 0, Close: 100})

	snapshot := s.Snapshot()
	snapshot[0].Close = 1

	last, _ := s.Last()
	assert.Equal(t, 100.0, last.Close)
}

func TestTickBuffer_DropsOldestAtCapacity(t *testing.T) {
	b := NewTickBuffer(3)

	for i := int64(1); i <= 5; i++ {
		b.Append(Tick{Timestamp: i * 1000, Price: float64(i)})
	}

	ticks := b.Snapshot()
	require.Len(t, ticks, 3)
	assert.Equal(t, 3.0, ticks[0].Price)
	assert.Equal(t, 5.0, ticks[2].Price)
}

func TestTickBuffer_AppendBatch(t *testing.T) {
	b := NewTickBuffer(60)

	b.Append(
		Tick{Timestamp: 1000, Price: 100, Volume: 1},
		Tick{Timestamp: 2000, Price: 101, Volume: 2},
	)

	assert.Equal(t, 2, b.Len())
}
