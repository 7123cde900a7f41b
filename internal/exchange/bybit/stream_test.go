package bybit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaflow-trading/meanrev-bot/internal/market"
)

func streamForTest() *TradeStream {
	return &TradeStream{
		subscriptions: make(map[string]func([]market.Tick)),
		reconnectChan: make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
}

func TestTradeStream_HandleMessageDispatchesTicks(t *testing.T) {
	s := streamForTest()

	var got []market.Tick
	s.subscriptions["publicTrade.BTCUSDT"] = func(ticks []market.Tick) {
		got = append(got, ticks...)
	}

	payload := []byte(`{
		"topic": "publicTrade.BTCUSDT",
		"type": "snapshot",
		"ts": 1672304486868,
		"data": [
			{"T": 1672304486865, "s": "BTCUSDT", "S": "Buy", "v": "0.001", "p": "16578.50"},
			{"T": 1672304486866, "s": "BTCUSDT", "S": "Sell", "v": "0.002", "p": "16578.00"}
		]
	}`)
	s.handleMessage(payload)

	require.Len(t, got, 2)
	assert.Equal(t, int64(1672304486865), got[0].Timestamp)
	assert.Equal(t, 16578.50, got[0].Price)
	assert.Equal(t, 0.001, got[0].Volume)
	assert.Equal(t, 16578.00, got[1].Price)
}

func TestTradeStream_HandleMessageIgnoresAcksAndUnknownTopics(t *testing.T) {
	s := streamForTest()

	called := false
	s.subscriptions["publicTrade.BTCUSDT"] = func([]market.Tick) { called = true }

	s.handleMessage([]byte(`{"op":"pong","success":true}`))
	s.handleMessage([]byte(`{"topic":"publicTrade.ETHUSDT","data":[{"T":1,"p":"1","v":"1"}]}`))
	s.handleMessage([]byte(`not json`))

	assert.False(t, called)
}

func TestTradeStream_HandleMessageSkipsMalformedPrints(t *testing.T) {
	s := streamForTest()

	var got []market.Tick
	s.subscriptions["publicTrade.BTCUSDT"] = func(ticks []market.Tick) { got = ticks }

	s.handleMessage([]byte(`{
		"topic": "publicTrade.BTCUSDT",
		"data": [
			{"T": 1, "p": "not-a-number", "v": "1"},
			{"T": 2, "p": "100.5", "v": "0.5"}
		]
	}`))

	require.Len(t, got, 1)
	assert.Equal(t, 100.5, got[0].Price)
}
