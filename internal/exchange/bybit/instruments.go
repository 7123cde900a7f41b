package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// instrumentCache caches per-symbol lot-size filters. Instrument metadata
// is close to static, so one fetch per symbol per hour is plenty.
type instrumentCache struct {
	client *Client

	mu      sync.RWMutex
	steps   map[string]float64
	fetched map[string]time.Time
	ttl     time.Duration
}

func newInstrumentCache(client *Client) *instrumentCache {
	return &instrumentCache{
		client:  client,
		steps:   make(map[string]float64),
		fetched: make(map[string]time.Time),
		ttl:     time.Hour,
	}
}

// QtyStep returns the quantity step orders on the symbol must align to.
func (c *Client) QtyStep(ctx context.Context, symbol string) (float64, error) {
	c.instruments.mu.RLock()
	cached, ok := c.instruments.steps[symbol]
	fresh := ok && time.Since(c.instruments.fetched[symbol]) < c.instruments.ttl
	c.instruments.mu.RUnlock()
	if fresh {
		return cached, nil
	}

	step, err := c.fetchQtyStep(ctx, symbol)
	if err != nil {
		// A stale cached value beats failing the cycle.
		if ok {
			return cached, nil
		}
		return 0, err
	}

	c.instruments.mu.Lock()
	c.instruments.steps[symbol] = step
	c.instruments.fetched[symbol] = time.Now()
	c.instruments.mu.Unlock()
	return step, nil
}

func (c *Client) fetchQtyStep(ctx context.Context, symbol string) (float64, error) {
	params := map[string]interface{}{
		"category": Category,
		"symbol":   symbol,
	}

	var result interface{}
	err := c.withRetry(ctx, func() error {
		var callErr error
		result, callErr = c.httpClient.NewUtaBybitServiceWithParams(params).GetInstrumentInfo(ctx)
		return callErr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch instrument info: %w", err)
	}

	return parseQtyStep(result, symbol)
}

func parseQtyStep(response interface{}, symbol string) (float64, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return 0, fmt.Errorf("invalid response type")
	}
	if serverResp.RetCode != 0 {
		return 0, fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal result: %w", err)
	}

	var instrumentResult struct {
		List []struct {
			Symbol        string `json:"symbol"`
			LotSizeFilter struct {
				MinOrderQty string `json:"minOrderQty"`
				QtyStep     string `json:"qtyStep"`
			} `json:"lotSizeFilter"`
		} `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &instrumentResult); err != nil {
		return 0, fmt.Errorf("failed to unmarshal instrument result: %w", err)
	}

	for _, item := range instrumentResult.List {
		if item.Symbol != symbol {
			continue
		}
		step := parseFloat(item.LotSizeFilter.QtyStep)
		if step <= 0 {
			return 0, fmt.Errorf("instrument %s has invalid qtyStep %q", symbol, item.LotSizeFilter.QtyStep)
		}
		return step, nil
	}
	return 0, fmt.Errorf("instrument %s not found", symbol)
}
