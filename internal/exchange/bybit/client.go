// Package bybit implements the exchange collaborators against Bybit's v5
// API: REST for account and trading, WebSocket for the public trade
// stream. Only the linear (USDT perpetual) category is supported.
package bybit

import (
	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// Category is fixed: this bot trades USDT-linear perpetuals only.
const Category = "linear"

// Config holds the connection settings for the Bybit client.
type Config struct {
	APIKey    string
	APISecret string
	Testnet   bool
	Demo      bool // demo trading environment (paper trading)
}

// Client wraps the Bybit v5 REST API for the endpoints this bot uses:
// wallet balance, order create/cancel and instrument info.
type Client struct {
	httpClient  *bybit_api.Client
	testnet     bool
	demo        bool
	instruments *instrumentCache
	retry       RetryConfig
}

// NewClient creates a Bybit REST client against the environment the config
// selects.
func NewClient(config Config) *Client {
	var baseURL string
	switch {
	case config.Demo:
		baseURL = "https://api-demo.bybit.com"
	case config.Testnet:
		baseURL = bybit_api.TESTNET
	default:
		baseURL = bybit_api.MAINNET
	}

	c := &Client{
		httpClient: bybit_api.NewBybitHttpClient(
			config.APIKey,
			config.APISecret,
			bybit_api.WithBaseURL(baseURL),
		),
		testnet: config.Testnet,
		demo:    config.Demo,
		retry:   DefaultRetryConfig(),
	}
	c.instruments = newInstrumentCache(c)
	return c
}

// Environment returns a human-readable name of the target environment.
func (c *Client) Environment() string {
	switch {
	case c.demo:
		return "demo"
	case c.testnet:
		return "testnet"
	default:
		return "mainnet"
	}
}

// PublicStreamURL returns the public WebSocket endpoint for the linear
// category in the client's environment.
func (c *Client) PublicStreamURL() string {
	if c.testnet {
		return "wss://stream-testnet.bybit.com/v5/public/linear"
	}
	return "wss://stream.bybit.com/v5/public/linear"
}
