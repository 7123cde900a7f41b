// Package exchange defines the collaborator contracts the decision engine
// consumes: account/trading access and the public trade stream. The engine
// submits at most one order per action and never retries on its own;
// transport-level resilience belongs to the implementations.
package exchange

import (
	"context"

	"github.com/alphaflow-trading/meanrev-bot/internal/market"
)

// OrderSide is the direction of an order, in the exchange's own notation.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "Buy"
	OrderSideSell OrderSide = "Sell"
)

// OrderType is the execution type of an order. The engine only ever
// submits market orders.
type OrderType string

const (
	OrderTypeMarket OrderType = "Market"
	OrderTypeLimit  OrderType = "Limit"
)

// OrderParams describes one order submission.
type OrderParams struct {
	Symbol         string
	Side           OrderSide
	OrderType      OrderType
	Qty            float64
	Price          float64 // limit orders only; ignored for market orders
	ReduceOnly     bool
	CloseOnTrigger bool
	TakeProfit     float64 // 0 = none
	StopLoss       float64 // 0 = none
}

// Exchange is the trading and account surface the engine consumes.
type Exchange interface {
	// WalletBalance returns the available quote-currency (USDT) balance.
	WalletBalance(ctx context.Context) (float64, error)

	// CreateOrder submits one order and returns the exchange order ID.
	CreateOrder(ctx context.Context, params OrderParams) (string, error)

	// CancelOrder cancels an open order by ID.
	CancelOrder(ctx context.Context, symbol, orderID string) error

	// QtyStep returns the quantity step the symbol's orders must align to.
	QtyStep(ctx context.Context, symbol string) (float64, error)
}

// TradeStream delivers public trade prints per symbol.
type TradeStream interface {
	// SubscribeTrades registers a callback receiving each batch of trade
	// prints for the symbol. The callback runs on the stream's reader
	// goroutine and must not block.
	SubscribeTrades(symbol string, callback func([]market.Tick)) error

	// Close tears the stream connection down.
	Close() error
}
