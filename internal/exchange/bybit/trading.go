package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	"github.com/alphaflow-trading/meanrev-bot/internal/exchange"
)

// formatQty renders a quantity the way the API expects: plain decimal, no
// exponent.
func formatQty(qty float64) string {
	return strconv.FormatFloat(qty, 'f', -1, 64)
}

// CreateOrder submits one order in the linear category and returns the
// exchange order ID. Market orders carry the attached stop loss when set;
// exits are sent reduce-only by the caller.
func (c *Client) CreateOrder(ctx context.Context, params exchange.OrderParams) (string, error) {
	if params.Symbol == "" {
		return "", fmt.Errorf("symbol is required")
	}
	if params.Qty <= 0 {
		return "", fmt.Errorf("qty must be positive")
	}

	apiParams := map[string]interface{}{
		"category":    Category,
		"symbol":      params.Symbol,
		"side":        string(params.Side),
		"orderType":   string(params.OrderType),
		"qty":         formatQty(params.Qty),
		"timeInForce": "GTC",
	}
	if params.OrderType == exchange.OrderTypeLimit {
		if params.Price <= 0 {
			return "", fmt.Errorf("price is required for limit orders")
		}
		apiParams["price"] = strconv.FormatFloat(params.Price, 'f', -1, 64)
	}
	if params.ReduceOnly {
		apiParams["reduceOnly"] = true
	}
	if params.CloseOnTrigger {
		apiParams["closeOnTrigger"] = true
	}
	if params.TakeProfit > 0 {
		apiParams["takeProfit"] = strconv.FormatFloat(params.TakeProfit, 'f', -1, 64)
	}
	if params.StopLoss > 0 {
		apiParams["stopLoss"] = strconv.FormatFloat(params.StopLoss, 'f', -1, 64)
	}

	var result interface{}
	err := c.withRetry(ctx, func() error {
		var callErr error
		result, callErr = c.httpClient.NewUtaBybitServiceWithParams(apiParams).PlaceOrder(ctx)
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("failed to place order: %w", err)
	}

	orderID, err := parseOrderID(result)
	if err != nil {
		return "", fmt.Errorf("failed to parse order response: %w", err)
	}
	return orderID, nil
}

// CancelOrder cancels an open order by ID.
func (c *Client) CancelOrder(ctx context.Context, symbol, orderID string) error {
	params := map[string]interface{}{
		"category": Category,
		"symbol":   symbol,
		"orderId":  orderID,
	}

	err := c.withRetry(ctx, func() error {
		_, callErr := c.httpClient.NewUtaBybitServiceWithParams(params).CancelOrder(ctx)
		return callErr
	})
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	return nil
}

func parseOrderID(response interface{}) (string, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return "", fmt.Errorf("invalid response type")
	}
	if serverResp.RetCode != 0 {
		return "", ParseAPIError(serverResp.RetCode, serverResp.RetMsg)
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	var orderResult struct {
		OrderID     string `json:"orderId"`
		OrderLinkID string `json:"orderLinkId"`
	}
	if err := json.Unmarshal(resultBytes, &orderResult); err != nil {
		return "", fmt.Errorf("failed to unmarshal order result: %w", err)
	}
	if orderResult.OrderID == "" {
		return "", fmt.Errorf("order response missing orderId")
	}
	return orderResult.OrderID, nil
}
