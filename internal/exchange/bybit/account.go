package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// accountTypeUnified is the only account type this bot trades from.
const accountTypeUnified = "UNIFIED"

// quoteCoin is the settlement currency of the linear category.
const quoteCoin = "USDT"

// WalletBalance returns the USDT balance available for trading in the
// unified account.
func (c *Client) WalletBalance(ctx context.Context) (float64, error) {
	params := map[string]interface{}{
		"accountType": accountTypeUnified,
		"coin":        quoteCoin,
	}

	var result interface{}
	err := c.withRetry(ctx, func() error {
		var callErr error
		result, callErr = c.httpClient.NewUtaBybitServiceWithParams(params).GetAccountWallet(ctx)
		return callErr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get wallet balance: %w", err)
	}

	balance, err := parseWalletBalance(result)
	if err != nil {
		return 0, fmt.Errorf("failed to parse wallet balance: %w", err)
	}
	return balance, nil
}

func parseWalletBalance(response interface{}) (float64, error) {
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

	var walletResult struct {
		List []struct {
			AccountType string `json:"accountType"`
			Coin        []struct {
				Coin             string `json:"coin"`
				WalletBalance    string `json:"walletBalance"`
				AvailableToTrade string `json:"availableToTrade"`
			} `json:"coin"`
		} `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &walletResult); err != nil {
		return 0, fmt.Errorf("failed to unmarshal wallet result: %w", err)
	}
	if len(walletResult.List) == 0 {
		return 0, fmt.Errorf("no account data found")
	}

	for _, coin := range walletResult.List[0].Coin {
		if coin.Coin != quoteCoin {
			continue
		}
		// Demo accounts report an empty availableToTrade; fall back to the
		// wallet balance then.
		if coin.AvailableToTrade != "" {
			return parseFloat(coin.AvailableToTrade), nil
		}
		return parseFloat(coin.WalletBalance), nil
	}
	return 0, nil
}

// parseFloat converts a Bybit string number, returning 0 for empty or
// malformed values.
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
