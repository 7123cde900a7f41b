package bybit

import "fmt"

// APIError is a Bybit retCode/retMsg pair surfaced as an error.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bybit API error %d: %s", e.Code, e.Message)
}

// Bybit error codes this bot cares about.
const (
	ErrCodeInvalidAPIKey       = 10003
	ErrCodeInvalidSignature    = 10004
	ErrCodeInvalidTimestamp    = 10005
	ErrCodeRateLimitExceeded   = 10006
	ErrCodeOrderNotFound       = 110001
	ErrCodeInsufficientBalance = 110007
	ErrCodeInvalidQuantity     = 110020
)

// ParseAPIError converts a non-zero retCode into an APIError.
func ParseAPIError(retCode int, retMsg string) error {
	if retCode == 0 {
		return nil
	}
	return &APIError{Code: retCode, Message: retMsg}
}

// IsRetryable reports whether the error is transient: rate limiting and
// gateway-class failures are; rejections (bad quantity, insufficient
// balance, auth) are not.
func IsRetryable(err error) bool {
	apiErr, ok := err.(*APIError)
	if !ok {
		return false
	}
	switch apiErr.Code {
	case ErrCodeRateLimitExceeded, 500, 502, 503, 504:
		return true
	}
	return false
}
