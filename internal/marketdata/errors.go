package marketdata

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoPools indicates the aggregator knows the token but lists no
	// liquidity pools for it.
	ErrNoPools = errors.New("no pools listed for token")

	// ErrInvalidMint indicates the mint address is not a 32-byte
	// base58 value.
	ErrInvalidMint = errors.New("invalid mint address")
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

// Retryable reports whether the status warrants another attempt.
// Rate limits and server-side failures are retryable, everything
// else is terminal.
func (e *StatusError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}
