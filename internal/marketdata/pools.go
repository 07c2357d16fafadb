package marketdata

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"
)

// ResolveTopPool returns the address of the token's top liquidity pool.
// The first pool in the upstream ranking wins.
func (c *Client) ResolveTopPool(ctx context.Context, mint string) (string, error) {
	if !validMint(mint) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMint, mint)
	}

	query := url.Values{}
	query.Set("page", "1")

	body, err := c.getJSON(ctx, "/tokens/"+mint+"/pools", query)
	if err != nil {
		return "", fmt.Errorf("list pools for %s: %w", mint, err)
	}

	root := gjson.ParseBytes(body)
	if pools := root.Get("pools"); pools.IsArray() {
		root = pools
	}

	var top string
	root.ForEach(func(_, pool gjson.Result) bool {
		if addr := pool.Get("address").String(); addr != "" {
			top = addr
			return false
		}
		return true
	})
	if top == "" {
		return "", fmt.Errorf("token %s: %w", mint, ErrNoPools)
	}
	return top, nil
}
