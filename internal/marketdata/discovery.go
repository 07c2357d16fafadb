package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"sniper-sim/internal/domain"
)

// LatestTokens fetches the newest listings from the discovery feed.
func (c *Client) LatestTokens(ctx context.Context, limit int) ([]domain.TokenListing, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	body, err := c.getJSON(ctx, "/tokens/latest", query)
	if err != nil {
		return nil, fmt.Errorf("fetch latest tokens: %w", err)
	}
	return parseListings(body), nil
}

func parseListings(body []byte) []domain.TokenListing {
	root := gjson.ParseBytes(body)
	if tokens := root.Get("tokens"); tokens.IsArray() {
		root = tokens
	}

	var listings []domain.TokenListing
	root.ForEach(func(_, item gjson.Result) bool {
		symbol := item.Get("symbol").String()
		mint := item.Get("tokenMint").String()
		if symbol == "" || mint == "" {
			return true
		}
		listings = append(listings, domain.TokenListing{Symbol: symbol, Mint: mint})
		return true
	})
	return listings
}
