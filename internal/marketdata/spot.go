package marketdata

import (
	"context"
	"math"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// SpotPrices resolves current USD prices for the given mints. Requests are
// chunked to the oracle's batch limit and merged. A failed chunk leaves its
// mints out of the result instead of failing the whole lookup; absence
// means unknown, never zero.
func (c *Client) SpotPrices(ctx context.Context, mints []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(mints))

	for start := 0; start < len(mints); start += c.batchSize {
		end := start + c.batchSize
		if end > len(mints) {
			end = len(mints)
		}
		chunk := mints[start:end]

		query := url.Values{}
		query.Set("tokens", strings.Join(chunk, ","))

		body, err := c.getJSON(ctx, "/price/multi", query)
		if err != nil {
			if ctx.Err() != nil {
				return prices, ctx.Err()
			}
			c.log.Warn().Err(err).Int("mints", len(chunk)).
				Msg("spot price chunk failed, entries left unknown")
			continue
		}
		mergeSpotPrices(prices, body)
	}

	return prices, nil
}

func mergeSpotPrices(prices map[string]float64, body []byte) {
	gjson.ParseBytes(body).ForEach(func(key, value gjson.Result) bool {
		usd := value.Get("usdPrice")
		if !usd.Exists() {
			return true
		}
		p, ok := finite(usd.Float())
		if !ok || p < 0 {
			return true
		}
		prices[key.String()] = p
		return true
	})
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
