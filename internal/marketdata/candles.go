package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"

	"sniper-sim/internal/domain"
)

// candleCursorStep backs the pagination cursor off the oldest seen
// timestamp so adjacent pages overlap rather than skip.
const candleCursorStep = 60

// FetchCandles pages backward through a pool's minute OHLCV history and
// returns the deduplicated candles in ascending timestamp order. When two
// pages carry the same timestamp, the later page wins. Pagination stops at
// a short page, an empty page, the page cap, or once the oldest fetched
// candle is at or before stopBefore (when positive). Any page failure
// fails the whole fetch.
func (c *Client) FetchCandles(ctx context.Context, pool string, stopBefore int64) ([]domain.Candle, error) {
	byTimestamp := make(map[int64]float64)

	var cursor int64
	for page := 1; page <= c.pageCap; page++ {
		query := url.Values{}
		query.Set("aggregate", "1")
		query.Set("limit", strconv.Itoa(c.pageSize))
		if cursor > 0 {
			query.Set("before_timestamp", strconv.FormatInt(cursor, 10))
		}

		body, err := c.getJSON(ctx, "/pools/"+pool+"/ohlcv/minute", query)
		if err != nil {
			return nil, fmt.Errorf("fetch candles page %d: %w", page, err)
		}

		rows := parseOHLCVRows(body)
		if len(rows.valid) == 0 {
			break
		}

		oldest := rows.valid[0].Timestamp
		for _, candle := range rows.valid {
			if candle.Timestamp < oldest {
				oldest = candle.Timestamp
			}
			byTimestamp[candle.Timestamp] = candle.High
		}

		if rows.raw < c.pageSize {
			break
		}
		if stopBefore > 0 && oldest <= stopBefore {
			break
		}
		cursor = oldest - candleCursorStep
	}

	candles := make([]domain.Candle, 0, len(byTimestamp))
	for ts, high := range byTimestamp {
		candles = append(candles, domain.Candle{Timestamp: ts, High: high})
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].Timestamp < candles[j].Timestamp })
	return candles, nil
}

type ohlcvPage struct {
	raw   int
	valid []domain.Candle
}

// parseOHLCVRows extracts [timestamp, open, high, ...] rows, keeping rows
// with a finite timestamp and a finite positive high. The raw count still
// includes malformed rows so short-page detection uses what upstream sent.
func parseOHLCVRows(body []byte) ohlcvPage {
	root := gjson.ParseBytes(body)
	if ohlcv := root.Get("ohlcv"); ohlcv.IsArray() {
		root = ohlcv
	}

	var page ohlcvPage
	root.ForEach(func(_, row gjson.Result) bool {
		page.raw++
		fields := row.Array()
		if len(fields) < 3 {
			return true
		}
		ts, tsOK := finiteNumber(fields[0])
		high, highOK := finiteNumber(fields[2])
		if tsOK && highOK && high > 0 {
			page.valid = append(page.valid, domain.Candle{Timestamp: int64(ts), High: high})
		}
		return true
	})
	return page
}

func finiteNumber(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return finite(v.Num)
	case gjson.String:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	default:
		return 0, false
	}
}
