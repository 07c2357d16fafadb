package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"sniper-sim/internal/domain"
)

func candleServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cursor := r.URL.Query().Get("before_timestamp")
		body, ok := pages[cursor]
		if !ok {
			t.Errorf("unexpected cursor %q", cursor)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
}

func TestFetchCandles_PaginatesAndDedupes(t *testing.T) {
	// Page size 3. The first page is full so pagination continues with
	// cursor oldest-60. The second page overlaps at ts=180 with a
	// different high, and is short, so fetching stops.
	srv := candleServer(t, map[string]string{
		"":    `{"ohlcv":[[300,0,1,0,0],[240,0,2,0,0],[180,0,3,0,0]]}`,
		"120": `{"ohlcv":[[180,0,10,0,0],[120,0,4,0,0]]}`,
	})
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.CandlePageSize = 3
	client := NewClient(cfg)

	candles, err := client.FetchCandles(context.Background(), "pool1", 0)
	require.NoError(t, err)
	require.Equal(t, []domain.Candle{
		{Timestamp: 120, High: 4},
		{Timestamp: 180, High: 10}, // later page wins the overlap
		{Timestamp: 240, High: 2},
		{Timestamp: 300, High: 1},
	}, candles)
}

func TestFetchCandles_StopsAtFloor(t *testing.T) {
	// The page is full but its oldest candle is at or before the floor,
	// so no second request happens.
	srv := candleServer(t, map[string]string{
		"": `{"ohlcv":[[300,0,1,0,0],[240,0,2,0,0],[180,0,3,0,0]]}`,
	})
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.CandlePageSize = 3
	client := NewClient(cfg)

	candles, err := client.FetchCandles(context.Background(), "pool1", 200)
	require.NoError(t, err)
	require.Len(t, candles, 3)
}

func TestFetchCandles_SkipsMalformedRows(t *testing.T) {
	srv := candleServer(t, map[string]string{
		"": `{"ohlcv":[
			[300,0,1,0,0],
			[240,0,0,0,0],
			[180,0,-2,0,0],
			["oops",0,3,0,0],
			[120,0,"4.5",0,0],
			[60]
		]}`,
	})
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	candles, err := client.FetchCandles(context.Background(), "pool1", 0)
	require.NoError(t, err)
	require.Equal(t, []domain.Candle{
		{Timestamp: 120, High: 4.5},
		{Timestamp: 300, High: 1},
	}, candles)
}

func TestFetchCandles_EmptyHistory(t *testing.T) {
	srv := candleServer(t, map[string]string{"": `{"ohlcv":[]}`})
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	candles, err := client.FetchCandles(context.Background(), "pool1", 0)
	require.NoError(t, err)
	require.Empty(t, candles)
}

func TestFetchCandles_PageFailureFailsFetch(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("before_timestamp") == "" {
			w.Write([]byte(`{"ohlcv":[[300,0,1,0,0],[240,0,2,0,0],[180,0,3,0,0]]}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.CandlePageSize = 3
	client := NewClient(cfg)

	candles, err := client.FetchCandles(context.Background(), "pool1", 0)
	require.Error(t, err)
	require.Nil(t, candles, "a failed page must fail the whole fetch")
}
