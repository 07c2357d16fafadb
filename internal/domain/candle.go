package domain

// Candle is one minute-bar of pool price history. Only the timestamp and the
// high are consumed by the best-exit computation, so the other OHLCV fields
// are dropped at parse time.
//
// Within a fetched series timestamps are strictly increasing and unique.
type Candle struct {
	// Timestamp is seconds since epoch, minute-aligned.
	Timestamp int64
	// High is the bar's highest traded price, always > 0 for a valid row.
	High float64
}
