package domain

import "time"

// BestExitResult is the outcome of a retrospective best-exit computation.
// The three fields are jointly present or jointly absent: the all-absent
// value is returned whenever the computation cannot be performed (invalid
// buy facts, or no candle at or after the purchase instant).
type BestExitResult struct {
	BestSellAt        *time.Time
	BestSellPrice     *float64
	BestReturnPercent *float64
}

// Absent reports whether the result carries no exit point.
func (r BestExitResult) Absent() bool {
	return r.BestSellAt == nil
}
