package domain

import "time"

// Position is one simulated holding. A position is open while SellPrice is
// nil and closed once it is set; the transition happens at most once and the
// record is never mutated afterwards.
//
// BuyPrice 0 signals that the spot price lookup failed at open time.
type Position struct {
	ID        string
	Symbol    string
	Mint      string
	BoughtAt  time.Time
	BuyPrice  float64
	SellPrice *float64
	SoldAt    *time.Time
}

// Open reports whether the position has not been closed yet.
func (p *Position) Open() bool {
	return p.SellPrice == nil
}

// Close reason codes recorded when the lifecycle engine exits a position.
const (
	CloseReasonHoldExpired  = "HOLD_EXPIRED"
	CloseReasonProfitTarget = "PROFIT_TARGET"
)
