package domain

import "time"

// ExitReport is the hindsight record written when the lifecycle engine
// closes a position: the realized exit alongside the best exit an investor
// could have taken after the same purchase. Best-exit fields are nil when
// the retrospective computation produced the absent result.
type ExitReport struct {
	ReportID   string
	PositionID string
	Symbol     string
	Mint       string

	BoughtAt  time.Time
	BuyPrice  float64
	SellPrice float64
	SoldAt    time.Time
	Reason    string

	BestSellAt        *time.Time
	BestSellPrice     *float64
	BestReturnPercent *float64
	Warning           string

	CreatedAt time.Time
}
