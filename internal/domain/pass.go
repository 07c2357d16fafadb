package domain

import "time"

// PassSummary reports what a single lifecycle pass did. Per-position
// failures are collected here instead of aborting the pass.
type PassSummary struct {
	StartedAt time.Time
	Duration  time.Duration

	TokensSeen int
	TokensNew  int
	Opened     int
	Evaluated  int
	Closed     int
	Failures   []string
}
