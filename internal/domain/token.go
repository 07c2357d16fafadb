package domain

import "time"

// Token is a tradable asset discovered on the aggregator's new-listings feed.
// The symbol is the natural key used for discovery dedup; the mint address is
// the chain-level identifier used for every price lookup. Tokens are created
// once on first sight and never mutated.
type Token struct {
	Symbol       string
	Mint         string
	DiscoveredAt time.Time
}

// TokenListing is one descriptor from the discovery feed. Listings are
// ephemeral; accepted ones become Tokens.
type TokenListing struct {
	Symbol string
	Mint   string
}
