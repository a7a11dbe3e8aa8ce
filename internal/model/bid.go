package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid is an immutable fact in the append-only `bids` table.  The "current
// highest bid" for a player is always derived from this log, never stored as
// a separate mutable pointer that could drift from it.  A bid, once
// accepted, is final; there is no retraction.
type Bid struct {
	ID        uuid.UUID       // bids.bid_id
	AuctionID uuid.UUID       // bids.auction_id
	PlayerID  uuid.UUID       // bids.player_id
	TeamID    uuid.UUID       // bids.team_id
	Amount    decimal.Decimal // bids.amount (always positive)
	PlacedAt  time.Time       // bids.placed_at
}
