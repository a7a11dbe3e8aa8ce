package model

import (
	"time"

	"github.com/google/uuid"
)

// AuctionStatus is the lifecycle state of an auction.  The legal transitions
// are Pending → InProgress ⇄ Paused → Completed; Completed is terminal.
type AuctionStatus string

const (
	AuctionPending    AuctionStatus = "Pending"
	AuctionInProgress AuctionStatus = "InProgress"
	AuctionPaused     AuctionStatus = "Paused"
	AuctionCompleted  AuctionStatus = "Completed"
)

// Active reports whether the status counts against the one-active-auction-
// per-tournament invariant (InProgress or Paused).
func (s AuctionStatus) Active() bool {
	return s == AuctionInProgress || s == AuctionPaused
}

// Terminal reports whether no further transitions are legal.
func (s AuctionStatus) Terminal() bool { return s == AuctionCompleted }

// Auction represents a row in the `auctions` table.  At most one auction per
// tournament may be active at a time.  Auctions are never deleted; completed
// rows are kept for audit, together with who created and last modified them.
type Auction struct {
	ID           uuid.UUID     // auctions.auction_id
	TournamentID uuid.UUID     // auctions.tournament_id
	Status       AuctionStatus // auctions.status
	StartedAt    *time.Time    // auctions.started_at (nullable)
	EndedAt      *time.Time    // auctions.ended_at (nullable)
	CreatedBy    Actor         // auctions.created_by (NULL = system)
	UpdatedBy    Actor         // auctions.updated_by (NULL = system)
	CreatedAt    time.Time     // auctions.created_at
	UpdatedAt    time.Time     // auctions.updated_at
}
