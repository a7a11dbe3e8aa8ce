package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tournament statuses as stored in the tournaments.status column.
const (
	TournamentDraft      = "Draft"
	TournamentConfigured = "Configured"
	TournamentInProgress = "InProgress"
	TournamentCompleted  = "Completed"
)

// Tournament represents a row in the `tournaments` table.  Besides the
// descriptive fields it carries the auction configuration that gates every
// bid and settlement: whether auctions are enabled at all, the minimum bid
// increment, the starting budget funded into each team wallet when an
// auction starts, and the roster bounds used by auto-distribution.
//
// MinBidIncrement and MaxTeamBudget are nullable; a tournament without a
// configured increment accepts any strictly higher bid, and one without a
// budget never funds wallets on auction start.
type Tournament struct {
	ID              uuid.UUID           // tournaments.tournament_id
	Name            string              // tournaments.name
	AdminID         uint64              // tournaments.admin_id (references users.id)
	Format          string              // tournaments.format (League / Knockout / Mixed)
	AuctionEnabled  bool                // tournaments.auction_enabled
	MinPlayers      int                 // tournaments.min_players (roster lower bound)
	MaxPlayers      int                 // tournaments.max_players (roster upper bound)
	MinBidIncrement decimal.NullDecimal // tournaments.min_bid_increment (nullable)
	MaxTeamBudget   decimal.NullDecimal // tournaments.max_team_budget (nullable)
	BidSeconds      *int                // tournaments.bid_seconds (nullable; external timer policy)
	Status          string              // tournaments.status
	CreatedBy       uint64              // tournaments.created_by
	UpdatedBy       uint64              // tournaments.updated_by
	CreatedAt       time.Time           // tournaments.created_at
	UpdatedAt       time.Time           // tournaments.updated_at
}
