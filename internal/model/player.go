package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Player represents a row in the `players` table.  AssignedTeamID is NULL
// while the player is unsold; once set it is immutable for the remainder of
// the tournament (enforced by the conditional UPDATE in the repository), so
// a player is never re-auctioned.  SoldPrice records the price at which the
// assignment happened: the winning bid amount for a settled player, or the
// base price for an auto-distributed one.
type Player struct {
	ID             uuid.UUID           // players.player_id
	TournamentID   uuid.UUID           // players.tournament_id
	Name           string              // players.name
	Category       string              // players.category (e.g. Batsman, Bowler)
	BasePrice      decimal.Decimal     // players.base_price
	AssignedTeamID uuid.NullUUID       // players.assigned_team_id (NULL while unsold)
	SoldPrice      decimal.NullDecimal // players.sold_price (NULL while unsold)
	CreatedAt      time.Time           // players.created_at
	UpdatedAt      time.Time           // players.updated_at
}

// Sold reports whether the player has been assigned to a team.
func (p *Player) Sold() bool { return p.AssignedTeamID.Valid }
