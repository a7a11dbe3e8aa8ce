package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Team represents a row in the `teams` table.  The wallet is the team's
// remaining spendable budget for the tournament's auction.  It is NULL until
// an auction start funds it from the tournament budget, and from then on it
// is mutated only by the settlement path (conditional debit, never below
// zero).  The roster is not stored here; it is derived by querying players
// whose assigned_team_id equals this team's ID.
type Team struct {
	ID           uuid.UUID           // teams.team_id
	TournamentID uuid.UUID           // teams.tournament_id
	Name         string              // teams.name
	Key          string              // teams.team_key (short unique code, e.g. "CSK")
	ManagerID    uint64              // teams.manager_id (references users.id; may bid for this team)
	Wallet       decimal.NullDecimal // teams.wallet (NULL until auction start)
	LogoURL      *string             // teams.logo_url (nullable)
	CreatedBy    uint64              // teams.created_by
	UpdatedBy    uint64              // teams.updated_by
	CreatedAt    time.Time           // teams.created_at
	UpdatedAt    time.Time           // teams.updated_at
}
