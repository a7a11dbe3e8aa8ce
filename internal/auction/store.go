package auction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/tournament-auction/internal/model"
	"github.com/iliyamo/tournament-auction/internal/queue"
)

// The engine reaches durable storage only through these interfaces.  The SQL
// implementation lives in internal/repository (see repository.Ledger); tests
// substitute an in-memory fake.  Lookup methods return (nil, nil) when the
// entity does not exist — the engine owns the error taxonomy and translates
// absence into its own sentinels.

// TournamentStore reads the tournament auction configuration.  The
// configuration is read-only during an auction.
type TournamentStore interface {
	GetTournament(ctx context.Context, id uuid.UUID) (*model.Tournament, error)
}

// TeamStore reads teams and mutates wallets.  DebitWallet must be atomic
// against concurrent debits of the same team: it subtracts the amount only
// if the balance covers it, as one indivisible operation, and reports
// whether it did.  InitWallet funds a wallet only while it is still unset,
// so repeated auction starts never re-fund spent wallets.  CreditWallet is
// the compensation path for a settlement whose assign step lost a race.
type TeamStore interface {
	GetTeam(ctx context.Context, id uuid.UUID) (*model.Team, error)
	ListTeams(ctx context.Context, tournamentID uuid.UUID) ([]model.Team, error)
	InitWallet(ctx context.Context, teamID uuid.UUID, budget decimal.Decimal) error
	DebitWallet(ctx context.Context, teamID uuid.UUID, amount decimal.Decimal) (bool, error)
	CreditWallet(ctx context.Context, teamID uuid.UUID, amount decimal.Decimal) error
}

// PlayerStore reads players and performs the assign half of settlement.
// AssignToTeam sets the assignment only while the player is still unsold and
// reports whether it did; an assignment, once made, is immutable.
type PlayerStore interface {
	GetPlayer(ctx context.Context, id uuid.UUID) (*model.Player, error)
	ListUnsoldPlayers(ctx context.Context, tournamentID uuid.UUID) ([]model.Player, error)
	CountTeamPlayers(ctx context.Context, teamID uuid.UUID) (int, error)
	AssignToTeam(ctx context.Context, playerID, teamID uuid.UUID, price decimal.Decimal) (bool, error)
}

// BidStore appends to and derives from the append-only bid log.
// HighestBid returns the top bid for a player within an auction (highest
// amount, earliest placement on equal amounts), or nil when the player has
// received no bid.
type BidStore interface {
	HighestBid(ctx context.Context, auctionID, playerID uuid.UUID) (*model.Bid, error)
	AppendBid(ctx context.Context, bid *model.Bid) error
}

// AuctionStore persists auction rows.  UpdateStatus is a compare-and-set:
// it moves the auction from `from` to `to` only if the status still equals
// `from`, stamping the updated-by actor (and the end time when endedAt is
// non-nil), and reports whether the swap happened.  ActiveAuction returns
// the tournament's InProgress or Paused auction, or nil when there is none.
type AuctionStore interface {
	CreateAuction(ctx context.Context, a *model.Auction) error
	GetAuction(ctx context.Context, id uuid.UUID) (*model.Auction, error)
	ActiveAuction(ctx context.Context, tournamentID uuid.UUID) (*model.Auction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AuctionStatus, by model.Actor, endedAt *time.Time) (bool, error)
}

// Store bundles everything the engine needs from the ledger.
type Store interface {
	TournamentStore
	TeamStore
	PlayerStore
	BidStore
	AuctionStore
}

// Notifier is the one-way push channel the engine announces state changes
// on.  Implementations deliver at least once and are never called back into
// by consumers.  Publish failures are logged by the engine and do not fail
// the operation that triggered them.
type Notifier interface {
	Publish(ctx context.Context, event queue.AuctionEvent) error
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(ctx context.Context, event queue.AuctionEvent) error

// Publish calls f.
func (f NotifierFunc) Publish(ctx context.Context, event queue.AuctionEvent) error {
	return f(ctx, event)
}
