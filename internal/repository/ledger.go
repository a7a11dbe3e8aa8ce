package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/tournament-auction/internal/model"
)

// Ledger bundles the entity repos into the single store the auction engine
// consumes (it satisfies auction.Store).  It is a thin veneer: every method
// forwards to exactly one repo call, so the engine's atomicity guarantees
// rest on the conditional UPDATEs inside the repos, not on anything here.
type Ledger struct {
	Tournaments *TournamentRepo
	Teams       *TeamRepo
	Players     *PlayerRepo
	Auctions    *AuctionRepo
	Bids        *BidRepo
}

// NewLedger constructs a Ledger over the given repos.
func NewLedger(t *TournamentRepo, tm *TeamRepo, p *PlayerRepo, a *AuctionRepo, b *BidRepo) *Ledger {
	if t == nil || tm == nil || p == nil || a == nil || b == nil {
		panic("nil repository passed to NewLedger")
	}
	return &Ledger{Tournaments: t, Teams: tm, Players: p, Auctions: a, Bids: b}
}

func (l *Ledger) GetTournament(ctx context.Context, id uuid.UUID) (*model.Tournament, error) {
	return l.Tournaments.GetByID(ctx, id)
}

func (l *Ledger) GetTeam(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	return l.Teams.GetByID(ctx, id)
}

func (l *Ledger) ListTeams(ctx context.Context, tournamentID uuid.UUID) ([]model.Team, error) {
	return l.Teams.ListByTournament(ctx, tournamentID)
}

func (l *Ledger) InitWallet(ctx context.Context, teamID uuid.UUID, budget decimal.Decimal) error {
	return l.Teams.InitWallet(ctx, teamID, budget)
}

func (l *Ledger) DebitWallet(ctx context.Context, teamID uuid.UUID, amount decimal.Decimal) (bool, error) {
	return l.Teams.DebitWallet(ctx, teamID, amount)
}

func (l *Ledger) CreditWallet(ctx context.Context, teamID uuid.UUID, amount decimal.Decimal) error {
	return l.Teams.CreditWallet(ctx, teamID, amount)
}

func (l *Ledger) GetPlayer(ctx context.Context, id uuid.UUID) (*model.Player, error) {
	return l.Players.GetByID(ctx, id)
}

func (l *Ledger) ListUnsoldPlayers(ctx context.Context, tournamentID uuid.UUID) ([]model.Player, error) {
	return l.Players.ListUnsold(ctx, tournamentID)
}

func (l *Ledger) CountTeamPlayers(ctx context.Context, teamID uuid.UUID) (int, error) {
	return l.Players.CountByTeam(ctx, teamID)
}

func (l *Ledger) AssignToTeam(ctx context.Context, playerID, teamID uuid.UUID, price decimal.Decimal) (bool, error) {
	return l.Players.AssignToTeam(ctx, playerID, teamID, price)
}

func (l *Ledger) HighestBid(ctx context.Context, auctionID, playerID uuid.UUID) (*model.Bid, error) {
	return l.Bids.HighestForPlayer(ctx, auctionID, playerID)
}

func (l *Ledger) AppendBid(ctx context.Context, bid *model.Bid) error {
	return l.Bids.Append(ctx, bid)
}

func (l *Ledger) CreateAuction(ctx context.Context, a *model.Auction) error {
	return l.Auctions.Create(ctx, a)
}

func (l *Ledger) GetAuction(ctx context.Context, id uuid.UUID) (*model.Auction, error) {
	return l.Auctions.GetByID(ctx, id)
}

func (l *Ledger) ActiveAuction(ctx context.Context, tournamentID uuid.UUID) (*model.Auction, error) {
	return l.Auctions.ActiveByTournament(ctx, tournamentID)
}

func (l *Ledger) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AuctionStatus, by model.Actor, endedAt *time.Time) (bool, error) {
	return l.Auctions.UpdateStatus(ctx, id, from, to, by, endedAt)
}
