package auction

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/tournament-auction/internal/model"
	"github.com/iliyamo/tournament-auction/internal/queue"
)

// memStore is an in-memory Store with the same conditional-write semantics
// as the SQL ledger: InitWallet funds only an unset wallet, DebitWallet
// checks-and-subtracts atomically, AssignToTeam assigns only while unsold,
// UpdateStatus is a compare-and-set.  One mutex guards everything, which is
// enough to make each method atomic the way a single UPDATE statement is.
type memStore struct {
	mu          sync.Mutex
	tournaments map[uuid.UUID]*model.Tournament
	teams       map[uuid.UUID]*model.Team
	players     map[uuid.UUID]*model.Player
	auctions    map[uuid.UUID]*model.Auction
	bids        []model.Bid
}

func newMemStore() *memStore {
	return &memStore{
		tournaments: map[uuid.UUID]*model.Tournament{},
		teams:       map[uuid.UUID]*model.Team{},
		players:     map[uuid.UUID]*model.Player{},
		auctions:    map[uuid.UUID]*model.Auction{},
	}
}

func (s *memStore) GetTournament(_ context.Context, id uuid.UUID) (*model.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *memStore) GetTeam(_ context.Context, id uuid.UUID) (*model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *memStore) ListTeams(_ context.Context, tournamentID uuid.UUID) ([]model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Team
	for _, t := range s.teams {
		if t.TournamentID == tournamentID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *memStore) InitWallet(_ context.Context, teamID uuid.UUID, budget decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[teamID]
	if !ok || t.Wallet.Valid {
		return nil
	}
	t.Wallet = decimal.NullDecimal{Decimal: budget, Valid: true}
	return nil
}

func (s *memStore) DebitWallet(_ context.Context, teamID uuid.UUID, amount decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[teamID]
	if !ok || !t.Wallet.Valid || t.Wallet.Decimal.Cmp(amount) < 0 {
		return false, nil
	}
	t.Wallet.Decimal = t.Wallet.Decimal.Sub(amount)
	return true, nil
}

func (s *memStore) CreditWallet(_ context.Context, teamID uuid.UUID, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[teamID]
	if !ok || !t.Wallet.Valid {
		return nil
	}
	t.Wallet.Decimal = t.Wallet.Decimal.Add(amount)
	return nil
}

func (s *memStore) GetPlayer(_ context.Context, id uuid.UUID) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) ListUnsoldPlayers(_ context.Context, tournamentID uuid.UUID) ([]model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Player
	for _, p := range s.players {
		if p.TournamentID == tournamentID && !p.Sold() {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *memStore) CountTeamPlayers(_ context.Context, teamID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.players {
		if p.AssignedTeamID.Valid && p.AssignedTeamID.UUID == teamID {
			n++
		}
	}
	return n, nil
}

func (s *memStore) AssignToTeam(_ context.Context, playerID, teamID uuid.UUID, price decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok || p.Sold() {
		return false, nil
	}
	p.AssignedTeamID = uuid.NullUUID{UUID: teamID, Valid: true}
	p.SoldPrice = decimal.NullDecimal{Decimal: price, Valid: true}
	return true, nil
}

func (s *memStore) HighestBid(_ context.Context, auctionID, playerID uuid.UUID) (*model.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *model.Bid
	for i := range s.bids {
		b := &s.bids[i]
		if b.AuctionID != auctionID || b.PlayerID != playerID {
			continue
		}
		if best == nil || b.Amount.Cmp(best.Amount) > 0 {
			best = b
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (s *memStore) AppendBid(_ context.Context, bid *model.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bids = append(s.bids, *bid)
	return nil
}

func (s *memStore) CreateAuction(_ context.Context, a *model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.auctions[a.ID] = &cp
	return nil
}

func (s *memStore) GetAuction(_ context.Context, id uuid.UUID) (*model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *memStore) ActiveAuction(_ context.Context, tournamentID uuid.UUID) (*model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.auctions {
		if a.TournamentID == tournamentID && a.Status.Active() {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.AuctionStatus, by model.Actor, endedAt *time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	a.UpdatedBy = by
	if endedAt != nil {
		a.EndedAt = endedAt
	}
	return true, nil
}

// wallet reads a team's balance directly, bypassing the engine.
func (s *memStore) wallet(teamID uuid.UUID) decimal.NullDecimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teams[teamID].Wallet
}

// player reads a player row directly.
func (s *memStore) player(id uuid.UUID) *model.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *s.players[id]
	return &p
}

// bidCount reports how many bids the log holds for a player.
func (s *memStore) bidCount(auctionID, playerID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.bids {
		if s.bids[i].AuctionID == auctionID && s.bids[i].PlayerID == playerID {
			n++
		}
	}
	return n
}

// recordingNotifier captures every published event for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []queue.AuctionEvent
}

func (n *recordingNotifier) Publish(_ context.Context, ev queue.AuctionEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, ev := range n.events {
		out[i] = ev.Type
	}
	return out
}

func (n *recordingNotifier) count(typ string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, ev := range n.events {
		if ev.Type == typ {
			c++
		}
	}
	return c
}

// --- fixture helpers ---

func newTestEngine() (*Engine, *memStore, *recordingNotifier) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	return New(store, notifier), store, notifier
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func ndec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: dec(s), Valid: true}
}

func seedTournament(s *memStore, mutate ...func(*model.Tournament)) *model.Tournament {
	t := &model.Tournament{
		ID:             uuid.New(),
		Name:           "Premier Cup",
		AdminID:        1,
		AuctionEnabled: true,
		MaxPlayers:     5,
		MaxTeamBudget:  ndec("1000"),
		Status:         model.TournamentConfigured,
	}
	for _, m := range mutate {
		m(t)
	}
	s.mu.Lock()
	s.tournaments[t.ID] = t
	s.mu.Unlock()
	return t
}

func seedTeam(s *memStore, tournamentID uuid.UUID, wallet decimal.NullDecimal) *model.Team {
	t := &model.Team{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Name:         "Team",
		Wallet:       wallet,
	}
	s.mu.Lock()
	s.teams[t.ID] = t
	s.mu.Unlock()
	return t
}

func seedPlayer(s *memStore, tournamentID uuid.UUID, basePrice string) *model.Player {
	p := &model.Player{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Name:         "Player",
		BasePrice:    dec(basePrice),
	}
	s.mu.Lock()
	s.players[p.ID] = p
	s.mu.Unlock()
	return p
}
