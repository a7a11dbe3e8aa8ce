package auction

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/tournament-auction/internal/model"
	"github.com/iliyamo/tournament-auction/internal/queue"
)

// Engine owns the auction lifecycle and arbitrates competing bids.  One
// Engine instance serves the whole process; its keyed mutexes are the
// serialization boundary for the check-then-write paths, while wallet
// debits and status transitions rely on conditional writes in the Store so
// they stay safe even across those boundaries.
type Engine struct {
	store  Store
	notify Notifier

	// bidLocks serializes bid placement and settlement per
	// (auction, player); different players never contend.
	bidLocks *keyMutex
	// startLocks serializes auction starts per tournament so two
	// concurrent starts cannot both pass the single-active-auction check.
	startLocks *keyMutex
}

// New constructs an Engine on top of the given ledger store and notifier.
func New(store Store, notify Notifier) *Engine {
	if store == nil || notify == nil {
		panic("nil dependency passed to auction.New")
	}
	return &Engine{
		store:      store,
		notify:     notify,
		bidLocks:   newKeyMutex(),
		startLocks: newKeyMutex(),
	}
}

func bidKey(auctionID, playerID uuid.UUID) string {
	return auctionID.String() + "|" + playerID.String()
}

// publish pushes an event to the notifier.  Delivery is best effort from
// the engine's point of view: failures are logged, the triggering operation
// has already committed and is not rolled back.
func (e *Engine) publish(ctx context.Context, ev queue.AuctionEvent) {
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	if err := e.notify.Publish(ctx, ev); err != nil {
		log.Printf("auction: publish %s failed: %v", ev.Type, err)
	}
}

// Start begins an auction for a tournament.  It fails when the tournament
// does not exist, has auctions disabled, or already has an InProgress or
// Paused auction.  Team wallets are funded from the tournament budget only
// where still unset; starting a second auction after the first completed is
// legal and does not re-fund spent wallets.  On success the new auction is
// persisted in InProgress and AuctionStarted is emitted.
func (e *Engine) Start(ctx context.Context, tournamentID uuid.UUID, by model.Actor) (*model.Auction, error) {
	key := tournamentID.String()
	e.startLocks.Lock(key)
	defer e.startLocks.Unlock(key)

	t, err := e.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTournamentNotFound
	}
	if !t.AuctionEnabled {
		return nil, ErrAuctionDisabled
	}
	active, err := e.store.ActiveAuction(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrAuctionAlreadyActive
	}

	if t.MaxTeamBudget.Valid {
		teams, err := e.store.ListTeams(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		for i := range teams {
			if teams[i].Wallet.Valid {
				continue
			}
			if err := e.store.InitWallet(ctx, teams[i].ID, t.MaxTeamBudget.Decimal); err != nil {
				return nil, err
			}
		}
	}

	now := time.Now().UTC()
	a := &model.Auction{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Status:       model.AuctionInProgress,
		StartedAt:    &now,
		CreatedBy:    by,
		UpdatedBy:    by,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := e.store.CreateAuction(ctx, a); err != nil {
		return nil, err
	}
	e.publish(ctx, queue.AuctionEvent{
		Type:         queue.EventAuctionStarted,
		TournamentID: tournamentID.String(),
		AuctionID:    a.ID.String(),
	})
	return a, nil
}

// Pause moves an InProgress auction to Paused.  The swap is a compare-and-
// set against the stored status, so a Pause racing a Resume or End can lose
// but can never leave the row half-written.  Bids submitted while Paused
// are rejected by PlaceBid.
func (e *Engine) Pause(ctx context.Context, auctionID uuid.UUID, by model.Actor) (*model.Auction, error) {
	ok, err := e.store.UpdateStatus(ctx, auctionID, model.AuctionInProgress, model.AuctionPaused, by, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, e.transitionError(ctx, auctionID, model.AuctionInProgress)
	}
	e.publish(ctx, queue.AuctionEvent{Type: queue.EventAuctionPaused, AuctionID: auctionID.String()})
	return e.store.GetAuction(ctx, auctionID)
}

// Resume moves a Paused auction back to InProgress.
func (e *Engine) Resume(ctx context.Context, auctionID uuid.UUID, by model.Actor) (*model.Auction, error) {
	ok, err := e.store.UpdateStatus(ctx, auctionID, model.AuctionPaused, model.AuctionInProgress, by, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, e.transitionError(ctx, auctionID, model.AuctionPaused)
	}
	e.publish(ctx, queue.AuctionEvent{Type: queue.EventAuctionResumed, AuctionID: auctionID.String()})
	return e.store.GetAuction(ctx, auctionID)
}

// End completes an auction from any non-terminal state, stamps the end
// time, runs auto-distribution for every still-unsold player of the
// tournament, and emits AuctionEnded.  Ending an already completed auction
// is an invalid-state error, not a silent no-op.
func (e *Engine) End(ctx context.Context, auctionID uuid.UUID, by model.Actor) (*model.Auction, error) {
	a, err := e.store.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAuctionNotFound
	}

	now := time.Now().UTC()
	ended := false
	// The auction may flip between InProgress and Paused while we try;
	// attempt the CAS from both legal source states.
	for _, from := range []model.AuctionStatus{model.AuctionInProgress, model.AuctionPaused, model.AuctionPending} {
		ok, err := e.store.UpdateStatus(ctx, auctionID, from, model.AuctionCompleted, by, &now)
		if err != nil {
			return nil, err
		}
		if ok {
			ended = true
			break
		}
	}
	if !ended {
		return nil, ErrAuctionCompleted
	}

	if err := e.autoDistribute(ctx, a.TournamentID, auctionID); err != nil {
		return nil, err
	}
	e.publish(ctx, queue.AuctionEvent{Type: queue.EventAuctionEnded, AuctionID: auctionID.String()})
	return e.store.GetAuction(ctx, auctionID)
}

// transitionError re-reads the auction after a failed CAS to report why the
// transition was illegal.
func (e *Engine) transitionError(ctx context.Context, auctionID uuid.UUID, wanted model.AuctionStatus) error {
	a, err := e.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	switch {
	case a == nil:
		return ErrAuctionNotFound
	case a.Status == model.AuctionCompleted:
		return ErrAuctionCompleted
	case wanted == model.AuctionPaused:
		return ErrAuctionNotPaused
	default:
		return ErrAuctionNotActive
	}
}

// PlaceBid accepts or rejects a bid for a player.  The preconditions run in
// order, each with its own rejection: the auction must be InProgress, the
// player must exist and be unsold, the team must exist, and the amount must
// pass validateBid against the highest bid derived from the append-only
// log.  The read-validate-append unit holds the (auction, player) lock, so
// two competing bids can never both be accepted against the same "current
// highest"; bids for different players proceed concurrently.  On success
// the bid is durable and BidPlaced has been emitted.
func (e *Engine) PlaceBid(ctx context.Context, auctionID, playerID, teamID uuid.UUID, amount decimal.Decimal) (*model.Bid, error) {
	key := bidKey(auctionID, playerID)
	e.bidLocks.Lock(key)
	defer e.bidLocks.Unlock(key)

	a, err := e.store.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAuctionNotFound
	}
	if a.Status != model.AuctionInProgress {
		return nil, ErrAuctionNotActive
	}
	t, err := e.store.GetTournament(ctx, a.TournamentID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTournamentNotFound
	}
	p, err := e.store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	if p.Sold() {
		return nil, ErrPlayerAlreadySold
	}
	team, err := e.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, ErrTeamNotFound
	}

	highest, err := e.store.HighestBid(ctx, auctionID, playerID)
	if err != nil {
		return nil, err
	}
	if err := validateBid(amount, currentPrice(highest, p), t.MinBidIncrement, team.Wallet); err != nil {
		return nil, err
	}

	bid := &model.Bid{
		ID:        uuid.New(),
		AuctionID: auctionID,
		PlayerID:  playerID,
		TeamID:    teamID,
		Amount:    amount,
		PlacedAt:  time.Now().UTC(),
	}
	if err := e.store.AppendBid(ctx, bid); err != nil {
		return nil, err
	}
	e.publish(ctx, queue.AuctionEvent{
		Type:      queue.EventBidPlaced,
		AuctionID: auctionID.String(),
		PlayerID:  playerID.String(),
		TeamID:    teamID.String(),
		Amount:    amount.String(),
	})
	return bid, nil
}

// CurrentBid returns the highest bid for a player in an auction, or nil
// when the player has received none.  It exists for the read surface; the
// write path derives the same value inside its own lock.
func (e *Engine) CurrentBid(ctx context.Context, auctionID, playerID uuid.UUID) (*model.Bid, error) {
	a, err := e.store.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAuctionNotFound
	}
	return e.store.HighestBid(ctx, auctionID, playerID)
}

// Get returns an auction by ID.
func (e *Engine) Get(ctx context.Context, auctionID uuid.UUID) (*model.Auction, error) {
	a, err := e.store.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAuctionNotFound
	}
	return a, nil
}
