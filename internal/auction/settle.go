package auction

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/tournament-auction/internal/model"
	"github.com/iliyamo/tournament-auction/internal/queue"
)

// SettleOutcome reports how a settlement attempt ended.
type SettleOutcome int

const (
	// Assigned: the player is assigned to a team (by this call or an
	// earlier one — settlement is idempotent once the player is sold).
	Assigned SettleOutcome = iota
	// NoBid: the player received no bid; the caller decides what happens
	// next (manual distribution or the auto-distribution fallback).
	NoBid
	// InsufficientFunds: the highest bidder's wallet no longer covers its
	// bid (spent on another player since).  Nothing was mutated.
	InsufficientFunds
)

// SettleResult carries the outcome and, when Assigned, the winning team and
// the price the player went for.
type SettleResult struct {
	Outcome SettleOutcome
	TeamID  uuid.UUID
	Price   decimal.Decimal
}

// maxSettleRetries bounds the compensation loop in Settle.  Losing the
// assign race twice in a row means another writer settled the player, which
// the re-read at the top of the next iteration resolves.
const maxSettleRetries = 3

// Settle resolves the current highest bid for a player into a binding
// assignment plus wallet debit.  It re-validates the winner's balance at
// debit time via the store's conditional debit, so two players settling to
// the same team can never jointly overdraw a wallet against a stale read.
// Debit and assign form one failure domain: if the conditional assign loses
// (the player got assigned elsewhere between our read and write), the debit
// is credited back and the loop re-reads.  Holding the same per-(auction,
// player) lock as PlaceBid keeps a late bid from interleaving with the
// settlement of that player.
func (e *Engine) Settle(ctx context.Context, auctionID, playerID uuid.UUID) (SettleResult, error) {
	key := bidKey(auctionID, playerID)
	e.bidLocks.Lock(key)
	defer e.bidLocks.Unlock(key)
	return e.settleLocked(ctx, auctionID, playerID)
}

func (e *Engine) settleLocked(ctx context.Context, auctionID, playerID uuid.UUID) (SettleResult, error) {
	for attempt := 0; attempt < maxSettleRetries; attempt++ {
		p, err := e.store.GetPlayer(ctx, playerID)
		if err != nil {
			return SettleResult{}, err
		}
		if p == nil {
			return SettleResult{}, ErrPlayerNotFound
		}
		if p.Sold() {
			// Already settled; report the existing assignment.
			res := SettleResult{Outcome: Assigned, TeamID: p.AssignedTeamID.UUID}
			if p.SoldPrice.Valid {
				res.Price = p.SoldPrice.Decimal
			}
			return res, nil
		}

		highest, err := e.store.HighestBid(ctx, auctionID, playerID)
		if err != nil {
			return SettleResult{}, err
		}
		if highest == nil {
			return SettleResult{Outcome: NoBid}, nil
		}

		debited, err := e.store.DebitWallet(ctx, highest.TeamID, highest.Amount)
		if err != nil {
			return SettleResult{}, err
		}
		if !debited {
			return SettleResult{Outcome: InsufficientFunds}, nil
		}

		assigned, err := e.store.AssignToTeam(ctx, playerID, highest.TeamID, highest.Amount)
		if err != nil {
			// The debit already happened; put the money back before
			// surfacing the failure so the two writes stay one unit.
			if cErr := e.store.CreditWallet(ctx, highest.TeamID, highest.Amount); cErr != nil {
				return SettleResult{}, fmt.Errorf("assign failed (%v) and credit-back failed: %w", err, cErr)
			}
			return SettleResult{}, err
		}
		if !assigned {
			// Lost the assign race; compensate and re-read.
			if cErr := e.store.CreditWallet(ctx, highest.TeamID, highest.Amount); cErr != nil {
				return SettleResult{}, fmt.Errorf("credit-back after lost assign race: %w", cErr)
			}
			continue
		}

		e.publish(ctx, queue.AuctionEvent{
			Type:     queue.EventPlayerAssigned,
			PlayerID: playerID.String(),
			TeamID:   highest.TeamID.String(),
			Amount:   highest.Amount.String(),
		})
		return SettleResult{Outcome: Assigned, TeamID: highest.TeamID, Price: highest.Amount}, nil
	}
	return SettleResult{}, ErrConflict
}

// autoDistribute disposes of every still-unsold player of a tournament when
// its auction completes.  Each player is first settled normally; a player
// with no bid or an unfundable winner falls back to an assignment at base
// price (no debit) to the eligible team with the smallest roster below the
// tournament maximum, ties broken by team ID order.  The round-robin is
// deterministic so a given state always distributes the same way.  A player
// with no eligible team stays unsold — a valid terminal state.
func (e *Engine) autoDistribute(ctx context.Context, tournamentID, auctionID uuid.UUID) error {
	t, err := e.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrTournamentNotFound
	}
	unsold, err := e.store.ListUnsoldPlayers(ctx, tournamentID)
	if err != nil {
		return err
	}
	if len(unsold) == 0 {
		return nil
	}
	teams, err := e.store.ListTeams(ctx, tournamentID)
	if err != nil {
		return err
	}
	sort.Slice(teams, func(i, j int) bool {
		return teams[i].ID.String() < teams[j].ID.String()
	})
	rosters := make(map[uuid.UUID]int, len(teams))
	for i := range teams {
		n, err := e.store.CountTeamPlayers(ctx, teams[i].ID)
		if err != nil {
			return err
		}
		rosters[teams[i].ID] = n
	}

	for i := range unsold {
		p := &unsold[i]
		res, err := e.Settle(ctx, auctionID, p.ID)
		if err != nil {
			return fmt.Errorf("auto-distribute settle player %s: %w", p.ID, err)
		}
		if res.Outcome == Assigned {
			rosters[res.TeamID]++
			continue
		}

		// Fallback: smallest roster under the cap, lowest team ID wins
		// ties.  The teams slice is already ID-sorted, so the first
		// minimum found is the deterministic pick.
		var pick *model.Team
		for j := range teams {
			if rosters[teams[j].ID] >= t.MaxPlayers {
				continue
			}
			if pick == nil || rosters[teams[j].ID] < rosters[pick.ID] {
				pick = &teams[j]
			}
		}
		if pick == nil {
			log.Printf("auction: no eligible team for player %s, left unsold", p.ID)
			continue
		}
		assigned, err := e.store.AssignToTeam(ctx, p.ID, pick.ID, p.BasePrice)
		if err != nil {
			return fmt.Errorf("auto-distribute assign player %s: %w", p.ID, err)
		}
		if !assigned {
			// Someone settled the player between listing and now.
			continue
		}
		rosters[pick.ID]++
		e.publish(ctx, queue.AuctionEvent{
			Type:     queue.EventPlayerAssigned,
			PlayerID: p.ID.String(),
			TeamID:   pick.ID.String(),
			Amount:   p.BasePrice.String(),
		})
	}
	return nil
}
