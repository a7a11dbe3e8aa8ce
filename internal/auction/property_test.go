package auction

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/tournament-auction/internal/model"
)

// TestRandomScheduleInvariants throws a randomized but reproducible schedule
// of bids and settlements at the engine and then asserts the invariants that
// must survive any interleaving:
//
//   - no wallet ever ends below zero
//   - every sold player's price equals a bid actually in its log (or its
//     base price, for fallback assignments)
//   - per player, the bid log is strictly increasing in append order
//   - total debited across teams equals the sum of settled (non-fallback)
//     prices
func TestRandomScheduleInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	const (
		teamsN   = 4
		playersN = 8
		bidders  = 24
	)

	e, store, _ := newTestEngine()
	trn := seedTournament(store, func(t *model.Tournament) {
		t.MaxPlayers = playersN // cap never binds; fallback is always eligible
		t.MaxTeamBudget = decimal.NullDecimal{}
	})
	teams := make([]*model.Team, teamsN)
	for i := range teams {
		teams[i] = seedTeam(store, trn.ID, ndec("1000"))
	}
	players := make([]*model.Player, playersN)
	for i := range players {
		players[i] = seedPlayer(store, trn.ID, "50")
	}
	ctx := context.Background()

	a, err := e.Start(ctx, trn.ID, admin)
	assert.Nil(t, err)

	// Pre-draw the random choices so the goroutines stay deterministic-free
	// of the shared rng.
	type move struct {
		player uuid.UUID
		team   uuid.UUID
		amount decimal.Decimal
		settle bool
	}
	moves := make([]move, bidders)
	for i := range moves {
		moves[i] = move{
			player: players[rng.Intn(playersN)].ID,
			team:   teams[rng.Intn(teamsN)].ID,
			amount: decimal.NewFromInt(int64(60 + rng.Intn(500))),
			settle: rng.Intn(4) == 0,
		}
	}

	var wg sync.WaitGroup
	for _, m := range moves {
		wg.Add(1)
		go func(m move) {
			defer wg.Done()
			if m.settle {
				_, err := e.Settle(ctx, a.ID, m.player)
				check.Nil(t, err)
				return
			}
			// Rejections (low bid, sold player, short wallet) are part of
			// the schedule; only errors outside the taxonomy would be bugs.
			_, _ = e.PlaceBid(ctx, a.ID, m.player, m.team, m.amount)
		}(m)
	}
	wg.Wait()

	// Ending settles or distributes whatever is left.
	_, err = e.End(ctx, a.ID, admin)
	assert.Nil(t, err)

	store.mu.Lock()
	defer store.mu.Unlock()

	// Wallets never below zero; account the total spend.
	totalSpent := decimal.Zero
	for _, tm := range store.teams {
		assert.True(t, tm.Wallet.Valid)
		check.True(t, tm.Wallet.Decimal.Sign() >= 0)
		totalSpent = totalSpent.Add(dec("1000").Sub(tm.Wallet.Decimal))
	}

	// Per-player logs strictly increasing; collect amounts per player.
	logged := map[uuid.UUID]map[string]bool{}
	prev := map[uuid.UUID]decimal.Decimal{}
	for i := range store.bids {
		b := store.bids[i]
		if last, ok := prev[b.PlayerID]; ok {
			check.True(t, b.Amount.Cmp(last) > 0)
		}
		prev[b.PlayerID] = b.Amount
		if logged[b.PlayerID] == nil {
			logged[b.PlayerID] = map[string]bool{}
		}
		logged[b.PlayerID][b.Amount.String()] = true
	}

	// Sold prices trace back to a logged bid or the base price, and the
	// winners' prices sum to exactly what left the wallets.
	settledSum := decimal.Zero
	for _, p := range store.players {
		if !p.Sold() {
			continue
		}
		assert.True(t, p.SoldPrice.Valid)
		price := p.SoldPrice.Decimal
		if price.Equal(p.BasePrice) && !logged[p.ID][price.String()] {
			continue // fallback assignment, no debit
		}
		check.True(t, logged[p.ID][price.String()])
		settledSum = settledSum.Add(price)
	}
	check.Equal(t, settledSum.String(), totalSpent.String())
}
