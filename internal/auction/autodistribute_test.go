package auction

import (
	"context"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/tournament-auction/internal/model"
	"github.com/iliyamo/tournament-auction/internal/queue"
)

func TestEndAutoDistributesUnsold(t *testing.T) {
	e, store, notifier := newTestEngine()
	trn := seedTournament(store, func(t *model.Tournament) {
		t.MaxPlayers = 2
		t.MaxTeamBudget = decimal.NullDecimal{}
	})
	teamA := seedTeam(store, trn.ID, ndec("500"))
	teamB := seedTeam(store, trn.ID, ndec("500"))
	bidOn := seedPlayer(store, trn.ID, "100")
	noBid1 := seedPlayer(store, trn.ID, "80")
	noBid2 := seedPlayer(store, trn.ID, "60")
	ctx := context.Background()

	a, err := e.Start(ctx, trn.ID, admin)
	assert.Nil(t, err)
	_, err = e.PlaceBid(ctx, a.ID, bidOn.ID, teamA.ID, dec("200"))
	assert.Nil(t, err)

	_, err = e.End(ctx, a.ID, admin)
	assert.Nil(t, err)

	// The bid-on player settles normally: winner debited, sold at the bid.
	p := store.player(bidOn.ID)
	check.True(t, p.Sold())
	check.Equal(t, teamA.ID, p.AssignedTeamID.UUID)
	check.Equal(t, "200", p.SoldPrice.Decimal.String())
	check.Equal(t, "300", store.wallet(teamA.ID).Decimal.String())

	// The no-bid players go round-robin at base price with no debit.
	q1, q2 := store.player(noBid1.ID), store.player(noBid2.ID)
	check.True(t, q1.Sold())
	check.True(t, q2.Sold())
	check.Equal(t, "80", q1.SoldPrice.Decimal.String())
	check.Equal(t, "60", q2.SoldPrice.Decimal.String())
	check.Equal(t, "500", store.wallet(teamB.ID).Decimal.String())

	// Every team ends within the roster cap.
	nA, err := store.CountTeamPlayers(ctx, teamA.ID)
	assert.Nil(t, err)
	nB, err := store.CountTeamPlayers(ctx, teamB.ID)
	assert.Nil(t, err)
	check.True(t, nA <= trn.MaxPlayers)
	check.True(t, nB <= trn.MaxPlayers)
	check.Equal(t, 3, nA+nB)

	check.Equal(t, 3, notifier.count(queue.EventPlayerAssigned))
}

func TestAutoDistributeTieBreaksByTeamID(t *testing.T) {
	e, store, _ := newTestEngine()
	trn := seedTournament(store, func(t *model.Tournament) {
		t.MaxTeamBudget = decimal.NullDecimal{}
	})
	teamA := seedTeam(store, trn.ID, ndec("500"))
	teamB := seedTeam(store, trn.ID, ndec("500"))
	player := seedPlayer(store, trn.ID, "100")
	ctx := context.Background()

	a, err := e.Start(ctx, trn.ID, admin)
	assert.Nil(t, err)
	_, err = e.End(ctx, a.ID, admin)
	assert.Nil(t, err)

	// Equal rosters: the lexicographically smaller team ID wins the tie.
	want := teamA.ID
	if teamB.ID.String() < teamA.ID.String() {
		want = teamB.ID
	}
	p := store.player(player.ID)
	check.True(t, p.Sold())
	check.Equal(t, want, p.AssignedTeamID.UUID)
}

func TestAutoDistributeRespectsRosterCap(t *testing.T) {
	e, store, _ := newTestEngine()
	trn := seedTournament(store, func(t *model.Tournament) {
		t.MaxPlayers = 1
		t.MaxTeamBudget = decimal.NullDecimal{}
	})
	team := seedTeam(store, trn.ID, ndec("500"))
	rostered := seedPlayer(store, trn.ID, "100")
	leftover := seedPlayer(store, trn.ID, "100")
	ctx := context.Background()

	ok, err := store.AssignToTeam(ctx, rostered.ID, team.ID, dec("100"))
	assert.Nil(t, err)
	assert.True(t, ok)

	a, err := e.Start(ctx, trn.ID, admin)
	assert.Nil(t, err)
	ended, err := e.End(ctx, a.ID, admin)
	assert.Nil(t, err)
	check.Equal(t, model.AuctionCompleted, ended.Status)

	// No eligible team: the player stays unsold, which is a valid terminal
	// state — End does not fail over it.
	check.True(t, !store.player(leftover.ID).Sold())
}

func TestAutoDistributeFallbackWhenWinnerBroke(t *testing.T) {
	e, store, _ := newTestEngine()
	trn := seedTournament(store, func(t *model.Tournament) {
		t.MaxTeamBudget = decimal.NullDecimal{}
	})
	broke := seedTeam(store, trn.ID, ndec("250"))
	other := seedTeam(store, trn.ID, ndec("500"))
	player := seedPlayer(store, trn.ID, "100")
	ctx := context.Background()

	a, err := e.Start(ctx, trn.ID, admin)
	assert.Nil(t, err)
	_, err = e.PlaceBid(ctx, a.ID, player.ID, broke.ID, dec("250"))
	assert.Nil(t, err)

	// The winner spends its budget elsewhere before settlement.
	ok, err := store.DebitWallet(ctx, broke.ID, dec("200"))
	assert.Nil(t, err)
	assert.True(t, ok)

	_, err = e.End(ctx, a.ID, admin)
	assert.Nil(t, err)

	// Settlement could not fund the bid, so the fallback assigned the
	// player at base price without debiting anyone.
	p := store.player(player.ID)
	check.True(t, p.Sold())
	check.Equal(t, "100", p.SoldPrice.Decimal.String())
	check.Equal(t, "50", store.wallet(broke.ID).Decimal.String())
	check.Equal(t, "500", store.wallet(other.ID).Decimal.String())
}
