package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/tournament-auction/internal/auction"
	"github.com/iliyamo/tournament-auction/internal/model"
	"github.com/iliyamo/tournament-auction/internal/repository"
)

// AuctionHandler drives the auction engine over HTTP.  Lifecycle operations
// (start, pause, resume, end, settle) are restricted to the tournament's
// admin; bids come from team managers for their own team.
type AuctionHandler struct {
	Engine      *auction.Engine
	Tournaments *repository.TournamentRepo
	Teams       *repository.TeamRepo
	Bids        *repository.BidRepo
}

func NewAuctionHandler(e *auction.Engine, t *repository.TournamentRepo, tm *repository.TeamRepo, b *repository.BidRepo) *AuctionHandler {
	if e == nil || t == nil || tm == nil || b == nil {
		panic("nil dependency passed to NewAuctionHandler")
	}
	return &AuctionHandler{Engine: e, Tournaments: t, Teams: tm, Bids: b}
}

type auctionResp struct {
	ID           string     `json:"id"`
	TournamentID string     `json:"tournament_id"`
	Status       string     `json:"status"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
}

func toAuctionResp(a *model.Auction) auctionResp {
	return auctionResp{
		ID:           a.ID.String(),
		TournamentID: a.TournamentID.String(),
		Status:       string(a.Status),
		StartedAt:    a.StartedAt,
		EndedAt:      a.EndedAt,
	}
}

type bidResp struct {
	ID       string    `json:"id"`
	PlayerID string    `json:"player_id"`
	TeamID   string    `json:"team_id"`
	Amount   string    `json:"amount"`
	PlacedAt time.Time `json:"placed_at"`
}

func toBidResp(b *model.Bid) bidResp {
	return bidResp{
		ID:       b.ID.String(),
		PlayerID: b.PlayerID.String(),
		TeamID:   b.TeamID.String(),
		Amount:   b.Amount.String(),
		PlacedAt: b.PlacedAt,
	}
}

// requireTournamentAdmin checks that the caller administers the tournament
// an auction belongs to.  Returns false after writing the error response.
func (h *AuctionHandler) requireTournamentAdmin(c echo.Context, a *model.Auction) bool {
	uid, err := getUserID(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return false
	}
	ctx, cancel := context5s(c)
	defer cancel()
	t, err := h.Tournaments.GetByID(ctx, a.TournamentID)
	if err != nil || t == nil {
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		return false
	}
	if t.AdminID != uid {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		return false
	}
	return true
}

// Start handles POST /v1/tournaments/:id/auction/start.
func (h *AuctionHandler) Start(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tournament id"})
	}
	ctx, cancel := context5s(c)
	defer cancel()
	t, err := h.Tournaments.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if t == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tournament not found"})
	}
	if t.AdminID != actor.UserID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	a, err := h.Engine.Start(ctx, id, actor)
	if err != nil {
		return auctionError(c, err)
	}
	return c.JSON(http.StatusCreated, toAuctionResp(a))
}

// Get handles GET /v1/auctions/:id.
func (h *AuctionHandler) Get(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auction id"})
	}
	ctx, cancel := context5s(c)
	defer cancel()
	a, err := h.Engine.Get(ctx, id)
	if err != nil {
		return auctionError(c, err)
	}
	return c.JSON(http.StatusOK, toAuctionResp(a))
}

// Pause handles POST /v1/auctions/:id/pause.
func (h *AuctionHandler) Pause(c echo.Context) error {
	return h.transition(c, h.Engine.Pause)
}

// Resume handles POST /v1/auctions/:id/resume.
func (h *AuctionHandler) Resume(c echo.Context) error {
	return h.transition(c, h.Engine.Resume)
}

// End handles POST /v1/auctions/:id/end.  Completing the auction also
// auto-distributes every still-unsold player of the tournament.
func (h *AuctionHandler) End(c echo.Context) error {
	return h.transition(c, h.Engine.End)
}

type transitionFn func(ctx context.Context, auctionID uuid.UUID, by model.Actor) (*model.Auction, error)

func (h *AuctionHandler) transition(c echo.Context, fn transitionFn) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auction id"})
	}
	ctx, cancel := context5s(c)
	defer cancel()
	a, err := h.Engine.Get(ctx, id)
	if err != nil {
		return auctionError(c, err)
	}
	if !h.requireTournamentAdmin(c, a) {
		return nil
	}
	a, err = fn(ctx, id, actor)
	if err != nil {
		return auctionError(c, err)
	}
	return c.JSON(http.StatusOK, toAuctionResp(a))
}

type placeBidReq struct {
	TeamID string `json:"team_id"`
	Amount string `json:"amount"` // decimal string
}

// PlaceBid handles POST /v1/auctions/:id/players/:playerId/bids.  A manager
// may bid only for a team they manage; the tournament admin may bid on any
// team's behalf (proxy bids for managers in the room).
func (h *AuctionHandler) PlaceBid(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	auctionID, err := pathUUID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auction id"})
	}
	playerID, err := pathUUID(c, "playerId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid player id"})
	}

	var req placeBidReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	teamID, err := uuid.Parse(strings.TrimSpace(req.TeamID))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid team_id"})
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}

	ctx, cancel := context5s(c)
	defer cancel()

	team, err := h.Teams.GetByID(ctx, teamID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if team == nil {
		return auctionError(c, auction.ErrTeamNotFound)
	}
	if team.ManagerID != uid {
		t, err := h.Tournaments.GetByID(ctx, team.TournamentID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if t == nil || t.AdminID != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your team"})
		}
	}

	bid, err := h.Engine.PlaceBid(ctx, auctionID, playerID, teamID, amount)
	if err != nil {
		return auctionError(c, err)
	}
	return c.JSON(http.StatusCreated, toBidResp(bid))
}

// CurrentBid handles GET /v1/auctions/:id/players/:playerId/bid and returns
// the highest bid, or 204 when the player has received none.
func (h *AuctionHandler) CurrentBid(c echo.Context) error {
	auctionID, err := pathUUID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auction id"})
	}
	playerID, err := pathUUID(c, "playerId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid player id"})
	}
	ctx, cancel := context5s(c)
	defer cancel()
	b, err := h.Engine.CurrentBid(ctx, auctionID, playerID)
	if err != nil {
		return auctionError(c, err)
	}
	if b == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, toBidResp(b))
}

// BidHistory handles GET /v1/auctions/:id/players/:playerId/bids, oldest
// first.
func (h *AuctionHandler) BidHistory(c echo.Context) error {
	auctionID, err := pathUUID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auction id"})
	}
	playerID, err := pathUUID(c, "playerId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid player id"})
	}
	ctx, cancel := context5s(c)
	defer cancel()
	bids, err := h.Bids.ListForPlayer(ctx, auctionID, playerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]bidResp, 0, len(bids))
	for i := range bids {
		out = append(out, toBidResp(&bids[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Settle handles POST /v1/auctions/:id/players/:playerId/settle.  The
// tournament admin closes bidding on one player: the highest bid becomes a
// binding assignment and the winner's wallet is debited.
func (h *AuctionHandler) Settle(c echo.Context) error {
	auctionID, err := pathUUID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auction id"})
	}
	playerID, err := pathUUID(c, "playerId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid player id"})
	}
	ctx, cancel := context5s(c)
	defer cancel()
	a, err := h.Engine.Get(ctx, auctionID)
	if err != nil {
		return auctionError(c, err)
	}
	if !h.requireTournamentAdmin(c, a) {
		return nil
	}

	res, err := h.Engine.Settle(ctx, auctionID, playerID)
	if err != nil {
		return auctionError(c, err)
	}
	switch res.Outcome {
	case auction.Assigned:
		return c.JSON(http.StatusOK, echo.Map{
			"outcome": "assigned",
			"team_id": res.TeamID.String(),
			"price":   res.Price.String(),
		})
	case auction.NoBid:
		return c.JSON(http.StatusOK, echo.Map{"outcome": "no_bid"})
	default:
		return c.JSON(http.StatusConflict, echo.Map{"outcome": "insufficient_funds"})
	}
}
