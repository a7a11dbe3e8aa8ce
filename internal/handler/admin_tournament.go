package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/tournament-auction/internal/model"
	"github.com/iliyamo/tournament-auction/internal/repository"
)

// AdminHandler groups the repositories for the tournament administration
// surface: tournament, team and player CRUD.  Auction driving lives in
// AuctionHandler.  All methods assume JWT and role middleware already ran.
type AdminHandler struct {
	Tournaments *repository.TournamentRepo
	Teams       *repository.TeamRepo
	Players     *repository.PlayerRepo
	Auctions    *repository.AuctionRepo
}

// NewAdminHandler constructs an AdminHandler; all dependencies must be
// non-nil.
func NewAdminHandler(t *repository.TournamentRepo, tm *repository.TeamRepo, p *repository.PlayerRepo, a *repository.AuctionRepo) *AdminHandler {
	if t == nil || tm == nil || p == nil || a == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Tournaments: t, Teams: tm, Players: p, Auctions: a}
}

type tournamentReq struct {
	Name            string  `json:"name"`
	Format          string  `json:"format"`
	AuctionEnabled  bool    `json:"auction_enabled"`
	MinPlayers      int     `json:"min_players"`
	MaxPlayers      int     `json:"max_players"`
	MinBidIncrement *string `json:"min_bid_increment"` // decimal string, optional
	MaxTeamBudget   *string `json:"max_team_budget"`   // decimal string, optional
	BidSeconds      *int    `json:"bid_seconds"`
}

type tournamentResp struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Format          string  `json:"format"`
	AuctionEnabled  bool    `json:"auction_enabled"`
	MinPlayers      int     `json:"min_players"`
	MaxPlayers      int     `json:"max_players"`
	MinBidIncrement *string `json:"min_bid_increment,omitempty"`
	MaxTeamBudget   *string `json:"max_team_budget,omitempty"`
	BidSeconds      *int    `json:"bid_seconds,omitempty"`
	Status          string  `json:"status"`
}

func toTournamentResp(t *model.Tournament) tournamentResp {
	resp := tournamentResp{
		ID:             t.ID.String(),
		Name:           t.Name,
		Format:         t.Format,
		AuctionEnabled: t.AuctionEnabled,
		MinPlayers:     t.MinPlayers,
		MaxPlayers:     t.MaxPlayers,
		BidSeconds:     t.BidSeconds,
		Status:         t.Status,
	}
	if t.MinBidIncrement.Valid {
		s := t.MinBidIncrement.Decimal.String()
		resp.MinBidIncrement = &s
	}
	if t.MaxTeamBudget.Valid {
		s := t.MaxTeamBudget.Decimal.String()
		resp.MaxTeamBudget = &s
	}
	return resp
}

// parseNullDecimal parses an optional decimal string from a request body.
func parseNullDecimal(s *string) (decimal.NullDecimal, bool) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return decimal.NullDecimal{}, true
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*s))
	if err != nil || d.Sign() < 0 {
		return decimal.NullDecimal{}, false
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, true
}

// CreateTournament handles POST /v1/tournaments.
func (h *AdminHandler) CreateTournament(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req tournamentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.MaxPlayers <= 0 || req.MinPlayers < 0 || req.MinPlayers > req.MaxPlayers {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid roster bounds"})
	}
	increment, ok := parseNullDecimal(req.MinBidIncrement)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid min_bid_increment"})
	}
	budget, ok := parseNullDecimal(req.MaxTeamBudget)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid max_team_budget"})
	}

	t := &model.Tournament{
		ID:              uuid.New(),
		Name:            req.Name,
		AdminID:         uid,
		Format:          req.Format,
		AuctionEnabled:  req.AuctionEnabled,
		MinPlayers:      req.MinPlayers,
		MaxPlayers:      req.MaxPlayers,
		MinBidIncrement: increment,
		MaxTeamBudget:   budget,
		BidSeconds:      req.BidSeconds,
		Status:          model.TournamentDraft,
		CreatedBy:       uid,
		UpdatedBy:       uid,
	}
	ctx, cancel := context5s(c)
	defer cancel()
	if err := h.Tournaments.Create(ctx, t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create tournament failed"})
	}
	return c.JSON(http.StatusCreated, toTournamentResp(t))
}

// ListTournaments handles GET /v1/tournaments and returns the caller's
// tournaments.
func (h *AdminHandler) ListTournaments(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context5s(c)
	defer cancel()
	ts, err := h.Tournaments.ListByAdmin(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]tournamentResp, 0, len(ts))
	for i := range ts {
		out = append(out, toTournamentResp(&ts[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// GetTournament handles GET /v1/tournaments/:id.
func (h *AdminHandler) GetTournament(c echo.Context) error {
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
	return c.JSON(http.StatusOK, toTournamentResp(t))
}

// UpdateTournament handles PUT /v1/tournaments/:id.  Only the owning admin
// may update, and not while an auction is InProgress or Paused — the
// auction configuration is read-only during an auction.
func (h *AdminHandler) UpdateTournament(c echo.Context) error {
	uid, err := getUserID(c)
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
	if t.AdminID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	active, err := h.Auctions.ActiveByTournament(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if active != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "tournament has an active auction"})
	}

	var req tournamentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		t.Name = name
	}
	if req.Format != "" {
		t.Format = req.Format
	}
	t.AuctionEnabled = req.AuctionEnabled
	if req.MaxPlayers > 0 {
		t.MaxPlayers = req.MaxPlayers
	}
	if req.MinPlayers >= 0 {
		t.MinPlayers = req.MinPlayers
	}
	if increment, ok := parseNullDecimal(req.MinBidIncrement); ok {
		t.MinBidIncrement = increment
	}
	if budget, ok := parseNullDecimal(req.MaxTeamBudget); ok {
		t.MaxTeamBudget = budget
	}
	if req.BidSeconds != nil {
		t.BidSeconds = req.BidSeconds
	}
	t.UpdatedBy = uid
	if err := h.Tournaments.Update(ctx, t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update tournament failed"})
	}
	return c.JSON(http.StatusOK, toTournamentResp(t))
}

// context5s returns the request context bounded to five seconds, the
// default budget for one DB-backed handler.
func context5s(c echo.Context) (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
