package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/tournament-auction/internal/model"
)

type playerReq struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	BasePrice string `json:"base_price"` // decimal string
}

type playerResp struct {
	ID             string  `json:"id"`
	Tournament     string  `json:"tournament_id"`
	Name           string  `json:"name"`
	Category       string  `json:"category,omitempty"`
	BasePrice      string  `json:"base_price"`
	AssignedTeamID *string `json:"assigned_team_id,omitempty"`
	SoldPrice      *string `json:"sold_price,omitempty"`
}

func toPlayerResp(p *model.Player) playerResp {
	resp := playerResp{
		ID:         p.ID.String(),
		Tournament: p.TournamentID.String(),
		Name:       p.Name,
		Category:   p.Category,
		BasePrice:  p.BasePrice.String(),
	}
	if p.AssignedTeamID.Valid {
		s := p.AssignedTeamID.UUID.String()
		resp.AssignedTeamID = &s
	}
	if p.SoldPrice.Valid {
		s := p.SoldPrice.Decimal.String()
		resp.SoldPrice = &s
	}
	return resp
}

// CreatePlayer handles POST /v1/tournaments/:id/players.
func (h *AdminHandler) CreatePlayer(c echo.Context) error {
	t := h.ownedTournament(c)
	if t == nil {
		return nil
	}

	var req playerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	base, err := decimal.NewFromString(strings.TrimSpace(req.BasePrice))
	if err != nil || base.Sign() < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid base_price"})
	}

	p := &model.Player{
		ID:           uuid.New(),
		TournamentID: t.ID,
		Name:         req.Name,
		Category:     strings.TrimSpace(req.Category),
		BasePrice:    base,
	}
	ctx, cancel := context5s(c)
	defer cancel()
	if err := h.Players.Create(ctx, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create player failed"})
	}
	return c.JSON(http.StatusCreated, toPlayerResp(p))
}

// ListPlayers handles GET /v1/tournaments/:id/players.  Passing ?unsold=true
// restricts the result to players not yet assigned to a team.
func (h *AdminHandler) ListPlayers(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tournament id"})
	}
	ctx, cancel := context5s(c)
	defer cancel()

	var players []model.Player
	if c.QueryParam("unsold") == "true" {
		players, err = h.Players.ListUnsold(ctx, id)
	} else {
		players, err = h.Players.ListByTournament(ctx, id)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]playerResp, 0, len(players))
	for i := range players {
		out = append(out, toPlayerResp(&players[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// GetPlayer handles GET /v1/players/:id.
func (h *AdminHandler) GetPlayer(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid player id"})
	}
	ctx, cancel := context5s(c)
	defer cancel()
	p, err := h.Players.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "player not found"})
	}
	return c.JSON(http.StatusOK, toPlayerResp(p))
}
