package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tournament-auction/internal/model"
	"github.com/iliyamo/tournament-auction/internal/repository"
)

type teamReq struct {
	Name      string  `json:"name"`
	Key       string  `json:"key"`
	LogoURL   *string `json:"logo_url"`
	ManagerID uint64  `json:"manager_id"`
}

type teamResp struct {
	ID         string  `json:"id"`
	Tournament string  `json:"tournament_id"`
	Name       string  `json:"name"`
	Key        string  `json:"key"`
	LogoURL    *string `json:"logo_url,omitempty"`
	ManagerID  uint64  `json:"manager_id"`
	Wallet     *string `json:"wallet,omitempty"`
}

func toTeamResp(t *model.Team) teamResp {
	resp := teamResp{
		ID:         t.ID.String(),
		Tournament: t.TournamentID.String(),
		Name:       t.Name,
		Key:        t.Key,
		LogoURL:    t.LogoURL,
		ManagerID:  t.ManagerID,
	}
	if t.Wallet.Valid {
		s := t.Wallet.Decimal.String()
		resp.Wallet = &s
	}
	return resp
}

// ownedTournament loads the tournament and verifies the caller administers
// it.  Writes the error response itself and returns nil when it has.
func (h *AdminHandler) ownedTournament(c echo.Context) *model.Tournament {
	uid, err := getUserID(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return nil
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tournament id"})
		return nil
	}
	ctx, cancel := context5s(c)
	defer cancel()
	t, err := h.Tournaments.GetByID(ctx, id)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		return nil
	}
	if t == nil {
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "tournament not found"})
		return nil
	}
	if t.AdminID != uid {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		return nil
	}
	return t
}

// CreateTeam handles POST /v1/tournaments/:id/teams.  Only the owning admin
// may add teams; team keys are unique per tournament.
func (h *AdminHandler) CreateTeam(c echo.Context) error {
	t := h.ownedTournament(c)
	if t == nil {
		return nil
	}
	uid, _ := getUserID(c)

	var req teamReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Key = strings.ToUpper(strings.TrimSpace(req.Key))
	if req.Name == "" || req.Key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and key are required"})
	}
	if req.ManagerID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "manager_id is required"})
	}

	team := &model.Team{
		ID:           uuid.New(),
		TournamentID: t.ID,
		Name:         req.Name,
		Key:          req.Key,
		LogoURL:      req.LogoURL,
		ManagerID:    req.ManagerID,
		CreatedBy:    uid,
		UpdatedBy:    uid,
	}
	ctx, cancel := context5s(c)
	defer cancel()
	if err := h.Teams.Create(ctx, team); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "team key already exists in tournament"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create team failed"})
	}
	return c.JSON(http.StatusCreated, toTeamResp(team))
}

// ListTeams handles GET /v1/tournaments/:id/teams.
func (h *AdminHandler) ListTeams(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tournament id"})
	}
	ctx, cancel := context5s(c)
	defer cancel()
	teams, err := h.Teams.ListByTournament(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]teamResp, 0, len(teams))
	for i := range teams {
		out = append(out, toTeamResp(&teams[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// GetTeam handles GET /v1/teams/:id and includes the current roster.
func (h *AdminHandler) GetTeam(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid team id"})
	}
	ctx, cancel := context5s(c)
	defer cancel()
	team, err := h.Teams.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if team == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "team not found"})
	}
	roster, err := h.Players.ListByTeam(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	players := make([]playerResp, 0, len(roster))
	for i := range roster {
		players = append(players, toPlayerResp(&roster[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"team":   toTeamResp(team),
		"roster": players,
	})
}
