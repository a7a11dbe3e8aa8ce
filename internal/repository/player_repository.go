package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/tournament-auction/internal/model"
)

// PlayerRepo provides data access to the players table.  AssignToTeam is
// the only write that touches assigned_team_id, and it is conditional on
// the column still being NULL — once a player is sold the assignment is
// immutable and a second settlement becomes a no-op.
type PlayerRepo struct {
	db *sql.DB
}

// NewPlayerRepo returns a PlayerRepo bound to the given database.
func NewPlayerRepo(db *sql.DB) *PlayerRepo { return &PlayerRepo{db: db} }

const playerCols = `player_id, tournament_id, name, category, base_price,
	assigned_team_id, sold_price, created_at, updated_at`

func scanPlayer(scan func(dest ...interface{}) error) (*model.Player, error) {
	var p model.Player
	err := scan(&p.ID, &p.TournamentID, &p.Name, &p.Category, &p.BasePrice,
		&p.AssignedTeamID, &p.SoldPrice, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new player.
func (r *PlayerRepo) Create(ctx context.Context, p *model.Player) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO players (player_id, tournament_id, name, category, base_price)
		 VALUES (?,?,?,?,?)`,
		p.ID, p.TournamentID, p.Name, p.Category, p.BasePrice)
	return err
}

// GetByID fetches one player, or (nil, nil) when it does not exist.
func (r *PlayerRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Player, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+playerCols+` FROM players WHERE player_id = ?`, id)
	p, err := scanPlayer(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// ListByTournament returns every player of a tournament.
func (r *PlayerRepo) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]model.Player, error) {
	return r.list(ctx,
		`SELECT `+playerCols+` FROM players WHERE tournament_id = ? ORDER BY name`, tournamentID)
}

// ListUnsold returns the players of a tournament that have no assignment
// yet, in a stable order for the auto-distribution pass.
func (r *PlayerRepo) ListUnsold(ctx context.Context, tournamentID uuid.UUID) ([]model.Player, error) {
	return r.list(ctx,
		`SELECT `+playerCols+` FROM players
		 WHERE tournament_id = ? AND assigned_team_id IS NULL ORDER BY player_id`, tournamentID)
}

// ListByTeam returns a team's roster (players assigned to it).
func (r *PlayerRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]model.Player, error) {
	return r.list(ctx,
		`SELECT `+playerCols+` FROM players WHERE assigned_team_id = ? ORDER BY name`, teamID)
}

func (r *PlayerRepo) list(ctx context.Context, query string, arg interface{}) ([]model.Player, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Player
	for rows.Next() {
		p, err := scanPlayer(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// CountByTeam returns the current roster size of a team.
func (r *PlayerRepo) CountByTeam(ctx context.Context, teamID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM players WHERE assigned_team_id = ?`, teamID).Scan(&n)
	return n, err
}

// AssignToTeam records the player-team assignment and the price, but only
// while the player is still unsold.  It returns false when the player was
// already assigned, leaving the existing assignment untouched.
func (r *PlayerRepo) AssignToTeam(ctx context.Context, playerID, teamID uuid.UUID, price decimal.Decimal) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE players SET assigned_team_id = ?, sold_price = ?, updated_at = NOW()
		 WHERE player_id = ? AND assigned_team_id IS NULL`,
		teamID, price, playerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
