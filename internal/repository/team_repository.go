package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/tournament-auction/internal/model"
)

// TeamRepo provides data access to the teams table.  Wallet mutations are
// deliberately narrow: InitWallet funds only a NULL wallet, DebitWallet
// subtracts only when the balance covers the amount, and both run as a
// single conditional UPDATE so concurrent settlements against the same team
// can never overdraw it through a stale read.
type TeamRepo struct {
	db *sql.DB
}

// NewTeamRepo returns a TeamRepo bound to the given database.
func NewTeamRepo(db *sql.DB) *TeamRepo { return &TeamRepo{db: db} }

const teamCols = `team_id, tournament_id, name, team_key, manager_id, wallet, logo_url,
	created_by, updated_by, created_at, updated_at`

func scanTeam(scan func(dest ...interface{}) error) (*model.Team, error) {
	var t model.Team
	var logo sql.NullString
	err := scan(&t.ID, &t.TournamentID, &t.Name, &t.Key, &t.ManagerID, &t.Wallet, &logo,
		&t.CreatedBy, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if logo.Valid {
		t.LogoURL = &logo.String
	}
	return &t, nil
}

// Create inserts a new team.  The wallet starts NULL and is funded by the
// auction start.  A duplicate team_key within the tournament surfaces as
// ErrConflict.
func (r *TeamRepo) Create(ctx context.Context, t *model.Team) error {
	var logo interface{}
	if t.LogoURL != nil {
		logo = *t.LogoURL
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO teams (team_id, tournament_id, name, team_key, manager_id, logo_url, created_by, updated_by)
		 VALUES (?,?,?,?,?,?,?,?)`,
		t.ID, t.TournamentID, t.Name, t.Key, t.ManagerID, logo, t.CreatedBy, t.UpdatedBy)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrConflict
	}
	return err
}

// GetByID fetches one team, or (nil, nil) when it does not exist.
func (r *TeamRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+teamCols+` FROM teams WHERE team_id = ?`, id)
	t, err := scanTeam(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// ListByTournament returns all teams of a tournament ordered by team ID so
// callers that iterate get a stable order.
func (r *TeamRepo) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]model.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+teamCols+` FROM teams WHERE tournament_id = ? ORDER BY team_id`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Team
	for rows.Next() {
		t, err := scanTeam(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// InitWallet sets the wallet to the tournament budget only while it is
// still NULL.  Re-running it is harmless, which is what makes repeated
// auction starts safe without re-funding spent wallets.
func (r *TeamRepo) InitWallet(ctx context.Context, teamID uuid.UUID, budget decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE teams SET wallet = ?, updated_at = NOW() WHERE team_id = ? AND wallet IS NULL`,
		budget, teamID)
	return err
}

// DebitWallet atomically subtracts amount from the wallet if and only if
// the balance covers it.  It returns false when the balance was too low (or
// the wallet was never funded); the row is untouched in that case.  This is
// the only place the balance check and the write happen as one unit, which
// is what keeps N concurrent settlements from overdrawing a team.
func (r *TeamRepo) DebitWallet(ctx context.Context, teamID uuid.UUID, amount decimal.Decimal) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE teams SET wallet = wallet - ?, updated_at = NOW()
		 WHERE team_id = ? AND wallet IS NOT NULL AND wallet >= ?`,
		amount, teamID, amount)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreditWallet adds amount back to a funded wallet.  It exists only as the
// compensation path for a settlement whose assign step lost a race.
func (r *TeamRepo) CreditWallet(ctx context.Context, teamID uuid.UUID, amount decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE teams SET wallet = wallet + ?, updated_at = NOW()
		 WHERE team_id = ? AND wallet IS NOT NULL`,
		amount, teamID)
	return err
}
