package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/tournament-auction/internal/model"
)

// TournamentRepo provides data access to the tournaments table.  The
// auction configuration columns (auction_enabled, min_bid_increment,
// max_team_budget, min/max_players) are read-only while an auction runs;
// nothing in this repo enforces that, the handlers simply refuse updates
// for tournaments with an active auction.
type TournamentRepo struct {
	db *sql.DB
}

// NewTournamentRepo returns a TournamentRepo bound to the given database.
func NewTournamentRepo(db *sql.DB) *TournamentRepo { return &TournamentRepo{db: db} }

const tournamentCols = `tournament_id, name, admin_id, format, auction_enabled,
	min_players, max_players, min_bid_increment, max_team_budget, bid_seconds,
	status, created_by, updated_by, created_at, updated_at`

func scanTournament(row *sql.Row) (*model.Tournament, error) {
	var t model.Tournament
	var bidSeconds sql.NullInt64
	err := row.Scan(&t.ID, &t.Name, &t.AdminID, &t.Format, &t.AuctionEnabled,
		&t.MinPlayers, &t.MaxPlayers, &t.MinBidIncrement, &t.MaxTeamBudget, &bidSeconds,
		&t.Status, &t.CreatedBy, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if bidSeconds.Valid {
		n := int(bidSeconds.Int64)
		t.BidSeconds = &n
	}
	return &t, nil
}

// Create inserts a new tournament row.
func (r *TournamentRepo) Create(ctx context.Context, t *model.Tournament) error {
	var bidSeconds interface{}
	if t.BidSeconds != nil {
		bidSeconds = *t.BidSeconds
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tournaments (tournament_id, name, admin_id, format, auction_enabled,
		   min_players, max_players, min_bid_increment, max_team_budget, bid_seconds, status,
		   created_by, updated_by)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.Name, t.AdminID, t.Format, t.AuctionEnabled,
		t.MinPlayers, t.MaxPlayers, t.MinBidIncrement, t.MaxTeamBudget, bidSeconds, t.Status,
		t.CreatedBy, t.UpdatedBy)
	return err
}

// GetByID fetches one tournament, or (nil, nil) when it does not exist.
func (r *TournamentRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Tournament, error) {
	t, err := scanTournament(r.db.QueryRowContext(ctx,
		`SELECT `+tournamentCols+` FROM tournaments WHERE tournament_id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// ListByAdmin returns all tournaments administered by a user, newest first.
func (r *TournamentRepo) ListByAdmin(ctx context.Context, adminID uint64) ([]model.Tournament, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tournamentCols+` FROM tournaments WHERE admin_id = ? ORDER BY created_at DESC`, adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Tournament
	for rows.Next() {
		var t model.Tournament
		var bidSeconds sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Name, &t.AdminID, &t.Format, &t.AuctionEnabled,
			&t.MinPlayers, &t.MaxPlayers, &t.MinBidIncrement, &t.MaxTeamBudget, &bidSeconds,
			&t.Status, &t.CreatedBy, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if bidSeconds.Valid {
			n := int(bidSeconds.Int64)
			t.BidSeconds = &n
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update rewrites the mutable tournament fields.  The caller is expected to
// have checked ownership and that no auction is active.
func (r *TournamentRepo) Update(ctx context.Context, t *model.Tournament) error {
	var bidSeconds interface{}
	if t.BidSeconds != nil {
		bidSeconds = *t.BidSeconds
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE tournaments
		 SET name = ?, format = ?, auction_enabled = ?, min_players = ?, max_players = ?,
		     min_bid_increment = ?, max_team_budget = ?, bid_seconds = ?, status = ?,
		     updated_by = ?, updated_at = NOW()
		 WHERE tournament_id = ?`,
		t.Name, t.Format, t.AuctionEnabled, t.MinPlayers, t.MaxPlayers,
		t.MinBidIncrement, t.MaxTeamBudget, bidSeconds, t.Status,
		t.UpdatedBy, t.ID)
	return err
}
