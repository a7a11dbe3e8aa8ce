package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/tournament-auction/internal/model"
)

// AuctionRepo provides data access to the auctions table.  Rows are never
// deleted; completed auctions stay for audit.  All status changes go
// through UpdateStatus, a compare-and-set on the status column, so a Pause
// racing a Resume or End can lose but can never interleave into an
// inconsistent row.
type AuctionRepo struct {
	db *sql.DB
}

// NewAuctionRepo returns an AuctionRepo bound to the given database.
func NewAuctionRepo(db *sql.DB) *AuctionRepo { return &AuctionRepo{db: db} }

const auctionCols = `auction_id, tournament_id, status, started_at, ended_at,
	created_by, updated_by, created_at, updated_at`

func scanAuction(scan func(dest ...interface{}) error) (*model.Auction, error) {
	var a model.Auction
	var started, ended sql.NullTime
	var createdBy, updatedBy sql.NullInt64
	err := scan(&a.ID, &a.TournamentID, &a.Status, &started, &ended,
		&createdBy, &updatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if started.Valid {
		a.StartedAt = &started.Time
	}
	if ended.Valid {
		a.EndedAt = &ended.Time
	}
	a.CreatedBy = actorFromColumn(createdBy)
	a.UpdatedBy = actorFromColumn(updatedBy)
	return &a, nil
}

// actorFromColumn maps the nullable audit column back to an Actor: NULL
// means the system performed the write.
func actorFromColumn(col sql.NullInt64) model.Actor {
	if !col.Valid {
		return model.SystemActor
	}
	return model.UserActor(uint64(col.Int64))
}

// Create inserts a new auction row.
func (r *AuctionRepo) Create(ctx context.Context, a *model.Auction) error {
	var started interface{}
	if a.StartedAt != nil {
		started = a.StartedAt.UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auctions (auction_id, tournament_id, status, started_at, created_by, updated_by)
		 VALUES (?,?,?,?,?,?)`,
		a.ID, a.TournamentID, a.Status, started, a.CreatedBy.AuditValue(), a.UpdatedBy.AuditValue())
	return err
}

// GetByID fetches one auction, or (nil, nil) when it does not exist.
func (r *AuctionRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Auction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+auctionCols+` FROM auctions WHERE auction_id = ?`, id)
	a, err := scanAuction(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// ActiveByTournament returns the tournament's InProgress or Paused auction,
// or (nil, nil) when there is none.  The schema's expectation is that at
// most one such row exists at a time; the newest wins if that invariant is
// ever violated from outside.
func (r *AuctionRepo) ActiveByTournament(ctx context.Context, tournamentID uuid.UUID) (*model.Auction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+auctionCols+` FROM auctions
		 WHERE tournament_id = ? AND status IN ('InProgress','Paused')
		 ORDER BY created_at DESC LIMIT 1`, tournamentID)
	a, err := scanAuction(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// ListByTournament returns a tournament's auctions, newest first.
func (r *AuctionRepo) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]model.Auction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+auctionCols+` FROM auctions WHERE tournament_id = ? ORDER BY created_at DESC`,
		tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Auction
	for rows.Next() {
		a, err := scanAuction(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// UpdateStatus swaps the status from `from` to `to` in one conditional
// UPDATE and reports whether the swap happened.  When endedAt is non-nil
// the end time is stamped in the same statement, so the transition and its
// timestamp commit together or not at all.
func (r *AuctionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AuctionStatus, by model.Actor, endedAt *time.Time) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if endedAt != nil {
		res, err = r.db.ExecContext(ctx,
			`UPDATE auctions SET status = ?, ended_at = ?, updated_by = ?, updated_at = NOW()
			 WHERE auction_id = ? AND status = ?`,
			to, endedAt.UTC(), by.AuditValue(), id, from)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE auctions SET status = ?, updated_by = ?, updated_at = NOW()
			 WHERE auction_id = ? AND status = ?`,
			to, by.AuditValue(), id, from)
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
