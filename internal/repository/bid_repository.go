package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/tournament-auction/internal/model"
)

// BidRepo provides access to the append-only bids table.  There is no
// update or delete: a bid is an immutable fact, and the "current highest"
// for a player is always derived by query rather than kept in a mutable
// pointer column that could drift from the log.
type BidRepo struct {
	db *sql.DB
}

// NewBidRepo returns a BidRepo bound to the given database.
func NewBidRepo(db *sql.DB) *BidRepo { return &BidRepo{db: db} }

const bidCols = `bid_id, auction_id, player_id, team_id, amount, placed_at`

// Append durably inserts an accepted bid.
func (r *BidRepo) Append(ctx context.Context, b *model.Bid) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bids (bid_id, auction_id, player_id, team_id, amount, placed_at)
		 VALUES (?,?,?,?,?,?)`,
		b.ID, b.AuctionID, b.PlayerID, b.TeamID, b.Amount, b.PlacedAt.UTC())
	return err
}

// HighestForPlayer returns the top bid for a player within an auction —
// highest amount, earliest placement on equal amounts — or (nil, nil) when
// the player has received no bid.
func (r *BidRepo) HighestForPlayer(ctx context.Context, auctionID, playerID uuid.UUID) (*model.Bid, error) {
	var b model.Bid
	err := r.db.QueryRowContext(ctx,
		`SELECT `+bidCols+` FROM bids
		 WHERE auction_id = ? AND player_id = ?
		 ORDER BY amount DESC, placed_at ASC LIMIT 1`,
		auctionID, playerID).
		Scan(&b.ID, &b.AuctionID, &b.PlayerID, &b.TeamID, &b.Amount, &b.PlacedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListForPlayer returns the full bid history for a player within an
// auction, oldest first.
func (r *BidRepo) ListForPlayer(ctx context.Context, auctionID, playerID uuid.UUID) ([]model.Bid, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bidCols+` FROM bids
		 WHERE auction_id = ? AND player_id = ? ORDER BY placed_at ASC`,
		auctionID, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.PlayerID, &b.TeamID, &b.Amount, &b.PlacedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
