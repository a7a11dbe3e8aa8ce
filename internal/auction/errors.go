// Package auction implements the live auction engine: the auction lifecycle
// state machine, bid arbitration, settlement and auto-distribution.  It
// talks to storage only through the Store interfaces in store.go and pushes
// notifications through the Notifier; it never reaches into HTTP or SQL
// directly.
package auction

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Not-found errors.  Surfaced to the caller, never retried.
var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrAuctionNotFound    = errors.New("auction not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTeamNotFound       = errors.New("team not found")
)

// Invalid-state errors.  The operation is illegal in the current lifecycle
// state; callers must re-check state before retrying.
var (
	ErrAuctionDisabled      = errors.New("auction is not enabled for this tournament")
	ErrAuctionAlreadyActive = errors.New("an auction is already in progress for this tournament")
	ErrAuctionNotActive     = errors.New("auction is not accepting bids")
	ErrAuctionNotPaused     = errors.New("auction is not paused")
	ErrAuctionCompleted     = errors.New("auction is already completed")
	ErrPlayerAlreadySold    = errors.New("player is already assigned to a team")
)

// Validation errors.  The bid itself is at fault; the reason is specific so
// the client can correct and resubmit.  A low bid is rejected, never
// silently raised.
var (
	ErrBidNotPositive    = errors.New("bid amount must be positive")
	ErrBidTooLow         = errors.New("bid must exceed the current highest bid")
	ErrIncrementNotMet   = errors.New("bid does not meet the minimum increment")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
)

// ErrConflict is returned when a compare-and-set on the serialization
// boundary keeps losing after bounded retries.  Under normal load it never
// surfaces; internal retries absorb transient races.
var ErrConflict = errors.New("concurrent update conflict")

// BidError wraps one of the validation sentinels with the amounts a client
// needs to resubmit: the current highest bid (or base price when no bid
// exists yet) and the smallest acceptable next amount.
type BidError struct {
	Err     error
	Current decimal.Decimal
	NextMin decimal.Decimal
}

func (e *BidError) Error() string {
	return fmt.Sprintf("%v (current %s, next valid bid %s)", e.Err, e.Current, e.NextMin)
}

// Unwrap lets callers match the underlying sentinel with errors.Is.
func (e *BidError) Unwrap() error { return e.Err }
