package auction

import (
	"github.com/shopspring/decimal"

	"github.com/iliyamo/tournament-auction/internal/model"
)

// currentPrice derives the price a new bid must beat: the highest bid so
// far, or the player's base price when no bid exists yet.
func currentPrice(highest *model.Bid, player *model.Player) decimal.Decimal {
	if highest != nil {
		return highest.Amount
	}
	return player.BasePrice
}

// nextMinimum is the smallest acceptable next bid given the current price
// and the tournament's optional minimum increment.  Without a configured
// increment any strictly higher amount is acceptable, so the current price
// itself is returned and the strictness is enforced separately.
func nextMinimum(current decimal.Decimal, increment decimal.NullDecimal) decimal.Decimal {
	if increment.Valid {
		return current.Add(increment.Decimal)
	}
	return current
}

// validateBid decides whether amount is a legal bid against the current
// price, the tournament increment and the bidding team's wallet.  Checks
// run in a fixed order, each with its own rejection:
//
//  1. amount must be positive
//  2. amount must strictly exceed the current price
//  3. amount must meet current + minimum increment, when one is configured
//  4. the team wallet must cover amount in full — a bid that could not be
//     honored if it won is rejected outright, there is no escrow bidding
//
// It is a pure function; the caller holds the per-(auction, player) lock so
// the inputs cannot shift underneath it.
func validateBid(amount, current decimal.Decimal, increment decimal.NullDecimal, wallet decimal.NullDecimal) error {
	min := nextMinimum(current, increment)
	if amount.Sign() <= 0 {
		return &BidError{Err: ErrBidNotPositive, Current: current, NextMin: min}
	}
	if amount.Cmp(current) <= 0 {
		return &BidError{Err: ErrBidTooLow, Current: current, NextMin: min}
	}
	if increment.Valid && amount.Cmp(min) < 0 {
		return &BidError{Err: ErrIncrementNotMet, Current: current, NextMin: min}
	}
	if !wallet.Valid || wallet.Decimal.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	return nil
}
