// Package queue defines message payloads exchanged over the message broker.
package queue

// Event type names carried in AuctionEvent.Type.  Consumers dispatch on
// these values; delivery is at-least-once, so consumers must tolerate
// duplicates.
const (
	EventAuctionStarted = "AuctionStarted"
	EventBidPlaced      = "BidPlaced"
	EventPlayerAssigned = "PlayerAssigned"
	EventAuctionPaused  = "AuctionPaused"
	EventAuctionResumed = "AuctionResumed"
	EventAuctionEnded   = "AuctionEnded"
)

// AuctionEvent is the single envelope for every auction notification.  Only
// the fields relevant to the event type are populated:
//
//	AuctionStarted            tournament_id, auction_id
//	BidPlaced                 auction_id, player_id, team_id, amount
//	PlayerAssigned            player_id, team_id, amount (the sold price)
//	AuctionPaused / Resumed   auction_id
//	AuctionEnded              auction_id
//
// Amounts travel as decimal strings to avoid float rounding on the wire.
type AuctionEvent struct {
	Type         string `json:"type"`
	TournamentID string `json:"tournament_id,omitempty"`
	AuctionID    string `json:"auction_id,omitempty"`
	PlayerID     string `json:"player_id,omitempty"`
	TeamID       string `json:"team_id,omitempty"`
	Amount       string `json:"amount,omitempty"`
	OccurredAt   string `json:"occurred_at"`
}
