package game

import "errors"

// Engine rejections. Every failed precondition maps to one of these; the
// API layer translates them into response codes. A rejected operation never
// mutates session state.
var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameFull          = errors.New("game is full")
	ErrWrongPhase        = errors.New("operation not allowed in current phase")
	ErrNotHost           = errors.New("only the host can do that")
	ErrNotEnoughPlayers  = errors.New("not enough players")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrAuctionOpen       = errors.New("an auction is already open")
	ErrNoAuction         = errors.New("no open auction")
	ErrWrongAuctionState = errors.New("auction is not in the required state")
	ErrNoAnimalsLeft     = errors.New("no animal cards left in the draw pile")
	ErrAuctioneerBid     = errors.New("the auctioneer cannot bid")
	ErrDisqualified      = errors.New("player is disqualified from this auction")
	ErrInvalidBid        = errors.New("invalid bid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotBluff          = errors.New("auction did not end in a detected bluff")
	ErrUnpayable         = errors.New("no card combination can cover the owed amount")
)
