package game

import (
	"fmt"
	"time"

	"github.com/kuhhandel/kuhhandel/pkg/statemachine"
)

// AuctionStateFn represents an auction state function following Rob Pike's
// pattern.
type AuctionStateFn = statemachine.StateFn[Auction]

// Auction state names as reported by snapshots. AuctionStateNone is used
// when no auction context exists at all.
const (
	AuctionStateNone       = "NONE"
	AuctionStateInProgress = "IN_PROGRESS"
	AuctionStateMatchBid   = "MATCH_BID"
	AuctionStateSummary    = "SUMMARY"
)

// SummaryKind classifies how an auction concluded.
type SummaryKind string

const (
	SummaryNoBids        SummaryKind = "no_bids"
	SummaryNormalWin     SummaryKind = "normal_win"
	SummaryMatchedBid    SummaryKind = "matched_bid"
	SummaryBluffDetected SummaryKind = "bluff_detected"
)

// Summary is the outcome record shown to players while the auction sits in
// the summary state.
type Summary struct {
	Kind       SummaryKind `json:"kind"`
	Animal     string      `json:"animal"`
	Auctioneer string      `json:"auctioneer"`
	Winner     string      `json:"winner,omitempty"`
	Bluffer    string      `json:"bluffer,omitempty"`
	Payer      string      `json:"payer,omitempty"`
	Payee      string      `json:"payee,omitempty"`
	Amount     int         `json:"amount"`
	// Affordable is only set for bluffs: the bluffer's true positive-card
	// money at the time of the bid.
	Affordable int    `json:"affordable,omitempty"`
	Message    string `json:"message"`
}

// Auction is the per-auction context: one animal card under the hammer, one
// auctioneer, and the running bid. Its lifecycle is driven by the session
// operations; the state machine only tracks which phase it sits in.
type Auction struct {
	Card         Card
	AuctioneerID string

	CurrentBid      int
	CurrentBidderID string

	// Disqualified grows only. It survives a bluff restart and is torn
	// down with the whole context when the summary is cleared.
	Disqualified map[string]bool

	// Deadline is advisory. The engine never fires on it; callers evaluate
	// it and invoke the matching operation.
	Deadline time.Time

	Summary *Summary

	sm *statemachine.StateMachine[Auction]
}

// State functions following Rob Pike's pattern. Transitions are driven
// externally by the session operations, so each state simply holds.

func auctionStateInProgress(a *Auction) AuctionStateFn {
	return auctionStateInProgress
}

func auctionStateMatchBid(a *Auction) AuctionStateFn {
	return auctionStateMatchBid
}

func auctionStateSummary(a *Auction) AuctionStateFn {
	return auctionStateSummary
}

// newAuction opens bidding on the given card.
func newAuction(card Card, auctioneerID string, deadline time.Time) *Auction {
	a := &Auction{
		Card:         card,
		AuctioneerID: auctioneerID,
		Disqualified: make(map[string]bool),
		Deadline:     deadline,
	}
	a.sm = statemachine.New(a, auctionStateInProgress)
	return a
}

// State returns a string representation of the current auction state.
func (a *Auction) State() string {
	current := a.sm.Current()
	switch {
	case statemachine.Same(current, auctionStateInProgress):
		return AuctionStateInProgress
	case statemachine.Same(current, auctionStateMatchBid):
		return AuctionStateMatchBid
	case statemachine.Same(current, auctionStateSummary):
		return AuctionStateSummary
	default:
		return "UNKNOWN"
	}
}

func (a *Auction) inProgress() bool {
	return a.sm.Is(auctionStateInProgress)
}

func (a *Auction) inMatchBid() bool {
	return a.sm.Is(auctionStateMatchBid)
}

func (a *Auction) inSummary() bool {
	return a.sm.Is(auctionStateSummary)
}

// hasBid reports whether a live bid is on the table. The two conditions are
// kept in lockstep by placeBid: a zero bid always means no bidder.
func (a *Auction) hasBid() bool {
	return a.CurrentBid > 0 && a.CurrentBidderID != ""
}

// reopen puts the same card and auctioneer back up for bidding after a
// detected bluff. The disqualified set is deliberately kept.
func (a *Auction) reopen(deadline time.Time) {
	a.CurrentBid = 0
	a.CurrentBidderID = ""
	a.Summary = nil
	a.Deadline = deadline
	a.sm.SetState(auctionStateInProgress)
}

func (a *Auction) String() string {
	return fmt.Sprintf("auction[%s by %s bid=%d state=%s]", a.Card.Label, a.AuctioneerID, a.CurrentBid, a.State())
}
