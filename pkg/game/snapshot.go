package game

import (
	"sort"
	"time"
)

// PlayerSnapshot is a point-in-time copy of one player's public and private
// state. When built for a specific viewer, other players' money cards are
// redacted: money is played face down in this game, so opponents only ever
// learn how many money cards someone holds.
type PlayerSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Animals     []Card `json:"animals"`
	Money       []Card `json:"money,omitempty"`
	MoneyHidden bool   `json:"moneyHidden,omitempty"`
	MoneyCards  int    `json:"moneyCards"`
	TotalMoney  int    `json:"totalMoney"`
}

// AuctionSnapshot is a copy of the auction context.
type AuctionSnapshot struct {
	State           string    `json:"state"`
	Card            Card      `json:"card"`
	AuctioneerID    string    `json:"auctioneerId"`
	CurrentBid      int       `json:"currentBid"`
	CurrentBidderID string    `json:"currentBidderId,omitempty"`
	Disqualified    []string  `json:"disqualified,omitempty"`
	Deadline        time.Time `json:"deadline"`
	Summary         *Summary  `json:"summary,omitempty"`
}

// SessionSnapshot is an atomic copy of the whole game state, safe to hand
// out and serialize after the session lock is released.
type SessionSnapshot struct {
	ID                  string           `json:"id"`
	Phase               Phase            `json:"phase"`
	HostID              string           `json:"hostId"`
	Players             []PlayerSnapshot `json:"players"`
	CurrentTurnPlayerID string           `json:"currentTurnPlayerId,omitempty"`
	AuctionState        string           `json:"auctionState"`
	Auction             *AuctionSnapshot `json:"auction,omitempty"`
	AnimalsRemaining    int              `json:"animalsRemaining"`
	BonusDraws          int              `json:"bonusDraws"`
	CreatedAt           time.Time        `json:"createdAt"`
	LastAction          time.Time        `json:"lastAction"`
	Timestamp           time.Time        `json:"timestamp"`
}

// Snapshot returns a full, unredacted snapshot. Intended for tests and
// server-side consumers; it must never be serialized to a client.
func (s *Session) Snapshot() SessionSnapshot {
	return s.snapshot("", false)
}

// SnapshotFor returns a snapshot as seen by viewerID, with every other
// player's money hand hidden. An empty viewerID is an anonymous viewer and
// sees no money hand at all.
func (s *Session) SnapshotFor(viewerID string) SessionSnapshot {
	return s.snapshot(viewerID, true)
}

func (s *Session) snapshot(viewerID string, redact bool) SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]PlayerSnapshot, 0, len(s.players))
	for _, p := range s.players {
		ps := PlayerSnapshot{
			ID:         p.ID,
			Name:       p.Name,
			Animals:    append([]Card(nil), p.Animals()...),
			MoneyCards: len(p.MoneyCards()),
			TotalMoney: p.TotalMoney,
		}
		if redact && p.ID != viewerID {
			ps.MoneyHidden = true
			ps.TotalMoney = 0
		} else {
			ps.Money = append([]Card(nil), p.MoneyCards()...)
		}
		players = append(players, ps)
	}

	animals := 0
	for _, c := range s.deck {
		if c.IsAnimal() {
			animals++
		}
	}

	snap := SessionSnapshot{
		ID:               s.cfg.ID,
		Phase:            s.phase,
		HostID:           s.cfg.HostID,
		Players:          players,
		AuctionState:     AuctionStateNone,
		AnimalsRemaining: animals,
		BonusDraws:       s.bonusDraws,
		CreatedAt:        s.createdAt,
		LastAction:       s.lastAction,
		Timestamp:        time.Now(),
	}
	if p := s.currentTurnPlayer(); p != nil {
		snap.CurrentTurnPlayerID = p.ID
	}

	if a := s.auction; a != nil {
		disqualified := make([]string, 0, len(a.Disqualified))
		for id := range a.Disqualified {
			disqualified = append(disqualified, id)
		}
		sort.Strings(disqualified)

		var summary *Summary
		if a.Summary != nil {
			cp := *a.Summary
			summary = &cp
		}

		snap.AuctionState = a.State()
		snap.Auction = &AuctionSnapshot{
			State:           a.State(),
			Card:            a.Card,
			AuctioneerID:    a.AuctioneerID,
			CurrentBid:      a.CurrentBid,
			CurrentBidderID: a.CurrentBidderID,
			Disqualified:    disqualified,
			Deadline:        a.Deadline,
			Summary:         summary,
		}
	}
	return snap
}
