package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/decred/slog"
)

// Phase of a game session. TRADE is reserved for the player-to-player
// trading flow, which is handled outside this engine.
type Phase string

const (
	PhaseLobby   Phase = "LOBBY"
	PhaseAuction Phase = "AUCTION"
	PhaseTrade   Phase = "TRADE"
	PhaseEnded   Phase = "ENDED"
)

// Event names published by a session. Payloads are the *Record types below;
// publication is non-blocking and purely informational.
const (
	EventPlayerJoined   = "player_joined"
	EventPlayerLeft     = "player_left"
	EventGameStarted    = "game_started"
	EventAuctionStarted = "auction_started"
	EventBonusPaid      = "bonus_paid"
	EventBidPlaced      = "bid_placed"
	EventBluffDetected  = "bluff_detected"
	EventAuctionSettled = "auction_settled"
	EventSummaryCleared = "summary_cleared"
	EventGameEnded      = "game_ended"
)

// SettlementRecord describes one completed money movement between two
// players, as published with EventAuctionSettled.
type SettlementRecord struct {
	GameID  string
	Kind    SummaryKind
	PayerID string
	PayeeID string
	Owed    int
	Moved   int
	Cards   int
}

// BonusRecord describes a table-wide bonus payout triggered by drawing the
// bonus species.
type BonusRecord struct {
	GameID  string
	Draw    int
	Amount  int
	Players int
}

// EventPublisher receives session events. Implementations must not block.
type EventPublisher func(event string, gameID string, payload interface{})

// SessionConfig holds configuration for a new game session.
type SessionConfig struct {
	ID         string
	HostID     string
	MaxPlayers int
	// BidWindow and MatchWindow size the advisory deadlines stored on the
	// auction context. The engine never fires on them itself.
	BidWindow   time.Duration
	MatchWindow time.Duration
	Log         slog.Logger
	// Rand drives the card draw. Tests inject a seeded source.
	Rand *rand.Rand
}

// Session is the aggregate root for one game: the ordered players, the
// shared draw pile, whose turn it is and the auction context, if any. All
// mutation goes through the operation methods, each of which holds the
// session lock for its full duration so operations on one game never
// interleave.
type Session struct {
	log slog.Logger
	cfg SessionConfig

	mu  sync.RWMutex
	rng *rand.Rand

	players     []*Player // join order
	deck        []Card
	phase       Phase
	currentTurn int

	auction    *Auction
	bonusDraws int

	publish EventPublisher

	createdAt  time.Time
	lastAction time.Time
}

// NewSession creates a session in the lobby phase with a freshly seeded
// draw pile. The host still has to Join like everyone else.
func NewSession(cfg SessionConfig) *Session {
	if cfg.MaxPlayers == 0 {
		cfg.MaxPlayers = 5
	}
	if cfg.BidWindow == 0 {
		cfg.BidWindow = 30 * time.Second
	}
	if cfg.MatchWindow == 0 {
		cfg.MatchWindow = 15 * time.Second
	}
	if cfg.Log == nil {
		cfg.Log = slog.Disabled
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Session{
		log:        cfg.Log,
		cfg:        cfg,
		rng:        rng,
		deck:       NewDrawPile(),
		phase:      PhaseLobby,
		createdAt:  time.Now(),
		lastAction: time.Now(),
	}
}

// SetEventPublisher attaches the event sink. Pass nil to detach.
func (s *Session) SetEventPublisher(pub EventPublisher) {
	s.mu.Lock()
	s.publish = pub
	s.mu.Unlock()
}

// emit publishes an event if a publisher is attached. Callers hold the lock;
// publishers must therefore never call back into the session.
func (s *Session) emit(event string, payload interface{}) {
	if s.publish != nil {
		s.publish(event, s.cfg.ID, payload)
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.cfg.ID }

// HostID returns the current host.
func (s *Session) HostID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.HostID
}

// Phase returns the session phase.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// IsEmpty reports whether no players remain.
func (s *Session) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players) == 0
}

// Join adds a player during the lobby phase. Display names are de-duplicated
// by appending " (n)" for the n-th collision.
func (s *Session) Join(playerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseLobby {
		return fmt.Errorf("%w: joining is only possible in the lobby", ErrWrongPhase)
	}
	if len(s.players) >= s.cfg.MaxPlayers {
		return ErrGameFull
	}
	if s.playerByID(playerID) != nil {
		return fmt.Errorf("player %s already joined", playerID)
	}

	p := NewPlayer(playerID, s.dedupName(name))
	s.players = append(s.players, p)
	s.lastAction = time.Now()
	s.log.Infof("Player %s joined game %s as %q", playerID, s.cfg.ID, p.Name)
	s.emit(EventPlayerJoined, p.Name)
	return nil
}

// dedupName resolves display-name collisions. Caller holds the lock.
func (s *Session) dedupName(name string) string {
	taken := func(n string) bool {
		for _, p := range s.players {
			if p.Name == n {
				return true
			}
		}
		return false
	}
	if !taken(name) {
		return name
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if !taken(candidate) {
			return candidate
		}
	}
}

// Leave removes a player during the lobby phase. If the host leaves, the
// next player in join order becomes host.
func (s *Session) Leave(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseLobby {
		return fmt.Errorf("%w: leaving mid-game is not supported", ErrWrongPhase)
	}
	for i, p := range s.players {
		if p.ID == playerID {
			s.players = append(s.players[:i], s.players[i+1:]...)
			if s.cfg.HostID == playerID && len(s.players) > 0 {
				s.cfg.HostID = s.players[0].ID
			}
			s.lastAction = time.Now()
			s.emit(EventPlayerLeft, p.Name)
			return nil
		}
	}
	return ErrPlayerNotFound
}

// Start moves the session from the lobby into the auction phase. Host only,
// at least two players.
func (s *Session) Start(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseLobby {
		return fmt.Errorf("%w: game already started", ErrWrongPhase)
	}
	if playerID != s.cfg.HostID {
		return ErrNotHost
	}
	if len(s.players) < 2 {
		return ErrNotEnoughPlayers
	}

	s.phase = PhaseAuction
	s.currentTurn = 0
	s.lastAction = time.Now()
	s.log.Infof("Game %s started with %d players", s.cfg.ID, len(s.players))
	s.emit(EventGameStarted, len(s.players))
	return nil
}

// StartAuction draws a random animal from the pile and opens bidding on it.
// Only the player whose turn it is may start, and only while no auction is
// open. Drawing the bonus species first pays every player the scheduled
// bonus card.
func (s *Session) StartAuction(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseAuction {
		return ErrWrongPhase
	}
	if s.auction != nil {
		return ErrAuctionOpen
	}
	if s.currentTurnPlayer() == nil || s.currentTurnPlayer().ID != playerID {
		return ErrNotYourTurn
	}

	// Collect the animal-typed subset of the pile.
	animals := make([]int, 0, len(s.deck))
	for i, c := range s.deck {
		if c.IsAnimal() {
			animals = append(animals, i)
		}
	}
	if len(animals) == 0 {
		return ErrNoAnimalsLeft
	}

	pick := animals[s.rng.Intn(len(animals))]
	card := s.deck[pick]
	s.deck = append(s.deck[:pick], s.deck[pick+1:]...)

	if card.Species == BonusSpecies {
		s.bonusDraws++
		amount := BonusAmount(s.bonusDraws)
		for _, p := range s.players {
			p.AddCard(NewMoneyCard(amount))
		}
		s.log.Infof("Game %s: %s draw #%d pays every player $%d", s.cfg.ID, BonusSpecies, s.bonusDraws, amount)
		s.emit(EventBonusPaid, BonusRecord{
			GameID:  s.cfg.ID,
			Draw:    s.bonusDraws,
			Amount:  amount,
			Players: len(s.players),
		})
	}

	s.auction = newAuction(card, playerID, time.Now().Add(s.cfg.BidWindow))
	s.lastAction = time.Now()
	s.log.Debugf("Game %s: %s opened an auction for %s", s.cfg.ID, playerID, card.Label)
	s.emit(EventAuctionStarted, card.Label)
	return nil
}

// PlaceBid records a bid on the open auction. A bid the bidder cannot cover
// with positive money cards is a bluff: the bidder is disqualified for the
// remainder of this auction and the auction jumps straight to a summary, no
// cards or money moving. Bluffing is a defined outcome, not an error.
func (s *Session) PlaceBid(playerID string, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.auction
	if a == nil {
		return ErrNoAuction
	}
	if !a.inProgress() {
		return ErrWrongAuctionState
	}
	if playerID == a.AuctioneerID {
		return ErrAuctioneerBid
	}
	if a.Disqualified[playerID] {
		return ErrDisqualified
	}
	bidder := s.playerByID(playerID)
	if bidder == nil {
		return ErrPlayerNotFound
	}
	if amount < 10 || amount%10 != 0 || amount <= a.CurrentBid {
		return fmt.Errorf("%w: %d (current bid %d)", ErrInvalidBid, amount, a.CurrentBid)
	}

	affordable := bidder.BiddableMoney()
	if affordable < amount {
		a.Disqualified[playerID] = true
		a.Summary = &Summary{
			Kind:       SummaryBluffDetected,
			Animal:     a.Card.Label,
			Auctioneer: s.playerName(a.AuctioneerID),
			Bluffer:    bidder.Name,
			Amount:     amount,
			Affordable: affordable,
			Message:    fmt.Sprintf("%s bid $%d on the %s but can only pay $%d. Bluff!", bidder.Name, amount, a.Card.Label, affordable),
		}
		a.sm.SetState(auctionStateSummary)
		s.lastAction = time.Now()
		s.log.Infof("Game %s: bluff by %s ($%d bid, $%d affordable)", s.cfg.ID, bidder.Name, amount, affordable)
		s.emit(EventBluffDetected, a.Summary)
		return nil
	}

	a.CurrentBid = amount
	a.CurrentBidderID = playerID
	s.lastAction = time.Now()
	s.log.Debugf("Game %s: %s bids $%d on %s", s.cfg.ID, bidder.Name, amount, a.Card.Label)
	s.emit(EventBidPlaced, amount)
	return nil
}

// EndAuction closes the bidding window. With no bid on the table the
// auctioneer keeps the card. With a bid, the auctioneer is always offered
// the match decision first; calling EndAuction again (the match window
// timing out) finalizes the sale to the highest bidder.
func (s *Session) EndAuction() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endAuctionLocked()
}

func (s *Session) endAuctionLocked() error {
	a := s.auction
	if a == nil {
		return ErrNoAuction
	}

	switch {
	case a.inProgress():
		if !a.hasBid() {
			return s.settleNoBids()
		}
		a.Deadline = time.Now().Add(s.cfg.MatchWindow)
		a.sm.SetState(auctionStateMatchBid)
		s.lastAction = time.Now()
		s.log.Debugf("Game %s: bidding closed at $%d, %s may match", s.cfg.ID, a.CurrentBid, a.AuctioneerID)
		return nil

	case a.inMatchBid():
		if a.hasBid() {
			return s.settleSale(SummaryNormalWin)
		}
		return s.settleNoBids()

	default:
		return ErrWrongAuctionState
	}
}

// MatchBid lets the auctioneer buy the card back at the highest bid,
// paying the bidder instead of receiving from them. Affordability is
// enforced: an auctioneer who cannot pay must let the match window lapse.
func (s *Session) MatchBid(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.auction
	if a == nil {
		return ErrNoAuction
	}
	if !a.inMatchBid() {
		return ErrWrongAuctionState
	}
	if playerID != a.AuctioneerID {
		return fmt.Errorf("%w: only the auctioneer may match", ErrNotYourTurn)
	}
	auctioneer := s.playerByID(playerID)
	if auctioneer == nil {
		return ErrPlayerNotFound
	}
	if auctioneer.BiddableMoney() < a.CurrentBid {
		return fmt.Errorf("%w: need $%d, have $%d", ErrInsufficientFunds, a.CurrentBid, auctioneer.BiddableMoney())
	}

	return s.settleSale(SummaryMatchedBid)
}

// settleNoBids keeps the card with the auctioneer. Caller holds the lock.
func (s *Session) settleNoBids() error {
	a := s.auction
	auctioneer := s.playerByID(a.AuctioneerID)
	if auctioneer == nil {
		return ErrPlayerNotFound
	}
	auctioneer.AddCard(a.Card)
	a.Summary = &Summary{
		Kind:       SummaryNoBids,
		Animal:     a.Card.Label,
		Auctioneer: auctioneer.Name,
		Message:    fmt.Sprintf("No bids. %s keeps the %s.", auctioneer.Name, a.Card.Label),
	}
	a.sm.SetState(auctionStateSummary)
	s.lastAction = time.Now()
	s.log.Infof("Game %s: no bids, %s keeps %s", s.cfg.ID, auctioneer.Name, a.Card.Label)
	s.emit(EventAuctionSettled, a.Summary)
	return nil
}

// settleSale finalizes a sale. For a normal win the bidder pays the
// auctioneer and takes the card; for a matched bid the auctioneer pays the
// bidder and keeps it. The payment is settled card for card before the
// animal moves, so a failed payment leaves everything untouched. Caller
// holds the lock.
func (s *Session) settleSale(kind SummaryKind) error {
	a := s.auction
	auctioneer := s.playerByID(a.AuctioneerID)
	bidder := s.playerByID(a.CurrentBidderID)
	if auctioneer == nil || bidder == nil {
		return ErrPlayerNotFound
	}

	payer, payee, cardTo := bidder, auctioneer, bidder
	if kind == SummaryMatchedBid {
		payer, payee, cardTo = auctioneer, bidder, auctioneer
	}

	moved, err := Pay(payer, payee, a.CurrentBid)
	if err != nil {
		return err
	}
	cardTo.AddCard(a.Card)

	var msg string
	if kind == SummaryMatchedBid {
		msg = fmt.Sprintf("%s matched the $%d bid and keeps the %s; %s is paid off.", auctioneer.Name, a.CurrentBid, a.Card.Label, bidder.Name)
	} else {
		msg = fmt.Sprintf("%s wins the %s for $%d.", bidder.Name, a.Card.Label, a.CurrentBid)
	}
	a.Summary = &Summary{
		Kind:       kind,
		Animal:     a.Card.Label,
		Auctioneer: auctioneer.Name,
		Winner:     cardTo.Name,
		Payer:      payer.Name,
		Payee:      payee.Name,
		Amount:     a.CurrentBid,
		Message:    msg,
	}
	a.sm.SetState(auctionStateSummary)
	s.lastAction = time.Now()
	s.log.Infof("Game %s: %s — %s pays %s $%d (%d cards, $%d moved)",
		s.cfg.ID, kind, payer.Name, payee.Name, a.CurrentBid, len(moved), paymentSum(moved))
	s.emit(EventAuctionSettled, SettlementRecord{
		GameID:  s.cfg.ID,
		Kind:    kind,
		PayerID: payer.ID,
		PayeeID: payee.ID,
		Owed:    a.CurrentBid,
		Moved:   paymentSum(moved),
		Cards:   len(moved),
	})
	return nil
}

// ClearSummary tears down the auction context and passes the turn to the
// next player in join order, wrapping around. When the pile has no animals
// left there is nothing more to auction and the game ends.
func (s *Session) ClearSummary() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.auction
	if a == nil {
		return ErrNoAuction
	}
	if !a.inSummary() {
		return ErrWrongAuctionState
	}

	s.auction = nil
	if len(s.players) > 0 {
		s.currentTurn = (s.currentTurn + 1) % len(s.players)
	}
	s.lastAction = time.Now()
	s.emit(EventSummaryCleared, nil)

	if !s.animalsRemain() {
		s.phase = PhaseEnded
		s.log.Infof("Game %s: draw pile exhausted, game over", s.cfg.ID)
		s.emit(EventGameEnded, nil)
	}
	return nil
}

// RestartAfterBluff reopens bidding on the same card with the same
// auctioneer after a detected bluff. The bluffer stays locked out.
func (s *Session) RestartAfterBluff() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.auction
	if a == nil {
		return ErrNoAuction
	}
	if !a.inSummary() || a.Summary == nil || a.Summary.Kind != SummaryBluffDetected {
		return ErrNotBluff
	}

	a.reopen(time.Now().Add(s.cfg.BidWindow))
	s.lastAction = time.Now()
	s.log.Debugf("Game %s: auction for %s reopened after bluff", s.cfg.ID, a.Card.Label)
	s.emit(EventAuctionStarted, a.Card.Label)
	return nil
}

// EvaluateDeadlines advances the auction when its advisory deadline has
// passed: an expired bidding window closes the auction, an expired match
// window finalizes the sale. The engine never schedules this itself; the
// API layer calls it on every poll. Returns whether a transition fired.
func (s *Session) EvaluateDeadlines(now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.auction
	if a == nil || a.Deadline.IsZero() || now.Before(a.Deadline) {
		return false, nil
	}
	if a.inProgress() || a.inMatchBid() {
		if err := s.endAuctionLocked(); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// CurrentTurnPlayerID returns the id of the player whose turn it is, or ""
// before the game starts.
func (s *Session) CurrentTurnPlayerID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p := s.currentTurnPlayer(); p != nil {
		return p.ID
	}
	return ""
}

func (s *Session) currentTurnPlayer() *Player {
	if s.phase == PhaseLobby || len(s.players) == 0 {
		return nil
	}
	return s.players[s.currentTurn%len(s.players)]
}

func (s *Session) playerByID(id string) *Player {
	for _, p := range s.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Session) playerName(id string) string {
	if p := s.playerByID(id); p != nil {
		return p.Name
	}
	return id
}

func (s *Session) animalsRemain() bool {
	for _, c := range s.deck {
		if c.IsAnimal() {
			return true
		}
	}
	return false
}
