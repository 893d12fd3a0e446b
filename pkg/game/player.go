package game

import (
	"fmt"
	"time"
)

// Player holds one participant's identity and owned cards. TotalMoney is a
// cached sum over the money cards in Hand; every hand mutation below keeps
// it in step, and Recount exists for tests to assert the invariant.
type Player struct {
	ID   string
	Name string

	// Hand holds both animal trophies and money cards, in acquisition
	// order.
	Hand []Card

	// TotalMoney mirrors the sum of money-card face values in Hand.
	TotalMoney int

	JoinedAt time.Time
}

// NewPlayer creates a player holding the fixed starting money set.
func NewPlayer(id, name string) *Player {
	p := &Player{
		ID:       id,
		Name:     name,
		Hand:     StartingHand(),
		JoinedAt: time.Now(),
	}
	p.TotalMoney = p.Recount()
	return p
}

// AddCard appends a card to the hand, keeping the money total current.
func (p *Player) AddCard(c Card) {
	p.Hand = append(p.Hand, c)
	if c.IsMoney() {
		p.TotalMoney += c.Value
	}
}

// RemoveCard removes the card with the given id from the hand and returns
// it. The second return is false when the player does not hold the card.
func (p *Player) RemoveCard(id string) (Card, bool) {
	for i, c := range p.Hand {
		if c.ID == id {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			if c.IsMoney() {
				p.TotalMoney -= c.Value
			}
			return c, true
		}
	}
	return Card{}, false
}

// MoneyCards returns the money cards currently held, in hand order.
func (p *Player) MoneyCards() []Card {
	cards := make([]Card, 0, len(p.Hand))
	for _, c := range p.Hand {
		if c.IsMoney() {
			cards = append(cards, c)
		}
	}
	return cards
}

// Animals returns the animal cards currently held, in hand order.
func (p *Player) Animals() []Card {
	cards := make([]Card, 0, len(p.Hand))
	for _, c := range p.Hand {
		if c.IsAnimal() {
			cards = append(cards, c)
		}
	}
	return cards
}

// BiddableMoney is the amount the player can honestly put behind a bid: the
// sum of strictly positive money cards. The $0 card never counts.
func (p *Player) BiddableMoney() int {
	total := 0
	for _, c := range p.Hand {
		if c.IsMoney() && c.Value > 0 {
			total += c.Value
		}
	}
	return total
}

// Recount recomputes the money total from the hand contents.
func (p *Player) Recount() int {
	total := 0
	for _, c := range p.Hand {
		if c.IsMoney() {
			total += c.Value
		}
	}
	return total
}

// CheckMoneyInvariant returns an error when the cached total has diverged
// from the hand contents.
func (p *Player) CheckMoneyInvariant() error {
	if got := p.Recount(); got != p.TotalMoney {
		return fmt.Errorf("player %s: cached money total %d != hand sum %d", p.ID, p.TotalMoney, got)
	}
	return nil
}
