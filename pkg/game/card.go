package game

import (
	"fmt"

	"github.com/google/uuid"
)

// CardKind distinguishes the two card families in the draw pile and hands.
type CardKind string

const (
	CardAnimal CardKind = "animal"
	CardMoney  CardKind = "money"
)

// Species identifies an animal card. Species values are strictly increasing
// by rank; four copies of each exist in the draw pile.
type Species string

const (
	Rooster Species = "Rooster"
	Goose   Species = "Goose"
	Cat     Species = "Cat"
	Dog     Species = "Dog"
	Sheep   Species = "Sheep"
	Goat    Species = "Goat"
	Donkey  Species = "Donkey"
	Pig     Species = "Pig"
	Cow     Species = "Cow"
	Horse   Species = "Horse"
)

// AllSpecies lists every species in rank order.
var AllSpecies = []Species{Rooster, Goose, Cat, Dog, Sheep, Goat, Donkey, Pig, Cow, Horse}

var speciesValues = map[Species]int{
	Rooster: 10,
	Goose:   40,
	Cat:     90,
	Dog:     160,
	Sheep:   250,
	Goat:    350,
	Donkey:  500,
	Pig:     650,
	Cow:     800,
	Horse:   1000,
}

// SpeciesValue returns the fixed face value for a species.
func SpeciesValue(s Species) int {
	return speciesValues[s]
}

// BonusSpecies is the species whose draw pays the whole table: each time a
// donkey comes up for auction every player is minted a bonus money card
// before bidding opens.
const BonusSpecies = Donkey

var bonusSchedule = []int{50, 100, 200, 500}

// BonusAmount returns the table payout for the n-th bonus-species draw of
// the game (1-based). Draws past the end of the schedule keep paying the
// final amount.
func BonusAmount(draw int) int {
	if draw < 1 {
		return 0
	}
	if draw > len(bonusSchedule) {
		return bonusSchedule[len(bonusSchedule)-1]
	}
	return bonusSchedule[draw-1]
}

// MoneyDenominations are the only legal money card face values. The $0 card
// is a real card; it just never buys anything.
var MoneyDenominations = []int{0, 10, 50, 100, 200, 500}

// Card is an immutable value object. Animal cards carry a species and its
// fixed value; money cards carry a denomination.
type Card struct {
	ID      string   `json:"id"`
	Kind    CardKind `json:"kind"`
	Species Species  `json:"species,omitempty"`
	Value   int      `json:"value"`
	Label   string   `json:"label"`
}

// NewAnimalCard mints an animal card of the given species.
func NewAnimalCard(s Species) Card {
	return Card{
		ID:      uuid.NewString(),
		Kind:    CardAnimal,
		Species: s,
		Value:   SpeciesValue(s),
		Label:   fmt.Sprintf("%s (%d)", s, SpeciesValue(s)),
	}
}

// NewMoneyCard mints a money card of the given denomination.
func NewMoneyCard(value int) Card {
	return Card{
		ID:    uuid.NewString(),
		Kind:  CardMoney,
		Value: value,
		Label: fmt.Sprintf("$%d", value),
	}
}

// IsAnimal reports whether the card is an animal card.
func (c Card) IsAnimal() bool { return c.Kind == CardAnimal }

// IsMoney reports whether the card is a money card.
func (c Card) IsMoney() bool { return c.Kind == CardMoney }

// String returns the card label.
func (c Card) String() string { return c.Label }

// NewDrawPile builds the shared draw pile: four animals of every species
// plus exactly one money card per denomination.
func NewDrawPile() []Card {
	pile := make([]Card, 0, 4*len(AllSpecies)+len(MoneyDenominations))
	for _, s := range AllSpecies {
		for i := 0; i < 4; i++ {
			pile = append(pile, NewAnimalCard(s))
		}
	}
	for _, v := range MoneyDenominations {
		pile = append(pile, NewMoneyCard(v))
	}
	return pile
}

// StartingHand deals a player's fixed private money set: four $10, two $0
// and one $50 ($90 total).
func StartingHand() []Card {
	hand := make([]Card, 0, 7)
	for i := 0; i < 4; i++ {
		hand = append(hand, NewMoneyCard(10))
	}
	for i := 0; i < 2; i++ {
		hand = append(hand, NewMoneyCard(0))
	}
	hand = append(hand, NewMoneyCard(50))
	return hand
}
