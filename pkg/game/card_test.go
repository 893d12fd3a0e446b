package game

import "testing"

func TestNewDrawPile(t *testing.T) {
	pile := NewDrawPile()

	if len(pile) != 46 {
		t.Errorf("Expected 46 cards in the draw pile, got %d", len(pile))
	}

	// Four animals of every species.
	perSpecies := make(map[Species]int)
	moneySeen := make(map[int]int)
	for _, c := range pile {
		switch c.Kind {
		case CardAnimal:
			perSpecies[c.Species]++
			if c.Value != SpeciesValue(c.Species) {
				t.Errorf("Animal %s has value %d, want %d", c.Species, c.Value, SpeciesValue(c.Species))
			}
		case CardMoney:
			moneySeen[c.Value]++
		}
	}
	for _, s := range AllSpecies {
		if perSpecies[s] != 4 {
			t.Errorf("Expected 4 %s cards, got %d", s, perSpecies[s])
		}
	}

	// Exactly one money card per denomination.
	for _, v := range MoneyDenominations {
		if moneySeen[v] != 1 {
			t.Errorf("Expected one $%d card in the pile, got %d", v, moneySeen[v])
		}
	}

	// All ids unique.
	ids := make(map[string]bool)
	for _, c := range pile {
		if ids[c.ID] {
			t.Errorf("Duplicate card id %s", c.ID)
		}
		ids[c.ID] = true
	}
}

func TestSpeciesValuesStrictlyIncreasing(t *testing.T) {
	prev := 0
	for _, s := range AllSpecies {
		v := SpeciesValue(s)
		if v <= prev {
			t.Errorf("Species %s value %d not strictly above previous %d", s, v, prev)
		}
		prev = v
	}
	if SpeciesValue(Rooster) != 10 || SpeciesValue(Horse) != 1000 {
		t.Errorf("Species value range should span 10..1000, got %d..%d", SpeciesValue(Rooster), SpeciesValue(Horse))
	}
}

func TestStartingHand(t *testing.T) {
	hand := StartingHand()

	if len(hand) != 7 {
		t.Fatalf("Expected 7 starting cards, got %d", len(hand))
	}
	counts := make(map[int]int)
	total := 0
	for _, c := range hand {
		if !c.IsMoney() {
			t.Errorf("Starting hand should only hold money, got %v", c)
		}
		counts[c.Value]++
		total += c.Value
	}
	if counts[10] != 4 || counts[0] != 2 || counts[50] != 1 {
		t.Errorf("Expected 4x$10, 2x$0, 1x$50, got %v", counts)
	}
	if total != 90 {
		t.Errorf("Expected starting total $90, got $%d", total)
	}
}

func TestBonusAmountSchedule(t *testing.T) {
	want := map[int]int{1: 50, 2: 100, 3: 200, 4: 500, 5: 500, 9: 500}
	for draw, amount := range want {
		if got := BonusAmount(draw); got != amount {
			t.Errorf("BonusAmount(%d) = %d, want %d", draw, got, amount)
		}
	}
	if BonusAmount(0) != 0 {
		t.Errorf("BonusAmount(0) should be 0")
	}
}
