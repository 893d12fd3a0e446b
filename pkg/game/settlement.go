package game

import (
	"fmt"
	"sort"
)

// settlement picks which discrete money cards move when a payment is owed.
// Cards are atomic: no change is ever given back, so the payee may receive
// more than owed. Selection preference, in order:
//
//  1. a combination summing exactly to the owed amount;
//  2. failing that, the smallest possible overpayment;
//  3. ties broken by fewest cards moved;
//  4. remaining ties broken by preferring larger denominations first.
//
// The last rule keeps small change with the payer and makes the choice
// deterministic.

type paymentCell struct {
	ok    bool
	count int
	mask  uint64
}

// SelectPayment returns the subset of cards that should change hands to
// cover owed. Only strictly positive money cards participate; the $0 card
// is inert. ErrUnpayable is returned when no subset reaches the owed
// amount, which callers treat as a logic error since affordability is
// checked before any payment is due.
func SelectPayment(cards []Card, owed int) ([]Card, error) {
	if owed <= 0 {
		return nil, nil
	}

	usable := make([]Card, 0, len(cards))
	total := 0
	for _, c := range cards {
		if c.IsMoney() && c.Value > 0 {
			usable = append(usable, c)
			total += c.Value
		}
	}
	if total < owed {
		return nil, fmt.Errorf("%w: have %d, owe %d", ErrUnpayable, total, owed)
	}

	// Larger denominations first so equal-count ties resolve toward them.
	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].Value > usable[j].Value
	})

	// Subset-sum over achievable totals. The mask records which cards built
	// each sum; the whole game holds well under 64 money cards, so a uint64
	// always suffices.
	dp := make([]paymentCell, total+1)
	dp[0] = paymentCell{ok: true}
	for i, c := range usable {
		v := c.Value
		for s := total; s >= v; s-- {
			if !dp[s-v].ok {
				continue
			}
			cand := paymentCell{
				ok:    true,
				count: dp[s-v].count + 1,
				mask:  dp[s-v].mask | 1<<uint(i),
			}
			if !dp[s].ok || cand.count < dp[s].count {
				dp[s] = cand
			}
		}
	}

	// Smallest reachable sum >= owed wins; an exact match is simply the
	// first candidate checked.
	for s := owed; s <= total; s++ {
		if !dp[s].ok {
			continue
		}
		chosen := make([]Card, 0, dp[s].count)
		for i := range usable {
			if dp[s].mask&(1<<uint(i)) != 0 {
				chosen = append(chosen, usable[i])
			}
		}
		return chosen, nil
	}

	// Unreachable: dp[total] is always ok once total >= owed.
	return nil, fmt.Errorf("%w: have %d, owe %d", ErrUnpayable, total, owed)
}

// Pay settles a debt by moving the selected cards from payer to payee. Both
// cached money totals are adjusted by the sum actually moved, not by the
// owed amount, so money is conserved card for card. Returns the moved cards.
func Pay(payer, payee *Player, owed int) ([]Card, error) {
	chosen, err := SelectPayment(payer.MoneyCards(), owed)
	if err != nil {
		return nil, err
	}

	moved := make([]Card, 0, len(chosen))
	for _, c := range chosen {
		card, ok := payer.RemoveCard(c.ID)
		if !ok {
			return moved, fmt.Errorf("payer %s no longer holds card %s", payer.ID, c.ID)
		}
		payee.AddCard(card)
		moved = append(moved, card)
	}
	return moved, nil
}

// paymentSum is a small helper summing card face values.
func paymentSum(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Value
	}
	return total
}
