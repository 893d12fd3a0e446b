package game

import (
	"errors"
	"testing"
)

func moneyHand(values ...int) []Card {
	hand := make([]Card, 0, len(values))
	for _, v := range values {
		hand = append(hand, NewMoneyCard(v))
	}
	return hand
}

func values(cards []Card) map[int]int {
	counts := make(map[int]int)
	for _, c := range cards {
		counts[c.Value]++
	}
	return counts
}

func TestSelectPaymentMinimalOverpayment(t *testing.T) {
	// {$10, $50} owing $30: the $50 alone overpays by $20; $10+$50 would
	// overpay by $30. The single $50 must win.
	chosen, err := SelectPayment(moneyHand(10, 50), 30)
	if err != nil {
		t.Fatalf("SelectPayment: %v", err)
	}
	if len(chosen) != 1 || chosen[0].Value != 50 {
		t.Errorf("Expected just the $50 card, got %v", values(chosen))
	}
}

func TestSelectPaymentPrefersExact(t *testing.T) {
	// {$10, $50, $50} owing $70: the two $50s pay exactly.
	chosen, err := SelectPayment(moneyHand(10, 50, 50), 70)
	if err != nil {
		t.Fatalf("SelectPayment: %v", err)
	}
	if paymentSum(chosen) != 100 {
		t.Errorf("Expected $100 moved (two $50s), got $%d via %v", paymentSum(chosen), values(chosen))
	}
	if counts := values(chosen); counts[50] != 2 || len(chosen) != 2 {
		t.Errorf("Expected exactly two $50 cards, got %v", counts)
	}
}

func TestSelectPaymentExactBeatsFewerCards(t *testing.T) {
	// Owing $30 with {4x$10, $50}: three $10s hit exactly even though the
	// single $50 uses fewer cards. Exactness ranks above card count.
	chosen, err := SelectPayment(moneyHand(10, 10, 10, 10, 50), 30)
	if err != nil {
		t.Fatalf("SelectPayment: %v", err)
	}
	if paymentSum(chosen) != 30 {
		t.Errorf("Expected exact $30, got $%d", paymentSum(chosen))
	}
	if len(chosen) != 3 {
		t.Errorf("Expected three $10 cards, got %v", values(chosen))
	}
}

func TestSelectPaymentFewestCardsTieBreak(t *testing.T) {
	// Owing $100 with {$100, $50, $50}: both the single $100 and the two
	// $50s are exact; fewest cards moved wins.
	chosen, err := SelectPayment(moneyHand(100, 50, 50), 100)
	if err != nil {
		t.Fatalf("SelectPayment: %v", err)
	}
	if len(chosen) != 1 || chosen[0].Value != 100 {
		t.Errorf("Expected the single $100 card, got %v", values(chosen))
	}
}

func TestSelectPaymentZeroCardIsInert(t *testing.T) {
	chosen, err := SelectPayment(moneyHand(0, 0, 10, 10), 20)
	if err != nil {
		t.Fatalf("SelectPayment: %v", err)
	}
	for _, c := range chosen {
		if c.Value == 0 {
			t.Errorf("$0 card must never move as payment")
		}
	}
	if paymentSum(chosen) != 20 {
		t.Errorf("Expected exact $20, got $%d", paymentSum(chosen))
	}

	// $0 cards do not count toward coverage either.
	if _, err := SelectPayment(moneyHand(0, 0, 10), 20); !errors.Is(err, ErrUnpayable) {
		t.Errorf("Expected ErrUnpayable, got %v", err)
	}
}

func TestSelectPaymentUnpayable(t *testing.T) {
	if _, err := SelectPayment(moneyHand(10, 10), 50); !errors.Is(err, ErrUnpayable) {
		t.Errorf("Expected ErrUnpayable, got %v", err)
	}
}

func TestSelectPaymentZeroOwed(t *testing.T) {
	chosen, err := SelectPayment(moneyHand(10, 50), 0)
	if err != nil {
		t.Fatalf("SelectPayment: %v", err)
	}
	if len(chosen) != 0 {
		t.Errorf("Nothing should move when nothing is owed, got %v", values(chosen))
	}
}

func TestPayConservesMoney(t *testing.T) {
	payer := NewPlayer("a", "Anna")
	payee := NewPlayer("b", "Ben")
	before := payer.TotalMoney + payee.TotalMoney

	moved, err := Pay(payer, payee, 30)
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}

	if payer.TotalMoney+payee.TotalMoney != before {
		t.Errorf("Money not conserved: %d + %d != %d", payer.TotalMoney, payee.TotalMoney, before)
	}
	// Starting hand {4x$10, 2x$0, $50} owing $30 pays three $10s exactly.
	if paymentSum(moved) != 30 {
		t.Errorf("Expected $30 moved, got $%d", paymentSum(moved))
	}
	if payer.TotalMoney != 60 || payee.TotalMoney != 120 {
		t.Errorf("Expected 60/120 after payment, got %d/%d", payer.TotalMoney, payee.TotalMoney)
	}
	if err := payer.CheckMoneyInvariant(); err != nil {
		t.Error(err)
	}
	if err := payee.CheckMoneyInvariant(); err != nil {
		t.Error(err)
	}
}

func TestPayOverpaymentGoesToPayee(t *testing.T) {
	payer := NewPlayer("a", "Anna")
	payee := NewPlayer("b", "Ben")

	// Owing $45 is unreachable exactly (multiples of 10 only in hand), so
	// the smallest cover is $50. No change comes back.
	moved, err := Pay(payer, payee, 45)
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}
	if paymentSum(moved) != 50 {
		t.Errorf("Expected $50 moved for a $45 debt, got $%d", paymentSum(moved))
	}
	if payee.TotalMoney != 140 {
		t.Errorf("Payee should hold $140 (overpayment kept), got $%d", payee.TotalMoney)
	}
}
