package cards

import "testing"

func TestMaskWithWithout(t *testing.T) {
	c := Card{Rank: Ace, Suit: Spades}
	var m Mask
	m = m.With(c)
	if !m.Has(c) {
		t.Fatal("mask should contain card after With")
	}
	m = m.Without(c)
	if m.Has(c) {
		t.Fatal("mask should not contain card after Without")
	}
}

func TestMaskCountAndCards(t *testing.T) {
	var m Mask
	want := []Card{
		{Rank: Ace, Suit: Spades},
		{Rank: Two, Suit: Clubs},
		{Rank: King, Suit: Hearts},
	}
	for _, c := range want {
		m = m.With(c)
	}
	if m.Count() != len(want) {
		t.Fatalf("Count() = %d, want %d", m.Count(), len(want))
	}
	got := m.Cards()
	if len(got) != len(want) {
		t.Fatalf("Cards() returned %d cards, want %d", len(got), len(want))
	}
	seen := make(map[Card]bool)
	for _, c := range got {
		seen[c] = true
	}
	for _, c := range want {
		if !seen[c] {
			t.Errorf("Cards() missing %v", c)
		}
	}
}

func TestSuitMaskDisjoint(t *testing.T) {
	var union Mask
	for s := Suit(0); s < NumSuits; s++ {
		sm := SuitMask(s)
		if sm.Count() != 13 {
			t.Errorf("SuitMask(%v) has %d bits, want 13", s, sm.Count())
		}
		if union.Intersects(sm) {
			t.Errorf("SuitMask(%v) overlaps previous suits", s)
		}
		union |= sm
	}
	if union != FullDeck {
		t.Errorf("union of suit masks = %#x, want FullDeck %#x", uint64(union), uint64(FullDeck))
	}
}

func TestHCPOfMask(t *testing.T) {
	m := Mask(0)
	m = m.With(Card{Rank: Ace, Suit: Spades})
	m = m.With(Card{Rank: King, Suit: Hearts})
	m = m.With(Card{Rank: Two, Suit: Clubs})
	if got := m.HCP(); got != 7 {
		t.Errorf("HCP() = %d, want 7", got)
	}
}

func TestSuitCount(t *testing.T) {
	m := SuitMask(Hearts)
	if got := m.SuitCount(Hearts); got != 13 {
		t.Errorf("SuitCount(Hearts) = %d, want 13", got)
	}
	if got := m.SuitCount(Spades); got != 0 {
		t.Errorf("SuitCount(Spades) = %d, want 0", got)
	}
}
