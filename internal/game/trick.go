package game

import "github.com/signalnine/bridgesolve/internal/cards"

// TrickCard records one card played to a trick by a seat.
type TrickCard struct {
	Seat Seat
	Card cards.Card
}

// Trick is the (up to) four cards played so far in the current trick.
// Invariant: Count <= 4; Cards[0].Suit (when Count > 0) is the lead suit.
type Trick struct {
	Cards  [4]TrickCard
	Leader Seat
	Count  int
}

// LeadSuit returns the suit of the first card played, and whether a card has
// been led yet.
func (t Trick) LeadSuit() (cards.Suit, bool) {
	if t.Count == 0 {
		return 0, false
	}
	return t.Cards[0].Card.Suit, true
}

// Append adds a card to the trick from the given seat.
func (t *Trick) Append(seat Seat, c cards.Card) {
	t.Cards[t.Count] = TrickCard{Seat: seat, Card: c}
	t.Count++
}

// Full reports whether all four seats have played to this trick.
func (t Trick) Full() bool {
	return t.Count >= 4
}

// Winner returns the seat that wins the trick under the priority rule in
// §4.2: trump beats lead suit beats everything else, ties broken by rank.
// Shared with internal/world, which plays out the same priority rule over
// fully-specified hands.
func (t Trick) Winner(strain Strain) Seat {
	priority := func(c cards.Card) int {
		leadSuit, _ := t.LeadSuit()
		switch {
		case strain.IsTrump(c.Suit):
			return 2
		case c.Suit == leadSuit:
			return 1
		default:
			return 0
		}
	}

	best := t.Cards[0]
	bestPriority := priority(best.Card)
	for i := 1; i < t.Count; i++ {
		tc := t.Cards[i]
		p := priority(tc.Card)
		if p > bestPriority || (p == bestPriority && tc.Card.Rank > best.Card.Rank) {
			best = tc
			bestPriority = p
		}
	}
	return best.Seat
}
