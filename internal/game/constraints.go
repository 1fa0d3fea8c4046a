package game

import "github.com/signalnine/bridgesolve/internal/cards"

// Range is a closed integer interval, inclusive on both ends.
type Range struct {
	Min, Max int
}

// Contains reports whether v falls within the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// unconstrained is the default range: any count/HCP is acceptable.
var unconstrained = Range{Min: 0, Max: 37}

// SeatConstraints holds per-seat shape and HCP bounds used by the sampler's
// Filter step (§4.4). Edited marks whether a caller has actually narrowed
// these bounds; unedited constraints are never checked.
type SeatConstraints struct {
	Suits   [cards.NumSuits]Range // indexed by cards.Suit
	HCP     Range
	Edited  bool
}

// DefaultConstraints returns wide-open, unedited constraints.
func DefaultConstraints() SeatConstraints {
	return SeatConstraints{
		Suits: [cards.NumSuits]Range{
			{Min: 0, Max: 13},
			{Min: 0, Max: 13},
			{Min: 0, Max: 13},
			{Min: 0, Max: 13},
		},
		HCP: unconstrained,
	}
}

// Satisfies reports whether a fully-specified hand mask meets these
// constraints. Unedited constraints always pass.
func (c SeatConstraints) Satisfies(hand cards.Mask) bool {
	if !c.Edited {
		return true
	}
	if !c.HCP.Contains(hand.HCP()) {
		return false
	}
	for suit := cards.Suit(0); suit < cards.NumSuits; suit++ {
		if !c.Suits[suit].Contains(hand.SuitCount(suit)) {
			return false
		}
	}
	return true
}
