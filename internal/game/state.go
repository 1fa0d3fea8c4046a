// Package game implements the authoritative bridge card-play position: known
// and hidden hands, voids, the trick in progress, and the undo/redo history
// (§3, §4.2). It is the user-facing state a caller mutates via Play/Undo/Redo;
// internal/world holds the lighter-weight copy used inside simulations.
package game

import (
	"github.com/signalnine/bridgesolve/internal/cards"
)

// State is the authoritative bridge position.
type State struct {
	Hands   [NumSeats]cards.Mask
	Plays   [NumSeats]cards.Mask
	Hidden  cards.Mask
	Unknown [NumSeats]int
	Voids   uint16 // bit (seat*4 + suit)

	Leader Seat
	Trick  Trick
	Taken  [2]int // indexed by Side

	Contract    Contract
	Declarer    Seat
	Constraints [NumSeats]SeatConstraints

	undoStack []snapshot
	redoStack []snapshot
}

// snapshot captures every mutable field needed to restore a State, excluding
// the undo/redo stacks themselves.
type snapshot struct {
	Hands   [NumSeats]cards.Mask
	Plays   [NumSeats]cards.Mask
	Hidden  cards.Mask
	Unknown [NumSeats]int
	Voids   uint16
	Leader  Seat
	Trick   Trick
	Taken   [2]int
}

// NewState builds a game from known hands plus a set of seats whose hands are
// entirely hidden. Leader is set to declarer's left-hand opponent per §4
// lifecycle rules.
func NewState(hands [NumSeats]cards.Mask, hiddenSeats [NumSeats]bool, declarer Seat, contract Contract) *State {
	s := &State{
		Hands:    hands,
		Declarer: declarer,
		Contract: contract,
		Leader:   declarer.Next(),
	}
	var known cards.Mask
	for seat := Seat(0); seat < NumSeats; seat++ {
		if hiddenSeats[seat] {
			s.Hands[seat] = 0
			s.Unknown[seat] = 13
		} else {
			known |= hands[seat]
		}
		s.Constraints[seat] = DefaultConstraints()
	}
	s.Hidden = cards.FullDeck &^ known
	s.Trick = Trick{Leader: s.Leader}
	return s
}

func (s *State) snap() snapshot {
	return snapshot{
		Hands:   s.Hands,
		Plays:   s.Plays,
		Hidden:  s.Hidden,
		Unknown: s.Unknown,
		Voids:   s.Voids,
		Leader:  s.Leader,
		Trick:   s.Trick,
		Taken:   s.Taken,
	}
}

func (s *State) restore(sn snapshot) {
	s.Hands = sn.Hands
	s.Plays = sn.Plays
	s.Hidden = sn.Hidden
	s.Unknown = sn.Unknown
	s.Voids = sn.Voids
	s.Leader = sn.Leader
	s.Trick = sn.Trick
	s.Taken = sn.Taken
}

func (s *State) unionPlays() cards.Mask {
	return s.Plays[0] | s.Plays[1] | s.Plays[2] | s.Plays[3]
}

// IsVoid reports whether seat is known void in suit.
func (s *State) IsVoid(seat Seat, suit cards.Suit) bool {
	return s.Voids&(1<<(uint(seat)*4+uint(suit))) != 0
}

func (s *State) setVoid(seat Seat, suit cards.Suit) {
	s.Voids |= 1 << (uint(seat) * 4 + uint(suit))
}

// voidSuitsMask returns the mask of every card in a suit seat is known void in.
func (s *State) voidSuitsMask(seat Seat) cards.Mask {
	var m cards.Mask
	for suit := cards.Suit(0); suit < cards.NumSuits; suit++ {
		if s.IsVoid(seat, suit) {
			m |= cards.SuitMask(suit)
		}
	}
	return m
}

// candidatePool returns the cards seat could plausibly hold right now: its
// known hand plus, if it still has unpinned cards, the hidden pool minus any
// suit it is known void in. Already-played cards are excluded.
func (s *State) candidatePool(seat Seat) cards.Mask {
	pool := s.Hands[seat]
	if s.Unknown[seat] > 0 {
		pool |= s.Hidden &^ s.voidSuitsMask(seat)
	}
	return pool &^ s.unionPlays()
}

func (s *State) hasSuitInPool(seat Seat, suit cards.Suit) bool {
	if s.IsVoid(seat, suit) {
		return false
	}
	return s.candidatePool(seat).SuitCount(suit) > 0
}

// legalPool returns the mask of cards the current leader may legally play.
func (s *State) legalPool() cards.Mask {
	pool := s.candidatePool(s.Leader)
	if leadSuit, led := s.Trick.LeadSuit(); led && s.hasSuitInPool(s.Leader, leadSuit) {
		pool &= cards.SuitMask(leadSuit)
	}
	return pool
}

// IsLegal reports whether the acting leader may play card right now (§4.2).
func (s *State) IsLegal(card cards.Card) bool {
	return s.legalPool().Has(card)
}

// GetMoves returns every legal card for the acting leader.
func (s *State) GetMoves() []cards.Card {
	return s.legalPool().Cards()
}

// Play applies a card for the current leader. If check is true, the play must
// satisfy IsLegal; illegal plays return false with no state change.
func (s *State) Play(card cards.Card, check bool) bool {
	if check && !s.IsLegal(card) {
		return false
	}

	s.undoStack = append(s.undoStack, s.snap())
	s.redoStack = nil

	leader := s.Leader
	leadSuit, led := s.Trick.LeadSuit()
	fromHidden := !s.Hands[leader].Has(card)

	if led && card.Suit != leadSuit {
		s.ApplyVoid(leadSuit)
	}

	if fromHidden {
		s.Unknown[leader]--
		s.Hidden = s.Hidden.Without(card)
	}
	s.Hands[leader] = s.Hands[leader].Without(card)
	s.Plays[leader] = s.Plays[leader].With(card)
	s.Trick.Append(leader, card)

	if s.Trick.Full() {
		s.FinishTrick()
	} else {
		s.Leader = leader.Next()
	}
	return true
}

// ApplyVoid marks the current leader void in suit and propagates a three-way
// elimination: if exactly one other seat still has unpinned cards, every
// hidden card of suit must belong to that seat.
func (s *State) ApplyVoid(suit cards.Suit) {
	s.setVoid(s.Leader, suit)

	otherWithUnknown := -1
	count := 0
	for seat := Seat(0); seat < NumSeats; seat++ {
		if seat == s.Leader {
			continue
		}
		if s.Unknown[seat] > 0 {
			count++
			otherWithUnknown = int(seat)
		}
	}
	if count != 1 {
		return
	}

	seat := Seat(otherWithUnknown)
	suitHidden := s.Hidden & cards.SuitMask(suit)
	s.Hands[seat] |= suitHidden
	dec := suitHidden.Count()
	if dec > s.Unknown[seat] {
		dec = s.Unknown[seat]
	}
	s.Unknown[seat] -= dec
	s.Hidden &^= suitHidden
}

// FinishTrick resolves the completed trick, credits the winning side, and
// starts a new trick led by the winner.
func (s *State) FinishTrick() {
	winner := s.Trick.Winner(s.Contract.Strain)
	s.Taken[winner.Side()]++
	s.Trick = Trick{Leader: winner}
	s.Leader = winner
}

// IsOver reports whether all 13 tricks have been taken.
func (s *State) IsOver() bool {
	return s.Taken[0]+s.Taken[1] >= 13
}

// Undo reverts the last Play, pushing the pre-undo state onto the redo stack.
// Returns false if there is nothing to undo.
func (s *State) Undo() bool {
	if len(s.undoStack) == 0 {
		return false
	}
	n := len(s.undoStack)
	sn := s.undoStack[n-1]
	s.undoStack = s.undoStack[:n-1]
	s.redoStack = append(s.redoStack, s.snap())
	s.restore(sn)
	return true
}

// Redo re-applies the last undone Play. Returns false if there is nothing to redo.
func (s *State) Redo() bool {
	if len(s.redoStack) == 0 {
		return false
	}
	n := len(s.redoStack)
	sn := s.redoStack[n-1]
	s.redoStack = s.redoStack[:n-1]
	s.undoStack = append(s.undoStack, s.snap())
	s.restore(sn)
	return true
}

// Clone deep-copies the state, including undo/redo history, so the clone
// evolves independently of the original.
func (s *State) Clone() *State {
	clone := *s
	clone.undoStack = append([]snapshot(nil), s.undoStack...)
	clone.redoStack = append([]snapshot(nil), s.redoStack...)
	return &clone
}
