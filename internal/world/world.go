// Package world implements the lightweight, fully-specified playout state
// used inside simulations (§4.5): a World knows every hand outright, unlike
// internal/game.State which tracks hidden cards and undo history for a
// single live position. Worlds are pooled and reused across iterations by
// internal/engine's hot loop.
package world

import (
	"fmt"
	"strings"

	"github.com/signalnine/bridgesolve/internal/cards"
	"github.com/signalnine/bridgesolve/internal/game"
	"github.com/signalnine/bridgesolve/internal/notation"
	"github.com/signalnine/bridgesolve/internal/oracle"
)

// PlayRecord is one card played during a playout: the supplemented replay
// accessor named in SPEC_FULL.md §12, grounded on the teacher's
// simulation.GameResult pattern of keeping both a summarized result and the
// raw sequence that produced it.
type PlayRecord struct {
	Seat game.Seat
	Card cards.Card
}

// World is a fully-specified deal plus the trick-taking state needed to play
// it out and, eventually, ask the oracle how the rest comes out.
type World struct {
	Hands    [game.NumSeats]cards.Mask
	Trick    game.Trick
	Taken    [2]int
	Leader   game.Seat
	Contract game.Contract

	// PublicKey is the tree's information-set identifier: 8 bits of
	// (card_index | seat<<6) shifted in per play (§4.5, §4.6).
	PublicKey uint64

	// Degenerate marks a sample the Sampler could not fully deal (open
	// question #1): Sampler.Filter rejects these unconditionally, before
	// any shape/HCP constraint check.
	Degenerate bool

	history []PlayRecord
}

// Reset clears w for reuse from a pool.
func (w *World) Reset() {
	history := w.history[:0]
	*w = World{history: history}
}

// History returns the cards played so far, in play order.
func (w *World) History() []PlayRecord {
	return append([]PlayRecord(nil), w.history...)
}

func (w *World) finished() bool {
	return w.Trick.Count == 0 &&
		w.Hands[game.North]|w.Hands[game.East]|w.Hands[game.South]|w.Hands[game.West] == 0
}

// IsOver reports whether every hand has been played out, the Query
// recursion's other leaf condition alongside running out of depth (§4.7).
func (w *World) IsOver() bool { return w.finished() }

// IsLegal reports whether the seat on lead may play c right now.
func (w *World) IsLegal(c cards.Card) bool {
	if !w.Hands[w.Leader].Has(c) {
		return false
	}
	if leadSuit, led := w.Trick.LeadSuit(); led && w.Hands[w.Leader].SuitCount(leadSuit) > 0 {
		return c.Suit == leadSuit
	}
	return true
}

// GetMoves returns every legal card for the seat on lead.
func (w *World) GetMoves() []cards.Card {
	pool := w.Hands[w.Leader]
	if leadSuit, led := w.Trick.LeadSuit(); led && pool.SuitCount(leadSuit) > 0 {
		pool &= cards.SuitMask(leadSuit)
	}
	return pool.Cards()
}

// Play removes c from the seat on lead's hand, appends it to the trick in
// progress and to the replay history, and rolls it into the public key
// (§4.5). Finishes and scores the trick when it reaches four cards. Returns
// the updated key, which internal/tree uses to address the resulting
// information set (§4.6: the tree's hash map keys on this 64-bit word alone).
func (w *World) Play(c cards.Card) uint64 {
	seat := w.Leader
	w.Hands[seat] = w.Hands[seat].Without(c)
	w.Trick.Append(seat, c)
	w.history = append(w.history, PlayRecord{Seat: seat, Card: c})
	w.PublicKey = w.PublicKey<<8 | uint64(c.Index()) | uint64(seat)<<6

	if w.Trick.Full() {
		w.finishTrick()
	} else {
		w.Leader = seat.Next()
	}
	return w.PublicKey
}

func (w *World) finishTrick() {
	winner := w.Trick.Winner(w.Contract.Strain)
	w.Taken[winner.Side()]++
	w.Trick = game.Trick{Leader: winner}
	w.Leader = winner
}

// Tricks returns the total tricks world.leader's side will end up with.
// If play has already run to completion this is a lookup; otherwise it
// consults the DD oracle on the hands as they stood at the start of the
// trick in progress, replaying what's already been played to it so the
// oracle's internal mover lines up with w.Leader before it is queried
// (§4.5). The oracle's Exec replays those same cards, so the hands handed
// to it must still contain them — Play already removed them from w.Hands,
// so they're added back here before serializing.
func (w *World) Tricks(o oracle.Oracle) (int, error) {
	side := w.Leader.Side()
	if w.finished() {
		return w.Taken[side], nil
	}

	var hands [game.NumSeats]string
	trickHands := w.Hands
	for i := 0; i < w.Trick.Count; i++ {
		tc := w.Trick.Cards[i]
		trickHands[tc.Seat] = trickHands[tc.Seat].With(tc.Card)
	}
	for seat := game.Seat(0); seat < game.NumSeats; seat++ {
		hands[seat] = notation.FormatHand(trickHands[seat])
	}

	tricks, err := oracle.Tricks(o, hands, w.Contract.Strain, w.Trick.Leader, w.partialTrickCommand())
	if err != nil {
		return 0, fmt.Errorf("world: consulting oracle: %w", err)
	}
	w.Taken[side] += tricks
	return w.Taken[side], nil
}

// partialTrickCommand renders the cards already played to the trick in
// progress as the oracle's <suit><rank> command language, in play order.
func (w *World) partialTrickCommand() string {
	if w.Trick.Count == 0 {
		return ""
	}
	tokens := make([]string, w.Trick.Count)
	for i := 0; i < w.Trick.Count; i++ {
		c := w.Trick.Cards[i].Card
		tokens[i] = c.Suit.String() + c.Rank.String()
	}
	return strings.Join(tokens, " ")
}
