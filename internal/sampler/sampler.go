// Package sampler implements the determinization sampler (§4.4): given the
// live game's known cards, voids, and per-seat constraints, it deals
// plausible fully-specified Worlds for internal/engine's playouts to
// explore. Grounded on the teacher's game/war.go (an rng held on the
// sampling struct, used to shuffle a freshly built deck) and
// simulation/runner.go's setupDeck/seeded-rng idiom, generalized from a
// full fresh deck to a constrained re-deal of only the hidden cards.
package sampler

import (
	"math/rand"

	"github.com/signalnine/bridgesolve/internal/cards"
	"github.com/signalnine/bridgesolve/internal/game"
	"github.com/signalnine/bridgesolve/internal/notation"
	"github.com/signalnine/bridgesolve/internal/world"
)

// Sampler is built once per Game snapshot and produces any number of
// independent determinizations from it.
type Sampler struct {
	known       [game.NumSeats]cards.Mask
	needed      [game.NumSeats]int
	voidSuits   [game.NumSeats]cards.Mask
	constraints [game.NumSeats]game.SeatConstraints
	leftovers   []cards.Card

	contract    game.Contract
	trickLeader game.Seat
	trick       game.Trick
	taken       [2]int

	rng *rand.Rand
}

// New builds a Sampler from a snapshot of g. rng drives Generate's
// shuffles; the Sampler keeps that one generator, so Generate is not safe
// for concurrent use. internal/engine shares one Sampler across its
// workers and serializes their Generate calls under a lock.
func New(g *game.State, rng *rand.Rand) *Sampler {
	s := &Sampler{
		contract:    g.Contract,
		trickLeader: g.Trick.Leader,
		trick:       g.Trick,
		taken:       g.Taken,
		rng:         rng,
	}

	// Unplay the current trick onto a local copy of hands/plays so a
	// generated World can start fresh at the trick boundary (§4.4 step 1).
	var hands, plays [game.NumSeats]cards.Mask
	hands = g.Hands
	plays = g.Plays
	for i := 0; i < g.Trick.Count; i++ {
		tc := g.Trick.Cards[i]
		hands[tc.Seat] = hands[tc.Seat].With(tc.Card)
		plays[tc.Seat] = plays[tc.Seat].Without(tc.Card)
	}

	for seat := game.Seat(0); seat < game.NumSeats; seat++ {
		known := hands[seat] | plays[seat]
		s.known[seat] = known
		s.needed[seat] = 13 - known.Count()
		s.constraints[seat] = g.Constraints[seat]
		for suit := cards.Suit(0); suit < cards.NumSuits; suit++ {
			if g.IsVoid(seat, suit) {
				s.voidSuits[seat] |= cards.SuitMask(suit)
			}
		}
	}
	s.leftovers = g.Hidden.Cards()
	return s
}

// Generate produces one determinization: every seat's known cards plus a
// shuffled draw from the hidden pool, skipping cards in a seat's void
// suits. A seat that runs out of eligible cards before it is fully dealt
// comes back Degenerate (§9 open question #1); Filter rejects those
// unconditionally.
func (s *Sampler) Generate() *world.World {
	pool := append([]cards.Card(nil), s.leftovers...)
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	w := world.Get()
	w.Contract = s.contract
	w.Leader = s.trickLeader
	w.Trick = s.trick
	w.Taken = s.taken

	for seat := game.Seat(0); seat < game.NumSeats; seat++ {
		hand, rest, degenerate := draw(pool, s.needed[seat], s.voidSuits[seat])
		w.Hands[seat] = s.known[seat] | hand
		if degenerate {
			w.Degenerate = true
		}
		pool = rest
	}
	return w
}

// draw pulls up to needed cards off the front of pool, re-queuing any card
// whose suit falls in voidSuits instead of accepting it. If every remaining
// card is void before needed is satisfied, the draw is short (degenerate).
func draw(pool []cards.Card, needed int, voidSuits cards.Mask) (hand cards.Mask, rest []cards.Card, degenerate bool) {
	drawn := 0
	failStreak := 0
	for drawn < needed && len(pool) > 0 {
		if failStreak >= len(pool) {
			break
		}
		c := pool[0]
		pool = pool[1:]
		if voidSuits.Has(c) {
			pool = append(pool, c)
			failStreak++
			continue
		}
		hand = hand.With(c)
		drawn++
		failStreak = 0
	}
	return hand, pool, drawn < needed
}

// Filter reports whether w satisfies every seat's edited shape/HCP
// constraints, plus (always) that it is not a degenerate sample.
func (s *Sampler) Filter(w *world.World) bool {
	if w.Degenerate {
		return false
	}
	for seat := game.Seat(0); seat < game.NumSeats; seat++ {
		if !s.constraints[seat].Satisfies(w.Hands[seat]) {
			return false
		}
	}
	return true
}

// Synchronize removes the live game's already-played cards from the sampled
// hands, serializes the result to PBN, and replays the trick in progress
// into w card by card so w.Leader and w.Trick line up exactly with g
// (§4.4). Returns the PBN string of the hands after the played cards are
// removed; internal/engine ignores it, since World.Tricks formats the hands
// it sends to the oracle itself.
func (s *Sampler) Synchronize(w *world.World, g *game.State) string {
	for seat := game.Seat(0); seat < game.NumSeats; seat++ {
		w.Hands[seat] = w.Hands[seat] &^ g.Plays[seat]
	}

	pbn := notation.FormatDeal(notation.Deal{Hands: w.Hands})

	trick := g.Trick
	w.Trick = game.Trick{Leader: trick.Leader}
	w.Leader = trick.Leader
	for i := 0; i < trick.Count; i++ {
		w.Play(trick.Cards[i].Card)
	}
	return pbn
}
