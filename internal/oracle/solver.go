package oracle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/signalnine/bridgesolve/internal/cards"
	"github.com/signalnine/bridgesolve/internal/game"
	"github.com/signalnine/bridgesolve/internal/notation"
	"github.com/signalnine/bridgesolve/internal/oracle/wire"
)

// DoubleDummySolver is a reference, in-process Oracle. It has no native
// dependency and allocates a fresh board and transposition table per call,
// so it needs no locking to serve concurrent workers (§5's handle-per-call
// policy). Every New/GetTricksToTake round-trips its payload through the
// FlatBuffers wire codec in internal/oracle/wire, the same layer an adapter
// to an external solver would cross.
type DoubleDummySolver struct{}

// NewDoubleDummySolver constructs a reference solver.
func NewDoubleDummySolver() *DoubleDummySolver { return &DoubleDummySolver{} }

// New implements Oracle.
func (DoubleDummySolver) New(hands [4]string, strain game.Strain, leader game.Seat) (Handle, error) {
	buf := wire.EncodeDealRequest(hands, int8(strain), int8(leader))
	req := wire.GetRootAsDealRequest(buf, 0)

	var masks [game.NumSeats]cards.Mask
	for seat := game.Seat(0); seat < game.NumSeats; seat++ {
		mask, err := notation.ParseHand(req.Hand(int(seat)))
		if err != nil {
			return nil, fmt.Errorf("oracle: decoding hand %v: %w", seat, err)
		}
		masks[seat] = mask
	}

	st := &game.State{
		Hands:    masks,
		Contract: game.Contract{Strain: game.Strain(req.Strain())},
		Declarer: game.Seat(req.Leader()),
		Leader:   game.Seat(req.Leader()),
		Trick:    game.Trick{Leader: game.Seat(req.Leader())},
	}
	for seat := range st.Constraints {
		st.Constraints[seat] = game.DefaultConstraints()
	}

	return &solverHandle{state: st, memo: make(map[uint64]int)}, nil
}

// solverHandle is one analysis bound to a fully-known deal.
type solverHandle struct {
	state *game.State
	memo  map[uint64]int
}

// Exec implements Handle. command is whitespace-separated <suit><rank>
// tokens, per §6's wire contract (note: suit first, unlike the <rank><suit>
// convention used elsewhere for human-entered card strings).
func (h *solverHandle) Exec(command string) error {
	if h.state == nil {
		return errors.New("oracle: handle already deleted")
	}
	for _, tok := range strings.Fields(command) {
		c, err := parseSuitRank(tok)
		if err != nil {
			return fmt.Errorf("oracle: parsing command token %q: %w", tok, err)
		}
		if !h.state.Play(c, true) {
			return fmt.Errorf("oracle: command token %q is not a legal play", tok)
		}
	}
	return nil
}

// GetTricksToTake implements Handle via exhaustive minimax over the
// remaining cards, memoized on (hands, leader, trick-in-progress, side,
// tricks taken so far; see stateKey). Suited to
// the tail of a deal, which is how World.Tricks invokes it: after most of
// the hand has already been played out.
func (h *solverHandle) GetTricksToTake() (int, error) {
	if h.state == nil {
		return 0, errors.New("oracle: handle already deleted")
	}
	side := h.state.Leader.Side()
	tricks := solve(h.state.Clone(), side, h.memo)

	buf := wire.EncodeTrickCount(int32(tricks), true)
	resp := wire.GetRootAsTrickCount(buf, 0)
	if !resp.Ok() {
		return 0, errors.New("oracle: solver reported failure")
	}
	return int(resp.Tricks()), nil
}

// Delete implements Handle.
func (h *solverHandle) Delete() error {
	h.state = nil
	h.memo = nil
	return nil
}

// solve returns the total tricks side will hold once the deal is played out,
// assuming each side plays to maximize its own trick count. Termination is
// "every hand is empty", not game.State.IsOver's fixed 13-trick check: the
// oracle is commonly asked about a tail of the deal with fewer tricks left
// to play than a full 13, not only the full starting position.
func solve(s *game.State, side game.Side, memo map[uint64]int) int {
	if s.Hands[game.North]|s.Hands[game.East]|s.Hands[game.South]|s.Hands[game.West] == 0 {
		return s.Taken[side]
	}

	key := stateKey(s, side)
	if v, ok := memo[key]; ok {
		return v
	}

	mover := s.Leader
	maximize := mover.Side() == side
	best := -1
	for _, c := range s.GetMoves() {
		child := s.Clone()
		child.Play(c, false)
		val := solve(child, side, memo)
		switch {
		case best < 0:
			best = val
		case maximize && val > best:
			best = val
		case !maximize && val < best:
			best = val
		}
	}
	memo[key] = best
	return best
}

// stateKey hashes the fields that determine the remaining game tree: each
// seat's known hand, whose turn it is, the trick in progress, which side
// the cached value is for, and each side's tricks taken so far. The taken
// counts matter because `solve` returns an absolute trick total
// (`s.Taken[side]` plus whatever it wins from here): two lines of play can
// reach identical hands and a trick in progress with a different NS/EW
// split of the tricks already won, and those are not interchangeable.
func stateKey(s *game.State, side game.Side) uint64 {
	var h uint64 = 14695981039346656037
	mix := func(x uint64) {
		h ^= x
		h *= 1099511628211
	}
	for seat := game.Seat(0); seat < game.NumSeats; seat++ {
		mix(uint64(s.Hands[seat]))
	}
	mix(uint64(s.Leader))
	mix(uint64(s.Trick.Count))
	for i := 0; i < s.Trick.Count; i++ {
		tc := s.Trick.Cards[i]
		mix(uint64(tc.Seat)<<8 | uint64(tc.Card.Index()))
	}
	mix(uint64(side))
	mix(uint64(s.Taken[0])<<32 | uint64(s.Taken[1]))
	return h
}

// parseSuitRank parses a two-character <suit><rank> oracle command token.
func parseSuitRank(tok string) (cards.Card, error) {
	if len(tok) != 2 {
		return cards.Card{}, fmt.Errorf("want 2 characters, got %q", tok)
	}
	suit, err := cards.ParseSuit(tok[0])
	if err != nil {
		return cards.Card{}, err
	}
	rank, err := cards.ParseRank(tok[1])
	if err != nil {
		return cards.Card{}, err
	}
	return cards.Card{Rank: rank, Suit: suit}, nil
}
