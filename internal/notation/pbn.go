// Package notation parses and serializes the PBN-style deal strings used at
// the boundary of this engine: `New`'s hands argument, the oracle's wire
// format, and diagnostic output. It builds on internal/cards and
// internal/game's own string parsers for cards, seats, and contracts.
package notation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/signalnine/bridgesolve/internal/cards"
	"github.com/signalnine/bridgesolve/internal/game"
)

// ErrMalformedDeal is returned for a PBN string that cannot be split into a
// leading seat and exactly four hands.
var ErrMalformedDeal = errors.New("notation: malformed PBN deal string")

// pbnSuitOrder is the order PBN lists suits within a hand: Spades, Hearts,
// Diamonds, Clubs (reverse of internal/cards' Suit enumeration).
var pbnSuitOrder = [cards.NumSuits]cards.Suit{cards.Spades, cards.Hearts, cards.Diamonds, cards.Clubs}

// Deal is a parsed PBN deal: a known hand mask per seat, plus which seats
// were given as "..." (unknown, folded into the hidden pool by the caller).
type Deal struct {
	Hands  [game.NumSeats]cards.Mask
	Hidden [game.NumSeats]bool
}

// ParseDeal parses a string of the form "N: <h0> <h1> <h2> <h3>", where the
// leading letter names the first hand's seat and the remaining three hands
// follow in rotation order. Each hi is either "..." (unknown) or four
// dot-separated rank runs in PBN suit order (Spades.Hearts.Diamonds.Clubs).
func ParseDeal(s string) (Deal, error) {
	var deal Deal

	head, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Deal{}, fmt.Errorf("%w: missing leading seat", ErrMalformedDeal)
	}
	head = strings.TrimSpace(head)
	if len(head) != 1 {
		return Deal{}, fmt.Errorf("%w: leading seat must be one letter", ErrMalformedDeal)
	}
	firstSeat, err := game.ParseSeat(head[0])
	if err != nil {
		return Deal{}, fmt.Errorf("notation: parsing leading seat: %w", err)
	}

	fields := strings.Fields(rest)
	if len(fields) != int(game.NumSeats) {
		return Deal{}, fmt.Errorf("%w: want %d hands, got %d", ErrMalformedDeal, game.NumSeats, len(fields))
	}

	seat := firstSeat
	for _, field := range fields {
		if field == "..." {
			deal.Hidden[seat] = true
		} else {
			mask, err := ParseHand(field)
			if err != nil {
				return Deal{}, fmt.Errorf("notation: parsing %v's hand: %w", seat, err)
			}
			deal.Hands[seat] = mask
		}
		seat = seat.Next()
	}
	return deal, nil
}

// ParseHand parses a single dot-separated, PBN-suit-ordered hand string such
// as "AKQ.T92.843.JT65" into a card mask. Used both for full deal strings and
// standalone, e.g. by the oracle adapter's per-hand wire fields.
func ParseHand(field string) (cards.Mask, error) {
	suits := strings.Split(field, ".")
	if len(suits) != int(cards.NumSuits) {
		return 0, fmt.Errorf("want %d dot-separated suits, got %d", cards.NumSuits, len(suits))
	}
	var mask cards.Mask
	for i, run := range suits {
		suit := pbnSuitOrder[i]
		for _, r := range run {
			if r == '-' {
				continue
			}
			rank, err := cards.ParseRank(byte(r))
			if err != nil {
				return 0, fmt.Errorf("rank %q in suit %v: %w", r, suit, err)
			}
			mask = mask.With(cards.Card{Rank: rank, Suit: suit})
		}
	}
	return mask, nil
}

// FormatDeal renders a deal back to PBN, always leading with North, in the
// same suit order ParseDeal expects. Hidden seats are rendered as "...".
func FormatDeal(deal Deal) string {
	var b strings.Builder
	b.WriteString(game.North.String())
	b.WriteString(":")
	for seat := game.Seat(0); seat < game.NumSeats; seat++ {
		b.WriteByte(' ')
		if deal.Hidden[seat] {
			b.WriteString("...")
			continue
		}
		b.WriteString(FormatHand(deal.Hands[seat]))
	}
	return b.String()
}

// FormatHand renders a single hand mask in PBN dot-separated suit order
// (Spades.Hearts.Diamonds.Clubs), ranks high to low.
func FormatHand(mask cards.Mask) string {
	var b strings.Builder
	for i, suit := range pbnSuitOrder {
		if i > 0 {
			b.WriteByte('.')
		}
		// Cards() returns ascending rank order; PBN lists high to low.
		ranks := (mask & cards.SuitMask(suit)).Cards()
		for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
			ranks[i], ranks[j] = ranks[j], ranks[i]
		}
		for _, c := range ranks {
			b.WriteString(c.Rank.String())
		}
	}
	return b.String()
}
