package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/signalnine/bridgesolve/internal/cards"
)

// Strain is the denomination of a contract: one of the four suits or NoTrump.
// Numeric values match cards.Suit for the suit strains so a Strain can be
// compared directly against a played card's suit.
type Strain uint8

const (
	StrainClubs    Strain = Strain(cards.Clubs)
	StrainDiamonds Strain = Strain(cards.Diamonds)
	StrainHearts   Strain = Strain(cards.Hearts)
	StrainSpades   Strain = Strain(cards.Spades)
	StrainNoTrump  Strain = 4
)

func (s Strain) String() string {
	switch s {
	case StrainClubs:
		return "C"
	case StrainDiamonds:
		return "D"
	case StrainHearts:
		return "H"
	case StrainSpades:
		return "S"
	case StrainNoTrump:
		return "NT"
	default:
		return "?"
	}
}

// IsTrump reports whether a card of the given suit is a trump under this strain.
func (s Strain) IsTrump(suit cards.Suit) bool {
	return s != StrainNoTrump && Strain(suit) == s
}

// Contract is a (level, strain) pair named by the bidding (out of scope here;
// contracts are taken as given inputs, §1).
type Contract struct {
	Level  int // 1..7
	Strain Strain
}

// RequiredTricks is "6 + level", the tricks declarer's side must take to make.
func (c Contract) RequiredTricks() int {
	return 6 + c.Level
}

func (c Contract) String() string {
	return fmt.Sprintf("%d%s", c.Level, c.Strain)
}

// ParseContract parses "<level><strain>", e.g. "3NT", "7c", case-insensitive.
func ParseContract(s string) (Contract, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Contract{}, fmt.Errorf("invalid contract string %q", s)
	}
	level, err := strconv.Atoi(s[:1])
	if err != nil || level < 1 || level > 7 {
		return Contract{}, fmt.Errorf("invalid contract level in %q", s)
	}
	strainStr := strings.ToUpper(s[1:])
	var strain Strain
	switch strainStr {
	case "C":
		strain = StrainClubs
	case "D":
		strain = StrainDiamonds
	case "H":
		strain = StrainHearts
	case "S":
		strain = StrainSpades
	case "NT":
		strain = StrainNoTrump
	default:
		return Contract{}, fmt.Errorf("invalid contract strain in %q", s)
	}
	return Contract{Level: level, Strain: strain}, nil
}
