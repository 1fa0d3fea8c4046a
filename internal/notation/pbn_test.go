package notation

import (
	"testing"

	"github.com/signalnine/bridgesolve/internal/cards"
	"github.com/signalnine/bridgesolve/internal/game"
)

func TestParseDealRoundTrip(t *testing.T) {
	in := "N: AKQ.T92.843.JT65 J98765..AKQ5.98 T432.Q853.J97.A2 .AKQJT764.62.Q43"
	deal, err := ParseDeal(in)
	if err != nil {
		t.Fatalf("ParseDeal(%q) error: %v", in, err)
	}

	out := FormatDeal(deal)
	deal2, err := ParseDeal(out)
	if err != nil {
		t.Fatalf("re-parsing serialized deal failed: %v", err)
	}
	if deal.Hands != deal2.Hands {
		t.Errorf("round-trip hand masks differ: %v vs %v", deal.Hands, deal2.Hands)
	}
	if deal.Hidden != deal2.Hidden {
		t.Errorf("round-trip hidden flags differ: %v vs %v", deal.Hidden, deal2.Hidden)
	}
}

func TestParseDealUnknownHands(t *testing.T) {
	in := "N: AKQJT98765432... ... ... ..."
	deal, err := ParseDeal(in)
	if err != nil {
		t.Fatalf("ParseDeal error: %v", err)
	}
	if deal.Hidden[game.North] {
		t.Error("North was given explicitly and should not be hidden")
	}
	for _, seat := range []game.Seat{game.East, game.South, game.West} {
		if !deal.Hidden[seat] {
			t.Errorf("%v should be hidden", seat)
		}
	}
	if got := deal.Hands[game.North].Count(); got != 13 {
		t.Errorf("North card count = %d, want 13", got)
	}
}

func TestParseDealLeadingSeat(t *testing.T) {
	// Deals may lead with any seat; East-first rotates E,S,W,N.
	in := "E: ... ... ... AKQJT98765432..."
	deal, err := ParseDeal(in)
	if err != nil {
		t.Fatalf("ParseDeal error: %v", err)
	}
	if deal.Hidden[game.North] {
		t.Error("North received the fourth field (AKQJT98765432...) and should be known")
	}
	if deal.Hands[game.North].SuitCount(cards.Spades) != 13 {
		t.Errorf("North should hold all 13 spades")
	}
}

func TestParseDealMalformed(t *testing.T) {
	cases := []string{
		"",
		"N AKQ...",
		"NS: ... ... ... ...",
		"N: ... ... ...",
		"N: AKQ.T92.843 ... ... ...",
	}
	for _, s := range cases {
		if _, err := ParseDeal(s); err == nil {
			t.Errorf("ParseDeal(%q) expected error", s)
		}
	}
}

func TestParseHandBadRank(t *testing.T) {
	_, err := ParseDeal("N: AKZ.T92.843.JT65 ... ... ...")
	if err == nil {
		t.Error("expected error for invalid rank character Z")
	}
}
