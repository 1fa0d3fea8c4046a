package engine

import (
	"testing"
	"time"

	"github.com/signalnine/bridgesolve/internal/backup"
	"github.com/signalnine/bridgesolve/internal/cards"
	"github.com/signalnine/bridgesolve/internal/game"
	"github.com/signalnine/bridgesolve/internal/oracle"
)

// card parses a "<rank><suit>" string, panicking on malformed input; every
// call site below passes a string literal known to be valid.
func card(s string) cards.Card {
	c, err := cards.ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

// fillPlaysFromHidden takes a State built by NewState with no hidden seats
// (so Hidden holds every card outside the four named hands) and marks
// those cards already played, twelve per seat, so the sampler sees every
// seat as fully accounted for. This lets a one-card-per-hand toy deal
// stand in for the tail of a real 13-trick game instead of tripping the
// sampler into re-dealing the other 48 cards.
func fillPlaysFromHidden(g *game.State) {
	leftover := g.Hidden.Cards()
	g.Hidden = 0
	idx := 0
	for seat := game.Seat(0); seat < game.NumSeats; seat++ {
		for i := 0; i < 12; i++ {
			g.Plays[seat] = g.Plays[seat].With(leftover[idx])
			idx++
		}
	}
}

// s1Game builds the one-card endgame worked example from the engine's
// calibration scenarios: N holds the ace of clubs, E the king, S the
// queen, W the jack, declarer is North playing 1NT, and NS already holds
// six of the first twelve tricks to EW's six — so this last trick decides
// the contract. East, North's left-hand opponent, is on lead.
func s1Game() *game.State {
	hands := [game.NumSeats]cards.Mask{}
	hands[game.North] = cards.Mask(0).With(card("AC"))
	hands[game.East] = cards.Mask(0).With(card("KC"))
	hands[game.South] = cards.Mask(0).With(card("QC"))
	hands[game.West] = cards.Mask(0).With(card("JC"))

	g := game.NewState(hands, [game.NumSeats]bool{}, game.North, game.Contract{Level: 1, Strain: game.StrainNoTrump})
	g.Taken = [2]int{6, 6}
	fillPlaysFromHidden(g)
	return g
}

func TestSearchRequiresAttachedGame(t *testing.T) {
	e := New(1, oracle.NewDoubleDummySolver())
	if err := e.Search(250, 50, 1); err != ErrNoGameAttached {
		t.Fatalf("got %v, want ErrNoGameAttached", err)
	}
}

func TestContinueRequiresPriorSearch(t *testing.T) {
	e := New(1, oracle.NewDoubleDummySolver())
	e.Attach(s1Game())
	if err := e.Continue(250, 50); err != ErrNoPriorSearch {
		t.Fatalf("got %v, want ErrNoPriorSearch", err)
	}
}

// TestSearchOneCardEndgameMatchesCalibration exercises the full
// sampler/world/oracle/tree/backup pipeline against the spec's worked
// example: East's only legal card is the king of clubs, and however many
// iterations run, every one of them reaches the identical outcome (North's
// unbeatable ace wins the trick, so the defense's side never gets it), so
// the backed-up score is pinned to an exact, reproducible value close to
// zero rather than merely "close on average".
func TestSearchOneCardEndgameMatchesCalibration(t *testing.T) {
	e := New(1, oracle.NewDoubleDummySolver())
	e.Attach(s1Game())
	if err := e.Search(300, 100, 1); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if e.Iterations() == 0 {
		t.Fatal("Iterations() == 0 after Search")
	}

	scores := backup.EvaluateRoot(e.Tree(), backup.Adversarial{}, backup.Optimistic{})
	king := card("KC")
	if len(scores) != 1 {
		t.Fatalf("EvaluateRoot produced %d scores, want 1 (only %v is legal)", len(scores), king)
	}
	s, ok := scores[king]
	if !ok {
		t.Fatalf("EvaluateRoot has no entry for %v; got %v", king, scores)
	}

	// Declarer (North, NS) makes the contract by taking this last trick
	// (NS's running total goes from 6 to 7, meeting the 1NT requirement),
	// so from the defense's perspective every observation is a loss; Score
	// boosts a unanimous loss to a small negative number rather than
	// exactly zero, pinned here to the exact value for six already-taken
	// tricks out of thirteen.
	want := -1e-3 * (1 - 6.0/13.0)
	if diff := s - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("score for %v = %v, want %v", king, s, want)
	}
}

// TestSearchDeterministicWithSingleLegalMoveEachPly checks the
// reproducibility property from §8: with no hidden cards to sample and a
// single legal move at every seat, two independent searches land on
// exactly the same backed-up score regardless of how many iterations each
// one happened to run before its duration elapsed.
func TestSearchDeterministicWithSingleLegalMoveEachPly(t *testing.T) {
	run := func() float64 {
		e := New(1, oracle.NewDoubleDummySolver())
		e.SeedWith(7)
		e.Attach(s1Game())
		if err := e.Search(250, 100, 1); err != nil {
			t.Fatalf("Search: %v", err)
		}
		scores := backup.EvaluateRoot(e.Tree(), backup.Adversarial{}, backup.Optimistic{})
		return scores[card("KC")]
	}

	a := run()
	b := run()
	if a != b {
		t.Fatalf("scores differ across runs: %v vs %v", a, b)
	}
}

// TestCancelStopsSearchAndContinueResumes exercises scenario S5: a
// long-running search stops promptly on Cancel, and a subsequent Continue
// picks the tree back up rather than starting over.
func TestCancelStopsSearchAndContinueResumes(t *testing.T) {
	e := New(2, oracle.NewDoubleDummySolver())
	e.Attach(s1Game())

	completed := make(chan CompletedEvent, 1)
	e.OnSearchCompleted = func(ev CompletedEvent) { completed <- ev }

	if err := e.Setup(1, true); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	searchDone := make(chan error, 1)
	go func() { searchDone <- e.Execute(5000, 100) }()

	time.Sleep(50 * time.Millisecond)
	if !e.IsSearching() {
		t.Fatal("expected search to be running before Cancel")
	}
	e.Cancel()

	select {
	case <-completed:
	case <-time.After(250 * time.Millisecond):
		t.Fatal("SearchCompleted did not fire within 250ms of Cancel")
	}
	if err := <-searchDone; err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if e.IsSearching() {
		t.Fatal("IsSearching() true after cancellation completed")
	}

	preContinue := e.Iterations()
	if err := e.Continue(300, 100); err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if got := e.Iterations(); got <= preContinue {
		t.Fatalf("Iterations() after Continue = %d, want > %d", got, preContinue)
	}
}
