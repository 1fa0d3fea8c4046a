// Command bridgesolve-bench is a minimal demonstration/benchmark harness
// for the search engine: it loads one deal, runs a timed search against
// it, and prints progress ticks and a final per-card score table. It is
// not a substitute for an interactive front-end — there is no command
// grammar and no board rendering, just enough of a process to exercise
// the flag-based configuration surface and the progress/cancellation
// event wiring end to end.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"syscall"
	"time"

	"github.com/signalnine/bridgesolve/internal/backup"
	"github.com/signalnine/bridgesolve/internal/cards"
	"github.com/signalnine/bridgesolve/internal/engine"
	"github.com/signalnine/bridgesolve/internal/game"
	"github.com/signalnine/bridgesolve/internal/notation"
	"github.com/signalnine/bridgesolve/internal/oracle"
)

// Version information (set by build flags).
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// demoDeal is played when -pbn is not given: a fully-known 13-card deal
// with South declarer in 3NT, West on lead.
const demoDeal = "N: AKQ2.K43.A82.QJ6 T987.QJT.QJ4.K84 65.A9852.K976.A9 J43.76.T53.T7532"

var (
	pbn         string
	declarerStr string
	contractStr string
	durationMS  int
	intervalMS  int
	depth       int
	threads     int
	seed        int64
	opponent    string
	partner     string
	tau         float64
	lambda      float64
	prior       float64
	showVersion bool
)

func init() {
	flag.StringVar(&pbn, "pbn", "", "PBN deal string to analyze (default: a fixed demonstration deal)")
	flag.StringVar(&declarerStr, "declarer", "S", "Declarer seat (N, E, S, W)")
	flag.StringVar(&contractStr, "contract", "3NT", "Contract, e.g. 3NT or 4S")
	flag.IntVar(&durationMS, "duration", 2000, "Search duration in milliseconds")
	flag.IntVar(&intervalMS, "interval", 250, "Progress report interval in milliseconds")
	flag.IntVar(&depth, "depth", 3, "Search depth in plies (1-3)")
	flag.IntVar(&threads, "threads", 0, "Number of worker goroutines (0 = auto-detect CPU count)")
	flag.Int64Var(&seed, "seed", 0, "Random seed (0 = use current time)")
	flag.StringVar(&opponent, "opponent", "adversarial", "Backup model for opponent nodes")
	flag.StringVar(&partner, "partner", "optimistic", "Backup model for partner nodes")
	flag.Float64Var(&tau, "tau", 1.0, "Temperature for softmax/softmin models")
	flag.Float64Var(&lambda, "lambda", 0.5, "Blend factor for the linear-blend model")
	flag.Float64Var(&prior, "prior", 1.0, "Policy smoothing prior for expectation-based models")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Printf("bridgesolve-bench %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	declarer, err := game.ParseSeat(declarerStr[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -declarer: %v\n", err)
		os.Exit(1)
	}
	contract, err := game.ParseContract(contractStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -contract: %v\n", err)
		os.Exit(1)
	}

	dealStr := pbn
	if dealStr == "" {
		dealStr = demoDeal
	}
	deal, err := notation.ParseDeal(dealStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -pbn: %v\n", err)
		os.Exit(1)
	}

	g := game.NewState(deal.Hands, deal.Hidden, declarer, contract)

	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := engine.New(threads, oracle.NewDoubleDummySolver())
	e.SeedWith(seed)
	e.Attach(g)

	preset := backup.Preset{Tau: tau, Lambda: lambda, Prior: prior}
	opponentModel := backup.New(opponent, preset)
	partnerModel := backup.New(partner, preset)

	printBanner(g, threads)

	e.OnProgress = func(ev engine.ProgressEvent) {
		fmt.Printf("\r  %8d iterations | %6d rejected | %6d degenerate | %s",
			ev.Iterations, ev.Rejected, ev.Degenerate, formatDuration(ev.Elapsed))
	}
	e.OnSearchCompleted = func(ev engine.CompletedEvent) {
		fmt.Printf("\nSearch complete: %d iterations in %s\n\n", ev.Iterations, formatDuration(ev.Elapsed))
		printScores(e, opponentModel, partnerModel)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		fmt.Println("\n\ninterrupted, cancelling search...")
		e.Cancel()
	}()
	defer signal.Stop(stop)

	if err := e.Search(durationMS, intervalMS, depth); err != nil {
		fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
		os.Exit(1)
	}
}

func printBanner(g *game.State, threads int) {
	fmt.Println()
	fmt.Println("bridgesolve-bench")
	fmt.Printf("  Contract:  %v by %v\n", g.Contract, g.Declarer)
	fmt.Printf("  Leader:    %v\n", g.Leader)
	fmt.Printf("  Threads:   %d\n", threads)
	fmt.Printf("  Depth:     %d\n", depth)
	fmt.Printf("  Duration:  %dms (progress every %dms)\n", durationMS, intervalMS)
	fmt.Println()
}

// printScores prints the Evaluate score map as a card/score table, highest
// score first.
func printScores(e *engine.Engine, opponent, partner backup.Model) {
	scores := backup.EvaluateRoot(e.Tree(), opponent, partner)
	if len(scores) == 0 {
		fmt.Println("(no root edges explored)")
		return
	}

	type row struct {
		card  cards.Card
		score float64
	}
	rows := make([]row, 0, len(scores))
	for c, s := range scores {
		rows = append(rows, row{c, s})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].score > rows[j].score })

	fmt.Println("Card   Score")
	for _, r := range rows {
		fmt.Printf("%-4s   %+.4f\n", r.card, r.score)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}
