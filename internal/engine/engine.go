// Package engine is the search scheduler (§4.7): it owns the tree, the
// sampler, and a pool of worker goroutines that repeatedly determinize,
// synchronize, and walk a Query recursion down from the tree's root,
// recording each leaf's outcome. Grounded on the teacher's
// simulation/parallel.go worker-pool shape (a WaitGroup of goroutines
// draining a shared source of work) and evolution/engine.go's
// Config/DefaultConfig/progress-callback conventions.
package engine

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/signalnine/bridgesolve/internal/game"
	"github.com/signalnine/bridgesolve/internal/oracle"
	"github.com/signalnine/bridgesolve/internal/sampler"
	"github.com/signalnine/bridgesolve/internal/tree"
	"github.com/signalnine/bridgesolve/internal/world"
)

// Precondition failures (§7.2): surfaced to the caller rather than
// panicking or silently no-op'ing.
var (
	ErrNoGameAttached    = errors.New("engine: no game attached")
	ErrNoPriorSearch     = errors.New("engine: no prior search to continue from")
	ErrOracleUnavailable = fmt.Errorf("engine: %w", oracle.ErrOracleUnavailable)
	ErrEmptyTree         = errors.New("engine: tree has no observations yet")
)

// ProgressEvent is emitted periodically while a search runs.
type ProgressEvent struct {
	Iterations int64
	Rejected   int64
	Degenerate int64
	Elapsed    time.Duration
}

// CompletedEvent is emitted once, after a search's workers and progress
// task have all stopped.
type CompletedEvent struct {
	Iterations int64
	Elapsed    time.Duration
}

// Engine runs simulations against one attached game and accumulates them
// into a Tree. A single Engine is not safe to Search/Continue from two
// goroutines at once; internal counters and the tree itself are safe for
// concurrent reads (e.g. from OnProgress) while a search runs.
type Engine struct {
	threads int
	oracle  oracle.Oracle

	rngMu   sync.Mutex
	rootRNG *rand.Rand

	mu         sync.Mutex
	game       *game.State
	gameLeader game.Seat
	sampler    *sampler.Sampler
	tree       *tree.Tree
	depth      int
	cancel     *cancelToken

	iterations int64
	rejected   int64
	degenerate int64
	elapsedNS  int64
	searching  atomic.Bool

	// OnProgress and OnSearchCompleted are the engine's two event
	// emitters (§4.7). Set them before calling Search/Continue; the
	// engine does not guard concurrent writes to these fields.
	OnProgress        func(ProgressEvent)
	OnSearchCompleted func(CompletedEvent)
}

// New constructs an engine with the given worker count (clamped to ≥1)
// and the double-dummy oracle it should consult at simulation leaves.
func New(threads int, o oracle.Oracle) *Engine {
	if threads < 1 {
		threads = 1
	}
	return &Engine{
		threads: threads,
		oracle:  o,
		rootRNG: rand.New(rand.NewSource(1)),
	}
}

// SeedWith replaces the engine's root PRNG, the shared source each
// worker's thread-local generator is seeded from (§5). Call before
// Search for deterministic, reproducible runs.
func (e *Engine) SeedWith(seed int64) {
	e.rngMu.Lock()
	e.rootRNG = rand.New(rand.NewSource(seed))
	e.rngMu.Unlock()
}

// Attach points the engine at a new live game. Any prior tree/sampler is
// discarded; the next Search performs a hard reset regardless.
func (e *Engine) Attach(g *game.State) {
	e.mu.Lock()
	e.game = g
	e.tree = nil
	e.sampler = nil
	e.mu.Unlock()
}

// IsSearching reports whether a search is currently running.
func (e *Engine) IsSearching() bool { return e.searching.Load() }

// Iterations is the running count of completed Query descents.
func (e *Engine) Iterations() int64 { return atomic.LoadInt64(&e.iterations) }

// Rejected is the number of generated worlds Filter turned away.
func (e *Engine) Rejected() int64 { return atomic.LoadInt64(&e.rejected) }

// Degenerate is the number of generated worlds that could not be fully
// dealt (§9 open question #1).
func (e *Engine) Degenerate() int64 { return atomic.LoadInt64(&e.degenerate) }

// Elapsed is the wall-clock duration of the most recently completed (or
// currently running) Execute call.
func (e *Engine) Elapsed() time.Duration { return time.Duration(atomic.LoadInt64(&e.elapsedNS)) }

// Tree exposes the engine's current search tree, or nil before any
// search has run.
func (e *Engine) Tree() *tree.Tree {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree
}

func (e *Engine) newWorkerRNG() *rand.Rand {
	e.rngMu.Lock()
	seed := e.rootRNG.Int63()
	e.rngMu.Unlock()
	return rand.New(rand.NewSource(seed))
}

// Setup prepares the engine for Execute. A hard reset allocates a fresh
// sampler and tree from the attached game and zeros the iteration
// counters, capturing the game's current leader as the search's rootSide
// for the duration of the search (§9: "Role inference... capture it at
// search start and treat as immutable"). A soft reset reuses the existing
// sampler and tree, failing with ErrNoPriorSearch if there isn't one yet.
func (e *Engine) Setup(depth int, hardReset bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.game == nil {
		return ErrNoGameAttached
	}
	if hardReset {
		e.sampler = sampler.New(e.game, e.newWorkerRNG())
		e.tree = tree.New()
		e.gameLeader = e.game.Leader
		atomic.StoreInt64(&e.iterations, 0)
		atomic.StoreInt64(&e.rejected, 0)
		atomic.StoreInt64(&e.degenerate, 0)
	} else if e.sampler == nil || e.tree == nil {
		return ErrNoPriorSearch
	}

	if depth < 1 {
		depth = 3
	}
	e.depth = depth
	return nil
}

// Search performs a hard reset and runs for the given duration.
func (e *Engine) Search(durationMS, intervalMS, depth int) error {
	if err := e.Setup(depth, true); err != nil {
		return err
	}
	return e.Execute(durationMS, intervalMS)
}

// Continue performs a soft reset (reusing the existing tree and sampler)
// and runs for the given duration.
func (e *Engine) Continue(durationMS, intervalMS int) error {
	e.mu.Lock()
	depth := e.depth
	e.mu.Unlock()
	if err := e.Setup(depth, false); err != nil {
		return err
	}
	return e.Execute(durationMS, intervalMS)
}

// Execute runs the worker pool and progress emitter for one search
// window (§4.7 steps 1-4).
func (e *Engine) Execute(durationMS, intervalMS int) error {
	e.mu.Lock()
	if e.game == nil {
		e.mu.Unlock()
		return ErrNoGameAttached
	}
	cfg := Config{Threads: e.threads, DurationMS: durationMS, ProgressIntervalMS: intervalMS, Depth: e.depth}.clamp()
	tr := e.tree
	sm := e.sampler
	gameLeader := e.gameLeader
	token := newCancelToken()
	e.cancel = token
	e.mu.Unlock()

	e.searching.Store(true)
	started := time.Now()
	timer := time.AfterFunc(time.Duration(cfg.DurationMS)*time.Millisecond, token.cancel)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Threads; i++ {
		wg.Add(1)
		go e.simulationLoop(token, cfg, tr, sm, gameLeader, &wg, i)
	}
	wg.Add(1)
	go e.progressLoop(token, cfg, started, &wg)
	wg.Wait()
	timer.Stop()

	elapsed := time.Since(started)
	atomic.StoreInt64(&e.elapsedNS, int64(elapsed))
	e.searching.Store(false)
	e.mu.Lock()
	e.cancel = nil
	e.mu.Unlock()

	if e.OnSearchCompleted != nil {
		e.OnSearchCompleted(CompletedEvent{Iterations: e.Iterations(), Elapsed: elapsed})
	}
	return nil
}

// Cancel signals the in-flight search's cancellation token, if any. A
// no-op when no search is running.
func (e *Engine) Cancel() {
	e.mu.Lock()
	token := e.cancel
	e.mu.Unlock()
	if token != nil {
		token.cancel()
	}
}

func (e *Engine) simulationLoop(token *cancelToken, cfg Config, tr *tree.Tree, sm *sampler.Sampler, gameLeader game.Seat, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	defer func() {
		// §7 propagation policy: log and let this worker end, without
		// tearing down its siblings.
		if r := recover(); r != nil {
			log.Printf("engine: worker %d panicked: %v", workerID, r)
		}
	}()

	rng := e.newWorkerRNG()
	e.mu.Lock()
	g := e.game
	e.mu.Unlock()

	for !token.cancelled() {
		n := atomic.AddInt64(&e.iterations, 1)
		if cfg.IterationCap > 0 && n >= int64(cfg.IterationCap) {
			token.cancel()
		}

		// Every worker shares sm and its single *rand.Rand, which is not
		// safe for concurrent use, so Generate calls are serialized.
		e.rngMu.Lock()
		w := sm.Generate()
		e.rngMu.Unlock()
		if !sm.Filter(w) {
			atomic.AddInt64(&e.rejected, 1)
			if w.Degenerate {
				atomic.AddInt64(&e.degenerate, 1)
			}
			world.Put(w)
			continue
		}
		sm.Synchronize(w, g)
		e.query(tr, tr.Root(), w, cfg.Depth, gameLeader, g, rng)
		world.Put(w)
	}
}

func (e *Engine) progressLoop(token *cancelToken, cfg Config, started time.Time, wg *sync.WaitGroup) {
	defer wg.Done()
	interval := time.Duration(cfg.ProgressIntervalMS) * time.Millisecond
	for !token.cancelled() {
		time.Sleep(interval)
		if e.OnProgress != nil {
			e.OnProgress(ProgressEvent{
				Iterations: e.Iterations(),
				Rejected:   e.Rejected(),
				Degenerate: e.Degenerate(),
				Elapsed:    time.Since(started),
			})
		}
	}
}

// query is the per-worker simulation descent (§4.7): it bottoms out at
// depth 0 or a finished world, otherwise plays one uniformly-random legal
// card and recurses into the resulting tree node.
func (e *Engine) query(tr *tree.Tree, node *tree.Node, w *world.World, depth int, gameLeader game.Seat, g *game.State, rng *rand.Rand) {
	moves := w.GetMoves()
	if depth == 0 || w.IsOver() || len(moves) == 0 {
		win, tricks, err := e.evaluateLeaf(w, gameLeader, g)
		if err != nil {
			log.Printf("engine: leaf evaluation failed: %v", err)
		}
		node.Insert(win, tricks)
		return
	}

	card := moves[rng.Intn(len(moves))]
	key := w.Play(card)
	role := tree.RoleFor(gameLeader, w.Leader)
	child := tr.GetOrCreate(key, role)
	edge := node.AddEdge(card)
	edge.Update(child)
	e.query(tr, child, w, depth-1, gameLeader, g, rng)
}

// evaluateLeaf computes the (win, tricks) pair Query folds into a node
// (§4.7's Evaluate(world)). ws is the side on lead when the leaf is
// reached; ds is the declarer's side, captured from the attached game,
// not the sampled world (the contract doesn't change between
// determinizations).
func (e *Engine) evaluateLeaf(w *world.World, gameLeader game.Seat, g *game.State) (win bool, tricks int, err error) {
	ws := w.Leader.Side()
	t, err := w.Tricks(e.oracle)
	if err != nil {
		return false, 0, fmt.Errorf("%w", ErrOracleUnavailable)
	}

	ds := g.Declarer.Side()
	req := 6 + g.Contract.Level
	rootSide := gameLeader.Side()

	tricksDS := t
	if ds != ws {
		tricksDS = 13 - t
	}
	canMake := tricksDS >= req

	tricksRoot := t
	if rootSide != ws {
		tricksRoot = 13 - t
	}

	win = canMake == (rootSide == ds)
	return win, tricksRoot, nil
}
