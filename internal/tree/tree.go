// Package tree implements the concurrent information-set tree searched by
// internal/engine's workers (§4.6). Grounded on the teacher's
// mcts/node.go (an MCTSNode with Visits/Wins/Children plus sync.Pool
// helpers), generalized from that single-threaded tree to one addressed
// concurrently by many worker goroutines: fields the teacher mutates
// directly become sync/atomic counters, and the teacher's plain
// map/slice child storage becomes sync.Map get-or-insert, since §5 requires
// "atomic get-or-insert and per-field atomics... rather than global locks."
package tree

import (
	"sync"
	"sync/atomic"

	"github.com/signalnine/bridgesolve/internal/cards"
	"github.com/signalnine/bridgesolve/internal/game"
)

// Role classifies a node by whose turn it represents relative to the
// search's original acting seat (§4.6).
type Role int

const (
	RoleSelf Role = iota
	RolePartner
	RoleOpponent
)

func (r Role) String() string {
	switch r {
	case RoleSelf:
		return "self"
	case RolePartner:
		return "partner"
	case RoleOpponent:
		return "opponent"
	default:
		return "unknown"
	}
}

// RoleFor derives a successor's role from the game's original leader
// (captured once at search start, §9 "Role inference") and the world's
// current acting leader.
func RoleFor(gameLeader, worldLeader game.Seat) Role {
	if worldLeader == gameLeader {
		return RoleSelf
	}
	rootSide := gameLeader.Side()
	if worldLeader.Side() == rootSide {
		return RolePartner
	}
	return RoleOpponent
}

// Tree is the concurrent map from 96-bit information-set key (§4.6; only
// the 64-bit play-history word participates in the key) to Node, plus the
// designated root. Zero value is not usable; use New.
type Tree struct {
	root  *Node
	nodes sync.Map // uint64 -> *Node
}

// New allocates an empty tree. The root's role is fixed as Self.
func New() *Tree {
	return &Tree{root: newNode(RoleSelf)}
}

// Root returns the tree's designated root node.
func (t *Tree) Root() *Node {
	return t.root
}

// GetOrCreate returns the node for key, inserting one with the given role
// if none exists yet. Key zero always resolves to the root regardless of
// role. Two workers racing to insert the same key may both construct a
// candidate Node; only one is kept, so Node construction must stay free of
// side effects (§5).
func (t *Tree) GetOrCreate(key uint64, role Role) *Node {
	if key == 0 {
		return t.root
	}
	actual, _ := t.nodes.LoadOrStore(key, newNode(role))
	return actual.(*Node)
}

// ChildProb pairs a child node with a probability mass assigned to it by a
// Policy or Dynamics distribution.
type ChildProb struct {
	Child *Node
	Prob  float64
}

// Node accumulates playout statistics and successor edges for one
// information set. All counters are safe for concurrent use.
type Node struct {
	Role Role

	evals    int64
	wins     int64
	trickSum int64

	edges sync.Map // cards.Card -> *Edge
}

func newNode(role Role) *Node {
	return &Node{Role: role}
}

// Insert records one playout's outcome that bottomed out at (or passed
// through) this node.
func (n *Node) Insert(win bool, tricks int) {
	atomic.AddInt64(&n.evals, 1)
	atomic.AddInt64(&n.trickSum, int64(tricks))
	if win {
		atomic.AddInt64(&n.wins, 1)
	}
}

// Evals is the number of playouts recorded at this node.
func (n *Node) Evals() int64 { return atomic.LoadInt64(&n.evals) }

// Wins is the number of recorded playouts that counted as a win.
func (n *Node) Wins() int64 { return atomic.LoadInt64(&n.wins) }

// TrickSum is the running total of tricks recorded at this node.
func (n *Node) TrickSum() int64 { return atomic.LoadInt64(&n.trickSum) }

// WinRate is Wins/Evals, or 0 with no observations yet.
func (n *Node) WinRate() float64 {
	evals := n.Evals()
	if evals == 0 {
		return 0
	}
	return float64(n.Wins()) / float64(evals)
}

// AvgTricks is TrickSum/Evals, or 0 with no observations yet.
func (n *Node) AvgTricks() float64 {
	evals := n.Evals()
	if evals == 0 {
		return 0
	}
	return float64(n.TrickSum()) / float64(evals)
}

// AddEdge atomically gets or inserts the edge for playing card from this
// node.
func (n *Node) AddEdge(card cards.Card) *Edge {
	actual, _ := n.edges.LoadOrStore(card, &Edge{card: card})
	return actual.(*Edge)
}

// Edges returns a snapshot of this node's card-to-edge map.
func (n *Node) Edges() map[cards.Card]*Edge {
	out := make(map[cards.Card]*Edge)
	n.edges.Range(func(k, v any) bool {
		out[k.(cards.Card)] = v.(*Edge)
		return true
	})
	return out
}

// Children returns the distinct successor nodes reached by any of this
// node's edges, in no particular order. A Node with no children is a leaf
// for the purposes of Evaluate's termination rule (§4.8).
func (n *Node) Children() []*Node {
	seen := make(map[*Node]struct{})
	var out []*Node
	n.edges.Range(func(_, v any) bool {
		e := v.(*Edge)
		e.counts.Range(func(k, _ any) bool {
			child := k.(*Node)
			if _, ok := seen[child]; !ok {
				seen[child] = struct{}{}
				out = append(out, child)
			}
			return true
		})
		return true
	})
	return out
}

// Policy yields visit-frequency weights over this node's distinct children,
// smoothed by prior (§4.8): `(visits(child)+prior) / max(sum+prior·n, n)`.
// Returns nil if the node has no children.
func (n *Node) Policy(prior float64) []ChildProb {
	visits := make(map[*Node]int64)
	n.edges.Range(func(_, v any) bool {
		e := v.(*Edge)
		e.counts.Range(func(k, cv any) bool {
			child := k.(*Node)
			visits[child] += atomic.LoadInt64(cv.(*int64))
			return true
		})
		return true
	})
	if len(visits) == 0 {
		return nil
	}

	numChildren := float64(len(visits))
	var sum int64
	for _, c := range visits {
		sum += c
	}
	denom := float64(sum) + prior*numChildren
	if denom < numChildren {
		denom = numChildren
	}

	out := make([]ChildProb, 0, len(visits))
	for child, count := range visits {
		out = append(out, ChildProb{Child: child, Prob: (float64(count) + prior) / denom})
	}
	return out
}

// Edge tracks every distinct child reached by playing one particular card
// from a node, and how many times each was reached.
type Edge struct {
	card  cards.Card
	total int64
	counts sync.Map // *Node -> *int64
}

// Card is the edge's label.
func (e *Edge) Card() cards.Card { return e.card }

// Children returns the distinct nodes this edge has ever reached.
func (e *Edge) Children() []*Node {
	var out []*Node
	e.counts.Range(func(k, _ any) bool {
		out = append(out, k.(*Node))
		return true
	})
	return out
}

// Update records that playing this edge's card produced child this time.
func (e *Edge) Update(child *Node) {
	actual, _ := e.counts.LoadOrStore(child, new(int64))
	atomic.AddInt64(actual.(*int64), 1)
	atomic.AddInt64(&e.total, 1)
}

// Total is the number of times this edge has been traversed.
func (e *Edge) Total() int64 { return atomic.LoadInt64(&e.total) }

// Dynamics yields the edge's own successor-histogram distribution,
// smoothed by prior: `(count+prior) / (total+prior·|children|)`. Yields
// nothing if the edge has never been traversed. Not on the Evaluate path
// (open question #4): kept because it is part of the Edge contract and
// exercised directly by its own tests.
func (e *Edge) Dynamics(prior float64) []ChildProb {
	total := e.Total()
	if total == 0 {
		return nil
	}

	type entry struct {
		child *Node
		count int64
	}
	var entries []entry
	e.counts.Range(func(k, v any) bool {
		entries = append(entries, entry{child: k.(*Node), count: atomic.LoadInt64(v.(*int64))})
		return true
	})

	n := float64(len(entries))
	denom := float64(total) + prior*n
	out := make([]ChildProb, 0, len(entries))
	for _, e := range entries {
		out = append(out, ChildProb{Child: e.child, Prob: (float64(e.count) + prior) / denom})
	}
	return out
}
