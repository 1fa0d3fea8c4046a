package backup

import (
	"math"
	"testing"

	"github.com/signalnine/bridgesolve/internal/cards"
	"github.com/signalnine/bridgesolve/internal/tree"
)

func leaf(role tree.Role, wins, evals, tricks int) *tree.Node {
	tr := tree.New()
	n := tr.GetOrCreate(uint64(1+wins*1000+evals*7+tricks*13), role)
	for i := 0; i < evals; i++ {
		n.Insert(i < wins, tricks/max(evals, 1))
	}
	return n
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func TestScoreMidRangeIsWinRate(t *testing.T) {
	n := leaf(tree.RoleSelf, 3, 10, 70)
	if got, want := Score(n), 0.3; math.Abs(got-want) > 1e-9 {
		t.Errorf("Score() = %v, want %v", got, want)
	}
}

func TestScoreAllWinsIsBoostedPastOne(t *testing.T) {
	n := leaf(tree.RoleSelf, 10, 10, 130) // avgTricks = 13
	got := Score(n)
	if got <= 1 {
		t.Errorf("Score() = %v, want something > 1 for an all-win node", got)
	}
}

func TestScoreAllLossesIsNegative(t *testing.T) {
	n := leaf(tree.RoleSelf, 0, 10, 50) // avgTricks = 5
	got := Score(n)
	if got >= 0 {
		t.Errorf("Score() = %v, want a negative value for an all-loss node", got)
	}
}

func TestEvaluateLeafReturnsScore(t *testing.T) {
	n := leaf(tree.RoleSelf, 5, 10, 60)
	got := Evaluate(n, Optimistic{}, Optimistic{})
	if want := Score(n); got != want {
		t.Errorf("Evaluate(leaf) = %v, want Score(leaf) = %v", got, want)
	}
}

func TestEvaluateSelfTakesMax(t *testing.T) {
	tr := tree.New()
	root := tr.Root() // Role is always Self
	aceCard := mustCard(t, "AS")
	kingCard := mustCard(t, "KS")

	edgeA := root.AddEdge(aceCard)
	edgeK := root.AddEdge(kingCard)

	lowChild := tr.GetOrCreate(1, tree.RoleSelf)
	lowChild.Insert(false, 2) // low score
	highChild := tr.GetOrCreate(2, tree.RoleSelf)
	highChild.Insert(true, 13)
	highChild.Insert(true, 13)

	edgeA.Update(lowChild)
	edgeK.Update(highChild)

	got := Evaluate(root, Optimistic{}, Optimistic{})
	want := Score(highChild)
	if got != want {
		t.Errorf("Evaluate(root) = %v, want max child score %v", got, want)
	}
}

func TestEvaluateRootProducesPerCardScores(t *testing.T) {
	tr := tree.New()
	root := tr.Root()
	aceCard := mustCard(t, "AS")
	kingCard := mustCard(t, "KS")

	edgeA := root.AddEdge(aceCard)
	edgeK := root.AddEdge(kingCard)

	childA := tr.GetOrCreate(1, tree.RolePartner)
	childA.Insert(true, 10)
	childK := tr.GetOrCreate(2, tree.RolePartner)
	childK.Insert(false, 3)

	edgeA.Update(childA)
	edgeK.Update(childK)

	scores := EvaluateRoot(tr, Optimistic{}, Optimistic{})
	if len(scores) != 2 {
		t.Fatalf("EvaluateRoot returned %d entries, want 2", len(scores))
	}
	if scores[aceCard] <= scores[kingCard] {
		t.Errorf("ace child won every playout and should outscore king's loss: %v vs %v", scores[aceCard], scores[kingCard])
	}
}

func TestOptimisticTakesMaxChild(t *testing.T) {
	node, children := fanOutNode(t, tree.RoleOpponent, []int{3, 9, 1})
	got := Optimistic{}.Backup(node, scoreByIndex(children))
	if got != 9 {
		t.Errorf("Optimistic.Backup = %v, want 9", got)
	}
}

func TestAdversarialTakesMinChild(t *testing.T) {
	node, children := fanOutNode(t, tree.RolePartner, []int{3, 9, 1})
	got := Adversarial{}.Backup(node, scoreByIndex(children))
	if got != 1 {
		t.Errorf("Adversarial.Backup = %v, want 1", got)
	}
}

func TestExpectationEmptyPolicyIsZero(t *testing.T) {
	tr := tree.New()
	node := tr.GetOrCreate(99, tree.RolePartner)
	// No edges at all: Policy(prior) is nil, so the sum is vacuously 0.
	got := Expectation{Prior: 1}.Backup(node, func(*tree.Node) float64 { return 42 })
	if got != 0 {
		t.Errorf("Expectation.Backup on a childless node = %v, want 0", got)
	}
}

func TestLinearBlendBoundaryEqualsExtreme(t *testing.T) {
	node, children := fanOutNode(t, tree.RolePartner, []int{2, 8})
	got := LinearBlend{Lambda: 0, Prior: 1}.Backup(node, scoreByIndex(children))
	want := Optimistic{}.Backup(node, scoreByIndex(children))
	if got != want {
		t.Errorf("LinearBlend(lambda=0) = %v, want the pure extreme %v", got, want)
	}
}

func TestLinearBlendBoundaryEqualsExpectation(t *testing.T) {
	node, children := fanOutNode(t, tree.RolePartner, []int{2, 8})
	got := LinearBlend{Lambda: 1, Prior: 1}.Backup(node, scoreByIndex(children))
	want := Expectation{Prior: 1}.Backup(node, scoreByIndex(children))
	if got != want {
		t.Errorf("LinearBlend(lambda=1) = %v, want the pure expectation %v", got, want)
	}
}

func TestSoftMaxApproachesMaxAsTauShrinks(t *testing.T) {
	node, children := fanOutNode(t, tree.RolePartner, []int{2, 9})
	got := SoftMax{Tau: 0.001, Prior: 1}.Backup(node, scoreByIndex(children))
	if math.Abs(got-9) > 1e-3 {
		t.Errorf("SoftMax with a tiny tau = %v, want close to the max (9)", got)
	}
}

func TestSoftMinApproachesMinAsTauShrinks(t *testing.T) {
	node, children := fanOutNode(t, tree.RolePartner, []int{2, 9})
	got := SoftMin{Tau: 0.001, Prior: 1}.Backup(node, scoreByIndex(children))
	if math.Abs(got-2) > 1e-3 {
		t.Errorf("SoftMin with a tiny tau = %v, want close to the min (2)", got)
	}
}

func TestSoftMaxAllEqualReducesToThatValue(t *testing.T) {
	node, children := fanOutNode(t, tree.RolePartner, []int{5, 5, 5})
	got := SoftMax{Tau: 2, Prior: 1}.Backup(node, scoreByIndex(children))
	if math.Abs(got-5) > 1e-9 {
		t.Errorf("SoftMax with all-equal children = %v, want exactly 5", got)
	}
}

func TestNewFallsBackToOptimisticOnUnknownStyle(t *testing.T) {
	m := New("not-a-real-style", Preset{})
	if _, ok := m.(Optimistic); !ok {
		t.Errorf("New with an unrecognized style = %T, want Optimistic fallback", m)
	}
}

func TestNewCheckedRejectsUnknownStyle(t *testing.T) {
	if _, err := NewChecked("bogus", Preset{}); err == nil {
		t.Error("NewChecked should reject an unrecognized style name")
	}
}

func TestNewCheckedAcceptsEveryPreset(t *testing.T) {
	for _, style := range []string{"optimistic", "adversarial", "expectation", "linearblend", "softmax", "softmin"} {
		if _, err := NewChecked(style, Preset{Tau: 1, Lambda: 0.5, Prior: 1}); err != nil {
			t.Errorf("NewChecked(%q) returned an error: %v", style, err)
		}
	}
}

// fanOutNode builds a node with one edge per entry in scores, each edge
// reaching a distinct leaf Node; it returns the node and the leaves in
// the same order as scores so a test can build a ScoreFunc keyed by
// identity.
func fanOutNode(t *testing.T, role tree.Role, scores []int) (*tree.Node, []*tree.Node) {
	t.Helper()
	tr := tree.New()
	node := tr.GetOrCreate(uint64(1000+int(role.String()[0])), role)
	cardRanks := []string{"AS", "KS", "QS", "JS", "TS"}
	children := make([]*tree.Node, len(scores))
	for i, s := range scores {
		c := mustCard(t, cardRanks[i])
		child := tr.GetOrCreate(uint64(2000+i), tree.RoleSelf)
		child.Insert(true, s)
		edge := node.AddEdge(c)
		edge.Update(child)
		children[i] = child
	}
	return node, children
}

// scoreByIndex scores each child node by the tricks recorded on its single
// Insert call (its AvgTricks), giving TestXxx cases a simple, predictable
// ScoreFunc without going through the full Score() boost/penalty rule.
func scoreByIndex(children []*tree.Node) ScoreFunc {
	return func(n *tree.Node) float64 {
		return n.AvgTricks()
	}
}

func mustCard(t *testing.T, s string) cards.Card {
	t.Helper()
	c, err := cards.ParseCard(s)
	if err != nil {
		t.Fatalf("ParseCard(%q): %v", s, err)
	}
	return c
}
