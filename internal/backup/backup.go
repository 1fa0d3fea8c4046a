// Package backup implements the post-search evaluator (§4.8): it walks a
// searched internal/tree.Tree and, for a chosen pair of (opponent, partner)
// backup models, folds each node's recorded statistics up to a
// {card → score} map for the root. Grounded on the teacher's
// evolution/fitness/styles.go StylePresets registry: a named preset
// selects a strategy, here a backup Model instead of a fitness weight
// vector, chosen by a constructor that switches on the name and falls
// back to a default on an unrecognized one.
package backup

import (
	"fmt"
	"math"

	"github.com/signalnine/bridgesolve/internal/cards"
	"github.com/signalnine/bridgesolve/internal/tree"
)

// ScoreFunc is the recursive node-scoring callback a Model's Backup method
// uses to descend into its children. Evaluate supplies this as itself.
type ScoreFunc func(*tree.Node) float64

// Model folds one node's children into a single score, given a way to
// score any one of them. Each of the six presets below implements it.
type Model interface {
	Backup(node *tree.Node, score ScoreFunc) float64
}

const epsilon = 1e-9

// Score is the leaf-value rule (§4.8): a node's win rate, except pushed
// slightly past 0 or 1 when every observation agreed, so a choice between
// two all-win or two all-loss lines still prefers the one with more
// tricks.
func Score(node *tree.Node) float64 {
	w := node.WinRate()
	r := node.AvgTricks() / 13
	switch {
	case w < epsilon:
		return -1e-3 * (1 - r)
	case w > 1-epsilon:
		return 1 + 1e-3*r
	default:
		return w
	}
}

// Evaluate recursively scores node: a leaf (no children) yields Score
// directly; a Self node takes the best child; Partner and Opponent nodes
// defer to their respective Model.
func Evaluate(node *tree.Node, opponent, partner Model) float64 {
	children := node.Children()
	if len(children) == 0 {
		return Score(node)
	}

	next := func(c *tree.Node) float64 { return Evaluate(c, opponent, partner) }
	switch node.Role {
	case tree.RoleSelf:
		best := math.Inf(-1)
		for _, c := range children {
			if v := next(c); v > best {
				best = v
			}
		}
		return best
	case tree.RolePartner:
		return partner.Backup(node, next)
	default:
		return opponent.Backup(node, next)
	}
}

// EvaluateRoot produces one score per card the root could play, by
// evaluating every distinct node reached by that edge and taking the best
// (edges converge to a single child in practice, since the tree's key is
// derived only from the observable play history; the max is a defensive
// tie-break for the degenerate case of more than one).
func EvaluateRoot(t *tree.Tree, opponent, partner Model) map[cards.Card]float64 {
	out := make(map[cards.Card]float64)
	for card, edge := range t.Root().Edges() {
		children := edge.Children()
		if len(children) == 0 {
			continue
		}
		best := math.Inf(-1)
		for _, c := range children {
			if v := Evaluate(c, opponent, partner); v > best {
				best = v
			}
		}
		out[card] = best
	}
	return out
}

// Optimistic backs up the best child's score unconditionally.
type Optimistic struct{}

func (Optimistic) Backup(node *tree.Node, score ScoreFunc) float64 {
	best := math.Inf(-1)
	for _, c := range node.Children() {
		if v := score(c); v > best {
			best = v
		}
	}
	return best
}

// Adversarial backs up the worst child's score unconditionally.
type Adversarial struct{}

func (Adversarial) Backup(node *tree.Node, score ScoreFunc) float64 {
	worst := math.Inf(1)
	for _, c := range node.Children() {
		if v := score(c); v < worst {
			worst = v
		}
	}
	return worst
}

// Expectation backs up the visit-frequency-weighted average over children
// (§4.8, node policy). An empty policy (no recorded visits) sums to 0
// rather than falling back to Score(node), as decided for this case in
// DESIGN.md's open-question decisions.
type Expectation struct {
	Prior float64
}

func (m Expectation) Backup(node *tree.Node, score ScoreFunc) float64 {
	var sum float64
	for _, cp := range node.Policy(m.Prior) {
		sum += cp.Prob * score(cp.Child)
	}
	return sum
}

// LinearBlend interpolates between an extreme (max for Partner nodes, min
// otherwise) and the Expectation backup.
type LinearBlend struct {
	Lambda float64
	Prior  float64
}

func (m LinearBlend) Backup(node *tree.Node, score ScoreFunc) float64 {
	maximize := node.Role == tree.RolePartner
	extreme := math.Inf(1)
	if maximize {
		extreme = math.Inf(-1)
	}
	for _, c := range node.Children() {
		v := score(c)
		if maximize {
			if v > extreme {
				extreme = v
			}
		} else if v < extreme {
			extreme = v
		}
	}
	expectation := Expectation{Prior: m.Prior}.Backup(node, score)
	return (1-m.Lambda)*extreme + m.Lambda*expectation
}

// SoftMax backs up a temperature-weighted soft maximum over the node's
// policy distribution, computed via the standard log-sum-exp identity for
// numerical stability (subtracting the max score before exponentiating
// and adding it back afterward — the literal spec formula's parenthesization
// groups that addition inside the outer τ· multiplication, which is
// dimensionally inconsistent: at τ·(logΣ+S) with S in score units, the
// whole expression scales by τ even when every child agrees, producing
// τ·v instead of v. The identity below is the one that reduces correctly
// to v when every child's score is v).
type SoftMax struct {
	Tau   float64
	Prior float64
}

func (m SoftMax) Backup(node *tree.Node, score ScoreFunc) float64 {
	policy := node.Policy(m.Prior)
	if len(policy) == 0 {
		return 0
	}
	scores := make([]float64, len(policy))
	maxS := math.Inf(-1)
	for i, cp := range policy {
		scores[i] = score(cp.Child)
		if scores[i] > maxS {
			maxS = scores[i]
		}
	}
	var sum float64
	for i, cp := range policy {
		sum += cp.Prob * math.Exp((scores[i]-maxS)/m.Tau)
	}
	return m.Tau*math.Log(sum) + maxS
}

// SoftMin is SoftMax's mirror image: a temperature-weighted soft minimum,
// via the same stabilized identity (see SoftMax's doc comment).
type SoftMin struct {
	Tau   float64
	Prior float64
}

func (m SoftMin) Backup(node *tree.Node, score ScoreFunc) float64 {
	policy := node.Policy(m.Prior)
	if len(policy) == 0 {
		return 0
	}
	scores := make([]float64, len(policy))
	minS := math.Inf(1)
	for i, cp := range policy {
		scores[i] = score(cp.Child)
		if scores[i] < minS {
			minS = scores[i]
		}
	}
	var sum float64
	for i, cp := range policy {
		sum += cp.Prob * math.Exp((minS-scores[i])/m.Tau)
	}
	return minS - m.Tau*math.Log(sum)
}

// Preset carries the tunable parameters (temperature, blend factor, policy
// prior) that New applies to whichever of §4.8's six models it builds.
type Preset struct {
	Tau, Lambda, Prior float64
}

// New constructs the Model named by style ("optimistic", "adversarial",
// "expectation", "linearblend", "softmax", "softmin"), applying preset's
// Tau/Lambda/Prior where the model uses them. Unrecognized names fall back
// to Optimistic, mirroring NewEvaluator's fallback to "balanced".
func New(style string, preset Preset) Model {
	switch style {
	case "adversarial":
		return Adversarial{}
	case "expectation":
		return Expectation{Prior: preset.Prior}
	case "linearblend":
		return LinearBlend{Lambda: preset.Lambda, Prior: preset.Prior}
	case "softmax":
		return SoftMax{Tau: preset.Tau, Prior: preset.Prior}
	case "softmin":
		return SoftMin{Tau: preset.Tau, Prior: preset.Prior}
	case "optimistic":
		return Optimistic{}
	default:
		return Optimistic{}
	}
}

// ErrUnknownModel is returned by NewChecked for a style name outside the
// six presets, for callers that want to reject a typo instead of silently
// defaulting. cmd/bridgesolve-bench uses New, so its model flags fall back
// to Optimistic instead.
var ErrUnknownModel = fmt.Errorf("backup: unknown model style")

// NewChecked is New, but returns ErrUnknownModel instead of defaulting
// silently.
func NewChecked(style string, preset Preset) (Model, error) {
	switch style {
	case "optimistic", "adversarial", "expectation", "linearblend", "softmax", "softmin":
		return New(style, preset), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, style)
	}
}
