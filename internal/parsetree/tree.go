// Package parsetree rebuilds parse trees from recorded derivation steps.
//
// A derivation only lists sentential forms and rule names. Replaying it
// finds, for every step, the nonterminal occurrence the rule rewrote and
// hangs the rule's right-hand side below it. The tree at step s is the
// replay of steps 1..s, so renderers can draw the tree growing as the
// cursor moves.
package parsetree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cnf/structhash"
	"github.com/disiqueira/gotree/v3"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ambiscope.parsetree'.
func tracer() tracing.Trace {
	return tracing.Select("ambiscope.parsetree")
}

// ErrUnreplayableStep is returned when no occurrence of a step's
// left-hand side turns the previous form into the recorded one.
var ErrUnreplayableStep = errors.New("derivation step cannot be replayed")

// Epsilon labels the single child of a node expanded by an ε-rule.
const Epsilon = "ε"

// Node is one symbol of the parse tree.
type Node struct {
	Symbol   string
	Terminal bool
	Children []*Node
	// CreatedAt is the step that introduced the node, 0 for the root.
	CreatedAt int
	// ExpandedAt is the step that rewrote the node, -1 while unexpanded.
	ExpandedAt int
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Expanded reports whether a rule has been applied to n.
func (n *Node) Expanded() bool {
	return n.ExpandedAt >= 0
}

// State classifies a node for rendering.
type State int

const (
	// Pending is an unexpanded nonterminal from an earlier step.
	Pending State = iota
	// Fresh is a nonterminal introduced by the current step.
	Fresh
	// Active is the nonterminal rewritten by the current step.
	Active
	// Settled is a nonterminal rewritten by an earlier step.
	Settled
	// Final is a terminal.
	Final
)

func (s State) String() string {
	return [...]string{"pending", "fresh", "active", "settled", "final"}[s]
}

// Tree is the parse tree after Step steps of a derivation.
type Tree struct {
	Root *Node
	Step int
}

// StateOf classifies n relative to the tree's step.
func (t *Tree) StateOf(n *Node) State {
	switch {
	case n.Terminal:
		return Final
	case n.Expanded() && n.ExpandedAt == t.Step && t.Step > 0:
		return Active
	case n.Expanded():
		return Settled
	case n.CreatedAt == t.Step && t.Step > 0:
		return Fresh
	}
	return Pending
}

// Walk visits the nodes in pre-order.
func (t *Tree) Walk(visit func(n *Node, depth int)) {
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		visit(n, depth)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(t.Root, 0)
}

// Frontier returns the leaves from left to right, skipping ε leaves.
// Between steps it spells the current sentential form.
func (t *Tree) Frontier() []*Node {
	var leaves []*Node
	t.Walk(func(n *Node, _ int) {
		if n.IsLeaf() && !(n.Terminal && n.Symbol == Epsilon) {
			leaves = append(leaves, n)
		}
	})
	return leaves
}

// Yield returns the leaf symbols from left to right.
func (t *Tree) Yield() []string {
	frontier := t.Frontier()
	out := make([]string, len(frontier))
	for i, n := range frontier {
		out[i] = n.Symbol
	}
	return out
}

// Form joins the yield with single spaces.
func (t *Tree) Form() string {
	return strings.Join(t.Yield(), " ")
}

// Size returns the number of nodes.
func (t *Tree) Size() int {
	n := 0
	t.Walk(func(*Node, int) { n++ })
	return n
}

// Height returns the number of levels.
func (t *Tree) Height() int {
	h := 0
	t.Walk(func(_ *Node, depth int) {
		if depth+1 > h {
			h = depth + 1
		}
	})
	return h
}

// shape is the structural content of a node, without step bookkeeping.
type shape struct {
	Symbol   string
	Terminal bool
	Children []shape
}

func shapeOf(n *Node) shape {
	s := shape{Symbol: n.Symbol, Terminal: n.Terminal}
	for _, c := range n.Children {
		s.Children = append(s.Children, shapeOf(c))
	}
	return s
}

// Signature hashes the tree's structure. Trees built in a different order
// but with the same shape share a signature.
func (t *Tree) Signature() (string, error) {
	sig, err := structhash.Hash(shapeOf(t.Root), 1)
	if err != nil {
		return "", fmt.Errorf("hashing parse tree: %w", err)
	}
	return sig, nil
}

// Indented renders the tree as an indented outline.
func (t *Tree) Indented() string {
	root := gotree.New(t.Root.Symbol)
	var add func(parent gotree.Tree, n *Node)
	add = func(parent gotree.Tree, n *Node) {
		for _, c := range n.Children {
			add(parent.Add(c.Symbol), c)
		}
	}
	add(root, t.Root)
	return root.Print()
}

// Bracketed renders the tree as nested brackets, e.g. "[S [S a b] [S a b]]".
func (t *Tree) Bracketed() string {
	var b strings.Builder
	var write func(n *Node)
	write = func(n *Node) {
		if n.IsLeaf() {
			b.WriteString(n.Symbol)
			return
		}
		b.WriteString("[" + n.Symbol)
		for _, c := range n.Children {
			b.WriteByte(' ')
			write(c)
		}
		b.WriteByte(']')
	}
	write(t.Root)
	return b.String()
}
