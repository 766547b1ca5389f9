package parsetree

import (
	"fmt"
	"slices"

	"github.com/Mr-Dark-debug/ambiscope/internal/grammar"
)

// Replayer rebuilds parse trees for the derivations of one grammar.
type Replayer struct {
	grammar *grammar.Grammar
	tok     *grammar.Tokenizer
}

// NewReplayer compiles the tokenizer for g.
func NewReplayer(g *grammar.Grammar) (*Replayer, error) {
	tok, err := grammar.TokenizerFor(g)
	if err != nil {
		return nil, fmt.Errorf("replayer for %q: %w", g.Name, err)
	}
	return &Replayer{grammar: g, tok: tok}, nil
}

// Tokenizer returns the tokenizer compiled for the grammar.
func (r *Replayer) Tokenizer() *grammar.Tokenizer {
	return r.tok
}

// Replay builds the tree after steps 0..upTo of d. upTo is clamped to
// the derivation. For every step the rewritten position is the occurrence
// of the rule's left-hand side whose replacement yields the recorded form;
// if several do, the leftmost wins for leftmost derivations and the
// rightmost otherwise.
func (r *Replayer) Replay(d *grammar.Derivation, upTo int) (*Tree, error) {
	if d.Len() == 0 {
		return nil, fmt.Errorf("%w: derivation %q has no steps", ErrUnreplayableStep, d.Description)
	}
	upTo = min(max(upTo, 0), d.LastIndex())
	start, err := r.tok.Tokenize(d.Steps[0].Result)
	if err != nil {
		return nil, fmt.Errorf("%w: step 0: %w", ErrUnreplayableStep, err)
	}
	if len(start) != 1 {
		return nil, fmt.Errorf("%w: step 0: form %q is not a single symbol", ErrUnreplayableStep, d.Steps[0].Result)
	}
	t := &Tree{Root: r.node(start[0], 0)}
	for i := 1; i <= upTo; i++ {
		if err := r.apply(t, d, i); err != nil {
			return nil, err
		}
	}
	t.Step = upTo
	return t, nil
}

// ReplayAll builds the tree of the complete derivation.
func (r *Replayer) ReplayAll(d *grammar.Derivation) (*Tree, error) {
	return r.Replay(d, d.LastIndex())
}

func (r *Replayer) apply(t *Tree, d *grammar.Derivation, i int) error {
	step := d.Steps[i]
	fail := func(err error) error {
		return fmt.Errorf("%w: step %d (%s): %w", ErrUnreplayableStep, i, step.Rule, err)
	}
	rule, err := grammar.ParseRule(step.Rule)
	if err != nil {
		return fail(err)
	}
	rhs, err := r.tok.RHS(rule)
	if err != nil {
		return fail(err)
	}
	target, err := r.tok.Tokenize(step.Result)
	if err != nil {
		return fail(err)
	}
	frontier := t.Frontier()
	var candidates []int
	for k, n := range frontier {
		if n.Terminal || n.Symbol != rule.LHS {
			continue
		}
		if slices.Equal(rewrite(frontier, k, rhs), target) {
			candidates = append(candidates, k)
		}
	}
	if len(candidates) == 0 {
		return fmt.Errorf("%w: step %d (%s): no %s in %q rewrites to %q",
			ErrUnreplayableStep, i, step.Rule, rule.LHS, t.Form(), step.Result)
	}
	k := candidates[0]
	typ := step.Type
	if typ == "" {
		typ = d.Type
	}
	if typ == grammar.Rightmost {
		k = candidates[len(candidates)-1]
	}
	if len(candidates) > 1 {
		tracer().Debugf("step %d: %d candidate positions, picked %d (%s)", i, len(candidates), k, typ)
	}
	n := frontier[k]
	n.ExpandedAt = i
	if len(rhs) == 0 {
		n.Children = []*Node{{Symbol: Epsilon, Terminal: true, CreatedAt: i, ExpandedAt: -1}}
		return nil
	}
	for _, sym := range rhs {
		n.Children = append(n.Children, r.node(sym, i))
	}
	return nil
}

func (r *Replayer) node(sym string, step int) *Node {
	return &Node{
		Symbol:     sym,
		Terminal:   !r.tok.Vocabulary().IsNonterminal(sym),
		CreatedAt:  step,
		ExpandedAt: -1,
	}
}

// rewrite returns the frontier symbols with position k replaced by rhs.
func rewrite(frontier []*Node, k int, rhs []string) []string {
	out := make([]string, 0, len(frontier)+len(rhs))
	for _, n := range frontier[:k] {
		out = append(out, n.Symbol)
	}
	out = append(out, rhs...)
	for _, n := range frontier[k+1:] {
		out = append(out, n.Symbol)
	}
	return out
}

// Trees replays both derivations of an input to their final step.
func (r *Replayer) Trees(in *grammar.Input) ([]*Tree, error) {
	trees := make([]*Tree, 0, len(in.Derivations))
	for i := range in.Derivations {
		t, err := r.ReplayAll(&in.Derivations[i])
		if err != nil {
			return nil, fmt.Errorf("derivation %d: %w", i, err)
		}
		trees = append(trees, t)
	}
	return trees, nil
}
