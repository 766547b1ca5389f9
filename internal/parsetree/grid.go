package parsetree

import "github.com/Mr-Dark-debug/ambiscope/internal/layout"

// Grid lays the tree out on a character grid with gap blank columns
// between sibling subtrees.
func (t *Tree) Grid(gap int) *layout.Layout[*Node] {
	return layout.Compute(t.Root,
		func(n *Node) string { return n.Symbol },
		func(n *Node) []*Node { return n.Children },
		gap)
}

// Draw renders the tree grid. style colours each node by its state and
// may be nil.
func (t *Tree) Draw(gap int, style func(s State, text string) string) []string {
	var label func(*Node, string) string
	if style != nil {
		label = func(n *Node, text string) string { return style(t.StateOf(n), text) }
	}
	return t.Grid(gap).Render(label, nil)
}
