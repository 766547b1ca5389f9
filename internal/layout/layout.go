// Package layout places trees on a character grid.
//
// Widths accumulate bottom-up: a leaf is as wide as its label, an inner
// node as wide as the larger of its label and its children laid side by
// side. Parents are centred over their children, or over the middle
// child when there is an odd number of them. The result is drawn with
// box-drawing connectors:
//
//	 S
//	┌┴┐
//	a b
package layout

import (
	"github.com/mattn/go-runewidth"
)

// Placed is one positioned node.
type Placed[T any] struct {
	Item     T
	Label    string
	X        int // first column of the label
	Width    int // display width of the label
	Center   int // column connectors attach to
	Depth    int
	Parent   int // index into Layout.Nodes, -1 for the root
	Children []int
}

// Layout is a positioned tree. Nodes are in pre-order, the root first.
type Layout[T any] struct {
	Nodes  []Placed[T]
	Width  int // columns
	Levels int // tree depth + 1
}

type frame[T any] struct {
	item  T
	label string
	lw    int // label width
	w     int // subtree width
	kids  []*frame[T]
}

// Compute lays out the tree below root. label and children describe the
// tree; gap is the number of blank columns between sibling subtrees.
func Compute[T any](root T, label func(T) string, children func(T) []T, gap int) *Layout[T] {
	gap = max(gap, 0)
	var build func(item T) *frame[T]
	build = func(item T) *frame[T] {
		f := &frame[T]{item: item, label: label(item)}
		f.lw = runewidth.StringWidth(f.label)
		for i, c := range children(item) {
			k := build(c)
			if i > 0 {
				f.w += gap
			}
			f.w += k.w
			f.kids = append(f.kids, k)
		}
		f.w = max(f.w, f.lw)
		return f
	}
	top := build(root)
	l := &Layout[T]{Width: top.w}
	l.place(top, 0, 0, -1, gap)
	return l
}

func (l *Layout[T]) place(f *frame[T], x0, depth, parent, gap int) int {
	idx := len(l.Nodes)
	l.Nodes = append(l.Nodes, Placed[T]{})
	p := Placed[T]{Item: f.item, Label: f.label, Width: f.lw, Depth: depth, Parent: parent}
	l.Levels = max(l.Levels, depth+1)
	if len(f.kids) == 0 {
		p.X = x0 + (f.w-f.lw)/2
		p.Center = p.X + max(f.lw-1, 0)/2
		l.Nodes[idx] = p
		return idx
	}
	cw := 0
	for i, k := range f.kids {
		if i > 0 {
			cw += gap
		}
		cw += k.w
	}
	x := x0 + (f.w-cw)/2
	for _, k := range f.kids {
		p.Children = append(p.Children, l.place(k, x, depth+1, idx, gap))
		x += k.w + gap
	}
	first := l.Nodes[p.Children[0]].Center
	last := l.Nodes[p.Children[len(p.Children)-1]].Center
	p.Center = (first + last) / 2
	if n := len(p.Children); n > 1 && n%2 == 1 {
		p.Center = l.Nodes[p.Children[n/2]].Center
	}
	p.X = p.Center - max(f.lw-1, 0)/2
	p.X = min(max(p.X, x0), x0+f.w-f.lw)
	l.Nodes[idx] = p
	return idx
}

// Root returns the root node.
func (l *Layout[T]) Root() Placed[T] {
	return l.Nodes[0]
}

// Level returns the indices of the nodes at depth, left to right.
func (l *Layout[T]) Level(depth int) []int {
	var out []int
	for i, n := range l.Nodes {
		if n.Depth == depth {
			out = append(out, i)
		}
	}
	return out
}
