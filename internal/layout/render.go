package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	blank = -2
	edge  = -1
)

type cell struct {
	s     string
	owner int // node index, edge or blank
}

// Render draws the layout, one string per line. Labels occupy even lines
// and connectors odd ones. label and edge style the text of a node and of
// a connector run; nil leaves text unstyled. Trailing blanks are trimmed.
func (l *Layout[T]) Render(label func(item T, text string) string, edgeStyle func(text string) string) []string {
	if label == nil {
		label = func(_ T, s string) string { return s }
	}
	if edgeStyle == nil {
		edgeStyle = func(s string) string { return s }
	}
	rows := make([][]cell, 2*l.Levels-1)
	for r := range rows {
		rows[r] = make([]cell, l.Width)
		for c := range rows[r] {
			rows[r][c] = cell{s: " ", owner: blank}
		}
	}
	for i, n := range l.Nodes {
		row := rows[2*n.Depth]
		col := n.X
		for _, r := range n.Label {
			w := runewidth.RuneWidth(r)
			if col+w > len(row) || w == 0 {
				continue
			}
			row[col] = cell{s: string(r), owner: i}
			if w == 2 {
				row[col+1] = cell{s: "", owner: i}
			}
			col += w
		}
		if len(n.Children) > 0 {
			l.connect(rows[2*n.Depth+1], n)
		}
	}
	out := make([]string, len(rows))
	for r, row := range rows {
		out[r] = l.line(row, label, edgeStyle)
	}
	return out
}

// connect draws the bracket joining n to its children.
func (l *Layout[T]) connect(row []cell, n Placed[T]) {
	first := l.Nodes[n.Children[0]].Center
	last := l.Nodes[n.Children[len(n.Children)-1]].Center
	set := func(col int, s string) {
		if col >= 0 && col < len(row) {
			row[col] = cell{s: s, owner: edge}
		}
	}
	if first == last {
		set(first, "│")
		return
	}
	for c := first; c <= last; c++ {
		set(c, "─")
	}
	for _, k := range n.Children[1 : len(n.Children)-1] {
		set(l.Nodes[k].Center, "┬")
	}
	set(first, "┌")
	set(last, "┐")
	switch row[n.Center].s {
	case "┬":
		set(n.Center, "┼")
	case "┌":
		set(n.Center, "├")
	case "┐":
		set(n.Center, "┤")
	default:
		set(n.Center, "┴")
	}
}

func (l *Layout[T]) line(row []cell, label func(T, string) string, edgeStyle func(string) string) string {
	end := len(row)
	for end > 0 && row[end-1].owner == blank {
		end--
	}
	var b strings.Builder
	for i := 0; i < end; {
		j := i
		var run strings.Builder
		for j < end && row[j].owner == row[i].owner {
			run.WriteString(row[j].s)
			j++
		}
		switch owner := row[i].owner; owner {
		case blank:
			b.WriteString(run.String())
		case edge:
			b.WriteString(edgeStyle(run.String()))
		default:
			b.WriteString(label(l.Nodes[owner].Item, run.String()))
		}
		i = j
	}
	return b.String()
}

// String renders the layout without styles.
func (l *Layout[T]) String() string {
	return strings.Join(l.Render(nil, nil), "\n")
}
