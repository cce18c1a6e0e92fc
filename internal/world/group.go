package world

import (
	"slices"

	"github.com/san-kum/rigidsim/internal/frame"
	"github.com/san-kum/rigidsim/internal/physical"
)

// group holds the parts of one tracked tree and their combined bounds.
type group struct {
	w      *World
	root   physical.Handle
	parts  []*physical.Part
	bounds frame.Bounds
}

func (w *World) groupOf(root physical.Handle) *group {
	g, ok := w.groups[root]
	if !ok {
		g = &group{w: w, root: root, bounds: frame.EmptyBounds()}
		w.groups[root] = g
	}
	return g
}

// Add moves part into g, taking it out of any other group.
func (g *group) Add(part *physical.Part) {
	old := g.w.partGroups[part]
	if old == g {
		return
	}
	if old != nil {
		old.parts = slices.DeleteFunc(old.parts, func(p *physical.Part) bool { return p == part })
	}
	g.w.partGroups[part] = g
	g.parts = append(g.parts, part)
}

// ExpandBounds recomputes the union of the member part bounds.
func (g *group) ExpandBounds() {
	b := frame.EmptyBounds()
	for _, p := range g.parts {
		b = b.Union(p.Bounds())
	}
	g.bounds = b
}
