package wire

import (
	"fmt"

	"github.com/OpenTraceLab/wirenet/pkg/geom"
)

// DragSegment moves segment segIdx of w by delta together with every node
// reachable from its endpoints along edges parallel to it, so a whole straight
// run moves rigidly and perpendicular bends act as pivots. Moved nodes are
// snapped to the grid.
func DragSegment(w Wire, segIdx int, delta geom.Point) (Wire, error) {
	if segIdx < 0 || segIdx >= len(w.Segments) {
		return Wire{}, fmt.Errorf("%w: %d of %d", ErrSegmentIndex, segIdx, len(w.Segments))
	}
	seg := w.Segments[segIdx]

	g := BuildGraph(w)
	n0, n1, err := findNodesForSegment(g, seg)
	if err != nil {
		return Wire{}, fmt.Errorf("drag wire %q segment %d: %w", w.ID, segIdx, err)
	}

	dir := seg.P1.Sub(seg.P0).Unit()

	var move []int
	seen := make([]bool, len(g.Nodes))
	stack := []int{n0, n1}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		move = append(move, id)

		from := g.Nodes[id]
		for _, next := range from.Edges {
			d := g.Nodes[next].Pos.Sub(from.Pos).Unit().Dot(dir)
			if d > 1-geom.Epsilon || d < -1+geom.Epsilon {
				stack = append(stack, next)
			}
		}
	}

	for _, id := range move {
		g.Nodes[id].Pos = geom.Snap(g.Nodes[id].Pos.Add(delta))
	}
	return g.Wire(), nil
}

// findNodesForSegment returns the ids of two adjacent nodes sitting on the
// endpoints of seg.
func findNodesForSegment(g *Graph, seg Segment) (int, int, error) {
	for _, n0 := range g.Nodes {
		if !n0.Pos.Near(seg.P0) {
			continue
		}
		for _, id := range n0.Edges {
			if g.Nodes[id].Pos.Near(seg.P1) {
				return n0.ID, id, nil
			}
		}
	}
	return 0, 0, fmt.Errorf("%w: %v -> %v", ErrSegmentNotFound, seg.P0, seg.P1)
}

// MoveWiresForComponent moves every wire node bound to a terminal of
// layout.Components[compIdx] by delta, snapped to the grid, and returns the
// resulting wire list. The component itself is not moved.
func MoveWiresForComponent(layout Layout, compIdx int, delta geom.Point) ([]Wire, error) {
	if compIdx < 0 || compIdx >= len(layout.Components) {
		return nil, fmt.Errorf("%w: %d of %d", ErrComponentIndex, compIdx, len(layout.Components))
	}
	comp := layout.Components[compIdx]

	wires := make([]Wire, 0, len(layout.Wires))
	for _, w := range layout.Wires {
		g := BuildGraph(w)
		for i := range g.Nodes {
			if ref := g.Nodes[i].Ref; ref != nil && ref.ComponentID == comp.ID {
				g.Nodes[i].Pos = geom.Snap(g.Nodes[i].Pos.Add(delta))
			}
		}
		wires = append(wires, g.Wire())
	}
	return wires, nil
}
