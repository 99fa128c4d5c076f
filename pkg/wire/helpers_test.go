package wire

import (
	"fmt"
	"sort"
	"testing"

	"github.com/OpenTraceLab/wirenet/pkg/geom"
)

// seg is a test shorthand for an unbound segment.
func seg(x0, y0, x1, y1 float64) Segment {
	return Seg(geom.Pt(x0, y0), geom.Pt(x1, y1))
}

// edgeSet renders segments as sorted direction-independent edge strings.
func edgeSet(segs []Segment) []string {
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		a, b := s.P0.String(), s.P1.String()
		if b < a {
			a, b = b, a
		}
		out = append(out, a+"-"+b)
	}
	sort.Strings(out)
	return out
}

// degreeAt returns the degree of the node at p, failing the test if absent.
func degreeAt(t *testing.T, g *Graph, p geom.Point) int {
	t.Helper()
	n, ok := g.NodeAt(p)
	if !ok {
		t.Fatalf("no node at %v", p)
	}
	return len(n.Edges)
}

// checkSymmetric fails if any edge is not listed by both endpoints, is a self
// loop, or is listed twice.
func checkSymmetric(t *testing.T, g *Graph) {
	t.Helper()
	for _, n := range g.Nodes {
		seen := map[int]bool{}
		for _, e := range n.Edges {
			if e == n.ID {
				t.Errorf("node %d lists itself", n.ID)
			}
			if seen[e] {
				t.Errorf("node %d lists %d twice", n.ID, e)
			}
			seen[e] = true
			back := false
			for _, r := range g.Nodes[e].Edges {
				if r == n.ID {
					back = true
				}
			}
			if !back {
				t.Errorf("edge %d->%d has no reverse", n.ID, e)
			}
		}
	}
}

func ref(comp, term string) *TerminalRef {
	return &TerminalRef{ComponentID: comp, TerminalID: term}
}

func wireOf(id int, segs ...Segment) Wire {
	return Wire{ID: fmt.Sprint(id), Segments: segs}
}
