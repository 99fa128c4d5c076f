package wire

import (
	"slices"
	"sort"

	"github.com/OpenTraceLab/wirenet/pkg/geom"
)

// Node is one distinct position of a wire graph. Edges holds the ids of
// adjacent nodes; every edge is listed by both of its endpoints.
type Node struct {
	ID    int
	Pos   geom.Point
	Ref   *TerminalRef
	Edges []int
}

// Graph is the node/edge form of a wire. Nodes[i].ID == i.
type Graph struct {
	ID    string
	Nodes []Node
}

// pointOnLine is a node positioned along a segment at parameter t.
type pointOnLine struct {
	t    float64
	node int
}

// graphBuilder owns the position-key map for one BuildGraph call.
type graphBuilder struct {
	g     *Graph
	byKey map[geom.Key]int
}

// node returns the id of the node at pos, creating it if needed. ref is
// attached only when the node has no reference yet.
func (b *graphBuilder) node(pos geom.Point, ref *TerminalRef) int {
	key := geom.KeyOf(pos)
	id, ok := b.byKey[key]
	if !ok {
		id = len(b.g.Nodes)
		b.byKey[key] = id
		b.g.Nodes = append(b.g.Nodes, Node{ID: id, Pos: pos})
	}
	if b.g.Nodes[id].Ref == nil && ref != nil {
		b.g.Nodes[id].Ref = ref
	}
	return id
}

// BuildGraph converts a wire's segments into a graph. Each segment is split
// into sub-edges at every endpoint of another segment touching its interior,
// which materializes T-junctions as nodes.
func BuildGraph(w Wire) *Graph {
	b := &graphBuilder{
		g:     &Graph{ID: w.ID},
		byKey: make(map[geom.Key]int),
	}

	for i, seg0 := range w.Segments {
		line := []pointOnLine{
			{t: 0, node: b.node(seg0.P0, seg0.Ref0)},
			{t: 1, node: b.node(seg0.P1, seg0.Ref1)},
		}

		for j, seg1 := range w.Segments {
			if i == j {
				continue
			}
			for _, pt := range [2]geom.Point{seg1.P0, seg1.P1} {
				if IsInteriorAttached(seg0, pt) {
					line = append(line, pointOnLine{
						t:    geom.ParametricPosition(seg0.P0, seg0.P1, pt),
						node: b.node(pt, nil),
					})
				}
			}
		}

		sort.SliceStable(line, func(a, c int) bool { return line[a].t < line[c].t })

		for k := 0; k+1 < len(line); k++ {
			b.g.addEdge(line[k].node, line[k+1].node)
		}
	}

	return b.g
}

// addEdge links a and b symmetrically. Self loops and repeated edges are
// ignored.
func (g *Graph) addEdge(a, b int) {
	if a == b || slices.Contains(g.Nodes[a].Edges, b) {
		return
	}
	g.Nodes[a].Edges = append(g.Nodes[a].Edges, b)
	g.Nodes[b].Edges = append(g.Nodes[b].Edges, a)
}

// Wire serializes the graph back into a wire, one segment per edge.
func (g *Graph) Wire() Wire {
	var segs []Segment
	for _, u := range g.Nodes {
		for _, id := range u.Edges {
			v := g.Nodes[id]
			if v.ID > u.ID {
				segs = append(segs, Segment{P0: u.Pos, P1: v.Pos, Ref0: u.Ref, Ref1: v.Ref})
			}
		}
	}
	return Wire{ID: g.ID, Segments: segs}
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, node := range g.Nodes {
		n += len(node.Edges)
	}
	return n / 2
}

// NodeAt returns the node at pos (within geom.Epsilon).
func (g *Graph) NodeAt(pos geom.Point) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].Pos.Near(pos) {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}
