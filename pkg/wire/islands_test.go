package wire

import (
	"testing"

	"github.com/OpenTraceLab/wirenet/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// components counts the connected components of g with gonum as an oracle.
func components(g *Graph) int {
	ug := simple.NewUndirectedGraph()
	for _, n := range g.Nodes {
		ug.AddNode(simple.Node(n.ID))
	}
	for _, n := range g.Nodes {
		for _, e := range n.Edges {
			ug.SetEdge(simple.Edge{F: simple.Node(n.ID), T: simple.Node(e)})
		}
	}
	return len(topo.ConnectedComponents(ug))
}

func TestSplitIslands_Connected(t *testing.T) {
	g := BuildGraph(wireOf(0, seg(0, 0, 10, 0), seg(5, 0, 5, 5)))

	islands := SplitIslands(g)

	require.Len(t, islands, 1)
	assert.Same(t, g, islands[0], "a connected graph is returned unchanged")
}

func TestSplitIslands_Partition(t *testing.T) {
	g := BuildGraph(wireOf(3,
		seg(0, 0, 5, 0),
		seg(20, 0, 20, 5),
		seg(5, 0, 5, 5),
		seg(40, 40, 41, 40),
		seg(20, 5, 25, 5),
	))
	require.Equal(t, 3, components(g))

	islands := SplitIslands(g)
	require.Len(t, islands, 3)

	seen := map[geom.Key]int{}
	total := 0
	for i, island := range islands {
		assert.Equal(t, "3", island.ID)
		assert.Equal(t, 1, components(island), "island %d is connected", i)
		checkSymmetric(t, island)
		for id, n := range island.Nodes {
			assert.Equal(t, id, n.ID, "ids are contiguous from 0")
			seen[geom.KeyOf(n.Pos)]++
			total++
		}
	}
	assert.Equal(t, len(g.Nodes), total)
	for k, c := range seen {
		assert.Equal(t, 1, c, "node %v appears in exactly one island", k)
	}

	// Islands follow discovery order of their first node.
	assert.Equal(t, geom.Pt(0, 0), islands[0].Nodes[0].Pos)
	assert.Equal(t, geom.Pt(20, 0), islands[1].Nodes[0].Pos)
	assert.Equal(t, geom.Pt(40, 40), islands[2].Nodes[0].Pos)
}

func TestSplitIslands_RenumbersEdges(t *testing.T) {
	g := BuildGraph(wireOf(0, seg(0, 0, 1, 0), seg(10, 0, 11, 0), seg(11, 0, 11, 1)))

	islands := SplitIslands(g)
	require.Len(t, islands, 2)

	second := islands[1]
	require.Len(t, second.Nodes, 3)
	assert.Equal(t, edgeSet([]Segment{seg(10, 0, 11, 0), seg(11, 0, 11, 1)}), edgeSet(second.Wire().Segments))
	for _, n := range second.Nodes {
		for _, e := range n.Edges {
			assert.Less(t, e, len(second.Nodes))
		}
	}
}

func TestSplitIslands_IsolatedNode(t *testing.T) {
	g := BuildGraph(wireOf(0, seg(0, 0, 5, 0), seg(9, 9, 9, 9)))

	islands := SplitIslands(g)

	require.Len(t, islands, 2)
	assert.Empty(t, islands[1].Wire().Segments, "an isolated node serializes to no segments")
}

func TestSplitIslands_Empty(t *testing.T) {
	assert.Empty(t, SplitIslands(&Graph{ID: "0"}))
}
