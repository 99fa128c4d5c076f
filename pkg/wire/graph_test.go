package wire

import (
	"testing"

	"github.com/OpenTraceLab/wirenet/pkg/geom"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGraph_TJunction(t *testing.T) {
	w := wireOf(0, seg(0, 0, 10, 0), seg(5, 0, 5, 5))

	g := BuildGraph(w)

	want := &Graph{
		ID: "0",
		Nodes: []Node{
			{ID: 0, Pos: geom.Pt(0, 0), Edges: []int{2}},
			{ID: 1, Pos: geom.Pt(10, 0), Edges: []int{2}},
			{ID: 2, Pos: geom.Pt(5, 0), Edges: []int{0, 1, 3}},
			{ID: 3, Pos: geom.Pt(5, 5), Edges: []int{2}},
		},
	}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Errorf("BuildGraph() mismatch (-want +got):\n%s", diff)
	}

	out := g.Wire()
	assert.Len(t, out.Segments, 3, "T junction splits the through segment")
	assert.Equal(t, edgeSet([]Segment{
		seg(0, 0, 5, 0), seg(5, 0, 10, 0), seg(5, 0, 5, 5),
	}), edgeSet(out.Segments))
}

func TestBuildGraph_SharedEndpointsDeduplicate(t *testing.T) {
	w := wireOf(0, seg(0, 0, 5, 0), seg(5, 0, 5, 5), seg(5, 5.000001, 0, 5))

	g := BuildGraph(w)

	assert.Len(t, g.Nodes, 4, "positions within the key precision share a node")
	assert.Equal(t, 3, g.EdgeCount())
	checkSymmetric(t, g)
}

func TestBuildGraph_RefFirstWriterWins(t *testing.T) {
	a := seg(0, 0, 5, 0)
	a.Ref0 = ref("U1", "1")
	b := seg(0, 0, 0, 5)
	b.Ref0 = ref("U2", "7")

	g := BuildGraph(wireOf(0, a, b))

	n, ok := g.NodeAt(geom.Pt(0, 0))
	require.True(t, ok)
	require.NotNil(t, n.Ref)
	assert.Equal(t, TerminalRef{ComponentID: "U1", TerminalID: "1"}, *n.Ref)

	out := g.Wire()
	for _, s := range out.Segments {
		if s.P0.Near(geom.Pt(0, 0)) {
			assert.Equal(t, "U1.1", s.Ref0.String())
		}
	}
}

func TestBuildGraph_DegenerateSegmentHasNoEdge(t *testing.T) {
	g := BuildGraph(wireOf(0, seg(3, 3, 3, 3)))

	assert.Len(t, g.Nodes, 1)
	assert.Equal(t, 0, g.EdgeCount())
	assert.Empty(t, g.Wire().Segments)
}

func TestBuildGraph_DuplicateEdgeAddedOnce(t *testing.T) {
	// Both segments produce the sub-edge (3,0)-(10,0).
	g := BuildGraph(wireOf(0, seg(0, 0, 10, 0), seg(15, 0, 3, 0)))

	checkSymmetric(t, g)
	assert.Equal(t, 3, g.EdgeCount())
}

func TestGraphRoundTrip_OrderIndependent(t *testing.T) {
	segs := []Segment{
		seg(0, 0, 5, 0),
		seg(5, 0, 10, 0),
		seg(5, 0, 5, 5),
		seg(10, 0, 10, 8),
	}
	want := edgeSet(segs)

	for _, perm := range permutations(len(segs)) {
		in := make([]Segment, len(segs))
		for i, p := range perm {
			in[i] = segs[p]
		}
		got := BuildGraph(wireOf(1, in...)).Wire()
		assert.Equal(t, want, edgeSet(got.Segments), "order %v", perm)
		assert.Equal(t, "1", got.ID)
	}
}

func TestGraphRoundTrip_ReversedSegments(t *testing.T) {
	in := []Segment{seg(5, 0, 0, 0), seg(5, 5, 5, 0)}

	got := BuildGraph(wireOf(0, in...)).Wire()

	assert.Equal(t, edgeSet(in), edgeSet(got.Segments))
}

// permutations returns every ordering of 0..n-1.
func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for i := 0; i <= len(p); i++ {
			q := make([]int, 0, n)
			q = append(q, p[:i]...)
			q = append(q, n-1)
			q = append(q, p[i:]...)
			out = append(out, q)
		}
	}
	return out
}
