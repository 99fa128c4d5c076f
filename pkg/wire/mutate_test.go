package wire

import (
	"errors"
	"testing"

	"github.com/OpenTraceLab/wirenet/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDragSegment(t *testing.T) {
	tests := []struct {
		name  string
		in    []Segment
		idx   int
		delta geom.Point
		want  []Segment
	}{
		{
			name:  "colinear run moves rigidly",
			in:    []Segment{seg(0, 0, 5, 0), seg(5, 0, 10, 0), seg(5, 0, 5, 5)},
			idx:   0,
			delta: geom.Pt(0, 2),
			want:  []Segment{seg(0, 2, 5, 2), seg(5, 2, 10, 2), seg(5, 2, 5, 5)},
		},
		{
			name:  "perpendicular bend pivots",
			in:    []Segment{seg(0, 0, 5, 0), seg(5, 0, 5, 5), seg(5, 5, 10, 5)},
			idx:   0,
			delta: geom.Pt(0, 2),
			want:  []Segment{seg(0, 2, 5, 2), seg(5, 2, 5, 5), seg(5, 5, 10, 5)},
		},
		{
			name:  "vertical segment dragged sideways",
			in:    []Segment{seg(0, 0, 5, 0), seg(5, 0, 5, 5), seg(5, 5, 10, 5)},
			idx:   1,
			delta: geom.Pt(1, 0),
			want:  []Segment{seg(0, 0, 6, 0), seg(6, 0, 6, 5), seg(6, 5, 10, 5)},
		},
		{
			name:  "fractional delta snaps to grid",
			in:    []Segment{seg(0, 0, 5, 0), seg(5, 0, 5, 5)},
			idx:   0,
			delta: geom.Pt(0, 1.6),
			want:  []Segment{seg(0, 2, 5, 2), seg(5, 2, 5, 5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := wireOf(2, tt.in...)

			got, err := DragSegment(w, tt.idx, tt.delta)
			require.NoError(t, err)

			assert.Equal(t, "2", got.ID)
			assert.Equal(t, edgeSet(tt.want), edgeSet(got.Segments))
		})
	}
}

func TestDragSegment_SegmentNotInGraph(t *testing.T) {
	// The T junction at (5,0) splits segment 0, so no graph edge joins its
	// endpoints.
	w := wireOf(0, seg(0, 0, 10, 0), seg(5, 0, 5, 5))

	_, err := DragSegment(w, 0, geom.Pt(0, 1))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSegmentNotFound))
}

func TestDragSegment_IndexOutOfRange(t *testing.T) {
	w := wireOf(0, seg(0, 0, 5, 0))

	_, err := DragSegment(w, 1, geom.Pt(0, 1))
	assert.True(t, errors.Is(err, ErrSegmentIndex))
}

func TestMoveWiresForComponent(t *testing.T) {
	bound := seg(0, 0, 5, 0)
	bound.Ref0 = ref("U1", "1")
	other := seg(20, 0, 25, 0)
	other.Ref0 = ref("U2", "1")

	layout := Layout{
		Components: []Component{
			{ID: "U1", Terminals: []Terminal{{ID: "1"}}},
			{ID: "U2", Pos: geom.Pt(20, 0), Terminals: []Terminal{{ID: "1"}}},
		},
		Wires: []Wire{wireOf(0, bound), wireOf(1, other)},
	}

	got, err := MoveWiresForComponent(layout, 0, geom.Pt(0, 1))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, edgeSet([]Segment{seg(0, 1, 5, 0)}), edgeSet(got[0].Segments))
	assert.Equal(t, "U1.1", got[0].Segments[0].Ref0.String(), "moved endpoint stays bound")
	assert.Equal(t, edgeSet([]Segment{seg(20, 0, 25, 0)}), edgeSet(got[1].Segments))
	assert.Equal(t, geom.Pt(0, 0), layout.Wires[0].Segments[0].P0, "input is not modified")
}

func TestMoveWiresForComponent_IndexOutOfRange(t *testing.T) {
	_, err := MoveWiresForComponent(Layout{}, 0, geom.Pt(1, 0))
	assert.True(t, errors.Is(err, ErrComponentIndex))
}
