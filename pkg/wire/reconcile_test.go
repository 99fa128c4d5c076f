package wire

import (
	"errors"
	"testing"

	"github.com/OpenTraceLab/wirenet/pkg/geom"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEditedWires_TouchMerge(t *testing.T) {
	layout := Layout{
		Wires: []Wire{
			wireOf(0, seg(0, 0, 5, 0)),
			wireOf(1, seg(5, 0, 5, 5)),
		},
		NextWireID: 2,
	}

	got, err := ApplyEditedWires(layout, layout.Wires, 0)
	require.NoError(t, err)

	require.Len(t, got.Wires, 1)
	merged := got.Wires[0]
	assert.Equal(t, "0", merged.ID)
	assert.Len(t, merged.Segments, 2)
	assert.Equal(t, 2, degreeAt(t, BuildGraph(merged), geom.Pt(5, 0)))
	assert.Equal(t, 2, got.NextWireID)
}

func TestApplyEditedWires_MergeAdjustsEditedIndex(t *testing.T) {
	layout := Layout{
		Wires: []Wire{
			wireOf(0, seg(5, 0, 5, 5)),
			wireOf(1, seg(50, 50, 60, 50)),
			wireOf(2, seg(0, 0, 10, 0)),
		},
		NextWireID: 3,
	}

	got, err := ApplyEditedWires(layout, layout.Wires, 2)
	require.NoError(t, err)

	require.Len(t, got.Wires, 2)
	assert.Equal(t, "1", got.Wires[0].ID, "untouched wire keeps its place")
	assert.Equal(t, "2", got.Wires[1].ID, "merged wire keeps the edited id")
	assert.Equal(t, edgeSet([]Segment{
		seg(0, 0, 5, 0), seg(5, 0, 10, 0), seg(5, 0, 5, 5),
	}), edgeSet(got.Wires[1].Segments))
}

func TestApplyEditedWires_SplitAllocatesIDs(t *testing.T) {
	layout := Layout{
		Wires: []Wire{
			wireOf(4, seg(0, 0, 5, 0), seg(10, 0, 15, 0), seg(30, 0, 30, 5)),
		},
		NextWireID: 7,
	}

	got, err := ApplyEditedWires(layout, layout.Wires, 0)
	require.NoError(t, err)

	require.Len(t, got.Wires, 3)
	assert.Equal(t, "4", got.Wires[0].ID)
	assert.Equal(t, "7", got.Wires[1].ID)
	assert.Equal(t, "8", got.Wires[2].ID)
	assert.Equal(t, 9, got.NextWireID)

	assert.Equal(t, edgeSet([]Segment{seg(0, 0, 5, 0)}), edgeSet(got.Wires[0].Segments))
	assert.Equal(t, edgeSet([]Segment{seg(10, 0, 15, 0)}), edgeSet(got.Wires[1].Segments))
	assert.Equal(t, edgeSet([]Segment{seg(30, 0, 30, 5)}), edgeSet(got.Wires[2].Segments))
}

func TestApplyEditedWires_BindsTerminals(t *testing.T) {
	layout := Layout{
		Components: []Component{{
			ID:  "R1",
			Pos: geom.Pt(5, 5),
			Terminals: []Terminal{
				{ID: "1", Offset: geom.Pt(-5, -5)},
				{ID: "2", Offset: geom.Pt(5, 0)},
			},
		}},
		Wires: []Wire{wireOf(0, seg(0, 0, 5, 0))},
	}

	got, err := ApplyEditedWires(layout, layout.Wires, 0)
	require.NoError(t, err)

	require.Len(t, got.Wires, 1)
	require.Len(t, got.Wires[0].Segments, 1)
	s := got.Wires[0].Segments[0]
	require.NotNil(t, s.Ref0)
	assert.Equal(t, TerminalRef{ComponentID: "R1", TerminalID: "1"}, *s.Ref0)
	assert.Nil(t, s.Ref1)
	assert.Equal(t, layout.Components, got.Components)
}

func TestApplyEditedWires_ClearsStaleRefs(t *testing.T) {
	stale := seg(1, 1, 4, 1)
	stale.Ref0 = ref("R1", "1")
	layout := Layout{Wires: []Wire{wireOf(0, stale)}}

	got, err := ApplyEditedWires(layout, layout.Wires, 0)
	require.NoError(t, err)

	assert.Nil(t, got.Wires[0].Segments[0].Ref0, "endpoint off every terminal carries no reference")
}

func TestApplyEditedWires_DoesNotMutateInput(t *testing.T) {
	wires := []Wire{
		wireOf(0, seg(0, 0, 5, 0)),
		wireOf(1, seg(5, 0, 5, 5)),
		wireOf(2, seg(20, 0, 25, 0), seg(40, 0, 45, 0)),
	}
	before := make([]Wire, len(wires))
	for i, w := range wires {
		before[i] = w.clone()
	}
	layout := Layout{Wires: wires, NextWireID: 3}

	_, err := ApplyEditedWires(layout, wires, 0)
	require.NoError(t, err)
	_, err = ApplyEditedWires(layout, wires, 2)
	require.NoError(t, err)

	if diff := cmp.Diff(before, wires); diff != "" {
		t.Errorf("input wires changed (-before +after):\n%s", diff)
	}
	assert.Equal(t, 3, layout.NextWireID)
}

func TestApplyEditedWires_NoChange(t *testing.T) {
	layout := Layout{
		Wires: []Wire{
			wireOf(0, seg(0, 0, 5, 0), seg(5, 0, 5, 5)),
			wireOf(1, seg(20, 0, 25, 0)),
		},
		NextWireID: 2,
	}

	got, err := ApplyEditedWires(layout, layout.Wires, 1)
	require.NoError(t, err)

	if diff := cmp.Diff(layout, got); diff != "" {
		t.Errorf("unexpected change (-want +got):\n%s", diff)
	}
}

func TestApplyEditedWires_IndexOutOfRange(t *testing.T) {
	layout := Layout{Wires: []Wire{wireOf(0, seg(0, 0, 1, 0))}}

	_, err := ApplyEditedWires(layout, layout.Wires, 1)
	assert.True(t, errors.Is(err, ErrWireIndex))

	_, err = ApplyEditedWires(layout, layout.Wires, -1)
	assert.True(t, errors.Is(err, ErrWireIndex))
}

func TestReconciler_EmptyIslandPolicy(t *testing.T) {
	layout := Layout{
		Wires:      []Wire{wireOf(0, seg(0, 0, 5, 0), seg(9, 9, 9, 9))},
		NextWireID: 1,
	}

	got, err := NewReconciler(nil).ApplyEditedWires(layout, layout.Wires, 0)
	require.NoError(t, err)
	assert.Len(t, got.Wires, 1, "empty islands are discarded by default")
	assert.Equal(t, 1, got.NextWireID)

	keep, err := NewReconciler(&Config{KeepEmptyWires: true}).ApplyEditedWires(layout, layout.Wires, 0)
	require.NoError(t, err)
	require.Len(t, keep.Wires, 2)
	assert.Equal(t, "1", keep.Wires[1].ID)
	assert.Empty(t, keep.Wires[1].Segments)
	assert.Equal(t, 2, keep.NextWireID)
}

func TestApplyEditedWires_WireWithNothingLeftIsRemoved(t *testing.T) {
	layout := Layout{
		Wires: []Wire{
			wireOf(0, seg(0, 0, 5, 0)),
			wireOf(1, seg(3, 3, 3, 3)),
			wireOf(2, seg(20, 0, 25, 0)),
		},
		NextWireID: 3,
	}

	got, err := ApplyEditedWires(layout, layout.Wires, 1)
	require.NoError(t, err)

	require.Len(t, got.Wires, 2)
	assert.Equal(t, "0", got.Wires[0].ID)
	assert.Equal(t, "2", got.Wires[1].ID)
}

func TestReconcileAll_MergesChain(t *testing.T) {
	layout := Layout{
		Wires: []Wire{
			wireOf(0, seg(0, 0, 5, 0)),
			wireOf(1, seg(50, 0, 55, 0)),
			wireOf(2, seg(5, 0, 5, 5)),
			wireOf(3, seg(5, 5, 10, 5)),
		},
		NextWireID: 4,
	}

	got, err := ReconcileAll(layout)
	require.NoError(t, err)

	require.Len(t, got.Wires, 2)
	var chain Wire
	for _, w := range got.Wires {
		if len(w.Segments) == 3 {
			chain = w
		}
	}
	assert.Equal(t, edgeSet([]Segment{
		seg(0, 0, 5, 0), seg(5, 0, 5, 5), seg(5, 5, 10, 5),
	}), edgeSet(chain.Segments))
}
