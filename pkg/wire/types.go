// Package wire keeps orthogonal wire nets of a schematic layout consistent
// under interactive edits.
//
// A Wire is an unordered bundle of straight segments. Every operation builds a
// transient Graph from a wire's segments, analyses or mutates it, and
// serializes it back into segments. Layouts are values: operations return new
// Layout and Wire values and never write into slices held by the caller.
//
// # Overview
//
// The edit pipeline run after each user action:
//  1. Merge every wire touching the edited wire into it
//  2. Normalize the merged wire (drop covered segments, truncate overlaps)
//  3. Bind graph nodes to the component terminals they coincide with
//  4. Split the wire into islands, one wire per connected piece
//  5. Allocate ids for the new wires from Layout.NextWireID
//
// # Usage
//
//	layout, err := wire.ApplyEditedWires(layout, wires, editedIdx)
//
//	dragged, err := wire.DragSegment(layout.Wires[i], segIdx, geom.Pt(0, 2))
//
//	moved, err := wire.MoveWiresForComponent(layout, compIdx, geom.Pt(1, 0))
package wire

import (
	"fmt"

	"github.com/OpenTraceLab/wirenet/pkg/geom"
)

// TerminalRef identifies one terminal of a placed component.
type TerminalRef struct {
	ComponentID string `json:"component"`
	TerminalID  string `json:"terminal"`
}

// String formats the reference as "component.terminal".
func (r TerminalRef) String() string {
	return fmt.Sprintf("%s.%s", r.ComponentID, r.TerminalID)
}

// Segment is a straight piece of wire. Ref0 and Ref1 are set when the
// corresponding endpoint sits on a component terminal.
type Segment struct {
	P0   geom.Point
	P1   geom.Point
	Ref0 *TerminalRef
	Ref1 *TerminalRef
}

// Seg builds an unbound segment from p0 to p1.
func Seg(p0, p1 geom.Point) Segment {
	return Segment{P0: p0, P1: p1}
}

// LenSq returns the squared length of the segment.
func (s Segment) LenSq() float64 {
	return s.P0.DistSq(s.P1)
}

// Wire is a user-level net made of straight segments.
type Wire struct {
	ID       string
	Segments []Segment
}

// Terminal is a connection point of a component, relative to its position.
type Terminal struct {
	ID     string
	Offset geom.Point
}

// Component is a placed part with terminals.
type Component struct {
	ID        string
	Pos       geom.Point
	Terminals []Terminal
}

// TerminalPos returns the absolute position of terminal t.
func (c Component) TerminalPos(t Terminal) geom.Point {
	return c.Pos.Add(t.Offset)
}

// Layout is one immutable snapshot of a schematic.
type Layout struct {
	Components []Component
	Wires      []Wire

	// NextWireID names the next wire created by a split or a draw.
	NextWireID int
}

// WireIndex returns the index of the wire with the given id, or -1.
func (l Layout) WireIndex(id string) int {
	for i, w := range l.Wires {
		if w.ID == id {
			return i
		}
	}
	return -1
}

// ComponentIndex returns the index of the component with the given id, or -1.
func (l Layout) ComponentIndex(id string) int {
	for i, c := range l.Components {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// clone copies the wire and its segment slice.
func (w Wire) clone() Wire {
	return Wire{ID: w.ID, Segments: append([]Segment(nil), w.Segments...)}
}
