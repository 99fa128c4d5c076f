package schematic

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/OpenTraceLab/wirenet/pkg/geom"
	"github.com/OpenTraceLab/wirenet/pkg/wire"
)

// ErrMissingLibSymbol is returned when a symbol instance names a library
// symbol the file does not embed.
var ErrMissingLibSymbol = errors.New("schematic: missing library symbol")

// coordScale is the number of steps per mm pin positions are rounded to.
const coordScale = 1e4

// ToLayout converts the schematic into a reconciled wire layout. Every symbol
// becomes a component named by its reference whose terminals are its pins.
// Units sharing a reference merge into one component, keeping the first
// terminal seen per pin number. Every wire polyline becomes a wire, split at
// junctions. cfg selects the reconciler policy; nil means the default.
func ToLayout(sch *Schematic, cfg *wire.Config) (wire.Layout, error) {
	var layout wire.Layout

	for _, sym := range sch.Symbols {
		lib := sch.LibSymbol(sym.LibID)
		if lib == nil {
			return wire.Layout{}, fmt.Errorf("%w: %q (symbol %s)", ErrMissingLibSymbol, sym.LibID, sym.UUID)
		}

		id := sym.Reference()
		if id == "" {
			id = string(sym.UUID)
		}

		idx := layout.ComponentIndex(id)
		if idx < 0 {
			layout.Components = append(layout.Components, wire.Component{ID: id, Pos: sym.At.Pos})
			idx = len(layout.Components) - 1
		}
		comp := &layout.Components[idx]

		for _, pin := range lib.PinsFor(sym.Unit, sym.Style) {
			if hasTerminal(*comp, pin.Number) {
				continue
			}
			abs := sym.At.Pos.Add(PinOffset(pin.Position, sym.At.Angle, sym.Mirror))
			comp.Terminals = append(comp.Terminals, wire.Terminal{
				ID:     pin.Number,
				Offset: roundPoint(abs.Sub(comp.Pos)),
			})
		}
	}

	junctions := make([]geom.Point, len(sch.Junctions))
	for i, j := range sch.Junctions {
		junctions[i] = j.Position
	}

	for _, w := range sch.Wires {
		var segs []wire.Segment
		for i := 0; i+1 < len(w.Points); i++ {
			segs = append(segs, splitAtJunctions(wire.Seg(w.Points[i], w.Points[i+1]), junctions)...)
		}
		layout.Wires = append(layout.Wires, wire.Wire{
			ID:       strconv.Itoa(layout.NextWireID),
			Segments: segs,
		})
		layout.NextWireID++
	}

	reconciled, err := wire.NewReconciler(cfg).ReconcileAll(layout)
	if err != nil {
		return wire.Layout{}, fmt.Errorf("reconcile imported wires: %w", err)
	}
	return reconciled, nil
}

// PinOffset maps a library pin position (Y up) to a sheet offset (Y down) for
// a symbol rotated counter-clockwise by angle degrees and mirrored about the
// given axis ("x" or "y"). Mirroring is applied before rotation.
func PinOffset(pin geom.Point, angle float64, mirror string) geom.Point {
	p := geom.Pt(pin.X, -pin.Y)
	switch mirror {
	case "x":
		p.Y = -p.Y
	case "y":
		p.X = -p.X
	}
	// A counter-clockwise turn on a Y-down sheet is a clockwise turn in
	// r2's Y-up frame.
	p = p.Rotate(-angle*math.Pi/180, geom.Point{})
	return roundPoint(p)
}

func hasTerminal(c wire.Component, id string) bool {
	for _, t := range c.Terminals {
		if t.ID == id {
			return true
		}
	}
	return false
}

func roundPoint(p geom.Point) geom.Point {
	return geom.Pt(roundCoord(p.X), roundCoord(p.Y))
}

func roundCoord(v float64) float64 {
	r := math.Round(v*coordScale) / coordScale
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

// splitAtJunctions cuts seg at every junction lying in its interior so that
// crossing wires marked with a junction share a node.
func splitAtJunctions(seg wire.Segment, junctions []geom.Point) []wire.Segment {
	type cut struct {
		t float64
		p geom.Point
	}
	var cuts []cut
	for _, j := range junctions {
		if wire.IsInteriorAttached(seg, j) {
			cuts = append(cuts, cut{t: geom.ParametricPosition(seg.P0, seg.P1, j), p: j})
		}
	}
	if len(cuts) == 0 {
		return []wire.Segment{seg}
	}
	sort.Slice(cuts, func(a, b int) bool { return cuts[a].t < cuts[b].t })

	out := make([]wire.Segment, 0, len(cuts)+1)
	start := seg.P0
	for _, c := range cuts {
		out = append(out, wire.Seg(start, c.p))
		start = c.p
	}
	return append(out, wire.Seg(start, seg.P1))
}

// WireLabels maps the id of every layout wire carrying a label to the label
// text. Global labels win over local ones on the same wire.
func WireLabels(sch *Schematic, layout wire.Layout) map[string]string {
	names := make(map[string]string)
	assign := func(labels []Label) {
		for _, l := range labels {
			for _, w := range layout.Wires {
				if onWire(w, l.Position) {
					names[w.ID] = l.Text
					break
				}
			}
		}
	}
	assign(sch.Labels)
	assign(sch.GlobalLabels)
	return names
}

func onWire(w wire.Wire, p geom.Point) bool {
	for _, s := range w.Segments {
		if wire.IsAttached(s, p) {
			return true
		}
	}
	return false
}
