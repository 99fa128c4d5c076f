package editscript

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/wirenet/internal/ctxlog"
	"github.com/OpenTraceLab/wirenet/pkg/geom"
	"github.com/OpenTraceLab/wirenet/pkg/wire"
)

var (
	// ErrUnknownWire is returned when a command names a wire not in the layout.
	ErrUnknownWire = errors.New("editscript: unknown wire")
	// ErrUnknownComponent is returned when a command names a missing component.
	ErrUnknownComponent = errors.New("editscript: unknown component")
	// ErrDuplicateComponent is returned when place reuses a component id.
	ErrDuplicateComponent = errors.New("editscript: duplicate component")
)

// Run applies every command of script to layout in order and returns the
// final layout. cfg selects the reconciler policy; nil means the default.
// Errors name the position of the failing command.
func Run(ctx context.Context, layout wire.Layout, script *Script, cfg *wire.Config) (wire.Layout, error) {
	logger := ctxlog.FromContext(ctx)
	r := wire.NewReconciler(cfg)

	for _, cmd := range script.Commands {
		if err := ctx.Err(); err != nil {
			return wire.Layout{}, err
		}

		next, err := apply(r, layout, cmd)
		if err != nil {
			// Commands built in code rather than parsed have no position.
			if cmd.Pos.Line == 0 {
				return wire.Layout{}, fmt.Errorf("%s: %w", cmd.Name(), err)
			}
			return wire.Layout{}, fmt.Errorf("%s: %s: %w", cmd.Pos, cmd.Name(), err)
		}
		layout = next

		logger.Debug("applied edit",
			"line", cmd.Pos.Line,
			"op", cmd.Name(),
			"wires", len(layout.Wires),
			"components", len(layout.Components),
		)
	}
	return layout, nil
}

func apply(r *wire.Reconciler, layout wire.Layout, cmd *Command) (wire.Layout, error) {
	switch {
	case cmd.Place != nil:
		return place(r, layout, cmd.Place)
	case cmd.Draw != nil:
		return draw(r, layout, cmd.Draw)
	case cmd.Drag != nil:
		return drag(r, layout, cmd.Drag)
	case cmd.Move != nil:
		return move(r, layout, cmd.Move)
	case cmd.Erase != nil:
		return erase(r, layout, cmd.Erase)
	}
	return layout, nil
}

// place adds the component and rebinds wires already ending on its terminals.
func place(r *wire.Reconciler, layout wire.Layout, p *Place) (wire.Layout, error) {
	if layout.ComponentIndex(p.ID) >= 0 {
		return wire.Layout{}, fmt.Errorf("%w: %q", ErrDuplicateComponent, p.ID)
	}

	c := wire.Component{ID: p.ID, Pos: p.At.point()}
	for _, pin := range p.Pins {
		c.Terminals = append(c.Terminals, wire.Terminal{ID: pin.ID, Offset: pin.Offset.point()})
	}

	comps := make([]wire.Component, 0, len(layout.Components)+1)
	comps = append(comps, layout.Components...)
	comps = append(comps, c)
	layout.Components = comps

	var touched []string
	for _, w := range layout.Wires {
		if endsOnTerminal(w, c) {
			touched = append(touched, w.ID)
		}
	}
	return reconcileWires(r, layout, touched)
}

// draw creates a wire through the points, named from NextWireID.
func draw(r *wire.Reconciler, layout wire.Layout, d *Draw) (wire.Layout, error) {
	w := wire.Wire{ID: strconv.Itoa(layout.NextWireID)}
	for i := 0; i+1 < len(d.Points); i++ {
		w.Segments = append(w.Segments, wire.Seg(d.Points[i].point(), d.Points[i+1].point()))
	}

	wires := make([]wire.Wire, 0, len(layout.Wires)+1)
	wires = append(wires, layout.Wires...)
	wires = append(wires, w)

	layout.Wires = wires
	layout.NextWireID++
	return r.ApplyEditedWires(layout, wires, len(wires)-1)
}

func drag(r *wire.Reconciler, layout wire.Layout, d *Drag) (wire.Layout, error) {
	idx := layout.WireIndex(d.Wire)
	if idx < 0 {
		return wire.Layout{}, fmt.Errorf("%w: %q", ErrUnknownWire, d.Wire)
	}

	dragged, err := wire.DragSegment(layout.Wires[idx], d.Segment, d.By.point())
	if err != nil {
		return wire.Layout{}, err
	}

	wires := append([]wire.Wire(nil), layout.Wires...)
	wires[idx] = dragged
	return r.ApplyEditedWires(layout, wires, idx)
}

// move shifts the bound wire endpoints with the component, snaps the
// component to the grid and reconciles every wire that followed it.
func move(r *wire.Reconciler, layout wire.Layout, m *Move) (wire.Layout, error) {
	idx := layout.ComponentIndex(m.Component)
	if idx < 0 {
		return wire.Layout{}, fmt.Errorf("%w: %q", ErrUnknownComponent, m.Component)
	}
	delta := m.By.point()

	var affected []string
	for _, w := range layout.Wires {
		if boundTo(w, m.Component) {
			affected = append(affected, w.ID)
		}
	}

	wires, err := wire.MoveWiresForComponent(layout, idx, delta)
	if err != nil {
		return wire.Layout{}, err
	}

	comps := append([]wire.Component(nil), layout.Components...)
	comps[idx].Pos = geom.Snap(comps[idx].Pos.Add(delta))

	moved := wire.Layout{Components: comps, Wires: wires, NextWireID: layout.NextWireID}
	return reconcileWires(r, moved, affected)
}

// erase removes one segment and reconciles the rest of the wire, which may
// split it.
func erase(r *wire.Reconciler, layout wire.Layout, e *Erase) (wire.Layout, error) {
	idx := layout.WireIndex(e.Wire)
	if idx < 0 {
		return wire.Layout{}, fmt.Errorf("%w: %q", ErrUnknownWire, e.Wire)
	}
	w := layout.Wires[idx]
	if e.Segment < 0 || e.Segment >= len(w.Segments) {
		return wire.Layout{}, fmt.Errorf("%w: %d of %d", wire.ErrSegmentIndex, e.Segment, len(w.Segments))
	}

	segs := make([]wire.Segment, 0, len(w.Segments)-1)
	segs = append(segs, w.Segments[:e.Segment]...)
	segs = append(segs, w.Segments[e.Segment+1:]...)

	wires := append([]wire.Wire(nil), layout.Wires...)
	wires[idx] = wire.Wire{ID: w.ID, Segments: segs}
	return r.ApplyEditedWires(layout, wires, idx)
}

// reconcileWires reconciles the named wires in order, skipping any merged
// away by an earlier one.
func reconcileWires(r *wire.Reconciler, layout wire.Layout, ids []string) (wire.Layout, error) {
	for _, id := range ids {
		idx := layout.WireIndex(id)
		if idx < 0 {
			continue
		}
		next, err := r.ApplyEditedWires(layout, layout.Wires, idx)
		if err != nil {
			return wire.Layout{}, err
		}
		layout = next
	}
	return layout, nil
}

func boundTo(w wire.Wire, compID string) bool {
	for _, s := range w.Segments {
		if (s.Ref0 != nil && s.Ref0.ComponentID == compID) || (s.Ref1 != nil && s.Ref1.ComponentID == compID) {
			return true
		}
	}
	return false
}

func endsOnTerminal(w wire.Wire, c wire.Component) bool {
	for _, s := range w.Segments {
		for _, t := range c.Terminals {
			pos := c.TerminalPos(t)
			if s.P0.Near(pos) || s.P1.Near(pos) {
				return true
			}
		}
	}
	return false
}
