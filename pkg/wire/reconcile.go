package wire

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/wirenet/pkg/geom"
)

// Config controls reconciler policy.
type Config struct {
	// KeepEmptyWires retains islands that serialize to zero segments (an
	// isolated endpoint) as empty wires instead of discarding them.
	KeepEmptyWires bool
}

// DefaultConfig returns the policy used by the package-level functions.
func DefaultConfig() *Config {
	return &Config{
		KeepEmptyWires: false,
	}
}

// Reconciler runs the merge/split pipeline with a fixed Config.
type Reconciler struct {
	cfg Config
}

// NewReconciler creates a reconciler. A nil cfg means DefaultConfig.
func NewReconciler(cfg *Config) *Reconciler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Reconciler{cfg: *cfg}
}

var defaultReconciler = NewReconciler(nil)

// FixWires reconciles the wire at editIdx with the rest of wires using the
// default policy. See Reconciler.FixWires.
func FixWires(layout Layout, wires []Wire, editIdx int) (edited, created []Wire, err error) {
	return defaultReconciler.FixWires(layout, wires, editIdx)
}

// ApplyEditedWires reconciles the edited wire and returns a new layout holding
// the result, using the default policy.
func ApplyEditedWires(layout Layout, wires []Wire, editIdx int) (Layout, error) {
	return defaultReconciler.ApplyEditedWires(layout, wires, editIdx)
}

// ReconcileAll reconciles every wire of the layout once, using the default
// policy.
func ReconcileAll(layout Layout) (Layout, error) {
	return defaultReconciler.ReconcileAll(layout)
}

// ApplyEditedWires runs FixWires and assigns fresh ids from layout.NextWireID
// to the wires created by a split. The returned layout shares Components with
// the input.
func (r *Reconciler) ApplyEditedWires(layout Layout, wires []Wire, editIdx int) (Layout, error) {
	edited, created, err := r.FixWires(layout, wires, editIdx)
	if err != nil {
		return Layout{}, err
	}

	next := layout.NextWireID
	all := make([]Wire, 0, len(edited)+len(created))
	all = append(all, edited...)
	for _, w := range created {
		w.ID = strconv.Itoa(next)
		next++
		all = append(all, w)
	}

	return Layout{
		Components: layout.Components,
		Wires:      all,
		NextWireID: next,
	}, nil
}

// FixWires merges every wire touching wires[editIdx] into it, rebinds its
// endpoints to component terminals and splits it into islands. edited is the
// wire list with the edited slot replaced by the first island (or removed when
// nothing is left); created holds the remaining islands with empty ids. The
// input slice is not modified.
func (r *Reconciler) FixWires(layout Layout, wires []Wire, editIdx int) (edited, created []Wire, err error) {
	if editIdx < 0 || editIdx >= len(wires) {
		return nil, nil, fmt.Errorf("%w: %d of %d", ErrWireIndex, editIdx, len(wires))
	}

	editWire := wires[editIdx]

	merge := make([]bool, len(wires))
	anyMerge := false
	for i, w := range wires {
		if i != editIdx && wiresTouch(w, editWire) {
			merge[i] = true
			anyMerge = true
		}
	}

	var list []Wire
	if anyMerge {
		merged := editWire.clone()
		newIdx := editIdx
		list = make([]Wire, 0, len(wires))
		for i, w := range wires {
			if !merge[i] {
				list = append(list, w)
				continue
			}
			merged.Segments = append(merged.Segments, w.Segments...)
			if i < editIdx {
				newIdx--
			}
		}
		editIdx = newIdx
		list[editIdx] = Normalize(merged)
	} else {
		list = append([]Wire(nil), wires...)
	}

	g := BuildGraph(list[editIdx])
	bindTerminals(g, terminalPositions(layout))

	var pieces []Wire
	for _, island := range SplitIslands(g) {
		w := island.Wire()
		if len(w.Segments) == 0 && !r.cfg.KeepEmptyWires {
			continue
		}
		pieces = append(pieces, w)
	}

	if len(pieces) == 0 {
		edited = append(list[:editIdx:editIdx], list[editIdx+1:]...)
		return edited, nil, nil
	}

	list[editIdx] = pieces[0]
	for _, w := range pieces[1:] {
		w.ID = ""
		created = append(created, w)
	}
	return list, created, nil
}

// ReconcileAll reconciles each wire present in the layout, in list order.
// Wires merged away by an earlier step are skipped.
func (r *Reconciler) ReconcileAll(layout Layout) (Layout, error) {
	ids := make([]string, len(layout.Wires))
	for i, w := range layout.Wires {
		ids[i] = w.ID
	}

	for _, id := range ids {
		idx := layout.WireIndex(id)
		if idx < 0 {
			continue
		}
		next, err := r.ApplyEditedWires(layout, layout.Wires, idx)
		if err != nil {
			return Layout{}, fmt.Errorf("reconcile wire %q: %w", id, err)
		}
		layout = next
	}
	return layout, nil
}

// terminalPositions maps the key of every absolute terminal position to the
// terminal found there. A later component wins on a shared position.
func terminalPositions(layout Layout) map[geom.Key]*TerminalRef {
	m := make(map[geom.Key]*TerminalRef)
	for _, c := range layout.Components {
		for _, t := range c.Terminals {
			m[geom.KeyOf(c.TerminalPos(t))] = &TerminalRef{ComponentID: c.ID, TerminalID: t.ID}
		}
	}
	return m
}

// bindTerminals sets every node's reference from the terminal map, clearing
// references of nodes that no longer sit on a terminal.
func bindTerminals(g *Graph, terms map[geom.Key]*TerminalRef) {
	for i := range g.Nodes {
		g.Nodes[i].Ref = terms[geom.KeyOf(g.Nodes[i].Pos)]
	}
}
