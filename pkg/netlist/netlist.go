// Package netlist derives electrical nets from a reconciled layout. A wire
// joins every terminal its segment endpoints reference; wires sharing a
// terminal belong to the same net.
package netlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/OpenTraceLab/wirenet/pkg/kicad/sexp/kicadsexp"
	"github.com/OpenTraceLab/wirenet/pkg/wire"
)

// ErrNotFinalized is returned by exports before Finalize has run.
var ErrNotFinalized = errors.New("netlist: not finalized")

// Net is a connected set of terminals and the wires joining them.
type Net struct {
	ID    int                `json:"id"`
	Name  string             `json:"name"`
	Pins  []wire.TerminalRef `json:"pins"`
	Wires []string           `json:"wires"`

	// Floating is set for nets made only of wires, touching no terminal.
	Floating bool `json:"floating,omitempty"`
}

// Netlist tracks connectivity between wires and terminals using a union-find
// data structure.
type Netlist struct {
	// Union-find data structures
	parent map[string]string
	rank   map[string]int

	// Final nets after calling Finalize()
	Nets []*Net

	keys  []string                    // element keys in insertion order
	pins  map[string]wire.TerminalRef // terminal key -> ref
	wires map[string]string           // wire key -> wire id
	names map[string]string           // wire id -> net name
}

// Option configures Build.
type Option func(*Netlist)

// WithWireNames names each net after a labeled wire it contains. When several
// labeled wires share a net the smallest name wins.
func WithWireNames(names map[string]string) Option {
	return func(nl *Netlist) {
		for id, name := range names {
			nl.names[id] = name
		}
	}
}

// WireKey returns the element key of a wire.
func WireKey(id string) string { return "wire:" + id }

// TerminalKey returns the element key of a terminal.
func TerminalKey(ref wire.TerminalRef) string { return "pin:" + ref.String() }

// NewNetlist creates a netlist holding every wire and every component
// terminal of layout, each initially in its own net.
func NewNetlist(layout wire.Layout) *Netlist {
	nl := &Netlist{
		parent: make(map[string]string),
		rank:   make(map[string]int),
		pins:   make(map[string]wire.TerminalRef),
		wires:  make(map[string]string),
		names:  make(map[string]string),
	}

	for _, c := range layout.Components {
		for _, t := range c.Terminals {
			nl.addTerminal(wire.TerminalRef{ComponentID: c.ID, TerminalID: t.ID})
		}
	}
	for _, w := range layout.Wires {
		key := WireKey(w.ID)
		nl.add(key)
		nl.wires[key] = w.ID
	}

	return nl
}

// Build creates the netlist of layout, connects every wire to the terminals
// it references and finalizes it.
func Build(layout wire.Layout, opts ...Option) *Netlist {
	nl := NewNetlist(layout)
	for _, opt := range opts {
		opt(nl)
	}

	for _, w := range layout.Wires {
		wk := WireKey(w.ID)
		for _, s := range w.Segments {
			for _, ref := range []*wire.TerminalRef{s.Ref0, s.Ref1} {
				if ref == nil {
					continue
				}
				// References to terminals missing from the layout still
				// join nets.
				nl.addTerminal(*ref)
				nl.Connect(wk, TerminalKey(*ref))
			}
		}
	}

	nl.Finalize()
	return nl
}

func (nl *Netlist) add(key string) {
	if _, ok := nl.parent[key]; ok {
		return
	}
	nl.parent[key] = key
	nl.rank[key] = 0
	nl.keys = append(nl.keys, key)
}

func (nl *Netlist) addTerminal(ref wire.TerminalRef) {
	key := TerminalKey(ref)
	nl.add(key)
	nl.pins[key] = ref
}

// Connect merges the nets of elements a and b. Unknown keys are ignored.
func (nl *Netlist) Connect(a, b string) {
	if _, ok := nl.parent[a]; !ok {
		return
	}
	if _, ok := nl.parent[b]; !ok {
		return
	}

	rootA := nl.Find(a)
	rootB := nl.Find(b)
	if rootA == rootB {
		return // Already in the same net
	}

	// Union by rank
	switch {
	case nl.rank[rootA] < nl.rank[rootB]:
		nl.parent[rootA] = rootB
	case nl.rank[rootA] > nl.rank[rootB]:
		nl.parent[rootB] = rootA
	default:
		nl.parent[rootB] = rootA
		nl.rank[rootA]++
	}
}

// Find returns the representative key of the net containing key, with path
// compression. An unknown key is its own representative.
func (nl *Netlist) Find(key string) string {
	root := key
	for {
		next, ok := nl.parent[root]
		if !ok || next == root {
			break
		}
		root = next
	}

	for key != root {
		next := nl.parent[key]
		nl.parent[key] = root
		key = next
	}
	return root
}

// Connected reports whether two terminals share a net.
func (nl *Netlist) Connected(a, b wire.TerminalRef) bool {
	return nl.Find(TerminalKey(a)) == nl.Find(TerminalKey(b))
}

// Finalize groups elements into Nets. Lone terminals are not nets. Pins and
// wires are sorted, nets are ordered by their first pin (floating nets last,
// by first wire) and numbered from 1.
func (nl *Netlist) Finalize() {
	groups := make(map[string]*Net)
	var roots []string
	for _, key := range nl.keys {
		root := nl.Find(key)
		net, ok := groups[root]
		if !ok {
			net = &Net{}
			groups[root] = net
			roots = append(roots, root)
		}
		if ref, ok := nl.pins[key]; ok {
			net.Pins = append(net.Pins, ref)
		} else {
			net.Wires = append(net.Wires, nl.wires[key])
		}
	}

	nl.Nets = make([]*Net, 0, len(roots))
	for _, root := range roots {
		net := groups[root]
		if len(net.Wires) == 0 && len(net.Pins) < 2 {
			continue
		}
		sort.Slice(net.Pins, func(i, j int) bool { return lessRef(net.Pins[i], net.Pins[j]) })
		sort.Strings(net.Wires)
		net.Floating = len(net.Pins) == 0
		nl.Nets = append(nl.Nets, net)
	}

	sort.SliceStable(nl.Nets, func(i, j int) bool {
		a, b := nl.Nets[i], nl.Nets[j]
		if a.Floating != b.Floating {
			return !a.Floating
		}
		if !a.Floating {
			return lessRef(a.Pins[0], b.Pins[0])
		}
		return a.Wires[0] < b.Wires[0]
	})

	for i, net := range nl.Nets {
		net.ID = i + 1
		net.Name = nl.netName(net)
	}
}

func (nl *Netlist) netName(net *Net) string {
	var named []string
	for _, id := range net.Wires {
		if name, ok := nl.names[id]; ok {
			named = append(named, name)
		}
	}
	if len(named) > 0 {
		sort.Strings(named)
		return named[0]
	}
	return fmt.Sprintf("Net-%d", net.ID)
}

func lessRef(a, b wire.TerminalRef) bool {
	if a.ComponentID != b.ComponentID {
		return a.ComponentID < b.ComponentID
	}
	return a.TerminalID < b.TerminalID
}

// NetCount returns the number of nets.
// Only valid after calling Finalize().
func (nl *Netlist) NetCount() int {
	return len(nl.Nets)
}

// FloatingCount returns the number of nets touching no terminal.
func (nl *Netlist) FloatingCount() int {
	count := 0
	for _, net := range nl.Nets {
		if net.Floating {
			count++
		}
	}
	return count
}

// NetOf returns the net holding the given terminal, or nil.
func (nl *Netlist) NetOf(ref wire.TerminalRef) *Net {
	for _, net := range nl.Nets {
		for _, p := range net.Pins {
			if p == ref {
				return net
			}
		}
	}
	return nil
}

// ExportJSON exports the netlist to JSON format.
func (nl *Netlist) ExportJSON() ([]byte, error) {
	if nl.Nets == nil {
		return nil, ErrNotFinalized
	}

	output := struct {
		Version     string `json:"version"`
		NetCount    int    `json:"net_count"`
		Floating    int    `json:"floating_nets"`
		Nets        []*Net `json:"nets"`
		GeneratedBy string `json:"generated_by"`
	}{
		Version:     "1.0",
		NetCount:    nl.NetCount(),
		Floating:    nl.FloatingCount(),
		Nets:        nl.Nets,
		GeneratedBy: "wirenet",
	}

	return json.MarshalIndent(output, "", "  ")
}

// ExportKiCad exports the netlist to KiCad netlist format. Floating nets have
// no nodes and are omitted.
func (nl *Netlist) ExportKiCad() (string, error) {
	if nl.Nets == nil {
		return "", ErrNotFinalized
	}

	var b strings.Builder
	b.WriteString("(export (version D)\n")
	b.WriteString("  (design\n")
	b.WriteString("    (source \"wirenet\"))\n")

	var comps []string
	seen := make(map[string]bool)
	for _, net := range nl.Nets {
		for _, p := range net.Pins {
			if !seen[p.ComponentID] {
				seen[p.ComponentID] = true
				comps = append(comps, p.ComponentID)
			}
		}
	}
	sort.Strings(comps)

	b.WriteString("  (components")
	for _, c := range comps {
		fmt.Fprintf(&b, "\n    (comp (ref %s))", kicadsexp.Quote(c))
	}
	b.WriteString(")\n")

	b.WriteString("  (nets")
	for _, net := range nl.Nets {
		if net.Floating {
			continue
		}
		fmt.Fprintf(&b, "\n    (net (code %d) (name %s)", net.ID, kicadsexp.Quote(net.Name))
		for _, p := range net.Pins {
			fmt.Fprintf(&b, "\n      (node (ref %s) (pin %s))", kicadsexp.Quote(p.ComponentID), kicadsexp.Quote(p.TerminalID))
		}
		b.WriteString(")")
	}
	b.WriteString("))\n")

	return b.String(), nil
}
