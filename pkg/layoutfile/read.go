// Package layoutfile reads and writes wirenet layout documents, an
// S-expression format in the style of KiCad files:
//
//	(wirenet_layout
//	  (version 1)
//	  (next_wire_id 2)
//	  (component "U1" (at 0 0)
//	    (terminal "1" (at -2 0)))
//	  (wire "0"
//	    (segment (start -2 0 (ref "U1" "1")) (end 5 0))))
package layoutfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/OpenTraceLab/wirenet/pkg/geom"
	"github.com/OpenTraceLab/wirenet/pkg/kicad/sexp"
	"github.com/OpenTraceLab/wirenet/pkg/kicad/sexp/kicadsexp"
	"github.com/OpenTraceLab/wirenet/pkg/wire"
)

// Version is the document version written by Write.
const Version = 1

const rootNode = "wirenet_layout"

var (
	// ErrFormat is returned for documents that are not wirenet layouts.
	ErrFormat = errors.New("layoutfile: not a wirenet layout")
	// ErrVersion is returned for unsupported document versions.
	ErrVersion = errors.New("layoutfile: unsupported version")
	// ErrDuplicateID is returned when two wires or two components share an id.
	ErrDuplicateID = errors.New("layoutfile: duplicate id")
)

// ReadFile reads the layout document at path.
func ReadFile(path string) (wire.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return wire.Layout{}, fmt.Errorf("failed to open layout: %w", err)
	}
	defer f.Close()

	layout, err := Read(f)
	if err != nil {
		return wire.Layout{}, fmt.Errorf("%s: %w", path, err)
	}
	return layout, nil
}

// Read decodes one layout document. A missing next_wire_id is derived from
// the largest numeric wire id.
func Read(r io.Reader) (wire.Layout, error) {
	exprs, err := kicadsexp.Parse(r)
	if err != nil {
		return wire.Layout{}, err
	}
	if len(exprs) != 1 {
		return wire.Layout{}, fmt.Errorf("%w: expected one root expression, got %d", ErrFormat, len(exprs))
	}
	root := exprs[0]

	if name, err := sexp.GetNodeName(root); err != nil || name != rootNode {
		return wire.Layout{}, fmt.Errorf("%w: root is %v", ErrFormat, headOf(root))
	}

	versionNode, ok := sexp.FindNode(root, "version")
	if !ok {
		return wire.Layout{}, nodeError(root, "missing (version N)")
	}
	version, err := sexp.GetInt(versionNode, 1)
	if err != nil {
		return wire.Layout{}, nodeError(versionNode, "version: %v", err)
	}
	if version != Version {
		return wire.Layout{}, fmt.Errorf("%w: %d", ErrVersion, version)
	}

	var layout wire.Layout

	seenComp := make(map[string]bool)
	for _, cn := range sexp.FindAllNodes(root, "component") {
		c, err := readComponent(cn)
		if err != nil {
			return wire.Layout{}, err
		}
		if seenComp[c.ID] {
			return wire.Layout{}, fmt.Errorf("%w: component %q", ErrDuplicateID, c.ID)
		}
		seenComp[c.ID] = true
		layout.Components = append(layout.Components, c)
	}

	seenWire := make(map[string]bool)
	nextID := 0
	for _, wn := range sexp.FindAllNodes(root, "wire") {
		w, err := readWire(wn)
		if err != nil {
			return wire.Layout{}, err
		}
		if seenWire[w.ID] {
			return wire.Layout{}, fmt.Errorf("%w: wire %q", ErrDuplicateID, w.ID)
		}
		seenWire[w.ID] = true
		if n, err := strconv.Atoi(w.ID); err == nil && n >= nextID {
			nextID = n + 1
		}
		layout.Wires = append(layout.Wires, w)
	}

	layout.NextWireID = nextID
	if nn, ok := sexp.FindNode(root, "next_wire_id"); ok {
		n, err := sexp.GetInt(nn, 1)
		if err != nil {
			return wire.Layout{}, nodeError(nn, "next_wire_id: %v", err)
		}
		if n < nextID {
			return wire.Layout{}, nodeError(nn, "next_wire_id %d collides with wire %d", n, nextID-1)
		}
		layout.NextWireID = n
	}

	return layout, nil
}

func readComponent(node kicadsexp.Sexp) (wire.Component, error) {
	id, err := sexp.GetString(node, 1)
	if err != nil {
		return wire.Component{}, nodeError(node, "component id: %v", err)
	}
	c := wire.Component{ID: id}

	atNode, ok := sexp.FindNode(node, "at")
	if !ok {
		return wire.Component{}, nodeError(node, "component %q has no (at X Y)", id)
	}
	at, err := sexp.GetAt(atNode)
	if err != nil {
		return wire.Component{}, nodeError(atNode, "component %q: %v", id, err)
	}
	c.Pos = at.Pos

	for _, tn := range sexp.FindAllNodes(node, "terminal") {
		tid, err := sexp.GetString(tn, 1)
		if err != nil {
			return wire.Component{}, nodeError(tn, "terminal id: %v", err)
		}
		t := wire.Terminal{ID: tid}
		if atNode, ok := sexp.FindNode(tn, "at"); ok {
			at, err := sexp.GetAt(atNode)
			if err != nil {
				return wire.Component{}, nodeError(atNode, "terminal %s.%s: %v", id, tid, err)
			}
			t.Offset = at.Pos
		}
		c.Terminals = append(c.Terminals, t)
	}
	return c, nil
}

func readWire(node kicadsexp.Sexp) (wire.Wire, error) {
	id, err := sexp.GetString(node, 1)
	if err != nil {
		return wire.Wire{}, nodeError(node, "wire id: %v", err)
	}
	w := wire.Wire{ID: id}

	for _, sn := range sexp.FindAllNodes(node, "segment") {
		startNode, ok := sexp.FindNode(sn, "start")
		if !ok {
			return wire.Wire{}, nodeError(sn, "wire %q segment has no start", id)
		}
		endNode, ok := sexp.FindNode(sn, "end")
		if !ok {
			return wire.Wire{}, nodeError(sn, "wire %q segment has no end", id)
		}

		var s wire.Segment
		if s.P0, s.Ref0, err = readEndpoint(startNode); err != nil {
			return wire.Wire{}, nodeError(startNode, "wire %q: %v", id, err)
		}
		if s.P1, s.Ref1, err = readEndpoint(endNode); err != nil {
			return wire.Wire{}, nodeError(endNode, "wire %q: %v", id, err)
		}
		w.Segments = append(w.Segments, s)
	}
	return w, nil
}

// readEndpoint reads (start X Y [(ref "C" "T")]).
func readEndpoint(node kicadsexp.Sexp) (geom.Point, *wire.TerminalRef, error) {
	p, err := sexp.GetXY(node)
	if err != nil {
		return geom.Point{}, nil, err
	}
	refNode, ok := sexp.FindNode(node, "ref")
	if !ok {
		return p, nil, nil
	}
	comp, err := sexp.GetString(refNode, 1)
	if err != nil {
		return geom.Point{}, nil, fmt.Errorf("ref component: %w", err)
	}
	term, err := sexp.GetString(refNode, 2)
	if err != nil {
		return geom.Point{}, nil, fmt.Errorf("ref terminal: %w", err)
	}
	return p, &wire.TerminalRef{ComponentID: comp, TerminalID: term}, nil
}

func headOf(s kicadsexp.Sexp) string {
	if name, err := sexp.GetNodeName(s); err == nil {
		return name
	}
	return s.String()
}

// nodeError prefixes a message with the line and column of node.
func nodeError(node kicadsexp.Sexp, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if l, ok := node.(*kicadsexp.List); ok {
		return fmt.Errorf("%d:%d: %s", l.Line, l.Col, msg)
	}
	return errors.New(msg)
}
