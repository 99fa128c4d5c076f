// Package sexp provides typed accessors over kicadsexp trees, shared by the
// KiCad schematic importer and the wirenet layout codec.
package sexp

import "github.com/OpenTraceLab/wirenet/pkg/geom"

// At is a placement: a position and a rotation in degrees.
type At struct {
	Pos   geom.Point
	Angle float64
}

// UUID represents a unique identifier (used in KiCad v6+ files)
type UUID string

// Property represents a key-value property of a symbol.
type Property struct {
	Key   string
	Value string
}
