package schematic

import (
	"strconv"
	"strings"

	"github.com/OpenTraceLab/wirenet/pkg/geom"
	"github.com/OpenTraceLab/wirenet/pkg/kicad/sexp"
)

// Type aliases for shared types from sexp package
type (
	At       = sexp.At
	UUID     = sexp.UUID
	Property = sexp.Property
)

// Schematic holds the connectivity-relevant content of a KiCad schematic file
type Schematic struct {
	Version      int         // File format version
	Generator    string      // Generator info (e.g., "eeschema")
	UUID         UUID        // Schematic UUID
	LibSymbols   []LibSymbol // Embedded library symbols
	Symbols      []Symbol    // Symbol instances on the schematic
	Wires        []Wire      // Wire connections
	Junctions    []Junction  // Wire junctions
	Labels       []Label     // Local labels
	GlobalLabels []Label     // Global labels
}

// LibSymbol represents an embedded library symbol definition
type LibSymbol struct {
	Name  string       // Symbol name (e.g., "Device:R")
	Units []SymbolUnit // Units; pins listed directly under the symbol go to unit 0
}

// SymbolUnit is a nested "Name_U_S" symbol: unit U (0 for all units) in body
// style S (0 for all styles).
type SymbolUnit struct {
	Name  string
	Unit  int
	Style int
	Pins  []Pin
}

// Pin is a library pin. Position is the connection point in library
// coordinates (Y up).
type Pin struct {
	Type     string     // Pin type (input, output, passive, etc.)
	Position geom.Point // Connection point
	Angle    float64    // Pin angle (0, 90, 180, 270)
	Length   float64
	Name     string
	Number   string
}

// Symbol represents a symbol instance placed on the schematic
type Symbol struct {
	LibID      string     // Library identifier (e.g., "Device:R")
	At         At         // Position and rotation on the sheet
	Mirror     string     // Mirror axis ("x", "y" or empty)
	Unit       int        // Unit number (for multi-unit symbols)
	Style      int        // Body style (1 normal, 2 De Morgan)
	UUID       UUID       // Instance UUID
	Properties []Property // Instance properties (Reference, Value, etc.)
}

// Wire represents a wire polyline
type Wire struct {
	Points []geom.Point // Wire points (at least 2)
	UUID   UUID
}

// Junction marks a connection point between crossing wires
type Junction struct {
	Position geom.Point
	UUID     UUID
}

// Label is a local or global net label anchored on a wire.
type Label struct {
	Text     string
	Position geom.Point
	UUID     UUID
}

// Property returns the value of the named property, or "".
func (s Symbol) Property(key string) string {
	for _, p := range s.Properties {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// Reference returns the Reference property (e.g. "R1").
func (s Symbol) Reference() string {
	return s.Property("Reference")
}

// LibSymbol returns the embedded library symbol with the given name.
func (s *Schematic) LibSymbol(name string) *LibSymbol {
	for i := range s.LibSymbols {
		if s.LibSymbols[i].Name == name {
			return &s.LibSymbols[i]
		}
	}
	return nil
}

// GetSymbol finds a symbol by reference designator
func (s *Schematic) GetSymbol(ref string) *Symbol {
	for i := range s.Symbols {
		if s.Symbols[i].Reference() == ref {
			return &s.Symbols[i]
		}
	}
	return nil
}

// GetAllReferences returns all symbol reference designators, once each.
func (s *Schematic) GetAllReferences() []string {
	seen := make(map[string]bool)
	var refs []string
	for _, sym := range s.Symbols {
		ref := sym.Reference()
		if ref != "" && !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

// PinsFor returns the pins drawn for the given unit and body style.
func (l *LibSymbol) PinsFor(unit, style int) []Pin {
	var pins []Pin
	for _, u := range l.Units {
		if (u.Unit == 0 || u.Unit == unit) && (u.Style == 0 || u.Style == style) {
			pins = append(pins, u.Pins...)
		}
	}
	return pins
}

// parseUnitName splits "R_1_2" into unit 1 and style 2. Names without the
// suffix belong to every unit and style.
func parseUnitName(name string) (unit, style int) {
	i := strings.LastIndexByte(name, '_')
	if i < 0 {
		return 0, 0
	}
	s, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return 0, 0
	}
	rest := name[:i]
	j := strings.LastIndexByte(rest, '_')
	if j < 0 {
		return 0, 0
	}
	u, err := strconv.Atoi(rest[j+1:])
	if err != nil {
		return 0, 0
	}
	return u, s
}
