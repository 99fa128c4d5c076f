package schematic

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/wirenet/pkg/geom"
	"github.com/OpenTraceLab/wirenet/pkg/kicad/sexp"
	"github.com/OpenTraceLab/wirenet/pkg/kicad/sexp/kicadsexp"
)

// Minimum supported KiCad version for schematics (6.0 = 20211014)
const MinSupportedVersion = 20211014

var (
	// ErrNotSchematic is returned when the root node is not (kicad_sch ...).
	ErrNotSchematic = errors.New("schematic: not a KiCad schematic")
	// ErrUnsupportedVersion is returned for files older than KiCad 6.
	ErrUnsupportedVersion = errors.New("schematic: unsupported KiCad version")
)

// ParseFile reads and parses a KiCad schematic file
func ParseFile(filename string) (*Schematic, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads and parses a KiCad schematic from an io.Reader
func Parse(r io.Reader) (*Schematic, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}

	if len(sexps) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrNotSchematic)
	}

	// The root should be a (kicad_sch ...) expression
	root := sexps[0]

	rootName, err := sexp.GetNodeName(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSchematic, err)
	}
	if rootName != "kicad_sch" {
		return nil, fmt.Errorf("%w: expected 'kicad_sch', got '%s'", ErrNotSchematic, rootName)
	}

	sch := &Schematic{UUID: sexp.GetUUID(root)}

	if err := parseHeader(root, sch); err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	if libSymbolsNode, found := sexp.FindNode(root, "lib_symbols"); found {
		if sch.LibSymbols, err = parseLibSymbols(libSymbolsNode); err != nil {
			return nil, err
		}
	}

	if sch.Symbols, err = parseSymbols(root); err != nil {
		return nil, err
	}
	if sch.Wires, err = parseWires(root); err != nil {
		return nil, err
	}
	if sch.Junctions, err = parseJunctions(root); err != nil {
		return nil, err
	}
	if sch.Labels, err = parseLabels(root, "label"); err != nil {
		return nil, err
	}
	if sch.GlobalLabels, err = parseLabels(root, "global_label"); err != nil {
		return nil, err
	}

	return sch, nil
}

// parseHeader extracts version and generator information
func parseHeader(root kicadsexp.Sexp, sch *Schematic) error {
	versionNode, found := sexp.FindNode(root, "version")
	if !found {
		return fmt.Errorf("missing required 'version' field")
	}

	ver, err := sexp.GetInt(versionNode, 1)
	if err != nil {
		return fmt.Errorf("failed to parse version: %w", err)
	}
	if ver < MinSupportedVersion {
		return fmt.Errorf("%w: %d (minimum required: %d / KiCad 6.0)", ErrUnsupportedVersion, ver, MinSupportedVersion)
	}
	sch.Version = ver

	if genNode, found := sexp.FindNode(root, "generator"); found {
		sch.Generator, _ = sexp.GetString(genNode, 1)
	}

	return nil
}

// parseLibSymbols parses embedded library symbols
func parseLibSymbols(node kicadsexp.Sexp) ([]LibSymbol, error) {
	symbolNodes := sexp.FindAllNodes(node, "symbol")
	symbols := make([]LibSymbol, 0, len(symbolNodes))

	for _, symNode := range symbolNodes {
		sym, err := parseLibSymbol(symNode)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}

	return symbols, nil
}

// parseLibSymbol parses a single library symbol definition. Pins are kept per
// nested unit; pins placed directly under the symbol form an all-units unit.
func parseLibSymbol(node kicadsexp.Sexp) (LibSymbol, error) {
	sym := LibSymbol{}
	sym.Name, _ = sexp.GetString(node, 1)

	pins, err := parsePins(node)
	if err != nil {
		return LibSymbol{}, fmt.Errorf("symbol %q: %w", sym.Name, err)
	}
	if len(pins) > 0 {
		sym.Units = append(sym.Units, SymbolUnit{Name: sym.Name, Pins: pins})
	}

	for _, unitNode := range sexp.FindAllNodes(node, "symbol") {
		unit := SymbolUnit{}
		unit.Name, _ = sexp.GetString(unitNode, 1)
		unit.Unit, unit.Style = parseUnitName(unit.Name)
		if unit.Pins, err = parsePins(unitNode); err != nil {
			return LibSymbol{}, fmt.Errorf("symbol %q: %w", unit.Name, err)
		}
		sym.Units = append(sym.Units, unit)
	}

	return sym, nil
}

func parsePins(node kicadsexp.Sexp) ([]Pin, error) {
	var pins []Pin
	for _, pn := range sexp.FindAllNodes(node, "pin") {
		pin, err := parsePin(pn)
		if err != nil {
			return nil, err
		}
		pins = append(pins, pin)
	}
	return pins, nil
}

// parsePin parses a pin definition. The number is required since terminals
// are keyed on it.
func parsePin(node kicadsexp.Sexp) (Pin, error) {
	pin := Pin{}

	// Pin type (input, output, etc.)
	pin.Type, _ = sexp.GetString(node, 1)

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return Pin{}, positionError(node, "pin has no (at X Y)")
	}
	at, err := sexp.GetAt(atNode)
	if err != nil {
		return Pin{}, positionError(atNode, "pin position: %v", err)
	}
	pin.Position = at.Pos
	pin.Angle = at.Angle

	if lenNode, found := sexp.FindNode(node, "length"); found {
		if pin.Length, err = sexp.GetFloat(lenNode, 1); err != nil {
			return Pin{}, positionError(lenNode, "pin length: %v", err)
		}
	}

	if nameNode, found := sexp.FindNode(node, "name"); found {
		if pin.Name, err = sexp.GetString(nameNode, 1); err != nil {
			return Pin{}, positionError(nameNode, "pin name: %v", err)
		}
	}

	numNode, found := sexp.FindNode(node, "number")
	if !found {
		return Pin{}, positionError(node, "pin has no (number ...)")
	}
	if pin.Number, err = sexp.GetString(numNode, 1); err != nil {
		return Pin{}, positionError(numNode, "pin number: %v", err)
	}
	if pin.Number == "" {
		return Pin{}, positionError(numNode, "empty pin number")
	}

	return pin, nil
}

// parseSymbols parses symbol instances
func parseSymbols(root kicadsexp.Sexp) ([]Symbol, error) {
	symbolNodes := sexp.FindAllNodes(root, "symbol")
	symbols := make([]Symbol, 0, len(symbolNodes))

	for _, symNode := range symbolNodes {
		sym, err := parseSymbol(symNode)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}

	return symbols, nil
}

// parseSymbol parses a single symbol instance
func parseSymbol(node kicadsexp.Sexp) (Symbol, error) {
	sym := Symbol{
		Unit:  1,
		Style: 1,
		UUID:  sexp.GetUUID(node),
	}

	if libNode, found := sexp.FindNode(node, "lib_id"); found {
		sym.LibID, _ = sexp.GetString(libNode, 1)
	}

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return Symbol{}, positionError(node, "symbol %q has no position", sym.LibID)
	}
	at, err := sexp.GetAt(atNode)
	if err != nil {
		return Symbol{}, positionError(node, "symbol %q: %v", sym.LibID, err)
	}
	sym.At = at

	if mirrorNode, found := sexp.FindNode(node, "mirror"); found {
		sym.Mirror, _ = sexp.GetString(mirrorNode, 1)
	}

	if unitNode, found := sexp.FindNode(node, "unit"); found {
		sym.Unit, _ = sexp.GetInt(unitNode, 1)
	}

	// KiCad 6/7 write (convert N); KiCad 8 writes (body_style N).
	for _, key := range []string{"convert", "body_style"} {
		if styleNode, found := sexp.FindNode(node, key); found {
			sym.Style, _ = sexp.GetInt(styleNode, 1)
		}
	}

	for _, pn := range sexp.FindAllNodes(node, "property") {
		if prop, err := sexp.GetProperty(pn); err == nil {
			sym.Properties = append(sym.Properties, prop)
		}
	}

	return sym, nil
}

// parseWires parses wire connections
func parseWires(root kicadsexp.Sexp) ([]Wire, error) {
	wireNodes := sexp.FindAllNodes(root, "wire")
	wires := make([]Wire, 0, len(wireNodes))

	for _, wn := range wireNodes {
		w := Wire{UUID: sexp.GetUUID(wn)}

		if ptsNode, found := sexp.FindNode(wn, "pts"); found {
			for _, xy := range sexp.FindAllNodes(ptsNode, "xy") {
				pos, err := sexp.GetXY(xy)
				if err != nil {
					return nil, positionError(xy, "wire point: %v", err)
				}
				w.Points = append(w.Points, pos)
			}
		}
		if len(w.Points) < 2 {
			return nil, positionError(wn, "wire has %d points, want at least 2", len(w.Points))
		}

		wires = append(wires, w)
	}

	return wires, nil
}

// parseJunctions parses wire junctions
func parseJunctions(root kicadsexp.Sexp) ([]Junction, error) {
	juncNodes := sexp.FindAllNodes(root, "junction")
	junctions := make([]Junction, 0, len(juncNodes))

	for _, jn := range juncNodes {
		pos, err := nodePosition(jn)
		if err != nil {
			return nil, err
		}
		junctions = append(junctions, Junction{Position: pos, UUID: sexp.GetUUID(jn)})
	}

	return junctions, nil
}

// parseLabels parses labels of the given kind ("label" or "global_label")
func parseLabels(root kicadsexp.Sexp, kind string) ([]Label, error) {
	labelNodes := sexp.FindAllNodes(root, kind)
	labels := make([]Label, 0, len(labelNodes))

	for _, ln := range labelNodes {
		text, err := sexp.GetString(ln, 1)
		if err != nil {
			return nil, positionError(ln, "%s text: %v", kind, err)
		}
		pos, err := nodePosition(ln)
		if err != nil {
			return nil, err
		}
		labels = append(labels, Label{Text: text, Position: pos, UUID: sexp.GetUUID(ln)})
	}

	return labels, nil
}

// nodePosition reads the (at X Y) child of node.
func nodePosition(node kicadsexp.Sexp) (geom.Point, error) {
	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return geom.Point{}, positionError(node, "missing (at X Y)")
	}
	at, err := sexp.GetAt(atNode)
	if err != nil {
		return geom.Point{}, positionError(node, "%v", err)
	}
	return at.Pos, nil
}

// positionError prefixes a message with the source position of node.
func positionError(node kicadsexp.Sexp, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if l, ok := node.(*kicadsexp.List); ok {
		return fmt.Errorf("%d:%d: %s", l.Line, l.Col, msg)
	}
	return errors.New(msg)
}
