package layoutfile

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/wirenet/pkg/geom"
	"github.com/OpenTraceLab/wirenet/pkg/kicad/sexp/kicadsexp"
	"github.com/OpenTraceLab/wirenet/pkg/wire"
)

// WriteFile writes layout to path, replacing any existing file.
func WriteFile(path string, layout wire.Layout) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create layout: %w", err)
	}
	if err := Write(f, layout); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write encodes layout as a document. Components and wires keep their order,
// so the output is deterministic and decodes to the same layout.
func Write(w io.Writer, layout wire.Layout) error {
	var b strings.Builder

	fmt.Fprintf(&b, "(%s\n", rootNode)
	fmt.Fprintf(&b, "  (version %d)\n", Version)
	fmt.Fprintf(&b, "  (next_wire_id %d)", layout.NextWireID)

	for _, c := range layout.Components {
		fmt.Fprintf(&b, "\n  (component %s (at %s)", kicadsexp.Quote(c.ID), xy(c.Pos))
		for _, t := range c.Terminals {
			fmt.Fprintf(&b, "\n    (terminal %s (at %s))", kicadsexp.Quote(t.ID), xy(t.Offset))
		}
		b.WriteString(")")
	}

	for _, wr := range layout.Wires {
		fmt.Fprintf(&b, "\n  (wire %s", kicadsexp.Quote(wr.ID))
		for _, s := range wr.Segments {
			fmt.Fprintf(&b, "\n    (segment (start %s%s) (end %s%s))",
				xy(s.P0), refSuffix(s.Ref0), xy(s.P1), refSuffix(s.Ref1))
		}
		b.WriteString(")")
	}
	b.WriteString(")\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func xy(p geom.Point) string {
	return formatFloat(p.X) + " " + formatFloat(p.Y)
}

// formatFloat prints the shortest representation that parses back exactly.
func formatFloat(v float64) string {
	if v == 0 {
		return "0" // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func refSuffix(r *wire.TerminalRef) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf(" (ref %s %s)", kicadsexp.Quote(r.ComponentID), kicadsexp.Quote(r.TerminalID))
}
