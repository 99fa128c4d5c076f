package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OpenTraceLab/wirenet/pkg/layoutfile"
	"github.com/OpenTraceLab/wirenet/pkg/netlist"
	"github.com/OpenTraceLab/wirenet/pkg/wire"
	"github.com/spf13/cobra"
)

var netsFormat string

var netsCmd = &cobra.Command{
	Use:   "nets <layout>",
	Short: "Extract the netlist of a layout",
	Long: `Group terminals into nets through the wires that reference them.

Formats:
  json   - nets with pins, wires and floating flag
  kicad  - KiCad netlist (floating nets omitted)`,
	Args: cobra.ExactArgs(1),
	RunE: runNets,
}

var infoCmd = &cobra.Command{
	Use:   "info <layout>",
	Short: "Show layout information",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(netsCmd)
	rootCmd.AddCommand(infoCmd)

	netsCmd.Flags().StringVar(&netsFormat, "format", "", "output format: json or kicad (default from config)")
}

func runNets(cmd *cobra.Command, args []string) error {
	layout, err := layoutfile.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("error reading layout: %w", err)
	}
	return exportNets(cmd, netlist.Build(layout))
}

// exportNets prints nl in the --format given, or the configured format.
func exportNets(cmd *cobra.Command, nl *netlist.Netlist) error {
	format := strings.ToLower(netsFormat)
	if format == "" {
		format = cfg.OutputFormat
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		data, err := nl.ExportJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case "kicad":
		data, err := nl.ExportKiCad()
		if err != nil {
			return err
		}
		fmt.Fprint(out, data)
	default:
		return fmt.Errorf("unknown format %q (want json or kicad)", format)
	}
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	layout, err := layoutfile.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("error reading layout: %w", err)
	}

	out := cmd.OutOrStdout()
	terminals, segments := 0, 0
	for _, c := range layout.Components {
		terminals += len(c.Terminals)
	}
	for _, w := range layout.Wires {
		segments += len(w.Segments)
	}
	nl := netlist.Build(layout)

	fmt.Fprintf(out, "Layout: %s\n", args[0])
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Statistics:")
	fmt.Fprintf(out, "  Components: %d\n", len(layout.Components))
	fmt.Fprintf(out, "  Terminals: %d\n", terminals)
	fmt.Fprintf(out, "  Wires: %d\n", len(layout.Wires))
	fmt.Fprintf(out, "  Segments: %d\n", segments)
	fmt.Fprintf(out, "  Next wire id: %d\n", layout.NextWireID)
	fmt.Fprintf(out, "  Nets: %d (%d floating)\n", nl.NetCount(), nl.FloatingCount())

	if len(layout.Wires) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Wires:")
		for _, w := range layout.Wires {
			refs := boundTerminals(w)
			if len(refs) == 0 {
				fmt.Fprintf(out, "  %s: %d segments\n", w.ID, len(w.Segments))
				continue
			}
			fmt.Fprintf(out, "  %s: %d segments -> %s\n", w.ID, len(w.Segments), strings.Join(refs, ", "))
		}
	}
	return nil
}

// boundTerminals lists the distinct terminals referenced by w, sorted.
func boundTerminals(w wire.Wire) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, s := range w.Segments {
		for _, r := range []*wire.TerminalRef{s.Ref0, s.Ref1} {
			if r == nil || seen[r.String()] {
				continue
			}
			seen[r.String()] = true
			refs = append(refs, r.String())
		}
	}
	sort.Strings(refs)
	return refs
}
