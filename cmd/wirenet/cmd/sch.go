package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OpenTraceLab/wirenet/internal/ctxlog"
	"github.com/OpenTraceLab/wirenet/pkg/kicad/schematic"
	"github.com/OpenTraceLab/wirenet/pkg/netlist"
	"github.com/spf13/cobra"
)

var schCmd = &cobra.Command{
	Use:   "sch",
	Short: "KiCad schematic file operations",
	Long:  `Commands for working with KiCad schematic files (.kicad_sch)`,
}

var schInfoCmd = &cobra.Command{
	Use:   "info <schematic_file>",
	Short: "Show schematic information",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchInfo,
}

var schImportCmd = &cobra.Command{
	Use:   "import <schematic_file>",
	Short: "Convert a schematic into a wirenet layout",
	Long: `Convert symbols into components with terminals at their pin positions
and wire polylines into wires, then reconcile the whole layout.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchImport,
}

var schNetsCmd = &cobra.Command{
	Use:   "nets <schematic_file>",
	Short: "Extract the netlist of a schematic",
	Long: `Import the schematic and extract its nets. Nets carrying a local or
global label are named after it.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchNets,
}

func init() {
	rootCmd.AddCommand(schCmd)
	schCmd.AddCommand(schInfoCmd)
	schCmd.AddCommand(schImportCmd)
	schCmd.AddCommand(schNetsCmd)

	schNetsCmd.Flags().StringVar(&netsFormat, "format", "", "output format: json or kicad (default from config)")
}

func runSchInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]
	sch, err := schematic.ParseFile(filename)
	if err != nil {
		return fmt.Errorf("error parsing schematic: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Schematic: %s\n", filename)
	fmt.Fprintf(out, "Version: %d\n", sch.Version)
	fmt.Fprintf(out, "Generator: %s\n", sch.Generator)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Statistics:")
	fmt.Fprintf(out, "  Components: %d\n", len(sch.Symbols))
	fmt.Fprintf(out, "  Library symbols: %d\n", len(sch.LibSymbols))
	fmt.Fprintf(out, "  Wires: %d\n", len(sch.Wires))
	fmt.Fprintf(out, "  Junctions: %d\n", len(sch.Junctions))
	fmt.Fprintf(out, "  Labels: %d\n", len(sch.Labels))
	fmt.Fprintf(out, "  Global labels: %d\n", len(sch.GlobalLabels))

	refs := sch.GetAllReferences()
	if len(refs) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Components:")

		// Group by reference prefix
		byPrefix := make(map[string][]string)
		for _, ref := range refs {
			prefix := refPrefix(ref)
			byPrefix[prefix] = append(byPrefix[prefix], ref)
		}

		var prefixes []string
		for p := range byPrefix {
			prefixes = append(prefixes, p)
		}
		sort.Strings(prefixes)

		for _, prefix := range prefixes {
			group := byPrefix[prefix]
			sort.Strings(group)
			fmt.Fprintf(out, "  %s: %s\n", prefix, strings.Join(group, ", "))
		}
	}
	return nil
}

func runSchImport(cmd *cobra.Command, args []string) error {
	sch, err := schematic.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("error parsing schematic: %w", err)
	}

	layout, err := schematic.ToLayout(sch, cfg.WireConfig())
	if err != nil {
		return err
	}

	ctxlog.FromContext(cmd.Context()).Debug("imported schematic",
		"file", args[0],
		"symbols", len(sch.Symbols),
		"polylines", len(sch.Wires),
		"wires", len(layout.Wires),
	)
	return writeLayout(cmd, layout)
}

func runSchNets(cmd *cobra.Command, args []string) error {
	sch, err := schematic.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("error parsing schematic: %w", err)
	}

	layout, err := schematic.ToLayout(sch, cfg.WireConfig())
	if err != nil {
		return err
	}

	names := schematic.WireLabels(sch, layout)
	return exportNets(cmd, netlist.Build(layout, netlist.WithWireNames(names)))
}

func refPrefix(ref string) string {
	// Extract prefix (letters before numbers)
	for i, c := range ref {
		if c >= '0' && c <= '9' {
			return ref[:i]
		}
	}
	return ref
}
