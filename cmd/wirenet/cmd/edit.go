package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/wirenet/internal/ctxlog"
	"github.com/OpenTraceLab/wirenet/pkg/editscript"
	"github.com/OpenTraceLab/wirenet/pkg/layoutfile"
	"github.com/OpenTraceLab/wirenet/pkg/wire"
	"github.com/spf13/cobra"
)

var (
	// Edit flags
	wireID      string
	segmentIdx  int
	componentID string
	deltaX      float64
	deltaY      float64
)

var applyCmd = &cobra.Command{
	Use:   "apply <layout>",
	Short: "Reconcile one wire with the rest of the layout",
	Long: `Normalize the given wire, merge every wire that touches it, split it
into connected pieces and rebind its endpoints to component terminals.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

var dragCmd = &cobra.Command{
	Use:   "drag <layout>",
	Short: "Drag a wire segment",
	Long: `Drag one segment of a wire by (dx, dy). The colinear run containing
the segment moves rigidly, perpendicular neighbors stretch, and the
result is reconciled.`,
	Args: cobra.ExactArgs(1),
	RunE: runDrag,
}

var moveCmd = &cobra.Command{
	Use:   "move <layout>",
	Short: "Move a component and the wire endpoints bound to it",
	Args:  cobra.ExactArgs(1),
	RunE:  runMove,
}

var replayCmd = &cobra.Command{
	Use:   "replay <layout> <script>",
	Short: "Apply an edit script to a layout",
	Long: `Apply every command of an edit script in order.

Script commands:
  place "U1" at (0, 0) pins { "1" (-2, 0) "2" (2, 0) }
  draw (0, 0) (5, 0) (5, 5)
  drag wire "0" segment 1 by (0, 2)
  move "U1" by (1, 0)
  erase wire "0" segment 2`,
	Args: cobra.ExactArgs(2),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(dragCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(replayCmd)

	applyCmd.Flags().StringVar(&wireID, "wire", "", "id of the edited wire (required)")
	applyCmd.MarkFlagRequired("wire")

	dragCmd.Flags().StringVar(&wireID, "wire", "", "id of the wire (required)")
	dragCmd.Flags().IntVar(&segmentIdx, "segment", 0, "segment index within the wire")
	dragCmd.Flags().Float64Var(&deltaX, "dx", 0, "horizontal offset")
	dragCmd.Flags().Float64Var(&deltaY, "dy", 0, "vertical offset")
	dragCmd.MarkFlagRequired("wire")

	moveCmd.Flags().StringVar(&componentID, "component", "", "id of the component (required)")
	moveCmd.Flags().Float64Var(&deltaX, "dx", 0, "horizontal offset")
	moveCmd.Flags().Float64Var(&deltaY, "dy", 0, "vertical offset")
	moveCmd.MarkFlagRequired("component")
}

func runApply(cmd *cobra.Command, args []string) error {
	layout, err := layoutfile.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("error reading layout: %w", err)
	}

	idx := layout.WireIndex(wireID)
	if idx < 0 {
		return fmt.Errorf("wire %q not found", wireID)
	}

	before := len(layout.Wires)
	out, err := wire.NewReconciler(cfg.WireConfig()).ApplyEditedWires(layout, layout.Wires, idx)
	if err != nil {
		return err
	}

	ctxlog.FromContext(cmd.Context()).Debug("reconciled wire",
		"wire", wireID,
		"wires_before", before,
		"wires_after", len(out.Wires),
	)
	return writeLayout(cmd, out)
}

func runDrag(cmd *cobra.Command, args []string) error {
	return runCommand(cmd, args[0], &editscript.Command{
		Drag: &editscript.Drag{
			Wire:    wireID,
			Segment: segmentIdx,
			By:      editscript.Point{X: deltaX, Y: deltaY},
		},
	})
}

func runMove(cmd *cobra.Command, args []string) error {
	return runCommand(cmd, args[0], &editscript.Command{
		Move: &editscript.Move{
			Component: componentID,
			By:        editscript.Point{X: deltaX, Y: deltaY},
		},
	})
}

// runCommand applies a single edit to the layout file at path.
func runCommand(cmd *cobra.Command, path string, edit *editscript.Command) error {
	layout, err := layoutfile.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading layout: %w", err)
	}

	script := &editscript.Script{Commands: []*editscript.Command{edit}}
	out, err := editscript.Run(cmd.Context(), layout, script, cfg.WireConfig())
	if err != nil {
		return err
	}
	return writeLayout(cmd, out)
}

func runReplay(cmd *cobra.Command, args []string) error {
	layout, err := layoutfile.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("error reading layout: %w", err)
	}

	script, err := editscript.ParseFile(args[1])
	if err != nil {
		return fmt.Errorf("error parsing script: %w", err)
	}

	out, err := editscript.Run(cmd.Context(), layout, script, cfg.WireConfig())
	if err != nil {
		return err
	}

	ctxlog.FromContext(cmd.Context()).Info("replayed script",
		"script", args[1],
		"commands", len(script.Commands),
		"wires", len(out.Wires),
	)
	return writeLayout(cmd, out)
}
