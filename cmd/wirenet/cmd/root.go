package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/OpenTraceLab/wirenet/internal/config"
	"github.com/OpenTraceLab/wirenet/internal/ctxlog"
	"github.com/OpenTraceLab/wirenet/pkg/layoutfile"
	"github.com/OpenTraceLab/wirenet/pkg/wire"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	outputPath string

	// Loaded in PersistentPreRunE
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "wirenet",
	Short: "Orthogonal wire net editing and connectivity tools",
	Long: `wirenet keeps the wires of a schematic layout consistent while they are
edited: touching wires merge, disconnected pieces split, T junctions are
materialized and endpoints bind to component terminals.

Examples:
  wirenet apply board.wnl --wire 3                 # Reconcile one wire
  wirenet drag board.wnl --wire 0 --segment 1 --dy 2
  wirenet replay board.wnl edits.wns -o out.wnl    # Apply an edit script
  wirenet nets board.wnl --format kicad            # Extract the netlist
  wirenet sch import design.kicad_sch -o board.wnl # Import a KiCad schematic`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		logger := slog.New(cfg.NewHandler(cmd.ErrOrStderr(), verbose))
		slog.SetDefault(logger)
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "write the resulting layout to this file instead of stdout")
}

// writeLayout writes layout to --output, or to stdout when it is unset.
func writeLayout(cmd *cobra.Command, layout wire.Layout) error {
	if outputPath == "" {
		return layoutfile.Write(cmd.OutOrStdout(), layout)
	}
	if err := layoutfile.WriteFile(outputPath, layout); err != nil {
		return err
	}
	ctxlog.FromContext(cmd.Context()).Info("wrote layout",
		"path", outputPath,
		"wires", len(layout.Wires),
		"components", len(layout.Components),
	)
	return nil
}
