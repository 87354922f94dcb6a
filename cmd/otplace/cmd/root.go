package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	configPath string
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "otplace",
		Short: "OpenTracePlace - automatic component placement for KiCad boards",
		Long: `OpenTracePlace (otplace) spreads or clusters the footprints of a KiCad
board inside its Edge.Cuts outline with a greedy random search. Every
accepted move keeps the layout free of overlaps and inside the outline.

Examples:
  otplace place board.kicad_pcb -o placed.kicad_pcb    # Minimize wiring cost
  otplace place --objective spread --ignore "J*,H1-H4" board.kicad_pcb
  otplace check board.kicad_pcb                        # Validate a layout
  otplace score --xlsx scores.xlsx board.kicad_pcb     # Score the current layout
  otplace history --limit 10                           # Recent runs`,
		Version:       "0.3.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level)))
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default $OTPLACE_CONFIG, ./otplace.toml or ./otplace.yaml)")

	root.AddCommand(newPlaceCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newScoreCmd())
	root.AddCommand(newHistoryCmd())
	return root
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
