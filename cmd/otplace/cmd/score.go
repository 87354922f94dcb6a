package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePlace/internal/config"
	"github.com/OpenTraceLab/OpenTracePlace/internal/report"
)

type scoreFlags struct {
	boardFlags

	nets bool
	xlsx string
}

func newScoreCmd() *cobra.Command {
	f := &scoreFlags{}

	cmd := &cobra.Command{
		Use:   "score <board_file>",
		Short: "Score the current layout with both objectives",
		Long: `Print the spread and wiring cost of the current layout.

With --nets the wiring cost is broken down per net. With --xlsx a workbook
with summary, footprint and net sheets is written.

Examples:
  otplace score board.kicad_pcb
  otplace score --nets --xlsx scores.xlsx board.kicad_pcb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, args[0], f)
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&f.nets, "nets", false, "show the wiring cost of every net")
	cmd.Flags().StringVar(&f.xlsx, "xlsx", "", "write the scores to an Excel workbook")
	return cmd
}

func runScore(cmd *cobra.Command, path string, f *scoreFlags) error {
	out := cmd.OutOrStdout()

	s, err := openBoard(cmd, path, func(cfg *config.Config) { f.apply(cmd, cfg) })
	if err != nil {
		return err
	}

	scores := report.Collect(filepath.Base(path), s.board)
	printSuccess(out, "Scored %s", path)
	printKeyValue(out, "footprints", len(scores.Footprints))
	printKeyValue(out, "nets", len(scores.Nets))
	printKeyValue(out, "spread", fmt.Sprintf("%.3f mm", scores.Spread))
	printKeyValue(out, "wiring cost", fmt.Sprintf("%.3f mm", scores.WiringCost))

	if f.nets {
		rows := make([][]string, len(scores.Nets))
		for i, n := range scores.Nets {
			rows[i] = []string{n.Name, fmt.Sprint(n.Footprints), fmt.Sprint(n.Pads), fmt.Sprintf("%.3f", n.WiringCost)}
		}
		printTable(out, []string{"Net", "Footprints", "Pads", "Wiring (mm)"}, rows)
	}

	if f.xlsx != "" {
		if err := scores.SaveWorkbook(f.xlsx); err != nil {
			return err
		}
		printSuccess(out, "Wrote %s", f.xlsx)
	}
	return nil
}
