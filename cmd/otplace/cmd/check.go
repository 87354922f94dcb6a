package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePlace/internal/config"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/placement"
)

func newCheckCmd() *cobra.Command {
	f := &boardFlags{}

	cmd := &cobra.Command{
		Use:   "check <board_file>",
		Short: "Check that a layout is valid",
		Long: `Check that every movable footprint lies inside the board outline and
overlaps no other footprint. Exits with an error when the layout is invalid.

Footprints that cannot fit inside the outline shrunk by the margin are
reported as warnings.

Examples:
  otplace check board.kicad_pcb
  otplace check --collision separate --ignore "J*" board.kicad_pcb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0], f)
		},
	}

	f.register(cmd)
	return cmd
}

func runCheck(cmd *cobra.Command, path string, f *boardFlags) error {
	out := cmd.OutOrStdout()

	s, err := openBoard(cmd, path, func(cfg *config.Config) { f.apply(cmd, cfg) })
	if err != nil {
		return err
	}

	if err := s.board.CheckFit(); err != nil {
		printWarning(out, "%v", err)
	}

	report := placement.Validate(s.board, s.opts.Policy)
	if report.Valid {
		printSuccess(out, "%s is valid (%d footprints, %d ignored)", path, s.board.Len(), len(s.opts.IgnoredIDs))
		return nil
	}

	printError(out, "%s has %d violations", path, len(report.Violations))
	reportViolations(cmd, report)
	return fmt.Errorf("invalid layout: %d violations", len(report.Violations))
}
