package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePlace/internal/config"
	"github.com/OpenTraceLab/OpenTracePlace/internal/history"
	"github.com/OpenTraceLab/OpenTracePlace/internal/report"
	"github.com/OpenTraceLab/OpenTracePlace/internal/ui"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/placement"
)

type placeFlags struct {
	boardFlags

	output       string
	objective    string
	iterations   int
	seed         uint64
	stripRouting bool
	tui          bool
	dryRun       bool
	chart        string
	history      string
}

func newPlaceCmd() *cobra.Command {
	f := &placeFlags{}

	cmd := &cobra.Command{
		Use:   "place <board_file>",
		Short: "Place footprints inside the board outline",
		Long: `Run the placement search on a KiCad board and write the result.

The search picks a random movable footprint, tries a random position inside
the outline shrunk by the margin, and keeps the move only when it collides
with nothing and does not worsen the objective.

Objectives:
  wiring_cost  - pull footprints sharing nets together (default)
  spread       - push footprint centers apart

Without --output the input file is overwritten.

Examples:
  otplace place board.kicad_pcb -o placed.kicad_pcb
  otplace place --objective spread --iterations 20000 --seed 7 board.kicad_pcb
  otplace place --ignore "J1-J4, H*" --strip-routing --tui board.kicad_pcb
  otplace place --chart trace.html --history runs.db board.kicad_pcb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlace(cmd, args[0], f)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output board file (default: overwrite the input)")
	cmd.Flags().StringVar(&f.objective, "objective", "wiring_cost", "objective (wiring_cost, spread)")
	cmd.Flags().IntVarP(&f.iterations, "iterations", "n", placement.DefaultIterations, "number of search steps")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed for a reproducible run")
	cmd.Flags().BoolVar(&f.stripRouting, "strip-routing", false, "remove all tracks and vias from the output")
	cmd.Flags().BoolVar(&f.tui, "tui", false, "show an interactive progress view")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "run the search without writing the board")
	cmd.Flags().StringVar(&f.chart, "chart", "", "write an HTML chart of the score over the run")
	cmd.Flags().StringVar(&f.history, "history", "", "record the run in this history database")
	return cmd
}

func (f *placeFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	f.boardFlags.apply(cmd, cfg)
	flags := cmd.Flags()
	if flags.Changed("objective") {
		cfg.Objective = f.objective
	}
	if flags.Changed("iterations") {
		cfg.Iterations = f.iterations
	}
	if flags.Changed("seed") {
		seed := f.seed
		cfg.Seed = &seed
	}
	if flags.Changed("history") {
		cfg.History = f.history
	}
}

func runPlace(cmd *cobra.Command, path string, f *placeFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	out := cmd.OutOrStdout()

	s, err := openBoard(cmd, path, func(cfg *config.Config) { f.apply(cmd, cfg) })
	if err != nil {
		return err
	}
	board, opts := s.board, s.opts

	if initial := placement.Validate(board, opts.Policy); !initial.Valid {
		printWarning(out, "starting layout has %d violations; overlapping footprints can only move apart", len(initial.Violations))
		reportViolations(cmd, initial)
	}
	if err := board.CheckFit(); err != nil {
		printWarning(out, "%v", err)
	}

	if opts.Seed == nil {
		seed := rand.Uint64()
		opts.Seed = &seed
		logger.Debug("drew random seed", "seed", seed)
	}
	engine, err := placement.NewEngineFromOptions(board, opts, placement.WithLogger(logger))
	if err != nil {
		return err
	}

	var trace *report.Trace
	if f.chart != "" {
		trace = report.NewTrace(board, opts.Objective)
	}
	onProgress := func(percent int) {
		if trace != nil {
			trace.Record(percent, board.Score(opts.Objective))
		}
		if percent%10 == 0 {
			logger.Debug("placement progress", "percent", percent)
		}
	}

	started := time.Now()
	stats, runErr := search(cmd, engine, opts.Iterations, f.tui, filepath.Base(path), onProgress)
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		printWarning(out, "cancelled after %d of %d steps, keeping %d accepted moves", stats.Attempts, opts.Iterations, stats.Accepted)
	default:
		return runErr
	}

	final := placement.Validate(board, opts.Policy)
	res := placement.Apply(board, s.doc)
	for _, id := range res.Skipped {
		printWarning(out, "footprint %s could not be written back", id)
	}

	printSuccess(out, "Placed %d footprints (%s)", res.Applied, opts.Objective)
	printKeyValue(out, "score", fmt.Sprintf("%s -> %s", mm(stats.InitialScore), mm(stats.FinalScore)))
	printKeyValue(out, "accepted", fmt.Sprintf("%d of %d steps", stats.Accepted, stats.Attempts))
	printKeyValue(out, "collisions", stats.Collisions)
	printKeyValue(out, "elapsed", stats.Elapsed.Round(time.Millisecond))
	printKeyValue(out, "seed", *opts.Seed)
	if !final.Valid {
		printWarning(out, "final layout still has %d violations", len(final.Violations))
		for _, v := range final.Violations {
			printDetail(out, "%s", v.Message)
		}
	}

	if f.stripRouting {
		printInfo(out, "Removed %d tracks and vias", s.doc.StripRouting())
	}

	output := f.output
	if output == "" {
		output = path
	}
	if f.dryRun {
		printInfo(out, "Dry run, %s not written", output)
	} else {
		if err := s.doc.Save(output); err != nil {
			return err
		}
		printSuccess(out, "Wrote %s", output)
	}

	if trace != nil {
		title := fmt.Sprintf("%s placement", filepath.Base(path))
		if err := trace.Save(f.chart, title); err != nil {
			return err
		}
		printSuccess(out, "Wrote %s", f.chart)
	}

	if s.cfg.History != "" {
		run := history.Run{
			Board:        path,
			Objective:    opts.Objective.String(),
			Seed:         opts.Seed,
			Iterations:   opts.Iterations,
			Attempts:     stats.Attempts,
			Accepted:     stats.Accepted,
			InitialScore: stats.InitialScore,
			FinalScore:   stats.FinalScore,
			Valid:        final.Valid,
			StartedAt:    started,
			Duration:     stats.Elapsed,
		}
		if !f.dryRun {
			run.Output = output
		}
		if err := recordRun(ctx, s.cfg.History, run); err != nil {
			return err
		}
	}
	return nil
}

// search runs the engine in the terminal view or plain, reporting progress
func search(cmd *cobra.Command, e *placement.Engine, iterations int, tui bool, name string, onProgress placement.ProgressFunc) (placement.Stats, error) {
	if !tui {
		return e.Run(cmd.Context(), iterations, onProgress)
	}

	title := fmt.Sprintf("Placing %s (%s)", name, strings.ReplaceAll(e.Objective().String(), "_", " "))
	m, err := ui.Run(ui.NewRunModel(e, iterations, title, onProgress),
		tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.ErrOrStderr()))
	if err != nil {
		return e.Stats(), err
	}
	if m.Cancelled() && m.Err() == nil {
		return m.Stats(), context.Canceled
	}
	return m.Stats(), m.Err()
}

func recordRun(ctx context.Context, path string, run history.Run) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Record(ctx, run)
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Debug("recorded run", "id", rec.ID, "history", path)
	return nil
}
