package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePlace/internal/config"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/kicad/document"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/placement"
)

// boardFlags are the placement settings shared by place, check and score.
// Flags override the config file only when given.
type boardFlags struct {
	margin           int64
	marginMM         float64
	ignore           string
	collision        string
	ignoredObstacles bool
}

func (f *boardFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.margin, "margin", placement.DefaultMargin, "clearance from the board edge in nanometres")
	cmd.Flags().Float64Var(&f.marginMM, "margin-mm", 0, "clearance from the board edge in millimetres (overrides --margin)")
	cmd.Flags().StringVarP(&f.ignore, "ignore", "i", "", `footprints to hold fixed, e.g. "J1, H1-H4, TP*"`)
	cmd.Flags().StringVar(&f.collision, "collision", "shared", "collision policy (shared, separate)")
	cmd.Flags().BoolVar(&f.ignoredObstacles, "ignored-obstacles", true, "treat ignored footprints as obstacles")
}

func (f *boardFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("margin") {
		cfg.Margin = f.margin
		cfg.MarginMM = nil
	}
	if flags.Changed("margin-mm") {
		v := f.marginMM
		cfg.MarginMM = &v
	}
	if flags.Changed("ignore") {
		cfg.Ignored = append(cfg.Ignored, f.ignore)
	}
	if flags.Changed("collision") {
		cfg.Collision = f.collision
	}
	if flags.Changed("ignored-obstacles") {
		cfg.IgnoredObstacles = f.ignoredObstacles
	}
}

// session is an opened board ready for placement
type session struct {
	cfg   *config.Config
	opts  placement.Options
	doc   *document.Document
	board *placement.Board
}

// openBoard loads the config, applies flag overrides through adjust, opens the
// board file and ingests it
func openBoard(cmd *cobra.Command, path string, adjust func(*config.Config)) (*session, error) {
	logger := loggerFromContext(cmd.Context())
	out := cmd.OutOrStdout()

	cfg, cfgPath, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfgPath != "" {
		logger.Debug("loaded config", "path", cfgPath)
	}
	if adjust != nil {
		adjust(cfg)
	}

	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	sel, err := cfg.IgnoreSelector()
	if err != nil {
		return nil, fmt.Errorf("invalid --ignore: %w", err)
	}

	prog := newProgress(logger)
	doc, err := document.Open(path)
	if err != nil {
		return nil, err
	}
	if n := doc.Unnamed(); n > 0 {
		printWarning(out, "%d footprints without a reference are left out", n)
	}
	if off := doc.OffCopper(); len(off) > 0 {
		printWarning(out, "footprints not on a copper layer: %s", strings.Join(off, ", "))
	}

	refs := doc.References()
	opts.IgnoredIDs = sel.Filter(refs)
	for _, term := range sel.Unmatched(refs) {
		printWarning(out, "ignore term %q matches no footprint", term)
	}

	board, err := placement.Ingest(doc, opts)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Loaded %d footprints from %s", board.Len(), path))
	logger.Debug("placement options",
		"margin", opts.Margin,
		"objective", opts.Objective,
		"iterations", opts.Iterations,
		"ignored", len(opts.IgnoredIDs),
		"policy", opts.Policy)

	return &session{cfg: cfg, opts: opts, doc: doc, board: board}, nil
}

// reportViolations prints every violation of report
func reportViolations(cmd *cobra.Command, report placement.Report) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(report.Violations))
	for _, v := range report.Violations {
		rows = append(rows, []string{v.Kind.String(), strings.Join(v.IDs, ", "), v.Message})
	}
	printTable(out, []string{"Violation", "Footprints", "Detail"}, rows)
}
