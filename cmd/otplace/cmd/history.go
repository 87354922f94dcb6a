package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePlace/internal/config"
	"github.com/OpenTraceLab/OpenTracePlace/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var (
		dbPath string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded placement runs",
		Long: `List placement runs recorded with place --history or the history
key of the config file, most recent first.

Examples:
  otplace history --history runs.db
  otplace history --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("history") {
				cfg, _, err := config.Load(configPath)
				if err != nil {
					return err
				}
				dbPath = cfg.History
			}
			return runHistory(cmd, dbPath, limit)
		},
	}

	cmd.Flags().StringVar(&dbPath, "history", "", "history database (default: history key of the config file)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of runs to show, 0 for all")
	return cmd
}

func runHistory(cmd *cobra.Command, dbPath string, limit int) error {
	out := cmd.OutOrStdout()
	if dbPath == "" {
		return fmt.Errorf("no history database: use --history or set history in the config file")
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		printInfo(out, "No runs recorded in %s", dbPath)
		return nil
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		seed := "-"
		if r.Seed != nil {
			seed = fmt.Sprint(*r.Seed)
		}
		valid := "yes"
		if !r.Valid {
			valid = "no"
		}
		rows[i] = []string{
			shortID(r.ID),
			r.StartedAt.Format("2006-01-02 15:04"),
			r.Board,
			r.Objective,
			seed,
			fmt.Sprintf("%d/%d", r.Accepted, r.Attempts),
			fmt.Sprintf("%s -> %s", mm(r.InitialScore), mm(r.FinalScore)),
			valid,
		}
	}
	printTable(out, []string{"Run", "Started", "Board", "Objective", "Seed", "Accepted", "Score", "Valid"}, rows)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
