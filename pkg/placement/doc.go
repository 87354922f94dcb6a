// Package placement implements automatic component placement for PCB layouts.
//
// A Board is an in-memory snapshot of a layout: a fixed outline, a clearance
// margin and an ordered set of Footprints. Each footprint carries its bounding
// rectangle and its connection points grouped by net. The Engine moves
// footprints around with a greedy stochastic local search until an iteration
// budget is spent.
//
// # Overview
//
// The package provides:
//   - Footprint: one placeable component, built from a Source with Build
//   - Board: outline, margin and footprints, plus board-level queries
//   - Objective: SPREAD (maximize) or WIRING_COST (minimize) scoring
//   - Engine: the search loop, one Step at a time or Run for a whole budget
//   - Validate: containment and collision checks under a Policy
//   - Ingest / Apply: snapshot from and write-back to a host Document
//
// # Usage
//
//	board, err := placement.Ingest(doc, opts)
//	if err != nil {
//		return err
//	}
//
//	engine, err := placement.NewEngine(board,
//		placement.WithObjective(placement.WiringCost),
//		placement.WithSeed(42),
//	)
//	if err != nil {
//		return err
//	}
//
//	stats, err := engine.Run(ctx, 100000, func(percent int) {
//		fmt.Printf("\r%3d%%", percent)
//	})
//
//	if report := placement.Validate(board, placement.DefaultPolicy()); report.Valid {
//		placement.Apply(board, doc)
//	}
//
// # Search
//
// Every Step picks a random non-ignored footprint and a random anchor inside
// the outline inset by the margin. A candidate that
// collides with another footprint is rejected before anything changes. Otherwise
// the footprint is moved, the objective is evaluated before and after, and the
// move is rolled back unless the score improved or stayed equal. A Step either
// commits completely or leaves the board bit-identical, so callers may stop
// between steps at any time.
//
// The engine is single-threaded and holds no locks. One Board must not be shared
// between goroutines while an Engine is running on it.
package placement
