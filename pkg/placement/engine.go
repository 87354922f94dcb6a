package placement

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/geom"
)

// State is the lifecycle state of an Engine
type State int

const (
	Running State = iota
	Done
)

func (s State) String() string {
	if s == Done {
		return "done"
	}
	return "running"
}

// Outcome is the result of one Step
type Outcome int

const (
	Accepted        Outcome = iota // Move committed
	NoEligible                     // Every footprint is ignored, or there are none
	DegenerateRange                // Chosen footprint cannot move within the outline
	Collision                      // Candidate position overlaps another footprint
	NotImproved                    // Move made the score worse and was rolled back
)

var outcomeNames = [...]string{
	Accepted:        "accepted",
	NoEligible:      "no_eligible",
	DegenerateRange: "degenerate_range",
	Collision:       "collision",
	NotImproved:     "not_improved",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Accepted reports whether the step changed the board
func (o Outcome) Accepted() bool {
	return o == Accepted
}

// ProgressFunc receives the completed share of a run as a percentage 0-100
type ProgressFunc func(percent int)

// Stats summarizes the steps an engine has taken
type Stats struct {
	Attempts     int
	Accepted     int
	Collisions   int
	Degenerate   int
	NotImproved  int
	InitialScore float64
	FinalScore   float64
	Elapsed      time.Duration
	StoppedEarly bool
}

func (s *Stats) record(o Outcome) {
	s.Attempts++
	switch o {
	case Accepted:
		s.Accepted++
	case Collision:
		s.Collisions++
	case DegenerateRange:
		s.Degenerate++
	case NotImproved:
		s.NotImproved++
	}
}

// Engine runs the greedy stochastic placement search on one board
type Engine struct {
	board     *Board
	objective Objective
	policy    Policy
	rng       *rand.Rand
	logger    *log.Logger
	state     State
	stats     Stats
	started   time.Time

	// degenerate remembers footprints already reported as not fitting
	degenerate map[string]bool
}

// Option configures an Engine
type Option func(*Engine)

// WithObjective selects the scoring strategy. The default is WiringCost.
func WithObjective(o Objective) Option {
	return func(e *Engine) { e.objective = o }
}

// WithPolicy sets the collision policy. The default is DefaultPolicy().
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithRand injects the random source
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithSeed seeds a PCG random source so runs are reproducible
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewPCG(seed, seed^0xdeadbeef)) }
}

// WithLogger enables debug logging of run milestones
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine for board. The outline must have positive area.
func NewEngine(board *Board, opts ...Option) (*Engine, error) {
	if board == nil {
		return nil, newError(CodeInvalidConfiguration, "nil board")
	}
	if board.Outline.IsEmpty() {
		return nil, newError(CodeInvalidConfiguration, "board outline %v is empty", board.Outline)
	}
	if board.Margin < 0 {
		return nil, newError(CodeInvalidConfiguration, "margin must not be negative, got %d", board.Margin)
	}

	e := &Engine{
		board:      board,
		objective:  WiringCost,
		policy:     DefaultPolicy(),
		degenerate: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}

	if !e.objective.Valid() {
		return nil, newError(CodeInvalidConfiguration, "unknown objective %v", e.objective)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e, nil
}

// NewEngineFromOptions creates an engine configured by opts
func NewEngineFromOptions(board *Board, opts Options, extra ...Option) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	base := []Option{WithObjective(opts.Objective), WithPolicy(opts.Policy)}
	if opts.Seed != nil {
		base = append(base, WithSeed(*opts.Seed))
	}
	return NewEngine(board, append(base, extra...)...)
}

// Board returns the board being optimized
func (e *Engine) Board() *Board { return e.board }

// Objective returns the active scoring strategy
func (e *Engine) Objective() Objective { return e.objective }

// Policy returns the active collision policy
func (e *Engine) Policy() Policy { return e.policy }

// State returns the lifecycle state
func (e *Engine) State() State { return e.state }

// Stats returns the counters accumulated so far
func (e *Engine) Stats() Stats { return e.stats }

// Step attempts one random move. The board is either fully updated (Accepted)
// or left exactly as it was.
func (e *Engine) Step() Outcome {
	o := e.step()
	e.stats.record(o)
	return o
}

func (e *Engine) step() Outcome {
	eligible := e.board.Eligible()
	if len(eligible) == 0 {
		e.state = Done
		return NoEligible
	}

	fp := eligible[e.rng.IntN(len(eligible))]

	r := e.board.PlacementRange(fp)
	if r.Empty() {
		if !e.degenerate[fp.ID] && e.logger != nil {
			e.logger.Debug("footprint does not fit placement area", "id", fp.ID, "bounds", fp.Bounds)
		}
		e.degenerate[fp.ID] = true
		return DegenerateRange
	}

	anchor := geom.Point{
		X: r.Min.X + e.rng.Int64N(r.Max.X-r.Min.X+1),
		Y: r.Min.Y + e.rng.Int64N(r.Max.Y-r.Min.Y+1),
	}
	candidate := fp.Bounds.MoveTo(anchor)
	for _, other := range e.board.footprints {
		if e.policy.Obstructs(fp, other) && candidate.Intersects(other.Bounds) {
			return Collision
		}
	}

	before := e.objective.Score(e.board)
	offset := anchor.Sub(fp.Bounds.Origin)
	fp.Translate(offset)
	after := e.objective.Score(e.board)

	if !e.objective.Improved(before, after) {
		fp.Translate(offset.Neg())
		return NotImproved
	}
	return Accepted
}

// Start resets the counters and records the initial score. Run calls it; callers
// driving Step or Batch themselves call it once before the first step.
func (e *Engine) Start() {
	e.started = time.Now()
	e.state = Running
	e.stats = Stats{InitialScore: e.objective.Score(e.board)}

	if e.logger != nil {
		e.logger.Debug("placement run started",
			"objective", e.objective,
			"footprints", e.board.Len(),
			"eligible", len(e.board.Eligible()),
			"score", e.stats.InitialScore)
	}
}

// Batch performs up to n steps and returns how many were taken. It stops with a
// NO_ELIGIBLE_FOOTPRINTS error when no footprint can move.
func (e *Engine) Batch(n int) (int, error) {
	for i := 0; i < n; i++ {
		if e.Step() == NoEligible {
			e.stats.StoppedEarly = true
			return i + 1, e.noEligible()
		}
	}
	return n, nil
}

// Finish records the final score and elapsed time and marks the engine done
func (e *Engine) Finish() Stats {
	e.state = Done
	e.stats.FinalScore = e.objective.Score(e.board)
	e.stats.Elapsed = time.Since(e.started)

	if e.logger != nil {
		e.logger.Debug("placement run finished",
			"attempts", e.stats.Attempts,
			"accepted", e.stats.Accepted,
			"collisions", e.stats.Collisions,
			"score", e.stats.FinalScore,
			"elapsed", e.stats.Elapsed.Round(time.Millisecond))
	}
	return e.stats
}

func (e *Engine) noEligible() error {
	return newError(CodeNoEligibleFootprints, "none of %d footprints can move", e.board.Len())
}

// Run performs up to iterations steps. It checks ctx between steps and reports
// progress whenever the completed percentage changes. The run stops early with a
// NO_ELIGIBLE_FOOTPRINTS error when no footprint can move. When ctx is cancelled
// the board keeps every step committed so far and ctx.Err() is returned.
func (e *Engine) Run(ctx context.Context, iterations int, progress ProgressFunc) (Stats, error) {
	if iterations <= 0 {
		return e.stats, newError(CodeInvalidConfiguration, "iterations must be positive, got %d", iterations)
	}

	e.Start()
	if progress != nil {
		progress(0)
	}

	var err error
	last := 0
	for i := 0; i < iterations; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
			e.stats.StoppedEarly = true
			break
		}

		if e.Step() == NoEligible {
			err = e.noEligible()
			e.stats.StoppedEarly = true
			break
		}

		if progress != nil {
			if percent := (i + 1) * 100 / iterations; percent != last {
				last = percent
				progress(percent)
			}
		}
	}

	return e.Finish(), err
}
