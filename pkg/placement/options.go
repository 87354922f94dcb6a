package placement

import (
	"fmt"
	"strings"
)

// DefaultIterations is the iteration budget used when none is configured
const DefaultIterations = 100000

// SidePolicy controls whether footprints on opposite sides can collide
type SidePolicy int

const (
	// SidesShared checks every pair of footprints regardless of side.
	SidesShared SidePolicy = iota

	// SidesSeparate only checks footprints mounted on the same side.
	SidesSeparate
)

func (s SidePolicy) String() string {
	if s == SidesSeparate {
		return "separate"
	}
	return "shared"
}

// ParseSidePolicy accepts "shared"/"global" and "separate"/"per-side"
func ParseSidePolicy(s string) (SidePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shared", "global":
		return SidesShared, nil
	case "separate", "per-side", "per_side", "side":
		return SidesSeparate, nil
	}
	return 0, newError(CodeInvalidConfiguration, "unknown collision policy %q (want shared or separate)", s)
}

// Policy decides which footprint pairs are checked for collision. The engine and
// Validate must use the same policy for search results to validate.
type Policy struct {
	Sides SidePolicy

	// IgnoredObstacles makes ignored footprints fixed obstacles for the others.
	// Ignored footprints are never checked themselves.
	IgnoredObstacles bool
}

// DefaultPolicy checks all sides and treats ignored footprints as obstacles
func DefaultPolicy() Policy {
	return Policy{Sides: SidesShared, IgnoredObstacles: true}
}

// Obstructs reports whether other blocks fp under this policy
func (p Policy) Obstructs(fp, other *Footprint) bool {
	if fp == other {
		return false
	}
	if p.Sides == SidesSeparate && fp.Side != other.Side {
		return false
	}
	if other.Ignored && !p.IgnoredObstacles {
		return false
	}
	return true
}

func (p Policy) String() string {
	return fmt.Sprintf("sides=%s ignored_obstacles=%t", p.Sides, p.IgnoredObstacles)
}

// Options is the configuration surface of a placement run
type Options struct {
	Margin     int64     // Clearance in board units
	Objective  Objective // Scoring strategy
	Iterations int       // Step budget
	IgnoredIDs []string  // Footprints held fixed
	Seed       *uint64   // RNG seed, random when nil
	Policy     Policy    // Collision policy
}

// DefaultOptions returns the defaults of an interactive run
func DefaultOptions() Options {
	return Options{
		Margin:     DefaultMargin,
		Objective:  WiringCost,
		Iterations: DefaultIterations,
		Policy:     DefaultPolicy(),
	}
}

// Validate checks the options
func (o Options) Validate() error {
	if o.Margin < 0 {
		return newError(CodeInvalidConfiguration, "margin must not be negative, got %d", o.Margin)
	}
	if !o.Objective.Valid() {
		return newError(CodeInvalidConfiguration, "unknown objective %v", o.Objective)
	}
	if o.Iterations <= 0 {
		return newError(CodeInvalidConfiguration, "iterations must be positive, got %d", o.Iterations)
	}
	return nil
}
