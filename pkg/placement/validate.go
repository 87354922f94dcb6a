package placement

import (
	"errors"
	"fmt"
)

// ViolationKind classifies a validity failure
type ViolationKind int

const (
	NoOutline    ViolationKind = iota // Outline missing or without area
	NoFootprints                      // Nothing to place
	OutOfBounds                       // Footprint not inside the outline
	Overlap                           // Two footprints intersect
)

func (k ViolationKind) String() string {
	switch k {
	case NoOutline:
		return "no_outline"
	case NoFootprints:
		return "no_footprints"
	case OutOfBounds:
		return "out_of_bounds"
	case Overlap:
		return "overlap"
	}
	return "unknown"
}

// Violation is one reason a layout is invalid
type Violation struct {
	Kind    ViolationKind
	IDs     []string // Footprints involved, empty for board-level violations
	Message string
}

func (v Violation) Error() string {
	return v.Message
}

// Report is the result of Validate
type Report struct {
	Valid      bool
	Violations []Violation
}

// Err joins the violations into one error, or returns nil for a valid layout
func (r Report) Err() error {
	if r.Valid {
		return nil
	}
	errs := make([]error, len(r.Violations))
	for i, v := range r.Violations {
		errs[i] = v
	}
	return errors.Join(errs...)
}

// Validate checks that every non-ignored footprint lies inside the outline and
// does not intersect another footprint that policy says it must avoid. It does
// not depend on any engine state and never modifies the board.
func Validate(b *Board, policy Policy) Report {
	var r Report

	if b == nil || b.Outline.IsEmpty() {
		r.Violations = append(r.Violations, Violation{
			Kind:    NoOutline,
			Message: "board has no outline",
		})
		return r
	}

	movable := b.Eligible()
	if len(movable) == 0 {
		r.Violations = append(r.Violations, Violation{
			Kind:    NoFootprints,
			Message: "board has no placeable footprints",
		})
		return r
	}

	for _, fp := range movable {
		if !b.Outline.Contains(fp.Bounds) {
			r.Violations = append(r.Violations, Violation{
				Kind:    OutOfBounds,
				IDs:     []string{fp.ID},
				Message: fmt.Sprintf("%s at %v is outside outline %v", fp.ID, fp.Bounds, b.Outline),
			})
		}
	}

	// Each unordered pair is reported once.
	for i, fp := range b.footprints {
		for _, other := range b.footprints[i+1:] {
			if fp.Ignored && other.Ignored {
				continue
			}
			a, o := fp, other
			if a.Ignored {
				a, o = o, a
			}
			if !policy.Obstructs(a, o) || !a.Bounds.Intersects(o.Bounds) {
				continue
			}
			r.Violations = append(r.Violations, Violation{
				Kind:    Overlap,
				IDs:     []string{fp.ID, other.ID},
				Message: fmt.Sprintf("%s overlaps %s", fp.ID, other.ID),
			})
		}
	}

	r.Valid = len(r.Violations) == 0
	return r
}

// Valid reports whether the board passes Validate
func Valid(b *Board, policy Policy) bool {
	return Validate(b, policy).Valid
}
