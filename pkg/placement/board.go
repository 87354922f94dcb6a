package placement

import (
	"strings"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/geom"
)

// DefaultMargin is the clearance kept from the outline, in board units
const DefaultMargin int64 = 100

// Board is one layout snapshot. Only footprint positions change during a search;
// the outline and margin are fixed once the board is built.
type Board struct {
	Outline geom.Rect
	Margin  int64

	footprints []*Footprint
	index      map[string]int
}

// NewBoard creates a board. Footprint ids must be unique.
func NewBoard(outline geom.Rect, margin int64, footprints ...*Footprint) (*Board, error) {
	b := &Board{
		Outline: outline,
		Margin:  margin,
		index:   make(map[string]int, len(footprints)),
	}
	for _, fp := range footprints {
		if err := b.Add(fp); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Add appends a footprint, failing on a duplicate id
func (b *Board) Add(fp *Footprint) error {
	if fp == nil {
		return newError(CodeInvalidConfiguration, "nil footprint")
	}
	if b.index == nil {
		b.index = make(map[string]int)
	}
	if _, exists := b.index[fp.ID]; exists {
		return newError(CodeDuplicateFootprint, "footprint %q appears more than once", fp.ID)
	}
	b.index[fp.ID] = len(b.footprints)
	b.footprints = append(b.footprints, fp)
	return nil
}

// Len returns the number of footprints
func (b *Board) Len() int {
	return len(b.footprints)
}

// Footprints returns the footprints in insertion order. The slice is a copy;
// the footprints are shared with the board.
func (b *Board) Footprints() []*Footprint {
	out := make([]*Footprint, len(b.footprints))
	copy(out, b.footprints)
	return out
}

// Footprint looks up a footprint by id
func (b *Board) Footprint(id string) (*Footprint, bool) {
	i, ok := b.index[id]
	if !ok {
		return nil, false
	}
	return b.footprints[i], true
}

// Lookup is Footprint with a FOOTPRINT_NOT_FOUND error for unknown ids
func (b *Board) Lookup(id string) (*Footprint, error) {
	fp, ok := b.Footprint(id)
	if !ok {
		return nil, newError(CodeFootprintNotFound, "no footprint %q on the board", id)
	}
	return fp, nil
}

// Unplaceable returns the eligible footprints whose placement range is empty.
// The search can never move them.
func (b *Board) Unplaceable() []*Footprint {
	var out []*Footprint
	for _, fp := range b.Eligible() {
		if b.PlacementRange(fp).Empty() {
			out = append(out, fp)
		}
	}
	return out
}

// CheckFit returns a DEGENERATE_FOOTPRINT error naming every eligible footprint
// that does not fit the placement area, or nil
func (b *Board) CheckFit() error {
	bad := b.Unplaceable()
	if len(bad) == 0 {
		return nil
	}
	ids := make([]string, len(bad))
	for i, fp := range bad {
		ids[i] = fp.ID
	}
	return newError(CodeDegenerateFootprint, "%d footprint(s) do not fit inside the outline less margin %d: %s",
		len(bad), b.Margin, strings.Join(ids, ", "))
}

// Eligible returns the footprints the search may move
func (b *Board) Eligible() []*Footprint {
	var out []*Footprint
	for _, fp := range b.footprints {
		if !fp.Ignored {
			out = append(out, fp)
		}
	}
	return out
}

// AnchorRange is the inclusive range of valid bounding-rectangle origins for a footprint
type AnchorRange struct {
	Min geom.Point
	Max geom.Point
}

// Empty reports whether the range leaves no room to move. A range collapsed to a
// single column or row counts as empty.
func (r AnchorRange) Empty() bool {
	return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y
}

// PlacementRange returns where the origin of fp's bounding rectangle may go:
// the outline inset by the margin on every side, reduced so that the whole
// bounding rectangle fits.
func (b *Board) PlacementRange(fp *Footprint) AnchorRange {
	minX := b.Outline.Origin.X + b.Margin
	minY := b.Outline.Origin.Y + b.Margin
	return AnchorRange{
		Min: geom.Point{X: minX, Y: minY},
		Max: geom.Point{
			X: b.Outline.Right() - b.Margin - fp.Bounds.Width,
			Y: b.Outline.Bottom() - b.Margin - fp.Bounds.Height,
		},
	}
}

// Score evaluates obj on the current state
func (b *Board) Score(obj Objective) float64 {
	return obj.Score(b)
}

// Snapshot returns a deep copy of the board
func (b *Board) Snapshot() *Board {
	c := &Board{
		Outline:    b.Outline,
		Margin:     b.Margin,
		footprints: make([]*Footprint, len(b.footprints)),
		index:      make(map[string]int, len(b.index)),
	}
	for i, fp := range b.footprints {
		c.footprints[i] = fp.Snapshot()
		c.index[fp.ID] = i
	}
	return c
}

// Equal reports whether two boards hold identical state
func (b *Board) Equal(other *Board) bool {
	if b.Outline != other.Outline || b.Margin != other.Margin || len(b.footprints) != len(other.footprints) {
		return false
	}
	for i, fp := range b.footprints {
		if !fp.Equal(other.footprints[i]) {
			return false
		}
	}
	return true
}
