// Package sexp provides shared S-expression navigation helpers and value
// types for KiCad files. KiCad 6 and later store lengths in millimetres and
// angles in degrees; values here keep those units.
package sexp

import "math"

// Unit conversion between file units and KiCad's internal nanometres
const (
	MMToNanometers = 1e6
	NanometersToMM = 1e-6
)

// ToNanometers converts a length in mm to integer nanometres
func ToNanometers(mm float64) int64 {
	return int64(math.Round(mm * MMToNanometers))
}

// FromNanometers converts integer nanometres to mm
func FromNanometers(nm int64) float64 {
	return float64(nm) * NanometersToMM
}

// Position represents a 2D coordinate in mm
type Position struct {
	X float64
	Y float64
}

// Angle represents rotation in degrees, counter-clockwise as shown on screen
type Angle float64

// PositionAngle combines position with rotation
type PositionAngle struct {
	Position
	Angle Angle
}

// Size represents dimensions in mm
type Size struct {
	Width  float64
	Height float64
}

// BoundingBox represents a rectangular boundary
type BoundingBox struct {
	Min Position // Top-left corner
	Max Position // Bottom-right corner
}

// NewBoundingBox creates an empty bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Position{X: math.Inf(1), Y: math.Inf(1)},
		Max: Position{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// IsEmpty checks if the bounding box has not been expanded
func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

// Expand expands the bounding box to include a position
func (bb *BoundingBox) Expand(pos Position) {
	bb.Min.X = math.Min(bb.Min.X, pos.X)
	bb.Min.Y = math.Min(bb.Min.Y, pos.Y)
	bb.Max.X = math.Max(bb.Max.X, pos.X)
	bb.Max.Y = math.Max(bb.Max.Y, pos.Y)
}

// ExpandBox expands to include another bounding box
func (bb *BoundingBox) ExpandBox(other BoundingBox) {
	if !other.IsEmpty() {
		bb.Expand(other.Min)
		bb.Expand(other.Max)
	}
}

// Intersects checks if two bounding boxes intersect
func (bb BoundingBox) Intersects(other BoundingBox) bool {
	return bb.Min.X <= other.Max.X && bb.Max.X >= other.Min.X &&
		bb.Min.Y <= other.Max.Y && bb.Max.Y >= other.Min.Y
}

// Contains checks if a position is within the bounding box
func (bb BoundingBox) Contains(pos Position) bool {
	return pos.X >= bb.Min.X && pos.X <= bb.Max.X &&
		pos.Y >= bb.Min.Y && pos.Y <= bb.Max.Y
}

// Width returns the width of the bounding box
func (bb BoundingBox) Width() float64 {
	return bb.Max.X - bb.Min.X
}

// Height returns the height of the bounding box
func (bb BoundingBox) Height() float64 {
	return bb.Max.Y - bb.Min.Y
}

// Center returns the center point of the bounding box
func (bb BoundingBox) Center() Position {
	return Position{
		X: (bb.Min.X + bb.Max.X) / 2.0,
		Y: (bb.Min.Y + bb.Max.Y) / 2.0,
	}
}

// UUID represents a unique identifier
type UUID string

// Effects represents text effects
type Effects struct {
	Font    Font
	Justify Justify
	Hide    bool
}

// Font represents font properties
type Font struct {
	Size      Size
	Thickness float64
	Bold      bool
	Italic    bool
}

// Justify represents text justification
type Justify struct {
	Horizontal string // left, center, right
	Vertical   string // top, center, bottom
	Mirror     bool
}

// Property represents a key-value property
type Property struct {
	Key      string
	Value    string
	Position PositionAngle
	Layer    string
	Effects  Effects
	Hide     bool // Set by (hide yes) or a bare hide flag on the property
}
