// Package geom provides integer board-unit geometry used by the placement engine.
//
// All coordinates are int64 board units. When a board comes from a KiCad file the
// unit is the nanometre, which is KiCad's internal unit.
package geom

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a location on the board
type Point struct {
	X int64
	Y int64
}

// Vector is an offset between two points
type Vector struct {
	X int64
	Y int64
}

// Add returns p shifted by v
func (p Point) Add(v Vector) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Sub returns the vector that moves other onto p
func (p Point) Sub(other Point) Vector {
	return Vector{X: p.X - other.X, Y: p.Y - other.Y}
}

// Vec converts p to a floating point vector for distance computations
func (p Point) Vec() r2.Vec {
	return r2.Vec{X: float64(p.X), Y: float64(p.Y)}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Neg returns the opposite vector
func (v Vector) Neg() Vector {
	return Vector{X: -v.X, Y: -v.Y}
}

// IsZero reports whether v is the null offset
func (v Vector) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Rect is an axis-aligned rectangle. Origin is the minimum (top-left) corner.
// Width and Height are never negative for rectangles built with NewRect or
// RectFromCorners.
type Rect struct {
	Origin Point
	Width  int64
	Height int64
}

// NewRect creates a rectangle, clamping negative sizes to zero
func NewRect(x, y, width, height int64) Rect {
	return Rect{
		Origin: Point{X: x, Y: y},
		Width:  max(width, 0),
		Height: max(height, 0),
	}
}

// RectFromCorners creates the rectangle spanned by two opposite corners
func RectFromCorners(a, b Point) Rect {
	return Rect{
		Origin: Point{X: min(a.X, b.X), Y: min(a.Y, b.Y)},
		Width:  abs(a.X - b.X),
		Height: abs(a.Y - b.Y),
	}
}

// Right returns the maximum X coordinate
func (r Rect) Right() int64 {
	return r.Origin.X + r.Width
}

// Bottom returns the maximum Y coordinate
func (r Rect) Bottom() int64 {
	return r.Origin.Y + r.Height
}

// Center returns the center point of the rectangle
func (r Rect) Center() r2.Vec {
	return r2.Vec{
		X: float64(r.Origin.X) + float64(r.Width)/2,
		Y: float64(r.Origin.Y) + float64(r.Height)/2,
	}
}

// IsEmpty reports whether the rectangle has no area
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Translate returns a rectangle of the same size with the origin shifted by v
func (r Rect) Translate(v Vector) Rect {
	r.Origin = r.Origin.Add(v)
	return r
}

// MoveTo returns a rectangle of the same size with its origin at p
func (r Rect) MoveTo(p Point) Rect {
	r.Origin = p
	return r
}

// Contains reports whether other lies entirely within r, boundary included
func (r Rect) Contains(other Rect) bool {
	return other.Origin.X >= r.Origin.X && other.Origin.Y >= r.Origin.Y &&
		other.Right() <= r.Right() && other.Bottom() <= r.Bottom()
}

// Intersects reports whether the rectangles overlap with positive area.
// Rectangles that only share an edge or a corner do not intersect, and a
// rectangle without area intersects nothing.
func (r Rect) Intersects(other Rect) bool {
	if r.IsEmpty() || other.IsEmpty() {
		return false
	}
	return r.Origin.X < other.Right() && other.Origin.X < r.Right() &&
		r.Origin.Y < other.Bottom() && other.Origin.Y < r.Bottom()
}

// Inset shrinks the rectangle by d on every side. The result is clamped to zero size.
func (r Rect) Inset(d int64) Rect {
	return NewRect(r.Origin.X+d, r.Origin.Y+d, r.Width-2*d, r.Height-2*d)
}

// Union returns the smallest rectangle enclosing both r and other
func (r Rect) Union(other Rect) Rect {
	return RectFromCorners(
		Point{X: min(r.Origin.X, other.Origin.X), Y: min(r.Origin.Y, other.Origin.Y)},
		Point{X: max(r.Right(), other.Right()), Y: max(r.Bottom(), other.Bottom())},
	)
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d, %d %dx%d]", r.Origin.X, r.Origin.Y, r.Width, r.Height)
}

// Contains reports whether b lies entirely within a
func Contains(a, b Rect) bool {
	return a.Contains(b)
}

// Intersects reports whether a and b overlap with positive area
func Intersects(a, b Rect) bool {
	return a.Intersects(b)
}

// Distance returns the Euclidean distance between two points
func Distance(a, b Point) float64 {
	return r2.Norm(r2.Sub(a.Vec(), b.Vec()))
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
