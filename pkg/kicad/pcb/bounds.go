package pcb

import (
	"errors"
	"math"
	"unicode/utf8"
)

// ErrNoEdgeCuts is returned when a board has no graphics on the Edge.Cuts layer
var ErrNoEdgeCuts = errors.New("board has no Edge.Cuts outline")

// EdgeCutsBoundingBox returns the bounding box of every drawing on the
// Edge.Cuts layer, board-level and footprint-level alike
func (b *Board) EdgeCutsBoundingBox() (BoundingBox, error) {
	bbox := NewBoundingBox()

	for _, g := range b.Graphics {
		if g.Layer == LayerEdgeCuts {
			bbox.ExpandBox(graphicBox(g, nil))
		}
	}

	for i := range b.Footprints {
		fp := &b.Footprints[i]
		for _, g := range fp.Graphics {
			if g.Layer == LayerEdgeCuts {
				bbox.ExpandBox(graphicBox(g, fp))
			}
		}
	}

	if bbox.IsEmpty() {
		return bbox, ErrNoEdgeCuts
	}
	return bbox, nil
}

// Extent calculates the bounding box of a footprint from its pads and
// graphics. Labels that are not hidden in the file are included when
// withLabels is set. A footprint with nothing to measure collapses to its
// anchor point.
func (fp *Footprint) Extent(withLabels bool) BoundingBox {
	bbox := NewBoundingBox()

	for _, pad := range fp.Pads {
		center := fp.TransformPosition(pad.Position.Position)
		bbox.ExpandBox(rotatedBox(center, pad.Size.Width/2, pad.Size.Height/2, float64(pad.Position.Angle)))
	}

	for _, g := range fp.Graphics {
		bbox.ExpandBox(graphicBox(g, fp))
	}

	if withLabels {
		for _, label := range fp.Labels {
			if !label.Hidden {
				bbox.ExpandBox(fp.labelBox(label))
			}
		}
	}

	if bbox.IsEmpty() {
		bbox.Expand(fp.Position.Position)
	}

	return bbox
}

// TransformPosition transforms a position relative to the footprint into
// board coordinates by applying the footprint rotation and translation
func (fp *Footprint) TransformPosition(rel Position) Position {
	x, y := rel.X, rel.Y

	// Apply footprint rotation (negate to match the board's Y-down system)
	if fp.Position.Angle != 0 {
		angleRad := -float64(fp.Position.Angle) * math.Pi / 180.0
		cos := math.Cos(angleRad)
		sin := math.Sin(angleRad)
		x, y = x*cos-y*sin, x*sin+y*cos
	}

	return Position{X: x + fp.Position.X, Y: y + fp.Position.Y}
}

// labelBox approximates the extent of a text from its font size. Each glyph
// is taken to be one font width wide.
func (fp *Footprint) labelBox(label Label) BoundingBox {
	anchor := fp.TransformPosition(label.Position.Position)
	halfW := float64(utf8.RuneCountInString(label.Text)) * label.Size.Width / 2
	halfH := label.Size.Height / 2

	// Justified text extends away from its anchor along the text direction
	var shift float64
	switch label.Justify {
	case "left":
		shift = halfW
	case "right":
		shift = -halfW
	}
	rad := -float64(label.Position.Angle) * math.Pi / 180.0
	center := Position{
		X: anchor.X + shift*math.Cos(rad),
		Y: anchor.Y + shift*math.Sin(rad),
	}

	return rotatedBox(center, halfW, halfH, float64(label.Position.Angle))
}

// rotatedBox returns the axis-aligned box of a rectangle with the given half
// extents rotated by angle degrees around center
func rotatedBox(center Position, halfW, halfH, angle float64) BoundingBox {
	if angle != 0 {
		rad := angle * math.Pi / 180.0
		cos := math.Abs(math.Cos(rad))
		sin := math.Abs(math.Sin(rad))
		halfW, halfH = halfW*cos+halfH*sin, halfW*sin+halfH*cos
	}

	bbox := NewBoundingBox()
	bbox.Expand(Position{X: center.X - halfW, Y: center.Y - halfH})
	bbox.Expand(Position{X: center.X + halfW, Y: center.Y + halfH})
	return bbox
}

// graphicBox returns the bounding box of a graphic. Footprint graphics are
// transformed into board coordinates when fp is non-nil. Stroke width is
// not included so outlines measure the drawn centreline.
func graphicBox(g Graphic, fp *Footprint) BoundingBox {
	place := func(p Position) Position {
		if fp == nil {
			return p
		}
		return fp.TransformPosition(p)
	}

	bbox := NewBoundingBox()
	switch g.Type {
	case "line":
		bbox.Expand(place(g.Start))
		bbox.Expand(place(g.End))
	case "rect":
		// All four corners, the rectangle may be rotated with the footprint
		bbox.Expand(place(g.Start))
		bbox.Expand(place(g.End))
		bbox.Expand(place(Position{X: g.Start.X, Y: g.End.Y}))
		bbox.Expand(place(Position{X: g.End.X, Y: g.Start.Y}))
	case "circle":
		center := place(g.Center)
		radius := math.Hypot(g.End.X-g.Center.X, g.End.Y-g.Center.Y)
		bbox.Expand(Position{X: center.X - radius, Y: center.Y - radius})
		bbox.Expand(Position{X: center.X + radius, Y: center.Y + radius})
	case "arc":
		// Approximate, the bulge between the three points is not covered
		bbox.Expand(place(g.Start))
		bbox.Expand(place(g.Mid))
		bbox.Expand(place(g.End))
	case "poly":
		for _, p := range g.Points {
			bbox.Expand(place(p))
		}
	}
	return bbox
}
