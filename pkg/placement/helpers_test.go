package placement

import (
	"testing"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/geom"
)

// fakeSource is an in-memory Source. Its bounds grow by labelPad on every side
// while labels are visible.
type fakeSource struct {
	ref      string
	side     Side
	pos      geom.Point
	bounds   geom.Rect
	pads     []Pad
	visible  bool
	labelPad int64

	toggles []bool
}

func (s *fakeSource) Reference() string    { return s.ref }
func (s *fakeSource) Side() Side           { return s.side }
func (s *fakeSource) Position() geom.Point { return s.pos }
func (s *fakeSource) Pads() []Pad          { return s.pads }
func (s *fakeSource) LabelsVisible() bool  { return s.visible }

func (s *fakeSource) SetLabelsVisible(v bool) {
	s.toggles = append(s.toggles, v)
	s.visible = v
}

func (s *fakeSource) Bounds() geom.Rect {
	if s.visible {
		return s.bounds.Inset(-s.labelPad)
	}
	return s.bounds
}

// fakeDocument is an in-memory Document
type fakeDocument struct {
	outline geom.Rect
	sources []*fakeSource
	moved   map[string]geom.Point
}

func (d *fakeDocument) Outline() (geom.Rect, error) { return d.outline, nil }

func (d *fakeDocument) Footprints() []Source {
	out := make([]Source, len(d.sources))
	for i, s := range d.sources {
		out[i] = s
	}
	return out
}

func (d *fakeDocument) SetPosition(id string, pos geom.Point) bool {
	for _, s := range d.sources {
		if s.ref == id {
			if d.moved == nil {
				d.moved = make(map[string]geom.Point)
			}
			d.moved[id] = pos
			s.pos = pos
			return true
		}
	}
	return false
}

// square creates a footprint whose anchor is the top-left corner of a size x size box
func square(id string, x, y, size int64) *Footprint {
	return NewFootprint(id, Front, geom.Point{X: x, Y: y}, geom.NewRect(x, y, size, size))
}

func mustBoard(t *testing.T, outline geom.Rect, margin int64, fps ...*Footprint) *Board {
	t.Helper()
	b, err := NewBoard(outline, margin, fps...)
	if err != nil {
		t.Fatalf("NewBoard() unexpected error: %v", err)
	}
	return b
}

func mustEngine(t *testing.T, b *Board, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(b, opts...)
	if err != nil {
		t.Fatalf("NewEngine() unexpected error: %v", err)
	}
	return e
}
