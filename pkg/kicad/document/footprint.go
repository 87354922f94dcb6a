package document

import (
	"github.com/OpenTraceLab/OpenTracePlace/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/placement"
)

// Footprint is the placement view of one board footprint. Label visibility
// is a measurement toggle only and never reaches the file.
type Footprint struct {
	fp            *pcb.Footprint
	labelsVisible bool
}

var _ placement.Source = (*Footprint)(nil)

// Reference returns the reference designator
func (f *Footprint) Reference() string {
	return f.fp.Reference
}

// Side returns the mounting side derived from the footprint layer
func (f *Footprint) Side() placement.Side {
	if f.fp.IsBack() {
		return placement.Back
	}
	return placement.Front
}

// Position returns the footprint anchor in nanometres
func (f *Footprint) Position() geom.Point {
	return point(f.fp.Position.Position)
}

// Bounds returns the extent of pads and graphics, plus the visible labels
// while labels are shown
func (f *Footprint) Bounds() geom.Rect {
	return rectFromBox(f.fp.Extent(f.labelsVisible))
}

// Pads returns every pad at its absolute position
func (f *Footprint) Pads() []placement.Pad {
	pads := make([]placement.Pad, len(f.fp.Pads))
	for i, pad := range f.fp.Pads {
		pads[i] = placement.Pad{
			Net:      pad.NetName(),
			Position: point(f.fp.TransformPosition(pad.Position.Position)),
		}
	}
	return pads
}

// LabelsVisible reports whether labels count towards Bounds
func (f *Footprint) LabelsVisible() bool {
	return f.labelsVisible
}

// SetLabelsVisible shows or hides labels for measurement
func (f *Footprint) SetLabelsVisible(visible bool) {
	f.labelsVisible = visible
}

// Locked reports whether the footprint is locked in the file
func (f *Footprint) Locked() bool {
	return f.fp.Locked
}

// Value returns the component value
func (f *Footprint) Value() string {
	return f.fp.Value
}
