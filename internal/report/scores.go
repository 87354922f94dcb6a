// Package report exports placement scores as spreadsheets and score traces
// as HTML charts. Board units are KiCad nanometres and are written in
// millimetres.
package report

import (
	"sort"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/placement"
)

const unitsPerMM = 1e6

// FootprintScore is one footprint row of a score report
type FootprintScore struct {
	ID         string
	Side       placement.Side
	X, Y       float64 // Anchor in mm
	Width      float64 // mm
	Height     float64 // mm
	Ignored    bool
	Nets       int
	WiringCost float64 // mm
}

// NetScore is one net row of a score report
type NetScore struct {
	Name       string
	Footprints int
	Pads       int
	WiringCost float64 // mm
}

// Scores is a snapshot of both objectives on one board layout
type Scores struct {
	Board      string
	Spread     float64 // mm
	WiringCost float64 // mm
	Footprints []FootprintScore
	Nets       []NetScore // Sorted by name
}

// Collect scores the current layout of b. name labels the report.
func Collect(name string, b *placement.Board) Scores {
	s := Scores{
		Board:      name,
		Spread:     placement.SpreadScore(b) / unitsPerMM,
		WiringCost: placement.WiringCostScore(b) / unitsPerMM,
	}

	nets := make(map[string]*NetScore)
	for _, fp := range b.Footprints() {
		s.Footprints = append(s.Footprints, FootprintScore{
			ID:         fp.ID,
			Side:       fp.Side,
			X:          float64(fp.Position.X) / unitsPerMM,
			Y:          float64(fp.Position.Y) / unitsPerMM,
			Width:      float64(fp.Bounds.Width) / unitsPerMM,
			Height:     float64(fp.Bounds.Height) / unitsPerMM,
			Ignored:    fp.Ignored,
			Nets:       len(fp.Nets),
			WiringCost: placement.FootprintWiringCost(b, fp) / unitsPerMM,
		})

		for _, net := range fp.Nets {
			ns, ok := nets[net.Name]
			if !ok {
				ns = &NetScore{Name: net.Name}
				nets[net.Name] = ns
			}
			ns.Footprints++
			ns.Pads += len(net.Points)
		}
	}

	for name, ns := range nets {
		ns.WiringCost = placement.NetWiringCost(b, name) / unitsPerMM
		s.Nets = append(s.Nets, *ns)
	}
	sort.Slice(s.Nets, func(i, j int) bool { return s.Nets[i].Name < s.Nets[j].Name })

	return s
}
