package placement

import (
	"slices"
	"strings"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/geom"
)

// Side is the physical layer a footprint is mounted on
type Side int

const (
	Front Side = iota
	Back
)

func (s Side) String() string {
	if s == Back {
		return "back"
	}
	return "front"
}

// Pad is a connection point as reported by a Source
type Pad struct {
	Net      string     // Net name, empty when unconnected
	Position geom.Point // Absolute position on the board
}

// Source is the read side of a host footprint. Build samples it once.
type Source interface {
	Reference() string
	Side() Side
	Position() geom.Point

	// Bounds returns the current bounding rectangle. Its extent depends on the
	// label visibility state.
	Bounds() geom.Rect
	Pads() []Pad

	LabelsVisible() bool
	SetLabelsVisible(visible bool)
}

// Net holds the connection points of one footprint on one net
type Net struct {
	Name   string
	Points []geom.Point
}

// Footprint is one placeable component in a board snapshot
type Footprint struct {
	ID       string     // Reference designator, unique within a board
	Side     Side       // Mounting side
	Ignored  bool       // Held fixed by the search
	Position geom.Point // Anchor written back to the host
	Bounds   geom.Rect  // Physical extent without text labels

	// Nets is sorted by name. Points move together with the footprint.
	Nets []Net

	netIndex map[string]int
}

// NewFootprint creates a footprint without connection points
func NewFootprint(id string, side Side, position geom.Point, bounds geom.Rect) *Footprint {
	return &Footprint{
		ID:       id,
		Side:     side,
		Position: position,
		Bounds:   bounds,
		netIndex: make(map[string]int),
	}
}

// Build samples src into a footprint snapshot. Labels are hidden while the
// bounding rectangle is measured and their previous visibility is restored
// before Build returns.
func Build(src Source, ignored bool) (*Footprint, error) {
	id := src.Reference()
	if id == "" {
		return nil, newError(CodeInvalidConfiguration, "footprint without reference")
	}

	bounds := measure(src)

	fp := NewFootprint(id, src.Side(), src.Position(), bounds)
	fp.Ignored = ignored
	for _, pad := range src.Pads() {
		if pad.Net == "" {
			continue
		}
		fp.AddPad(pad.Net, pad.Position)
	}

	return fp, nil
}

func measure(src Source) geom.Rect {
	visible := src.LabelsVisible()
	src.SetLabelsVisible(false)
	defer src.SetLabelsVisible(visible)

	return src.Bounds()
}

// AddPad appends a connection point to the named net
func (fp *Footprint) AddPad(net string, p geom.Point) {
	if fp.netIndex == nil {
		fp.reindex()
	}
	if i, ok := fp.netIndex[net]; ok {
		fp.Nets[i].Points = append(fp.Nets[i].Points, p)
		return
	}

	i, _ := slices.BinarySearchFunc(fp.Nets, net, func(n Net, name string) int {
		return strings.Compare(n.Name, name)
	})
	fp.Nets = slices.Insert(fp.Nets, i, Net{Name: net, Points: []geom.Point{p}})
	fp.reindex()
}

func (fp *Footprint) reindex() {
	fp.netIndex = make(map[string]int, len(fp.Nets))
	for i, n := range fp.Nets {
		fp.netIndex[n.Name] = i
	}
}

// NetPoints returns the connection points on the named net, or nil
func (fp *Footprint) NetPoints(net string) []geom.Point {
	if fp.netIndex == nil {
		fp.reindex()
	}
	if i, ok := fp.netIndex[net]; ok {
		return fp.Nets[i].Points
	}
	return nil
}

// Translate shifts the anchor, the bounding rectangle and every connection
// point by v. Translating by v and then by v.Neg() restores the footprint exactly.
func (fp *Footprint) Translate(v geom.Vector) {
	if v.IsZero() {
		return
	}

	fp.Position = fp.Position.Add(v)
	fp.Bounds = fp.Bounds.Translate(v)
	for i := range fp.Nets {
		pts := fp.Nets[i].Points
		for j := range pts {
			pts[j] = pts[j].Add(v)
		}
	}
}

// Snapshot returns a deep copy of the footprint
func (fp *Footprint) Snapshot() *Footprint {
	c := *fp
	c.Nets = make([]Net, len(fp.Nets))
	for i, n := range fp.Nets {
		c.Nets[i] = Net{Name: n.Name, Points: slices.Clone(n.Points)}
	}
	c.reindex()
	return &c
}

// Equal reports whether both footprints have the same identity, placement and
// connection points
func (fp *Footprint) Equal(other *Footprint) bool {
	if fp.ID != other.ID || fp.Side != other.Side || fp.Ignored != other.Ignored ||
		fp.Position != other.Position || fp.Bounds != other.Bounds ||
		len(fp.Nets) != len(other.Nets) {
		return false
	}
	for i := range fp.Nets {
		if fp.Nets[i].Name != other.Nets[i].Name || !slices.Equal(fp.Nets[i].Points, other.Nets[i].Points) {
			return false
		}
	}
	return true
}
