package pcb

import "strings"

// Board represents a complete KiCad PCB
type Board struct {
	Version    int         // File format version
	Generator  string      // Generator info (e.g., "pcbnew")
	General    General     // General board properties
	Layers     []Layer     // Layer definitions
	Nets       []Net       // Electrical nets
	Footprints []Footprint // Component footprints
	Graphics   []Graphic   // Board-level graphics (gr_line, gr_rect, ...)
	Tracks     []Track     // Track segments and arcs
	Vias       []Via       // Vias

	source []byte // Raw file contents, used by Patcher
}

// General contains general board properties
type General struct {
	Thickness float64 // Board thickness in mm
	Title     string  // Board title
	Date      string  // Design date
	Revision  string  // Board revision
	Company   string  // Company name
}

// Footprint represents a component footprint
type Footprint struct {
	Library   string        // Library name
	Name      string        // Footprint name
	Layer     string        // Layer (F.Cu or B.Cu typically)
	Position  PositionAngle // Position and rotation
	Locked    bool          // Whether the footprint is locked
	Reference string        // Reference designator (e.g., "R1")
	Value     string        // Component value
	Pads      []Pad         // Pads
	Graphics  []Graphic     // Graphics (silk, fab, courtyard, ...)
	Labels    []Label       // Reference, value and user texts

	atSpan  Span     // The footprint's own (at ...) node
	atExtra []string // Atoms after X Y in the (at ...) node, kept on rewrite
}

// IsBack reports whether the footprint is mounted on the back side
func (fp *Footprint) IsBack() bool {
	return strings.HasPrefix(fp.Layer, "B.")
}

// Pad represents a footprint pad
type Pad struct {
	Number   string        // Pad number/name
	Type     string        // Pad type (thru_hole, smd, etc.)
	Shape    string        // Pad shape (circle, rect, oval, etc.)
	Position PositionAngle // Position relative to the footprint, absolute rotation
	Size     Size          // Pad size
	Drill    float64       // Drill diameter (0 for SMD)
	Layers   LayerSet      // Layers the pad appears on
	Net      *Net          // Connected net (if any)
}

// NetName returns the pad's net name, or "" when unconnected
func (p *Pad) NetName() string {
	if p.Net == nil {
		return ""
	}
	return p.Net.Name
}

// Graphic represents a graphical element. Footprint graphics use coordinates
// relative to the footprint.
type Graphic struct {
	Type   string     // line, rect, circle, arc, poly
	Layer  string     // Layer name
	Start  Position   // Start point (line, rect, arc)
	Mid    Position   // Point on the arc (arc)
	End    Position   // End point; for circles a point on the circumference
	Center Position   // Center (circle)
	Points []Position // Vertices (poly)
	Width  float64    // Stroke width
}

// Label represents a text attached to a footprint. KiCad 6/7 store reference
// and value as fp_text, KiCad 8 as property.
type Label struct {
	Kind     string        // reference, value, user, or the property key
	Text     string        // Displayed text
	Position PositionAngle // Position relative to the footprint, absolute rotation
	Layer    string        // Layer name
	Size     Size          // Font size
	Justify  string        // left, right or center
	Hidden   bool          // Whether the text is hidden in the file
}

// Track represents a copper track segment or arc
type Track struct {
	Arc    bool     // True for (arc ...) tracks
	Start  Position // Start point
	Mid    Position // Mid point (arcs only)
	End    Position // End point
	Width  float64  // Track width in mm
	Layer  string   // Layer name
	Net    *Net     // Connected net
	Locked bool     // Whether track is locked

	span Span
}

// Via represents a via
type Via struct {
	Position Position // Via position
	Size     float64  // Via diameter
	Drill    float64  // Drill diameter
	Layers   LayerSet // Layer pair
	Net      *Net     // Connected net
	Locked   bool     // Whether via is locked

	span Span
}

// Source returns the raw file contents the board was parsed from
func (b *Board) Source() []byte {
	return b.source
}

// FootprintByReference returns the footprint with the given reference designator
func (b *Board) FootprintByReference(ref string) (*Footprint, bool) {
	for i := range b.Footprints {
		if b.Footprints[i].Reference == ref {
			return &b.Footprints[i], true
		}
	}
	return nil, false
}

// OffCopperFootprints returns the footprints whose layer is not a copper layer
// in the board's layer table. A board without a layer table reports none.
func (b *Board) OffCopperFootprints() []*Footprint {
	if len(b.Layers) == 0 {
		return nil
	}
	layers := NewLayerMap(b.Layers)

	var out []*Footprint
	for i := range b.Footprints {
		if fp := &b.Footprints[i]; !layers.IsCopperLayer(fp.Layer) {
			out = append(out, fp)
		}
	}
	return out
}
