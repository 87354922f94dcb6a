package pcb

import (
	"github.com/OpenTraceLab/OpenTracePlace/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/kicad/sexp/kicadsexp"
)

// Shared types (aliases to sexp package)
type Position = sexp.Position
type Angle = sexp.Angle
type PositionAngle = sexp.PositionAngle
type Size = sexp.Size
type BoundingBox = sexp.BoundingBox
type UUID = sexp.UUID

// Span is a byte range in the board source
type Span = kicadsexp.Span

// NewBoundingBox creates an empty bounding box
var NewBoundingBox = sexp.NewBoundingBox

// Unit conversion helpers
var (
	ToNanometers   = sexp.ToNanometers
	FromNanometers = sexp.FromNanometers
)

// Well-known layer names
const (
	LayerFrontCopper = "F.Cu"
	LayerBackCopper  = "B.Cu"
	LayerEdgeCuts    = "Edge.Cuts"
)

// Layer represents a PCB layer
type Layer struct {
	Number int    // Layer number (ordinal)
	Name   string // Layer name (e.g., "F.Cu", "B.Cu", "F.SilkS")
	Type   string // Layer type (e.g., "signal", "user")
}

// Net represents an electrical net
type Net struct {
	Number int    // Net number (ordinal)
	Name   string // Net name
}

// LayerSet represents a set of layers
type LayerSet []string

// LayerMap provides lookup of layers by name
type LayerMap struct {
	byName map[string]*Layer
}

// NewLayerMap creates a LayerMap from a slice of layers
func NewLayerMap(layers []Layer) *LayerMap {
	lm := &LayerMap{byName: make(map[string]*Layer, len(layers))}
	for i := range layers {
		layer := &layers[i]
		lm.byName[layer.Name] = layer
	}
	return lm
}

// GetByName retrieves a layer by its name (e.g., "F.Cu")
func (lm *LayerMap) GetByName(name string) (*Layer, bool) {
	layer, ok := lm.byName[name]
	return layer, ok
}

// IsCopperLayer checks if a layer is a copper layer
func (lm *LayerMap) IsCopperLayer(name string) bool {
	layer, ok := lm.GetByName(name)
	if !ok {
		return false
	}
	return layer.Type == "signal" || layer.Type == "power" || layer.Type == "mixed"
}

// NetMap resolves the net numbers used by pads, tracks and vias
type NetMap struct {
	byNumber map[int]*Net
}

// NewNetMap creates a NetMap from a slice of nets
func NewNetMap(nets []Net) *NetMap {
	nm := &NetMap{byNumber: make(map[int]*Net, len(nets))}
	for i := range nets {
		net := &nets[i]
		nm.byNumber[net.Number] = net
	}
	return nm
}

// GetByNumber retrieves a net by its number
func (nm *NetMap) GetByNumber(num int) (*Net, bool) {
	net, ok := nm.byNumber[num]
	return net, ok
}
