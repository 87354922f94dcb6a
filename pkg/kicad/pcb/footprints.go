package pcb

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/kicad/sexp/kicadsexp"
)

// parsePad extracts a pad definition from a footprint
// Expected format: (pad "number" type shape (at x y [angle]) (size w h) (layers ...) (net n "name") ...)
func parsePad(node kicadsexp.Sexp, netMap *NetMap) (*Pad, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected pad list, got leaf")
	}

	pad := &Pad{}

	number, err := sexp.GetString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad number: %w", err)
	}
	pad.Number = number

	// thru_hole, smd, connect, np_thru_hole
	padType, err := sexp.GetString(node, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad type: %w", err)
	}
	pad.Type = padType

	// circle, rect, oval, roundrect, trapezoid, custom
	shape, err := sexp.GetString(node, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad shape: %w", err)
	}
	pad.Shape = shape

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	pos, err := sexp.GetPosition(atNode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad position: %w", err)
	}
	pad.Position = pos

	sizeNode, found := sexp.FindNode(node, "size")
	if !found {
		return nil, fmt.Errorf("missing required 'size' field")
	}
	width, err := sexp.GetFloat(sizeNode, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad width: %w", err)
	}
	height, err := sexp.GetFloat(sizeNode, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad height: %w", err)
	}
	pad.Size = Size{Width: width, Height: height}

	// Drill can be (drill d) or (drill oval w h)
	if drillNode, found := sexp.FindNode(node, "drill"); found {
		if drill, err := sexp.GetFloat(drillNode, 1); err == nil {
			pad.Drill = drill
		} else if drill, err := sexp.GetFloat(drillNode, 2); err == nil {
			pad.Drill = drill
		}
	}

	if layersNode, found := sexp.FindNode(node, "layers"); found {
		for _, item := range sexp.GetListItems(layersNode) {
			if sym, ok := item.(kicadsexp.Symbol); ok && sym != "" {
				pad.Layers = append(pad.Layers, string(sym))
			}
		}
	}

	// Net is optional. KiCad writes both number and name; prefer the board's
	// net table and fall back to the inline name.
	if netNode, found := sexp.FindNode(node, "net"); found {
		num, numErr := sexp.GetInt(netNode, 1)
		name, _ := sexp.GetString(netNode, 2)
		if numErr == nil && netMap != nil {
			if net, ok := netMap.GetByNumber(num); ok {
				pad.Net = net
			}
		}
		if pad.Net == nil && name != "" {
			pad.Net = &Net{Number: num, Name: name}
		}
	}

	return pad, nil
}

// parseLabel extracts a footprint text
// Expected formats:
//
//	(fp_text reference "R1" (at 0 -1.5) (layer "F.SilkS") [hide] (effects ...))
//	(property "Reference" "R1" (at 0 -1.5 0) (layer "F.SilkS") [(hide yes)] (effects ...))
func parseLabel(node kicadsexp.Sexp) (*Label, error) {
	name, err := sexp.GetNodeName(node)
	if err != nil {
		return nil, err
	}

	if name != "property" && name != "fp_text" {
		return nil, fmt.Errorf("not a label: %s", name)
	}

	// fp_text has the same shape as property with the kind in place of the key
	prop, err := sexp.GetProperty(node)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	label := &Label{
		Kind:     strings.ToLower(prop.Key),
		Text:     prop.Value,
		Position: prop.Position,
		Layer:    prop.Layer,
		Size:     prop.Effects.Font.Size,
		Justify:  prop.Effects.Justify.Horizontal,
		Hidden:   prop.Hide,
	}
	if label.Size == (Size{}) {
		label.Size = Size{Width: 1, Height: 1}
	}
	if label.Justify == "" {
		label.Justify = "center"
	}
	return label, nil
}

// parseFootprint extracts a footprint (component) definition
// Expected format: (footprint "library:name" (layer "F.Cu") (at x y [angle]) ...)
func parseFootprint(node kicadsexp.Sexp, netMap *NetMap) (*Footprint, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected footprint list, got leaf")
	}

	footprint := &Footprint{}

	fpName, err := sexp.GetString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footprint name: %w", err)
	}

	// Split library:name format, e.g. "Resistor_SMD:R_0603_1608Metric"
	if lib, name, ok := strings.Cut(fpName, ":"); ok && lib != "" {
		footprint.Library = lib
		footprint.Name = name
	} else {
		footprint.Name = fpName
	}

	layerNode, found := sexp.FindNode(node, "layer")
	if !found {
		return nil, fmt.Errorf("missing required 'layer' field")
	}
	layer, err := sexp.GetString(layerNode, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layer: %w", err)
	}
	footprint.Layer = layer

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	pos, err := sexp.GetPosition(atNode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse position: %w", err)
	}
	footprint.Position = pos
	footprint.atSpan, _ = kicadsexp.SpanOf(atNode)
	for _, item := range sexp.GetListItems(atNode)[2:] {
		if item.IsLeaf() {
			footprint.atExtra = append(footprint.atExtra, item.String())
		}
	}

	footprint.Locked = sexp.GetFlag(node, "locked")

	// Labels: KiCad 8 properties and fp_text of every version
	for _, item := range sexp.Items(node) {
		name, err := sexp.GetNodeName(item)
		if err != nil || item.IsLeaf() || (name != "property" && name != "fp_text") {
			continue
		}
		label, err := parseLabel(item)
		if err != nil {
			return nil, err
		}
		switch label.Kind {
		case "reference":
			footprint.Reference = label.Text
		case "value":
			footprint.Value = label.Text
		}
		// Only properties placed on a layer are drawn
		if name == "fp_text" || label.Layer != "" {
			footprint.Labels = append(footprint.Labels, *label)
		}
	}

	for _, padNode := range sexp.FindAllNodes(node, "pad") {
		pad, err := parsePad(padNode, netMap)
		if err != nil {
			return nil, fmt.Errorf("footprint %s: %w", footprint.Reference, err)
		}
		footprint.Pads = append(footprint.Pads, *pad)
	}

	graphics, err := parseGraphics(node, "fp_")
	if err != nil {
		return nil, fmt.Errorf("footprint %s: %w", footprint.Reference, err)
	}
	footprint.Graphics = graphics

	return footprint, nil
}

// parseFootprints extracts all footprint definitions from the root node
func parseFootprints(root kicadsexp.Sexp, netMap *NetMap) ([]Footprint, error) {
	if root.IsLeaf() {
		return nil, fmt.Errorf("expected root list")
	}

	footprintNodes := sexp.FindAllNodes(root, "footprint")
	footprints := make([]Footprint, 0, len(footprintNodes))

	for i, fpNode := range footprintNodes {
		footprint, err := parseFootprint(fpNode, netMap)
		if err != nil {
			return nil, fmt.Errorf("footprint %d: %w", i, err)
		}
		footprints = append(footprints, *footprint)
	}

	return footprints, nil
}
