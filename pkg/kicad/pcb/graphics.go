package pcb

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/kicad/sexp/kicadsexp"
)

// graphicKinds maps node suffixes to Graphic.Type. Board graphics use the
// gr_ prefix and footprint graphics fp_.
var graphicKinds = map[string]string{
	"line":   "line",
	"rect":   "rect",
	"circle": "circle",
	"arc":    "arc",
	"poly":   "poly",
}

// parseGraphics extracts all graphic elements with the given prefix that are
// direct children of node. Text items are not graphics.
func parseGraphics(node kicadsexp.Sexp, prefix string) ([]Graphic, error) {
	var graphics []Graphic

	for _, item := range sexp.Items(node) {
		if item == nil || item.IsLeaf() {
			continue
		}
		name, err := sexp.GetNodeName(item)
		if err != nil || !strings.HasPrefix(name, prefix) {
			continue
		}
		kind, ok := graphicKinds[strings.TrimPrefix(name, prefix)]
		if !ok {
			continue
		}

		g, err := parseGraphic(item, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		graphics = append(graphics, *g)
	}

	return graphics, nil
}

// parseGraphic extracts one graphic element
// Expected formats:
//
//	(gr_line (start x y) (end x y) (stroke (width w) (type solid)) (layer "Edge.Cuts"))
//	(gr_rect (start x y) (end x y) ...)
//	(gr_circle (center x y) (end x y) ...)
//	(gr_arc (start x y) (mid x y) (end x y) ...)
//	(gr_poly (pts (xy x y) (xy x y) ...) ...)
func parseGraphic(node kicadsexp.Sexp, kind string) (*Graphic, error) {
	g := &Graphic{Type: kind}

	layerNode, found := sexp.FindNode(node, "layer")
	if !found {
		return nil, fmt.Errorf("missing required 'layer' field")
	}
	layer, err := sexp.GetString(layerNode, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layer: %w", err)
	}
	g.Layer = layer

	g.Width = parseStrokeWidth(node)

	type field struct {
		key string
		dst *Position
	}
	var required []field
	switch kind {
	case "line", "rect":
		required = []field{{"start", &g.Start}, {"end", &g.End}}
	case "circle":
		required = []field{{"center", &g.Center}, {"end", &g.End}}
	case "arc":
		required = []field{{"start", &g.Start}, {"mid", &g.Mid}, {"end", &g.End}}
	case "poly":
		points, err := parsePoints(node)
		if err != nil {
			return nil, err
		}
		g.Points = points
	}

	for _, r := range required {
		posNode, found := sexp.FindNode(node, r.key)
		if !found {
			return nil, fmt.Errorf("missing required '%s' position", r.key)
		}
		pos, err := sexp.GetPositionXY(posNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s position: %w", r.key, err)
		}
		*r.dst = pos
	}

	return g, nil
}

// parseStrokeWidth reads (stroke (width w)) or the KiCad 6 (width w) form
func parseStrokeWidth(node kicadsexp.Sexp) float64 {
	if strokeNode, found := sexp.FindNode(node, "stroke"); found {
		node = strokeNode
	}
	if widthNode, found := sexp.FindNode(node, "width"); found {
		if w, err := sexp.GetFloat(widthNode, 1); err == nil {
			return w
		}
	}
	return 0
}

// parsePoints extracts vertices from a (pts (xy x y) ...) child
func parsePoints(node kicadsexp.Sexp) ([]Position, error) {
	ptsNode, found := sexp.FindNode(node, "pts")
	if !found {
		return nil, fmt.Errorf("missing required 'pts' field")
	}

	var points []Position
	for _, xy := range sexp.FindAllNodes(ptsNode, "xy") {
		pos, err := sexp.GetPositionXY(xy)
		if err != nil {
			return nil, fmt.Errorf("failed to parse polygon point: %w", err)
		}
		points = append(points, pos)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("polygon has no points")
	}
	return points, nil
}
