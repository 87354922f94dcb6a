package pcb

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/kicad/sexp/kicadsexp"
)

// parseTrack extracts a track segment or arc (copper trace)
// Expected formats:
//
//	(segment (start x y) (end x y) (width w) (layer "F.Cu") (net n) ...)
//	(arc (start x y) (mid x y) (end x y) (width w) (layer "F.Cu") (net n) ...)
func parseTrack(node kicadsexp.Sexp, netMap *NetMap) (*Track, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected track list, got leaf")
	}

	name, err := sexp.GetNodeName(node)
	if err != nil {
		return nil, err
	}

	track := &Track{
		Arc:   name == "arc",
		Width: 0.15, // Default width
	}
	track.span, _ = kicadsexp.SpanOf(node)

	points := []struct {
		key string
		dst *Position
	}{
		{"start", &track.Start},
		{"end", &track.End},
	}
	if track.Arc {
		points = append(points, struct {
			key string
			dst *Position
		}{"mid", &track.Mid})
	}
	for _, p := range points {
		posNode, found := sexp.FindNode(node, p.key)
		if !found {
			return nil, fmt.Errorf("missing required '%s' position", p.key)
		}
		pos, err := sexp.GetPositionXY(posNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s position: %w", p.key, err)
		}
		*p.dst = pos
	}

	if widthNode, found := sexp.FindNode(node, "width"); found {
		width, err := sexp.GetFloat(widthNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse width: %w", err)
		}
		track.Width = width
	}

	layerNode, found := sexp.FindNode(node, "layer")
	if !found {
		return nil, fmt.Errorf("missing required 'layer' field")
	}
	layer, err := sexp.GetString(layerNode, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layer: %w", err)
	}
	track.Layer = layer

	// Net is optional, unconnected tracks have none
	if netNode, found := sexp.FindNode(node, "net"); found {
		netNum, err := sexp.GetInt(netNode, 1)
		if err == nil && netMap != nil {
			if net, ok := netMap.GetByNumber(netNum); ok {
				track.Net = net
			}
		}
	}

	track.Locked = sexp.GetFlag(node, "locked")

	return track, nil
}

// parseVia extracts a via definition
// Expected format: (via (at x y) (size diameter) (drill diameter) (layers "L1" "L2") (net n) ...)
func parseVia(node kicadsexp.Sexp, netMap *NetMap) (*Via, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected via list, got leaf")
	}

	via := &Via{}
	via.span, _ = kicadsexp.SpanOf(node)

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	pos, err := sexp.GetPositionXY(atNode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse position: %w", err)
	}
	via.Position = pos

	sizeNode, found := sexp.FindNode(node, "size")
	if !found {
		return nil, fmt.Errorf("missing required 'size' field")
	}
	size, err := sexp.GetFloat(sizeNode, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse size: %w", err)
	}
	via.Size = size

	drillNode, found := sexp.FindNode(node, "drill")
	if !found {
		return nil, fmt.Errorf("missing required 'drill' field")
	}
	drill, err := sexp.GetFloat(drillNode, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse drill: %w", err)
	}
	via.Drill = drill

	layersNode, found := sexp.FindNode(node, "layers")
	if !found {
		return nil, fmt.Errorf("missing required 'layers' field")
	}
	for _, item := range sexp.GetListItems(layersNode) {
		if sym, ok := item.(kicadsexp.Symbol); ok && sym != "" {
			via.Layers = append(via.Layers, string(sym))
		}
	}

	if netNode, found := sexp.FindNode(node, "net"); found {
		netNum, err := sexp.GetInt(netNode, 1)
		if err == nil && netMap != nil {
			if net, ok := netMap.GetByNumber(netNum); ok {
				via.Net = net
			}
		}
	}

	via.Locked = sexp.GetFlag(node, "locked")

	return via, nil
}

// parseTracks extracts all segment and arc tracks from the root node, in file order
func parseTracks(root kicadsexp.Sexp, netMap *NetMap) ([]Track, error) {
	var tracks []Track
	for i, item := range sexp.Items(root) {
		if item == nil || item.IsLeaf() {
			continue
		}
		name, err := sexp.GetNodeName(item)
		if err != nil || (name != "segment" && name != "arc") {
			continue
		}
		track, err := parseTrack(item, netMap)
		if err != nil {
			return nil, fmt.Errorf("%s at item %d: %w", name, i, err)
		}
		tracks = append(tracks, *track)
	}
	return tracks, nil
}

// parseVias extracts all via definitions from the root node
func parseVias(root kicadsexp.Sexp, netMap *NetMap) ([]Via, error) {
	viaNodes := sexp.FindAllNodes(root, "via")
	vias := make([]Via, 0, len(viaNodes))

	for i, viaNode := range viaNodes {
		via, err := parseVia(viaNode, netMap)
		if err != nil {
			return nil, fmt.Errorf("via %d: %w", i, err)
		}
		vias = append(vias, *via)
	}

	return vias, nil
}
