package pcb

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/kicad/sexp/kicadsexp"
)

// Minimum supported KiCad version (6.0 = 20211014)
const MinSupportedVersion = 20211014

// ParseFile reads and parses a KiCad board file
func ParseFile(filename string) (*Board, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseBytes(data)
}

// Parse reads and parses a KiCad board from an io.Reader. The whole input is
// kept in memory so the board can be patched and written back.
func Parse(r io.Reader) (*Board, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read board: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses a KiCad board held in memory. The board keeps a reference
// to data.
func ParseBytes(data []byte) (*Board, error) {
	sexps, err := kicadsexp.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}

	if len(sexps) == 0 {
		return nil, fmt.Errorf("empty file or no valid s-expressions found")
	}

	// The root should be a (kicad_pcb ...) expression
	root := sexps[0]

	rootName, err := sexp.GetNodeName(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get root node name: %w", err)
	}
	if rootName != "kicad_pcb" {
		return nil, fmt.Errorf("not a KiCad PCB file: expected 'kicad_pcb', got '%s'", rootName)
	}

	version, generator, err := parseHeader(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	board := &Board{
		Version:   version,
		Generator: generator,
		source:    data,
	}

	if generalNode, found := sexp.FindNode(root, "general"); found {
		general, err := parseGeneral(generalNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse general section: %w", err)
		}
		board.General = *general
	}
	if titleNode, found := sexp.FindNode(root, "title_block"); found {
		parseTitleBlock(titleNode, &board.General)
	}

	if layersNode, found := sexp.FindNode(root, "layers"); found {
		layers, err := parseLayers(layersNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layers section: %w", err)
		}
		board.Layers = layers
	}

	nets, err := parseNets(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse nets: %w", err)
	}
	board.Nets = nets
	netMap := NewNetMap(board.Nets)

	graphics, err := parseGraphics(root, "gr_")
	if err != nil {
		return nil, fmt.Errorf("failed to parse graphics: %w", err)
	}
	board.Graphics = graphics

	tracks, err := parseTracks(root, netMap)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tracks: %w", err)
	}
	board.Tracks = tracks

	vias, err := parseVias(root, netMap)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vias: %w", err)
	}
	board.Vias = vias

	footprints, err := parseFootprints(root, netMap)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footprints: %w", err)
	}
	board.Footprints = footprints

	return board, nil
}

// parseHeader extracts version and generator information from the root node
// Expected format: (kicad_pcb (version 20221018) (generator pcbnew) ...)
func parseHeader(root kicadsexp.Sexp) (version int, generator string, err error) {
	versionNode, found := sexp.FindNode(root, "version")
	if !found {
		return 0, "", fmt.Errorf("missing required 'version' field")
	}

	ver, err := sexp.GetInt(versionNode, 1)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}

	if ver < MinSupportedVersion {
		return 0, "", fmt.Errorf("unsupported KiCad version: %d (minimum required: %d / KiCad 6.0)", ver, MinSupportedVersion)
	}

	gen := "unknown"
	if hostNode, found := sexp.FindNode(root, "host"); found {
		// Older format: (host pcbnew "(6.0.0)")
		if toolName, err := sexp.GetString(hostNode, 1); err == nil {
			gen = toolName
		}
	} else if genNode, found := sexp.FindNode(root, "generator"); found {
		if generatorName, err := sexp.GetString(genNode, 1); err == nil {
			gen = generatorName
		}
	}

	return ver, gen, nil
}

// parseGeneral extracts general board properties
// Expected format: (general (thickness 1.6) ...)
func parseGeneral(node kicadsexp.Sexp) (*General, error) {
	general := &General{}

	if thicknessNode, found := sexp.FindNode(node, "thickness"); found {
		thickness, err := sexp.GetFloat(thicknessNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse thickness: %w", err)
		}
		general.Thickness = thickness
	}

	parseTitleBlock(node, general)
	return general, nil
}

// parseTitleBlock fills the optional title, date, rev and company fields
func parseTitleBlock(node kicadsexp.Sexp, general *General) {
	fields := []struct {
		key string
		dst *string
	}{
		{"title", &general.Title},
		{"date", &general.Date},
		{"rev", &general.Revision},
		{"company", &general.Company},
	}
	for _, f := range fields {
		if n, found := sexp.FindNode(node, f.key); found {
			if v, err := sexp.GetString(n, 1); err == nil {
				*f.dst = v
			}
		}
	}
}

// parseLayers extracts layer definitions
// Expected format: (layers (0 "F.Cu" signal) (31 "B.Cu" signal) ...)
func parseLayers(node kicadsexp.Sexp) ([]Layer, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected (layers ...) list")
	}

	layerNodes := sexp.GetListItems(node)
	if len(layerNodes) == 0 {
		return nil, fmt.Errorf("no layers defined")
	}

	var layers []Layer
	for _, layerNode := range layerNodes {
		if layerNode.IsLeaf() {
			continue
		}

		number, err := sexp.GetInt(layerNode, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer number: %w", err)
		}

		name, err := sexp.GetString(layerNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer name: %w", err)
		}

		// Layer type is optional in some cases
		layerType, err := sexp.GetString(layerNode, 2)
		if err != nil {
			layerType = "user"
		}

		layers = append(layers, Layer{
			Number: number,
			Name:   name,
			Type:   layerType,
		})
	}

	return layers, nil
}

// parseNets extracts net definitions from the root node
// Expected format: (net 0 "") (net 1 "GND") (net 2 "+5V") ...
func parseNets(root kicadsexp.Sexp) ([]Net, error) {
	if root.IsLeaf() {
		return nil, fmt.Errorf("expected root list")
	}

	netNodes := sexp.FindAllNodes(root, "net")
	nets := make([]Net, 0, len(netNodes))

	for _, netNode := range netNodes {
		number, err := sexp.GetInt(netNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse net number: %w", err)
		}

		// Name is optional (net 0 often has empty name)
		name, _ := sexp.GetString(netNode, 2)

		nets = append(nets, Net{
			Number: number,
			Name:   name,
		})
	}

	return nets, nil
}
