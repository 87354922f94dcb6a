package pcb

import (
	"math"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/kicad/sexp/kicadsexp"
)

const fixture = "testdata/board.kicad_pcb"

func abs(x float64) float64 {
	return math.Abs(x)
}

func mustParseFixture(t *testing.T) *Board {
	t.Helper()
	board, err := ParseFile(fixture)
	if err != nil {
		t.Fatalf("ParseFile(%s) failed: %v", fixture, err)
	}
	return board
}

func mustSexp(t *testing.T, input string) kicadsexp.Sexp {
	t.Helper()
	sexps, err := kicadsexp.ParseString(input)
	if err != nil {
		t.Fatalf("Failed to parse s-expression: %v", err)
	}
	return sexps[0]
}

// Test parseHeader function
func TestParseHeader(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantVersion int
		wantGen     string
		wantErr     bool
	}{
		{
			name:        "KiCad 6 with host",
			input:       `(kicad_pcb (version 20211014) (host pcbnew "(6.0.0)"))`,
			wantVersion: 20211014,
			wantGen:     "pcbnew",
		},
		{
			name:        "KiCad 8 with quoted generator",
			input:       `(kicad_pcb (version 20240108) (generator "pcbnew") (generator_version "8.0"))`,
			wantVersion: 20240108,
			wantGen:     "pcbnew",
		},
		{
			name:        "no generator",
			input:       "(kicad_pcb (version 20221018))",
			wantVersion: 20221018,
			wantGen:     "unknown",
		},
		{
			name:    "missing version",
			input:   "(kicad_pcb (generator pcbnew))",
			wantErr: true,
		},
		{
			name:    "KiCad 5 is rejected",
			input:   "(kicad_pcb (version 20171130))",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, gen, err := parseHeader(mustSexp(t, tt.input))
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseHeader() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseHeader() unexpected error: %v", err)
			}
			if version != tt.wantVersion {
				t.Errorf("parseHeader() version = %d, want %d", version, tt.wantVersion)
			}
			if gen != tt.wantGen {
				t.Errorf("parseHeader() generator = %q, want %q", gen, tt.wantGen)
			}
		})
	}
}

// Test Parse with invalid input
func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty file", "", "empty file"},
		{"schematic", "(kicad_sch (version 20211014))", "not a KiCad PCB file"},
		{"missing version", "(kicad_pcb (generator pcbnew))", "missing required 'version'"},
		{"old version", "(kicad_pcb (version 20171130))", "unsupported KiCad version"},
		{"unterminated", "(kicad_pcb (version", "unexpected EOF"},
		{
			name:    "footprint without position",
			input:   `(kicad_pcb (version 20221018) (footprint "R" (layer "F.Cu")))`,
			wantErr: "missing required 'at'",
		},
		{
			name:    "via without drill",
			input:   `(kicad_pcb (version 20221018) (via (at 1 1) (size 0.8) (layers "F.Cu" "B.Cu")))`,
			wantErr: "missing required 'drill'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatalf("Parse() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %q, want error containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParseFixtureHeader(t *testing.T) {
	board := mustParseFixture(t)

	if board.Version != 20240108 {
		t.Errorf("Version = %d, want 20240108", board.Version)
	}
	if board.Generator != "pcbnew" {
		t.Errorf("Generator = %q, want pcbnew", board.Generator)
	}
	if abs(board.General.Thickness-1.6) > 1e-9 {
		t.Errorf("Thickness = %v, want 1.6", board.General.Thickness)
	}
	if board.General.Title != "Placement Fixture" || board.General.Revision != "B" {
		t.Errorf("General = %+v, want title and revision from title_block", board.General)
	}
	if len(board.Layers) != 8 {
		t.Errorf("len(Layers) = %d, want 8", len(board.Layers))
	}

	layers := NewLayerMap(board.Layers)
	if !layers.IsCopperLayer(LayerBackCopper) {
		t.Errorf("IsCopperLayer(%q) = false, want true", LayerBackCopper)
	}
	if layers.IsCopperLayer(LayerEdgeCuts) {
		t.Errorf("IsCopperLayer(%q) = true, want false", LayerEdgeCuts)
	}
	if layers.IsCopperLayer("In1.Cu") {
		t.Errorf("IsCopperLayer(In1.Cu) = true for a layer the board does not define")
	}
}

func TestOffCopperFootprints(t *testing.T) {
	board := mustParseFixture(t)

	if off := board.OffCopperFootprints(); len(off) != 0 {
		t.Errorf("OffCopperFootprints() = %d footprints, want none", len(off))
	}

	board.Footprints[1].Layer = "F.Fab"
	off := board.OffCopperFootprints()
	if len(off) != 1 || off[0].Reference != "R2" {
		t.Errorf("OffCopperFootprints() = %v, want [R2]", off)
	}

	board.Layers = nil
	if off := board.OffCopperFootprints(); off != nil {
		t.Errorf("OffCopperFootprints() without a layer table = %v, want nil", off)
	}
}

func TestParseFixtureFootprints(t *testing.T) {
	board := mustParseFixture(t)

	tests := []struct {
		ref     string
		lib     string
		name    string
		value   string
		x, y    float64
		angle   Angle
		back    bool
		labels  int
		padNets []string
	}{
		{"R1", "Resistor_SMD", "R_0603_1608Metric", "10k", 10, 10, 0, false, 3, []string{"GND", "VCC"}},
		{"R2", "Resistor_SMD", "R_0603_1608Metric", "4k7", 20, 10, 90, false, 2, []string{"GND", "VCC"}},
		{"C1", "Capacitor_SMD", "C_0805_2012Metric", "100n", 30.5, 25.25, 180, true, 2, []string{"VCC", "GND"}},
	}

	if len(board.Footprints) != len(tests) {
		t.Fatalf("len(Footprints) = %d, want %d", len(board.Footprints), len(tests))
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			fp, ok := board.FootprintByReference(tt.ref)
			if !ok {
				t.Fatalf("FootprintByReference(%q) not found", tt.ref)
			}
			if fp.Library != tt.lib || fp.Name != tt.name {
				t.Errorf("library:name = %s:%s, want %s:%s", fp.Library, fp.Name, tt.lib, tt.name)
			}
			if fp.Value != tt.value {
				t.Errorf("Value = %q, want %q", fp.Value, tt.value)
			}
			if fp.Position.X != tt.x || fp.Position.Y != tt.y || fp.Position.Angle != tt.angle {
				t.Errorf("Position = %+v, want (%v, %v, %v)", fp.Position, tt.x, tt.y, tt.angle)
			}
			if fp.IsBack() != tt.back {
				t.Errorf("IsBack() = %v, want %v", fp.IsBack(), tt.back)
			}
			if len(fp.Labels) != tt.labels {
				t.Errorf("len(Labels) = %d, want %d", len(fp.Labels), tt.labels)
			}
			if len(fp.Pads) != len(tt.padNets) {
				t.Fatalf("len(Pads) = %d, want %d", len(fp.Pads), len(tt.padNets))
			}
			for i, want := range tt.padNets {
				if got := fp.Pads[i].NetName(); got != want {
					t.Errorf("pad %s net = %q, want %q", fp.Pads[i].Number, got, want)
				}
			}
		})
	}

	c1, _ := board.FootprintByReference("C1")
	if !c1.Labels[0].Hidden {
		t.Errorf("C1 reference label should be hidden")
	}
	r1, _ := board.FootprintByReference("R1")
	if r1.Labels[2].Kind != "footprint" || !r1.Labels[2].Hidden {
		t.Errorf("R1 third label = %+v, want hidden footprint property", r1.Labels[2])
	}
}

func TestParseFixtureRouting(t *testing.T) {
	board := mustParseFixture(t)

	if len(board.Tracks) != 2 {
		t.Fatalf("len(Tracks) = %d, want 2", len(board.Tracks))
	}

	seg := board.Tracks[0]
	if seg.Arc || seg.Width != 0.25 || seg.Layer != LayerFrontCopper {
		t.Errorf("segment = %+v", seg)
	}
	if seg.Net == nil || seg.Net.Name != "VCC" {
		t.Errorf("segment net = %+v, want VCC", seg.Net)
	}

	arc := board.Tracks[1]
	if !arc.Arc || arc.Mid != (Position{X: 14.6, Y: 13}) {
		t.Errorf("arc = %+v", arc)
	}

	if len(board.Vias) != 1 {
		t.Fatalf("len(Vias) = %d, want 1", len(board.Vias))
	}
	via := board.Vias[0]
	if via.Size != 0.8 || via.Drill != 0.4 || len(via.Layers) != 2 || via.Net.Name != "GND" {
		t.Errorf("via = %+v", via)
	}
}

func TestParseLabelFormats(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Label
		wantErr bool
	}{
		{
			name:  "KiCad 6 fp_text",
			input: `(fp_text reference "U1" (at 0 -2.5) (layer "F.SilkS") (effects (font (size 1.2 0.8) (thickness 0.15))))`,
			want: Label{
				Kind:     "reference",
				Text:     "U1",
				Position: PositionAngle{Position: Position{X: 0, Y: -2.5}},
				Layer:    "F.SilkS",
				Size:     Size{Width: 0.8, Height: 1.2},
				Justify:  "center",
			},
		},
		{
			name:  "KiCad 6 hidden fp_text",
			input: `(fp_text value "LM358" (at 0 2.5) (layer "F.Fab") hide (effects (justify left)))`,
			want: Label{
				Kind:     "value",
				Text:     "LM358",
				Position: PositionAngle{Position: Position{X: 0, Y: 2.5}},
				Layer:    "F.Fab",
				Size:     Size{Width: 1, Height: 1},
				Justify:  "left",
				Hidden:   true,
			},
		},
		{
			name:  "KiCad 8 property",
			input: `(property "Reference" "J3" (at 1 2 90) (layer "B.SilkS") (effects (font (size 1 1)) (hide yes)))`,
			want: Label{
				Kind:     "reference",
				Text:     "J3",
				Position: PositionAngle{Position: Position{X: 1, Y: 2}, Angle: 90},
				Layer:    "B.SilkS",
				Size:     Size{Width: 1, Height: 1},
				Justify:  "center",
				Hidden:   true,
			},
		},
		{
			name:    "not a label",
			input:   `(pad "1" smd rect)`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, err := parseLabel(mustSexp(t, tt.input))
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseLabel() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseLabel() unexpected error: %v", err)
			}
			if *label != tt.want {
				t.Errorf("parseLabel() = %+v, want %+v", *label, tt.want)
			}
		})
	}
}

func TestParseKiCad6Footprint(t *testing.T) {
	input := `(footprint "Package_SO:SOIC-8" locked (layer "B.Cu")
		(at 42.5 17 270)
		(fp_text reference "U1" (at 0 -3.4) (layer "B.SilkS"))
		(fp_text value "LM358" (at 0 3.4) (layer "B.Fab"))
		(fp_line (start -2 -2.5) (end 2 -2.5) (layer "B.CrtYd") (width 0.05))
		(pad "1" smd rect (at -2.475 -1.905 270) (size 1.95 0.6) (layers "B.Cu" "B.Paste" "B.Mask") (net 3 "SDA"))
		(pad "2" thru_hole circle (at 2.475 -1.905 270) (size 1.6 1.6) (drill 0.8) (layers *.Cu *.Mask)))`

	fp, err := parseFootprint(mustSexp(t, input), NewNetMap(nil))
	if err != nil {
		t.Fatalf("parseFootprint() unexpected error: %v", err)
	}

	if !fp.Locked {
		t.Errorf("Locked = false, want true")
	}
	if fp.Reference != "U1" || fp.Value != "LM358" {
		t.Errorf("Reference/Value = %q/%q, want U1/LM358", fp.Reference, fp.Value)
	}
	if len(fp.atExtra) != 1 || fp.atExtra[0] != "270" {
		t.Errorf("atExtra = %q, want [270]", fp.atExtra)
	}
	if len(fp.Graphics) != 1 || fp.Graphics[0].Width != 0.05 {
		t.Errorf("Graphics = %+v, want one line with width 0.05", fp.Graphics)
	}

	// Inline net name is used when the board has no net table entry
	if got := fp.Pads[0].NetName(); got != "SDA" {
		t.Errorf("pad 1 net = %q, want SDA", got)
	}
	if fp.Pads[1].Drill != 0.8 || fp.Pads[1].Net != nil {
		t.Errorf("pad 2 = %+v, want drill 0.8 and no net", fp.Pads[1])
	}
}

func TestParseGraphics(t *testing.T) {
	input := `(kicad_pcb
		(gr_line (start 0 0) (end 10 0) (layer "Edge.Cuts") (width 0.1))
		(gr_circle (center 5 5) (end 7 5) (layer "F.SilkS") (stroke (width 0.12) (type solid)))
		(gr_arc (start 0 0) (mid 1 1) (end 2 0) (layer "Edge.Cuts"))
		(gr_poly (pts (xy 0 0) (xy 1 0) (xy 1 1)) (layer "F.Cu"))
		(gr_text "ignored" (at 1 1) (layer "F.SilkS"))
	)`

	graphics, err := parseGraphics(mustSexp(t, input), "gr_")
	if err != nil {
		t.Fatalf("parseGraphics() unexpected error: %v", err)
	}

	wantTypes := []string{"line", "circle", "arc", "poly"}
	if len(graphics) != len(wantTypes) {
		t.Fatalf("len(graphics) = %d, want %d", len(graphics), len(wantTypes))
	}
	for i, want := range wantTypes {
		if graphics[i].Type != want {
			t.Errorf("graphics[%d].Type = %q, want %q", i, graphics[i].Type, want)
		}
	}
	if graphics[1].Width != 0.12 {
		t.Errorf("circle width = %v, want 0.12", graphics[1].Width)
	}
	if len(graphics[3].Points) != 3 {
		t.Errorf("poly points = %d, want 3", len(graphics[3].Points))
	}

	if _, err := parseGraphics(mustSexp(t, `(x (gr_line (start 0 0) (layer "F.Cu")))`), "gr_"); err == nil {
		t.Errorf("parseGraphics() expected error for line without end")
	}
}
