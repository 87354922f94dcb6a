package report

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/placement"
)

const epsilon = 1e-9

// testBoard has two footprints 5 mm apart, center to center and pad to pad
func testBoard(t *testing.T) *placement.Board {
	t.Helper()

	a := placement.NewFootprint("A", placement.Front, geom.Point{}, geom.NewRect(0, 0, 2_000_000, 2_000_000))
	a.AddPad("GND", geom.Point{X: 1_000_000, Y: 1_000_000})
	a.AddPad("NC", geom.Point{X: 0, Y: 0})

	b := placement.NewFootprint("B", placement.Back, geom.Point{X: 3_000_000, Y: 4_000_000}, geom.NewRect(3_000_000, 4_000_000, 2_000_000, 2_000_000))
	b.AddPad("GND", geom.Point{X: 4_000_000, Y: 5_000_000})
	b.Ignored = true

	board, err := placement.NewBoard(geom.NewRect(0, 0, 50_000_000, 40_000_000), 0, a, b)
	if err != nil {
		t.Fatal(err)
	}
	return board
}

func TestCollect(t *testing.T) {
	s := Collect("demo", testBoard(t))

	if s.Board != "demo" {
		t.Errorf("Board = %q, want demo", s.Board)
	}
	if math.Abs(s.Spread-10) > epsilon {
		t.Errorf("Spread = %v, want 10", s.Spread)
	}
	if math.Abs(s.WiringCost-10) > epsilon {
		t.Errorf("WiringCost = %v, want 10", s.WiringCost)
	}

	if len(s.Footprints) != 2 {
		t.Fatalf("Footprints = %d, want 2", len(s.Footprints))
	}
	b := s.Footprints[1]
	if b.ID != "B" || b.Side != placement.Back || !b.Ignored || b.X != 3 || b.Y != 4 || b.Width != 2 {
		t.Errorf("Footprints[1] = %+v", b)
	}
	if math.Abs(s.Footprints[0].WiringCost-5) > epsilon || s.Footprints[0].Nets != 2 {
		t.Errorf("Footprints[0] = %+v, want 2 nets costing 5", s.Footprints[0])
	}

	want := []NetScore{
		{Name: "GND", Footprints: 2, Pads: 2, WiringCost: 10},
		{Name: "NC", Footprints: 1, Pads: 1, WiringCost: 0},
	}
	if len(s.Nets) != len(want) {
		t.Fatalf("Nets = %+v, want %+v", s.Nets, want)
	}
	for i := range want {
		got := s.Nets[i]
		if got.Name != want[i].Name || got.Footprints != want[i].Footprints ||
			got.Pads != want[i].Pads || math.Abs(got.WiringCost-want[i].WiringCost) > epsilon {
			t.Errorf("Nets[%d] = %+v, want %+v", i, got, want[i])
		}
	}
}

func TestWorkbook(t *testing.T) {
	s := Collect("demo", testBoard(t))

	var buf bytes.Buffer
	if err := s.WriteWorkbook(&buf); err != nil {
		t.Fatalf("WriteWorkbook() unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}
	defer f.Close()

	if got := strings.Join(f.GetSheetList(), ","); got != "Summary,Footprints,Nets" {
		t.Errorf("sheets = %s, want Summary,Footprints,Nets", got)
	}

	tests := []struct {
		sheet, cell, want string
	}{
		{"Summary", "B1", "demo"},
		{"Summary", "B2", "2"},
		{"Summary", "B5", "10"},
		{"Footprints", "A1", "Reference"},
		{"Footprints", "A3", "B"},
		{"Footprints", "B3", "back"},
		{"Footprints", "C3", "3"},
		{"Nets", "A2", "GND"},
		{"Nets", "C2", "2"},
		{"Nets", "A3", "NC"},
	}

	for _, tt := range tests {
		got, err := f.GetCellValue(tt.sheet, tt.cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s, %s) failed: %v", tt.sheet, tt.cell, err)
		}
		if got != tt.want {
			t.Errorf("%s!%s = %q, want %q", tt.sheet, tt.cell, got, tt.want)
		}
	}

	rows, err := f.GetRows("Footprints")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Errorf("Footprints has %d rows, want header and 2", len(rows))
	}
}

func TestSaveWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.xlsx")
	if err := Collect("demo", testBoard(t)).SaveWorkbook(path); err != nil {
		t.Fatalf("SaveWorkbook() unexpected error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() failed: %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("Summary", "A1"); v != "Board" {
		t.Errorf("Summary!A1 = %q, want Board", v)
	}
}

func TestTraceRecord(t *testing.T) {
	board := testBoard(t)
	tr := NewTrace(board, placement.Spread)

	if len(tr.Points) != 1 || tr.Points[0].Percent != 0 || math.Abs(tr.Points[0].Score-10) > epsilon {
		t.Fatalf("NewTrace() points = %+v, want initial spread of 10", tr.Points)
	}

	tr.Record(50, 12_000_000)
	tr.Record(50, 13_000_000)
	tr.Progress(board)(100)

	want := []TracePoint{{0, 10}, {50, 13}, {100, 10}}
	if len(tr.Points) != len(want) {
		t.Fatalf("Points = %+v, want %+v", tr.Points, want)
	}
	for i := range want {
		if tr.Points[i].Percent != want[i].Percent || math.Abs(tr.Points[i].Score-want[i].Score) > epsilon {
			t.Errorf("Points[%d] = %+v, want %+v", i, tr.Points[i], want[i])
		}
	}
}

func TestTraceRender(t *testing.T) {
	tr := NewTrace(testBoard(t), placement.WiringCost)
	tr.Record(100, 7_500_000)

	var buf bytes.Buffer
	if err := tr.Render(&buf, "demo placement"); err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}

	html := buf.String()
	for _, want := range []string{"<html", "demo placement", "wiring_cost", "7.5"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered chart missing %q", want)
		}
	}
}

func TestTraceSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.html")
	tr := NewTrace(testBoard(t), placement.Spread)
	if err := tr.Save(path, "trace"); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	if err := tr.Save(filepath.Join(t.TempDir(), "missing", "trace.html"), "trace"); err == nil {
		t.Errorf("Save() into a missing directory expected error, got nil")
	}
}
