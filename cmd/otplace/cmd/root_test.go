package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/OpenTraceLab/OpenTracePlace/internal/history"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/kicad/document"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/placement"
)

const fixture = "../../../pkg/kicad/pcb/testdata/board.kicad_pcb"

// copyFixture copies the test board into a fresh directory
func copyFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(fixture)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "board.kicad_pcb")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs otplace with args and returns its standard output
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("OTPLACE_CONFIG", "")
	t.Chdir(t.TempDir())

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPlaceCommand(t *testing.T) {
	in := copyFixture(t)
	out := filepath.Join(filepath.Dir(in), "placed.kicad_pcb")
	chart := filepath.Join(filepath.Dir(in), "trace.html")
	db := filepath.Join(filepath.Dir(in), "runs.db")

	stdout, err := execute(t, "place", in,
		"-o", out,
		"--objective", "spread",
		"--margin-mm", "0.5",
		"--iterations", "500",
		"--seed", "7",
		"--ignore", "C1",
		"--strip-routing",
		"--chart", chart,
		"--history", db)
	if err != nil {
		t.Fatalf("place failed: %v\n%s", err, stdout)
	}
	for _, want := range []string{"Placed 3 footprints", "Removed 3 tracks and vias", "Wrote " + out} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}

	doc, err := document.Open(out)
	if err != nil {
		t.Fatalf("reading placed board failed: %v", err)
	}
	if len(doc.Board().Tracks) != 0 || len(doc.Board().Vias) != 0 {
		t.Errorf("placed board still has routing")
	}
	c1, err := doc.Footprint("C1")
	if err != nil {
		t.Fatal(err)
	}
	if got := c1.Position(); got.X != 30_500_000 || got.Y != 25_250_000 {
		t.Errorf("ignored C1 moved to %v", got)
	}

	opts := placement.DefaultOptions()
	opts.Margin = 500_000
	opts.IgnoredIDs = []string{"C1"}
	board, err := placement.Ingest(doc, opts)
	if err != nil {
		t.Fatal(err)
	}
	if report := placement.Validate(board, opts.Policy); !report.Valid {
		t.Errorf("placed board invalid: %v", report.Err())
	}

	if html, err := os.ReadFile(chart); err != nil || !strings.Contains(string(html), "spread") {
		t.Errorf("chart not written: %v", err)
	}

	store, err := history.Open(db)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	runs, err := store.List(t.Context(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Objective != "spread" || runs[0].Attempts != 500 || runs[0].Output != out {
		t.Errorf("history = %+v, want one spread run of 500 steps", runs)
	}
	if runs[0].Seed == nil || *runs[0].Seed != 7 {
		t.Errorf("history seed = %v, want 7", runs[0].Seed)
	}

	listing, err := execute(t, "history", "--history", db)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(listing, runs[0].ID[:8]) {
		t.Errorf("history listing missing run %s:\n%s", runs[0].ID, listing)
	}
}

func TestPlaceDryRun(t *testing.T) {
	in := copyFixture(t)
	before, _ := os.ReadFile(in)

	stdout, err := execute(t, "place", in, "--iterations", "50", "--seed", "1", "--dry-run")
	if err != nil {
		t.Fatalf("place --dry-run failed: %v", err)
	}
	if !strings.Contains(stdout, "Dry run") {
		t.Errorf("output missing dry run notice:\n%s", stdout)
	}
	after, _ := os.ReadFile(in)
	if !bytes.Equal(before, after) {
		t.Errorf("dry run modified the input board")
	}
}

func TestPlaceUnseededIsReproducible(t *testing.T) {
	in := copyFixture(t)
	dir := filepath.Dir(in)
	db := filepath.Join(dir, "runs.db")
	first := filepath.Join(dir, "first.kicad_pcb")
	second := filepath.Join(dir, "second.kicad_pcb")

	if _, err := execute(t, "place", in, "-o", first, "--iterations", "300", "--history", db); err != nil {
		t.Fatalf("place failed: %v", err)
	}

	store, err := history.Open(db)
	if err != nil {
		t.Fatal(err)
	}
	runs, err := store.List(t.Context(), 0)
	store.Close()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Seed == nil {
		t.Fatalf("history = %+v, want one run with a seed", runs)
	}
	seed := strconv.FormatUint(*runs[0].Seed, 10)

	stdout, err := execute(t, "place", in, "-o", second, "--iterations", "300", "--seed", seed)
	if err != nil {
		t.Fatalf("place --seed %s failed: %v", seed, err)
	}
	if !strings.Contains(stdout, seed) {
		t.Errorf("output missing seed %s:\n%s", seed, stdout)
	}

	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if !bytes.Equal(a, b) {
		t.Errorf("replaying seed %s produced a different board", seed)
	}
}

func TestPlaceAllIgnored(t *testing.T) {
	in := copyFixture(t)

	_, err := execute(t, "place", in, "--ignore", "*", "--iterations", "10")
	if !placement.IsCode(err, placement.CodeNoEligibleFootprints) {
		t.Errorf("place with every footprint ignored: error = %v, want %s", err, placement.CodeNoEligibleFootprints)
	}
}

func TestPlaceInvalidFlags(t *testing.T) {
	in := copyFixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"objective", []string{"--objective", "random"}},
		{"collision", []string{"--collision", "sometimes"}},
		{"iterations", []string{"--iterations", "0"}},
		{"selector", []string{"--ignore", "C9-C1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"place", in}, tt.args...)
			if _, err := execute(t, args...); err == nil {
				t.Errorf("place %v expected error, got nil", tt.args)
			}
		})
	}
}

func TestCheckCommand(t *testing.T) {
	in := copyFixture(t)

	stdout, err := execute(t, "check", in)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(stdout, "is valid") {
		t.Errorf("output missing validity:\n%s", stdout)
	}

	// A margin wider than half the board leaves no room to move
	stdout, err = execute(t, "check", in, "--margin-mm", "30")
	if err != nil {
		t.Fatalf("check with a huge margin failed: %v", err)
	}
	if !strings.Contains(stdout, "do not fit") {
		t.Errorf("output missing fit warning:\n%s", stdout)
	}
}

func TestCheckOffCopper(t *testing.T) {
	in := copyFixture(t)
	data, err := os.ReadFile(in)
	if err != nil {
		t.Fatal(err)
	}
	// R1 is the first footprint, its own layer follows the footprint name
	data = bytes.Replace(data, []byte("(layer \"F.Cu\")"), []byte("(layer \"F.Fab\")"), 1)
	if err := os.WriteFile(in, data, 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, err := execute(t, "check", in)
	if err != nil {
		t.Fatalf("check failed: %v\n%s", err, stdout)
	}
	if !strings.Contains(stdout, "not on a copper layer: R1") {
		t.Errorf("output missing copper layer warning:\n%s", stdout)
	}
}

func TestCheckOverlap(t *testing.T) {
	in := copyFixture(t)
	data, err := os.ReadFile(in)
	if err != nil {
		t.Fatal(err)
	}
	// Move R2 on top of R1
	data = bytes.Replace(data, []byte("(at 20 10 90)"), []byte("(at 10.5 10 90)"), 1)
	if err := os.WriteFile(in, data, 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, err := execute(t, "check", in)
	if err == nil {
		t.Fatalf("check of overlapping footprints expected error")
	}
	for _, want := range []string{"1 violations", "overlap", "R1, R2"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}

	// Ignoring one of the pair leaves the other as an obstacle check only
	if _, err := execute(t, "check", in, "--ignore", "R2", "--ignored-obstacles=false"); err != nil {
		t.Errorf("check with R2 ignored and not an obstacle failed: %v", err)
	}
}

func TestScoreCommand(t *testing.T) {
	in := copyFixture(t)
	xlsx := filepath.Join(filepath.Dir(in), "scores.xlsx")

	stdout, err := execute(t, "score", in, "--nets", "--xlsx", xlsx)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	for _, want := range []string{"spread", "wiring cost", "GND", "VCC"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}

	f, err := excelize.OpenFile(xlsx)
	if err != nil {
		t.Fatalf("workbook not written: %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("Summary", "B2"); v != "3" {
		t.Errorf("Summary!B2 = %q, want 3 footprints", v)
	}
}

func TestConfigFile(t *testing.T) {
	in := copyFixture(t)
	dir := filepath.Dir(in)

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("objective: spread\niterations: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "place", in, "--config", bad); !placement.IsCode(err, placement.CodeInvalidConfiguration) {
		t.Errorf("place with a bad config: error = %v, want %s", err, placement.CodeInvalidConfiguration)
	}

	good := filepath.Join(dir, "otplace.toml")
	if err := os.WriteFile(good, []byte("objective = \"spread\"\niterations = 5000\nignored = [\"C1\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	stdout, err := execute(t, "place", in, "--config", good, "--iterations", "20", "--dry-run")
	if err != nil {
		t.Fatalf("place with a config file failed: %v", err)
	}
	if !strings.Contains(stdout, "(spread)") || !strings.Contains(stdout, "of 20 steps") {
		t.Errorf("config and flag override not applied:\n%s", stdout)
	}
}

func TestHistoryWithoutDatabase(t *testing.T) {
	if _, err := execute(t, "history"); err == nil {
		t.Errorf("history without a database expected error, got nil")
	}
}
