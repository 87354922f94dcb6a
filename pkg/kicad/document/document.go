// Package document adapts a parsed KiCad board to the placement engine.
//
// KiCad files store millimetres; the placement engine works in integer board
// units. The adapter converts at the boundary using nanometres, KiCad's own
// internal unit, so positions written back are exact to the file's precision.
package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/OpenTraceLab/OpenTracePlace/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTracePlace/pkg/placement"
)

// Document is a KiCad board opened for placement. It implements
// placement.Document; moves are recorded and written out by WriteTo or Save.
type Document struct {
	path    string
	board   *pcb.Board
	patcher *pcb.Patcher

	footprints []*Footprint
	byRef      map[string]*Footprint
	unnamed    int
}

// Open parses the board file at path
func Open(path string) (*Document, error) {
	board, err := pcb.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	doc := New(board)
	doc.path = path
	return doc, nil
}

// Read parses a board from r
func Read(r io.Reader) (*Document, error) {
	board, err := pcb.Parse(r)
	if err != nil {
		return nil, err
	}
	return New(board), nil
}

// New wraps an already parsed board. Footprints without a reference
// designator are left out of placement.
func New(board *pcb.Board) *Document {
	doc := &Document{
		board:   board,
		patcher: pcb.NewPatcher(board),
		byRef:   make(map[string]*Footprint, len(board.Footprints)),
	}
	for i := range board.Footprints {
		fp := &board.Footprints[i]
		if fp.Reference == "" {
			doc.unnamed++
			continue
		}
		f := &Footprint{fp: fp, labelsVisible: true}
		doc.footprints = append(doc.footprints, f)
		if _, dup := doc.byRef[fp.Reference]; !dup {
			doc.byRef[fp.Reference] = f
		}
	}
	return doc
}

// Path returns the file the document was opened from, or ""
func (d *Document) Path() string {
	return d.path
}

// Board returns the underlying parsed board
func (d *Document) Board() *pcb.Board {
	return d.board
}

// Unnamed returns how many footprints were skipped for lacking a reference
func (d *Document) Unnamed() int {
	return d.unnamed
}

// OffCopper returns the references of named footprints that sit on a layer the
// board does not define as copper
func (d *Document) OffCopper() []string {
	var refs []string
	for _, fp := range d.board.OffCopperFootprints() {
		if fp.Reference != "" {
			refs = append(refs, fp.Reference)
		}
	}
	return refs
}

// Outline returns the bounding rectangle of the Edge.Cuts drawings
func (d *Document) Outline() (geom.Rect, error) {
	bbox, err := d.board.EdgeCutsBoundingBox()
	if err != nil {
		return geom.Rect{}, err
	}
	return rectFromBox(bbox), nil
}

// Footprints returns every named footprint in file order
func (d *Document) Footprints() []placement.Source {
	out := make([]placement.Source, len(d.footprints))
	for i, f := range d.footprints {
		out[i] = f
	}
	return out
}

// Footprint looks up a footprint by reference designator. Unknown
// references yield a FOOTPRINT_NOT_FOUND error.
func (d *Document) Footprint(ref string) (*Footprint, error) {
	f, ok := d.byRef[ref]
	if !ok {
		return nil, &placement.Error{
			Code:    placement.CodeFootprintNotFound,
			Message: fmt.Sprintf("board has no footprint %q", ref),
		}
	}
	return f, nil
}

// References returns the reference designators in file order
func (d *Document) References() []string {
	refs := make([]string, len(d.footprints))
	for i, f := range d.footprints {
		refs[i] = f.Reference()
	}
	return refs
}

// SetPosition moves the footprint anchor. It reports false for an unknown id.
func (d *Document) SetPosition(id string, pos geom.Point) bool {
	if _, ok := d.byRef[id]; !ok {
		return false
	}
	return d.patcher.MoveFootprint(id, pos.X, pos.Y) == nil
}

// StripRouting removes all tracks and vias and returns how many were removed
func (d *Document) StripRouting() int {
	return d.patcher.StripRouting()
}

// Modified reports whether any change is waiting to be written
func (d *Document) Modified() bool {
	return d.patcher.Pending() > 0
}

// Bytes returns the board file with all changes applied
func (d *Document) Bytes() []byte {
	return d.patcher.Bytes()
}

// WriteTo writes the board file with all changes applied
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.patcher.Bytes())
	return int64(n), err
}

// Save writes the board to path. An empty path saves over the file the
// document was opened from. The file is replaced atomically.
func (d *Document) Save(path string) error {
	if path == "" {
		path = d.path
	}
	if path == "" {
		return fmt.Errorf("no output path")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := d.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func point(p pcb.Position) geom.Point {
	return geom.Point{X: pcb.ToNanometers(p.X), Y: pcb.ToNanometers(p.Y)}
}

func rectFromBox(bb pcb.BoundingBox) geom.Rect {
	return geom.RectFromCorners(point(bb.Min), point(bb.Max))
}
