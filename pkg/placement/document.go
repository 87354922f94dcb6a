package placement

import (
	"github.com/OpenTraceLab/OpenTracePlace/pkg/geom"
)

// Document is the host side of a placement run. It is passed explicitly to
// Ingest and Apply; the package keeps no reference to it.
type Document interface {
	// Outline returns the bounding rectangle of the board edge.
	Outline() (geom.Rect, error)

	// Footprints enumerates the placeable components.
	Footprints() []Source

	// SetPosition moves the footprint with the given id. It returns false when
	// the document has no such footprint.
	SetPosition(id string, pos geom.Point) bool
}

// Ingest builds a board snapshot from doc. Footprints listed in opts.IgnoredIDs
// are marked ignored. Duplicate ids fail with DUPLICATE_FOOTPRINT.
func Ingest(doc Document, opts Options) (*Board, error) {
	outline, err := doc.Outline()
	if err != nil {
		return nil, wrapError(CodeInvalidConfiguration, err, "read board outline")
	}
	if outline.IsEmpty() {
		return nil, newError(CodeInvalidConfiguration, "board outline %v is empty", outline)
	}
	if opts.Margin < 0 {
		return nil, newError(CodeInvalidConfiguration, "margin must not be negative, got %d", opts.Margin)
	}

	ignored := make(map[string]bool, len(opts.IgnoredIDs))
	for _, id := range opts.IgnoredIDs {
		ignored[id] = true
	}

	board, err := NewBoard(outline, opts.Margin)
	if err != nil {
		return nil, err
	}
	for _, src := range doc.Footprints() {
		fp, err := Build(src, ignored[src.Reference()])
		if err != nil {
			return nil, err
		}
		if err := board.Add(fp); err != nil {
			return nil, err
		}
	}
	return board, nil
}

// ApplyResult reports the outcome of Apply
type ApplyResult struct {
	Applied int
	Skipped []string // Ids the document did not know
}

// Apply writes every footprint position back to doc by id. Unknown ids are
// skipped, not treated as errors.
func Apply(b *Board, doc Document) ApplyResult {
	var res ApplyResult
	for _, fp := range b.footprints {
		if doc.SetPosition(fp.ID, fp.Position) {
			res.Applied++
		} else {
			res.Skipped = append(res.Skipped, fp.ID)
		}
	}
	return res
}
