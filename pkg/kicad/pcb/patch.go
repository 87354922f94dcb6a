package pcb

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Patcher rewrites a parsed board in place. Edits are recorded against byte
// spans of the original source and applied together by Bytes, so everything
// outside the edited nodes is written back byte for byte.
type Patcher struct {
	board *Board
	edits map[int]edit // keyed by span start
}

const nanometersPerMM int64 = 1_000_000

type edit struct {
	span Span
	text string
}

// NewPatcher creates a patcher for a board returned by ParseBytes
func NewPatcher(b *Board) *Patcher {
	return &Patcher{
		board: b,
		edits: make(map[int]edit),
	}
}

// MoveFootprint sets the anchor of the footprint with the given reference.
// Coordinates are in nanometres. The footprint rotation and any other atoms
// of its (at ...) node are kept. The in-memory footprint is updated too.
func (p *Patcher) MoveFootprint(ref string, x, y int64) error {
	fp, ok := p.board.FootprintByReference(ref)
	if !ok {
		return fmt.Errorf("footprint %q not found", ref)
	}
	if fp.atSpan.Len() == 0 {
		return fmt.Errorf("footprint %q has no position in the source", ref)
	}

	var sb strings.Builder
	sb.WriteString("(at ")
	sb.WriteString(FormatNanometers(x))
	sb.WriteByte(' ')
	sb.WriteString(FormatNanometers(y))
	for _, atom := range fp.atExtra {
		sb.WriteByte(' ')
		sb.WriteString(atom)
	}
	sb.WriteByte(')')

	p.edits[fp.atSpan.Start] = edit{span: fp.atSpan, text: sb.String()}
	fp.Position.X = FromNanometers(x)
	fp.Position.Y = FromNanometers(y)
	return nil
}

// StripRouting removes every track segment, track arc and via from the
// board. A node that sits alone on its line is removed with its line.
// It returns the number of removed items.
func (p *Patcher) StripRouting() int {
	spans := make([]Span, 0, len(p.board.Tracks)+len(p.board.Vias))
	for _, t := range p.board.Tracks {
		spans = append(spans, t.span)
	}
	for _, v := range p.board.Vias {
		spans = append(spans, v.span)
	}

	removed := 0
	for _, s := range spans {
		if s.Len() == 0 {
			continue
		}
		s = p.wholeLine(s)
		p.edits[s.Start] = edit{span: s}
		removed++
	}

	p.board.Tracks = nil
	p.board.Vias = nil
	return removed
}

// wholeLine widens s to its full line, newline included, when only
// whitespace shares the line with it
func (p *Patcher) wholeLine(s Span) Span {
	src := p.board.source

	start := s.Start
	for start > 0 && (src[start-1] == ' ' || src[start-1] == '\t') {
		start--
	}
	if start > 0 && src[start-1] != '\n' {
		return s
	}

	end := s.End
	for end < len(src) && (src[end] == ' ' || src[end] == '\t' || src[end] == '\r') {
		end++
	}
	switch {
	case end == len(src):
	case src[end] == '\n':
		end++
	default:
		return s
	}

	return Span{Start: start, End: end}
}

// Pending returns the number of recorded edits
func (p *Patcher) Pending() int {
	return len(p.edits)
}

// Bytes returns the board source with all recorded edits applied
func (p *Patcher) Bytes() []byte {
	src := p.board.source

	edits := make([]edit, 0, len(p.edits))
	for _, e := range p.edits {
		edits = append(edits, e)
	}
	sort.Slice(edits, func(i, j int) bool {
		return edits[i].span.Start < edits[j].span.Start
	})

	var buf bytes.Buffer
	buf.Grow(len(src))
	pos := 0
	for _, e := range edits {
		if e.span.Start < pos {
			// Overlaps an earlier edit
			continue
		}
		buf.Write(src[pos:e.span.Start])
		buf.WriteString(e.text)
		pos = e.span.End
	}
	buf.Write(src[pos:])

	return buf.Bytes()
}

// FormatNanometers formats a length in nanometres as millimetres the way
// KiCad writes them: no exponent, at most six decimals, no trailing zeros
func FormatNanometers(nm int64) string {
	sign := ""
	if nm < 0 {
		sign = "-"
		nm = -nm
	}

	whole := nm / nanometersPerMM
	frac := nm % nanometersPerMM
	if frac == 0 {
		return sign + strconv.FormatInt(whole, 10)
	}

	fracStr := strings.TrimRight(fmt.Sprintf("%06d", frac), "0")
	return sign + strconv.FormatInt(whole, 10) + "." + fracStr
}
