// Package kicadsexp provides a lightweight streaming S-expression parser
// for KiCad board files. Every parsed list remembers the byte range it was
// read from, so callers can rewrite single nodes without reformatting the file.
package kicadsexp

import (
	"io"
	"strings"
)

// Sexp represents an S-expression node.
// It can be either a leaf (atom) or a list.
type Sexp interface {
	// IsLeaf returns true if this is an atom (not a list)
	IsLeaf() bool

	// LeafCount returns the number of elements in a list (1 for atoms)
	LeafCount() int

	// Head returns the first element of a list (the atom itself for atoms)
	Head() Sexp

	// Tail returns the rest of the list after the first element (nil for atoms)
	Tail() Sexp

	// String returns the string representation
	String() string
}

// Symbol represents an atomic symbol (string, number, identifier).
// Quoted and unquoted atoms are not distinguished.
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) LeafCount() int { return 1 }
func (s Symbol) Head() Sexp     { return s }
func (s Symbol) Tail() Sexp     { return nil }
func (s Symbol) String() string { return string(s) }

// Span is a half-open byte range [Start, End) in the parsed input
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether other lies within s
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// List represents a list of S-expressions
type List struct {
	elements []Sexp
	span     Span
}

// NewList creates a list without source position
func NewList(elements ...Sexp) *List {
	return &List{elements: elements}
}

func (l *List) IsLeaf() bool { return false }

func (l *List) LeafCount() int {
	return len(l.elements)
}

func (l *List) Head() Sexp {
	if len(l.elements) == 0 {
		return nil
	}
	return l.elements[0]
}

// Tail returns the elements after the head. The result has no span.
func (l *List) Tail() Sexp {
	if len(l.elements) <= 1 {
		return nil
	}
	return &List{elements: l.elements[1:]}
}

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(elem.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Get returns the element at the given index
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Len returns the number of elements in the list
func (l *List) Len() int {
	return len(l.elements)
}

// Items returns the elements of the list. The slice must not be modified.
func (l *List) Items() []Sexp {
	return l.elements
}

// Span returns the byte range of the list including its parentheses
func (l *List) Span() Span {
	return l.span
}

// SpanOf returns the span of s when it is a parsed list
func SpanOf(s Sexp) (Span, bool) {
	l, ok := s.(*List)
	if !ok || l.span.End == 0 {
		return Span{}, false
	}
	return l.span, true
}

// Parse parses S-expressions from an io.Reader
func Parse(r io.Reader) ([]Sexp, error) {
	return NewParser(r).ParseAll()
}

// ParseString parses S-expressions from a string
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}
