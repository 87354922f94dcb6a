// Package refsel parses reference designator selectors such as
// "R1, C1-C12, U*" and matches footprint references against them.
//
// A selector is a list of terms separated by commas, semicolons or
// whitespace. A term is an exact reference (case-sensitive), a glob using
// * and ?, or an inclusive range of references sharing a prefix.
package refsel

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
)

var selectorParser = participle.MustBuild[selection](
	participle.Lexer(selectorLexer),
	participle.Elide("Whitespace", "Sep"),
	participle.UseLookahead(2),
)

// numbered splits a reference into its prefix and trailing number
var numbered = regexp.MustCompile(`^(.*?)([0-9]+)$`)

type matcher interface {
	match(ref string) bool
	String() string
}

type exact string

func (e exact) match(ref string) bool { return string(e) == ref }
func (e exact) String() string        { return string(e) }

type glob string

func (g glob) match(ref string) bool {
	ok, _ := path.Match(string(g), ref)
	return ok
}

func (g glob) String() string { return string(g) }

type numRange struct {
	prefix string
	lo, hi int
	text   string
}

func (r numRange) match(ref string) bool {
	m := numbered.FindStringSubmatch(ref)
	if m == nil || m[1] != r.prefix {
		return false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return false
	}
	return n >= r.lo && n <= r.hi
}

func (r numRange) String() string { return r.text }

// Selector matches reference designators. The zero value matches nothing.
type Selector struct {
	terms []matcher
}

// Parse compiles a selector. An empty or blank input yields an empty selector.
func Parse(input string) (*Selector, error) {
	ast, err := selectorParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", input, err)
	}

	sel := &Selector{}
	for _, it := range ast.Items {
		term, err := compile(it)
		if err != nil {
			return nil, fmt.Errorf("invalid selector %q: %w", input, err)
		}
		sel.terms = append(sel.terms, term)
	}
	return sel, nil
}

// MustParse is Parse for selectors known to be valid
func MustParse(input string) *Selector {
	sel, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return sel
}

func compile(it *item) (matcher, error) {
	if it.Glob != nil {
		if _, err := path.Match(*it.Glob, ""); err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", *it.Glob, err)
		}
		return glob(*it.Glob), nil
	}

	r := it.Range
	if r.To == nil {
		return exact(r.From), nil
	}

	from := numbered.FindStringSubmatch(r.From)
	to := numbered.FindStringSubmatch(*r.To)
	text := r.From + "-" + *r.To
	if from == nil || to == nil {
		return nil, fmt.Errorf("range %s needs numbered references", text)
	}
	if from[1] != to[1] {
		return nil, fmt.Errorf("range %s mixes prefixes %q and %q", text, from[1], to[1])
	}
	lo, err := strconv.Atoi(from[2])
	if err != nil {
		return nil, fmt.Errorf("range %s: %w", text, err)
	}
	hi, err := strconv.Atoi(to[2])
	if err != nil {
		return nil, fmt.Errorf("range %s: %w", text, err)
	}
	if lo > hi {
		return nil, fmt.Errorf("range %s is reversed", text)
	}
	return numRange{prefix: from[1], lo: lo, hi: hi, text: text}, nil
}

// Empty reports whether the selector has no terms
func (s *Selector) Empty() bool {
	return s == nil || len(s.terms) == 0
}

// Match reports whether ref is selected by any term
func (s *Selector) Match(ref string) bool {
	if s == nil {
		return false
	}
	for _, t := range s.terms {
		if t.match(ref) {
			return true
		}
	}
	return false
}

// Filter returns the selected references, keeping their order
func (s *Selector) Filter(refs []string) []string {
	var out []string
	for _, ref := range refs {
		if s.Match(ref) {
			out = append(out, ref)
		}
	}
	return out
}

// Unmatched returns the terms that select none of refs
func (s *Selector) Unmatched(refs []string) []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, t := range s.terms {
		hit := false
		for _, ref := range refs {
			if t.match(ref) {
				hit = true
				break
			}
		}
		if !hit {
			out = append(out, t.String())
		}
	}
	return out
}

// String returns the normalised selector text
func (s *Selector) String() string {
	if s == nil {
		return ""
	}
	parts := make([]string, len(s.terms))
	for i, t := range s.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
