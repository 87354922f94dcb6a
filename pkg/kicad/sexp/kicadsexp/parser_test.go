package kicadsexp

import (
	"strings"
	"testing"
)

func TestLexerTokens(t *testing.T) {
	input := "(at 1.5 -2) # comment\n(name \"a \"\"b\"\" \\n\")"

	want := []Token{
		{Type: TokenLeftParen, Value: "(", Start: 0, End: 1},
		{Type: TokenSymbol, Value: "at", Start: 1, End: 3},
		{Type: TokenSymbol, Value: "1.5", Start: 4, End: 7},
		{Type: TokenSymbol, Value: "-2", Start: 8, End: 10},
		{Type: TokenRightParen, Value: ")", Start: 10, End: 11},
		{Type: TokenLeftParen, Value: "(", Start: 22, End: 23},
		{Type: TokenSymbol, Value: "name", Start: 23, End: 27},
		{Type: TokenString, Value: "a \"b\" \n", Start: 28, End: 40},
		{Type: TokenRightParen, Value: ")", Start: 40, End: 41},
		{Type: TokenEOF, Start: 41, End: 41},
	}

	l := NewLexer(strings.NewReader(input))
	for i, w := range want {
		got, err := l.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("token %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestLexerMultibyteOffsets(t *testing.T) {
	input := `("Ω1" x)`
	l := NewLexer(strings.NewReader(input))

	l.NextToken() // (
	str, err := l.NextToken()
	if err != nil {
		t.Fatal(err)
	}
	if str.Value != "Ω1" || input[str.Start:str.End] != `"Ω1"` {
		t.Errorf("string token = %+v, source %q", str, input[str.Start:str.End])
	}

	sym, _ := l.NextToken()
	if input[sym.Start:sym.End] != "x" {
		t.Errorf("symbol span = %q, want x", input[sym.Start:sym.End])
	}
}

func TestParseSpans(t *testing.T) {
	input := "(kicad_pcb\n  (version 20240108)\n  (footprint \"R\" (at 10 20 90))\n)"

	exprs, err := ParseString(input)
	if err != nil {
		t.Fatalf("ParseString() unexpected error: %v", err)
	}
	if len(exprs) != 1 {
		t.Fatalf("ParseString() returned %d expressions, want 1", len(exprs))
	}

	root := exprs[0].(*List)
	if span := root.Span(); span.Start != 0 || span.End != len(input) {
		t.Errorf("root span = %+v, want [0, %d)", span, len(input))
	}

	version := root.Get(1).(*List)
	if got := input[version.Span().Start:version.Span().End]; got != "(version 20240108)" {
		t.Errorf("version source = %q", got)
	}

	fp := root.Get(2).(*List)
	at := fp.Get(2).(*List)
	if got := input[at.Span().Start:at.Span().End]; got != "(at 10 20 90)" {
		t.Errorf("at source = %q", got)
	}
	if !fp.Span().Contains(at.Span()) || at.Span().Contains(fp.Span()) {
		t.Errorf("span containment wrong: footprint %+v at %+v", fp.Span(), at.Span())
	}

	if at.String() != "(at 10 20 90)" {
		t.Errorf("String() = %q", at.String())
	}
	if _, ok := SpanOf(at.Tail()); ok {
		t.Errorf("SpanOf(Tail()) reported a span for a derived list")
	}
	if _, ok := SpanOf(Symbol("x")); ok {
		t.Errorf("SpanOf(Symbol) reported a span")
	}
}

func TestParseMultipleTopLevel(t *testing.T) {
	exprs, err := ParseString("(a) b (c (d))")
	if err != nil {
		t.Fatal(err)
	}
	if len(exprs) != 3 {
		t.Fatalf("got %d expressions, want 3", len(exprs))
	}
	if !exprs[1].IsLeaf() || exprs[1].String() != "b" {
		t.Errorf("second expression = %v, want symbol b", exprs[1])
	}
	if exprs[2].LeafCount() != 2 {
		t.Errorf("third expression has %d elements, want 2", exprs[2].LeafCount())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed list", "(a (b)"},
		{"stray close", ")"},
		{"unterminated string", `(a "b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseString(tt.input); err == nil {
				t.Errorf("ParseString(%q) expected error, got nil", tt.input)
			}
		})
	}
}
