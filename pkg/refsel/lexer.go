package refsel

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// selectorLexer splits a selector into references, globs and range dashes.
// Commas, semicolons and whitespace only separate items and are elided.
var selectorLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Sep", Pattern: `[,;]`},

	// A glob is any reference-like word holding at least one wildcard
	{Name: "Glob", Pattern: `[A-Za-z0-9_#.+]*[*?][A-Za-z0-9_#.+*?]*`},
	{Name: "Ref", Pattern: `[A-Za-z0-9_#.+]+`},
	{Name: "Dash", Pattern: `-`},
})
