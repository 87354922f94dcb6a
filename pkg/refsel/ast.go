package refsel

// selection is the parse tree of a selector
// Example: R1, C1-C12 U* J?
type selection struct {
	Items []*item `@@*`
}

// item is one selector term
type item struct {
	Glob  *string    `  @Glob`
	Range *rangeTerm `| @@`
}

// rangeTerm is a single reference, or a range when To is set
// Example: C1-C12
type rangeTerm struct {
	From string  `@Ref`
	To   *string `( Dash @Ref )?`
}
