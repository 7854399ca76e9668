// Package span attaches source locations to syntactic nodes for diagnostics.
//
// A Span never affects checking or code generation; it exists purely so the
// diagnostic printer can point at the offending source text.
package span

// Span is a source location: a 1-based line and column plus the raw byte
// offsets it covers in the original source text.
type Span struct {
	Line   int
	Column int
	Start  int
	End    int
}

// Merge returns a span covering from s's start to other's end, keeping s's
// line/column (the span's reported position is always its start).
func (s Span) Merge(other Span) Span {
	return Span{Line: s.Line, Column: s.Column, Start: s.Start, End: other.End}
}
