package lexer

import (
	"testing"

	"github.com/edilson258/bug/token"
)

func TestNextToken(t *testing.T) {
	input := `f sum (int a, int b) int -> a b + ;
f main () void -> 34 35 .sum .write ; // trailing comment
"hi there" true false 5 > x = ret`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.FUNCTION, "f"},
		{token.IDENT, "sum"},
		{token.LPAREN, "("},
		{token.TYPE_INT, "int"},
		{token.IDENT, "a"},
		{token.COMMA, ","},
		{token.TYPE_INT, "int"},
		{token.IDENT, "b"},
		{token.RPAREN, ")"},
		{token.TYPE_INT, "int"},
		{token.ARROW, "->"},
		{token.IDENT, "a"},
		{token.IDENT, "b"},
		{token.PLUS, "+"},
		{token.SEMI, ";"},
		{token.FUNCTION, "f"},
		{token.IDENT, "main"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.TYPE_VOID, "void"},
		{token.ARROW, "->"},
		{token.INT, "34"},
		{token.INT, "35"},
		{token.DOT, "."},
		{token.IDENT, "sum"},
		{token.DOT, "."},
		{token.IDENT, "write"},
		{token.SEMI, ";"},
		{token.STRING, "hi there"},
		{token.TRUE, "true"},
		{token.FALSE, "false"},
		{token.INT, "5"},
		{token.GT, ">"},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.RETURN, "ret"},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextTokenSpans(t *testing.T) {
	l := New("12 ab")

	first := l.NextToken()
	if first.Span.Line != 1 || first.Span.Column != 1 {
		t.Fatalf("expected first token at line 1 col 1, got line %d col %d", first.Span.Line, first.Span.Column)
	}

	second := l.NextToken()
	if second.Literal != "ab" {
		t.Fatalf("expected second token 'ab', got %q", second.Literal)
	}
	if second.Span.Column != 4 {
		t.Fatalf("expected second token at column 4, got %d", second.Span.Column)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"hello`)
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL for unterminated string, got %q", tok.Type)
	}
}

func TestNoEscapeProcessing(t *testing.T) {
	l := New(`"a\nb"`)
	tok := l.NextToken()
	if tok.Type != token.STRING {
		t.Fatalf("expected STRING, got %q", tok.Type)
	}
	if tok.Literal != `a\nb` {
		t.Fatalf("expected literal escape sequence preserved verbatim, got %q", tok.Literal)
	}
}
