package diagnostic

import (
	"strings"
	"testing"

	"github.com/edilson258/bug/span"
)

func TestRenderIncludesPathLineColumnKindAndMessage(t *testing.T) {
	d := Diagnostic{Kind: Name, Message: "undeclared identifier 'nope'", Span: span.Span{Line: 1, Column: 1, Start: 0, End: 4}}
	out := Render("example.bug", d, "nope .write ;")

	if !strings.Contains(out, "example.bug:1:1 ERROR") {
		t.Fatalf("expected rendered output to include the path:line:column header, got %q", out)
	}
	if !strings.Contains(out, "Name Error") {
		t.Fatalf("expected rendered output to mention the diagnostic kind, got %q", out)
	}
	if !strings.Contains(out, "undeclared identifier 'nope'") {
		t.Fatalf("expected rendered output to include the message, got %q", out)
	}
}

func TestRenderAllSeparatesDiagnostics(t *testing.T) {
	diags := []Diagnostic{
		{Kind: Type, Message: "first", Span: span.Span{Line: 1, Start: 0, End: 1}},
		{Kind: Argument, Message: "second", Span: span.Span{Line: 1, Start: 1, End: 2}},
	}
	out := RenderAll("example.bug", diags, "ab")
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Fatalf("expected both diagnostics rendered, got %q", out)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Syntax:             "Syntax Error",
		Type:               "Type Error",
		Name:               "Name Error",
		Argument:           "Argument Error",
		IllegalDeclaration: "Illegal Declaration",
		Runtime:            "Runtime Error",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
