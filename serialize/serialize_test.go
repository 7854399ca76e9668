package serialize

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edilson258/bug/checker"
	"github.com/edilson258/bug/codegen"
	"github.com/edilson258/bug/lexer"
	"github.com/edilson258/bug/parser"
	"github.com/edilson258/bug/types"
	"github.com/edilson258/bug/value"
)

func buildProgram(t *testing.T) *value.Program {
	t.Helper()
	protos := map[string]types.FnPrototype{
		"write": {Arity: 1, ParamTypes: nil, ReturnType: types.Void},
	}
	src := `
f sum (int a, int b) int -> a b + ret ;
f main () void -> 34 35 .sum .write ;
`
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors(), "unexpected parse errors")
	diags := checker.New(protos, src).Check(prog)
	require.Empty(t, diags, "unexpected diagnostics")
	return codegen.Generate(prog)
}

func TestRoundTrip(t *testing.T) {
	original := buildProgram(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(original, &buf))

	got, err := Decode(&buf)
	require.NoError(t, err)

	require.Equal(t, original.Pool.Len(), got.Pool.Len())
	for i := 0; i < original.Pool.Len(); i++ {
		wantV, _ := original.Pool.Get(i)
		gotV, _ := got.Pool.Get(i)
		require.Equal(t, wantV, gotV, "pool[%d]", i)
	}

	require.Len(t, got.Functions, len(original.Functions))
	for name, fn := range original.Functions {
		gotFn, ok := got.Functions[name]
		require.True(t, ok, "missing function %q after round-trip", name)
		require.Equal(t, fn.Arity, gotFn.Arity, "function %q arity", name)
		require.Equal(t, fn.MaxLocals, gotFn.MaxLocals, "function %q max locals", name)
		require.True(t, bytes.Equal(fn.Code, gotFn.Code), "function %q code mismatch", name)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := Decode(strings.NewReader("NOPE\x01"))
	require.Error(t, err)
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.WriteByte(99)
	_, err := Decode(&buf)
	require.Error(t, err)
}
