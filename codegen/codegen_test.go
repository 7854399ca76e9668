package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edilson258/bug/bytecode"
	"github.com/edilson258/bug/checker"
	"github.com/edilson258/bug/lexer"
	"github.com/edilson258/bug/parser"
	"github.com/edilson258/bug/types"
	"github.com/edilson258/bug/value"
)

var writeNatives = map[string]types.FnPrototype{
	"write": {Arity: 1, ParamTypes: nil, ReturnType: types.Void},
}

func generate(t *testing.T, src string) *value.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors(), "unexpected parse errors")
	diags := checker.New(writeNatives, src).Check(prog)
	require.Empty(t, diags, "unexpected diagnostics")
	return Generate(prog)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestHelloWorld(t *testing.T) {
	prog := generate(t, `f main () void -> "Hello, world!" .write ;`)

	fn, ok := prog.Functions["main"]
	require.True(t, ok, "expected a main function")

	want := concat(
		bytecode.Make(bytecode.Ldc, 0),
		bytecode.Make(bytecode.Invoke, 1),
		bytecode.Make(bytecode.Return),
	)
	require.Equal(t, bytecode.Instructions(want).String(), fn.Code.String())

	require.Equal(t, 2, prog.Pool.Len())
	lit, _ := prog.Pool.Get(0)
	require.Equal(t, value.Str("Hello, world!"), lit)
	name, _ := prog.Pool.Get(1)
	require.Equal(t, value.Str("write"), name)
}

func TestArithmeticAndUserFunction(t *testing.T) {
	prog := generate(t, `
f sum (int a, int b) int -> a b + ret ;
f main () void -> 34 35 .sum .write ;
`)

	sum, ok := prog.Functions["sum"]
	require.True(t, ok, "expected a sum function")
	wantSum := concat(
		bytecode.Make(bytecode.LLoad, 0),
		bytecode.Make(bytecode.LLoad, 1),
		bytecode.Make(bytecode.IAdd),
		bytecode.Make(bytecode.IReturn),
	)
	require.Equal(t, bytecode.Instructions(wantSum).String(), sum.Code.String())
	require.Equal(t, 2, sum.Arity)
	require.Equal(t, 2, sum.MaxLocals)

	main, ok := prog.Functions["main"]
	require.True(t, ok, "expected a main function")
	wantMain := concat(
		bytecode.Make(bytecode.Push, 34),
		bytecode.Make(bytecode.Push, 35),
		bytecode.Make(bytecode.Invoke, 0),
		bytecode.Make(bytecode.Invoke, 1),
		bytecode.Make(bytecode.Return),
	)
	require.Equal(t, bytecode.Instructions(wantMain).String(), main.Code.String())
}

func TestConditional(t *testing.T) {
	prog := generate(t, `f main () void -> 5 3 > if -> "yes" .write ; ;`)

	main, ok := prog.Functions["main"]
	require.True(t, ok, "expected a main function")

	jumpTarget := len(bytecode.Make(bytecode.Push, 5)) +
		len(bytecode.Make(bytecode.Push, 3)) +
		len(bytecode.Make(bytecode.ICmpGT)) +
		len(bytecode.Make(bytecode.JumpIfFalse, 0)) +
		len(bytecode.Make(bytecode.Ldc, 0)) +
		len(bytecode.Make(bytecode.Invoke, 1))

	want := concat(
		bytecode.Make(bytecode.Push, 5),
		bytecode.Make(bytecode.Push, 3),
		bytecode.Make(bytecode.ICmpGT),
		bytecode.Make(bytecode.JumpIfFalse, jumpTarget),
		bytecode.Make(bytecode.Ldc, 0),
		bytecode.Make(bytecode.Invoke, 1),
		bytecode.Make(bytecode.Return),
	)
	require.Equal(t, bytecode.Instructions(want).String(), main.Code.String())
}

func TestEmptyVoidFunctionEmitsBareReturn(t *testing.T) {
	prog := generate(t, `f main () void -> ;`)

	main, ok := prog.Functions["main"]
	require.True(t, ok, "expected a main function")
	require.Equal(t, bytecode.Make(bytecode.Return), []byte(main.Code))
}
