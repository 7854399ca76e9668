// Package stdlib is bug's native function registry: the set of functions
// callable by name without a user-defined function body.
//
// Grounded on teacher object/builtins.go's Name+Builtin table plus
// GetBuiltinByName lookup idiom, and on original_source/std.rs's
// write_fn (print each argument, one per line) for the required
// native's exact behavior. write is required by spec.md §4; read_line,
// int_to_str and str_len round out I/O and conversion for a closed
// scalar type system with no collections (see SPEC_FULL.md §6 - the
// teacher's len/first/rest/last builtins all operate on Array, which
// this language's Non-goals exclude, so none of them have a home here).
package stdlib

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/edilson258/bug/types"
	"github.com/edilson258/bug/value"
)

// New builds the native registry. out receives write's output; in is the
// source read_line reads one line from, with the trailing newline
// stripped.
func New(out io.Writer, in io.Reader) map[string]value.NativeFn {
	reader := bufio.NewReader(in)
	return map[string]value.NativeFn{
		// write's ParamTypes is deliberately nil: original_source/std.rs's
		// write_fn_prototype declares argtypes: vec![], and
		// analysis/mod.rs's zip over that empty vec never type-checks the
		// argument at all, so write accepts any scalar (Integer, String or
		// Boolean) and prints its Inspect() form. Arity is still enforced.
		"write": {
			Prototype: types.FnPrototype{Arity: 1, ParamTypes: nil, ReturnType: types.Void},
			Impl: func(args []value.Value) (value.Value, bool) {
				fmt.Fprintln(out, args[0].Inspect())
				return value.Value{}, true
			},
		},
		"read_line": {
			Prototype: types.FnPrototype{Arity: 0, ParamTypes: nil, ReturnType: types.String},
			Impl: func(args []value.Value) (value.Value, bool) {
				line, err := reader.ReadString('\n')
				if err != nil && line == "" {
					return value.Value{}, false
				}
				line = trimTrailingNewline(line)
				return value.Str(line), true
			},
		},
		"int_to_str": {
			Prototype: types.FnPrototype{Arity: 1, ParamTypes: []types.Type{types.Integer}, ReturnType: types.String},
			Impl: func(args []value.Value) (value.Value, bool) {
				return value.Str(strconv.FormatInt(int64(args[0].Int), 10)), true
			},
		},
		"str_len": {
			Prototype: types.FnPrototype{Arity: 1, ParamTypes: []types.Type{types.String}, ReturnType: types.Integer},
			Impl: func(args []value.Value) (value.Value, bool) {
				return value.Int32(int32(len(args[0].Str))), true
			},
		},
	}
}

func trimTrailingNewline(s string) string {
	n := len(s)
	if n > 0 && s[n-1] == '\n' {
		n--
		if n > 0 && s[n-1] == '\r' {
			n--
		}
	}
	return s[:n]
}

// Prototypes extracts the checker-facing signature map from a native
// registry built by New, so the checker and the engine agree on one
// source of truth for arity and types.
func Prototypes(natives map[string]value.NativeFn) map[string]types.FnPrototype {
	out := make(map[string]types.FnPrototype, len(natives))
	for name, fn := range natives {
		out[name] = fn.Prototype
	}
	return out
}
