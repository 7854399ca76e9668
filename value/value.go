// Package value defines bug's runtime value representation, its constant
// pool, and the two function shapes (user-defined and native) the engine
// dispatches between.
//
// Grounded on teacher object/object.go for the surface shape of a runtime
// object system (Type/Inspect-like accessors, CompiledFunction), but
// spec.md §3 closes the value set to three scalar kinds with no heap
// graph, so Value is a concrete tagged struct rather than the teacher's
// Object interface over many concrete pointer types — recorded as an
// Open Question decision in DESIGN.md.
package value

import (
	"fmt"

	"github.com/edilson258/bug/bytecode"
	"github.com/edilson258/bug/types"
)

// Kind tags which field of a Value is meaningful.
type Kind byte

const (
	IntKind Kind = iota
	StrKind
	BoolKind
)

// Value is a runtime value: exactly one of Int, Str or Bool is
// meaningful, selected by Kind. Values are immutable once constructed;
// "cloning" a Value (Ldc, LLoad) is simply a copy of this struct.
type Value struct {
	Kind Kind
	Int  int32
	Str  string
	Bool bool
}

// Int32 constructs an Integer value.
func Int32(n int32) Value { return Value{Kind: IntKind, Int: n} }

// Str constructs a String value.
func Str(s string) Value { return Value{Kind: StrKind, Str: s} }

// Bool constructs a Boolean value.
func Bool(b bool) Value { return Value{Kind: BoolKind, Bool: b} }

// Type reports the static type this value's kind corresponds to.
func (v Value) Type() types.Type {
	switch v.Kind {
	case IntKind:
		return types.Integer
	case StrKind:
		return types.String
	case BoolKind:
		return types.Boolean
	default:
		return types.Void
	}
}

// Inspect renders v the way it would print via the write native.
func (v Value) Inspect() string {
	switch v.Kind {
	case IntKind:
		return fmt.Sprintf("%d", v.Int)
	case StrKind:
		return v.Str
	case BoolKind:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return "<void>"
	}
}

// Pool is the constant pool: an append-only, immutable list of values
// shared by the whole Program. String constants used by Ldc and by
// Invoke's interned callee names both live here.
type Pool struct {
	values []Value
}

// Add appends v to the pool and returns its index.
func (p *Pool) Add(v Value) int {
	p.values = append(p.values, v)
	return len(p.values) - 1
}

// Intern returns the index of an existing entry equal to v, adding one if
// none exists. Used for Invoke's callee names and Boolean literal
// constants so identical values share a single pool slot; the code
// generator adds each string literal with Add, one slot per literal.
func (p *Pool) Intern(v Value) int {
	for i, existing := range p.values {
		if existing == v {
			return i
		}
	}
	return p.Add(v)
}

// Get returns the value at index, or false if index is out of range.
func (p *Pool) Get(index int) (Value, bool) {
	if index < 0 || index >= len(p.values) {
		return Value{}, false
	}
	return p.values[index], true
}

// Len reports how many entries the pool holds.
func (p *Pool) Len() int { return len(p.values) }

// Values exposes the pool contents in insertion order, for serialization.
func (p *Pool) Values() []Value { return p.values }

// DefinedFn is a user-defined, compiled function.
type DefinedFn struct {
	Arity     int
	MaxLocals int
	Code      bytecode.Instructions
}

// NativeFn is a host-implemented function available to call by name. Impl
// receives its arguments already in positional order (arg0 first) and
// returns a value (ignored when Prototype.ReturnType is Void) plus an ok
// flag; ok=false signals the native failed and the engine should treat it
// as a fatal runtime condition.
type NativeFn struct {
	Prototype types.FnPrototype
	Impl      func(args []Value) (Value, bool)
}

// Program is a fully compiled bug program: an immutable constant pool and
// a name-to-function map for every user-defined function.
type Program struct {
	Pool      Pool
	Functions map[string]*DefinedFn
}
