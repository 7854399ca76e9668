// Package types defines bug's closed set of static types and the function
// prototype shape shared by native and user-defined functions.
package types

import "fmt"

// Type is one of bug's four static types. Equality is structural: two Types
// are equal iff they are the same constant.
type Type int

const (
	// Void marks "no value produced". It is never a runtime value, only an
	// annotation on function declarations and return expressions.
	Void Type = iota
	Integer
	String
	Boolean
)

// String renders the type the way it appears in bug source (its type
// annotation keyword).
func (t Type) String() string {
	switch t {
	case Void:
		return "void"
	case Integer:
		return "int"
	case String:
		return "str"
	case Boolean:
		return "bool"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// FnPrototype is the externally visible signature of a function: arity,
// ordered parameter types, and return type. Shared by [DefinedFn]-backed
// user functions and natives so the checker treats both namespaces
// uniformly.
type FnPrototype struct {
	Arity      int
	ParamTypes []Type
	ReturnType Type
}
