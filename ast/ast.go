// Package ast defines the abstract syntax tree for the bug language.
//
// bug is a stack-oriented, postfix language: the tree mirrors spec.md's
// data model directly rather than a conventional expression tree — most
// "expressions" are really instructions to execute against an implicit
// runtime stack, which is exactly how the checker and code generator
// interpret them.
//
// Some node fields are annotations: they start zero-valued from the parser
// and are filled in by the checker (see [BinaryExpression.OperandType],
// [ReturnExpression.Type] and [Assignment.Target]). Code generation assumes
// every node has already been annotated by a successful checker pass.
package ast

import (
	"github.com/edilson258/bug/span"
	"github.com/edilson258/bug/types"
)

// Node is the base interface for all AST nodes.
type Node interface {
	Span() span.Span
}

// Statement is implemented by every statement-level node.
type Statement interface {
	Node
	statementNode()
}

// Expression is implemented by every expression-level node.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node: an ordered list of top-level items, each either
// a [FunctionDeclaration] or an [ExpressionStatement].
type Program struct {
	Items []Statement
}

// Identifier names a function, parameter or variable.
type Identifier struct {
	Name     string
	SpanInfo span.Span
}

func (i *Identifier) Span() span.Span { return i.SpanInfo }

// Param is one parameter of a function declaration.
type Param struct {
	Name     string
	Type     types.Type
	SpanInfo span.Span
}

func (p *Param) Span() span.Span { return p.SpanInfo }

// FunctionDeclaration declares a named function with ordered typed
// parameters, a return type and a body.
type FunctionDeclaration struct {
	Name       string
	Params     []*Param
	ReturnType types.Type
	Body       []Statement
	SpanInfo   span.Span
}

func (f *FunctionDeclaration) statementNode()  {}
func (f *FunctionDeclaration) Span() span.Span { return f.SpanInfo }

// ExpressionStatement wraps a bare expression used as a statement (the
// common case in postfix source: each operand/operator/call is its own
// statement that mutates the implicit stack).
type ExpressionStatement struct {
	Expr     Expression
	SpanInfo span.Span
}

func (e *ExpressionStatement) statementNode()  {}
func (e *ExpressionStatement) Span() span.Span { return e.SpanInfo }

// IfStatement consumes the Boolean left on top of the stack by the
// preceding statement and conditionally executes Body.
type IfStatement struct {
	Body     []Statement
	SpanInfo span.Span
}

func (i *IfStatement) statementNode()  {}
func (i *IfStatement) Span() span.Span { return i.SpanInfo }

// VariableDeclaration introduces a new local binding of the given type.
// It pushes an addressable placeholder onto the checker's meta-stack; code
// generation emits no opcode for it (the index is simply reserved).
type VariableDeclaration struct {
	Name     string
	Type     types.Type
	SpanInfo span.Span
}

func (v *VariableDeclaration) statementNode()  {}
func (v *VariableDeclaration) Span() span.Span { return v.SpanInfo }

// Assignment pops an expression value and an lvalue off the meta-stack and
// stores the value into the named local. Target is filled in by the
// checker once it has resolved which lvalue the assignment applies to.
type Assignment struct {
	Target   string
	SpanInfo span.Span
}

func (a *Assignment) statementNode()  {}
func (a *Assignment) Span() span.Span { return a.SpanInfo }

// IntegerLiteral is a decimal integer literal expression.
type IntegerLiteral struct {
	Value    int32
	SpanInfo span.Span
}

func (n *IntegerLiteral) expressionNode() {}
func (n *IntegerLiteral) Span() span.Span { return n.SpanInfo }

// StringLiteral is a double-quoted string literal expression. bug performs
// no escape processing: Value is exactly the bytes between the quotes.
type StringLiteral struct {
	Value    string
	SpanInfo span.Span
}

func (n *StringLiteral) expressionNode() {}
func (n *StringLiteral) Span() span.Span { return n.SpanInfo }

// BooleanLiteral is a `true`/`false` literal expression.
type BooleanLiteral struct {
	Value    bool
	SpanInfo span.Span
}

func (n *BooleanLiteral) expressionNode() {}
func (n *BooleanLiteral) Span() span.Span { return n.SpanInfo }

// IdentifierExpression pushes the value of a bound variable.
type IdentifierExpression struct {
	Name     string
	SpanInfo span.Span
}

func (n *IdentifierExpression) expressionNode() {}
func (n *IdentifierExpression) Span() span.Span { return n.SpanInfo }

// CallExpression invokes a named function (`.name` in source), user-defined
// or native.
type CallExpression struct {
	Name     string
	SpanInfo span.Span
}

func (n *CallExpression) expressionNode() {}
func (n *CallExpression) Span() span.Span { return n.SpanInfo }

// BinaryOperator is one of bug's three binary operators.
type BinaryOperator string

const (
	OpPlus    BinaryOperator = "+"
	OpMinus   BinaryOperator = "-"
	OpGreater BinaryOperator = ">"
)

// BinaryExpression pops two operands of equal type and pushes the result.
// OperandType is filled in by the checker once operand types are known.
type BinaryExpression struct {
	Operator    BinaryOperator
	OperandType types.Type
	SpanInfo    span.Span
}

func (n *BinaryExpression) expressionNode() {}
func (n *BinaryExpression) Span() span.Span { return n.SpanInfo }

// ReturnExpression marks the value on top of the stack (if any) as the
// function's return value. Type is filled in by the checker: the type of
// whatever was on top of the meta-stack at this point, or Void if empty.
type ReturnExpression struct {
	Type     types.Type
	SpanInfo span.Span
}

func (n *ReturnExpression) expressionNode() {}
func (n *ReturnExpression) Span() span.Span { return n.SpanInfo }
