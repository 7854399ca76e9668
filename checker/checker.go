// Package checker implements bug's semantic analysis pass: simultaneous
// name resolution, scope management and type checking over the postfix
// AST, performed by abstract-interpreting the implicit runtime stack with
// a parallel "meta-stack" of types.
//
// Grounded on original_source/bugc/analysis/mod.rs's Analyser and
// original_source/bugc/analysis/scope.rs's Scope, reshaped per spec.md §9:
// the parent-linked Rc<RefCell<Scope>> becomes an explicit scope stack
// ([scopeStack]), and the meta-stack's three-arm provenance becomes a
// tagged [metaEntry] instead of parallel vectors.
package checker

import (
	"fmt"

	"github.com/edilson258/bug/ast"
	"github.com/edilson258/bug/diagnostic"
	"github.com/edilson258/bug/types"
)

// Checker performs one analysis pass over a parsed Program.
type Checker struct {
	scopes *scopeStack
	meta   metaStack
	diags  []diagnostic.Diagnostic
	src    string
}

// New creates a Checker seeded with the given native function prototypes.
// src is the original source text, kept only so diagnostics can be
// rendered against it later; the checker never re-lexes or re-parses it.
func New(natives map[string]types.FnPrototype, src string) *Checker {
	return &Checker{scopes: newScopeStack(natives), src: src}
}

func (c *Checker) errorf(kind diagnostic.Kind, sp ast.Node, format string, args ...any) {
	c.diags = append(c.diags, diagnostic.Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Span: sp.Span()})
}

// Check analyses prog in place, filling in every annotation field, and
// returns the diagnostics found. An empty (nil) slice means the program is
// accepted. The checker never stops at the first error: it keeps
// analysing siblings so one pass reports as much as possible.
func (c *Checker) Check(prog *ast.Program) []diagnostic.Diagnostic {
	c.prepassDeclareFunctions(prog)

	for _, item := range prog.Items {
		c.checkStatement(item)
	}

	c.checkMainFunction(prog)

	return c.diags
}

// prepassDeclareFunctions declares every top-level function's prototype in
// Global scope before any body is checked, enabling mutual recursion (see
// spec.md §9's prepass recommendation, adopted in SPEC_FULL.md §9).
func (c *Checker) prepassDeclareFunctions(prog *ast.Program) {
	for _, item := range prog.Items {
		fn, ok := item.(*ast.FunctionDeclaration)
		if !ok {
			continue
		}
		if c.scopes.declaredLocally(fn.Name) {
			c.errorf(diagnostic.Name, fn, "'%s' is already bound", fn.Name)
			continue
		}
		c.scopes.declareFn(fn.Name, types.FnPrototype{
			Arity:      len(fn.Params),
			ParamTypes: paramTypes(fn.Params),
			ReturnType: fn.ReturnType,
		})
	}
}

func paramTypes(params []*ast.Param) []types.Type {
	out := make([]types.Type, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}

// checkMainFunction enforces the entry-point rule: main exists, has arity
// 0 and returns Void.
func (c *Checker) checkMainFunction(prog *ast.Program) {
	sym, ok := c.scopes.lookup("main")
	if !ok {
		c.diags = append(c.diags, diagnostic.Diagnostic{Kind: diagnostic.Name, Message: "missing 'main' function"})
		return
	}
	if !sym.isFn {
		c.diags = append(c.diags, diagnostic.Diagnostic{Kind: diagnostic.Name, Message: "'main' must be declared as a function"})
		return
	}
	if sym.fn.Arity != 0 || sym.fn.ReturnType != types.Void {
		c.diags = append(c.diags, diagnostic.Diagnostic{Kind: diagnostic.Type, Message: "'main' cannot accept arguments or return a value"})
	}
}

func (c *Checker) checkStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.FunctionDeclaration:
		c.checkFunctionDeclaration(s)
	case *ast.ExpressionStatement:
		c.checkExpression(s.Expr)
	case *ast.IfStatement:
		c.checkIfStatement(s)
	case *ast.VariableDeclaration:
		c.checkVariableDeclaration(s)
	case *ast.Assignment:
		c.checkAssignment(s)
	}
}

func (c *Checker) checkFunctionDeclaration(fn *ast.FunctionDeclaration) {
	c.meta.clear()

	if c.scopes.current().kind != Global {
		c.errorf(diagnostic.IllegalDeclaration, fn, "functions must be declared in the global scope")
		return
	}

	c.scopes.push(Function, fn.ReturnType)
	for _, param := range fn.Params {
		if c.scopes.declaredLocally(param.Name) {
			c.errorf(diagnostic.Name, param, "duplicated parameter name '%s' for function '%s'", param.Name, fn.Name)
			continue
		}
		c.scopes.declareVar(param.Name, param.Type)
	}

	for _, stmt := range fn.Body {
		c.checkStatement(stmt)
	}

	c.checkResidual(fn.ReturnType, fn, "function '%s'", fn.Name)
	c.scopes.pop()
}

func (c *Checker) checkIfStatement(stmt *ast.IfStatement) {
	if c.meta.len() == 0 {
		c.errorf(diagnostic.Argument, stmt, "'if' expects a boolean value on top of the stack")
		return
	}
	cond := c.meta.pop()
	if cond.typ != types.Boolean {
		c.errorf(diagnostic.Type, stmt, "'if' expects a boolean value on top of the stack")
		return
	}

	for _, inner := range stmt.Body {
		c.checkStatement(inner)
	}

	c.checkResidual(c.scopes.current().expectedType, stmt, "'if' block")
}

// checkResidual enforces the shared residual-meta-stack rule used at both
// function-body end and if-block end: zero residual iff expected is Void,
// else exactly one residual of the expected type.
func (c *Checker) checkResidual(expected types.Type, at ast.Node, context string, args ...any) {
	label := fmt.Sprintf(context, args...)
	if c.meta.len() == 0 {
		if expected != types.Void {
			c.errorf(diagnostic.Type, at, "%s expects return type %s but nothing was produced", label, expected)
		}
		return
	}
	entry := c.meta.pop()
	if entry.typ != expected {
		c.errorf(diagnostic.Type, at, "%s expects return type %s but produced %s", label, expected, entry.typ)
	}
}

func (c *Checker) checkVariableDeclaration(decl *ast.VariableDeclaration) {
	if c.scopes.declaredLocally(decl.Name) {
		c.errorf(diagnostic.Name, decl, "'%s' is already bound", decl.Name)
		return
	}
	c.scopes.declareVar(decl.Name, decl.Type)
	c.meta.push(variableDeclEntry(decl.Name, decl.Type))
}

func (c *Checker) checkAssignment(assign *ast.Assignment) {
	if c.meta.len() < 2 {
		c.errorf(diagnostic.Argument, assign, "assignment (=) expects two operands on the stack")
		return
	}
	rhs := c.meta.pop()
	lhs := c.meta.pop()

	if lhs.kind != metaIdentifier && lhs.kind != metaVariableDeclaration {
		c.errorf(diagnostic.Type, assign, "cannot assign to a non-variable")
		return
	}
	if lhs.typ != rhs.typ {
		c.errorf(diagnostic.Type, assign, "cannot assign value of type %s to variable '%s' which has type %s", rhs.typ, lhs.name, lhs.typ)
		return
	}
	assign.Target = lhs.name
}

func (c *Checker) checkExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		c.meta.push(valueEntry(types.Integer))
	case *ast.StringLiteral:
		c.meta.push(valueEntry(types.String))
	case *ast.BooleanLiteral:
		c.meta.push(valueEntry(types.Boolean))
	case *ast.IdentifierExpression:
		c.checkIdentifier(e)
	case *ast.CallExpression:
		c.checkCall(e)
	case *ast.BinaryExpression:
		c.checkBinary(e)
	case *ast.ReturnExpression:
		c.checkReturn(e)
	}
}

func (c *Checker) checkIdentifier(ident *ast.IdentifierExpression) {
	sym, ok := c.scopes.lookup(ident.Name)
	if !ok {
		c.errorf(diagnostic.Name, ident, "'%s' is unbound", ident.Name)
		return
	}
	if sym.isFn {
		c.errorf(diagnostic.Type, ident, "'%s' is a function, not a variable", ident.Name)
		return
	}
	c.meta.push(identifierEntry(ident.Name, sym.fieldType))
}

func (c *Checker) checkCall(call *ast.CallExpression) {
	sym, ok := c.scopes.lookup(call.Name)
	if !ok {
		c.errorf(diagnostic.Name, call, "'%s' is unbound", call.Name)
		return
	}
	if !sym.isFn {
		c.errorf(diagnostic.Type, call, "'%s' is not callable", call.Name)
		return
	}
	proto := sym.fn

	if c.meta.len() < proto.Arity {
		c.errorf(diagnostic.Argument, call, "missing arguments for function '%s'", call.Name)
		c.meta.clear()
		return
	}

	// An empty ParamTypes means the callee is unconstrained in its argument
	// types (e.g. a native like "write" that accepts any scalar) — mirrors
	// original_source/bugc/analysis/mod.rs's zip over prototype.argtypes,
	// which runs zero iterations when argtypes is empty regardless of
	// arity. A user-declared function always has one ParamTypes entry per
	// parameter, so this only ever relaxes natives.
	if len(proto.ParamTypes) > 0 {
		start := c.meta.len() - proto.Arity
		for i := 0; i < proto.Arity; i++ {
			entry := c.meta.entries[start+i]
			if entry.typ != proto.ParamTypes[i] {
				c.errorf(diagnostic.Type, call, "parameter %d of '%s' expects type %s but got %s", i+1, call.Name, proto.ParamTypes[i], entry.typ)
				return
			}
		}
	}

	for i := 0; i < proto.Arity; i++ {
		c.meta.pop()
	}
	if proto.ReturnType != types.Void {
		c.meta.push(valueEntry(proto.ReturnType))
	}
}

func (c *Checker) checkBinary(expr *ast.BinaryExpression) {
	if c.meta.len() < 2 {
		c.errorf(diagnostic.Argument, expr, "missing operands for '%s' operation", expr.Operator)
		return
	}
	rhs := c.meta.pop()
	lhs := c.meta.pop()

	if lhs.typ != rhs.typ {
		c.errorf(diagnostic.Type, expr, "operands of '%s' must be the same type, got %s and %s", expr.Operator, lhs.typ, rhs.typ)
	}

	expr.OperandType = lhs.typ

	switch expr.Operator {
	case ast.OpPlus:
		if lhs.typ == types.Integer {
			c.meta.push(valueEntry(types.Integer))
		} else {
			c.errorf(diagnostic.Type, expr, "'+' is not supported for type %s", lhs.typ)
		}
	case ast.OpMinus:
		if lhs.typ == types.Integer {
			c.meta.push(valueEntry(types.Integer))
		} else {
			c.errorf(diagnostic.Type, expr, "'-' is not supported for type %s", lhs.typ)
		}
	case ast.OpGreater:
		if lhs.typ == types.Integer {
			c.meta.push(valueEntry(types.Boolean))
		} else {
			c.errorf(diagnostic.Type, expr, "'>' is not supported for type %s", lhs.typ)
		}
	}
}

func (c *Checker) checkReturn(ret *ast.ReturnExpression) {
	if top, ok := c.meta.peek(); ok {
		ret.Type = top.typ
	} else {
		ret.Type = types.Void
	}
}
