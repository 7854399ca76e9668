// Package parser turns a bug token stream into an [ast.Program].
//
// bug's surface grammar is postfix: each statement is parsed independently
// from a single lookahead token, with no precedence climbing — operand
// order (not operator precedence) determines evaluation order, so the
// parser never needs a Pratt table the way an infix-language parser would.
package parser

import (
	"fmt"
	"strconv"

	"github.com/edilson258/bug/ast"
	"github.com/edilson258/bug/lexer"
	"github.com/edilson258/bug/span"
	"github.com/edilson258/bug/token"
	"github.com/edilson258/bug/types"
)

// Error is a syntax error with the span of the offending token.
type Error struct {
	Msg  string
	Span span.Span
}

func (e Error) Error() string { return e.Msg }

// Parser consumes tokens from a [lexer.Lexer] and builds an [ast.Program].
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []Error
}

// New creates a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Errors returns every syntax error accumulated while parsing.
func (p *Parser) Errors() []Error { return p.errors }

func (p *Parser) next() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) addError(format string, args ...any) {
	p.errors = append(p.errors, Error{Msg: fmt.Sprintf(format, args...), Span: p.curToken.Span})
}

func (p *Parser) expect(t token.Type, what string) bool {
	if p.curToken.Type != t {
		p.addError("expected %s, got %q instead", what, p.curToken.Literal)
		return false
	}
	p.next()
	return true
}

// ParseProgram parses the whole token stream into a Program. Parse errors
// are collected in Errors(); the parser keeps going after an error so it
// can report as many problems as possible in one pass.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}

	for p.curToken.Type != token.EOF {
		item := p.parseTopLevelItem()
		if item != nil {
			prog.Items = append(prog.Items, item)
		} else {
			p.next()
		}
	}

	return prog
}

func (p *Parser) parseTopLevelItem() ast.Statement {
	switch p.curToken.Type {
	case token.FUNCTION:
		return p.parseFunctionDeclaration()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.FUNCTION:
		return p.parseFunctionDeclaration()
	case token.TYPE_INT, token.TYPE_STR, token.TYPE_BOOL, token.TYPE_VOID:
		return p.parseVariableDeclaration()
	case token.IF:
		return p.parseIfStatement()
	case token.ASSIGN:
		return p.parseAssignment()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseTypeAnnotation() (types.Type, bool) {
	var t types.Type
	switch p.curToken.Type {
	case token.TYPE_INT:
		t = types.Integer
	case token.TYPE_STR:
		t = types.String
	case token.TYPE_BOOL:
		t = types.Boolean
	case token.TYPE_VOID:
		t = types.Void
	default:
		p.addError("expected a type annotation, got %q instead", p.curToken.Literal)
		return types.Void, false
	}
	p.next()
	return t, true
}

func (p *Parser) parseFunctionDeclaration() ast.Statement {
	start := p.curToken.Span
	p.next() // past 'fn'/'f'

	if p.curToken.Type != token.IDENT {
		p.addError("expected a function name, got %q instead", p.curToken.Literal)
		return nil
	}
	name := p.curToken.Literal
	p.next()

	if !p.expect(token.LPAREN, "'('") {
		return nil
	}

	var params []*ast.Param
	for p.curToken.Type != token.RPAREN && p.curToken.Type != token.EOF {
		paramSpan := p.curToken.Span
		paramType, ok := p.parseTypeAnnotation()
		if !ok {
			return nil
		}
		if p.curToken.Type != token.IDENT {
			p.addError("expected a parameter name, got %q instead", p.curToken.Literal)
			return nil
		}
		params = append(params, &ast.Param{Name: p.curToken.Literal, Type: paramType, SpanInfo: paramSpan.Merge(p.curToken.Span)})
		p.next()

		if p.curToken.Type == token.COMMA {
			p.next()
		} else if p.curToken.Type != token.RPAREN {
			p.addError("expected ',' or ')' in parameter list, got %q instead", p.curToken.Literal)
			return nil
		}
	}
	if !p.expect(token.RPAREN, "')'") {
		return nil
	}

	returnType, ok := p.parseTypeAnnotation()
	if !ok {
		return nil
	}

	body := p.parseBlock()

	return &ast.FunctionDeclaration{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
		SpanInfo:   start.Merge(p.curToken.Span),
	}
}

// parseBlock parses `-> {statement}* ;`.
func (p *Parser) parseBlock() []ast.Statement {
	if !p.expect(token.ARROW, "'->'") {
		return nil
	}

	var body []ast.Statement
	for p.curToken.Type != token.SEMI && p.curToken.Type != token.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			body = append(body, stmt)
		} else {
			p.next()
		}
	}
	p.expect(token.SEMI, "';'")
	return body
}

func (p *Parser) parseVariableDeclaration() ast.Statement {
	start := p.curToken.Span
	varType, ok := p.parseTypeAnnotation()
	if !ok {
		return nil
	}
	if p.curToken.Type != token.IDENT {
		p.addError("expected a variable name, got %q instead", p.curToken.Literal)
		return nil
	}
	name := p.curToken.Literal
	sp := start.Merge(p.curToken.Span)
	p.next()
	return &ast.VariableDeclaration{Name: name, Type: varType, SpanInfo: sp}
}

func (p *Parser) parseIfStatement() ast.Statement {
	start := p.curToken.Span
	p.next() // past 'if'
	body := p.parseBlock()
	return &ast.IfStatement{Body: body, SpanInfo: start.Merge(p.curToken.Span)}
}

func (p *Parser) parseAssignment() ast.Statement {
	sp := p.curToken.Span
	p.next()
	return &ast.Assignment{SpanInfo: sp}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	return &ast.ExpressionStatement{Expr: expr, SpanInfo: expr.Span()}
}

func (p *Parser) parseExpression() ast.Expression {
	switch p.curToken.Type {
	case token.IDENT:
		expr := &ast.IdentifierExpression{Name: p.curToken.Literal, SpanInfo: p.curToken.Span}
		p.next()
		return expr
	case token.INT:
		value, err := strconv.ParseInt(p.curToken.Literal, 10, 32)
		if err != nil {
			p.addError("invalid integer literal %q", p.curToken.Literal)
			p.next()
			return nil
		}
		expr := &ast.IntegerLiteral{Value: int32(value), SpanInfo: p.curToken.Span}
		p.next()
		return expr
	case token.STRING:
		expr := &ast.StringLiteral{Value: p.curToken.Literal, SpanInfo: p.curToken.Span}
		p.next()
		return expr
	case token.TRUE, token.FALSE:
		expr := &ast.BooleanLiteral{Value: p.curToken.Type == token.TRUE, SpanInfo: p.curToken.Span}
		p.next()
		return expr
	case token.DOT:
		start := p.curToken.Span
		p.next()
		if p.curToken.Type != token.IDENT {
			p.addError("expected a function name after '.', got %q instead", p.curToken.Literal)
			return nil
		}
		expr := &ast.CallExpression{Name: p.curToken.Literal, SpanInfo: start.Merge(p.curToken.Span)}
		p.next()
		return expr
	case token.PLUS:
		expr := &ast.BinaryExpression{Operator: ast.OpPlus, SpanInfo: p.curToken.Span}
		p.next()
		return expr
	case token.MINUS:
		expr := &ast.BinaryExpression{Operator: ast.OpMinus, SpanInfo: p.curToken.Span}
		p.next()
		return expr
	case token.GT:
		expr := &ast.BinaryExpression{Operator: ast.OpGreater, SpanInfo: p.curToken.Span}
		p.next()
		return expr
	case token.RETURN:
		expr := &ast.ReturnExpression{SpanInfo: p.curToken.Span}
		p.next()
		return expr
	default:
		p.addError("unexpected token %q", p.curToken.Literal)
		p.next()
		return nil
	}
}
