package challenge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
	"github.com/dop251/goja/token"
)

// The challenge script is never executed. It is parsed into a syntax tree
// and walked for the one structural pattern the Octofence gate is known to
// use: an assignment to document.cookie whose right-hand side is a string
// concatenation carrying the "octofence_jslc=<value>" literal.

var (
	// ErrParse means the challenge page script is not valid JavaScript.
	ErrParse = errors.New("challenge script does not parse")
	// ErrPattern means the script parsed but the expected cookie
	// assignment was absent. This signals the site changed the challenge
	// shape and the extraction rule itself needs updating.
	ErrPattern = errors.New("challenge cookie assignment not found")
)

// Solve statically derives a Credential from challenge script text.
func Solve(script string) (Credential, error) {
	prog, err := parser.ParseFile(nil, "challenge.js", script, 0)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	f := &cookieFinder{}
	f.statements(prog.Body)
	if f.token == "" {
		return Credential{}, ErrPattern
	}

	return NewCredential(f.token, Fingerprint()), nil
}

// cookieFinder descends the tree looking for `document.cookie = ...` and
// captures the challenge token from the first match. goja's ast package
// ships no generic walker, so the recursion is spelled out per node kind;
// node kinds a challenge script cannot usefully hide an assignment in
// (classes, patterns, loop headers' rare corners) are left uncovered.
type cookieFinder struct {
	token string
}

func (f *cookieFinder) statements(list []ast.Statement) {
	for _, s := range list {
		if f.token != "" {
			return
		}
		f.statement(s)
	}
}

func (f *cookieFinder) statement(s ast.Statement) {
	if s == nil || f.token != "" {
		return
	}
	switch node := s.(type) {
	case *ast.BlockStatement:
		f.statements(node.List)
	case *ast.ExpressionStatement:
		f.expression(node.Expression)
	case *ast.FunctionDeclaration:
		f.function(node.Function)
	case *ast.VariableStatement:
		f.bindings(node.List)
	case *ast.LexicalDeclaration:
		f.bindings(node.List)
	case *ast.IfStatement:
		f.expression(node.Test)
		f.statement(node.Consequent)
		f.statement(node.Alternate)
	case *ast.ForStatement:
		switch init := node.Initializer.(type) {
		case *ast.ForLoopInitializerExpression:
			f.expression(init.Expression)
		case *ast.ForLoopInitializerVarDeclList:
			f.bindings(init.List)
		case *ast.ForLoopInitializerLexicalDecl:
			f.bindings(init.LexicalDeclaration.List)
		}
		f.expression(node.Test)
		f.expression(node.Update)
		f.statement(node.Body)
	case *ast.WhileStatement:
		f.expression(node.Test)
		f.statement(node.Body)
	case *ast.DoWhileStatement:
		f.expression(node.Test)
		f.statement(node.Body)
	case *ast.ReturnStatement:
		f.expression(node.Argument)
	case *ast.ThrowStatement:
		f.expression(node.Argument)
	case *ast.TryStatement:
		f.statement(node.Body)
		if node.Catch != nil {
			f.statement(node.Catch.Body)
		}
		f.statement(node.Finally)
	case *ast.SwitchStatement:
		f.expression(node.Discriminant)
		for _, c := range node.Body {
			f.expression(c.Test)
			f.statements(c.Consequent)
		}
	case *ast.LabelledStatement:
		f.statement(node.Statement)
	case *ast.WithStatement:
		f.expression(node.Object)
		f.statement(node.Body)
	}
}

func (f *cookieFinder) expression(e ast.Expression) {
	if e == nil || f.token != "" {
		return
	}
	switch node := e.(type) {
	case *ast.AssignExpression:
		if node.Operator == token.ASSIGN && isDocumentCookie(node.Left) {
			// The literal operands of the RHS concatenation, joined in
			// source order, form "name=value[; attrs]". Computed operands
			// are opaque to static analysis and are skipped.
			joined := concatLiterals(node.Right)
			pair, _, _ := strings.Cut(joined, ";")
			name, value, found := strings.Cut(pair, "=")
			if found && strings.TrimSpace(name) == CookieToken && value != "" {
				f.token = value
				return
			}
		}
		f.expression(node.Left)
		f.expression(node.Right)
	case *ast.BinaryExpression:
		f.expression(node.Left)
		f.expression(node.Right)
	case *ast.CallExpression:
		f.expression(node.Callee)
		for _, arg := range node.ArgumentList {
			f.expression(arg)
		}
	case *ast.NewExpression:
		f.expression(node.Callee)
		for _, arg := range node.ArgumentList {
			f.expression(arg)
		}
	case *ast.FunctionLiteral:
		f.function(node)
	case *ast.ArrowFunctionLiteral:
		switch body := node.Body.(type) {
		case *ast.BlockStatement:
			f.statements(body.List)
		case *ast.ExpressionBody:
			f.expression(body.Expression)
		}
	case *ast.ConditionalExpression:
		f.expression(node.Test)
		f.expression(node.Consequent)
		f.expression(node.Alternate)
	case *ast.SequenceExpression:
		for _, sub := range node.Sequence {
			f.expression(sub)
		}
	case *ast.UnaryExpression:
		f.expression(node.Operand)
	case *ast.DotExpression:
		f.expression(node.Left)
	case *ast.BracketExpression:
		f.expression(node.Left)
		f.expression(node.Member)
	case *ast.ObjectLiteral:
		for _, prop := range node.Value {
			switch p := prop.(type) {
			case *ast.PropertyKeyed:
				f.expression(p.Value)
			case *ast.PropertyShort:
				f.expression(p.Initializer)
			}
		}
	case *ast.ArrayLiteral:
		for _, sub := range node.Value {
			f.expression(sub)
		}
	case *ast.TemplateLiteral:
		for _, sub := range node.Expressions {
			f.expression(sub)
		}
	}
}

func (f *cookieFinder) function(fn *ast.FunctionLiteral) {
	if fn != nil && fn.Body != nil {
		f.statements(fn.Body.List)
	}
}

func (f *cookieFinder) bindings(list []*ast.Binding) {
	for _, b := range list {
		f.expression(b.Initializer)
	}
}

func isDocumentCookie(e ast.Expression) bool {
	dot, ok := e.(*ast.DotExpression)
	if !ok || dot.Identifier.Name.String() != "cookie" {
		return false
	}
	base, ok := dot.Left.(*ast.Identifier)
	return ok && base.Name.String() == "document"
}

// concatLiterals flattens a `+` chain and concatenates its string literal
// operands, ignoring everything else.
func concatLiterals(e ast.Expression) string {
	switch node := e.(type) {
	case *ast.StringLiteral:
		return node.Value.String()
	case *ast.BinaryExpression:
		if node.Operator != token.PLUS {
			return ""
		}
		return concatLiterals(node.Left) + concatLiterals(node.Right)
	default:
		return ""
	}
}
