package parser

import (
	"fmt"
	"strconv"

	"jscodemod/pkg/lexer"
)

// Constructors for synthesized nodes. Rewrites build replacement trees with
// these; they panic on arguments that cannot form a valid node, since that is
// always a bug in the calling rule.

// IsValidIdentifier reports whether name can be used as a binding name.
func IsValidIdentifier(name string) bool {
	if name == "" || lexer.IsKeyword(name) {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		letter := 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_' || c == '$' || c >= 0x80
		if !letter && (i == 0 || c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func NewIdentifier(name string) *Identifier {
	if !IsValidIdentifier(name) {
		panic(fmt.Sprintf("parser: invalid identifier %q", name))
	}
	return &Identifier{Token: lexer.Token{Type: lexer.IDENT, Literal: name}, Value: name}
}

func NewNumberLiteral(n int) *NumberLiteral {
	if n < 0 {
		panic(fmt.Sprintf("parser: negative number literal %d", n))
	}
	raw := strconv.Itoa(n)
	return &NumberLiteral{Token: lexer.Token{Type: lexer.NUMBER, Literal: raw, Raw: raw}, Raw: raw}
}

func NewMemberExpression(object Expression, property string) *MemberExpression {
	mustExpr("member object", object)
	return &MemberExpression{
		Token:    lexer.Token{Type: lexer.DOT, Literal: "."},
		Object:   object,
		Property: NewIdentifier(property),
	}
}

func NewIndexExpression(left, index Expression) *IndexExpression {
	mustExpr("indexed object", left)
	mustExpr("index", index)
	return &IndexExpression{Token: lexer.Token{Type: lexer.LBRACKET, Literal: "["}, Left: left, Index: index}
}

func NewInfixExpression(left Expression, op string, right Expression) *InfixExpression {
	mustExpr("left operand", left)
	mustExpr("right operand", right)
	binaryPrecedence(op) // Panics on unknown operators
	return &InfixExpression{Token: lexer.Token{Type: operatorType(op), Literal: op}, Left: left, Operator: op, Right: right}
}

// NewUpdateExpression builds x++ / x-- (or the prefix forms).
func NewUpdateExpression(op string, argument Expression, prefix bool) *UpdateExpression {
	if op != "++" && op != "--" {
		panic(fmt.Sprintf("parser: invalid update operator %q", op))
	}
	mustExpr("update operand", argument)
	return &UpdateExpression{Token: lexer.Token{Type: lexer.TokenType(op), Literal: op}, Operator: op, Prefix: prefix, Argument: argument}
}

func NewArrayLiteral(elements ...Expression) *ArrayLiteral {
	for i, e := range elements {
		mustExpr(fmt.Sprintf("array element %d", i), e)
	}
	return &ArrayLiteral{Token: lexer.Token{Type: lexer.LBRACKET, Literal: "["}, Elements: append([]Expression{}, elements...)}
}

func NewArrayPattern(elements ...Pattern) *ArrayPattern {
	for i, e := range elements {
		if e == nil {
			panic(fmt.Sprintf("parser: nil array pattern element %d", i))
		}
	}
	return &ArrayPattern{Token: lexer.Token{Type: lexer.LBRACKET, Literal: "["}, Elements: append([]Pattern{}, elements...)}
}

// NewVariableStatement declares a single target.
func NewVariableStatement(kind DeclarationKind, target Pattern, value Expression) *VariableStatement {
	switch kind {
	case DeclVar, DeclLet, DeclConst:
	default:
		panic(fmt.Sprintf("parser: invalid declaration kind %q", kind))
	}
	if target == nil {
		panic("parser: declaration without a target")
	}
	if kind == DeclConst && value == nil {
		panic("parser: const declaration without a value")
	}
	return &VariableStatement{
		Token:        lexer.Token{Type: lexer.LookupIdent(string(kind)), Literal: string(kind)},
		DeclKind:     kind,
		Declarations: []*VarDeclarator{{Target: target, Value: value}},
	}
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	mustExpr("statement expression", expr)
	return &ExpressionStatement{Token: lexer.Token{Literal: expr.TokenLiteral()}, Expression: expr}
}

func NewBlockStatement(stmts ...Statement) *BlockStatement {
	for i, s := range stmts {
		if s == nil {
			panic(fmt.Sprintf("parser: nil statement %d in block", i))
		}
	}
	return &BlockStatement{Token: lexer.Token{Type: lexer.LBRACE, Literal: "{"}, Statements: append([]Statement{}, stmts...)}
}

// NewForStatement builds for (init; cond; update) body. init is nil, a
// *VariableStatement or an Expression.
func NewForStatement(init Node, cond, update Expression, body Statement) *ForStatement {
	switch init.(type) {
	case nil, *VariableStatement, Expression:
	default:
		panic(fmt.Sprintf("parser: invalid for initializer %T", init))
	}
	if body == nil {
		panic("parser: for statement without a body")
	}
	return &ForStatement{
		Token:       lexer.Token{Type: lexer.FOR, Literal: "for"},
		Initializer: init,
		Condition:   cond,
		Update:      update,
		Body:        body,
	}
}

// operatorType maps an operator spelling to its token type.
func operatorType(op string) lexer.TokenType {
	if lexer.IsKeyword(op) {
		return lexer.LookupIdent(op) // in, instanceof
	}
	return lexer.TokenType(op)
}

func mustExpr(what string, e Expression) {
	if e == nil {
		panic("parser: missing " + what)
	}
}
