package parser

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"

	"jscodemod/pkg/errors"
	"jscodemod/pkg/lexer"
	"jscodemod/pkg/source"
)

// --- Debug Flag ---
const debugParser = false

func debugPrint(format string, args ...interface{}) {
	if debugParser {
		fmt.Printf("[Parser Debug] "+format+"\n", args...)
	}
}

// --- End Debug Flag ---

// Parser takes a lexer and builds an AST.
type Parser struct {
	l      *lexer.Lexer
	source *source.SourceFile // cached from lexer
	errors []errors.CodemodError

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn

	ctx parseContext

	// spans records the source range of every parsed statement
	spans map[Statement]Span
	// moduleItem is set while parsing a top-level statement, where import
	// and export are allowed
	moduleItem bool
	// lastGrouped is the most recent parenthesized expression
	lastGrouped Expression
}

// parseContext tracks what the enclosing function allows.
type parseContext struct {
	async     bool // 'await' is an operator
	generator bool // 'yield' is an operator
	noIn      bool // 'in' ends the expression (for-statement initializer)
}

// Parsing functions types for Pratt parser
type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression // Arg is the left side expression
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	COMMA         // , (very low precedence, but higher than LOWEST)
	ARG_SEPARATOR // Virtual precedence level for argument list parsing (between COMMA and ASSIGNMENT)
	ASSIGNMENT    // =, +=, -=, *=, /=, %=, **=, &=, |=, ^=, <<=, >>=, >>>=, &&=, ||=, ??=
	TERNARY       // ?:
	COALESCE      // ??
	LOGICAL_OR    // ||
	LOGICAL_AND   // &&
	BITWISE_OR    // |
	BITWISE_XOR   // ^
	BITWISE_AND   // &
	EQUALS        // ==, !=, ===, !==
	LESSGREATER   // >, <, >=, <=, in, instanceof
	SHIFT         // <<, >>, >>>
	SUM           // + or -
	PRODUCT       // * or / or %
	POWER         // ** (right-associative)
	PREFIX        // -X or !X or ++X or --X or ~X
	POSTFIX       // X++ or X--
	CALL          // myFunction(X)
	INDEX         // array[index]
	MEMBER        // object.property
)

var precedences = map[lexer.TokenType]int{
	lexer.COMMA: COMMA,

	lexer.ASSIGN:                      ASSIGNMENT,
	lexer.PLUS_ASSIGN:                 ASSIGNMENT,
	lexer.MINUS_ASSIGN:                ASSIGNMENT,
	lexer.ASTERISK_ASSIGN:             ASSIGNMENT,
	lexer.SLASH_ASSIGN:                ASSIGNMENT,
	lexer.REMAINDER_ASSIGN:            ASSIGNMENT,
	lexer.EXPONENT_ASSIGN:             ASSIGNMENT,
	lexer.BITWISE_AND_ASSIGN:          ASSIGNMENT,
	lexer.BITWISE_OR_ASSIGN:           ASSIGNMENT,
	lexer.BITWISE_XOR_ASSIGN:          ASSIGNMENT,
	lexer.LEFT_SHIFT_ASSIGN:           ASSIGNMENT,
	lexer.RIGHT_SHIFT_ASSIGN:          ASSIGNMENT,
	lexer.UNSIGNED_RIGHT_SHIFT_ASSIGN: ASSIGNMENT,
	lexer.LOGICAL_AND_ASSIGN:          ASSIGNMENT,
	lexer.LOGICAL_OR_ASSIGN:           ASSIGNMENT,
	lexer.COALESCE_ASSIGN:             ASSIGNMENT,

	lexer.QUESTION:    TERNARY,
	lexer.COALESCE:    COALESCE,
	lexer.LOGICAL_OR:  LOGICAL_OR,
	lexer.LOGICAL_AND: LOGICAL_AND,

	lexer.PIPE:        BITWISE_OR,
	lexer.BITWISE_XOR: BITWISE_XOR,
	lexer.BITWISE_AND: BITWISE_AND,

	lexer.EQ:            EQUALS,
	lexer.NOT_EQ:        EQUALS,
	lexer.STRICT_EQ:     EQUALS,
	lexer.STRICT_NOT_EQ: EQUALS,

	lexer.LT:         LESSGREATER,
	lexer.GT:         LESSGREATER,
	lexer.LE:         LESSGREATER,
	lexer.GE:         LESSGREATER,
	lexer.IN:         LESSGREATER,
	lexer.INSTANCEOF: LESSGREATER,

	lexer.LEFT_SHIFT:           SHIFT,
	lexer.RIGHT_SHIFT:          SHIFT,
	lexer.UNSIGNED_RIGHT_SHIFT: SHIFT,

	lexer.PLUS:      SUM,
	lexer.MINUS:     SUM,
	lexer.SLASH:     PRODUCT,
	lexer.ASTERISK:  PRODUCT,
	lexer.REMAINDER: PRODUCT,
	lexer.EXPONENT:  POWER,

	lexer.INC: POSTFIX,
	lexer.DEC: POSTFIX,

	lexer.LPAREN:            CALL,
	lexer.TEMPLATE:          CALL, // Tagged template: tag`...`
	lexer.LBRACKET:          INDEX,
	lexer.DOT:               MEMBER,
	lexer.OPTIONAL_CHAINING: MEMBER,
}

// Parse lexes and parses a whole source file.
func Parse(sf *source.SourceFile) (*Program, []errors.CodemodError) {
	return NewParser(lexer.NewLexerWithSource(sf)).ParseProgram()
}

// NewParser creates a new Parser.
func NewParser(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		source: l.GetSource(),
		errors: []errors.CodemodError{},
		spans:  make(map[Statement]Span),
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)

	// --- Prefix Functions ---
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TEMPLATE, p.parseTemplateLiteral)
	p.registerPrefix(lexer.REGEX_LITERAL, p.parseRegexLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.NULL, p.parseNullLiteral)
	p.registerPrefix(lexer.THIS, p.parseThisExpression)
	p.registerPrefix(lexer.NEW, p.parseNewExpression)
	p.registerPrefix(lexer.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.PLUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.BITWISE_NOT, p.parsePrefixExpression)
	p.registerPrefix(lexer.TYPEOF, p.parsePrefixExpression)
	p.registerPrefix(lexer.VOID, p.parsePrefixExpression)
	p.registerPrefix(lexer.DELETE, p.parsePrefixExpression)
	p.registerPrefix(lexer.INC, p.parsePrefixUpdateExpression)
	p.registerPrefix(lexer.DEC, p.parsePrefixUpdateExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseObjectLiteral)
	p.registerPrefix(lexer.SPREAD, p.parseSpreadElement)
	p.registerPrefix(lexer.CLASS, p.parseClassExpression)
	p.registerPrefix(lexer.SUPER, p.parseSuperExpression)
	p.registerPrefix(lexer.IMPORT, p.parseImportExpression)
	p.registerPrefix(lexer.PRIVATE_NAME, p.parsePrivateName)
	p.registerPrefix(lexer.ILLEGAL, p.parseIllegal)

	// --- Infix Functions ---
	for _, t := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.SLASH, lexer.ASTERISK, lexer.REMAINDER, lexer.EXPONENT,
		lexer.EQ, lexer.NOT_EQ, lexer.STRICT_EQ, lexer.STRICT_NOT_EQ,
		lexer.LT, lexer.GT, lexer.LE, lexer.GE, lexer.IN, lexer.INSTANCEOF,
		lexer.LOGICAL_AND, lexer.LOGICAL_OR, lexer.COALESCE,
		lexer.BITWISE_AND, lexer.PIPE, lexer.BITWISE_XOR,
		lexer.LEFT_SHIFT, lexer.RIGHT_SHIFT, lexer.UNSIGNED_RIGHT_SHIFT,
	} {
		p.registerInfix(t, p.parseInfixExpression)
	}
	for _, t := range []lexer.TokenType{
		lexer.ASSIGN, lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN, lexer.ASTERISK_ASSIGN,
		lexer.SLASH_ASSIGN, lexer.REMAINDER_ASSIGN, lexer.EXPONENT_ASSIGN,
		lexer.BITWISE_AND_ASSIGN, lexer.BITWISE_OR_ASSIGN, lexer.BITWISE_XOR_ASSIGN,
		lexer.LEFT_SHIFT_ASSIGN, lexer.RIGHT_SHIFT_ASSIGN, lexer.UNSIGNED_RIGHT_SHIFT_ASSIGN,
		lexer.LOGICAL_AND_ASSIGN, lexer.LOGICAL_OR_ASSIGN, lexer.COALESCE_ASSIGN,
	} {
		p.registerInfix(t, p.parseAssignmentExpression)
	}
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpression)
	p.registerInfix(lexer.DOT, p.parseMemberExpression)
	p.registerInfix(lexer.OPTIONAL_CHAINING, p.parseOptionalChainingExpression)
	p.registerInfix(lexer.TEMPLATE, p.parseTaggedTemplate)
	p.registerInfix(lexer.QUESTION, p.parseTernaryExpression)
	p.registerInfix(lexer.INC, p.parsePostfixUpdateExpression)
	p.registerInfix(lexer.DEC, p.parsePostfixUpdateExpression)
	p.registerInfix(lexer.COMMA, p.parseCommaExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns the list of parsing errors.
func (p *Parser) Errors() []errors.CodemodError {
	return p.errors
}

// nextToken advances the current and peek tokens.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	debugPrint("nextToken(): cur='%s' (%s), peek='%s' (%s)", p.curToken.Literal, p.curToken.Type, p.peekToken.Literal, p.peekToken.Type)
}

// ParseProgram parses the entire input and returns the root Program node and any errors.
func (p *Parser) ParseProgram() (*Program, []errors.CodemodError) {
	program := &Program{Statements: []Statement{}, Source: p.source, spans: p.spans}

	for p.curToken.Type != lexer.EOF {
		p.moduleItem = true
		if stmt := p.parseStatement(); stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program, p.errors
}

// --- Statement Parsing ---

// parseStatement parses one statement and records its source range; cur is
// the first token and is left on the last.
func (p *Parser) parseStatement() Statement {
	moduleItem := p.moduleItem
	p.moduleItem = false
	start := p.curToken.StartPos

	stmt := p.parseStatementKind(moduleItem)
	if stmt != nil {
		p.spans[stmt] = Span{Start: start, End: p.curToken.EndPos}
	}
	return stmt
}

func (p *Parser) parseStatementKind(moduleItem bool) Statement {
	debugPrint("parseStatement: cur='%s' (%s), peek='%s' (%s)", p.curToken.Literal, p.curToken.Type, p.peekToken.Literal, p.peekToken.Type)
	switch p.curToken.Type {
	case lexer.VAR, lexer.LET, lexer.CONST:
		return p.parseVariableStatement(false)
	case lexer.FUNCTION:
		return p.parseFunctionDeclaration(false)
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.DO:
		return p.parseDoWhileStatement()
	case lexer.BREAK, lexer.CONTINUE:
		return p.parseJumpStatement()
	case lexer.THROW:
		return p.parseThrowStatement()
	case lexer.TRY:
		return p.parseTryStatement()
	case lexer.SWITCH:
		return p.parseSwitchStatement()
	case lexer.SEMICOLON:
		return &EmptyStatement{Token: p.curToken}
	case lexer.LBRACE:
		if block := p.parseBlockStatement(); block != nil {
			return block
		}
		return nil
	case lexer.CLASS:
		return p.parseClassDeclaration()
	case lexer.IMPORT:
		if p.peekTokenIs(lexer.LPAREN) || p.peekTokenIs(lexer.DOT) {
			break // import(...) or import.meta
		}
		if !moduleItem {
			p.addError(p.curToken, "import declarations may only appear at top level")
			return nil
		}
		return p.parseImportDeclaration()
	case lexer.EXPORT:
		if !moduleItem {
			p.addError(p.curToken, "export declarations may only appear at top level")
			return nil
		}
		return p.parseExportDeclaration()
	case lexer.IDENT:
		if p.peekTokenIs(lexer.COLON) {
			return p.parseLabeledStatement()
		}
		if p.startsAsyncFunction() {
			p.nextToken() // Move to 'function'
			return p.parseFunctionDeclaration(true)
		}
	}
	return p.parseExpressionStatement()
}

// parseVariableStatement parses var/let/const declarations. Inside a for
// head the terminating ';' belongs to the for statement and is left alone.
func (p *Parser) parseVariableStatement(inForHead bool) Statement {
	stmt := &VariableStatement{Token: p.curToken, DeclKind: DeclarationKind(p.curToken.Literal)}

	for {
		p.nextToken() // Move to the binding target
		target := p.parseBindingTarget()
		if target == nil {
			return nil
		}
		decl := &VarDeclarator{Target: target}

		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken() // Consume target, cur is '='
			p.nextToken() // Move to the value
			decl.Value = p.parseExpression(ARG_SEPARATOR)
			if decl.Value == nil {
				return nil
			}
		} else if !inForHead {
			if stmt.DeclKind == DeclConst {
				p.addError(p.curToken, fmt.Sprintf("missing initializer in const declaration of %s", target.String()))
				return nil
			}
			if target.Kind() != KindIdentifier {
				p.addError(p.curToken, "missing initializer in destructuring declaration")
				return nil
			}
		}
		stmt.Declarations = append(stmt.Declarations, decl)

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken() // Consume ','
	}

	if !inForHead {
		p.consumeSemicolon()
	}
	return stmt
}

func (p *Parser) parseFunctionDeclaration(isAsync bool) Statement {
	tok := p.curToken
	fn := p.parseFunction(isAsync, tok)
	if fn == nil {
		return nil
	}
	if fn.Name == nil {
		p.addError(tok, "function declaration requires a name")
		return nil
	}
	return &FunctionDeclaration{Token: tok, Function: fn}
}

func (p *Parser) parseReturnStatement() Statement {
	stmt := &ReturnStatement{Token: p.curToken}

	// ASI: a line terminator after 'return' ends the statement
	if p.peekToken.Line != p.curToken.Line || p.peekTokenIs(lexer.RBRACE) || p.peekTokenIs(lexer.EOF) {
		return stmt
	}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		return stmt
	}

	p.nextToken() // Consume 'return'
	stmt.ReturnValue = p.parseExpression(LOWEST)
	if stmt.ReturnValue == nil {
		return nil
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseIfStatement() Statement {
	stmt := &IfStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken() // Consume '(', move to condition
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil || !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	p.nextToken() // Move to the start of the consequence
	stmt.Consequence = p.parseStatement()
	if stmt.Consequence == nil {
		return nil
	}

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken() // Consume 'else'
		p.nextToken() // Move to the start of the alternative
		stmt.Alternative = p.parseStatement()
		if stmt.Alternative == nil {
			return nil
		}
	}
	return stmt
}

// parseForStatement handles for(;;), for-in and for-of.
func (p *Parser) parseForStatement() Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken() // Move past '('

	var init Node
	if !p.curTokenIs(lexer.SEMICOLON) {
		saved := p.ctx.noIn
		p.ctx.noIn = true
		switch p.curToken.Type {
		case lexer.VAR, lexer.LET, lexer.CONST:
			if decl := p.parseVariableStatement(true); decl != nil {
				init = decl
			}
		default:
			if expr := p.parseExpression(LOWEST); expr != nil {
				init = expr
			}
		}
		p.ctx.noIn = saved
		if init == nil {
			return nil
		}

		if p.peekTokenIs(lexer.IN) || p.peekIsContextual("of") {
			return p.parseForInOfRest(tok, init)
		}
		if !p.expectPeek(lexer.SEMICOLON) {
			return nil
		}
	}

	stmt := &ForStatement{Token: tok, Initializer: init}

	// cur is the first ';'
	if !p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		stmt.Condition = p.parseExpression(LOWEST)
		if stmt.Condition == nil {
			return nil
		}
	}
	if !p.expectPeek(lexer.SEMICOLON) {
		return nil
	}

	if !p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		stmt.Update = p.parseExpression(LOWEST)
		if stmt.Update == nil {
			return nil
		}
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	p.nextToken() // Move to the body
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseForInOfRest finishes a for-in or for-of once the left side is known;
// peek is 'in' or 'of'.
func (p *Parser) parseForInOfRest(tok lexer.Token, left Node) Statement {
	switch l := left.(type) {
	case *VariableStatement:
		if len(l.Declarations) != 1 || l.Declarations[0].Value != nil {
			p.addError(l.Token, "for-in/of declaration must bind exactly one target without initializer")
			return nil
		}
	case Expression:
		if !isAssignable(l, true) {
			p.addError(tok, "invalid left-hand side in for-in/of")
			return nil
		}
	}

	p.nextToken() // cur is 'in' or 'of'
	isOf := p.curToken.Literal == "of"
	p.nextToken() // Move to the right side

	var right Expression
	if isOf {
		right = p.parseExpression(ARG_SEPARATOR)
	} else {
		right = p.parseExpression(LOWEST)
	}
	if right == nil || !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	p.nextToken() // Move to the body
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	if isOf {
		return &ForOfStatement{Token: tok, Left: left, Right: right, Body: body}
	}
	return &ForInStatement{Token: tok, Left: left, Right: right, Body: body}
}

func (p *Parser) parseWhileStatement() Statement {
	stmt := &WhileStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil || !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	p.nextToken()
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseDoWhileStatement() Statement {
	stmt := &DoWhileStatement{Token: p.curToken}

	p.nextToken() // Consume 'do'
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}

	if !p.expectPeek(lexer.WHILE) || !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil || !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	// A ';' after do-while is always optional
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

// parseJumpStatement handles break and continue with an optional same-line label.
func (p *Parser) parseJumpStatement() Statement {
	tok := p.curToken
	var label *Identifier
	if p.peekTokenIs(lexer.IDENT) && p.peekToken.Line == tok.Line {
		p.nextToken()
		label = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}
	p.consumeSemicolon()

	if tok.Type == lexer.BREAK {
		return &BreakStatement{Token: tok, Label: label}
	}
	return &ContinueStatement{Token: tok, Label: label}
}

func (p *Parser) parseThrowStatement() Statement {
	stmt := &ThrowStatement{Token: p.curToken}
	if p.peekToken.Line != p.curToken.Line {
		p.addError(p.peekToken, "illegal newline after throw")
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseTryStatement() Statement {
	stmt := &TryStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	if stmt.Block = p.parseBlockStatement(); stmt.Block == nil {
		return nil
	}

	if p.peekTokenIs(lexer.CATCH) {
		p.nextToken() // cur is 'catch'
		if p.peekTokenIs(lexer.LPAREN) {
			p.nextToken()
			p.nextToken() // Move to the catch binding
			if stmt.CatchParam = p.parseBindingTarget(); stmt.CatchParam == nil {
				return nil
			}
			if !p.expectPeek(lexer.RPAREN) {
				return nil
			}
		}
		if !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		if stmt.CatchBody = p.parseBlockStatement(); stmt.CatchBody == nil {
			return nil
		}
	}

	if p.peekTokenIs(lexer.FINALLY) {
		p.nextToken()
		if !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		if stmt.Finally = p.parseBlockStatement(); stmt.Finally == nil {
			return nil
		}
	}

	if stmt.CatchBody == nil && stmt.Finally == nil {
		p.addError(stmt.Token, "missing catch or finally after try")
		return nil
	}
	return stmt
}

func (p *Parser) parseSwitchStatement() Statement {
	stmt := &SwitchStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Discriminant = p.parseExpression(LOWEST)
	if stmt.Discriminant == nil || !p.expectPeek(lexer.RPAREN) || !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	p.nextToken() // Move past '{'

	seenDefault := false
	for !p.curTokenIs(lexer.RBRACE) {
		clause := &SwitchCase{Token: p.curToken}
		switch p.curToken.Type {
		case lexer.CASE:
			p.nextToken()
			if clause.Test = p.parseExpression(LOWEST); clause.Test == nil {
				return nil
			}
		case lexer.DEFAULT:
			if seenDefault {
				p.addError(p.curToken, "more than one default clause in switch statement")
				return nil
			}
			seenDefault = true
		default:
			p.addError(p.curToken, fmt.Sprintf("expected case or default in switch body, got %s", p.curToken.Type))
			return nil
		}
		if !p.expectPeek(lexer.COLON) {
			return nil
		}
		p.nextToken() // Move past ':'

		for !p.curTokenIs(lexer.CASE) && !p.curTokenIs(lexer.DEFAULT) && !p.curTokenIs(lexer.RBRACE) {
			if p.curTokenIs(lexer.EOF) {
				p.addError(p.curToken, "unterminated switch statement")
				return nil
			}
			if s := p.parseStatement(); s != nil {
				clause.Body = append(clause.Body, s)
			}
			p.nextToken()
		}
		stmt.Cases = append(stmt.Cases, clause)
	}
	return stmt
}

func (p *Parser) parseLabeledStatement() Statement {
	stmt := &LabeledStatement{Token: p.curToken, Label: &Identifier{Token: p.curToken, Value: p.curToken.Literal}}
	p.nextToken() // cur is ':'
	p.nextToken() // Move to the body
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() Statement {
	stmt := &ExpressionStatement{Token: p.curToken}

	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	p.consumeSemicolon()
	return stmt
}

// parseBlockStatement parses { ... }; it starts on '{' and stops on '}'.
func (p *Parser) parseBlockStatement() *BlockStatement {
	block := &BlockStatement{Token: p.curToken, Statements: []Statement{}}
	restore := p.allowIn()
	defer restore()

	p.nextToken() // Consume '{'

	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}

	if !p.curTokenIs(lexer.RBRACE) {
		p.addError(p.curToken, "expected '}' before end of input")
		return nil
	}
	return block
}

// consumeSemicolon ends a statement: an explicit ';', or an inserted one
// before '}', end of input or a line break.
func (p *Parser) consumeSemicolon() {
	switch {
	case p.peekTokenIs(lexer.SEMICOLON):
		p.nextToken()
	case p.peekTokenIs(lexer.RBRACE), p.peekTokenIs(lexer.EOF), p.peekToken.Line > p.curToken.Line:
	default:
		p.unexpected(p.peekToken)
	}
}

// --- Expression Parsing (Pratt Parser) ---

func (p *Parser) parseExpression(precedence int) Expression {
	debugPrint("parseExpression(prec=%d): cur='%s' (%s)", precedence, p.curToken.Literal, p.curToken.Type)
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()

		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

// -- Prefix Parse Functions --

func (p *Parser) parseIdentifier() Expression {
	ident := &Identifier{Token: p.curToken, Value: p.curToken.Literal}

	// Shorthand arrow function `ident => body`
	if p.peekTokenIs(lexer.ARROW) {
		p.nextToken() // cur is '=>'
		return p.parseArrowFunctionBody([]Pattern{ident}, false)
	}

	sameLine := p.peekToken.Line == p.curToken.Line
	switch {
	case ident.Value == "async" && sameLine:
		if expr, ok := p.parseAsyncExpression(); ok {
			return expr
		}
	case ident.Value == "await" && p.ctx.async:
		return p.parseAwaitExpression()
	case ident.Value == "yield" && p.ctx.generator:
		return p.parseYieldExpression()
	}
	return ident
}

// parseAsyncExpression handles async function expressions and async arrows.
// ok is false when 'async' is an ordinary identifier.
func (p *Parser) parseAsyncExpression() (Expression, bool) {
	switch {
	case p.peekTokenIs(lexer.FUNCTION):
		tok := p.curToken
		p.nextToken() // cur is 'function'
		fn := p.parseFunction(true, tok)
		if fn == nil {
			return nil, true
		}
		return fn, true

	case p.peekTokenIs(lexer.IDENT) && p.tokenAfterPeek().Type == lexer.ARROW:
		p.nextToken() // cur is the parameter
		param := &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		p.nextToken() // cur is '=>'
		return p.parseArrowFunctionBody([]Pattern{param}, true), true

	case p.peekTokenIs(lexer.LPAREN):
		state, cur, peek, nerr := p.l.SaveState(), p.curToken, p.peekToken, len(p.errors)
		p.nextToken() // cur is '('
		if params := p.parseParameterList(); params != nil && p.peekTokenIs(lexer.ARROW) {
			p.errors = p.errors[:nerr]
			p.nextToken() // cur is '=>'
			return p.parseArrowFunctionBody(params, true), true
		}
		// Plain call of something named async
		p.l.RestoreState(state)
		p.curToken, p.peekToken = cur, peek
		p.errors = p.errors[:nerr]
	}
	return nil, false
}

func (p *Parser) parseAwaitExpression() Expression {
	expr := &PrefixExpression{Token: p.curToken, Operator: "await"}
	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)
	if expr.Right == nil {
		return nil
	}
	return expr
}

// parseYieldExpression builds a PrefixExpression whose Right may be nil for a bare yield.
func (p *Parser) parseYieldExpression() Expression {
	expr := &PrefixExpression{Token: p.curToken, Operator: "yield"}
	if p.peekTokenIs(lexer.ASTERISK) {
		p.nextToken()
		expr.Operator = "yield*"
	} else if p.peekToken.Line != p.curToken.Line || !p.canStartExpression(p.peekToken) {
		return expr
	}
	p.nextToken()
	expr.Right = p.parseExpression(ARG_SEPARATOR)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseNumberLiteral() Expression {
	return &NumberLiteral{Token: p.curToken, Raw: p.curToken.Literal}
}

func (p *Parser) parseStringLiteral() Expression {
	return &StringLiteral{Token: p.curToken, Value: p.curToken.Literal, Raw: p.curToken.Raw}
}

func (p *Parser) parseTemplateLiteral() Expression {
	return &TemplateLiteral{Token: p.curToken, Raw: p.curToken.Raw}
}

func (p *Parser) parseRegexLiteral() Expression {
	literal := p.curToken.Literal
	lastSlash := strings.LastIndexByte(literal, '/')
	if len(literal) < 2 || literal[0] != '/' || lastSlash < 1 {
		p.addError(p.curToken, fmt.Sprintf("invalid regular expression literal %s", literal))
		return nil
	}

	lit := &RegexLiteral{Token: p.curToken, Pattern: literal[1:lastSlash], Flags: literal[lastSlash+1:]}
	if err := validateRegex(lit.Pattern, lit.Flags); err != nil {
		p.addError(p.curToken, fmt.Sprintf("invalid regular expression %s: %v", literal, err))
		return nil
	}
	return lit
}

// validateRegex compiles the pattern so malformed literals fail at parse time.
func validateRegex(pattern, flags string) error {
	if strings.ContainsAny(flags, "uv") {
		return nil // Unicode-mode syntax is not modelled by the engine
	}
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	if strings.Contains(flags, "i") {
		opts |= regexp2.IgnoreCase
	}
	if strings.Contains(flags, "m") {
		opts |= regexp2.Multiline
	}
	if strings.Contains(flags, "s") {
		opts |= regexp2.Singleline
	}
	_, err := regexp2.Compile(pattern, opts)
	if err == nil {
		return nil
	}
	// Named groups and lookbehind are only available outside ECMAScript mode.
	if _, err2 := regexp2.Compile(pattern, opts&^regexp2.ECMAScript); err2 == nil {
		return nil
	}
	return err
}

func (p *Parser) parseBooleanLiteral() Expression {
	return &BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNullLiteral() Expression {
	return &NullLiteral{Token: p.curToken}
}

func (p *Parser) parseThisExpression() Expression {
	return &ThisExpression{Token: p.curToken}
}

func (p *Parser) parseIllegal() Expression {
	p.addError(p.curToken, p.curToken.Literal)
	return nil
}

func (p *Parser) parseSuperExpression() Expression {
	switch p.peekToken.Type {
	case lexer.LPAREN, lexer.DOT, lexer.LBRACKET:
		return &SuperExpression{Token: p.curToken}
	}
	p.addError(p.curToken, "'super' must be followed by arguments or a member access")
	return nil
}

// parsePrivateName accepts a bare #name only as the left side of 'in'.
func (p *Parser) parsePrivateName() Expression {
	if !p.peekTokenIs(lexer.IN) {
		p.addError(p.curToken, fmt.Sprintf("private name %s is only valid after '.' or before 'in'", p.curToken.Literal))
		return nil
	}
	return &Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

// parsePrefixExpression handles ! - + ~ typeof void delete.
func (p *Parser) parsePrefixExpression() Expression {
	expr := &PrefixExpression{Token: p.curToken, Operator: p.curToken.Literal}
	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parsePrefixUpdateExpression() Expression {
	expr := &UpdateExpression{Token: p.curToken, Operator: p.curToken.Literal, Prefix: true}
	p.nextToken()
	expr.Argument = p.parseExpression(PREFIX)
	if expr.Argument == nil {
		return nil
	}
	if !isAssignable(expr.Argument, false) {
		p.addError(expr.Token, fmt.Sprintf("invalid operand for %s", expr.Operator))
		return nil
	}
	return expr
}

func (p *Parser) parseNewExpression() Expression {
	expr := &NewExpression{Token: p.curToken}
	if p.peekTokenIs(lexer.DOT) {
		p.nextToken() // cur is '.'
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		if p.curToken.Literal != "target" {
			p.addError(p.curToken, fmt.Sprintf("unknown meta property new.%s", p.curToken.Literal))
			return nil
		}
		return &MetaProperty{Token: expr.Token, Meta: "new", Property: "target"}
	}
	p.nextToken()
	// Member accesses bind tighter than the argument list
	expr.Constructor = p.parseExpression(CALL)
	if expr.Constructor == nil {
		return nil
	}
	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		expr.Arguments = p.parseExpressionList(lexer.RPAREN)
		if expr.Arguments == nil {
			return nil
		}
	}
	return expr
}

func (p *Parser) parseFunctionLiteral() Expression {
	fn := p.parseFunction(false, p.curToken)
	if fn == nil {
		return nil
	}
	return fn
}

// parseFunction parses from 'function' through the closing '}' of the body.
func (p *Parser) parseFunction(isAsync bool, tok lexer.Token) *FunctionLiteral {
	fn := &FunctionLiteral{Token: tok, IsAsync: isAsync}
	if p.peekTokenIs(lexer.ASTERISK) {
		p.nextToken()
		fn.IsGenerator = true
	}
	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		fn.Name = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	return p.parseFunctionRest(fn)
}

// parseFunctionRest parses parameters and body; cur is '('.
func (p *Parser) parseFunctionRest(fn *FunctionLiteral) *FunctionLiteral {
	saved := p.ctx
	p.ctx = parseContext{async: fn.IsAsync, generator: fn.IsGenerator}
	defer func() { p.ctx = saved }()

	fn.Parameters = p.parseParameterList()
	if fn.Parameters == nil || !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	if fn.Body = p.parseBlockStatement(); fn.Body == nil {
		return nil
	}
	return fn
}

// parseArrowFunctionBody completes an arrow function; cur is '=>'.
func (p *Parser) parseArrowFunctionBody(params []Pattern, isAsync bool) Expression {
	arrow := &ArrowFunctionLiteral{Token: p.curToken, Parameters: params, IsAsync: isAsync}

	saved := p.ctx
	p.ctx = parseContext{async: isAsync}
	defer func() { p.ctx = saved }()

	if p.peekTokenIs(lexer.LBRACE) {
		p.nextToken()
		body := p.parseBlockStatement()
		if body == nil {
			return nil
		}
		arrow.Body = body
		return arrow
	}

	p.nextToken()
	body := p.parseExpression(ARG_SEPARATOR)
	if body == nil {
		return nil
	}
	arrow.Body = body
	return arrow
}

// parseGroupedExpression tries arrow parameters first and backtracks to a
// parenthesized expression when no '=>' follows.
func (p *Parser) parseGroupedExpression() Expression {
	startState := p.l.SaveState()
	startCur, startPeek := p.curToken, p.peekToken
	startErrors := len(p.errors)

	if params := p.parseParameterList(); params != nil && p.peekTokenIs(lexer.ARROW) {
		p.errors = p.errors[:startErrors]
		p.nextToken() // cur is '=>'
		return p.parseArrowFunctionBody(params, false)
	}

	p.l.RestoreState(startState)
	p.curToken, p.peekToken = startCur, startPeek
	p.errors = p.errors[:startErrors]
	debugPrint("parseGroupedExpression: backtracked to '%s'", p.curToken.Literal)

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		p.addError(p.curToken, "empty parentheses are only valid before '=>'")
		return nil
	}

	restore := p.allowIn()
	defer restore()

	p.nextToken() // Consume '('
	exp := p.parseExpression(LOWEST)
	if exp == nil || !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	p.lastGrouped = exp
	return exp
}

func (p *Parser) parseArrayLiteral() Expression {
	arr := &ArrayLiteral{Token: p.curToken, Elements: []Expression{}}
	restore := p.allowIn()
	defer restore()

	for {
		p.nextToken()
		switch p.curToken.Type {
		case lexer.RBRACKET:
			return arr
		case lexer.COMMA:
			arr.Elements = append(arr.Elements, nil) // Hole
			continue
		}

		el := p.parseExpression(ARG_SEPARATOR)
		if el == nil {
			return nil
		}
		arr.Elements = append(arr.Elements, el)

		if p.peekTokenIs(lexer.RBRACKET) {
			p.nextToken()
			return arr
		}
		if !p.expectPeek(lexer.COMMA) {
			return nil
		}
	}
}

func (p *Parser) parseObjectLiteral() Expression {
	obj := &ObjectLiteral{Token: p.curToken, Properties: []*ObjectProperty{}}
	restore := p.allowIn()
	defer restore()

	for {
		p.nextToken()
		if p.curTokenIs(lexer.RBRACE) {
			return obj
		}

		prop := p.parseObjectProperty()
		if prop == nil {
			return nil
		}
		obj.Properties = append(obj.Properties, prop)

		if p.peekTokenIs(lexer.RBRACE) {
			p.nextToken()
			return obj
		}
		if !p.expectPeek(lexer.COMMA) {
			return nil
		}
	}
}

func (p *Parser) parseObjectProperty() *ObjectProperty {
	if p.curTokenIs(lexer.SPREAD) {
		p.nextToken()
		value := p.parseExpression(ARG_SEPARATOR)
		if value == nil {
			return nil
		}
		return &ObjectProperty{PropKind: PropertySpread, Value: value}
	}

	prop := &ObjectProperty{PropKind: PropertyInit}
	isAsync, isGenerator := false, false
	if p.curTokenIs(lexer.IDENT) && p.startsMethodModifier() {
		switch p.curToken.Literal {
		case "get":
			prop.PropKind = PropertyGet
		case "set":
			prop.PropKind = PropertySet
		case "async":
			isAsync = true
		}
		p.nextToken()
	}
	if p.curTokenIs(lexer.ASTERISK) {
		isGenerator = true
		p.nextToken()
	}

	key, computed := p.parsePropertyKey()
	if key == nil {
		return nil
	}
	prop.Key, prop.Computed = key, computed

	switch {
	case p.peekTokenIs(lexer.LPAREN):
		if prop.PropKind == PropertyInit {
			prop.PropKind = PropertyMethod
		}
		fn := &FunctionLiteral{Token: p.curToken, IsAsync: isAsync, IsGenerator: isGenerator}
		p.nextToken() // cur is '('
		if p.parseFunctionRest(fn) == nil {
			return nil
		}
		prop.Value = fn
	case prop.PropKind != PropertyInit || isAsync || isGenerator:
		p.peekError(lexer.LPAREN)
		return nil
	case p.peekTokenIs(lexer.COLON):
		p.nextToken()
		p.nextToken()
		if prop.Value = p.parseExpression(ARG_SEPARATOR); prop.Value == nil {
			return nil
		}
	default:
		ident, ok := key.(*Identifier)
		if !ok || computed || ident.Token.Type != lexer.IDENT {
			p.peekError(lexer.COLON)
			return nil
		}
		prop.Value = ident
		prop.Shorthand = true
	}
	return prop
}

// startsMethodModifier reports whether a get/set/async identifier is a
// modifier rather than the property name itself.
func (p *Parser) startsMethodModifier() bool {
	switch p.curToken.Literal {
	case "get", "set", "async":
		return p.modifierApplies()
	}
	return false
}

// modifierApplies reports whether the contextual word in cur modifies the
// member that follows instead of naming it.
func (p *Parser) modifierApplies() bool {
	switch p.peekToken.Type {
	case lexer.COLON, lexer.LPAREN, lexer.COMMA, lexer.RBRACE, lexer.ASSIGN, lexer.SEMICOLON:
		return false
	}
	return p.curToken.Literal != "async" || p.peekToken.Line == p.curToken.Line
}

// parsePropertyKey parses an identifier name, string, number or [computed] key.
func (p *Parser) parsePropertyKey() (Expression, bool) {
	switch {
	case isIdentifierName(p.curToken):
		return &Identifier{Token: p.curToken, Value: p.curToken.Literal}, false
	case p.curTokenIs(lexer.STRING):
		return p.parseStringLiteral(), false
	case p.curTokenIs(lexer.NUMBER):
		return p.parseNumberLiteral(), false
	case p.curTokenIs(lexer.LBRACKET):
		restore := p.allowIn()
		defer restore()
		p.nextToken()
		key := p.parseExpression(ARG_SEPARATOR)
		if key == nil || !p.expectPeek(lexer.RBRACKET) {
			return nil, true
		}
		return key, true
	}
	p.addError(p.curToken, fmt.Sprintf("unexpected %s in property name", p.curToken.Type))
	return nil, false
}

func (p *Parser) parseSpreadElement() Expression {
	spread := &SpreadElement{Token: p.curToken}
	p.nextToken()
	spread.Argument = p.parseExpression(ARG_SEPARATOR)
	if spread.Argument == nil {
		return nil
	}
	return spread
}

// -- Infix Parse Functions --

func (p *Parser) parseInfixExpression(left Expression) Expression {
	expr := &InfixExpression{Token: p.curToken, Operator: p.curToken.Literal, Left: left}

	precedence := p.curPrecedence()
	if expr.Operator == "**" {
		if _, unary := left.(*PrefixExpression); unary && left != p.lastGrouped {
			p.addError(p.curToken, "unary operator before ** must be parenthesized")
			return nil
		}
		precedence-- // Right-associative
	}
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseAssignmentExpression(left Expression) Expression {
	expr := &AssignmentExpression{Token: p.curToken, Operator: p.curToken.Literal, Left: left}
	if !isAssignable(left, expr.Operator == "=") {
		p.addError(p.curToken, "invalid assignment target")
		return nil
	}

	p.nextToken()
	// Right-associative: a = b = c
	expr.Value = p.parseExpression(ASSIGNMENT - 1)
	if expr.Value == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseTernaryExpression(condition Expression) Expression {
	expr := &TernaryExpression{Token: p.curToken, Condition: condition}

	restore := p.allowIn()
	p.nextToken()
	expr.Consequence = p.parseExpression(ARG_SEPARATOR)
	restore()
	if expr.Consequence == nil || !p.expectPeek(lexer.COLON) {
		return nil
	}

	p.nextToken()
	expr.Alternative = p.parseExpression(ARG_SEPARATOR)
	if expr.Alternative == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseCommaExpression(left Expression) Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(COMMA)
	if right == nil {
		return nil
	}
	if seq, ok := left.(*SequenceExpression); ok {
		seq.Expressions = append(seq.Expressions, right)
		return seq
	}
	return &SequenceExpression{Token: tok, Expressions: []Expression{left, right}}
}

func (p *Parser) parseCallExpression(function Expression) Expression {
	exp := &CallExpression{Token: p.curToken, Function: function}
	exp.Arguments = p.parseExpressionList(lexer.RPAREN)
	if exp.Arguments == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseIndexExpression(left Expression) Expression {
	exp := &IndexExpression{Token: p.curToken, Left: left}
	restore := p.allowIn()
	defer restore()

	p.nextToken()
	exp.Index = p.parseExpression(LOWEST)
	if exp.Index == nil || !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return exp
}

func (p *Parser) parseMemberExpression(object Expression) Expression {
	exp := &MemberExpression{Token: p.curToken, Object: object}
	if p.peekTokenIs(lexer.PRIVATE_NAME) {
		p.nextToken()
		exp.Property = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		return exp
	}
	if !p.expectPeekIdentifierName() {
		return nil
	}
	exp.Property = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return exp
}

// parseOptionalChainingExpression handles a?.b, a?.[i] and a?.(args).
func (p *Parser) parseOptionalChainingExpression(left Expression) Expression {
	switch {
	case p.peekTokenIs(lexer.LPAREN):
		p.nextToken()
		call, ok := p.parseCallExpression(left).(*CallExpression)
		if !ok {
			return nil
		}
		call.Optional = true
		return call
	case p.peekTokenIs(lexer.LBRACKET):
		p.nextToken()
		index, ok := p.parseIndexExpression(left).(*IndexExpression)
		if !ok {
			return nil
		}
		index.Optional = true
		return index
	}
	member, ok := p.parseMemberExpression(left).(*MemberExpression)
	if !ok {
		return nil
	}
	member.Optional = true
	return member
}

func (p *Parser) parseTaggedTemplate(tag Expression) Expression {
	quasi := &TemplateLiteral{Token: p.curToken, Raw: p.curToken.Raw}
	return &TaggedTemplate{Token: p.curToken, Tag: tag, Quasi: quasi}
}

func (p *Parser) parsePostfixUpdateExpression(left Expression) Expression {
	if !isAssignable(left, false) {
		p.addError(p.curToken, fmt.Sprintf("invalid operand for %s", p.curToken.Literal))
		return nil
	}
	return &UpdateExpression{Token: p.curToken, Operator: p.curToken.Literal, Argument: left}
}

// parseExpressionList parses a comma-separated list of expressions until a specific end token.
func (p *Parser) parseExpressionList(end lexer.TokenType) []Expression {
	list := []Expression{}
	restore := p.allowIn()
	defer restore()

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	for {
		p.nextToken()
		// ARG_SEPARATOR allows assignments but stops at the comma operator
		expr := p.parseExpression(ARG_SEPARATOR)
		if expr == nil {
			return nil
		}
		list = append(list, expr)

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken() // Consume ','
		if p.peekTokenIs(end) {
			break // Trailing comma
		}
	}

	if !p.expectPeek(end) {
		return nil
	}
	return list
}

// --- Binding Patterns ---

// parseBindingTarget parses an identifier, array pattern or object pattern.
func (p *Parser) parseBindingTarget() Pattern {
	switch p.curToken.Type {
	case lexer.IDENT:
		return &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	case lexer.LBRACKET:
		if pat := p.parseArrayPattern(); pat != nil {
			return pat
		}
		return nil
	case lexer.LBRACE:
		if pat := p.parseObjectPattern(); pat != nil {
			return pat
		}
		return nil
	}
	p.addError(p.curToken, fmt.Sprintf("expected identifier or destructuring pattern, got %s", p.curToken.Type))
	return nil
}

// parseBindingElement parses a binding target with an optional default value.
func (p *Parser) parseBindingElement() Pattern {
	target := p.parseBindingTarget()
	if target == nil {
		return nil
	}
	if !p.peekTokenIs(lexer.ASSIGN) {
		return target
	}

	p.nextToken() // cur is '='
	pat := &AssignmentPattern{Token: p.curToken, Target: target}
	p.nextToken()
	pat.Default = p.parseExpression(ARG_SEPARATOR)
	if pat.Default == nil {
		return nil
	}
	return pat
}

func (p *Parser) parseRestElement() *RestElement {
	rest := &RestElement{Token: p.curToken}
	p.nextToken()
	if rest.Target = p.parseBindingTarget(); rest.Target == nil {
		return nil
	}
	return rest
}

func (p *Parser) parseArrayPattern() *ArrayPattern {
	pat := &ArrayPattern{Token: p.curToken, Elements: []Pattern{}}

	for {
		p.nextToken()
		switch p.curToken.Type {
		case lexer.RBRACKET:
			return pat
		case lexer.COMMA:
			pat.Elements = append(pat.Elements, nil) // Hole
			continue
		case lexer.SPREAD:
			rest := p.parseRestElement()
			if rest == nil || !p.expectPeek(lexer.RBRACKET) {
				return nil
			}
			pat.Elements = append(pat.Elements, rest)
			return pat
		}

		el := p.parseBindingElement()
		if el == nil {
			return nil
		}
		pat.Elements = append(pat.Elements, el)

		if p.peekTokenIs(lexer.RBRACKET) {
			p.nextToken()
			return pat
		}
		if !p.expectPeek(lexer.COMMA) {
			return nil
		}
	}
}

func (p *Parser) parseObjectPattern() *ObjectPattern {
	pat := &ObjectPattern{Token: p.curToken, Properties: []*PatternProperty{}}

	for {
		p.nextToken()
		if p.curTokenIs(lexer.RBRACE) {
			return pat
		}
		if p.curTokenIs(lexer.SPREAD) {
			rest := p.parseRestElement()
			if rest == nil || !p.expectPeek(lexer.RBRACE) {
				return nil
			}
			if rest.Target.Kind() != KindIdentifier {
				p.addError(rest.Token, "object rest element must be an identifier")
				return nil
			}
			pat.Rest = rest
			return pat
		}

		key, computed := p.parsePropertyKey()
		if key == nil {
			return nil
		}
		prop := &PatternProperty{Key: key, Computed: computed}

		if p.peekTokenIs(lexer.COLON) {
			p.nextToken()
			p.nextToken()
			if prop.Value = p.parseBindingElement(); prop.Value == nil {
				return nil
			}
		} else {
			ident, ok := key.(*Identifier)
			if !ok || computed || ident.Token.Type != lexer.IDENT {
				p.peekError(lexer.COLON)
				return nil
			}
			prop.Shorthand = true
			prop.Value = ident
			if p.peekTokenIs(lexer.ASSIGN) {
				p.nextToken()
				def := &AssignmentPattern{Token: p.curToken, Target: ident}
				p.nextToken()
				if def.Default = p.parseExpression(ARG_SEPARATOR); def.Default == nil {
					return nil
				}
				prop.Value = def
			}
		}
		pat.Properties = append(pat.Properties, prop)

		if p.peekTokenIs(lexer.RBRACE) {
			p.nextToken()
			return pat
		}
		if !p.expectPeek(lexer.COMMA) {
			return nil
		}
	}
}

// parseParameterList parses (a, b = 1, {c}, ...rest); cur is '(' and the
// list ends on ')'. A nil result means the tokens were not a parameter list.
func (p *Parser) parseParameterList() []Pattern {
	params := []Pattern{}
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}

	for {
		p.nextToken()
		if p.curTokenIs(lexer.SPREAD) {
			rest := p.parseRestElement()
			if rest == nil || !p.expectPeek(lexer.RPAREN) {
				return nil
			}
			return append(params, rest)
		}

		param := p.parseBindingElement()
		if param == nil {
			return nil
		}
		params = append(params, param)

		if p.peekTokenIs(lexer.RPAREN) {
			p.nextToken()
			return params
		}
		if !p.expectPeek(lexer.COMMA) {
			return nil
		}
		if p.peekTokenIs(lexer.RPAREN) {
			p.nextToken() // Trailing comma
			return params
		}
	}
}

// --- Helper Methods ---

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

// peekIsContextual matches identifiers that act as keywords in one position, like 'of'.
func (p *Parser) peekIsContextual(word string) bool {
	return p.peekToken.Type == lexer.IDENT && p.peekToken.Literal == word
}

// tokenAfterPeek returns the token following peekToken without consuming anything.
func (p *Parser) tokenAfterPeek() lexer.Token {
	saved := p.l.SaveState()
	tok := p.l.NextToken()
	p.l.RestoreState(saved)
	return tok
}

// allowIn lifts the for-initializer 'in' restriction inside nested brackets and bodies.
func (p *Parser) allowIn() func() {
	saved := p.ctx.noIn
	p.ctx.noIn = false
	return func() { p.ctx.noIn = saved }
}

// expectPeek checks the type of the next token and advances if it matches.
// If it doesn't match, it adds an error.
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

// expectPeekContextual expects an identifier spelled word, such as 'from'.
func (p *Parser) expectPeekContextual(word string) bool {
	if p.peekIsContextual(word) {
		p.nextToken()
		return true
	}
	p.addError(p.peekToken, fmt.Sprintf("expected '%s', got %s", word, p.peekToken.Type))
	return false
}

// expectPeekIdentifierName accepts identifiers and reserved words, as allowed after '.'.
func (p *Parser) expectPeekIdentifierName() bool {
	if isIdentifierName(p.peekToken) {
		p.nextToken()
		return true
	}
	p.addError(p.peekToken, fmt.Sprintf("expected property name after '%s', got %s", p.curToken.Literal, p.peekToken.Type))
	return false
}

func (p *Parser) canStartExpression(t lexer.Token) bool {
	switch t.Type {
	case lexer.RPAREN, lexer.RBRACKET, lexer.RBRACE, lexer.COMMA, lexer.SEMICOLON, lexer.COLON, lexer.EOF:
		return false
	}
	_, ok := p.prefixParseFns[t.Type]
	return ok
}

// isIdentifierName reports whether tok may be used as a property name.
func isIdentifierName(tok lexer.Token) bool {
	// Keyword tokens carry their own spelling as Literal; strings never match
	return lexer.LookupIdent(tok.Literal) == tok.Type
}

// isAssignable reports whether expr may appear left of an assignment.
// Array and object literals are destructuring targets for plain '=' only.
func isAssignable(expr Expression, destructuring bool) bool {
	switch e := expr.(type) {
	case *Identifier:
		return true
	case *MemberExpression:
		return !e.Optional
	case *IndexExpression:
		return !e.Optional
	case *ArrayLiteral, *ObjectLiteral:
		return destructuring
	}
	return false
}

// --- Error Handling ---

func (p *Parser) peekError(t lexer.TokenType) {
	if p.peekTokenIs(lexer.ILLEGAL) {
		p.addError(p.peekToken, p.peekToken.Literal)
		return
	}
	msg := fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekToken.Type)
	p.addError(p.peekToken, msg)
}

func (p *Parser) noPrefixParseFnError(tok lexer.Token) {
	p.addError(tok, fmt.Sprintf("no prefix parse function for %s found", tok.Type))
}

func (p *Parser) unexpected(tok lexer.Token) {
	if tok.Type == lexer.ILLEGAL {
		p.addError(tok, tok.Literal)
		return
	}
	p.addError(tok, fmt.Sprintf("unexpected token %s", tok.Type))
}

// addError creates a SyntaxError and appends it to the parser's error list.
// Limits the number of errors to prevent memory exhaustion from runaway input.
func (p *Parser) addError(tok lexer.Token, msg string) {
	const maxErrors = 1000
	if len(p.errors) > maxErrors {
		return
	}
	if len(p.errors) == maxErrors {
		msg = fmt.Sprintf("too many parse errors (limit: %d), stopping parser", maxErrors)
	}

	p.errors = append(p.errors, &errors.SyntaxError{
		Position: errors.Position{
			Line:     tok.Line,
			Column:   tok.Column,
			StartPos: tok.StartPos,
			EndPos:   tok.EndPos,
			Source:   p.source,
		},
		Msg: msg,
	})
}

// --- Precedence Helper ---

func (p *Parser) peekPrecedence() int {
	switch {
	case p.ctx.noIn && p.peekTokenIs(lexer.IN):
		return LOWEST
	case (p.peekTokenIs(lexer.INC) || p.peekTokenIs(lexer.DEC)) && p.peekToken.Line != p.curToken.Line:
		// A line break before ++/-- makes it a prefix of the next statement
		return LOWEST
	}
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}
