package parser

import "jscodemod/pkg/lexer"

// parseClassDeclaration parses a class declaration statement
// Syntax: class ClassName [extends SuperClass] { classBody }
func (p *Parser) parseClassDeclaration() Statement {
	tok := p.curToken
	class := p.parseClass()
	if class == nil {
		return nil
	}
	if class.Name == nil {
		p.addError(tok, "class declaration requires a name")
		return nil
	}
	return &ClassDeclaration{Token: tok, Class: class}
}

// parseClassExpression parses a class expression
// Syntax: class [ClassName] [extends SuperClass] { classBody }
func (p *Parser) parseClassExpression() Expression {
	class := p.parseClass()
	if class == nil {
		return nil
	}
	return class
}

// parseClass parses from 'class' through the closing '}' of the body.
func (p *Parser) parseClass() *ClassLiteral {
	class := &ClassLiteral{Token: p.curToken}

	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		class.Name = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}

	if p.peekTokenIs(lexer.EXTENDS) {
		p.nextToken() // consume 'extends'
		p.nextToken() // move to start of the heritage expression
		// A left-hand-side expression: calls and member accesses, nothing looser
		class.SuperClass = p.parseExpression(POSTFIX)
		if class.SuperClass == nil {
			return nil
		}
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	if !p.parseClassBody(class) {
		return nil
	}
	// parseClassBody leaves us at the '}' token
	return class
}

// parseClassBody parses the members between the braces; cur is '{'.
func (p *Parser) parseClassBody(class *ClassLiteral) bool {
	saved := p.ctx
	p.ctx = parseContext{}
	defer func() { p.ctx = saved }()

	p.nextToken() // move past '{'

	hasConstructor := false
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		// Skip semicolons
		if p.curTokenIs(lexer.SEMICOLON) {
			p.nextToken()
			continue
		}
		member := p.parseClassMember()
		if member == nil {
			return false
		}
		if isConstructor(member) {
			fn := member.Value.(*FunctionLiteral)
			switch {
			case member.MemberKind != MemberMethod || fn.IsAsync || fn.IsGenerator:
				p.addError(member.Token, "class constructor cannot be an accessor, async or a generator")
				return false
			case hasConstructor:
				p.addError(member.Token, "a class may only have one constructor")
				return false
			}
			hasConstructor = true
		}
		class.Members = append(class.Members, member)
		p.nextToken()
	}

	if !p.curTokenIs(lexer.RBRACE) {
		p.addError(p.curToken, "expected '}' before end of input")
		return false
	}
	return true
}

// parseClassMember parses a method, accessor, field or static block. It
// stops on the member's last token.
func (p *Parser) parseClassMember() *ClassMember {
	member := &ClassMember{Token: p.curToken, MemberKind: MemberMethod}

	if p.curTokenIs(lexer.IDENT) && p.curToken.Literal == "static" && p.modifierApplies() {
		member.Static = true
		p.nextToken()
		if p.curTokenIs(lexer.LBRACE) {
			member.MemberKind = MemberStaticBlock
			if member.Body = p.parseBlockStatement(); member.Body == nil {
				return nil
			}
			return member
		}
	}

	isAsync, isGenerator := false, false
	if p.curTokenIs(lexer.IDENT) && p.startsMethodModifier() {
		switch p.curToken.Literal {
		case "get":
			member.MemberKind = MemberGet
		case "set":
			member.MemberKind = MemberSet
		case "async":
			isAsync = true
		}
		p.nextToken()
	}
	if p.curTokenIs(lexer.ASTERISK) {
		isGenerator = true
		p.nextToken()
	}

	if p.curTokenIs(lexer.PRIVATE_NAME) {
		member.Key = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	} else {
		key, computed := p.parsePropertyKey()
		if key == nil {
			return nil
		}
		member.Key, member.Computed = key, computed
	}

	switch {
	case p.peekTokenIs(lexer.LPAREN):
		fn := &FunctionLiteral{Token: p.curToken, IsAsync: isAsync, IsGenerator: isGenerator}
		p.nextToken() // cur is '('
		if p.parseFunctionRest(fn) == nil {
			return nil
		}
		member.Value = fn
	case member.MemberKind != MemberMethod || isAsync || isGenerator:
		p.peekError(lexer.LPAREN)
		return nil
	default:
		member.MemberKind = MemberField
		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken() // cur is '='
			p.nextToken()
			restore := p.allowIn()
			member.Value = p.parseExpression(ARG_SEPARATOR)
			restore()
			if member.Value == nil {
				return nil
			}
		}
		p.consumeSemicolon()
	}
	return member
}

// isConstructor reports whether m is the class constructor rather than a
// static or computed member spelled "constructor".
func isConstructor(m *ClassMember) bool {
	if m.Static || m.Computed || m.MemberKind == MemberField || m.MemberKind == MemberStaticBlock {
		return false
	}
	switch key := m.Key.(type) {
	case *Identifier:
		return key.Value == "constructor"
	case *StringLiteral:
		return key.Value == "constructor"
	}
	return false
}
