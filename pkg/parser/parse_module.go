package parser

import (
	"fmt"

	"jscodemod/pkg/lexer"
)

// ----------------------------------------------------------------------------
// Module System: Import/Export Parsing Methods
// ----------------------------------------------------------------------------

// parseImportDeclaration parses the static import forms:
// import "module"
// import defaultImport from "module"
// import * as name from "module"
// import { export1, export2 as alias2 } from "module"
// import defaultImport, { export1 } from "module"
// import defaultImport, * as name from "module"
func (p *Parser) parseImportDeclaration() Statement {
	stmt := &ImportDeclaration{Token: p.curToken}
	p.nextToken()

	// Bare import: import "module"
	if p.curTokenIs(lexer.STRING) {
		stmt.Source = &StringLiteral{Token: p.curToken, Value: p.curToken.Literal, Raw: p.curToken.Raw}
		p.consumeSemicolon()
		return stmt
	}

	if p.curTokenIs(lexer.IDENT) {
		stmt.Default = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken() // consume identifier
			p.nextToken() // consume comma
			if !p.parseImportClause(stmt) {
				return nil
			}
		}
	} else if !p.parseImportClause(stmt) {
		return nil
	}

	if stmt.Source = p.parseModuleSource(); stmt.Source == nil {
		return nil
	}
	p.consumeSemicolon()
	return stmt
}

// parseImportClause parses `* as name` or `{ a, b as c }`; it stops on the
// last token of the clause.
func (p *Parser) parseImportClause(stmt *ImportDeclaration) bool {
	switch p.curToken.Type {
	case lexer.ASTERISK:
		if !p.expectPeekContextual("as") || !p.expectPeek(lexer.IDENT) {
			return false
		}
		stmt.Namespace = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		return true

	case lexer.LBRACE:
		stmt.Braces = true
		for {
			p.nextToken()
			if p.curTokenIs(lexer.RBRACE) {
				return true // Empty list or trailing comma
			}

			imported := p.parseModuleName()
			if imported == nil {
				return false
			}
			spec := &ImportSpecifier{Imported: imported}
			if p.peekIsContextual("as") {
				p.nextToken() // cur is 'as'
				if !p.expectPeek(lexer.IDENT) {
					return false
				}
				spec.Local = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
			} else {
				// { name } binds name itself, so it must be a plain identifier
				ident, ok := imported.(*Identifier)
				if !ok || ident.Token.Type != lexer.IDENT {
					p.addError(p.curToken, fmt.Sprintf("import of %s needs a local name ('as')", imported.String()))
					return false
				}
				spec.Local = ident
			}
			stmt.Specifiers = append(stmt.Specifiers, spec)

			if p.peekTokenIs(lexer.RBRACE) {
				p.nextToken()
				return true
			}
			if !p.expectPeek(lexer.COMMA) {
				return false
			}
		}
	}
	p.addError(p.curToken, fmt.Sprintf("unexpected %s in import declaration", p.curToken.Type))
	return false
}

// parseExportDeclaration parses various export statement forms:
// export const x = 1;
// export function foo() {}
// export class Foo {}
// export { name1, name2 as alias };
// export { name1 } from "module";
// export default expression;
// export * from "module";
// export * as name from "module";
func (p *Parser) parseExportDeclaration() Statement {
	exportToken := p.curToken
	p.nextToken()

	switch p.curToken.Type {
	case lexer.DEFAULT:
		return p.parseExportDefaultDeclaration(exportToken)

	case lexer.ASTERISK:
		return p.parseExportAllDeclaration(exportToken)

	case lexer.LBRACE:
		return p.parseExportSpecifiers(exportToken)

	case lexer.VAR, lexer.LET, lexer.CONST:
		if decl := p.parseVariableStatement(false); decl != nil {
			return &ExportNamedDeclaration{Token: exportToken, Declaration: decl}
		}
		return nil

	case lexer.FUNCTION:
		if decl := p.parseFunctionDeclaration(false); decl != nil {
			return &ExportNamedDeclaration{Token: exportToken, Declaration: decl}
		}
		return nil

	case lexer.CLASS:
		if decl := p.parseClassDeclaration(); decl != nil {
			return &ExportNamedDeclaration{Token: exportToken, Declaration: decl}
		}
		return nil

	case lexer.IDENT:
		if p.startsAsyncFunction() {
			p.nextToken() // Move to 'function'
			if decl := p.parseFunctionDeclaration(true); decl != nil {
				return &ExportNamedDeclaration{Token: exportToken, Declaration: decl}
			}
			return nil
		}
	}
	p.unexpected(p.curToken)
	return nil
}

// parseExportDefaultDeclaration parses: export default expression;
// Function and class declarations may be anonymous here.
func (p *Parser) parseExportDefaultDeclaration(exportToken lexer.Token) Statement {
	stmt := &ExportDefaultDeclaration{Token: exportToken}
	p.nextToken() // Move past 'default'

	switch {
	case p.curTokenIs(lexer.FUNCTION), p.startsAsyncFunction():
		tok := p.curToken
		isAsync := p.curTokenIs(lexer.IDENT)
		if isAsync {
			p.nextToken() // Move to 'function'
		}
		fn := p.parseFunction(isAsync, tok)
		if fn == nil {
			return nil
		}
		stmt.Declaration = &FunctionDeclaration{Token: tok, Function: fn}

	case p.curTokenIs(lexer.CLASS):
		tok := p.curToken
		class := p.parseClass()
		if class == nil {
			return nil
		}
		stmt.Declaration = &ClassDeclaration{Token: tok, Class: class}

	default:
		value := p.parseExpression(ARG_SEPARATOR)
		if value == nil {
			return nil
		}
		stmt.Declaration = value
		p.consumeSemicolon()
	}
	return stmt
}

// parseExportAllDeclaration parses: export * from "module" or export * as name from "module"
func (p *Parser) parseExportAllDeclaration(exportToken lexer.Token) Statement {
	stmt := &ExportAllDeclaration{Token: exportToken}

	if p.peekIsContextual("as") {
		p.nextToken() // consume '*'
		p.nextToken() // consume 'as'
		if stmt.Exported = p.parseModuleName(); stmt.Exported == nil {
			return nil
		}
	}
	if stmt.Source = p.parseModuleSource(); stmt.Source == nil {
		return nil
	}
	p.consumeSemicolon()
	return stmt
}

// parseExportSpecifiers parses: export { name1, name2 as alias } [from "module"]
func (p *Parser) parseExportSpecifiers(exportToken lexer.Token) Statement {
	stmt := &ExportNamedDeclaration{Token: exportToken, Specifiers: []*ExportSpecifier{}}

	for {
		p.nextToken()
		if p.curTokenIs(lexer.RBRACE) {
			break // Empty list or trailing comma
		}

		local := p.parseModuleName()
		if local == nil {
			return nil
		}
		spec := &ExportSpecifier{Local: local, Exported: local}
		if p.peekIsContextual("as") {
			p.nextToken() // consume local name
			p.nextToken() // consume 'as'
			if spec.Exported = p.parseModuleName(); spec.Exported == nil {
				return nil
			}
		}
		stmt.Specifiers = append(stmt.Specifiers, spec)

		if p.peekTokenIs(lexer.RBRACE) {
			p.nextToken()
			break
		}
		if !p.expectPeek(lexer.COMMA) {
			return nil
		}
	}

	if p.peekIsContextual("from") {
		if stmt.Source = p.parseModuleSource(); stmt.Source == nil {
			return nil
		}
	} else {
		// Without 'from' every local name refers to a binding of this module
		for _, spec := range stmt.Specifiers {
			if ident, ok := spec.Local.(*Identifier); !ok || ident.Token.Type != lexer.IDENT {
				p.addError(exportToken, fmt.Sprintf("cannot export %s without 'from'", spec.Local.String()))
				return nil
			}
		}
	}
	p.consumeSemicolon()
	return stmt
}

// parseModuleName parses an identifier name (reserved words included) or a
// string literal; cur is the name.
func (p *Parser) parseModuleName() ModuleName {
	switch {
	case p.curTokenIs(lexer.STRING):
		return p.parseStringLiteral()
	case isIdentifierName(p.curToken):
		return &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}
	p.addError(p.curToken, fmt.Sprintf("unexpected %s in module name", p.curToken.Type))
	return nil
}

// parseModuleSource parses `from "module"`; cur is the token before 'from'.
func (p *Parser) parseModuleSource() *StringLiteral {
	if !p.expectPeekContextual("from") || !p.expectPeek(lexer.STRING) {
		return nil
	}
	return &StringLiteral{Token: p.curToken, Value: p.curToken.Literal, Raw: p.curToken.Raw}
}

// parseImportExpression parses import(specifier) and import.meta.
func (p *Parser) parseImportExpression() Expression {
	tok := p.curToken
	if p.peekTokenIs(lexer.DOT) {
		p.nextToken() // cur is '.'
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		if p.curToken.Literal != "meta" {
			p.addError(p.curToken, fmt.Sprintf("unknown meta property import.%s", p.curToken.Literal))
			return nil
		}
		return &MetaProperty{Token: tok, Meta: "import", Property: "meta"}
	}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	restore := p.allowIn()
	defer restore()

	p.nextToken()
	call := &ImportCall{Token: tok}
	if call.Source = p.parseExpression(ARG_SEPARATOR); call.Source == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return call
}

// startsAsyncFunction reports whether cur is an `async` that begins an async
// function on the same line.
func (p *Parser) startsAsyncFunction() bool {
	return p.curTokenIs(lexer.IDENT) && p.curToken.Literal == "async" &&
		p.peekTokenIs(lexer.FUNCTION) && p.peekToken.Line == p.curToken.Line
}
