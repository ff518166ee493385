package parser

import (
	"jscodemod/pkg/lexer" // Need token types
	"jscodemod/pkg/source"
)

// NodeKind tags every concrete node type. The set is closed: each node type
// below reports exactly one kind, and every walker switches over all of them.
type NodeKind int

const (
	KindInvalid NodeKind = iota

	// Root
	KindProgram

	// Statements
	KindVariableStatement
	KindExpressionStatement
	KindBlockStatement
	KindReturnStatement
	KindIfStatement
	KindForStatement
	KindForInStatement
	KindForOfStatement
	KindWhileStatement
	KindDoWhileStatement
	KindBreakStatement
	KindContinueStatement
	KindThrowStatement
	KindTryStatement
	KindSwitchStatement
	KindEmptyStatement
	KindLabeledStatement
	KindFunctionDeclaration
	KindClassDeclaration
	KindImportDeclaration
	KindExportNamedDeclaration
	KindExportDefaultDeclaration
	KindExportAllDeclaration

	// Expressions
	KindIdentifier
	KindNumberLiteral
	KindStringLiteral
	KindTemplateLiteral
	KindTaggedTemplate
	KindRegexLiteral
	KindBooleanLiteral
	KindNullLiteral
	KindThisExpression
	KindArrayLiteral
	KindObjectLiteral
	KindFunctionLiteral
	KindArrowFunctionLiteral
	KindPrefixExpression
	KindUpdateExpression
	KindInfixExpression
	KindAssignmentExpression
	KindTernaryExpression
	KindSequenceExpression
	KindCallExpression
	KindNewExpression
	KindMemberExpression
	KindIndexExpression
	KindSpreadElement
	KindClassLiteral
	KindSuperExpression
	KindMetaProperty
	KindImportCall

	// Binding patterns
	KindArrayPattern
	KindObjectPattern
	KindAssignmentPattern
	KindRestElement
)

var kindNames = [...]string{
	KindInvalid:                  "Invalid",
	KindProgram:                  "Program",
	KindVariableStatement:        "VariableStatement",
	KindExpressionStatement:      "ExpressionStatement",
	KindBlockStatement:           "BlockStatement",
	KindReturnStatement:          "ReturnStatement",
	KindIfStatement:              "IfStatement",
	KindForStatement:             "ForStatement",
	KindForInStatement:           "ForInStatement",
	KindForOfStatement:           "ForOfStatement",
	KindWhileStatement:           "WhileStatement",
	KindDoWhileStatement:         "DoWhileStatement",
	KindBreakStatement:           "BreakStatement",
	KindContinueStatement:        "ContinueStatement",
	KindThrowStatement:           "ThrowStatement",
	KindTryStatement:             "TryStatement",
	KindSwitchStatement:          "SwitchStatement",
	KindEmptyStatement:           "EmptyStatement",
	KindLabeledStatement:         "LabeledStatement",
	KindFunctionDeclaration:      "FunctionDeclaration",
	KindClassDeclaration:         "ClassDeclaration",
	KindImportDeclaration:        "ImportDeclaration",
	KindExportNamedDeclaration:   "ExportNamedDeclaration",
	KindExportDefaultDeclaration: "ExportDefaultDeclaration",
	KindExportAllDeclaration:     "ExportAllDeclaration",
	KindIdentifier:               "Identifier",
	KindNumberLiteral:            "NumberLiteral",
	KindStringLiteral:            "StringLiteral",
	KindTemplateLiteral:          "TemplateLiteral",
	KindTaggedTemplate:           "TaggedTemplate",
	KindRegexLiteral:             "RegexLiteral",
	KindBooleanLiteral:           "BooleanLiteral",
	KindNullLiteral:              "NullLiteral",
	KindThisExpression:           "ThisExpression",
	KindArrayLiteral:             "ArrayLiteral",
	KindObjectLiteral:            "ObjectLiteral",
	KindFunctionLiteral:          "FunctionLiteral",
	KindArrowFunctionLiteral:     "ArrowFunctionLiteral",
	KindPrefixExpression:         "PrefixExpression",
	KindUpdateExpression:         "UpdateExpression",
	KindInfixExpression:          "InfixExpression",
	KindAssignmentExpression:     "AssignmentExpression",
	KindTernaryExpression:        "TernaryExpression",
	KindSequenceExpression:       "SequenceExpression",
	KindCallExpression:           "CallExpression",
	KindNewExpression:            "NewExpression",
	KindMemberExpression:         "MemberExpression",
	KindIndexExpression:          "IndexExpression",
	KindSpreadElement:            "SpreadElement",
	KindClassLiteral:             "ClassLiteral",
	KindSuperExpression:          "SuperExpression",
	KindMetaProperty:             "MetaProperty",
	KindImportCall:               "ImportCall",
	KindArrayPattern:             "ArrayPattern",
	KindObjectPattern:            "ObjectPattern",
	KindAssignmentPattern:        "AssignmentPattern",
	KindRestElement:              "RestElement",
}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// --- Interfaces ---

// Node is the base interface for all AST nodes.
type Node interface {
	Kind() NodeKind
	TokenLiteral() string // Returns the literal value of the token associated with the node
	String() string       // Returns the node printed as JavaScript (for debugging)
}

// Statement represents a statement node in the AST.
type Statement interface {
	Node
	statementNode()
}

// Expression represents an expression node in the AST.
type Expression interface {
	Node
	expressionNode()
}

// Pattern is a binding target: an Identifier or one of the destructuring
// pattern nodes. Function parameters and declarator targets are Patterns.
type Pattern interface {
	Node
	patternNode()
}

// --- Program Node ---

// Program is the root node of the AST.
type Program struct {
	Statements []Statement
	Source     *source.SourceFile

	spans map[Statement]Span
}

// Span is the half-open byte range [Start, End) of a node in its source.
type Span struct {
	Start, End int
}

// Span returns the source range of a statement parsed into p. Synthesized
// statements and programs that were not produced by the parser have none.
func (p *Program) Span(s Statement) (Span, bool) {
	span, ok := p.spans[s]
	return span, ok
}

func (p *Program) Kind() NodeKind { return KindProgram }
func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}
func (p *Program) String() string { return nodeString(p) }

// --- Statement Nodes ---

// DeclarationKind is the keyword introducing a variable declaration.
type DeclarationKind string

const (
	DeclVar   DeclarationKind = "var"
	DeclLet   DeclarationKind = "let"
	DeclConst DeclarationKind = "const"
)

// VarDeclarator is one `<Target> = <Value>` entry of a declaration.
type VarDeclarator struct {
	Target Pattern
	Value  Expression // nil when there is no initializer
}

// VariableStatement represents a var, let or const declaration.
// <DeclKind> <Target> = <Value>, ...;
type VariableStatement struct {
	Token        lexer.Token // The var/let/const token
	DeclKind     DeclarationKind
	Declarations []*VarDeclarator
}

func (vs *VariableStatement) statementNode()       {}
func (vs *VariableStatement) Kind() NodeKind       { return KindVariableStatement }
func (vs *VariableStatement) TokenLiteral() string { return vs.Token.Literal }
func (vs *VariableStatement) String() string       { return nodeString(vs) }

// ExpressionStatement represents a statement consisting of a single expression.
type ExpressionStatement struct {
	Token      lexer.Token // The first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) Kind() NodeKind       { return KindExpressionStatement }
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string       { return nodeString(es) }

// BlockStatement represents a sequence of statements enclosed in braces.
type BlockStatement struct {
	Token      lexer.Token // The '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) Kind() NodeKind       { return KindBlockStatement }
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) String() string       { return nodeString(bs) }

// ReturnStatement represents a `return` statement.
type ReturnStatement struct {
	Token       lexer.Token // The 'return' token
	ReturnValue Expression  // nil for a bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) Kind() NodeKind       { return KindReturnStatement }
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string       { return nodeString(rs) }

// IfStatement represents if (<Condition>) <Consequence> else <Alternative>.
type IfStatement struct {
	Token       lexer.Token // The 'if' token
	Condition   Expression
	Consequence Statement
	Alternative Statement // nil without else
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) Kind() NodeKind       { return KindIfStatement }
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string       { return nodeString(is) }

// ForStatement represents for (<Initializer>; <Condition>; <Update>) <Body>.
// Initializer is a *VariableStatement, an Expression or nil.
type ForStatement struct {
	Token       lexer.Token // The 'for' token
	Initializer Node
	Condition   Expression
	Update      Expression
	Body        Statement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) Kind() NodeKind       { return KindForStatement }
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) String() string       { return nodeString(fs) }

// ForInStatement represents for (<Left> in <Right>) <Body>.
// Left is a *VariableStatement without initializers or an assignable Expression.
type ForInStatement struct {
	Token lexer.Token // The 'for' token
	Left  Node
	Right Expression
	Body  Statement
}

func (fs *ForInStatement) statementNode()       {}
func (fs *ForInStatement) Kind() NodeKind       { return KindForInStatement }
func (fs *ForInStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForInStatement) String() string       { return nodeString(fs) }

// ForOfStatement represents for (<Left> of <Right>) <Body>.
type ForOfStatement struct {
	Token lexer.Token // The 'for' token
	Left  Node
	Right Expression
	Body  Statement
}

func (fs *ForOfStatement) statementNode()       {}
func (fs *ForOfStatement) Kind() NodeKind       { return KindForOfStatement }
func (fs *ForOfStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForOfStatement) String() string       { return nodeString(fs) }

// WhileStatement represents while (<Condition>) <Body>.
type WhileStatement struct {
	Token     lexer.Token // The 'while' token
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) Kind() NodeKind       { return KindWhileStatement }
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) String() string       { return nodeString(ws) }

// DoWhileStatement represents do <Body> while (<Condition>);
type DoWhileStatement struct {
	Token     lexer.Token // The 'do' token
	Body      Statement
	Condition Expression
}

func (dws *DoWhileStatement) statementNode()       {}
func (dws *DoWhileStatement) Kind() NodeKind       { return KindDoWhileStatement }
func (dws *DoWhileStatement) TokenLiteral() string { return dws.Token.Literal }
func (dws *DoWhileStatement) String() string       { return nodeString(dws) }

// BreakStatement represents `break` with an optional label.
type BreakStatement struct {
	Token lexer.Token
	Label *Identifier
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) Kind() NodeKind       { return KindBreakStatement }
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) String() string       { return nodeString(bs) }

// ContinueStatement represents `continue` with an optional label.
type ContinueStatement struct {
	Token lexer.Token
	Label *Identifier
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) Kind() NodeKind       { return KindContinueStatement }
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) String() string       { return nodeString(cs) }

// ThrowStatement represents throw <Value>;
type ThrowStatement struct {
	Token lexer.Token
	Value Expression
}

func (ts *ThrowStatement) statementNode()       {}
func (ts *ThrowStatement) Kind() NodeKind       { return KindThrowStatement }
func (ts *ThrowStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *ThrowStatement) String() string       { return nodeString(ts) }

// TryStatement represents try/catch/finally. At least one of CatchBody and
// Finally is set; CatchParam may be nil for `catch { ... }`.
type TryStatement struct {
	Token      lexer.Token // The 'try' token
	Block      *BlockStatement
	CatchParam Pattern
	CatchBody  *BlockStatement
	Finally    *BlockStatement
}

func (ts *TryStatement) statementNode()       {}
func (ts *TryStatement) Kind() NodeKind       { return KindTryStatement }
func (ts *TryStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *TryStatement) String() string       { return nodeString(ts) }

// SwitchCase is one `case <Test>:` or `default:` clause.
type SwitchCase struct {
	Token lexer.Token // The 'case' or 'default' token
	Test  Expression  // nil for default
	Body  []Statement
}

// SwitchStatement represents switch (<Discriminant>) { <Cases> }.
type SwitchStatement struct {
	Token        lexer.Token // The 'switch' token
	Discriminant Expression
	Cases        []*SwitchCase
}

func (ss *SwitchStatement) statementNode()       {}
func (ss *SwitchStatement) Kind() NodeKind       { return KindSwitchStatement }
func (ss *SwitchStatement) TokenLiteral() string { return ss.Token.Literal }
func (ss *SwitchStatement) String() string       { return nodeString(ss) }

// EmptyStatement represents a lone ';'.
type EmptyStatement struct {
	Token lexer.Token
}

func (es *EmptyStatement) statementNode()       {}
func (es *EmptyStatement) Kind() NodeKind       { return KindEmptyStatement }
func (es *EmptyStatement) TokenLiteral() string { return es.Token.Literal }
func (es *EmptyStatement) String() string       { return nodeString(es) }

// LabeledStatement represents <Label>: <Body>.
type LabeledStatement struct {
	Token lexer.Token // The label token
	Label *Identifier
	Body  Statement
}

func (ls *LabeledStatement) statementNode()       {}
func (ls *LabeledStatement) Kind() NodeKind       { return KindLabeledStatement }
func (ls *LabeledStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LabeledStatement) String() string       { return nodeString(ls) }

// FunctionDeclaration represents a named function in statement position.
type FunctionDeclaration struct {
	Token    lexer.Token // The 'function' (or 'async') token
	Function *FunctionLiteral
}

func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) Kind() NodeKind       { return KindFunctionDeclaration }
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDeclaration) String() string       { return nodeString(fd) }

// ClassDeclaration represents a class in statement position. The class is
// named except directly under `export default`.
type ClassDeclaration struct {
	Token lexer.Token // The 'class' token
	Class *ClassLiteral
}

func (cd *ClassDeclaration) statementNode()       {}
func (cd *ClassDeclaration) Kind() NodeKind       { return KindClassDeclaration }
func (cd *ClassDeclaration) TokenLiteral() string { return cd.Token.Literal }
func (cd *ClassDeclaration) String() string       { return nodeString(cd) }

// ModuleName is an imported or exported name: an *Identifier, or a
// *StringLiteral for names that are not identifiers.
type ModuleName = Expression

// ImportSpecifier is one `Imported as Local` entry inside import braces.
type ImportSpecifier struct {
	Imported ModuleName
	Local    *Identifier
}

// ImportDeclaration represents every static import form:
//
//	import "m";
//	import Default, * as Namespace from "m";
//	import Default, { a, b as c } from "m";
type ImportDeclaration struct {
	Token      lexer.Token // The 'import' token
	Default    *Identifier
	Namespace  *Identifier
	Specifiers []*ImportSpecifier
	Braces     bool // A (possibly empty) { } list was written
	Source     *StringLiteral
}

func (id *ImportDeclaration) statementNode()       {}
func (id *ImportDeclaration) Kind() NodeKind       { return KindImportDeclaration }
func (id *ImportDeclaration) TokenLiteral() string { return id.Token.Literal }
func (id *ImportDeclaration) String() string       { return nodeString(id) }

// ExportSpecifier is one `Local as Exported` entry inside export braces.
type ExportSpecifier struct {
	Local    ModuleName
	Exported ModuleName
}

// ExportNamedDeclaration is either `export <Declaration>` or
// `export { <Specifiers> } [from <Source>];`.
type ExportNamedDeclaration struct {
	Token       lexer.Token // The 'export' token
	Declaration Statement   // *VariableStatement, *FunctionDeclaration or *ClassDeclaration
	Specifiers  []*ExportSpecifier
	Source      *StringLiteral
}

func (ed *ExportNamedDeclaration) statementNode()       {}
func (ed *ExportNamedDeclaration) Kind() NodeKind       { return KindExportNamedDeclaration }
func (ed *ExportNamedDeclaration) TokenLiteral() string { return ed.Token.Literal }
func (ed *ExportNamedDeclaration) String() string       { return nodeString(ed) }

// ExportDefaultDeclaration represents `export default <Declaration>`, where
// Declaration is a *FunctionDeclaration, a *ClassDeclaration or an Expression.
type ExportDefaultDeclaration struct {
	Token       lexer.Token // The 'export' token
	Declaration Node
}

func (ed *ExportDefaultDeclaration) statementNode()       {}
func (ed *ExportDefaultDeclaration) Kind() NodeKind       { return KindExportDefaultDeclaration }
func (ed *ExportDefaultDeclaration) TokenLiteral() string { return ed.Token.Literal }
func (ed *ExportDefaultDeclaration) String() string       { return nodeString(ed) }

// ExportAllDeclaration represents export * [as Exported] from Source.
type ExportAllDeclaration struct {
	Token    lexer.Token // The 'export' token
	Exported ModuleName  // nil without 'as'
	Source   *StringLiteral
}

func (ed *ExportAllDeclaration) statementNode()       {}
func (ed *ExportAllDeclaration) Kind() NodeKind       { return KindExportAllDeclaration }
func (ed *ExportAllDeclaration) TokenLiteral() string { return ed.Token.Literal }
func (ed *ExportAllDeclaration) String() string       { return nodeString(ed) }

// --- Expression Nodes ---

// Identifier represents an identifier. It is both an Expression and a Pattern.
type Identifier struct {
	Token lexer.Token // The lexer.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) patternNode()         {}
func (i *Identifier) Kind() NodeKind       { return KindIdentifier }
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// NumberLiteral keeps the source spelling of a numeric literal.
type NumberLiteral struct {
	Token lexer.Token
	Raw   string
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) Kind() NodeKind       { return KindNumberLiteral }
func (n *NumberLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NumberLiteral) String() string       { return n.Raw }

// StringLiteral holds the cooked value and, when parsed, the quoted source text.
type StringLiteral struct {
	Token lexer.Token
	Value string
	Raw   string // Source spelling including quotes; empty for synthesized strings
}

func (s *StringLiteral) expressionNode()      {}
func (s *StringLiteral) Kind() NodeKind       { return KindStringLiteral }
func (s *StringLiteral) TokenLiteral() string { return s.Token.Literal }
func (s *StringLiteral) String() string       { return nodeString(s) }

// TemplateLiteral is kept as raw source text, backticks included.
type TemplateLiteral struct {
	Token lexer.Token
	Raw   string
}

func (tl *TemplateLiteral) expressionNode()      {}
func (tl *TemplateLiteral) Kind() NodeKind       { return KindTemplateLiteral }
func (tl *TemplateLiteral) TokenLiteral() string { return tl.Token.Literal }
func (tl *TemplateLiteral) String() string       { return tl.Raw }

// TaggedTemplate represents tag`...`.
type TaggedTemplate struct {
	Token lexer.Token // The template token
	Tag   Expression
	Quasi *TemplateLiteral
}

func (tt *TaggedTemplate) expressionNode()      {}
func (tt *TaggedTemplate) Kind() NodeKind       { return KindTaggedTemplate }
func (tt *TaggedTemplate) TokenLiteral() string { return tt.Token.Literal }
func (tt *TaggedTemplate) String() string       { return nodeString(tt) }

// RegexLiteral represents /Pattern/Flags.
type RegexLiteral struct {
	Token   lexer.Token
	Pattern string
	Flags   string
}

func (rl *RegexLiteral) expressionNode()      {}
func (rl *RegexLiteral) Kind() NodeKind       { return KindRegexLiteral }
func (rl *RegexLiteral) TokenLiteral() string { return rl.Token.Literal }
func (rl *RegexLiteral) String() string       { return "/" + rl.Pattern + "/" + rl.Flags }

// BooleanLiteral represents true or false.
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()      {}
func (b *BooleanLiteral) Kind() NodeKind       { return KindBooleanLiteral }
func (b *BooleanLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BooleanLiteral) String() string       { return nodeString(b) }

// NullLiteral represents null.
type NullLiteral struct {
	Token lexer.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) Kind() NodeKind       { return KindNullLiteral }
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) String() string       { return "null" }

// ThisExpression represents the `this` keyword.
type ThisExpression struct {
	Token lexer.Token
}

func (te *ThisExpression) expressionNode()      {}
func (te *ThisExpression) Kind() NodeKind       { return KindThisExpression }
func (te *ThisExpression) TokenLiteral() string { return te.Token.Literal }
func (te *ThisExpression) String() string       { return "this" }

// ArrayLiteral represents [a, , ...b]. A nil element is a hole.
type ArrayLiteral struct {
	Token    lexer.Token // The '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) Kind() NodeKind       { return KindArrayLiteral }
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) String() string       { return nodeString(al) }

// PropertyKind distinguishes the entries of an object literal.
type PropertyKind int

const (
	PropertyInit   PropertyKind = iota // key: value, or shorthand key
	PropertyMethod                     // key() { }
	PropertyGet                        // get key() { }
	PropertySet                        // set key(v) { }
	PropertySpread                     // ...value
)

// ObjectProperty is one entry of an object literal. For methods and
// accessors Value is a *FunctionLiteral; for spreads Key is nil.
type ObjectProperty struct {
	PropKind  PropertyKind
	Key       Expression
	Value     Expression
	Computed  bool
	Shorthand bool
}

// ObjectLiteral represents { key: value, ... }.
type ObjectLiteral struct {
	Token      lexer.Token // The '{' token
	Properties []*ObjectProperty
}

func (ol *ObjectLiteral) expressionNode()      {}
func (ol *ObjectLiteral) Kind() NodeKind       { return KindObjectLiteral }
func (ol *ObjectLiteral) TokenLiteral() string { return ol.Token.Literal }
func (ol *ObjectLiteral) String() string       { return nodeString(ol) }

// FunctionLiteral represents a `function` expression (named or anonymous).
type FunctionLiteral struct {
	Token       lexer.Token // The 'function' token
	Name        *Identifier // nil for anonymous functions
	Parameters  []Pattern
	Body        *BlockStatement
	IsAsync     bool
	IsGenerator bool
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) Kind() NodeKind       { return KindFunctionLiteral }
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) String() string       { return nodeString(fl) }

// ArrowFunctionLiteral represents (params) => body. Body is either a
// *BlockStatement or an Expression (concise body).
type ArrowFunctionLiteral struct {
	Token      lexer.Token // The '=>' token
	Parameters []Pattern
	Body       Node
	IsAsync    bool
}

func (afl *ArrowFunctionLiteral) expressionNode()      {}
func (afl *ArrowFunctionLiteral) Kind() NodeKind       { return KindArrowFunctionLiteral }
func (afl *ArrowFunctionLiteral) TokenLiteral() string { return afl.Token.Literal }
func (afl *ArrowFunctionLiteral) String() string       { return nodeString(afl) }

// PrefixExpression represents unary operators: ! - + ~ typeof void delete await.
type PrefixExpression struct {
	Token    lexer.Token // The prefix token, e.g. !
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) Kind() NodeKind       { return KindPrefixExpression }
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string       { return nodeString(pe) }

// UpdateExpression represents ++x, x++, --x, x--.
type UpdateExpression struct {
	Token    lexer.Token // The ++ or -- token
	Operator string
	Prefix   bool
	Argument Expression
}

func (ue *UpdateExpression) expressionNode()      {}
func (ue *UpdateExpression) Kind() NodeKind       { return KindUpdateExpression }
func (ue *UpdateExpression) TokenLiteral() string { return ue.Token.Literal }
func (ue *UpdateExpression) String() string       { return nodeString(ue) }

// InfixExpression represents binary and logical operators.
type InfixExpression struct {
	Token    lexer.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) Kind() NodeKind       { return KindInfixExpression }
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string       { return nodeString(ie) }

// AssignmentExpression represents <Left> <Operator> <Value>, e.g. x += 1.
// Left may be an array or object literal for destructuring assignment.
type AssignmentExpression struct {
	Token    lexer.Token // The assignment operator token
	Operator string
	Left     Expression
	Value    Expression
}

func (ae *AssignmentExpression) expressionNode()      {}
func (ae *AssignmentExpression) Kind() NodeKind       { return KindAssignmentExpression }
func (ae *AssignmentExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignmentExpression) String() string       { return nodeString(ae) }

// TernaryExpression represents <Condition> ? <Consequence> : <Alternative>.
type TernaryExpression struct {
	Token       lexer.Token // The '?' token
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (te *TernaryExpression) expressionNode()      {}
func (te *TernaryExpression) Kind() NodeKind       { return KindTernaryExpression }
func (te *TernaryExpression) TokenLiteral() string { return te.Token.Literal }
func (te *TernaryExpression) String() string       { return nodeString(te) }

// SequenceExpression represents the comma operator: a, b, c.
type SequenceExpression struct {
	Token       lexer.Token // The first ',' token
	Expressions []Expression
}

func (se *SequenceExpression) expressionNode()      {}
func (se *SequenceExpression) Kind() NodeKind       { return KindSequenceExpression }
func (se *SequenceExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SequenceExpression) String() string       { return nodeString(se) }

// CallExpression represents <Function>(<Arguments>), or <Function>?.(...) when Optional.
type CallExpression struct {
	Token     lexer.Token // The '(' token
	Function  Expression  // Identifier, MemberExpression, FunctionLiteral, ...
	Arguments []Expression
	Optional  bool
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) Kind() NodeKind       { return KindCallExpression }
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string       { return nodeString(ce) }

// NewExpression represents new <Constructor>(<Arguments>).
type NewExpression struct {
	Token       lexer.Token // The 'new' token
	Constructor Expression
	Arguments   []Expression
}

func (ne *NewExpression) expressionNode()      {}
func (ne *NewExpression) Kind() NodeKind       { return KindNewExpression }
func (ne *NewExpression) TokenLiteral() string { return ne.Token.Literal }
func (ne *NewExpression) String() string       { return nodeString(ne) }

// MemberExpression represents <Object>.<Property> or <Object>?.<Property>.
type MemberExpression struct {
	Token    lexer.Token // The '.' or '?.' token
	Object   Expression
	Property *Identifier
	Optional bool
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) Kind() NodeKind       { return KindMemberExpression }
func (me *MemberExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MemberExpression) String() string       { return nodeString(me) }

// IndexExpression represents computed access <Left>[<Index>].
type IndexExpression struct {
	Token    lexer.Token // The '[' token
	Left     Expression
	Index    Expression
	Optional bool
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) Kind() NodeKind       { return KindIndexExpression }
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) String() string       { return nodeString(ie) }

// SpreadElement represents ...<Argument> in calls and array literals.
type SpreadElement struct {
	Token    lexer.Token // The '...' token
	Argument Expression
}

func (se *SpreadElement) expressionNode()      {}
func (se *SpreadElement) Kind() NodeKind       { return KindSpreadElement }
func (se *SpreadElement) TokenLiteral() string { return se.Token.Literal }
func (se *SpreadElement) String() string       { return nodeString(se) }

// MemberKind distinguishes the entries of a class body.
type MemberKind int

const (
	MemberMethod      MemberKind = iota // key() { }
	MemberGet                           // get key() { }
	MemberSet                           // set key(v) { }
	MemberField                         // key = value;
	MemberStaticBlock                   // static { }
)

// ClassMember is one entry of a class body. Methods and accessors carry a
// *FunctionLiteral in Value, fields their initializer (or nil), and static
// blocks their Body. Private names are Identifiers spelled with '#'.
type ClassMember struct {
	Token      lexer.Token // The first token of the member
	MemberKind MemberKind
	Static     bool
	Key        Expression
	Computed   bool
	Value      Expression
	Body       *BlockStatement
}

// ClassLiteral represents class [Name] [extends SuperClass] { Members }.
type ClassLiteral struct {
	Token      lexer.Token // The 'class' token
	Name       *Identifier // nil for anonymous classes
	SuperClass Expression
	Members    []*ClassMember
}

func (cl *ClassLiteral) expressionNode()      {}
func (cl *ClassLiteral) Kind() NodeKind       { return KindClassLiteral }
func (cl *ClassLiteral) TokenLiteral() string { return cl.Token.Literal }
func (cl *ClassLiteral) String() string       { return nodeString(cl) }

// SuperExpression is the `super` in super(...), super.x and super[x].
type SuperExpression struct {
	Token lexer.Token
}

func (se *SuperExpression) expressionNode()      {}
func (se *SuperExpression) Kind() NodeKind       { return KindSuperExpression }
func (se *SuperExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SuperExpression) String() string       { return "super" }

// MetaProperty represents new.target and import.meta.
type MetaProperty struct {
	Token    lexer.Token // The 'new' or 'import' token
	Meta     string
	Property string
}

func (mp *MetaProperty) expressionNode()      {}
func (mp *MetaProperty) Kind() NodeKind       { return KindMetaProperty }
func (mp *MetaProperty) TokenLiteral() string { return mp.Token.Literal }
func (mp *MetaProperty) String() string       { return mp.Meta + "." + mp.Property }

// ImportCall represents a dynamic import(<Source>).
type ImportCall struct {
	Token  lexer.Token // The 'import' token
	Source Expression
}

func (ic *ImportCall) expressionNode()      {}
func (ic *ImportCall) Kind() NodeKind       { return KindImportCall }
func (ic *ImportCall) TokenLiteral() string { return ic.Token.Literal }
func (ic *ImportCall) String() string       { return nodeString(ic) }

// --- Binding Pattern Nodes ---

// ArrayPattern represents [a, , b = 1, ...rest] in binding position.
// A nil element is a hole; a *RestElement may only be last.
type ArrayPattern struct {
	Token    lexer.Token // The '[' token
	Elements []Pattern
}

func (ap *ArrayPattern) patternNode()         {}
func (ap *ArrayPattern) Kind() NodeKind       { return KindArrayPattern }
func (ap *ArrayPattern) TokenLiteral() string { return ap.Token.Literal }
func (ap *ArrayPattern) String() string       { return nodeString(ap) }

// PatternProperty is one `key: target` entry of an object pattern.
type PatternProperty struct {
	Key       Expression // Identifier, StringLiteral, NumberLiteral or computed expression
	Value     Pattern
	Computed  bool
	Shorthand bool
}

// ObjectPattern represents {a, b: c, [k]: d = 1, ...rest} in binding position.
type ObjectPattern struct {
	Token      lexer.Token // The '{' token
	Properties []*PatternProperty
	Rest       *RestElement
}

func (op *ObjectPattern) patternNode()         {}
func (op *ObjectPattern) Kind() NodeKind       { return KindObjectPattern }
func (op *ObjectPattern) TokenLiteral() string { return op.Token.Literal }
func (op *ObjectPattern) String() string       { return nodeString(op) }

// AssignmentPattern represents <Target> = <Default> in binding position.
type AssignmentPattern struct {
	Token   lexer.Token // The '=' token
	Target  Pattern
	Default Expression
}

func (ap *AssignmentPattern) patternNode()         {}
func (ap *AssignmentPattern) Kind() NodeKind       { return KindAssignmentPattern }
func (ap *AssignmentPattern) TokenLiteral() string { return ap.Token.Literal }
func (ap *AssignmentPattern) String() string       { return nodeString(ap) }

// RestElement represents ...<Target> in binding position.
type RestElement struct {
	Token  lexer.Token // The '...' token
	Target Pattern
}

func (re *RestElement) patternNode()         {}
func (re *RestElement) Kind() NodeKind       { return KindRestElement }
func (re *RestElement) TokenLiteral() string { return re.Token.Literal }
func (re *RestElement) String() string       { return nodeString(re) }
