package parser

import (
	"bytes"
	"fmt"
	"strings"

	"jscodemod/pkg/lexer"
)

// primary is the binding strength of literals, identifiers and other atoms.
const primary = MEMBER + 1

// JSEmitter is responsible for transforming AST nodes into JavaScript code
type JSEmitter struct {
	indentLevel int
	prefix      string // written before every indented line
	buffer      bytes.Buffer
}

// NewJSEmitter creates a new JavaScript emitter
func NewJSEmitter() *JSEmitter {
	return &JSEmitter{
		indentLevel: 0,
	}
}

// Emit converts a program AST to JavaScript code
func (e *JSEmitter) Emit(program *Program) string {
	e.buffer.Reset()
	e.indentLevel = 0

	for _, stmt := range program.Statements {
		e.emitStatement(stmt)
	}

	return e.buffer.String()
}

// EmitStatements prints stmts for insertion into existing source at a column
// whose line starts with prefix. The first line carries no prefix and the
// result has no trailing newline, so it can replace a statement's text.
func (e *JSEmitter) EmitStatements(stmts []Statement, prefix string) string {
	e.buffer.Reset()
	e.indentLevel = 0
	e.prefix = prefix
	defer func() { e.prefix = "" }()

	for _, stmt := range stmts {
		e.emitStatement(stmt)
	}
	out := strings.TrimSuffix(e.buffer.String(), "\n")
	return strings.TrimPrefix(out, prefix)
}

// EmitNode prints a single node. Statements lose their trailing newline.
func (e *JSEmitter) EmitNode(node Node) string {
	e.buffer.Reset()
	e.indentLevel = 0

	switch n := node.(type) {
	case *Program:
		return e.Emit(n)
	case Statement:
		e.emitStatement(n)
		return strings.TrimSuffix(e.buffer.String(), "\n")
	case Expression:
		e.emitExpression(n, LOWEST)
	case Pattern:
		e.emitPattern(n)
	default:
		panic(fmt.Sprintf("jsemitter: unexpected node %T", node))
	}
	return e.buffer.String()
}

func nodeString(n Node) string {
	return NewJSEmitter().EmitNode(n)
}

// Helper methods

func (e *JSEmitter) indent() {
	e.indentLevel++
}

func (e *JSEmitter) dedent() {
	if e.indentLevel > 0 {
		e.indentLevel--
	}
}

func (e *JSEmitter) writeIndent() {
	e.buffer.WriteString(e.prefix)
	for i := 0; i < e.indentLevel; i++ {
		e.buffer.WriteString("  ")
	}
}

func (e *JSEmitter) write(format string, args ...interface{}) {
	fmt.Fprintf(&e.buffer, format, args...)
}

func (e *JSEmitter) writeString(s string) {
	e.buffer.WriteString(s)
}

// --- Statements ---

// emitStatement writes one indented statement followed by a newline.
func (e *JSEmitter) emitStatement(stmt Statement) {
	e.writeIndent()
	e.emitStatementBody(stmt)
}

// emitStatementBody writes a statement from the current column; the caller owns indentation.
func (e *JSEmitter) emitStatementBody(stmt Statement) {
	switch s := stmt.(type) {
	case *VariableStatement:
		e.emitDeclaration(s)
		e.writeString(";\n")
	case *ExpressionStatement:
		e.emitExpressionStatement(s)
	case *BlockStatement:
		e.emitBlock(s)
		e.writeString("\n")
	case *ReturnStatement:
		e.writeString("return")
		if s.ReturnValue != nil {
			e.writeString(" ")
			e.emitExpression(s.ReturnValue, LOWEST)
		}
		e.writeString(";\n")
	case *IfStatement:
		e.emitIfStatement(s)
	case *ForStatement:
		e.emitForStatement(s)
	case *ForInStatement:
		e.emitForInOf(s.Left, "in", s.Right, LOWEST, s.Body)
	case *ForOfStatement:
		e.emitForInOf(s.Left, "of", s.Right, ASSIGNMENT, s.Body)
	case *WhileStatement:
		e.writeString("while (")
		e.emitExpression(s.Condition, LOWEST)
		e.writeString(")")
		e.finishClause(e.emitClause(s.Body))
	case *DoWhileStatement:
		e.writeString("do")
		if e.emitClause(s.Body) {
			e.writeIndent()
		} else {
			e.writeString(" ")
		}
		e.writeString("while (")
		e.emitExpression(s.Condition, LOWEST)
		e.writeString(");\n")
	case *BreakStatement:
		e.emitJump("break", s.Label)
	case *ContinueStatement:
		e.emitJump("continue", s.Label)
	case *ThrowStatement:
		e.writeString("throw ")
		e.emitExpression(s.Value, LOWEST)
		e.writeString(";\n")
	case *TryStatement:
		e.emitTryStatement(s)
	case *SwitchStatement:
		e.emitSwitchStatement(s)
	case *EmptyStatement:
		e.writeString(";\n")
	case *LabeledStatement:
		e.write("%s: ", s.Label.Value)
		e.emitStatementBody(s.Body)
	case *FunctionDeclaration:
		e.emitFunction(s.Function)
		e.writeString("\n")
	case *ClassDeclaration:
		e.emitClass(s.Class)
		e.writeString("\n")
	case *ImportDeclaration:
		e.emitImportDeclaration(s)
	case *ExportNamedDeclaration:
		e.writeString("export ")
		if s.Declaration != nil {
			e.emitStatementBody(s.Declaration)
			return
		}
		e.emitExportSpecifiers(s.Specifiers)
		if s.Source != nil {
			e.writeString(" from ")
			e.emitExpressionBody(s.Source)
		}
		e.writeString(";\n")
	case *ExportDefaultDeclaration:
		e.emitExportDefault(s)
	case *ExportAllDeclaration:
		e.writeString("export *")
		if s.Exported != nil {
			e.writeString(" as ")
			e.emitExpressionBody(s.Exported)
		}
		e.writeString(" from ")
		e.emitExpressionBody(s.Source)
		e.writeString(";\n")
	default:
		panic(fmt.Sprintf("jsemitter: unexpected statement %T", stmt))
	}
}

// emitDeclaration writes `kind a = 1, b` without the terminating ';'.
func (e *JSEmitter) emitDeclaration(s *VariableStatement) {
	e.writeString(string(s.DeclKind))
	for i, d := range s.Declarations {
		if i > 0 {
			e.writeString(",")
		}
		e.writeString(" ")
		e.emitPattern(d.Target)
		if d.Value != nil {
			e.writeString(" = ")
			e.emitExpression(d.Value, ASSIGNMENT)
		}
	}
}

func (e *JSEmitter) emitExpressionStatement(s *ExpressionStatement) {
	// '{', 'function' or 'class' at statement start would be read as a block or declaration
	switch leftmost(s.Expression).(type) {
	case *ObjectLiteral, *FunctionLiteral, *ClassLiteral:
		e.writeString("(")
		e.emitExpression(s.Expression, LOWEST)
		e.writeString(");\n")
		return
	}
	e.emitExpression(s.Expression, LOWEST)
	e.writeString(";\n")
}

// emitBlock writes { ... } leaving the cursor right after '}'.
func (e *JSEmitter) emitBlock(b *BlockStatement) {
	if len(b.Statements) == 0 {
		e.writeString("{}")
		return
	}
	e.writeString("{\n")
	e.indent()
	for _, stmt := range b.Statements {
		e.emitStatement(stmt)
	}
	e.dedent()
	e.writeIndent()
	e.writeString("}")
}

// emitClause writes the body of a compound statement after its header.
// Blocks stay on the header line; it reports whether a newline was written.
func (e *JSEmitter) emitClause(body Statement) bool {
	if b, ok := body.(*BlockStatement); ok {
		e.writeString(" ")
		e.emitBlock(b)
		return false
	}
	e.writeString("\n")
	e.indent()
	e.emitStatement(body)
	e.dedent()
	return true
}

func (e *JSEmitter) finishClause(closed bool) {
	if !closed {
		e.writeString("\n")
	}
}

func (e *JSEmitter) emitIfStatement(s *IfStatement) {
	e.writeString("if (")
	e.emitExpression(s.Condition, LOWEST)
	e.writeString(")")

	consequence := s.Consequence
	if s.Alternative != nil && danglingIf(consequence) {
		// An else-less inner if would capture our else
		consequence = &BlockStatement{Token: lexer.Token{Type: lexer.LBRACE, Literal: "{"}, Statements: []Statement{consequence}}
	}
	closed := e.emitClause(consequence)
	if s.Alternative == nil {
		e.finishClause(closed)
		return
	}

	if closed {
		e.writeIndent()
		e.writeString("else")
	} else {
		e.writeString(" else")
	}
	if alt, ok := s.Alternative.(*IfStatement); ok {
		e.writeString(" ")
		e.emitIfStatement(alt)
		return
	}
	e.finishClause(e.emitClause(s.Alternative))
}

// danglingIf reports whether stmt ends in an if without else.
func danglingIf(stmt Statement) bool {
	switch s := stmt.(type) {
	case *IfStatement:
		return s.Alternative == nil || danglingIf(s.Alternative)
	case *ForStatement:
		return danglingIf(s.Body)
	case *ForInStatement:
		return danglingIf(s.Body)
	case *ForOfStatement:
		return danglingIf(s.Body)
	case *WhileStatement:
		return danglingIf(s.Body)
	case *LabeledStatement:
		return danglingIf(s.Body)
	}
	return false
}

func (e *JSEmitter) emitForStatement(s *ForStatement) {
	e.writeString("for (")
	switch init := s.Initializer.(type) {
	case nil:
	case *VariableStatement:
		e.emitDeclaration(init)
	case Expression:
		e.emitExpression(init, LOWEST)
	default:
		panic(fmt.Sprintf("jsemitter: unexpected for initializer %T", init))
	}
	e.writeString(";")
	if s.Condition != nil {
		e.writeString(" ")
		e.emitExpression(s.Condition, LOWEST)
	}
	e.writeString(";")
	if s.Update != nil {
		e.writeString(" ")
		e.emitExpression(s.Update, LOWEST)
	}
	e.writeString(")")
	e.finishClause(e.emitClause(s.Body))
}

func (e *JSEmitter) emitForInOf(left Node, keyword string, right Expression, rightPrec int, body Statement) {
	e.writeString("for (")
	switch l := left.(type) {
	case *VariableStatement:
		e.emitDeclaration(l)
	case Expression:
		e.emitExpression(l, CALL)
	default:
		panic(fmt.Sprintf("jsemitter: unexpected for-%s left side %T", keyword, left))
	}
	e.write(" %s ", keyword)
	e.emitExpression(right, rightPrec)
	e.writeString(")")
	e.finishClause(e.emitClause(body))
}

func (e *JSEmitter) emitJump(keyword string, label *Identifier) {
	e.writeString(keyword)
	if label != nil {
		e.writeString(" " + label.Value)
	}
	e.writeString(";\n")
}

func (e *JSEmitter) emitTryStatement(s *TryStatement) {
	e.writeString("try ")
	e.emitBlock(s.Block)
	if s.CatchBody != nil {
		e.writeString(" catch ")
		if s.CatchParam != nil {
			e.writeString("(")
			e.emitPattern(s.CatchParam)
			e.writeString(") ")
		}
		e.emitBlock(s.CatchBody)
	}
	if s.Finally != nil {
		e.writeString(" finally ")
		e.emitBlock(s.Finally)
	}
	e.writeString("\n")
}

func (e *JSEmitter) emitSwitchStatement(s *SwitchStatement) {
	e.writeString("switch (")
	e.emitExpression(s.Discriminant, LOWEST)
	e.writeString(") {\n")
	e.indent()
	for _, c := range s.Cases {
		e.writeIndent()
		if c.Test != nil {
			e.writeString("case ")
			e.emitExpression(c.Test, LOWEST)
			e.writeString(":\n")
		} else {
			e.writeString("default:\n")
		}
		e.indent()
		for _, stmt := range c.Body {
			e.emitStatement(stmt)
		}
		e.dedent()
	}
	e.dedent()
	e.writeIndent()
	e.writeString("}\n")
}

// --- Modules ---

func (e *JSEmitter) emitImportDeclaration(s *ImportDeclaration) {
	e.writeString("import ")
	if s.Default == nil && s.Namespace == nil && !s.Braces && len(s.Specifiers) == 0 {
		e.emitExpressionBody(s.Source)
		e.writeString(";\n")
		return
	}

	if s.Default != nil {
		e.writeString(s.Default.Value)
	}
	if s.Namespace != nil {
		if s.Default != nil {
			e.writeString(", ")
		}
		e.writeString("* as " + s.Namespace.Value)
	}
	if s.Braces || len(s.Specifiers) > 0 {
		if s.Default != nil {
			e.writeString(", ")
		}
		if len(s.Specifiers) == 0 {
			e.writeString("{}")
		} else {
			e.writeString("{ ")
			for i, spec := range s.Specifiers {
				if i > 0 {
					e.writeString(", ")
				}
				e.emitModuleBinding(spec.Imported, spec.Local)
			}
			e.writeString(" }")
		}
	}
	e.writeString(" from ")
	e.emitExpressionBody(s.Source)
	e.writeString(";\n")
}

func (e *JSEmitter) emitExportSpecifiers(specs []*ExportSpecifier) {
	if len(specs) == 0 {
		e.writeString("{}")
		return
	}
	e.writeString("{ ")
	for i, spec := range specs {
		if i > 0 {
			e.writeString(", ")
		}
		e.emitModuleBinding(spec.Local, spec.Exported)
	}
	e.writeString(" }")
}

// emitModuleBinding writes `from as to`, or just the name when both are the
// same identifier.
func (e *JSEmitter) emitModuleBinding(from, to ModuleName) {
	e.emitExpressionBody(from)
	fromIdent, ok1 := from.(*Identifier)
	toIdent, ok2 := to.(*Identifier)
	if ok1 && ok2 && fromIdent.Value == toIdent.Value {
		return
	}
	e.writeString(" as ")
	e.emitExpressionBody(to)
}

func (e *JSEmitter) emitExportDefault(s *ExportDefaultDeclaration) {
	e.writeString("export default ")
	switch d := s.Declaration.(type) {
	case *FunctionDeclaration:
		e.emitFunction(d.Function)
		e.writeString("\n")
	case *ClassDeclaration:
		e.emitClass(d.Class)
		e.writeString("\n")
	case Expression:
		// A leading function or class would be read as a declaration
		switch leftmost(d).(type) {
		case *FunctionLiteral, *ClassLiteral:
			e.writeString("(")
			e.emitExpression(d, LOWEST)
			e.writeString(");\n")
			return
		}
		e.emitExpression(d, ASSIGNMENT)
		e.writeString(";\n")
	default:
		panic(fmt.Sprintf("jsemitter: unexpected default export %T", s.Declaration))
	}
}

// --- Classes ---

func (e *JSEmitter) emitClass(c *ClassLiteral) {
	e.writeString("class")
	if c.Name != nil {
		e.writeString(" " + c.Name.Value)
	}
	if c.SuperClass != nil {
		e.writeString(" extends ")
		e.emitExpression(c.SuperClass, CALL)
	}
	if len(c.Members) == 0 {
		e.writeString(" {}")
		return
	}
	e.writeString(" {\n")
	e.indent()
	for _, m := range c.Members {
		e.writeIndent()
		e.emitClassMember(m)
		e.writeString("\n")
	}
	e.dedent()
	e.writeIndent()
	e.writeString("}")
}

func (e *JSEmitter) emitClassMember(m *ClassMember) {
	if m.Static {
		e.writeString("static ")
	}
	switch m.MemberKind {
	case MemberStaticBlock:
		e.emitBlock(m.Body)
	case MemberField:
		e.emitPropertyKey(m.Key, m.Computed)
		if m.Value != nil {
			e.writeString(" = ")
			e.emitExpression(m.Value, ASSIGNMENT)
		}
		e.writeString(";")
	case MemberMethod:
		e.emitMethod("", m.Key, m.Computed, m.Value)
	case MemberGet:
		e.emitMethod("get ", m.Key, m.Computed, m.Value)
	case MemberSet:
		e.emitMethod("set ", m.Key, m.Computed, m.Value)
	default:
		panic(fmt.Sprintf("jsemitter: unexpected class member kind %d", m.MemberKind))
	}
}

// --- Expressions ---

// emitExpression writes expr, parenthesizing it when it binds looser than minPrec.
func (e *JSEmitter) emitExpression(expr Expression, minPrec int) {
	if precedenceOf(expr) < minPrec {
		e.writeString("(")
		e.emitExpressionBody(expr)
		e.writeString(")")
		return
	}
	e.emitExpressionBody(expr)
}

func (e *JSEmitter) emitExpressionBody(expr Expression) {
	switch x := expr.(type) {
	case *Identifier:
		e.writeString(x.Value)
	case *NumberLiteral:
		e.writeString(x.Raw)
	case *StringLiteral:
		if x.Raw != "" {
			e.writeString(x.Raw)
		} else {
			e.writeString(quoteString(x.Value))
		}
	case *TemplateLiteral:
		e.writeString(x.Raw)
	case *TaggedTemplate:
		e.emitExpression(x.Tag, CALL)
		e.writeString(x.Quasi.Raw)
	case *RegexLiteral:
		e.write("/%s/%s", x.Pattern, x.Flags)
	case *BooleanLiteral:
		e.write("%t", x.Value)
	case *NullLiteral:
		e.writeString("null")
	case *ThisExpression:
		e.writeString("this")
	case *ArrayLiteral:
		e.emitArrayLiteral(x)
	case *ObjectLiteral:
		e.emitObjectLiteral(x)
	case *FunctionLiteral:
		e.emitFunction(x)
	case *ArrowFunctionLiteral:
		e.emitArrowFunction(x)
	case *PrefixExpression:
		e.emitPrefixExpression(x)
	case *UpdateExpression:
		if x.Prefix {
			e.writeString(x.Operator)
			e.emitExpression(x.Argument, CALL)
		} else {
			e.emitExpression(x.Argument, CALL)
			e.writeString(x.Operator)
		}
	case *InfixExpression:
		e.emitInfixExpression(x)
	case *AssignmentExpression:
		e.emitExpression(x.Left, CALL)
		e.write(" %s ", x.Operator)
		e.emitExpression(x.Value, ASSIGNMENT)
	case *TernaryExpression:
		e.emitExpression(x.Condition, TERNARY+1)
		e.writeString(" ? ")
		e.emitExpression(x.Consequence, ASSIGNMENT)
		e.writeString(" : ")
		e.emitExpression(x.Alternative, ASSIGNMENT)
	case *SequenceExpression:
		for i, el := range x.Expressions {
			if i > 0 {
				e.writeString(", ")
			}
			e.emitExpression(el, ASSIGNMENT)
		}
	case *CallExpression:
		e.emitExpression(x.Function, CALL)
		if x.Optional {
			e.writeString("?.")
		}
		e.emitArguments(x.Arguments)
	case *NewExpression:
		e.writeString("new ")
		if precedenceOf(x.Constructor) < CALL || chainHasCall(x.Constructor) {
			e.writeString("(")
			e.emitExpressionBody(x.Constructor)
			e.writeString(")")
		} else {
			e.emitExpressionBody(x.Constructor)
		}
		e.emitArguments(x.Arguments)
	case *MemberExpression:
		e.emitMemberObject(x.Object)
		if x.Optional {
			e.writeString("?.")
		} else {
			e.writeString(".")
		}
		e.writeString(x.Property.Value)
	case *IndexExpression:
		e.emitExpression(x.Left, CALL)
		if x.Optional {
			e.writeString("?.")
		}
		e.writeString("[")
		e.emitExpression(x.Index, LOWEST)
		e.writeString("]")
	case *SpreadElement:
		e.writeString("...")
		e.emitExpression(x.Argument, ASSIGNMENT)
	case *ClassLiteral:
		e.emitClass(x)
	case *SuperExpression:
		e.writeString("super")
	case *MetaProperty:
		e.writeString(x.Meta + "." + x.Property)
	case *ImportCall:
		e.writeString("import(")
		e.emitExpression(x.Source, ASSIGNMENT)
		e.writeString(")")
	default:
		panic(fmt.Sprintf("jsemitter: unexpected expression %T", expr))
	}
}

func (e *JSEmitter) emitArguments(args []Expression) {
	e.writeString("(")
	for i, arg := range args {
		if i > 0 {
			e.writeString(", ")
		}
		e.emitExpression(arg, ASSIGNMENT)
	}
	e.writeString(")")
}

// emitMemberObject guards integer literals, where `1.x` would lex as a number.
func (e *JSEmitter) emitMemberObject(obj Expression) {
	if n, ok := obj.(*NumberLiteral); ok && !strings.ContainsAny(n.Raw, ".eExXoObBn") {
		e.write("(%s)", n.Raw)
		return
	}
	e.emitExpression(obj, CALL)
}

func (e *JSEmitter) emitPrefixExpression(x *PrefixExpression) {
	switch x.Operator {
	case "yield", "yield*":
		e.writeString(x.Operator)
		if x.Right != nil {
			e.writeString(" ")
			e.emitExpression(x.Right, ASSIGNMENT)
		}
		return
	case "typeof", "void", "delete", "await":
		e.writeString(x.Operator + " ")
	default:
		e.writeString(x.Operator)
		// Keep "- -x" and "+ ++x" from fusing into one token
		if inner := leadingOperator(x.Right); inner != "" && inner[0] == x.Operator[0] {
			e.writeString(" ")
		}
	}
	e.emitExpression(x.Right, PREFIX)
}

func leadingOperator(expr Expression) string {
	switch x := expr.(type) {
	case *PrefixExpression:
		return x.Operator
	case *UpdateExpression:
		if x.Prefix {
			return x.Operator
		}
	}
	return ""
}

func (e *JSEmitter) emitInfixExpression(x *InfixExpression) {
	prec := binaryPrecedence(x.Operator)
	leftMin, rightMin := prec, prec+1
	if x.Operator == "**" {
		// Right-associative, and a unary operand on the left needs parentheses
		leftMin, rightMin = POSTFIX, prec
	}

	e.emitOperand(x.Left, leftMin, x.Operator)
	e.write(" %s ", x.Operator)
	e.emitOperand(x.Right, rightMin, x.Operator)
}

// emitOperand additionally parenthesizes ?? mixed with || or &&, which JavaScript rejects bare.
func (e *JSEmitter) emitOperand(operand Expression, minPrec int, op string) {
	if inner, ok := operand.(*InfixExpression); ok && mixesCoalesce(op, inner.Operator) {
		e.writeString("(")
		e.emitExpressionBody(operand)
		e.writeString(")")
		return
	}
	e.emitExpression(operand, minPrec)
}

func mixesCoalesce(outer, inner string) bool {
	logical := func(op string) bool { return op == "||" || op == "&&" }
	return outer == "??" && logical(inner) || logical(outer) && inner == "??"
}

func (e *JSEmitter) emitArrayLiteral(arr *ArrayLiteral) {
	e.writeString("[")
	for i, el := range arr.Elements {
		if i > 0 {
			e.writeString(", ")
		}
		if el != nil {
			e.emitExpression(el, ASSIGNMENT)
		}
	}
	if n := len(arr.Elements); n > 0 && arr.Elements[n-1] == nil {
		e.writeString(",") // A trailing hole needs its own comma
	}
	e.writeString("]")
}

func (e *JSEmitter) emitObjectLiteral(obj *ObjectLiteral) {
	if len(obj.Properties) == 0 {
		e.writeString("{}")
		return
	}
	e.writeString("{ ")
	for i, prop := range obj.Properties {
		if i > 0 {
			e.writeString(", ")
		}
		e.emitObjectProperty(prop)
	}
	e.writeString(" }")
}

func (e *JSEmitter) emitObjectProperty(prop *ObjectProperty) {
	switch prop.PropKind {
	case PropertySpread:
		e.writeString("...")
		e.emitExpression(prop.Value, ASSIGNMENT)
	case PropertyInit:
		if prop.Shorthand {
			e.emitPropertyKey(prop.Key, false)
			return
		}
		e.emitPropertyKey(prop.Key, prop.Computed)
		e.writeString(": ")
		e.emitExpression(prop.Value, ASSIGNMENT)
	case PropertyMethod:
		e.emitMethod("", prop.Key, prop.Computed, prop.Value)
	case PropertyGet:
		e.emitMethod("get ", prop.Key, prop.Computed, prop.Value)
	case PropertySet:
		e.emitMethod("set ", prop.Key, prop.Computed, prop.Value)
	default:
		panic(fmt.Sprintf("jsemitter: unexpected property kind %d", prop.PropKind))
	}
}

// emitMethod writes a method of an object literal or class body. accessor
// is "get ", "set " or empty.
func (e *JSEmitter) emitMethod(accessor string, key Expression, computed bool, value Expression) {
	fn, ok := value.(*FunctionLiteral)
	if !ok {
		panic(fmt.Sprintf("jsemitter: method value must be a function, got %T", value))
	}
	switch {
	case accessor != "":
		e.writeString(accessor)
	case fn.IsAsync:
		e.writeString("async ")
	}
	if fn.IsGenerator {
		e.writeString("*")
	}
	e.emitPropertyKey(key, computed)
	e.emitParameters(fn.Parameters)
	e.writeString(" ")
	e.emitBlock(fn.Body)
}

func (e *JSEmitter) emitPropertyKey(key Expression, computed bool) {
	if computed {
		e.writeString("[")
		e.emitExpression(key, ASSIGNMENT)
		e.writeString("]")
		return
	}
	e.emitExpressionBody(key)
}

func (e *JSEmitter) emitFunction(fn *FunctionLiteral) {
	if fn.IsAsync {
		e.writeString("async ")
	}
	e.writeString("function")
	if fn.IsGenerator {
		e.writeString("*")
	}
	if fn.Name != nil {
		e.writeString(" " + fn.Name.Value)
	}
	e.emitParameters(fn.Parameters)
	e.writeString(" ")
	e.emitBlock(fn.Body)
}

func (e *JSEmitter) emitArrowFunction(fn *ArrowFunctionLiteral) {
	if fn.IsAsync {
		e.writeString("async ")
	}
	e.emitParameters(fn.Parameters)
	e.writeString(" => ")

	switch body := fn.Body.(type) {
	case *BlockStatement:
		e.emitBlock(body)
	case Expression:
		if _, ok := leftmost(body).(*ObjectLiteral); ok {
			e.writeString("(")
			e.emitExpressionBody(body)
			e.writeString(")")
			return
		}
		e.emitExpression(body, ASSIGNMENT)
	default:
		panic(fmt.Sprintf("jsemitter: unexpected arrow body %T", fn.Body))
	}
}

func (e *JSEmitter) emitParameters(params []Pattern) {
	e.writeString("(")
	for i, param := range params {
		if i > 0 {
			e.writeString(", ")
		}
		e.emitPattern(param)
	}
	e.writeString(")")
}

// --- Patterns ---

func (e *JSEmitter) emitPattern(pat Pattern) {
	switch x := pat.(type) {
	case *Identifier:
		e.writeString(x.Value)
	case *ArrayPattern:
		e.writeString("[")
		for i, el := range x.Elements {
			if i > 0 {
				e.writeString(", ")
			}
			if el != nil {
				e.emitPattern(el)
			}
		}
		if n := len(x.Elements); n > 0 && x.Elements[n-1] == nil {
			e.writeString(",")
		}
		e.writeString("]")
	case *ObjectPattern:
		if len(x.Properties) == 0 && x.Rest == nil {
			e.writeString("{}")
			return
		}
		e.writeString("{ ")
		for i, prop := range x.Properties {
			if i > 0 {
				e.writeString(", ")
			}
			if prop.Shorthand {
				e.emitPattern(prop.Value) // `a` or `a = 1`
				continue
			}
			e.emitPropertyKey(prop.Key, prop.Computed)
			e.writeString(": ")
			e.emitPattern(prop.Value)
		}
		if x.Rest != nil {
			if len(x.Properties) > 0 {
				e.writeString(", ")
			}
			e.emitPattern(x.Rest)
		}
		e.writeString(" }")
	case *AssignmentPattern:
		e.emitPattern(x.Target)
		e.writeString(" = ")
		e.emitExpression(x.Default, ASSIGNMENT)
	case *RestElement:
		e.writeString("...")
		e.emitPattern(x.Target)
	default:
		panic(fmt.Sprintf("jsemitter: unexpected pattern %T", pat))
	}
}

// --- Precedence ---

// precedenceOf reports how tightly expr binds, on the parser's precedence scale.
func precedenceOf(expr Expression) int {
	switch x := expr.(type) {
	case *SequenceExpression:
		return COMMA
	case *AssignmentExpression, *ArrowFunctionLiteral, *SpreadElement:
		return ASSIGNMENT
	case *PrefixExpression:
		if strings.HasPrefix(x.Operator, "yield") {
			return ASSIGNMENT
		}
		return PREFIX
	case *TernaryExpression:
		return TERNARY
	case *InfixExpression:
		return binaryPrecedence(x.Operator)
	case *UpdateExpression:
		if x.Prefix {
			return PREFIX
		}
		return POSTFIX
	case *CallExpression, *NewExpression, *MemberExpression, *IndexExpression, *TaggedTemplate, *ImportCall:
		return CALL
	}
	return primary
}

func binaryPrecedence(op string) int {
	switch op {
	case "in", "instanceof":
		return LESSGREATER
	}
	// Punctuator token types are spelled like their operators
	if p, ok := precedences[lexer.TokenType(op)]; ok {
		return p
	}
	panic(fmt.Sprintf("jsemitter: unknown binary operator %q", op))
}

// leftmost returns the sub-expression printed first.
func leftmost(expr Expression) Expression {
	for {
		switch x := expr.(type) {
		case *InfixExpression:
			expr = x.Left
		case *AssignmentExpression:
			expr = x.Left
		case *TernaryExpression:
			expr = x.Condition
		case *SequenceExpression:
			expr = x.Expressions[0]
		case *CallExpression:
			expr = x.Function
		case *MemberExpression:
			expr = x.Object
		case *IndexExpression:
			expr = x.Left
		case *TaggedTemplate:
			expr = x.Tag
		case *UpdateExpression:
			if x.Prefix {
				return expr
			}
			expr = x.Argument
		default:
			return expr
		}
	}
}

// chainHasCall reports whether a member chain contains a call, which a
// `new` callee must not absorb.
func chainHasCall(expr Expression) bool {
	for {
		switch x := expr.(type) {
		case *CallExpression, *ImportCall:
			return true
		case *MemberExpression:
			expr = x.Object
		case *IndexExpression:
			expr = x.Left
		case *TaggedTemplate:
			expr = x.Tag
		default:
			return false
		}
	}
}

// quoteString renders a cooked string value as a double-quoted literal.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
