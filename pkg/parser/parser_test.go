package parser

import (
	"strings"
	"testing"

	"jscodemod/pkg/lexer"
	"jscodemod/pkg/source"
)

func parseProgram(t *testing.T, input string) *Program {
	t.Helper()
	p := NewParser(lexer.NewLexer(input))
	program, errs := p.ParseProgram()
	if len(errs) != 0 {
		for _, err := range errs {
			t.Errorf("parser error: %s", err.Error())
		}
		t.FailNow()
	}
	return program
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"let x = 5;", "let x = 5;\n"},
		{"const {a, b: [c, d = 1], ...rest} = obj;", "const { a, b: [c, d = 1], ...rest } = obj;\n"},
		{"a = b ? c : d ? e : f;", "a = b ? c : d ? e : f;\n"},
		{"(a + b) * c;", "(a + b) * c;\n"},
		{"a - (b - c);", "a - (b - c);\n"},
		{"a ** b ** c;", "a ** b ** c;\n"},
		{"(-a) ** b;", "(-a) ** b;\n"},
		{"x = function () { return 1; };", "x = function() {\n  return 1;\n};\n"},
		{"(function () {})();", "(function() {}());\n"},
		{"({a: 1}).a;", "({ a: 1 }.a);\n"},
		{"const f = async (x, {y}) => ({x, y});", "const f = async (x, { y }) => ({ x, y });\n"},
		{"for (let i = 0, n = a.length; i < n; i++) sum += a[i];", "for (let i = 0, n = a.length; i < n; i++)\n  sum += a[i];\n"},
		{"for (const k in obj) {}", "for (const k in obj) {}\n"},
		{"for (const [k, v] of Object.entries(o)) { log(k, v); }", "for (const [k, v] of Object.entries(o)) {\n  log(k, v);\n}\n"},
		{"if (a) b(); else if (c) d(); else { e(); }", "if (a)\n  b();\nelse if (c)\n  d();\nelse {\n  e();\n}\n"},
		{"label: for (;;) { break label; }", "label: for (;;) {\n  break label;\n}\n"},
		{"switch (x) { case 1: y(); break; default: z(); }", "switch (x) {\n  case 1:\n    y();\n    break;\n  default:\n    z();\n}\n"},
		{"try { a(); } catch (e) { b(e); } finally { c(); }", "try {\n  a();\n} catch (e) {\n  b(e);\n} finally {\n  c();\n}\n"},
		{"do x++; while (x < 3)", "do\n  x++;\nwhile (x < 3);\n"},
		{"new Foo.Bar(1).baz;", "new Foo.Bar(1).baz;\n"},
		{"new (getClass())();", "new (getClass())();\n"},
		{"a?.b?.[c]?.(d);", "a?.b?.[c]?.(d);\n"},
		{"x = [1, , 3, ...rest,];", "x = [1, , 3, ...rest];\n"},
		{"obj = { set a(v) {}, [k]: 2, m() {}, async *g() {} };", "obj = { set a(v) {}, [k]: 2, m() {}, async *g() {} };\n"},
		{"tag`hello ${name}`;", "tag`hello ${name}`;\n"},
		{"x = /ab+c/gi.test(s);", "x = /ab+c/gi.test(s);\n"},
		{"a = b, c = d;", "a = b, c = d;\n"},
		{`typeof x === "string";`, "typeof x === \"string\";\n"},
		{"- -x;", "- -x;\n"},
		{"a ?? (b || c);", "a ?? (b || c);\n"},
		{"x = a => b => a + b;", "x = (a) => (b) => a + b;\n"},
		{"let a = 1\nlet b = a\n++b", "let a = 1;\nlet b = a;\n++b;\n"},
		{"function f() {\n  return\n  1\n}", "function f() {\n  return;\n  1;\n}\n"},
		{"async function* gen() { yield* other(); yield; await x; }", "async function* gen() {\n  yield* other();\n  yield;\n  await x;\n}\n"},
		{"x = /a.b/ims.test(s);", "x = /a.b/ims.test(s);\n"},
		{"x = /(?<year>\\d{4})/s;", "x = /(?<year>\\d{4})/s;\n"},

		// Classes
		{
			"class A extends B { static #n = 1; #x; constructor(a) { super(a); this.#x = new.target; } get v() { return this.#x; } static { A.#n++; } *[Symbol.iterator]() {} has(o) { return #x in o; } }",
			"class A extends B {\n" +
				"  static #n = 1;\n" +
				"  #x;\n" +
				"  constructor(a) {\n" +
				"    super(a);\n" +
				"    this.#x = new.target;\n" +
				"  }\n" +
				"  get v() {\n" +
				"    return this.#x;\n" +
				"  }\n" +
				"  static {\n" +
				"    A.#n++;\n" +
				"  }\n" +
				"  *[Symbol.iterator]() {}\n" +
				"  has(o) {\n" +
				"    return #x in o;\n" +
				"  }\n" +
				"}\n",
		},
		{"const C = class extends Base {};", "const C = class extends Base {};\n"},
		{"(class {}).name;", "(class {}.name);\n"},
		{"class D { static async *gen() {} 'quoted'() { super.m(); } static = 1; get = 2; }", "class D {\n  static async *gen() {}\n  'quoted'() {\n    super.m();\n  }\n  static = 1;\n  get = 2;\n}\n"},

		// Modules
		{`import "side";`, "import \"side\";\n"},
		{`import d, * as ns from "m";`, "import d, * as ns from \"m\";\n"},
		{`import d, { a as b, default as c, "str" as e } from 'm'`, "import d, { a as b, default as c, \"str\" as e } from 'm';\n"},
		{"export { a, b as default };", "export { a, b as default };\n"},
		{`export * as ns from "m";`, "export * as ns from \"m\";\n"},
		{"export default async function () { await x; }", "export default async function() {\n  await x;\n}\n"},
		{"export default x + 1;", "export default x + 1;\n"},
		{`export const y = import.meta.url, z = import("./z.js");`, "export const y = import.meta.url, z = import(\"./z.js\");\n"},
		{"export class E {}", "export class E {}\n"},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		actual := NewJSEmitter().Emit(program)
		if actual != tt.expected {
			t.Errorf("input %q:\nexpected:\n%s\ngot:\n%s", tt.input, tt.expected, actual)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"let b = ;", "no prefix parse function for ; found"},
		{"a b", "unexpected token IDENT"},
		{"x = /(/;", "invalid regular expression"},
		{"const x;", "missing initializer"},
		{"1 = 2;", "invalid assignment target"},
		{"try {}", "missing catch or finally"},
		{`f("unterminated`, "invalid string literal"},
		{"-x ** 2;", "unary operator before ** must be parenthesized"},
		{"typeof x ** 2;", "unary operator before ** must be parenthesized"},
		{`function f() { import x from "y"; }`, "import declarations may only appear at top level"},
		{"if (a) export const b = 1;", "export declarations may only appear at top level"},
		{"class {}", "class declaration requires a name"},
		{"class A { constructor() {} constructor() {} }", "a class may only have one constructor"},
		{"class A { get constructor() {} }", "class constructor cannot be an accessor"},
		{`import { default } from "m";`, "import of default needs a local name"},
		{"export { default };", "cannot export default without 'from'"},
		{"x = super;", "'super' must be followed by arguments or a member access"},
		{"x = #a;", "private name #a is only valid"},
		{"import.foo;", "unknown meta property import.foo"},
		{"if (a {", "expected next token to be ), got { instead"},
		{"function () {}", "function declaration requires a name"},
	}

	for _, tt := range tests {
		_, errs := NewParser(lexer.NewLexer(tt.input)).ParseProgram()
		if len(errs) == 0 {
			t.Errorf("input %q: expected an error containing %q", tt.input, tt.message)
			continue
		}
		if !strings.Contains(errs[0].Message(), tt.message) {
			t.Errorf("input %q: first error %q does not contain %q", tt.input, errs[0].Message(), tt.message)
		}
	}
}

func TestErrorPosition(t *testing.T) {
	sf := source.NewSourceFile("app.js", "/src/app.js", "let a = 1;\nlet b = ;")
	_, errs := Parse(sf)
	if len(errs) == 0 {
		t.Fatal("expected a syntax error")
	}
	pos := errs[0].Pos()
	if pos.Line != 2 || pos.Column != 9 {
		t.Errorf("error at %d:%d, want 2:9", pos.Line, pos.Column)
	}
	if got := errs[0].Error(); got != "Syntax Error at /src/app.js:2:9: no prefix parse function for ; found" {
		t.Errorf("unexpected error text %q", got)
	}
}

func TestArrowBacktracking(t *testing.T) {
	tests := []struct {
		input string
		kind  NodeKind
		check func(Expression) bool
	}{
		{"(a, b);", KindSequenceExpression, func(e Expression) bool { return len(e.(*SequenceExpression).Expressions) == 2 }},
		{"(a, b) => a;", KindArrowFunctionLiteral, func(e Expression) bool { return len(e.(*ArrowFunctionLiteral).Parameters) == 2 }},
		{"(a = 1, ...r) => r;", KindArrowFunctionLiteral, func(e Expression) bool {
			params := e.(*ArrowFunctionLiteral).Parameters
			return params[0].Kind() == KindAssignmentPattern && params[1].Kind() == KindRestElement
		}},
		{"async(x);", KindCallExpression, func(e Expression) bool { return e.(*CallExpression).Function.String() == "async" }},
		{"async (x) => x;", KindArrowFunctionLiteral, func(e Expression) bool { return e.(*ArrowFunctionLiteral).IsAsync }},
		{"async x => x;", KindArrowFunctionLiteral, func(e Expression) bool { return e.(*ArrowFunctionLiteral).IsAsync }},
		{"() => {};", KindArrowFunctionLiteral, func(e Expression) bool {
			_, ok := e.(*ArrowFunctionLiteral).Body.(*BlockStatement)
			return ok
		}},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		stmt, ok := program.Statements[0].(*ExpressionStatement)
		if !ok {
			t.Fatalf("input %q: expected ExpressionStatement, got %T", tt.input, program.Statements[0])
		}
		if stmt.Expression.Kind() != tt.kind {
			t.Errorf("input %q: expected %s, got %s", tt.input, tt.kind, stmt.Expression.Kind())
			continue
		}
		if !tt.check(stmt.Expression) {
			t.Errorf("input %q: shape check failed for %s", tt.input, stmt.Expression.String())
		}
	}
}

func TestOperatorPrecedenceParsing(t *testing.T) {
	program := parseProgram(t, "a + b * c;")
	infix, ok := program.Statements[0].(*ExpressionStatement).Expression.(*InfixExpression)
	if !ok || infix.Operator != "+" {
		t.Fatalf("expected + at the root, got %s", program.Statements[0].String())
	}
	if right, ok := infix.Right.(*InfixExpression); !ok || right.Operator != "*" {
		t.Errorf("expected * on the right, got %s", infix.Right.String())
	}

	program = parseProgram(t, "for (const k in a in b) {}")
	forIn, ok := program.Statements[0].(*ForInStatement)
	if !ok {
		t.Fatalf("expected ForInStatement, got %T", program.Statements[0])
	}
	if forIn.Right.String() != "a in b" {
		t.Errorf("expected right side a in b, got %s", forIn.Right.String())
	}
}

func TestEmitSynthesized(t *testing.T) {
	a, b, c := NewIdentifier("a"), NewIdentifier("b"), NewIdentifier("c")

	if got := NewInfixExpression(NewInfixExpression(a, "+", b), "*", c).String(); got != "(a + b) * c" {
		t.Errorf("got %q", got)
	}
	if got := NewMemberExpression(NewInfixExpression(a, "||", b), "length").String(); got != "(a || b).length" {
		t.Errorf("got %q", got)
	}
	if got := NewMemberExpression(NewNumberLiteral(1), "toString").String(); got != "(1).toString" {
		t.Errorf("got %q", got)
	}
	if got := (&StringLiteral{Value: "a\"b\n"}).String(); got != `"a\"b\n"` {
		t.Errorf("got %q", got)
	}

	arr, i := NewIdentifier("_arr"), NewIdentifier("i")
	call := &CallExpression{Function: NewIdentifier("f"), Arguments: []Expression{NewIndexExpression(arr, i)}}
	loop := NewForStatement(
		NewVariableStatement(DeclLet, i, NewNumberLiteral(0)),
		NewInfixExpression(i, "<", NewMemberExpression(arr, "length")),
		NewUpdateExpression("++", i, false),
		NewBlockStatement(NewExpressionStatement(call)),
	)
	want := "for (let i = 0; i < _arr.length; i++) {\n  f(_arr[i]);\n}"
	if got := loop.String(); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestDanglingElse(t *testing.T) {
	inner := &IfStatement{Condition: NewIdentifier("b"), Consequence: NewExpressionStatement(NewIdentifier("x"))}
	outer := &IfStatement{Condition: NewIdentifier("a"), Consequence: inner, Alternative: NewExpressionStatement(NewIdentifier("y"))}

	want := "if (a) {\n  if (b)\n    x;\n} else\n  y;"
	if got := outer.String(); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestBuilderPanics(t *testing.T) {
	tests := map[string]func(){
		"keyword identifier": func() { NewIdentifier("for") },
		"digit start":        func() { NewIdentifier("1a") },
		"unknown operator":   func() { NewInfixExpression(NewIdentifier("a"), "@", NewIdentifier("b")) },
		"const without init": func() { NewVariableStatement(DeclConst, NewIdentifier("a"), nil) },
		"nil block entry":    func() { NewBlockStatement(nil) },
	}

	for name, fn := range tests {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("expected a panic")
				}
			}()
			fn()
		})
	}
}

func TestInspect(t *testing.T) {
	program := parseProgram(t, "a.b(c, function (d) { return d; });")

	var names []string
	Inspect(program, func(n Node) bool {
		if id, ok := n.(*Identifier); ok {
			names = append(names, id.Value)
		}
		return true
	})

	if got := strings.Join(names, " "); got != "a b c d d" {
		t.Errorf("visited %q, want %q", got, "a b c d d")
	}

	// Returning false prunes the subtree
	count := 0
	Inspect(program, func(n Node) bool {
		count++
		return n.Kind() != KindFunctionLiteral
	})
	if count != 8 {
		t.Errorf("expected 8 nodes outside the function body, got %d", count)
	}
}

func TestNodeKinds(t *testing.T) {
	program := parseProgram(t, "var a; function f() {} ; while (a) {} throw a;")
	expected := []NodeKind{KindVariableStatement, KindFunctionDeclaration, KindEmptyStatement, KindWhileStatement, KindThrowStatement}

	if len(program.Statements) != len(expected) {
		t.Fatalf("expected %d statements, got %d", len(expected), len(program.Statements))
	}
	for i, stmt := range program.Statements {
		if stmt.Kind() != expected[i] {
			t.Errorf("statement %d: expected %s, got %s", i, expected[i], stmt.Kind())
		}
	}
	if KindCallExpression.String() != "CallExpression" || NodeKind(-1).String() != "Unknown" {
		t.Errorf("unexpected kind names")
	}

	module := parseProgram(t, "import a from 'a'; export { a }; export default 1; export * from 'b'; class C {}")
	expected = []NodeKind{KindImportDeclaration, KindExportNamedDeclaration, KindExportDefaultDeclaration, KindExportAllDeclaration, KindClassDeclaration}
	for i, stmt := range module.Statements {
		if stmt.Kind() != expected[i] {
			t.Errorf("module statement %d: expected %s, got %s", i, expected[i], stmt.Kind())
		}
	}
	if KindClassLiteral.String() != "ClassLiteral" || KindImportCall.String() != "ImportCall" {
		t.Errorf("unexpected class or module kind names")
	}
}

func TestStatementSpans(t *testing.T) {
	input := "// lead\nlet a = 1; // one\nif (a) {\n  f(a)\n}\nexport function g() { return a; }\n"
	program := parseProgram(t, input)

	expected := []string{"let a = 1;", "if (a) {\n  f(a)\n}", "export function g() { return a; }"}
	if len(program.Statements) != len(expected) {
		t.Fatalf("expected %d statements, got %d", len(expected), len(program.Statements))
	}
	for i, stmt := range program.Statements {
		span, ok := program.Span(stmt)
		if !ok {
			t.Fatalf("statement %d has no span", i)
		}
		if got := input[span.Start:span.End]; got != expected[i] {
			t.Errorf("statement %d: span text %q, want %q", i, got, expected[i])
		}
	}

	inner := program.Statements[1].(*IfStatement).Consequence.(*BlockStatement).Statements[0]
	if span, ok := program.Span(inner); !ok || input[span.Start:span.End] != "f(a)" {
		t.Errorf("inner statement span %v, %v", span, ok)
	}
	if _, ok := program.Span(NewExpressionStatement(NewIdentifier("x"))); ok {
		t.Errorf("synthesized statement has a span")
	}
}

func TestEmitStatements(t *testing.T) {
	stmts := []Statement{
		NewVariableStatement(DeclConst, NewIdentifier("a"), NewNumberLiteral(1)),
		NewForStatement(nil, nil, nil, NewBlockStatement(NewExpressionStatement(NewIdentifier("a")))),
	}
	expected := "const a = 1;\n\tfor (;;) {\n\t  a;\n\t}"
	if got := NewJSEmitter().EmitStatements(stmts, "\t"); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}
