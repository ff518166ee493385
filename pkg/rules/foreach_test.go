package rules

import (
	"strings"
	"testing"

	"github.com/dop251/goja"

	"jscodemod/pkg/parser"
	"jscodemod/pkg/source"
	"jscodemod/pkg/transform"
)

func mustParse(t *testing.T, input string) *parser.Program {
	t.Helper()
	program, errs := parser.Parse(source.NewInlineSource(input))
	if len(errs) > 0 {
		t.Fatalf("parse %q: %s", input, errs[0].Error())
	}
	return program
}

func rewrite(t *testing.T, input string, opts transform.Options) (string, *transform.Report) {
	t.Helper()
	out, report := transform.NewEngine(Default().All(), opts).Run(mustParse(t, input))
	return parser.NewJSEmitter().Emit(out), report
}

func TestMatchForEach(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"items.forEach(function (x) {});", true},
		{"items.forEach(x => x);", true},
		{"a.b.c.forEach((x, i) => {});", true},
		{"getItems().forEach(() => {});", true},
		{"items.forEach(x => x, thisArg);", false},
		{"items.forEach();", false},
		{"items.forEach(fn);", false},
		{"items.forEach(async x => x);", false},
		{"items.forEach(async function (x) {});", false},
		{"items.forEach(function* (x) {});", false},
		{"items?.forEach(x => x);", false},
		{"items.forEach?.(x => x);", false},
		{"items['forEach'](x => x);", false},
		{"items.map(x => x);", false},
		{"forEach(x => x);", false},
	}

	for _, tt := range tests {
		program := mustParse(t, tt.input)
		expr := program.Statements[0].(*parser.ExpressionStatement).Expression
		if _, ok := MatchForEach(expr); ok != tt.expected {
			t.Errorf("MatchForEach(%s) = %v, want %v", tt.input, ok, tt.expected)
		}
		if got := ForEachToFor().Match(expr); got != tt.expected {
			t.Errorf("Match(%s) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestForEachRewrite(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:  "function callback with index",
			input: "items.forEach(function(x, idx) { log(x, idx); });",
			expected: "const _arr = items;\n" +
				"for (let idx = 0; idx < _arr.length; idx++) {\n" +
				"  const x = _arr[idx];\n" +
				"  log(x, idx);\n" +
				"}\n",
		},
		{
			name:  "destructured item with concise body",
			input: "list.forEach(({a,b}) => use(a,b));",
			expected: "const _arr = list;\n" +
				"for (let _i = 0; _i < _arr.length; _i++) {\n" +
				"  const { a, b } = _arr[_i];\n" +
				"  use(a, b);\n" +
				"}\n",
		},
		{
			name:  "no parameters",
			input: "arr.forEach(() => count++);",
			expected: "const _arr = arr;\n" +
				"for (let _i = 0; _i < _arr.length; _i++) {\n" +
				"  const _item = _arr[_i];\n" +
				"  count++;\n" +
				"}\n",
		},
		{
			name:  "default-valued item",
			input: "xs.forEach((x = 1) => f(x));",
			expected: "const _arr = xs;\n" +
				"for (let _i = 0; _i < _arr.length; _i++) {\n" +
				"  const [x = 1] = [_arr[_i]];\n" +
				"  f(x);\n" +
				"}\n",
		},
		{
			name:  "rest parameter",
			input: "xs.forEach((x, ...more) => f(x, more));",
			expected: "const _arr = xs;\n" +
				"for (let _i = 0; _i < _arr.length; _i++) {\n" +
				"  const x = _arr[_i];\n" +
				"  const more = [_i, _arr];\n" +
				"  f(x, more);\n" +
				"}\n",
		},
		{
			name:  "destructured index is bound from the counter",
			input: "xs.forEach((x, [j]) => f(x));",
			expected: "const _arr = xs;\n" +
				"for (let _i = 0; _i < _arr.length; _i++) {\n" +
				"  const x = _arr[_i];\n" +
				"  const [j] = _i;\n" +
				"  f(x);\n" +
				"}\n",
		},
		{
			name:  "assigned item",
			input: "xs.forEach(function (x) { x = x * 2; log(x); });",
			expected: "const _arr = xs;\n" +
				"for (let _i = 0; _i < _arr.length; _i++) {\n" +
				"  let x = _arr[_i];\n" +
				"  x = x * 2;\n" +
				"  log(x);\n" +
				"}\n",
		},
		{
			name:  "assigned index gets its own counter",
			input: "xs.forEach((x, i) => { i += 10; log(x, i); });",
			expected: "const _arr = xs;\n" +
				"for (let _i = 0; _i < _arr.length; _i++) {\n" +
				"  const x = _arr[_i];\n" +
				"  let i = _i;\n" +
				"  i += 10;\n" +
				"  log(x, i);\n" +
				"}\n",
		},
		{
			name:  "parameters past the array",
			input: "xs.forEach((x, i, all, extra) => f(extra));",
			expected: "const _arr = xs;\n" +
				"for (let i = 0; i < _arr.length; i++) {\n" +
				"  const x = _arr[i];\n" +
				"  const all = _arr;\n" +
				"  let extra;\n" +
				"  f(extra);\n" +
				"}\n",
		},
		{
			name:  "array parameter",
			input: "xs.forEach((x, i, all) => f(x, all));",
			expected: "const _arr = xs;\n" +
				"for (let i = 0; i < _arr.length; i++) {\n" +
				"  const x = _arr[i];\n" +
				"  const all = _arr;\n" +
				"  f(x, all);\n" +
				"}\n",
		},
		{
			name:  "taken names",
			input: "var _arr = 0, _i = 1;\nxs.forEach(x => f(x));",
			expected: "var _arr = 0, _i = 1;\n" +
				"const _arr2 = xs;\n" +
				"for (let _i2 = 0; _i2 < _arr2.length; _i2++) {\n" +
				"  const x = _arr2[_i2];\n" +
				"  f(x);\n" +
				"}\n",
		},
		{
			name:  "receiver with side effects",
			input: "getItems().forEach(x => f(x));",
			expected: "const _arr = getItems();\n" +
				"for (let _i = 0; _i < _arr.length; _i++) {\n" +
				"  const x = _arr[_i];\n" +
				"  f(x);\n" +
				"}\n",
		},
		{
			name:  "nested calls rewrite inside out",
			input: "outer.forEach(row => { row.forEach(cell => { f(cell); }); });",
			expected: "const _arr2 = outer;\n" +
				"for (let _i2 = 0; _i2 < _arr2.length; _i2++) {\n" +
				"  const row = _arr2[_i2];\n" +
				"  const _arr = row;\n" +
				"  for (let _i = 0; _i < _arr.length; _i++) {\n" +
				"    const cell = _arr[_i];\n" +
				"    f(cell);\n" +
				"  }\n" +
				"}\n",
		},
		{
			name:  "unbraced if branch",
			input: "if (ok) xs.forEach(x => f(x));",
			expected: "if (ok) {\n" +
				"  const _arr = xs;\n" +
				"  for (let _i = 0; _i < _arr.length; _i++) {\n" +
				"    const x = _arr[_i];\n" +
				"    f(x);\n" +
				"  }\n" +
				"}\n",
		},
		{
			name:     "expression position is left alone",
			input:    "const r = xs.forEach(x => f(x));",
			expected: "const r = xs.forEach((x) => f(x));\n",
		},
		{
			name:     "thisArg is left alone",
			input:    "xs.forEach(x => f(x), ctx);",
			expected: "xs.forEach((x) => f(x), ctx);\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, _ := rewrite(t, tt.input, transform.Options{})
			if actual != tt.expected {
				t.Errorf("expected:\n%s\ngot:\n%s", tt.expected, actual)
			}
		})
	}
}

func TestForEachReusesIndexIdentifier(t *testing.T) {
	program := mustParse(t, "items.forEach(function(x, idx) { log(x, idx); });")
	call := program.Statements[0].(*parser.ExpressionStatement).Expression.(*parser.CallExpression)
	idx := call.Arguments[0].(*parser.FunctionLiteral).Parameters[1]

	out, _ := transform.NewEngine(Default().All(), transform.Options{}).Run(program)
	loop, ok := out.Statements[1].(*parser.ForStatement)
	if !ok {
		t.Fatalf("expected a for statement, got %T", out.Statements[1])
	}
	counter := loop.Initializer.(*parser.VariableStatement).Declarations[0].Target
	if counter != idx {
		t.Errorf("loop counter is a new node, want the callback's index parameter")
	}
	if update := loop.Update.(*parser.UpdateExpression); update.Argument != parser.Expression(idx.(*parser.Identifier)) {
		t.Errorf("update does not reuse the index parameter")
	}
}

func TestForEachEvaluatesReceiverOnce(t *testing.T) {
	out, _ := rewrite(t, "next().forEach(x => f(x));", transform.Options{})
	if n := strings.Count(out, "next()"); n != 1 {
		t.Errorf("receiver appears %d times:\n%s", n, out)
	}
}

func TestForEachDiagnostics(t *testing.T) {
	tests := []struct {
		input    string
		messages []string
	}{
		{"xs.forEach(function (x) { if (x) return; f(this, arguments); });", []string{"return", "this", "arguments"}},
		{"xs.forEach(x => { const g = () => { return 1; }; return; });", []string{"return"}},
		{"xs.forEach(x => this.f(x));", nil},
		{"xs.forEach(x => { f(this, arguments); });", nil},
		{"xs.forEach(function (x) { function g() { return this; } g(); });", nil},
		{"xs.forEach(function walk(x) { walk(x.children); });", []string{"walk"}},
		{"xs.forEach(function (x) { o.arguments; ({ arguments: 1 }); });", nil},
		{"xs.forEach(function (x) { x = x * 2; log(x); });", nil},
		{"xs.forEach((x, i) => { i += 10; });", nil},
		{"xs.forEach(([a, b]) => { [a, b] = [b, a]; });", nil},
	}

	for _, tt := range tests {
		_, report := rewrite(t, tt.input, transform.Options{})
		if report.Applied[ForEachKey] != 1 {
			t.Errorf("%s: expected the rewrite to apply", tt.input)
			continue
		}
		if len(report.Diagnostics) != len(tt.messages) {
			t.Errorf("%s: expected %d diagnostics, got %v", tt.input, len(tt.messages), report.Diagnostics)
			continue
		}
		for i, d := range report.Diagnostics {
			if d.Severity != transform.SeverityWarning || d.Rule != ForEachKey || !strings.Contains(d.Message, tt.messages[i]) {
				t.Errorf("%s: diagnostic %d = %s, want a warning about %s", tt.input, i, d, tt.messages[i])
			}
		}
	}
}

func TestForEachRejectFlagged(t *testing.T) {
	input := "function f() { xs.forEach(x => { return; }); }"
	actual, report := rewrite(t, input, transform.Options{RejectFlagged: true})

	expected := "function f() {\n  xs.forEach((x) => {\n    return;\n  });\n}\n"
	if actual != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, actual)
	}
	if report.Skipped[ForEachKey] != 1 || report.Applied[ForEachKey] != 0 {
		t.Errorf("expected one skip, got applied=%v skipped=%v", report.Applied, report.Skipped)
	}
}

func TestForEachRedeclaredParameter(t *testing.T) {
	tests := []struct {
		input   string
		name    string
		skipped bool
	}{
		{"xs.forEach(function (x) { var x = 5; log(x); });", "x", true},
		{"xs.forEach(x => { if (x) { for (var x of x) f(x); } });", "x", true},
		{"xs.forEach((x, i) => { function i() {} f(x); });", "i", true},
		{"xs.forEach(({ a: [b] }) => { var b; });", "b", true},
		{"xs.forEach(x => { function g() { var x; } g(); });", "", false},
		{"xs.forEach(x => { if (x) { function x2() {} } var y; });", "", false},
	}

	for _, tt := range tests {
		actual, report := rewrite(t, tt.input, transform.Options{})
		if !tt.skipped {
			if report.Applied[ForEachKey] != 1 {
				t.Errorf("%s: expected the rewrite to apply, got %v", tt.input, report.Diagnostics)
			}
			continue
		}
		if report.Applied[ForEachKey] != 0 || report.Skipped[ForEachKey] != 1 {
			t.Errorf("%s: expected one skip, got applied=%v skipped=%v", tt.input, report.Applied, report.Skipped)
			continue
		}
		if strings.Contains(actual, "for (let") {
			t.Errorf("%s: skipped call was rewritten:\n%s", tt.input, actual)
		}
		d := report.Diagnostics[0]
		if d.Severity != transform.SeverityInfo || d.Rule != ForEachKey || !strings.Contains(d.Message, "redeclares its parameter "+tt.name) {
			t.Errorf("%s: unexpected diagnostic %s", tt.input, d)
		}
	}
}

// TestForEachIdempotent checks that the rule finds nothing left to do in its
// own output.
func TestForEachIdempotent(t *testing.T) {
	inputs := []string{
		"items.forEach((x, i) => log(x, i));",
		"outer.forEach(row => { row.forEach(cell => { f(cell); }); });",
		"if (ok) xs.forEach(function (x) { x = x * 2; log(x); });",
		"class A { m() { [1].forEach(x => f(x)); } }",
	}

	for _, input := range inputs {
		once, report := rewrite(t, input, transform.Options{})
		if report.Applied[ForEachKey] == 0 {
			t.Errorf("%s: expected a rewrite", input)
			continue
		}
		twice, report := rewrite(t, once, transform.Options{})
		if n := report.Applied[ForEachKey]; n != 0 {
			t.Errorf("%s: second run applied %d rewrites", input, n)
		}
		if twice != once {
			t.Errorf("%s: second run changed the output:\n%s\n---\n%s", input, once, twice)
		}
	}
}

func TestForEachInClassesAndModules(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			input: "class A { m() { [1].forEach(x => f(x)); } }",
			expected: "class A {\n" +
				"  m() {\n" +
				"    const _arr = [1];\n" +
				"    for (let _i = 0; _i < _arr.length; _i++) {\n" +
				"      const x = _arr[_i];\n" +
				"      f(x);\n" +
				"    }\n" +
				"  }\n" +
				"}\n",
		},
		{
			input: "import x from 'y';\nx.forEach(v => f(v));",
			expected: "import x from 'y';\n" +
				"const _arr = x;\n" +
				"for (let _i = 0; _i < _arr.length; _i++) {\n" +
				"  const v = _arr[_i];\n" +
				"  f(v);\n" +
				"}\n",
		},
		{
			input: "export function g(xs) { xs.forEach(v => f(v)); }",
			expected: "export function g(xs) {\n" +
				"  const _arr = xs;\n" +
				"  for (let _i = 0; _i < _arr.length; _i++) {\n" +
				"    const v = _arr[_i];\n" +
				"    f(v);\n" +
				"  }\n" +
				"}\n",
		},
	}

	for _, tt := range tests {
		actual, report := rewrite(t, tt.input, transform.Options{})
		if report.Applied[ForEachKey] != 1 {
			t.Errorf("%s: expected one rewrite, got %v", tt.input, report.Applied)
		}
		if actual != tt.expected {
			t.Errorf("expected:\n%s\ngot:\n%s", tt.expected, actual)
		}
	}
}

// TestForEachExecutionEquivalence runs each program before and after the
// rewrite and compares what it logs.
func TestForEachExecutionEquivalence(t *testing.T) {
	const harness = `var out = []; function log() { out.push(Array.prototype.slice.call(arguments).join(",")); }` + "\n"

	programs := []string{
		"var items = [1, 2, 3]; items.forEach(function (x, idx) { log(x, idx); });",
		"[{a: 1, b: 2}, {a: 3, b: 4}].forEach(({a, b}) => log(a + b));",
		"var count = 0, calls = 0; function get() { calls++; return [5, 6]; } get().forEach(() => count++); log(count, calls);",
		"var m = [[1, 2], [3]]; m.forEach(row => { row.forEach((c, j, all) => log(c, j, all.length)); });",
		"function sum(xs) { var t = 0; xs.forEach(x => { t += x; }); return t; } log(sum([1, 2, 3, 4]));",
		"var pairs = [[1, 'a'], [2, 'b']]; pairs.forEach(([n, s], i) => { if (n > 1) log(i, s); });",
		"[1, 2].forEach(function (x) { x = x * 2; log(x); });",
		"[1, 2].forEach((x, i) => { i += 10; log(x, i); });",
		"[undefined, 2].forEach((x = 5, ...rest) => log(x, rest.length));",
		"[1].forEach((...args) => log(args[0], args[1], args[2].length));",
		"[3].forEach((x, i, a, extra) => log(x, typeof extra));",
		"[[1, 2]].forEach(([a, b]) => { [a, b] = [b, a]; log(a, b); });",
	}

	run := func(code string) string {
		vm := goja.New()
		v, err := vm.RunString(harness + code + "\nout.join('|')")
		if err != nil {
			t.Fatalf("run failed: %v\n%s", err, code)
		}
		return v.String()
	}

	for _, src := range programs {
		rewritten, report := rewrite(t, src, transform.Options{})
		if report.Applied[ForEachKey] == 0 {
			t.Errorf("no rewrite applied to %s", src)
			continue
		}
		if before, after := run(src), run(rewritten); before != after {
			t.Errorf("output differs for %s\nbefore: %s\nafter:  %s\nrewritten:\n%s", src, before, after, rewritten)
		}
	}
}

func TestRegistry(t *testing.T) {
	reg := Default()

	all, err := reg.Select(nil)
	if err != nil || len(all) != 1 || all[0].Key() != ForEachKey {
		t.Fatalf("Select(nil) = %v, %v", all, err)
	}
	if rule, err := reg.Lookup(ForEachKey); err != nil || rule.DisplayName() != "Convert .forEach() to for loop" {
		t.Errorf("Lookup(%q) = %v, %v", ForEachKey, rule, err)
	}

	tests := []struct {
		key        string
		suggestion string
	}{
		{"foreach", ForEachKey},
		{"forEahc-to-for", ForEachKey},
		{"zzz", ""},
	}
	for _, tt := range tests {
		_, err := reg.Select([]string{" ", tt.key})
		unknown, ok := err.(*UnknownRuleError)
		if !ok {
			t.Errorf("Select(%q): expected UnknownRuleError, got %v", tt.key, err)
			continue
		}
		if unknown.Suggestion != tt.suggestion {
			t.Errorf("Select(%q): suggestion %q, want %q", tt.key, unknown.Suggestion, tt.suggestion)
		}
	}
	if err := (&UnknownRuleError{Key: "zzz"}); err.Error() != `unknown rule "zzz"` {
		t.Errorf("unexpected message %q", err.Error())
	}

	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic on duplicate keys")
		}
	}()
	NewRegistry(ForEachToFor(), ForEachToFor())
}
