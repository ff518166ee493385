package driver

import (
	stderrors "errors"
	"strings"
	"testing"

	"jscodemod/pkg/errors"
	"jscodemod/pkg/rules"
	"jscodemod/pkg/source"
)

func newDriver(t *testing.T, opts Options) *Driver {
	t.Helper()
	d, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestTransformSource(t *testing.T) {
	d := newDriver(t, Options{Verify: true})

	tests := []struct {
		input    string
		expected string
		changed  bool
	}{
		{
			input: "items.forEach(x => log(x));",
			expected: "const _arr = items;\n" +
				"for (let _i = 0; _i < _arr.length; _i++) {\n" +
				"  const x = _arr[_i];\n" +
				"  log(x);\n" +
				"}",
			changed: true,
		},
		{
			// Only the rewritten statement is reprinted
			input: "// Copyright 2024 Example\n" +
				"/** Sums xs. */\n" +
				"function sum(xs) {\n" +
				"  let t = 0; // running total\n" +
				"\n" +
				"  xs.forEach(x => { t += x; }); // add up\n" +
				"  return t;\n" +
				"}\n",
			expected: "// Copyright 2024 Example\n" +
				"/** Sums xs. */\n" +
				"function sum(xs) {\n" +
				"  let t = 0; // running total\n" +
				"\n" +
				"  const _arr = xs;\n" +
				"  for (let _i = 0; _i < _arr.length; _i++) {\n" +
				"    const x = _arr[_i];\n" +
				"    t += x;\n" +
				"  } // add up\n" +
				"  return t;\n" +
				"}\n",
			changed: true,
		},
		{
			input: "export class Totals {\n" +
				"  /* sum */\n" +
				"  add(xs) {\n" +
				"    xs.forEach(x => this.push(x));\n" +
				"  }\n" +
				"}\n",
			expected: "export class Totals {\n" +
				"  /* sum */\n" +
				"  add(xs) {\n" +
				"    const _arr = xs;\n" +
				"    for (let _i = 0; _i < _arr.length; _i++) {\n" +
				"      const x = _arr[_i];\n" +
				"      this.push(x);\n" +
				"    }\n" +
				"  }\n" +
				"}\n",
			changed: true,
		},
		{
			// Untouched sources keep their formatting
			input:    "let a   =  1;  // keep\n",
			expected: "let a   =  1;  // keep\n",
		},
	}

	for _, tt := range tests {
		out, err := d.TransformSource(source.NewInlineSource(tt.input))
		if err != nil {
			t.Fatalf("TransformSource(%q): %v", tt.input, err)
		}
		if out.Code != tt.expected {
			t.Errorf("input %q:\nexpected:\n%s\ngot:\n%s", tt.input, tt.expected, out.Code)
		}
		if out.Changed() != tt.changed {
			t.Errorf("input %q: Changed() = %v", tt.input, out.Changed())
		}
	}
}

func TestTransformSourceSyntaxError(t *testing.T) {
	d := newDriver(t, Options{})
	_, err := d.TransformSource(source.NewInlineSource("let b = ;"))

	var serr *SourceError
	if !stderrors.As(err, &serr) {
		t.Fatalf("expected *SourceError, got %v", err)
	}
	if len(serr.Errors) == 0 || serr.Errors[0].Kind() != "Syntax" {
		t.Errorf("unexpected errors %v", serr.Errors)
	}
}

func TestVerifyRejectsTopLevelReturn(t *testing.T) {
	// The callback's return lands at top level once inlined
	input := "xs.forEach(x => { if (x) return; log(x); });"

	out, err := newDriver(t, Options{}).TransformSource(source.NewInlineSource(input))
	if err != nil {
		t.Fatalf("unverified run failed: %v", err)
	}
	if out.Report.Warnings() != 1 {
		t.Errorf("expected one warning, got %v", out.Report.Diagnostics)
	}

	_, err = newDriver(t, Options{Verify: true}).TransformSource(source.NewInlineSource(input))
	var terr *errors.TransformError
	if !stderrors.As(err, &terr) {
		t.Fatalf("expected *errors.TransformError, got %v", err)
	}
	if !strings.Contains(terr.Msg, "emitted code does not parse") || terr.Line == 0 {
		t.Errorf("unexpected verify error %v", terr)
	}

	out, err = newDriver(t, Options{Verify: true, RejectFlagged: true}).TransformSource(source.NewInlineSource(input))
	if err != nil || out.Changed() {
		t.Errorf("strict run should leave the source alone, got %v, %v", out, err)
	}
}

func TestVerify(t *testing.T) {
	sf := source.NewInlineSource("")
	if err := Verify(sf, "const a = b?.c ?? 1;\n"); err != nil {
		t.Errorf("valid code rejected: %v", err)
	}
	err := Verify(sf, "let x = ;")
	var terr *errors.TransformError
	if !stderrors.As(err, &terr) || terr.Line != 1 {
		t.Errorf("expected a positioned TransformError, got %v", err)
	}

	module := "import { a } from \"./a.js\";\nexport const b = a;\n"
	if err := Verify(sf, module); err == nil {
		t.Errorf("goja accepted module code; VerifyModule is no longer needed")
	}
	if err := VerifyModule(sf, module); err != nil {
		t.Errorf("valid module rejected: %v", err)
	}
	err = VerifyModule(sf, "export let x = ;")
	if !stderrors.As(err, &terr) || terr.Line != 1 {
		t.Errorf("expected a positioned TransformError, got %v", err)
	}
}

func TestNewOptions(t *testing.T) {
	_, err := New(Options{Rules: []string{"foreach"}})
	var unknown *rules.UnknownRuleError
	if !stderrors.As(err, &unknown) || unknown.Suggestion != rules.ForEachKey {
		t.Errorf("expected an unknown rule error with a suggestion, got %v", err)
	}

	if _, err := New(Options{OutDir: "out", InPlace: true}); err == nil {
		t.Errorf("expected OutDir with InPlace to fail")
	}

	d := newDriver(t, Options{Rules: []string{rules.ForEachKey}})
	if len(d.Rules()) != 1 || d.opts.Workers <= 0 {
		t.Errorf("unexpected driver setup: %d rules, %d workers", len(d.Rules()), d.opts.Workers)
	}
}
