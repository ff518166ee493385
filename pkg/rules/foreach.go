package rules

import (
	"fmt"

	"jscodemod/pkg/parser"
	"jscodemod/pkg/transform"
)

const (
	ForEachKey         = "forEach-to-for"
	forEachDisplayName = "Convert .forEach() to for loop"
)

// forEachRule rewrites
//
//	items.forEach((x, i) => { ... });
//
// into
//
//	const _arr = items;
//	for (let i = 0; i < _arr.length; i++) {
//	  const x = _arr[i];
//	  ...
//	}
type forEachRule struct{}

// ForEachToFor returns the forEach-to-for rule.
func ForEachToFor() transform.Rule { return forEachRule{} }

func (forEachRule) Phases() []transform.Phase    { return []transform.Phase{transform.PhasePre} }
func (forEachRule) NodeKinds() []parser.NodeKind { return []parser.NodeKind{parser.KindCallExpression} }
func (forEachRule) Key() string                  { return ForEachKey }
func (forEachRule) DisplayName() string          { return forEachDisplayName }

func (forEachRule) Match(node parser.Node) bool {
	_, ok := MatchForEach(node)
	return ok
}

// MatchForEach reports whether node is <receiver>.forEach(<callback>) with a
// single synchronous, non-generator function or arrow callback, and returns
// the call narrowed to its concrete type.
func MatchForEach(node parser.Node) (*parser.CallExpression, bool) {
	call, ok := node.(*parser.CallExpression)
	if !ok || call.Optional || len(call.Arguments) != 1 {
		return nil, false
	}
	member, ok := call.Function.(*parser.MemberExpression)
	if !ok || member.Optional || member.Property.Value != "forEach" {
		return nil, false
	}

	switch cb := call.Arguments[0].(type) {
	case *parser.FunctionLiteral:
		return call, !cb.IsAsync && !cb.IsGenerator
	case *parser.ArrowFunctionLiteral:
		return call, !cb.IsAsync
	}
	return nil, false
}

func (forEachRule) Rewrite(node parser.Node, ctx transform.Context) transform.Result {
	call, ok := MatchForEach(node)
	if !ok {
		return transform.Result{}
	}
	receiver := call.Function.(*parser.MemberExpression).Object
	params, body := callbackParts(call.Arguments[0])

	names := make(map[string]bool)
	for _, p := range params {
		for _, name := range bindingNames(p) {
			names[name] = true
		}
	}
	if block, ok := body.(*parser.BlockStatement); ok {
		if name := redeclared(block, names); name != "" {
			return transform.Result{Diagnostics: []transform.Diagnostic{transform.Diagnostic{
				Severity: transform.SeverityInfo,
				Message:  fmt.Sprintf("skipped: the callback redeclares its parameter %s, which would clash with the loop binding", name),
			}.At(call)}}
		}
	}
	assigned := assignedNames(body)

	// The receiver is evaluated once, before the loop
	arr := ctx.GenerateUID("arr")
	hoist := parser.NewVariableStatement(parser.DeclConst, arr, receiver)

	// A plain index parameter doubles as the counter unless the body writes to it
	var index *parser.Identifier
	if len(params) > 1 {
		index, _ = params[1].(*parser.Identifier)
	}
	counter := index
	if counter == nil || assigned[counter.Value] {
		counter = ctx.GenerateUID("i")
	}
	args := []parser.Expression{parser.NewIndexExpression(arr, counter), counter, arr}

	var stmts []parser.Statement
	for k, p := range params {
		if p == parser.Pattern(counter) {
			continue
		}
		stmts = append(stmts, bindParameter(p, k, args, assigned))
	}
	if len(params) == 0 {
		// The element is still read once per iteration
		stmts = append(stmts, parser.NewVariableStatement(parser.DeclConst, ctx.GenerateUID("item"), args[0]))
	}
	switch b := body.(type) {
	case *parser.BlockStatement:
		stmts = append(stmts, b.Statements...)
	case parser.Expression:
		stmts = append(stmts, parser.NewExpressionStatement(b))
	default:
		panic(fmt.Sprintf("rules: unexpected callback body %T", body))
	}

	loop := parser.NewForStatement(
		parser.NewVariableStatement(parser.DeclLet, counter, parser.NewNumberLiteral(0)),
		parser.NewInfixExpression(counter, "<", parser.NewMemberExpression(arr, "length")),
		parser.NewUpdateExpression("++", counter, false),
		parser.NewBlockStatement(stmts...),
	)

	return transform.Result{
		Replacement: loop,
		Prelude:     []parser.Statement{hoist},
		Diagnostics: diagnoseCallback(call.Arguments[0]),
	}
}

// bindParameter declares the callback parameter p at position k from args,
// the element, index and array forEach passes. Parameters the body assigns
// to are declared with let.
func bindParameter(p parser.Pattern, k int, args []parser.Expression, assigned map[string]bool) parser.Statement {
	kind := parser.DeclConst
	for _, name := range bindingNames(p) {
		if assigned[name] {
			kind = parser.DeclLet
		}
	}

	switch q := p.(type) {
	case *parser.RestElement:
		var rest []parser.Expression
		if k < len(args) {
			rest = args[k:]
		}
		return parser.NewVariableStatement(kind, q.Target, parser.NewArrayLiteral(rest...))
	case *parser.AssignmentPattern:
		switch {
		case k == 0:
			// Only the element can be undefined: const [x = d] = [_arr[_i]]
			return parser.NewVariableStatement(kind, parser.NewArrayPattern(q), parser.NewArrayLiteral(args[0]))
		case k < len(args):
			return parser.NewVariableStatement(kind, q.Target, args[k])
		}
		return parser.NewVariableStatement(kind, q.Target, q.Default)
	}

	if k < len(args) {
		return parser.NewVariableStatement(kind, p, args[k])
	}
	// forEach passes three arguments; the rest are undefined
	if id, ok := p.(*parser.Identifier); ok {
		return parser.NewVariableStatement(parser.DeclLet, id, nil)
	}
	return parser.NewVariableStatement(kind, parser.NewArrayPattern(p), parser.NewArrayLiteral())
}

func callbackParts(cb parser.Expression) ([]parser.Pattern, parser.Node) {
	switch fn := cb.(type) {
	case *parser.FunctionLiteral:
		return fn.Parameters, fn.Body
	case *parser.ArrowFunctionLiteral:
		return fn.Parameters, fn.Body
	}
	panic(fmt.Sprintf("rules: unexpected callback %T", cb))
}
