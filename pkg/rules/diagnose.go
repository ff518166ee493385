package rules

import (
	"jscodemod/pkg/parser"
	"jscodemod/pkg/transform"
)

// diagnoseCallback flags callback code whose meaning changes once the body is
// inlined into a loop:
//   - return no longer skips one element; it exits the enclosing function
//   - this and arguments in a function callback refer to the enclosing scope
//   - a named function expression can no longer refer to itself
func diagnoseCallback(cb parser.Expression) []transform.Diagnostic {
	var diags []transform.Diagnostic
	warn := func(n parser.Node, msg string) {
		diags = append(diags, transform.Diagnostic{
			Rule:     ForEachKey,
			Severity: transform.SeverityWarning,
			Message:  msg,
		}.At(n))
	}

	var body *parser.BlockStatement
	ownBindings := false // function callbacks bind this and arguments
	var selfName string

	switch fn := cb.(type) {
	case *parser.FunctionLiteral:
		body = fn.Body
		ownBindings = true
		if fn.Name != nil {
			selfName = fn.Name.Value
		}
	case *parser.ArrowFunctionLiteral:
		body, _ = fn.Body.(*parser.BlockStatement)
	}
	if body == nil {
		return nil
	}

	// fnDepth counts nested function literals, arrowDepth nested arrows.
	// Arrows capture return but share this and arguments.
	var visit func(n parser.Node, fnDepth, arrowDepth int)
	visit = func(n parser.Node, fnDepth, arrowDepth int) {
		if n == nil {
			return
		}
		switch x := n.(type) {
		case *parser.ReturnStatement:
			if fnDepth == 0 && arrowDepth == 0 {
				warn(x, "return inside the forEach callback now exits the enclosing function")
			}
		case *parser.ThisExpression:
			if ownBindings && fnDepth == 0 {
				warn(x, "this inside the function callback now refers to the enclosing scope")
			}
		case *parser.Identifier:
			switch {
			case ownBindings && fnDepth == 0 && x.Value == "arguments":
				warn(x, "arguments inside the function callback now refers to the enclosing function")
			case selfName != "" && x.Value == selfName:
				warn(x, "the callback refers to its own name "+selfName+", which is no longer bound")
			}
		case *parser.MemberExpression:
			// The property name is not a reference
			visit(x.Object, fnDepth, arrowDepth)
			return
		case *parser.ObjectLiteral:
			for _, p := range x.Properties {
				if p.Computed || p.Shorthand {
					visit(p.Key, fnDepth, arrowDepth)
				}
				if !p.Shorthand {
					visit(p.Value, fnDepth, arrowDepth)
				}
			}
			return
		case *parser.ObjectPattern:
			for _, p := range x.Properties {
				if p.Computed {
					visit(p.Key, fnDepth, arrowDepth)
				}
				visit(p.Value, fnDepth, arrowDepth)
			}
			if x.Rest != nil {
				visit(x.Rest, fnDepth, arrowDepth)
			}
			return
		case *parser.FunctionLiteral:
			fnDepth++
		case *parser.ArrowFunctionLiteral:
			arrowDepth++
		}
		for _, child := range parser.Children(n) {
			visit(child, fnDepth, arrowDepth)
		}
	}

	for _, stmt := range body.Statements {
		visit(stmt, 0, 0)
	}
	return diags
}
