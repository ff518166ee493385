package rules

import "jscodemod/pkg/parser"

// bindingNames lists the names a parameter or declaration target binds.
func bindingNames(p parser.Pattern) []string {
	var names []string
	var visit func(p parser.Pattern)
	visit = func(p parser.Pattern) {
		switch q := p.(type) {
		case *parser.Identifier:
			names = append(names, q.Value)
		case *parser.ArrayPattern:
			for _, el := range q.Elements {
				if el != nil {
					visit(el)
				}
			}
		case *parser.ObjectPattern:
			for _, prop := range q.Properties {
				visit(prop.Value)
			}
			if q.Rest != nil {
				visit(q.Rest)
			}
		case *parser.AssignmentPattern:
			visit(q.Target)
		case *parser.RestElement:
			visit(q.Target)
		}
	}
	visit(p)
	return names
}

// assignedNames collects every identifier written to anywhere under n:
// assignment and update targets, destructuring assignments and the heads of
// for-in/of loops without a declaration. Shadowing is ignored, so the result
// may name more bindings than are actually written.
func assignedNames(n parser.Node) map[string]bool {
	names := make(map[string]bool)
	var target func(x parser.Expression)
	target = func(x parser.Expression) {
		switch t := x.(type) {
		case *parser.Identifier:
			names[t.Value] = true
		case *parser.ArrayLiteral:
			for _, el := range t.Elements {
				if el != nil {
					target(el)
				}
			}
		case *parser.ObjectLiteral:
			for _, prop := range t.Properties {
				if prop.Shorthand {
					target(prop.Key)
				}
				if prop.Value != nil {
					target(prop.Value)
				}
			}
		case *parser.AssignmentExpression:
			target(t.Left) // a default inside a destructuring target
		case *parser.SpreadElement:
			target(t.Argument)
		}
	}

	var visit func(n parser.Node)
	visit = func(n parser.Node) {
		switch x := n.(type) {
		case *parser.AssignmentExpression:
			target(x.Left)
		case *parser.UpdateExpression:
			target(x.Argument)
		case *parser.ForInStatement:
			if left, ok := x.Left.(parser.Expression); ok {
				target(left)
			}
		case *parser.ForOfStatement:
			if left, ok := x.Left.(parser.Expression); ok {
				target(left)
			}
		}
		for _, child := range parser.Children(n) {
			visit(child)
		}
	}
	if n != nil {
		visit(n)
	}
	return names
}

// redeclared returns the first name in names that body declares again with
// var, or with a function declaration directly in body. Either is legal next
// to a parameter but a syntax error next to the let and const bindings of
// the loop.
func redeclared(body *parser.BlockStatement, names map[string]bool) string {
	found := ""
	var visit func(n parser.Node, top bool)
	visit = func(n parser.Node, top bool) {
		if found != "" {
			return
		}
		switch x := n.(type) {
		case *parser.VariableStatement:
			if x.DeclKind == parser.DeclVar {
				for _, d := range x.Declarations {
					for _, name := range bindingNames(d.Target) {
						if names[name] && found == "" {
							found = name
						}
					}
				}
			}
		case *parser.FunctionDeclaration:
			if top && x.Function.Name != nil && names[x.Function.Name.Value] {
				found = x.Function.Name.Value
			}
			return
		case *parser.FunctionLiteral, *parser.ArrowFunctionLiteral:
			return // var stops at function boundaries
		}
		for _, child := range parser.Children(n) {
			visit(child, false)
		}
	}
	for _, stmt := range body.Statements {
		visit(stmt, true)
	}
	return found
}
