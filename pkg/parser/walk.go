package parser

import (
	"fmt"

	"jscodemod/pkg/lexer"
)

// Inspect traverses the tree rooted at node in source order, calling f for
// each node. Children are visited only when f returns true.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	for _, child := range Children(node) {
		Inspect(child, f)
	}
}

// Children returns the direct child nodes of node in source order, skipping
// absent optional parts. Array holes are skipped as well.
func Children(node Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, n := range nodes {
			if n != nil {
				out = append(out, n)
			}
		}
	}

	switch n := node.(type) {
	case *Program:
		for _, s := range n.Statements {
			add(s)
		}
	case *VariableStatement:
		for _, d := range n.Declarations {
			add(d.Target, d.Value)
		}
	case *ExpressionStatement:
		add(n.Expression)
	case *BlockStatement:
		for _, s := range n.Statements {
			add(s)
		}
	case *ReturnStatement:
		add(n.ReturnValue)
	case *IfStatement:
		add(n.Condition, n.Consequence, n.Alternative)
	case *ForStatement:
		add(n.Initializer, n.Condition, n.Update, n.Body)
	case *ForInStatement:
		add(n.Left, n.Right, n.Body)
	case *ForOfStatement:
		add(n.Left, n.Right, n.Body)
	case *WhileStatement:
		add(n.Condition, n.Body)
	case *DoWhileStatement:
		add(n.Body, n.Condition)
	case *BreakStatement:
		if n.Label != nil {
			add(n.Label)
		}
	case *ContinueStatement:
		if n.Label != nil {
			add(n.Label)
		}
	case *ThrowStatement:
		add(n.Value)
	case *TryStatement:
		add(n.Block)
		add(n.CatchParam)
		if n.CatchBody != nil {
			add(n.CatchBody)
		}
		if n.Finally != nil {
			add(n.Finally)
		}
	case *SwitchStatement:
		add(n.Discriminant)
		for _, c := range n.Cases {
			add(c.Test)
			for _, s := range c.Body {
				add(s)
			}
		}
	case *LabeledStatement:
		add(n.Label, n.Body)
	case *FunctionDeclaration:
		add(n.Function)
	case *ClassDeclaration:
		add(n.Class)
	case *ImportDeclaration:
		if n.Default != nil {
			add(n.Default)
		}
		if n.Namespace != nil {
			add(n.Namespace)
		}
		for _, spec := range n.Specifiers {
			add(spec.Imported)
			if Node(spec.Local) != Node(spec.Imported) {
				add(spec.Local)
			}
		}
		add(n.Source)
	case *ExportNamedDeclaration:
		add(n.Declaration)
		for _, spec := range n.Specifiers {
			add(spec.Local)
			if spec.Exported != spec.Local {
				add(spec.Exported)
			}
		}
		if n.Source != nil {
			add(n.Source)
		}
	case *ExportDefaultDeclaration:
		add(n.Declaration)
	case *ExportAllDeclaration:
		add(n.Exported, n.Source)
	case *Identifier, *NumberLiteral, *StringLiteral, *TemplateLiteral, *RegexLiteral,
		*BooleanLiteral, *NullLiteral, *ThisExpression, *SuperExpression, *MetaProperty, *EmptyStatement:
		// Leaves
	case *TaggedTemplate:
		add(n.Tag, n.Quasi)
	case *ArrayLiteral:
		for _, el := range n.Elements {
			add(el)
		}
	case *ObjectLiteral:
		for _, prop := range n.Properties {
			add(prop.Key, prop.Value)
		}
	case *FunctionLiteral:
		if n.Name != nil {
			add(n.Name)
		}
		for _, param := range n.Parameters {
			add(param)
		}
		add(n.Body)
	case *ArrowFunctionLiteral:
		for _, param := range n.Parameters {
			add(param)
		}
		add(n.Body)
	case *PrefixExpression:
		add(n.Right)
	case *UpdateExpression:
		add(n.Argument)
	case *InfixExpression:
		add(n.Left, n.Right)
	case *AssignmentExpression:
		add(n.Left, n.Value)
	case *TernaryExpression:
		add(n.Condition, n.Consequence, n.Alternative)
	case *SequenceExpression:
		for _, e := range n.Expressions {
			add(e)
		}
	case *CallExpression:
		add(n.Function)
		for _, arg := range n.Arguments {
			add(arg)
		}
	case *NewExpression:
		add(n.Constructor)
		for _, arg := range n.Arguments {
			add(arg)
		}
	case *MemberExpression:
		add(n.Object, n.Property)
	case *IndexExpression:
		add(n.Left, n.Index)
	case *SpreadElement:
		add(n.Argument)
	case *ClassLiteral:
		if n.Name != nil {
			add(n.Name)
		}
		add(n.SuperClass)
		for _, m := range n.Members {
			add(m.Key, m.Value)
			if m.Body != nil {
				add(m.Body)
			}
		}
	case *ImportCall:
		add(n.Source)
	case *ArrayPattern:
		for _, el := range n.Elements {
			add(el)
		}
	case *ObjectPattern:
		for _, prop := range n.Properties {
			add(prop.Key, prop.Value)
		}
		if n.Rest != nil {
			add(n.Rest)
		}
	case *AssignmentPattern:
		add(n.Target, n.Default)
	case *RestElement:
		add(n.Target)
	default:
		panic(fmt.Sprintf("parser: Children of unexpected node %T", node))
	}
	return out
}

// StartToken returns the first source token of node. Synthesized nodes carry
// zero positions.
func StartToken(node Node) lexer.Token {
	switch n := node.(type) {
	case *Program:
		if len(n.Statements) > 0 {
			return StartToken(n.Statements[0])
		}
		return lexer.Token{}
	case *ExpressionStatement:
		if n.Token.Line == 0 {
			return StartToken(n.Expression)
		}
		return n.Token
	case *CallExpression:
		return StartToken(n.Function)
	case *MemberExpression:
		return StartToken(n.Object)
	case *IndexExpression:
		return StartToken(n.Left)
	case *InfixExpression:
		return StartToken(n.Left)
	case *AssignmentExpression:
		return StartToken(n.Left)
	case *TernaryExpression:
		return StartToken(n.Condition)
	case *SequenceExpression:
		return StartToken(n.Expressions[0])
	case *TaggedTemplate:
		return StartToken(n.Tag)
	case *AssignmentPattern:
		return StartToken(n.Target)
	case *UpdateExpression:
		if !n.Prefix {
			return StartToken(n.Argument)
		}
		return n.Token
	case *ArrowFunctionLiteral:
		if !n.IsAsync && len(n.Parameters) > 0 {
			return StartToken(n.Parameters[0])
		}
		return n.Token
	case *VariableStatement:
		return n.Token
	case *BlockStatement:
		return n.Token
	case *ReturnStatement:
		return n.Token
	case *IfStatement:
		return n.Token
	case *ForStatement:
		return n.Token
	case *ForInStatement:
		return n.Token
	case *ForOfStatement:
		return n.Token
	case *WhileStatement:
		return n.Token
	case *DoWhileStatement:
		return n.Token
	case *BreakStatement:
		return n.Token
	case *ContinueStatement:
		return n.Token
	case *ThrowStatement:
		return n.Token
	case *TryStatement:
		return n.Token
	case *SwitchStatement:
		return n.Token
	case *EmptyStatement:
		return n.Token
	case *LabeledStatement:
		return n.Token
	case *FunctionDeclaration:
		return n.Token
	case *ClassDeclaration:
		return n.Token
	case *ImportDeclaration:
		return n.Token
	case *ExportNamedDeclaration:
		return n.Token
	case *ExportDefaultDeclaration:
		return n.Token
	case *ExportAllDeclaration:
		return n.Token
	case *Identifier:
		return n.Token
	case *NumberLiteral:
		return n.Token
	case *StringLiteral:
		return n.Token
	case *TemplateLiteral:
		return n.Token
	case *RegexLiteral:
		return n.Token
	case *BooleanLiteral:
		return n.Token
	case *NullLiteral:
		return n.Token
	case *ThisExpression:
		return n.Token
	case *ArrayLiteral:
		return n.Token
	case *ObjectLiteral:
		return n.Token
	case *FunctionLiteral:
		return n.Token
	case *PrefixExpression:
		return n.Token
	case *NewExpression:
		return n.Token
	case *SpreadElement:
		return n.Token
	case *ClassLiteral:
		return n.Token
	case *SuperExpression:
		return n.Token
	case *MetaProperty:
		return n.Token
	case *ImportCall:
		return n.Token
	case *ArrayPattern:
		return n.Token
	case *ObjectPattern:
		return n.Token
	case *RestElement:
		return n.Token
	default:
		panic(fmt.Sprintf("parser: StartToken of unexpected node %T", node))
	}
}
