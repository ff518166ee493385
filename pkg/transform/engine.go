package transform

import (
	"fmt"

	"go.uber.org/zap"

	"jscodemod/pkg/parser"
)

// Options configures an Engine.
type Options struct {
	// RejectFlagged skips any rewrite whose result carries a warning.
	RejectFlagged bool
	// Logger receives per-rewrite debug records. Nil means zap.NewNop().
	Logger *zap.Logger
}

// Engine applies a fixed set of rules to programs, phase by phase.
// An Engine is safe for concurrent use; each Run owns its own state.
type Engine struct {
	rules  []Rule
	opts   Options
	logger *zap.Logger
}

// NewEngine creates an engine over rules. Rules are offered a node in the
// order given here; the first one whose rewrite is accepted wins.
func NewEngine(rules []Rule, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		rules:  append([]Rule(nil), rules...),
		opts:   opts,
		logger: logger.Named("engine"),
	}
}

// Rules returns the engine's rules in offer order.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Run rewrites program and returns the result with a report of what was
// applied and skipped. The input program is never modified; subtrees that
// no rule touched are shared with the output.
func (e *Engine) Run(program *parser.Program) (*parser.Program, *Report) {
	report := newReport()
	scope := newUIDScope(program)
	out := program
	editPhases := 0

	for _, phase := range Phases {
		byKind := e.rulesFor(phase)
		if len(byKind) == 0 {
			continue
		}
		w := &rewriter{
			byKind:        byKind,
			scope:         scope,
			report:        report,
			rejectFlagged: e.opts.RejectFlagged,
			logger:        e.logger.With(zap.Stringer("phase", phase)),
		}
		if stmts, changed := w.statements(out.Statements); changed {
			out = &parser.Program{Statements: stmts, Source: program.Source}
		}
		if len(w.edits) > 0 {
			editPhases++
			report.Edits = append(report.Edits, w.edits...)
		}
		e.logger.Debug("phase finished",
			zap.Stringer("phase", phase),
			zap.Int("applied", w.applied),
			zap.Int("skipped", w.skipped))
	}
	if editPhases > 1 {
		// Later phases edited statements of the earlier output, which the
		// input text does not contain
		report.Edits = nil
	}
	return out, report
}

func (e *Engine) rulesFor(phase Phase) map[parser.NodeKind][]Rule {
	byKind := make(map[parser.NodeKind][]Rule)
	for _, r := range e.rules {
		inPhase := false
		for _, p := range r.Phases() {
			if p == phase {
				inPhase = true
				break
			}
		}
		if !inPhase {
			continue
		}
		for _, k := range r.NodeKinds() {
			byKind[k] = append(byKind[k], r)
		}
	}
	return byKind
}

// rewriter performs one phase's walk. Children are rewritten before their
// parent is offered, and a replacement is never walked again in the same
// phase, so a rule cannot re-enter its own output.
type rewriter struct {
	byKind        map[parser.NodeKind][]Rule
	scope         *uidScope
	report        *Report
	rejectFlagged bool
	logger        *zap.Logger

	applied, skipped int

	// edits lists the outermost statements replaced so far. pending counts
	// expression rewrites not yet attributed to an enclosing statement.
	edits   []Edit
	pending int
}

// offer hands node to the rules registered for its kind. inStatement is true
// when node occupies a whole statement, so a statement replacement and a
// prelude can be spliced there.
func (w *rewriter) offer(node parser.Node, inStatement bool) (parser.Node, []parser.Statement) {
	for _, rule := range w.byKind[node.Kind()] {
		if !rule.Match(node) {
			continue
		}
		res := rule.Rewrite(node, w.scope)
		diags := make([]Diagnostic, len(res.Diagnostics))
		for i, d := range res.Diagnostics {
			if d.Rule == "" {
				d.Rule = rule.Key()
			}
			diags[i] = d
		}
		if res.Replacement == nil {
			if len(diags) > 0 {
				// The rule declined and said why
				w.report.skip(rule.Key(), diags)
				w.skipped++
			}
			continue
		}

		if reason, keepDiags := w.refusal(node, res, diags, inStatement); reason != "" {
			if !keepDiags {
				diags = nil
			}
			skip := Diagnostic{Rule: rule.Key(), Severity: SeverityInfo, Message: "skipped: " + reason}.At(node)
			w.report.skip(rule.Key(), append([]Diagnostic{skip}, diags...))
			w.skipped++
			w.logger.Debug("rewrite skipped",
				zap.String("rule", rule.Key()),
				zap.String("reason", reason),
				zap.Int("line", skip.Line))
			continue
		}

		w.report.apply(rule.Key(), diags)
		w.applied++
		if !inStatement {
			w.pending++
		}
		w.logger.Debug("rewrite applied",
			zap.String("rule", rule.Key()),
			zap.Stringer("kind", node.Kind()),
			zap.Int("line", parser.StartToken(node).Line),
			zap.Int("prelude", len(res.Prelude)),
			zap.Int("diagnostics", len(diags)))
		return res.Replacement, res.Prelude
	}
	return node, nil
}

// refusal explains why res cannot be spliced in place of node, or returns "".
// keepDiags reports whether the rule's own diagnostics still describe the
// refused rewrite usefully.
func (w *rewriter) refusal(node parser.Node, res Result, diags []Diagnostic, inStatement bool) (reason string, keepDiags bool) {
	_, replStmt := res.Replacement.(parser.Statement)
	_, replExpr := res.Replacement.(parser.Expression)
	_, nodeStmt := node.(parser.Statement)

	switch {
	case !replStmt && !replExpr:
		return fmt.Sprintf("replacement %s is neither a statement nor an expression", res.Replacement.Kind()), false
	case replStmt && !inStatement:
		return "statement replacement in expression position", false
	case nodeStmt && !replStmt:
		return "expression replacement for a statement", false
	case len(res.Prelude) > 0 && !inStatement:
		return "prelude requires statement position", false
	case w.rejectFlagged && hasWarnings(diags):
		return "rewrite flagged with warnings", true
	}
	for i, s := range res.Prelude {
		if s == nil {
			return fmt.Sprintf("prelude statement %d is nil", i), false
		}
	}
	return "", false
}

// --- Statements ---

// statements rewrites a statement list, splicing preludes before the
// statement they belong to. The input slice is returned when nothing changed.
func (w *rewriter) statements(list []parser.Statement) ([]parser.Statement, bool) {
	var out []parser.Statement
	for i, s := range list {
		repl, prelude := w.tracked(s, func(repl parser.Statement, prelude []parser.Statement) []parser.Statement {
			return append(append([]parser.Statement(nil), prelude...), repl)
		})
		if out == nil {
			if repl == s && len(prelude) == 0 {
				continue
			}
			out = make([]parser.Statement, i, len(list)+len(prelude))
			copy(out, list[:i])
		}
		out = append(out, prelude...)
		out = append(out, repl)
	}
	if out == nil {
		return list, false
	}
	return out, true
}

// body rewrites a single-statement slot such as an unbraced if branch. A
// prelude forces a block around the replacement.
func (w *rewriter) body(s parser.Statement) parser.Statement {
	var wrapped parser.Statement
	repl, prelude := w.tracked(s, func(repl parser.Statement, prelude []parser.Statement) []parser.Statement {
		wrapped = slot(repl, prelude)
		return []parser.Statement{wrapped}
	})
	if wrapped == nil {
		wrapped = slot(repl, prelude)
	}
	return wrapped
}

func slot(repl parser.Statement, prelude []parser.Statement) parser.Statement {
	if len(prelude) == 0 {
		return repl
	}
	stmts := append(append([]parser.Statement(nil), prelude...), repl)
	return parser.NewBlockStatement(stmts...)
}

// tracked rewrites s and records an Edit when s itself was replaced or an
// expression directly inside it was. Edits recorded for statements nested in
// s are folded into that one edit. replacement builds the statements that
// take the place of s in the source.
func (w *rewriter) tracked(s parser.Statement, replacement func(parser.Statement, []parser.Statement) []parser.Statement) (parser.Statement, []parser.Statement) {
	edits, pending := len(w.edits), w.pending
	repl, prelude, offered := w.statement(s)
	switch {
	case offered || w.pending > pending:
		w.edits = append(w.edits[:edits], Edit{Original: s, Replacement: replacement(repl, prelude)})
		w.pending = pending
	case repl != s && len(w.edits) == edits:
		// Changed with no rewrite recorded underneath
		w.edits = append(w.edits, Edit{Original: s, Replacement: replacement(repl, prelude)})
	}
	return repl, prelude
}

func (w *rewriter) block(b *parser.BlockStatement) *parser.BlockStatement {
	if b == nil {
		return nil
	}
	stmts, changed := w.statements(b.Statements)
	if !changed {
		return b
	}
	c := *b
	c.Statements = stmts
	return &c
}

// statement rewrites the children of s, then offers s itself. offered
// reports whether a rule replaced s or its expression, as opposed to
// something nested deeper.
func (w *rewriter) statement(s parser.Statement) (parser.Statement, []parser.Statement, bool) {
	var out parser.Statement = s
	offered := false

	switch n := s.(type) {
	case *parser.ExpressionStatement:
		x := w.children(n.Expression)
		repl, prelude := w.offer(x, true)
		offered = repl != parser.Node(x) || len(prelude) > 0
		switch r := repl.(type) {
		case parser.Statement:
			return r, prelude, true
		case parser.Expression:
			if r != n.Expression {
				c := *n
				c.Expression = r
				out = &c
			}
			if len(prelude) > 0 {
				return out, prelude, true
			}
		}
	case *parser.VariableStatement:
		out = w.declaration(n)
	case *parser.BlockStatement:
		out = w.block(n)
	case *parser.ReturnStatement:
		if v := w.expr(n.ReturnValue); v != n.ReturnValue {
			c := *n
			c.ReturnValue = v
			out = &c
		}
	case *parser.IfStatement:
		cond, cons, alt := w.expr(n.Condition), w.body(n.Consequence), n.Alternative
		if alt != nil {
			alt = w.body(alt)
		}
		if cond != n.Condition || cons != n.Consequence || alt != n.Alternative {
			c := *n
			c.Condition, c.Consequence, c.Alternative = cond, cons, alt
			out = &c
		}
	case *parser.ForStatement:
		init, cond, update, body := w.forHead(n.Initializer), w.expr(n.Condition), w.expr(n.Update), w.body(n.Body)
		if init != n.Initializer || cond != n.Condition || update != n.Update || body != n.Body {
			c := *n
			c.Initializer, c.Condition, c.Update, c.Body = init, cond, update, body
			out = &c
		}
	case *parser.ForInStatement:
		left, right, body := w.forHead(n.Left), w.expr(n.Right), w.body(n.Body)
		if left != n.Left || right != n.Right || body != n.Body {
			c := *n
			c.Left, c.Right, c.Body = left, right, body
			out = &c
		}
	case *parser.ForOfStatement:
		left, right, body := w.forHead(n.Left), w.expr(n.Right), w.body(n.Body)
		if left != n.Left || right != n.Right || body != n.Body {
			c := *n
			c.Left, c.Right, c.Body = left, right, body
			out = &c
		}
	case *parser.WhileStatement:
		cond, body := w.expr(n.Condition), w.body(n.Body)
		if cond != n.Condition || body != n.Body {
			c := *n
			c.Condition, c.Body = cond, body
			out = &c
		}
	case *parser.DoWhileStatement:
		body, cond := w.body(n.Body), w.expr(n.Condition)
		if cond != n.Condition || body != n.Body {
			c := *n
			c.Condition, c.Body = cond, body
			out = &c
		}
	case *parser.ThrowStatement:
		if v := w.expr(n.Value); v != n.Value {
			c := *n
			c.Value = v
			out = &c
		}
	case *parser.TryStatement:
		block, param, catchBody, finally := w.block(n.Block), n.CatchParam, w.block(n.CatchBody), w.block(n.Finally)
		if param != nil {
			param = w.pattern(param)
		}
		if block != n.Block || param != n.CatchParam || catchBody != n.CatchBody || finally != n.Finally {
			c := *n
			c.Block, c.CatchParam, c.CatchBody, c.Finally = block, param, catchBody, finally
			out = &c
		}
	case *parser.SwitchStatement:
		disc := w.expr(n.Discriminant)
		var cases []*parser.SwitchCase
		for i, sc := range n.Cases {
			test := w.expr(sc.Test)
			body, changed := w.statements(sc.Body)
			if test != sc.Test || changed {
				if cases == nil {
					cases = append([]*parser.SwitchCase(nil), n.Cases...)
				}
				c := *sc
				c.Test, c.Body = test, body
				cases[i] = &c
			}
		}
		if disc != n.Discriminant || cases != nil {
			c := *n
			c.Discriminant = disc
			if cases != nil {
				c.Cases = cases
			}
			out = &c
		}
	case *parser.LabeledStatement:
		if body := w.body(n.Body); body != n.Body {
			c := *n
			c.Body = body
			out = &c
		}
	case *parser.FunctionDeclaration, *parser.ClassDeclaration:
		out = w.exportable(n)
	case *parser.ExportNamedDeclaration:
		if n.Declaration != nil {
			if decl := w.exportable(n.Declaration); decl != n.Declaration {
				c := *n
				c.Declaration = decl
				out = &c
			}
		}
	case *parser.ExportDefaultDeclaration:
		var decl parser.Node
		switch d := n.Declaration.(type) {
		case parser.Expression:
			decl = w.expr(d)
		case parser.Statement:
			decl = w.exportable(d)
		}
		if decl != n.Declaration {
			c := *n
			c.Declaration = decl
			out = &c
		}
	case *parser.BreakStatement, *parser.ContinueStatement, *parser.EmptyStatement,
		*parser.ImportDeclaration, *parser.ExportAllDeclaration:
		// No children to rewrite
	default:
		panic(fmt.Sprintf("transform: unexpected statement %T", s))
	}

	repl, prelude := w.offer(out, true)
	offered = offered || repl != parser.Node(out) || len(prelude) > 0
	return repl.(parser.Statement), prelude, offered
}

// exportable rewrites inside a declaration that may be exported. The
// declaration itself is not offered, since an export needs a declaration
// in that slot.
func (w *rewriter) exportable(s parser.Statement) parser.Statement {
	switch d := s.(type) {
	case *parser.VariableStatement:
		if decl := w.declaration(d); decl != d {
			return decl
		}
	case *parser.FunctionDeclaration:
		if fn := w.function(d.Function); fn != d.Function {
			c := *d
			c.Function = fn
			return &c
		}
	case *parser.ClassDeclaration:
		if class := w.class(d.Class); class != d.Class {
			c := *d
			c.Class = class
			return &c
		}
	default:
		panic(fmt.Sprintf("transform: unexpected exported declaration %T", s))
	}
	return s
}

func (w *rewriter) declaration(vs *parser.VariableStatement) *parser.VariableStatement {
	var decls []*parser.VarDeclarator
	for i, d := range vs.Declarations {
		target, value := w.pattern(d.Target), w.expr(d.Value)
		if target == d.Target && value == d.Value {
			continue
		}
		if decls == nil {
			decls = append([]*parser.VarDeclarator(nil), vs.Declarations...)
		}
		decls[i] = &parser.VarDeclarator{Target: target, Value: value}
	}
	if decls == nil {
		return vs
	}
	c := *vs
	c.Declarations = decls
	return &c
}

func (w *rewriter) forHead(n parser.Node) parser.Node {
	switch h := n.(type) {
	case nil:
		return nil
	case *parser.VariableStatement:
		if d := w.declaration(h); d != h {
			return d
		}
		return n
	case parser.Expression:
		if x := w.expr(h); x != h {
			return x
		}
		return n
	default:
		panic(fmt.Sprintf("transform: unexpected loop head %T", n))
	}
}

// --- Expressions ---

// expr rewrites an expression slot. Statement replacements and preludes are
// refused here.
func (w *rewriter) expr(x parser.Expression) parser.Expression {
	if x == nil {
		return nil
	}
	repl, _ := w.offer(w.children(x), false)
	return repl.(parser.Expression)
}

func (w *rewriter) exprs(list []parser.Expression) ([]parser.Expression, bool) {
	var out []parser.Expression
	for i, x := range list {
		y := w.expr(x)
		if y == x {
			continue
		}
		if out == nil {
			out = append([]parser.Expression(nil), list...)
		}
		out[i] = y
	}
	if out == nil {
		return list, false
	}
	return out, true
}

// children rewrites the sub-expressions and nested function bodies of x
// without offering x itself.
func (w *rewriter) children(x parser.Expression) parser.Expression {
	switch n := x.(type) {
	case *parser.Identifier, *parser.NumberLiteral, *parser.StringLiteral, *parser.TemplateLiteral,
		*parser.RegexLiteral, *parser.BooleanLiteral, *parser.NullLiteral, *parser.ThisExpression,
		*parser.SuperExpression, *parser.MetaProperty:
		return x
	case *parser.TaggedTemplate:
		if tag := w.expr(n.Tag); tag != n.Tag {
			c := *n
			c.Tag = tag
			return &c
		}
	case *parser.ArrayLiteral:
		if elems, changed := w.exprs(n.Elements); changed {
			c := *n
			c.Elements = elems
			return &c
		}
	case *parser.ObjectLiteral:
		var props []*parser.ObjectProperty
		for i, p := range n.Properties {
			key := p.Key
			if p.Computed {
				key = w.expr(p.Key)
			}
			value := w.expr(p.Value)
			if key == p.Key && value == p.Value {
				continue
			}
			if props == nil {
				props = append([]*parser.ObjectProperty(nil), n.Properties...)
			}
			c := *p
			c.Key, c.Value = key, value
			if c.Shorthand && value != p.Value {
				c.Shorthand = false
			}
			props[i] = &c
		}
		if props != nil {
			c := *n
			c.Properties = props
			return &c
		}
	case *parser.FunctionLiteral:
		if fn := w.function(n); fn != n {
			return fn
		}
	case *parser.ArrowFunctionLiteral:
		params, paramsChanged := w.patterns(n.Parameters)
		var body parser.Node
		switch b := n.Body.(type) {
		case *parser.BlockStatement:
			if nb := w.block(b); nb != b {
				body = nb
			}
		case parser.Expression:
			if nb := w.expr(b); nb != b {
				body = nb
			}
		default:
			panic(fmt.Sprintf("transform: unexpected arrow body %T", n.Body))
		}
		if paramsChanged || body != nil {
			c := *n
			c.Parameters = params
			if body != nil {
				c.Body = body
			}
			return &c
		}
	case *parser.PrefixExpression:
		if right := w.expr(n.Right); right != n.Right {
			c := *n
			c.Right = right
			return &c
		}
	case *parser.UpdateExpression:
		if arg := w.expr(n.Argument); arg != n.Argument {
			c := *n
			c.Argument = arg
			return &c
		}
	case *parser.InfixExpression:
		left, right := w.expr(n.Left), w.expr(n.Right)
		if left != n.Left || right != n.Right {
			c := *n
			c.Left, c.Right = left, right
			return &c
		}
	case *parser.AssignmentExpression:
		left, value := w.expr(n.Left), w.expr(n.Value)
		if left != n.Left || value != n.Value {
			c := *n
			c.Left, c.Value = left, value
			return &c
		}
	case *parser.TernaryExpression:
		cond, cons, alt := w.expr(n.Condition), w.expr(n.Consequence), w.expr(n.Alternative)
		if cond != n.Condition || cons != n.Consequence || alt != n.Alternative {
			c := *n
			c.Condition, c.Consequence, c.Alternative = cond, cons, alt
			return &c
		}
	case *parser.SequenceExpression:
		if exprs, changed := w.exprs(n.Expressions); changed {
			c := *n
			c.Expressions = exprs
			return &c
		}
	case *parser.CallExpression:
		fn := w.expr(n.Function)
		args, changed := w.exprs(n.Arguments)
		if fn != n.Function || changed {
			c := *n
			c.Function, c.Arguments = fn, args
			return &c
		}
	case *parser.NewExpression:
		ctor := w.expr(n.Constructor)
		args, changed := w.exprs(n.Arguments)
		if ctor != n.Constructor || changed {
			c := *n
			c.Constructor, c.Arguments = ctor, args
			return &c
		}
	case *parser.MemberExpression:
		if obj := w.expr(n.Object); obj != n.Object {
			c := *n
			c.Object = obj
			return &c
		}
	case *parser.IndexExpression:
		left, index := w.expr(n.Left), w.expr(n.Index)
		if left != n.Left || index != n.Index {
			c := *n
			c.Left, c.Index = left, index
			return &c
		}
	case *parser.SpreadElement:
		if arg := w.expr(n.Argument); arg != n.Argument {
			c := *n
			c.Argument = arg
			return &c
		}
	case *parser.ClassLiteral:
		if class := w.class(n); class != n {
			return class
		}
	case *parser.ImportCall:
		if src := w.expr(n.Source); src != n.Source {
			c := *n
			c.Source = src
			return &c
		}
	default:
		panic(fmt.Sprintf("transform: unexpected expression %T", x))
	}
	return x
}

// class rewrites the heritage, computed keys, member bodies and field
// initializers of cl. Methods stay functions: they are rewritten inside but
// never offered.
func (w *rewriter) class(cl *parser.ClassLiteral) *parser.ClassLiteral {
	super := w.expr(cl.SuperClass)
	var members []*parser.ClassMember
	for i, m := range cl.Members {
		key := m.Key
		if m.Computed {
			key = w.expr(m.Key)
		}
		value := m.Value
		if fn, ok := m.Value.(*parser.FunctionLiteral); ok && m.MemberKind != parser.MemberField {
			if nf := w.function(fn); nf != fn {
				value = nf
			}
		} else {
			value = w.expr(m.Value)
		}
		body := w.block(m.Body)
		if key == m.Key && value == m.Value && body == m.Body {
			continue
		}
		if members == nil {
			members = append([]*parser.ClassMember(nil), cl.Members...)
		}
		c := *m
		c.Key, c.Value, c.Body = key, value, body
		members[i] = &c
	}
	if super == cl.SuperClass && members == nil {
		return cl
	}
	c := *cl
	c.SuperClass = super
	if members != nil {
		c.Members = members
	}
	return &c
}

func (w *rewriter) function(fn *parser.FunctionLiteral) *parser.FunctionLiteral {
	params, changed := w.patterns(fn.Parameters)
	body := w.block(fn.Body)
	if !changed && body == fn.Body {
		return fn
	}
	c := *fn
	c.Parameters, c.Body = params, body
	return &c
}

// --- Patterns ---

// pattern rewrites the expressions embedded in a binding pattern (defaults
// and computed keys). Binding names themselves are never offered.
func (w *rewriter) pattern(p parser.Pattern) parser.Pattern {
	switch n := p.(type) {
	case nil:
		return nil
	case *parser.Identifier:
		return p
	case *parser.ArrayPattern:
		if elems, changed := w.patterns(n.Elements); changed {
			c := *n
			c.Elements = elems
			return &c
		}
	case *parser.ObjectPattern:
		var props []*parser.PatternProperty
		for i, prop := range n.Properties {
			key := prop.Key
			if prop.Computed {
				key = w.expr(prop.Key)
			}
			value := w.pattern(prop.Value)
			if key == prop.Key && value == prop.Value {
				continue
			}
			if props == nil {
				props = append([]*parser.PatternProperty(nil), n.Properties...)
			}
			c := *prop
			c.Key, c.Value = key, value
			props[i] = &c
		}
		var rest *parser.RestElement
		if n.Rest != nil {
			if r := w.pattern(n.Rest); r != parser.Pattern(n.Rest) {
				rest = r.(*parser.RestElement)
			}
		}
		if props != nil || rest != nil {
			c := *n
			if props != nil {
				c.Properties = props
			}
			if rest != nil {
				c.Rest = rest
			}
			return &c
		}
	case *parser.AssignmentPattern:
		target, def := w.pattern(n.Target), w.expr(n.Default)
		if target != n.Target || def != n.Default {
			c := *n
			c.Target, c.Default = target, def
			return &c
		}
	case *parser.RestElement:
		if target := w.pattern(n.Target); target != n.Target {
			c := *n
			c.Target = target
			return &c
		}
	default:
		panic(fmt.Sprintf("transform: unexpected pattern %T", p))
	}
	return p
}

func (w *rewriter) patterns(list []parser.Pattern) ([]parser.Pattern, bool) {
	var out []parser.Pattern
	for i, p := range list {
		q := w.pattern(p)
		if q == p {
			continue
		}
		if out == nil {
			out = append([]parser.Pattern(nil), list...)
		}
		out[i] = q
	}
	if out == nil {
		return list, false
	}
	return out, true
}
