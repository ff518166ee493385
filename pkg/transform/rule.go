package transform

import (
	"fmt"

	"jscodemod/pkg/parser"
)

// Phase orders rule application. The engine runs every rule of one phase
// over the whole program before starting the next.
type Phase int

const (
	PhasePre Phase = iota
	PhaseMain
	PhasePost
)

// Phases lists every phase in run order.
var Phases = []Phase{PhasePre, PhaseMain, PhasePost}

func (p Phase) String() string {
	switch p {
	case PhasePre:
		return "pre"
	case PhaseMain:
		return "main"
	case PhasePost:
		return "post"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Rule is a single rewrite. The engine offers each node whose kind appears in
// NodeKinds to Match, and calls Rewrite only on a match. Rules hold no state
// between calls.
type Rule interface {
	Phases() []Phase
	NodeKinds() []parser.NodeKind
	Key() string
	DisplayName() string

	// Match reports whether node is an instance of the rule's pattern.
	// It must not modify node.
	Match(node parser.Node) bool

	// Rewrite builds the replacement for a matched node. It must not modify
	// node; the engine shares untouched subtrees between the input and
	// output programs.
	Rewrite(node parser.Node, ctx Context) Result
}

// Context is the capability a rule receives during Rewrite.
type Context interface {
	// GenerateUID returns an identifier that collides with no name in the
	// program and with no identifier issued earlier in the run.
	GenerateUID(hint string) *parser.Identifier
}

// Result is the outcome of one Rewrite.
//
// Replacement takes the matched node's place. Prelude statements are spliced
// immediately before the statement containing the replacement, in order, in
// the same statement list. A nil Replacement leaves the node untouched; any
// Diagnostics then explain why and the match is counted as skipped.
type Result struct {
	Replacement parser.Node
	Prelude     []parser.Statement
	Diagnostics []Diagnostic
}

// Severity grades a Diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "info"
}

// Diagnostic is a note a rule or the engine attaches to a rewrite site.
type Diagnostic struct {
	Rule     string
	Severity Severity
	Message  string
	Line     int
	Column   int
}

// At returns d positioned at node's first token.
func (d Diagnostic) At(node parser.Node) Diagnostic {
	tok := parser.StartToken(node)
	d.Line, d.Column = tok.Line, tok.Column
	return d
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: [%s] %s", d.Line, d.Column, d.Severity, d.Rule, d.Message)
}

func hasWarnings(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity >= SeverityWarning {
			return true
		}
	}
	return false
}
