package transform

import (
	"sort"
	"strings"

	"jscodemod/pkg/parser"
)

// Edit replaces one statement of the input program with zero or more
// statements.
type Edit struct {
	Original    parser.Statement
	Replacement []parser.Statement
}

type located struct {
	span parser.Span
	edit Edit
}

// Splice applies edits to src, the text program was parsed from. Only the
// replaced statements are printed; everything between them, comments and
// blank lines included, is copied through. ok is false when an edit cannot
// be located in src, in which case the caller should print the whole
// program instead.
func Splice(src string, program *parser.Program, edits []Edit) (out string, ok bool) {
	spans := make([]located, 0, len(edits))
	for _, e := range edits {
		span, found := program.Span(e.Original)
		if !found || span.Start < 0 || span.End > len(src) || span.Start > span.End {
			return "", false
		}
		spans = append(spans, located{span: span, edit: e})
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].span.Start != spans[j].span.Start {
			return spans[i].span.Start < spans[j].span.Start
		}
		return spans[i].span.End > spans[j].span.End
	})

	var b strings.Builder
	b.Grow(len(src))
	pos := 0
	for _, l := range spans {
		switch {
		case l.span.End <= pos && l.span.Start < pos:
			// Nested in an edit already written
			continue
		case l.span.Start < pos:
			return "", false
		}
		b.WriteString(src[pos:l.span.Start])
		prefix := lineIndent(src, l.span.Start)
		b.WriteString(parser.NewJSEmitter().EmitStatements(l.edit.Replacement, prefix))
		pos = l.span.End
	}
	b.WriteString(src[pos:])
	return b.String(), true
}

// lineIndent returns the blanks that open the line containing offset.
func lineIndent(src string, offset int) string {
	start := strings.LastIndexByte(src[:offset], '\n') + 1
	end := start
	for end < offset && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return src[start:end]
}
