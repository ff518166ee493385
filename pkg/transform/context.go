package transform

import (
	"fmt"
	"strconv"
	"strings"

	"jscodemod/pkg/parser"
)

// uidScope issues fresh identifiers for one program. Names are unique
// program-wide, which is stricter than per-scope uniqueness and never shadows.
type uidScope struct {
	used map[string]bool
}

func newUIDScope(program *parser.Program) *uidScope {
	s := &uidScope{used: make(map[string]bool)}
	parser.Inspect(program, func(n parser.Node) bool {
		switch x := n.(type) {
		case *parser.Identifier:
			s.used[x.Value] = true
		case *parser.TemplateLiteral:
			// Substitutions stay raw text; reserve every word in them
			for _, word := range identifierWords(x.Raw) {
				s.used[word] = true
			}
		}
		return true
	})
	return s
}

// GenerateUID returns _hint, _hint2, _hint3, ... skipping taken names.
func (s *uidScope) GenerateUID(hint string) *parser.Identifier {
	base := "_" + strings.TrimLeft(hint, "_")
	if !parser.IsValidIdentifier(base) {
		panic(fmt.Sprintf("transform: unusable uid hint %q", hint))
	}
	name := base
	for i := 2; s.used[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	s.used[name] = true
	return parser.NewIdentifier(name)
}

// identifierWords splits raw source text into identifier-shaped words.
func identifierWords(raw string) []string {
	var words []string
	start := -1
	for i := 0; i <= len(raw); i++ {
		word := i < len(raw) && isWordByte(raw[i])
		switch {
		case word && start < 0:
			start = i
		case !word && start >= 0:
			if c := raw[start]; c < '0' || c > '9' {
				words = append(words, raw[start:i])
			}
			start = -1
		}
	}
	return words
}

func isWordByte(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '_' || c == '$' || c >= 0x80
}
