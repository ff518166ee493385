package lexer

import (
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `let five = 5;
const ten = 10.5;

var add = function(x, y) {
  return x + y;
};

items.forEach((item, i) => log(item, i));
!-5 * 2 % 3;
5 < 10 > 5;

if (5 < 10) {
	return true;
} else {
	return false;
}

10 === 10;
10 !== 9;
"foobar"
'foo\tbar'
// This is a comment
/* and a
   block comment */
let next = null ?? undefined;`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
		expectedLine    int
	}{
		{LET, "let", 1},
		{IDENT, "five", 1},
		{ASSIGN, "=", 1},
		{NUMBER, "5", 1},
		{SEMICOLON, ";", 1},
		{CONST, "const", 2},
		{IDENT, "ten", 2},
		{ASSIGN, "=", 2},
		{NUMBER, "10.5", 2},
		{SEMICOLON, ";", 2},
		{VAR, "var", 4},
		{IDENT, "add", 4},
		{ASSIGN, "=", 4},
		{FUNCTION, "function", 4},
		{LPAREN, "(", 4},
		{IDENT, "x", 4},
		{COMMA, ",", 4},
		{IDENT, "y", 4},
		{RPAREN, ")", 4},
		{LBRACE, "{", 4},
		{RETURN, "return", 5},
		{IDENT, "x", 5},
		{PLUS, "+", 5},
		{IDENT, "y", 5},
		{SEMICOLON, ";", 5},
		{RBRACE, "}", 6},
		{SEMICOLON, ";", 6},
		{IDENT, "items", 8},
		{DOT, ".", 8},
		{IDENT, "forEach", 8},
		{LPAREN, "(", 8},
		{LPAREN, "(", 8},
		{IDENT, "item", 8},
		{COMMA, ",", 8},
		{IDENT, "i", 8},
		{RPAREN, ")", 8},
		{ARROW, "=>", 8},
		{IDENT, "log", 8},
		{LPAREN, "(", 8},
		{IDENT, "item", 8},
		{COMMA, ",", 8},
		{IDENT, "i", 8},
		{RPAREN, ")", 8},
		{RPAREN, ")", 8},
		{SEMICOLON, ";", 8},
		{BANG, "!", 9},
		{MINUS, "-", 9},
		{NUMBER, "5", 9},
		{ASTERISK, "*", 9},
		{NUMBER, "2", 9},
		{REMAINDER, "%", 9},
		{NUMBER, "3", 9},
		{SEMICOLON, ";", 9},
		{NUMBER, "5", 10},
		{LT, "<", 10},
		{NUMBER, "10", 10},
		{GT, ">", 10},
		{NUMBER, "5", 10},
		{SEMICOLON, ";", 10},
		{IF, "if", 12},
		{LPAREN, "(", 12},
		{NUMBER, "5", 12},
		{LT, "<", 12},
		{NUMBER, "10", 12},
		{RPAREN, ")", 12},
		{LBRACE, "{", 12},
		{RETURN, "return", 13},
		{TRUE, "true", 13},
		{SEMICOLON, ";", 13},
		{RBRACE, "}", 14},
		{ELSE, "else", 14},
		{LBRACE, "{", 14},
		{RETURN, "return", 15},
		{FALSE, "false", 15},
		{SEMICOLON, ";", 15},
		{RBRACE, "}", 16},
		{NUMBER, "10", 18},
		{STRICT_EQ, "===", 18},
		{NUMBER, "10", 18},
		{SEMICOLON, ";", 18},
		{NUMBER, "10", 19},
		{STRICT_NOT_EQ, "!==", 19},
		{NUMBER, "9", 19},
		{SEMICOLON, ";", 19},
		{STRING, "foobar", 20},
		{STRING, "foo\tbar", 21},
		// Comments on lines 22-24 are skipped
		{LET, "let", 25},
		{IDENT, "next", 25},
		{ASSIGN, "=", 25},
		{NULL, "null", 25},
		{COALESCE, "??", 25},
		{IDENT, "undefined", 25},
		{SEMICOLON, ";", 25},
		{EOF, "", 25},
	}

	l := NewLexer(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal: %q, line: %d)",
				i, tt.expectedType, tok.Type, tok.Literal, tok.Line)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q (type: %q, line: %d)",
				i, tt.expectedLiteral, tok.Literal, tok.Type, tok.Line)
		}

		if tok.Line != tt.expectedLine {
			t.Errorf("tests[%d] - line number wrong. expected=%d, got=%d (type: %q, literal: %q)",
				i, tt.expectedLine, tok.Line, tok.Type, tok.Literal)
		}
	}
}

func TestSpecificOperatorLexing(t *testing.T) {
	input := `* *= ** **= > >= >> >>= >>> >>>= & &= | |= || ||= && &&= ?? ??= ? ?. <= << <<= ... ~ ^ ^=`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{ASTERISK, "*"},
		{ASTERISK_ASSIGN, "*="},
		{EXPONENT, "**"},
		{EXPONENT_ASSIGN, "**="},
		{GT, ">"},
		{GE, ">="},
		{RIGHT_SHIFT, ">>"},
		{RIGHT_SHIFT_ASSIGN, ">>="},
		{UNSIGNED_RIGHT_SHIFT, ">>>"},
		{UNSIGNED_RIGHT_SHIFT_ASSIGN, ">>>="},
		{BITWISE_AND, "&"},
		{BITWISE_AND_ASSIGN, "&="},
		{PIPE, "|"},
		{BITWISE_OR_ASSIGN, "|="},
		{LOGICAL_OR, "||"},
		{LOGICAL_OR_ASSIGN, "||="},
		{LOGICAL_AND, "&&"},
		{LOGICAL_AND_ASSIGN, "&&="},
		{COALESCE, "??"},
		{COALESCE_ASSIGN, "??="},
		{QUESTION, "?"},
		{OPTIONAL_CHAINING, "?."},
		{LE, "<="},
		{LEFT_SHIFT, "<<"},
		{LEFT_SHIFT_ASSIGN, "<<="},
		{SPREAD, "..."},
		{BITWISE_NOT, "~"},
		{BITWISE_XOR, "^"},
		{BITWISE_XOR_ASSIGN, "^="},
		{EOF, ""},
	}

	l := NewLexer(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Errorf("tests[%d] - tokentype wrong. expected=%q (%s), got=%q (%s)",
				i, tt.expectedType, tt.expectedLiteral, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Errorf("tests[%d] - literal wrong. expected=%q, got=%q (type: %q)",
				i, tt.expectedLiteral, tok.Literal, tok.Type)
		}
	}
}

func TestClassAndModuleTokens(t *testing.T) {
	input := `class A extends B { #x; m() { super.m(); return #x in this.#x / 2; } }
import x from "y"; export default x; # a`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{CLASS, "class"},
		{IDENT, "A"},
		{EXTENDS, "extends"},
		{IDENT, "B"},
		{LBRACE, "{"},
		{PRIVATE_NAME, "#x"},
		{SEMICOLON, ";"},
		{IDENT, "m"},
		{LPAREN, "("},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{SUPER, "super"},
		{DOT, "."},
		{IDENT, "m"},
		{LPAREN, "("},
		{RPAREN, ")"},
		{SEMICOLON, ";"},
		{RETURN, "return"},
		{PRIVATE_NAME, "#x"},
		{IN, "in"},
		{THIS, "this"},
		{DOT, "."},
		{PRIVATE_NAME, "#x"},
		{SLASH, "/"}, // Division after a private name, not a regex
		{NUMBER, "2"},
		{SEMICOLON, ";"},
		{RBRACE, "}"},
		{RBRACE, "}"},
		{IMPORT, "import"},
		{IDENT, "x"},
		{IDENT, "from"},
		{STRING, "y"},
		{SEMICOLON, ";"},
		{EXPORT, "export"},
		{DEFAULT, "default"},
		{IDENT, "x"},
		{SEMICOLON, ";"},
		{ILLEGAL, "#"},
		{IDENT, "a"},
		{EOF, ""},
	}

	l := NewLexer(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType || tok.Literal != tt.expectedLiteral {
			t.Errorf("tests[%d] - expected %q %q, got %q %q", i, tt.expectedType, tt.expectedLiteral, tok.Type, tok.Literal)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []string{"0", "42", "3.14", ".5", "1e10", "2.5E-3", "0xff", "0b1010", "0o17", "1_000_000", "10n"}

	for _, input := range tests {
		l := NewLexer(input)
		tok := l.NextToken()
		if tok.Type != NUMBER || tok.Literal != input {
			t.Errorf("NewLexer(%q) produced %q %q, want NUMBER %q", input, tok.Type, tok.Literal, input)
		}
		if next := l.NextToken(); next.Type != EOF {
			t.Errorf("NewLexer(%q) left trailing token %q", input, next.Literal)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		raw      string
	}{
		{`"a\nb"`, "a\nb", `"a\nb"`},
		{`'it\'s'`, "it's", `'it\'s'`},
		{`"\x41B\u{43}"`, "ABC", `"\x41B\u{43}"`},
		{`"back\\slash"`, `back\slash`, `"back\\slash"`},
	}

	for _, tt := range tests {
		l := NewLexer(tt.input)
		tok := l.NextToken()
		if tok.Type != STRING {
			t.Fatalf("input %s: expected STRING, got %q (%s)", tt.input, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expected {
			t.Errorf("input %s: cooked value %q, want %q", tt.input, tok.Literal, tt.expected)
		}
		if tok.Raw != tt.raw {
			t.Errorf("input %s: raw %q, want %q", tt.input, tok.Raw, tt.raw)
		}
	}

	if tok := NewLexer(`"unterminated`).NextToken(); tok.Type != ILLEGAL {
		t.Errorf("expected ILLEGAL for unterminated string, got %q", tok.Type)
	}
}

func TestTemplateLiterals(t *testing.T) {
	input := "f(`a ${b + `nested ${c}`} {d} \\` e`, 1)"
	expected := []struct {
		typ     TokenType
		literal string
	}{
		{IDENT, "f"},
		{LPAREN, "("},
		{TEMPLATE, "`a ${b + `nested ${c}`} {d} \\` e`"},
		{COMMA, ","},
		{NUMBER, "1"},
		{RPAREN, ")"},
		{EOF, ""},
	}

	l := NewLexer(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.typ || tok.Literal != want.literal {
			t.Fatalf("tokens[%d]: got %q %q, want %q %q", i, tok.Type, tok.Literal, want.typ, want.literal)
		}
	}
}

func TestSaveRestoreState(t *testing.T) {
	l := NewLexer("(a, b) => a / b")
	l.NextToken() // (
	state := l.SaveState()

	first := []TokenType{}
	for tok := l.NextToken(); tok.Type != EOF; tok = l.NextToken() {
		first = append(first, tok.Type)
	}

	l.RestoreState(state)
	second := []TokenType{}
	for tok := l.NextToken(); tok.Type != EOF; tok = l.NextToken() {
		second = append(second, tok.Type)
	}

	if len(first) != len(second) {
		t.Fatalf("replay produced %d tokens, first pass %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("token %d: %q after restore, %q before", i, second[i], first[i])
		}
	}
	if first[len(first)-2] != SLASH {
		t.Errorf("expected division after identifier, got %q", first[len(first)-2])
	}
}

func TestUnterminatedComment(t *testing.T) {
	l := NewLexer("a /* never closed")
	if tok := l.NextToken(); tok.Type != IDENT {
		t.Fatalf("expected IDENT, got %q", tok.Type)
	}
	if tok := l.NextToken(); tok.Type != ILLEGAL {
		t.Errorf("expected ILLEGAL for unterminated comment, got %q", tok.Type)
	}
}
