package lexer

import (
	"strconv"
	"strings"

	"jscodemod/pkg/source"
)

// TokenType represents the type of a token.
type TokenType string

// Token represents a lexical token.
type Token struct {
	Type     TokenType
	Literal  string // The token text; cooked value for STRING, raw text otherwise
	Raw      string // Exact source text of the token (set for literals)
	Line     int    // 1-based line number where the token starts
	Column   int    // 1-based column number where the token starts
	StartPos int    // 0-based byte offset where the token starts
	EndPos   int    // 0-based byte offset after the token ends
}

// --- Token Types ---
const (
	// Special
	ILLEGAL TokenType = "ILLEGAL" // Unknown token/character
	EOF     TokenType = "EOF"     // End Of File

	// Identifiers + Literals
	IDENT         TokenType = "IDENT"    // functionName, variableName
	PRIVATE_NAME  TokenType = "PRIVATE"  // #field
	NUMBER        TokenType = "NUMBER"   // 123, 45.67, 0xff, 10n
	STRING        TokenType = "STRING"   // "hello world"
	TEMPLATE      TokenType = "TEMPLATE" // `a ${b} c`, kept raw
	REGEX_LITERAL TokenType = "REGEX"    // /ab+c/gi

	// Operators
	ASSIGN      TokenType = "="
	PLUS        TokenType = "+"
	MINUS       TokenType = "-"
	BANG        TokenType = "!"
	ASTERISK    TokenType = "*"
	SLASH       TokenType = "/"
	REMAINDER   TokenType = "%"
	EXPONENT    TokenType = "**"
	LT          TokenType = "<"
	GT          TokenType = ">"
	EQ          TokenType = "=="
	NOT_EQ      TokenType = "!="
	LE          TokenType = "<="
	GE          TokenType = ">="
	DOT         TokenType = "."
	SPREAD      TokenType = "..."
	BITWISE_AND TokenType = "&"
	PIPE        TokenType = "|"
	BITWISE_XOR TokenType = "^"
	BITWISE_NOT TokenType = "~"

	LEFT_SHIFT           TokenType = "<<"
	RIGHT_SHIFT          TokenType = ">>"
	UNSIGNED_RIGHT_SHIFT TokenType = ">>>"

	// Compound Assignment
	PLUS_ASSIGN                 TokenType = "+="
	MINUS_ASSIGN                TokenType = "-="
	ASTERISK_ASSIGN             TokenType = "*="
	SLASH_ASSIGN                TokenType = "/="
	REMAINDER_ASSIGN            TokenType = "%="
	EXPONENT_ASSIGN             TokenType = "**="
	BITWISE_AND_ASSIGN          TokenType = "&="
	BITWISE_OR_ASSIGN           TokenType = "|="
	BITWISE_XOR_ASSIGN          TokenType = "^="
	LEFT_SHIFT_ASSIGN           TokenType = "<<="
	RIGHT_SHIFT_ASSIGN          TokenType = ">>="
	UNSIGNED_RIGHT_SHIFT_ASSIGN TokenType = ">>>="
	LOGICAL_AND_ASSIGN          TokenType = "&&="
	LOGICAL_OR_ASSIGN           TokenType = "||="
	COALESCE_ASSIGN             TokenType = "??="

	// Increment/Decrement
	INC TokenType = "++"
	DEC TokenType = "--"

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"
	ARROW     TokenType = "=>"

	// Keywords
	FUNCTION   TokenType = "FUNCTION"
	VAR        TokenType = "VAR"
	LET        TokenType = "LET"
	CONST      TokenType = "CONST"
	TRUE       TokenType = "TRUE"
	FALSE      TokenType = "FALSE"
	NULL       TokenType = "NULL"
	THIS       TokenType = "THIS"
	IF         TokenType = "IF"
	ELSE       TokenType = "ELSE"
	RETURN     TokenType = "RETURN"
	WHILE      TokenType = "WHILE"
	DO         TokenType = "DO"
	FOR        TokenType = "FOR"
	BREAK      TokenType = "BREAK"
	CONTINUE   TokenType = "CONTINUE"
	SWITCH     TokenType = "SWITCH"
	CASE       TokenType = "CASE"
	DEFAULT    TokenType = "DEFAULT"
	THROW      TokenType = "THROW"
	TRY        TokenType = "TRY"
	CATCH      TokenType = "CATCH"
	FINALLY    TokenType = "FINALLY"
	NEW        TokenType = "NEW"
	DELETE     TokenType = "DELETE"
	TYPEOF     TokenType = "TYPEOF"
	VOID       TokenType = "VOID"
	IN         TokenType = "IN"
	INSTANCEOF TokenType = "INSTANCEOF"
	CLASS      TokenType = "CLASS"
	EXTENDS    TokenType = "EXTENDS"
	SUPER      TokenType = "SUPER"
	IMPORT     TokenType = "IMPORT"
	EXPORT     TokenType = "EXPORT"

	// Logical Operators
	LOGICAL_AND TokenType = "&&"
	LOGICAL_OR  TokenType = "||"
	COALESCE    TokenType = "??"

	// Strict Equality Operators
	STRICT_EQ     TokenType = "==="
	STRICT_NOT_EQ TokenType = "!=="

	// Ternary and optional chaining
	QUESTION          TokenType = "?"
	OPTIONAL_CHAINING TokenType = "?."
)

var keywords = map[string]TokenType{
	"function":   FUNCTION,
	"var":        VAR,
	"let":        LET,
	"const":      CONST,
	"true":       TRUE,
	"false":      FALSE,
	"null":       NULL,
	"this":       THIS,
	"if":         IF,
	"else":       ELSE,
	"return":     RETURN,
	"while":      WHILE,
	"do":         DO,
	"for":        FOR,
	"break":      BREAK,
	"continue":   CONTINUE,
	"switch":     SWITCH,
	"case":       CASE,
	"default":    DEFAULT,
	"throw":      THROW,
	"try":        TRY,
	"catch":      CATCH,
	"finally":    FINALLY,
	"new":        NEW,
	"delete":     DELETE,
	"typeof":     TYPEOF,
	"void":       VOID,
	"in":         IN,
	"instanceof": INSTANCEOF,
	"class":      CLASS,
	"extends":    EXTENDS,
	"super":      SUPER,
	"import":     IMPORT,
	"export":     EXPORT,
}

// LookupIdent checks the keywords table for an identifier.
func LookupIdent(ident string) TokenType {
	if tokType, ok := keywords[ident]; ok {
		return tokType
	}
	return IDENT
}

// IsKeyword reports whether name is a reserved word the lexer never emits as IDENT.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}

// Lexer holds the state of the scanner.
type Lexer struct {
	input        string
	source       *source.SourceFile
	position     int  // current position in input (points to current char's byte offset)
	readPosition int  // current reading position in input (byte offset after current char)
	ch           byte // current char under examination
	line         int  // current 1-based line number
	column       int  // current 1-based column number
	prevType     TokenType
}

// LexerState is a snapshot used by the parser to backtrack.
type LexerState struct {
	position     int
	readPosition int
	ch           byte
	line         int
	column       int
	prevType     TokenType
}

// NewLexer creates a new Lexer over an inline source.
func NewLexer(input string) *Lexer {
	return NewLexerWithSource(source.NewInlineSource(input))
}

// NewLexerWithSource creates a new Lexer that remembers the file it scans.
func NewLexerWithSource(sf *source.SourceFile) *Lexer {
	l := &Lexer{input: sf.Content, source: sf, line: 1, column: 0}
	l.readChar()
	return l
}

// GetSource returns the source file being scanned.
func (l *Lexer) GetSource() *source.SourceFile {
	return l.source
}

// SaveState captures everything needed to resume scanning from the current point.
func (l *Lexer) SaveState() LexerState {
	return LexerState{
		position:     l.position,
		readPosition: l.readPosition,
		ch:           l.ch,
		line:         l.line,
		column:       l.column,
		prevType:     l.prevType,
	}
}

// RestoreState rewinds the lexer to a state returned by SaveState.
func (l *Lexer) RestoreState(s LexerState) {
	l.position = s.position
	l.readPosition = s.readPosition
	l.ch = s.ch
	l.line = s.line
	l.column = s.column
	l.prevType = s.prevType
}

// readChar gives us the next character and advances our position in the input string.
// It also updates the line and column count.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0 // 0 signifies EOF
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar looks ahead in the input without consuming the character.
func (l *Lexer) peekChar() byte {
	return l.peekCharAt(0)
}

func (l *Lexer) peekCharAt(offset int) byte {
	if l.readPosition+offset >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition+offset]
}

// skipWhitespace consumes whitespace characters and comments.
// It reports false when a block comment is left unterminated.
func (l *Lexer) skipWhitespace() bool {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\v' || l.ch == '\f':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			l.skipComment()
		case l.ch == '/' && l.peekChar() == '*':
			if !l.skipMultilineComment() {
				return false
			}
		default:
			return true
		}
	}
}

// NextToken scans the input and returns the next token.
func (l *Lexer) NextToken() Token {
	tok := l.scan()
	if tok.Type != ILLEGAL {
		l.prevType = tok.Type
	}
	return tok
}

func (l *Lexer) scan() Token {
	startLine, startCol, startPos := l.line, l.column, l.position
	if !l.skipWhitespace() {
		return Token{Type: ILLEGAL, Literal: "unterminated multiline comment", Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	}

	// Capture token start position *after* skipping whitespace
	startLine, startCol, startPos = l.line, l.column, l.position

	// op consumes n characters and builds the operator token.
	op := func(t TokenType, n int) Token {
		for i := 0; i < n; i++ {
			l.readChar()
		}
		return Token{Type: t, Literal: l.input[startPos:l.position], Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	}
	p1, p2, p3 := l.peekChar(), l.peekCharAt(1), l.peekCharAt(2)

	switch l.ch {
	case '=':
		switch {
		case p1 == '=' && p2 == '=':
			return op(STRICT_EQ, 3)
		case p1 == '=':
			return op(EQ, 2)
		case p1 == '>':
			return op(ARROW, 2)
		}
		return op(ASSIGN, 1)
	case '!':
		switch {
		case p1 == '=' && p2 == '=':
			return op(STRICT_NOT_EQ, 3)
		case p1 == '=':
			return op(NOT_EQ, 2)
		}
		return op(BANG, 1)
	case '+':
		switch p1 {
		case '=':
			return op(PLUS_ASSIGN, 2)
		case '+':
			return op(INC, 2)
		}
		return op(PLUS, 1)
	case '-':
		switch p1 {
		case '=':
			return op(MINUS_ASSIGN, 2)
		case '-':
			return op(DEC, 2)
		}
		return op(MINUS, 1)
	case '*':
		switch {
		case p1 == '*' && p2 == '=':
			return op(EXPONENT_ASSIGN, 3)
		case p1 == '*':
			return op(EXPONENT, 2)
		case p1 == '=':
			return op(ASTERISK_ASSIGN, 2)
		}
		return op(ASTERISK, 1)
	case '%':
		if p1 == '=' {
			return op(REMAINDER_ASSIGN, 2)
		}
		return op(REMAINDER, 1)
	case '/':
		if l.regexAllowed() {
			return l.readRegex(startLine, startCol, startPos)
		}
		if p1 == '=' {
			return op(SLASH_ASSIGN, 2)
		}
		return op(SLASH, 1)
	case '&':
		switch {
		case p1 == '&' && p2 == '=':
			return op(LOGICAL_AND_ASSIGN, 3)
		case p1 == '&':
			return op(LOGICAL_AND, 2)
		case p1 == '=':
			return op(BITWISE_AND_ASSIGN, 2)
		}
		return op(BITWISE_AND, 1)
	case '|':
		switch {
		case p1 == '|' && p2 == '=':
			return op(LOGICAL_OR_ASSIGN, 3)
		case p1 == '|':
			return op(LOGICAL_OR, 2)
		case p1 == '=':
			return op(BITWISE_OR_ASSIGN, 2)
		}
		return op(PIPE, 1)
	case '^':
		if p1 == '=' {
			return op(BITWISE_XOR_ASSIGN, 2)
		}
		return op(BITWISE_XOR, 1)
	case '~':
		return op(BITWISE_NOT, 1)
	case '<':
		switch {
		case p1 == '<' && p2 == '=':
			return op(LEFT_SHIFT_ASSIGN, 3)
		case p1 == '<':
			return op(LEFT_SHIFT, 2)
		case p1 == '=':
			return op(LE, 2)
		}
		return op(LT, 1)
	case '>':
		switch {
		case p1 == '>' && p2 == '>' && p3 == '=':
			return op(UNSIGNED_RIGHT_SHIFT_ASSIGN, 4)
		case p1 == '>' && p2 == '>':
			return op(UNSIGNED_RIGHT_SHIFT, 3)
		case p1 == '>' && p2 == '=':
			return op(RIGHT_SHIFT_ASSIGN, 3)
		case p1 == '>':
			return op(RIGHT_SHIFT, 2)
		case p1 == '=':
			return op(GE, 2)
		}
		return op(GT, 1)
	case '?':
		switch {
		case p1 == '?' && p2 == '=':
			return op(COALESCE_ASSIGN, 3)
		case p1 == '?':
			return op(COALESCE, 2)
		case p1 == '.' && !isDigit(p2):
			// a?.5:1 is a ternary with a number, not optional chaining
			return op(OPTIONAL_CHAINING, 2)
		}
		return op(QUESTION, 1)
	case '.':
		if p1 == '.' && p2 == '.' {
			return op(SPREAD, 3)
		}
		if isDigit(p1) {
			literal := l.readNumber()
			return Token{Type: NUMBER, Literal: literal, Raw: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}
		return op(DOT, 1)
	case ';':
		return op(SEMICOLON, 1)
	case ':':
		return op(COLON, 1)
	case ',':
		return op(COMMA, 1)
	case '(':
		return op(LPAREN, 1)
	case ')':
		return op(RPAREN, 1)
	case '{':
		return op(LBRACE, 1)
	case '}':
		return op(RBRACE, 1)
	case '[':
		return op(LBRACKET, 1)
	case ']':
		return op(RBRACKET, 1)
	case '"', '\'':
		literal, ok := l.readString(l.ch)
		endPos := l.position
		if !ok {
			return Token{Type: ILLEGAL, Literal: "invalid string literal", Line: startLine, Column: startCol, StartPos: startPos, EndPos: endPos}
		}
		return Token{Type: STRING, Literal: literal, Raw: l.input[startPos:endPos], Line: startLine, Column: startCol, StartPos: startPos, EndPos: endPos}
	case '`':
		if !l.skipTemplate() {
			return Token{Type: ILLEGAL, Literal: "unterminated template literal", Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}
		raw := l.input[startPos:l.position]
		return Token{Type: TEMPLATE, Literal: raw, Raw: raw, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	case '#':
		if !isLetter(p1) {
			return op(ILLEGAL, 1)
		}
		l.readChar() // Consume '#'
		l.readIdentifier()
		return Token{Type: PRIVATE_NAME, Literal: l.input[startPos:l.position], Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	case 0: // EOF
		return Token{Type: EOF, Literal: "", Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
	default:
		if isLetter(l.ch) {
			literal := l.readIdentifier()
			return Token{Type: LookupIdent(literal), Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		} else if isDigit(l.ch) {
			literal := l.readNumber()
			return Token{Type: NUMBER, Literal: literal, Raw: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}
		// Illegal character
		literal := string(l.ch)
		l.readChar()
		return Token{Type: ILLEGAL, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	}
}

// regexAllowed decides whether a '/' starts a regular expression literal,
// based on whether the previous token can end an operand.
func (l *Lexer) regexAllowed() bool {
	switch l.prevType {
	case IDENT, PRIVATE_NAME, NUMBER, STRING, TEMPLATE, REGEX_LITERAL, RPAREN, RBRACKET,
		TRUE, FALSE, NULL, THIS, SUPER, INC, DEC:
		return false
	}
	return true
}

// readRegex reads /body/flags. The body may contain '/' inside a character class.
func (l *Lexer) readRegex(startLine, startCol, startPos int) Token {
	l.readChar() // Consume opening '/'
	inClass := false
	for {
		switch l.ch {
		case 0, '\n', '\r':
			return Token{Type: ILLEGAL, Literal: "unterminated regular expression", Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		case '\\':
			l.readChar()
			if l.ch == 0 || l.ch == '\n' {
				continue
			}
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				l.readChar() // Consume closing '/'
				flagStart := l.position
				for isLetter(l.ch) {
					l.readChar()
				}
				raw := l.input[startPos:l.position]
				if !validRegexFlags(l.input[flagStart:l.position]) {
					return Token{Type: ILLEGAL, Literal: "invalid regular expression flags", Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
				}
				return Token{Type: REGEX_LITERAL, Literal: raw, Raw: raw, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
			}
		}
		l.readChar()
	}
}

// validRegexFlags accepts each of dgimsuvy at most once.
func validRegexFlags(flags string) bool {
	seen := make(map[rune]bool, len(flags))
	for _, f := range flags {
		if !strings.ContainsRune("dgimsuvy", f) || seen[f] {
			return false
		}
		seen[f] = true
	}
	return true
}

// skipTemplate consumes a template literal including nested ${...}
// substitutions, which may themselves contain strings and templates.
func (l *Lexer) skipTemplate() bool {
	l.readChar() // Consume opening '`'
	for {
		switch l.ch {
		case 0:
			return false
		case '\\':
			l.readChar()
		case '`':
			l.readChar()
			return true
		case '$':
			if l.peekChar() == '{' {
				l.readChar()
				l.readChar()
				if !l.skipSubstitution() {
					return false
				}
				continue
			}
		}
		l.readChar()
	}
}

// skipSubstitution consumes the inside of ${...} up to and including the matching '}'.
func (l *Lexer) skipSubstitution() bool {
	depth := 1
	for {
		switch l.ch {
		case 0:
			return false
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				l.readChar()
				return true
			}
		case '"', '\'':
			if _, ok := l.readString(l.ch); !ok {
				return false
			}
			continue
		case '`':
			if !l.skipTemplate() {
				return false
			}
			continue
		}
		l.readChar()
	}
}

// readIdentifier reads an identifier (letters, digits, _, $) and advances the lexer's position.
func (l *Lexer) readIdentifier() string {
	startPos := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[startPos:l.position]
}

// readNumber reads a number literal (integer or float, various bases) and advances the lexer's position.
// Handles decimal (optional exponent/fraction), hex (0x), binary (0b), octal (0o),
// numeric separators '_' and the BigInt suffix 'n'.
// Returns the raw literal string found.
func (l *Lexer) readNumber() string {
	startPos := l.position
	base := 10

	// 1. Check for base prefix (0x, 0b, 0o)
	if l.ch == '0' {
		switch l.peekChar() {
		case 'x', 'X':
			base = 16
		case 'b', 'B':
			base = 2
		case 'o', 'O':
			base = 8
		}
		if base != 10 {
			l.readChar() // Consume '0'
			l.readChar() // Consume prefix letter
		}
	}

	// 2. Read integer part (handling separators)
	l.readDigits(base)

	// 3. Read fractional part (only for base 10)
	if base == 10 && l.ch == '.' {
		l.readChar() // Consume '.'
		l.readDigits(10)
	}

	// 4. Read exponent part (only for base 10)
	if base == 10 && (l.ch == 'e' || l.ch == 'E') {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekCharAt(1))) {
			l.readChar() // Consume 'e' or 'E'
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			l.readDigits(10)
		}
	}

	// 5. BigInt suffix
	if l.ch == 'n' {
		l.readChar()
	}

	return l.input[startPos:l.position]
}

// readDigits consumes digits of the given base, allowing single '_' separators between digits.
func (l *Lexer) readDigits(base int) {
	lastCharWasDigit := false
	for {
		if isDigitForBase(l.ch, base) {
			l.readChar()
			lastCharWasDigit = true
		} else if l.ch == '_' && lastCharWasDigit && isDigitForBase(l.peekChar(), base) {
			l.readChar()
			lastCharWasDigit = false
		} else {
			return
		}
	}
}

// readString reads a string literal enclosed in the given quote character.
// Returns the cooked string content and a boolean indicating success.
// Success is false if the string is unterminated or a line break appears unescaped.
// Advances the lexer's position to *after* the closing quote if successful.
func (l *Lexer) readString(quote byte) (string, bool) {
	var builder strings.Builder
	l.readChar() // Consume the opening quote

	for {
		if l.ch == quote {
			l.readChar() // Consume the closing quote
			return builder.String(), true
		}
		if l.ch == 0 || l.ch == '\n' || l.ch == '\r' {
			return "", false
		}

		if l.ch == '\\' {
			l.readChar() // Consume the backslash
			if !l.readEscape(&builder) {
				return "", false
			}
			continue
		}
		builder.WriteByte(l.ch)
		l.readChar()
	}
}

// readEscape cooks one escape sequence; l.ch is the character after the backslash.
func (l *Lexer) readEscape(b *strings.Builder) bool {
	switch l.ch {
	case 0:
		return false
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		if isDigit(l.peekChar()) {
			return false // legacy octal escapes are not supported
		}
		b.WriteByte(0)
	case '\r':
		if l.peekChar() == '\n' {
			l.readChar()
		}
	case '\n':
		// Line continuation
	case 'x':
		hex := l.input[l.readPosition:min(l.readPosition+2, len(l.input))]
		v, err := strconv.ParseUint(hex, 16, 8)
		if err != nil || len(hex) != 2 {
			return false
		}
		l.readChar()
		l.readChar()
		b.WriteRune(rune(v))
	case 'u':
		var hex string
		if l.peekChar() == '{' {
			end := strings.IndexByte(l.input[l.readPosition:], '}')
			if end < 0 {
				return false
			}
			hex = l.input[l.readPosition+1 : l.readPosition+end]
			for i := 0; i <= end; i++ { // Stop on the closing '}'
				l.readChar()
			}
		} else {
			hex = l.input[l.readPosition:min(l.readPosition+4, len(l.input))]
			if len(hex) != 4 {
				return false
			}
			for i := 0; i < 4; i++ {
				l.readChar()
			}
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || v > 0x10FFFF {
			return false
		}
		b.WriteRune(rune(v))
	default:
		// Identity escape: \' \" \\ and any other character
		b.WriteByte(l.ch)
	}
	l.readChar()
	return true
}

// skipComment reads until the end of the line.
func (l *Lexer) skipComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// skipMultilineComment reads until the end of the multiline comment.
// It consumes the opening '/*' and the closing '*/'.
// Returns true if the comment is terminated successfully, false otherwise (EOF reached).
func (l *Lexer) skipMultilineComment() bool {
	l.readChar() // Consume '/'
	l.readChar() // Consume '*'

	for {
		if l.ch == 0 {
			return false
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // Consume '*'
			l.readChar() // Consume '/'
			return true
		}
		l.readChar()
	}
}

// isLetter checks if the character can start an identifier.
// Bytes of multi-byte UTF-8 sequences are accepted as identifier characters.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '$' || ch >= 0x80
}

// isDigit checks if the character is a digit.
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// isHexDigit checks if the character is a hexadecimal digit (0-9, a-f, A-F).
func isHexDigit(ch byte) bool {
	return ('0' <= ch && ch <= '9') || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

// isDigitForBase checks if the character is a valid digit for the given base.
func isDigitForBase(ch byte, base int) bool {
	switch base {
	case 16:
		return isHexDigit(ch)
	case 10:
		return isDigit(ch)
	case 8:
		return '0' <= ch && ch <= '7'
	case 2:
		return ch == '0' || ch == '1'
	default:
		return false
	}
}
