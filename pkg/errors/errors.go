package errors

import (
	"fmt"
	"io"
	"strings"
)

// CodemodError is the interface implemented by all positioned codemod errors.
type CodemodError interface {
	error // Embed the standard error interface
	Pos() Position
	Kind() string // e.g., "Syntax", "Transform"
	// Message returns the specific error message without position info.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// SyntaxError represents an error during lexing or parsing.
type SyntaxError struct {
	Position
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at %s: %s", e.Position, e.Msg)
}
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }
func (e *SyntaxError) Unwrap() error   { return e.Cause }
func (e *SyntaxError) CausedBy(cause error) *SyntaxError {
	e.Cause = cause
	return e
}

// TransformError represents a failure after parsing: an emitted program that
// does not verify, or a rewrite the host could not apply.
type TransformError struct {
	Position
	Rule  string // Key of the rule involved, if any
	Msg   string
	Cause error
}

func (e *TransformError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("Transform Error at %s [%s]: %s", e.Position, e.Rule, e.Msg)
	}
	return fmt.Sprintf("Transform Error at %s: %s", e.Position, e.Msg)
}
func (e *TransformError) Pos() Position   { return e.Position }
func (e *TransformError) Kind() string    { return "Transform" }
func (e *TransformError) Message() string { return e.Msg }
func (e *TransformError) Unwrap() error   { return e.Cause }
func (e *TransformError) CausedBy(cause error) *TransformError {
	e.Cause = cause
	return e
}

// --- Error Reporting ---

// DisplayErrors writes a list of codemod errors to w in a user-friendly format,
// including the source line and position marker.
func DisplayErrors(w io.Writer, source string, errs []CodemodError) {
	if len(errs) == 0 {
		return
	}

	lines := strings.Split(source, "\n")

	for _, err := range errs {
		pos := err.Pos()
		kind := err.Kind()
		msg := err.Message()

		// Ensure line numbers are within bounds (1-based index)
		lineIdx := pos.Line - 1
		if lineIdx < 0 || lineIdx >= len(lines) {
			fmt.Fprintf(w, "%s Error: %s\n", kind, msg)
			continue
		}

		sourceLine := lines[lineIdx]
		trimmedLine := strings.TrimRight(sourceLine, "\r\n\t ")

		// Format: <Kind> Error at <file>:<Line>:<Column>: <Message>
		fmt.Fprintf(w, "%s Error at %s: %s\n", kind, pos, msg)
		fmt.Fprintf(w, "  %s\n", trimmedLine)

		// Column is 1-based, the marker sits under the offending character.
		col := pos.Column - 1
		if col < 0 {
			col = 0
		}
		fmt.Fprintf(w, "  %s^\n", strings.Repeat(" ", col))
		fmt.Fprintln(w)
	}
}
