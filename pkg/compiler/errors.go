package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zurustar/like/pkg/compiler/lexer"
	"github.com/zurustar/like/pkg/compiler/parser"
)

// CompileError is a syntax error with its location and a rendering of the
// surrounding source.
type CompileError struct {
	// Phase is "lexer" or "parser".
	Phase string

	Message string

	// Line and Column are 1-indexed.
	Line   int
	Column int

	// Context holds up to two lines either side of the error line, with a
	// caret under the error column.
	Context string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s error at line %d, column %d: %s\n%s",
			e.Phase, e.Line, e.Column, e.Message, e.Context)
	}
	return fmt.Sprintf("%s error at line %d, column %d: %s",
		e.Phase, e.Line, e.Column, e.Message)
}

// NewLexerErrorWithContext creates a lexer-phase CompileError with source context.
func NewLexerErrorWithContext(message string, line, column int, source string) *CompileError {
	return &CompileError{
		Phase:   "lexer",
		Message: message,
		Line:    line,
		Column:  column,
		Context: GenerateErrorContext(source, line, column),
	}
}

// NewParserErrorWithContext creates a parser-phase CompileError with source context.
func NewParserErrorWithContext(message string, line, column int, source string) *CompileError {
	return &CompileError{
		Phase:   "parser",
		Message: message,
		Line:    line,
		Column:  column,
		Context: GenerateErrorContext(source, line, column),
	}
}

// withContext converts lexer and parser errors into CompileErrors.
// Other errors pass through unchanged.
func withContext(err error, source string) error {
	var le *lexer.LexerError
	if errors.As(err, &le) {
		return NewLexerErrorWithContext(le.Message, le.Line, le.Column, source)
	}
	var pe *parser.ParserError
	if errors.As(err, &pe) {
		return NewParserErrorWithContext(pe.Message, pe.Line, pe.Column, source)
	}
	return err
}

// GenerateErrorContext renders the lines around an error location.
//
// Example output:
//
//	  2 | x = 5
//	  3 | y = 10
//	> 4 | z = * 2
//	    |     ^
//	  5 | w = 20
//	  6 | v = 30
func GenerateErrorContext(source string, line, column int) string {
	if source == "" || line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}

	start := max(line-3, 0)
	end := min(line+2, len(lines))

	var buf strings.Builder
	lineNumWidth := len(fmt.Sprintf("%d", end))

	for i := start; i < end; i++ {
		lineNum := i + 1
		lineContent := strings.TrimRight(lines[i], "\r")

		if lineNum != line {
			fmt.Fprintf(&buf, "  %*d | %s\n", lineNumWidth, lineNum, lineContent)
			continue
		}

		fmt.Fprintf(&buf, "> %*d | %s\n", lineNumWidth, lineNum, lineContent)
		// The pointer line keeps the gutter so the caret lines up with the text.
		fmt.Fprintf(&buf, "  %s | %s^\n", strings.Repeat(" ", lineNumWidth), strings.Repeat(" ", max(column-1, 0)))
	}

	return buf.String()
}
