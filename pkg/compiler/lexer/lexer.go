package lexer

import (
	"fmt"
	"strings"
)

// LexerError describes a malformed token.
type LexerError struct {
	Message string
	Line    int
	Column  int
}

// Error implements the error interface.
func (e *LexerError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Lexer tokenizes like source code.
type Lexer struct {
	input        string
	position     int  // current position in input
	readPosition int  // current reading position (after current char)
	ch           byte // current char
	line         int  // current line number
	column       int  // current column number

	// last three significant token types, most recent last.
	// A '/' directly after `collect IDENT =` opens a pattern literal.
	history [3]TokenType

	errors []*LexerError
}

// New creates a new Lexer.
func New(input string) *Lexer {
	l := &Lexer{
		input:   input,
		line:    1,
		column:  0,
		history: [3]TokenType{TOKEN_ILLEGAL, TOKEN_ILLEGAL, TOKEN_ILLEGAL},
	}
	l.readChar()
	return l
}

// Errors returns the lexical errors encountered so far.
func (l *Lexer) Errors() []*LexerError {
	return l.errors
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	tok := l.scan()
	if tok.Type != TOKEN_COMMENT {
		l.history[0], l.history[1], l.history[2] = l.history[1], l.history[2], tok.Type
	}
	return tok
}

// Tokenize reads the whole input and returns every non-comment token,
// ending with TOKEN_EOF. The first lexical error, if any, is returned
// alongside the tokens.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == TOKEN_COMMENT {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == TOKEN_EOF {
			break
		}
	}
	if len(l.errors) > 0 {
		return tokens, l.errors[0]
	}
	return tokens, nil
}

func (l *Lexer) scan() Token {
	var tok Token

	l.skipWhitespace()

	tok.Line = l.line
	tok.Column = l.column

	switch l.ch {
	case '=':
		tok = l.newToken(TOKEN_ASSIGN, l.ch)
	case '+':
		tok = l.newToken(TOKEN_PLUS, l.ch)
	case '-':
		tok = l.newToken(TOKEN_MINUS, l.ch)
	case '*':
		tok = l.newToken(TOKEN_ASTERISK, l.ch)
	case '/':
		if l.expectsPattern() {
			return l.readPattern(tok.Line, tok.Column)
		}
		if l.peekChar() == '/' {
			tok.Type = TOKEN_COMMENT
			tok.Literal = l.readComment()
			return tok
		} else if l.peekChar() == '*' {
			tok.Type = TOKEN_COMMENT
			tok.Literal = l.readMultiLineComment()
			return tok
		}
		tok = l.newToken(TOKEN_SLASH, l.ch)
	case '(':
		tok = l.newToken(TOKEN_LPAREN, l.ch)
	case ')':
		tok = l.newToken(TOKEN_RPAREN, l.ch)
	case '{':
		tok = l.newToken(TOKEN_LBRACE, l.ch)
	case '}':
		tok = l.newToken(TOKEN_RBRACE, l.ch)
	case ',':
		tok = l.newToken(TOKEN_COMMA, l.ch)
	case ';':
		tok = l.newToken(TOKEN_SEMICOLON, l.ch)
	case '.':
		tok = l.newToken(TOKEN_DOT, l.ch)
	case '"':
		return l.readString(tok.Line, tok.Column)
	case 0:
		tok.Literal = ""
		tok.Type = TOKEN_EOF
		return tok
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		} else if isDigit(l.ch) {
			return l.readNumber(tok.Line, tok.Column)
		}
		tok = l.newToken(TOKEN_ILLEGAL, l.ch)
		l.addError(tok.Line, tok.Column, "illegal character %q", l.ch)
	}

	l.readChar()
	return tok
}

// expectsPattern reports whether the token stream so far is `collect IDENT =`.
func (l *Lexer) expectsPattern() bool {
	return l.history[0] == TOKEN_COLLECT && l.history[1] == TOKEN_IDENT && l.history[2] == TOKEN_ASSIGN
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// readIdentifier reads an identifier.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a number (integer, fraction, exponent, or hexadecimal).
func (l *Lexer) readNumber(line, column int) Token {
	position := l.position

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar() // consume '0'
		l.readChar() // consume 'x' or 'X'

		if !isHexDigit(l.ch) {
			l.addError(line, column, "malformed hexadecimal literal %q", l.input[position:l.position])
			return Token{Type: TOKEN_ILLEGAL, Literal: l.input[position:l.position], Line: line, Column: column}
		}
		for isHexDigit(l.ch) {
			l.readChar()
		}
		return Token{Type: TOKEN_NUMBER, Literal: l.input[position:l.position], Line: line, Column: column}
	}

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && l.readPosition+1 < len(l.input) && isDigit(l.input[l.readPosition+1])) {
			l.readChar() // consume 'e'
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	return Token{Type: TOKEN_NUMBER, Literal: l.input[position:l.position], Line: line, Column: column}
}

// readString reads a double-quoted string literal and resolves escapes.
func (l *Lexer) readString(line, column int) Token {
	var buf strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case '"':
			l.readChar()
			return Token{Type: TOKEN_STRING, Literal: buf.String(), Line: line, Column: column}
		case 0:
			l.addError(line, column, "unterminated string literal")
			return Token{Type: TOKEN_ILLEGAL, Literal: "\"" + buf.String(), Line: line, Column: column}
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			case 'r':
				buf.WriteByte('\r')
			case '"', '\\':
				buf.WriteByte(l.ch)
			case 0:
				l.addError(line, column, "unterminated string literal")
				return Token{Type: TOKEN_ILLEGAL, Literal: "\"" + buf.String(), Line: line, Column: column}
			default:
				buf.WriteByte('\\')
				buf.WriteByte(l.ch)
			}
		default:
			buf.WriteByte(l.ch)
		}
	}
}

// readPattern reads a /.../ collect pattern. The literal excludes the slashes.
func (l *Lexer) readPattern(line, column int) Token {
	position := l.position + 1
	for {
		l.readChar()
		if l.ch == '/' {
			literal := l.input[position:l.position]
			l.readChar()
			return Token{Type: TOKEN_PATTERN, Literal: literal, Line: line, Column: column}
		}
		if l.ch == 0 || l.ch == '\n' {
			l.addError(line, column, "unterminated collect pattern")
			return Token{Type: TOKEN_ILLEGAL, Literal: "/" + l.input[position:l.position], Line: line, Column: column}
		}
	}
}

// readComment reads a single-line comment.
func (l *Lexer) readComment() string {
	position := l.position
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readMultiLineComment reads a multi-line comment /* ... */
func (l *Lexer) readMultiLineComment() string {
	position := l.position
	l.readChar() // consume /
	l.readChar() // consume *

	for {
		if l.ch == 0 {
			break
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // consume *
			l.readChar() // consume /
			break
		}
		l.readChar()
	}

	return l.input[position:l.position]
}

// skipWhitespace skips whitespace characters.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// newToken creates a new token.
func (l *Lexer) newToken(tokenType TokenType, ch byte) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: l.line, Column: l.column}
}

func (l *Lexer) addError(line, column int, format string, args ...any) {
	l.errors = append(l.errors, &LexerError{
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
	})
}

// isLetter checks if a character may start an identifier.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch >= 0x80
}

// isDigit checks if a character is a digit.
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// isHexDigit checks if a character is a hexadecimal digit.
func isHexDigit(ch byte) bool {
	return ('0' <= ch && ch <= '9') || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}
