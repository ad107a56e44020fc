// Package parser turns like source into the ast.Tree shape the interpreter walks.
package parser

import (
	"fmt"

	"github.com/zurustar/like/pkg/compiler/ast"
	"github.com/zurustar/like/pkg/compiler/lexer"
)

// Precedence levels for operators.
const (
	_ int = iota
	LOWEST
	SUM     // + -
	PRODUCT // * /
)

var precedences = map[lexer.TokenType]int{
	lexer.TOKEN_PLUS:     SUM,
	lexer.TOKEN_MINUS:    SUM,
	lexer.TOKEN_ASTERISK: PRODUCT,
	lexer.TOKEN_SLASH:    PRODUCT,
}

var operatorKinds = map[lexer.TokenType]ast.Kind{
	lexer.TOKEN_PLUS:     ast.KindAdd,
	lexer.TOKEN_MINUS:    ast.KindSub,
	lexer.TOKEN_ASTERISK: ast.KindMul,
	lexer.TOKEN_SLASH:    ast.KindDiv,
}

// ParserError represents a syntax error with its location.
type ParserError struct {
	Message string
	Line    int
	Column  int
}

// Error implements the error interface.
func (e *ParserError) Error() string {
	return fmt.Sprintf("parser error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Parser parses like source code into an AST.
type Parser struct {
	l      *lexer.Lexer
	errors []error

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Node
	infixParseFn  func(ast.Node) ast.Node
)

// New creates a new Parser.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []error{},
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.TOKEN_IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.TOKEN_NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.TOKEN_STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TOKEN_MINUS, p.parseNegativeNumber)
	p.registerPrefix(lexer.TOKEN_LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	p.registerInfix(lexer.TOKEN_PLUS, p.parseInfixExpression)
	p.registerInfix(lexer.TOKEN_MINUS, p.parseInfixExpression)
	p.registerInfix(lexer.TOKEN_ASTERISK, p.parseInfixExpression)
	p.registerInfix(lexer.TOKEN_SLASH, p.parseInfixExpression)

	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// Errors returns the lexer and parser errors collected so far.
func (p *Parser) Errors() []error {
	errs := make([]error, 0, len(p.l.Errors())+len(p.errors))
	for _, e := range p.l.Errors() {
		errs = append(errs, e)
	}
	return append(errs, p.errors...)
}

// ParseProgram parses the entire program into a start node.
// The tree is returned even when errors were found, holding every
// statement that parsed.
func (p *Parser) ParseProgram() (*ast.Tree, []error) {
	program := ast.New(ast.KindStart, p.curToken)

	for !p.curTokenIs(lexer.TOKEN_EOF) {
		if p.curTokenIs(lexer.TOKEN_SEMICOLON) {
			p.nextToken()
			continue
		}

		stmt := p.parseStatement()
		if stmt != nil {
			program.Items = append(program.Items, stmt)
		}
		p.nextToken()
	}

	return program, p.Errors()
}

// nextToken advances the token window, dropping comments.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	for p.peekToken.Type == lexer.TOKEN_COMMENT {
		p.peekToken = p.l.NextToken()
	}
}

func (p *Parser) parseStatement() ast.Node {
	var stmt ast.Node
	switch p.curToken.Type {
	case lexer.TOKEN_FN:
		stmt = p.parseFunction()
	case lexer.TOKEN_COLLECT:
		stmt = p.parseCollect()
	case lexer.TOKEN_LBRACE:
		stmt = p.parseBlock()
	default:
		stmt = p.parseExpression(LOWEST)
	}

	if p.peekTokenIs(lexer.TOKEN_SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

// parseFunction parses `fn name(params) { body }`.
func (p *Parser) parseFunction() ast.Node {
	fnTok := p.curToken

	if !p.expectPeek(lexer.TOKEN_IDENT) {
		return nil
	}
	name := ast.Leaf(ast.KindIdentifier, p.curToken)

	if !p.expectPeek(lexer.TOKEN_LPAREN) {
		return nil
	}
	params := p.parseParams()
	if params == nil {
		return nil
	}

	if !p.expectPeek(lexer.TOKEN_LBRACE) {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}

	return ast.New(ast.KindFunction, fnTok, name, params, body)
}

// parseParams parses a parenthesised identifier list; curToken is '('.
func (p *Parser) parseParams() *ast.Tree {
	params := ast.New(ast.KindParams, p.curToken)

	if p.peekTokenIs(lexer.TOKEN_RPAREN) {
		p.nextToken()
		return params
	}

	if !p.expectPeek(lexer.TOKEN_IDENT) {
		return nil
	}
	params.Items = append(params.Items, ast.Leaf(ast.KindIdentifier, p.curToken))

	for p.peekTokenIs(lexer.TOKEN_COMMA) {
		p.nextToken()
		if !p.expectPeek(lexer.TOKEN_IDENT) {
			return nil
		}
		params.Items = append(params.Items, ast.Leaf(ast.KindIdentifier, p.curToken))
	}

	if !p.expectPeek(lexer.TOKEN_RPAREN) {
		return nil
	}
	return params
}

// parseBlock parses `{ statement* }`; curToken is '{'.
func (p *Parser) parseBlock() ast.Node {
	block := ast.New(ast.KindBlock, p.curToken)
	p.nextToken()

	for !p.curTokenIs(lexer.TOKEN_RBRACE) {
		if p.curTokenIs(lexer.TOKEN_EOF) {
			p.addError(block.Tok, "unterminated block: expected }")
			return nil
		}
		if p.curTokenIs(lexer.TOKEN_SEMICOLON) {
			p.nextToken()
			continue
		}

		stmt := p.parseStatement()
		if stmt != nil {
			block.Items = append(block.Items, stmt)
		}
		p.nextToken()
	}

	return block
}

// parseCollect parses `collect name = /pattern/`.
func (p *Parser) parseCollect() ast.Node {
	collectTok := p.curToken

	if !p.expectPeek(lexer.TOKEN_IDENT) {
		return nil
	}
	name := ast.Leaf(ast.KindIdentifier, p.curToken)

	if !p.expectPeek(lexer.TOKEN_ASSIGN) {
		return nil
	}
	if !p.expectPeek(lexer.TOKEN_PATTERN) {
		return nil
	}

	return ast.New(ast.KindCollect, collectTok, name, ast.Leaf(ast.KindPattern, p.curToken))
}

func (p *Parser) parseExpression(precedence int) ast.Node {
	if p.curTokenIs(lexer.TOKEN_IDENT) && p.peekTokenIs(lexer.TOKEN_ASSIGN) {
		return p.parseAssignment()
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for !p.peekTokenIs(lexer.TOKEN_SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

// parseAssignment parses `name = expression`. Assignment is right associative.
func (p *Parser) parseAssignment() ast.Node {
	nameTok := p.curToken
	name := ast.Leaf(ast.KindIdentifier, nameTok)

	p.nextToken() // consume name, cur is '='
	p.nextToken()

	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	return ast.New(ast.KindAssignment, nameTok, name, value)
}

// parseIdentifier handles plain references, calls and collect calls.
func (p *Parser) parseIdentifier() ast.Node {
	identTok := p.curToken

	switch {
	case p.peekTokenIs(lexer.TOKEN_LPAREN):
		p.nextToken()
		args := p.parseArgs()
		if args == nil {
			return nil
		}
		return ast.New(ast.KindFuncCall, identTok, ast.Leaf(ast.KindIdentifier, identTok), args)

	case p.peekTokenIs(lexer.TOKEN_DOT):
		p.nextToken()
		if !p.expectPeek(lexer.TOKEN_IDENT) {
			return nil
		}
		postfixTok := p.curToken
		if !p.expectPeek(lexer.TOKEN_LPAREN) {
			return nil
		}
		args := p.parseArgs()
		if args == nil {
			return nil
		}
		return ast.New(ast.KindCollectCall, identTok,
			ast.Leaf(ast.KindIdentifier, identTok),
			ast.Leaf(ast.KindIdentifier, postfixTok),
			args,
		)
	}

	return ast.Leaf(ast.KindExistingIdent, identTok)
}

// parseArgs parses a parenthesised argument list; curToken is '('.
func (p *Parser) parseArgs() *ast.Tree {
	args := ast.New(ast.KindArgs, p.curToken)

	if p.peekTokenIs(lexer.TOKEN_RPAREN) {
		p.nextToken()
		return args
	}

	p.nextToken()
	arg := p.parseExpression(LOWEST)
	if arg == nil {
		return nil
	}
	args.Items = append(args.Items, arg)

	for p.peekTokenIs(lexer.TOKEN_COMMA) {
		p.nextToken()
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		args.Items = append(args.Items, arg)
	}

	if !p.expectPeek(lexer.TOKEN_RPAREN) {
		return nil
	}
	return args
}

func (p *Parser) parseNumberLiteral() ast.Node {
	if _, err := ast.ParseNumber(p.curToken.Literal); err != nil {
		p.addError(p.curToken, "could not parse %q as number", p.curToken.Literal)
		return nil
	}
	return ast.Leaf(ast.KindNumber, p.curToken)
}

// parseNegativeNumber folds a leading '-' into the following number literal.
func (p *Parser) parseNegativeNumber() ast.Node {
	minusTok := p.curToken
	if !p.peekTokenIs(lexer.TOKEN_NUMBER) {
		p.addError(minusTok, "unary minus is only allowed before a number literal")
		return nil
	}
	p.nextToken()

	tok := p.curToken
	tok.Literal = "-" + tok.Literal
	tok.Line, tok.Column = minusTok.Line, minusTok.Column
	if _, err := ast.ParseNumber(tok.Literal); err != nil {
		p.addError(tok, "could not parse %q as number", tok.Literal)
		return nil
	}
	return ast.Leaf(ast.KindNumber, tok)
}

func (p *Parser) parseStringLiteral() ast.Node {
	return ast.Leaf(ast.KindString, p.curToken)
}

// parseGroupedExpression yields the single-operand expression form.
func (p *Parser) parseGroupedExpression() ast.Node {
	lparen := p.curToken
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(lexer.TOKEN_RPAREN) {
		return nil
	}

	return ast.New(ast.KindExpression, lparen, exp)
}

func (p *Parser) parseInfixExpression(left ast.Node) ast.Node {
	opTok := p.curToken
	op := ast.Leaf(operatorKinds[opTok.Type], opTok)

	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}

	return ast.New(ast.KindExpression, opTok, left, op, right)
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) peekError(t lexer.TokenType) {
	// The lexer has already reported illegal tokens.
	if p.peekTokenIs(lexer.TOKEN_ILLEGAL) {
		return
	}
	p.addError(p.peekToken, "expected next token to be %s, got %s instead", t, describe(p.peekToken))
}

func (p *Parser) noPrefixParseFnError(tok lexer.Token) {
	if tok.Type == lexer.TOKEN_ILLEGAL {
		return
	}
	p.addError(tok, "unexpected %s", describe(tok))
}

func (p *Parser) addError(tok lexer.Token, format string, args ...any) {
	p.errors = append(p.errors, &ParserError{
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
	})
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TOKEN_EOF:
		return "end of input"
	}
	if tok.Type.IsLiteral() {
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	}
	return fmt.Sprintf("%q", tok.Type.String())
}
