package parser

import (
	"strings"
	"testing"

	"github.com/zurustar/like/pkg/compiler/ast"
	"github.com/zurustar/like/pkg/compiler/lexer"
)

func parse(t *testing.T, input string) *ast.Tree {
	t.Helper()
	p := New(lexer.New(input))
	program, errs := p.ParseProgram()
	checkParserErrors(t, errs)
	return program
}

func checkParserErrors(t *testing.T, errs []error) {
	t.Helper()
	if len(errs) == 0 {
		return
	}
	t.Errorf("parser has %d errors", len(errs))
	for _, err := range errs {
		t.Errorf("parser error: %v", err)
	}
	t.FailNow()
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"x = 1", "(start (assignment (identifier x) (number 1)))"},
		{"x", "(start (existing_ident x))"},
		{`"hi"`, `(start (string "hi"))`},
		{"-2.5", "(start (number -2.5))"},
		{"1 + 2", "(start (expression (number 1) (add) (number 2)))"},
		{"a - b", "(start (expression (existing_ident a) (sub) (existing_ident b)))"},
		{"a * b", "(start (expression (existing_ident a) (mul) (existing_ident b)))"},
		{"a / b", "(start (expression (existing_ident a) (div) (existing_ident b)))"},
		{"(x)", "(start (expression (existing_ident x)))"},
		{"f()", "(start (func_call (identifier f) (args)))"},
		{"f(1, x)", "(start (func_call (identifier f) (args (number 1) (existing_ident x))))"},
		{"area.square(2)", "(start (collect_call (identifier area) (identifier square) (args (number 2))))"},
		{"collect area = /area_*/", "(start (collect (identifier area) (pattern area_*)))"},
		{"collect h = /*_handler/", "(start (collect (identifier h) (pattern *_handler)))"},
		{"{ x }", "(start (block (existing_ident x)))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := parse(t, tt.input)
			if got := program.String(); got != tt.expected {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			"1 + 2 * 3",
			"(start (expression (number 1) (add) (expression (number 2) (mul) (number 3))))",
		},
		{
			"1 * 2 + 3",
			"(start (expression (expression (number 1) (mul) (number 2)) (add) (number 3)))",
		},
		{
			"1 - 2 - 3",
			"(start (expression (expression (number 1) (sub) (number 2)) (sub) (number 3)))",
		},
		{
			"(1 + 2) * 3",
			"(start (expression (expression (expression (number 1) (add) (number 2))) (mul) (number 3)))",
		},
		{
			"x = y = 2",
			"(start (assignment (identifier x) (assignment (identifier y) (number 2))))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parse(t, tt.input).String(); got != tt.expected {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestFunctionDefinition(t *testing.T) {
	program := parse(t, `
fn add(a, b) {
	a + b
}
`)

	if len(program.Items) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Items))
	}

	fn := program.Items[0]
	if fn.Kind() != ast.KindFunction {
		t.Fatalf("expected function, got %s", fn.Kind())
	}

	children := fn.Children()
	if len(children) != 3 {
		t.Fatalf("function should have 3 children, got %d", len(children))
	}
	if children[0].TokenLiteral() != "add" {
		t.Errorf("function name = %q, want add", children[0].TokenLiteral())
	}
	if got := children[1].String(); got != "(params (identifier a) (identifier b))" {
		t.Errorf("params = %s", got)
	}
	if got := children[2].String(); got != "(block (expression (existing_ident a) (add) (existing_ident b)))" {
		t.Errorf("body = %s", got)
	}
}

func TestFunctionWithoutParams(t *testing.T) {
	program := parse(t, `fn hello() { print("hello") }`)
	expected := `(start (function (identifier hello) (params) (block (func_call (identifier print) (args (string "hello"))))))`
	if got := program.String(); got != expected {
		t.Errorf("got %s, want %s", got, expected)
	}
}

func TestStatementSeparators(t *testing.T) {
	program := parse(t, "x = 1; y = 2\nz = x + y;;")
	if len(program.Items) != 3 {
		t.Fatalf("expected 3 statements, got %d: %s", len(program.Items), program)
	}
	for i, name := range []string{"x", "y", "z"} {
		if program.Items[i].Kind() != ast.KindAssignment {
			t.Errorf("statement %d: expected assignment, got %s", i, program.Items[i].Kind())
		}
		if program.Items[i].TokenLiteral() != name {
			t.Errorf("statement %d: assigned %q, want %q", i, program.Items[i].TokenLiteral(), name)
		}
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	program := parse(t, `
// leading
x = 1 /* inline */ + 2
/* trailing */
`)
	expected := "(start (assignment (identifier x) (expression (number 1) (add) (number 2))))"
	if got := program.String(); got != expected {
		t.Errorf("got %s, want %s", got, expected)
	}
}

func TestNodePositions(t *testing.T) {
	program := parse(t, "x = 1\n  y = f(2)")

	second := program.Items[1]
	if tok := second.Token(); tok.Line != 2 || tok.Column != 3 {
		t.Errorf("assignment at %d:%d, want 2:3", tok.Line, tok.Column)
	}

	call := second.Children()[1]
	if call.Kind() != ast.KindFuncCall {
		t.Fatalf("expected func_call, got %s", call.Kind())
	}
	if tok := call.Token(); tok.Line != 2 || tok.Column != 7 {
		t.Errorf("call at %d:%d, want 2:7", tok.Line, tok.Column)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input    string
		contains string
	}{
		{"fn (a) {}", "expected next token to be IDENT"},
		{"fn f(a {}", "expected next token to be )"},
		{"fn f() { x", "unterminated block"},
		{"collect = /a*/", "expected next token to be IDENT"},
		{"collect c /a*/", "expected next token to be ="},
		{"f(1, 2", "expected next token to be )"},
		{"a.(1)", "expected next token to be IDENT"},
		{"-x", "unary minus"},
		{"1 + )", "unexpected"},
		{"x = ", "end of input"},
		{`fn "x"`, `got STRING "x" instead`},
		{"fn f(1) {}", `got NUMBER "1" instead`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, errs := New(lexer.New(tt.input)).ParseProgram()
			if len(errs) == 0 {
				t.Fatalf("expected errors for %q", tt.input)
			}
			found := false
			for _, err := range errs {
				if strings.Contains(err.Error(), tt.contains) {
					found = true
				}
			}
			if !found {
				t.Errorf("no error containing %q in %v", tt.contains, errs)
			}
		})
	}
}

func TestLexerErrorsAreReported(t *testing.T) {
	_, errs := New(lexer.New(`x = "open`)).ParseProgram()
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %v", len(errs), errs)
	}
	if _, ok := errs[0].(*lexer.LexerError); !ok {
		t.Errorf("expected *lexer.LexerError, got %T", errs[0])
	}
}

func TestParserErrorPosition(t *testing.T) {
	_, errs := New(lexer.New("x = 1\nfn 2")).ParseProgram()
	if len(errs) == 0 {
		t.Fatal("expected an error")
	}
	perr, ok := errs[0].(*ParserError)
	if !ok {
		t.Fatalf("expected *ParserError, got %T", errs[0])
	}
	if perr.Line != 2 || perr.Column != 4 {
		t.Errorf("error at %d:%d, want 2:4", perr.Line, perr.Column)
	}
}
