package interpreter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zurustar/like/pkg/compiler"
	"github.com/zurustar/like/pkg/compiler/ast"
	"github.com/zurustar/like/pkg/compiler/lexer"
)

// runSource parses and evaluates src, returning the value, the print output
// and the evaluation error. Syntax errors fail the test.
func runSource(t *testing.T, src string) (Value, string, error) {
	t.Helper()
	prog, errs := compiler.Parse(src)
	require.Empty(t, errs, "source should parse")

	var out bytes.Buffer
	in := New(WithOutput(&out))
	v, err := in.Run(context.Background(), prog.Root)
	return v, out.String(), err
}

// evalIn parses src and evaluates it against env.
func evalIn(t *testing.T, in *Interpreter, env *Env, src string) (Value, error) {
	t.Helper()
	prog, errs := compiler.Parse(src)
	require.Empty(t, errs, "source should parse")
	return in.Eval(context.Background(), env, prog.Root)
}

func readSample(t *testing.T, file string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "samples", file))
	require.NoError(t, err)
	return string(data)
}

// Tree builders for tests that bypass the parser.

func tokAt(lit string, line, column int) lexer.Token {
	return lexer.Token{Literal: lit, Line: line, Column: column}
}

func tok(lit string) lexer.Token { return tokAt(lit, 1, 1) }

func num(v float64) ast.Node {
	return ast.Leaf(ast.KindNumber, tok(strconv.FormatFloat(v, 'g', -1, 64)))
}

func str(s string) ast.Node { return ast.Leaf(ast.KindString, tok(s)) }

func ref(name string) ast.Node { return ast.Leaf(ast.KindExistingIdent, tok(name)) }

func bind(n string) ast.Node { return ast.Leaf(ast.KindIdentifier, tok(n)) }

func op(kind ast.Kind) ast.Node { return ast.Leaf(kind, tok("")) }

func binary(left ast.Node, kind ast.Kind, right ast.Node) ast.Node {
	return ast.New(ast.KindExpression, tok(""), left, op(kind), right)
}

func assign(n string, value ast.Node) ast.Node {
	return ast.New(ast.KindAssignment, tok(n), bind(n), value)
}

func fnDef(n string, params []string, body ...ast.Node) ast.Node {
	ps := ast.New(ast.KindParams, tok("("))
	for _, p := range params {
		ps.Items = append(ps.Items, bind(p))
	}
	return ast.New(ast.KindFunction, tok("fn"), bind(n), ps, ast.New(ast.KindBlock, tok("{"), body...))
}

func call(n string, args ...ast.Node) ast.Node {
	return ast.New(ast.KindFuncCall, tok(n), bind(n), ast.New(ast.KindArgs, tok("("), args...))
}

func collectDecl(n, pattern string) ast.Node {
	return ast.New(ast.KindCollect, tok("collect"), bind(n), ast.Leaf(ast.KindPattern, tok(pattern)))
}

func collectCall(first, second string, args ...ast.Node) ast.Node {
	return ast.New(ast.KindCollectCall, tok(first), bind(first), bind(second), ast.New(ast.KindArgs, tok("("), args...))
}

func program(stmts ...ast.Node) ast.Node {
	return ast.New(ast.KindStart, tok(""), stmts...)
}
