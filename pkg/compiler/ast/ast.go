// Package ast defines the syntax tree consumed by the interpreter.
//
// Every node is a kind tag plus an ordered list of children, the shape a
// generic grammar-driven parser produces. Leaf nodes (numbers, strings,
// identifiers, operators, patterns) carry their source token instead of
// children.
package ast

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/zurustar/like/pkg/compiler/lexer"
)

// Kind names a grammar production.
type Kind int

const (
	KindInvalid Kind = iota

	KindStart         // start: statement*
	KindBlock         // block: statement*
	KindExpression    // expression: operand | operand op operand
	KindAdd           // add operator leaf
	KindSub           // sub operator leaf
	KindMul           // mul operator leaf
	KindDiv           // div operator leaf
	KindNumber        // number leaf
	KindString        // string leaf
	KindIdentifier    // identifier leaf naming a binding site
	KindExistingIdent // identifier leaf referring to an existing binding
	KindAssignment    // assignment: identifier expression
	KindStartFn       // start_fn marker
	KindEndFn         // end_fn marker
	KindFunction      // function: identifier params block
	KindParams        // params: identifier*
	KindArgs          // args: expression*
	KindFuncCall      // func_call: identifier args
	KindCollect       // collect: identifier pattern
	KindPattern       // pattern leaf, e.g. foo_*
	KindCollectCall   // collect_call: identifier identifier args
)

var kindNames = map[Kind]string{
	KindInvalid:       "invalid",
	KindStart:         "start",
	KindBlock:         "block",
	KindExpression:    "expression",
	KindAdd:           "add",
	KindSub:           "sub",
	KindMul:           "mul",
	KindDiv:           "div",
	KindNumber:        "number",
	KindString:        "string",
	KindIdentifier:    "identifier",
	KindExistingIdent: "existing_ident",
	KindAssignment:    "assignment",
	KindStartFn:       "start_fn",
	KindEndFn:         "end_fn",
	KindFunction:      "function",
	KindParams:        "params",
	KindArgs:          "args",
	KindFuncCall:      "func_call",
	KindCollect:       "collect",
	KindPattern:       "pattern",
	KindCollectCall:   "collect_call",
}

// String returns the grammar name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsLeaf reports whether nodes of this kind carry a token rather than children.
func (k Kind) IsLeaf() bool {
	switch k {
	case KindAdd, KindSub, KindMul, KindDiv,
		KindNumber, KindString, KindIdentifier, KindExistingIdent,
		KindPattern, KindStartFn, KindEndFn:
		return true
	}
	return false
}

// Node is the interface for all AST nodes.
type Node interface {
	Kind() Kind
	Children() []Node
	Token() lexer.Token
	TokenLiteral() string
	String() string
}

// Tree is the concrete Node produced by the parser.
type Tree struct {
	Type  Kind
	Tok   lexer.Token // first token of the production; the value token for leaves
	Items []Node
}

// New builds an interior node.
func New(kind Kind, tok lexer.Token, children ...Node) *Tree {
	return &Tree{Type: kind, Tok: tok, Items: children}
}

// Leaf builds a token-carrying node.
func Leaf(kind Kind, tok lexer.Token) *Tree {
	return &Tree{Type: kind, Tok: tok}
}

func (t *Tree) Kind() Kind           { return t.Type }
func (t *Tree) Children() []Node     { return t.Items }
func (t *Tree) Token() lexer.Token   { return t.Tok }
func (t *Tree) TokenLiteral() string { return t.Tok.Literal }

// String renders the node as an S-expression, e.g. (expression (number 1) (add) (number 2)).
func (t *Tree) String() string {
	var out bytes.Buffer
	writeSExpr(&out, t)
	return out.String()
}

func writeSExpr(out *bytes.Buffer, n Node) {
	out.WriteString("(")
	out.WriteString(n.Kind().String())
	if n.Kind().IsLeaf() && n.TokenLiteral() != "" && !isOperator(n.Kind()) {
		out.WriteString(" ")
		if n.Kind() == KindString {
			out.WriteString(`"` + n.TokenLiteral() + `"`)
		} else {
			out.WriteString(n.TokenLiteral())
		}
	}
	for _, c := range n.Children() {
		out.WriteString(" ")
		writeSExpr(out, c)
	}
	out.WriteString(")")
}

func isOperator(k Kind) bool {
	return k == KindAdd || k == KindSub || k == KindMul || k == KindDiv
}

// Pretty renders the tree one node per line, indented by depth.
func Pretty(n Node) string {
	var out strings.Builder
	writePretty(&out, n, 0)
	return out.String()
}

func writePretty(out *strings.Builder, n Node, depth int) {
	out.WriteString(strings.Repeat("  ", depth))
	out.WriteString(n.Kind().String())
	if n.Kind().IsLeaf() && !isOperator(n.Kind()) && n.TokenLiteral() != "" {
		out.WriteString("\t")
		if n.Kind() == KindString {
			out.WriteString(`"` + n.TokenLiteral() + `"`)
		} else {
			out.WriteString(n.TokenLiteral())
		}
	}
	out.WriteString("\n")
	for _, c := range n.Children() {
		writePretty(out, c, depth+1)
	}
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// ParseNumber converts a number literal, optionally negated, to float64.
// Decimal, exponent and 0x hexadecimal forms are accepted.
func ParseNumber(literal string) (float64, error) {
	digits := literal
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var value float64
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		u, err := strconv.ParseUint(digits[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number literal %q: %w", literal, err)
		}
		value = float64(u)
	} else {
		f, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number literal %q: %w", literal, err)
		}
		value = f
	}

	if negative {
		value = -value
	}
	return value, nil
}
